package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "propdoc.yaml", `
logging:
  level: debug
registry:
  object_element: Entity
export:
  population: 5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format, "unset keys keep their defaults")
	assert.Equal(t, "Entity", cfg.Registry.ObjectElement)
	assert.Equal(t, "Properties", cfg.Registry.RootElement)
	assert.Equal(t, 5, cfg.Export.Population)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "propdoc.toml", `
[logging]
format = "json"

[registry]
max_type_tag = 1024

[export]
docs_path = "out/docs.html"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, uint32(1024), cfg.Registry.MaxTypeTag)
	assert.Equal(t, "out/docs.html", cfg.Export.DocsPath)
	assert.Equal(t, "snapshot.xml", cfg.Export.SnapshotPath)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "propdoc.ini", "x=1"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(writeFile(t, "bad.toml", "[logging\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "logging:\n  format: xml\nexport:\n  population: -1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
	assert.Contains(t, err.Error(), "export.population")
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
