package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported config format")

type Config struct {
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Registry RegistryConfig `yaml:"registry" toml:"registry"`
	Export   ExportConfig   `yaml:"export" toml:"export"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "json" or "console"
}

type RegistryConfig struct {
	MaxTypeTag    uint32 `yaml:"max_type_tag" toml:"max_type_tag"`
	InitialTypes  int    `yaml:"initial_types" toml:"initial_types"`
	RootElement   string `yaml:"root_element" toml:"root_element"`
	ObjectElement string `yaml:"object_element" toml:"object_element"`
}

type ExportConfig struct {
	DocsPath     string `yaml:"docs_path" toml:"docs_path"`
	SnapshotPath string `yaml:"snapshot_path" toml:"snapshot_path"`
	// Population is the number of demo instances created per reference type.
	Population int `yaml:"population" toml:"population"`
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := defaults()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config { return defaults() }

func (c *Config) Validate() error {
	var errs []error
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format: want json or console, got %q", c.Logging.Format))
	}
	if c.Registry.MaxTypeTag == 0 {
		errs = append(errs, errors.New("registry.max_type_tag must be positive"))
	}
	if c.Export.Population < 0 {
		errs = append(errs, errors.New("export.population must not be negative"))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Registry: RegistryConfig{
			MaxTypeTag:    0xFFFF,
			InitialTypes:  64,
			RootElement:   "Properties",
			ObjectElement: "Object",
		},
		Export: ExportConfig{
			DocsPath:     "properties.html",
			SnapshotPath: "snapshot.xml",
			Population:   3,
		},
	}
}
