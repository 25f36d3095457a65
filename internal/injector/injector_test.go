package injector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/introspect/internal/config"
	"github.com/zeusync/introspect/internal/core/observability/log"
)

func TestInitializeRegistry(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "silent"
	cfg.Registry.MaxTypeTag = 10

	reg, err := InitializeRegistry(cfg)
	require.NoError(t, err)
	require.NotNil(t, reg)

	assert.NoError(t, reg.RegisterTypeName(10, "Last"))
	assert.Error(t, reg.RegisterTypeName(11, "TooFar"))
}

func TestProvideLogger(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "warn"
	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, log.LevelWarn, logger.GetLevel())

	cfg.Logging.Level = "verbose"
	_, err = ProvideLogger(cfg)
	assert.Error(t, err)
}

func TestInitializeApp(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "error"

	app, err := InitializeApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, app.Registry)
	assert.Equal(t, log.LevelError, app.Logger.GetLevel())
}
