package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/introspect/internal/config"
	"github.com/zeusync/introspect/internal/core/events/bus"
	"github.com/zeusync/introspect/internal/core/ids"
	"github.com/zeusync/introspect/internal/core/observability/log"
	"github.com/zeusync/introspect/internal/core/schema/registry"
)

// App is everything a command needs from the composition root.
type App struct {
	Logger   *log.Logger
	Registry *registry.Registry
}

// RegistrySet builds a Registry and its collaborators from a Config.
var RegistrySet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideRegistryOptions,
	registry.New,
)

// AppSet adds the App wrapper to RegistrySet.
var AppSet = wire.NewSet(
	RegistrySet,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg *config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return log.New(log.Options{Level: level, Format: cfg.Logging.Format}), nil
}

func ProvideRegistryOptions(cfg *config.Config) registry.Options {
	return registry.Options{
		MaxTypeTag:    ids.TypeTag(cfg.Registry.MaxTypeTag),
		InitialTypes:  cfg.Registry.InitialTypes,
		RootElement:   cfg.Registry.RootElement,
		ObjectElement: cfg.Registry.ObjectElement,
	}
}
