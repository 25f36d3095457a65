//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/introspect/internal/config"
	"github.com/zeusync/introspect/internal/core/schema/registry"
)

func InitializeRegistry(cfg *config.Config) (*registry.Registry, error) {
	wire.Build(RegistrySet)
	return nil, nil
}

func InitializeApp(cfg *config.Config) (*App, error) {
	wire.Build(AppSet)
	return nil, nil
}
