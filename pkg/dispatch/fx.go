package dispatch

import (
	"go.uber.org/fx"

	"modcmd/pkg/logger"
	"modcmd/pkg/platform"
)

// Module provides the command registry and dispatcher for fx dependency
// injection.
var Module = fx.Module("dispatch",
	fx.Provide(ProvideRegistry),
	fx.Provide(ProvideDispatcher),
)

// ProvideRegistry creates the command registry.
func ProvideRegistry(log *logger.Logger) *Registry {
	return NewRegistry(log.Logger.Named("registry"))
}

// ProvideDispatcher creates the dispatcher over the registry and the platform
// client.
func ProvideDispatcher(registry *Registry, client platform.Client, log *logger.Logger) *Dispatcher {
	return NewDispatcher(registry, client, log.Logger.Named("dispatch"))
}
