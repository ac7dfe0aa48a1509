package config

import (
	"go.uber.org/fx"

	"modcmd/pkg/logger"
)

// Module provides configuration for fx dependency injection.
var Module = fx.Module("config",
	fx.Provide(ProvideConfig),
	fx.Provide(ProvideLoggerConfig),
)

// Params carries startup flags into configuration loading.
type Params struct {
	// ConfigPath is the explicit configuration file, or empty for the
	// default search paths.
	ConfigPath string
}

// ProvideConfig loads and validates the configuration.
func ProvideConfig(p Params) (*Config, error) {
	cfg, err := NewLoader().Load(p.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProvideLoggerConfig exposes the logger section for the logger module.
func ProvideLoggerConfig(cfg *Config) *logger.Config {
	return &cfg.Logger
}
