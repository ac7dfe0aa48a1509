// Package config loads host configuration for a bot process: platform
// credentials, the text-command prefix, and logger settings.
package config

import (
	"fmt"
	"strings"

	"modcmd/pkg/logger"
)

// Config is the root configuration for a bot host.
type Config struct {
	// Discord holds the platform connection settings.
	Discord DiscordConfig `mapstructure:"discord"`

	// Prefix is the leading marker of text commands (default "!").
	Prefix string `mapstructure:"prefix"`

	// Logger configures structured logging.
	Logger logger.Config `mapstructure:"logger"`
}

// DiscordConfig holds the Discord gateway settings.
type DiscordConfig struct {
	// Token is the bot token. Required.
	Token string `mapstructure:"token"`
}

// DefaultConfig returns a configuration with defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Prefix: "!",
		Logger: *logger.DefaultConfig(),
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Discord.Token) == "" {
		return fmt.Errorf("discord.token is required")
	}
	if strings.ContainsAny(c.Prefix, " \t\n") || c.Prefix == "" {
		return fmt.Errorf("prefix %q must be non-empty without whitespace", c.Prefix)
	}
	return nil
}
