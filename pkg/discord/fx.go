package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/fx"

	"modcmd/pkg/config"
	"modcmd/pkg/dispatch"
	"modcmd/pkg/logger"
	"modcmd/pkg/platform"
)

// Module provides the Discord session, platform client and gateway for fx
// dependency injection.
var Module = fx.Module("discord",
	fx.Provide(ProvideSession),
	fx.Provide(NewClient),
	fx.Provide(func(c *Client) platform.Client { return c }),
	fx.Provide(ProvideGateway),
)

// ProvideSession creates the discordgo session from configuration. The
// connection is opened by the gateway's lifecycle hook.
func ProvideSession(cfg *config.Config) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	return session, nil
}

// ProvideGateway creates the gateway and binds it to the application
// lifecycle.
func ProvideGateway(log *logger.Logger, session *discordgo.Session, dispatcher *dispatch.Dispatcher, registry *dispatch.Registry, cfg *config.Config, lc fx.Lifecycle) *Gateway {
	g := NewGateway(log, session, dispatcher, registry, cfg)
	lc.Append(fx.Hook{
		OnStart: g.Start,
		OnStop:  g.Stop,
	})
	return g
}
