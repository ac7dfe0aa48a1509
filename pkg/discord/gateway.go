package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"modcmd/pkg/config"
	"modcmd/pkg/dispatch"
	"modcmd/pkg/logger"
	"modcmd/pkg/parse"
	"modcmd/pkg/platform"
)

// dispatchTimeout bounds one invocation end to end, remote lookups and reply
// delivery included.
const dispatchTimeout = 30 * time.Second

// Gateway connects a discordgo session to the dispatcher: it turns message
// and interaction events into dispatch requests and keeps the slash command
// definitions in sync with the registry.
type Gateway struct {
	log        *logger.Logger
	session    *discordgo.Session
	dispatcher *dispatch.Dispatcher
	registry   *dispatch.Registry
	prefix     string

	remove []func()
}

// NewGateway creates a gateway over an unopened session.
func NewGateway(log *logger.Logger, session *discordgo.Session, dispatcher *dispatch.Dispatcher, registry *dispatch.Registry, cfg *config.Config) *Gateway {
	return &Gateway{
		log:        log,
		session:    session,
		dispatcher: dispatcher,
		registry:   registry,
		prefix:     cfg.Prefix,
	}
}

// Start opens the gateway connection and registers the event handlers.
func (g *Gateway) Start(ctx context.Context) error {
	g.log.Info("Starting Discord gateway")

	g.remove = append(g.remove,
		g.session.AddHandler(g.handleMessage),
		g.session.AddHandler(g.handleInteraction),
	)

	g.session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	if err := g.session.Open(); err != nil {
		return fmt.Errorf("opening discord connection: %w", err)
	}

	if g.session.State.User != nil {
		g.log.Info("Discord bot connected",
			zap.String("username", g.session.State.User.Username),
			zap.String("user_id", g.session.State.User.ID))
	}

	if err := g.SyncCommands(); err != nil {
		g.log.Error("Failed to sync application commands", zap.Error(err))
	}
	return nil
}

// Stop removes the event handlers and closes the connection.
func (g *Gateway) Stop(ctx context.Context) error {
	g.log.Info("Stopping Discord gateway")
	for _, rm := range g.remove {
		rm()
	}
	g.remove = nil

	if err := g.session.Close(); err != nil {
		return fmt.Errorf("closing discord session: %w", err)
	}
	return nil
}

// handleMessage dispatches prefixed messages as text invocations.
func (g *Gateway) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	line, ok := strings.CutPrefix(strings.TrimSpace(m.Content), g.prefix)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	req := dispatch.Request{
		Caller:    user{m.Author},
		GuildID:   platform.ID(m.GuildID),
		ChannelID: platform.ID(m.ChannelID),
		Transport: NewMessageTransport(s, m.ChannelID, m.Author.ID, m.Reference(), g.log.Logger),
		Line:      line,
		Message:   message{m.Message},
	}
	if _, err := g.dispatcher.Dispatch(ctx, req); err != nil {
		g.log.Error("Message dispatch failed",
			zap.String("channel_id", m.ChannelID),
			zap.Error(err))
	}
}

// handleInteraction dispatches application command interactions.
func (g *Gateway) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	caller := interactionUser(i.Interaction)
	if caller == nil {
		return
	}

	data := i.ApplicationCommandData()
	path, args := flattenOptions(data)

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	req := dispatch.Request{
		Caller:      user{caller},
		GuildID:     platform.ID(i.GuildID),
		ChannelID:   platform.ID(i.ChannelID),
		Transport:   NewInteractionTransport(s, i.Interaction, g.log.Logger),
		Interaction: true,
		Path:        path,
		Args:        args,
	}
	if _, err := g.dispatcher.Dispatch(ctx, req); err != nil {
		g.log.Error("Interaction dispatch failed",
			zap.String("command", data.Name),
			zap.Error(err))
	}
}

// flattenOptions unwraps subcommand groups and subcommands into a command
// path, leaving the value options as the argument map.
func flattenOptions(data discordgo.ApplicationCommandInteractionData) ([]string, map[string]parse.Value) {
	path := []string{data.Name}
	options := data.Options
	for len(options) == 1 {
		opt := options[0]
		if opt.Type != discordgo.ApplicationCommandOptionSubCommandGroup &&
			opt.Type != discordgo.ApplicationCommandOptionSubCommand {
			break
		}
		path = append(path, opt.Name)
		options = opt.Options
	}

	args := make(map[string]parse.Value, len(options))
	for _, opt := range options {
		args[opt.Name] = optionValue(data, opt)
	}
	return path, args
}

// optionValue extracts an option's raw value in the form the parsers accept.
func optionValue(data discordgo.ApplicationCommandInteractionData, opt *discordgo.ApplicationCommandInteractionDataOption) parse.Value {
	switch opt.Type {
	case discordgo.ApplicationCommandOptionString:
		return opt.StringValue()
	case discordgo.ApplicationCommandOptionInteger:
		return opt.IntValue()
	case discordgo.ApplicationCommandOptionNumber:
		return opt.FloatValue()
	case discordgo.ApplicationCommandOptionBoolean:
		return opt.BoolValue()
	case discordgo.ApplicationCommandOptionAttachment:
		id, _ := opt.Value.(string)
		if data.Resolved != nil {
			if a, ok := data.Resolved.Attachments[id]; ok {
				return attachment{a}
			}
		}
		return id
	default:
		// Users, channels, roles and mentionables arrive as snowflakes; the
		// entity parsers resolve them.
		if s, ok := opt.Value.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", opt.Value)
	}
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
