package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"modcmd/pkg/command"
)

// SyncCommands overwrites the application's slash command definitions with the
// registry's contents. Discord nests at most three levels (command, group,
// subcommand); deeper commands stay reachable through text invocation only.
// Every parameter is declared as a string option; the framework's parsers do
// the validation either way.
func (g *Gateway) SyncCommands() error {
	if g.session.State.User == nil {
		return fmt.Errorf("session has no bot user")
	}

	roots := make(map[string]*discordgo.ApplicationCommand)
	groups := make(map[string]*discordgo.ApplicationCommandOption)
	childful := make(map[string]bool)
	var order []string

	for _, cmd := range g.registry.Commands() {
		inv := cmd.Invocation()
		parentKey := inv.Parent().String()
		switch inv.Len() {
		case 1:
			ac := &discordgo.ApplicationCommand{
				Name:        cmd.Name(),
				Description: cmd.Description(),
				Options:     parameterOptions(cmd),
			}
			if cmd.Scope() == command.ScopeGuild {
				dm := false
				ac.DMPermission = &dm
			}
			roots[inv.String()] = ac
			order = append(order, inv.String())
		case 2:
			parent, ok := roots[parentKey]
			if !ok {
				continue
			}
			if !childful[parentKey] {
				// A command with subcommands is not directly invokable; its
				// own parameters cannot be expressed.
				parent.Options = nil
				childful[parentKey] = true
			}
			opt := &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        cmd.Name(),
				Description: cmd.Description(),
				Options:     parameterOptions(cmd),
			}
			parent.Options = append(parent.Options, opt)
			groups[inv.String()] = opt
		case 3:
			parent, ok := groups[parentKey]
			if !ok {
				continue
			}
			if !childful[parentKey] {
				parent.Type = discordgo.ApplicationCommandOptionSubCommandGroup
				parent.Options = nil
				childful[parentKey] = true
			}
			parent.Options = append(parent.Options, &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        cmd.Name(),
				Description: cmd.Description(),
				Options:     parameterOptions(cmd),
			})
		default:
			g.log.Warn("Command too deep for slash registration",
				zap.String("invocation", inv.String()))
		}
	}

	list := make([]*discordgo.ApplicationCommand, 0, len(order))
	for _, key := range order {
		list = append(list, roots[key])
	}

	_, err := g.session.ApplicationCommandBulkOverwrite(g.session.State.User.ID, "", list)
	if err != nil {
		return fmt.Errorf("overwriting application commands: %w", err)
	}
	g.log.Info("Application commands synced", zap.Int("count", len(list)))
	return nil
}

func parameterOptions(cmd *command.Command) []*discordgo.ApplicationCommandOption {
	params := cmd.Parameters()
	if len(params) == 0 {
		return nil
	}
	opts := make([]*discordgo.ApplicationCommandOption, len(params))
	for i, p := range params {
		opts[i] = &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        p.Name(),
			Description: p.Description(),
			Required:    p.Required(),
		}
	}
	return opts
}
