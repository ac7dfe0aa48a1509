package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"modcmd/pkg/access"
	"modcmd/pkg/command"
	"modcmd/pkg/dispatch"
	"modcmd/pkg/logger"
	"modcmd/pkg/parse"
	"modcmd/pkg/platform"
	"modcmd/pkg/reply"
)

// registerCommands fills the registry with the demo command set and installs
// the reply handler that surfaces results to the user.
func registerCommands(registry *dispatch.Registry, log *logger.Logger) error {
	registry.AddResultHandler(replyHandler(log))

	cmds := []*command.Command{
		command.New("ping", "Checks whether the bot is responsive.",
			func(ctx context.Context, cc command.Context) (command.Result, error) {
				return command.Successf("Pong!"), nil
			}).
			Aliases("p").
			MustBuild(),

		command.New("echo", "Repeats the given text.",
			func(ctx context.Context, cc command.Context) (command.Result, error) {
				text, err := command.Arg[string](cc, "text")
				if err != nil {
					return nil, err
				}
				return command.Successf("%s", text), nil
			}).
			Parameters(parse.NewParam("text", "The text to repeat.", parse.Text().MinLength(1))).
			MustBuild(),

		command.New("roll", "Rolls a die.",
			func(ctx context.Context, cc command.Context) (command.Result, error) {
				sides, err := command.Arg[int64](cc, "sides")
				if err != nil {
					return nil, err
				}
				return command.Successf("🎲 You rolled a %d (d%d).", rand.Int63n(sides)+1, sides), nil
			}).
			Parameters(parse.NewDefaultParam("sides", "How many sides the die has.", int64(6),
				parse.Integer().Between(2, 1000))).
			MustBuild(),

		command.New("whois", "Shows information about a user.",
			func(ctx context.Context, cc command.Context) (command.Result, error) {
				u, err := command.Arg[platform.User](cc, "user")
				if err != nil {
					return nil, err
				}
				kind := "user"
				if u.Bot() {
					kind = "bot"
				}
				_, err = cc.Replies().Reply(ctx, reply.Spec{
					Content: fmt.Sprintf("**%s** (%s, ID `%s`)", u.Username(), kind, u.ID()),
				})
				if err != nil {
					return nil, err
				}
				return command.Success(), nil
			}).
			Parameters(parse.NewParam("user", "The user to look up.", parse.UserRef())).
			MustBuild(),

		command.New("config", "Administrative settings.",
			func(ctx context.Context, cc command.Context) (command.Result, error) {
				return command.Failf("use a subcommand, e.g. `config show`"), nil
			}).
			Scope(command.ScopeGuild).
			Require(access.Admins).
			OwnSettings().
			PrivateReply().
			MustBuild(),
	}

	subcommands := []*command.Command{
		command.New("show", "Shows the current server settings.",
			func(ctx context.Context, cc command.Context) (command.Result, error) {
				g, err := cc.Guild(ctx)
				if err != nil {
					return nil, err
				}
				var b strings.Builder
				fmt.Fprintf(&b, "Settings for **%s**\n", g.Name())
				fmt.Fprintf(&b, "Owner: <@%s>\n", g.OwnerID())
				return command.Successf("%s", b.String()), nil
			}).
			Parent(command.NewInvocation("config")).
			Scope(command.ScopeGuild).
			RequireParentGroups().
			MustBuild(),
	}

	for _, c := range append(cmds, subcommands...) {
		if err := registry.Register(c); err != nil {
			return fmt.Errorf("registering %q: %w", c.Name(), err)
		}
	}
	return nil
}

// replyHandler surfaces user-facing results as replies. It never consumes the
// result, so error-class outcomes still reach the logging handler.
func replyHandler(log *logger.Logger) command.ResultHandler {
	return func(ctx context.Context, cc command.Context, result command.Result) (bool, error) {
		var content string
		switch r := result.(type) {
		case command.ResultSuccessMessage:
			content = r.Message
		case command.ResultFailureMessage:
			content = r.Message
		case command.ResultInvalidArgument:
			content = fmt.Sprintf("Invalid value for `%s`: %s.", r.Parameter, r.Reason)
		case command.ResultNotAllowed:
			content = fmt.Sprintf("You must be part of **%s** to use this command.",
				access.NameOf(r.Group, "a restricted group"))
		case command.ResultError, command.ResultFault:
			content = "Something went wrong while running this command."
		default:
			return false, nil
		}

		if _, err := cc.Replies().Reply(ctx, reply.Spec{Content: content}); err != nil {
			// The handler already replied; the result message is redundant.
			if !errors.Is(err, reply.ErrAlreadyReplied) {
				log.Warn("Failed to send result reply",
					zap.String("invocation", cc.Invocation().String()),
					zap.Error(err))
			}
		}
		return false, nil
	}
}
