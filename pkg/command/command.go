package command

import (
	"fmt"
	"regexp"

	"modcmd/pkg/access"
	"modcmd/pkg/parse"
	"modcmd/pkg/reply"
)

// Scope bounds where a command may be invoked.
type Scope int

const (
	// ScopeGlobal allows invocation anywhere the bot is present.
	ScopeGlobal Scope = iota
	// ScopeGuild allows invocation only in guild channels.
	ScopeGuild
)

var (
	cmdNameRE = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

	maxDisplayName = 32
	maxDescription = 100
)

// Command is an immutable description of an invocable unit. Commands form a
// tree through their parent invocation; build one with a Builder.
type Command struct {
	scope       Scope
	parent      Invocation
	name        string
	displayName string
	description string
	aliases     []string
	params      []parse.Parameter
	group       access.Group

	requireParentGroups         bool
	nsfw                        bool
	serverOwnerOnly             bool
	botOwnerOnly                bool
	privateReply                bool
	ephemeral                   reply.EphemeralType
	skipGroupCheckOnInteraction bool
	inheritSettings             bool
	invokeParent                bool
	callable                    bool

	handler        InvocationHandler
	resultHandlers []ResultHandler
}

// Name returns the command's name.
func (c *Command) Name() string { return c.name }

// DisplayName returns the user-facing name.
func (c *Command) DisplayName() string { return c.displayName }

// Description returns the user-facing description.
func (c *Command) Description() string { return c.description }

// Scope returns where the command may be invoked.
func (c *Command) Scope() Scope { return c.scope }

// Parent returns the invocation of the parent command, or the root.
func (c *Command) Parent() Invocation { return c.parent }

// Invocation returns the command's canonical invocation: its parent's
// invocation with its own name appended.
func (c *Command) Invocation() Invocation { return c.parent.Child(c.name) }

// Aliases returns the command's aliases. Aliases apply to text invocations
// only, and only at the leaf position.
func (c *Command) Aliases() []string {
	return append([]string(nil), c.aliases...)
}

// AliasInvocations returns the invocations formed by each alias under the
// command's parent.
func (c *Command) AliasInvocations() []Invocation {
	invs := make([]Invocation, len(c.aliases))
	for i, a := range c.aliases {
		invs[i] = c.parent.Child(a)
	}
	return invs
}

// Parameters returns the command's ordered parameter list.
func (c *Command) Parameters() []parse.Parameter {
	return append([]parse.Parameter(nil), c.params...)
}

// Group returns the permission group required to invoke the command.
func (c *Command) Group() access.Group { return c.group }

// RequireParentGroups reports whether every ancestor's group is also checked.
func (c *Command) RequireParentGroups() bool { return c.requireParentGroups }

// NSFW reports whether the command may only run in NSFW channels.
func (c *Command) NSFW() bool { return c.nsfw }

// ServerOwnerOnly reports whether only the guild owner may invoke.
func (c *Command) ServerOwnerOnly() bool { return c.serverOwnerOnly }

// BotOwnerOnly reports whether only the bot owner may invoke.
func (c *Command) BotOwnerOnly() bool { return c.botOwnerOnly }

// PrivateReply reports whether replies default to the caller's private
// channel.
func (c *Command) PrivateReply() bool { return c.privateReply }

// Ephemeral returns how replies are deleted or hidden by default.
func (c *Command) Ephemeral() reply.EphemeralType { return c.ephemeral }

// SkipGroupCheckOnInteraction reports whether group checks are waived for
// interaction invocations, deferring to the platform's own permission setup.
func (c *Command) SkipGroupCheckOnInteraction() bool { return c.skipGroupCheckOnInteraction }

// InheritSettings reports whether reply and restriction settings come from
// the parent chain instead of this command.
func (c *Command) InheritSettings() bool { return c.inheritSettings }

// InvokeParent reports whether ancestor handlers run before this command's
// handler.
func (c *Command) InvokeParent() bool { return c.invokeParent }

// Callable reports whether the command may be invoked directly rather than
// only through a child.
func (c *Command) Callable() bool { return c.callable }

// Handler returns the command's invocation handler.
func (c *Command) Handler() InvocationHandler { return c.handler }

// ResultHandlers returns the command's ordered result handlers.
func (c *Command) ResultHandlers() []ResultHandler {
	return append([]ResultHandler(nil), c.resultHandlers...)
}

// Builder assembles a Command. Setters stage values; Build validates them and
// freezes the result. The zero Builder is not usable, create one with New.
type Builder struct {
	cmd Command
}

// New creates a builder for a command with the given name, description and
// handler. Commands default to global scope, callable, group Everyone, and
// settings inherited from the parent chain.
func New(name, description string, handler InvocationHandler) *Builder {
	return &Builder{cmd: Command{
		name:            name,
		displayName:     name,
		description:     description,
		group:           access.Everyone,
		inheritSettings: true,
		callable:        true,
		handler:         handler,
	}}
}

// Scope sets where the command may be invoked.
func (b *Builder) Scope(s Scope) *Builder {
	b.cmd.scope = s
	return b
}

// Parent places the command under the given invocation.
func (b *Builder) Parent(parent Invocation) *Builder {
	b.cmd.parent = parent
	return b
}

// DisplayName sets the user-facing name.
func (b *Builder) DisplayName(name string) *Builder {
	b.cmd.displayName = name
	return b
}

// Aliases sets the command's aliases.
func (b *Builder) Aliases(aliases ...string) *Builder {
	b.cmd.aliases = aliases
	return b
}

// Parameters sets the command's ordered parameter list.
func (b *Builder) Parameters(params ...parse.Parameter) *Builder {
	b.cmd.params = params
	return b
}

// Require sets the permission group required to invoke the command.
func (b *Builder) Require(group access.Group) *Builder {
	b.cmd.group = group
	return b
}

// RequireParentGroups also checks every ancestor's group on invocation.
func (b *Builder) RequireParentGroups() *Builder {
	b.cmd.requireParentGroups = true
	return b
}

// NSFW restricts the command to NSFW channels.
func (b *Builder) NSFW() *Builder {
	b.cmd.nsfw = true
	return b
}

// ServerOwnerOnly restricts the command to the guild owner.
func (b *Builder) ServerOwnerOnly() *Builder {
	b.cmd.serverOwnerOnly = true
	return b
}

// BotOwnerOnly restricts the command to the bot owner.
func (b *Builder) BotOwnerOnly() *Builder {
	b.cmd.botOwnerOnly = true
	return b
}

// PrivateReply sends replies to the caller's private channel by default.
func (b *Builder) PrivateReply() *Builder {
	b.cmd.privateReply = true
	return b
}

// Ephemeral sets how replies are deleted or hidden by default.
func (b *Builder) Ephemeral(e reply.EphemeralType) *Builder {
	b.cmd.ephemeral = e
	return b
}

// SkipGroupCheckOnInteraction waives group checks for interaction
// invocations.
func (b *Builder) SkipGroupCheckOnInteraction() *Builder {
	b.cmd.skipGroupCheckOnInteraction = true
	return b
}

// OwnSettings makes the command supply its own reply and restriction settings
// rather than inheriting them from the parent chain.
func (b *Builder) OwnSettings() *Builder {
	b.cmd.inheritSettings = false
	return b
}

// InvokeParent runs ancestor handlers before this command's handler.
func (b *Builder) InvokeParent() *Builder {
	b.cmd.invokeParent = true
	return b
}

// NotCallable marks the command as a grouping node that cannot be invoked
// directly.
func (b *Builder) NotCallable() *Builder {
	b.cmd.callable = false
	return b
}

// OnResult appends a result handler.
func (b *Builder) OnResult(h ResultHandler) *Builder {
	b.cmd.resultHandlers = append(b.cmd.resultHandlers, h)
	return b
}

// Build validates the staged command and returns the frozen value.
func (b *Builder) Build() (*Command, error) {
	c := b.cmd
	if !cmdNameRE.MatchString(c.name) {
		return nil, fmt.Errorf("invalid command name %q", c.name)
	}
	if n := len(c.displayName); n == 0 || n > maxDisplayName {
		return nil, fmt.Errorf("command %q: display name must be 1 to %d characters", c.name, maxDisplayName)
	}
	if n := len(c.description); n == 0 || n > maxDescription {
		return nil, fmt.Errorf("command %q: description must be 1 to %d characters", c.name, maxDescription)
	}
	if c.handler == nil {
		return nil, fmt.Errorf("command %q has no handler", c.name)
	}
	if c.group == nil {
		return nil, fmt.Errorf("command %q has no required group", c.name)
	}
	if err := validateAliases(c.name, c.aliases); err != nil {
		return nil, err
	}
	if err := validateParameters(c.name, c.params); err != nil {
		return nil, err
	}
	c.aliases = append([]string(nil), c.aliases...)
	c.params = append([]parse.Parameter(nil), c.params...)
	c.resultHandlers = append([]ResultHandler(nil), c.resultHandlers...)
	return &c, nil
}

// MustBuild is Build, panicking on an invalid command. Intended for startup
// wiring, where a bad definition is a programming error.
func (b *Builder) MustBuild() *Command {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

func validateAliases(name string, aliases []string) error {
	seen := map[string]struct{}{name: {}}
	for _, a := range aliases {
		if !cmdNameRE.MatchString(a) {
			return fmt.Errorf("command %q: invalid alias %q", name, a)
		}
		if _, dup := seen[a]; dup {
			return fmt.Errorf("command %q: duplicate alias %q", name, a)
		}
		seen[a] = struct{}{}
	}
	return nil
}

func validateParameters(name string, params []parse.Parameter) error {
	seen := make(map[string]struct{}, len(params))
	sawOptional := false
	for i, p := range params {
		if p == nil {
			return fmt.Errorf("command %q: parameter %d is nil", name, i)
		}
		if _, dup := seen[p.Name()]; dup {
			return fmt.Errorf("command %q: duplicate parameter %q", name, p.Name())
		}
		seen[p.Name()] = struct{}{}
		if p.Required() {
			if sawOptional {
				return fmt.Errorf("command %q: required parameter %q after an optional one", name, p.Name())
			}
		} else {
			sawOptional = true
		}
		if p.Greedy() && i != len(params)-1 {
			return fmt.Errorf("command %q: parameter %q consumes remaining input but is not last", name, p.Name())
		}
	}
	return nil
}
