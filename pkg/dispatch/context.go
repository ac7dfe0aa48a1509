package dispatch

import (
	"modcmd/pkg/access"
	"modcmd/pkg/command"
	"modcmd/pkg/platform"
	"modcmd/pkg/reply"
)

// invocationContext implements command.Context for one dispatched invocation.
// It is created by the dispatcher and discarded after result handling; it is
// not safe for concurrent mutation.
type invocationContext struct {
	access.Context

	typed       command.Invocation
	canonical   command.Invocation
	interaction bool
	message     platform.Message
	args        map[string]any
	side        map[string]any
	replies     reply.Manager
}

func newInvocationContext(base access.Context, typed, canonical command.Invocation, interaction bool, message platform.Message, replies reply.Manager) *invocationContext {
	return &invocationContext{
		Context:     base,
		typed:       typed,
		canonical:   canonical,
		interaction: interaction,
		message:     message,
		args:        make(map[string]any),
		side:        make(map[string]any),
		replies:     replies,
	}
}

func (c *invocationContext) Invocation() command.Invocation          { return c.typed }
func (c *invocationContext) CanonicalInvocation() command.Invocation { return c.canonical }
func (c *invocationContext) Interaction() bool                       { return c.interaction }
func (c *invocationContext) TriggerMessage() platform.Message        { return c.message }

func (c *invocationContext) Argument(name string) (any, bool) {
	v, ok := c.args[name]
	return v, ok
}

func (c *invocationContext) Set(key string, value any, replace bool) bool {
	if _, exists := c.side[key]; exists && !replace {
		return false
	}
	c.side[key] = value
	return true
}

func (c *invocationContext) Get(key string) (any, bool) {
	v, ok := c.side[key]
	return v, ok
}

func (c *invocationContext) Replies() reply.Manager { return c.replies }

func (c *invocationContext) setArgument(name string, value any) {
	c.args[name] = value
}
