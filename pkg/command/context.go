package command

import (
	"fmt"

	"modcmd/pkg/access"
	"modcmd/pkg/platform"
	"modcmd/pkg/reply"
)

// Context is the per-invocation state threaded through the handler chain. It
// is created at dispatch time and discarded after result handling. One
// context serves exactly one invocation; its mutating operations are not safe
// for concurrent use.
type Context interface {
	access.Context

	// Invocation returns the invocation as typed by the caller, which may
	// contain an alias at the leaf.
	Invocation() Invocation
	// CanonicalInvocation returns the alias-resolved invocation.
	CanonicalInvocation() Invocation
	// Interaction reports whether the invocation came from a structured
	// interaction rather than a text message.
	Interaction() bool
	// TriggerMessage returns the message that triggered a text invocation, or
	// nil for interactions.
	TriggerMessage() platform.Message
	// Argument returns the parsed value of the named parameter. The second
	// return is false when the parameter was optional with no default and no
	// value was supplied.
	Argument(name string) (any, bool)
	// Set stores a value in the invocation's side map. When the key already
	// holds a value it is only overwritten if replace is set; the return
	// reports whether the value was stored.
	Set(key string, value any, replace bool) bool
	// Get returns the side-map value stored under key.
	Get(key string) (any, bool)
	// Replies returns the reply manager for this invocation.
	Replies() reply.Manager
}

// Arg returns the parsed value of the named parameter as type T. Fails if the
// argument is absent or holds a different type; both indicate a mismatch
// between the command's parameter list and its handler.
func Arg[T any](cc Context, name string) (T, error) {
	var zero T
	v, ok := cc.Argument(name)
	if !ok {
		return zero, fmt.Errorf("no value for argument %q", name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("argument %q holds %T, not %T", name, v, zero)
	}
	return t, nil
}

// ArgOr returns the parsed value of the named argument, or fallback when the
// argument is absent. A present value of the wrong type is still an error.
func ArgOr[T any](cc Context, name string, fallback T) (T, error) {
	var zero T
	v, ok := cc.Argument(name)
	if !ok {
		return fallback, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("argument %q holds %T, not %T", name, v, zero)
	}
	return t, nil
}

// Value returns the side-map value stored under key as type T. Fails if the
// key is missing or the stored value has a different type.
func Value[T any](cc Context, key string) (T, error) {
	var zero T
	v, ok := cc.Get(key)
	if !ok {
		return zero, fmt.Errorf("no context value under key %q", key)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("context value %q holds %T, not %T", key, v, zero)
	}
	return t, nil
}
