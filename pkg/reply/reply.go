// Package reply tracks the chain of responses issued during one command
// invocation: an initial reply plus follow-ups, addressed by stable index.
package reply

import (
	"context"
	"errors"
	"time"

	"modcmd/pkg/platform"
)

// EphemeralType selects how replies are hidden or cleaned up after sending.
type EphemeralType int

const (
	// EphemeralNone leaves replies permanently visible.
	EphemeralNone EphemeralType = iota
	// EphemeralTimed deletes replies after the configured delay.
	EphemeralTimed
	// EphemeralInteraction uses the platform's ephemeral flag, visible only
	// to the caller. Has no effect on message-based invocations.
	EphemeralInteraction
	// EphemeralBoth combines timed deletion and the ephemeral flag.
	EphemeralBoth
	// EphemeralOff is explicitly no ephemeral behavior. In a Spec it
	// overrides the manager's ephemeral setting, where the zero
	// EphemeralNone falls back to it.
	EphemeralOff
)

// HasTimed reports whether replies are deleted after a delay.
func (e EphemeralType) HasTimed() bool {
	return e == EphemeralTimed || e == EphemeralBoth
}

// HasInteraction reports whether the platform ephemeral flag is set.
func (e EphemeralType) HasInteraction() bool {
	return e == EphemeralInteraction || e == EphemeralBoth
}

// Privacy selects where one reply is delivered. The zero value falls back to
// the manager's private setting; the other two override it either way.
type Privacy int

const (
	// PrivacyDefault uses the manager's private setting.
	PrivacyDefault Privacy = iota
	// PrivacyPrivate delivers to the caller's private channel.
	PrivacyPrivate
	// PrivacyPublic delivers to the invocation channel even when the manager
	// defaults to private.
	PrivacyPublic
)

// Spec describes one reply to send. Zero-valued fields fall back to the
// manager's current settings; PrivacyPublic, EphemeralOff and a negative
// DeleteDelay express an explicit "off" against a manager default.
type Spec struct {
	Content     string
	Privacy     Privacy
	Ephemeral   EphemeralType
	DeleteDelay time.Duration
}

// Reply is a sent reply: its position in the invocation's reply chain and the
// ID of the backing message.
type Reply struct {
	Index int
	ID    platform.ID
}

var (
	// ErrAlreadyReplied is returned by Reply when the initial reply was
	// already sent. Use Add for follow-ups.
	ErrAlreadyReplied = errors.New("reply: initial reply already sent")
	// ErrNotFound is returned when addressing an index that was never sent or
	// was deleted.
	ErrNotFound = errors.New("reply: no reply at index")
)

// Manager tracks the replies of a single invocation. Managers are not safe
// for concurrent use; an invocation's pipeline is sequential.
type Manager interface {
	// Defer signals to the caller that a response is coming. Only meaningful
	// for interaction invocations; a no-op elsewhere.
	Defer(ctx context.Context) error
	// Reply sends the initial reply. Fails with ErrAlreadyReplied if called
	// twice; use Add for follow-ups.
	Reply(ctx context.Context, spec Spec) (Reply, error)
	// Add appends a reply to the chain: the initial reply if none was sent
	// yet, otherwise a follow-up. Returns the sent reply with its index.
	Add(ctx context.Context, spec Spec) (Reply, error)
	// Get returns a previously sent reply by index.
	Get(index int) (Reply, error)
	// Edit replaces the content of a previously sent reply.
	Edit(ctx context.Context, index int, spec Spec) error
	// Delete removes a previously sent reply. Remaining indices keep their
	// positions.
	Delete(ctx context.Context, index int) error
	// SetPrivate routes subsequent replies to the caller's private channel.
	// Already-sent replies are unaffected.
	SetPrivate(private bool)
	// SetEphemeral sets the ephemeral behavior of subsequent replies.
	SetEphemeral(e EphemeralType)
	// SetDeleteDelay sets the deletion delay used by timed ephemeral replies
	// sent after this call.
	SetDeleteDelay(d time.Duration)
	// LongTerm returns a manager over the same reply chain that stays usable
	// beyond transient transport constraints. Existing replies remain
	// readable; whether they stay editable depends on the original
	// transport.
	LongTerm() Manager
}

// Transport sends, edits and deletes the messages that back replies. The
// manager owns chain state; the transport owns platform I/O.
type Transport interface {
	// Defer signals pending processing, if the transport supports it.
	Defer(ctx context.Context) error
	// Send delivers a reply. The initial flag marks the first reply of the
	// invocation, which some transports deliver differently.
	Send(ctx context.Context, spec Spec, initial bool) (platform.ID, error)
	// Edit replaces the content of a sent message.
	Edit(ctx context.Context, id platform.ID, spec Spec) error
	// Delete removes a sent message.
	Delete(ctx context.Context, id platform.ID) error
	// LongTerm returns a transport not bound to transient invocation state.
	// May return itself if the transport is already durable.
	LongTerm() Transport
}
