// Package platform defines the interfaces through which the command framework
// talks to the underlying chat platform. The framework never performs network
// I/O directly; a hosting process supplies an implementation of these
// interfaces (see pkg/discord for the discordgo-backed one).
package platform

import (
	"context"
	"errors"
)

// ErrNotFound is returned by lookup methods when the requested entity does not
// exist, as opposed to the lookup itself failing.
var ErrNotFound = errors.New("entity not found")

// ID is a platform entity identifier (a snowflake on Discord).
type ID string

// Valid reports whether the ID is a well-formed snowflake (a non-empty string
// of decimal digits).
func (id ID) Valid() bool {
	if id == "" {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// User is a platform user account.
type User interface {
	ID() ID
	Username() string
	Bot() bool
}

// Member is a user's membership in a specific guild, carrying guild-scoped
// state such as roles.
type Member interface {
	User
	GuildID() ID
	RoleIDs() []ID
	// Permissions returns the member's base permissions in the guild.
	Permissions(ctx context.Context) (PermissionSet, error)
	// Booster reports whether the member is currently boosting the guild.
	Booster() bool
}

// Guild is a server where commands may be invoked.
type Guild interface {
	ID() ID
	Name() string
	OwnerID() ID
}

// Channel is a channel where commands may be invoked. A private (direct
// message) channel has no guild.
type Channel interface {
	ID() ID
	Name() string
	Private() bool
	NSFW() bool
	// EffectivePermissions returns the permissions the given user has in this
	// channel, considering overwrites. Returns ErrNotFound for private
	// channels, which have no permission system.
	EffectivePermissions(ctx context.Context, user ID) (PermissionSet, error)
}

// Role is a guild role.
type Role interface {
	ID() ID
	Name() string
}

// Message is a message sent in a channel.
type Message interface {
	ID() ID
	ChannelID() ID
	Content() string
	Attachments() []Attachment
}

// Attachment is a file attached to a message or interaction. Only metadata is
// available until the contents are fetched (see parse.FetchFunc).
type Attachment interface {
	ID() ID
	Filename() string
	Size() int
	URL() string
	ContentType() string
}

// Client exposes the remote entity lookups the framework needs. All lookups
// return ErrNotFound when the entity does not exist.
type Client interface {
	// BotOwnerID returns the user that owns the bot application.
	BotOwnerID(ctx context.Context) (ID, error)
	GetUser(ctx context.Context, id ID) (User, error)
	GetMember(ctx context.Context, guild, user ID) (Member, error)
	GetGuild(ctx context.Context, id ID) (Guild, error)
	GetChannel(ctx context.Context, id ID) (Channel, error)
	GetRole(ctx context.Context, guild, id ID) (Role, error)
	GetMessage(ctx context.Context, channel, id ID) (Message, error)
}
