// Package access implements permission groups: composable asynchronous
// predicates over the (guild, channel, caller) context of an invocation.
package access

import (
	"context"
	"errors"

	"modcmd/pkg/platform"
)

// Context is the view of an invocation that group membership checks evaluate
// against. Accessors that may require a remote lookup take a context.Context
// and may fail; implementations are expected to cache resolved entities for
// the lifetime of the invocation.
type Context interface {
	// Caller is the user that triggered the invocation.
	Caller() platform.User
	// GuildID returns the ID of the guild the invocation happened in, or
	// false if it happened in a private channel.
	GuildID() (platform.ID, bool)
	// Guild resolves the invocation guild. Returns platform.ErrNotFound in a
	// private channel.
	Guild(ctx context.Context) (platform.Guild, error)
	// Channel resolves the invocation channel.
	Channel(ctx context.Context) (platform.Channel, error)
	// Member resolves the caller as a member of the invocation guild.
	// Returns platform.ErrNotFound in a private channel.
	Member(ctx context.Context) (platform.Member, error)
	// Client is the platform client for further lookups.
	Client() platform.Client
}

// WithGuild returns a Context identical to parent except that guild-scoped
// accessors (GuildID, Guild, Member) resolve against the given guild instead
// of the one the invocation happened in. Channel-scoped accessors are
// unchanged. This supports checking membership for commands that operate on a
// remote guild.
func WithGuild(parent Context, guild platform.ID) Context {
	return &guildOverride{Context: parent, guild: guild}
}

type guildOverride struct {
	Context
	guild platform.ID
}

func (o *guildOverride) GuildID() (platform.ID, bool) {
	return o.guild, true
}

func (o *guildOverride) Guild(ctx context.Context) (platform.Guild, error) {
	return o.Client().GetGuild(ctx, o.guild)
}

func (o *guildOverride) Member(ctx context.Context) (platform.Member, error) {
	return o.Client().GetMember(ctx, o.guild, o.Caller().ID())
}

// isPrivate reports whether the invocation happened outside a guild.
func isPrivate(cc Context) bool {
	_, ok := cc.GuildID()
	return !ok
}

// memberOrNone resolves the caller's member, mapping "no guild" to a nil
// member rather than an error.
func memberOrNone(ctx context.Context, cc Context) (platform.Member, error) {
	m, err := cc.Member(ctx)
	if errors.Is(err, platform.ErrNotFound) {
		return nil, nil
	}
	return m, err
}
