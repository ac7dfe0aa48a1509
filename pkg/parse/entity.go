package parse

import (
	"context"
	"errors"
	"strings"

	"modcmd/pkg/access"
	"modcmd/pkg/platform"
)

// Entity reference parsers. Each accepts the formats of the matching IDKind
// and resolves the referenced entity through the invocation's client. A
// reference to an entity that does not exist is a rejection, not a fault.

// UserRef creates a parser that resolves a user reference.
func UserRef() Parser[platform.User] {
	return parserFunc[platform.User](func(ctx context.Context, cc access.Context, raw Value) (platform.User, error) {
		id, err := refID(KindUser, raw)
		if err != nil {
			return nil, err
		}
		u, err := cc.Client().GetUser(ctx, id)
		if errors.Is(err, platform.ErrNotFound) {
			return nil, Invalidf("user %s not found", id)
		}
		return u, err
	})
}

// MemberRef creates a parser that resolves a user reference to a member of
// the invocation guild. Always rejects in a private channel.
func MemberRef() Parser[platform.Member] {
	return parserFunc[platform.Member](func(ctx context.Context, cc access.Context, raw Value) (platform.Member, error) {
		id, err := refID(KindUser, raw)
		if err != nil {
			return nil, err
		}
		guild, ok := cc.GuildID()
		if !ok {
			return nil, Invalidf("member arguments require a server channel")
		}
		m, err := cc.Client().GetMember(ctx, guild, id)
		if errors.Is(err, platform.ErrNotFound) {
			return nil, Invalidf("member %s not found", id)
		}
		return m, err
	})
}

// RoleRef creates a parser that resolves a role reference in the invocation
// guild. Always rejects in a private channel.
func RoleRef() Parser[platform.Role] {
	return parserFunc[platform.Role](func(ctx context.Context, cc access.Context, raw Value) (platform.Role, error) {
		id, err := refID(KindRole, raw)
		if err != nil {
			return nil, err
		}
		guild, ok := cc.GuildID()
		if !ok {
			return nil, Invalidf("role arguments require a server channel")
		}
		r, err := cc.Client().GetRole(ctx, guild, id)
		if errors.Is(err, platform.ErrNotFound) {
			return nil, Invalidf("role %s not found", id)
		}
		return r, err
	})
}

// ChannelRef creates a parser that resolves a channel reference.
func ChannelRef() Parser[platform.Channel] {
	return parserFunc[platform.Channel](func(ctx context.Context, cc access.Context, raw Value) (platform.Channel, error) {
		id, err := refID(KindChannel, raw)
		if err != nil {
			return nil, err
		}
		ch, err := cc.Client().GetChannel(ctx, id)
		if errors.Is(err, platform.ErrNotFound) {
			return nil, Invalidf("channel %s not found", id)
		}
		return ch, err
	})
}

// MessageRef creates a parser that resolves a message reference. A message
// URL carries its own channel; a bare ID is resolved within the invocation
// channel.
func MessageRef() Parser[platform.Message] {
	return parserFunc[platform.Message](func(ctx context.Context, cc access.Context, raw Value) (platform.Message, error) {
		s, err := toString(raw)
		if err != nil {
			return nil, err
		}
		channel, id, err := messageRef(ctx, cc, s)
		if err != nil {
			return nil, err
		}
		m, err := cc.Client().GetMessage(ctx, channel, id)
		if errors.Is(err, platform.ErrNotFound) {
			return nil, Invalidf("message %s not found", id)
		}
		return m, err
	})
}

func refID(kind IDKind, raw Value) (platform.ID, error) {
	s, err := toString(raw)
	if err != nil {
		return "", err
	}
	return extractID(kind, s)
}

func messageRef(ctx context.Context, cc access.Context, s string) (channel, id platform.ID, err error) {
	if strings.HasPrefix(s, "https://") {
		m := messageURLRE.FindStringSubmatch(s)
		if m == nil {
			return "", "", Invalidf("%q is not a valid message link", s)
		}
		return platform.ID(m[1]), platform.ID(m[2]), nil
	}
	id = platform.ID(s)
	if !id.Valid() {
		return "", "", Invalidf("%q is not a valid message ID", s)
	}
	ch, err := cc.Channel(ctx)
	if err != nil {
		return "", "", err
	}
	return ch.ID(), id, nil
}
