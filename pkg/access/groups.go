package access

import (
	"context"
	"errors"

	"modcmd/pkg/platform"
)

// PrivatePolicy decides what a permission-based group evaluates to in a
// private channel, where the platform permission system does not apply. The
// policy is an explicit constructor argument rather than a baked-in default
// so each call site documents its choice.
type PrivatePolicy int

const (
	// PrivateAllow treats private channels as satisfying the check. Suitable
	// for permission gates, where a private channel means there is nobody
	// else to protect.
	PrivateAllow PrivatePolicy = iota
	// PrivateDeny treats private channels as failing the check. Suitable for
	// paywall-style gates such as boosters.
	PrivateDeny
)

// Built-in groups.
var (
	// Everyone matches any user.
	Everyone = Named(GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		return true, nil
	}), "Everyone")

	// Nobody matches no user.
	Nobody = Named(GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		return false, nil
	}), "Nobody")

	// Admins matches users with the administrator permission. Allows in
	// private channels, where there are no permissions to be missing.
	Admins = Named(HasGuildPermissions(platform.PermissionAdministrator, PrivateAllow), "Administrators")

	// ServerOwner matches only the owner of the invocation guild. Never
	// matches in a private channel.
	ServerOwner = Named(GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		g, err := cc.Guild(ctx)
		if errors.Is(err, platform.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return g.OwnerID() == cc.Caller().ID(), nil
	}), "Server Owner")

	// BotOwner matches only the owner of the bot application.
	BotOwner = Named(GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		owner, err := cc.Client().BotOwnerID(ctx)
		if err != nil {
			return false, err
		}
		return owner == cc.Caller().ID(), nil
	}), "Bot Owner")

	// Boosters matches members currently boosting the invocation guild.
	// Never matches in a private channel; the intent is paywalling a feature,
	// not limiting permissions.
	Boosters = Named(GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		m, err := memberOrNone(ctx, cc)
		if err != nil || m == nil {
			return false, err
		}
		return m.Booster(), nil
	}), "Boosters")
)

// IsUser creates a group containing a single user.
func IsUser(user platform.ID) Group {
	return GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		return cc.Caller().ID() == user, nil
	})
}

// InWhitelist creates a group containing a fixed set of users.
func InWhitelist(users ...platform.ID) Group {
	allowed := make(map[platform.ID]struct{}, len(users))
	for _, u := range users {
		allowed[u] = struct{}{}
	}
	return GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		_, ok := allowed[cc.Caller().ID()]
		return ok, nil
	})
}

// HasRole creates a group of all members that have the given role. Never
// matches in a private channel.
func HasRole(role platform.ID) Group {
	return HasRolesAny(role)
}

// HasRolesAny creates a group of all members that have at least one of the
// given roles. Never matches in a private channel.
func HasRolesAny(roles ...platform.ID) Group {
	wanted := roleSet(roles)
	return GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		m, err := memberOrNone(ctx, cc)
		if err != nil || m == nil {
			return false, err
		}
		for _, r := range m.RoleIDs() {
			if _, ok := wanted[r]; ok {
				return true, nil
			}
		}
		return false, nil
	})
}

// HasRolesAll creates a group of all members that have every one of the given
// roles. Never matches in a private channel.
func HasRolesAll(roles ...platform.ID) Group {
	return GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		m, err := memberOrNone(ctx, cc)
		if err != nil || m == nil {
			return false, err
		}
		have := roleSet(m.RoleIDs())
		for _, r := range roles {
			if _, ok := have[r]; !ok {
				return false, nil
			}
		}
		return true, nil
	})
}

// HasGuildPermissions creates a group of all members whose base guild
// permissions include all the given bits. The private policy decides the
// result in a private channel.
func HasGuildPermissions(required platform.PermissionSet, private PrivatePolicy) Group {
	return GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		m, err := memberOrNone(ctx, cc)
		if err != nil {
			return false, err
		}
		if m == nil {
			return private == PrivateAllow, nil
		}
		perms, err := m.Permissions(ctx)
		if err != nil {
			return false, err
		}
		return perms.Contains(required), nil
	})
}

// HasChannelPermissions creates a group of all users whose effective
// permissions in the invocation channel include all the given bits. The
// private policy decides the result in a private channel.
func HasChannelPermissions(required platform.PermissionSet, private PrivatePolicy) Group {
	return GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		ch, err := cc.Channel(ctx)
		if err != nil {
			return false, err
		}
		perms, err := ch.EffectivePermissions(ctx, cc.Caller().ID())
		if errors.Is(err, platform.ErrNotFound) {
			return private == PrivateAllow, nil
		}
		if err != nil {
			return false, err
		}
		return perms.Contains(required), nil
	})
}

func roleSet(roles []platform.ID) map[platform.ID]struct{} {
	s := make(map[platform.ID]struct{}, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}
