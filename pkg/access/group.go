package access

import (
	"context"

	"modcmd/pkg/platform"
)

// Group is a set of users, defined as a predicate over the invocation
// context. Membership evaluation may require remote lookups and so may fail;
// a failed evaluation is not a denial, it is an error.
type Group interface {
	Belongs(ctx context.Context, cc Context) (bool, error)
}

// GroupFunc adapts a function to the Group interface.
type GroupFunc func(ctx context.Context, cc Context) (bool, error)

// Belongs calls f.
func (f GroupFunc) Belongs(ctx context.Context, cc Context) (bool, error) {
	return f(ctx, cc)
}

// NamedGroup is a group with a human-readable name, used when reporting a
// denial to the user.
type NamedGroup interface {
	Group
	Name() string
}

// Named attaches a name to a group. The underlying membership test is
// unchanged.
func Named(group Group, name string) NamedGroup {
	return &named{group: group, name: name}
}

type named struct {
	group Group
	name  string
}

func (n *named) Belongs(ctx context.Context, cc Context) (bool, error) {
	return n.group.Belongs(ctx, cc)
}

func (n *named) Name() string { return n.name }

// NameOf returns the group's name, or fallback if it has none.
func NameOf(group Group, fallback string) string {
	if n, ok := group.(NamedGroup); ok {
		return n.Name()
	}
	return fallback
}

// Any composes groups with OR semantics: a user belongs if they belong to any
// of the given groups. Evaluation short-circuits on the first membership, so
// later groups may never incur their remote lookups.
func Any(groups ...Group) Group {
	if len(groups) == 1 {
		return groups[0]
	}
	return GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		for _, g := range groups {
			ok, err := g.Belongs(ctx, cc)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	})
}

// All composes groups with AND semantics: a user belongs only if they belong
// to every one of the given groups. Evaluation short-circuits on the first
// non-membership.
func All(groups ...Group) Group {
	if len(groups) == 1 {
		return groups[0]
	}
	return GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		for _, g := range groups {
			ok, err := g.Belongs(ctx, cc)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	})
}

// GuildSupplier provides the target guild for a Remote group. The supplied
// value may change between evaluations.
type GuildSupplier func(ctx context.Context) (platform.ID, error)

// Remote decorates a group so that membership is always checked against the
// guild returned by the supplier rather than the guild the command was
// invoked in. The name of a named group is passed through.
func Remote(group Group, guild GuildSupplier) Group {
	r := GroupFunc(func(ctx context.Context, cc Context) (bool, error) {
		id, err := guild(ctx)
		if err != nil {
			return false, err
		}
		return group.Belongs(ctx, WithGuild(cc, id))
	})
	if n, ok := group.(NamedGroup); ok {
		return Named(r, n.Name())
	}
	return r
}
