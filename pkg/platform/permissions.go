package platform

import "strings"

// PermissionSet is a bit set of platform permissions. The bit layout matches
// the Discord permission flags, but the framework only interprets the bits it
// names below; adapters may pass through any platform-specific bits.
type PermissionSet int64

// Permission bits understood by the framework.
const (
	PermissionAdministrator PermissionSet = 1 << 3
	PermissionManageGuild   PermissionSet = 1 << 5
	PermissionKickMembers   PermissionSet = 1 << 1
	PermissionBanMembers    PermissionSet = 1 << 2
	PermissionManageMessage PermissionSet = 1 << 13
)

// Contains reports whether every bit in other is set in the set.
func (p PermissionSet) Contains(other PermissionSet) bool {
	return p&other == other
}

// Add returns the union of the two sets.
func (p PermissionSet) Add(other PermissionSet) PermissionSet {
	return p | other
}

// Missing returns the bits of required that are not present in the set.
func (p PermissionSet) Missing(required PermissionSet) PermissionSet {
	return required &^ p
}

func (p PermissionSet) String() string {
	names := []struct {
		bit  PermissionSet
		name string
	}{
		{PermissionAdministrator, "administrator"},
		{PermissionManageGuild, "manage-guild"},
		{PermissionKickMembers, "kick-members"},
		{PermissionBanMembers, "ban-members"},
		{PermissionManageMessage, "manage-messages"},
	}

	var have []string
	rest := p
	for _, n := range names {
		if p.Contains(n.bit) {
			have = append(have, n.name)
			rest &^= n.bit
		}
	}
	if rest != 0 {
		have = append(have, "other")
	}
	if len(have) == 0 {
		return "none"
	}
	return strings.Join(have, ",")
}
