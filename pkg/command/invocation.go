// Package command defines the command model: invocation paths, the immutable
// command value and its builder, handler types, and the closed result type
// that handlers produce.
package command

import "strings"

// Invocation is an ordered sequence of name tokens identifying a command's
// position in the command tree. The zero value is the root (empty) invocation.
// Invocations are immutable; Child and Parent return new values.
type Invocation struct {
	names []string
}

// NewInvocation creates an invocation from the given name tokens.
func NewInvocation(names ...string) Invocation {
	if len(names) == 0 {
		return Invocation{}
	}
	return Invocation{names: append([]string(nil), names...)}
}

// Child returns the invocation formed by appending name to this one.
func (i Invocation) Child(name string) Invocation {
	names := make([]string, 0, len(i.names)+1)
	names = append(names, i.names...)
	names = append(names, name)
	return Invocation{names: names}
}

// Parent returns the invocation with the last name removed. The parent of the
// root is the root.
func (i Invocation) Parent() Invocation {
	if len(i.names) == 0 {
		return Invocation{}
	}
	return Invocation{names: i.names[:len(i.names)-1]}
}

// Names returns a copy of the name tokens.
func (i Invocation) Names() []string {
	return append([]string(nil), i.names...)
}

// Len returns the number of name tokens.
func (i Invocation) Len() int { return len(i.names) }

// IsRoot reports whether this is the empty invocation.
func (i Invocation) IsRoot() bool { return len(i.names) == 0 }

// Last returns the final name token, or the empty string for the root.
func (i Invocation) Last() string {
	if len(i.names) == 0 {
		return ""
	}
	return i.names[len(i.names)-1]
}

// Equal reports whether both invocations have the same token sequence.
func (i Invocation) Equal(o Invocation) bool {
	if len(i.names) != len(o.names) {
		return false
	}
	for n := range i.names {
		if i.names[n] != o.names[n] {
			return false
		}
	}
	return true
}

// String returns the space-joined token sequence. Names cannot contain
// whitespace, so this is also usable as a map key.
func (i Invocation) String() string {
	return strings.Join(i.names, " ")
}
