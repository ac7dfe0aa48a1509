package parse

import (
	"context"
	"fmt"
	"regexp"

	"modcmd/pkg/access"
)

// Parameter is the type-erased view of a command parameter, as carried by a
// command definition. Declaration order determines positional matching for
// text invocations; the name matches arguments of interaction payloads.
type Parameter interface {
	// Name is the identifier of the parameter, unique within a command.
	Name() string
	// Description is the user-facing description of the parameter.
	Description() string
	// Required reports whether an invocation must provide a value.
	Required() bool
	// HasDefault reports whether a default value stands in when the argument
	// is missing. Only optional parameters may carry a default.
	HasDefault() bool
	// DefaultValue returns the default, or nil when there is none. The
	// default is used as-is, without running the parser.
	DefaultValue() any
	// Greedy reports whether the parser consumes all remaining text input.
	Greedy() bool
	// Parse runs the parameter's parser on a raw argument value.
	Parse(ctx context.Context, cc access.Context, raw Value) (any, error)
}

var nameRE = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

const maxDescription = 100

// Param is a typed command parameter bound to a parser.
type Param[T any] struct {
	name        string
	description string
	required    bool
	def         *T
	parser      Parser[T]
}

// NewParam creates a required parameter. Panics on an invalid definition;
// parameters are startup configuration.
func NewParam[T any](name, description string, parser Parser[T]) *Param[T] {
	return newParam(name, description, true, nil, parser)
}

// NewOptionalParam creates an optional parameter with no default. A missing
// argument yields no entry for the parameter.
func NewOptionalParam[T any](name, description string, parser Parser[T]) *Param[T] {
	return newParam(name, description, false, nil, parser)
}

// NewDefaultParam creates an optional parameter whose value falls back to def
// when the argument is missing.
func NewDefaultParam[T any](name, description string, def T, parser Parser[T]) *Param[T] {
	return newParam(name, description, false, &def, parser)
}

func newParam[T any](name, description string, required bool, def *T, parser Parser[T]) *Param[T] {
	if !nameRE.MatchString(name) {
		panic(fmt.Sprintf("parse: invalid parameter name %q", name))
	}
	if len(description) == 0 || len(description) > maxDescription {
		panic(fmt.Sprintf("parse: parameter %q description must be 1 to %d characters", name, maxDescription))
	}
	if parser == nil {
		panic(fmt.Sprintf("parse: parameter %q has no parser", name))
	}
	return &Param[T]{
		name:        name,
		description: description,
		required:    required,
		def:         def,
		parser:      parser,
	}
}

func (p *Param[T]) Name() string        { return p.name }
func (p *Param[T]) Description() string { return p.description }
func (p *Param[T]) Required() bool      { return p.required }
func (p *Param[T]) HasDefault() bool    { return p.def != nil }

func (p *Param[T]) DefaultValue() any {
	if p.def == nil {
		return nil
	}
	return *p.def
}

func (p *Param[T]) Greedy() bool {
	if g, ok := p.parser.(Greedy); ok {
		return g.IsGreedy()
	}
	return false
}

func (p *Param[T]) Parse(ctx context.Context, cc access.Context, raw Value) (any, error) {
	return p.parser.Parse(ctx, cc, raw)
}
