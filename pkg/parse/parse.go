// Package parse implements argument parsing for commands: typed parsers with
// layered validation (choices, then range or length, then the user conversion
// function), parser chaining, and the declarative parameter model that drives
// them.
package parse

import (
	"context"
	"fmt"
	"strings"

	"modcmd/pkg/access"
)

// Value is a raw argument value before parsing: a string token for text
// invocations, or a typed value (string, int64, float64, bool,
// platform.Attachment) extracted from a structured interaction payload.
type Value any

// Parser converts a raw argument value into a typed value. Parsing may
// require remote lookups (entity resolution, attachment fetch) and so takes
// the invocation's access context.
//
// A parser rejects bad input with an *InvalidArgumentError; any other error
// is an evaluation fault, not a rejection.
type Parser[T any] interface {
	Parse(ctx context.Context, cc access.Context, raw Value) (T, error)
}

// ParserFunc is a bare conversion function, usable as the final stage of a
// parser or to chain parsers with Then.
type ParserFunc[R, T any] func(ctx context.Context, cc access.Context, raw R) (T, error)

// Greedy is implemented by parsers that consume the whole remaining input of
// a text invocation as a single raw value (free-form text, lists).
type Greedy interface {
	IsGreedy() bool
}

// InvalidArgumentError indicates that a raw argument value was rejected.
// It is a user error, reported back to the caller, never a fault.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

// Invalidf creates an InvalidArgumentError with a formatted reason.
func Invalidf(format string, args ...any) error {
	return &InvalidArgumentError{Reason: fmt.Sprintf(format, args...)}
}

// ItemError is a single failed entry of a list argument.
type ItemError struct {
	Raw string
	Err error
}

// InvalidListError aggregates the failed entries of a list argument, so every
// bad entry is reported at once instead of only the first.
type InvalidListError struct {
	Items []ItemError
}

func (e *InvalidListError) Error() string {
	parts := make([]string, len(e.Items))
	for i, item := range e.Items {
		parts[i] = fmt.Sprintf("%s: %v", item.Raw, item.Err)
	}
	return "invalid list entries: " + strings.Join(parts, "; ")
}

// Choice is one entry of an enumerated value set. Name is the label shown to
// users; validation compares against Value.
type Choice[T comparable] struct {
	Name  string
	Value T
}

// maxChoices is the largest allowed choice set, matching the platform limit.
const maxChoices = 25

func validateChoices[T comparable](choices []Choice[T]) {
	if len(choices) == 0 || len(choices) > maxChoices {
		panic(fmt.Sprintf("parse: choice set must have 1 to %d entries, got %d", maxChoices, len(choices)))
	}
}

func checkChoices[T comparable](choices []Choice[T], value T) error {
	if len(choices) == 0 {
		return nil
	}
	for _, c := range choices {
		if c.Value == value {
			return nil
		}
	}
	return Invalidf("value %v is not one of the allowed choices", value)
}

// Then chains a conversion after a parser: the parser's output becomes the
// raw input of next. A failure in either stage short-circuits and propagates
// untouched.
func Then[T, U any](p Parser[T], next ParserFunc[T, U]) Parser[U] {
	return parserFunc[U](func(ctx context.Context, cc access.Context, raw Value) (U, error) {
		var zero U
		v, err := p.Parse(ctx, cc, raw)
		if err != nil {
			return zero, err
		}
		return next(ctx, cc, v)
	})
}

// parserFunc adapts a function over raw Values to the Parser interface.
type parserFunc[T any] func(ctx context.Context, cc access.Context, raw Value) (T, error)

func (f parserFunc[T]) Parse(ctx context.Context, cc access.Context, raw Value) (T, error) {
	return f(ctx, cc, raw)
}

// Func creates a parser from a bare conversion over raw string tokens.
func Func[T any](fn ParserFunc[string, T]) Parser[T] {
	return parserFunc[T](func(ctx context.Context, cc access.Context, raw Value) (T, error) {
		var zero T
		s, err := toString(raw)
		if err != nil {
			return zero, err
		}
		return fn(ctx, cc, s)
	})
}
