package parse

import (
	"context"

	"modcmd/pkg/access"
)

// IntegerParser parses integer arguments with optional choice and range
// validation, applied in that order, before the conversion function runs.
type IntegerParser[T any] struct {
	choices  []Choice[int64]
	min, max *int64
	convert  ParserFunc[int64, T]
}

// Integer creates a parser for plain integer values.
func Integer() *IntegerParser[int64] {
	return IntegerFunc(identity[int64])
}

// IntegerFunc creates an integer parser with a custom conversion function.
func IntegerFunc[T any](fn ParserFunc[int64, T]) *IntegerParser[T] {
	return &IntegerParser[T]{convert: fn}
}

// Choices restricts the accepted values to an enumerated set of 1 to 25
// entries. Panics on an invalid set; choice sets are startup configuration.
func (p *IntegerParser[T]) Choices(choices ...Choice[int64]) *IntegerParser[T] {
	validateChoices(choices)
	p.choices = choices
	return p
}

// AtLeast sets the inclusive minimum accepted value.
func (p *IntegerParser[T]) AtLeast(min int64) *IntegerParser[T] {
	p.min = &min
	return p
}

// AtMost sets the inclusive maximum accepted value.
func (p *IntegerParser[T]) AtMost(max int64) *IntegerParser[T] {
	p.max = &max
	return p
}

// Between sets the inclusive accepted range.
func (p *IntegerParser[T]) Between(min, max int64) *IntegerParser[T] {
	return p.AtLeast(min).AtMost(max)
}

// Parse implements Parser.
func (p *IntegerParser[T]) Parse(ctx context.Context, cc access.Context, raw Value) (T, error) {
	var zero T
	v, err := toInt64(raw)
	if err != nil {
		return zero, err
	}
	if err := checkChoices(p.choices, v); err != nil {
		return zero, err
	}
	if p.min != nil && v < *p.min {
		return zero, Invalidf("value %d is below the minimum of %d", v, *p.min)
	}
	if p.max != nil && v > *p.max {
		return zero, Invalidf("value %d is above the maximum of %d", v, *p.max)
	}
	return p.convert(ctx, cc, v)
}

// FloatParser parses floating-point arguments with optional choice and range
// validation.
type FloatParser[T any] struct {
	choices  []Choice[float64]
	min, max *float64
	convert  ParserFunc[float64, T]
}

// Float creates a parser for plain floating-point values.
func Float() *FloatParser[float64] {
	return FloatFunc(identity[float64])
}

// FloatFunc creates a float parser with a custom conversion function.
func FloatFunc[T any](fn ParserFunc[float64, T]) *FloatParser[T] {
	return &FloatParser[T]{convert: fn}
}

// Choices restricts the accepted values to an enumerated set of 1 to 25
// entries. Panics on an invalid set.
func (p *FloatParser[T]) Choices(choices ...Choice[float64]) *FloatParser[T] {
	validateChoices(choices)
	p.choices = choices
	return p
}

// AtLeast sets the inclusive minimum accepted value.
func (p *FloatParser[T]) AtLeast(min float64) *FloatParser[T] {
	p.min = &min
	return p
}

// AtMost sets the inclusive maximum accepted value.
func (p *FloatParser[T]) AtMost(max float64) *FloatParser[T] {
	p.max = &max
	return p
}

// Between sets the inclusive accepted range.
func (p *FloatParser[T]) Between(min, max float64) *FloatParser[T] {
	return p.AtLeast(min).AtMost(max)
}

// Parse implements Parser.
func (p *FloatParser[T]) Parse(ctx context.Context, cc access.Context, raw Value) (T, error) {
	var zero T
	v, err := toFloat64(raw)
	if err != nil {
		return zero, err
	}
	if err := checkChoices(p.choices, v); err != nil {
		return zero, err
	}
	if p.min != nil && v < *p.min {
		return zero, Invalidf("value %v is below the minimum of %v", v, *p.min)
	}
	if p.max != nil && v > *p.max {
		return zero, Invalidf("value %v is above the maximum of %v", v, *p.max)
	}
	return p.convert(ctx, cc, v)
}

// StringParser parses string arguments with optional choice and length
// validation. Length bounds are in characters (runes), not bytes.
type StringParser[T any] struct {
	choices        []Choice[string]
	minLen, maxLen *int
	greedy         bool
	convert        ParserFunc[string, T]
}

// String creates a parser for plain string values.
func String() *StringParser[string] {
	return StringFunc(identity[string])
}

// StringFunc creates a string parser with a custom conversion function.
func StringFunc[T any](fn ParserFunc[string, T]) *StringParser[T] {
	return &StringParser[T]{convert: fn}
}

// Text creates a string parser that consumes the whole remaining input of a
// text invocation as one value, instead of a single token.
func Text() *StringParser[string] {
	p := String()
	p.greedy = true
	return p
}

// Choices restricts the accepted values to an enumerated set of 1 to 25
// entries. Panics on an invalid set.
func (p *StringParser[T]) Choices(choices ...Choice[string]) *StringParser[T] {
	validateChoices(choices)
	p.choices = choices
	return p
}

// MinLength sets the inclusive minimum accepted length.
func (p *StringParser[T]) MinLength(n int) *StringParser[T] {
	p.minLen = &n
	return p
}

// MaxLength sets the inclusive maximum accepted length.
func (p *StringParser[T]) MaxLength(n int) *StringParser[T] {
	p.maxLen = &n
	return p
}

// IsGreedy implements Greedy.
func (p *StringParser[T]) IsGreedy() bool { return p.greedy }

// Parse implements Parser.
func (p *StringParser[T]) Parse(ctx context.Context, cc access.Context, raw Value) (T, error) {
	var zero T
	v, err := toString(raw)
	if err != nil {
		return zero, err
	}
	if err := checkChoices(p.choices, v); err != nil {
		return zero, err
	}
	length := len([]rune(v))
	if p.minLen != nil && length < *p.minLen {
		return zero, Invalidf("value must be at least %d characters, got %d", *p.minLen, length)
	}
	if p.maxLen != nil && length > *p.maxLen {
		return zero, Invalidf("value must be at most %d characters, got %d", *p.maxLen, length)
	}
	return p.convert(ctx, cc, v)
}

// BoolParser parses boolean arguments.
type BoolParser[T any] struct {
	convert ParserFunc[bool, T]
}

// Bool creates a parser for boolean values.
func Bool() *BoolParser[bool] {
	return BoolFunc(identity[bool])
}

// BoolFunc creates a boolean parser with a custom conversion function.
func BoolFunc[T any](fn ParserFunc[bool, T]) *BoolParser[T] {
	return &BoolParser[T]{convert: fn}
}

// Parse implements Parser.
func (p *BoolParser[T]) Parse(ctx context.Context, cc access.Context, raw Value) (T, error) {
	var zero T
	v, err := toBool(raw)
	if err != nil {
		return zero, err
	}
	return p.convert(ctx, cc, v)
}

func identity[T any](ctx context.Context, cc access.Context, v T) (T, error) {
	return v, nil
}
