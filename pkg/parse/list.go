package parse

import (
	"context"

	"modcmd/pkg/access"
)

// ListParser parses a sequence of values from the remaining text of an
// invocation, applying an item parser to each whitespace-separated entry.
// Item failures are collected so every bad entry is reported at once.
type ListParser[T any] struct {
	item     Parser[T]
	splitter Splitter
	min, max *int
}

// List creates a parser for a list of values.
func List[T any](item Parser[T]) *ListParser[T] {
	return &ListParser[T]{item: item, splitter: ShellSplitter{}}
}

// MinItems sets the inclusive minimum number of entries.
func (p *ListParser[T]) MinItems(n int) *ListParser[T] {
	p.min = &n
	return p
}

// MaxItems sets the inclusive maximum number of entries.
func (p *ListParser[T]) MaxItems(n int) *ListParser[T] {
	p.max = &n
	return p
}

// IsGreedy implements Greedy. A list always consumes the remaining input.
func (p *ListParser[T]) IsGreedy() bool { return true }

// Parse implements Parser.
func (p *ListParser[T]) Parse(ctx context.Context, cc access.Context, raw Value) ([]T, error) {
	text, err := toString(raw)
	if err != nil {
		return nil, err
	}
	entries := p.splitter.Split(text)
	if p.min != nil && len(entries) < *p.min {
		return nil, Invalidf("expected at least %d entries, got %d", *p.min, len(entries))
	}
	if p.max != nil && len(entries) > *p.max {
		return nil, Invalidf("expected at most %d entries, got %d", *p.max, len(entries))
	}

	values := make([]T, 0, len(entries))
	var failed []ItemError
	for _, entry := range entries {
		v, err := p.item.Parse(ctx, cc, entry)
		if err != nil {
			failed = append(failed, ItemError{Raw: entry, Err: err})
			continue
		}
		values = append(values, v)
	}
	if len(failed) > 0 {
		return nil, &InvalidListError{Items: failed}
	}
	return values, nil
}
