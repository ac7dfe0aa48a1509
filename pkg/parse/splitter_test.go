package parse

import (
	"reflect"
	"testing"
)

func TestShellSplitterSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"single", "hello", []string{"hello"}},
		{"multiple", "one two three", []string{"one", "two", "three"}},
		{"extra whitespace", "  one \t two\nthree  ", []string{"one", "two", "three"}},
		{"double quotes", `say "hello world" now`, []string{"say", "hello world", "now"}},
		{"single quotes", "say 'hello world'", []string{"say", "hello world"}},
		{"backticks", "run `ls -la`", []string{"run", "ls -la"}},
		{"empty quoted", `a "" b`, []string{"a", "", "b"}},
		{"quote inside token", `it's fine`, []string{"it's", "fine"}},
		{"unterminated quote", `say "hello world`, []string{"say", `"hello world`}},
		{"unterminated quote alone", `"hello`, []string{`"hello`}},
		{"quote closing mid-token", `"ab"c d`, []string{`"ab"c d`}},
		{"quoted at end", `a "b c"`, []string{"a", "b c"}},
		{"nested other quotes", `"it's a 'test'"`, []string{"it's a 'test'"}},
	}

	var s ShellSplitter
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Split(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestShellSplitterNext(t *testing.T) {
	var s ShellSplitter

	token, rest := s.Next(`first "second part" third`)
	if token != "first" {
		t.Errorf("Expected token %q, got %q", "first", token)
	}
	if rest != `"second part" third` {
		t.Errorf("Expected rest %q, got %q", `"second part" third`, rest)
	}

	token, rest = s.Next(rest)
	if token != "second part" {
		t.Errorf("Expected token %q, got %q", "second part", token)
	}
	if rest != "third" {
		t.Errorf("Expected rest %q, got %q", "third", rest)
	}

	token, rest = s.Next(rest)
	if token != "third" || rest != "" {
		t.Errorf("Expected final token %q with no rest, got %q, %q", "third", token, rest)
	}

	token, rest = s.Next("")
	if token != "" || rest != "" {
		t.Errorf("Expected empty token and rest, got %q, %q", token, rest)
	}

	// An unterminated quote consumes everything that remains, quote included.
	token, rest = s.Next(`"second part`)
	if token != `"second part` || rest != "" {
		t.Errorf("Expected unterminated quote to take the remaining text, got %q, %q", token, rest)
	}
}
