package parse

import "strings"

// Splitter breaks the raw text of a message invocation into argument tokens.
type Splitter interface {
	// Split breaks the given text into tokens. Empty input yields no tokens.
	Split(text string) []string
	// Next takes the first token off the given text, returning the token and
	// the remaining unconsumed text. Empty input yields an empty token.
	Next(text string) (token, rest string)
}

// ShellSplitter splits arguments the way a command shell does: tokens are
// separated by runs of whitespace, and a token that starts with a quote
// character (single, double, or backtick) extends to the matching closing
// quote, whitespace included. An unterminated quote extends to the end of the
// input, with the quote character kept.
type ShellSplitter struct{}

const quoteChars = "'\"`"

// Split implements Splitter.
func (s ShellSplitter) Split(text string) []string {
	var tokens []string
	rest := strings.TrimSpace(text)
	for rest != "" {
		var token string
		token, rest = s.Next(rest)
		tokens = append(tokens, token)
	}
	return tokens
}

// Next implements Splitter.
func (s ShellSplitter) Next(text string) (string, string) {
	text = strings.TrimLeft(text, " \t\n")
	if text == "" {
		return "", ""
	}
	if strings.ContainsRune(quoteChars, rune(text[0])) {
		end := closingQuote(text)
		if end == 0 {
			// Unterminated quote, the token is everything that remains.
			return text, ""
		}
		token := text[1:end]
		rest := strings.TrimLeft(text[end+1:], " \t\n")
		return token, rest
	}
	if end := strings.IndexAny(text, " \t\n"); end >= 0 {
		return text[:end], strings.TrimLeft(text[end:], " \t\n")
	}
	return text, ""
}

// closingQuote finds the quote that ends the token starting at text[0], which
// must be a quote character. A quote only closes the token when it is the last
// character or is followed by whitespace. Returns 0 when unterminated.
func closingQuote(text string) int {
	quote := text[0]
	for i := 1; i < len(text); i++ {
		if text[i] != quote {
			continue
		}
		if i == len(text)-1 || text[i+1] == ' ' || text[i+1] == '\t' || text[i+1] == '\n' {
			return i
		}
	}
	return 0
}
