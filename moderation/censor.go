// Package moderation groups the administrative controls of the chat:
// forced removal of a participant and censoring of chat lines.
package moderation

import (
	_ "embed"
	"strings"
	"unicode"

	"chatline/errors"

	goahocorasick "github.com/anknown/ahocorasick"
)

//go:embed words.txt
var defaultWords string

// Censor replaces forbidden words in chat lines before they reach the
// history and the fan-out. Matching is case-insensitive via an
// Aho-Corasick automaton built once at construction.
type Censor struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewCensor builds the automaton from the given word list.
func NewCensor(words []string, replacement rune) (*Censor, error) {
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		patterns = append(patterns, lowerRunes([]rune(w)))
	}
	if len(patterns) == 0 {
		return nil, errors.ErrEmptyWords
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Censor{matcher: m, replacement: replacement}, nil
}

// NewDefaultCensor builds a censor from the embedded word list.
func NewDefaultCensor(replacement rune) (*Censor, error) {
	return NewCensor(strings.Split(defaultWords, "\n"), replacement)
}

// Clean returns the text with every matched word replaced by the
// replacement rune, preserving length and spacing.
func (c *Censor) Clean(text string) string {
	original := []rune(text)
	spans := c.matcher.MultiPatternSearch(lowerRunes(original), false)
	if len(spans) == 0 {
		return text
	}

	for _, span := range spans {
		end := span.Pos + len(span.Word)
		if span.Pos < 0 || end > len(original) {
			continue
		}
		for i := span.Pos; i < end; i++ {
			original[i] = c.replacement
		}
	}
	return string(original)
}

// lowerRunes lowercases rune by rune so that match positions line up with
// the original text.
func lowerRunes(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}
