// internal/answer/space.go
// Package answer turns raw model completions into canonical answer tokens.
// Every benchmark variant declares an answer Space and an extraction Mode;
// extraction is a pure function of the completion text and that declaration.
package answer

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Refusal marks an explicit decline produced by the confidence gate.
	Refusal = "REFUSAL"
	// Invalid marks a completion from which no in-space answer could be read.
	Invalid = "INVALID"
)

// Space is the ordered set of canonical tokens a benchmark variant accepts.
// A numeric space is unbounded and accepts any canonicalized numeric string.
type Space struct {
	tokens  []string
	numeric bool
}

// Letters builds a space of consecutive single-letter tokens, e.g. Letters('A', 'D').
func Letters(from, to byte) Space {
	tokens := make([]string, 0, int(to-from)+1)
	for c := from; c <= to; c++ {
		tokens = append(tokens, string(c))
	}
	return Space{tokens: tokens}
}

// Digits builds a space of option-index tokens, e.g. Digits(0, 3) -> {"0".."3"}.
func Digits(lo, hi int) Space {
	tokens := make([]string, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		tokens = append(tokens, strconv.Itoa(i))
	}
	return Space{tokens: tokens}
}

// Labels builds a space of fixed word tokens, e.g. Labels("yes", "no", "maybe").
func Labels(labels ...string) Space {
	tokens := make([]string, len(labels))
	copy(tokens, labels)
	return Space{tokens: tokens}
}

// Numbers builds the unbounded numeric space.
func Numbers() Space {
	return Space{numeric: true}
}

// Numeric reports whether the space accepts arbitrary numeric strings.
func (s Space) Numeric() bool {
	return s.numeric
}

// Tokens returns a copy of the ordered token set. Numeric spaces return nil.
func (s Space) Tokens() []string {
	if s.numeric {
		return nil
	}
	out := make([]string, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Contains reports whether tok is a valid canonical answer for this space.
// Refusal and Invalid are bookkeeping tokens, never members of a space.
func (s Space) Contains(tok string) bool {
	if s.numeric {
		_, ok := CanonicalNumber(tok)
		return ok
	}
	for _, t := range s.tokens {
		if t == tok {
			return true
		}
	}
	return false
}

// CanonicalNumber normalizes a numeric string so "24.0", "24.00", "24"
// and "24,000" vs "24000" all compare equal. Grouping commas are stripped
// before parsing; ground truths keep them where extraction already does
// not. The second return is false when s is not a number.
func CanonicalNumber(s string) (string, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// NumericEqual compares two numeric strings under canonical equality.
// Non-numeric input on either side compares unequal.
func NumericEqual(a, b string) bool {
	ca, ok := CanonicalNumber(a)
	if !ok {
		return false
	}
	cb, ok := CanonicalNumber(b)
	if !ok {
		return false
	}
	return ca == cb
}

// String renders the space for logs and error messages.
func (s Space) String() string {
	if s.numeric {
		return "numeric"
	}
	return fmt.Sprintf("%v", s.tokens)
}
