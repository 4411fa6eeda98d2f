// internal/answer/extract.go
package answer

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Mode selects the extraction strategy for a benchmark variant.
type Mode int

const (
	// ModeNumeric reads the last number after the final-answer marker ("####").
	ModeNumeric Mode = iota
	// ModeLetter reads a labeled "Answer:" option letter, falling back to a
	// whole-text scan for isolated letters.
	ModeLetter
	// ModeDigit reads the last in-range option index digit.
	ModeDigit
	// ModeLabel reads a labeled "Answer:" word token (e.g. yes/no/maybe),
	// falling back to a whole-word scan.
	ModeLabel
)

// finalAnswerMarker separates chain-of-thought reasoning from the stated
// numeric answer in GSM8K-style completions.
const finalAnswerMarker = "####"

var numberRe = regexp.MustCompile(`-?\d+\.?\d*`)

var (
	reMu    sync.Mutex
	reCache = map[string]*regexp.Regexp{}
)

func compile(pattern string) *regexp.Regexp {
	reMu.Lock()
	defer reMu.Unlock()
	re, ok := reCache[pattern]
	if !ok {
		re = regexp.MustCompile(pattern)
		reCache[pattern] = re
	}
	return re
}

// Extract reads a canonical answer token from raw completion text. It is a
// pure, total function: unparseable input of any kind, including empty text,
// resolves to Invalid. When several candidates match, the last occurrence in
// the text wins, since the model's final stated answer follows its reasoning.
func Extract(text string, space Space, mode Mode) string {
	text = strings.TrimSpace(StripThinkBlocks(text))
	if text == "" {
		return Invalid
	}

	switch mode {
	case ModeNumeric:
		return extractNumber(text)
	case ModeLetter:
		return extractLetter(text, space)
	case ModeDigit:
		return extractDigit(text, space)
	case ModeLabel:
		return extractLabel(text, space)
	}
	return Invalid
}

func extractNumber(text string) string {
	if idx := strings.LastIndex(text, finalAnswerMarker); idx != -1 {
		text = text[idx+len(finalAnswerMarker):]
	}
	text = strings.ReplaceAll(text, ",", "")

	matches := numberRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return Invalid
	}
	canonical, ok := CanonicalNumber(matches[len(matches)-1])
	if !ok {
		return Invalid
	}
	return canonical
}

func extractLetter(text string, space Space) string {
	class := tokenClass(space)
	if class == "" {
		return Invalid
	}

	fieldRe := compile(`(?i)answer:\s*\(?([` + class + `])\)?`)
	if matches := fieldRe.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		return strings.ToUpper(matches[len(matches)-1][1])
	}

	scanRe := compile(`\b([` + class + `])\b`)
	if matches := scanRe.FindAllStringSubmatch(strings.ToUpper(text), -1); len(matches) > 0 {
		return matches[len(matches)-1][1]
	}
	return Invalid
}

func extractDigit(text string, space Space) string {
	class := tokenClass(space)
	if class == "" {
		return Invalid
	}
	re := compile(`[` + class + `]`)
	matches := re.FindAllString(text, -1)
	if len(matches) == 0 {
		return Invalid
	}
	return matches[len(matches)-1]
}

func extractLabel(text string, space Space) string {
	tokens := space.Tokens()
	if len(tokens) == 0 {
		return Invalid
	}
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = regexp.QuoteMeta(tok)
	}
	alternatives := strings.Join(quoted, "|")

	fieldRe := compile(`(?i)answer:\s*(` + alternatives + `)`)
	if matches := fieldRe.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		return canonicalLabel(matches[len(matches)-1][1], tokens)
	}

	scanRe := compile(`(?i)\b(` + alternatives + `)\b`)
	if matches := scanRe.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		return canonicalLabel(matches[len(matches)-1][1], tokens)
	}
	return Invalid
}

// canonicalLabel maps a case-insensitive match back to the declared token.
func canonicalLabel(matched string, tokens []string) string {
	for _, tok := range tokens {
		if strings.EqualFold(tok, matched) {
			return tok
		}
	}
	return Invalid
}

// tokenClass renders a space's single-character tokens as a regexp character
// class. Spaces with multi-character tokens yield an empty class.
func tokenClass(space Space) string {
	var b strings.Builder
	for _, tok := range space.Tokens() {
		if len(tok) != 1 {
			return ""
		}
		b.WriteString(regexp.QuoteMeta(tok))
	}
	return b.String()
}

// StripThinkBlocks removes <think>...</think> reasoning blocks emitted by
// thinking-tuned models before any extraction is attempted.
func StripThinkBlocks(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return trimmed
	}
	const startTag = "<think>"
	const endTag = "</think>"
	for {
		start := strings.Index(trimmed, startTag)
		if start == -1 {
			break
		}
		end := strings.Index(trimmed[start+len(startTag):], endTag)
		if end == -1 {
			break
		}
		end += start + len(startTag) + len(endTag)
		trimmed = strings.TrimSpace(trimmed[:start] + trimmed[end:])
	}
	return trimmed
}

func (m Mode) String() string {
	switch m {
	case ModeNumeric:
		return "numeric"
	case ModeLetter:
		return "letter"
	case ModeDigit:
		return "digit"
	case ModeLabel:
		return "label"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}
