// internal/answer/gate.go
package answer

import (
	"regexp"
	"strconv"
)

// confidenceRe matches the self-reported certainty field the gated prompt
// formats instruct the model to emit, e.g. "Confidence: 0.85".
var confidenceRe = regexp.MustCompile(`Confidence:\s*([0-1]?\.\d+)`)

// Gate applies a refusal policy on top of extraction: a completion whose
// self-reported confidence falls below Threshold is recorded as a Refusal
// without ever looking at its answer field. Low certainty overrides content,
// even a well-formed answer.
type Gate struct {
	Threshold float64
}

// Decide parses the confidence score and either refuses or delegates to
// Extract. Above the threshold, a completion with no readable answer is
// still a Refusal rather than Invalid: under a gated exam policy, failing
// to state an answer and declining to answer are the same outcome.
func (g Gate) Decide(text string, space Space, mode Mode) (string, float64) {
	if text == "" {
		return Refusal, 0
	}

	confidence := ParseConfidence(text)
	if confidence < g.Threshold {
		return Refusal, confidence
	}

	tok := Extract(text, space, mode)
	if tok == Invalid {
		return Refusal, confidence
	}
	return tok, confidence
}

// ParseConfidence reads the self-reported confidence score from completion
// text. Missing or malformed fields default to 0.0, and scores are clamped
// to the declared [0, 1] range.
func ParseConfidence(text string) float64 {
	m := confidenceRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	score, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
