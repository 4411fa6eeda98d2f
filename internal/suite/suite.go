// internal/suite/suite.go
// Package suite declares the benchmark variants: each one contributes an
// answer space, an extraction mode, its prompt scaffolding, and a dataset
// schema. The evaluation engine itself is variant-agnostic.
package suite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mwiater/medbench/internal/answer"
	"github.com/mwiater/medbench/internal/dataset"
	"github.com/mwiater/medbench/internal/ollama"
)

// Suite is one benchmark variant's declaration. Prompt receives the active
// confidence threshold so gated variants can state it in the constraint
// line; ungated variants ignore it.
type Suite struct {
	Name        string
	Description string
	Space       answer.Space
	Mode        answer.Mode

	// Gated marks confidence-gated variants; Threshold is their default.
	Gated     bool
	Threshold float64

	// Run defaults, overridable in configuration.
	Temperature float64
	Questions   int

	System  string
	FewShot []ollama.Message
	Schema  string

	Prompt func(rec dataset.Record, threshold float64) string
	Truth  func(rec dataset.Record) string
}

// Conversation assembles the full message sequence for one record: optional
// system turn, the fixed exemplar prefix, and the live user turn.
func (s Suite) Conversation(rec dataset.Record, threshold float64) []ollama.Message {
	msgs := make([]ollama.Message, 0, len(s.FewShot)+2)
	if s.System != "" {
		msgs = append(msgs, ollama.Message{Role: "system", Content: s.System})
	}
	msgs = append(msgs, s.FewShot...)
	msgs = append(msgs, ollama.Message{Role: "user", Content: s.Prompt(rec, threshold)})
	return msgs
}

// GroundTruth returns the canonical expected token for a record.
func (s Suite) GroundTruth(rec dataset.Record) string {
	if s.Truth != nil {
		return s.Truth(rec)
	}
	return strings.TrimSpace(rec.Truth)
}

var registry = map[string]Suite{}

func register(s Suite) {
	registry[s.Name] = s
}

// Lookup returns the named suite.
func Lookup(name string) (Suite, error) {
	s, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Suite{}, fmt.Errorf("unknown suite %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names lists the registered suites in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every registered suite, sorted by name.
func All() []Suite {
	suites := make([]Suite, 0, len(registry))
	for _, name := range Names() {
		suites = append(suites, registry[name])
	}
	return suites
}

// recordSchema builds the JSON Schema for a suite's dataset file: an array
// of record objects with the given required fields.
func recordSchema(required ...string) string {
	quoted := make([]string, len(required))
	for i, field := range required {
		quoted[i] = fmt.Sprintf("%q", field)
	}
	return fmt.Sprintf(`{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": [%s],
    "properties": {
      "id": {"type": "integer"},
      "question": {"type": "string"},
      "context": {"type": "string"},
      "options": {"type": "array", "items": {"type": "string"}, "minItems": 2},
      "truth": {"type": "string"}
    }
  }
}`, strings.Join(quoted, ", "))
}

// letterOptions renders options as "(A) text" lines.
func letterOptions(options []string) string {
	lines := make([]string, 0, len(options))
	for i, opt := range options {
		if i >= 26 {
			break
		}
		lines = append(lines, fmt.Sprintf("(%c) %s", 'A'+i, opt))
	}
	return strings.Join(lines, "\n")
}

// indexOptions renders options as "[0] text" lines.
func indexOptions(options []string) string {
	lines := make([]string, 0, len(options))
	for i, opt := range options {
		lines = append(lines, fmt.Sprintf("[%d] %s", i, opt))
	}
	return strings.Join(lines, "\n")
}
