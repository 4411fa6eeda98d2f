// internal/report/report.go
// Package report reduces per-question results into run summaries and emits
// the persisted result log and the console dashboard.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/mwiater/medbench/internal/answer"
)

// ScoredItem records the outcome of one benchmark question. Items are
// append-only: created once, never mutated, and the summary is always
// recomputable from the item sequence alone.
type ScoredItem struct {
	ID              int     `json:"id"`
	Question        string  `json:"question"`
	Truth           string  `json:"truth"`
	Prediction      string  `json:"prediction"`
	Confidence      float64 `json:"confidence,omitempty"`
	Correct         bool    `json:"correct"`
	LatencySeconds  float64 `json:"latency_seconds"`
	TokenCount      int     `json:"output_tokens,omitempty"`
	TokensPerSecond float64 `json:"tokens_per_second"`
	ErrorDetail     string  `json:"error_detail,omitempty"`
	FullResponse    string  `json:"full_model_response"`
}

// Summary is the derived, read-only view over a run's scored items.
type Summary struct {
	Total        int            `json:"total"`
	Correct      int            `json:"correct"`
	AccuracyPct  float64        `json:"accuracy_pct"`
	RefusalPct   float64        `json:"refusal_pct"`
	TotalLatency float64        `json:"total_latency_seconds"`
	MeanLatency  float64        `json:"mean_latency_seconds"`
	MeanTPS      float64        `json:"mean_tokens_per_second"`
	Distribution map[string]int `json:"distribution"`
}

// Summarize reduces scored items into a Summary. It is a pure function:
// calling it twice over the same items yields identical values. Every
// denominator is guarded, so an empty run reports zeros rather than NaN.
func Summarize(items []ScoredItem, space answer.Space) Summary {
	dist := map[string]int{
		answer.Refusal: 0,
		answer.Invalid: 0,
	}
	for _, tok := range space.Tokens() {
		dist[tok] = 0
	}

	var totalLatency float64
	var totalTokens int
	correct := 0
	for _, item := range items {
		if _, known := dist[item.Prediction]; known {
			dist[item.Prediction]++
		} else if space.Numeric() && space.Contains(item.Prediction) {
			dist[item.Prediction]++
		} else {
			dist[answer.Invalid]++
		}
		if item.Correct {
			correct++
		}
		totalLatency += item.LatencySeconds
		totalTokens += item.TokenCount
	}

	s := Summary{
		Total:        len(items),
		Correct:      correct,
		TotalLatency: totalLatency,
		Distribution: dist,
	}
	if s.Total > 0 {
		s.AccuracyPct = 100 * float64(correct) / float64(s.Total)
		s.RefusalPct = 100 * float64(dist[answer.Refusal]) / float64(s.Total)
		s.MeanLatency = totalLatency / float64(s.Total)
	}
	if totalLatency > 0 {
		s.MeanTPS = float64(totalTokens) / totalLatency
	}
	return s
}

// Filename encodes a run's configuration into its result log name, e.g.
// "pubmedqa_T06_C75.json" for temperature 0.6 at threshold 0.75. Ungated
// runs omit the threshold segment.
func Filename(suiteName string, temperature float64, threshold *float64) string {
	temp := strings.ReplaceAll(fmt.Sprintf("%v", temperature), ".", "")
	name := fmt.Sprintf("%s_T%s", suiteName, temp)
	if threshold != nil {
		name = fmt.Sprintf("%s_C%d", name, int(*threshold*100))
	}
	return name + ".json"
}

// WriteLog persists the scored items as one JSON array, overwriting any
// previous log for the same configuration.
func WriteLog(path string, items []ScoredItem) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result log: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result log: %w", err)
	}
	return nil
}

// ReadLog loads a previously written result log.
func ReadLog(path string) ([]ScoredItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result log: %w", err)
	}
	var items []ScoredItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse result log %s: %w", path, err)
	}
	return items, nil
}

var (
	headerLine = color.New(color.FgCyan, color.Bold).SprintFunc()
	goodValue  = color.New(color.FgGreen).SprintFunc()
	warnValue  = color.New(color.FgYellow).SprintFunc()
)

// Print renders the final analytics dashboard for a completed run.
func Print(w io.Writer, suiteName, model string, s Summary) {
	fmt.Fprintf(w, "\n%s\n", headerLine(strings.Repeat("=", 30)+" BENCHMARK REPORT "+strings.Repeat("=", 30)))
	fmt.Fprintf(w, "Suite:                 %s\n", suiteName)
	fmt.Fprintf(w, "Model:                 %s\n", model)
	fmt.Fprintf(w, "Total Questions:       %d\n", s.Total)
	fmt.Fprintf(w, "Accuracy:              %s (%d/%d)\n", goodValue(fmt.Sprintf("%.2f%%", s.AccuracyPct)), s.Correct, s.Total)
	if s.Distribution[answer.Refusal] > 0 {
		fmt.Fprintf(w, "Abstention Rate:       %s\n", warnValue(fmt.Sprintf("%.2f%%", s.RefusalPct)))
	}
	fmt.Fprintf(w, "Total Benchmark Time:  %.2f seconds\n", s.TotalLatency)
	fmt.Fprintf(w, "Avg Time Per Question: %.2f seconds\n", s.MeanLatency)
	fmt.Fprintf(w, "Avg Generation Speed:  %.2f tokens/second\n", s.MeanTPS)
	fmt.Fprintf(w, "Distribution:          %s\n", formatDistribution(s.Distribution))
	fmt.Fprintln(w, strings.Repeat("=", 78))
}

// formatDistribution renders buckets sorted by token for stable output.
func formatDistribution(dist map[string]int) string {
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, dist[k]))
	}
	return strings.Join(parts, " ")
}
