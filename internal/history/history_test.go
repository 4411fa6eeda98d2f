// internal/history/history_test.go
package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mwiater/medbench/internal/report"
)

func memoryStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:): %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveAndList(t *testing.T) {
	t.Parallel()

	st := memoryStore(t)
	ctx := context.Background()
	threshold := 0.75

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	id, err := st.Save(ctx, Run{
		Suite:       "PubMedQA",
		Model:       "meditron:7b",
		Temperature: 0.6,
		Threshold:   &threshold,
		ResultsPath: "results/pubmedqa_T06_C75.json",
		StartedAt:   started,
		FinishedAt:  started.Add(5 * time.Minute),
	}, report.Summary{
		Total:       50,
		Correct:     32,
		AccuracyPct: 64.0,
		RefusalPct:  12.0,
		MeanLatency: 3.5,
		MeanTPS:     41.2,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == 0 {
		t.Fatal("expected nonzero run id")
	}

	runs, err := st.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.Suite != "pubmedqa" {
		t.Fatalf("suite not normalized: %q", got.Suite)
	}
	if got.Model != "meditron:7b" || got.Total != 50 || got.Correct != 32 {
		t.Fatalf("unexpected run row: %+v", got)
	}
	if got.Threshold == nil || *got.Threshold != 0.75 {
		t.Fatalf("threshold not round-tripped: %v", got.Threshold)
	}
	if !got.FinishedAt.Equal(started.Add(5 * time.Minute)) {
		t.Fatalf("finished_at mismatch: %v", got.FinishedAt)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	t.Parallel()

	st := memoryStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, suiteName := range []string{"gsm8k", "usmle", "gsm8k"} {
		_, err := st.Save(ctx, Run{
			Suite:      suiteName,
			Model:      "meditron:7b",
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
		}, report.Summary{Total: 25, Correct: 10 + i})
		if err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	runs, err := st.List(ctx, "gsm8k", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 gsm8k runs, got %d", len(runs))
	}
	if runs[0].Correct != 12 || runs[1].Correct != 10 {
		t.Fatalf("expected newest-first ordering, got %d then %d", runs[0].Correct, runs[1].Correct)
	}

	limited, err := st.List(ctx, "", 1)
	if err != nil {
		t.Fatalf("List limit: %v", err)
	}
	if len(limited) != 1 || limited[0].Suite != "gsm8k" {
		t.Fatalf("expected single newest run, got %+v", limited)
	}

	none, err := st.List(ctx, "medqa", 0)
	if err != nil {
		t.Fatalf("List medqa: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no medqa runs, got %d", len(none))
	}
}

func TestThresholdNullRoundTrip(t *testing.T) {
	t.Parallel()

	st := memoryStore(t)
	ctx := context.Background()

	if _, err := st.Save(ctx, Run{Suite: "mmlu", Model: "m", StartedAt: time.Now(), FinishedAt: time.Now()}, report.Summary{Total: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	runs, err := st.List(ctx, "mmlu", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if runs[0].Threshold != nil {
		t.Fatalf("expected nil threshold for ungated run, got %v", *runs[0].Threshold)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "medbench.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	defer st.Close()

	if _, err := st.List(context.Background(), "", 0); err != nil {
		t.Fatalf("List on fresh db: %v", err)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
