// internal/harness/harness.go
// Package harness drives one full benchmark pass: it pulls records from the
// dataset, dispatches prompts, scores completions, and hands the scored
// items to the report aggregator. Every per-item stage is terminal: a
// failed dispatch or an unparseable completion still produces a scored
// item, never an aborted run.
package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/mwiater/medbench/internal/answer"
	"github.com/mwiater/medbench/internal/dataset"
	"github.com/mwiater/medbench/internal/ollama"
	"github.com/mwiater/medbench/internal/report"
	"github.com/mwiater/medbench/internal/suite"
)

// Dispatcher issues one conversation to the model endpoint. Implementations
// soft-fail: the returned QueryResult reports transport problems instead of
// an error.
type Dispatcher interface {
	Chat(ctx context.Context, conversation []ollama.Message, opts ollama.Options) ollama.QueryResult
}

// Options are the per-run knobs. Zero values fall back to the suite's
// defaults (Questions) or the reference behavior (Workers 1, NumCtx 4096).
type Options struct {
	Questions   int
	Workers     int
	Temperature float64
	NumCtx      int

	// Threshold overrides the suite's confidence threshold on gated
	// suites. Nil keeps the suite default; an explicit 0 is honored and
	// means the gate never refuses on confidence alone.
	Threshold *float64
}

// Observer is invoked once per completed item, in completion order.
type Observer func(item report.ScoredItem, total int)

// Run executes one benchmark pass and returns the scored items in record
// order together with their summary. A cancelled context stops dispatching
// between items; the items completed so far are returned alongside the
// context's error, so a partial summary is always computable.
func Run(ctx context.Context, s suite.Suite, ds dataset.Dataset, client Dispatcher, opts Options, observe Observer) ([]report.ScoredItem, report.Summary, error) {
	if opts.Questions <= 0 {
		opts.Questions = s.Questions
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.NumCtx <= 0 {
		opts.NumCtx = 4096
	}
	threshold := s.Threshold
	if opts.Threshold != nil {
		threshold = *opts.Threshold
	}

	records, err := fetch(ds, opts.Questions)
	if err != nil {
		return nil, report.Summary{}, err
	}

	results := make([]report.ScoredItem, len(records))
	done := make([]bool, len(records))

	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex

	// Workers doubles as the in-flight request cap: the endpoint is a
	// shared resource and unbounded fan-out is never acceptable.
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				item := evaluate(ctx, s, records[idx], client, opts, threshold)
				mu.Lock()
				results[idx] = item
				done[idx] = true
				if observe != nil {
					observe(item, len(records))
				}
				mu.Unlock()
			}
		}()
	}

dispatch:
	for idx := range records {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	completed := make([]report.ScoredItem, 0, len(records))
	for idx := range results {
		if done[idx] {
			completed = append(completed, results[idx])
		}
	}
	return completed, report.Summarize(completed, s.Space), ctx.Err()
}

// fetch pulls up to limit records. Early exhaustion ends the run normally.
func fetch(ds dataset.Dataset, limit int) ([]dataset.Record, error) {
	records := make([]dataset.Record, 0, limit)
	for len(records) < limit {
		rec, err := ds.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// evaluate runs one record through dispatch, parse/gate, and scoring.
func evaluate(ctx context.Context, s suite.Suite, rec dataset.Record, client Dispatcher, opts Options, threshold float64) report.ScoredItem {
	conversation := s.Conversation(rec, threshold)
	res := client.Chat(ctx, conversation, ollama.Options{
		Temperature: opts.Temperature,
		NumCtx:      opts.NumCtx,
	})

	truth := s.GroundTruth(rec)
	item := report.ScoredItem{
		ID:              rec.ID,
		Question:        rec.Question,
		Truth:           truth,
		LatencySeconds:  res.LatencySeconds,
		TokenCount:      res.TokenCount,
		TokensPerSecond: res.TokensPerSecond,
		ErrorDetail:     res.ErrorDetail,
		FullResponse:    res.Content,
	}

	if res.Failed {
		if s.Gated {
			item.Prediction = answer.Refusal
		} else {
			item.Prediction = answer.Invalid
		}
		return item
	}

	if s.Gated {
		gate := answer.Gate{Threshold: threshold}
		item.Prediction, item.Confidence = gate.Decide(res.Content, s.Space, s.Mode)
	} else {
		item.Prediction = answer.Extract(res.Content, s.Space, s.Mode)
	}

	item.Correct = isCorrect(s.Space, item.Prediction, truth)
	return item
}

// isCorrect compares a prediction against ground truth. Numeric spaces use
// canonicalized-float equality so "24.0" matches "24"; everything else is
// exact match on the canonical token.
func isCorrect(space answer.Space, prediction, truth string) bool {
	if prediction == answer.Refusal || prediction == answer.Invalid {
		return false
	}
	if space.Numeric() {
		return answer.NumericEqual(prediction, truth)
	}
	return prediction == truth
}
