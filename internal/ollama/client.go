// internal/ollama/client.go
// Package ollama dispatches benchmark conversations to an Ollama-compatible
// chat endpoint and normalizes every outcome, success or failure, into a
// QueryResult so a single bad request never aborts a run.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/medbench/internal/logging"
)

// Message is one role-tagged turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options carries the sampling parameters the benchmark scripts vary.
type Options struct {
	Temperature float64
	NumCtx      int
}

// QueryResult is the uniform record produced by every dispatch call.
// Failed results carry empty content, zero timings, and an ErrorDetail;
// they are never mutated after creation.
type QueryResult struct {
	Content         string
	LatencySeconds  float64
	TokenCount      int
	TokensPerSecond float64
	Failed          bool
	ErrorDetail     string
}

// chatResponse mirrors the non-streaming /api/chat reply. Durations are in
// nanoseconds, matching the Ollama wire format.
type chatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done         bool  `json:"done"`
	EvalCount    int   `json:"eval_count"`
	EvalDuration int64 `json:"eval_duration"`
}

// Client issues chat requests against a single host/model pair.
type Client struct {
	client  *http.Client
	baseURL string
	model   string
	timeout time.Duration
}

// NewClient constructs a Client with a per-request timeout.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		timeout: timeout,
	}
}

// Model returns the model identifier the client dispatches to.
func (c *Client) Model() string {
	return c.model
}

// Chat sends one conversation to /api/chat with streaming disabled and
// returns a QueryResult. Transport errors, non-success statuses, timeouts,
// and malformed bodies all soft-fail; they are reported in ErrorDetail
// rather than returned as errors.
func (c *Client) Chat(ctx context.Context, conversation []Message, opts Options) QueryResult {
	payload := map[string]any{
		"model":    c.model,
		"messages": conversation,
		"stream":   false,
		"options": map[string]any{
			"temperature": opts.Temperature,
			"num_ctx":     opts.NumCtx,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return failedResult(fmt.Errorf("marshal chat payload: %w", err))
	}
	logging.LogRequest("MEDBENCH->LLM", c.baseURL, c.model, body)

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return failedResult(fmt.Errorf("create chat request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return failedResult(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return failedResult(err)
	}
	logging.LogRequest("LLM->MEDBENCH", c.baseURL, c.model, respBody)

	if resp.StatusCode != http.StatusOK {
		return failedResult(fmt.Errorf("/api/chat returned %s: %s", resp.Status, strings.TrimSpace(string(respBody))))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return failedResult(fmt.Errorf("decode chat response: %w", err))
	}

	latency := time.Since(start).Seconds()
	var tps float64
	if result.EvalDuration > 0 {
		tps = float64(result.EvalCount) / (float64(result.EvalDuration) / 1e9)
	}

	return QueryResult{
		Content:         result.Message.Content,
		LatencySeconds:  latency,
		TokenCount:      result.EvalCount,
		TokensPerSecond: tps,
	}
}

// EnsureModelReady pokes /api/generate with the bare model name so the host
// loads the model before the timed run begins. Unlike Chat, readiness
// failures are hard errors: the run should not start against a cold host.
func (c *Client) EnsureModelReady(ctx context.Context) error {
	body, err := json.Marshal(map[string]any{"model": c.model})
	if err != nil {
		return err
	}
	logging.LogRequest("MEDBENCH->LLM", c.baseURL, c.model, body)

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	logging.LogRequest("LLM->MEDBENCH", c.baseURL, c.model, respBody)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: /api/generate returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	return nil
}

func failedResult(err error) QueryResult {
	return QueryResult{
		Failed:      true,
		ErrorDetail: err.Error(),
	}
}
