// internal/ollama/client_test.go
package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestChatSuccess verifies a non-streaming chat round trip, including the
// tokens-per-second derivation from the endpoint's nanosecond durations.
func TestChatSuccess(t *testing.T) {
	t.Parallel()

	var capturedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		capturedBody = body
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"meditron:7b","message":{"role":"assistant","content":"Answer: B"},"done":true,"eval_count":50,"eval_duration":2000000000}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "meditron:7b", 5*time.Second)
	res := client.Chat(context.Background(), []Message{{Role: "user", Content: "question"}}, Options{Temperature: 0.6, NumCtx: 4096})

	if res.Failed {
		t.Fatalf("unexpected failure: %s", res.ErrorDetail)
	}
	if res.Content != "Answer: B" {
		t.Fatalf("unexpected content: %q", res.Content)
	}
	if res.TokenCount != 50 {
		t.Fatalf("unexpected token count: %d", res.TokenCount)
	}
	if res.TokensPerSecond != 25 {
		t.Fatalf("unexpected tps: %v", res.TokensPerSecond)
	}
	if res.LatencySeconds < 0 {
		t.Fatalf("negative latency: %v", res.LatencySeconds)
	}

	var payload map[string]any
	if err := json.Unmarshal(capturedBody, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if stream, ok := payload["stream"].(bool); !ok || stream {
		t.Fatalf("expected stream=false, got %v", payload["stream"])
	}
	options, ok := payload["options"].(map[string]any)
	if !ok {
		t.Fatalf("expected options object, got %T", payload["options"])
	}
	if options["temperature"] != 0.6 {
		t.Fatalf("expected temperature 0.6, got %v", options["temperature"])
	}
	if options["num_ctx"] != float64(4096) {
		t.Fatalf("expected num_ctx 4096, got %v", options["num_ctx"])
	}
}

// TestChatZeroEvalDuration confirms the divide-by-zero guard: a zero or
// missing generation duration yields tps 0, never Inf or NaN.
func TestChatZeroEvalDuration(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"6"},"done":true,"eval_count":12}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "meditron:7b", 5*time.Second)
	res := client.Chat(context.Background(), []Message{{Role: "user", Content: "q"}}, Options{})

	if res.Failed {
		t.Fatalf("unexpected failure: %s", res.ErrorDetail)
	}
	if res.TokensPerSecond != 0 {
		t.Fatalf("expected tps 0 for zero duration, got %v", res.TokensPerSecond)
	}
	if res.TokenCount != 12 {
		t.Fatalf("unexpected token count: %d", res.TokenCount)
	}
}

// TestChatSoftFailures verifies that transport errors, non-success statuses,
// and malformed bodies all resolve to a failed QueryResult instead of an
// error, with zero timings and populated detail.
func TestChatSoftFailures(t *testing.T) {
	t.Parallel()

	t.Run("server error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, "missing:7b", 5*time.Second)
		res := client.Chat(context.Background(), nil, Options{})
		if !res.Failed {
			t.Fatal("expected failed result")
		}
		if res.Content != "" || res.LatencySeconds != 0 || res.TokenCount != 0 {
			t.Fatalf("expected zeroed result, got %+v", res)
		}
		if res.ErrorDetail == "" {
			t.Fatal("expected error detail")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(250 * time.Millisecond)
		}))
		defer server.Close()

		client := NewClient(server.URL, "meditron:7b", 20*time.Millisecond)
		res := client.Chat(context.Background(), nil, Options{})
		if !res.Failed {
			t.Fatal("expected failed result on timeout")
		}
		if res.LatencySeconds != 0 {
			t.Fatalf("expected zero latency on failure, got %v", res.LatencySeconds)
		}
	})

	t.Run("garbage body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "meditron:7b", 5*time.Second)
		res := client.Chat(context.Background(), nil, Options{})
		if !res.Failed {
			t.Fatal("expected failed result on malformed body")
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", "meditron:7b", time.Second)
		res := client.Chat(context.Background(), nil, Options{})
		if !res.Failed {
			t.Fatal("expected failed result for unreachable host")
		}
	})
}

// TestEnsureModelReady verifies the warm-up poke against /api/generate.
func TestEnsureModelReady(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"done":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "meditron:7b", 5*time.Second)
	if err := client.EnsureModelReady(context.Background()); err != nil {
		t.Fatalf("EnsureModelReady: %v", err)
	}
	if gotPath != "/api/generate" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
}

// TestEnsureModelReadyFailure confirms readiness failures are hard errors.
func TestEnsureModelReadyFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such model", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "missing:7b", 5*time.Second)
	if err := client.EnsureModelReady(context.Background()); err == nil {
		t.Fatal("expected error for missing model")
	}
}
