package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/infrastructure/resilience"
)

func TestCompleteSendsChatRequest(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":" {\"category\":\"juridico\"} "}}`))
	}))
	defer server.Close()

	client := New(server.URL+"/", "llama3.1:8b", WithTemperature(0.1))
	reply, err := client.Complete(context.Background(), "classify me")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != `{"category":"juridico"}` {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if captured.Model != "llama3.1:8b" || captured.Format != "json" || captured.Stream {
		t.Fatalf("unexpected request: %+v", captured)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Content != "classify me" {
		t.Fatalf("unexpected messages: %+v", captured.Messages)
	}
	if captured.Options["temperature"] != 0.1 {
		t.Fatalf("unexpected options: %+v", captured.Options)
	}
}

func TestCompleteIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := New(server.URL, "gen").Complete(context.Background(), "hello")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("400 must not be temporary: %v", err)
	}
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "loading model", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"message":{"content":"{}"}}`))
	}))
	defer server.Close()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
	})
	reply, err := New(server.URL, "gen", WithResilience(executor)).Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if reply != "{}" || calls != 2 {
		t.Fatalf("reply=%q calls=%d", reply, calls)
	}
}

func TestCompleteMarksExhaustedRetriesTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := New(server.URL, "gen").Complete(context.Background(), "hello")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestPingChecksModelIsPulled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.1:latest","model":"llama3.1:latest"},{"name":"qwen2.5:7b"}]}`))
	}))
	defer server.Close()

	for _, model := range []string{"llama3.1", "llama3.1:latest", "qwen2.5:7b"} {
		if err := New(server.URL, model).Ping(context.Background()); err != nil {
			t.Fatalf("Ping(%s) error = %v", model, err)
		}
	}
	if err := New(server.URL, "mistral").Ping(context.Background()); err == nil {
		t.Fatalf("expected missing model error")
	}
}

func TestClassifyOllamaError(t *testing.T) {
	if c := classifyOllamaError(context.Canceled); c.Retryable || c.RecordFailure {
		t.Fatalf("cancel must be neither retryable nor a failure: %+v", c)
	}
	if c := classifyOllamaError(&HTTPStatusError{StatusCode: http.StatusTooManyRequests}); !c.Retryable {
		t.Fatalf("429 must be retryable")
	}
	if c := classifyOllamaError(&HTTPStatusError{StatusCode: http.StatusNotFound}); c.Retryable || c.RecordFailure {
		t.Fatalf("404 must be permanent: %+v", c)
	}
}

func TestStatusErrorUnwrapsErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"gen\" not found, try pulling it first"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, "gen").Complete(context.Background(), "hello")
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected status error, got %v", err)
	}
	if statusErr.Body != `model "gen" not found, try pulling it first` {
		t.Fatalf("unexpected body: %q", statusErr.Body)
	}
}
