package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clairon-backend/internal/models"
)

func newTestCompletion(t *testing.T, handler http.HandlerFunc) *CompletionService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewCompletionService(CompletionConfig{
		APIKey:   "test-key",
		BaseURL:  server.URL + "/",
		Model:    "google/gemini-2.5-flash-lite",
		SiteURL:  "http://localhost:3000/support",
		AppTitle: "Clairon",
		Timeout:  time.Second,
	}, server.Client(), nil)
}

var hello = []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}}

func TestComplete_Success(t *testing.T) {
	var got completionRequest
	svc := newTestCompletion(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("HTTP-Referer") != "http://localhost:3000/support" {
			t.Errorf("unexpected referer %q", r.Header.Get("HTTP-Referer"))
		}
		if r.Header.Get("X-Title") != "Clairon" {
			t.Errorf("unexpected title %q", r.Header.Get("X-Title"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"Hello"}}]}`)
	})

	reply := svc.Complete(context.Background(), hello)

	if reply.Outcome != OutcomeOK {
		t.Fatalf("expected ok outcome, got %s (%v)", reply.Outcome, reply.Err)
	}
	if reply.Response() != "Hello" {
		t.Fatalf("expected %q, got %q", "Hello", reply.Response())
	}

	if len(got.Messages) != 2 {
		t.Fatalf("expected system + 1 message, got %d", len(got.Messages))
	}
	if got.Messages[0].Role != models.RoleSystem || got.Messages[0].Content != supportSystemPrompt {
		t.Errorf("expected system directive first, got %+v", got.Messages[0])
	}
	if got.Messages[1] != hello[0] {
		t.Errorf("expected caller message second, got %+v", got.Messages[1])
	}
	if got.MaxTokens != 500 || got.Temperature != 0.7 {
		t.Errorf("unexpected generation params: max_tokens=%d temperature=%v", got.MaxTokens, got.Temperature)
	}
	if got.Model != "google/gemini-2.5-flash-lite" {
		t.Errorf("unexpected model %q", got.Model)
	}
}

func TestComplete_DemoModeSkipsUpstream(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := NewCompletionService(CompletionConfig{BaseURL: server.URL}, server.Client(), nil)
	reply := svc.Complete(context.Background(), hello)

	if reply.Outcome != OutcomeDemo {
		t.Fatalf("expected demo outcome, got %s", reply.Outcome)
	}
	if reply.Response() != FallbackDemo {
		t.Fatalf("unexpected response %q", reply.Response())
	}
	if called {
		t.Fatal("provider must not be called without credentials")
	}
}

func TestComplete_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		outcome  Outcome
		response string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, OutcomeUpstreamStatus, FallbackUpstreamStatus},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, OutcomeUpstreamStatus, FallbackUpstreamStatus},
		{"rate limited", http.StatusTooManyRequests, ``, OutcomeUpstreamStatus, FallbackUpstreamStatus},
		{"no choices field", http.StatusOK, `{"id":"x"}`, OutcomeMalformed, FallbackMalformed},
		{"empty choices", http.StatusOK, `{"choices":[]}`, OutcomeMalformed, FallbackMalformed},
		{"null message", http.StatusOK, `{"choices":[{"message":null}]}`, OutcomeMalformed, FallbackMalformed},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":""}}]}`, OutcomeMalformed, FallbackMalformed},
		{"not json", http.StatusOK, `<html>gateway</html>`, OutcomeMalformed, FallbackMalformed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestCompletion(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			})

			reply := svc.Complete(context.Background(), hello)

			if reply.Outcome != tc.outcome {
				t.Fatalf("expected outcome %s, got %s", tc.outcome, reply.Outcome)
			}
			if reply.Response() != tc.response {
				t.Fatalf("expected %q, got %q", tc.response, reply.Response())
			}
			if reply.Err == nil {
				t.Fatal("expected diagnostic error")
			}
		})
	}
}

func TestComplete_NetworkErrorIsInternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	svc := NewCompletionService(CompletionConfig{APIKey: "k", BaseURL: url, Timeout: time.Second}, nil, nil)
	reply := svc.Complete(context.Background(), hello)

	if reply.Outcome != OutcomeInternal {
		t.Fatalf("expected internal outcome, got %s", reply.Outcome)
	}
	if reply.Response() != FallbackInternal {
		t.Fatalf("unexpected response %q", reply.Response())
	}
}

func TestComplete_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	svc := NewCompletionService(CompletionConfig{APIKey: "k", BaseURL: server.URL, Timeout: 50 * time.Millisecond}, server.Client(), nil)

	start := time.Now()
	reply := svc.Complete(context.Background(), hello)

	if reply.Outcome != OutcomeInternal {
		t.Fatalf("expected internal outcome, got %s", reply.Outcome)
	}
	if !errors.Is(reply.Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", reply.Err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not applied")
	}
}

func TestFallbackText(t *testing.T) {
	if FallbackText(OutcomeOK) != "" {
		t.Error("ok outcome has no fallback")
	}
	for _, o := range []Outcome{OutcomeDemo, OutcomeUpstreamStatus, OutcomeMalformed, OutcomeInternal} {
		if FallbackText(o) == "" {
			t.Errorf("outcome %s has no fallback", o)
		}
	}
	if (Reply{Outcome: OutcomeOK, Text: "x"}).Response() != "x" {
		t.Error("ok reply should return its text")
	}
}

func TestComplete_ZeroTemperatureIsSent(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer server.Close()

	zero := 0.0
	svc := NewCompletionService(CompletionConfig{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		Temperature: &zero,
	}, server.Client(), nil)

	if reply := svc.Complete(context.Background(), hello); reply.Outcome != OutcomeOK {
		t.Fatalf("expected ok outcome, got %s (%v)", reply.Outcome, reply.Err)
	}
	if got["temperature"] != 0.0 {
		t.Fatalf("expected temperature 0, got %v", got["temperature"])
	}
}
