package llmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"smj-graphpipeline/internal/config"
)

func testConfig(primaryURL string) config.LLMConfig {
	return config.LLMConfig{
		PrimaryBaseURL:      primaryURL,
		PrimaryModel:        "test-model",
		PrimaryAPIKey:       "key",
		Mode:                "combined",
		Temperature:         0.1,
		RequestTimeout:      2 * time.Second,
		SmallRequestTimeout: 2 * time.Second,
		MaxRetries:          2,
	}
}

func TestCompleteSucceedsOnFirstTry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Content: `{"ok":true}`}}},
		})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	text, err := c.Complete(context.Background(), "system", "user", 100)
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, text)
}

func TestCompleteRetriesOnTransientFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"temporarily unavailable"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Content: `{"ok":true}`}}},
		})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	text, err := c.Complete(context.Background(), "system", "user", 100)
	require.NoError(t, err)
	require.Equal(t, `{"ok":true}`, text)
	require.Equal(t, 2, calls)
}

func TestCompleteFallsBackOnQuotaExhaustion(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota exceeded for this account"}`))
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []chatChoice{{Message: chatMessage{Content: `{"from":"fallback"}`}}},
		})
	}))
	defer fallback.Close()

	cfg := testConfig(primary.URL)
	cfg.UseFallback = true
	cfg.FallbackBaseURL = fallback.URL
	cfg.FallbackModel = "fallback-model"

	c := New(cfg)
	text, err := c.Complete(context.Background(), "system", "user", 100)
	require.NoError(t, err)
	require.Equal(t, `{"from":"fallback"}`, text)
}

func TestCompleteFailsOnTerminalErrorWithoutRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid request"}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	_, err := c.Complete(context.Background(), "system", "user", 100)
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := newCircuitBreaker("test", 3, time.Minute)
	require.True(t, cb.Allow())
	cb.Record(false)
	cb.Record(false)
	cb.Record(false)
	require.Equal(t, "open", cb.State())
	require.False(t, cb.Allow())
}

func TestCircuitBreakerClosesAfterCooldownAndSuccess(t *testing.T) {
	cb := newCircuitBreaker("test", 1, time.Millisecond)
	cb.Record(false)
	require.Equal(t, "open", cb.State())
	time.Sleep(5 * time.Millisecond)
	require.True(t, cb.Allow())
	cb.Record(true)
	require.Equal(t, "closed", cb.State())
}
