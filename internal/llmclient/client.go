package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"time"

	"smj-graphpipeline/internal/config"
)

// Client is a JSON-mode chat completions client for an OpenAI-compatible
// backend, with an optional fallback backend and per-backend circuit
// breakers (§4.3, §6.2, §7). It replaces the teacher's single fixed
// Anthropic wire format with a generic request/response pair so the same
// client can talk to any OpenAI-compatible endpoint.
type Client struct {
	cfg        config.LLMConfig
	httpClient *http.Client

	primary         backend
	fallback        backend
	fallbackEnabled bool

	primaryBreaker  *circuitBreaker
	fallbackBreaker *circuitBreaker
}

type backend struct {
	baseURL string
	model   string
	apiKey  string
}

// New builds a Client from the pipeline's LLM configuration.
func New(cfg config.LLMConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		primary: backend{
			baseURL: cfg.PrimaryBaseURL,
			model:   cfg.PrimaryModel,
			apiKey:  cfg.PrimaryAPIKey,
		},
		fallback: backend{
			baseURL: cfg.FallbackBaseURL,
			model:   cfg.FallbackModel,
			apiKey:  cfg.FallbackAPIKey,
		},
		fallbackEnabled: cfg.UseFallback && cfg.FallbackBaseURL != "",
		primaryBreaker:  newCircuitBreaker("primary", 5, 60*time.Second),
		fallbackBreaker: newCircuitBreaker("fallback", 5, 60*time.Second),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

// Complete sends a system+user prompt pair in JSON mode and returns the
// model's raw text content (expected to be a JSON document, parsed by the
// caller). It retries the primary backend with exponential backoff, and
// switches to the fallback backend when the primary reports quota
// exhaustion or its circuit breaker is open (§7 "LLM API exhaustion").
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	timeout := c.cfg.RequestTimeout
	if maxTokens > 0 && maxTokens <= 512 {
		timeout = c.cfg.SmallRequestTimeout
	}

	text, err := c.completeOn(ctx, c.primary, c.primaryBreaker, systemPrompt, userPrompt, maxTokens, timeout)
	if err == nil {
		return text, nil
	}

	if !c.fallbackEnabled {
		return "", fmt.Errorf("primary backend failed: %w", err)
	}

	var classified *ClassifiedError
	switchToFallback := false
	if ce, ok := err.(*ClassifiedError); ok {
		classified = ce
		switchToFallback = classified.Kind == KindQuotaExhausted
	}
	if !c.primaryBreaker.Allow() {
		switchToFallback = true
	}

	if !switchToFallback {
		return "", fmt.Errorf("primary backend failed: %w", err)
	}

	log.Printf("[WARN] primary LLM backend exhausted, switching to fallback %q", c.fallback.model)
	text, fbErr := c.completeOn(ctx, c.fallback, c.fallbackBreaker, systemPrompt, userPrompt, maxTokens, timeout)
	if fbErr != nil {
		return "", fmt.Errorf("primary backend failed (%v) and fallback backend failed: %w", err, fbErr)
	}
	return text, nil
}

// completeOn runs the retry loop against one backend, honoring its circuit
// breaker and the configured max_retries (§6.2).
func (c *Client) completeOn(ctx context.Context, b backend, cb *circuitBreaker, systemPrompt, userPrompt string, maxTokens int, timeout time.Duration) (string, error) {
	if !cb.Allow() {
		return "", &ClassifiedError{Kind: KindTransient, Err: fmt.Errorf("circuit breaker for %q is open", b.model)}
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		text, err := c.call(callCtx, b, systemPrompt, userPrompt, maxTokens)
		cancel()

		if err == nil {
			cb.Record(true)
			return text, nil
		}

		lastErr = err
		classified, _ := err.(*ClassifiedError)
		if classified == nil || !classified.Retryable() {
			cb.Record(false)
			return "", err
		}
		if classified.Kind == KindQuotaExhausted {
			cb.Record(false)
			return "", err
		}

		cb.Record(false)
		if attempt == c.cfg.MaxRetries {
			break
		}

		delay := backoffDelay(attempt)
		log.Printf("[WARN] LLM call to %q failed (attempt %d/%d): %v, retrying in %s", b.model, attempt, c.cfg.MaxRetries, err, delay)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", fmt.Errorf("exhausted %d attempts against %q: %w", c.cfg.MaxRetries, b.model, lastErr)
}

// backoffDelay is exponential backoff with full jitter, base 500ms capped
// at 20s.
func backoffDelay(attempt int) time.Duration {
	base := 500 * time.Millisecond
	capped := float64(base) * math.Pow(2, float64(attempt-1))
	if capped > float64(20*time.Second) {
		capped = float64(20 * time.Second)
	}
	return time.Duration(rand.Int63n(int64(capped) + 1))
}

func (c *Client) call(ctx context.Context, b backend, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Model:       b.model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   maxTokens,
		ResponseFormat: responseFormat{
			Type: "json_object",
		},
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classify(0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classify(0, "", fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", classify(resp.StatusCode, string(body), nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("backend returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// BreakerStates reports the current state of both backends' circuit
// breakers, surfaced in pipeline stats (§4.9, §6.1).
func (c *Client) BreakerStates() map[string]string {
	return map[string]string{
		"primary":  c.primaryBreaker.State(),
		"fallback": c.fallbackBreaker.State(),
	}
}
