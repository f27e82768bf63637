// Package llmclient talks to an OpenAI-compatible chat completions backend
// in JSON mode, with a primary/fallback pair, bounded retries, and a circuit
// breaker, modeled on the teacher's internal/modes/llm_anthropic.go client
// and on pnocera-SciFind's internal/errors classifier/circuit-breaker pair.
package llmclient

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a backend failure so the retry loop and the extractor's
// quota-exhaustion fallback switch (§4.3, §6.2, §7) can each act on it
// without re-parsing error strings.
type Kind int

const (
	// KindUnknown has not been classified; treated as non-retryable.
	KindUnknown Kind = iota
	// KindTransient is worth retrying with backoff (5xx, timeouts, resets).
	KindTransient
	// KindRateLimited means back off and retry, or switch backends if
	// retries are exhausted.
	KindRateLimited
	// KindQuotaExhausted means the backend account has no budget left;
	// retrying will not help, switch to the fallback backend instead.
	KindQuotaExhausted
	// KindTerminal means the request itself is bad (4xx other than 429);
	// retrying or switching backends will not help.
	KindTerminal
)

// ClassifiedError wraps a backend error with its Kind.
type ClassifiedError struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *ClassifiedError) Error() string {
	return e.Err.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the retry loop should try again.
func (e *ClassifiedError) Retryable() bool {
	return e.Kind == KindTransient || e.Kind == KindRateLimited
}

var quotaPatterns = []string{
	"quota exceeded",
	"insufficient_quota",
	"billing",
	"account deactivated",
}

var rateLimitPatterns = []string{
	"rate limit",
	"too many requests",
	"throttled",
}

var transientPatterns = []string{
	"timeout",
	"deadline exceeded",
	"connection reset",
	"connection refused",
	"no such host",
	"broken pipe",
	"eof",
}

// classify turns an HTTP status code and response body into a Kind.
// Quota exhaustion is usually reported as 429 with a billing-flavored body,
// so the body is checked before falling back to the status code alone.
func classify(statusCode int, body string, transportErr error) *ClassifiedError {
	if transportErr != nil {
		lower := strings.ToLower(transportErr.Error())
		for _, p := range transientPatterns {
			if strings.Contains(lower, p) {
				return &ClassifiedError{Kind: KindTransient, Err: transportErr}
			}
		}
		return &ClassifiedError{Kind: KindTransient, Err: transportErr}
	}

	lowerBody := strings.ToLower(body)
	for _, p := range quotaPatterns {
		if strings.Contains(lowerBody, p) {
			return &ClassifiedError{Kind: KindQuotaExhausted, StatusCode: statusCode, Err: statusError(statusCode, body)}
		}
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		for _, p := range rateLimitPatterns {
			if strings.Contains(lowerBody, p) {
				return &ClassifiedError{Kind: KindRateLimited, StatusCode: statusCode, Err: statusError(statusCode, body)}
			}
		}
		return &ClassifiedError{Kind: KindRateLimited, StatusCode: statusCode, Err: statusError(statusCode, body)}
	case statusCode == http.StatusInternalServerError,
		statusCode == http.StatusBadGateway,
		statusCode == http.StatusServiceUnavailable,
		statusCode == http.StatusGatewayTimeout:
		return &ClassifiedError{Kind: KindTransient, StatusCode: statusCode, Err: statusError(statusCode, body)}
	case statusCode >= 400 && statusCode < 500:
		return &ClassifiedError{Kind: KindTerminal, StatusCode: statusCode, Err: statusError(statusCode, body)}
	default:
		return &ClassifiedError{Kind: KindUnknown, StatusCode: statusCode, Err: statusError(statusCode, body)}
	}
}

func statusError(code int, body string) error {
	return &httpStatusError{code: code, body: body}
}

type httpStatusError struct {
	code int
	body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("backend returned status %d (%s): %s", e.code, http.StatusText(e.code), e.body)
}
