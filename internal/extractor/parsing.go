package extractor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseJSONObject accepts a raw JSON object, or one fenced by ``` or
// ```json (§4.3 stage 4), and decodes it into a generic field map.
func parseJSONObject(response string) (map[string]any, error) {
	candidate := extractJSONCandidate(response)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, fmt.Errorf("extractor: invalid JSON response: %w", err)
	}
	return parsed, nil
}

// extractJSONCandidate strips a ``` or ```json fence around a response, or
// falls back to the substring between the first "{" and the last "}" when
// the model added prose around the object without fencing it.
func extractJSONCandidate(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```") {
		body := strings.TrimPrefix(trimmed, "```")
		body = strings.TrimPrefix(body, "json")
		body = strings.TrimPrefix(body, "JSON")
		body = strings.TrimSpace(body)
		if idx := strings.LastIndex(body, "```"); idx >= 0 {
			body = body[:idx]
		}
		return strings.TrimSpace(body)
	}

	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}

	return trimmed
}
