package graph

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"smj-graphpipeline/internal/normalizer"
	"smj-graphpipeline/internal/validator"
)

// ConflictStrategy is one of §4.7's four re-ingestion conflict strategies.
type ConflictStrategy string

const (
	StrategyHighestConfidence ConflictStrategy = "highest_confidence"
	StrategyMostRecent        ConflictStrategy = "most_recent"
	StrategyMerge             ConflictStrategy = "merge"
	StrategyManualReview      ConflictStrategy = "manual_review"
)

// DefaultConflictStrategy is §4.7's default.
const DefaultConflictStrategy = StrategyHighestConfidence

// compatibilityThreshold is §4.7's "description cosine/word-overlap >= 0.7"
// merge-eligibility bar.
const compatibilityThreshold = 0.7

// ConflictDecision is the outcome of resolving one re-ingested entity
// against its existing node: which record to persist, a short reason
// string the ingester logs, and whether it needs human review.
type ConflictDecision struct {
	Record      map[string]any
	Reason      string
	NeedsReview bool
}

// ResolveConflict implements §4.7. existing is nil when the entity is being
// created for the first time. entityKind selects the enum field names
// consulted by the compatibility check (e.g. "theory", "phenomenon").
func ResolveConflict(strategy ConflictStrategy, entityKind string, existing, incoming map[string]any) ConflictDecision {
	if existing == nil {
		return ConflictDecision{Record: incoming, Reason: "new_entity"}
	}

	switch strategy {
	case StrategyMostRecent:
		return resolveMostRecent(existing, incoming)
	case StrategyMerge:
		if compatible(entityKind, existing, incoming) {
			return resolveMerge(existing, incoming)
		}
		return resolveManualReview(existing, incoming, "merge_incompatible_fallback_manual_review")
	case StrategyManualReview:
		return resolveManualReview(existing, incoming, "manual_review")
	case StrategyHighestConfidence:
		fallthrough
	default:
		return resolveHighestConfidence(existing, incoming)
	}
}

func resolveHighestConfidence(existing, incoming map[string]any) ConflictDecision {
	existingConf := floatField(existing, "confidence")
	incomingConf := floatField(incoming, "confidence")
	if incomingConf > existingConf {
		return ConflictDecision{Record: incoming, Reason: "new_entity_higher_confidence"}
	}
	return ConflictDecision{Record: existing, Reason: "existing_confidence_retained"}
}

func resolveMostRecent(existing, incoming map[string]any) ConflictDecision {
	existingTime := timeField(existing, "extracted_at")
	incomingTime := timeField(incoming, "extracted_at")
	if incomingTime.After(existingTime) {
		return ConflictDecision{Record: incoming, Reason: "new_entity_more_recent"}
	}
	return ConflictDecision{Record: existing, Reason: "existing_more_recent"}
}

// resolveManualReview keeps the existing record but attaches a JSON
// snapshot of the new record for later inspection: Neo4j node properties
// must be primitives or arrays of primitives, so the nested incoming
// record is serialized rather than stored as-is.
func resolveManualReview(existing, incoming map[string]any, reason string) ConflictDecision {
	record := cloneMap(existing)
	record["needs_review"] = true
	if snapshot, err := json.Marshal(incoming); err == nil {
		record["pending_review"] = string(snapshot)
	} else {
		record["pending_review"] = fmt.Sprintf("%v", incoming)
	}
	return ConflictDecision{Record: record, Reason: reason, NeedsReview: true}
}

func resolveMerge(existing, incoming map[string]any) ConflictDecision {
	merged := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}

	keys := make(map[string]bool, len(incoming))
	for k := range incoming {
		keys[k] = true
	}
	for k := range existing {
		keys[k] = true
	}

	for k := range keys {
		ev, eok := existing[k]
		iv, iok := incoming[k]
		switch {
		case !eok:
			merged[k] = iv
		case !iok:
			merged[k] = ev
		default:
			merged[k] = mergeValue(ev, iv)
		}
	}

	merged["confidence"] = (floatField(existing, "confidence") + floatField(incoming, "confidence")) / 2
	merged["merge_count"] = intField(existing, "merge_count") + 1

	return ConflictDecision{Record: merged, Reason: "merged"}
}

// mergeValue unions list-valued fields (deduplicated) and prefers a
// non-empty scalar over an empty one, falling back to the incoming value.
func mergeValue(existing, incoming any) any {
	if el, ok := toStringSlice(existing); ok {
		il, _ := toStringSlice(incoming)
		return dedupeUnion(el, il)
	}
	if es, ok := existing.(string); ok {
		if es != "" {
			return es
		}
		return incoming
	}
	return incoming
}

func dedupeUnion(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// compatible is §4.7's merge-eligibility check: same identity is assumed
// (the caller only calls this once an existing node has already matched by
// MERGE key), enum-typed fields equal, and description overlap >= 0.7.
func compatible(entityKind string, existing, incoming map[string]any) bool {
	for _, field := range validator.EnumFieldNames(entityKind) {
		ev, _ := existing[field].(string)
		iv, _ := incoming[field].(string)
		if ev != "" && iv != "" && ev != iv {
			return false
		}
	}

	existingDesc := stringField(existing, "description")
	incomingDesc := stringField(incoming, "description")
	if existingDesc == "" || incomingDesc == "" {
		return true
	}
	overlap := normalizer.Jaccard(normalizer.SignificantTokens(existingDesc), normalizer.SignificantTokens(incomingDesc))
	return overlap >= compatibilityThreshold
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func timeField(m map[string]any, key string) time.Time {
	switch v := m[key].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

func toStringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// DecisionSummary formats a ConflictDecision for the ingester's log line.
func DecisionSummary(entityKind, identity string, d ConflictDecision) string {
	return fmt.Sprintf("conflict[%s %s]: %s", entityKind, identity, d.Reason)
}
