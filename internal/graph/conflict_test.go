package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveConflictNewEntity(t *testing.T) {
	d := ResolveConflict(StrategyHighestConfidence, "theory", nil, map[string]any{"name": "Agency Theory", "confidence": 0.9})
	require.Equal(t, "new_entity", d.Reason)
}

func TestResolveConflictHighestConfidencePrefersIncoming(t *testing.T) {
	existing := map[string]any{"confidence": 0.5}
	incoming := map[string]any{"confidence": 0.8}
	d := ResolveConflict(StrategyHighestConfidence, "theory", existing, incoming)
	require.Equal(t, "new_entity_higher_confidence", d.Reason)
	require.Equal(t, incoming, d.Record)
}

func TestResolveConflictHighestConfidenceTiePrefersExisting(t *testing.T) {
	existing := map[string]any{"confidence": 0.8}
	incoming := map[string]any{"confidence": 0.8}
	d := ResolveConflict(StrategyHighestConfidence, "theory", existing, incoming)
	require.Equal(t, "existing_confidence_retained", d.Reason)
}

func TestResolveConflictMostRecent(t *testing.T) {
	existing := map[string]any{"extracted_at": "2020-01-01T00:00:00Z"}
	incoming := map[string]any{"extracted_at": "2021-01-01T00:00:00Z"}
	d := ResolveConflict(StrategyMostRecent, "theory", existing, incoming)
	require.Equal(t, "new_entity_more_recent", d.Reason)
}

func TestResolveConflictManualReview(t *testing.T) {
	existing := map[string]any{"name": "Agency Theory"}
	incoming := map[string]any{"name": "Agency Theory Variant"}
	d := ResolveConflict(StrategyManualReview, "theory", existing, incoming)
	require.Equal(t, "manual_review", d.Reason)
	require.True(t, d.NeedsReview)
	require.Equal(t, true, d.Record["needs_review"])
	require.Contains(t, d.Record["pending_review"], "Agency Theory Variant")
}

func TestResolveConflictMergeCompatible(t *testing.T) {
	existing := map[string]any{
		"name":        "Agency Theory",
		"theory_type": "framework",
		"description": "managers and owners have conflicting incentives",
		"software":    []string{"Stata"},
		"confidence":  0.6,
		"merge_count": 0,
	}
	incoming := map[string]any{
		"name":        "Agency Theory",
		"theory_type": "framework",
		"description": "managers and owners have conflicting incentives in firms",
		"software":    []string{"R"},
		"confidence":  0.8,
	}
	d := ResolveConflict(StrategyMerge, "theory", existing, incoming)
	require.Equal(t, "merged", d.Reason)
	require.Equal(t, 0.7, d.Record["confidence"])
	require.Equal(t, 1, d.Record["merge_count"])
	require.ElementsMatch(t, []string{"R", "Stata"}, d.Record["software"])
}

func TestResolveConflictMergeIncompatibleFallsBackToManualReview(t *testing.T) {
	existing := map[string]any{
		"name":        "Agency Theory",
		"theory_type": "framework",
		"description": "completely unrelated subject matter about airline mergers",
	}
	incoming := map[string]any{
		"name":        "Agency Theory",
		"theory_type": "concept",
		"description": "managers and owners have conflicting incentives",
	}
	d := ResolveConflict(StrategyMerge, "theory", existing, incoming)
	require.Equal(t, "merge_incompatible_fallback_manual_review", d.Reason)
	require.True(t, d.NeedsReview)
}
