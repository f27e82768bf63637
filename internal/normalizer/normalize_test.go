package normalizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"smj-graphpipeline/internal/embeddings"
)

func TestDictionaryAliasesResolveToSameCanonical(t *testing.T) {
	n := New(nil, 0)
	ctx := context.Background()

	rbv := n.Normalize(ctx, ClassTheory, "RBV")
	require.Equal(t, "Resource-Based View", rbv.Canonical)
	require.Equal(t, MethodDictionary, rbv.Method)
	require.Equal(t, "RBV", rbv.OriginalName)

	alt := n.Normalize(ctx, ClassTheory, "Resource Based Theory")
	require.Equal(t, "Resource-Based View", alt.Canonical)
}

func TestNormalizeIdempotent(t *testing.T) {
	n := New(nil, 0)
	ctx := context.Background()

	first := n.Normalize(ctx, ClassTheory, "Agency Theory")
	second := n.Normalize(ctx, ClassTheory, first.Canonical)
	require.Equal(t, first.Canonical, second.Canonical)
	require.Equal(t, MethodExact, second.Method)
}

func TestUnknownTheoryBecomesNewCanonical(t *testing.T) {
	n := New(nil, 0)
	result := n.Normalize(context.Background(), ClassTheory, "signaling theory")
	require.Equal(t, MethodNew, result.Method)
	require.Equal(t, "Signaling Theory", result.Canonical)
	require.Equal(t, 0.5, result.Confidence)
}

func TestEmbeddingFallbackMatchesNearDuplicate(t *testing.T) {
	mock := embeddings.NewMockEmbedder(32)
	n := New(mock, 0.0) // threshold <= 0 selects the default 0.85; an identical surface form still matches at similarity 1

	ctx := context.Background()
	// Seed the embedding index via a new-entity normalization.
	first := n.Normalize(ctx, ClassPhenomenon, "Platform Ecosystem Emergence")
	require.Equal(t, MethodNew, first.Method)
	require.True(t, n.HasEmbeddings())

	// An identical surface form, re-embedded, must cosine-match itself.
	second := n.Normalize(ctx, ClassPhenomenon, "Platform Ecosystem Emergence")
	require.Equal(t, first.Canonical, second.Canonical)
}

func TestAcronymPreservedByTitleCase(t *testing.T) {
	require.Equal(t, "CEO Succession Planning", titleCasePreserveAcronyms("CEO succession planning"))
}

func TestJaccardOverlap(t *testing.T) {
	a := SignificantTokens("resource based advantage firms")
	b := SignificantTokens("resource advantage across firms")
	sim := Jaccard(a, b)
	require.Greater(t, sim, 0.0)
	require.LessOrEqual(t, sim, 1.0)
}
