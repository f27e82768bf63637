package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"smj-graphpipeline/internal/model"
)

func TestConnectionStrengthPrimaryRoleSameSectionExplicitLink(t *testing.T) {
	edge := ConnectionStrength(ConnectionStrengthInput{
		TheoryRole:         model.RolePrimary,
		TheorySection:      "discussion",
		PhenomenonSection:  "discussion",
		TheoryUsageContext: "firm performance resource heterogeneity",
		PhenomenonText:     "resource heterogeneity drives firm performance outcomes",
		ExplicitlyLinked:   true,
	})

	require.True(t, MeetsConnectionThreshold(edge))
	require.InDelta(t, edge.RoleScore+edge.SectionScore+edge.KeywordScore+edge.SemanticScore+edge.ExplicitBonus, edge.ConnectionStrength, 1e-9)
}

func TestConnectionStrengthWeakSignalDropsBelowThreshold(t *testing.T) {
	edge := ConnectionStrength(ConnectionStrengthInput{
		TheoryRole:         model.RoleChallenging,
		TheorySection:      "introduction",
		PhenomenonSection:  "results",
		TheoryUsageContext: "unrelated context about airline mergers",
		PhenomenonText:     "completely different subject on executive compensation",
	})

	require.False(t, MeetsConnectionThreshold(edge))
}

func TestConnectionStrengthSemanticFallsBackToKeywordWithoutEmbeddings(t *testing.T) {
	edge := ConnectionStrength(ConnectionStrengthInput{
		TheoryRole:         model.RoleSupporting,
		TheorySection:      "methods",
		PhenomenonSection:  "results",
		TheoryUsageContext: "knowledge transfer across teams",
		PhenomenonText:     "knowledge transfer across distributed teams",
	})

	require.Equal(t, edge.KeywordScore, edge.SemanticScore)
}

func TestConnectionStrengthUsesEmbeddingsWhenAvailable(t *testing.T) {
	edge := ConnectionStrength(ConnectionStrengthInput{
		TheoryRole:          model.RoleSupporting,
		TheorySection:       "methods",
		PhenomenonSection:   "results",
		TheoryEmbedding:     []float32{1, 0, 0},
		PhenomenonEmbedding: []float32{1, 0, 0},
	})

	require.InDelta(t, 0.2, edge.SemanticScore, 1e-9)
}
