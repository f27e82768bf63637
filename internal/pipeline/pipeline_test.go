package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"smj-graphpipeline/internal/extractor"
	"smj-graphpipeline/internal/graph"
	"smj-graphpipeline/internal/model"
)

func TestIsRetryableTreatsInsufficientTextAsTerminal(t *testing.T) {
	wrapped := fmt.Errorf("extract: %w", fmt.Errorf("extractor: text acquisition failed for 2001_x: %w", extractor.ErrInsufficientText))
	require.False(t, isRetryable(wrapped))
}

func TestIsRetryableTreatsOtherErrorsAsTransient(t *testing.T) {
	require.True(t, isRetryable(errors.New("llm: rate limited")))
}

func TestEntityCountsReflectsExtractionResult(t *testing.T) {
	r := model.NewEmptyExtractionResult("2001_paper")
	r.Authors = []model.RawAuthor{{FullName: "Jane Doe"}}
	r.Theories = []model.RawTheory{{Name: "RBV"}, {Name: "Institutional Theory"}}

	counts := entityCounts(r)
	require.Equal(t, 1, counts["authors"])
	require.Equal(t, 2, counts["theories"])
	require.Equal(t, 0, counts["citations"])
}

func TestIngestEntityCountsReflectsAssembledInput(t *testing.T) {
	in := graph.PaperIngestInput{
		Theories: []graph.TheoryRecord{{}},
		Software: []graph.SoftwareRecord{{}, {}},
	}

	counts := ingestEntityCounts(in)
	require.Equal(t, 1, counts["theories"])
	require.Equal(t, 2, counts["software"])
	require.Equal(t, 0, counts["datasets"])
}

func TestStageConstantsAreDistinct(t *testing.T) {
	stages := []Stage{StageAll, StageExtract, StageNormalize, StageIngest}
	seen := make(map[Stage]bool)
	for _, s := range stages {
		require.False(t, seen[s], "stage %q must be unique", s)
		seen[s] = true
	}
}
