package promptkit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildIncludesSchemaAndText(t *testing.T) {
	system, user := Build(KindTheoriesPhenomena, "the paper text")
	require.Contains(t, system, "domain-expert")
	require.Contains(t, user, "theory_phenomenon_links")
	require.Contains(t, user, "the paper text")
}

func TestCombinedKindsCoverAllTenLists(t *testing.T) {
	combined := CombinedKinds()
	require.Len(t, combined, 4)
	require.Contains(t, combined, KindMetadataAuthors)
	require.Contains(t, combined, KindCitations)
}

func TestSingleEntityKindsHasTenEntries(t *testing.T) {
	single := SingleEntityKinds()
	require.Len(t, single, 10)
	seen := map[Kind]bool{}
	for _, k := range single {
		require.False(t, seen[k], "duplicate kind %s", k)
		seen[k] = true
	}
}

func TestUnknownKindFallsBackToLiteralTask(t *testing.T) {
	_, user := Build(Kind("bogus"), "text")
	require.True(t, strings.Contains(user, "bogus"))
}

func TestVersionParticipatesInCacheKeyShape(t *testing.T) {
	require.Equal(t, "2.0", Version)
}
