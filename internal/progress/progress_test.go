package progress

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMarkCompletedChecksPointsAfterBatch(t *testing.T) {
	dir := t.TempDir()
	progressPath := filepath.Join(dir, "progress.json")
	store, err := Load(progressPath, filepath.Join(dir, "stats.json"))
	require.NoError(t, err)

	store.SetCheckpointBatch(2)
	require.NoError(t, store.MarkCompleted("2001_a", map[string]time.Duration{"extracting": time.Second}, map[string]int{"theories": 1}))
	_, statErr := os.Stat(progressPath)
	require.True(t, os.IsNotExist(statErr), "no checkpoint should have been written after only one completion")

	require.NoError(t, store.MarkCompleted("2001_b", nil, nil))
	doc, err := loadDoc(progressPath)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"2001_a", "2001_b"}, doc.Completed)
	require.Equal(t, 2, doc.Stats.Processed)
}

func TestMarkFailedPersistsImmediately(t *testing.T) {
	dir := t.TempDir()
	progressPath := filepath.Join(dir, "progress.json")
	store, err := Load(progressPath, filepath.Join(dir, "stats.json"))
	require.NoError(t, err)

	require.NoError(t, store.MarkFailed("2001_bad", "INSUFFICIENT_TEXT", 3))

	doc, err := loadDoc(progressPath)
	require.NoError(t, err)
	require.Len(t, doc.Failed, 1)
	require.Equal(t, "2001_bad", doc.Failed[0].PaperID)
	require.Equal(t, 3, doc.Failed[0].Attempts)
}

func TestLoadResumesCompletedSet(t *testing.T) {
	dir := t.TempDir()
	progressPath := filepath.Join(dir, "progress.json")
	statsPath := filepath.Join(dir, "stats.json")

	first, err := Load(progressPath, statsPath)
	require.NoError(t, err)
	require.NoError(t, first.MarkFailed("ignored", "x", 1)) // forces an immediate write
	require.NoError(t, first.MarkCompleted("2001_a", nil, nil))
	require.NoError(t, first.Persist())

	second, err := Load(progressPath, statsPath)
	require.NoError(t, err)
	require.True(t, second.Processed()["2001_a"])
}

func TestLoadMissingFileReturnsEmptyStore(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope_stats.json"))
	require.NoError(t, err)
	require.Empty(t, store.Processed())
}

func loadDoc(path string) (Document, error) {
	s, err := Load(path, path+".stats")
	if err != nil {
		return Document{}, err
	}
	return s.Snapshot(), nil
}
