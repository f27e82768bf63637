package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writePaper(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644))
}

func TestDiscoverSortsDeterministicallyByFilename(t *testing.T) {
	dir := t.TempDir()
	writePaper(t, dir, "2001_zeta.pdf")
	writePaper(t, dir, "2001_alpha.pdf")
	writePaper(t, dir, "not_a_paper.txt")

	tasks, err := Discover(Options{Root: dir})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, "2001_alpha", tasks[0].PaperID)
	require.Equal(t, "2001_zeta", tasks[1].PaperID)
	require.Equal(t, 2001, tasks[0].Year)
	require.Equal(t, DefaultMaxAttempts, tasks[0].MaxAttempts)
}

func TestDiscoverFiltersByYearRange(t *testing.T) {
	dir := t.TempDir()
	writePaper(t, dir, "1995_old.pdf")
	writePaper(t, dir, "2010_new.pdf")

	tasks, err := Discover(Options{Root: dir, YearStart: 2000})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "2010_new", tasks[0].PaperID)
}

func TestDiscoverSkipsProcessedWhenResuming(t *testing.T) {
	dir := t.TempDir()
	writePaper(t, dir, "2005_one.pdf")
	writePaper(t, dir, "2005_two.pdf")

	tasks, err := Discover(Options{
		Root:      dir,
		Resume:    true,
		Processed: map[string]bool{"2005_one": true},
	})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "2005_two", tasks[0].PaperID)
}

func TestTaskRetryAndExhausted(t *testing.T) {
	task := PaperTask{PaperID: "2001_x", MaxAttempts: 3}
	require.False(t, task.Exhausted())

	task = task.Retry()
	require.Equal(t, 1, task.Attempt)
	task = task.Retry()
	task = task.Retry()
	require.True(t, task.Exhausted())
}
