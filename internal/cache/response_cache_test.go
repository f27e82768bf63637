package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFingerprintTruncatesTo2000Chars(t *testing.T) {
	short := Fingerprint("hello")
	longText := "hello" + string(make([]byte, 3000))
	long := Fingerprint(longText)
	require.NotEqual(t, short, long)
	require.Equal(t, Fingerprint(longText[:2000]), long)
	require.Len(t, short, 64)
}

func TestMemoryOnlyCacheRoundTrips(t *testing.T) {
	rc, err := Open("", 100, time.Hour)
	require.NoError(t, err)

	key := Key{PromptType: "theories_phenomena", PromptVersion: "2.0", TextFingerprint: "abc"}
	_, ok := rc.Get(key)
	require.False(t, ok)

	rc.Set(key, `{"theories":[]}`)
	value, ok := rc.Get(key)
	require.True(t, ok)
	require.Equal(t, `{"theories":[]}`, value)
}

func TestDiskBackedCachePersistsAcrossInstances(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	rc1, err := Open(dbPath, 10, 30*24*time.Hour)
	require.NoError(t, err)
	key := Key{PromptType: "metadata_authors", PromptVersion: "2.0", TextFingerprint: "xyz"}
	rc1.Set(key, `{"metadata":{}}`)
	require.NoError(t, rc1.Close())

	rc2, err := Open(dbPath, 10, 30*24*time.Hour)
	require.NoError(t, err)
	defer rc2.Close()

	value, ok := rc2.Get(key)
	require.True(t, ok)
	require.Equal(t, `{"metadata":{}}`, value)
}

func TestExpiredDiskEntryIsAMiss(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	rc, err := Open(dbPath, 10, time.Millisecond)
	require.NoError(t, err)
	defer rc.Close()

	key := Key{PromptType: "citations", PromptVersion: "2.0", TextFingerprint: "old"}
	rc.Set(key, `{"citations":[]}`)

	// Evict the memory tier entry so the next Get must consult disk.
	rc.mem.Delete(key.string())
	time.Sleep(5 * time.Millisecond)

	_, ok := rc.Get(key)
	require.False(t, ok)
}
