package pdftext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadAllTruncatesAtMaxChars(t *testing.T) {
	long := strings.Repeat("a", MaxChars+5000)
	text, err := ReadAll(strings.NewReader(long))
	require.NoError(t, err)
	require.Len(t, text, MaxChars)
}

func TestReadAllPassesThroughShortText(t *testing.T) {
	text, err := ReadAll(strings.NewReader("short text"))
	require.NoError(t, err)
	require.Equal(t, "short text", text)
}

func TestCacheKeyDistinguishesPathMtimeSize(t *testing.T) {
	c := NewCache()
	k1 := cacheKey{path: "a.pdf", mtime: 1, size: 100}
	k2 := cacheKey{path: "a.pdf", mtime: 2, size: 100}
	c.entries[k1] = "first version text"
	_, ok := c.entries[k2]
	require.False(t, ok, "different mtime must miss the cache")
	require.Equal(t, "first version text", c.entries[k1])
}
