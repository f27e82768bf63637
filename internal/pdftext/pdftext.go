// Package pdftext turns a PDF file into plain extracted text for the
// extractor's first stage (§4.3 stage 1). It caches the result per
// (path, mtime, size) so a worker retrying a paper never re-reads a PDF it
// has already parsed. The cache is held in memory and does not outlive the
// process.
package pdftext

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"
)

// MaxChars is the hard cap on extracted text length (§4.3 stage 1, §5
// "Timeouts": "PDF text extraction: unbounded but capped at 25 000
// characters of output").
const MaxChars = 25000

// MinChars is the minimum extracted text length below which the paper is
// failed with ErrInsufficientText.
const MinChars = 100

// ErrInsufficientText is returned when a PDF yields less than MinChars of
// text, signalling the INSUFFICIENT_TEXT failure reason (§4.3 stage 1, §7).
var ErrInsufficientText = fmt.Errorf("pdftext: extracted text shorter than %d characters", MinChars)

type cacheKey struct {
	path  string
	mtime int64
	size  int64
}

// Cache holds previously extracted text keyed by file path, mtime, and
// size, so an unchanged file is never re-parsed.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]string
}

// NewCache returns an empty text cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]string)}
}

// Extract reads path's text, using and populating the cache when a
// *Cache is supplied (callers that want the stage-1 cache pass one; a nil
// cache disables caching entirely).
func Extract(path string, cache *Cache) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("pdftext: failed to stat %s: %w", path, err)
	}
	key := cacheKey{path: path, mtime: info.ModTime().UnixNano(), size: info.Size()}

	if cache != nil {
		cache.mu.Lock()
		if text, ok := cache.entries[key]; ok {
			cache.mu.Unlock()
			return text, nil
		}
		cache.mu.Unlock()
	}

	text, err := extractRaw(path)
	if err != nil {
		return "", err
	}

	if len(text) > MaxChars {
		text = text[:MaxChars]
	}
	if len(text) < MinChars {
		return "", ErrInsufficientText
	}

	if cache != nil {
		cache.mu.Lock()
		cache.entries[key] = text
		cache.mu.Unlock()
	}

	return text, nil
}

// extractRaw opens the PDF and concatenates the plain text of every page.
func extractRaw(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("pdftext: failed to open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	fonts := make(map[string]*pdf.Font)
	totalPages := r.NumPage()
	for i := 1; i <= totalPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(fonts)
		if err != nil {
			// A single unparseable page shouldn't fail the whole paper;
			// the remaining pages may still clear MinChars.
			continue
		}
		buf.WriteString(content)
		buf.WriteString("\n")
	}

	return buf.String(), nil
}

// ReadAll is a small helper kept for callers (such as tests) that already
// hold an io.Reader of extracted text and want the same truncation rule
// Extract applies.
func ReadAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	text := string(data)
	if len(text) > MaxChars {
		text = text[:MaxChars]
	}
	return text, nil
}
