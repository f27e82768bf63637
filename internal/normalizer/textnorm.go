package normalizer

import (
	"strings"
	"unicode"
)

// cleanSurface normalizes whitespace and Unicode punctuation in a surface
// form before any matching is attempted (§4.5 "Text cleanup before
// matching").
func cleanSurface(s string) string {
	s = strings.Map(foldPunctuation, s)
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// foldPunctuation maps Unicode punctuation variants (curly quotes, en/em
// dashes, non-breaking spaces) to their plain-ASCII equivalents so
// "Resource‑Based View" and "Resource-Based View" match identically.
func foldPunctuation(r rune) rune {
	switch r {
	case '‐', '‑', '‒', '–', '—', '―':
		return '-'
	case '‘', '’', '‛':
		return '\''
	case '“', '”', '„':
		return '"'
	case ' ', ' ', ' ':
		return ' '
	default:
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}
}

// lowerKey is the lookup key used for every dictionary and embedding match:
// cleaned surface text, lower-cased.
func lowerKey(s string) string {
	return strings.ToLower(cleanSurface(s))
}

// titleCasePreserveAcronyms applies title case word-by-word, but leaves a
// word unchanged if it is already all-uppercase and at most 5 characters
// (§4.5, "apply title-case but preserve acronyms of length <= 5").
func titleCasePreserveAcronyms(s string) string {
	words := strings.Fields(cleanSurface(s))
	for i, w := range words {
		if isAcronym(w) {
			continue
		}
		words[i] = titleCaseWord(w)
	}
	return strings.Join(words, " ")
}

func isAcronym(w string) bool {
	letters := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, w)
	if letters == "" || len(letters) > 5 {
		return false
	}
	return letters == strings.ToUpper(letters)
}

func titleCaseWord(w string) string {
	if w == "" {
		return w
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	for i := 1; i < len(r); i++ {
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}

// SignificantTokens splits text into lower-cased tokens longer than 3
// characters, matching the "significant (>3-character) tokens" heuristic
// used both by source-grounded validation (§4.3) and the connection
// strength keyword_score (§4.8).
func SignificantTokens(text string) map[string]bool {
	out := make(map[string]bool)
	for _, f := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(f) > 3 {
			out[f] = true
		}
	}
	return out
}

// Jaccard computes the Jaccard similarity of two token sets.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for t := range a {
		if b[t] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
