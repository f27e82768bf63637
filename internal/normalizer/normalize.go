package normalizer

import (
	"context"
	"strings"

	"smj-graphpipeline/internal/embeddings"
)

// defaultEmbeddingThreshold is the §4.5 step-2 default cosine-similarity
// threshold for accepting an embedding match.
const defaultEmbeddingThreshold = 0.85

// Normalizer is process-wide, shared state combining the curated
// dictionaries with an optional embedding nearest-neighbor matcher (§9:
// "initialize once and pass by reference; do not reload canonical
// dictionaries per task"). It is safe for concurrent use by every worker.
type Normalizer struct {
	dictionaries map[Class]*Dictionary
	embeddingIdx *embeddingIndex // nil when no embedding model is configured (§9)
}

// New builds a Normalizer with the seed canonical dictionaries. Pass a nil
// embedder to run dictionary-only normalization (§9 "the design must
// function with a null embedding model").
func New(embedder embeddings.Embedder, threshold float64) *Normalizer {
	n := &Normalizer{dictionaries: seedDictionaries()}
	if embedder != nil {
		if threshold <= 0 {
			threshold = defaultEmbeddingThreshold
		}
		n.embeddingIdx = newEmbeddingIndex(embedder, threshold)
	}
	return n
}

// HasEmbeddings reports whether embedding-based matching is active.
func (n *Normalizer) HasEmbeddings() bool {
	return n.embeddingIdx != nil
}

// Normalize resolves one extracted surface name to a canonical identity
// for the given class (§4.5). It never discards information: the original
// surface form is always returned alongside the canonical name.
//
// Normalize is idempotent: normalizing an already-canonical name returns
// itself with method "exact" (§8, "Normalizer idempotence").
func (n *Normalizer) Normalize(ctx context.Context, class Class, surface string) Result {
	trimmed := strings.TrimSpace(surface)
	if trimmed == "" {
		return Result{Canonical: trimmed, OriginalName: surface, Method: MethodNew, Confidence: 0.5}
	}

	dict := n.dictionaries[class]
	if dict != nil {
		if result, ok := dict.Lookup(trimmed); ok {
			if lowerKey(result.Canonical) == lowerKey(trimmed) {
				result.Method = MethodExact
				result.Confidence = 1.0
			}
			result.OriginalName = trimmed
			if n.embeddingIdx != nil {
				n.registerCanonical(ctx, class, result.Canonical, dict)
			}
			return result
		}
	}

	if n.embeddingIdx != nil {
		if canonical, _, ok := n.embeddingIdx.query(ctx, class, trimmed); ok {
			return Result{Canonical: canonical, OriginalName: trimmed, Method: MethodEmbedding, Confidence: 0.85}
		}
	}

	canonical := titleCasePreserveAcronyms(trimmed)
	if n.embeddingIdx != nil {
		n.registerCanonical(ctx, class, canonical, dict)
	}
	return Result{Canonical: canonical, OriginalName: trimmed, Method: MethodNew, Confidence: 0.5}
}

// registerCanonical embeds a canonical entity's "name + top-3 aliases"
// rich text once so later queries in the same class can match against it
// (§4.5 step 2). Embedding failures are swallowed: dictionary/new-entity
// normalization already succeeded and the embedding index is best-effort.
func (n *Normalizer) registerCanonical(ctx context.Context, class Class, canonical string, dict *Dictionary) {
	richText := canonical
	if dict != nil {
		if aliases := dict.TopAliases(canonical, 3); len(aliases) > 0 {
			richText = canonical + " " + strings.Join(aliases, " ")
		}
	}
	_ = n.embeddingIdx.register(ctx, class, canonical, richText)
}
