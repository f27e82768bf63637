package normalizer

import (
	"context"
	"fmt"
	"sync"

	"smj-graphpipeline/internal/embeddings"
)

// embeddingIndex is the per-class cache of canonical entity embeddings the
// §4.5 step-2 nearest-neighbor matcher compares a query against. Each
// canonical entity's "name + top-3 aliases" text is embedded once and
// reused for every later query, matching §9's "initialize once and pass by
// reference" guidance for process-wide normalizer state.
type embeddingIndex struct {
	mu         sync.RWMutex
	embedder   embeddings.Embedder
	threshold  float64
	byClass    map[Class][]canonicalVector
}

type canonicalVector struct {
	canonical string
	vector    []float32
}

func newEmbeddingIndex(embedder embeddings.Embedder, threshold float64) *embeddingIndex {
	return &embeddingIndex{
		embedder:  embedder,
		threshold: threshold,
		byClass:   make(map[Class][]canonicalVector),
	}
}

// register embeds and caches one canonical entity's rich text the first
// time it is seen, a no-op on later calls for the same (class, canonical)
// pair.
func (idx *embeddingIndex) register(ctx context.Context, class Class, canonical, richText string) error {
	idx.mu.Lock()
	for _, cv := range idx.byClass[class] {
		if cv.canonical == canonical {
			idx.mu.Unlock()
			return nil
		}
	}
	idx.mu.Unlock()

	vector, err := idx.embedder.Embed(ctx, richText)
	if err != nil {
		return fmt.Errorf("normalizer: failed to embed canonical entity %q: %w", canonical, err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, cv := range idx.byClass[class] {
		if cv.canonical == canonical {
			return nil
		}
	}
	idx.byClass[class] = append(idx.byClass[class], canonicalVector{canonical: canonical, vector: vector})
	return nil
}

// query embeds the surface form and returns the best matching canonical
// name within the class if its cosine similarity clears the configured
// threshold (§4.5 step 2, default 0.85).
func (idx *embeddingIndex) query(ctx context.Context, class Class, surface string) (string, float64, bool) {
	vector, err := idx.embedder.Embed(ctx, surface)
	if err != nil {
		return "", 0, false
	}

	idx.mu.RLock()
	candidates := idx.byClass[class]
	idx.mu.RUnlock()

	bestCanonical := ""
	bestSim := -1.0
	for _, cv := range candidates {
		sim := embeddings.CosineSimilarity(vector, cv.vector)
		if sim > bestSim {
			bestSim = sim
			bestCanonical = cv.canonical
		}
	}

	if bestCanonical == "" || bestSim < idx.threshold {
		return "", bestSim, false
	}
	return bestCanonical, bestSim, true
}
