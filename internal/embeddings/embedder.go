// Package embeddings is the §2.6 Embedding Model component: a small
// deterministic-function-from-text-to-vector interface, consumed by
// internal/normalizer's nearest-neighbor matcher, internal/retrieval's
// vector index, and the generate-embeddings post-hoc pass
// (internal/embeddinggen). The pipeline's own internal/config.EmbeddingsConfig
// already carries provider/model/threshold settings, so this package stays
// to the interface and the two concrete implementations the pipeline
// actually constructs (VoyageEmbedder, MockEmbedder) rather than
// duplicating a second config tree.
package embeddings

import "context"

// Embedder generates vector embeddings from text. §9 requires the rest of
// the pipeline to function with a nil Embedder (dictionary-only
// normalization, keyword-only connection-strength scoring), so callers
// must treat a nil Embedder as "disabled," not call through it.
type Embedder interface {
	// Embed generates embedding for single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts (more efficient)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding dimension
	Dimension() int

	// Model returns the model identifier
	Model() string

	// Provider returns the provider name
	Provider() string
}
