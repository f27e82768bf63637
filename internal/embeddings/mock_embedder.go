package embeddings

import (
	"context"
	"math"
	"math/rand"
)

// MockEmbedder is a deterministic stand-in for VoyageEmbedder used by
// internal/normalizer's and internal/retrieval's tests: same text always yields the same unit vector, so fixture papers
// and aliases compare predictably without a live API key.
type MockEmbedder struct {
	dimension int
	model     string
	provider  string
}

// NewMockEmbedder creates a new mock embedder for testing.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{
		dimension: dimension,
		model:     "mock-model",
		provider:  "mock",
	}
}

// Embed generates a deterministic embedding based on text content.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Use text hash as seed for reproducibility.
	seed := int64(0)
	for _, c := range text {
		seed = seed*31 + int64(c)
	}

	rng := rand.New(rand.NewSource(seed))

	embedding := make([]float32, m.dimension)
	var sumSquares float64
	for i := 0; i < m.dimension; i++ {
		embedding[i] = float32(rng.NormFloat64())
		sumSquares += float64(embedding[i] * embedding[i])
	}

	// Normalize to unit vector: divide each component by sqrt(sumSquares).
	if sumSquares > 0 {
		magnitude := float32(math.Sqrt(sumSquares))
		for i := 0; i < m.dimension; i++ {
			embedding[i] /= magnitude
		}
	}

	return embedding, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}

	return embeddings, nil
}

// Dimension returns the embedding dimension.
func (m *MockEmbedder) Dimension() int {
	return m.dimension
}

// Model returns the model identifier.
func (m *MockEmbedder) Model() string {
	return m.model
}

// Provider returns the provider name.
func (m *MockEmbedder) Provider() string {
	return m.provider
}
