package retrieval

import (
	"context"
	"testing"

	chromem "github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/require"

	"smj-graphpipeline/internal/embeddings"
)

func TestNewStoreRejectsNilEmbedder(t *testing.T) {
	_, err := NewStore("", nil)
	require.Error(t, err)
}

func TestSemanticSearchRanksByCosineSimilarity(t *testing.T) {
	embedder := embeddings.NewMockEmbedder(16)
	store, err := NewStore("", embedder)
	require.NoError(t, err)

	ctx := context.Background()
	collection, err := store.db.GetOrCreateCollection(paperCollection, nil, nil)
	require.NoError(t, err)

	docs := map[string]string{
		"p1": "Resource-Based View of the firm and sustained competitive advantage",
		"p2": "Agency theory and executive compensation design",
		"p3": "Resource-Based View extensions to dynamic capabilities",
	}
	for id, content := range docs {
		vec, embedErr := embedder.Embed(ctx, content)
		require.NoError(t, embedErr)
		require.NoError(t, collection.AddDocument(ctx, chromem.Document{
			ID:        id,
			Content:   content,
			Metadata:  map[string]string{"title": content},
			Embedding: vec,
		}))
	}

	results, err := store.SemanticSearch(ctx, docs["p1"], 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	// The exact query text must be its own closest (identical) match.
	require.Equal(t, "p1", results[0].PaperID)
	require.InDelta(t, 1.0, float64(results[0].Similarity), 1e-4)
}

func TestSemanticSearchEmptyCollectionReturnsNil(t *testing.T) {
	embedder := embeddings.NewMockEmbedder(8)
	store, err := NewStore("", embedder)
	require.NoError(t, err)

	results, err := store.SemanticSearch(context.Background(), "anything", 5)
	require.NoError(t, err)
	require.Empty(t, results)
}
