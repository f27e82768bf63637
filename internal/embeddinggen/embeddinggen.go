// Package embeddinggen implements the §6.4 generate-embeddings post-hoc
// pass: batch encode Paper/Theory/Phenomenon/Method/ResearchQuestion nodes
// that don't carry an embedding yet and persist embedding + embedding_dim +
// embedding_model back onto each node. It sits alongside
// internal/relationships as the second post-hoc sweep over an
// already-ingested graph, grounded on the teacher's
// internal/knowledge/embedding_cache.go batch-encode-then-store shape and
// reusing internal/relationships's read-all-then-UNWIND-write idiom.
package embeddinggen

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"smj-graphpipeline/internal/embeddings"
	"smj-graphpipeline/internal/graph"
)

// target describes one node kind this pass encodes: its label, identity
// property (for the write-back MATCH), and the Cypher expression that
// produces the text to embed.
type target struct {
	label    string
	identity string
	textExpr string
}

var targets = []target{
	{label: "Paper", identity: "paper_id", textExpr: "coalesce(n.title, '') + ' ' + coalesce(n.abstract, '')"},
	{label: "Theory", identity: "name", textExpr: "coalesce(n.name, '') + ' ' + coalesce(n.description, '')"},
	{label: "Phenomenon", identity: "phenomenon_name", textExpr: "coalesce(n.phenomenon_name, '') + ' ' + coalesce(n.description, '')"},
	{label: "Method", identity: "name", textExpr: "coalesce(n.name, '') + ' ' + coalesce(n.category, '')"},
	{label: "ResearchQuestion", identity: "question_id", textExpr: "coalesce(n.question, '')"},
}

// batchSize bounds how many nodes are embedded per EmbedBatch call, matching
// the teacher's embedding-cache batch size rather than sending the whole
// corpus to the embedder in one request.
const batchSize = 50

// Stats reports how many nodes of each kind received a fresh embedding, for
// the CLI's summary line.
type Stats struct {
	Counts map[string]int
}

// Run finds every target-kind node missing an embedding, encodes its text in
// batches, and writes embedding/embedding_dim/embedding_model back onto each
// node (§6.4 "generate-embeddings").
func Run(ctx context.Context, client *graph.Client, embedder embeddings.Embedder) (Stats, error) {
	stats := Stats{Counts: make(map[string]int)}
	if embedder == nil {
		return stats, fmt.Errorf("embeddinggen: generate-embeddings requires an embedder but embeddings are disabled")
	}

	for _, t := range targets {
		n, err := embedKind(ctx, client, embedder, t)
		if err != nil {
			return stats, fmt.Errorf("embeddinggen: %s: %w", t.label, err)
		}
		stats.Counts[t.label] = n
	}
	return stats, nil
}

type pendingNode struct {
	id   string
	text string
}

func embedKind(ctx context.Context, client *graph.Client, embedder embeddings.Embedder, t target) (int, error) {
	var pending []pendingNode

	_, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := fmt.Sprintf(
			"MATCH (n:%s) WHERE n.embedding_dim IS NULL OR n.embedding_dim = 0 RETURN n.%s AS id, %s AS text",
			t.label, t.identity, t.textExpr,
		)
		result, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			idVal, _ := r.Get("id")
			id, _ := idVal.(string)
			if id == "" {
				continue
			}
			textVal, _ := r.Get("text")
			text, _ := textVal.(string)
			pending = append(pending, pendingNode{id: id, text: text})
		}
		return nil, nil
	})
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	written := 0
	for start := 0; start < len(pending); start += batchSize {
		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.text
		}
		vectors, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return written, fmt.Errorf("embed batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return written, fmt.Errorf("embed batch: expected %d vectors, got %d", len(batch), len(vectors))
		}

		rows := make([]map[string]any, 0, len(batch))
		for i, p := range batch {
			rows = append(rows, map[string]any{
				"id":        p.id,
				"embedding": float32SliceToFloat64(vectors[i]),
			})
		}

		writeQuery := fmt.Sprintf(`
UNWIND $rows AS row
MATCH (n:%s {%s: row.id})
SET n.embedding = row.embedding, n.embedding_dim = size(row.embedding), n.embedding_model = $model`,
			t.label, t.identity)

		_, err = client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, writeQuery, map[string]any{"rows": rows, "model": embedder.Model()})
			if err != nil {
				return nil, err
			}
			return result.Consume(ctx)
		})
		if err != nil {
			return written, err
		}
		written += len(batch)
	}
	return written, nil
}

func float32SliceToFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
