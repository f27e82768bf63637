// Package retrieval is the minimal hybrid vector+graph question-answering
// surface §1 lists as a system capability ("answers natural-language
// questions via hybrid vector + graph retrieval"). It is deliberately thin:
// §1 excludes the graph-RAG answer generator itself (a consumer of the
// produced graph, not part of the pipeline), so this package stops at
// retrieving and ranking context, leaving prompt construction and answer
// synthesis to that external consumer.
//
// Grounded on the teacher's internal/knowledge/vector_store.go (chromem-go
// collection wrapper, embed-then-AddDocument shape) and
// knowledge_graph.go's HybridSearchWithThreshold (semantic search over a
// lowered threshold to gather candidate seeds, then graph expansion from
// each seed, deduplicated into one result set).
package retrieval

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	chromem "github.com/philippgille/chromem-go"

	"smj-graphpipeline/internal/embeddings"
	"smj-graphpipeline/internal/graph"
)

// paperCollection is the single chromem-go collection this package
// maintains: one document per Paper, embedding title+abstract. The
// normalizer keeps its own much smaller per-class canonical-entity index
// in-process (see internal/normalizer/embedding.go); this collection is
// the pack's one user of chromem-go's own persistence, reserved for this
// package per SPEC_FULL.md's DOMAIN STACK table.
const paperCollection = "papers"

// Store wraps a chromem-go database and the embedder used to populate and
// query it.
type Store struct {
	db       *chromem.DB
	embedder embeddings.Embedder
}

// NewStore opens (or creates) a chromem-go database at persistPath. An
// empty persistPath keeps the index in memory only, matching the teacher's
// VectorStoreConfig.PersistPath convention.
func NewStore(persistPath string, embedder embeddings.Embedder) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("retrieval: NewStore requires a non-nil embedder")
	}

	var db *chromem.DB
	var err error
	if persistPath != "" {
		db, err = chromem.NewPersistentDB(persistPath, false)
		if err != nil {
			return nil, fmt.Errorf("retrieval: open persistent vector store: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	return &Store{db: db, embedder: embedder}, nil
}

// Passage is one retrieved Paper, ranked by semantic similarity to a query.
type Passage struct {
	PaperID    string
	Title      string
	Similarity float32
}

// IndexPapers reads every Paper node's title+abstract from the graph and
// (re)adds it to the vector store, embedding it via the configured
// embedder. Re-running IndexPapers after new papers are ingested keeps the
// collection current; chromem-go's AddDocument overwrites a document with
// the same ID.
func (s *Store) IndexPapers(ctx context.Context, client *graph.Client) (int, error) {
	collection, err := s.db.GetOrCreateCollection(paperCollection, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("retrieval: get or create collection: %w", err)
	}

	type row struct {
		paperID, title, abstract string
	}
	var rows []row
	if _, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, "MATCH (p:Paper) RETURN p.paper_id AS paper_id, p.title AS title, p.abstract AS abstract", nil)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			idVal, _ := r.Get("paper_id")
			id, _ := idVal.(string)
			if id == "" {
				continue
			}
			titleVal, _ := r.Get("title")
			title, _ := titleVal.(string)
			abstractVal, _ := r.Get("abstract")
			abstract, _ := abstractVal.(string)
			rows = append(rows, row{paperID: id, title: title, abstract: abstract})
		}
		return nil, nil
	}); err != nil {
		return 0, fmt.Errorf("retrieval: fetch papers: %w", err)
	}

	indexed := 0
	for _, r := range rows {
		content := r.title + " " + r.abstract
		vector, err := s.embedder.Embed(ctx, content)
		if err != nil {
			return indexed, fmt.Errorf("retrieval: embed paper %s: %w", r.paperID, err)
		}
		if err := collection.AddDocument(ctx, chromem.Document{
			ID:        r.paperID,
			Content:   content,
			Metadata:  map[string]string{"title": r.title},
			Embedding: vector,
		}); err != nil {
			return indexed, fmt.Errorf("retrieval: add document %s: %w", r.paperID, err)
		}
		indexed++
	}
	return indexed, nil
}

// SemanticSearch embeds query and returns up to limit Papers ranked by
// cosine similarity, with no minimum threshold filtering.
func (s *Store) SemanticSearch(ctx context.Context, query string, limit int) ([]Passage, error) {
	if limit <= 0 {
		limit = 10
	}
	collection := s.db.GetCollection(paperCollection, nil)
	if collection == nil {
		return nil, nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: embed query: %w", err)
	}

	n := limit
	if count := collection.Count(); count < n {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	results, err := collection.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieval: query embedding: %w", err)
	}

	passages := make([]Passage, 0, len(results))
	for _, r := range results {
		passages = append(passages, Passage{
			PaperID:    r.ID,
			Title:      r.Metadata["title"],
			Similarity: r.Similarity,
		})
	}
	return passages, nil
}

// GraphContext is the one-hop neighborhood of a Paper this package expands
// a semantic hit into: the theories it uses (any role), studied phenomena, and
// methods, the entity kinds §4.8's connection-strength function and §4.6's
// ingester already treat as a paper's defining context.
type GraphContext struct {
	PaperID   string
	Theories  []string
	Phenomena []string
	Methods   []string
}

// ExpandContext fetches paperID's theory/phenomenon/method neighbors. It
// deliberately stays to a single hop: the schema here is a typed property
// graph with a fixed set of paper-scoped edge kinds (§3.2), not the
// teacher's generic arbitrary-depth entity graph, so "maxHops" beyond one
// would traverse into unrelated papers via shared canonical entities
// rather than deepen this paper's own context.
func ExpandContext(ctx context.Context, client *graph.Client, paperID string) (GraphContext, error) {
	out := GraphContext{PaperID: paperID}

	raw, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
MATCH (p:Paper {paper_id: $paper_id})
OPTIONAL MATCH (p)-[:USES_THEORY]->(t:Theory)
OPTIONAL MATCH (p)-[:STUDIES_PHENOMENON]->(ph:Phenomenon)
OPTIONAL MATCH (p)-[:USES_METHOD]->(m:Method)
RETURN collect(DISTINCT t.name) AS theories, collect(DISTINCT ph.phenomenon_name) AS phenomena, collect(DISTINCT m.name) AS methods`,
			map[string]any{"paper_id": paperID})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, nil // no Paper with this id; not an error
		}
		return record, nil
	})
	if err != nil {
		return out, fmt.Errorf("retrieval: expand context for %s: %w", paperID, err)
	}
	record, ok := raw.(*neo4j.Record)
	if !ok || record == nil {
		return out, nil
	}

	out.Theories = stringList(record, "theories")
	out.Phenomena = stringList(record, "phenomena")
	out.Methods = stringList(record, "methods")
	return out, nil
}

func stringList(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok {
		return nil
	}
	raw, ok := val.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Result pairs one semantically matched Paper with its one-hop graph
// context, the unit a downstream graph-RAG answer generator would compose
// into a prompt.
type Result struct {
	Passage Passage
	Context GraphContext
}

// HybridSearch runs SemanticSearch, filters by minSimilarity (following the
// teacher's pattern of widening the semantic search itself so post-filter
// never starves the result set), and expands each surviving hit's graph
// context.
func (s *Store) HybridSearch(ctx context.Context, client *graph.Client, query string, limit int, minSimilarity float32) ([]Result, error) {
	passages, err := s.SemanticSearch(ctx, query, limit*2)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, limit)
	for _, p := range passages {
		if p.Similarity < minSimilarity {
			continue
		}
		gctx, err := ExpandContext(ctx, client, p.PaperID)
		if err != nil {
			return results, err
		}
		results = append(results, Result{Passage: p, Context: gctx})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
