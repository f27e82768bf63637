package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// constraintStatements is §6.3's required uniqueness-constraint list, one
// statement per node identity. Method uses a composite key (name, type);
// the rest are single-property.
var constraintStatements = []string{
	"CREATE CONSTRAINT paper_id_unique IF NOT EXISTS FOR (p:Paper) REQUIRE p.paper_id IS UNIQUE",
	"CREATE CONSTRAINT author_id_unique IF NOT EXISTS FOR (a:Author) REQUIRE a.author_id IS UNIQUE",
	"CREATE CONSTRAINT institution_id_unique IF NOT EXISTS FOR (i:Institution) REQUIRE i.institution_id IS UNIQUE",
	"CREATE CONSTRAINT theory_name_unique IF NOT EXISTS FOR (t:Theory) REQUIRE t.name IS UNIQUE",
	"CREATE CONSTRAINT phenomenon_name_unique IF NOT EXISTS FOR (ph:Phenomenon) REQUIRE ph.phenomenon_name IS UNIQUE",
	"CREATE CONSTRAINT software_name_unique IF NOT EXISTS FOR (s:Software) REQUIRE s.software_name IS UNIQUE",
	"CREATE CONSTRAINT dataset_name_unique IF NOT EXISTS FOR (d:Dataset) REQUIRE d.dataset_name IS UNIQUE",
	"CREATE CONSTRAINT method_key_unique IF NOT EXISTS FOR (m:Method) REQUIRE (m.name, m.type) IS UNIQUE",
	"CREATE CONSTRAINT topic_id_unique IF NOT EXISTS FOR (tp:Topic) REQUIRE tp.topic_id IS UNIQUE",
}

// supportingIndexes speed up the lookups the ingester and relationships
// pass run most often: paper-scoped edge rewrites key off paper_id, and
// cross-paper relationship computation groups by publication year.
var supportingIndexes = []string{
	"CREATE INDEX variable_id_idx IF NOT EXISTS FOR (v:Variable) ON (v.variable_id)",
	"CREATE INDEX finding_id_idx IF NOT EXISTS FOR (f:Finding) ON (f.finding_id)",
	"CREATE INDEX contribution_id_idx IF NOT EXISTS FOR (c:Contribution) ON (c.contribution_id)",
	"CREATE INDEX question_id_idx IF NOT EXISTS FOR (q:ResearchQuestion) ON (q.question_id)",
	"CREATE INDEX paper_year_idx IF NOT EXISTS FOR (p:Paper) ON (p.publication_year)",
}

// EnsureSchema creates every uniqueness constraint and supporting index
// this repo relies on. It is idempotent (every statement carries
// IF NOT EXISTS) and safe to call on every pipeline start.
func (c *Client) EnsureSchema(ctx context.Context) error {
	for _, stmt := range append(append([]string{}, constraintStatements...), supportingIndexes...) {
		_, err := c.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			result, err := tx.Run(ctx, stmt, nil)
			if err != nil {
				return nil, err
			}
			return result.Consume(ctx)
		})
		if err != nil {
			return fmt.Errorf("graph: failed to apply schema statement %q: %w", stmt, err)
		}
	}
	return nil
}
