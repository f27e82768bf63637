package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// run executes one Cypher statement within an already-open transaction and
// consumes its summary, the teacher's own tx.Run-then-Consume idiom
// (internal/knowledge/schema.go).
func run(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) error {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = result.Consume(ctx)
	return err
}

// readNodeProps fetches one node's properties by a single key predicate,
// returning (nil, nil) when no node matches.
func readNodeProps(ctx context.Context, tx neo4j.ManagedTransaction, label, keyProp string, keyVal any) (map[string]any, error) {
	return readNodePropsComposite(ctx, tx, label, map[string]any{keyProp: keyVal})
}

// readNodePropsComposite fetches one node's properties by a composite key
// (used for Method's (name, type) identity).
func readNodePropsComposite(ctx context.Context, tx neo4j.ManagedTransaction, label string, keys map[string]any) (map[string]any, error) {
	predicate, params := matchPredicate(keys)
	query := fmt.Sprintf("MATCH (n:%s) WHERE %s RETURN properties(n) AS props", label, predicate)
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	record, err := result.Single(ctx)
	if err != nil {
		return nil, nil // not found, not an error
	}
	props, _ := record.Get("props")
	m, _ := props.(map[string]any)
	return m, nil
}

// sortedKeyNames returns keys' property names in a deterministic order, so
// that matchPredicate and mergePattern assign the same $k<i> index to the
// same property when called separately over the same key set.
func sortedKeyNames(keys map[string]any) []string {
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// matchPredicate builds a `n.k0 = $k0 AND n.k1 = $k1 ...` clause and its
// parameter map from a key set, giving composite-key MERGE/MATCH a single
// shared implementation.
func matchPredicate(keys map[string]any) (string, map[string]any) {
	names := sortedKeyNames(keys)
	clauses := make([]string, 0, len(names))
	params := make(map[string]any, len(names))
	for i, k := range names {
		param := fmt.Sprintf("k%d", i)
		clauses = append(clauses, fmt.Sprintf("n.%s = $%s", k, param))
		params[param] = keys[k]
	}
	return strings.Join(clauses, " AND "), params
}

// upsertCanonicalEntity runs the §4.7 conflict-resolution read-then-write
// for one canonical node (Theory, Phenomenon, Method, Software, Dataset):
// read the existing properties by identity key, resolve against the
// incoming record, then MERGE the decision back. original_name is set only
// on creation (§3.3 "original_name ... on first creation only"), never
// overwritten on a later match.
func (ing *Ingester) upsertCanonicalEntity(ctx context.Context, tx neo4j.ManagedTransaction, label, entityKind string, keys map[string]any, incoming map[string]any) (ConflictDecision, error) {
	existing, err := readNodePropsComposite(ctx, tx, label, keys)
	if err != nil {
		return ConflictDecision{}, err
	}

	decision := ResolveConflict(ing.strategy, entityKind, existing, incoming)

	matchProps := cloneMap(decision.Record)
	delete(matchProps, "original_name")

	_, params := matchPredicate(keys)
	query := fmt.Sprintf(
		"MERGE (n:%s {%s}) ON CREATE SET n += $create ON MATCH SET n += $match",
		label, mergePattern(keys),
	)
	params["create"] = decision.Record
	params["match"] = matchProps

	if err := run(ctx, tx, query, params); err != nil {
		return decision, err
	}
	return decision, nil
}

// mergePattern renders `k0: $k0, k1: $k1` for use inside a MERGE node
// pattern, using the same sorted key order as matchPredicate so indices
// line up with the parameter map it builds.
func mergePattern(keys map[string]any) string {
	names := sortedKeyNames(keys)
	clauses := make([]string, 0, len(names))
	for i, k := range names {
		clauses = append(clauses, fmt.Sprintf("%s: $k%d", k, i))
	}
	return strings.Join(clauses, ", ")
}
