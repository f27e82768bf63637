// Package relationships implements the §6.4 compute-relationships pass: a
// post-hoc sweep over the already-ingested graph that derives paper-to-paper
// edges the per-paper ingestion transaction never sees, since they depend on
// comparing one paper against every other paper rather than a paper against
// its own extracted entities.
package relationships

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"smj-graphpipeline/internal/graph"
	"smj-graphpipeline/internal/normalizer"
)

// sharedVariableThreshold is §6.4's "≥2 shared variables" rule for
// USES_SAME_VARIABLES.
const sharedVariableThreshold = 2

// temporalSequenceYearGap is §6.4's "≤5-year gap" rule for TEMPORAL_SEQUENCE
// within a topic.
const temporalSequenceYearGap = 5

// PaperSummary is the slice of one paper's entities this pass compares
// against every other paper.
type PaperSummary struct {
	PaperID         string
	Year            int
	Title           string
	PrimaryTheories []string
	Methods         []string
	Variables       []string
}

// Stats reports how many relationship edges each rule produced, for the
// CLI's summary line.
type Stats struct {
	UsesSameTheory   int
	UsesSameMethod   int
	UsesSameVariable int
	TemporalSequence int
	Topics           int
}

// Run executes the full post-hoc pass: fetch every paper's summary, derive
// the four paper-to-paper relationship types, cluster papers into topics,
// and persist everything in one write transaction per relationship kind.
func Run(ctx context.Context, client *graph.Client) (Stats, error) {
	summaries, err := fetchPaperSummaries(ctx, client)
	if err != nil {
		return Stats{}, fmt.Errorf("relationships: fetch paper summaries: %w", err)
	}

	var stats Stats
	if stats.UsesSameTheory, err = writeSharedEdges(ctx, client, summaries, "USES_SAME_THEORY", func(p PaperSummary) []string { return p.PrimaryTheories }, 1); err != nil {
		return stats, fmt.Errorf("relationships: USES_SAME_THEORY: %w", err)
	}
	if stats.UsesSameMethod, err = writeSharedEdges(ctx, client, summaries, "USES_SAME_METHOD", func(p PaperSummary) []string { return p.Methods }, 1); err != nil {
		return stats, fmt.Errorf("relationships: USES_SAME_METHOD: %w", err)
	}
	if stats.UsesSameVariable, err = writeSharedEdges(ctx, client, summaries, "USES_SAME_VARIABLES", func(p PaperSummary) []string { return p.Variables }, sharedVariableThreshold); err != nil {
		return stats, fmt.Errorf("relationships: USES_SAME_VARIABLES: %w", err)
	}

	clusters := clusterTopics(summaries)
	if err := persistTopics(ctx, client, clusters); err != nil {
		return stats, fmt.Errorf("relationships: persist topics: %w", err)
	}
	stats.Topics = len(clusters)

	if stats.TemporalSequence, err = writeTemporalSequence(ctx, client, clusters); err != nil {
		return stats, fmt.Errorf("relationships: TEMPORAL_SEQUENCE: %w", err)
	}

	if err := nameTopics(ctx, client, clusters); err != nil {
		return stats, fmt.Errorf("relationships: name topics: %w", err)
	}

	return stats, nil
}

// fetchPaperSummaries reads every Paper's primary theories, methods, and
// variables in one read transaction.
func fetchPaperSummaries(ctx context.Context, client *graph.Client) ([]PaperSummary, error) {
	byID := make(map[string]*PaperSummary)

	_, err := client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
MATCH (p:Paper)
RETURN p.paper_id AS paper_id, p.publication_year AS year, p.title AS title`, nil)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			id, _ := r.Get("paper_id")
			paperID, _ := id.(string)
			if paperID == "" {
				continue
			}
			year, _ := r.Get("year")
			title, _ := r.Get("title")
			titleStr, _ := title.(string)
			byID[paperID] = &PaperSummary{PaperID: paperID, Year: toInt(year), Title: titleStr}
		}

		if err := collectNeighborNames(ctx, tx, `
MATCH (p:Paper)-[r:USES_THEORY {role: 'primary'}]->(t:Theory)
RETURN p.paper_id AS paper_id, t.name AS name`, byID, func(s *PaperSummary, name string) {
			s.PrimaryTheories = append(s.PrimaryTheories, name)
		}); err != nil {
			return nil, err
		}

		if err := collectNeighborNames(ctx, tx, `
MATCH (p:Paper)-[:USES_METHOD]->(m:Method)
RETURN p.paper_id AS paper_id, m.name AS name`, byID, func(s *PaperSummary, name string) {
			s.Methods = append(s.Methods, name)
		}); err != nil {
			return nil, err
		}

		if err := collectNeighborNames(ctx, tx, `
MATCH (p:Paper)-[:USES_VARIABLE]->(v:Variable)
RETURN p.paper_id AS paper_id, v.variable_name AS name`, byID, func(s *PaperSummary, name string) {
			s.Variables = append(s.Variables, name)
		}); err != nil {
			return nil, err
		}

		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]PaperSummary, 0, len(byID))
	for _, s := range byID {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaperID < out[j].PaperID })
	return out, nil
}

func collectNeighborNames(ctx context.Context, tx neo4j.ManagedTransaction, query string, byID map[string]*PaperSummary, assign func(*PaperSummary, string)) error {
	result, err := tx.Run(ctx, query, nil)
	if err != nil {
		return err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return err
	}
	for _, r := range records {
		id, _ := r.Get("paper_id")
		paperID, _ := id.(string)
		s, ok := byID[paperID]
		if !ok {
			continue
		}
		nameVal, _ := r.Get("name")
		if name, ok := nameVal.(string); ok && name != "" {
			assign(s, name)
		}
	}
	return nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// writeSharedEdges creates a symmetric relType edge between every pair of
// papers whose key(p) sets intersect at least minShared times, keeping the
// shared values on the edge for traceability.
func writeSharedEdges(ctx context.Context, client *graph.Client, summaries []PaperSummary, relType string, key func(PaperSummary) []string, minShared int) (int, error) {
	type pair struct {
		a, b   string
		shared []string
	}
	var pairs []pair
	for i := 0; i < len(summaries); i++ {
		for j := i + 1; j < len(summaries); j++ {
			shared := intersect(key(summaries[i]), key(summaries[j]))
			if len(shared) >= minShared {
				pairs = append(pairs, pair{a: summaries[i].PaperID, b: summaries[j].PaperID, shared: shared})
			}
		}
	}
	if len(pairs) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
UNWIND $pairs AS pair
MATCH (a:Paper {paper_id: pair.a}), (b:Paper {paper_id: pair.b})
MERGE (a)-[r:%s]->(b)
SET r.shared = pair.shared`, relType)

	rows := make([]map[string]any, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, map[string]any{"a": p.a, "b": p.b, "shared": p.shared})
	}

	_, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{"pairs": rows})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return 0, err
	}
	return len(pairs), nil
}

func intersect(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	var out []string
	seen := make(map[string]bool)
	for _, v := range b {
		if set[v] && !seen[v] {
			out = append(out, v)
			seen[v] = true
		}
	}
	return out
}

// topicIntervalSpan is the width in years of one Topic interval bucket,
// the same granularity §6.4's TEMPORAL_SEQUENCE rule reasons about.
const topicIntervalSpan = 5

// topicCluster is one (interval, dominant-theory) grouping of papers: the
// §3.1 "interval + cluster index" identity of a Topic node, plus everything
// needed to compute paper_count, coherence, representative_paper_id, and
// (via nameTopics) name.
type topicCluster struct {
	TopicID               string
	Interval              string
	Papers                []PaperSummary
	Coherence             float64
	RepresentativePaperID string
	Name                  string
}

// clusterTopics groups papers into §6.4 "same-topic" clusters: first by a
// 5-year publication-year interval, then by dominant primary theory within
// that interval. This is deliberately a simple, deterministic substitute
// for full topic modeling (out of scope per §1 Non-goals beyond "simple
// interval clustering") that still gives TEMPORAL_SEQUENCE and Topic nodes
// a concrete, reproducible basis.
func clusterTopics(summaries []PaperSummary) []topicCluster {
	byInterval := make(map[string][]PaperSummary)
	for _, s := range summaries {
		interval := topicInterval(s.Year)
		byInterval[interval] = append(byInterval[interval], s)
	}

	intervals := make([]string, 0, len(byInterval))
	for k := range byInterval {
		intervals = append(intervals, k)
	}
	sort.Strings(intervals)

	var clusters []topicCluster
	for _, interval := range intervals {
		byTheory := make(map[string][]PaperSummary)
		for _, p := range byInterval[interval] {
			theory := "unclassified"
			if len(p.PrimaryTheories) > 0 {
				theory = p.PrimaryTheories[0]
			}
			byTheory[theory] = append(byTheory[theory], p)
		}

		theories := make([]string, 0, len(byTheory))
		for k := range byTheory {
			theories = append(theories, k)
		}
		sort.Strings(theories)

		for idx, theory := range theories {
			group := byTheory[theory]
			sort.Slice(group, func(i, j int) bool {
				if group[i].Year != group[j].Year {
					return group[i].Year < group[j].Year
				}
				return group[i].PaperID < group[j].PaperID
			})
			clusters = append(clusters, topicCluster{
				TopicID:               fmt.Sprintf("%s::%d", interval, idx),
				Interval:              interval,
				Papers:                group,
				Coherence:             topicCoherence(group),
				RepresentativePaperID: group[0].PaperID,
			})
		}
	}
	return clusters
}

// topicInterval buckets a publication year into a 5-year span, e.g. 1993 ->
// "1990-1994". A non-positive (unknown) year gets its own bucket so it
// never silently joins an unrelated interval.
func topicInterval(year int) string {
	if year <= 0 {
		return "unknown"
	}
	start := (year / topicIntervalSpan) * topicIntervalSpan
	return fmt.Sprintf("%d-%d", start, start+topicIntervalSpan-1)
}

// topicCoherence scores how tightly a cluster's papers relate beyond
// sharing a dominant theory: the fraction of paper pairs that also share at
// least one method, scaled into [0.5, 1.0] so a singleton or
// all-method-sharing cluster both read as maximally coherent.
func topicCoherence(group []PaperSummary) float64 {
	if len(group) <= 1 {
		return 1.0
	}
	totalPairs, sharedPairs := 0, 0
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			totalPairs++
			if len(intersect(group[i].Methods, group[j].Methods)) > 0 {
				sharedPairs++
			}
		}
	}
	if totalPairs == 0 {
		return 1.0
	}
	return 0.5 + 0.5*float64(sharedPairs)/float64(totalPairs)
}

// persistTopics writes one Topic node per cluster and a BELONGS_TO_TOPIC
// edge from every member paper (§3.1, §3.2).
func persistTopics(ctx context.Context, client *graph.Client, clusters []topicCluster) error {
	if len(clusters) == 0 {
		return nil
	}

	topicRows := make([]map[string]any, 0, len(clusters))
	membershipRows := make([]map[string]any, 0)
	for _, c := range clusters {
		topicRows = append(topicRows, map[string]any{
			"topic_id":                c.TopicID,
			"interval":                c.Interval,
			"paper_count":             len(c.Papers),
			"coherence":               c.Coherence,
			"representative_paper_id": c.RepresentativePaperID,
			"name":                    c.Name,
		})
		for _, p := range c.Papers {
			membershipRows = append(membershipRows, map[string]any{
				"paper_id": p.PaperID,
				"topic_id": c.TopicID,
			})
		}
	}

	_, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := run(ctx, tx, `
UNWIND $topics AS topic
MERGE (t:Topic {topic_id: topic.topic_id})
SET t.interval = topic.interval,
    t.paper_count = topic.paper_count,
    t.coherence = topic.coherence,
    t.representative_paper_id = topic.representative_paper_id,
    t.name = topic.name`, map[string]any{"topics": topicRows}); err != nil {
			return nil, err
		}
		if len(membershipRows) > 0 {
			if err := run(ctx, tx, `
UNWIND $memberships AS m
MATCH (p:Paper {paper_id: m.paper_id}), (t:Topic {topic_id: m.topic_id})
MERGE (p)-[:BELONGS_TO_TOPIC]->(t)`, map[string]any{"memberships": membershipRows}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// writeTemporalSequence creates a directed TEMPORAL_SEQUENCE edge between
// every pair of same-topic papers whose publication-year gap is within
// temporalSequenceYearGap (§6.4), from the earlier paper to the later one
// (ties broken by paper_id for a deterministic direction).
func writeTemporalSequence(ctx context.Context, client *graph.Client, clusters []topicCluster) (int, error) {
	type pair struct {
		earlier, later string
		gap            int
	}
	var pairs []pair
	for _, c := range clusters {
		papers := c.Papers
		for i := 0; i < len(papers); i++ {
			for j := i + 1; j < len(papers); j++ {
				a, b := papers[i], papers[j]
				earlier, later := a, b
				if earlier.Year > later.Year || (earlier.Year == later.Year && earlier.PaperID > later.PaperID) {
					earlier, later = later, earlier
				}
				gap := later.Year - earlier.Year
				if gap < 0 {
					gap = -gap
				}
				if gap <= temporalSequenceYearGap {
					pairs = append(pairs, pair{earlier: earlier.PaperID, later: later.PaperID, gap: gap})
				}
			}
		}
	}
	if len(pairs) == 0 {
		return 0, nil
	}

	rows := make([]map[string]any, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, map[string]any{"earlier": p.earlier, "later": p.later, "gap": p.gap})
	}

	_, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
UNWIND $pairs AS pair
MATCH (a:Paper {paper_id: pair.earlier}), (b:Paper {paper_id: pair.later})
MERGE (a)-[r:TEMPORAL_SEQUENCE]->(b)
SET r.year_gap = pair.gap`, map[string]any{"pairs": rows})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return 0, err
	}
	return len(pairs), nil
}

// topicNameStopwords excludes generic scholarly-writing words from the
// keyword-frequency topic-naming pass so titles like "A Study of X and Y"
// name themselves after X/Y, not "study".
var topicNameStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"study": true, "evidence": true, "analysis": true, "case": true,
	"effects": true, "effect": true, "role": true, "does": true,
}

// nameTopics computes a short human-readable name for every cluster from
// the keyword frequency of its member papers' titles (SPEC_FULL
// "Supplemented features": the original's LLM-free topic-naming pass,
// reimplemented on internal/normalizer.SignificantTokens instead of an LLM
// call) and writes it back onto each cluster's Topic node. It runs as the
// final step of Run, after persistTopics has created the nodes.
func nameTopics(ctx context.Context, client *graph.Client, clusters []topicCluster) error {
	rows := make([]map[string]any, 0, len(clusters))
	for _, c := range clusters {
		name := topicNameFromTitles(c)
		if name == "" {
			continue
		}
		rows = append(rows, map[string]any{"topic_id": c.TopicID, "name": name})
	}
	if len(rows) == 0 {
		return nil
	}

	_, err := client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, run(ctx, tx, `
UNWIND $names AS row
MATCH (t:Topic {topic_id: row.topic_id})
SET t.name = row.name`, map[string]any{"names": rows})
	})
	return err
}

// topicNameFromTitles ranks significant tokens across a cluster's titles by
// frequency and joins the top two into a title-cased name, e.g.
// "Resource Allocation".
func topicNameFromTitles(c topicCluster) string {
	counts := make(map[string]int)
	for _, p := range c.Papers {
		for token := range normalizer.SignificantTokens(p.Title) {
			if topicNameStopwords[token] {
				continue
			}
			counts[token]++
		}
	}
	if len(counts) == 0 {
		return ""
	}

	tokens := make([]string, 0, len(counts))
	for t := range counts {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if counts[tokens[i]] != counts[tokens[j]] {
			return counts[tokens[i]] > counts[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})

	limit := 2
	if len(tokens) < limit {
		limit = len(tokens)
	}
	parts := make([]string, 0, limit)
	for _, t := range tokens[:limit] {
		parts = append(parts, strings.ToUpper(t[:1])+t[1:])
	}
	return strings.Join(parts, " ")
}
