package graph

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// titlePrefixLen is §4.6 step 8's "first 50 characters, bidirectional
// containment" fuzzy-match window.
const titlePrefixLen = 50

// resolveCitations runs §4.6 step 8: for each extracted citation, try an
// exact title match, then a substring match on the first 50 characters of
// the title (bidirectional containment). Unresolved citations are not
// created as placeholder nodes (§4.6, §9 "Citation resolution via title
// substring match").
func resolveCitations(ctx context.Context, tx neo4j.ManagedTransaction, paperID string, citations []CitationRecord) error {
	for _, c := range citations {
		title := strings.TrimSpace(c.Title)
		if title == "" {
			continue
		}

		targetID, confidence, found, err := matchCitationTarget(ctx, tx, paperID, title)
		if err != nil {
			return err
		}
		if !found {
			continue
		}

		err = run(ctx, tx, `
MATCH (citing:Paper {paper_id: $paper_id}), (cited:Paper {paper_id: $target_id})
MERGE (citing)-[r:CITES {paper_id: $paper_id}]->(cited)
SET r.citation_type = $citation_type, r.section = $section, r.confidence = $confidence`, map[string]any{
			"paper_id":      paperID,
			"target_id":     targetID,
			"citation_type": string(c.CitationType),
			"section":       c.Section,
			"confidence":    confidence,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// matchCitationTarget looks up an existing Paper by exact title match
// first (confidence 1.0), then by bidirectional containment of the first
// 50 characters of each title (confidence 0.7), excluding the citing
// paper itself.
func matchCitationTarget(ctx context.Context, tx neo4j.ManagedTransaction, citingPaperID, title string) (string, float64, bool, error) {
	result, err := tx.Run(ctx, `
MATCH (p:Paper {title: $title})
WHERE p.paper_id <> $citing_id
RETURN p.paper_id AS paper_id
LIMIT 1`, map[string]any{"title": title, "citing_id": citingPaperID})
	if err != nil {
		return "", 0, false, err
	}
	if record, err := result.Single(ctx); err == nil {
		id, _ := record.Get("paper_id")
		if idStr, ok := id.(string); ok {
			return idStr, 1.0, true, nil
		}
	}

	prefix := title
	if len(prefix) > titlePrefixLen {
		prefix = prefix[:titlePrefixLen]
	}

	result, err = tx.Run(ctx, `
MATCH (p:Paper)
WHERE p.paper_id <> $citing_id AND p.title IS NOT NULL AND p.title <> ''
RETURN p.paper_id AS paper_id, p.title AS title`, map[string]any{"citing_id": citingPaperID})
	if err != nil {
		return "", 0, false, err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return "", 0, false, err
	}

	lowerPrefix := strings.ToLower(prefix)
	for _, record := range records {
		candidateTitleVal, _ := record.Get("title")
		candidateTitle, _ := candidateTitleVal.(string)
		candidatePrefix := candidateTitle
		if len(candidatePrefix) > titlePrefixLen {
			candidatePrefix = candidatePrefix[:titlePrefixLen]
		}
		lowerCandidate := strings.ToLower(candidatePrefix)

		if strings.Contains(lowerPrefix, lowerCandidate) || strings.Contains(lowerCandidate, lowerPrefix) {
			idVal, _ := record.Get("paper_id")
			id, _ := idVal.(string)
			return id, 0.7, true, nil
		}
	}

	return "", 0, false, nil
}
