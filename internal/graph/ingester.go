// Package graph is the Graph Store + Ingester component pairing (§2.1,
// §4.6, §4.7, §4.8, §6.3): a Neo4j driver wrapper with connection retry,
// schema/constraint management, and the single atomic per-paper ingestion
// transaction with conflict resolution and theory-phenomenon
// connection-strength scoring.
package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"smj-graphpipeline/internal/ids"
	"smj-graphpipeline/internal/model"
)

// Ingester runs the §4.6 atomic per-paper ingestion transaction.
type Ingester struct {
	client   *Client
	strategy ConflictStrategy
}

// NewIngester builds an Ingester against an already-connected Client.
// strategy selects the §4.7 conflict-resolution policy used for every
// canonical entity upsert; the zero value resolves to
// DefaultConflictStrategy.
func NewIngester(client *Client, strategy ConflictStrategy) *Ingester {
	if strategy == "" {
		strategy = DefaultConflictStrategy
	}
	return &Ingester{client: client, strategy: strategy}
}

// IngestDecision is one conflict-resolution outcome logged by the caller
// after IngestPaper returns, so the worker pool's per-paper log line can
// report what happened to each canonical entity without the ingester
// depending on a logging package itself.
type IngestDecision struct {
	EntityKind string
	Identity   string
	Reason     string
}

// IngestPaper runs §4.6 steps 1-9 as one write transaction. On any error
// the whole transaction rolls back and the paper is the caller's
// responsibility to mark FAILED.
func (ing *Ingester) IngestPaper(ctx context.Context, in PaperIngestInput) ([]IngestDecision, error) {
	var decisions []IngestDecision

	_, err := ing.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		decisions = nil // reset on retry

		if err := upsertPaper(ctx, tx, in.Paper); err != nil {
			return nil, fmt.Errorf("upsert paper: %w", err)
		}
		if err := upsertAuthors(ctx, tx, in.Paper.PaperID, in.Authors); err != nil {
			return nil, fmt.Errorf("upsert authors: %w", err)
		}
		if err := deletePaperScopedEdges(ctx, tx, in.Paper.PaperID); err != nil {
			return nil, fmt.Errorf("delete paper-scoped edges: %w", err)
		}

		theoryDecisions, err := ing.upsertTheories(ctx, tx, in)
		if err != nil {
			return nil, fmt.Errorf("upsert theories: %w", err)
		}
		decisions = append(decisions, theoryDecisions...)

		phenomenonDecisions, err := ing.upsertPhenomena(ctx, tx, in)
		if err != nil {
			return nil, fmt.Errorf("upsert phenomena: %w", err)
		}
		decisions = append(decisions, phenomenonDecisions...)

		methodDecisions, err := ing.upsertMethods(ctx, tx, in)
		if err != nil {
			return nil, fmt.Errorf("upsert methods: %w", err)
		}
		decisions = append(decisions, methodDecisions...)

		softwareDecisions, err := ing.upsertSoftware(ctx, tx, in)
		if err != nil {
			return nil, fmt.Errorf("upsert software: %w", err)
		}
		decisions = append(decisions, softwareDecisions...)

		datasetDecisions, err := ing.upsertDatasets(ctx, tx, in)
		if err != nil {
			return nil, fmt.Errorf("upsert datasets: %w", err)
		}
		decisions = append(decisions, datasetDecisions...)

		if err := upsertVariables(ctx, tx, in.Paper.PaperID, in.Variables); err != nil {
			return nil, fmt.Errorf("upsert variables: %w", err)
		}
		if err := upsertFindings(ctx, tx, in.Paper.PaperID, in.Findings); err != nil {
			return nil, fmt.Errorf("upsert findings: %w", err)
		}
		if err := upsertContributions(ctx, tx, in.Paper.PaperID, in.Contributions); err != nil {
			return nil, fmt.Errorf("upsert contributions: %w", err)
		}
		if err := upsertResearchQuestions(ctx, tx, in.Paper.PaperID, in.ResearchQuestions); err != nil {
			return nil, fmt.Errorf("upsert research questions: %w", err)
		}

		if err := upsertExplainsPhenomenon(ctx, tx, in); err != nil {
			return nil, fmt.Errorf("upsert theory-phenomenon edges: %w", err)
		}

		if err := resolveCitations(ctx, tx, in.Paper.PaperID, in.Citations); err != nil {
			return nil, fmt.Errorf("resolve citations: %w", err)
		}

		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return decisions, nil
}

func upsertPaper(ctx context.Context, tx neo4j.ManagedTransaction, p model.Paper) error {
	query := `
MERGE (p:Paper {paper_id: $paper_id})
SET p.title = $title,
    p.abstract = $abstract,
    p.publication_year = $publication_year,
    p.journal = $journal,
    p.doi = $doi,
    p.keywords = $keywords,
    p.paper_type = $paper_type`
	return run(ctx, tx, query, map[string]any{
		"paper_id":         p.PaperID,
		"title":            p.Title,
		"abstract":         p.Abstract,
		"publication_year": p.PublicationYear,
		"journal":          p.Journal,
		"doi":              p.DOI,
		"keywords":         p.Keywords,
		"paper_type":       string(p.PaperType),
	})
}

func upsertAuthors(ctx context.Context, tx neo4j.ManagedTransaction, paperID string, authors []AuthorRecord) error {
	for _, a := range authors {
		err := run(ctx, tx, `
MERGE (auth:Author {author_id: $author_id})
SET auth.full_name = $full_name, auth.given_name = $given_name,
    auth.family_name = $family_name, auth.orcid = $orcid, auth.email = $email
WITH auth
MATCH (p:Paper {paper_id: $paper_id})
MERGE (auth)-[r:AUTHORED]->(p)
SET r.position = $position`, map[string]any{
			"author_id":   a.Author.AuthorID,
			"full_name":   a.Author.FullName,
			"given_name":  a.Author.GivenName,
			"family_name": a.Author.FamilyName,
			"orcid":       a.Author.ORCID,
			"email":       a.Author.Email,
			"paper_id":    paperID,
			"position":    a.Position,
		})
		if err != nil {
			return err
		}

		for _, aff := range a.Affiliations {
			err := run(ctx, tx, `
MERGE (i:Institution {institution_id: $institution_id})
SET i.institution_name = $institution_name, i.department = $department,
    i.city = $city, i.country = $country
WITH i
MATCH (auth:Author {author_id: $author_id})
MERGE (auth)-[r:AFFILIATED_WITH]->(i)
SET r.affiliation_type = $affiliation_type, r.position_title = $position_title`, map[string]any{
				"institution_id":   aff.Institution.InstitutionID,
				"institution_name": aff.Institution.InstitutionName,
				"department":       aff.Institution.Department,
				"city":             aff.Institution.City,
				"country":          aff.Institution.Country,
				"author_id":        a.Author.AuthorID,
				"affiliation_type": aff.Edge.AffiliationType,
				"position_title":   aff.Edge.PositionTitle,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// deletePaperScopedEdges realizes the §3.3 "deleted and rewritten on
// re-ingestion" invariant for every edge type §3.3 lists as paper-scoped,
// in one batched statement per type.
func deletePaperScopedEdges(ctx context.Context, tx neo4j.ManagedTransaction, paperID string) error {
	for _, edgeType := range model.PaperScopedEdgeTypes {
		query := fmt.Sprintf(
			"MATCH (p:Paper {paper_id: $paper_id})-[r:%s]->() DELETE r",
			edgeType,
		)
		if err := run(ctx, tx, query, map[string]any{"paper_id": paperID}); err != nil {
			return err
		}
	}
	return nil
}

func (ing *Ingester) upsertTheories(ctx context.Context, tx neo4j.ManagedTransaction, in PaperIngestInput) ([]IngestDecision, error) {
	var decisions []IngestDecision
	now := time.Now().UTC().Format(time.RFC3339)

	for _, t := range in.Theories {
		incoming := map[string]any{
			"name":          t.Theory.Name,
			"domain":        t.Theory.Domain,
			"theory_type":   string(t.Theory.TheoryType),
			"description":   t.Theory.Description,
			"original_name": t.Theory.OriginalName,
			"confidence":    t.Edge.Confidence,
			"extracted_at":  now,
		}
		decision, err := ing.upsertCanonicalEntity(ctx, tx, "Theory", "theory", map[string]any{"name": t.Theory.Name}, incoming)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, IngestDecision{EntityKind: "theory", Identity: t.Theory.Name, Reason: decision.Reason})

		err = run(ctx, tx, `
MATCH (p:Paper {paper_id: $paper_id}), (t:Theory {name: $name})
MERGE (p)-[r:USES_THEORY]->(t)
SET r.role = $role, r.section = $section, r.usage_context = $usage_context,
    r.confidence = $confidence, r.validation_status = $validation_status`, map[string]any{
			"paper_id":          in.Paper.PaperID,
			"name":              t.Theory.Name,
			"role":              string(t.Edge.Role),
			"section":           t.Edge.Section,
			"usage_context":     t.Edge.UsageContext,
			"confidence":        t.Edge.Confidence,
			"validation_status": string(t.Edge.ValidationStatus),
		})
		if err != nil {
			return nil, err
		}

		if err := upsertAuthorTheoryCumulative(ctx, tx, in.Paper, in.Authors, t.Theory.Name); err != nil {
			return nil, err
		}
	}
	return decisions, nil
}

// upsertAuthorTheoryCumulative writes the cumulative Author->Theory edge
// (§3.2) once per (paper, author, theory) triple, keyed on the paper so
// the ON MATCH increment only ever fires once per paper (§8's flagged
// correctness hazard: a naive MERGE keyed only on author+theory would
// double-count paper_count on retries within the same paper).
func upsertAuthorTheoryCumulative(ctx context.Context, tx neo4j.ManagedTransaction, paper model.Paper, authors []AuthorRecord, theoryName string) error {
	for _, a := range authors {
		if err := run(ctx, tx, `
MATCH (auth:Author {author_id: $author_id}), (t:Theory {name: $name})
MERGE (marker:TripleSeen {kind: 'theory', paper_id: $paper_id, author_id: $author_id, name: $name})
ON CREATE SET marker.seen = true
WITH auth, t, marker
MATCH (marker)
WHERE marker.seen = true AND marker.counted IS NULL
MERGE (auth)-[cum:USES_THEORY_CUMULATIVE]->(t)
ON CREATE SET cum.paper_count = 1, cum.first_used_year = $year
ON MATCH SET cum.paper_count = cum.paper_count + 1
SET marker.counted = true`, map[string]any{
			"author_id": a.Author.AuthorID,
			"name":      theoryName,
			"paper_id":  paper.PaperID,
			"year":      paper.PublicationYear,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (ing *Ingester) upsertPhenomena(ctx context.Context, tx neo4j.ManagedTransaction, in PaperIngestInput) ([]IngestDecision, error) {
	var decisions []IngestDecision
	now := time.Now().UTC().Format(time.RFC3339)

	for _, ph := range in.Phenomena {
		incoming := map[string]any{
			"phenomenon_name":   ph.Phenomenon.PhenomenonName,
			"phenomenon_type":   string(ph.Phenomenon.PhenomenonType),
			"domain":            ph.Phenomenon.Domain,
			"description":       ph.Phenomenon.Description,
			"context":           ph.Phenomenon.Context,
			"level_of_analysis": string(ph.Phenomenon.LevelOfAnalysis),
			"original_name":     ph.Phenomenon.OriginalName,
			"confidence":        0.8,
			"extracted_at":      now,
		}
		decision, err := ing.upsertCanonicalEntity(ctx, tx, "Phenomenon", "phenomenon", map[string]any{"phenomenon_name": ph.Phenomenon.PhenomenonName}, incoming)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, IngestDecision{EntityKind: "phenomenon", Identity: ph.Phenomenon.PhenomenonName, Reason: decision.Reason})

		err = run(ctx, tx, `
MATCH (p:Paper {paper_id: $paper_id}), (ph:Phenomenon {phenomenon_name: $name})
MERGE (p)-[r:STUDIES_PHENOMENON]->(ph)
SET r.section = $section, r.context = $context`, map[string]any{
			"paper_id": in.Paper.PaperID,
			"name":     ph.Phenomenon.PhenomenonName,
			"section":  ph.Edge.Section,
			"context":  ph.Edge.Context,
		})
		if err != nil {
			return nil, err
		}

		if err := upsertAuthorPhenomenonCumulative(ctx, tx, in.Paper, in.Authors, ph.Phenomenon.PhenomenonName); err != nil {
			return nil, err
		}
	}
	return decisions, nil
}

func upsertAuthorPhenomenonCumulative(ctx context.Context, tx neo4j.ManagedTransaction, paper model.Paper, authors []AuthorRecord, phenomenonName string) error {
	for _, a := range authors {
		if err := run(ctx, tx, `
MATCH (auth:Author {author_id: $author_id}), (ph:Phenomenon {phenomenon_name: $name})
MERGE (marker:TripleSeen {kind: 'phenomenon', paper_id: $paper_id, author_id: $author_id, name: $name})
ON CREATE SET marker.seen = true
WITH auth, ph, marker
MATCH (marker)
WHERE marker.seen = true AND marker.counted IS NULL
MERGE (auth)-[cum:STUDIES_PHENOMENON_CUMULATIVE]->(ph)
ON CREATE SET cum.paper_count = 1, cum.first_used_year = $year
ON MATCH SET cum.paper_count = cum.paper_count + 1
SET marker.counted = true`, map[string]any{
			"author_id": a.Author.AuthorID,
			"name":      phenomenonName,
			"paper_id":  paper.PaperID,
			"year":      paper.PublicationYear,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (ing *Ingester) upsertMethods(ctx context.Context, tx neo4j.ManagedTransaction, in PaperIngestInput) ([]IngestDecision, error) {
	var decisions []IngestDecision
	now := time.Now().UTC().Format(time.RFC3339)

	for _, m := range in.Methods {
		incoming := map[string]any{
			"name":         m.Method.Name,
			"type":         string(m.Method.Type),
			"category":     m.Method.Category,
			"software":     m.Method.Software,
			"sample_size":  m.Method.SampleSize,
			"time_period":  m.Method.TimePeriod,
			"confidence":   m.Edge.Confidence,
			"extracted_at": now,
		}
		keys := map[string]any{"name": m.Method.Name, "type": string(m.Method.Type)}
		decision, err := ing.upsertCanonicalEntity(ctx, tx, "Method", "method", keys, incoming)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, IngestDecision{EntityKind: "method", Identity: m.Method.Name, Reason: decision.Reason})

		err = run(ctx, tx, `
MATCH (p:Paper {paper_id: $paper_id}), (m:Method {name: $name, type: $type})
MERGE (p)-[r:USES_METHOD]->(m)
SET r.confidence = $confidence`, map[string]any{
			"paper_id":   in.Paper.PaperID,
			"name":       m.Method.Name,
			"type":       string(m.Method.Type),
			"confidence": m.Edge.Confidence,
		})
		if err != nil {
			return nil, err
		}
	}
	return decisions, nil
}

func (ing *Ingester) upsertSoftware(ctx context.Context, tx neo4j.ManagedTransaction, in PaperIngestInput) ([]IngestDecision, error) {
	var decisions []IngestDecision
	now := time.Now().UTC().Format(time.RFC3339)

	for _, s := range in.Software {
		incoming := map[string]any{
			"software_name": s.Software.SoftwareName,
			"version":       s.Software.Version,
			"software_type": s.Software.SoftwareType,
			"confidence":    0.8,
			"extracted_at":  now,
		}
		decision, err := ing.upsertCanonicalEntity(ctx, tx, "Software", "software", map[string]any{"software_name": s.Software.SoftwareName}, incoming)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, IngestDecision{EntityKind: "software", Identity: s.Software.SoftwareName, Reason: decision.Reason})

		if err := run(ctx, tx, `
MATCH (p:Paper {paper_id: $paper_id}), (s:Software {software_name: $name})
MERGE (p)-[r:USES_SOFTWARE]->(s)`, map[string]any{
			"paper_id": in.Paper.PaperID,
			"name":     s.Software.SoftwareName,
		}); err != nil {
			return nil, err
		}
	}
	return decisions, nil
}

func (ing *Ingester) upsertDatasets(ctx context.Context, tx neo4j.ManagedTransaction, in PaperIngestInput) ([]IngestDecision, error) {
	var decisions []IngestDecision
	now := time.Now().UTC().Format(time.RFC3339)

	for _, d := range in.Datasets {
		incoming := map[string]any{
			"dataset_name": d.Dataset.DatasetName,
			"dataset_type": d.Dataset.DatasetType,
			"time_period":  d.Dataset.TimePeriod,
			"sample_size":  d.Dataset.SampleSize,
			"access":       d.Dataset.Access,
			"confidence":   0.8,
			"extracted_at": now,
		}
		decision, err := ing.upsertCanonicalEntity(ctx, tx, "Dataset", "dataset", map[string]any{"dataset_name": d.Dataset.DatasetName}, incoming)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, IngestDecision{EntityKind: "dataset", Identity: d.Dataset.DatasetName, Reason: decision.Reason})

		if err := run(ctx, tx, `
MATCH (p:Paper {paper_id: $paper_id}), (d:Dataset {dataset_name: $name})
MERGE (p)-[r:USES_DATASET]->(d)`, map[string]any{
			"paper_id": in.Paper.PaperID,
			"name":     d.Dataset.DatasetName,
		}); err != nil {
			return nil, err
		}
	}
	return decisions, nil
}

// upsertVariables, upsertFindings, upsertContributions and
// upsertResearchQuestions are the §4.6 step 6 "batched UNWIND-style
// upserts" for the four paper-scoped entity kinds keyed by a stable
// content hash rather than a canonical name.
func upsertVariables(ctx context.Context, tx neo4j.ManagedTransaction, paperID string, vars []VariableRecord) error {
	rows := make([]map[string]any, 0, len(vars))
	for _, v := range vars {
		id := v.Variable.VariableID
		if id == "" {
			id = ids.VariableID(paperID, v.Variable.VariableName)
		}
		rows = append(rows, map[string]any{
			"variable_id":        id,
			"variable_name":      v.Variable.VariableName,
			"variable_type":      string(v.Variable.VariableType),
			"measurement":        v.Variable.Measurement,
			"operationalization": v.Variable.Operationalization,
		})
	}
	return run(ctx, tx, `
UNWIND $rows AS row
MERGE (v:Variable {variable_id: row.variable_id})
SET v.variable_name = row.variable_name, v.measurement = row.measurement,
    v.operationalization = row.operationalization
WITH v, row
MATCH (p:Paper {paper_id: $paper_id})
MERGE (p)-[r:USES_VARIABLE]->(v)
SET r.variable_type = row.variable_type`, map[string]any{"rows": rows, "paper_id": paperID})
}

func upsertFindings(ctx context.Context, tx neo4j.ManagedTransaction, paperID string, findings []model.Finding) error {
	rows := make([]map[string]any, 0, len(findings))
	for _, f := range findings {
		id := f.FindingID
		if id == "" {
			id = ids.FindingID(paperID, f.FindingText)
		}
		rows = append(rows, map[string]any{
			"finding_id":   id,
			"finding_text": f.FindingText,
			"finding_type": string(f.FindingType),
			"significance": f.Significance,
			"effect_size":  f.EffectSize,
			"section":      f.Section,
		})
	}
	return run(ctx, tx, `
UNWIND $rows AS row
MERGE (f:Finding {finding_id: row.finding_id})
SET f.finding_text = row.finding_text, f.finding_type = row.finding_type,
    f.significance = row.significance, f.effect_size = row.effect_size, f.section = row.section
WITH f
MATCH (p:Paper {paper_id: $paper_id})
MERGE (p)-[r:REPORTS]->(f)`, map[string]any{"rows": rows, "paper_id": paperID})
}

func upsertContributions(ctx context.Context, tx neo4j.ManagedTransaction, paperID string, contributions []model.Contribution) error {
	rows := make([]map[string]any, 0, len(contributions))
	for _, c := range contributions {
		id := c.ContributionID
		if id == "" {
			id = ids.ContributionID(paperID, c.ContributionText)
		}
		rows = append(rows, map[string]any{
			"contribution_id":   id,
			"contribution_text": c.ContributionText,
			"contribution_type": string(c.ContributionType),
			"section":           c.Section,
		})
	}
	return run(ctx, tx, `
UNWIND $rows AS row
MERGE (c:Contribution {contribution_id: row.contribution_id})
SET c.contribution_text = row.contribution_text, c.contribution_type = row.contribution_type, c.section = row.section
WITH c
MATCH (p:Paper {paper_id: $paper_id})
MERGE (p)-[r:MAKES]->(c)`, map[string]any{"rows": rows, "paper_id": paperID})
}

func upsertResearchQuestions(ctx context.Context, tx neo4j.ManagedTransaction, paperID string, questions []model.ResearchQuestion) error {
	rows := make([]map[string]any, 0, len(questions))
	for _, q := range questions {
		id := q.QuestionID
		if id == "" {
			id = ids.QuestionID(paperID, q.Question)
		}
		rows = append(rows, map[string]any{
			"question_id":   id,
			"question":      q.Question,
			"question_type": string(q.QuestionType),
			"section":       q.Section,
		})
	}
	return run(ctx, tx, `
UNWIND $rows AS row
MERGE (q:ResearchQuestion {question_id: row.question_id})
SET q.question = row.question, q.question_type = row.question_type, q.section = row.section
WITH q
MATCH (p:Paper {paper_id: $paper_id})
MERGE (p)-[r:ADDRESSES]->(q)`, map[string]any{"rows": rows, "paper_id": paperID})
}

// upsertExplainsPhenomenon is §4.6 step 7: for every (theory, phenomenon)
// pair extracted from this paper, compute the §4.8 connection strength and
// only create the edge once it clears the threshold.
func upsertExplainsPhenomenon(ctx context.Context, tx neo4j.ManagedTransaction, in PaperIngestInput) error {
	linked := make(map[string]bool, len(in.TheoryPhenomenonLinks))
	for _, l := range in.TheoryPhenomenonLinks {
		linked[l.Theory+"\x1f"+l.Phenomenon] = true
	}

	for _, t := range in.Theories {
		for _, ph := range in.Phenomena {
			edge := ConnectionStrength(ConnectionStrengthInput{
				TheoryRole:          t.Edge.Role,
				TheorySection:       t.Edge.Section,
				PhenomenonSection:   ph.Edge.Section,
				TheoryUsageContext:  t.Edge.UsageContext,
				PhenomenonText:      strings.TrimSpace(ph.Phenomenon.Description + " " + ph.Phenomenon.Context),
				TheoryEmbedding:     t.Theory.Embedding,
				PhenomenonEmbedding: ph.Phenomenon.Embedding,
				ExplicitlyLinked:    linked[t.Theory.Name+"\x1f"+ph.Phenomenon.PhenomenonName],
			})
			if !MeetsConnectionThreshold(edge) {
				continue
			}

			err := run(ctx, tx, `
MATCH (t:Theory {name: $theory_name}), (ph:Phenomenon {phenomenon_name: $phenomenon_name})
MERGE (t)-[r:EXPLAINS_PHENOMENON {paper_id: $paper_id}]->(ph)
SET r.theory_role = $theory_role, r.section = $section, r.connection_strength = $connection_strength,
    r.role_score = $role_score, r.section_score = $section_score, r.keyword_score = $keyword_score,
    r.semantic_score = $semantic_score, r.explicit_bonus = $explicit_bonus`, map[string]any{
				"theory_name":         t.Theory.Name,
				"phenomenon_name":     ph.Phenomenon.PhenomenonName,
				"paper_id":            in.Paper.PaperID,
				"theory_role":         edge.TheoryRole,
				"section":             edge.Section,
				"connection_strength": edge.ConnectionStrength,
				"role_score":          edge.RoleScore,
				"section_score":       edge.SectionScore,
				"keyword_score":       edge.KeywordScore,
				"semantic_score":      edge.SemanticScore,
				"explicit_bonus":      edge.ExplicitBonus,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
