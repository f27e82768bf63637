package graph

import "smj-graphpipeline/internal/model"

// AuthorRecord is one author ready for ingestion: the canonical Author
// node, its position on this paper, and any institutions it is affiliated
// with (§4.6 step 2).
type AuthorRecord struct {
	Author       model.Author
	Position     int
	Affiliations []AffiliationRecord
}

// AffiliationRecord pairs a resolved Institution with the edge properties
// of one author's claim to it.
type AffiliationRecord struct {
	Institution model.Institution
	Edge        model.AffiliatedWithEdge
}

// TheoryRecord pairs a normalized Theory node with this paper's USES_THEORY
// edge properties.
type TheoryRecord struct {
	Theory model.Theory
	Edge   model.UsesTheory
}

// PhenomenonRecord pairs a normalized Phenomenon node with this paper's
// STUDIES_PHENOMENON edge properties.
type PhenomenonRecord struct {
	Phenomenon model.Phenomenon
	Edge       model.StudiesPhenomenon
}

// MethodRecord pairs a normalized Method node with this paper's
// USES_METHOD edge properties.
type MethodRecord struct {
	Method model.Method
	Edge   model.UsesMethod
}

// VariableRecord pairs a paper-scoped Variable node with its edge
// properties.
type VariableRecord struct {
	Variable model.Variable
	Edge     model.UsesVariable
}

// SoftwareRecord is a normalized Software node used by this paper.
type SoftwareRecord struct {
	Software model.Software
}

// DatasetRecord is a normalized Dataset node used by this paper.
type DatasetRecord struct {
	Dataset model.Dataset
}

// CitationRecord is one extracted citation awaiting title resolution
// against existing Paper nodes (§4.6 step 8).
type CitationRecord struct {
	Title        string
	CitationType model.CitationType
	Section      string
}

// PaperIngestInput is everything the Ingester needs to run the §4.6
// atomic per-paper transaction: already normalized (internal/normalizer)
// and validated (internal/validator) records, ready to be written as-is.
type PaperIngestInput struct {
	Paper                 model.Paper
	Authors               []AuthorRecord
	Theories              []TheoryRecord
	Phenomena             []PhenomenonRecord
	TheoryPhenomenonLinks []model.TheoryPhenomenonLink
	Methods               []MethodRecord
	Variables             []VariableRecord
	Findings              []model.Finding
	Contributions         []model.Contribution
	ResearchQuestions     []model.ResearchQuestion
	Software              []SoftwareRecord
	Datasets              []DatasetRecord
	Citations             []CitationRecord
}
