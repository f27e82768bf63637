package model

// TheoryRole is the stance a paper takes toward a theory it uses.
type TheoryRole string

const (
	RolePrimary    TheoryRole = "primary"
	RoleSupporting TheoryRole = "supporting"
	RoleChallenging TheoryRole = "challenging"
	RoleExtending  TheoryRole = "extending"
)

// roleWeight is the §4.8 role_weight factor for a connection-strength score.
var roleWeight = map[TheoryRole]float64{
	RolePrimary:     1.0,
	RoleSupporting:  0.6,
	RoleExtending:   0.4,
	RoleChallenging: 0.2,
}

// RoleWeight returns the §4.8 role_weight factor for a theory role.
func RoleWeight(r TheoryRole) float64 {
	if w, ok := roleWeight[r]; ok {
		return w
	}
	return 0
}

// ValidationStatus records whether a source-grounded validation heuristic
// located the extracted entity's text in the paper.
type ValidationStatus string

const (
	ValidationExactMatch       ValidationStatus = "exact_match"
	ValidationPartialMatch     ValidationStatus = "partial_match"
	ValidationWeakMatch        ValidationStatus = "weak_match"
	ValidationAbbreviationMatch ValidationStatus = "abbreviation_match"
	ValidationNotFound         ValidationStatus = "not_found"
	ValidationNotValidated     ValidationStatus = "not_validated"
)

// CitationType enumerates how a paper cites another.
type CitationType string

const (
	CitationSupportive  CitationType = "supportive"
	CitationCritical    CitationType = "critical"
	CitationBackground  CitationType = "background"
	CitationMethodological CitationType = "methodological"
)

// UsesTheory is the Paper->Theory edge.
type UsesTheory struct {
	Role            TheoryRole       `json:"role"`
	Section         string           `json:"section,omitempty"`
	UsageContext    string           `json:"usage_context,omitempty"`
	Confidence      float64          `json:"confidence"`
	ValidationStatus ValidationStatus `json:"validation_status"`
}

// UsesMethod is the Paper->Method edge.
type UsesMethod struct {
	Confidence float64 `json:"confidence"`
}

// StudiesPhenomenon is the Paper->Phenomenon edge.
type StudiesPhenomenon struct {
	Section string `json:"section,omitempty"`
	Context string `json:"context,omitempty"`
}

// UsesVariable is the Paper->Variable edge.
type UsesVariable struct {
	VariableType VariableType `json:"variable_type"`
}

// Cites is the Paper->Paper edge, keyed by the citing paper's id.
type Cites struct {
	CitationType CitationType `json:"citation_type"`
	Section      string       `json:"section,omitempty"`
	Confidence   float64      `json:"confidence"`
}

// ExplainsPhenomenon is the Theory->Phenomenon edge, keyed by paper id.
type ExplainsPhenomenon struct {
	PaperID            string  `json:"paper_id"`
	TheoryRole         string  `json:"theory_role"`
	Section            string  `json:"section,omitempty"`
	ConnectionStrength float64 `json:"connection_strength"`
	RoleScore          float64 `json:"role_score"`
	SectionScore       float64 `json:"section_score"`
	KeywordScore       float64 `json:"keyword_score"`
	SemanticScore      float64 `json:"semantic_score"`
	ExplicitBonus      float64 `json:"explicit_bonus"`
}

// AuthoredEdge is the Author->Paper edge.
type AuthoredEdge struct {
	Position int `json:"position"`
}

// AffiliatedWithEdge is the Author->Institution edge.
type AffiliatedWithEdge struct {
	AffiliationType string `json:"affiliation_type,omitempty"`
	PositionTitle   string `json:"position_title,omitempty"`
}

// AuthorTheoryCumulative is the cumulative Author->Theory edge (§3.2).
type AuthorTheoryCumulative struct {
	PaperCount    int `json:"paper_count"`
	FirstUsedYear int `json:"first_used_year"`
}

// AuthorPhenomenonCumulative is the cumulative Author->Phenomenon edge (§3.2).
type AuthorPhenomenonCumulative struct {
	PaperCount    int `json:"paper_count"`
	FirstUsedYear int `json:"first_used_year"`
}

// PaperScopedEdgeTypes lists the relationship labels that are deleted and
// rewritten on re-ingestion of a paper (§3.3).
var PaperScopedEdgeTypes = []string{
	"USES_THEORY",
	"STUDIES_PHENOMENON",
	"USES_METHOD",
	"USES_VARIABLE",
	"REPORTS",
	"MAKES",
	"ADDRESSES",
	"USES_SOFTWARE",
	"USES_DATASET",
}
