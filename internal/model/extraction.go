package model

// RawAuthor is an author as surfaced by the extractor, before Institution
// resolution and deterministic id assignment.
type RawAuthor struct {
	FullName     string        `json:"full_name"`
	GivenName    string        `json:"given_name,omitempty"`
	FamilyName   string        `json:"family_name,omitempty"`
	ORCID        string        `json:"orcid,omitempty"`
	Email        string        `json:"email,omitempty"`
	Position     int           `json:"position"`
	Affiliations []Affiliation `json:"affiliations,omitempty"`
}

// RawTheory is a theory as surfaced by the extractor, before normalization.
type RawTheory struct {
	Name             string           `json:"name"`
	Domain           string           `json:"domain,omitempty"`
	TheoryType       TheoryType       `json:"theory_type,omitempty"`
	Description      string           `json:"description,omitempty"`
	Role             TheoryRole       `json:"role,omitempty"`
	Section          string           `json:"section,omitempty"`
	UsageContext     string           `json:"usage_context,omitempty"`
	Confidence       float64          `json:"confidence,omitempty"`
	ValidationStatus ValidationStatus `json:"validation_status,omitempty"`
}

// RawPhenomenon is a phenomenon as surfaced by the extractor.
type RawPhenomenon struct {
	Name            string          `json:"name"`
	PhenomenonType  PhenomenonType  `json:"phenomenon_type,omitempty"`
	Domain          string          `json:"domain,omitempty"`
	Description     string          `json:"description,omitempty"`
	Context         string          `json:"context,omitempty"`
	Section         string          `json:"section,omitempty"`
	LevelOfAnalysis LevelOfAnalysis `json:"level_of_analysis,omitempty"`
}

// TheoryPhenomenonLink is an extractor-reported explicit pairing, consulted
// by the connection-strength explicit_bonus factor (§4.8).
type TheoryPhenomenonLink struct {
	Theory     string `json:"theory"`
	Phenomenon string `json:"phenomenon"`
}

// RawMethod is a method as surfaced by the extractor.
type RawMethod struct {
	Name             string           `json:"name"`
	Type             MethodType       `json:"type,omitempty"`
	Category         string           `json:"category,omitempty"`
	Software         []string         `json:"software,omitempty"`
	SampleSize       int              `json:"sample_size,omitempty"`
	TimePeriod       string           `json:"time_period,omitempty"`
	Confidence       float64          `json:"confidence,omitempty"`
	ValidationStatus ValidationStatus `json:"validation_status,omitempty"`
}

// RawVariable is a variable as surfaced by the extractor.
type RawVariable struct {
	Name               string           `json:"name"`
	VariableType       VariableType     `json:"variable_type,omitempty"`
	Measurement        string           `json:"measurement,omitempty"`
	Operationalization string           `json:"operationalization,omitempty"`
	Confidence         float64          `json:"confidence,omitempty"`
	ValidationStatus   ValidationStatus `json:"validation_status,omitempty"`
}

// RawFinding is a finding as surfaced by the extractor.
type RawFinding struct {
	Text         string      `json:"text"`
	FindingType  FindingType `json:"finding_type,omitempty"`
	Significance string      `json:"significance,omitempty"`
	EffectSize   string      `json:"effect_size,omitempty"`
	Section      string      `json:"section,omitempty"`
}

// RawContribution is a contribution as surfaced by the extractor.
type RawContribution struct {
	Text             string           `json:"text"`
	ContributionType ContributionType `json:"contribution_type,omitempty"`
	Section          string           `json:"section,omitempty"`
}

// RawResearchQuestion is a research question as surfaced by the extractor.
type RawResearchQuestion struct {
	Question         string           `json:"question"`
	QuestionType     QuestionType     `json:"question_type,omitempty"`
	Section          string           `json:"section,omitempty"`
	Confidence       float64          `json:"confidence,omitempty"`
	ValidationStatus ValidationStatus `json:"validation_status,omitempty"`
}

// RawCitation is a citation as surfaced by the extractor, resolved against
// existing papers by title match at ingestion time.
type RawCitation struct {
	Title            string           `json:"title"`
	CitationType     CitationType     `json:"citation_type,omitempty"`
	Section          string           `json:"section,omitempty"`
	Confidence       float64          `json:"confidence,omitempty"`
	ValidationStatus ValidationStatus `json:"validation_status,omitempty"`
}

// RawMetadata is the paper-level metadata surfaced by the first extraction
// call, before validator coercion.
type RawMetadata struct {
	Title           string   `json:"title"`
	Abstract        string   `json:"abstract,omitempty"`
	PublicationYear int      `json:"publication_year,omitempty"`
	Journal         string   `json:"journal,omitempty"`
	DOI             string   `json:"doi,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	PaperType       PaperType `json:"paper_type,omitempty"`
}

// ExtractionResult is the total value returned by the extractor for one
// paper: every list defaults to empty rather than nil so downstream stages
// never special-case a missing field (§4.3 stage 5).
type ExtractionResult struct {
	PaperID               string                 `json:"paper_id"`
	Metadata              RawMetadata            `json:"metadata"`
	Authors               []RawAuthor            `json:"authors"`
	Theories              []RawTheory             `json:"theories"`
	Phenomena             []RawPhenomenon         `json:"phenomena"`
	TheoryPhenomenonLinks []TheoryPhenomenonLink  `json:"theory_phenomenon_links"`
	Methods               []RawMethod             `json:"methods"`
	Variables             []RawVariable           `json:"variables"`
	Findings              []RawFinding            `json:"findings"`
	Contributions         []RawContribution       `json:"contributions"`
	ResearchQuestions     []RawResearchQuestion   `json:"research_questions"`
	Citations             []RawCitation           `json:"citations"`
}

// NewEmptyExtractionResult returns a total value with every list
// initialized, matching §4.3 stage 5's "never a partial object" guarantee.
func NewEmptyExtractionResult(paperID string) *ExtractionResult {
	return &ExtractionResult{
		PaperID:               paperID,
		Authors:               []RawAuthor{},
		Theories:              []RawTheory{},
		Phenomena:             []RawPhenomenon{},
		TheoryPhenomenonLinks: []TheoryPhenomenonLink{},
		Methods:               []RawMethod{},
		Variables:             []RawVariable{},
		Findings:              []RawFinding{},
		Contributions:         []RawContribution{},
		ResearchQuestions:     []RawResearchQuestion{},
		Citations:             []RawCitation{},
	}
}
