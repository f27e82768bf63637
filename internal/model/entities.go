// Package model defines the node and relationship types of the
// Strategic Management Journal knowledge graph.
package model

// PaperType enumerates the kinds of research paper the corpus contains.
type PaperType string

const (
	PaperEmpiricalQuantitative PaperType = "empirical_quantitative"
	PaperEmpiricalQualitative  PaperType = "empirical_qualitative"
	PaperTheoretical           PaperType = "theoretical"
	PaperReview                PaperType = "review"
	PaperMetaAnalysis          PaperType = "meta_analysis"
	PaperResearchNote          PaperType = "research_note"
)

// Paper is the root node for one ingested PDF.
type Paper struct {
	PaperID         string    `json:"paper_id"`
	Title           string    `json:"title"`
	Abstract        string    `json:"abstract,omitempty"`
	PublicationYear int       `json:"publication_year"`
	Journal         string    `json:"journal,omitempty"`
	DOI             string    `json:"doi,omitempty"`
	Keywords        []string  `json:"keywords,omitempty"`
	PaperType       PaperType `json:"paper_type"`
	Embedding       []float32 `json:"embedding,omitempty"`
	EmbeddingDim    int       `json:"embedding_dim,omitempty"`
	EmbeddingModel  string    `json:"embedding_model,omitempty"`
}

// Author identifies a paper's author by a deterministic id derived from name.
type Author struct {
	AuthorID   string `json:"author_id"`
	FullName   string `json:"full_name"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	ORCID      string `json:"orcid,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Affiliation is an author's claimed institution on one paper.
type Affiliation struct {
	InstitutionName string `json:"institution_name"`
	Department      string `json:"department,omitempty"`
	City            string `json:"city,omitempty"`
	Country         string `json:"country,omitempty"`
	AffiliationType string `json:"affiliation_type,omitempty"`
	PositionTitle   string `json:"position_title,omitempty"`
}

// Institution is the canonical node an Affiliation resolves to.
type Institution struct {
	InstitutionID   string `json:"institution_id"`
	InstitutionName string `json:"institution_name"`
	Department      string `json:"department,omitempty"`
	City            string `json:"city,omitempty"`
	Country         string `json:"country,omitempty"`
}

// TheoryType enumerates the register a Theory node describes.
type TheoryType string

const (
	TheoryFramework  TheoryType = "framework"
	TheoryConcept    TheoryType = "concept"
	TheoryModel      TheoryType = "model"
	TheoryPerspective TheoryType = "perspective"
)

// Theory is a canonical theoretical framework/concept/model.
type Theory struct {
	Name         string     `json:"name"`
	Domain       string     `json:"domain,omitempty"`
	TheoryType   TheoryType `json:"theory_type"`
	Description  string     `json:"description,omitempty"`
	OriginalName string     `json:"original_name,omitempty"`
	Embedding    []float32  `json:"embedding,omitempty"`
}

// PhenomenonType enumerates the kind of organizational phenomenon observed.
type PhenomenonType string

const (
	PhenomenonBehavior PhenomenonType = "behavior"
	PhenomenonPattern  PhenomenonType = "pattern"
	PhenomenonEvent    PhenomenonType = "event"
	PhenomenonTrend    PhenomenonType = "trend"
	PhenomenonProcess  PhenomenonType = "process"
	PhenomenonOutcome  PhenomenonType = "outcome"
)

// LevelOfAnalysis enumerates the organizational level a Phenomenon is studied at.
type LevelOfAnalysis string

const (
	LevelIndividual   LevelOfAnalysis = "individual"
	LevelTeam         LevelOfAnalysis = "team"
	LevelOrganization LevelOfAnalysis = "organization"
	LevelIndustry     LevelOfAnalysis = "industry"
	LevelEconomy      LevelOfAnalysis = "economy"
	LevelMultiLevel   LevelOfAnalysis = "multi_level"
)

// Phenomenon is a canonical organizational phenomenon.
type Phenomenon struct {
	PhenomenonName string          `json:"phenomenon_name"`
	PhenomenonType PhenomenonType  `json:"phenomenon_type"`
	Domain         string          `json:"domain,omitempty"`
	Description    string          `json:"description,omitempty"`
	Context        string          `json:"context,omitempty"`
	LevelOfAnalysis LevelOfAnalysis `json:"level_of_analysis,omitempty"`
	OriginalName   string          `json:"original_name,omitempty"`
	Embedding      []float32       `json:"embedding,omitempty"`
}

// MethodType enumerates the research-method register.
type MethodType string

const (
	MethodQuantitative  MethodType = "quantitative"
	MethodQualitative   MethodType = "qualitative"
	MethodMixed         MethodType = "mixed"
	MethodComputational MethodType = "computational"
	MethodExperimental  MethodType = "experimental"
)

// Method is identified by the composite key (Name, Type).
type Method struct {
	Name       string     `json:"name"`
	Type       MethodType `json:"type"`
	Category   string     `json:"category,omitempty"`
	Software   []string   `json:"software,omitempty"`
	SampleSize int        `json:"sample_size,omitempty"`
	TimePeriod string     `json:"time_period,omitempty"`
	Embedding  []float32  `json:"embedding,omitempty"`
}

// VariableType enumerates a Variable's role in a statistical model.
type VariableType string

const (
	VariableDependent   VariableType = "dependent"
	VariableIndependent VariableType = "independent"
	VariableControl     VariableType = "control"
	VariableModerator   VariableType = "moderator"
	VariableMediator    VariableType = "mediator"
	VariableInstrumental VariableType = "instrumental"
)

// Variable is scoped to the paper that defines it.
type Variable struct {
	VariableID        string       `json:"variable_id"`
	VariableName      string       `json:"variable_name"`
	VariableType      VariableType `json:"variable_type"`
	Measurement       string       `json:"measurement,omitempty"`
	Operationalization string      `json:"operationalization,omitempty"`
}

// FindingType enumerates what kind of result a Finding records.
type FindingType string

const (
	FindingHypothesisSupported FindingType = "hypothesis_supported"
	FindingHypothesisRejected  FindingType = "hypothesis_rejected"
	FindingUnexpected          FindingType = "unexpected"
	FindingExploratory         FindingType = "exploratory"
)

// Finding is scoped to the paper that reports it.
type Finding struct {
	FindingID     string      `json:"finding_id"`
	FindingText   string      `json:"finding_text"`
	FindingType   FindingType `json:"finding_type"`
	Significance  string      `json:"significance,omitempty"`
	EffectSize    string      `json:"effect_size,omitempty"`
	Section       string      `json:"section,omitempty"`
}

// ContributionType enumerates the register of a paper's claimed contribution.
type ContributionType string

const (
	ContributionTheoretical  ContributionType = "theoretical"
	ContributionEmpirical    ContributionType = "empirical"
	ContributionMethodological ContributionType = "methodological"
	ContributionPractical    ContributionType = "practical"
)

// Contribution is scoped to the paper that makes it.
type Contribution struct {
	ContributionID   string           `json:"contribution_id"`
	ContributionText string           `json:"contribution_text"`
	ContributionType ContributionType `json:"contribution_type"`
	Section          string           `json:"section,omitempty"`
}

// Software is a canonical, normalized software-tool name.
type Software struct {
	SoftwareName string `json:"software_name"`
	Version      string `json:"version,omitempty"`
	SoftwareType string `json:"software_type,omitempty"`
}

// Dataset is a canonical dataset name.
type Dataset struct {
	DatasetName string `json:"dataset_name"`
	DatasetType string `json:"dataset_type,omitempty"`
	TimePeriod  string `json:"time_period,omitempty"`
	SampleSize  int    `json:"sample_size,omitempty"`
	Access      string `json:"access,omitempty"`
}

// QuestionType enumerates the register of a research question.
type QuestionType string

const (
	QuestionDescriptive  QuestionType = "descriptive"
	QuestionExplanatory  QuestionType = "explanatory"
	QuestionPredictive   QuestionType = "predictive"
	QuestionPrescriptive QuestionType = "prescriptive"
	QuestionExploratory  QuestionType = "exploratory"
)

// ResearchQuestion is scoped to the paper that poses it.
type ResearchQuestion struct {
	QuestionID     string       `json:"question_id"`
	Question       string       `json:"question"`
	QuestionType   QuestionType `json:"question_type"`
	Section        string       `json:"section,omitempty"`
	Embedding      []float32    `json:"embedding,omitempty"`
	EmbeddingDim   int          `json:"embedding_dim,omitempty"`
	EmbeddingModel string       `json:"embedding_model,omitempty"`
}

// Topic is a cluster over papers computed by the post-hoc relationships pass.
type Topic struct {
	TopicID              string  `json:"topic_id"`
	Interval             string  `json:"interval"`
	PaperCount           int     `json:"paper_count"`
	Coherence            float64 `json:"coherence"`
	RepresentativePaperID string `json:"representative_paper_id"`
	Name                 string  `json:"name,omitempty"`
}
