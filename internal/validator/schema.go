// Package validator implements the declarative per-entity schema and
// two-pass coercion/validation process of §4.4: field-name aliasing,
// enum-domain checking, and best-effort minimal-record fallback instead of
// dropping a paper or an entity outright. The declarative-schema shape
// follows the teacher's internal/validation package's constant tables
// (named domains checked against, rather than ad hoc string comparisons
// scattered through the code).
package validator

import "smj-graphpipeline/internal/model"

// FieldSpec describes one field of an entity schema.
type FieldSpec struct {
	Name     string
	Required bool
	Enum     []string // nil means no enum constraint
}

// EntitySchema is the declarative shape for one entity kind (§4.4).
type EntitySchema struct {
	Fields []FieldSpec
}

func enumDomain(values ...string) []string { return values }

var (
	paperTypeDomain = enumDomain(
		string(model.PaperEmpiricalQuantitative), string(model.PaperEmpiricalQualitative),
		string(model.PaperTheoretical), string(model.PaperReview), string(model.PaperMetaAnalysis),
		string(model.PaperResearchNote),
	)
	theoryRoleDomain = enumDomain("primary", "supporting", "challenging", "extending")
	theoryTypeDomain = enumDomain(
		string(model.TheoryFramework), string(model.TheoryConcept),
		string(model.TheoryModel), string(model.TheoryPerspective),
	)
	phenomenonTypeDomain = enumDomain(
		string(model.PhenomenonBehavior), string(model.PhenomenonPattern),
		string(model.PhenomenonEvent), string(model.PhenomenonTrend),
		string(model.PhenomenonProcess), string(model.PhenomenonOutcome),
	)
	levelOfAnalysisDomain = enumDomain(
		string(model.LevelIndividual), string(model.LevelTeam), string(model.LevelOrganization),
		string(model.LevelIndustry), string(model.LevelEconomy), string(model.LevelMultiLevel),
	)
	methodTypeDomain = enumDomain(
		string(model.MethodQualitative), string(model.MethodQuantitative),
		string(model.MethodMixed), string(model.MethodComputational), string(model.MethodExperimental),
	)
	variableTypeDomain = enumDomain(
		string(model.VariableIndependent), string(model.VariableDependent),
		string(model.VariableModerator), string(model.VariableMediator),
		string(model.VariableControl), string(model.VariableInstrumental),
	)
	findingTypeDomain = enumDomain(
		string(model.FindingHypothesisSupported), string(model.FindingHypothesisRejected),
		string(model.FindingUnexpected), string(model.FindingExploratory),
	)
	contributionTypeDomain = enumDomain(
		string(model.ContributionTheoretical), string(model.ContributionEmpirical),
		string(model.ContributionMethodological), string(model.ContributionPractical),
	)
	questionTypeDomain = enumDomain(
		string(model.QuestionDescriptive), string(model.QuestionExplanatory),
		string(model.QuestionPredictive), string(model.QuestionPrescriptive), string(model.QuestionExploratory),
	)
)

var schemas = map[string]EntitySchema{
	"metadata": {Fields: []FieldSpec{
		{Name: "title", Required: true},
		{Name: "publication_year", Required: false},
		{Name: "paper_type", Required: false, Enum: paperTypeDomain},
	}},
	"author": {Fields: []FieldSpec{
		{Name: "full_name", Required: true},
	}},
	"theory": {Fields: []FieldSpec{
		{Name: "name", Required: true},
		{Name: "role", Required: false, Enum: theoryRoleDomain},
		{Name: "theory_type", Required: false, Enum: theoryTypeDomain},
	}},
	"phenomenon": {Fields: []FieldSpec{
		{Name: "name", Required: true},
		{Name: "phenomenon_type", Required: false, Enum: phenomenonTypeDomain},
		{Name: "level_of_analysis", Required: false, Enum: levelOfAnalysisDomain},
	}},
	"method": {Fields: []FieldSpec{
		{Name: "name", Required: true},
		{Name: "type", Required: false, Enum: methodTypeDomain},
	}},
	"variable": {Fields: []FieldSpec{
		{Name: "name", Required: true},
		{Name: "variable_type", Required: false, Enum: variableTypeDomain},
	}},
	"finding": {Fields: []FieldSpec{
		{Name: "text", Required: true},
		{Name: "finding_type", Required: false, Enum: findingTypeDomain},
	}},
	"contribution": {Fields: []FieldSpec{
		{Name: "text", Required: true},
		{Name: "contribution_type", Required: false, Enum: contributionTypeDomain},
	}},
	"research_question": {Fields: []FieldSpec{
		{Name: "question", Required: true},
		{Name: "question_type", Required: false, Enum: questionTypeDomain},
	}},
	"citation": {Fields: []FieldSpec{
		{Name: "title", Required: true},
	}},
}

// EnumFieldNames returns the field names of entityKind's schema that carry
// an enum domain, consulted by the graph package's conflict resolver to
// decide whether two candidate records are "compatible" for a merge
// (§4.7: "enum-typed fields equal").
func EnumFieldNames(entityKind string) []string {
	schema, ok := schemas[entityKind]
	if !ok {
		return nil
	}
	var names []string
	for _, f := range schema.Fields {
		if f.Enum != nil {
			names = append(names, f.Name)
		}
	}
	return names
}

// inDomain reports whether value is a member of domain, or domain is
// unconstrained.
func inDomain(domain []string, value string) bool {
	if domain == nil {
		return true
	}
	for _, v := range domain {
		if v == value {
			return true
		}
	}
	return false
}
