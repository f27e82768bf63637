package extractor

import (
	"encoding/json"

	"smj-graphpipeline/internal/model"
	"smj-graphpipeline/internal/promptkit"
	"smj-graphpipeline/internal/validator"
)

// fieldSpec names one JSON field a call response may carry and the
// validator schema key it is coerced and checked against. entityKind is
// empty for fields that pass through uncoerced (theory_phenomenon_links
// has no enum-typed fields to validate).
type fieldSpec struct {
	jsonKey    string
	entityKind string
}

// kindFields lists, for each extraction kind, which JSON fields its
// response may carry (§4.3 stage 3's three combined-mode shapes and ten
// single-entity shapes).
var kindFields = map[promptkit.Kind][]fieldSpec{
	promptkit.KindMetadataAuthors:   {{"metadata", "metadata"}, {"authors", "author"}},
	promptkit.KindTheoriesPhenomena: {{"theories", "theory"}, {"phenomena", "phenomenon"}, {"theory_phenomenon_links", ""}},
	promptkit.KindMethodsFindings: {
		{"methods", "method"}, {"variables", "variable"}, {"findings", "finding"},
		{"contributions", "contribution"}, {"research_questions", "research_question"},
	},
	promptkit.KindCitations:         {{"citations", "citation"}},
	promptkit.KindMetadata:          {{"metadata", "metadata"}},
	promptkit.KindAuthors:           {{"authors", "author"}},
	promptkit.KindTheories:          {{"theories", "theory"}},
	promptkit.KindPhenomena:         {{"phenomena", "phenomenon"}},
	promptkit.KindMethods:           {{"methods", "method"}},
	promptkit.KindVariables:         {{"variables", "variable"}},
	promptkit.KindFindings:          {{"findings", "finding"}},
	promptkit.KindContributions:     {{"contributions", "contribution"}},
	promptkit.KindResearchQuestions: {{"research_questions", "research_question"}},
}

// mergeInto coerces one call's decoded response and folds it into the
// total ExtractionResult (§4.3 stage 5: "missing lists become empty; the
// result must always be a total value").
func mergeInto(result *model.ExtractionResult, kind promptkit.Kind, raw map[string]any) {
	for _, spec := range kindFields[kind] {
		value, present := raw[spec.jsonKey]
		if !present {
			continue
		}
		mergeField(result, spec, value)
	}
}

func mergeField(result *model.ExtractionResult, spec fieldSpec, value any) {
	switch spec.jsonKey {
	case "metadata":
		obj, ok := value.(map[string]any)
		if !ok {
			return
		}
		var metadata model.RawMetadata
		if decodeInto(coerceRecord(spec.entityKind, obj), &metadata) {
			result.Metadata = metadata
		}
	case "authors":
		for _, obj := range objects(value) {
			var author model.RawAuthor
			if decodeInto(coerceRecord(spec.entityKind, obj), &author) {
				result.Authors = append(result.Authors, author)
			}
		}
	case "theories":
		for _, obj := range objects(value) {
			var theory model.RawTheory
			if decodeInto(coerceRecord(spec.entityKind, obj), &theory) {
				result.Theories = append(result.Theories, theory)
			}
		}
	case "phenomena":
		for _, obj := range objects(value) {
			var phenomenon model.RawPhenomenon
			if decodeInto(coerceRecord(spec.entityKind, obj), &phenomenon) {
				result.Phenomena = append(result.Phenomena, phenomenon)
			}
		}
	case "theory_phenomenon_links":
		for _, obj := range objects(value) {
			var link model.TheoryPhenomenonLink
			if decodeInto(obj, &link) {
				result.TheoryPhenomenonLinks = append(result.TheoryPhenomenonLinks, link)
			}
		}
	case "methods":
		for _, obj := range objects(value) {
			var method model.RawMethod
			if decodeInto(coerceRecord(spec.entityKind, obj), &method) {
				result.Methods = append(result.Methods, method)
			}
		}
	case "variables":
		for _, obj := range objects(value) {
			var variable model.RawVariable
			if decodeInto(coerceRecord(spec.entityKind, obj), &variable) {
				result.Variables = append(result.Variables, variable)
			}
		}
	case "findings":
		for _, obj := range objects(value) {
			var finding model.RawFinding
			if decodeInto(coerceRecord(spec.entityKind, obj), &finding) {
				result.Findings = append(result.Findings, finding)
			}
		}
	case "contributions":
		for _, obj := range objects(value) {
			var contribution model.RawContribution
			if decodeInto(coerceRecord(spec.entityKind, obj), &contribution) {
				result.Contributions = append(result.Contributions, contribution)
			}
		}
	case "research_questions":
		for _, obj := range objects(value) {
			var question model.RawResearchQuestion
			if decodeInto(coerceRecord(spec.entityKind, obj), &question) {
				result.ResearchQuestions = append(result.ResearchQuestions, question)
			}
		}
	case "citations":
		for _, obj := range objects(value) {
			var citation model.RawCitation
			if decodeInto(coerceRecord(spec.entityKind, obj), &citation) {
				result.Citations = append(result.Citations, citation)
			}
		}
	}
}

// coerceRecord runs the §4.4 two-pass coercion/validation process over one
// decoded record, falling back to a best-effort minimal record rather than
// dropping it.
func coerceRecord(entityKind string, raw map[string]any) map[string]any {
	coerced := validator.Coerce(entityKind, raw)
	if problems := validator.Check(entityKind, coerced); len(problems) > 0 {
		return validator.Minimal(entityKind, coerced)
	}
	return coerced
}

// objects narrows a decoded JSON array to its object-valued elements,
// silently skipping anything else the model may have emitted.
func objects(value any) []map[string]any {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// decodeInto round-trips a coerced generic record through JSON into a
// typed Raw* struct, reusing the Raw* types' own json tags instead of
// hand-copying every field.
func decodeInto(record map[string]any, target any) bool {
	data, err := json.Marshal(record)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, target) == nil
}
