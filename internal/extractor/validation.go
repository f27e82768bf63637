package extractor

import (
	"strings"

	"smj-graphpipeline/internal/model"
	"smj-graphpipeline/internal/normalizer"
)

// sourceGroundedConfidenceFloor is §4.3's "a confidence below 0.3 is
// dropped" threshold.
const sourceGroundedConfidenceFloor = 0.3

// knownAbbreviations maps a short abbreviation to the keyword set that
// must co-occur in the source text for the abbreviation-match rule (§4.3
// "known-abbreviation rules (e.g., RBV <-> resource and based co-present)
// -> 0.7") to fire. Keys are matched case-insensitively against the whole
// trimmed entity name: "RBV" matches, but a longer extracted string such
// as "the RBV" does not.
var knownAbbreviations = map[string][]string{
	"rbv": {"resource", "based"},
	"tce": {"transaction", "cost"},
	"kbv": {"knowledge", "based"},
	"dcv": {"dynamic", "capabilit"},
	"sem": {"structural", "equation"},
	"ols": {"least", "squares"},
	"m&a": {"merger", "acquisition"},
	"ceo": {"chief", "executive"},
	"rq":  {"research", "question"},
}

// applySourceGroundedValidation scores every theory, method, variable,
// research question, and citation against the source text (§4.3
// "Source-grounded validation"), then drops entries whose resulting
// confidence falls below the floor.
func applySourceGroundedValidation(result *model.ExtractionResult, sourceText string) {
	lowerText := strings.ToLower(sourceText)
	textTokens := normalizer.SignificantTokens(sourceText)

	kept := result.Theories[:0]
	for _, t := range result.Theories {
		status, confidence := groundEntity(t.Name, lowerText, textTokens)
		t.ValidationStatus = status
		t.Confidence = confidence
		if t.Confidence >= sourceGroundedConfidenceFloor {
			kept = append(kept, t)
		}
	}
	result.Theories = kept

	keptMethods := result.Methods[:0]
	for _, m := range result.Methods {
		status, confidence := groundEntity(m.Name, lowerText, textTokens)
		m.ValidationStatus = status
		m.Confidence = confidence
		if m.Confidence >= sourceGroundedConfidenceFloor {
			keptMethods = append(keptMethods, m)
		}
	}
	result.Methods = keptMethods

	keptVars := result.Variables[:0]
	for _, v := range result.Variables {
		status, confidence := groundEntity(v.Name, lowerText, textTokens)
		v.ValidationStatus = status
		v.Confidence = confidence
		if v.Confidence >= sourceGroundedConfidenceFloor {
			keptVars = append(keptVars, v)
		}
	}
	result.Variables = keptVars

	keptQuestions := result.ResearchQuestions[:0]
	for _, q := range result.ResearchQuestions {
		status, confidence := groundEntity(q.Question, lowerText, textTokens)
		q.ValidationStatus = status
		q.Confidence = confidence
		if q.Confidence >= sourceGroundedConfidenceFloor {
			keptQuestions = append(keptQuestions, q)
		}
	}
	result.ResearchQuestions = keptQuestions

	keptCitations := result.Citations[:0]
	for _, c := range result.Citations {
		status, confidence := groundEntity(c.Title, lowerText, textTokens)
		c.ValidationStatus = status
		c.Confidence = confidence
		if c.Confidence >= sourceGroundedConfidenceFloor {
			keptCitations = append(keptCitations, c)
		}
	}
	result.Citations = keptCitations
}

// groundEntity runs the §4.3 heuristic ladder for one extracted name
// against the paper's source text: exact substring, then token-overlap
// thresholds, then known-abbreviation co-occurrence, landing on
// not_found/0.3-confidence when nothing matches.
func groundEntity(name string, lowerText string, textTokens map[string]bool) (model.ValidationStatus, float64) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.ValidationNotFound, 0.3
	}
	lowerName := strings.ToLower(name)

	if strings.Contains(lowerText, lowerName) {
		return model.ValidationExactMatch, 1.0
	}

	nameTokens := normalizer.SignificantTokens(name)
	if len(nameTokens) > 0 {
		present := 0
		for t := range nameTokens {
			if textTokens[t] {
				present++
			}
		}
		ratio := float64(present) / float64(len(nameTokens))
		switch {
		case ratio >= 0.7:
			return model.ValidationPartialMatch, 0.8
		case ratio >= 0.5:
			return model.ValidationWeakMatch, 0.6
		}
	}

	if keywords, ok := knownAbbreviations[strings.ToLower(strings.TrimSpace(name))]; ok {
		allPresent := true
		for _, kw := range keywords {
			if !strings.Contains(lowerText, kw) {
				allPresent = false
				break
			}
		}
		if allPresent {
			return model.ValidationAbbreviationMatch, 0.7
		}
	}

	return model.ValidationNotFound, 0.3
}
