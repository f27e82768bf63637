package validator

import "strings"

// fieldAliases maps source-variant field names an LLM response sometimes
// uses to the canonical ones the schema expects (§4.4 coercion step 1,
// e.g. a theory surfaced under "theory_name" or a method under "method"
// rather than the schema's uniform "name").
var fieldAliases = map[string]string{
	"theory_name":     "name",
	"phenomenon_name": "name",
	"method":          "name",
	"method_name":     "name",
	"variable_name":   "name",
}

// canonicalField returns the canonical name for a source field, or the
// field unchanged if no alias applies.
func canonicalField(field string) string {
	if canonical, ok := fieldAliases[field]; ok {
		return canonical
	}
	return field
}

// confidenceWords maps the string confidence buckets an LLM occasionally
// emits in place of a number to their numeric equivalent.
var confidenceWords = map[string]float64{
	"very high": 0.95,
	"high":      0.9,
	"medium":    0.7,
	"moderate":  0.7,
	"low":       0.4,
	"very low":  0.2,
}

// defaultConfidence is used when a record omits confidence entirely
// (§4.4 coercion step 1).
const defaultConfidence = 0.8

// CoerceConfidence resolves a raw confidence value, which may already be a
// float, a recognized word bucket, or absent (raw == "").
func CoerceConfidence(raw string, hasNumeric bool, numeric float64) float64 {
	if hasNumeric {
		return clamp01(numeric)
	}
	if raw == "" {
		return defaultConfidence
	}
	if v, ok := confidenceWords[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return v
	}
	return defaultConfidence
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// methodTypeKeywords is a surface-level keyword table used to infer
// method_type from a method's name when the extractor omits it (§4.4
// coercion step 1, "infer method_type from the name when absent").
var methodTypeKeywords = []struct {
	keyword string
	mtype   string
}{
	{"regression", "quantitative"},
	{"survey", "quantitative"},
	{"anova", "quantitative"},
	{"econometric", "quantitative"},
	{"panel data", "quantitative"},
	{"interview", "qualitative"},
	{"case study", "qualitative"},
	{"ethnograph", "qualitative"},
	{"grounded theory", "qualitative"},
	{"content analysis", "qualitative"},
	{"simulation", "computational"},
	{"agent-based", "computational"},
	{"machine learning", "computational"},
	{"text mining", "computational"},
	{"experiment", "experimental"},
	{"laboratory", "experimental"},
	{"vignette", "experimental"},
	{"mixed method", "mixed"},
	{"triangulat", "mixed"},
}

// InferMethodType applies a surface-level keyword match over a method's
// name to guess its type when the extractor left the field empty. It
// returns "" when nothing matches, leaving the caller to fall back to the
// schema's minimal-record behavior.
func InferMethodType(name string) string {
	lower := strings.ToLower(name)
	for _, kw := range methodTypeKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.mtype
		}
	}
	return ""
}
