package validator

import (
	"fmt"
	"strconv"
	"strings"

	"smj-graphpipeline/internal/model"
)

// Coerce applies alias mapping and confidence coercion to one raw decoded
// entity record (§4.4 coercion step 1), returning a new map rather than
// mutating the input.
func Coerce(entityKind string, raw map[string]any) map[string]any {
	coerced := make(map[string]any, len(raw))
	for k, v := range raw {
		coerced[canonicalField(k)] = v
	}

	switch v := coerced["confidence"].(type) {
	case nil:
		coerced["confidence"] = defaultConfidence
	case string:
		coerced["confidence"] = CoerceConfidence(v, false, 0)
	case float64:
		coerced["confidence"] = clamp01(v)
	}

	if entityKind == "method" {
		t, _ := coerced["type"].(string)
		if strings.TrimSpace(t) == "" {
			if name, ok := coerced["name"].(string); ok {
				if inferred := InferMethodType(name); inferred != "" {
					coerced["type"] = inferred
				}
			}
		}
	}

	return coerced
}

// Check runs the schema-check pass (§4.4 step 2) over a coerced record:
// required fields present and non-empty, enum fields within their domain.
// It collects every violation rather than stopping at the first.
func Check(entityKind string, record map[string]any) []string {
	schema, ok := schemas[entityKind]
	if !ok {
		return nil
	}

	var problems []string
	for _, f := range schema.Fields {
		v, present := record[f.Name]
		str, isString := v.(string)

		if f.Required && (!present || (isString && strings.TrimSpace(str) == "")) {
			problems = append(problems, fmt.Sprintf("%s: missing required field %q", entityKind, f.Name))
			continue
		}
		if f.Enum != nil && present && isString && str != "" && !inDomain(f.Enum, str) {
			problems = append(problems, fmt.Sprintf("%s: field %q value %q outside enum domain", entityKind, f.Name, str))
		}
	}
	return problems
}

// Minimal returns the best-effort minimal record §4.4 falls back to when
// Check reports violations: every present, valid field is kept; a missing
// enum field gets its domain's first value; a missing required field gets
// a placeholder identity value. The pipeline's assembler uses this rather
// than dropping the entity.
func Minimal(entityKind string, record map[string]any) map[string]any {
	schema, ok := schemas[entityKind]
	if !ok {
		return record
	}

	minimal := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		if v, present := record[f.Name]; present {
			str, isString := v.(string)
			if !isString {
				minimal[f.Name] = v
				continue
			}
			if strings.TrimSpace(str) != "" && (f.Enum == nil || inDomain(f.Enum, str)) {
				minimal[f.Name] = str
				continue
			}
		}
		switch {
		case f.Enum != nil:
			minimal[f.Name] = f.Enum[0]
		case f.Required:
			minimal[f.Name] = fmt.Sprintf("unknown %s", entityKind)
		}
	}
	if confidence, ok := record["confidence"]; ok {
		minimal["confidence"] = confidence
	} else {
		minimal["confidence"] = defaultConfidence
	}
	return minimal
}

// ValidateMetadata guarantees a usable model.Paper even when the extracted
// metadata is incomplete or fails its schema check: paper metadata
// validation never drops a paper (§4.4).
func ValidateMetadata(paperID string, raw model.RawMetadata) model.Paper {
	paper := model.Paper{
		PaperID:         paperID,
		Title:           strings.TrimSpace(raw.Title),
		Abstract:        raw.Abstract,
		PublicationYear: raw.PublicationYear,
		Journal:         raw.Journal,
		DOI:             raw.DOI,
		Keywords:        raw.Keywords,
		PaperType:       raw.PaperType,
	}

	if paper.Title == "" {
		paper.Title = fmt.Sprintf("Paper %s", paperID)
	}
	if paper.PublicationYear == 0 {
		paper.PublicationYear = yearFromPaperID(paperID)
	}
	if paper.PaperType == "" || !inDomain(paperTypeDomain, string(paper.PaperType)) {
		paper.PaperType = model.PaperEmpiricalQuantitative
	}

	return paper
}

// yearFromPaperID extracts the leading four-digit year discovery encodes
// into every paper id (`YYYY_suffix`, §4.1), returning 0 if the prefix
// isn't a plausible year.
func yearFromPaperID(paperID string) int {
	prefix := paperID
	if idx := strings.IndexByte(paperID, '_'); idx > 0 {
		prefix = paperID[:idx]
	}
	year, err := strconv.Atoi(prefix)
	if err != nil || year < 1900 || year > 2100 {
		return 0
	}
	return year
}
