package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"smj-graphpipeline/internal/model"
)

func TestCoerceMapsAliasedFieldNames(t *testing.T) {
	raw := map[string]any{"theory_name": "Resource-Based View", "role": "primary"}
	coerced := Coerce("theory", raw)
	require.Equal(t, "Resource-Based View", coerced["name"])
	require.Equal(t, defaultConfidence, coerced["confidence"])
}

func TestCoerceFillsDefaultConfidenceWhenMissing(t *testing.T) {
	coerced := Coerce("phenomenon", map[string]any{"name": "Firm Performance"})
	require.Equal(t, defaultConfidence, coerced["confidence"])
}

func TestCoerceConvertsWordConfidence(t *testing.T) {
	coerced := Coerce("theory", map[string]any{"name": "x", "confidence": "High"})
	require.Equal(t, 0.9, coerced["confidence"])
}

func TestCoerceInfersMethodTypeFromName(t *testing.T) {
	coerced := Coerce("method", map[string]any{"name": "Semi-structured interviews"})
	require.Equal(t, "qualitative", coerced["type"])
}

func TestCoerceLeavesExplicitMethodTypeAlone(t *testing.T) {
	coerced := Coerce("method", map[string]any{"name": "Semi-structured interviews", "type": "quantitative"})
	require.Equal(t, "quantitative", coerced["type"])
}

func TestCheckFlagsMissingRequiredField(t *testing.T) {
	problems := Check("theory", map[string]any{"theory_type": "framework"})
	require.Len(t, problems, 1)
	require.Contains(t, problems[0], "name")
}

func TestCheckFlagsEnumOutsideDomain(t *testing.T) {
	problems := Check("theory", map[string]any{"name": "x", "theory_type": "economic"})
	require.Len(t, problems, 1)
	require.Contains(t, problems[0], "theory_type")
}

func TestCheckPassesValidRecord(t *testing.T) {
	problems := Check("theory", map[string]any{"name": "x", "theory_type": "framework", "role": "primary"})
	require.Empty(t, problems)
}

func TestMinimalKeepsValidFieldsAndFillsDefaults(t *testing.T) {
	record := map[string]any{"name": "x", "theory_type": "nonsense", "confidence": 0.95}
	minimal := Minimal("theory", record)
	require.Equal(t, "x", minimal["name"])
	require.Equal(t, theoryTypeDomain[0], minimal["theory_type"])
	require.Equal(t, 0.95, minimal["confidence"])
}

func TestMinimalFillsPlaceholderForMissingRequiredField(t *testing.T) {
	minimal := Minimal("finding", map[string]any{})
	require.Equal(t, "unknown finding", minimal["text"])
}

func TestValidateMetadataNeverDropsAPaper(t *testing.T) {
	paper := ValidateMetadata("1990_smith", model.RawMetadata{})
	require.Equal(t, "Paper 1990_smith", paper.Title)
	require.Equal(t, 1990, paper.PublicationYear)
	require.Equal(t, model.PaperEmpiricalQuantitative, paper.PaperType)
}

func TestValidateMetadataPreservesValidInput(t *testing.T) {
	paper := ValidateMetadata("2001_jones", model.RawMetadata{
		Title:           "Resource-Based Theory and Firm Performance",
		PublicationYear: 2001,
		PaperType:       model.PaperEmpiricalQuantitative,
	})
	require.Equal(t, "Resource-Based Theory and Firm Performance", paper.Title)
	require.Equal(t, 2001, paper.PublicationYear)
}

func TestValidateMetadataRejectsUnknownPaperType(t *testing.T) {
	paper := ValidateMetadata("1995_lee", model.RawMetadata{Title: "x", PaperType: "bogus"})
	require.Equal(t, model.PaperEmpiricalQuantitative, paper.PaperType)
}

func TestYearFromPaperIDHandlesMissingUnderscore(t *testing.T) {
	require.Equal(t, 0, yearFromPaperID("notaYear"))
}
