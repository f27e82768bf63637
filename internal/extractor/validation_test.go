package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"smj-graphpipeline/internal/model"
)

func TestSourceGroundedValidationExactMatch(t *testing.T) {
	result := model.NewEmptyExtractionResult("2001_001")
	result.Theories = []model.RawTheory{{Name: "Resource-Based View", Confidence: 0.9}}

	applySourceGroundedValidation(result, "This paper applies the Resource-Based View to firm performance.")

	require.Len(t, result.Theories, 1)
	require.Equal(t, model.ValidationExactMatch, result.Theories[0].ValidationStatus)
	require.Equal(t, 1.0, result.Theories[0].Confidence)
}

func TestSourceGroundedValidationAbbreviation(t *testing.T) {
	result := model.NewEmptyExtractionResult("2001_001")
	result.Theories = []model.RawTheory{{Name: "RBV", Confidence: 0.9}}

	applySourceGroundedValidation(result, "Firms with resource heterogeneity, based on valuable assets, outperform rivals.")

	require.Len(t, result.Theories, 1)
	require.Equal(t, model.ValidationAbbreviationMatch, result.Theories[0].ValidationStatus)
	require.Equal(t, 0.7, result.Theories[0].Confidence)
}

func TestSourceGroundedValidationKeepsNotFoundAtFloor(t *testing.T) {
	result := model.NewEmptyExtractionResult("2001_001")
	result.Theories = []model.RawTheory{{Name: "Completely Unrelated Framework Xyzzy", Confidence: 0.9}}

	applySourceGroundedValidation(result, "This paper studies mergers and acquisitions in the airline industry.")

	require.Len(t, result.Theories, 1)
	require.Equal(t, model.ValidationNotFound, result.Theories[0].ValidationStatus)
	require.Equal(t, 0.3, result.Theories[0].Confidence)
}

func TestSourceGroundedValidationPartialMatch(t *testing.T) {
	result := model.NewEmptyExtractionResult("2001_001")
	result.Methods = []model.RawMethod{{Name: "Ordinary Least Squares Regression", Confidence: 0.8}}

	applySourceGroundedValidation(result, "We estimate the model using ordinary least squares on a panel of firms.")

	require.Len(t, result.Methods, 1)
	require.Contains(t, []model.ValidationStatus{model.ValidationExactMatch, model.ValidationPartialMatch, model.ValidationWeakMatch}, result.Methods[0].ValidationStatus)
}
