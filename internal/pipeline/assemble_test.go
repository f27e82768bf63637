package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"smj-graphpipeline/internal/model"
	"smj-graphpipeline/internal/normalizer"
)

func TestAssembleNormalizesTheoryAndPreservesEdge(t *testing.T) {
	a := NewAssembler(normalizer.New(nil, 0))
	result := model.NewEmptyExtractionResult("2001_paper")
	result.Metadata = model.RawMetadata{Title: "A Study of Firms"}
	result.Theories = []model.RawTheory{{
		Name: "RBV", Role: model.RolePrimary, Section: "theory", Confidence: 0.9,
	}}

	in := a.Assemble(context.Background(), result)
	require.Len(t, in.Theories, 1)
	require.Equal(t, "Resource-Based View", in.Theories[0].Theory.Name)
	require.Equal(t, model.RolePrimary, in.Theories[0].Edge.Role)
	require.Equal(t, 0.9, in.Theories[0].Edge.Confidence)
}

func TestAssembleDerivesSoftwareFromMethods(t *testing.T) {
	a := NewAssembler(normalizer.New(nil, 0))
	result := model.NewEmptyExtractionResult("2001_paper")
	result.Methods = []model.RawMethod{
		{Name: "OLS Regression", Type: model.MethodQuantitative, Software: []string{"Stata", "Stata"}},
		{Name: "Fixed Effects", Type: model.MethodQuantitative, Software: []string{"R"}},
	}

	in := a.Assemble(context.Background(), result)
	require.Len(t, in.Methods, 2)

	names := make(map[string]bool)
	for _, s := range in.Software {
		names[s.Software.SoftwareName] = true
	}
	require.Len(t, in.Software, 2, "duplicate software mentions across methods must be deduped")
	require.True(t, names["Stata"])
	require.True(t, names["R"])
}

func TestAssembleDerivesAuthorAndInstitutionIDs(t *testing.T) {
	a := NewAssembler(normalizer.New(nil, 0))
	result := model.NewEmptyExtractionResult("2001_paper")
	result.Authors = []model.RawAuthor{{
		FullName: "Jane Doe", GivenName: "Jane", FamilyName: "Doe", Position: 1,
		Affiliations: []model.Affiliation{{InstitutionName: "University of Example"}},
	}}

	in := a.Assemble(context.Background(), result)
	require.Len(t, in.Authors, 1)
	require.NotEmpty(t, in.Authors[0].Author.AuthorID)
	require.Len(t, in.Authors[0].Affiliations, 1)
	require.NotEmpty(t, in.Authors[0].Affiliations[0].Institution.InstitutionID)
}

func TestAssembleSkipsBlankNames(t *testing.T) {
	a := NewAssembler(normalizer.New(nil, 0))
	result := model.NewEmptyExtractionResult("2001_paper")
	result.Authors = []model.RawAuthor{{FullName: "  "}}
	result.Theories = []model.RawTheory{{Name: ""}}

	in := a.Assemble(context.Background(), result)
	require.Empty(t, in.Authors)
	require.Empty(t, in.Theories)
}

func TestAssembleLinksNormalizeToMatchEntities(t *testing.T) {
	a := NewAssembler(normalizer.New(nil, 0))
	result := model.NewEmptyExtractionResult("2001_paper")
	result.TheoryPhenomenonLinks = []model.TheoryPhenomenonLink{{Theory: "RBV", Phenomenon: "firm performance"}}
	result.Theories = []model.RawTheory{{Name: "RBV"}}
	result.Phenomena = []model.RawPhenomenon{{Name: "firm performance"}}

	in := a.Assemble(context.Background(), result)
	require.Len(t, in.TheoryPhenomenonLinks, 1)
	require.Equal(t, in.Theories[0].Theory.Name, in.TheoryPhenomenonLinks[0].Theory)
	require.Equal(t, in.Phenomena[0].Phenomenon.PhenomenonName, in.TheoryPhenomenonLinks[0].Phenomenon)
}
