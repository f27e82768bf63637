package graph

import (
	"strings"

	"smj-graphpipeline/internal/embeddings"
	"smj-graphpipeline/internal/model"
	"smj-graphpipeline/internal/normalizer"
)

// connectionStrengthThreshold is §4.8's "edge created only when total >= 0.3".
const connectionStrengthThreshold = 0.3

// ConnectionStrengthInput is one (theory, phenomenon, paper) triple's
// inputs to the §4.8 scoring function.
type ConnectionStrengthInput struct {
	TheoryRole          model.TheoryRole
	TheorySection       string
	PhenomenonSection   string
	TheoryUsageContext  string
	PhenomenonText      string // phenomenon description + context, concatenated
	TheoryEmbedding     []float32
	PhenomenonEmbedding []float32
	ExplicitlyLinked    bool // paper's theory_phenomenon_links contains this pair
}

// ConnectionStrength computes §4.8's weighted sum and its sub-scores. The
// five factors are weighted evenly (role, section, keyword, semantic at
// 0.2 each, plus up to 0.2 explicit bonus) so the maximum attainable total
// is 1.0 and the persisted sub-scores sum to the total.
func ConnectionStrength(in ConnectionStrengthInput) model.ExplainsPhenomenon {
	const factorWeight = 0.2

	roleScore := model.RoleWeight(in.TheoryRole) * factorWeight
	sectionScore := sectionAlignment(in.TheorySection, in.PhenomenonSection) * factorWeight

	theoryTokens := normalizer.SignificantTokens(in.TheoryUsageContext)
	phenomenonTokens := normalizer.SignificantTokens(in.PhenomenonText)
	keywordScore := normalizer.Jaccard(theoryTokens, phenomenonTokens)

	var semanticRaw float64
	if len(in.TheoryEmbedding) > 0 && len(in.PhenomenonEmbedding) > 0 && len(in.TheoryEmbedding) == len(in.PhenomenonEmbedding) {
		semanticRaw = embeddings.CosineSimilarity(in.TheoryEmbedding, in.PhenomenonEmbedding)
	} else {
		semanticRaw = keywordScore
	}

	keywordScoreWeighted := keywordScore * factorWeight
	semanticScoreWeighted := semanticRaw * factorWeight

	var explicitBonus float64
	if in.ExplicitlyLinked {
		explicitBonus = 0.2
	}

	total := roleScore + sectionScore + keywordScoreWeighted + semanticScoreWeighted + explicitBonus
	if total > 1.0 {
		total = 1.0
	}

	return model.ExplainsPhenomenon{
		TheoryRole:         string(in.TheoryRole),
		Section:            in.TheorySection,
		ConnectionStrength: total,
		RoleScore:          roleScore,
		SectionScore:       sectionScore,
		KeywordScore:       keywordScoreWeighted,
		SemanticScore:      semanticScoreWeighted,
		ExplicitBonus:      explicitBonus,
	}
}

// MeetsConnectionThreshold reports whether a computed edge should be
// created (§4.8: "edge created only when the total is >= 0.3").
func MeetsConnectionThreshold(edge model.ExplainsPhenomenon) bool {
	return edge.ConnectionStrength >= connectionStrengthThreshold
}

// sectionAlignment is §4.8's section_score: 1.0 same section, 0.5 for the
// introduction/literature_review pairing, else 0.2.
func sectionAlignment(theorySection, phenomenonSection string) float64 {
	a := strings.ToLower(strings.TrimSpace(theorySection))
	b := strings.ToLower(strings.TrimSpace(phenomenonSection))
	if a == b && a != "" {
		return 1.0
	}
	pair := map[string]bool{"introduction": true, "literature_review": true}
	if pair[a] && pair[b] {
		return 0.5
	}
	return 0.2
}
