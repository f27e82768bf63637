// Package promptkit builds the extraction prompts the LLM client sends, and
// names the request kinds that participate in response-cache keys. The
// template shape — system voice, task rules, JSON schema, few-shot
// examples — follows the teacher's buildExtractionPrompt in
// internal/knowledge/extraction/llm_extractor.go, generalized from one
// fixed schema to the ten entity kinds §4.3 stage 2 requires.
package promptkit

import (
	"fmt"
	"strings"
)

// Version participates in the response cache key so that editing a prompt
// here invalidates every cached response built against the old wording
// (§4.3 stage 2, §2.4).
const Version = "2.0"

// Kind names one of the ten LLM call shapes used by single-entity mode, or
// one of the three combined-mode batches.
type Kind string

const (
	KindMetadataAuthors      Kind = "metadata_authors"
	KindTheoriesPhenomena    Kind = "theories_phenomena"
	KindMethodsFindings      Kind = "methods_findings"
	KindMetadata             Kind = "metadata"
	KindAuthors              Kind = "authors"
	KindTheories             Kind = "theories"
	KindPhenomena            Kind = "phenomena"
	KindMethods              Kind = "methods"
	KindVariables            Kind = "variables"
	KindFindings             Kind = "findings"
	KindContributions        Kind = "contributions"
	KindResearchQuestions    Kind = "research_questions"
	KindCitations            Kind = "citations"
)

const systemVoice = `You are a domain-expert research assistant specializing in strategic management and organization theory. You extract structured information from academic papers with precision, grounding every extraction in the source text. Never invent facts not present in the text. Respond with a single JSON object and nothing else.`

// template holds the per-kind task description, JSON schema, and few-shot
// examples that make up the body of a prompt (§4.3 stage 2).
type template struct {
	task     string
	schema   string
	examples []string
}

var templates = map[Kind]template{
	KindMetadataAuthors: {
		task: "Extract the paper's bibliographic metadata and its author list, in publication order.",
		schema: `{
  "metadata": {"title": "string", "abstract": "string", "publication_year": 0, "journal": "string", "doi": "string", "keywords": ["string"], "paper_type": "empirical_quantitative|empirical_qualitative|theoretical|review|meta_analysis|research_note"},
  "authors": [{"full_name": "string", "given_name": "string", "family_name": "string", "orcid": "string", "email": "string", "position": 0, "affiliations": [{"institution_name": "string", "department": "string", "country": "string"}]}]
}`,
		examples: []string{
			`{"metadata":{"title":"Resource-Based Theory and Firm Performance","abstract":"We examine...","publication_year":2001,"journal":"Strategic Management Journal","doi":"10.1002/smj.1","keywords":["resource-based view","performance"],"paper_type":"empirical_quantitative"},"authors":[{"full_name":"Jane A. Doe","given_name":"Jane","family_name":"Doe","position":1,"affiliations":[{"institution_name":"University of Example"}]}]}`,
		},
	},
	KindTheoriesPhenomena: {
		task: "Extract the theories the paper draws on, the organizational phenomena it studies, and any explicit theory-to-phenomenon links the authors state.",
		schema: `{
  "theories": [{"name": "string", "domain": "string", "theory_type": "framework|concept|model|perspective", "description": "string", "role": "primary|supporting|challenging|extending", "section": "string", "usage_context": "string", "confidence": 0.0}],
  "phenomena": [{"name": "string", "phenomenon_type": "behavior|pattern|event|trend|process|outcome", "domain": "string", "description": "string", "context": "string", "section": "string", "level_of_analysis": "individual|team|organization|industry|economy|multi_level"}],
  "theory_phenomenon_links": [{"theory": "string", "phenomenon": "string"}]
}`,
		examples: []string{
			`{"theories":[{"name":"Resource-Based View","domain":"strategy","theory_type":"framework","description":"Firms gain advantage from valuable, rare resources.","role":"primary","section":"theory","usage_context":"used to predict performance differences","confidence":0.95}],"phenomena":[{"name":"Firm Performance","phenomenon_type":"outcome","domain":"strategy","description":"Financial returns relative to industry peers.","context":"measured via ROA","section":"results","level_of_analysis":"organization"}],"theory_phenomenon_links":[{"theory":"Resource-Based View","phenomenon":"Firm Performance"}]}`,
		},
	},
	KindMethodsFindings: {
		task: "Extract the empirical methods used, the variables measured, the paper's findings, its contributions, and any research questions it poses.",
		schema: `{
  "methods": [{"name": "string", "type": "quantitative|qualitative|mixed|computational|experimental", "category": "string", "software": ["string"], "sample_size": 0, "time_period": "string", "confidence": 0.0}],
  "variables": [{"name": "string", "variable_type": "dependent|independent|control|moderator|mediator|instrumental", "measurement": "string", "operationalization": "string"}],
  "findings": [{"text": "string", "finding_type": "hypothesis_supported|hypothesis_rejected|unexpected|exploratory", "significance": "string", "effect_size": "string", "section": "string"}],
  "contributions": [{"text": "string", "contribution_type": "theoretical|empirical|methodological|practical", "section": "string"}],
  "research_questions": [{"question": "string", "question_type": "descriptive|explanatory|predictive|prescriptive|exploratory", "section": "string"}]
}`,
		examples: []string{
			`{"methods":[{"name":"OLS Regression","type":"quantitative","category":"econometric","software":["Stata"],"sample_size":412,"time_period":"1990-2000","confidence":0.9}],"variables":[{"name":"Firm Performance","variable_type":"dependent","measurement":"ROA","operationalization":"net income / total assets"}],"findings":[{"text":"RBV-derived resources positively predict ROA.","finding_type":"hypothesis_supported","significance":"p<0.01","section":"results"}],"contributions":[{"text":"Extends RBV to dynamic environments.","contribution_type":"theoretical","section":"discussion"}],"research_questions":[{"question":"Does resource heterogeneity predict performance?","question_type":"explanatory","section":"introduction"}]}`,
		},
	},
	KindCitations: {
		task: "Extract the paper's reference list, one entry per citation, with the citing section and citation type.",
		schema: `{"citations": [{"title": "string", "citation_type": "supportive|critical|background|methodological", "section": "string"}]}`,
		examples: []string{
			`{"citations":[{"title":"A Resource-Based View of the Firm","citation_type":"background","section":"theory"}]}`,
		},
	},
}

func init() {
	// Single-entity fallback mode reuses the combined schemas, split apart
	// per kind (§4.3 stage 3b), rather than maintaining ten independent
	// templates that could drift from the combined ones.
	templates[KindMetadata] = splitTemplate(templates[KindMetadataAuthors], "metadata", `{"metadata": {"title": "string", "abstract": "string", "publication_year": 0, "journal": "string", "doi": "string", "keywords": ["string"], "paper_type": "string"}}`)
	templates[KindAuthors] = splitTemplate(templates[KindMetadataAuthors], "authors", `{"authors": [{"full_name": "string", "given_name": "string", "family_name": "string", "position": 0}]}`)
	templates[KindTheories] = splitTemplate(templates[KindTheoriesPhenomena], "theories", `{"theories": [{"name": "string", "role": "primary|supporting|challenging|extending", "confidence": 0.0}]}`)
	templates[KindPhenomena] = splitTemplate(templates[KindTheoriesPhenomena], "phenomena", `{"phenomena": [{"name": "string", "phenomenon_type": "string"}]}`)
	templates[KindMethods] = splitTemplate(templates[KindMethodsFindings], "methods", `{"methods": [{"name": "string", "type": "string", "sample_size": 0}]}`)
	templates[KindVariables] = splitTemplate(templates[KindMethodsFindings], "variables", `{"variables": [{"name": "string", "variable_type": "string"}]}`)
	templates[KindFindings] = splitTemplate(templates[KindMethodsFindings], "findings", `{"findings": [{"text": "string", "finding_type": "string"}]}`)
	templates[KindContributions] = splitTemplate(templates[KindMethodsFindings], "contributions", `{"contributions": [{"text": "string", "contribution_type": "string"}]}`)
	templates[KindResearchQuestions] = splitTemplate(templates[KindMethodsFindings], "research_questions", `{"research_questions": [{"question": "string", "question_type": "string"}]}`)
}

func splitTemplate(base template, field, schema string) template {
	return template{
		task:     fmt.Sprintf("%s Return only the %q field.", base.task, field),
		schema:   schema,
		examples: base.examples,
	}
}

const rules = `Rules:
- Ground every extracted value in the text below; do not infer facts the text does not support.
- If a field cannot be determined, omit it rather than guessing.
- Return a single JSON object matching the schema exactly. Do not wrap it in prose.
- Arrays with no matches should be empty arrays, never omitted.`

// Build constructs the system and user prompts for one call kind against
// one paper's extracted text (§4.3 stage 2).
func Build(kind Kind, paperText string) (systemPrompt, userPrompt string) {
	t, ok := templates[kind]
	if !ok {
		t = template{task: string(kind)}
	}

	var b strings.Builder
	b.WriteString(t.task)
	b.WriteString("\n\n")
	b.WriteString(rules)
	b.WriteString("\n\nJSON schema:\n")
	b.WriteString(t.schema)
	for i, ex := range t.examples {
		fmt.Fprintf(&b, "\n\nExample %d:\n%s", i+1, ex)
	}
	b.WriteString("\n\nText:\n")
	b.WriteString(paperText)

	return systemVoice, b.String()
}

// CombinedKinds lists the calls combined mode issues per paper: the three
// batched calls plus a fourth call for citations, since the ingester's
// citation-resolution step (§4.6 step 8) needs a citations list regardless
// of extraction mode and the three batched schemas have no room left for it.
func CombinedKinds() []Kind {
	return []Kind{KindMetadataAuthors, KindTheoriesPhenomena, KindMethodsFindings, KindCitations}
}

// SingleEntityKinds lists the ten calls single-entity fallback mode issues
// per paper, one per extraction kind (§4.3 stage 3b).
func SingleEntityKinds() []Kind {
	return []Kind{
		KindMetadata, KindAuthors, KindTheories, KindPhenomena,
		KindMethods, KindVariables, KindFindings, KindContributions,
		KindResearchQuestions, KindCitations,
	}
}
