// Package normalizer implements the §4.5 two-level entity normalizer: a
// curated canonical dictionary checked first, then optional embedding
// nearest-neighbor matching against previously seen canonical entities.
// The dictionary-then-embedding layering follows the teacher's own
// two-tier cache idiom (cheap exact/structural match before a model call),
// generalized here from the response cache to entity identity.
package normalizer

import "strings"

// Class names an entity kind the dictionary and embedding matcher both key
// on (§4.5: "provided for Theory, Method, Software, and Phenomenon").
type Class string

const (
	ClassTheory     Class = "theory"
	ClassMethod     Class = "method"
	ClassSoftware   Class = "software"
	ClassPhenomenon Class = "phenomenon"
)

// Method names which of the §4.5 matching strategies produced a result.
type Method string

const (
	MethodExact     Method = "exact"
	MethodDictionary Method = "dictionary"
	MethodEmbedding Method = "embedding"
	MethodNew       Method = "new"
)

// Result is the outcome of normalizing one surface string.
type Result struct {
	Canonical    string
	OriginalName string
	Method       Method
	Confidence   float64
}

// canonicalEntry is one canonical name and its curated aliases, lower-cased
// for lookup.
type canonicalEntry struct {
	canonical string
	aliases   []string
}

// Dictionary is the curated canonical-name -> aliases mapping for one
// entity class (§2.5, §4.5 step 1).
type Dictionary struct {
	entries []canonicalEntry
	byAlias map[string]string // lower-cased alias -> canonical
}

// NewDictionary builds a Dictionary from canonical name -> alias list
// pairs. The canonical name is always registered as an alias of itself.
func NewDictionary(entries map[string][]string) *Dictionary {
	d := &Dictionary{byAlias: make(map[string]string)}
	for canonical, aliases := range entries {
		all := append([]string{canonical}, aliases...)
		lowered := make([]string, 0, len(all))
		for _, a := range all {
			key := lowerKey(a)
			lowered = append(lowered, key)
			d.byAlias[key] = canonical
		}
		d.entries = append(d.entries, canonicalEntry{canonical: canonical, aliases: lowered})
	}
	return d
}

// Lookup runs the §4.5 step-1 dictionary match: exact lookup on the
// lowercased surface form, then prefix/suffix match against multi-word
// keys, then substring match for keys longer than 5 characters. Each
// successful match carries confidence 0.9-1.0.
func (d *Dictionary) Lookup(surface string) (Result, bool) {
	key := lowerKey(surface)
	if key == "" {
		return Result{}, false
	}

	if canonical, ok := d.byAlias[key]; ok {
		confidence := 0.95
		if canonical == surface {
			confidence = 1.0
		}
		return Result{Canonical: canonical, Method: MethodDictionary, Confidence: confidence}, true
	}

	words := strings.Fields(key)
	if len(words) > 1 {
		for alias, canonical := range d.byAlias {
			if len(strings.Fields(alias)) < 2 {
				continue
			}
			if strings.HasPrefix(key, alias) || strings.HasSuffix(key, alias) ||
				strings.HasPrefix(alias, key) || strings.HasSuffix(alias, key) {
				return Result{Canonical: canonical, Method: MethodDictionary, Confidence: 0.9}, true
			}
		}
	}

	for alias, canonical := range d.byAlias {
		if len(alias) > 5 && strings.Contains(key, alias) {
			return Result{Canonical: canonical, Method: MethodDictionary, Confidence: 0.9}, true
		}
	}

	return Result{}, false
}

// TopAliases returns up to n curated aliases for canonical, used to build
// the "name + top-3 aliases" rich text the embedding matcher embeds once
// per canonical entity (§4.5 step 2).
func (d *Dictionary) TopAliases(canonical string, n int) []string {
	for _, e := range d.entries {
		if e.canonical != canonical {
			continue
		}
		limit := n
		if limit > len(e.aliases) {
			limit = len(e.aliases)
		}
		return e.aliases[:limit]
	}
	return nil
}

// seedDictionaries returns the curated canonical dictionaries for the four
// normalized entity classes (§2.5). These are the small seed set this
// corpus's domain requires; a production deployment would load a larger
// curated table from the same shape.
func seedDictionaries() map[Class]*Dictionary {
	return map[Class]*Dictionary{
		ClassTheory: NewDictionary(map[string][]string{
			"Resource-Based View": {
				"rbv", "resource based view", "resource-based theory", "resource based theory",
				"resource-based view of the firm", "rbv theory",
			},
			"Agency Theory": {
				"agency theory", "principal-agent theory", "principal agent theory",
			},
			"Transaction Cost Economics": {
				"tce", "transaction cost economics", "transaction cost theory",
			},
			"Institutional Theory": {
				"institutional theory", "neo-institutional theory", "institutionalism",
			},
			"Dynamic Capabilities": {
				"dynamic capabilities", "dynamic capabilities view", "dcv",
			},
			"Stakeholder Theory": {
				"stakeholder theory",
			},
			"Upper Echelons Theory": {
				"upper echelons theory", "upper echelons perspective",
			},
			"Social Network Theory": {
				"social network theory", "network theory",
			},
			"Knowledge-Based View": {
				"kbv", "knowledge based view", "knowledge-based theory",
			},
			"Real Options Theory": {
				"real options theory", "real options reasoning",
			},
		}),
		ClassMethod: NewDictionary(map[string][]string{
			"Ordinary Least Squares": {
				"ols", "ols regression", "ordinary least squares", "linear regression",
			},
			"Fixed Effects Regression": {
				"fixed effects", "fixed effects regression", "fixed-effects model",
			},
			"Case Study": {
				"case study", "case study method", "single case study",
			},
			"Grounded Theory": {
				"grounded theory", "grounded theory approach",
			},
			"Structural Equation Modeling": {
				"sem", "structural equation modeling", "structural equation model",
			},
			"Event Study": {
				"event study", "event study methodology",
			},
			"Panel Data Analysis": {
				"panel data", "panel data analysis", "panel regression",
			},
			"Content Analysis": {
				"content analysis", "qualitative content analysis",
			},
		}),
		ClassSoftware: NewDictionary(map[string][]string{
			"Stata":     {"stata"},
			"R":         {"r software", "r statistical software"},
			"SPSS":      {"spss", "ibm spss"},
			"SAS":       {"sas"},
			"Mplus":     {"mplus"},
			"NVivo":     {"nvivo"},
			"AMOS":      {"amos", "ibm spss amos"},
			"Python":    {"python"},
			"MATLAB":    {"matlab"},
		}),
		ClassPhenomenon: NewDictionary(map[string][]string{
			"Firm Performance": {
				"firm performance", "organizational performance", "firm financial performance",
			},
			"Innovation": {
				"innovation", "firm innovation", "innovative activity",
			},
			"Mergers and Acquisitions": {
				"m&a", "mergers and acquisitions", "merger and acquisition activity",
			},
			"Strategic Alliance Formation": {
				"strategic alliance formation", "alliance formation",
			},
			"Internationalization": {
				"internationalization", "international expansion",
			},
			"CEO Turnover": {
				"ceo turnover", "executive turnover",
			},
			"Corporate Diversification": {
				"diversification", "corporate diversification",
			},
		}),
	}
}
