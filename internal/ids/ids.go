// Package ids derives the deterministic identities §3.1 requires for nodes
// whose identity is a stable hash of their scoping fields, rather than a
// randomly generated uuid. Using a hash instead of a random id is what makes
// re-ingesting the same paper idempotent (§3.4, §8 "Ingester idempotence").
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// stableHash joins parts with a unit separator and returns the first 16
// hex bytes of their SHA-256 digest. 16 bytes keeps ids short while leaving
// collision probability negligible for a corpus of this size.
func stableHash(parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0x1f})
		}
		h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// AuthorID derives a deterministic author identity from family+given name,
// falling back to the full name when either component is missing (§3.1).
func AuthorID(fullName, givenName, familyName string) string {
	given := strings.ToLower(strings.TrimSpace(givenName))
	family := strings.ToLower(strings.TrimSpace(familyName))
	if given != "" && family != "" {
		return "author_" + stableHash(family, given)
	}
	return "author_" + stableHash(strings.ToLower(strings.TrimSpace(fullName)))
}

// InstitutionID derives a deterministic institution identity from its
// normalized name.
func InstitutionID(name string) string {
	return "inst_" + stableHash(strings.ToLower(strings.TrimSpace(name)))
}

// VariableID derives a deterministic, paper-scoped variable identity.
func VariableID(paperID, variableName string) string {
	return "var_" + stableHash(paperID, strings.ToLower(strings.TrimSpace(variableName)))
}

// FindingID derives a deterministic, paper-scoped finding identity.
func FindingID(paperID, findingText string) string {
	return "finding_" + stableHash(paperID, findingText)
}

// ContributionID derives a deterministic, paper-scoped contribution identity.
func ContributionID(paperID, text string) string {
	return "contrib_" + stableHash(paperID, text)
}

// QuestionID derives a deterministic, paper-scoped research-question identity.
func QuestionID(paperID, question string) string {
	return "rq_" + stableHash(paperID, question)
}

// TopicID derives a deterministic identity from a time interval and the
// index of a cluster found within it.
func TopicID(interval string, clusterIndex int) string {
	return "topic_" + stableHash(interval, strconv.Itoa(clusterIndex))
}
