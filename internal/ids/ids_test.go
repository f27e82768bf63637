package ids

import "testing"

func TestAuthorIDDeterministic(t *testing.T) {
	a := AuthorID("Jane A. Doe", "Jane", "Doe")
	b := AuthorID("J. Doe", "Jane", "Doe")
	if a != b {
		t.Fatalf("expected same family+given name to produce same id, got %q vs %q", a, b)
	}
}

func TestAuthorIDFallsBackToFullName(t *testing.T) {
	a := AuthorID("Jane Doe", "", "")
	b := AuthorID("Jane Doe", "", "")
	if a != b {
		t.Fatalf("expected deterministic fallback id, got %q vs %q", a, b)
	}
	c := AuthorID("Jane Doe III", "", "")
	if a == c {
		t.Fatalf("expected different full names to produce different ids")
	}
}

func TestVariableIDScopedToPaper(t *testing.T) {
	a := VariableID("1990_smith", "Firm Performance")
	b := VariableID("1991_smith", "Firm Performance")
	if a == b {
		t.Fatalf("expected variable id to be scoped to paper id")
	}
}

func TestFindingIDStableAcrossCalls(t *testing.T) {
	a := FindingID("2001_jones", "RBV predicts firm performance")
	b := FindingID("2001_jones", "RBV predicts firm performance")
	if a != b {
		t.Fatalf("expected stable hash, got %q vs %q", a, b)
	}
}
