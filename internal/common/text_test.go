package common

import "testing"

func TestWordPadded(t *testing.T) {
	tests := map[string]string{
		"NSW Supersprint - Round 2": " nsw supersprint round 2 ",
		"  Grand   Prix!":           " grand prix ",
		"":                          "  ",
	}
	for in, want := range tests {
		if got := WordPadded(in); got != want {
			t.Errorf("WordPadded(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasAny(t *testing.T) {
	s := WordPadded("Club Cup Round")
	if !HasAny(s, " cup ") {
		t.Errorf("HasAny(%q, cup) = false", s)
	}
	if HasAny(s, " cupid ", " tour ") {
		t.Errorf("HasAny(%q) matched a word that is not there", s)
	}
}

func TestCollapseSpaces(t *testing.T) {
	if got := CollapseSpaces("  Perth \t WA  "); got != "Perth WA" {
		t.Errorf("CollapseSpaces() = %q", got)
	}
}
