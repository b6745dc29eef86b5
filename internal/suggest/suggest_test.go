package suggest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCounterMonotonic(t *testing.T) {
	var c Counter
	a := c.Next("sug")
	b := c.Next("sug")
	if a == b {
		t.Fatalf("Counter produced duplicate IDs: %s", a)
	}
	if a != "sug-1" || b != "sug-2" {
		t.Errorf("unexpected IDs: %s, %s", a, b)
	}
}

func TestSequenceDeterministic(t *testing.T) {
	s1 := &Sequence{}
	s2 := &Sequence{}
	for i := 0; i < 3; i++ {
		if s1.Next("x") != s2.Next("x") {
			t.Fatal("Sequence generators diverged")
		}
	}
}

func TestDedupeKeyOrderInsensitive(t *testing.T) {
	a := Suggestion{AffectedNodeIDs: []string{"n2", "n1"}}
	b := Suggestion{AffectedNodeIDs: []string{"n1", "n2"}}
	if DedupeKey(a) != DedupeKey(b) {
		t.Errorf("keys differ: %q vs %q", DedupeKey(a), DedupeKey(b))
	}
}

func TestDedupeKeepsFirst(t *testing.T) {
	in := []Suggestion{
		{ID: "a", Confidence: 0.9, AffectedNodeIDs: []string{"n1", "n2"}},
		{ID: "b", Confidence: 0.5, AffectedNodeIDs: []string{"n2", "n1"}},
		{ID: "c", Confidence: 0.4, AffectedNodeIDs: []string{"n3"}},
	}
	out := Dedupe(in)
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "c" {
		t.Errorf("Dedupe = %+v", out)
	}
}

func TestSortAndCap(t *testing.T) {
	in := []Suggestion{
		{ID: "low", Confidence: 0.3},
		{ID: "high", Confidence: 0.9},
		{ID: "mid", Confidence: 0.5},
	}
	SortByConfidence(in)
	var got []string
	for _, s := range in {
		got = append(got, s.ID)
	}
	if diff := cmp.Diff([]string{"high", "mid", "low"}, got); diff != "" {
		t.Errorf("sort order (-want +got):\n%s", diff)
	}
	if capped := Cap(in, 2); len(capped) != 2 || capped[0].ID != "high" {
		t.Errorf("Cap = %+v", capped)
	}
	if capped := Cap(in, 10); len(capped) != 3 {
		t.Errorf("Cap beyond length truncated: %+v", capped)
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-0.2, 0}, {0, 0}, {0.7, 0.7}, {1, 1}, {1.4, 1},
	}
	for _, tt := range tests {
		if got := ClampConfidence(tt.in); got != tt.want {
			t.Errorf("ClampConfidence(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestShouldRecompute(t *testing.T) {
	tests := []struct {
		family, action string
		want           bool
	}{
		{FamilyLayout, ActionPropChanged, true},
		{FamilyTemplate, ActionPropChanged, false},
		{FamilyTemplate, ActionPageDuplicated, true},
		{FamilyStructural, ActionPropChanged, false},
		{FamilyComposition, ActionPasted, true},
		{"unknown", ActionNodeAdded, false},
		{FamilyLayout, "unknown", false},
	}
	for _, tt := range tests {
		if got := ShouldRecompute(tt.family, tt.action); got != tt.want {
			t.Errorf("ShouldRecompute(%s, %s) = %v, want %v", tt.family, tt.action, got, tt.want)
		}
	}
}
