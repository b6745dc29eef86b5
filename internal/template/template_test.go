package template

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"pagewise/internal/intent"
	"pagewise/internal/structural"
	"pagewise/internal/suggest"
	"pagewise/internal/tree"
)

// optinPage is a two-section opt-in page: hero with a headline, then an
// action section with two inputs and a CTA near the end of the traversal.
func optinPage() *tree.Page {
	return &tree.Page{
		ID: "p1", Name: "Join the list", Type: tree.PageOptin,
		CanvasRoot: &tree.Node{
			ID: "root", Type: "container", Props: map[string]any{"gap": 48},
			Children: []*tree.Node{
				{ID: "s1", Type: "hero", Children: []*tree.Node{
					{ID: "h1", Type: "headline", Props: map[string]any{"fontSize": 32}},
					{ID: "t1", Type: "text"},
				}},
				{ID: "s2", Type: "section", Children: []*tree.Node{
					{ID: "i1", Type: "input"},
					{ID: "i2", Type: "input"},
					{ID: "b1", Type: "button"},
				}},
			},
		},
	}
}

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.Patterns) != 5 {
		t.Fatalf("registry has %d patterns, want 5", len(reg.Patterns))
	}
	return reg
}

func TestDeriveFingerprint(t *testing.T) {
	fp := Derive(optinPage())
	if fp.SectionCount != 2 {
		t.Errorf("SectionCount = %d, want 2", fp.SectionCount)
	}
	wantRoles := []structural.Role{structural.RoleHero, structural.RoleAction}
	if diff := cmp.Diff(wantRoles, fp.RoleSequence); diff != "" {
		t.Errorf("roles (-want +got):\n%s", diff)
	}
	if fp.InferredIntent != intent.Optin {
		t.Errorf("InferredIntent = %q, want optin", fp.InferredIntent)
	}
	if diff := cmp.Diff([]int{1, 2, 5}, fp.DepthProfile); diff != "" {
		t.Errorf("depth profile (-want +got):\n%s", diff)
	}
	sum := 0.0
	for _, f := range fp.TypeDistribution {
		sum += f
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("type distribution sums to %v, want 1", sum)
	}
	if len(fp.CTAPositions) != 1 || fp.CTAPositions[0] != 1.0 {
		t.Errorf("CTA positions = %v, want [1.0]", fp.CTAPositions)
	}
	if fp.Hash == "" {
		t.Error("fingerprint has no hash")
	}
}

func TestDeriveDeterministicHash(t *testing.T) {
	a := Derive(optinPage())
	b := Derive(optinPage())
	if a.Hash != b.Hash {
		t.Errorf("hashes differ: %s vs %s", a.Hash, b.Hash)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("fingerprints differ:\n%s", diff)
	}
}

func TestSpacingRatiosNormalized(t *testing.T) {
	page := optinPage()
	page.CanvasRoot.Children[0].Props = map[string]any{"marginBottom": 32}
	fp := Derive(page)
	if len(fp.SpacingRatios) != 1 {
		t.Fatalf("ratios = %v, want one entry", fp.SpacingRatios)
	}
	mean := 0.0
	for _, r := range fp.SpacingRatios {
		mean += r
	}
	mean /= float64(len(fp.SpacingRatios))
	if math.Abs(mean-1) > 1e-9 {
		t.Errorf("ratio mean = %v, want 1.0", mean)
	}
}

func TestSimilaritySymmetricAndSelf(t *testing.T) {
	a := Derive(optinPage())
	reg := mustRegistry(t)
	for _, p := range reg.Patterns {
		ab := Similarity(a, p.Fingerprint)
		ba := Similarity(p.Fingerprint, a)
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("asymmetric similarity for %s: %v vs %v", p.ID, ab, ba)
		}
		if ab < 0 || ab > 1+1e-9 {
			t.Errorf("similarity out of bounds for %s: %v", p.ID, ab)
		}
	}
	if self := Similarity(a, a); math.Abs(self-1) > 1e-9 {
		t.Errorf("self-similarity = %v, want 1.0", self)
	}
}

func TestFindMatchOptinStandard(t *testing.T) {
	reg := mustRegistry(t)
	fp := Derive(optinPage())
	m := FindMatch(fp, reg, DefaultThreshold)
	if m == nil {
		t.Fatal("no match for the opt-in page")
	}
	if m.Pattern.ID != "optin-standard" {
		t.Errorf("matched %q, want optin-standard", m.Pattern.ID)
	}
	if m.Score < DefaultThreshold {
		t.Errorf("score = %v, want >= %v", m.Score, DefaultThreshold)
	}
}

func TestFindMatchNoneBelowThreshold(t *testing.T) {
	reg := mustRegistry(t)
	// A deep one-off structure unlike any registry entry.
	page := &tree.Page{ID: "p", CanvasRoot: &tree.Node{
		ID: "root", Type: "container", Children: []*tree.Node{
			{ID: "a", Type: "video", Children: []*tree.Node{
				{ID: "b", Type: "video", Children: []*tree.Node{
					{ID: "c", Type: "video", Children: []*tree.Node{
						{ID: "d", Type: "video"},
						{ID: "e", Type: "video"},
						{ID: "f", Type: "video"},
						{ID: "g", Type: "video"},
					}},
				}},
			}},
		},
	}}
	if m := FindMatch(Derive(page), reg, 0.95); m != nil {
		t.Errorf("unexpected match %q at %v", m.Pattern.ID, m.Score)
	}
	if m := FindMatch(Derive(page), nil, 0); m != nil {
		t.Error("nil registry must never match")
	}
}

func TestAnalyzeSingleSuggestion(t *testing.T) {
	reg := mustRegistry(t)
	got := Analyze(optinPage(), reg, &suggest.Sequence{})
	if len(got) != 1 {
		t.Fatalf("template analysis returned %d suggestions, want exactly 1", len(got))
	}
	s := got[0]
	if s.Source != suggest.SourceTemplate || s.TemplateID != "optin-standard" {
		t.Errorf("suggestion provenance: %+v", s)
	}
	if s.MatchScore < DefaultThreshold {
		t.Errorf("match score = %v, want >= threshold", s.MatchScore)
	}
	// Root gap 48 vs ideal 64: spacing drift wins the priority order.
	if s.Type != suggest.TypeSpacing || !s.CanApply {
		t.Errorf("suggestion = %+v, want applyable spacing", s)
	}
	if s.Recommendation.Delta != 16 {
		t.Errorf("delta = %v, want 16", s.Recommendation.Delta)
	}
}

func TestAnalyzeConformingPageIsSilent(t *testing.T) {
	reg := mustRegistry(t)
	page := optinPage()
	page.CanvasRoot.Props["gap"] = 64
	got := Analyze(page, reg, &suggest.Sequence{})
	// Spacing now conforms; the next difference in priority order (if any)
	// must still be a single suggestion at most.
	if len(got) > 1 {
		t.Fatalf("more than one template suggestion: %+v", got)
	}
	for _, s := range got {
		if s.Type == suggest.TypeSpacing {
			t.Errorf("conforming spacing still flagged: %+v", s)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	reg := mustRegistry(t)
	a := Analyze(optinPage(), reg, &suggest.Sequence{})
	b := Analyze(optinPage(), reg, &suggest.Sequence{})
	if diff := cmp.Diff(a, b, cmpopts.IgnoreFields(suggest.Suggestion{}, "ID")); diff != "" {
		t.Errorf("not deterministic:\n%s", diff)
	}
}

func TestAnalyzeNilPage(t *testing.T) {
	if got := Analyze(nil, mustRegistry(t), &suggest.Sequence{}); got != nil {
		t.Errorf("nil page produced %+v", got)
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := mustRegistry(t)
	if p := reg.Lookup("optin-standard"); p == nil || p.Name == "" {
		t.Error("Lookup(optin-standard) failed")
	}
	if p := reg.Lookup("nope"); p != nil {
		t.Errorf("Lookup(nope) = %+v, want nil", p)
	}
}
