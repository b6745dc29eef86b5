package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"pagewise/internal/layout"
	"pagewise/internal/suggest"
	"pagewise/internal/template"
	"pagewise/internal/tree"
)

// messyOptinPage has defects for several families at once: a CTA jammed
// against its headline, ungrouped text, and a section gap drifting from
// the opt-in template ideal.
func messyOptinPage() *tree.Page {
	return &tree.Page{
		ID: "p1", Name: "Opt-in", Type: tree.PageOptin,
		CanvasRoot: &tree.Node{
			ID: "root", Type: "container", Props: map[string]any{"gap": 48},
			Children: []*tree.Node{
				{ID: "s1", Type: "hero", Props: map[string]any{"gap": 4}, Children: []*tree.Node{
					{ID: "h1", Type: "headline", Props: map[string]any{"fontSize": 20}},
					{ID: "t1", Type: "text"},
					{ID: "t2", Type: "text"},
					{ID: "t3", Type: "text"},
				}},
				{ID: "s2", Type: "section", Props: map[string]any{"gap": 4}, Children: []*tree.Node{
					{ID: "i1", Type: "input"},
					{ID: "i2", Type: "input"},
					{ID: "b1", Type: "button"},
				}},
			},
		},
	}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	reg, err := template.LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	e := New(reg)
	e.IDs = &suggest.Sequence{}
	return e
}

func TestAnalyzeMergesFamilies(t *testing.T) {
	got := testEngine(t).Analyze(messyOptinPage(), Options{})
	if len(got) == 0 {
		t.Fatal("no suggestions for a page with obvious defects")
	}
	if len(got) > MaxSuggestions {
		t.Fatalf("%d suggestions, cap is %d", len(got), MaxSuggestions)
	}
	seen := map[string]bool{}
	for i, s := range got {
		if s.ID == "" {
			t.Errorf("suggestion %d has no ID", i)
		}
		if s.Source == "" || s.Category == "" {
			t.Errorf("suggestion %d missing provenance: %+v", i, s)
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			t.Errorf("suggestion %d confidence out of range: %v", i, s.Confidence)
		}
		if len(s.AffectedNodeIDs) == 0 {
			t.Errorf("suggestion %d affects no nodes", i)
		}
		if i > 0 && got[i-1].Confidence < s.Confidence {
			t.Errorf("not sorted by confidence at %d: %v < %v", i, got[i-1].Confidence, s.Confidence)
		}
		key := suggest.DedupeKey(s)
		if seen[key] {
			t.Errorf("duplicate affected-node signature %q survived the merge", key)
		}
		seen[key] = true
	}
}

func TestAnalyzeIncludesTemplateMatch(t *testing.T) {
	got := testEngine(t).Analyze(messyOptinPage(), Options{})
	for _, s := range got {
		if s.Source == suggest.SourceTemplate {
			if s.TemplateID == "" || s.MatchScore == 0 {
				t.Errorf("template suggestion missing match data: %+v", s)
			}
			return
		}
	}
	t.Error("no template suggestion in the merged list")
}

func TestAnalyzeFullyLockedShortCircuit(t *testing.T) {
	locked := layout.LockedPolicy()
	got := testEngine(t).Analyze(messyOptinPage(), Options{Policy: &locked})
	if got != nil {
		t.Fatalf("locked policy still produced %d suggestions", len(got))
	}
}

func TestAnalyzePolicyOverride(t *testing.T) {
	spacingOnly := layout.Policy{AllowSpacing: true}
	got := testEngine(t).Analyze(messyOptinPage(), Options{Policy: &spacingOnly})
	if len(got) == 0 {
		t.Fatal("spacing-only policy silenced everything")
	}
	for _, s := range got {
		if s.Type == suggest.TypeAlignment || s.Type == suggest.TypeHierarchy {
			t.Errorf("spacing-only policy surfaced %q suggestion: %+v", s.Type, s)
		}
	}
}

// TestAnalyzePartialLockFiltersAllFamilies: disallowing one dimension must
// suppress suggestions of that type from every family, not just the layout
// heuristics — otherwise a template or composition suggestion could still
// carry an applyable gap patch under allow_spacing: false.
func TestAnalyzePartialLockFiltersAllFamilies(t *testing.T) {
	baseline := testEngine(t).Analyze(messyOptinPage(), Options{})
	hasSpacing := false
	for _, s := range baseline {
		if s.Type == suggest.TypeSpacing {
			hasSpacing = true
		}
	}
	if !hasSpacing {
		t.Fatal("baseline run produced no spacing suggestion; page fixture is wrong")
	}

	noSpacing := layout.Policy{AllowAlignment: true, AllowGeometry: true}
	got := testEngine(t).Analyze(messyOptinPage(), Options{Policy: &noSpacing})
	for _, s := range got {
		if s.Type == suggest.TypeSpacing || s.Type == suggest.TypeCTAEmphasis {
			t.Errorf("gap-adjusting suggestion survived AllowSpacing=false: type=%s category=%s msg=%q",
				s.Type, s.Category, s.Message)
		}
	}
}

// TestAnalyzeThresholdOverrides: a raised per-type floor must suppress that
// type across every family while leaving the other types untouched.
func TestAnalyzeThresholdOverrides(t *testing.T) {
	strict := testEngine(t).Analyze(messyOptinPage(), Options{
		Thresholds: map[string]float64{suggest.TypeSpacing: 0.99},
	})
	for _, s := range strict {
		if s.Type == suggest.TypeSpacing {
			t.Errorf("spacing suggestion below the raised floor survived: conf=%v msg=%q", s.Confidence, s.Message)
		}
	}
	if len(strict) == 0 {
		t.Error("raising one type's floor silenced every other type")
	}

	// Out-of-range overrides are ignored, not applied.
	loose := testEngine(t).Analyze(messyOptinPage(), Options{
		Thresholds: map[string]float64{suggest.TypeSpacing: 7.5},
	})
	hasSpacing := false
	for _, s := range loose {
		if s.Type == suggest.TypeSpacing {
			hasSpacing = true
		}
	}
	if !hasSpacing {
		t.Error("invalid override changed the effective spacing floor")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := testEngine(t).Analyze(messyOptinPage(), Options{})
	b := testEngine(t).Analyze(messyOptinPage(), Options{})
	if diff := cmp.Diff(a, b, cmpopts.IgnoreFields(suggest.Suggestion{}, "ID")); diff != "" {
		t.Errorf("two passes disagree:\n%s", diff)
	}
}

func TestAnalyzeNilInputs(t *testing.T) {
	e := testEngine(t)
	if got := e.Analyze(nil, Options{}); got != nil {
		t.Errorf("nil page produced %+v", got)
	}
	if got := e.Analyze(&tree.Page{ID: "p"}, Options{}); got != nil {
		t.Errorf("page without canvas produced %+v", got)
	}
}

func TestAnalyzeNilRegistry(t *testing.T) {
	e := New(nil)
	e.IDs = &suggest.Sequence{}
	got := e.Analyze(messyOptinPage(), Options{})
	for _, s := range got {
		if s.Source == suggest.SourceTemplate {
			t.Errorf("template suggestion without a registry: %+v", s)
		}
	}
}

func TestResolveInfersPersonality(t *testing.T) {
	page := messyOptinPage()
	page.LayoutPersonality = ""
	ctx := testEngine(t).resolve(page, Options{})
	if ctx.Personality.Name == "" {
		t.Error("no personality resolved for an unlabeled page")
	}
	page.LayoutPersonality = "dense"
	ctx = testEngine(t).resolve(page, Options{})
	if ctx.Personality.Name != "dense" {
		t.Errorf("explicit personality ignored: got %q", ctx.Personality.Name)
	}
}
