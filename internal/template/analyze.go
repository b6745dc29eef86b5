package template

// analyze.go — Turns a registry match into at most one suggestion. The
// highest-priority structural difference wins: spacing, then personality,
// then role order, then section structure. A page that already conforms
// yields nothing.

import (
	"fmt"
	"math"

	"pagewise/internal/structural"
	"pagewise/internal/suggest"
	"pagewise/internal/tree"
)

// spacingTolerance is how far the page's section gap may drift from the
// pattern's ideal before it is worth a suggestion.
const spacingTolerance = 8

// Analyze matches the page against the registry and derives at most one
// template suggestion. Unknown pages and empty registries are silent.
func Analyze(page *tree.Page, reg *Registry, ids suggest.IDGen) []suggest.Suggestion {
	if page == nil || page.CanvasRoot == nil {
		return nil
	}
	fp := Derive(page)
	m := FindMatch(fp, reg, DefaultThreshold)
	if m == nil {
		return nil
	}
	if s, ok := diffSuggestion(page, fp, m, ids); ok {
		return []suggest.Suggestion{s}
	}
	return nil
}

// diffSuggestion picks the highest-priority difference between the page and
// the matched pattern.
func diffSuggestion(page *tree.Page, fp Fingerprint, m *Match, ids suggest.IDGen) (suggest.Suggestion, bool) {
	root := page.CanvasRoot
	p := m.Pattern

	base := suggest.Suggestion{
		Source:     suggest.SourceTemplate,
		TemplateID: p.ID,
		MatchScore: m.Score,
	}

	// Spacing drift is both the most common and the only safely automated
	// normalization.
	actualGap := tree.Gap(root, 0)
	if delta := p.IdealSpacing.SectionGap - actualGap; math.Abs(delta) > spacingTolerance {
		s := base
		s.ID = ids.Next("tpl")
		s.Type = suggest.TypeSpacing
		s.Confidence = suggest.ClampConfidence(m.Score)
		s.Message = fmt.Sprintf("This page matches %q; its section gap of %g drifts from the template's %g.", p.Name, actualGap, p.IdealSpacing.SectionGap)
		s.AffectedNodeIDs = []string{root.ID}
		s.Recommendation = suggest.Recommendation{Token: "section-gap", Delta: delta}
		s.CanApply = true
		return s, true
	}

	if fp.InferredPersonality != p.SuggestedPersonality {
		s := base
		s.ID = ids.Next("tpl")
		s.Type = suggest.TypeReadability
		s.Confidence = suggest.ClampConfidence(m.Score * 0.9)
		s.Message = fmt.Sprintf("Pages like %q usually run the %q personality.", p.Name, p.SuggestedPersonality)
		s.AffectedNodeIDs = []string{root.ID}
		s.Recommendation = suggest.Recommendation{Token: "personality:" + p.SuggestedPersonality}
		return s, true
	}

	if !rolesEqual(fp.RoleSequence, p.Fingerprint.RoleSequence) {
		s := base
		s.ID = ids.Next("tpl")
		s.Type = suggest.TypeHierarchy
		s.Confidence = suggest.ClampConfidence(m.Score * 0.85)
		s.Message = fmt.Sprintf("The section order differs from %q; reordering would strengthen the flow.", p.Name)
		s.AffectedNodeIDs = []string{root.ID}
		s.Recommendation = suggest.Recommendation{Token: "reorder-sections"}
		return s, true
	}

	if fp.SectionCount != p.Fingerprint.SectionCount {
		s := base
		s.ID = ids.Next("tpl")
		s.Type = suggest.TypeAlignment
		s.Confidence = suggest.ClampConfidence(m.Score * 0.8)
		s.Message = fmt.Sprintf("%q structures this content into %d sections; this page has %d.", p.Name, p.Fingerprint.SectionCount, fp.SectionCount)
		s.AffectedNodeIDs = []string{root.ID}
		s.Recommendation = suggest.Recommendation{Token: "restructure"}
		return s, true
	}

	return suggest.Suggestion{}, false
}

func rolesEqual(a, b []structural.Role) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
