// Package structural infers what a page is made of: a role for every
// top-level section, the personality the layout most resembles, and a
// hierarchy-confidence score. From those it derives at most two
// suggestions.
//
// The role cascade here is the canonical one; template fingerprinting
// derives its role sequence from the same function rather than keeping a
// parallel variant.
package structural

import (
	"fmt"
	"math"

	"pagewise/internal/intent"
	"pagewise/internal/personality"
	"pagewise/internal/suggest"
	"pagewise/internal/tree"
)

// Role identifies what a top-level section is for.
type Role string

const (
	RoleHero        Role = "hero"
	RoleBody        Role = "body"
	RoleAction      Role = "action"
	RoleFooter      Role = "footer"
	RoleFeature     Role = "feature"
	RoleTestimonial Role = "testimonial"
)

// maxSuggestions caps the family output.
const maxSuggestions = 2

// confidenceFloor drops weak structural suggestions.
const confidenceFloor = 0.55

// SectionRole classifies one section via the ordered rule cascade. index is
// the section's position among total top-level sections.
func SectionRole(sec *tree.Node, index, total int) Role {
	if tree.IsHero(sec) {
		return RoleHero
	}
	nodes := tree.Flatten(sec)
	var ctas, headlines, inputs, texts, media, quotes int
	for _, n := range nodes {
		switch {
		case tree.IsCTA(n):
			ctas++
		case tree.IsHeadline(n):
			headlines++
		case tree.IsInput(n):
			inputs++
		case tree.IsText(n):
			texts++
		case tree.IsMedia(n):
			media++
		}
		if n.Type == "quote" || n.Type == "testimonial" {
			quotes++
		}
	}
	switch {
	case index == 0 && headlines > 0 && ctas > 0:
		return RoleHero
	case ctas >= 2 || (ctas >= 1 && inputs >= 1):
		return RoleAction
	case index == total-1 && total > 1 && headlines == 0 && len(nodes) <= 3:
		return RoleFooter
	case quotes > 0:
		return RoleTestimonial
	case media > 0 && texts > 0:
		return RoleFeature
	}
	return RoleBody
}

// Roles classifies every top-level section of the page.
func Roles(root *tree.Node) []Role {
	sections := tree.Sections(root)
	roles := make([]Role, len(sections))
	for i, sec := range sections {
		roles[i] = SectionRole(sec, i, len(sections))
	}
	return roles
}

// LikelyPersonality guesses which personality the layout most resembles,
// from purely structural ratios. It ignores the page's stored personality.
func LikelyPersonality(root *tree.Node) string {
	nodes := tree.Flatten(root)
	if len(nodes) == 0 {
		return personality.Clean
	}
	var ctas, texts, headlines int
	hero := false
	for _, n := range nodes {
		switch {
		case tree.IsCTA(n):
			ctas++
		case tree.IsText(n):
			texts++
		case tree.IsHeadline(n):
			headlines++
		}
		if tree.IsHero(n) {
			hero = true
		}
	}
	total := float64(len(nodes))
	ctaDensity := float64(ctas) / total
	contentRatio := float64(texts+headlines) / total
	avgGap := averageGap(root)

	switch {
	case ctaDensity > 0.15:
		return personality.Conversion
	case contentRatio > 0.5:
		return personality.Editorial
	case avgGap > 0 && avgGap < 16:
		return personality.Dense
	case hero && avgGap >= 48:
		return personality.Bold
	}
	return personality.Clean
}

// averageGap is the mean container gap over containers that declare one.
func averageGap(root *tree.Node) float64 {
	var sum float64
	var n int
	for _, node := range tree.Flatten(root) {
		if len(node.Children) == 0 {
			continue
		}
		if g := tree.Gap(node, -1); g >= 0 {
			sum += g
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// HierarchyConfidence scores how well the page establishes visual
// hierarchy: 0.5 baseline, plus hero presence, hero-first ordering,
// headline coverage, and consistent gaps. Capped at 1.
func HierarchyConfidence(root *tree.Node) float64 {
	score := 0.5
	sections := tree.Sections(root)
	if len(sections) == 0 {
		return score
	}
	roles := Roles(root)

	hasHero := false
	for _, r := range roles {
		if r == RoleHero {
			hasHero = true
		}
	}
	if hasHero {
		score += 0.15
	}
	if roles[0] == RoleHero {
		score += 0.1
	}

	withHeadline := 0
	for _, sec := range sections {
		if tree.CountBy(sec, tree.IsHeadline) > 0 {
			withHeadline++
		}
	}
	if withHeadline*2 >= len(sections) {
		score += 0.1
	}

	if gapVarianceLow(root) {
		score += 0.15
	}
	return math.Min(1, score)
}

// gapVarianceLow reports whether declared container gaps sit close to their
// mean (MAD/mean ≤ 0.25). Vacuously true when fewer than two gaps exist.
func gapVarianceLow(root *tree.Node) bool {
	var gaps []float64
	for _, node := range tree.Flatten(root) {
		if len(node.Children) == 0 {
			continue
		}
		if g := tree.Gap(node, -1); g >= 0 {
			gaps = append(gaps, g)
		}
	}
	if len(gaps) < 2 {
		return true
	}
	mean := 0.0
	for _, g := range gaps {
		mean += g
	}
	mean /= float64(len(gaps))
	if mean <= 0 {
		return true
	}
	mad := 0.0
	for _, g := range gaps {
		mad += math.Abs(g - mean)
	}
	mad /= float64(len(gaps))
	return mad/mean <= 0.25
}

// Analyze derives at most two structural suggestions from the inferred
// roles, personality, and hierarchy confidence.
func Analyze(page *tree.Page, pers personality.Resolved, ids suggest.IDGen) []suggest.Suggestion {
	if page == nil || page.CanvasRoot == nil {
		return nil
	}
	root := page.CanvasRoot
	sections := tree.Sections(root)
	roles := Roles(root)
	likely := LikelyPersonality(root)
	hierarchy := HierarchyConfidence(root)
	inferred := intent.Resolve(intent.Signals{Root: root, PageType: page.Type})

	var out []suggest.Suggestion

	// Personality mismatch: the stored personality disagrees with what the
	// structure suggests.
	if page.LayoutPersonality != "" && likely != page.LayoutPersonality {
		out = append(out, suggest.Suggestion{
			ID:              ids.Next("str"),
			Type:            suggest.TypeReadability,
			Confidence:      0.6,
			Message:         fmt.Sprintf("This layout reads as %q but the page is set to %q; consider switching.", likely, page.LayoutPersonality),
			AffectedNodeIDs: []string{root.ID},
			Recommendation:  suggest.Recommendation{Token: "personality:" + likely},
			Category:        "personality-mismatch",
		})
	}

	// Missing hierarchy: weak overall structure.
	if hierarchy < 0.6 {
		out = append(out, suggest.Suggestion{
			ID:              ids.Next("str"),
			Type:            suggest.TypeHierarchy,
			Confidence:      suggest.ClampConfidence(1 - hierarchy + 0.2),
			Message:         "The page lacks a clear visual hierarchy; lead with a hero and headline.",
			AffectedNodeIDs: []string{root.ID},
			Recommendation:  suggest.Recommendation{Token: "establish-hierarchy"},
			Category:        "missing-hierarchy",
		})
	}

	// Promote to hero: the first section behaves like a hero without being one.
	if len(sections) > 0 && roles[0] == RoleHero && !tree.IsHero(sections[0]) {
		out = append(out, suggest.Suggestion{
			ID:              ids.Next("str"),
			Type:            suggest.TypeHierarchy,
			Confidence:      0.65,
			Message:         fmt.Sprintf("Section %q opens the page like a hero; promote it to one.", sections[0].ID),
			AffectedNodeIDs: []string{sections[0].ID},
			Recommendation:  suggest.Recommendation{Token: "promote-hero"},
			Category:        "promote-to-hero",
		})
	}

	// Normalize spacing: inconsistent gaps across the page.
	if !gapVarianceLow(root) {
		out = append(out, suggest.Suggestion{
			ID:              ids.Next("str"),
			Type:            suggest.TypeSpacing,
			Confidence:      0.6,
			Message:         "Container gaps vary widely across the page; normalize them to the rhythm tokens.",
			AffectedNodeIDs: []string{root.ID},
			Recommendation:  suggest.Recommendation{Token: "normalize-spacing", Delta: pers.Rhythm.BlockGap},
			Category:        "normalize-spacing",
		})
	}

	// Improve CTA prominence on conversion-minded pages without an action
	// section.
	if inferred.Intent == intent.Optin || inferred.Intent == intent.Checkout {
		hasAction := false
		for _, r := range roles {
			if r == RoleAction || r == RoleHero {
				hasAction = true
			}
		}
		if !hasAction {
			out = append(out, suggest.Suggestion{
				ID:              ids.Next("str"),
				Type:            suggest.TypeCTAEmphasis,
				Confidence:      0.6,
				Message:         "A conversion page should carry one unmistakable action section.",
				AffectedNodeIDs: []string{root.ID},
				Recommendation:  suggest.Recommendation{Token: "cta-prominence"},
				Category:        "improve-cta-prominence",
			})
		}
	}

	kept := out[:0]
	for _, s := range out {
		if s.Confidence >= confidenceFloor {
			kept = append(kept, s)
		}
	}
	suggest.SortByConfidence(kept)
	return suggest.Cap(suggest.Dedupe(kept), maxSuggestions)
}
