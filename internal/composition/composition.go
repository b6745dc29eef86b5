// Package composition inspects page sections for missing or misarranged
// content: absent CTAs, ungrouped text stacks, headlines crowding their
// action, and sections that end without closure. Results pass through a
// personality adjustment stage before the family cap of two applies.
package composition

import (
	"fmt"
	"math"

	"pagewise/internal/intent"
	"pagewise/internal/personality"
	"pagewise/internal/suggest"
	"pagewise/internal/tree"
)

// maxSuggestions caps the family output.
const maxSuggestions = 2

// Analyze runs the four composition analyzers over the page sections, then
// adjusts by personality, drops anything under the per-type sensitivity
// threshold, dedupes by affected-node signature, and returns at most two
// suggestions, highest confidence first.
func Analyze(root *tree.Node, pers personality.Resolved, intentName string, ids suggest.IDGen) []suggest.Suggestion {
	if root == nil {
		return nil
	}
	sections := tree.Sections(root)

	var out []suggest.Suggestion
	out = append(out, missingCTA(root, sections, intentName, ids)...)
	out = append(out, ungroupedTextStacks(sections, ids)...)
	out = append(out, headlineCrowdsCTA(sections, pers, ids)...)
	out = append(out, missingSectionClosure(root, sections, pers, ids)...)

	// Personality adjustment then thresholding.
	adjusted := out[:0]
	for _, s := range out {
		s.Confidence = suggest.ClampConfidence(s.Confidence * personality.AdjustmentFactor(pers, s.Type))
		if s.Confidence < pers.Thresholds.ForType(s.Type) {
			continue
		}
		adjusted = append(adjusted, s)
	}

	suggest.SortByConfidence(adjusted)
	return suggest.Cap(suggest.Dedupe(adjusted), maxSuggestions)
}

// missingCTA flags sections that present a headline and body text but give
// the reader nothing to do. Confidence grows with text volume, a hero
// context, and conversion-minded intents.
func missingCTA(root *tree.Node, sections []*tree.Node, intentName string, ids suggest.IDGen) []suggest.Suggestion {
	var out []suggest.Suggestion
	for _, sec := range sections {
		nodes := tree.Flatten(sec)
		var headlines, texts, ctas int
		for _, n := range nodes {
			switch {
			case tree.IsCTA(n):
				ctas++
			case tree.IsHeadline(n):
				headlines++
			case tree.IsText(n):
				texts++
			}
		}
		if ctas > 0 || headlines == 0 || texts == 0 {
			continue
		}
		confidence := 0.5 + math.Min(0.2, 0.05*float64(texts))
		if tree.IsHero(sec) {
			confidence += 0.25
		}
		if intentName == intent.Optin || intentName == intent.Checkout {
			confidence += 0.15
		}
		out = append(out, suggest.Suggestion{
			ID:              ids.Next("cmp"),
			Type:            suggest.TypeCTAEmphasis,
			Confidence:      suggest.ClampConfidence(confidence),
			Message:         fmt.Sprintf("Section %q builds up a message but offers no call to action.", sec.ID),
			AffectedNodeIDs: []string{sec.ID},
			Recommendation:  suggest.Recommendation{Token: "add-cta"},
		})
	}
	return out
}

// ungroupedTextStacks flags runs of three or more consecutive text or
// headline siblings that are not already isolated inside a grouping
// container of their own.
func ungroupedTextStacks(sections []*tree.Node, ids suggest.IDGen) []suggest.Suggestion {
	var out []suggest.Suggestion
	for _, sec := range sections {
		for _, parent := range tree.Flatten(sec) {
			run := []*tree.Node{}
			flush := func() {
				if len(run) >= 3 && !isIsolated(parent, run) {
					var affected []string
					for _, n := range run {
						affected = append(affected, n.ID)
					}
					confidence := math.Min(0.9, 0.5+0.1*float64(len(run)-3))
					out = append(out, suggest.Suggestion{
						ID:              ids.Next("cmp"),
						Type:            suggest.TypeReadability,
						Confidence:      confidence,
						Message:         fmt.Sprintf("%d text blocks run together in %q; group them so they read as one unit.", len(run), parent.ID),
						AffectedNodeIDs: affected,
						Recommendation:  suggest.Recommendation{Token: "group-stack"},
					})
				}
				run = run[:0]
			}
			for _, child := range parent.Children {
				if tree.IsText(child) || tree.IsHeadline(child) {
					run = append(run, child)
					continue
				}
				flush()
			}
			flush()
		}
	}
	return out
}

// isIsolated reports whether the run already owns its grouping container:
// the parent is a grouping node whose children are exactly the run.
func isIsolated(parent *tree.Node, run []*tree.Node) bool {
	return tree.IsGrouping(parent) && len(parent.Children) == len(run)
}

// headlineCrowdsCTA flags a CTA immediately after a headline when the gap
// between them falls under 1.5× the action gap. Severity scales the
// confidence; a dense personality discounts it.
func headlineCrowdsCTA(sections []*tree.Node, pers personality.Resolved, ids suggest.IDGen) []suggest.Suggestion {
	minGap := pers.Rhythm.ActionGap * 1.5
	var out []suggest.Suggestion
	for _, sec := range sections {
		for _, parent := range tree.Flatten(sec) {
			for _, head := range parent.Children {
				if !tree.IsHeadline(head) {
					continue
				}
				idx := tree.ChildIndex(parent, head.ID)
				if idx < 0 || idx+1 >= len(parent.Children) {
					continue
				}
				next := parent.Children[idx+1]
				if !tree.IsCTA(next) {
					continue
				}
				gap := tree.Gap(parent, 0) + tree.NumProp(head, "marginBottom", 0)
				if gap >= minGap {
					continue
				}
				severity := (minGap - gap) / minGap // 0..1
				confidence := 0.6 + 0.2*(2*severity-1)
				if pers.Name == personality.Dense {
					confidence -= 0.2
				}
				out = append(out, suggest.Suggestion{
					ID:              ids.Next("cmp"),
					Type:            suggest.TypeSpacing,
					Confidence:      suggest.ClampConfidence(confidence),
					Message:         fmt.Sprintf("Headline %q crowds the button %q; let the message land before the ask.", head.ID, next.ID),
					AffectedNodeIDs: []string{head.ID, next.ID},
					Recommendation:  suggest.Recommendation{Token: "action-gap", Delta: minGap - gap},
				})
			}
		}
	}
	return out
}

// missingSectionClosure flags a page whose last section ends abruptly: the
// bottom padding, margin, and root gap together fall under 0.75× the step
// gap. Confidence scales with how much content the page carries.
func missingSectionClosure(root *tree.Node, sections []*tree.Node, pers personality.Resolved, ids suggest.IDGen) []suggest.Suggestion {
	if len(sections) == 0 {
		return nil
	}
	last := sections[len(sections)-1]
	if last == root {
		return nil
	}
	closure := tree.NumProp(last, "paddingBottom", 0) +
		tree.NumProp(last, "marginBottom", 0) +
		tree.Gap(root, 0)
	threshold := pers.Rhythm.StepGap * 0.75
	if closure >= threshold {
		return nil
	}
	size := len(tree.Flatten(root))
	confidence := 0.5 + 0.1*math.Min(1, float64(size)/20)
	return []suggest.Suggestion{{
		ID:              ids.Next("cmp"),
		Type:            suggest.TypeSpacing,
		Confidence:      suggest.ClampConfidence(confidence),
		Message:         fmt.Sprintf("The page ends abruptly after %q; add closing space so the layout resolves.", last.ID),
		AffectedNodeIDs: []string{last.ID},
		Recommendation:  suggest.Recommendation{Token: "step-gap", Delta: threshold - closure},
	}}
}
