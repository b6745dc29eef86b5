package suggest

// apply.go — Computes the prop patches that realize one suggestion.
//
// Apply never mutates the tree: it returns a map of nodeId → partial props
// for the caller's own undoable mutation path. Failure to locate the
// required nodes is a normal result, not an error.

import (
	"fmt"

	"pagewise/internal/tree"
)

// Floors and defaults for patch computation.
const (
	minGapAfterSpacing = 8
	minGapCTAEmphasis  = 16
	defaultCTADelta    = 8
	readabilityStep    = 0.1
	maxLineHeight      = 2.0
)

// Result reports the outcome of applying one suggestion.
type Result struct {
	Success         bool                      `yaml:"success"`
	ModifiedNodeIDs []string                  `yaml:"modified_node_ids,omitempty"`
	PropsChanges    map[string]map[string]any `yaml:"props_changes,omitempty"`
	Description     string                    `yaml:"description,omitempty"`
}

func failure(format string, args ...any) Result {
	return Result{Success: false, Description: fmt.Sprintf(format, args...)}
}

func patch(id string, props map[string]any, desc string) Result {
	return Result{
		Success:         true,
		ModifiedNodeIDs: []string{id},
		PropsChanges:    map[string]map[string]any{id: props},
		Description:     desc,
	}
}

// Apply computes the minimal reversible patch for s against the tree rooted
// at root. The tree is read, never written.
func Apply(s Suggestion, root *tree.Node) Result {
	if root == nil || len(s.AffectedNodeIDs) == 0 {
		return failure("nothing to apply")
	}
	switch s.Type {
	case TypeSpacing:
		return applySpacing(s, root)
	case TypeCTAEmphasis:
		return applyCTAEmphasis(s, root)
	case TypeHierarchy:
		return applyHierarchy(s, root)
	case TypeAlignment:
		return applyAlignment(s, root)
	case TypeReadability:
		return applyReadability(s, root)
	}
	return failure("unknown suggestion type %q", s.Type)
}

// applySpacing adjusts the affected node's parent container gap by the
// suggested delta, floored at 8.
func applySpacing(s Suggestion, root *tree.Node) Result {
	target := s.AffectedNodeIDs[0]
	parent := tree.FindParent(root, target)
	if parent == nil {
		if tree.FindNode(root, target) == root {
			parent = root // root sections adjust the root's own gap
		} else {
			return failure("parent of %s not found", target)
		}
	}
	gap := tree.Gap(parent, 0) + s.Recommendation.Delta
	if gap < minGapAfterSpacing {
		gap = minGapAfterSpacing
	}
	return patch(parent.ID, map[string]any{"gap": gap},
		fmt.Sprintf("set gap of %s to %g", parent.ID, gap))
}

// applyCTAEmphasis widens the CTA's parent gap, floored at 16; the delta
// defaults to 8 when the suggestion carries none.
func applyCTAEmphasis(s Suggestion, root *tree.Node) Result {
	var cta *tree.Node
	for _, id := range s.AffectedNodeIDs {
		if n := tree.FindNode(root, id); tree.IsCTA(n) {
			cta = n
			break
		}
	}
	if cta == nil {
		return failure("no CTA among affected nodes")
	}
	parent := tree.FindParent(root, cta.ID)
	if parent == nil {
		return failure("parent of CTA %s not found", cta.ID)
	}
	delta := s.Recommendation.Delta
	if delta == 0 {
		delta = defaultCTADelta
	}
	gap := tree.Gap(parent, 0) + delta
	if gap < minGapCTAEmphasis {
		gap = minGapCTAEmphasis
	}
	return patch(parent.ID, map[string]any{"gap": gap},
		fmt.Sprintf("give CTA %s breathing room (gap %g)", cta.ID, gap))
}

// applyHierarchy increases the headline's font size by the suggested delta.
func applyHierarchy(s Suggestion, root *tree.Node) Result {
	var headline *tree.Node
	for _, id := range s.AffectedNodeIDs {
		if n := tree.FindNode(root, id); tree.IsHeadline(n) {
			headline = n
			break
		}
	}
	if headline == nil {
		return failure("no headline among affected nodes")
	}
	size := tree.FontSize(headline, 16) + s.Recommendation.Delta
	return patch(headline.ID, map[string]any{"fontSize": size},
		fmt.Sprintf("raise %s font size to %g", headline.ID, size))
}

// applyAlignment collapses a multi-column container into a single centered
// column, or nudges the parent's top padding when the target is not a row.
func applyAlignment(s Suggestion, root *tree.Node) Result {
	target := tree.FindNode(root, s.AffectedNodeIDs[0])
	if target == nil {
		return failure("node %s not found", s.AffectedNodeIDs[0])
	}
	isRow := target.Type == "row" || tree.StringProp(target, "direction") == "row"
	if isRow && len(target.Children) > 1 {
		return patch(target.ID, map[string]any{
			"direction": "column",
			"align":     "center",
		}, fmt.Sprintf("collapse %s to a single centered column", target.ID))
	}
	parent := tree.FindParent(root, target.ID)
	if parent == nil {
		return failure("parent of %s not found", target.ID)
	}
	pad := tree.NumProp(parent, "paddingTop", 0) + 8
	return patch(parent.ID, map[string]any{"paddingTop": pad},
		fmt.Sprintf("nudge top padding of %s to %g", parent.ID, pad))
}

// applyReadability increases the target's line height by 0.1, capped at 2.0.
func applyReadability(s Suggestion, root *tree.Node) Result {
	target := tree.FindNode(root, s.AffectedNodeIDs[0])
	if target == nil {
		return failure("node %s not found", s.AffectedNodeIDs[0])
	}
	lh := tree.NumProp(target, "lineHeight", 1.4) + readabilityStep
	if lh > maxLineHeight {
		lh = maxLineHeight
	}
	return patch(target.ID, map[string]any{"lineHeight": lh},
		fmt.Sprintf("raise line height of %s to %.1f", target.ID, lh))
}
