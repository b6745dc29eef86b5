package layout

// analyze.go — The five layout heuristics. Each is a pure function over an
// immutable tree; Analyze fans out to all five and concatenates results.

import (
	"fmt"
	"math"

	"pagewise/internal/intent"
	"pagewise/internal/suggest"
	"pagewise/internal/tree"
)

// Heuristic constants.
const (
	minCTAGap          = 24   // minimum gap between a CTA and an adjacent input
	headlineRatioFloor = 1.15 // headline/body font size ratio below which hierarchy is flat
	rhythmDeviation    = 0.25 // MAD/mean above which rhythm is broken
	bottomHeavyShare   = 0.65 // bottom-half weight share above which the page is unbalanced
)

// Analyze runs the layout heuristic family against root. The policy gate is
// checked first: a fully locked policy returns nil before any heuristic
// executes.
func Analyze(root *tree.Node, intentName string, m Metrics, ids suggest.IDGen) []suggest.Suggestion {
	if m.Policy.FullyLocked() {
		return nil
	}
	if root == nil {
		return nil
	}
	var out []suggest.Suggestion
	if m.Policy.AllowSpacing {
		out = append(out, ctaBreathingRoom(root, ids)...)
		out = append(out, verticalRhythm(root, ids)...)
	}
	if m.Policy.AllowGeometry {
		out = append(out, headlineDominance(root, ids)...)
	}
	if m.Policy.AllowAlignment {
		out = append(out, singleColumnCentering(root, intentName, ids)...)
		out = append(out, visualWeightBalance(root, ids)...)
	}
	return out
}

// ctaBreathingRoom flags CTAs squeezed against an adjacent input: when the
// container gap is below minCTAGap, suggest raising it by the difference.
// An input before the CTA reads slightly stronger than one after.
func ctaBreathingRoom(root *tree.Node, ids suggest.IDGen) []suggest.Suggestion {
	var out []suggest.Suggestion
	for _, parent := range tree.Flatten(root) {
		for i, child := range parent.Children {
			if !tree.IsCTA(child) {
				continue
			}
			gap := tree.Gap(parent, 0)
			if gap >= minCTAGap {
				continue
			}
			var input *tree.Node
			confidence := 0.0
			if i > 0 && tree.IsInput(parent.Children[i-1]) {
				input = parent.Children[i-1]
				confidence = 0.75
			} else if i < len(parent.Children)-1 && tree.IsInput(parent.Children[i+1]) {
				input = parent.Children[i+1]
				confidence = 0.7
			}
			if input == nil {
				continue
			}
			out = append(out, suggest.Suggestion{
				ID:              ids.Next("lay"),
				Type:            suggest.TypeSpacing,
				Confidence:      confidence,
				Message:         fmt.Sprintf("The button %q sits too close to its input field; give it %g more units of space.", child.ID, minCTAGap-gap),
				AffectedNodeIDs: []string{child.ID, input.ID},
				Recommendation:  suggest.Recommendation{Token: "action-gap", Delta: minCTAGap - gap},
			})
		}
	}
	return out
}

// headlineDominance flags headlines that fail to dominate nearby body text:
// ratio below 1.15 earns a hierarchy suggestion sized to restore it.
func headlineDominance(root *tree.Node, ids suggest.IDGen) []suggest.Suggestion {
	var out []suggest.Suggestion
	for _, parent := range tree.Flatten(root) {
		var headline, body *tree.Node
		for _, child := range parent.Children {
			if headline == nil && tree.IsHeadline(child) {
				headline = child
			}
			if tree.IsText(child) {
				if body == nil || tree.FontSize(child, 16) > tree.FontSize(body, 16) {
					body = child
				}
			}
		}
		if headline == nil || body == nil {
			continue
		}
		hSize := tree.FontSize(headline, 16)
		bSize := tree.FontSize(body, 16)
		if bSize <= 0 || hSize/bSize >= headlineRatioFloor {
			continue
		}
		delta := math.Ceil(bSize*headlineRatioFloor - hSize)
		out = append(out, suggest.Suggestion{
			ID:              ids.Next("lay"),
			Type:            suggest.TypeHierarchy,
			Confidence:      0.8,
			Message:         fmt.Sprintf("Headline %q barely outweighs its body text; raise its font size by %g.", headline.ID, delta),
			AffectedNodeIDs: []string{headline.ID, body.ID},
			Recommendation:  suggest.Recommendation{Token: "headline-scale", Delta: delta},
		})
	}
	return out
}

// verticalRhythm measures the per-gap values inside containers with at
// least three children (container gap plus the adjacent margins) and flags
// the most deviant adjacent pair when the spread exceeds the threshold.
func verticalRhythm(root *tree.Node, ids suggest.IDGen) []suggest.Suggestion {
	var out []suggest.Suggestion
	for _, parent := range tree.Flatten(root) {
		if len(parent.Children) < 3 {
			continue
		}
		base := tree.Gap(parent, 0)
		gaps := make([]float64, 0, len(parent.Children)-1)
		for i := 0; i < len(parent.Children)-1; i++ {
			g := base +
				tree.NumProp(parent.Children[i], "marginBottom", 0) +
				tree.NumProp(parent.Children[i+1], "marginTop", 0)
			gaps = append(gaps, g)
		}
		mean := meanOf(gaps)
		if mean <= 0 {
			continue
		}
		mad := 0.0
		worst := 0
		for i, g := range gaps {
			d := math.Abs(g - mean)
			mad += d
			if d > math.Abs(gaps[worst]-mean) {
				worst = i
			}
		}
		mad /= float64(len(gaps))
		if mad/mean <= rhythmDeviation {
			continue
		}
		a, b := parent.Children[worst], parent.Children[worst+1]
		out = append(out, suggest.Suggestion{
			ID:              ids.Next("lay"),
			Type:            suggest.TypeSpacing,
			Confidence:      0.65,
			Message:         fmt.Sprintf("Spacing inside %q is uneven; the gap between %q and %q breaks the rhythm.", parent.ID, a.ID, b.ID),
			AffectedNodeIDs: []string{a.ID, b.ID},
			Recommendation:  suggest.Recommendation{Token: "block-gap", Delta: mean - gaps[worst]},
		})
	}
	return out
}

// singleColumnCentering applies only to opt-in pages: any row-direction
// container holding more than one child should collapse to one centered
// column so the form reads as a single path.
func singleColumnCentering(root *tree.Node, intentName string, ids suggest.IDGen) []suggest.Suggestion {
	if intentName != intent.Optin {
		return nil
	}
	var out []suggest.Suggestion
	for _, n := range tree.Flatten(root) {
		isRow := n.Type == "row" || tree.StringProp(n, "direction") == "row"
		if !isRow || len(n.Children) <= 1 {
			continue
		}
		out = append(out, suggest.Suggestion{
			ID:              ids.Next("lay"),
			Type:            suggest.TypeAlignment,
			Confidence:      0.7,
			Message:         fmt.Sprintf("Opt-in pages convert best as a single column; collapse %q into one centered stack.", n.ID),
			AffectedNodeIDs: []string{n.ID},
			Recommendation:  suggest.Recommendation{Token: "single-column"},
		})
	}
	return out
}

// heavyTypes weigh double in the balance computation.
var heavyTypes = map[string]bool{
	"image": true, "video": true, "hero": true, "form": true,
}

// nodeWeight is 1 plus 2 for heavy types plus half the recursive weight of
// the children.
func nodeWeight(n *tree.Node) float64 {
	w := 1.0
	if heavyTypes[n.Type] {
		w += 2
	}
	for _, c := range n.Children {
		w += 0.5 * nodeWeight(c)
	}
	return w
}

// visualWeightBalance splits the root children into top and bottom halves
// and flags pages whose bottom half carries most of the visual weight.
func visualWeightBalance(root *tree.Node, ids suggest.IDGen) []suggest.Suggestion {
	kids := root.Children
	if len(kids) < 2 {
		return nil
	}
	mid := len(kids) / 2
	var total, bottom float64
	var bottomIDs []string
	for i, c := range kids {
		w := nodeWeight(c)
		total += w
		if i >= mid {
			bottom += w
			bottomIDs = append(bottomIDs, c.ID)
		}
	}
	if total <= 0 || bottom/total <= bottomHeavyShare {
		return nil
	}
	return []suggest.Suggestion{{
		ID:              ids.Next("lay"),
		Type:            suggest.TypeAlignment,
		Confidence:      0.6,
		Message:         "Most of the page's visual weight sits below the fold; move a heavy element toward the top.",
		AffectedNodeIDs: bottomIDs,
		Recommendation:  suggest.Recommendation{Token: "rebalance"},
	}}
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
