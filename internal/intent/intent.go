// Package intent infers a page's functional intent (opt-in, content,
// checkout, thank-you) from multiple weighted signals. Signals are checked
// in a fixed priority order and the first match wins; each source carries a
// fixed confidence weight.
package intent

import (
	"strings"

	"pagewise/internal/tree"
)

// Intent values.
const (
	Optin    = "optin"
	Content  = "content"
	Checkout = "checkout"
	ThankYou = "thank_you"
)

// Signal sources in priority order.
const (
	SourceExplicit    = "explicit"
	SourceTemplate    = "template"
	SourceComposition = "composition"
	SourceFunnel      = "funnel"
	SourcePageType    = "page-type"
	SourceDefault     = "default"
)

// Per-source confidence weights.
const (
	weightExplicit    = 1.0
	weightTemplate    = 0.85
	weightComposition = 0.75
	weightFunnel      = 0.6
	weightPageType    = 0.5
	weightDefault     = 0.3
)

// FunnelPosition locates a page inside its funnel; Total 0 means unknown.
type FunnelPosition struct {
	Index int
	Total int
}

// Signals bundles everything the resolver may consult.
type Signals struct {
	Explicit     string // authoritative when set
	TemplateHint string // template name/id hint, matched by substring
	Root         *tree.Node
	Funnel       FunnelPosition
	PageType     tree.PageType
}

// Result is the resolved intent with its source and confidence weight.
type Result struct {
	Intent     string
	Confidence float64
	Source     string
}

// Resolve walks the signal cascade and returns the first match.
func Resolve(sig Signals) Result {
	if valid(sig.Explicit) {
		return Result{Intent: sig.Explicit, Confidence: weightExplicit, Source: SourceExplicit}
	}
	if it := fromTemplateHint(sig.TemplateHint); it != "" {
		return Result{Intent: it, Confidence: weightTemplate, Source: SourceTemplate}
	}
	if it := FromComposition(sig.Root); it != "" {
		return Result{Intent: it, Confidence: weightComposition, Source: SourceComposition}
	}
	if it := fromFunnel(sig.Funnel); it != "" {
		return Result{Intent: it, Confidence: weightFunnel, Source: SourceFunnel}
	}
	if it := fromPageType(sig.PageType); it != "" {
		return Result{Intent: it, Confidence: weightPageType, Source: SourcePageType}
	}
	return Result{Intent: Content, Confidence: weightDefault, Source: SourceDefault}
}

func valid(it string) bool {
	switch it {
	case Optin, Content, Checkout, ThankYou:
		return true
	}
	return false
}

// fromTemplateHint maps a template name hint to an intent by substring.
func fromTemplateHint(hint string) string {
	h := strings.ToLower(hint)
	switch {
	case h == "":
		return ""
	case strings.Contains(h, "optin") || strings.Contains(h, "opt-in") || strings.Contains(h, "lead"):
		return Optin
	case strings.Contains(h, "checkout") || strings.Contains(h, "order") || strings.Contains(h, "booking"):
		return Checkout
	case strings.Contains(h, "thank") || strings.Contains(h, "confirmation"):
		return ThankYou
	case strings.Contains(h, "landing") || strings.Contains(h, "content") || strings.Contains(h, "article"):
		return Content
	}
	return ""
}

// FromComposition infers intent from the component mix alone. Exported so
// fingerprint derivation can classify unlabeled pages with the same rules.
// Returns "" when the tree is empty or carries no strong signal.
func FromComposition(root *tree.Node) string {
	if root == nil {
		return ""
	}
	nodes := tree.Flatten(root)
	if len(nodes) == 0 {
		return ""
	}

	var ctas, inputs, headlines int
	hero := false
	scheduling := false
	for _, n := range nodes {
		switch {
		case tree.IsScheduling(n):
			scheduling = true
		case tree.IsCTA(n):
			ctas++
		case tree.IsInput(n):
			inputs++
		case tree.IsHeadline(n):
			headlines++
		}
		if tree.IsHero(n) {
			hero = true
		}
	}

	switch {
	case scheduling:
		return Checkout
	case inputs >= 2 || (inputs >= 1 && ctas >= 1):
		return Optin
	case ctas == 0 && inputs == 0 && (len(nodes) <= 6 || tree.MaxDepth(root) <= 2):
		return ThankYou
	case hero || headlines >= 2:
		return Content
	}
	return ""
}

// fromFunnel maps a funnel position to an intent: first page content, last
// page thank-you, near the end checkout, otherwise opt-in.
func fromFunnel(p FunnelPosition) string {
	if p.Total <= 0 || p.Index < 0 || p.Index >= p.Total {
		return ""
	}
	switch {
	case p.Index == 0:
		return Content
	case p.Index == p.Total-1:
		return ThankYou
	case float64(p.Index) >= 0.75*float64(p.Total-1):
		return Checkout
	}
	return Optin
}

// fromPageType is the static page-type fallback table.
func fromPageType(t tree.PageType) string {
	switch t {
	case tree.PageLanding:
		return Content
	case tree.PageOptin:
		return Optin
	case tree.PageAppointment:
		return Checkout
	case tree.PageThankYou:
		return ThankYou
	}
	return ""
}

// ---------------------------------------------------------------------------
// Orchestration
// ---------------------------------------------------------------------------

// Orchestration is the static per-intent decorative bundle. It drives focus,
// ordering, and motion hints only — never geometry.
type Orchestration struct {
	FocusBias         string
	SpacingRhythm     string
	CTAEmphasis       string
	InspectorPriority []string
	MotionClass       string
	HeroExpected      bool
}

var orchestrations = map[string]Orchestration{
	Optin: {
		FocusBias:         "form",
		SpacingRhythm:     "tight",
		CTAEmphasis:       "primary",
		InspectorPriority: []string{"form", "cta", "headline", "layout"},
		MotionClass:       "subtle",
		HeroExpected:      true,
	},
	Content: {
		FocusBias:         "reading",
		SpacingRhythm:     "relaxed",
		CTAEmphasis:       "secondary",
		InspectorPriority: []string{"typography", "layout", "media", "cta"},
		MotionClass:       "none",
		HeroExpected:      true,
	},
	Checkout: {
		FocusBias:         "action",
		SpacingRhythm:     "compact",
		CTAEmphasis:       "urgent",
		InspectorPriority: []string{"cta", "form", "trust", "layout"},
		MotionClass:       "none",
		HeroExpected:      false,
	},
	ThankYou: {
		FocusBias:         "message",
		SpacingRhythm:     "airy",
		CTAEmphasis:       "minimal",
		InspectorPriority: []string{"headline", "media", "layout"},
		MotionClass:       "celebrate",
		HeroExpected:      false,
	},
}

// OrchestrationFor returns the decorative bundle for an intent; unknown
// intents get the content bundle.
func OrchestrationFor(it string) Orchestration {
	if o, ok := orchestrations[it]; ok {
		return o
	}
	return orchestrations[Content]
}
