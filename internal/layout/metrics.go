// Package layout derives page-level layout metrics from intent and
// personality, owns the geometry-lock policy, and implements the layout
// heuristic family: spacing, alignment, and hierarchy defect detection over
// a page tree.
package layout

import (
	"pagewise/internal/intent"
	"pagewise/internal/personality"
	"pagewise/internal/suggest"
)

// Policy flags which dimensions intelligence is permitted to touch. With
// all three false the engine must not run a single layout heuristic; only
// decorative changes (opacity, color, bounded scale) remain possible, and
// those flow through the personality projection, not through suggestions.
type Policy struct {
	AllowSpacing   bool `yaml:"allow_spacing"`
	AllowAlignment bool `yaml:"allow_alignment"`
	AllowGeometry  bool `yaml:"allow_geometry"`
}

// DefaultPolicy permits spacing, alignment, and geometry suggestions.
func DefaultPolicy() Policy {
	return Policy{AllowSpacing: true, AllowAlignment: true, AllowGeometry: true}
}

// LockedPolicy is the full geometry lock: decorative changes only.
func LockedPolicy() Policy {
	return Policy{}
}

// FullyLocked reports whether every dimension is disallowed. The engine
// treats this as a hard short-circuit, not a per-suggestion filter.
func (p Policy) FullyLocked() bool {
	return !p.AllowSpacing && !p.AllowAlignment && !p.AllowGeometry
}

// Allows reports whether the policy permits suggestions of the given type,
// regardless of which analyzer family produced them. Spacing and
// CTA-emphasis patches adjust gaps, alignment patches move columns and
// padding, hierarchy patches resize type. Readability changes line-height
// only and passes every partial lock.
func (p Policy) Allows(suggestionType string) bool {
	switch suggestionType {
	case suggest.TypeSpacing, suggest.TypeCTAEmphasis:
		return p.AllowSpacing
	case suggest.TypeAlignment:
		return p.AllowAlignment
	case suggest.TypeHierarchy:
		return p.AllowGeometry
	}
	return true
}

// Metrics is the resolved layout context for one page: width preset,
// padding, the locked vertical-rhythm tokens, and the policy gate.
type Metrics struct {
	WidthPreset string             `yaml:"width_preset"`
	Padding     float64            `yaml:"padding"`
	Rhythm      personality.Rhythm `yaml:"rhythm"`
	Policy      Policy             `yaml:"policy"`
}

// ResolveMetrics derives metrics from intent and personality. The rhythm
// token set comes from the personality and is locked: analyzers read it,
// nothing in the engine writes it.
func ResolveMetrics(intentName string, p personality.Resolved) Metrics {
	m := Metrics{
		WidthPreset: "standard",
		Padding:     24,
		Rhythm:      p.Rhythm,
		Policy:      DefaultPolicy(),
	}
	switch intentName {
	case intent.Optin:
		m.WidthPreset = "narrow"
		m.Padding = 32
	case intent.Checkout:
		m.WidthPreset = "narrow"
		m.Padding = 20
	case intent.Content:
		m.WidthPreset = "wide"
	case intent.ThankYou:
		m.WidthPreset = "narrow"
		m.Padding = 40
	}
	return m
}
