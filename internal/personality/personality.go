// Package personality maps a named layout personality to its resolved
// numeric token bundle: spacing rhythm, typography scale, CTA emphasis,
// motion intensity, and the per-suggestion-type sensitivity thresholds the
// suggestion pipeline filters against.
//
// Resolution is pure and total: unknown or empty names resolve to "clean".
// A Resolved bundle is never mutated; it is recomputed on every call.
package personality

import (
	"fmt"
	"sort"
	"strings"
)

// Known personality names.
const (
	Clean      = "clean"
	Editorial  = "editorial"
	Bold       = "bold"
	Dense      = "dense"
	Conversion = "conversion"
)

// Names lists the known personalities in stable order.
func Names() []string {
	return []string{Clean, Editorial, Bold, Dense, Conversion}
}

// Rhythm is the locked vertical-rhythm token set, in canvas units.
type Rhythm struct {
	SectionGap float64 `yaml:"section_gap"`
	StepGap    float64 `yaml:"step_gap"`
	BlockGap   float64 `yaml:"block_gap"`
	ActionGap  float64 `yaml:"action_gap"`
	ContentGap float64 `yaml:"content_gap"`
}

// Thresholds holds the per-suggestion-type sensitivity floors. A candidate
// suggestion below its type's threshold is dropped by the pipeline.
type Thresholds struct {
	Spacing     float64 `yaml:"spacing"`
	Alignment   float64 `yaml:"alignment"`
	Hierarchy   float64 `yaml:"hierarchy"`
	CTAEmphasis float64 `yaml:"cta_emphasis"`
	Readability float64 `yaml:"readability"`
}

// ForType returns the threshold for a suggestion type string; unknown types
// get the most permissive floor of the bundle.
func (t Thresholds) ForType(typ string) float64 {
	switch typ {
	case "spacing":
		return t.Spacing
	case "alignment":
		return t.Alignment
	case "hierarchy":
		return t.Hierarchy
	case "cta-emphasis":
		return t.CTAEmphasis
	case "readability":
		return t.Readability
	}
	min := t.Spacing
	for _, v := range []float64{t.Alignment, t.Hierarchy, t.CTAEmphasis, t.Readability} {
		if v < min {
			min = v
		}
	}
	return min
}

// WithOverrides returns a copy of the bundle with per-type overrides
// applied. Unknown types and values outside (0, 1] are ignored, so caller
// configuration can never disable a floor entirely.
func (t Thresholds) WithOverrides(overrides map[string]float64) Thresholds {
	for typ, v := range overrides {
		if v <= 0 || v > 1 {
			continue
		}
		switch typ {
		case "spacing":
			t.Spacing = v
		case "alignment":
			t.Alignment = v
		case "hierarchy":
			t.Hierarchy = v
		case "cta-emphasis":
			t.CTAEmphasis = v
		case "readability":
			t.Readability = v
		}
	}
	return t
}

// Resolved is the derived token bundle for one personality.
type Resolved struct {
	Name            string     `yaml:"name"`
	Rhythm          Rhythm     `yaml:"rhythm"`
	TypographyScale float64    `yaml:"typography_scale"`
	CTAWeight       float64    `yaml:"cta_weight"`
	HeroExpected    bool       `yaml:"hero_expected"`
	MotionIntensity float64    `yaml:"motion_intensity"`
	Thresholds      Thresholds `yaml:"thresholds"`
}

// base is the clean token set; overrides patch individual fields.
var base = Resolved{
	Name: Clean,
	Rhythm: Rhythm{
		SectionGap: 64,
		StepGap:    40,
		BlockGap:   24,
		ActionGap:  16,
		ContentGap: 12,
	},
	TypographyScale: 1.0,
	CTAWeight:       1.0,
	HeroExpected:    true,
	MotionIntensity: 0.3,
	Thresholds: Thresholds{
		Spacing:     0.5,
		Alignment:   0.55,
		Hierarchy:   0.5,
		CTAEmphasis: 0.5,
		Readability: 0.55,
	},
}

// overrides patch the base bundle per personality. Clean is the base itself.
var overrides = map[string]func(*Resolved){
	Clean: func(r *Resolved) {},
	Editorial: func(r *Resolved) {
		r.Rhythm.SectionGap = 80
		r.Rhythm.StepGap = 48
		r.Rhythm.ContentGap = 16
		r.TypographyScale = 1.12
		r.CTAWeight = 0.85
		r.MotionIntensity = 0.2
		r.Thresholds.Hierarchy = 0.45
		r.Thresholds.Readability = 0.45
	},
	Bold: func(r *Resolved) {
		r.Rhythm.SectionGap = 72
		r.Rhythm.BlockGap = 28
		r.TypographyScale = 1.2
		r.CTAWeight = 1.15
		r.MotionIntensity = 0.6
		r.Thresholds.Spacing = 0.6
	},
	Dense: func(r *Resolved) {
		r.Rhythm.SectionGap = 40
		r.Rhythm.StepGap = 28
		r.Rhythm.BlockGap = 16
		r.Rhythm.ActionGap = 12
		r.Rhythm.ContentGap = 8
		r.TypographyScale = 0.95
		r.HeroExpected = false
		r.MotionIntensity = 0.1
		r.Thresholds.Spacing = 0.65
		r.Thresholds.Alignment = 0.65
		r.Thresholds.Readability = 0.65
	},
	Conversion: func(r *Resolved) {
		r.Rhythm.StepGap = 36
		r.Rhythm.ActionGap = 20
		r.CTAWeight = 1.3
		r.MotionIntensity = 0.4
		r.Thresholds.CTAEmphasis = 0.4
	},
}

// Resolve returns the token bundle for name. Unknown or empty names resolve
// to clean.
func Resolve(name string) Resolved {
	r := base
	patch, ok := overrides[name]
	if !ok {
		name = Clean
		patch = overrides[Clean]
	}
	r.Name = name
	patch(&r)
	return r
}

// Known reports whether name is a recognized personality.
func Known(name string) bool {
	_, ok := overrides[name]
	return ok
}

// ---------------------------------------------------------------------------
// Suggestion-stage adjustment
// ---------------------------------------------------------------------------

// AdjustmentFactor returns the confidence multiplier a personality applies
// to a suggestion of the given type before thresholding:
//
//	dense       ×0.75 on every type
//	conversion  ×CTAWeight on cta-emphasis
//	editorial   ×1.15 on hierarchy and spacing
//	bold        ×0.9 on spacing
func AdjustmentFactor(r Resolved, suggestionType string) float64 {
	factor := 1.0
	switch r.Name {
	case Dense:
		factor = 0.75
	case Conversion:
		if suggestionType == "cta-emphasis" {
			factor = r.CTAWeight
		}
	case Editorial:
		if suggestionType == "hierarchy" || suggestionType == "spacing" {
			factor = 1.15
		}
	case Bold:
		if suggestionType == "spacing" {
			factor = 0.9
		}
	}
	return factor
}

// ---------------------------------------------------------------------------
// Decorative projection
// ---------------------------------------------------------------------------

// maxDecorativeScale bounds any scale factor the projection emits. RULE_0:
// intelligence may only touch decorative properties, and scale is capped so
// a personality can never move geometry through the rendering layer.
const maxDecorativeScale = 1.03

// Locked spacing constants emitted by the projection regardless of
// personality. The rendering layer must treat these as fixed.
const (
	lockedSectionGap = "64px"
	lockedBlockGap   = "24px"
	lockedContentGap = "12px"
)

// DecorativeVars projects a resolved personality onto CSS custom properties.
// Only decorative dimensions vary (opacity, motion, bounded scale); every
// spacing variable is a locked constant.
func DecorativeVars(r Resolved) map[string]string {
	scale := r.TypographyScale
	if scale > maxDecorativeScale {
		scale = maxDecorativeScale
	}
	ctaScale := r.CTAWeight
	if ctaScale > maxDecorativeScale {
		ctaScale = maxDecorativeScale
	}
	return map[string]string{
		"--pw-type-scale":     fmt.Sprintf("%.3f", scale),
		"--pw-cta-scale":      fmt.Sprintf("%.3f", ctaScale),
		"--pw-motion":         fmt.Sprintf("%.2f", r.MotionIntensity),
		"--pw-accent-opacity": fmt.Sprintf("%.2f", 0.6+0.4*r.MotionIntensity),
		"--pw-gap-section":    lockedSectionGap,
		"--pw-gap-block":      lockedBlockGap,
		"--pw-gap-content":    lockedContentGap,
	}
}

// FormatVars renders the projection as sorted "name: value" lines, one per
// variable, for CLI output.
func FormatVars(vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, vars[k])
	}
	return b.String()
}
