// Package engine runs the analyzer families over a page and merges their
// output into one ranked suggestion list. The engine is a pure library: it
// never logs, never touches the filesystem, and never mutates the page.
package engine

import (
	"pagewise/internal/composition"
	"pagewise/internal/intent"
	"pagewise/internal/layout"
	"pagewise/internal/personality"
	"pagewise/internal/structural"
	"pagewise/internal/suggest"
	"pagewise/internal/template"
	"pagewise/internal/tree"
)

// MaxSuggestions caps the merged list one pass can surface.
const MaxSuggestions = 8

// Context is the fully resolved input every analyzer family receives.
// Resolution happens once per pass so all families see the same
// personality, intent, and metrics.
type Context struct {
	Page        *tree.Page
	Root        *tree.Node
	Personality personality.Resolved
	Intent      intent.Result
	Metrics     layout.Metrics
	Registry    *template.Registry
	IDs         suggest.IDGen
}

// Analyzer is one suggestion family. Implementations are pure over the
// context and return an already-capped, family-local list.
type Analyzer interface {
	// Family returns the family identifier used for recompute triggers
	// and category stamping.
	Family() string

	// Analyze inspects the resolved page context and proposes changes.
	Analyze(ctx Context) []suggest.Suggestion
}

// Options tunes a single analysis pass.
type Options struct {
	// Funnel locates the page in its funnel for intent resolution.
	Funnel intent.FunnelPosition

	// Policy, when non-nil, overrides the metrics-derived policy.
	Policy *layout.Policy

	// Thresholds overrides the personality's per-type confidence floors,
	// keyed by suggestion type. Values outside (0, 1] are ignored.
	Thresholds map[string]float64
}

// Engine wires the analyzer families to a pattern registry and an ID
// source. The zero value is not usable; construct with New.
type Engine struct {
	Registry  *template.Registry
	IDs       suggest.IDGen
	Analyzers []Analyzer
}

// New returns an engine with the four standard families and a process-wide
// ID counter. A nil registry disables template matching only.
func New(reg *template.Registry) *Engine {
	return &Engine{
		Registry: reg,
		IDs:      &suggest.Counter{},
		Analyzers: []Analyzer{
			layoutFamily{},
			compositionFamily{},
			structuralFamily{},
			templateFamily{},
		},
	}
}

// Analyze resolves the page context once, runs every family, and merges
// the results: stamp provenance, clamp confidences, drop what the policy
// or the per-type thresholds disallow, sort, dedupe by affected-node
// signature, cap. A fully locked policy short-circuits to nil before any
// family runs; a partial lock filters every family's output by suggestion
// type, not just the layout heuristics. Output is deterministic up to IDs.
func (e *Engine) Analyze(page *tree.Page, opts Options) []suggest.Suggestion {
	if page == nil || page.CanvasRoot == nil {
		return nil
	}
	ctx := e.resolve(page, opts)
	if ctx.Metrics.Policy.FullyLocked() {
		return nil
	}

	var merged []suggest.Suggestion
	for _, a := range e.Analyzers {
		for _, s := range a.Analyze(ctx) {
			if !ctx.Metrics.Policy.Allows(s.Type) {
				continue
			}
			if s.Source == "" {
				s.Source = suggest.SourceHeuristic
			}
			if s.Category == "" {
				s.Category = a.Family()
			}
			s.Confidence = suggest.ClampConfidence(s.Confidence)
			if s.Confidence < ctx.Personality.Thresholds.ForType(s.Type) {
				continue
			}
			merged = append(merged, s)
		}
	}

	suggest.SortByConfidence(merged)
	merged = suggest.Dedupe(merged)
	return suggest.Cap(merged, MaxSuggestions)
}

// resolve computes the shared analysis context for one pass.
func (e *Engine) resolve(page *tree.Page, opts Options) Context {
	root := page.CanvasRoot

	persName := page.LayoutPersonality
	if persName == "" {
		persName = structural.LikelyPersonality(root)
	}
	pers := personality.Resolve(persName)
	pers.Thresholds = pers.Thresholds.WithOverrides(opts.Thresholds)

	it := intent.Resolve(intent.Signals{
		Explicit: page.LayoutIntent,
		Root:     root,
		Funnel:   opts.Funnel,
		PageType: page.Type,
	})

	m := layout.ResolveMetrics(it.Intent, pers)
	if opts.Policy != nil {
		m.Policy = *opts.Policy
	}

	ids := e.IDs
	if ids == nil {
		ids = &suggest.Counter{}
	}

	return Context{
		Page:        page,
		Root:        root,
		Personality: pers,
		Intent:      it,
		Metrics:     m,
		Registry:    e.Registry,
		IDs:         ids,
	}
}

// ---------------------------------------------------------------------------
// Standard families

type layoutFamily struct{}

func (layoutFamily) Family() string { return suggest.FamilyLayout }

func (layoutFamily) Analyze(ctx Context) []suggest.Suggestion {
	return layout.Analyze(ctx.Root, ctx.Intent.Intent, ctx.Metrics, ctx.IDs)
}

type compositionFamily struct{}

func (compositionFamily) Family() string { return suggest.FamilyComposition }

func (compositionFamily) Analyze(ctx Context) []suggest.Suggestion {
	return composition.Analyze(ctx.Root, ctx.Personality, ctx.Intent.Intent, ctx.IDs)
}

type structuralFamily struct{}

func (structuralFamily) Family() string { return suggest.FamilyStructural }

func (structuralFamily) Analyze(ctx Context) []suggest.Suggestion {
	return structural.Analyze(ctx.Page, ctx.Personality, ctx.IDs)
}

type templateFamily struct{}

func (templateFamily) Family() string { return suggest.FamilyTemplate }

func (templateFamily) Analyze(ctx Context) []suggest.Suggestion {
	if ctx.Registry == nil {
		return nil
	}
	return template.Analyze(ctx.Page, ctx.Registry, ctx.IDs)
}
