// Package suggest defines the suggestion record shared by every analyzer
// family, the injected ID generator, and the filter/dedupe/cap helpers the
// pipeline is built from.
//
// One flat record serves every family; Category, Source, and the template
// fields discriminate the variants.
package suggest

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

// Suggestion types.
const (
	TypeSpacing     = "spacing"
	TypeAlignment   = "alignment"
	TypeHierarchy   = "hierarchy"
	TypeCTAEmphasis = "cta-emphasis"
	TypeReadability = "readability"
)

// Suggestion sources.
const (
	SourceHeuristic = "heuristic"
	SourceAI        = "ai"
	SourceTemplate  = "template"
)

// Recommendation carries the concrete adjustment a suggestion proposes:
// a named token, a numeric delta, or both.
type Recommendation struct {
	Token string  `yaml:"token,omitempty"`
	Delta float64 `yaml:"delta,omitempty"`
}

// Suggestion is a non-binding, confidence-scored recommendation to adjust
// specific nodes. AffectedNodeIDs is non-empty and order-insensitive for
// dedupe purposes. The ID is opaque and non-semantic.
type Suggestion struct {
	ID              string         `yaml:"id"`
	Type            string         `yaml:"type"`
	Confidence      float64        `yaml:"confidence"`
	Message         string         `yaml:"message"`
	AffectedNodeIDs []string       `yaml:"affected_node_ids"`
	Recommendation  Recommendation `yaml:"recommendation,omitempty"`

	Category string `yaml:"category,omitempty"`
	Source   string `yaml:"source,omitempty"`

	// Template-match extension.
	TemplateID string  `yaml:"template_id,omitempty"`
	MatchScore float64 `yaml:"match_score,omitempty"`
	CanApply   bool    `yaml:"can_apply,omitempty"`
}

// ---------------------------------------------------------------------------
// ID generation
// ---------------------------------------------------------------------------

// IDGen produces opaque suggestion IDs. IDs must never participate in
// equality or dedupe logic.
type IDGen interface {
	Next(prefix string) string
}

// Counter is a process-lifetime atomic ID generator.
type Counter struct {
	n atomic.Int64
}

// Next returns "<prefix>-<n>" with a monotonically increasing n.
func (c *Counter) Next(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, c.n.Add(1))
}

// Sequence is a deterministic generator for tests: it always yields
// "<prefix>-1", "<prefix>-2", ... from a fixed starting point.
type Sequence struct {
	n int
}

func (s *Sequence) Next(prefix string) string {
	s.n++
	return fmt.Sprintf("%s-%d", prefix, s.n)
}

// ---------------------------------------------------------------------------
// Pipeline helpers
// ---------------------------------------------------------------------------

// DedupeKey returns the order-insensitive affected-node signature.
func DedupeKey(s Suggestion) string {
	ids := make([]string, len(s.AffectedNodeIDs))
	copy(ids, s.AffectedNodeIDs)
	sort.Strings(ids)
	return strings.Join(ids, "|")
}

// Dedupe keeps the first suggestion per affected-node signature. Input order
// is preserved, so sort by confidence before deduping to keep the strongest.
func Dedupe(in []Suggestion) []Suggestion {
	seen := make(map[string]bool, len(in))
	out := make([]Suggestion, 0, len(in))
	for _, s := range in {
		key := DedupeKey(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// SortByConfidence orders suggestions highest confidence first. Ties keep
// their input order (stable), so analyzer order is a deterministic
// tiebreaker.
func SortByConfidence(in []Suggestion) {
	sort.SliceStable(in, func(i, j int) bool {
		return in[i].Confidence > in[j].Confidence
	})
}

// Cap truncates to at most n suggestions.
func Cap(in []Suggestion, n int) []Suggestion {
	if len(in) <= n {
		return in
	}
	return in[:n]
}

// ClampConfidence bounds c into [0, 1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
