// Package template recognizes recurring page structures. It derives a
// content-agnostic fingerprint from a page, compares fingerprints with a
// weighted similarity score, and matches pages against a read-only registry
// of reference patterns. A match proposes, and never forces, normalization.
package template

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"pagewise/internal/intent"
	"pagewise/internal/structural"
	"pagewise/internal/tree"
)

// Fingerprint is the structural signature of a page. Two fingerprints are
// comparable regardless of the pages' text or media content.
type Fingerprint struct {
	Hash                string             `yaml:"hash,omitempty"`
	SectionCount        int                `yaml:"section_count"`
	RoleSequence        []structural.Role  `yaml:"role_sequence,omitempty"`
	SpacingRatios       []float64          `yaml:"spacing_ratios,omitempty"`
	DepthProfile        []int              `yaml:"depth_profile,omitempty"`
	TypeDistribution    map[string]float64 `yaml:"type_distribution,omitempty"`
	CTAPositions        []float64          `yaml:"cta_positions,omitempty"`
	HeadlinePositions   []float64          `yaml:"headline_positions,omitempty"`
	InferredPersonality string             `yaml:"inferred_personality,omitempty"`
	InferredIntent      string             `yaml:"inferred_intent,omitempty"`
}

// Derive computes the fingerprint of a page. Personality and intent are
// inferred from structure alone — the page's stored labels are ignored so
// unlabeled pages compare cleanly against registry entries.
func Derive(page *tree.Page) Fingerprint {
	if page == nil || page.CanvasRoot == nil {
		return Fingerprint{}
	}
	root := page.CanvasRoot
	sections := tree.Sections(root)

	fp := Fingerprint{
		SectionCount:        len(sections),
		RoleSequence:        structural.Roles(root),
		SpacingRatios:       spacingRatios(root, sections),
		DepthProfile:        depthProfile(root),
		TypeDistribution:    typeDistribution(root),
		InferredPersonality: structural.LikelyPersonality(root),
		InferredIntent:      inferredIntent(root),
	}
	fp.CTAPositions = positions(root, tree.IsCTA)
	fp.HeadlinePositions = positions(root, tree.IsHeadline)
	fp.Hash = hash(fp)
	return fp
}

func inferredIntent(root *tree.Node) string {
	if it := intent.FromComposition(root); it != "" {
		return it
	}
	return intent.Content
}

// spacingRatios returns inter-section gaps normalized to mean 1.0. Fewer
// than two sections yield no ratios.
func spacingRatios(root *tree.Node, sections []*tree.Node) []float64 {
	if len(sections) < 2 {
		return nil
	}
	base := tree.Gap(root, 0)
	gaps := make([]float64, 0, len(sections)-1)
	sum := 0.0
	for i := 0; i < len(sections)-1; i++ {
		g := base +
			tree.NumProp(sections[i], "marginBottom", 0) +
			tree.NumProp(sections[i+1], "marginTop", 0)
		gaps = append(gaps, g)
		sum += g
	}
	mean := sum / float64(len(gaps))
	if mean <= 0 {
		// No declared spacing: a flat unit profile.
		for i := range gaps {
			gaps[i] = 1
		}
		return gaps
	}
	for i := range gaps {
		gaps[i] /= mean
	}
	return gaps
}

// depthProfile counts nodes per depth, root at index 0.
func depthProfile(root *tree.Node) []int {
	var counts []int
	var walk func(n *tree.Node, depth int)
	walk = func(n *tree.Node, depth int) {
		for len(counts) <= depth {
			counts = append(counts, 0)
		}
		counts[depth]++
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return counts
}

// typeDistribution returns per-type node fractions summing to 1.
func typeDistribution(root *tree.Node) map[string]float64 {
	nodes := tree.Flatten(root)
	dist := make(map[string]float64, 8)
	for _, n := range nodes {
		dist[n.Type]++
	}
	total := float64(len(nodes))
	for k := range dist {
		dist[k] /= total
	}
	return dist
}

// positions returns the traversal index of every matching node, normalized
// into [0, 1].
func positions(root *tree.Node, pred func(*tree.Node) bool) []float64 {
	nodes := tree.Flatten(root)
	if len(nodes) == 0 {
		return nil
	}
	denom := float64(len(nodes) - 1)
	var out []float64
	for i, n := range nodes {
		if !pred(n) {
			continue
		}
		if denom == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, float64(i)/denom)
	}
	return out
}

// hash digests the canonical fingerprint string; ratios are rounded so
// equivalent structures hash identically across float noise.
func hash(fp Fingerprint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "sections:%d\n", fp.SectionCount)
	for _, r := range fp.RoleSequence {
		fmt.Fprintf(&b, "role:%s\n", r)
	}
	for _, v := range fp.SpacingRatios {
		fmt.Fprintf(&b, "ratio:%.2f\n", v)
	}
	for _, d := range fp.DepthProfile {
		fmt.Fprintf(&b, "depth:%d\n", d)
	}
	keys := make([]string, 0, len(fp.TypeDistribution))
	for k := range fp.TypeDistribution {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "type:%s=%.2f\n", k, fp.TypeDistribution[k])
	}
	for _, p := range fp.CTAPositions {
		fmt.Fprintf(&b, "cta:%.2f\n", p)
	}
	for _, p := range fp.HeadlinePositions {
		fmt.Fprintf(&b, "headline:%.2f\n", p)
	}
	fmt.Fprintf(&b, "personality:%s\nintent:%s\n", fp.InferredPersonality, fp.InferredIntent)
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
