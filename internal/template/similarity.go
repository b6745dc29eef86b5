package template

// similarity.go — Weighted structural similarity between two fingerprints.
//
// Seven sub-scores, each in [0, 1], averaged under fixed weights. The
// function is symmetric and scores 1.0 against itself for any derived
// fingerprint.

import (
	"math"

	"pagewise/internal/structural"
)

// Sub-score weights. Role order carries the most signal; depth profile the
// least.
const (
	weightSectionCount = 2.0
	weightRoleSequence = 3.0
	weightIntent       = 2.0
	weightPersonality  = 1.0
	weightTypeDist     = 2.0
	weightCTAPosition  = 1.5
	weightDepthProfile = 1.0
)

// rolePriority weighs positional role matches: a shared hero says more
// about two layouts than a shared body section.
var rolePriority = map[structural.Role]float64{
	structural.RoleHero:        3,
	structural.RoleAction:      2.5,
	structural.RoleFeature:     1.5,
	structural.RoleTestimonial: 1.5,
	structural.RoleFooter:      1,
	structural.RoleBody:        1,
}

// Similarity scores two fingerprints in [0, 1].
func Similarity(a, b Fingerprint) float64 {
	total := weightSectionCount + weightRoleSequence + weightIntent +
		weightPersonality + weightTypeDist + weightCTAPosition + weightDepthProfile

	sum := weightSectionCount*sectionCountScore(a.SectionCount, b.SectionCount) +
		weightRoleSequence*roleSequenceScore(a.RoleSequence, b.RoleSequence) +
		weightIntent*exactMatchScore(a.InferredIntent, b.InferredIntent, 0.5) +
		weightPersonality*exactMatchScore(a.InferredPersonality, b.InferredPersonality, 0.6) +
		weightTypeDist*cosineScore(a.TypeDistribution, b.TypeDistribution) +
		weightCTAPosition*positionScore(a.CTAPositions, b.CTAPositions) +
		weightDepthProfile*depthScore(a.DepthProfile, b.DepthProfile)

	return sum / total
}

// sectionCountScore degrades linearly, reaching zero at four sections apart.
func sectionCountScore(a, b int) float64 {
	return math.Max(0, 1-math.Abs(float64(a-b))/4)
}

// roleSequenceScore is the priority-weighted positional exact-match ratio.
// Positions beyond the shorter sequence count as mismatches.
func roleSequenceScore(a, b []structural.Role) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if n == 0 {
		return 1
	}
	var matched, possible float64
	for i := 0; i < n; i++ {
		var wa, wb float64
		if i < len(a) {
			wa = priorityOf(a[i])
		}
		if i < len(b) {
			wb = priorityOf(b[i])
		}
		w := math.Max(wa, wb)
		possible += w
		if i < len(a) && i < len(b) && a[i] == b[i] {
			matched += w
		}
	}
	if possible == 0 {
		return 1
	}
	return matched / possible
}

func priorityOf(r structural.Role) float64 {
	if w, ok := rolePriority[r]; ok {
		return w
	}
	return 1
}

// exactMatchScore is 1.0 on equality, otherwise the given partial credit.
func exactMatchScore(a, b string, partial float64) float64 {
	if a == b {
		return 1
	}
	return partial
}

// cosineScore is the cosine similarity of two type-frequency vectors over
// their key union. Two empty distributions are identical.
func cosineScore(a, b map[string]float64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for k, va := range a {
		dot += va * b[k]
		normA += va * va
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// positionScore averages the count ratio and the complement of the mean
// position distance.
func positionScore(a, b []float64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	countRatio := 0.0
	min, max := float64(len(a)), float64(len(b))
	if min > max {
		min, max = max, min
	}
	if max > 0 {
		countRatio = min / max
	}
	meanDist := math.Abs(meanOf(a) - meanOf(b))
	if meanDist > 1 {
		meanDist = 1
	}
	return (countRatio + (1 - meanDist)) / 2
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

// depthScore compares per-depth node counts elementwise: each level scores
// the complement of its normalized absolute difference.
func depthScore(a, b []int) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	if n == 0 {
		return 1
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		var va, vb float64
		if i < len(a) {
			va = float64(a[i])
		}
		if i < len(b) {
			vb = float64(b[i])
		}
		if va == 0 && vb == 0 {
			sum++
			continue
		}
		sum += 1 - math.Abs(va-vb)/math.Max(va, vb)
	}
	return sum / float64(n)
}
