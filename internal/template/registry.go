package template

// registry.go — The read-only pattern registry. Patterns ship as an
// embedded YAML asset; the matcher takes a registry argument so alternate
// registries can be supplied without touching matching logic.

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var registryAsset []byte

// IdealSpacing is the spacing a pattern considers canonical.
type IdealSpacing struct {
	SectionGap float64 `yaml:"section_gap"`
	BlockGap   float64 `yaml:"block_gap"`
	ContentGap float64 `yaml:"content_gap"`
}

// Pattern is one reference entry: a named fingerprint with its ideal
// spacing and suggested personality.
type Pattern struct {
	ID                   string       `yaml:"id"`
	Name                 string       `yaml:"name"`
	Fingerprint          Fingerprint  `yaml:"fingerprint"`
	IdealSpacing         IdealSpacing `yaml:"ideal_spacing"`
	SuggestedPersonality string       `yaml:"suggested_personality"`
}

// Registry holds the reference patterns in declaration order.
type Registry struct {
	Patterns []Pattern `yaml:"patterns"`
}

// LoadRegistry parses the embedded registry asset.
func LoadRegistry() (*Registry, error) {
	return ParseRegistry(registryAsset)
}

// ParseRegistry parses registry YAML from data.
func ParseRegistry(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// Lookup returns the pattern with the given id, or nil.
func (r *Registry) Lookup(id string) *Pattern {
	if r == nil {
		return nil
	}
	for i := range r.Patterns {
		if r.Patterns[i].ID == id {
			return &r.Patterns[i]
		}
	}
	return nil
}

// DefaultThreshold is the minimum similarity for a template match.
const DefaultThreshold = 0.72

// Match pairs a pattern with its similarity score.
type Match struct {
	Pattern *Pattern
	Score   float64
}

// FindMatch returns the single highest-similarity pattern at or above
// threshold, or nil when nothing qualifies. A nil or empty registry never
// matches.
func FindMatch(fp Fingerprint, reg *Registry, threshold float64) *Match {
	if reg == nil {
		return nil
	}
	var best *Match
	for i := range reg.Patterns {
		score := Similarity(fp, reg.Patterns[i].Fingerprint)
		if score < threshold {
			continue
		}
		if best == nil || score > best.Score {
			best = &Match{Pattern: &reg.Patterns[i], Score: score}
		}
	}
	return best
}
