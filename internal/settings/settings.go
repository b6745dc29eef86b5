// Package settings loads pagewise configuration from
// .pagewise/settings.yaml next to the analyzed documents.
//
// The file carries the geometry-lock policy flags, optional per-type
// sensitivity overrides, and a deny list of glob patterns that controls
// which documents a directory scan reads. Deny patterns may be written as
// bare globs ("drafts/**") or wrapped in a Read() verb
// ("Read(./drafts/**)") for familiarity.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"pagewise/internal/layout"
)

// Settings holds pagewise configuration from .pagewise/settings.yaml.
type Settings struct {
	// Policy gates which layout dimensions suggestions may touch. Absent
	// flags default to allowed.
	Policy *PolicyFlags `yaml:"policy"`

	// Thresholds overrides per-suggestion-type confidence floors,
	// keyed by suggestion type. Values outside (0, 1] are ignored.
	Thresholds map[string]float64 `yaml:"thresholds"`

	Permissions Permissions `yaml:"permissions"`
}

// PolicyFlags mirrors the layout policy with explicit YAML booleans so an
// absent file and an all-false file are distinguishable.
type PolicyFlags struct {
	AllowSpacing   *bool `yaml:"allow_spacing"`
	AllowAlignment *bool `yaml:"allow_alignment"`
	AllowGeometry  *bool `yaml:"allow_geometry"`
}

// Permissions controls which documents a directory scan reads.
type Permissions struct {
	// Deny is a list of glob patterns for documents that should not be
	// read. Patterns may be bare globs or wrapped in Read(...).
	// Example: ["Read(./drafts/**)"]
	Deny []string `yaml:"deny"`
}

// Load reads .pagewise/settings.yaml relative to root.
// Returns nil (not an error) if the file does not exist.
func Load(root string) (*Settings, error) {
	path := filepath.Join(root, ".pagewise", "settings.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return &s, nil
}

// ResolvePolicy projects the settings onto a layout policy. Missing file,
// missing section, and missing flags all default to allowed. Safe on a nil
// receiver.
func (s *Settings) ResolvePolicy() layout.Policy {
	p := layout.DefaultPolicy()
	if s == nil || s.Policy == nil {
		return p
	}
	if s.Policy.AllowSpacing != nil {
		p.AllowSpacing = *s.Policy.AllowSpacing
	}
	if s.Policy.AllowAlignment != nil {
		p.AllowAlignment = *s.Policy.AllowAlignment
	}
	if s.Policy.AllowGeometry != nil {
		p.AllowGeometry = *s.Policy.AllowGeometry
	}
	return p
}

// ThresholdOverrides returns the valid per-type overrides, ready to hand
// to the analysis pipeline. Out-of-range values are dropped. Safe on a nil
// receiver.
func (s *Settings) ThresholdOverrides() map[string]float64 {
	if s == nil || len(s.Thresholds) == 0 {
		return nil
	}
	out := make(map[string]float64, len(s.Thresholds))
	for typ, v := range s.Thresholds {
		if v > 0 && v <= 1 {
			out[typ] = v
		}
	}
	return out
}

// IsDenied reports whether relPath (forward-slash, relative to root)
// matches any deny rule. Safe to call on a nil *Settings receiver.
func (s *Settings) IsDenied(relPath string) bool {
	if s == nil {
		return false
	}
	for _, rule := range s.Permissions.Deny {
		if matchDenyPattern(parseDenyRule(rule), relPath) {
			return true
		}
	}
	return false
}

// parseDenyRule extracts the path glob from a deny rule.
//
//	"Read(./drafts/**)" → "drafts/**"
//	"drafts/**"         → "drafts/**"
func parseDenyRule(rule string) string {
	if strings.HasPrefix(rule, "Read(") && strings.HasSuffix(rule, ")") {
		rule = rule[5 : len(rule)-1]
	}
	return strings.TrimPrefix(rule, "./")
}

// matchDenyPattern reports whether path matches a deny glob pattern.
//
// "prefix/**" matches the prefix directory itself and every path beneath it.
// All other patterns use filepath.Match semantics (single * does not cross /).
func matchDenyPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	matched, _ := filepath.Match(pattern, path)
	return matched
}
