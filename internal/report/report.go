// Package report renders analysis results as a markdown report tree.
//
// Report layout:
//
//	index.md             — lists all analyzed pages
//	pages/<id>.md        — one note per page: metadata frontmatter,
//	                       suggestion table, fingerprint summary
//
// Generation is pure: Generate builds every note in memory, Write puts
// them on disk in sorted path order so repeated runs are byte-identical.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pagewise/internal/frontmatter"
	"pagewise/internal/suggest"
	"pagewise/internal/template"
	"pagewise/internal/tree"
)

// PageReport is the analysis outcome for one page.
type PageReport struct {
	Page        *tree.Page
	Personality string
	Intent      string
	Match       *template.Match
	Suggestions []suggest.Suggestion
}

// noteMeta is the frontmatter header of a per-page note.
type noteMeta struct {
	Page        string   `yaml:"page"`
	Name        string   `yaml:"name,omitempty"`
	Personality string   `yaml:"personality,omitempty"`
	Intent      string   `yaml:"intent,omitempty"`
	Template    string   `yaml:"template,omitempty"`
	MatchScore  float64  `yaml:"match_score,omitempty"`
	Tags        []string `yaml:"tags"`
}

// Bundle holds pre-generated report content (path → markdown). Paths are
// relative to the output directory, using forward slashes.
type Bundle struct {
	notes map[string]string
}

// Generate builds all report notes from the page reports. No files are
// written. Reports are ordered by page ID regardless of input order.
func Generate(reports []PageReport) (*Bundle, error) {
	sorted := make([]PageReport, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Page.ID < sorted[j].Page.ID })

	notes := make(map[string]string)
	notes["index.md"] = buildIndex(sorted)
	for _, r := range sorted {
		note, err := buildPageNote(r)
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", r.Page.ID, err)
		}
		notes["pages/"+sanitizeFilename(r.Page.ID)+".md"] = note
	}
	return &Bundle{notes: notes}, nil
}

// Write puts every note in the bundle under outputDir, in sorted path
// order. The pages/ subdirectory always exists, even for an empty bundle.
func Write(bundle *Bundle, outputDir string) error {
	if err := os.MkdirAll(filepath.Join(outputDir, "pages"), 0o755); err != nil {
		return fmt.Errorf("mkdir pages: %w", err)
	}

	paths := make([]string, 0, len(bundle.notes))
	for p := range bundle.notes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		abs := filepath.Join(outputDir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", filepath.Dir(abs), err)
		}
		if err := os.WriteFile(abs, []byte(bundle.notes[p]), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", abs, err)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Note builders
// ---------------------------------------------------------------------------

// buildIndex builds index.md — entry point listing all analyzed pages.
func buildIndex(reports []PageReport) string {
	var b strings.Builder
	b.WriteString("# Layout Analysis\n\n")
	if len(reports) == 0 {
		b.WriteString("_No pages analyzed._\n")
		return b.String()
	}
	b.WriteString("| Page | Personality | Intent | Suggestions |\n")
	b.WriteString("|------|-------------|--------|-------------|\n")
	for _, r := range reports {
		id := sanitizeFilename(r.Page.ID)
		b.WriteString(fmt.Sprintf("| [[pages/%s|%s]] | %s | %s | %d |\n",
			id, r.Page.ID, r.Personality, r.Intent, len(r.Suggestions)))
	}
	return b.String()
}

// buildPageNote builds pages/<id>.md for one analyzed page.
func buildPageNote(r PageReport) (string, error) {
	meta := noteMeta{
		Page:        r.Page.ID,
		Name:        r.Page.Name,
		Personality: r.Personality,
		Intent:      r.Intent,
		Tags:        noteTags(r),
	}
	if r.Match != nil {
		meta.Template = r.Match.Pattern.ID
		meta.MatchScore = r.Match.Score
	}

	var b strings.Builder
	title := r.Page.Name
	if title == "" {
		title = r.Page.ID
	}
	b.WriteString(fmt.Sprintf("# %s\n\n", title))

	if r.Match != nil {
		b.WriteString(fmt.Sprintf("Matches template **%s** at %.2f.\n\n", r.Match.Pattern.Name, r.Match.Score))
	}

	if len(r.Suggestions) == 0 {
		b.WriteString("_No suggestions._\n")
	} else {
		b.WriteString("## Suggestions\n\n")
		b.WriteString("| Type | Confidence | Nodes | Message |\n")
		b.WriteString("|------|------------|-------|--------|\n")
		for _, s := range r.Suggestions {
			b.WriteString(fmt.Sprintf("| %s | %.2f | `%s` | %s |\n",
				s.Type, s.Confidence, strings.Join(s.AffectedNodeIDs, ", "), s.Message))
		}
	}

	data, err := frontmatter.Write(meta, b.String())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// noteTags derives the note's tag set: a fixed page tag plus a confidence
// band for the strongest suggestion. Tags come back sorted.
func noteTags(r PageReport) []string {
	tags := []string{"pagewise/page"}
	if len(r.Suggestions) > 0 {
		top := r.Suggestions[0].Confidence
		for _, s := range r.Suggestions[1:] {
			if s.Confidence > top {
				top = s.Confidence
			}
		}
		tags = append(tags, confidenceTag(top))
	}
	sort.Strings(tags)
	return tags
}

// confidenceTag maps a confidence score to a tag band.
// ≥0.8 → high, ≥0.6 → medium, below → low.
func confidenceTag(c float64) string {
	switch {
	case c >= 0.8:
		return "confidence-high"
	case c >= 0.6:
		return "confidence-medium"
	default:
		return "confidence-low"
	}
}

// sanitizeFilename replaces / and . with -, collapses consecutive - to one,
// and trims leading/trailing -.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, ".", "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}
