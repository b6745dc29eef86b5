package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"pagewise/internal/document"
	"pagewise/internal/engine"
	"pagewise/internal/intent"
	"pagewise/internal/personality"
	"pagewise/internal/report"
	"pagewise/internal/settings"
	"pagewise/internal/structural"
	"pagewise/internal/suggest"
	"pagewise/internal/template"
	"pagewise/internal/tree"
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	usage string
	long  string
	run   func(args []string) error
}

var commands = []command{
	{
		name:  "analyze",
		short: "Suggest layout improvements for a page or directory",
		usage: "pagewise analyze <page.yaml | dir>",
		long: `Run every analyzer family over the page (or every page document in
the directory) and print the merged, confidence-ranked suggestion list.

Reads .pagewise/settings.yaml next to the documents for policy flags and
deny globs. A fully locked policy prints nothing.
`,
		run: runAnalyze,
	},
	{
		name:  "fingerprint",
		short: "Print a page's structural fingerprint",
		usage: "pagewise fingerprint <page.yaml>",
		long: `Derive the structural fingerprint of a page — section roles, depth
profile, type distribution, inferred personality and intent — and print
it as YAML.
`,
		run: runFingerprint,
	},
	{
		name:  "match",
		short: "Match a page against the template registry",
		usage: "pagewise match <page.yaml>",
		long: `Compare the page's fingerprint against every registry pattern and
print the best match at or above the similarity threshold, or report
that nothing matched.
`,
		run: runMatch,
	},
	{
		name:  "apply",
		short: "Apply one suggestion to a page document",
		usage: "pagewise apply <page.yaml> [suggestion#]",
		long: `Analyze the page, then apply the chosen suggestion's prop patch and
save the document in place. With no suggestion number, an interactive
prompt lists the suggestions and asks which one to apply.
`,
		run: runApply,
	},
	{
		name:  "tokens",
		short: "Print a personality's decorative CSS variables",
		usage: "pagewise tokens <personality>",
		long: `Print the CSS custom properties a personality projects: bounded
decorative scales plus the locked spacing constants.

Known personalities: clean, editorial, bold, dense, conversion.
`,
		run: runTokens,
	},
	{
		name:  "report",
		short: "Write a markdown analysis report for a directory",
		usage: "pagewise report <dir> <out-dir>",
		long: `Analyze every page document under dir and write a markdown report
tree to out-dir: index.md plus one note per page, each with metadata
frontmatter and the suggestion table.
`,
		run: runReport,
	},
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "pagewise — structural layout intelligence for page documents\n\n")
	fmt.Fprintf(w, "Usage:\n  pagewise <command> [arguments]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", cmd.name, cmd.short)
	}
	fmt.Fprintf(w, "\nRun 'pagewise help <command>' for details on a specific command.\n")
}

func printCommandHelp(w io.Writer, name string) {
	for _, cmd := range commands {
		if cmd.name == name {
			fmt.Fprintf(w, "Usage: %s\n\n%s", cmd.usage, cmd.long)
			return
		}
	}
	fmt.Fprintf(w, "pagewise: unknown command %q\n\nRun 'pagewise help' for usage.\n", name)
}

func dispatch(args []string) error {
	if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
		printUsage(os.Stdout)
		return nil
	}
	if args[0] == "help" {
		if len(args) >= 2 {
			printCommandHelp(os.Stdout, args[1])
		} else {
			printUsage(os.Stdout)
		}
		return nil
	}
	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(args[1:])
		}
	}
	return fmt.Errorf("unknown command %q\n\nRun 'pagewise help' for usage.", args[0])
}

// newEngine builds the standard engine; the embedded registry always parses.
func newEngine() (*engine.Engine, error) {
	reg, err := template.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("load template registry: %w", err)
	}
	return engine.New(reg), nil
}

// loadTargets resolves a path argument into documents plus their settings.
func loadTargets(path string) ([]*document.Document, *settings.Settings, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		s, err := settings.Load(path)
		if err != nil {
			return nil, nil, err
		}
		docs, err := document.LoadDir(path, s)
		return docs, s, err
	}
	s, err := settings.Load(filepath.Dir(path))
	if err != nil {
		return nil, nil, err
	}
	doc, err := document.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return []*document.Document{doc}, s, nil
}

// ---------------------------------------------------------------------------
// analyze
// ---------------------------------------------------------------------------

func runAnalyze(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: pagewise analyze <page.yaml | dir>")
	}
	eng, err := newEngine()
	if err != nil {
		return err
	}
	docs, s, err := loadTargets(args[0])
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("no page documents found")
		return nil
	}

	policy := s.ResolvePolicy()
	opts := engine.Options{Policy: &policy, Thresholds: s.ThresholdOverrides()}
	for _, doc := range docs {
		suggestions := eng.Analyze(doc.Page, opts)
		fmt.Println(renderPageHeading(doc))
		if len(suggestions) == 0 {
			fmt.Println(mutedStyle.Render("  no suggestions"))
			continue
		}
		fmt.Print(renderSuggestions(suggestions))
	}
	return nil
}

// ---------------------------------------------------------------------------
// fingerprint / match
// ---------------------------------------------------------------------------

func runFingerprint(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: pagewise fingerprint <page.yaml>")
	}
	doc, err := document.Load(args[0])
	if err != nil {
		return err
	}
	fp := template.Derive(doc.Page)
	data, err := yaml.Marshal(fp)
	if err != nil {
		return fmt.Errorf("marshal fingerprint: %w", err)
	}
	os.Stdout.Write(data)
	return nil
}

func runMatch(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: pagewise match <page.yaml>")
	}
	doc, err := document.Load(args[0])
	if err != nil {
		return err
	}
	reg, err := template.LoadRegistry()
	if err != nil {
		return fmt.Errorf("load template registry: %w", err)
	}
	m := template.FindMatch(template.Derive(doc.Page), reg, template.DefaultThreshold)
	if m == nil {
		fmt.Printf("no pattern matches %q (threshold %.2f)\n", doc.Page.ID, template.DefaultThreshold)
		return nil
	}
	fmt.Printf("%s matches %s\n", doc.Page.ID, titleStyle.Render(m.Pattern.Name))
	fmt.Printf("  pattern:    %s\n", m.Pattern.ID)
	fmt.Printf("  similarity: %.2f\n", m.Score)
	if m.Pattern.SuggestedPersonality != "" {
		fmt.Printf("  suggests:   %s personality\n", m.Pattern.SuggestedPersonality)
	}
	return nil
}

// ---------------------------------------------------------------------------
// apply
// ---------------------------------------------------------------------------

func runApply(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: pagewise apply <page.yaml> [suggestion#]")
	}
	eng, err := newEngine()
	if err != nil {
		return err
	}
	doc, err := document.Load(args[0])
	if err != nil {
		return err
	}
	s, err := settings.Load(filepath.Dir(args[0]))
	if err != nil {
		return err
	}

	policy := s.ResolvePolicy()
	suggestions := eng.Analyze(doc.Page, engine.Options{Policy: &policy, Thresholds: s.ThresholdOverrides()})
	if len(suggestions) == 0 {
		fmt.Printf("no suggestions for %q\n", doc.Page.ID)
		return nil
	}

	idx := -1
	if len(args) >= 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 || n > len(suggestions) {
			return fmt.Errorf("suggestion# must be 1-%d", len(suggestions))
		}
		idx = n - 1
	} else {
		fmt.Print(renderSuggestions(suggestions))
		idx, err = promptPick(len(suggestions))
		if err != nil {
			return err
		}
	}

	chosen := suggestions[idx]
	result := suggest.Apply(chosen, doc.Page.CanvasRoot)
	if !result.Success {
		return fmt.Errorf("cannot apply: %s", result.Description)
	}
	applyPatch(doc.Page.CanvasRoot, result.PropsChanges)
	if err := doc.Save(); err != nil {
		return err
	}
	fmt.Printf("applied: %s\n", result.Description)
	fmt.Printf("  modified: %v\n", result.ModifiedNodeIDs)
	return nil
}

// applyPatch merges computed prop changes into the tree.
func applyPatch(root *tree.Node, changes map[string]map[string]any) {
	for id, props := range changes {
		n := tree.FindNode(root, id)
		if n == nil {
			continue
		}
		if n.Props == nil {
			n.Props = make(map[string]any, len(props))
		}
		for k, v := range props {
			n.Props[k] = v
		}
	}
}

// ---------------------------------------------------------------------------
// tokens
// ---------------------------------------------------------------------------

func runTokens(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: pagewise tokens <personality>")
	}
	name := args[0]
	if !personality.Known(name) {
		return fmt.Errorf("unknown personality %q (known: %v)", name, personality.Names())
	}
	r := personality.Resolve(name)
	fmt.Print(personality.FormatVars(personality.DecorativeVars(r)))
	return nil
}

// ---------------------------------------------------------------------------
// report
// ---------------------------------------------------------------------------

func runReport(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: pagewise report <dir> <out-dir>")
	}
	eng, err := newEngine()
	if err != nil {
		return err
	}
	docs, s, err := loadTargets(args[0])
	if err != nil {
		return err
	}

	policy := s.ResolvePolicy()
	opts := engine.Options{Policy: &policy, Thresholds: s.ThresholdOverrides()}
	reports := make([]report.PageReport, 0, len(docs))
	for _, doc := range docs {
		page := doc.Page
		persName := page.LayoutPersonality
		if persName == "" {
			persName = structural.LikelyPersonality(page.CanvasRoot)
		}
		it := intent.Resolve(intent.Signals{
			Explicit: page.LayoutIntent,
			Root:     page.CanvasRoot,
			PageType: page.Type,
		})
		reports = append(reports, report.PageReport{
			Page:        page,
			Personality: persName,
			Intent:      it.Intent,
			Match:       template.FindMatch(template.Derive(page), eng.Registry, template.DefaultThreshold),
			Suggestions: eng.Analyze(page, opts),
		})
	}

	bundle, err := report.Generate(reports)
	if err != nil {
		return err
	}
	if err := report.Write(bundle, args[1]); err != nil {
		return err
	}
	fmt.Printf("report for %d page(s) written to %s\n", len(reports), args[1])
	return nil
}

// ---------------------------------------------------------------------------
// Styled output
// ---------------------------------------------------------------------------

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
	typeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	highStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	midStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	lowStyle   = lipgloss.NewStyle().Faint(true)
)

func renderPageHeading(doc *document.Document) string {
	name := doc.Page.Name
	if name == "" {
		name = doc.Page.ID
	}
	return titleStyle.Render(name) + mutedStyle.Render(" ("+doc.Path+")")
}

func confidenceStyle(c float64) lipgloss.Style {
	switch {
	case c >= 0.8:
		return highStyle
	case c >= 0.6:
		return midStyle
	default:
		return lowStyle
	}
}

func renderSuggestions(suggestions []suggest.Suggestion) string {
	var out string
	for i, s := range suggestions {
		conf := confidenceStyle(s.Confidence).Render(fmt.Sprintf("%.2f", s.Confidence))
		line := fmt.Sprintf("  %2d. %s %s  %s", i+1, conf, typeStyle.Render(s.Type), s.Message)
		if s.TemplateID != "" {
			line += mutedStyle.Render(fmt.Sprintf(" [%s]", s.TemplateID))
		}
		if s.CanApply {
			line += mutedStyle.Render(" (applyable)")
		}
		out += line + "\n"
	}
	return out
}

// ---------------------------------------------------------------------------
// TUI picker
// ---------------------------------------------------------------------------

// pickModel asks for one suggestion number via a text input.
type pickModel struct {
	max   int
	input textinput.Model
	done  bool
}

func newPickModel(max int) pickModel {
	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("1-%d", max)
	ti.CharLimit = 4
	ti.Focus()
	return pickModel{max: max, input: ti}
}

func (m pickModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if _, ok := parsePick(m.input.Value(), m.max); ok {
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m pickModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("Apply which suggestion? %s\n", m.input.View())
}

// parsePick validates a typed suggestion number, returning a 0-based index.
func parsePick(val string, max int) (int, bool) {
	n, err := strconv.Atoi(val)
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n - 1, true
}

// promptPick runs the picker TUI and returns the chosen 0-based index.
func promptPick(max int) (int, error) {
	p := tea.NewProgram(newPickModel(max))
	result, err := p.Run()
	if err != nil {
		return 0, err
	}
	final, ok := result.(pickModel)
	if !ok || !final.done {
		return 0, fmt.Errorf("apply cancelled")
	}
	idx, _ := parsePick(final.input.Value(), max)
	return idx, nil
}

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
