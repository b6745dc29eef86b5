package document

import (
	"os"
	"path/filepath"
	"testing"

	"pagewise/internal/settings"
)

const optinDoc = `
id: p1
name: Join the list
type: optin
canvas_root:
  id: root
  type: container
  props:
    gap: 48
  children:
    - id: s1
      type: hero
      children:
        - id: h1
          type: headline
        - id: b1
          type: button
`

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndParse(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "optin.yaml", optinDoc)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Page.ID != "p1" || doc.Page.Name != "Join the list" {
		t.Errorf("page header = %+v", doc.Page)
	}
	if doc.Page.CanvasRoot == nil || len(doc.Page.CanvasRoot.Children) != 1 {
		t.Fatalf("canvas not parsed: %+v", doc.Page.CanvasRoot)
	}
	hero := doc.Page.CanvasRoot.Children[0]
	if hero.Type != "hero" || len(hero.Children) != 2 {
		t.Errorf("hero = %+v", hero)
	}
}

func TestParseRejectsIncompleteDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no id", "name: x\ncanvas_root: {id: r, type: container}\n"},
		{"no canvas", "id: p1\nname: x\n"},
		{"bad yaml", ":\tnot yaml:"},
	}
	for _, tc := range tests {
		if _, err := Parse([]byte(tc.doc)); err == nil {
			t.Errorf("%s: expected error, got nil", tc.name)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "optin.yaml", optinDoc)

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	doc.Page.CanvasRoot.Props["gap"] = 64
	if err := doc.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := again.Page.CanvasRoot.Props["gap"]; got != 64 {
		t.Errorf("saved gap = %v (%T), want 64", got, got)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "b.yaml", optinDoc)
	writeDoc(t, dir, "a.yaml", optinDoc)
	writeDoc(t, dir, "funnels/c.yaml", optinDoc)
	writeDoc(t, dir, "notes.md", "not a page")
	writeDoc(t, dir, ".pagewise/settings.yaml", "permissions:\n  deny: []\n")
	writeDoc(t, dir, "drafts/d.yaml", optinDoc)

	s := &settings.Settings{Permissions: settings.Permissions{
		Deny: []string{"Read(./drafts/**)"},
	}}

	docs, err := LoadDir(dir, s)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	var rels []string
	for _, d := range docs {
		rel, _ := filepath.Rel(dir, d.Path)
		rels = append(rels, filepath.ToSlash(rel))
	}
	want := []string{"a.yaml", "b.yaml", "funnels/c.yaml"}
	if len(rels) != len(want) {
		t.Fatalf("loaded %v, want %v", rels, want)
	}
	for i := range want {
		if rels[i] != want[i] {
			t.Errorf("docs[%d] = %q, want %q", i, rels[i], want[i])
		}
	}
}

func TestLoadDirNilSettings(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.yaml", optinDoc)
	docs, err := LoadDir(dir, nil)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("loaded %d docs, want 1", len(docs))
	}
}
