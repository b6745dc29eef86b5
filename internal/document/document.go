// Package document reads and writes page documents: YAML files describing
// a page and its component tree.
//
// A studio directory holds one document per page:
//
//	<studio>/
//	    .pagewise/settings.yaml   # optional configuration
//	    <page>.yaml               # one page document each
//	    drafts/...                # subdirectories are scanned too
package document

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"pagewise/internal/settings"
	"pagewise/internal/tree"
)

// Document pairs a loaded page with the path it came from.
type Document struct {
	Path string
	Page *tree.Page
}

// Load reads and parses a single page document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	page, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &Document{Path: path, Page: page}, nil
}

// Parse decodes a page document. A document without an id or canvas is an
// error; everything else is the analyzers' problem.
func Parse(data []byte) (*tree.Page, error) {
	var page tree.Page
	if err := yaml.Unmarshal(data, &page); err != nil {
		return nil, err
	}
	if page.ID == "" {
		return nil, fmt.Errorf("document has no page id")
	}
	if page.CanvasRoot == nil {
		return nil, fmt.Errorf("document %q has no canvas", page.ID)
	}
	return &page, nil
}

// Save writes the page back to its document path.
func (d *Document) Save() error {
	data, err := yaml.Marshal(d.Page)
	if err != nil {
		return fmt.Errorf("marshal page %q: %w", d.Page.ID, err)
	}
	if err := os.WriteFile(d.Path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", d.Path, err)
	}
	return nil
}

// LoadDir walks a studio directory and loads every .yaml page document,
// skipping hidden paths and anything the settings deny list matches.
// Documents come back sorted by path so repeated scans are deterministic.
// Settings may be nil.
func LoadDir(root string, s *settings.Settings) ([]*Document, error) {
	var docs []*Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".yaml") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if s.IsDenied(rel) {
			return nil
		}
		doc, err := Load(path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}
