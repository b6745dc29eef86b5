// Package frontmatter provides helpers for reading and writing markdown
// files that carry YAML frontmatter between --- delimiters. Report notes
// use it for their per-page metadata headers.
package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var delim = []byte("---\n")

// Decode unmarshals a document's YAML frontmatter into v and returns the
// markdown body that follows the closing delimiter. The document must begin
// with "---\n"; the next "---" line ends the header block.
func Decode(data []byte, v any) (body []byte, err error) {
	if !bytes.HasPrefix(data, delim) {
		return nil, fmt.Errorf("frontmatter: missing opening --- delimiter")
	}
	rest := data[len(delim):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, fmt.Errorf("frontmatter: missing closing --- delimiter")
	}
	if err := yaml.Unmarshal(rest[:end], v); err != nil {
		return nil, fmt.Errorf("frontmatter: unmarshal: %w", err)
	}
	body = rest[end+4:]
	if len(body) > 0 && body[0] == '\n' {
		body = body[1:]
	}
	return body, nil
}

// Write marshals v as YAML frontmatter and appends body, returning the
// complete markdown document.
func Write(v any, body string) ([]byte, error) {
	header, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	var buf bytes.Buffer
	buf.Write(delim)
	buf.Write(header)
	buf.Write(delim)
	buf.WriteString(body)
	return buf.Bytes(), nil
}
