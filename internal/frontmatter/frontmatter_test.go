package frontmatter_test

import (
	"testing"

	"pagewise/internal/frontmatter"
)

func TestDecodeRoundtrip(t *testing.T) {
	type meta struct {
		Page        string `yaml:"page"`
		Personality string `yaml:"personality"`
	}

	m := meta{Page: "optin-1", Personality: "conversion"}
	body := "# Opt-in page\n\n2 suggestions\n"

	data, err := frontmatter.Write(m, body)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	var got meta
	bodyBytes, err := frontmatter.Decode(data, &got)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != m {
		t.Errorf("meta mismatch: got %+v want %+v", got, m)
	}
	if string(bodyBytes) != body {
		t.Errorf("body mismatch: got %q want %q", bodyBytes, body)
	}
}

func TestDecodeMissingOpen(t *testing.T) {
	var v map[string]string
	_, err := frontmatter.Decode([]byte("no delimiter"), &v)
	if err == nil {
		t.Fatal("expected error for missing opening delimiter")
	}
}

func TestDecodeMissingClose(t *testing.T) {
	var v map[string]string
	_, err := frontmatter.Decode([]byte("---\npage: optin-1\n"), &v)
	if err == nil {
		t.Fatal("expected error for missing closing delimiter")
	}
}

func TestWriteNoBody(t *testing.T) {
	type meta struct {
		X int `yaml:"x"`
	}
	data, err := frontmatter.Write(meta{X: 1}, "")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty output")
	}
}
