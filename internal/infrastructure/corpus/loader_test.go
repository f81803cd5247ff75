package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPlainTextTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faqs.txt")
	content := "\n\nQ: Do you ship abroad?\nA: Yes.\n\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	text, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if strings.HasPrefix(text, "\n") || !strings.HasPrefix(text, "Q: Do you ship abroad?") {
		t.Fatalf("unexpected corpus text %q", text)
	}
}

func TestLoadRejectsNonUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faqs.txt")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	if _, err := NewLoader().Load(path); err == nil {
		t.Fatalf("expected error for binary corpus")
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := NewLoader().Load("/nonexistent/faqs.txt"); err == nil {
		t.Fatalf("expected error for missing corpus")
	}
}
