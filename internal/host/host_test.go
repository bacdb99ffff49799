package host

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"loxlang/internal/source"
)

func mustWrite(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func uris(srcs []*source.Source) []string {
	out := make([]string, 0, len(srcs))
	for _, s := range srcs {
		out = append(out, s.URI)
	}
	return out
}

func TestOSTestSourcesSortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "b.test.lox"), "print 2;")
	mustWrite(t, filepath.Join(root, "a", "x.test.lox"), "print 1;")
	mustWrite(t, filepath.Join(root, "a", "helper.lox"), "print 0;")
	mustWrite(t, filepath.Join(root, "notes.txt"), "")

	h := NewOS(root, &bytes.Buffer{})
	srcs, err := h.TestSources()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a/x.test.lox", "b.test.lox"}, uris(srcs)); diff != "" {
		t.Fatalf("test sources mismatch (-want +got):\n%s", diff)
	}
	if srcs[0].Text != "print 1;" {
		t.Fatalf("unexpected text %q", srcs[0].Text)
	}
}

func TestOSReadSourceAndWriteLine(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "main.lox")
	mustWrite(t, p, "print 1;")
	var out bytes.Buffer
	h := NewOS(root, &out)

	src, err := h.ReadSource(p)
	if err != nil {
		t.Fatal(err)
	}
	if src.Text != "print 1;" {
		t.Fatalf("unexpected text %q", src.Text)
	}
	if _, err := h.ReadSource(filepath.Join(root, "missing.lox")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}

	h.WriteLine("hello")
	h.WriteLine("world")
	if out.String() != "hello\nworld\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestMemoryHost(t *testing.T) {
	h := NewMemory(map[string]string{
		"z.test.lox": "",
		"main.lox":   "print 1;",
		"a.test.lox": "",
	})
	srcs, err := h.TestSources()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a.test.lox", "z.test.lox"}, uris(srcs)); diff != "" {
		t.Fatalf("test sources mismatch (-want +got):\n%s", diff)
	}
	if _, err := h.ReadSource("nope.lox"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	h.WriteLine("1")
	h.WriteLine("2")
	if h.Output() != "1\n2\n" {
		t.Fatalf("unexpected output %q", h.Output())
	}
	h.Reset()
	if h.Output() != "" {
		t.Fatalf("expected empty output after reset")
	}
}

func TestSnippetURIsAreStable(t *testing.T) {
	h := NewMemory(nil)
	a := h.CreateSnippet("print 1;")
	b := h.CreateSnippet("print 1;")
	if a.URI != b.URI {
		t.Fatalf("expected same URI for same text: %q vs %q", a.URI, b.URI)
	}
	if h.CreateSnippet("print 2;").URI == a.URI {
		t.Fatalf("expected different URI for different text")
	}
}
