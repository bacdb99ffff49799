// Package host provides the filesystem and in-memory collaborators the
// interpreter reads sources from and writes output to.
package host

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"loxlang/internal/source"
)

// TestSuffix marks files that test mode picks up.
const TestSuffix = ".test.lox"

// OS reads sources from disk and writes output lines to Out. Test sources
// are discovered under Root.
type OS struct {
	Root string
	Out  io.Writer
}

func NewOS(root string, out io.Writer) *OS {
	if root == "" {
		root = "."
	}
	return &OS{Root: root, Out: out}
}

func (h *OS) ReadSource(uri string) (*source.Source, error) {
	b, err := os.ReadFile(uri)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	return source.New(filepath.ToSlash(uri), string(b)), nil
}

func (h *OS) CreateSnippet(text string) *source.Source { return source.NewSnippet(text) }

func (h *OS) WriteLine(text string) { fmt.Fprintln(h.Out, text) }

// TestSources returns every *.test.lox below Root, sorted by path. URIs are
// slash-separated and relative to Root.
func (h *OS) TestSources() ([]*source.Source, error) {
	var paths []string
	err := filepath.WalkDir(h.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, TestSuffix) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", h.Root, err)
	}
	sort.Strings(paths)

	out := make([]*source.Source, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		rel, err := filepath.Rel(h.Root, p)
		if err != nil {
			return nil, err
		}
		out = append(out, source.New(filepath.ToSlash(rel), string(b)))
	}
	return out, nil
}

// Memory serves sources from a map and records every written line.
type Memory struct {
	Files map[string]string
	Lines []string
}

func NewMemory(files map[string]string) *Memory {
	if files == nil {
		files = map[string]string{}
	}
	return &Memory{Files: files}
}

func (h *Memory) ReadSource(uri string) (*source.Source, error) {
	text, ok := h.Files[uri]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", uri, fs.ErrNotExist)
	}
	return source.New(uri, text), nil
}

func (h *Memory) CreateSnippet(text string) *source.Source { return source.NewSnippet(text) }

func (h *Memory) WriteLine(text string) { h.Lines = append(h.Lines, text) }

func (h *Memory) TestSources() ([]*source.Source, error) {
	var uris []string
	for uri := range h.Files {
		if strings.HasSuffix(uri, TestSuffix) {
			uris = append(uris, uri)
		}
	}
	sort.Strings(uris)
	out := make([]*source.Source, 0, len(uris))
	for _, uri := range uris {
		out = append(out, source.New(uri, h.Files[uri]))
	}
	return out, nil
}

// Output returns everything written so far, one line per WriteLine.
func (h *Memory) Output() string {
	if len(h.Lines) == 0 {
		return ""
	}
	return strings.Join(h.Lines, "\n") + "\n"
}

// Reset drops recorded lines.
func (h *Memory) Reset() { h.Lines = nil }
