package source

import (
	"fmt"
	"hash/fnv"
	"sort"
	"unicode/utf8"
)

// Source holds a unit of Lox text and precomputed line offsets for diagnostics.
// Identity is the URI.
type Source struct {
	URI         string
	Text        string
	lineOffsets []int // 0-based byte offsets of each line start
}

func New(uri string, text string) *Source {
	s := &Source{URI: uri, Text: text}
	s.lineOffsets = []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			s.lineOffsets = append(s.lineOffsets, i+1)
		}
	}
	return s
}

// NewSnippet wraps text that did not come from a file. The URI is derived from
// a hash of the text so equal snippets share a URI.
func NewSnippet(text string) *Source {
	h := fnv.New32a()
	h.Write([]byte(text))
	return New(fmt.Sprintf("lox:/snippet/%08x", h.Sum32()), text)
}

func (s *Source) String() string { return s.URI }

// LineCol returns 1-based line/column for a byte offset.
// Column is counted in runes (Unicode code points), not bytes.
func (s *Source) LineCol(off int) (int, int) {
	if off < 0 {
		off = 0
	}
	if off > len(s.Text) {
		off = len(s.Text)
	}
	// lineOffsets is sorted.
	i := sort.Search(len(s.lineOffsets), func(i int) bool { return s.lineOffsets[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	lineStart := s.lineOffsets[i]
	col := 1
	pos := lineStart
	for pos < off {
		_, sz := utf8.DecodeRuneInString(s.Text[pos:])
		if sz <= 0 {
			sz = 1
		}
		// If the offset points into a rune's bytes, keep the previous column.
		if pos+sz > off {
			break
		}
		col++
		pos += sz
	}
	return i + 1, col
}

// Line returns the text of the 1-based line without its trailing newline.
func (s *Source) Line(n int) string {
	if n < 1 || n > len(s.lineOffsets) {
		return ""
	}
	start := s.lineOffsets[n-1]
	end := len(s.Text)
	if n < len(s.lineOffsets) {
		end = s.lineOffsets[n] - 1
	}
	if end > start && s.Text[end-1] == '\r' {
		end--
	}
	return s.Text[start:end]
}

// Range is a half-open byte range [Start, End) into a Source.
type Range struct {
	Source     *Source
	Start, End int
}

// Text returns the substring covered by the range. Slicing shares the
// backing array of Source.Text, so no copy is made.
func (r Range) Text() string {
	if r.Source == nil {
		return ""
	}
	return r.Source.Text[r.Start:r.End]
}

func (r Range) LocStart() (uri string, line int, col int) {
	if r.Source == nil {
		return "", 0, 0
	}
	line, col = r.Source.LineCol(r.Start)
	return r.Source.URI, line, col
}

func (r Range) String() string {
	uri, line, col := r.LocStart()
	if uri == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", uri, line, col)
}

// Join returns the smallest range covering both a and b.
func Join(a Range, b Range) Range {
	if a.Source == nil {
		return b
	}
	if b.Source == nil {
		return a
	}
	start := a.Start
	if b.Start < start {
		start = b.Start
	}
	end := a.End
	if b.End > end {
		end = b.End
	}
	return Range{Source: a.Source, Start: start, End: end}
}
