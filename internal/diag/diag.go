package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"loxlang/internal/source"
)

type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

type Item struct {
	Severity Severity
	At       source.Range
	Msg      string
}

func (it Item) OK() bool { return it.Severity != Error }

// String renders `uri:line:col: severity: msg`.
func (it Item) String() string {
	uri, line, col := it.At.LocStart()
	if uri == "" {
		return fmt.Sprintf("%s: %s", it.Severity, it.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", uri, line, col, it.Severity, it.Msg)
}

// Bag collects diagnostics from every compile stage of a single run.
type Bag struct {
	Items []Item
}

func (b *Bag) Add(sev Severity, at source.Range, msg string) {
	b.Items = append(b.Items, Item{Severity: sev, At: at, Msg: msg})
}

func (b *Bag) Info(at source.Range, msg string)  { b.Add(Info, at, msg) }
func (b *Bag) Warn(at source.Range, msg string)  { b.Add(Warning, at, msg) }
func (b *Bag) Error(at source.Range, msg string) { b.Add(Error, at, msg) }

func (b *Bag) Errorf(at source.Range, format string, args ...any) {
	b.Add(Error, at, fmt.Sprintf(format, args...))
}

// OK reports whether the bag holds no error-severity items.
func (b *Bag) OK() bool {
	_, found := b.FirstError()
	return !found
}

func (b *Bag) FirstError() (Item, bool) {
	if b == nil {
		return Item{}, false
	}
	for _, it := range b.Items {
		if !it.OK() {
			return it, true
		}
	}
	return Item{}, false
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Items)
}

func Print(w io.Writer, b *Bag) {
	if b == nil || len(b.Items) == 0 {
		return
	}
	items := make([]Item, 0, len(b.Items))
	items = append(items, b.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		ui, li, ci := items[i].At.LocStart()
		uj, lj, cj := items[j].At.LocStart()
		if ui != uj {
			return ui < uj
		}
		if li != lj {
			return li < lj
		}
		return ci < cj
	})
	for _, it := range items {
		fmt.Fprintln(w, it.String())
		if it.At.Source == nil {
			continue
		}
		_, line, col := it.At.LocStart()
		text := it.At.Source.Line(line)
		if text == "" {
			continue
		}
		fmt.Fprintf(w, "  %s\n  %s^\n", text, strings.Repeat(" ", col-1))
	}
}

// Report renders the bag the way Print does and trims the trailing newline.
func Report(b *Bag) string {
	var sb strings.Builder
	Print(&sb, b)
	return strings.TrimRight(sb.String(), "\n")
}
