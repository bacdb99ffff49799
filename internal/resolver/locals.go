package resolver

import (
	"fmt"
	"sort"
	"strings"

	"loxlang/internal/ast"
)

// LocalDepth maps resolved nodes to the number of scopes between the use and
// the declaration. A node without an entry is a global.
type LocalDepth struct {
	depths map[ast.NodeID]int
	exprs  map[ast.NodeID]ast.Expr
}

func NewLocalDepth() *LocalDepth {
	return &LocalDepth{depths: map[ast.NodeID]int{}, exprs: map[ast.NodeID]ast.Expr{}}
}

func (l *LocalDepth) set(id ast.NodeID, depth int, ex ast.Expr) {
	l.depths[id] = depth
	l.exprs[id] = ex
}

// Depth returns the hop count recorded for id.
func (l *LocalDepth) Depth(id ast.NodeID) (int, bool) {
	if l == nil {
		return 0, false
	}
	d, ok := l.depths[id]
	return d, ok
}

func (l *LocalDepth) Len() int {
	if l == nil {
		return 0
	}
	return len(l.depths)
}

// Merge copies every entry of other into l. Ids are unique per session, so
// entries never overwrite each other in practice.
func (l *LocalDepth) Merge(other *LocalDepth) {
	if other == nil {
		return
	}
	for id, d := range other.depths {
		l.depths[id] = d
		l.exprs[id] = other.exprs[id]
	}
}

// Entries returns a copy of the raw table.
func (l *LocalDepth) Entries() map[ast.NodeID]int {
	out := make(map[ast.NodeID]int, l.Len())
	if l == nil {
		return out
	}
	for id, d := range l.depths {
		out[id] = d
	}
	return out
}

// Format renders `at depth N: <expr>` lines ordered by node id.
func (l *LocalDepth) Format() string {
	if l.Len() == 0 {
		return ""
	}
	ids := make([]ast.NodeID, 0, len(l.depths))
	for id := range l.depths {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("at depth %d: %s", l.depths[id], ast.Format(l.exprs[id])))
	}
	return strings.Join(lines, "\n")
}
