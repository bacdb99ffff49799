// Package testrun runs every *.test.lox source as its own isolated module
// and tallies the results.
package testrun

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"loxlang/internal/ast"
	"loxlang/internal/interp"
)

// SkipMarker on the first line of a test file skips it.
const SkipMarker = "// skip"

type Result struct {
	Passed  int
	Failed  int
	Skipped int
}

func (r Result) Total() int { return r.Passed + r.Failed + r.Skipped }

func (r Result) String() string {
	if r.Total() == 0 {
		return "[test] no tests found"
	}
	s := fmt.Sprintf("[test] %d passed, %d failed", r.Passed, r.Failed)
	if r.Skipped > 0 {
		s += fmt.Sprintf(", %d skipped", r.Skipped)
	}
	return s
}

// Run executes the host's test sources in s. Only URIs matching filter run
// when filter is non-nil. One line per test and a summary line are written
// to the host, followed by the full report for a test that did not compile.
// The error is non-nil when any test failed.
func Run(s *interp.Session, filter *regexp.Regexp) (Result, error) {
	h := s.Host()
	srcs, err := h.TestSources()
	if err != nil {
		return Result{}, err
	}
	var res Result
	for _, src := range srcs {
		if filter != nil && !filter.MatchString(src.URI) {
			continue
		}
		if skipped(src.Text) {
			res.Skipped++
			h.WriteLine(fmt.Sprintf("[SKIP] %s", src.URI))
			continue
		}
		start := time.Now()
		err := s.Eval(src, ast.SourceFile)
		if err != nil {
			res.Failed++
			h.WriteLine(fmt.Sprintf("[FAIL] %s (%s): %v", src.URI, formatTestDuration(time.Since(start)), err))
			if errors.Is(err, interp.ErrCompile) {
				s.Report(err)
			}
			continue
		}
		res.Passed++
		h.WriteLine(fmt.Sprintf("[PASS] %s (%s)", src.URI, formatTestDuration(time.Since(start))))
	}
	h.WriteLine(res.String())
	if res.Failed != 0 {
		return res, fmt.Errorf("%d test(s) failed", res.Failed)
	}
	return res, nil
}

func skipped(text string) bool {
	first, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(first) == SkipMarker
}

func formatTestDuration(d time.Duration) string {
	us := d.Microseconds()
	if us < 1000 {
		return fmt.Sprintf("%dus", us)
	}
	return fmt.Sprintf("%.2fms", float64(us)/1000.0)
}
