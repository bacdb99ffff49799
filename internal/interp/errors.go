package interp

import (
	"errors"
	"fmt"

	"loxlang/internal/diag"
	"loxlang/internal/source"
)

// ErrCompile matches every *CompileError through errors.Is.
var ErrCompile = errors.New("compilation failed")

// CompileError carries the diagnostics of a module that did not compile.
type CompileError struct {
	Diags *diag.Bag
}

func (e *CompileError) Error() string {
	if it, ok := e.Diags.FirstError(); ok {
		return fmt.Sprintf("%s (%d diagnostics)", it, e.Diags.Len())
	}
	return ErrCompile.Error()
}

func (e *CompileError) Is(target error) bool { return target == ErrCompile }

// Report renders the full diagnostic report.
func (e *CompileError) Report() string { return diag.Report(e.Diags) }

// RuntimeError aborts the current run. At points at the expression that
// failed.
type RuntimeError struct {
	At  source.Range
	Msg string
}

func (e *RuntimeError) Error() string {
	if e.At.Source == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.At, e.Msg)
}

func (e *RuntimeError) Diagnostic() diag.Item {
	return diag.Item{Severity: diag.Error, At: e.At, Msg: e.Msg}
}

func runtimeErrorf(at source.Range, format string, args ...any) *RuntimeError {
	return &RuntimeError{At: at, Msg: fmt.Sprintf(format, args...)}
}
