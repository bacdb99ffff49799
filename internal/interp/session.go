package interp

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"loxlang/internal/ast"
	"loxlang/internal/config"
	"loxlang/internal/diag"
	"loxlang/internal/lexer"
	"loxlang/internal/parser"
	"loxlang/internal/resolver"
	"loxlang/internal/source"
)

// Host is the interpreter's view of the outside world.
type Host interface {
	ReadSource(uri string) (*source.Source, error)
	CreateSnippet(text string) *source.Source
	WriteLine(text string)
	TestSources() ([]*source.Source, error)
}

// Session owns the state that outlives a single run: the global
// environment, the merged depth table and the node id generator. REPL lines
// run one after another against the same Session.
type Session struct {
	host    Host
	opts    config.Options
	log     *slog.Logger
	ids     ast.IDGen
	globals *Env
	locals  *resolver.LocalDepth
}

func NewSession(h Host, opts config.Options) *Session {
	globals := NewEnv(nil)
	defineNatives(globals)
	return &Session{
		host:    h,
		opts:    opts,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		globals: globals,
		locals:  resolver.NewLocalDepth(),
	}
}

// SetLogger replaces the default discarding logger.
func (s *Session) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

func (s *Session) Options() config.Options { return s.opts }

func (s *Session) Host() Host { return s.host }

// Compile lexes, parses and resolves src, stopping after the first stage
// that reports an error. Requested dumps are written to the host as each
// stage finishes.
func (s *Session) Compile(src *source.Source, kind ast.ModuleKind) (*ast.ModuleStmt, *resolver.LocalDepth, error) {
	start := time.Now()
	diags := &diag.Bag{}

	toks := lexer.Lex(src, diags)
	if s.opts.PrintTokens {
		s.host.WriteLine(lexer.Dump(toks))
	}
	if !diags.OK() {
		return nil, nil, &CompileError{Diags: diags}
	}

	mod := parser.ParseWith(toks, diags, &s.ids, kind)
	if s.opts.PrintTree && len(mod.Stmts) > 0 {
		s.host.WriteLine(ast.Dump(mod))
	}
	if !diags.OK() {
		return nil, nil, &CompileError{Diags: diags}
	}

	locals := resolver.Resolve(mod, diags)
	if s.opts.PrintLocals && locals.Len() > 0 {
		s.host.WriteLine(locals.Format())
	}
	if !diags.OK() {
		return nil, nil, &CompileError{Diags: diags}
	}

	s.log.Debug("compiled",
		slog.String("uri", src.URI),
		slog.String("kind", kind.String()),
		slog.Int("tokens", len(toks)),
		slog.Int("statements", len(mod.Stmts)),
		slog.Int("locals", locals.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return mod, locals, nil
}

// Eval compiles and executes src without reporting anything to the host.
// It returns a *CompileError or a *RuntimeError on failure.
func (s *Session) Eval(src *source.Source, kind ast.ModuleKind) error {
	mod, locals, err := s.Compile(src, kind)
	if err != nil {
		return err
	}
	s.locals.Merge(locals)

	env := s.globals
	if kind.Isolated() {
		env = NewEnv(s.globals)
	}
	rt := &Runtime{env: env, locals: s.locals, opts: s.opts, host: s.host, log: s.log}

	s.log.Debug("run module", slog.String("uri", src.URI), slog.String("kind", kind.String()))
	for _, st := range mod.Stmts {
		if _, err := rt.exec(st); err != nil {
			s.log.Debug("run failed", slog.String("uri", src.URI), slog.Any("error", err))
			return err
		}
	}
	s.log.Debug("run finished", slog.String("uri", src.URI))
	return nil
}

// Run is Eval plus reporting: a compile failure writes the whole diagnostic
// report, a runtime failure writes the single error.
func (s *Session) Run(src *source.Source, kind ast.ModuleKind) error {
	err := s.Eval(src, kind)
	s.Report(err)
	return err
}

// Report writes err to the host in the form Run uses.
func (s *Session) Report(err error) {
	var cerr *CompileError
	var rerr *RuntimeError
	switch {
	case err == nil:
	case errors.As(err, &cerr):
		s.host.WriteLine(cerr.Report())
	case errors.As(err, &rerr):
		s.host.WriteLine(rerr.Diagnostic().String())
	default:
		s.host.WriteLine(err.Error())
	}
}

// RunFile reads uri through the host and runs it as an isolated module.
func (s *Session) RunFile(uri string) error {
	src, err := s.host.ReadSource(uri)
	if err != nil {
		s.host.WriteLine(err.Error())
		return err
	}
	return s.Run(src, ast.SourceFile)
}

// RunLine runs one REPL input in the shared global scope.
func (s *Session) RunLine(text string) error {
	return s.Run(s.host.CreateSnippet(text), ast.ReplLine)
}
