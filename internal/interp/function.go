package interp

import "loxlang/internal/ast"

// Function is a declaration paired with the environment it closes over.
type Function struct {
	Decl    *ast.FuncStmt
	Closure *Env
}

func (f *Function) Name() string { return f.Decl.Name.Lexeme() }

func (f *Function) Arity() int { return len(f.Decl.Params) }

func (f *Function) isInitializer() bool { return f.Decl.Kind == ast.FuncInitializer }

// Bind returns a copy of f whose closure has `this` set to in. The receiver
// is always the instance the method was reached through, even when the
// method itself was found on a superclass.
func (f *Function) Bind(in *Instance) *Function {
	env := NewEnv(f.Closure)
	env.Define("this", Value{K: VInstance, I: in})
	return &Function{Decl: f.Decl, Closure: env}
}

// Native is a builtin implemented in Go, dispatched by name in
// callBuiltin. Natives always check arity strictly.
type Native struct {
	Name  string
	Arity int
}
