// Package resolver computes, for every variable reference, how many scopes
// separate it from its declaration, and checks that return, this and super
// are used where they make sense.
package resolver

import (
	"fmt"

	"loxlang/internal/ast"
	"loxlang/internal/diag"
	"loxlang/internal/lexer"
)

type funcKind int

const (
	funcNone funcKind = iota
	funcFunction
	funcMethod
	funcInitializer
)

type classKind int

const (
	classNone classKind = iota
	classPlain
	classSub
)

type resolver struct {
	scopes []map[string]bool // name -> defined
	fn     funcKind
	class  classKind
	locals *LocalDepth
	diags  *diag.Bag
}

// Resolve walks mod and returns its depth table. Problems are added to diags;
// resolution always runs to the end.
func Resolve(mod *ast.ModuleStmt, diags *diag.Bag) *LocalDepth {
	r := &resolver{locals: NewLocalDepth(), diags: diags}
	r.stmt(mod)
	return r.locals
}

func (r *resolver) stmts(list []ast.Stmt) {
	for _, s := range list {
		r.stmt(s)
	}
}

func (r *resolver) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ModuleStmt:
		if s.Kind.Isolated() {
			r.pushScope()
			defer r.popScope()
		}
		r.stmts(s.Stmts)
	case *ast.AssertStmt:
		r.expr(s.Expr)
	case *ast.AssertEqualStmt:
		r.expr(s.Left)
		r.expr(s.Right)
	case *ast.BlockStmt:
		r.pushScope()
		r.stmts(s.Stmts)
		r.popScope()
	case *ast.ClassStmt:
		r.classDecl(s)
	case *ast.ExprStmt:
		r.expr(s.Expr)
	case *ast.FuncStmt:
		r.declare(s.Name)
		r.define(s.Name)
		r.function(s, funcFunction)
	case *ast.IfStmt:
		r.expr(s.Cond)
		r.stmt(s.Then)
		if s.Else != nil {
			r.stmt(s.Else)
		}
	case *ast.PrintStmt:
		r.expr(s.Expr)
	case *ast.ReturnStmt:
		if r.fn == funcNone {
			r.diags.Error(s.Keyword.Range, "cannot return outside of functions")
		}
		if s.Expr != nil {
			r.expr(s.Expr)
		}
	case *ast.VarStmt:
		r.declare(s.Name)
		if s.Init != nil {
			r.expr(s.Init)
		}
		r.define(s.Name)
	case *ast.WhileStmt:
		r.expr(s.Cond)
		r.stmt(s.Body)
	default:
		panic(fmt.Sprintf("resolver: unexpected statement %T", s))
	}
}

// classDecl opens two scopes around the methods: `super` (subclasses only) and
// inside it `this`. The interpreter builds the same two environments.
func (r *resolver) classDecl(s *ast.ClassStmt) {
	enclosing := r.class
	r.class = classPlain
	defer func() { r.class = enclosing }()

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme() == s.Name.Lexeme() {
			r.diags.Error(s.Superclass.Name.Range, "a class cannot inherit from itself")
		}
		r.class = classSub
		r.expr(s.Superclass)
		r.pushScope()
		r.defineName("super")
		defer r.popScope()
	}

	r.pushScope()
	r.defineName("this")
	for _, m := range s.Methods {
		kind := funcMethod
		if m.Kind == ast.FuncInitializer {
			kind = funcInitializer
		}
		r.function(m, kind)
	}
	r.popScope()
}

func (r *resolver) function(fn *ast.FuncStmt, kind funcKind) {
	enclosing := r.fn
	r.fn = kind
	r.pushScope()
	for _, p := range fn.Params {
		r.declare(p)
		r.define(p)
	}
	r.stmts(fn.Body)
	r.popScope()
	r.fn = enclosing
}

func (r *resolver) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.AssignExpr:
		r.expr(e.Value)
		r.local(e.ID, e.Name, e)
	case *ast.BinaryExpr:
		r.expr(e.Left)
		r.expr(e.Right)
	case *ast.CallExpr:
		r.expr(e.Callee)
		for _, a := range e.Args {
			r.expr(a)
		}
	case *ast.GetExpr:
		r.expr(e.Object)
	case *ast.GroupingExpr:
		r.expr(e.Inner)
	case *ast.LiteralExpr:
	case *ast.LogicalExpr:
		r.expr(e.Left)
		r.expr(e.Right)
	case *ast.SetExpr:
		r.expr(e.Value)
		r.expr(e.Object)
	case *ast.SuperExpr:
		switch r.class {
		case classNone:
			r.diags.Error(e.Keyword.Range, "cannot use 'super' outside of a class")
		case classPlain:
			r.diags.Error(e.Keyword.Range, "cannot use 'super' in a class with no superclass")
		}
		r.local(e.ID, e.Keyword, e)
		this := &ast.ThisExpr{ID: e.ThisID, Keyword: e.Keyword, S: e.S}
		r.localName(e.ThisID, "this", this)
	case *ast.ThisExpr:
		if r.class == classNone {
			r.diags.Error(e.Keyword.Range, "cannot use 'this' outside of a class")
			return
		}
		r.local(e.ID, e.Keyword, e)
	case *ast.UnaryExpr:
		r.expr(e.Expr)
	case *ast.VariableExpr:
		r.local(e.ID, e.Name, e)
	default:
		panic(fmt.Sprintf("resolver: unexpected expression %T", e))
	}
}

func (r *resolver) local(id ast.NodeID, name lexer.Token, e ast.Expr) {
	r.localName(id, name.Lexeme(), e)
}

// localName records the depth of name for id. Names that are not found
// stay out of the table and are looked up globally at run time.
func (r *resolver) localName(id ast.NodeID, name string, e ast.Expr) {
	if depth, found := r.lookup(name); found {
		r.locals.set(id, depth, e)
	}
}
