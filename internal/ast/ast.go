package ast

import (
	"loxlang/internal/lexer"
	"loxlang/internal/source"
)

// NodeID identifies a node that the resolver annotates. Structurally equal
// nodes get distinct ids, so depth tables never confuse two `x` references.
type NodeID int

// IDGen hands out NodeIDs. A single generator is shared by everything parsed
// in one session so ids from different REPL lines never collide.
type IDGen struct {
	last NodeID
}

// Next returns a fresh id. Zero is never returned.
func (g *IDGen) Next() NodeID {
	g.last++
	return g.last
}

type ModuleKind int

const (
	// SourceFile is a file run on its own, including test files.
	SourceFile ModuleKind = iota
	// ReplLine is one interactive input; it shares the global scope.
	ReplLine
)

func (k ModuleKind) String() string {
	switch k {
	case SourceFile:
		return "source-file"
	case ReplLine:
		return "repl-line"
	default:
		return "unknown"
	}
}

// Isolated reports whether the module gets its own top-level scope.
func (k ModuleKind) Isolated() bool { return k != ReplLine }

// Stmt
type Stmt interface {
	stmtNode()
	Span() source.Range
}

// ModuleStmt is the root of one parsed unit.
type ModuleStmt struct {
	Kind  ModuleKind
	Stmts []Stmt
	S     source.Range
}

func (*ModuleStmt) stmtNode()            {}
func (s *ModuleStmt) Span() source.Range { return s.S }

type AssertStmt struct {
	Keyword lexer.Token
	Expr    Expr
	S       source.Range
}

func (*AssertStmt) stmtNode()            {}
func (s *AssertStmt) Span() source.Range { return s.S }

// AssertEqualStmt is `assert a == b;`. It is split out at parse time so a
// failure can report both operands.
type AssertEqualStmt struct {
	Keyword lexer.Token
	Left    Expr
	Right   Expr
	S       source.Range
}

func (*AssertEqualStmt) stmtNode()            {}
func (s *AssertEqualStmt) Span() source.Range { return s.S }

type BlockStmt struct {
	Stmts []Stmt
	S     source.Range
}

func (*BlockStmt) stmtNode()            {}
func (s *BlockStmt) Span() source.Range { return s.S }

type ClassStmt struct {
	Name       lexer.Token
	Superclass *VariableExpr // optional
	Methods    []*FuncStmt
	S          source.Range
}

func (*ClassStmt) stmtNode()            {}
func (s *ClassStmt) Span() source.Range { return s.S }

type ExprStmt struct {
	Expr Expr
	S    source.Range
}

func (*ExprStmt) stmtNode()            {}
func (s *ExprStmt) Span() source.Range { return s.S }

type FuncKind int

const (
	FuncFunction FuncKind = iota
	FuncMethod
	FuncInitializer
)

func (k FuncKind) String() string {
	switch k {
	case FuncMethod:
		return "method"
	case FuncInitializer:
		return "initializer"
	default:
		return "function"
	}
}

// FuncStmt declares a function or method. Body runs directly in the call
// environment next to the parameters.
type FuncStmt struct {
	Kind   FuncKind
	Name   lexer.Token
	Params []lexer.Token
	Body   []Stmt
	S      source.Range
}

func (*FuncStmt) stmtNode()            {}
func (s *FuncStmt) Span() source.Range { return s.S }

type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // optional
	S    source.Range
}

func (*IfStmt) stmtNode()            {}
func (s *IfStmt) Span() source.Range { return s.S }

type PrintStmt struct {
	Expr Expr
	S    source.Range
}

func (*PrintStmt) stmtNode()            {}
func (s *PrintStmt) Span() source.Range { return s.S }

type ReturnStmt struct {
	Keyword lexer.Token
	Expr    Expr // optional
	S       source.Range
}

func (*ReturnStmt) stmtNode()            {}
func (s *ReturnStmt) Span() source.Range { return s.S }

type VarStmt struct {
	Name lexer.Token
	Init Expr // optional
	S    source.Range
}

func (*VarStmt) stmtNode()            {}
func (s *VarStmt) Span() source.Range { return s.S }

type WhileStmt struct {
	Cond Expr
	Body Stmt
	S    source.Range
}

func (*WhileStmt) stmtNode()            {}
func (s *WhileStmt) Span() source.Range { return s.S }

// Expr
type Expr interface {
	exprNode()
	Span() source.Range
}

type AssignExpr struct {
	ID    NodeID
	Name  lexer.Token
	Value Expr
	S     source.Range
}

func (*AssignExpr) exprNode()            {}
func (e *AssignExpr) Span() source.Range { return e.S }

type BinaryExpr struct {
	Op    lexer.Token
	Left  Expr
	Right Expr
	S     source.Range
}

func (*BinaryExpr) exprNode()            {}
func (e *BinaryExpr) Span() source.Range { return e.S }

type CallExpr struct {
	Callee Expr
	Paren  lexer.Token // closing paren
	Args   []Expr
	S      source.Range
}

func (*CallExpr) exprNode()            {}
func (e *CallExpr) Span() source.Range { return e.S }

type GetExpr struct {
	Object Expr
	Name   lexer.Token
	S      source.Range
}

func (*GetExpr) exprNode()            {}
func (e *GetExpr) Span() source.Range { return e.S }

type GroupingExpr struct {
	Inner Expr
	S     source.Range
}

func (*GroupingExpr) exprNode()            {}
func (e *GroupingExpr) Span() source.Range { return e.S }

// LiteralExpr holds nil, bool, float64 or string.
type LiteralExpr struct {
	Value any
	S     source.Range
}

func (*LiteralExpr) exprNode()            {}
func (e *LiteralExpr) Span() source.Range { return e.S }

// LogicalExpr is `and` / `or`; unlike BinaryExpr it short-circuits.
type LogicalExpr struct {
	Op    lexer.Token
	Left  Expr
	Right Expr
	S     source.Range
}

func (*LogicalExpr) exprNode()            {}
func (e *LogicalExpr) Span() source.Range { return e.S }

type SetExpr struct {
	Object Expr
	Name   lexer.Token
	Value  Expr
	S      source.Range
}

func (*SetExpr) exprNode()            {}
func (e *SetExpr) Span() source.Range { return e.S }

// SuperExpr is `super.Method`. ID resolves `super`, ThisID resolves the
// receiver `this` that the found method gets bound to.
type SuperExpr struct {
	ID      NodeID
	ThisID  NodeID
	Keyword lexer.Token
	Method  lexer.Token
	S       source.Range
}

func (*SuperExpr) exprNode()            {}
func (e *SuperExpr) Span() source.Range { return e.S }

type ThisExpr struct {
	ID      NodeID
	Keyword lexer.Token
	S       source.Range
}

func (*ThisExpr) exprNode()            {}
func (e *ThisExpr) Span() source.Range { return e.S }

type UnaryExpr struct {
	Op   lexer.Token
	Expr Expr
	S    source.Range
}

func (*UnaryExpr) exprNode()            {}
func (e *UnaryExpr) Span() source.Range { return e.S }

type VariableExpr struct {
	ID   NodeID
	Name lexer.Token
	S    source.Range
}

func (*VariableExpr) exprNode()            {}
func (e *VariableExpr) Span() source.Range { return e.S }
