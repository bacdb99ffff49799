package ast

import (
	"fmt"
	"strconv"
	"strings"

	"loxlang/internal/lexer"
)

// Format renders a node as an S-expression, e.g.
// `(print (+ (literal 1) (literal 2)))`. Names are wrapped in bars.
func Format(node any) string {
	var p printer
	p.node(node)
	return p.sb.String()
}

// Dump renders a module with one top-level statement per line.
func Dump(m *ModuleStmt) string {
	lines := make([]string, 0, len(m.Stmts))
	for _, s := range m.Stmts {
		lines = append(lines, Format(s))
	}
	return strings.Join(lines, "\n")
}

type printer struct {
	sb strings.Builder
}

// wrap writes `(head part part ...)`. Nil parts are skipped so optional
// children simply disappear.
func (p *printer) wrap(head string, parts ...any) {
	p.sb.WriteByte('(')
	p.sb.WriteString(head)
	for _, part := range parts {
		if isNil(part) {
			continue
		}
		p.sb.WriteByte(' ')
		p.node(part)
	}
	p.sb.WriteByte(')')
}

func (p *printer) node(n any) {
	switch n := n.(type) {
	case string:
		p.sb.WriteString(n)
	case lexer.Token:
		p.sb.WriteString("|" + n.Lexeme() + "|")
	case []lexer.Token:
		parts := make([]any, len(n))
		for i, t := range n {
			parts[i] = t
		}
		p.list(parts)
	case []Expr:
		for i, e := range n {
			if i > 0 {
				p.sb.WriteByte(' ')
			}
			p.node(e)
		}
	case []Stmt:
		for i, s := range n {
			if i > 0 {
				p.sb.WriteByte(' ')
			}
			p.node(s)
		}

	// Expressions
	case *AssignExpr:
		p.wrap("assign", n.Name, n.Value)
	case *BinaryExpr:
		p.wrap(n.Op.Lexeme(), n.Left, n.Right)
	case *CallExpr:
		p.wrap("call", n.Callee, nonEmptyExprs(n.Args))
	case *GetExpr:
		p.wrap("get", n.Object, n.Name)
	case *GroupingExpr:
		p.wrap("group", n.Inner)
	case *LiteralExpr:
		p.wrap("literal", literalText(n.Value))
	case *LogicalExpr:
		p.wrap(n.Op.Lexeme(), n.Left, n.Right)
	case *SetExpr:
		p.wrap("set", n.Object, n.Name, n.Value)
	case *SuperExpr:
		p.wrap("super", n.Method)
	case *ThisExpr:
		p.wrap("this")
	case *UnaryExpr:
		p.wrap(n.Op.Lexeme(), n.Expr)
	case *VariableExpr:
		p.wrap("var", n.Name)

	// Statements
	case *ModuleStmt:
		p.wrap("module", n.Kind.String(), nonEmptyStmts(n.Stmts))
	case *AssertStmt:
		p.wrap("assert", n.Expr)
	case *AssertEqualStmt:
		p.wrap("assert==", n.Left, n.Right)
	case *BlockStmt:
		p.wrap("block", nonEmptyStmts(n.Stmts))
	case *ClassStmt:
		parts := []any{n.Name}
		if n.Superclass != nil {
			parts = append(parts, n.Superclass)
		}
		for _, m := range n.Methods {
			parts = append(parts, m)
		}
		p.wrap("class", parts...)
	case *ExprStmt:
		p.wrap("expr", n.Expr)
	case *FuncStmt:
		p.wrap("fun", n.Name, n.Params, nonEmptyStmts(n.Body))
	case *IfStmt:
		p.wrap("if", n.Cond, n.Then, n.Else)
	case *PrintStmt:
		p.wrap("print", n.Expr)
	case *ReturnStmt:
		p.wrap("return", n.Expr)
	case *VarStmt:
		p.wrap("var", n.Name, n.Init)
	case *WhileStmt:
		p.wrap("while", n.Cond, n.Body)
	default:
		panic(fmt.Sprintf("ast: cannot format %T", n))
	}
}

func (p *printer) list(parts []any) {
	p.sb.WriteByte('(')
	for i, part := range parts {
		if i > 0 {
			p.sb.WriteByte(' ')
		}
		p.node(part)
	}
	p.sb.WriteByte(')')
}

func nonEmptyExprs(es []Expr) any {
	if len(es) == 0 {
		return nil
	}
	return es
}

func nonEmptyStmts(ss []Stmt) any {
	if len(ss) == 0 {
		return nil
	}
	return ss
}

// isNil also catches typed nil pointers, which is how an absent
// superclass arrives here.
func isNil(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case *VariableExpr:
		return v == nil
	case *BlockStmt:
		return v == nil
	}
	return false
}

func literalText(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
