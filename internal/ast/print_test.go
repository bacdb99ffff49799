package ast

import (
	"math"
	"testing"

	"loxlang/internal/lexer"
	"loxlang/internal/source"
)

func tok(kind lexer.Kind, text string) lexer.Token {
	src := source.New("t.lox", text)
	return lexer.Token{Kind: kind, Range: source.Range{Source: src, Start: 0, End: len(text)}}
}

func ident(name string) lexer.Token { return tok(lexer.TokenIdent, name) }

func lit(v any) *LiteralExpr { return &LiteralExpr{Value: v} }

func TestFormatExprs(t *testing.T) {
	cases := []struct {
		name string
		node Expr
		want string
	}{
		{"number", lit(2.5), "(literal 2.5)"},
		{"integral number", lit(1.0), "(literal 1)"},
		{"huge number", lit(1e21), "(literal 1000000000000000000000)"},
		{"infinity", lit(math.Inf(1)), "(literal +Inf)"},
		{"string", lit("hi"), `(literal "hi")`},
		{"nil", lit(nil), "(literal nil)"},
		{"bool", lit(false), "(literal false)"},
		{"binary", &BinaryExpr{Op: tok(lexer.TokenPlus, "+"), Left: lit(1.0), Right: lit(2.0)}, "(+ (literal 1) (literal 2))"},
		{"logical", &LogicalExpr{Op: tok(lexer.TokenOr, "or"), Left: lit(nil), Right: lit(true)}, "(or (literal nil) (literal true))"},
		{"unary", &UnaryExpr{Op: tok(lexer.TokenBang, "!"), Expr: &GroupingExpr{Inner: lit(true)}}, "(! (group (literal true)))"},
		{"variable", &VariableExpr{Name: ident("x")}, "(var |x|)"},
		{"assign", &AssignExpr{Name: ident("x"), Value: lit(3.0)}, "(assign |x| (literal 3))"},
		{"call no args", &CallExpr{Callee: &VariableExpr{Name: ident("f")}}, "(call (var |f|))"},
		{"call", &CallExpr{Callee: &VariableExpr{Name: ident("f")}, Args: []Expr{lit(1.0), lit("a")}}, `(call (var |f|) (literal 1) (literal "a"))`},
		{"get", &GetExpr{Object: &ThisExpr{}, Name: ident("p")}, "(get (this) |p|)"},
		{"set", &SetExpr{Object: &VariableExpr{Name: ident("o")}, Name: ident("p"), Value: lit(nil)}, "(set (var |o|) |p| (literal nil))"},
		{"super", &SuperExpr{Method: ident("m")}, "(super |m|)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Format(tc.node); got != tc.want {
				t.Fatalf("Format = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestFormatStmts(t *testing.T) {
	printX := &PrintStmt{Expr: &VariableExpr{Name: ident("x")}}
	cases := []struct {
		name string
		node Stmt
		want string
	}{
		{"var without init", &VarStmt{Name: ident("a")}, "(var |a|)"},
		{"var", &VarStmt{Name: ident("a"), Init: lit(1.0)}, "(var |a| (literal 1))"},
		{"empty block", &BlockStmt{}, "(block)"},
		{"block", &BlockStmt{Stmts: []Stmt{printX, printX}}, "(block (print (var |x|)) (print (var |x|)))"},
		{"if", &IfStmt{Cond: lit(true), Then: printX}, "(if (literal true) (print (var |x|)))"},
		{"if else", &IfStmt{Cond: lit(true), Then: printX, Else: &BlockStmt{}}, "(if (literal true) (print (var |x|)) (block))"},
		{"while", &WhileStmt{Cond: lit(false), Body: printX}, "(while (literal false) (print (var |x|)))"},
		{"return", &ReturnStmt{}, "(return)"},
		{"return value", &ReturnStmt{Expr: lit(1.0)}, "(return (literal 1))"},
		{"assert", &AssertStmt{Expr: lit(true)}, "(assert (literal true))"},
		{"assert equal", &AssertEqualStmt{Left: lit(1.0), Right: lit(2.0)}, "(assert== (literal 1) (literal 2))"},
		{"expr", &ExprStmt{Expr: lit(nil)}, "(expr (literal nil))"},
		{"fun", &FuncStmt{Name: ident("f"), Params: []lexer.Token{ident("a"), ident("b")}, Body: []Stmt{printX}}, "(fun |f| (|a| |b|) (print (var |x|)))"},
		{"fun without params", &FuncStmt{Name: ident("f")}, "(fun |f| ())"},
		{"class", &ClassStmt{Name: ident("A")}, "(class |A|)"},
		{"subclass", &ClassStmt{
			Name:       ident("B"),
			Superclass: &VariableExpr{Name: ident("A")},
			Methods:    []*FuncStmt{{Kind: FuncInitializer, Name: ident("init")}},
		}, "(class |B| (var |A|) (fun |init| ()))"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Format(tc.node); got != tc.want {
				t.Fatalf("Format = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDump(t *testing.T) {
	m := &ModuleStmt{Kind: ReplLine, Stmts: []Stmt{
		&VarStmt{Name: ident("a"), Init: lit(1.0)},
		&PrintStmt{Expr: &VariableExpr{Name: ident("a")}},
	}}
	want := "(var |a| (literal 1))\n(print (var |a|))"
	if got := Dump(m); got != want {
		t.Fatalf("Dump = %q, want %q", got, want)
	}
	if got := Format(m); got != "(module repl-line (var |a| (literal 1)) (print (var |a|)))" {
		t.Fatalf("Format(module) = %s", got)
	}
	if got := Dump(&ModuleStmt{}); got != "" {
		t.Fatalf("empty module dump = %q", got)
	}
}

func TestModuleKind(t *testing.T) {
	if ReplLine.Isolated() || !SourceFile.Isolated() {
		t.Fatalf("only repl lines share the global scope")
	}
	if SourceFile.String() != "source-file" || ReplLine.String() != "repl-line" {
		t.Fatalf("unexpected kind names %q %q", SourceFile, ReplLine)
	}
}

func TestIDGen(t *testing.T) {
	var g IDGen
	if a, b := g.Next(), g.Next(); a != 1 || b != 2 {
		t.Fatalf("ids = %d, %d", a, b)
	}
}
