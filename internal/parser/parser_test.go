package parser

import (
	"math"
	"strings"
	"testing"

	"loxlang/internal/ast"
	"loxlang/internal/diag"
	"loxlang/internal/lexer"
	"loxlang/internal/source"
)

func parse(t *testing.T, text string) (*ast.ModuleStmt, *diag.Bag) {
	t.Helper()
	diags := &diag.Bag{}
	toks := lexer.Lex(source.New("test.lox", text), diags)
	if !diags.OK() {
		t.Fatalf("unexpected lex diags: %+v", diags.Items)
	}
	return Parse(toks, diags), diags
}

func parseOK(t *testing.T, text string) *ast.ModuleStmt {
	t.Helper()
	mod, diags := parse(t, text)
	if !diags.OK() {
		t.Fatalf("unexpected diags:\n%s", diag.Report(diags))
	}
	return mod
}

func TestParseTree(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{name: "precedence", src: `print 1 + 2 * 3;`, want: `(print (+ (literal 1) (* (literal 2) (literal 3))))`},
		{name: "left_assoc", src: `1 - 2 - 3;`, want: `(expr (- (- (literal 1) (literal 2)) (literal 3)))`},
		{name: "grouping", src: `(1 + 2) * 3;`, want: `(expr (* (group (+ (literal 1) (literal 2))) (literal 3)))`},
		{name: "logical", src: `a or b and c;`, want: `(expr (or (var |a|) (and (var |b|) (var |c|))))`},
		{name: "comparison", src: `1 < 2 == true;`, want: `(expr (== (< (literal 1) (literal 2)) (literal true)))`},
		{name: "unary", src: `!-x;`, want: `(expr (! (- (var |x|))))`},
		{name: "assign_right_assoc", src: `a = b = 1;`, want: `(expr (assign |a| (assign |b| (literal 1))))`},
		{name: "set", src: `a.b.c = "s";`, want: `(expr (set (get (var |a|) |b|) |c| (literal "s")))`},
		{name: "call_chain", src: `a.b.c(d)(e);`, want: `(expr (call (call (get (get (var |a|) |b|) |c|) (var |d|)) (var |e|)))`},
		{name: "call_no_args", src: `f();`, want: `(expr (call (var |f|)))`},
		{name: "var", src: `var x;`, want: `(var |x|)`},
		{name: "var_init", src: `var x = nil;`, want: `(var |x| (literal nil))`},
		{name: "if_else", src: `if (x) print 1; else print 2;`, want: `(if (var |x|) (print (literal 1)) (print (literal 2)))`},
		{name: "while", src: `while (true) {}`, want: `(while (literal true) (block))`},
		{name: "return", src: `fun f(a, b) { return; }`, want: `(fun |f| (|a| |b|) (return))`},
		{name: "class", src: `class B < A { m() { return this; } }`, want: `(class |B| (var |A|) (fun |m| () (return (this))))`},
		{name: "super", src: `class B < A { m() { super.m(); } }`, want: `(class |B| (var |A|) (fun |m| () (expr (call (super |m|)))))`},
		{name: "assert", src: `assert x;`, want: `(assert (var |x|))`},
		{name: "assert_equal", src: `assert 1 == 2;`, want: `(assert== (literal 1) (literal 2))`},
		{name: "assert_not_equal_stays_plain", src: `assert 1 != 2;`, want: `(assert (!= (literal 1) (literal 2)))`},
		{name: "number", src: `12.5;`, want: `(expr (literal 12.5))`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mod := parseOK(t, tc.src)
			if got := ast.Dump(mod); got != tc.want {
				t.Fatalf("tree mismatch\n got: %s\nwant: %s", got, tc.want)
			}
		})
	}
}

func TestParseForDesugars(t *testing.T) {
	mod := parseOK(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	want := `(block (var |i| (literal 0)) (while (< (var |i|) (literal 3)) (block (print (var |i|)) (expr (assign |i| (+ (var |i|) (literal 1)))))))`
	if got := ast.Dump(mod); got != want {
		t.Fatalf("tree mismatch\n got: %s\nwant: %s", got, want)
	}

	mod = parseOK(t, `for (;;) {}`)
	want = `(while (literal true) (block))`
	if got := ast.Dump(mod); got != want {
		t.Fatalf("tree mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestParseInitializerKind(t *testing.T) {
	mod := parseOK(t, `class A { init(x) {} other() {} } fun init() {}`)
	class := mod.Stmts[0].(*ast.ClassStmt)
	if class.Methods[0].Kind != ast.FuncInitializer {
		t.Fatalf("expected init to be an initializer, got %v", class.Methods[0].Kind)
	}
	if class.Methods[1].Kind != ast.FuncMethod {
		t.Fatalf("expected plain method, got %v", class.Methods[1].Kind)
	}
	if fn := mod.Stmts[1].(*ast.FuncStmt); fn.Kind != ast.FuncFunction {
		t.Fatalf("top-level init must stay a function, got %v", fn.Kind)
	}
}

func TestParseDistinctNodeIDs(t *testing.T) {
	mod := parseOK(t, `x; x;`)
	a := mod.Stmts[0].(*ast.ExprStmt).Expr.(*ast.VariableExpr)
	b := mod.Stmts[1].(*ast.ExprStmt).Expr.(*ast.VariableExpr)
	if a.ID == 0 || b.ID == 0 || a.ID == b.ID {
		t.Fatalf("expected distinct non-zero ids, got %d and %d", a.ID, b.ID)
	}
}

func TestParseWithSharedIDGen(t *testing.T) {
	ids := &ast.IDGen{}
	var seen []ast.NodeID
	for _, line := range []string{"a;", "b;"} {
		diags := &diag.Bag{}
		toks := lexer.Lex(source.NewSnippet(line), diags)
		mod := ParseWith(toks, diags, ids, ast.ReplLine)
		if mod.Kind != ast.ReplLine {
			t.Fatalf("expected repl-line module, got %v", mod.Kind)
		}
		seen = append(seen, mod.Stmts[0].(*ast.ExprStmt).Expr.(*ast.VariableExpr).ID)
	}
	if seen[0] == seen[1] {
		t.Fatalf("ids collided across modules: %v", seen)
	}
}

func TestParseSpans(t *testing.T) {
	mod := parseOK(t, "var a = 1 +\n  2;")
	v := mod.Stmts[0].(*ast.VarStmt)
	if got := v.S.Text(); got != "var a = 1 +\n  2;" {
		t.Fatalf("unexpected var span %q", got)
	}
	if got := v.Init.Span().Text(); got != "1 +\n  2" {
		t.Fatalf("unexpected init span %q", got)
	}
}

func TestParseHugeNumberIsInfinity(t *testing.T) {
	mod := parseOK(t, "print "+strings.Repeat("9", 400)+";")
	lit := mod.Stmts[0].(*ast.PrintStmt).Expr.(*ast.LiteralExpr)
	if n, ok := lit.Value.(float64); !ok || !math.IsInf(n, 1) {
		t.Fatalf("expected +Inf, got %#v", lit.Value)
	}
}
