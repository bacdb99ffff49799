package parser

import (
	"errors"
	"fmt"
	"strconv"

	"loxlang/internal/ast"
	"loxlang/internal/diag"
	"loxlang/internal/lexer"
	"loxlang/internal/source"
)

type Parser struct {
	toks  []lexer.Token
	pos   int
	ids   *ast.IDGen
	diags *diag.Bag
}

// Parse parses a standalone source file with its own id generator.
func Parse(toks []lexer.Token, diags *diag.Bag) *ast.ModuleStmt {
	return ParseWith(toks, diags, &ast.IDGen{}, ast.SourceFile)
}

// ParseWith parses toks into a module of the given kind. Node ids come from
// ids so that several modules can share one depth table. Errors go to diags;
// the returned module holds every statement that parsed cleanly.
func ParseWith(toks []lexer.Token, diags *diag.Bag, ids *ast.IDGen, kind ast.ModuleKind) *ast.ModuleStmt {
	if len(toks) == 0 || toks[len(toks)-1].Kind != lexer.TokenEOF {
		panic("parser: token stream must end with EOF")
	}
	p := &Parser{toks: toks, ids: ids, diags: diags}
	return p.parseModule(kind)
}

// recovery unwinds the parser to the enclosing declaration after an error
// has been recorded. It never escapes the package.
type recovery struct{}

func (p *Parser) parseModule(kind ast.ModuleKind) *ast.ModuleStmt {
	first := p.peek()
	stmts := []ast.Stmt{}
	for !p.at(lexer.TokenEOF) {
		if st := p.parseDeclaration(); st != nil {
			stmts = append(stmts, st)
		}
	}
	return &ast.ModuleStmt{Kind: kind, Stmts: stmts, S: joinSpan(first.Range, p.peek().Range)}
}

// parseDeclaration returns nil when the declaration was broken; the parser is
// then positioned at the next statement boundary.
func (p *Parser) parseDeclaration() (st ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(recovery); !ok {
				panic(r)
			}
			p.synchronize()
			st = nil
		}
	}()
	switch {
	case p.match(lexer.TokenClass):
		return p.parseClass()
	case p.match(lexer.TokenFun):
		return p.parseFunction(ast.FuncFunction)
	case p.match(lexer.TokenVar):
		return p.parseVar()
	default:
		return p.parseStmt()
	}
}

// synchronize skips the offending token, then stops after a `;` or in front
// of a token that can start a statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.at(lexer.TokenEOF) {
		if p.prev().Kind == lexer.TokenSemicolon {
			return
		}
		switch p.peek().Kind {
		case lexer.TokenVar, lexer.TokenFun, lexer.TokenClass,
			lexer.TokenIf, lexer.TokenWhile, lexer.TokenFor,
			lexer.TokenPrint, lexer.TokenReturn, lexer.TokenAssert:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseClass() ast.Stmt {
	classTok := p.prev()
	name := p.expect(lexer.TokenIdent, "class name")
	var super *ast.VariableExpr
	if p.match(lexer.TokenLt) {
		superTok := p.expect(lexer.TokenIdent, "superclass name")
		super = &ast.VariableExpr{ID: p.ids.Next(), Name: superTok, S: superTok.Range}
	}
	p.expect(lexer.TokenLBrace, "'{' at the start of class body")
	methods := []*ast.FuncStmt{}
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		methods = append(methods, p.parseFunction(ast.FuncMethod))
	}
	rbrace := p.expect(lexer.TokenRBrace, "'}' at the end of class body")
	return &ast.ClassStmt{Name: name, Superclass: super, Methods: methods, S: joinSpan(classTok.Range, rbrace.Range)}
}

// parseFunction parses everything after `fun` (or the method name position
// inside a class body).
func (p *Parser) parseFunction(kind ast.FuncKind) *ast.FuncStmt {
	start := p.peek()
	if kind == ast.FuncFunction {
		start = p.prev()
	}
	name := p.expect(lexer.TokenIdent, kind.String()+" name")
	p.expect(lexer.TokenLParen, "'(' after "+kind.String()+" name")
	params := []lexer.Token{}
	if !p.at(lexer.TokenRParen) {
		for {
			params = append(params, p.expect(lexer.TokenIdent, "parameter name"))
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.expect(lexer.TokenRParen, "')' after parameters")
	p.expect(lexer.TokenLBrace, "'{' before "+kind.String()+" body")
	body, rbrace := p.parseBlockBody()
	if kind == ast.FuncMethod && name.Lexeme() == "init" {
		kind = ast.FuncInitializer
	}
	return &ast.FuncStmt{Kind: kind, Name: name, Params: params, Body: body, S: joinSpan(start.Range, rbrace.Range)}
}

func (p *Parser) parseVar() ast.Stmt {
	varTok := p.prev()
	name := p.expect(lexer.TokenIdent, "variable name")
	var init ast.Expr
	if p.match(lexer.TokenEq) {
		init = p.parseExpr()
	}
	semi := p.expect(lexer.TokenSemicolon, "';' after variable declaration")
	return &ast.VarStmt{Name: name, Init: init, S: joinSpan(varTok.Range, semi.Range)}
}

func (p *Parser) parseStmt() ast.Stmt {
	switch {
	case p.match(lexer.TokenFor):
		return p.parseFor()
	case p.match(lexer.TokenIf):
		return p.parseIf()
	case p.match(lexer.TokenPrint):
		return p.parsePrint()
	case p.match(lexer.TokenAssert):
		return p.parseAssert()
	case p.match(lexer.TokenWhile):
		return p.parseWhile()
	case p.match(lexer.TokenReturn):
		return p.parseReturn()
	case p.match(lexer.TokenLBrace):
		lbrace := p.prev()
		stmts, rbrace := p.parseBlockBody()
		return &ast.BlockStmt{Stmts: stmts, S: joinSpan(lbrace.Range, rbrace.Range)}
	}
	ex := p.parseExpr()
	semi := p.expect(lexer.TokenSemicolon, "';' after expression")
	return &ast.ExprStmt{Expr: ex, S: joinSpan(ex.Span(), semi.Range)}
}

// parseBlockBody parses declarations up to and including the closing brace.
func (p *Parser) parseBlockBody() ([]ast.Stmt, lexer.Token) {
	stmts := []ast.Stmt{}
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		if st := p.parseDeclaration(); st != nil {
			stmts = append(stmts, st)
		}
	}
	rbrace := p.expect(lexer.TokenRBrace, "'}' after block")
	return stmts, rbrace
}

// parseFor desugars `for (init; cond; incr) body` into
// `{ init; while (cond) { body; incr; } }`.
func (p *Parser) parseFor() ast.Stmt {
	forTok := p.prev()
	p.expect(lexer.TokenLParen, "'(' after 'for'")

	var init ast.Stmt
	switch {
	case p.match(lexer.TokenSemicolon):
	case p.match(lexer.TokenVar):
		init = p.parseVar()
	default:
		ex := p.parseExpr()
		semi := p.expect(lexer.TokenSemicolon, "';' after loop initializer")
		init = &ast.ExprStmt{Expr: ex, S: joinSpan(ex.Span(), semi.Range)}
	}

	var cond ast.Expr
	if !p.at(lexer.TokenSemicolon) {
		cond = p.parseExpr()
	}
	condSemi := p.expect(lexer.TokenSemicolon, "';' after loop condition")
	if cond == nil {
		cond = &ast.LiteralExpr{Value: true, S: condSemi.Range}
	}

	var incr ast.Expr
	if !p.at(lexer.TokenRParen) {
		incr = p.parseExpr()
	}
	p.expect(lexer.TokenRParen, "')' after for clauses")

	body := p.parseStmt()
	span := joinSpan(forTok.Range, body.Span())
	if incr != nil {
		body = &ast.BlockStmt{
			Stmts: []ast.Stmt{body, &ast.ExprStmt{Expr: incr, S: incr.Span()}},
			S:     body.Span(),
		}
	}
	var loop ast.Stmt = &ast.WhileStmt{Cond: cond, Body: body, S: span}
	if init != nil {
		loop = &ast.BlockStmt{Stmts: []ast.Stmt{init, loop}, S: span}
	}
	return loop
}

func (p *Parser) parseIf() ast.Stmt {
	ifTok := p.prev()
	p.expect(lexer.TokenLParen, "'(' before condition")
	cond := p.parseExpr()
	p.expect(lexer.TokenRParen, "')' after condition")
	then := p.parseStmt()
	end := then.Span()
	var els ast.Stmt
	if p.match(lexer.TokenElse) {
		els = p.parseStmt()
		end = els.Span()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els, S: joinSpan(ifTok.Range, end)}
}

func (p *Parser) parseWhile() ast.Stmt {
	whileTok := p.prev()
	p.expect(lexer.TokenLParen, "'(' before condition")
	cond := p.parseExpr()
	p.expect(lexer.TokenRParen, "')' after condition")
	body := p.parseStmt()
	return &ast.WhileStmt{Cond: cond, Body: body, S: joinSpan(whileTok.Range, body.Span())}
}

func (p *Parser) parsePrint() ast.Stmt {
	printTok := p.prev()
	ex := p.parseExpr()
	semi := p.expect(lexer.TokenSemicolon, "';' after printed value")
	return &ast.PrintStmt{Expr: ex, S: joinSpan(printTok.Range, semi.Range)}
}

// parseAssert splits out `assert a == b;` so failures can show both sides.
func (p *Parser) parseAssert() ast.Stmt {
	kw := p.prev()
	ex := p.parseExpr()
	semi := p.expect(lexer.TokenSemicolon, "';' after asserted value")
	span := joinSpan(kw.Range, semi.Range)
	if bin, ok := ex.(*ast.BinaryExpr); ok && bin.Op.Kind == lexer.TokenEqEq {
		return &ast.AssertEqualStmt{Keyword: kw, Left: bin.Left, Right: bin.Right, S: span}
	}
	return &ast.AssertStmt{Keyword: kw, Expr: ex, S: span}
}

func (p *Parser) parseReturn() ast.Stmt {
	kw := p.prev()
	var ex ast.Expr
	if !p.at(lexer.TokenSemicolon) {
		ex = p.parseExpr()
	}
	semi := p.expect(lexer.TokenSemicolon, "';' after return value")
	return &ast.ReturnStmt{Keyword: kw, Expr: ex, S: joinSpan(kw.Range, semi.Range)}
}

func (p *Parser) parseExpr() ast.Expr { return p.parseAssignment() }

// parseAssignment parses the left side as an ordinary expression and only
// then checks that it can be assigned to.
func (p *Parser) parseAssignment() ast.Expr {
	lhs := p.parseBinary(precOr)
	if !p.match(lexer.TokenEq) {
		return lhs
	}
	eq := p.prev()
	rhs := p.parseAssignment()
	span := joinSpan(lhs.Span(), rhs.Span())
	switch target := lhs.(type) {
	case *ast.VariableExpr:
		return &ast.AssignExpr{ID: p.ids.Next(), Name: target.Name, Value: rhs, S: span}
	case *ast.GetExpr:
		return &ast.SetExpr{Object: target.Object, Name: target.Name, Value: rhs, S: span}
	}
	p.errorAt(eq.Range, "invalid assignment target")
	return lhs
}

const (
	precOr = iota + 1
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
)

// Precedence climbing over the left-associative binary levels.
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		prec := infixPrec(p.peek().Kind)
		if prec < minPrec {
			return left
		}
		op := p.advance()
		right := p.parseBinary(prec + 1)
		span := joinSpan(left.Span(), right.Span())
		if prec == precOr || prec == precAnd {
			left = &ast.LogicalExpr{Op: op, Left: left, Right: right, S: span}
		} else {
			left = &ast.BinaryExpr{Op: op, Left: left, Right: right, S: span}
		}
	}
}

func infixPrec(k lexer.Kind) int {
	switch k {
	case lexer.TokenStar, lexer.TokenSlash:
		return precFactor
	case lexer.TokenPlus, lexer.TokenMinus:
		return precTerm
	case lexer.TokenLt, lexer.TokenLtEq, lexer.TokenGt, lexer.TokenGtEq:
		return precComparison
	case lexer.TokenEqEq, lexer.TokenBangEq:
		return precEquality
	case lexer.TokenAnd:
		return precAnd
	case lexer.TokenOr:
		return precOr
	default:
		return -1
	}
}

func (p *Parser) parseUnary() ast.Expr {
	if p.at(lexer.TokenBang) || p.at(lexer.TokenMinus) {
		op := p.advance()
		ex := p.parseUnary()
		return &ast.UnaryExpr{Op: op, Expr: ex, S: joinSpan(op.Range, ex.Span())}
	}
	return p.parseCall()
}

// parseCall handles chains like `a.b.c(d)(e)`.
func (p *Parser) parseCall() ast.Expr {
	ex := p.parsePrimary()
	for {
		switch {
		case p.match(lexer.TokenLParen):
			args := []ast.Expr{}
			if !p.at(lexer.TokenRParen) {
				for {
					args = append(args, p.parseExpr())
					if !p.match(lexer.TokenComma) {
						break
					}
				}
			}
			rparen := p.expect(lexer.TokenRParen, "')' after argument list")
			ex = &ast.CallExpr{Callee: ex, Paren: rparen, Args: args, S: joinSpan(ex.Span(), rparen.Range)}
		case p.match(lexer.TokenDot):
			name := p.expect(lexer.TokenIdent, "property name")
			ex = &ast.GetExpr{Object: ex, Name: name, S: joinSpan(ex.Span(), name.Range)}
		default:
			return ex
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenFalse:
		p.advance()
		return &ast.LiteralExpr{Value: false, S: tok.Range}
	case lexer.TokenTrue:
		p.advance()
		return &ast.LiteralExpr{Value: true, S: tok.Range}
	case lexer.TokenNil:
		p.advance()
		return &ast.LiteralExpr{Value: nil, S: tok.Range}
	case lexer.TokenNumber:
		p.advance()
		// Digit runs too large for a float64 become +Inf.
		n, err := strconv.ParseFloat(tok.Lexeme(), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			p.errorAt(tok.Range, fmt.Sprintf("invalid number literal %s", tok.Lexeme()))
		}
		return &ast.LiteralExpr{Value: n, S: tok.Range}
	case lexer.TokenString:
		p.advance()
		return &ast.LiteralExpr{Value: unquote(tok.Lexeme()), S: tok.Range}
	case lexer.TokenSuper:
		p.advance()
		p.expect(lexer.TokenDot, "'.' after 'super'")
		method := p.expect(lexer.TokenIdent, "superclass method name")
		return &ast.SuperExpr{
			ID:      p.ids.Next(),
			ThisID:  p.ids.Next(),
			Keyword: tok,
			Method:  method,
			S:       joinSpan(tok.Range, method.Range),
		}
	case lexer.TokenThis:
		p.advance()
		return &ast.ThisExpr{ID: p.ids.Next(), Keyword: tok, S: tok.Range}
	case lexer.TokenIdent:
		p.advance()
		return &ast.VariableExpr{ID: p.ids.Next(), Name: tok, S: tok.Range}
	case lexer.TokenLParen:
		p.advance()
		inner := p.parseExpr()
		rparen := p.expect(lexer.TokenRParen, "')' after parenthesized expression")
		return &ast.GroupingExpr{Inner: inner, S: joinSpan(tok.Range, rparen.Range)}
	}
	p.errorHere("expected expression")
	panic(recovery{})
}

// helpers
func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) prev() lexer.Token { return p.toks[p.pos-1] }

func (p *Parser) at(k lexer.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(k lexer.Kind) bool {
	if p.at(k) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) advance() lexer.Token {
	t := p.peek()
	if t.Kind != lexer.TokenEOF {
		p.pos++
	}
	return t
}

// expect consumes a token of kind k or records an error and unwinds to the
// enclosing declaration. what describes the expected token.
func (p *Parser) expect(k lexer.Kind, what string) lexer.Token {
	if p.at(k) {
		return p.advance()
	}
	p.errorHere(fmt.Sprintf("received %s, expected %s", p.peek().Kind, what))
	panic(recovery{})
}

func (p *Parser) errorHere(msg string) {
	p.errorAt(p.peek().Range, msg)
}

func (p *Parser) errorAt(at source.Range, msg string) {
	p.diags.Error(at, msg)
}

func joinSpan(a source.Range, b source.Range) source.Range {
	return source.Join(a, b)
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
