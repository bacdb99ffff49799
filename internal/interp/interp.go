package interp

import (
	"fmt"
	"log/slog"

	"loxlang/internal/ast"
	"loxlang/internal/config"
	"loxlang/internal/lexer"
	"loxlang/internal/resolver"
	"loxlang/internal/source"
)

// maxCallDepth bounds Lox recursion so runaway programs fail with a runtime
// error instead of exhausting the Go stack.
const maxCallDepth = 10000

// Runtime executes one module against an environment chain.
type Runtime struct {
	env    *Env
	locals *resolver.LocalDepth
	opts   config.Options
	host   Host
	log    *slog.Logger
	depth  int
}

// completion is how statements report control flow. A returning completion
// unwinds blocks and loops up to the nearest call.
type completion struct {
	returning bool
	value     Value
}

var normal = completion{}

func (rt *Runtime) execBlock(stmts []ast.Stmt, env *Env) (completion, error) {
	prev := rt.env
	rt.env = env
	defer func() { rt.env = prev }()
	for _, st := range stmts {
		c, err := rt.exec(st)
		if err != nil || c.returning {
			return c, err
		}
	}
	return normal, nil
}

func (rt *Runtime) exec(st ast.Stmt) (completion, error) {
	switch s := st.(type) {
	case *ast.AssertStmt:
		v, err := rt.eval(s.Expr)
		if err != nil {
			return normal, err
		}
		if !v.truthy() {
			return normal, runtimeErrorf(s.Expr.Span(), "assertion failed")
		}
		return normal, nil
	case *ast.AssertEqualStmt:
		l, err := rt.eval(s.Left)
		if err != nil {
			return normal, err
		}
		r, err := rt.eval(s.Right)
		if err != nil {
			return normal, err
		}
		if !valueEq(l, r) {
			return normal, runtimeErrorf(source.Join(s.Left.Span(), s.Right.Span()),
				"assertion failed: %s != %s", l.Debug(), r.Debug())
		}
		return normal, nil
	case *ast.BlockStmt:
		return rt.execBlock(s.Stmts, NewEnv(rt.env))
	case *ast.ClassStmt:
		return normal, rt.execClass(s)
	case *ast.ExprStmt:
		_, err := rt.eval(s.Expr)
		return normal, err
	case *ast.FuncStmt:
		rt.env.Define(s.Name.Lexeme(), Value{K: VFunction, F: &Function{Decl: s, Closure: rt.env}})
		return normal, nil
	case *ast.IfStmt:
		cond, err := rt.eval(s.Cond)
		if err != nil {
			return normal, err
		}
		if cond.truthy() {
			return rt.exec(s.Then)
		}
		if s.Else != nil {
			return rt.exec(s.Else)
		}
		return normal, nil
	case *ast.PrintStmt:
		v, err := rt.eval(s.Expr)
		if err != nil {
			return normal, err
		}
		if !rt.opts.DisablePrint {
			rt.host.WriteLine(v.String())
		}
		return normal, nil
	case *ast.ReturnStmt:
		v := nilValue()
		if s.Expr != nil {
			var err error
			v, err = rt.eval(s.Expr)
			if err != nil {
				return normal, err
			}
		}
		return completion{returning: true, value: v}, nil
	case *ast.VarStmt:
		v := nilValue()
		if s.Init != nil {
			var err error
			v, err = rt.eval(s.Init)
			if err != nil {
				return normal, err
			}
		}
		rt.env.Define(s.Name.Lexeme(), v)
		return normal, nil
	case *ast.WhileStmt:
		for {
			cond, err := rt.eval(s.Cond)
			if err != nil {
				return normal, err
			}
			if !cond.truthy() {
				return normal, nil
			}
			c, err := rt.exec(s.Body)
			if err != nil || c.returning {
				return c, err
			}
		}
	default:
		panic(fmt.Sprintf("interp: unexpected statement %T", st))
	}
}

// execClass binds the name to nil first so method bodies can refer to the
// class, then assigns the finished class.
func (rt *Runtime) execClass(s *ast.ClassStmt) error {
	name := s.Name.Lexeme()
	rt.env.Define(name, nilValue())

	var super *Class
	if s.Superclass != nil {
		v, err := rt.eval(s.Superclass)
		if err != nil {
			return err
		}
		if v.K != VClass {
			return runtimeErrorf(s.Superclass.Span(), "superclass must be a class")
		}
		super = v.C
	}

	closure := rt.env
	if super != nil {
		closure = NewEnv(rt.env)
		closure.Define("super", Value{K: VClass, C: super})
	}

	cls := &Class{Name: name, Super: super, Methods: map[string]*Function{}}
	for _, m := range s.Methods {
		fn := &Function{Decl: m, Closure: closure}
		if m.Kind == ast.FuncInitializer {
			cls.Init = fn
			continue
		}
		cls.Methods[m.Name.Lexeme()] = fn
	}
	rt.env.Define(name, Value{K: VClass, C: cls})
	return nil
}

func (rt *Runtime) eval(ex ast.Expr) (Value, error) {
	switch e := ex.(type) {
	case *ast.AssignExpr:
		v, err := rt.eval(e.Value)
		if err != nil {
			return nilValue(), err
		}
		if depth, ok := rt.locals.Depth(e.ID); ok {
			rt.env.AssignAt(depth, e.Name, v)
			return v, nil
		}
		if err := rt.env.Assign(e.Name, v); err != nil {
			return nilValue(), err
		}
		return v, nil
	case *ast.BinaryExpr:
		l, err := rt.eval(e.Left)
		if err != nil {
			return nilValue(), err
		}
		r, err := rt.eval(e.Right)
		if err != nil {
			return nilValue(), err
		}
		return binaryOp(e.Op, l, r, e.S)
	case *ast.CallExpr:
		callee, err := rt.eval(e.Callee)
		if err != nil {
			return nilValue(), err
		}
		args := make([]Value, 0, len(e.Args))
		for _, a := range e.Args {
			v, err := rt.eval(a)
			if err != nil {
				return nilValue(), err
			}
			args = append(args, v)
		}
		return rt.call(e.S, callee, args)
	case *ast.GetExpr:
		obj, err := rt.eval(e.Object)
		if err != nil {
			return nilValue(), err
		}
		if obj.K != VInstance {
			return nilValue(), runtimeErrorf(e.Name.Range, "only instances have properties")
		}
		return obj.I.Get(e.Name)
	case *ast.GroupingExpr:
		return rt.eval(e.Inner)
	case *ast.LiteralExpr:
		return literalValue(e.Value), nil
	case *ast.LogicalExpr:
		l, err := rt.eval(e.Left)
		if err != nil {
			return nilValue(), err
		}
		if e.Op.Kind == lexer.TokenOr {
			if l.truthy() {
				return l, nil
			}
		} else if !l.truthy() {
			return l, nil
		}
		return rt.eval(e.Right)
	case *ast.SetExpr:
		obj, err := rt.eval(e.Object)
		if err != nil {
			return nilValue(), err
		}
		if obj.K != VInstance {
			return nilValue(), runtimeErrorf(e.Name.Range, "only instances have properties")
		}
		v, err := rt.eval(e.Value)
		if err != nil {
			return nilValue(), err
		}
		obj.I.Set(e.Name, v)
		return v, nil
	case *ast.SuperExpr:
		return rt.evalSuper(e)
	case *ast.ThisExpr:
		return rt.lookupVariable(e.ID, e.Keyword)
	case *ast.UnaryExpr:
		v, err := rt.eval(e.Expr)
		if err != nil {
			return nilValue(), err
		}
		switch e.Op.Kind {
		case lexer.TokenBang:
			return boolValue(!v.truthy()), nil
		case lexer.TokenMinus:
			if v.K != VNumber {
				return nilValue(), runtimeErrorf(e.S, "unsupported operand: -%s", v.K)
			}
			return numberValue(-v.N), nil
		}
		panic(fmt.Sprintf("interp: unexpected unary operator %s", e.Op.Kind))
	case *ast.VariableExpr:
		return rt.lookupVariable(e.ID, e.Name)
	default:
		panic(fmt.Sprintf("interp: unexpected expression %T", ex))
	}
}

// evalSuper finds the method on the superclass captured by the class
// declaration and binds it to the current `this`. Both names are read at
// the depths the resolver recorded for them.
func (rt *Runtime) evalSuper(e *ast.SuperExpr) (Value, error) {
	superDepth, ok := rt.locals.Depth(e.ID)
	if !ok {
		panic("interp: unresolved 'super'")
	}
	thisDepth, ok := rt.locals.Depth(e.ThisID)
	if !ok {
		panic("interp: unresolved 'this' for 'super'")
	}
	super := rt.env.GetAt(superDepth, "super").C
	this := rt.env.GetAt(thisDepth, "this").I
	m, found := super.FindMethod(e.Method.Lexeme())
	if !found {
		return nilValue(), runtimeErrorf(e.Method.Range, "undefined property '%s'", e.Method.Lexeme())
	}
	return Value{K: VFunction, F: m.Bind(this)}, nil
}

func (rt *Runtime) lookupVariable(id ast.NodeID, name lexer.Token) (Value, error) {
	if depth, ok := rt.locals.Depth(id); ok {
		return rt.env.GetAt(depth, name.Lexeme()), nil
	}
	return rt.env.Get(name)
}

func binaryOp(op lexer.Token, l, r Value, at source.Range) (Value, error) {
	switch op.Kind {
	case lexer.TokenEqEq:
		return boolValue(valueEq(l, r)), nil
	case lexer.TokenBangEq:
		return boolValue(!valueEq(l, r)), nil
	case lexer.TokenPlus:
		if l.K == VString && r.K == VString {
			return stringValue(l.S + r.S), nil
		}
	}
	if l.K != VNumber || r.K != VNumber {
		return nilValue(), runtimeErrorf(at, "unsupported operation: %s %s %s", l.K, op.Lexeme(), r.K)
	}
	switch op.Kind {
	case lexer.TokenPlus:
		return numberValue(l.N + r.N), nil
	case lexer.TokenMinus:
		return numberValue(l.N - r.N), nil
	case lexer.TokenStar:
		return numberValue(l.N * r.N), nil
	case lexer.TokenSlash:
		return numberValue(l.N / r.N), nil
	case lexer.TokenLt:
		return boolValue(l.N < r.N), nil
	case lexer.TokenLtEq:
		return boolValue(l.N <= r.N), nil
	case lexer.TokenGt:
		return boolValue(l.N > r.N), nil
	case lexer.TokenGtEq:
		return boolValue(l.N >= r.N), nil
	}
	panic(fmt.Sprintf("interp: unexpected binary operator %s", op.Kind))
}

func isCallable(v Value) bool {
	return v.K == VFunction || v.K == VNative || v.K == VClass
}

// call invokes any callable value. at is the call expression, used for
// error locations.
func (rt *Runtime) call(at source.Range, callee Value, args []Value) (Value, error) {
	switch callee.K {
	case VFunction:
		return rt.callFunction(at, callee.F, args)
	case VNative:
		n := callee.Nat
		if err := checkArity(at, callee, n.Arity, len(args), config.Options{}); err != nil {
			return nilValue(), err
		}
		v, ok, err := rt.callBuiltin(n.Name, at, args)
		if !ok {
			panic(fmt.Sprintf("interp: native %q has no implementation", n.Name))
		}
		return v, err
	case VClass:
		inst := newInstance(callee.C)
		if init := callee.C.initializer(); init != nil {
			if _, err := rt.callFunction(at, init.Bind(inst), args); err != nil {
				return nilValue(), err
			}
		} else if err := checkArity(at, callee, 0, len(args), rt.opts); err != nil {
			return nilValue(), err
		}
		return Value{K: VInstance, I: inst}, nil
	default:
		return nilValue(), runtimeErrorf(at, "%s is not callable", callee.Debug())
	}
}

func checkArity(at source.Range, callee Value, want, got int, opts config.Options) error {
	switch {
	case got < want && !opts.AllowUnderApplication:
		return runtimeErrorf(at, "too few arguments for %s", callee)
	case got > want && !opts.AllowOverApplication:
		return runtimeErrorf(at, "too many arguments for %s", callee)
	}
	return nil
}

func (rt *Runtime) callFunction(at source.Range, f *Function, args []Value) (Value, error) {
	if err := checkArity(at, Value{K: VFunction, F: f}, f.Arity(), len(args), rt.opts); err != nil {
		return nilValue(), err
	}
	if rt.depth >= maxCallDepth {
		return nilValue(), runtimeErrorf(at, "stack overflow")
	}
	rt.depth++
	defer func() { rt.depth-- }()
	rt.log.Debug("call",
		slog.String("function", f.Name()),
		slog.Int("args", len(args)),
		slog.Int("depth", rt.depth))

	env := NewEnv(f.Closure)
	for i, p := range f.Decl.Params {
		v := nilValue()
		if i < len(args) {
			v = args[i]
		}
		env.Define(p.Lexeme(), v)
	}
	c, err := rt.execBlock(f.Decl.Body, env)
	if err != nil {
		return nilValue(), err
	}
	if f.isInitializer() {
		return f.Closure.GetAt(0, "this"), nil
	}
	if c.returning {
		return c.value, nil
	}
	return nilValue(), nil
}
