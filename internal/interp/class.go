package interp

import "loxlang/internal/lexer"

type Class struct {
	Name    string
	Super   *Class // optional
	Init    *Function
	Methods map[string]*Function
}

// FindMethod looks name up in c and then its superclasses.
func (c *Class) FindMethod(name string) (*Function, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		if name == "init" && cls.Init != nil {
			return cls.Init, true
		}
		if m, ok := cls.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// initializer returns the nearest init, inherited ones included.
func (c *Class) initializer() *Function {
	m, _ := c.FindMethod("init")
	return m
}

type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func newInstance(c *Class) *Instance {
	return &Instance{Class: c, Fields: map[string]Value{}}
}

// Get returns a field, or a method of the class bound to this instance.
// Fields shadow methods.
func (in *Instance) Get(name lexer.Token) (Value, error) {
	if v, ok := in.Fields[name.Lexeme()]; ok {
		return v, nil
	}
	if m, ok := in.Class.FindMethod(name.Lexeme()); ok {
		return Value{K: VFunction, F: m.Bind(in)}, nil
	}
	return nilValue(), runtimeErrorf(name.Range, "undefined property '%s'", name.Lexeme())
}

func (in *Instance) Set(name lexer.Token, v Value) { in.Fields[name.Lexeme()] = v }
