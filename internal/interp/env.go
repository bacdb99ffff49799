package interp

import (
	"fmt"

	"loxlang/internal/lexer"
)

// Env is one scope of runtime storage. Closures keep their defining Env
// alive through the parent chain.
type Env struct {
	values map[string]Value
	parent *Env
}

func NewEnv(parent *Env) *Env {
	return &Env{values: map[string]Value{}, parent: parent}
}

// Define binds name in this scope, replacing any earlier binding.
func (e *Env) Define(name string, v Value) { e.values[name] = v }

// Get looks name up through the whole chain. It is only used for names the
// resolver left to the global scope.
func (e *Env) Get(name lexer.Token) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name.Lexeme()]; ok {
			return v, nil
		}
	}
	return nilValue(), runtimeErrorf(name.Range, "undefined variable '%s'", name.Lexeme())
}

// Assign updates the nearest existing binding of name.
func (e *Env) Assign(name lexer.Token, v Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name.Lexeme()]; ok {
			env.values[name.Lexeme()] = v
			return nil
		}
	}
	return runtimeErrorf(name.Range, "undefined variable '%s'", name.Lexeme())
}

// GetAt reads name exactly depth scopes up. The resolver guarantees the
// binding exists there; a miss is an interpreter bug.
func (e *Env) GetAt(depth int, name string) Value {
	env := e.ancestor(depth)
	v, ok := env.values[name]
	if !ok {
		panic(fmt.Sprintf("interp: %q not found at depth %d", name, depth))
	}
	return v
}

func (e *Env) AssignAt(depth int, name lexer.Token, v Value) {
	env := e.ancestor(depth)
	if _, ok := env.values[name.Lexeme()]; !ok {
		panic(fmt.Sprintf("interp: %q not found at depth %d", name.Lexeme(), depth))
	}
	env.values[name.Lexeme()] = v
}

func (e *Env) ancestor(depth int) *Env {
	env := e
	for i := 0; i < depth; i++ {
		env = env.parent
		if env == nil {
			panic(fmt.Sprintf("interp: environment chain shorter than depth %d", depth))
		}
	}
	return env
}
