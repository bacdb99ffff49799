package resolver

import "loxlang/internal/lexer"

func (r *resolver) pushScope() { r.scopes = append(r.scopes, map[string]bool{}) }
func (r *resolver) popScope()  { r.scopes = r.scopes[:len(r.scopes)-1] }

// declare adds name to the innermost scope as not yet usable. At the top of
// a shared (REPL) module there is no scope and names are globals.
func (r *resolver) declare(name lexer.Token) {
	if len(r.scopes) == 0 {
		return
	}
	top := r.scopes[len(r.scopes)-1]
	if _, ok := top[name.Lexeme()]; ok {
		r.diags.Errorf(name.Range, "item named '%s' is already defined in this scope", name.Lexeme())
	}
	top[name.Lexeme()] = false
}

func (r *resolver) define(name lexer.Token) {
	r.defineName(name.Lexeme())
}

func (r *resolver) defineName(name string) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = true
}

// lookup finds the innermost defined binding of name. A binding that is only
// declared is skipped so `var a = a;` reads an outer `a`, which may be a
// global the resolver never sees.
func (r *resolver) lookup(name string) (depth int, found bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if defined, ok := r.scopes[i][name]; ok && defined {
			return len(r.scopes) - 1 - i, true
		}
	}
	return 0, false
}
