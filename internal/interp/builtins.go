package interp

import (
	"errors"
	"time"

	"loxlang/internal/source"
)

var natives = []*Native{
	{Name: "clock", Arity: 0},
	{Name: "pcall", Arity: 1},
}

func defineNatives(env *Env) {
	for _, n := range natives {
		env.Define(n.Name, Value{K: VNative, Nat: n})
	}
}

func (rt *Runtime) callBuiltin(name string, at source.Range, args []Value) (Value, bool, error) {
	switch name {
	case "clock":
		secs := float64(time.Now().UnixNano()) / float64(time.Second)
		return numberValue(secs), true, nil
	case "pcall":
		callee := args[0]
		if !isCallable(callee) {
			return nilValue(), true, runtimeErrorf(at, "%s is not callable", callee.Debug())
		}
		_, err := rt.call(at, callee, nil)
		if err != nil {
			var rerr *RuntimeError
			if errors.As(err, &rerr) {
				rt.log.Debug("pcall caught runtime error", "error", rerr.Msg)
				return boolValue(false), true, nil
			}
			return nilValue(), true, err
		}
		return boolValue(true), true, nil
	default:
		return nilValue(), false, nil
	}
}
