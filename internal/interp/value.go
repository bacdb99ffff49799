package interp

import (
	"fmt"
	"math"
	"strconv"
)

type ValueKind int

const (
	VNil ValueKind = iota
	VBool
	VNumber
	VString
	VClass
	VInstance
	VFunction
	VNative
)

func (k ValueKind) String() string {
	switch k {
	case VNil:
		return "nil"
	case VBool:
		return "boolean"
	case VNumber:
		return "number"
	case VString:
		return "string"
	case VClass:
		return "class"
	case VInstance:
		return "instance"
	case VFunction, VNative:
		return "function"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is a Lox value. Only the field selected by K is meaningful.
type Value struct {
	K   ValueKind
	B   bool
	N   float64
	S   string
	C   *Class
	I   *Instance
	F   *Function
	Nat *Native
}

func nilValue() Value             { return Value{K: VNil} }
func boolValue(b bool) Value      { return Value{K: VBool, B: b} }
func numberValue(n float64) Value { return Value{K: VNumber, N: n} }
func stringValue(s string) Value  { return Value{K: VString, S: s} }

// literalValue converts a parser literal (nil, bool, float64, string).
func literalValue(v any) Value {
	switch v := v.(type) {
	case nil:
		return nilValue()
	case bool:
		return boolValue(v)
	case float64:
		return numberValue(v)
	case string:
		return stringValue(v)
	default:
		panic(fmt.Sprintf("interp: unexpected literal %T", v))
	}
}

// truthy: nil and false are falsy, everything else is truthy.
func (v Value) truthy() bool {
	switch v.K {
	case VNil:
		return false
	case VBool:
		return v.B
	default:
		return true
	}
}

// valueEq compares primitives by value and objects by identity. Values of
// different kinds are never equal.
func valueEq(a, b Value) bool {
	if a.K != b.K {
		return false
	}
	switch a.K {
	case VNil:
		return true
	case VBool:
		return a.B == b.B
	case VNumber:
		return a.N == b.N
	case VString:
		return a.S == b.S
	case VClass:
		return a.C == b.C
	case VInstance:
		return a.I == b.I
	case VFunction:
		return a.F == b.F
	case VNative:
		return a.Nat == b.Nat
	default:
		return false
	}
}

// String is the form `print` writes.
func (v Value) String() string {
	switch v.K {
	case VNil:
		return "nil"
	case VBool:
		return strconv.FormatBool(v.B)
	case VNumber:
		return formatNumber(v.N)
	case VString:
		return v.S
	case VClass:
		return "<class " + v.C.Name + ">"
	case VInstance:
		return "<instance " + v.I.Class.Name + ">"
	case VFunction:
		return "<fn " + v.F.Name() + ">"
	case VNative:
		return "<native fn " + v.Nat.Name + ">"
	default:
		return "<?>"
	}
}

// Debug is like String but quotes strings, so `"1"` and `1` differ in
// error messages.
func (v Value) Debug() string {
	if v.K == VString {
		return strconv.Quote(v.S)
	}
	return v.String()
}

func formatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case math.IsNaN(n):
		return "nan"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
