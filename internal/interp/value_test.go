package interp

import (
	"math"
	"testing"
)

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{nilValue(), false},
		{boolValue(false), false},
		{boolValue(true), true},
		{numberValue(0), true},
		{stringValue(""), true},
		{Value{K: VInstance, I: newInstance(&Class{Name: "C"})}, true},
	}
	for _, tc := range cases {
		if got := tc.v.truthy(); got != tc.want {
			t.Fatalf("%s: truthy = %v, want %v", tc.v.Debug(), got, tc.want)
		}
	}
}

func TestValueEq(t *testing.T) {
	c := &Class{Name: "C"}
	i1, i2 := newInstance(c), newInstance(c)
	if !valueEq(numberValue(1), numberValue(1)) || !valueEq(stringValue("a"), stringValue("a")) {
		t.Fatalf("primitives compare by value")
	}
	if valueEq(numberValue(1), stringValue("1")) || valueEq(nilValue(), boolValue(false)) {
		t.Fatalf("different kinds are never equal")
	}
	if valueEq(Value{K: VInstance, I: i1}, Value{K: VInstance, I: i2}) {
		t.Fatalf("instances compare by identity")
	}
	if !valueEq(Value{K: VClass, C: c}, Value{K: VClass, C: c}) {
		t.Fatalf("same class must be equal")
	}
	if valueEq(numberValue(math.NaN()), numberValue(math.NaN())) {
		t.Fatalf("NaN is not equal to itself")
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		v     Value
		str   string
		debug string
	}{
		{nilValue(), "nil", "nil"},
		{boolValue(true), "true", "true"},
		{numberValue(3), "3", "3"},
		{numberValue(0.1), "0.1", "0.1"},
		{numberValue(1e21), "1000000000000000000000", "1000000000000000000000"},
		{numberValue(math.Inf(-1)), "-inf", "-inf"},
		{stringValue("hi"), "hi", `"hi"`},
		{Value{K: VNative, Nat: natives[0]}, "<native fn clock>", "<native fn clock>"},
	}
	for _, tc := range cases {
		if got := tc.v.String(); got != tc.str {
			t.Fatalf("String() = %q, want %q", got, tc.str)
		}
		if got := tc.v.Debug(); got != tc.debug {
			t.Fatalf("Debug() = %q, want %q", got, tc.debug)
		}
	}
}
