package fundot

import (
	"errors"
	"math"
	"testing"
)

func TestValueEquality(t *testing.T) {
	vec := func(items ...Value) Value { return NewVector(items) }
	list := func(items ...Value) Value { return NewList(items) }

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"int equals float", NewInt(1), NewFloat(1.0), true},
		{"float equals int", NewFloat(3), NewInt(3), true},
		{"int differs from fractional float", NewInt(1), NewFloat(1.5), false},
		{"null equals false", NewNull(), NewBool(false), true},
		{"false equals null", NewBool(false), NewNull(), true},
		{"null differs from true", NewNull(), NewBool(true), false},
		{"true differs from one", NewBool(true), NewInt(1), false},
		{"null differs from zero", NewNull(), NewInt(0), false},
		{"string differs from symbol", NewString("a"), NewSymbol("a"), false},
		{"equal symbols", NewSymbol("a"), NewSymbol("a"), true},
		{"list differs from vector", list(NewInt(1)), vec(NewInt(1)), false},
		{"vectors compare elements numerically", vec(NewInt(1), NewNull()), vec(NewFloat(1), NewBool(false)), true},
		{"vectors differ in length", vec(NewInt(1)), vec(NewInt(1), NewInt(2)), false},
		{"empty lists", list(), list(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Fatalf("%s == %s: expected %v, got %v", tt.a, tt.b, tt.want, got)
			}
		})
	}
}

func TestMapEquality(t *testing.T) {
	a := NewMap(NewMapOf(
		MapEntry{Key: NewSymbol("x"), Value: NewInt(1)},
		MapEntry{Key: NewString("y"), Value: NewVector([]Value{NewNull()})},
	))
	b := NewMap(NewMapOf(
		MapEntry{Key: NewString("y"), Value: NewVector([]Value{NewBool(false)})},
		MapEntry{Key: NewSymbol("x"), Value: NewFloat(1)},
	))
	if !a.Equal(b) {
		t.Fatalf("expected %s to equal %s", a, b)
	}
	c := NewMap(NewMapOf(MapEntry{Key: NewSymbol("x"), Value: NewInt(1)}))
	if a.Equal(c) {
		t.Fatalf("maps with different sizes should differ")
	}
}

func TestValueHash(t *testing.T) {
	if NewInt(7).Hash() != NewInt(7).Hash() {
		t.Fatalf("equal integers must hash alike")
	}
	if NewInt(7).Hash() == NewInt(8).Hash() {
		t.Fatalf("expected distinct integer hashes")
	}
	if NewString("k").Hash() != NewString("k").Hash() {
		t.Fatalf("equal strings must hash alike")
	}
	weak := []Value{
		NewNull(),
		NewBool(true),
		NewFloat(2.5),
		NewList([]Value{NewInt(1)}),
		NewVector(nil),
		NewMap(nil),
		NewHandle("h", nil),
	}
	for _, v := range weak {
		if v.Hash() != constantHash {
			t.Fatalf("%s: expected constant hash", v.Kind())
		}
	}
}

func TestValueDisplay(t *testing.T) {
	m := NewMap(NewMapOf(
		MapEntry{Key: NewString("b"), Value: NewInt(2)},
		MapEntry{Key: NewString("a"), Value: NewList(nil)},
	))
	tests := []struct {
		v    Value
		want string
	}{
		{NewNull(), "null"},
		{NewBool(true), "true"},
		{NewBool(false), "false"},
		{NewInt(-12), "-12"},
		{NewFloat(2.5), "2.5"},
		{NewFloat(1), "1"},
		{NewFloat(1e21), "1000000000000000000000"},
		{NewFloat(math.Inf(1)), "inf"},
		{NewFloat(math.Inf(-1)), "-inf"},
		{NewFloat(math.NaN()), "NaN"},
		{NewString("a\"b\\c\nd\re\tf"), `"a\"b\\c\nd\re\tf"`},
		{NewSymbol("+"), "+"},
		{NewList([]Value{NewSymbol("get"), NewInt(1), NewString("x")}), `(get 1 "x")`},
		{NewVector([]Value{NewInt(1), NewVector(nil)}), "[1, []]"},
		{NewHandle("get", nil), "<handle get>"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.v.Kind(), tt.want, got)
		}
	}

	if got, err := Canonical(m); err != nil || got != `{"a": (), "b": 2}` {
		t.Fatalf("unexpected canonical map %q (%v)", got, err)
	}
	if got := m.String(); got != `{"a": (), "b": 2}` && got != `{"b": 2, "a": ()}` {
		t.Fatalf("unexpected map display %q", got)
	}
}

func TestCanonicalReadsBackAsSameKinds(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NewFloat(1), "1.0"},
		{NewFloat(-0.5), "-0.5"},
		{NewFloat(1e18), "1000000000000000000.0"},
		{NewFloat(1e21), "1e21"},
		{NewFloat(-2.5e300), "-2.5e300"},
		{NewVector([]Value{NewFloat(1), NewInt(1)}), "[1.0, 1]"},
		{NewMap(NewMapOf(
			MapEntry{Key: NewInt(1), Value: NewSymbol("a")},
			MapEntry{Key: NewFloat(1), Value: NewSymbol("b")},
		)), "{1.0: b, 1: a}"},
	}
	for _, tt := range tests {
		got, err := Canonical(tt.v)
		if err != nil {
			t.Fatalf("%s: canonical failed: %v", tt.v, err)
		}
		if got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
		back, err := Parse(got)
		if err != nil {
			t.Fatalf("%q does not read back: %v", got, err)
		}
		again, err := Canonical(back)
		if err != nil || again != got || !back.Equal(tt.v) {
			t.Fatalf("%q read back as %q (%v)", got, again, err)
		}
	}
}

func TestCanonicalRejectsUnreadableValues(t *testing.T) {
	for _, v := range []Value{
		NewFloat(math.Inf(1)),
		NewFloat(math.NaN()),
		NewList([]Value{NewSymbol("f"), NewFloat(math.Inf(-1))}),
		NewMap(NewMapOf(MapEntry{Key: NewSymbol("h"), Value: NewHandle("get", nil)})),
	} {
		if _, err := Canonical(v); !errors.Is(err, ErrNoReadableForm) {
			t.Fatalf("%s: expected ErrNoReadableForm, got %v", v, err)
		}
	}
}

func TestHandleIdentity(t *testing.T) {
	h := NewHandle("get", builtinGet)
	if !h.Equal(h) {
		t.Fatalf("a handle should equal itself")
	}
	if h.Equal(NewHandle("get", builtinGet)) {
		t.Fatalf("distinct handles should differ")
	}
}

func TestAccessorsOnOtherKinds(t *testing.T) {
	v := NewString("x")
	if v.Items() != nil || v.Map() != nil || v.Handle() != nil {
		t.Fatalf("collection accessors should be nil for strings")
	}
	if NewInt(3).Text() != "" {
		t.Fatalf("text of an integer should be empty")
	}
	if NewFloat(2.9).Int() != 2 || NewInt(2).Float() != 2 {
		t.Fatalf("numeric accessors should convert")
	}
}
