package types

import (
	"encoding/json"
	"testing"
)

func TestEqualTotalOverNone(t *testing.T) {
	if !None(Int).Equal(None(Int)) {
		t.Fatal("none int should equal none int")
	}
	if None(Int).Equal(IntVal(0)) {
		t.Fatal("none int should not equal present int 0")
	}
	if None(Int).Equal(None(Real)) {
		t.Fatal("none int should not equal none real")
	}
}

func TestStringRendering(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{BoolVal(true), "true"},
		{IntVal(42), "42"},
		{RealVal(1), "1.000"},
		{StrVal(`a"b`), `"a\"b"`},
		{None(Bool), "none bool"},
		{PtValOf(PtVal{X: 1, Y: 2}), "pt 1.000 2.000"},
		{CircValOf(CircVal{O: PtVal{X: 1, Y: 2}, R: 3}), "circ (pt 1.000 2.000) 3.000"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestTypeIndependentOfPresence(t *testing.T) {
	if None(Pt).Type() != Pt {
		t.Fatal("type should be Pt regardless of presence")
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	cases := []Value{
		BoolVal(true),
		IntVal(-7),
		RealVal(3.5),
		StrVal("hi"),
		PtValOf(PtVal{X: 1, Y: 2}),
		LineValOf(LineVal{P1: PtVal{X: 0, Y: 0}, P2: PtVal{X: 1, Y: 1}}),
		CircValOf(CircVal{O: PtVal{X: 0, Y: 0}, R: 2}),
		None(Real),
	}
	for _, v := range cases {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %s: %v", v, err)
		}
		var got Value
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", v, err)
		}
		if !got.Equal(v) {
			t.Fatalf("round trip mismatch: %s -> %s -> %s", v, data, got)
		}
	}
}

func TestValueTypeJSONRoundTrip(t *testing.T) {
	for _, vt := range []ValueType{Bool, Int, Real, Str, Pt, Line, Circ} {
		data, err := json.Marshal(vt)
		if err != nil {
			t.Fatalf("marshal %s: %v", vt, err)
		}
		var got ValueType
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %s: %v", vt, err)
		}
		if got != vt {
			t.Fatalf("round trip mismatch: %s -> %s -> %s", vt, data, got)
		}
	}
}
