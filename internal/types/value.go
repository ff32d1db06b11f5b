// Package types defines geomserver's fixed value universe: a tagged sum
// over {Bool, Int, Real, Str, Pt, Line, Circ}, each carrying an optional
// payload. Grounded on original_source's `types::core::Value` (Rust), which
// spec.md §3 and §6 describe directly.
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ValueType is the tag half of a Value. A Value's type is its tag,
// independent of whether its payload is present (spec.md §3).
type ValueType int

const (
	Bool ValueType = iota
	Int
	Real
	Str
	Pt
	Line
	Circ
)

func (t ValueType) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Real:
		return "real"
	case Str:
		return "str"
	case Pt:
		return "pt"
	case Line:
		return "line"
	case Circ:
		return "circ"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// MarshalJSON renders a ValueType as its keyword string (`"int"`, `"pt"`,
// …) rather than its underlying int tag, so `json/dump` and the server's
// wire protocol stay human-readable.
func (t ValueType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON is MarshalJSON's inverse.
func (t *ValueType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	vt, ok := TypeByName(s)
	if !ok {
		return fmt.Errorf("unknown value type %q", s)
	}
	*t = vt
	return nil
}

// TypeByName resolves a value-type keyword (as it appears after `none` or
// `as`) to a ValueType.
func TypeByName(name string) (ValueType, bool) {
	switch name {
	case "bool":
		return Bool, true
	case "int":
		return Int, true
	case "real":
		return Real, true
	case "str":
		return Str, true
	case "pt":
		return Pt, true
	case "line":
		return Line, true
	case "circ":
		return Circ, true
	default:
		return 0, false
	}
}

// PtVal is the payload of a Pt value.
type PtVal struct {
	X, Y float64
}

// LineVal is the payload of a Line value.
type LineVal struct {
	P1, P2 PtVal
}

// CircVal is the payload of a Circ value.
type CircVal struct {
	O PtVal
	R float64
}

// Value is a run-time datum: a type tag plus an optional payload. The zero
// Value of any constructor below (e.g. None(Bool)) represents "none of that
// type" — present is false and the payload fields are meaningless.
//
// Value is a plain struct, not an interface, so it is copyable and
// comparable by field per spec.md §3 ("Two Values are equal iff tag and
// payload are equal"); Equal implements that rule explicitly because the Pt/
// Line/Circ payloads embed floats and none-ness is significant.
type Value struct {
	typ     ValueType
	present bool

	b bool
	i int64
	r float64
	s string
	p PtVal
	l LineVal
	c CircVal
}

// Type returns the Value's tag, regardless of whether its payload is present.
func (v Value) Type() ValueType { return v.typ }

// Present reports whether the Value carries a payload (false for `none T`).
func (v Value) Present() bool { return v.present }

func BoolVal(b bool) Value  { return Value{typ: Bool, present: true, b: b} }
func IntVal(i int64) Value  { return Value{typ: Int, present: true, i: i} }
func RealVal(r float64) Value { return Value{typ: Real, present: true, r: r} }
func StrVal(s string) Value { return Value{typ: Str, present: true, s: s} }
func PtValOf(p PtVal) Value  { return Value{typ: Pt, present: true, p: p} }
func LineValOf(l LineVal) Value { return Value{typ: Line, present: true, l: l} }
func CircValOf(c CircVal) Value { return Value{typ: Circ, present: true, c: c} }

// None constructs the "none of type T" Value for the given tag.
func None(t ValueType) Value { return Value{typ: t} }

// AsBool returns the Bool payload. Callers must check Present()/Type() first.
func (v Value) AsBool() bool     { return v.b }
func (v Value) AsInt() int64     { return v.i }
func (v Value) AsReal() float64  { return v.r }
func (v Value) AsStr() string    { return v.s }
func (v Value) AsPt() PtVal      { return v.p }
func (v Value) AsLine() LineVal  { return v.l }
func (v Value) AsCirc() CircVal  { return v.c }

// Equal implements spec.md §3's value equality: same tag, same presence,
// and (if present) same payload. This is total even over none values and
// is the basis for the `#eq`/`#neq` builtins, which must stay total even
// when other builtins fail on none operands (spec.md §4.4).
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ || v.present != other.present {
		return false
	}
	if !v.present {
		return true
	}
	switch v.typ {
	case Bool:
		return v.b == other.b
	case Int:
		return v.i == other.i
	case Real:
		return v.r == other.r
	case Str:
		return norm.NFC.String(v.s) == norm.NFC.String(other.s)
	case Pt:
		return v.p == other.p
	case Line:
		return v.l == other.l
	case Circ:
		return v.c == other.c
	default:
		return false
	}
}

// String renders a Value in its canonical literal form (spec.md §6). `none`
// values of any type render as `none T`; this is the one rendering that
// stays total regardless of presence, matching the `as_str` builtin.
func (v Value) String() string {
	if !v.present {
		return "none " + v.typ.String()
	}
	switch v.typ {
	case Bool:
		if v.b {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Real:
		return strconv.FormatFloat(v.r, 'f', 3, 64)
	case Str:
		return quoteStr(v.s)
	case Pt:
		return fmt.Sprintf("pt %s %s", formatReal(v.p.X), formatReal(v.p.Y))
	case Line:
		return fmt.Sprintf("line (%s) (%s)", PtValOf(v.l.P1).ptBody(), PtValOf(v.l.P2).ptBody())
	case Circ:
		return fmt.Sprintf("circ (%s) %s", PtValOf(v.c.O).ptBody(), formatReal(v.c.R))
	default:
		return "?"
	}
}

// valueJSON is Value's wire/snapshot shape: fields are unexported on Value
// itself (equality/rendering must go through Equal/String, not struct
// comparison), so MarshalJSON/UnmarshalJSON bridge to this plain shape for
// json/dump, json/load and the server's item payloads.
type valueJSON struct {
	Type    ValueType `json:"type"`
	Present bool      `json:"present"`
	Bool    *bool     `json:"bool,omitempty"`
	Int     *int64    `json:"int,omitempty"`
	Real    *float64  `json:"real,omitempty"`
	Str     *string   `json:"str,omitempty"`
	Pt      *PtVal    `json:"pt,omitempty"`
	Line    *LineVal  `json:"line,omitempty"`
	Circ    *CircVal  `json:"circ,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	j := valueJSON{Type: v.typ, Present: v.present}
	if v.present {
		switch v.typ {
		case Bool:
			j.Bool = &v.b
		case Int:
			j.Int = &v.i
		case Real:
			j.Real = &v.r
		case Str:
			j.Str = &v.s
		case Pt:
			j.Pt = &v.p
		case Line:
			j.Line = &v.l
		case Circ:
			j.Circ = &v.c
		}
	}
	return json.Marshal(j)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var j valueJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	v.typ = j.Type
	v.present = j.Present
	if !j.Present {
		return nil
	}
	switch j.Type {
	case Bool:
		if j.Bool != nil {
			v.b = *j.Bool
		}
	case Int:
		if j.Int != nil {
			v.i = *j.Int
		}
	case Real:
		if j.Real != nil {
			v.r = *j.Real
		}
	case Str:
		if j.Str != nil {
			v.s = *j.Str
		}
	case Pt:
		if j.Pt != nil {
			v.p = *j.Pt
		}
	case Line:
		if j.Line != nil {
			v.l = *j.Line
		}
	case Circ:
		if j.Circ != nil {
			v.c = *j.Circ
		}
	}
	return nil
}

func (v Value) ptBody() string {
	return fmt.Sprintf("pt %s %s", formatReal(v.p.X), formatReal(v.p.Y))
}

func formatReal(r float64) string {
	return strconv.FormatFloat(r, 'f', 3, 64)
}

func quoteStr(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
