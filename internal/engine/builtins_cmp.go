package engine

import (
	"golang.org/x/text/unicode/norm"

	"github.com/kotfind/geomserver/internal/types"
)

// registerCmpBuiltins covers ordering (#gr/#le/#geq/#leq, Int/Real/Str) and
// equality (#eq/#neq, every type). Grounded on original_source's
// function/builtins/cmp.rs. Unlike the ordering builtins, #eq/#neq stay
// total over none operands (spec.md §4.4: "equality/inequality over
// same-typed Values, including both-none, is total"), so they are written
// directly against types.Value.Equal rather than through requirePresent.
func registerCmpBuiltins() {
	orderedNumeric := []types.ValueType{types.Int, types.Real, types.Str}
	for _, vt := range orderedNumeric {
		vt := vt
		register("#gr", []types.ValueType{vt, vt}, types.Bool, orderingFunc(vt, func(c int) bool { return c > 0 }))
		register("#le", []types.ValueType{vt, vt}, types.Bool, orderingFunc(vt, func(c int) bool { return c < 0 }))
		register("#geq", []types.ValueType{vt, vt}, types.Bool, orderingFunc(vt, func(c int) bool { return c >= 0 }))
		register("#leq", []types.ValueType{vt, vt}, types.Bool, orderingFunc(vt, func(c int) bool { return c <= 0 }))
	}

	for _, vt := range []types.ValueType{types.Bool, types.Int, types.Real, types.Str, types.Pt, types.Line, types.Circ} {
		register("#eq", []types.ValueType{vt, vt}, types.Bool, func(args []types.Value) (types.Value, error) {
			return types.BoolVal(args[0].Equal(args[1])), nil
		})
		register("#neq", []types.ValueType{vt, vt}, types.Bool, func(args []types.Value) (types.Value, error) {
			return types.BoolVal(!args[0].Equal(args[1])), nil
		})
	}
}

// orderingFunc compares two same-typed, present Values and returns the
// relation cmp expects: negative/zero/positive for less/equal/greater.
func orderingFunc(vt types.ValueType, test func(cmp int) bool) BuiltinFunc {
	return func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		var cmp int
		switch vt {
		case types.Int:
			a, b := args[0].AsInt(), args[1].AsInt()
			cmp = compareInt(a, b)
		case types.Real:
			a, b := args[0].AsReal(), args[1].AsReal()
			cmp = compareReal(a, b)
		case types.Str:
			a, b := args[0].AsStr(), args[1].AsStr()
			cmp = compareStr(a, b)
		}
		return types.BoolVal(test(cmp)), nil
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareReal(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareStr orders by NFC-normalized form, so visually identical strings
// built from different combining-character sequences compare equal/ordered
// consistently (the teacher normalizes the same way in
// internal/interp/string_helpers.go's normalizeUnicode).
func compareStr(a, b string) int {
	a, b = norm.NFC.String(a), norm.NFC.String(b)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
