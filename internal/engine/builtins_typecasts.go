package engine

import "github.com/kotfind/geomserver/internal/types"

// registerTypeCastBuiltins covers `as T` coercions and `is none`.
// Grounded on original_source's function/builtins/type_casts.rs.
//
// `#as_str` is written directly against types.Value (not through
// requirePresent) since it must stay total over none payloads, rendering
// them as `none T` (spec.md §4.4, §6).
//
// `#is_none` is registered here even though original_source carries it
// fully commented out ("XXX: those are temporaryly disabled"): spec.md's
// grammar requires `is none` to work, and the per-type bodies are exactly
// what the disabled code already specifies (`Ok(v.is_none())`), so this
// re-enables rather than reinvents them.
func registerTypeCastBuiltins() {
	register("#as_bool", []types.ValueType{types.Bool}, types.Bool, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return args[0], nil
	})
	register("#as_bool", []types.ValueType{types.Int}, types.Bool, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.BoolVal(args[0].AsInt() != 0), nil
	})
	register("#as_bool", []types.ValueType{types.Real}, types.Bool, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.BoolVal(args[0].AsReal() != 0), nil
	})

	register("#as_int", []types.ValueType{types.Bool}, types.Int, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		if args[0].AsBool() {
			return types.IntVal(1), nil
		}
		return types.IntVal(0), nil
	})
	register("#as_int", []types.ValueType{types.Int}, types.Int, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return args[0], nil
	})
	register("#as_int", []types.ValueType{types.Real}, types.Int, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.IntVal(int64(args[0].AsReal())), nil
	})

	register("#as_real", []types.ValueType{types.Bool}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		if args[0].AsBool() {
			return types.RealVal(1), nil
		}
		return types.RealVal(0), nil
	})
	register("#as_real", []types.ValueType{types.Int}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.RealVal(float64(args[0].AsInt())), nil
	})
	register("#as_real", []types.ValueType{types.Real}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return args[0], nil
	})

	for _, vt := range []types.ValueType{types.Bool, types.Int, types.Real, types.Str, types.Pt, types.Line, types.Circ} {
		register("#as_str", []types.ValueType{vt}, types.Str, func(args []types.Value) (types.Value, error) {
			return types.StrVal(args[0].String()), nil
		})
		register("#is_none", []types.ValueType{vt}, types.Bool, func(args []types.Value) (types.Value, error) {
			return types.BoolVal(!args[0].Present()), nil
		})
	}
}
