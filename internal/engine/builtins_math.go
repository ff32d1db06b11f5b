package engine

import (
	"fmt"
	"math"

	"github.com/kotfind/geomserver/internal/types"
)

// registerMathBuiltins covers arithmetic and the Pt dot/cross products.
// Grounded on original_source's function/builtins/math.rs.
func registerMathBuiltins() {
	register("#add", []types.ValueType{types.Pt, types.Pt}, types.Pt, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		a, b := args[0].AsPt(), args[1].AsPt()
		return types.PtValOf(types.PtVal{X: a.X + b.X, Y: a.Y + b.Y}), nil
	})
	register("#add", []types.ValueType{types.Int, types.Int}, types.Int, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		sum, err := checkedAddInt(args[0].AsInt(), args[1].AsInt())
		if err != nil {
			return types.Value{}, err
		}
		return types.IntVal(sum), nil
	})
	register("#add", []types.ValueType{types.Real, types.Real}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.RealVal(args[0].AsReal() + args[1].AsReal()), nil
	})
	register("#add", []types.ValueType{types.Str, types.Str}, types.Str, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.StrVal(args[0].AsStr() + args[1].AsStr()), nil
	})

	register("#sub", []types.ValueType{types.Pt, types.Pt}, types.Pt, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		a, b := args[0].AsPt(), args[1].AsPt()
		return types.PtValOf(types.PtVal{X: a.X - b.X, Y: a.Y - b.Y}), nil
	})
	register("#sub", []types.ValueType{types.Int, types.Int}, types.Int, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		diff, err := checkedSubInt(args[0].AsInt(), args[1].AsInt())
		if err != nil {
			return types.Value{}, err
		}
		return types.IntVal(diff), nil
	})
	register("#sub", []types.ValueType{types.Real, types.Real}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.RealVal(args[0].AsReal() - args[1].AsReal()), nil
	})

	register("#mul", []types.ValueType{types.Real, types.Pt}, types.Pt, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		lhs, rhs := args[0].AsReal(), args[1].AsPt()
		return types.PtValOf(types.PtVal{X: rhs.X * lhs, Y: lhs * rhs.Y}), nil
	})
	register("#mul", []types.ValueType{types.Pt, types.Real}, types.Pt, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		lhs, rhs := args[0].AsPt(), args[1].AsReal()
		return types.PtValOf(types.PtVal{X: lhs.X * rhs, Y: rhs * lhs.Y}), nil
	})
	register("#mul", []types.ValueType{types.Int, types.Int}, types.Int, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		product, err := checkedMulInt(args[0].AsInt(), args[1].AsInt())
		if err != nil {
			return types.Value{}, err
		}
		return types.IntVal(product), nil
	})
	register("#mul", []types.ValueType{types.Real, types.Real}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.RealVal(args[0].AsReal() * args[1].AsReal()), nil
	})

	register("#div", []types.ValueType{types.Pt, types.Real}, types.Pt, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		lhs, rhs := args[0].AsPt(), args[1].AsReal()
		return types.PtValOf(types.PtVal{X: lhs.X / rhs, Y: lhs.Y / rhs}), nil
	})
	register("#div", []types.ValueType{types.Int, types.Int}, types.Int, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		rhs := args[1].AsInt()
		if rhs == 0 {
			return types.Value{}, fmt.Errorf("division by zero")
		}
		return types.IntVal(args[0].AsInt() / rhs), nil
	})
	register("#div", []types.ValueType{types.Real, types.Real}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.RealVal(args[0].AsReal() / args[1].AsReal()), nil
	})

	register("#pow", []types.ValueType{types.Int, types.Int}, types.Int, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		result, err := checkedPowInt(args[0].AsInt(), args[1].AsInt())
		if err != nil {
			return types.Value{}, err
		}
		return types.IntVal(result), nil
	})
	register("#pow", []types.ValueType{types.Real, types.Real}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.RealVal(math.Pow(args[0].AsReal(), args[1].AsReal())), nil
	})

	register("#mod", []types.ValueType{types.Int, types.Int}, types.Int, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		rhs := args[1].AsInt()
		if rhs == 0 {
			return types.Value{}, fmt.Errorf("modulo by zero")
		}
		return types.IntVal(args[0].AsInt() % rhs), nil
	})
	register("#mod", []types.ValueType{types.Real, types.Real}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.RealVal(math.Mod(args[0].AsReal(), args[1].AsReal())), nil
	})

	register("#neg", []types.ValueType{types.Int}, types.Int, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.IntVal(-args[0].AsInt()), nil
	})
	register("#neg", []types.ValueType{types.Real}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.RealVal(-args[0].AsReal()), nil
	})
	register("#neg", []types.ValueType{types.Pt}, types.Pt, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		p := args[0].AsPt()
		return types.PtValOf(types.PtVal{X: -p.X, Y: -p.Y}), nil
	})

	register("dot", []types.ValueType{types.Pt, types.Pt}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		a, b := args[0].AsPt(), args[1].AsPt()
		return types.RealVal(a.X*b.X + a.Y*b.Y), nil
	})
	register("cross", []types.ValueType{types.Pt, types.Pt}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		a, b := args[0].AsPt(), args[1].AsPt()
		return types.RealVal(a.X*b.Y - a.Y*b.X), nil
	})
}
