package engine

import "github.com/kotfind/geomserver/internal/types"

// registerCtorBuiltins covers Pt/Line/Circ construction and field
// projection (`.x`, `.p1`, `.a`, …, desugared by the parser to plain
// FuncCalls — spec.md §4.1). Grounded on original_source's
// function/builtins/struct_ops.rs, the fuller of its two constructor files
// (ctors.rs defines the same three constructors with no projections and
// looks like an earlier pass superseded by struct_ops.rs).
func registerCtorBuiltins() {
	register("pt", []types.ValueType{types.Real, types.Real}, types.Pt, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.PtValOf(types.PtVal{X: args[0].AsReal(), Y: args[1].AsReal()}), nil
	})
	register("x", []types.ValueType{types.Pt}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.RealVal(args[0].AsPt().X), nil
	})
	register("y", []types.ValueType{types.Pt}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.RealVal(args[0].AsPt().Y), nil
	})

	register("line", []types.ValueType{types.Pt, types.Pt}, types.Line, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.LineValOf(types.LineVal{P1: args[0].AsPt(), P2: args[1].AsPt()}), nil
	})
	register("p1", []types.ValueType{types.Line}, types.Pt, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.PtValOf(args[0].AsLine().P1), nil
	})
	register("p2", []types.ValueType{types.Line}, types.Pt, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.PtValOf(args[0].AsLine().P2), nil
	})
	register("a", []types.ValueType{types.Line}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		a, _, _ := lineToABC(args[0].AsLine())
		return types.RealVal(a), nil
	})
	register("b", []types.ValueType{types.Line}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		_, b, _ := lineToABC(args[0].AsLine())
		return types.RealVal(b), nil
	})
	register("c", []types.ValueType{types.Line}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		_, _, c := lineToABC(args[0].AsLine())
		return types.RealVal(c), nil
	})

	register("circ", []types.ValueType{types.Pt, types.Real}, types.Circ, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.CircValOf(types.CircVal{O: args[0].AsPt(), R: args[1].AsReal()}), nil
	})
	register("o", []types.ValueType{types.Circ}, types.Pt, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.PtValOf(args[0].AsCirc().O), nil
	})
	register("r", []types.ValueType{types.Circ}, types.Real, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.RealVal(args[0].AsCirc().R), nil
	})
}

// lineToABC converts a Line to the coefficients (a, b, c) of its standard
// form ax + by + c = 0. Grounded on original_source's `line_to_abc`.
func lineToABC(l types.LineVal) (a, b, c float64) {
	a = l.P2.Y - l.P1.Y
	b = l.P1.X - l.P2.X
	c = -a*l.P1.X - b*l.P1.Y
	return a, b, c
}
