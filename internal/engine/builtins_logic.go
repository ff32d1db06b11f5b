package engine

import "github.com/kotfind/geomserver/internal/types"

// registerLogicBuiltins covers #or/#and/#not. Grounded on
// original_source's function/builtins/logic.rs.
func registerLogicBuiltins() {
	register("#or", []types.ValueType{types.Bool, types.Bool}, types.Bool, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.BoolVal(args[0].AsBool() || args[1].AsBool()), nil
	})
	register("#and", []types.ValueType{types.Bool, types.Bool}, types.Bool, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.BoolVal(args[0].AsBool() && args[1].AsBool()), nil
	})
	register("#not", []types.ValueType{types.Bool}, types.Bool, func(args []types.Value) (types.Value, error) {
		if err := requirePresent(args); err != nil {
			return types.Value{}, err
		}
		return types.BoolVal(!args[0].AsBool()), nil
	})
}
