package engine

import "github.com/kotfind/geomserver/internal/types"

// VarsMap binds free-variable names to values for one Eval call. A CExpr's
// RequiredVars is always a subset of the keys present here when it is the
// body of a Node (internal/graph is responsible for assembling it from a
// node's dependencies); a CustomFunction body instead gets one built fresh
// per call from its argument names (function.go's CustomFunction.eval).
type VarsMap map[string]types.Value

// Eval evaluates a compiled expression against vars, grounded on
// original_source's `eval.rs` Eval trait (there applied directly over the
// AST; here over the already-typechecked CExpr, which is structurally
// equivalent for If/Let/FuncCall since compilation never changes evaluation
// order, only resolves names and types up front).
func (c *CExpr) Eval(vars VarsMap) (types.Value, error) {
	switch c.Kind {
	case KindValue:
		return c.Literal, nil

	case KindVariable:
		v, ok := vars[c.VarName]
		if !ok {
			return types.Value{}, &UndefinedVariableError{Name: c.VarName}
		}
		return v, nil

	case KindFuncCall:
		args := make([]types.Value, len(c.Args))
		for i, a := range c.Args {
			v, err := a.Eval(vars)
			if err != nil {
				return types.Value{}, err
			}
			args[i] = v
		}
		return c.Func.Eval(args)

	case KindIf:
		for _, cs := range c.Cases {
			cond, err := cs.Cond.Eval(vars)
			if err != nil {
				return types.Value{}, err
			}
			if !cond.Present() {
				return types.Value{}, &UnexpectedNoneError{}
			}
			if cond.AsBool() {
				return cs.Value.Eval(vars)
			}
		}
		if c.Default != nil {
			return c.Default.Eval(vars)
		}
		return types.Value{}, &NothingMatchedError{}

	case KindLet:
		// Unreachable in practice: Compile always inlines let-bindings
		// (see compile.go). Kept for totality over CExprKind's full set.
		inner := make(VarsMap, len(vars)+len(c.LetDefs))
		for k, v := range vars {
			inner[k] = v
		}
		for _, def := range c.LetDefs {
			v, err := def.Body.Eval(inner)
			if err != nil {
				return types.Value{}, err
			}
			inner[def.Name] = v
		}
		return c.LetBody.Eval(inner)

	default:
		panic("geomserver/internal/engine: unknown CExprKind in Eval")
	}
}
