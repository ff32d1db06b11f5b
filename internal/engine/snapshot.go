package engine

import (
	"fmt"
	"sort"

	"github.com/kotfind/geomserver/internal/snapshot"
	"github.com/kotfind/geomserver/internal/types"
)

// ToStored serializes c into w, returning its assigned Id. Grounded on
// original_source's `CExpr::to_stored`.
func (c *CExpr) ToStored(w *snapshot.Writer) (snapshot.Id, error) {
	id, seen := w.CExprID(c)
	if seen {
		return id, nil
	}
	if err := w.Enter("cexpr", id); err != nil {
		return 0, err
	}
	defer w.Exit(id)

	required := make([]string, 0, len(c.RequiredVars))
	for name := range c.RequiredVars {
		required = append(required, name)
	}
	sort.Strings(required)

	stored := snapshot.CExpr{RequiredVars: required, ValueType: c.ValueType}

	switch c.Kind {
	case KindValue:
		stored.Kind = "value"
		v := c.Literal
		stored.Value = &v

	case KindVariable:
		stored.Kind = "variable"
		stored.Variable = c.VarName

	case KindFuncCall:
		stored.Kind = "func_call"
		funcID, err := c.Func.ToStored(w)
		if err != nil {
			return 0, err
		}
		stored.FuncCallFunc = funcID
		for _, arg := range c.Args {
			argID, err := arg.ToStored(w)
			if err != nil {
				return 0, err
			}
			stored.FuncCallArgs = append(stored.FuncCallArgs, argID)
		}

	case KindIf:
		stored.Kind = "if"
		for _, kase := range c.Cases {
			condID, err := kase.Cond.ToStored(w)
			if err != nil {
				return 0, err
			}
			valID, err := kase.Value.ToStored(w)
			if err != nil {
				return 0, err
			}
			stored.IfCases = append(stored.IfCases, snapshot.IfCase{Cond: condID, Value: valID})
		}
		if c.Default != nil {
			defID, err := c.Default.ToStored(w)
			if err != nil {
				return 0, err
			}
			stored.IfDefault = &defID
		}

	case KindLet:
		return 0, fmt.Errorf("geomserver/internal/engine: KindLet is never constructed by Compile, cannot serialize")

	default:
		return 0, fmt.Errorf("geomserver/internal/engine: unknown CExprKind %s", c.Kind)
	}

	w.PutCExpr(id, stored)
	return id, nil
}

// CExprFromStored reconstructs a *CExpr from id within r.
func CExprFromStored(id snapshot.Id, r *snapshot.Reader) (*CExpr, error) {
	if cached, ok := r.CExprCached(id); ok {
		return cached.(*CExpr), nil
	}
	if err := r.Enter("cexpr", id); err != nil {
		return nil, err
	}
	defer r.Exit(id)

	stored, ok := r.GetCExpr(id)
	if !ok {
		return nil, snapshot.DanglingID("cexpr", id)
	}

	required := make(map[string]struct{}, len(stored.RequiredVars))
	for _, name := range stored.RequiredVars {
		required[name] = struct{}{}
	}
	ce := &CExpr{RequiredVars: required, ValueType: stored.ValueType}

	switch stored.Kind {
	case "value":
		if stored.Value == nil {
			return nil, &snapshot.CorruptedDataError{Msg: fmt.Sprintf("cexpr %d: value kind with no value", id)}
		}
		ce.Kind = KindValue
		ce.Literal = *stored.Value

	case "variable":
		ce.Kind = KindVariable
		ce.VarName = stored.Variable

	case "func_call":
		ce.Kind = KindFuncCall
		fn, err := FunctionFromStored(stored.FuncCallFunc, r)
		if err != nil {
			return nil, err
		}
		ce.Func = fn
		for _, argID := range stored.FuncCallArgs {
			arg, err := CExprFromStored(argID, r)
			if err != nil {
				return nil, err
			}
			ce.Args = append(ce.Args, arg)
		}

	case "if":
		ce.Kind = KindIf
		for _, kase := range stored.IfCases {
			cond, err := CExprFromStored(kase.Cond, r)
			if err != nil {
				return nil, err
			}
			val, err := CExprFromStored(kase.Value, r)
			if err != nil {
				return nil, err
			}
			ce.Cases = append(ce.Cases, IfCExprCase{Cond: cond, Value: val})
		}
		if stored.IfDefault != nil {
			def, err := CExprFromStored(*stored.IfDefault, r)
			if err != nil {
				return nil, err
			}
			ce.Default = def
		}

	default:
		return nil, &snapshot.CorruptedDataError{Msg: fmt.Sprintf("cexpr %d: unknown kind %q", id, stored.Kind)}
	}

	r.SetCExprCache(id, ce)
	return ce, nil
}

// ToStored serializes f into w, returning its assigned Id. A dummy
// function (body not yet finalized) cannot be serialized — live execution
// never leaves one in scope past the statement that created it.
func (f *Function) ToStored(w *snapshot.Writer) (snapshot.Id, error) {
	id, seen := w.FuncID(f)
	if seen {
		return id, nil
	}

	sign := snapshot.FunctionSignature{
		Name:     f.sign.Name,
		ArgTypes: append([]types.ValueType(nil), f.sign.ArgTypes...),
	}
	stored := snapshot.Function{Sign: sign, ReturnType: f.returnType}

	switch {
	case f.IsDummy():
		return 0, fmt.Errorf("geomserver/internal/engine: cannot serialize dummy function %s", f.sign)
	case f.IsBuiltin():
		stored.Kind = "builtin"
	default:
		custom, _ := f.Custom()
		stored.Kind = "custom"
		stored.ArgNames = append([]string(nil), custom.ArgNames...)
		bodyID, err := custom.Body.ToStored(w)
		if err != nil {
			return 0, err
		}
		stored.Body = bodyID
	}

	w.PutFunc(id, stored)
	return id, nil
}

// FunctionFromStored reconstructs a *Function from id within r. The Id is
// cached before a custom function's body is walked, so a self-referencing
// (recursive) function resolves the inner call to the same pointer instead
// of recursing forever — mirroring original_source's insert-before-recurse
// trick for the same case.
func FunctionFromStored(id snapshot.Id, r *snapshot.Reader) (*Function, error) {
	if cached, ok := r.FuncCached(id); ok {
		return cached.(*Function), nil
	}

	stored, ok := r.GetFunc(id)
	if !ok {
		return nil, snapshot.DanglingID("function", id)
	}

	sig := FunctionSignature{
		Name:     stored.Sign.Name,
		ArgTypes: append([]types.ValueType(nil), stored.Sign.ArgTypes...),
	}

	switch stored.Kind {
	case "builtin":
		fn, ok := Builtins[sig.Key()]
		if !ok {
			return nil, &snapshot.CorruptedDataError{Msg: fmt.Sprintf("undefined builtin function: %s", sig)}
		}
		r.SetFuncCache(id, fn)
		return fn, nil

	case "custom":
		fn := NewDummy(sig, stored.ReturnType)
		r.SetFuncCache(id, fn)
		body, err := CExprFromStored(stored.Body, r)
		if err != nil {
			return nil, err
		}
		fn.SetCustomKind(append([]string(nil), stored.ArgNames...), body)
		return fn, nil

	default:
		return nil, &snapshot.CorruptedDataError{Msg: fmt.Sprintf("function %d: unknown kind %q", id, stored.Kind)}
	}
}
