package engine

import (
	"github.com/kotfind/geomserver/internal/ast"
	"github.com/kotfind/geomserver/internal/types"
)

// CScope is a compilation frame: a stack of lexical `let` frames over an
// enclosing ExecScope (spec.md §4.2). Grounded on original_source's
// `cexpr::compile::CScope`.
type CScope struct {
	scope    ScopeView
	bindings map[string]*CExpr
	varTypes map[string]types.ValueType
	parent   *CScope
}

// NewCScope creates a root compilation frame over scope.
func NewCScope(scope ScopeView) *CScope {
	return &CScope{scope: scope, bindings: map[string]*CExpr{}, varTypes: map[string]types.ValueType{}}
}

func (c *CScope) push() *CScope {
	return &CScope{scope: c.scope, bindings: map[string]*CExpr{}, varTypes: map[string]types.ValueType{}, parent: c}
}

func (c *CScope) insertBinding(name string, v *CExpr) error {
	if _, exists := c.bindings[name]; exists {
		return &VariableRedefinitionError{Name: name}
	}
	c.bindings[name] = v
	return nil
}

// InsertVarType declares a function argument's type in the root frame. Used
// by the caller compiling a FuncDef's body before calling Compile, so that
// argument names resolve as free variables within the body.
func (c *CScope) InsertVarType(name string, t types.ValueType) error {
	if _, exists := c.varTypes[name]; exists {
		return &VariableRedefinitionError{Name: name}
	}
	c.varTypes[name] = t
	return nil
}

func (c *CScope) getBinding(name string) (*CExpr, bool) {
	for s := c; s != nil; s = s.parent {
		if v, ok := s.bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (c *CScope) getVarType(name string) (types.ValueType, bool) {
	for s := c; s != nil; s = s.parent {
		if t, ok := s.varTypes[name]; ok {
			return t, true
		}
	}
	return c.scope.LookupVarType(name)
}

// getFunc resolves a call signature against built-ins first, then
// user-defined functions (spec.md §4.3: "resolve by exact match against
// built-ins then user-defined. No coercion.").
func (c *CScope) getFunc(sig FunctionSignature) (*Function, bool) {
	if fn, ok := Builtins[sig.Key()]; ok {
		return fn, true
	}
	return c.scope.LookupUserFunc(sig)
}

// Compile turns an AST expression into a CExpr against cscope, implementing
// spec.md §4.2's rules exactly.
func Compile(expr ast.Expr, cscope *CScope) (*CExpr, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return compileLiteral(e)
	case *ast.Variable:
		return compileVariable(e, cscope)
	case *ast.FuncCall:
		return compileFuncCall(e, cscope)
	case *ast.If:
		return compileIf(e, cscope)
	case *ast.Let:
		return compileLet(e, cscope)
	case *ast.IsCheck:
		return compileIsCheck(e, cscope)
	default:
		panic("geomserver/internal/engine: unknown ast.Expr type in Compile")
	}
}

func compileLiteral(lit *ast.Literal) (*CExpr, error) {
	return &CExpr{
		Kind:         KindValue,
		ValueType:    lit.Value.Type(),
		RequiredVars: map[string]struct{}{},
		Literal:      lit.Value,
	}, nil
}

// compileVariable implements rule 2: a name bound in an enclosing `let`
// frame is substituted by returning that frame's CExpr directly (inlining);
// otherwise it becomes a free variable of the enclosing node.
func compileVariable(v *ast.Variable, cscope *CScope) (*CExpr, error) {
	if bound, ok := cscope.getBinding(v.Name); ok {
		return bound, nil
	}
	vt, ok := cscope.getVarType(v.Name)
	if !ok {
		return nil, &UndefinedVariableError{Name: v.Name}
	}
	return &CExpr{
		Kind:         KindVariable,
		ValueType:    vt,
		RequiredVars: map[string]struct{}{v.Name: {}},
		VarName:      v.Name,
	}, nil
}

func compileFuncCall(call *ast.FuncCall, cscope *CScope) (*CExpr, error) {
	args := make([]*CExpr, len(call.Args))
	argTypes := make([]types.ValueType, len(call.Args))
	required := make([]map[string]struct{}, 0, len(call.Args))
	for i, a := range call.Args {
		ce, err := Compile(a, cscope)
		if err != nil {
			return nil, err
		}
		args[i] = ce
		argTypes[i] = ce.ValueType
		required = append(required, ce.RequiredVars)
	}

	sig := FunctionSignature{Name: call.Name, ArgTypes: argTypes}
	fn, ok := cscope.getFunc(sig)
	if !ok {
		return nil, &UndefinedFunctionError{Sig: sig}
	}

	return &CExpr{
		Kind:         KindFuncCall,
		ValueType:    fn.ReturnType(),
		RequiredVars: unionVars(required...),
		Func:         fn,
		Args:         args,
	}, nil
}

func compileIf(ifExpr *ast.If, cscope *CScope) (*CExpr, error) {
	cases := make([]IfCExprCase, len(ifExpr.Cases))
	var valueType types.ValueType
	vars := []map[string]struct{}{}

	for i, c := range ifExpr.Cases {
		cond, err := Compile(c.Cond, cscope)
		if err != nil {
			return nil, err
		}
		val, err := Compile(c.Value, cscope)
		if err != nil {
			return nil, err
		}
		if cond.ValueType != types.Bool {
			return nil, &IfConditionNotBoolError{}
		}
		if i == 0 {
			valueType = val.ValueType
		} else if val.ValueType != valueType {
			return nil, &IfDifferentTypesError{A: valueType, B: val.ValueType}
		}
		cases[i] = IfCExprCase{Cond: cond, Value: val}
		vars = append(vars, cond.RequiredVars, val.RequiredVars)
	}

	var def *CExpr
	if ifExpr.Default != nil {
		compiled, err := Compile(ifExpr.Default, cscope)
		if err != nil {
			return nil, err
		}
		if compiled.ValueType != valueType {
			return nil, &IfDifferentTypesError{A: valueType, B: compiled.ValueType}
		}
		def = compiled
		vars = append(vars, compiled.RequiredVars)
	}

	return &CExpr{
		Kind:         KindIf,
		ValueType:    valueType,
		RequiredVars: unionVars(vars...),
		Cases:        cases,
		Default:      def,
	}, nil
}

// compileLet implements rule 5: bindings are compiled in order against a
// pushed frame and fully inlined; the Let AST node never survives into the
// compiled tree as a KindLet CExpr — only the (already-substituted) body's
// CExpr is returned.
func compileLet(let *ast.Let, cscope *CScope) (*CExpr, error) {
	inner := cscope.push()
	for _, def := range let.Defs {
		body, err := Compile(def.Body, inner)
		if err != nil {
			return nil, err
		}
		if def.ValueType != nil && body.ValueType != *def.ValueType {
			return nil, &UnexpectedLetDefinitionTypeError{Name: def.Name, Expected: *def.ValueType, Got: body.ValueType}
		}
		if err := inner.insertBinding(def.Name, body); err != nil {
			return nil, err
		}
	}
	return Compile(let.Body, inner)
}

// compileIsCheck handles both forms: `is T` is a compile-time fold (the
// language has no subtyping, so an expression's static type already
// settles the question — original_source has no runtime `#is_<type>`
// builtin at all, only a disabled `#is_none`), and `is none` compiles to a
// per-type `#is_none` builtin call (re-enabled from original_source's
// commented-out definitions — see internal/engine/builtins_typecasts.go).
func compileIsCheck(check *ast.IsCheck, cscope *CScope) (*CExpr, error) {
	operand, err := Compile(check.Operand, cscope)
	if err != nil {
		return nil, err
	}

	if check.IsNone {
		sig := FunctionSignature{Name: "#is_none", ArgTypes: []types.ValueType{operand.ValueType}}
		fn, ok := cscope.getFunc(sig)
		if !ok {
			return nil, &UndefinedFunctionError{Sig: sig}
		}
		return &CExpr{
			Kind:         KindFuncCall,
			ValueType:    types.Bool,
			RequiredVars: operand.RequiredVars,
			Func:         fn,
			Args:         []*CExpr{operand},
		}, nil
	}

	return &CExpr{
		Kind:         KindValue,
		ValueType:    types.Bool,
		RequiredVars: map[string]struct{}{},
		Literal:      types.BoolVal(operand.ValueType == check.Type),
	}, nil
}
