package graph

import (
	"fmt"

	"github.com/kotfind/geomserver/internal/ast"
	"github.com/kotfind/geomserver/internal/engine"
	"github.com/kotfind/geomserver/internal/types"
)

// Table is the tabular result a query-type command produces — `get`,
// `get_all`, `eval`, `list_cmd`, `list_func` (spec.md §4.6). Definitions and
// mutating commands (`set`, `rm`, `clear`) produce none. Grounded on the
// client's own `Table` type (original_source's `cli/src/printing.rs`
// renders exactly this shape: a header row plus data rows).
type Table struct {
	Header []string
	Rows   [][]string
}

// Exec executes each already-parsed statement left to right, collecting one
// Table per query-type command; a failure aborts the remaining statements
// and surfaces the partial error and partial results (spec.md §4.6).
func (s *ExecScope) Exec(stmts []ast.Statement) ([]Table, error) {
	var tables []Table
	for _, stmt := range stmts {
		tbl, err := s.ExecStatement(stmt)
		if tbl != nil {
			tables = append(tables, *tbl)
		}
		if err != nil {
			return tables, err
		}
	}
	return tables, nil
}

// ExecStatement executes one top-level ValueDef, FuncDef or Command,
// returning a Table when the statement is a query-type command.
func (s *ExecScope) ExecStatement(stmt ast.Statement) (*Table, error) {
	switch st := stmt.(type) {
	case *ast.ValueDef:
		return nil, s.execValueDef(st)
	case *ast.FuncDef:
		return nil, s.execFuncDef(st)
	case *ast.Command:
		return s.execCommand(st)
	default:
		panic("geomserver/internal/graph: unknown ast.Statement type")
	}
}

// execValueDef implements spec.md §4.5's "Node construction from a
// definition".
func (s *ExecScope) execValueDef(def *ast.ValueDef) error {
	body, err := engine.Compile(def.Body, engine.NewCScope(s))
	if err != nil {
		return err
	}
	if def.ValueType != nil && body.ValueType != *def.ValueType {
		return &engine.UnexpectedTypeError{For: def.Name, Expected: *def.ValueType, Got: body.ValueType}
	}

	node, err := s.nodeFromCExpr(body)
	if err != nil {
		return err
	}
	return s.InsertNode(def.Name, node)
}

// nodeFromCExpr builds either a ValueNode (no free variables) or an
// ExprNode (bound to the scope's existing Nodes for each free variable).
func (s *ExecScope) nodeFromCExpr(body *engine.CExpr) (*Node, error) {
	if len(body.RequiredVars) == 0 {
		v, err := body.Eval(nil)
		if err != nil {
			return nil, err
		}
		return NewValueNode(v), nil
	}

	bindings := make([]binding, 0, len(body.RequiredVars))
	for name := range body.RequiredVars {
		n, ok := s.GetNode(name)
		if !ok {
			// Unreachable: Compile would already have failed with
			// UndefinedVariableError if name weren't bound.
			return nil, &engine.UndefinedVariableError{Name: name}
		}
		bindings = append(bindings, binding{name: name, node: n})
	}
	return NewExprNode(body, bindings)
}

// execFuncDef implements spec.md §4.3's self-reference-via-dummy rule,
// grounded on original_source's `Function::push_from_definition`.
func (s *ExecScope) execFuncDef(def *ast.FuncDef) error {
	argTypes := make([]types.ValueType, len(def.Args))
	for i, a := range def.Args {
		argTypes[i] = a.Type
	}
	sig := engine.FunctionSignature{Name: def.Name, ArgTypes: argTypes}

	fn := engine.NewDummy(sig, def.ReturnType)
	if err := s.InsertFunc(sig, fn); err != nil {
		return err
	}
	// A definition that fails below does not leave its unfinalized dummy
	// bound under sig.
	defer func() {
		if fn.IsDummy() {
			s.mu.Lock()
			delete(s.funcs, sig.Key())
			s.mu.Unlock()
		}
	}()

	cscope := engine.NewCScope(s)
	for _, a := range def.Args {
		if err := cscope.InsertVarType(a.Name, a.Type); err != nil {
			return err
		}
	}

	body, err := engine.Compile(def.Body, cscope)
	if err != nil {
		return err
	}

	argNames := make([]string, len(def.Args))
	for i, a := range def.Args {
		argNames[i] = a.Name
	}
	argNameSet := make(map[string]struct{}, len(argNames))
	for _, n := range argNames {
		argNameSet[n] = struct{}{}
	}
	for v := range body.RequiredVars {
		if _, ok := argNameSet[v]; !ok {
			return fmt.Errorf("undefined variable %q in function %s", v, sig)
		}
	}

	if body.ValueType != def.ReturnType {
		return &engine.UnexpectedTypeError{For: def.Name, Expected: def.ReturnType, Got: body.ValueType}
	}

	fn.SetCustomKind(argNames, body)
	return nil
}

// EvalExpr implements spec.md §4.6's `eval(expr, vars)`: expr is compiled
// in a frame seeded with vars' types (so vars may shadow scope names) and
// evaluated under the scope's current Node values plus vars.
func (s *ExecScope) EvalExpr(expr ast.Expr, vars engine.VarsMap) (types.Value, error) {
	view := &evalView{scope: s, vars: vars}
	body, err := engine.Compile(expr, engine.NewCScope(view))
	if err != nil {
		return types.Value{}, err
	}

	evalVars := make(engine.VarsMap, len(body.RequiredVars))
	for name := range body.RequiredVars {
		if v, ok := vars[name]; ok {
			evalVars[name] = v
			continue
		}
		if n, ok := s.GetNode(name); ok {
			evalVars[name] = n.GetValue()
			continue
		}
		return types.Value{}, &engine.UndefinedVariableError{Name: name}
	}
	return body.Eval(evalVars)
}

// evalView is the ScopeView used by EvalExpr: vars' (ad-hoc) types take
// priority over the scope's own Node types, letting `eval` shadow names.
type evalView struct {
	scope *ExecScope
	vars  engine.VarsMap
}

func (v *evalView) LookupVarType(name string) (types.ValueType, bool) {
	if val, ok := v.vars[name]; ok {
		return val.Type(), true
	}
	return v.scope.LookupVarType(name)
}

func (v *evalView) LookupUserFunc(sig engine.FunctionSignature) (*engine.Function, bool) {
	return v.scope.LookupUserFunc(sig)
}

// Get returns name's current value.
func (s *ExecScope) Get(name string) (types.Value, error) {
	n, ok := s.GetNode(name)
	if !ok {
		return types.Value{}, &engine.UndefinedVariableError{Name: name}
	}
	return n.GetValue(), nil
}

// GetAll returns every name's current value.
func (s *ExecScope) GetAll() map[string]types.Value {
	out := map[string]types.Value{}
	for _, name := range s.Names() {
		n, _ := s.GetNode(name)
		out[name] = n.GetValue()
	}
	return out
}

// Set compiles expr against the scope, evaluates it immediately, and
// assigns the result to name's ValueNode, propagating the change through
// its dependents (spec.md §4.5 "Mutation"). name must already be bound to a
// ValueNode of the same type as expr's static type.
func (s *ExecScope) Set(name string, expr ast.Expr) error {
	n, ok := s.GetNode(name)
	if !ok {
		return &engine.UndefinedVariableError{Name: name}
	}

	body, err := engine.Compile(expr, engine.NewCScope(s))
	if err != nil {
		return err
	}
	if body.ValueType != n.ValueType() {
		return &engine.UnexpectedTypeError{For: name, Expected: n.ValueType(), Got: body.ValueType}
	}
	if n.isExpr {
		return fmt.Errorf("%q is a computed value and cannot be set directly", name)
	}

	vars := make(engine.VarsMap, len(body.RequiredVars))
	for v := range body.RequiredVars {
		dep, ok := s.GetNode(v)
		if !ok {
			return &engine.UndefinedVariableError{Name: v}
		}
		vars[v] = dep.GetValue()
	}
	value, err := body.Eval(vars)
	if err != nil {
		return err
	}
	return n.Set(value)
}

// Rm implements spec.md §4.5's "Deletion": drop the strong reference to
// every given name, cascading to every Node transitively required-by it.
func (s *ExecScope) Rm(names ...string) error {
	for _, name := range names {
		n, ok := s.GetNode(name)
		if !ok {
			return &engine.UndefinedVariableError{Name: name}
		}
		for victim := range NodesToRemove(n) {
			if victimName, ok := s.NameOf(victim); ok {
				s.RemoveNode(victimName)
			}
		}
	}
	return nil
}

// ClosedCommandSet is spec.md §4.1's fixed script-level command vocabulary.
var ClosedCommandSet = []string{
	"clear", "eval", "get", "get_all", "set", "rm", "list_cmd", "list_func",
}

// execCommand dispatches one script-level `name! args…` invocation to the
// matching ExecScope operation.
func (s *ExecScope) execCommand(cmd *ast.Command) (*Table, error) {
	switch cmd.Name {
	case "clear":
		s.Clear()
		return nil, nil

	case "eval":
		if len(cmd.Args) != 1 || cmd.Args[0].Expr == nil {
			return nil, fmt.Errorf("eval! expects exactly one expression argument")
		}
		v, err := s.EvalExpr(cmd.Args[0].Expr, nil)
		if err != nil {
			return nil, err
		}
		return &Table{Header: []string{"value"}, Rows: [][]string{{v.String()}}}, nil

	case "get":
		if len(cmd.Args) != 1 || !cmd.Args[0].IsIdent() {
			return nil, fmt.Errorf("get! expects exactly one identifier argument")
		}
		v, err := s.Get(cmd.Args[0].Ident)
		if err != nil {
			return nil, err
		}
		return &Table{Header: []string{"name", "value"}, Rows: [][]string{{cmd.Args[0].Ident, v.String()}}}, nil

	case "get_all":
		rows := make([][]string, 0, len(s.Names()))
		for _, name := range s.Names() {
			n, _ := s.GetNode(name)
			rows = append(rows, []string{name, n.GetValue().String()})
		}
		return &Table{Header: []string{"name", "value"}, Rows: rows}, nil

	case "set":
		if len(cmd.Args) != 2 || !cmd.Args[0].IsIdent() || cmd.Args[1].Expr == nil {
			return nil, fmt.Errorf("set! expects an identifier and an expression argument")
		}
		return nil, s.Set(cmd.Args[0].Ident, cmd.Args[1].Expr)

	case "rm":
		names := make([]string, len(cmd.Args))
		for i, a := range cmd.Args {
			if !a.IsIdent() {
				return nil, fmt.Errorf("rm! expects only identifier arguments")
			}
			names[i] = a.Ident
		}
		return nil, s.Rm(names...)

	case "list_cmd":
		rows := make([][]string, len(ClosedCommandSet))
		for i, name := range ClosedCommandSet {
			rows[i] = []string{name}
		}
		return &Table{Header: []string{"command"}, Rows: rows}, nil

	case "list_func":
		return s.listFuncTable(), nil

	default:
		return nil, fmt.Errorf("unknown command %q", cmd.Name)
	}
}

// listFuncTable partitions functions into built-in, operator (`#`-prefixed
// built-ins, displayed separately since they have no surface-syntax name of
// their own) and user-defined, per spec.md §4.6.
func (s *ExecScope) listFuncTable() *Table {
	rows := make([][]string, 0, len(engine.Builtins)+8)
	for _, fn := range engine.Builtins {
		kind := "builtin"
		if len(fn.Sign().Name) > 0 && fn.Sign().Name[0] == '#' {
			kind = "operator"
		}
		rows = append(rows, []string{kind, fn.String()})
	}
	for _, sig := range s.UserFuncSignatures() {
		fn, _ := s.GetUserFunc(sig)
		rows = append(rows, []string{"user", fn.String()})
	}
	return &Table{Header: []string{"kind", "signature"}, Rows: rows}
}
