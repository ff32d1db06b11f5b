// Package engine is geomserver's compile/evaluate core: CExpr (the typed,
// compiled expression tree), Function (builtin or user-defined), and the
// builtin registry. Grounded on original_source's `executor` crate
// (cexpr.rs, function/mod.rs, eval.rs, cexpr/compile.rs).
package engine

import (
	"fmt"
	"strings"

	"github.com/kotfind/geomserver/internal/types"
)

// FunctionSignature is (name, arg_types). Two signatures are equal iff both
// fields are (spec.md §3) — overloading by argument-type tuple is the only
// form of polymorphism in this language.
type FunctionSignature struct {
	Name     string
	ArgTypes []types.ValueType
}

// Key returns a canonical string encoding of the signature, used as a map
// key since ArgTypes (a slice) is not itself comparable.
func (s FunctionSignature) Key() string {
	var sb strings.Builder
	sb.WriteString(s.Name)
	for _, t := range s.ArgTypes {
		sb.WriteByte('/')
		sb.WriteString(t.String())
	}
	return sb.String()
}

func (s FunctionSignature) String() string {
	names := make([]string, len(s.ArgTypes))
	for i, t := range s.ArgTypes {
		names[i] = t.String()
	}
	return fmt.Sprintf("%s(%s)", s.Name, strings.Join(names, ", "))
}

// BuiltinFunc is a native builtin implementation.
type BuiltinFunc func(args []types.Value) (types.Value, error)

// CustomFunction is a user-defined function body: argument names bound
// positionally against a compiled body with no closure capture (spec.md
// §4.3 — "free variables other than globals are impossible by
// construction").
type CustomFunction struct {
	ArgNames []string
	Body     *CExpr
}

func (c *CustomFunction) eval(args []types.Value) (types.Value, error) {
	vars := make(VarsMap, len(c.ArgNames))
	for i, name := range c.ArgNames {
		vars[name] = args[i]
	}
	return c.Body.Eval(vars)
}

// functionKind is Builtin xor Custom; a Function with neither set is
// "dummy" — pushed into scope before its own body finishes compiling, to
// permit self-reference for recursive user functions (spec.md §4.3).
type functionKind struct {
	builtin BuiltinFunc
	custom  *CustomFunction
}

// Function is shared and reference-counted by Go's garbage collector;
// two Functions are equal iff they are the same pointer (spec.md §3).
type Function struct {
	sign       FunctionSignature
	returnType types.ValueType
	kind       *functionKind
}

// NewBuiltin constructs a fully-formed builtin Function.
func NewBuiltin(sig FunctionSignature, returnType types.ValueType, fn BuiltinFunc) *Function {
	return &Function{sign: sig, returnType: returnType, kind: &functionKind{builtin: fn}}
}

// NewDummy constructs a Function with its signature and return type fixed
// but no body yet, so that compiling the body of a recursive function can
// resolve calls to itself. SetCustomKind must be called exactly once before
// the function is ever evaluated.
func NewDummy(sig FunctionSignature, returnType types.ValueType) *Function {
	return &Function{sign: sig, returnType: returnType}
}

// SetCustomKind finalizes a dummy Function. Calling it twice is a
// programming error in the caller (scope construction), not a user-facing
// one, so it panics like the teacher's compiler invariants do elsewhere.
func (f *Function) SetCustomKind(argNames []string, body *CExpr) {
	if f.kind != nil {
		panic("geomserver/internal/engine: function kind set twice")
	}
	f.kind = &functionKind{custom: &CustomFunction{ArgNames: argNames, Body: body}}
}

// IsDummy reports whether the Function's body has not yet been finalized.
func (f *Function) IsDummy() bool { return f.kind == nil }

func (f *Function) Sign() FunctionSignature     { return f.sign }
func (f *Function) ReturnType() types.ValueType { return f.returnType }

// IsBuiltin reports whether f is a native builtin (as opposed to a
// user-defined, CExpr-bodied function). Used by the snapshot encoder to
// decide whether to store a body or just a signature reference.
func (f *Function) IsBuiltin() bool { return f.kind != nil && f.kind.builtin != nil }

// Custom returns f's user-defined body, if any.
func (f *Function) Custom() (*CustomFunction, bool) {
	if f.kind != nil && f.kind.custom != nil {
		return f.kind.custom, true
	}
	return nil, false
}

// Eval dispatches to the builtin closure or the custom body. Evaluating a
// dummy function is a programming error in the engine — the compiler never
// finalizes a definition before its first call site resolves, so this path
// is only reachable by a bug in scope construction, not user input.
func (f *Function) Eval(args []types.Value) (types.Value, error) {
	switch {
	case f.kind == nil:
		return types.Value{}, fmt.Errorf("geomserver/internal/engine: dummy function %s evaluated before being finalized", f.sign)
	case f.kind.builtin != nil:
		return f.kind.builtin(args)
	default:
		return f.kind.custom.eval(args)
	}
}

func (f *Function) String() string {
	return fmt.Sprintf("%s -> %s", f.sign, f.returnType)
}

// ScopeView is the read side of an execution scope that the compiler needs:
// declared item types (for free variables) and user-defined functions.
// internal/graph's ExecScope implements this; engine never imports graph,
// keeping the dependency one-directional.
type ScopeView interface {
	LookupVarType(name string) (types.ValueType, bool)
	LookupUserFunc(sig FunctionSignature) (*Function, bool)
}
