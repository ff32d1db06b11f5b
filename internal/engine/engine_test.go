package engine

import (
	"math"
	"testing"

	"github.com/kotfind/geomserver/internal/ast"
	"github.com/kotfind/geomserver/internal/errors"
	"github.com/kotfind/geomserver/internal/types"
)

// fakeScope is a minimal ScopeView for compiling expressions in isolation,
// mirroring the teacher's own preference for small hand-written fakes over
// a mocking library in package-local tests.
type fakeScope struct {
	varTypes  map[string]types.ValueType
	userFuncs map[string]*Function
}

func newFakeScope() *fakeScope {
	return &fakeScope{varTypes: map[string]types.ValueType{}, userFuncs: map[string]*Function{}}
}

func (s *fakeScope) LookupVarType(name string) (types.ValueType, bool) {
	t, ok := s.varTypes[name]
	return t, ok
}

func (s *fakeScope) LookupUserFunc(sig FunctionSignature) (*Function, bool) {
	fn, ok := s.userFuncs[sig.Key()]
	return fn, ok
}

var noPos = errors.Position{}

func mustCompile(t *testing.T, expr ast.Expr, scope ScopeView) *CExpr {
	t.Helper()
	ce, err := Compile(expr, NewCScope(scope))
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return ce
}

func TestEvalArithmetic(t *testing.T) {
	// (1 + 2) * 3
	expr := ast.NewFuncCall(noPos, "#mul", []ast.Expr{
		ast.NewFuncCall(noPos, "#add", []ast.Expr{
			ast.NewLiteral(noPos, types.IntVal(1)),
			ast.NewLiteral(noPos, types.IntVal(2)),
		}),
		ast.NewLiteral(noPos, types.IntVal(3)),
	})
	ce := mustCompile(t, expr, newFakeScope())
	v, err := ce.Eval(nil)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v.Type() != types.Int || v.AsInt() != 9 {
		t.Fatalf("got %s, want 9", v)
	}
}

func TestEvalVariable(t *testing.T) {
	scope := newFakeScope()
	scope.varTypes["a"] = types.Int
	ce := mustCompile(t, ast.NewVariable(noPos, "a"), scope)
	v, err := ce.Eval(VarsMap{"a": types.IntVal(5)})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v.AsInt() != 5 {
		t.Fatalf("got %s, want 5", v)
	}
}

func TestCompileUndefinedVariable(t *testing.T) {
	_, err := Compile(ast.NewVariable(noPos, "missing"), NewCScope(newFakeScope()))
	if _, ok := err.(*UndefinedVariableError); !ok {
		t.Fatalf("got %v, want *UndefinedVariableError", err)
	}
}

func TestEvalIf(t *testing.T) {
	expr := ast.NewIf(noPos, []ast.IfCase{
		{Cond: ast.NewLiteral(noPos, types.BoolVal(false)), Value: ast.NewLiteral(noPos, types.IntVal(1))},
		{Cond: ast.NewLiteral(noPos, types.BoolVal(true)), Value: ast.NewLiteral(noPos, types.IntVal(2))},
	}, ast.NewLiteral(noPos, types.IntVal(3)))
	ce := mustCompile(t, expr, newFakeScope())
	v, err := ce.Eval(nil)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v.AsInt() != 2 {
		t.Fatalf("got %s, want 2", v)
	}
}

func TestIfBranchTypeMismatch(t *testing.T) {
	expr := ast.NewIf(noPos, []ast.IfCase{
		{Cond: ast.NewLiteral(noPos, types.BoolVal(true)), Value: ast.NewLiteral(noPos, types.IntVal(1))},
	}, ast.NewLiteral(noPos, types.RealVal(1)))
	_, err := Compile(expr, NewCScope(newFakeScope()))
	if _, ok := err.(*IfDifferentTypesError); !ok {
		t.Fatalf("got %v, want *IfDifferentTypesError", err)
	}
}

func TestIfNoDefaultExhausted(t *testing.T) {
	expr := ast.NewIf(noPos, []ast.IfCase{
		{Cond: ast.NewLiteral(noPos, types.BoolVal(false)), Value: ast.NewLiteral(noPos, types.IntVal(1))},
	}, nil)
	ce := mustCompile(t, expr, newFakeScope())
	_, err := ce.Eval(nil)
	if _, ok := err.(*NothingMatchedError); !ok {
		t.Fatalf("got %v, want *NothingMatchedError", err)
	}
}

func TestLetInlining(t *testing.T) {
	// let x = 1, y = x + 1 in x + y
	expr := ast.NewLet(noPos, []ast.LetDef{
		{Name: "x", Body: ast.NewLiteral(noPos, types.IntVal(1))},
		{Name: "y", Body: ast.NewFuncCall(noPos, "#add", []ast.Expr{
			ast.NewVariable(noPos, "x"),
			ast.NewLiteral(noPos, types.IntVal(1)),
		})},
	}, ast.NewFuncCall(noPos, "#add", []ast.Expr{
		ast.NewVariable(noPos, "x"),
		ast.NewVariable(noPos, "y"),
	}))
	ce := mustCompile(t, expr, newFakeScope())
	if ce.Kind == KindLet {
		t.Fatalf("Compile must inline let-bindings, never produce KindLet")
	}
	v, err := ce.Eval(nil)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v.AsInt() != 3 {
		t.Fatalf("got %s, want 3", v)
	}
}

func TestLetRedefinitionRejected(t *testing.T) {
	expr := ast.NewLet(noPos, []ast.LetDef{
		{Name: "x", Body: ast.NewLiteral(noPos, types.IntVal(1))},
		{Name: "x", Body: ast.NewLiteral(noPos, types.IntVal(2))},
	}, ast.NewVariable(noPos, "x"))
	_, err := Compile(expr, NewCScope(newFakeScope()))
	if _, ok := err.(*VariableRedefinitionError); !ok {
		t.Fatalf("got %v, want *VariableRedefinitionError", err)
	}
}

func TestIsCheckStaticFold(t *testing.T) {
	ce := mustCompile(t, ast.NewIsCheck(noPos, ast.NewLiteral(noPos, types.IntVal(1)), types.Int, false), newFakeScope())
	if ce.Kind != KindValue {
		t.Fatalf("`is T` must fold to a compile-time constant, got kind %s", ce.Kind)
	}
	v, _ := ce.Eval(nil)
	if !v.AsBool() {
		t.Fatalf("1 is int should be true")
	}

	ce = mustCompile(t, ast.NewIsCheck(noPos, ast.NewLiteral(noPos, types.IntVal(1)), types.Real, false), newFakeScope())
	v, _ = ce.Eval(nil)
	if v.AsBool() {
		t.Fatalf("1 is real should be false")
	}
}

func TestIsNoneBuiltin(t *testing.T) {
	ce := mustCompile(t, ast.NewIsCheck(noPos, ast.NewLiteral(noPos, types.None(types.Int)), types.Int, true), newFakeScope())
	if ce.Kind != KindFuncCall {
		t.Fatalf("`is none` must compile to a #is_none call, got kind %s", ce.Kind)
	}
	v, err := ce.Eval(nil)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if !v.AsBool() {
		t.Fatalf("none int is none should be true")
	}
}

func TestEqualityTotalOverNone(t *testing.T) {
	expr := ast.NewFuncCall(noPos, "#eq", []ast.Expr{
		ast.NewLiteral(noPos, types.None(types.Int)),
		ast.NewLiteral(noPos, types.None(types.Int)),
	})
	ce := mustCompile(t, expr, newFakeScope())
	v, err := ce.Eval(nil)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if !v.AsBool() {
		t.Fatalf("none int == none int should be true")
	}
}

func TestProjectionOnNonePropagatesUnexpectedNone(t *testing.T) {
	expr := ast.NewFuncCall(noPos, "x", []ast.Expr{
		ast.NewLiteral(noPos, types.None(types.Pt)),
	})
	ce := mustCompile(t, expr, newFakeScope())
	_, err := ce.Eval(nil)
	if _, ok := err.(*UnexpectedNoneError); !ok {
		t.Fatalf("got %v, want *UnexpectedNoneError", err)
	}
}

func TestIntPowNegativeExponentFails(t *testing.T) {
	expr := ast.NewFuncCall(noPos, "#pow", []ast.Expr{
		ast.NewLiteral(noPos, types.IntVal(2)),
		ast.NewLiteral(noPos, types.IntVal(-1)),
	})
	ce := mustCompile(t, expr, newFakeScope())
	if _, err := ce.Eval(nil); err == nil {
		t.Fatalf("expected an error for 2 ^ -1")
	}
}

func TestLineToABC(t *testing.T) {
	// line (pt 1 2) (pt 3 4) . a/b/c should satisfy a*px+b*py+c == 0 for both endpoints.
	l := ast.NewFuncCall(noPos, "line", []ast.Expr{
		ast.NewFuncCall(noPos, "pt", []ast.Expr{ast.NewLiteral(noPos, types.RealVal(1)), ast.NewLiteral(noPos, types.RealVal(2))}),
		ast.NewFuncCall(noPos, "pt", []ast.Expr{ast.NewLiteral(noPos, types.RealVal(3)), ast.NewLiteral(noPos, types.RealVal(4))}),
	})
	scope := newFakeScope()
	coef := map[string]float64{}
	for _, proj := range []string{"a", "b", "c"} {
		ce := mustCompile(t, ast.NewFuncCall(noPos, proj, []ast.Expr{l}), scope)
		v, err := ce.Eval(nil)
		if err != nil {
			t.Fatalf("eval %s: %v", proj, err)
		}
		coef[proj] = v.AsReal()
	}
	for _, p := range [][2]float64{{1, 2}, {3, 4}} {
		if got := coef["a"]*p[0] + coef["b"]*p[1] + coef["c"]; math.Abs(got) > 1e-9 {
			t.Fatalf("a*%g + b*%g + c = %g, want 0", p[0], p[1], got)
		}
	}
}

func TestCustomFunctionRecursionViaDummy(t *testing.T) {
	// fact n:int -> int = if n <= 0 then 1 else n * fact (n - 1)
	sig := FunctionSignature{Name: "fact", ArgTypes: []types.ValueType{types.Int}}
	dummy := NewDummy(sig, types.Int)
	scope := newFakeScope()
	scope.userFuncs[sig.Key()] = dummy

	cscope := NewCScope(scope)
	if err := cscope.InsertVarType("n", types.Int); err != nil {
		t.Fatalf("insert var type: %v", err)
	}

	body := ast.NewIf(noPos,
		[]ast.IfCase{{
			Cond:  ast.NewFuncCall(noPos, "#leq", []ast.Expr{ast.NewVariable(noPos, "n"), ast.NewLiteral(noPos, types.IntVal(0))}),
			Value: ast.NewLiteral(noPos, types.IntVal(1)),
		}},
		ast.NewFuncCall(noPos, "#mul", []ast.Expr{
			ast.NewVariable(noPos, "n"),
			ast.NewFuncCall(noPos, "fact", []ast.Expr{
				ast.NewFuncCall(noPos, "#sub", []ast.Expr{ast.NewVariable(noPos, "n"), ast.NewLiteral(noPos, types.IntVal(1))}),
			}),
		}),
	)

	compiledBody, err := Compile(body, cscope)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	dummy.SetCustomKind([]string{"n"}, compiledBody)

	v, err := dummy.Eval([]types.Value{types.IntVal(5)})
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v.AsInt() != 120 {
		t.Fatalf("fact(5) = %s, want 120", v)
	}
}
