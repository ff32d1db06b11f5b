package engine

import "github.com/kotfind/geomserver/internal/types"

// CExprKind is the discriminant of a compiled expression node (spec.md §3).
// Let is included for spec fidelity but Compile never actually constructs
// one — let-bindings are fully inlined at compile time (see compile.go) —
// so Eval's KindLet branch only exists to keep CExpr's evaluation total over
// its declared kind set.
type CExprKind int

const (
	KindValue CExprKind = iota
	KindVariable
	KindFuncCall
	KindIf
	KindLet
)

func (k CExprKind) String() string {
	switch k {
	case KindValue:
		return "Value"
	case KindVariable:
		return "Variable"
	case KindFuncCall:
		return "FuncCall"
	case KindIf:
		return "If"
	case KindLet:
		return "Let"
	default:
		return "?"
	}
}

// IfCExprCase is one `cond then value` arm of a compiled If.
type IfCExprCase struct {
	Cond  *CExpr
	Value *CExpr
}

// LetCExprDef is one compiled let-binding, kept on a CExpr of KindLet only
// (never produced by Compile — see CExprKind's doc comment).
type LetCExprDef struct {
	Name string
	Type *types.ValueType
	Body *CExpr
}

// CExpr is a compiled, type-checked expression tree with resolved function
// references (spec.md §3). It is shared and immutable once built: the same
// *CExpr may be referenced by more than one Node's dependency closure, and
// RequiredVars/ValueType never change after construction.
type CExpr struct {
	Kind         CExprKind
	ValueType    types.ValueType
	RequiredVars map[string]struct{}

	// KindValue
	Literal types.Value

	// KindVariable
	VarName string

	// KindFuncCall
	Func *Function
	Args []*CExpr

	// KindIf
	Cases   []IfCExprCase
	Default *CExpr // nil when there is no else clause

	// KindLet
	LetDefs []LetCExprDef
	LetBody *CExpr
}

func unionVars(sets ...map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range sets {
		for v := range s {
			out[v] = struct{}{}
		}
	}
	return out
}
