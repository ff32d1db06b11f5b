// Package ast defines the untyped syntax tree produced by the parser.
// Expressions here carry no type information — that is added by
// internal/engine's compile pass.
package ast

import (
	"github.com/kotfind/geomserver/internal/errors"
	"github.com/kotfind/geomserver/internal/types"
)

// Expr is any parsed expression node.
type Expr interface {
	exprNode()
	Pos() errors.Position
}

type base struct {
	pos errors.Position
}

func (b base) Pos() errors.Position { return b.pos }

// Literal is a literal value: bool/int/real/string, or `none T`.
type Literal struct {
	base
	Value types.Value
}

func (*Literal) exprNode() {}

// Variable is a bare identifier reference.
type Variable struct {
	base
	Name string
}

func (*Variable) exprNode() {}

// FuncCall is a function/operator application: `name arg1 arg2 …`. Infix
// and prefix operators are desugared here by the parser to calls of
// `#`-prefixed names (spec.md §4.3); postfix `.field` desugars to a call of
// the projection name with the receiver as sole argument.
type FuncCall struct {
	base
	Name string
	Args []Expr
}

func (*FuncCall) exprNode() {}

// IfCase is one `cond then value` arm of an If expression.
type IfCase struct {
	Cond  Expr
	Value Expr
}

// If is a multi-armed conditional: `if c1 then v1, c2 then v2, … else default`.
// Default is nil when no `else` clause is present.
type If struct {
	base
	Cases   []IfCase
	Default Expr
}

func (*If) exprNode() {}

// IsCheck is `expr is T` or `expr is none`. Unlike the other operators,
// `is`/`is none` do not desugar to a builtin call at parse time: `is T` is
// a static check the compiler folds to a Bool literal (the language has no
// subtyping, so an expression's type is always known at compile time), and
// `is none` compiles to a per-type `#is_none` builtin call. Keeping both
// forms in one node lets the compiler make that choice in one place.
type IsCheck struct {
	base
	Operand Expr
	Type    types.ValueType // meaningless when IsNone is true
	IsNone  bool
}

func (*IsCheck) exprNode() {}

func NewIsCheck(pos errors.Position, operand Expr, t types.ValueType, isNone bool) *IsCheck {
	return &IsCheck{base: base{pos}, Operand: operand, Type: t, IsNone: isNone}
}

// LetDef is one binding of a `let` expression, with an optional type
// annotation.
type LetDef struct {
	Name      string
	ValueType *types.ValueType
	Body      Expr
}

// Let is `let def, def, … in body`.
type Let struct {
	base
	Defs []LetDef
	Body Expr
}

func (*Let) exprNode() {}

// NewLiteral, NewVariable, NewFuncCall, NewIf and NewLet are the
// constructors the parser uses; they exist mainly to keep position-stamping
// in one place.

func NewLiteral(pos errors.Position, v types.Value) *Literal {
	return &Literal{base: base{pos}, Value: v}
}

func NewVariable(pos errors.Position, name string) *Variable {
	return &Variable{base: base{pos}, Name: name}
}

func NewFuncCall(pos errors.Position, name string, args []Expr) *FuncCall {
	return &FuncCall{base: base{pos}, Name: name, Args: args}
}

func NewIf(pos errors.Position, cases []IfCase, def Expr) *If {
	return &If{base: base{pos}, Cases: cases, Default: def}
}

func NewLet(pos errors.Position, defs []LetDef, body Expr) *Let {
	return &Let{base: base{pos}, Defs: defs, Body: body}
}
