package ast

import (
	"github.com/kotfind/geomserver/internal/errors"
	"github.com/kotfind/geomserver/internal/types"
)

// Statement is one top-level unit of a script: a Definition or a Command.
type Statement interface {
	statementNode()
	Pos() errors.Position
}

// ValueDef is `name[:T] = expr`.
type ValueDef struct {
	base
	Name      string
	ValueType *types.ValueType // nil when unannotated
	Body      Expr
}

func (*ValueDef) statementNode() {}

// FuncArg is one `name:T` parameter in a function definition's arg list.
type FuncArg struct {
	Name string
	Type types.ValueType
}

// FuncDef is `name arg:T … -> T = expr`.
type FuncDef struct {
	base
	Name       string
	Args       []FuncArg
	ReturnType types.ValueType
	Body       Expr
}

func (*FuncDef) statementNode() {}

// Command is `name! arg …`, one of the closed set listed in spec.md §4.1.
type Command struct {
	base
	Name string
	Args []CommandArg
}

func (*Command) statementNode() {}

// CommandArg is either a bare identifier (`get x`) or an expression
// (`set x 1+1`); which is legal depends on the command (spec.md §4.6).
type CommandArg struct {
	Ident string // non-empty when this arg is an identifier
	Expr  Expr   // non-nil when this arg is an expression
}

func (c CommandArg) IsIdent() bool { return c.Expr == nil }

func NewValueDef(pos errors.Position, name string, vt *types.ValueType, body Expr) *ValueDef {
	return &ValueDef{base: base{pos}, Name: name, ValueType: vt, Body: body}
}

func NewFuncDef(pos errors.Position, name string, args []FuncArg, ret types.ValueType, body Expr) *FuncDef {
	return &FuncDef{base: base{pos}, Name: name, Args: args, ReturnType: ret, Body: body}
}

func NewCommand(pos errors.Position, name string, args []CommandArg) *Command {
	return &Command{base: base{pos}, Name: name, Args: args}
}
