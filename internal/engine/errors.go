package engine

import (
	"fmt"

	"github.com/kotfind/geomserver/internal/types"
)

// The named error types below are spec.md §7's compile and eval error
// sets, grounded on original_source's `CError`/`Error` enums
// (cexpr/compile.rs, error.rs). Each is a distinct Go type rather than a
// single error-code field so callers can use errors.As to branch on kind,
// matching the teacher's own practice of small typed errors per case.
// They carry no source position, since a CExpr's span is not tracked at
// this layer, and they are returned as they are rather than wrapped in
// internal/errors.SourceError (which only lexer and parser errors use).

type UndefinedVariableError struct{ Name string }

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("variable %q undefined", e.Name)
}

type UndefinedFunctionError struct{ Sig FunctionSignature }

func (e *UndefinedFunctionError) Error() string {
	return fmt.Sprintf("function %s undefined", e.Sig)
}

type IfDifferentTypesError struct{ A, B types.ValueType }

func (e *IfDifferentTypesError) Error() string {
	return fmt.Sprintf("if: branches have different types: %s and %s", e.A, e.B)
}

type IfConditionNotBoolError struct{}

func (e *IfConditionNotBoolError) Error() string { return "if: condition must be bool" }

type UnexpectedLetDefinitionTypeError struct {
	Name           string
	Expected, Got types.ValueType
}

func (e *UnexpectedLetDefinitionTypeError) Error() string {
	return fmt.Sprintf("let %s: expected type %s, got %s", e.Name, e.Expected, e.Got)
}

type VariableRedefinitionError struct{ Name string }

func (e *VariableRedefinitionError) Error() string {
	return fmt.Sprintf("redefinition of variable %q", e.Name)
}

type FunctionRedefinitionError struct{ Sig FunctionSignature }

func (e *FunctionRedefinitionError) Error() string {
	return fmt.Sprintf("redefinition of function %s", e.Sig)
}

type UnexpectedTypeError struct {
	For            string
	Expected, Got types.ValueType
}

func (e *UnexpectedTypeError) Error() string {
	return fmt.Sprintf("unexpected type for %s: expected %s, got %s", e.For, e.Expected, e.Got)
}

// UnexpectedNoneError is raised when a none value reaches a context that
// requires one to be present (spec.md §4.4 — an if condition that is
// `none bool`, for instance).
type UnexpectedNoneError struct{}

func (e *UnexpectedNoneError) Error() string { return "got unexpected none value" }

// NothingMatchedError is raised when an If with no default exhausts every
// case without a true condition.
type NothingMatchedError struct{}

func (e *NothingMatchedError) Error() string {
	return "if: no case matched and no default value was provided"
}
