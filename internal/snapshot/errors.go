package snapshot

import "fmt"

// JSONParseError wraps a failure to even parse the dump as JSON, kept
// distinct from CorruptedDataError (structurally valid JSON that isn't a
// valid Scope) per original_source's `LoadError::JsonParseError` vs.
// `LoadError::CorruptedData`.
type JSONParseError struct{ Err error }

func (e *JSONParseError) Error() string { return "failed to parse as json: " + e.Err.Error() }
func (e *JSONParseError) Unwrap() error { return e.Err }

// CorruptedDataError is spec.md §4.7's `CorruptedData{msg}`: json/load found
// a structurally valid JSON document that is not a valid Scope (a dangling
// id, a cycle, an unresolvable builtin signature, a version mismatch).
// Grounded on original_source's `LoadError::CorruptedData { msg: String }`.
type CorruptedDataError struct{ Msg string }

func (e *CorruptedDataError) Error() string { return "corrupted data: " + e.Msg }

// DanglingID builds the CorruptedDataError for a reference to an id with no
// matching entry in the stored scope (kind is "cexpr", "function" or
// "node").
func DanglingID(kind string, id Id) error {
	return &CorruptedDataError{Msg: fmt.Sprintf("%s with id %d is undefined", kind, id)}
}

// CycleDetected builds the CorruptedDataError for a reference graph that
// loops back on itself, which a well-formed live CExpr/Node graph never
// does (both are built bottom-up with no back edges).
func CycleDetected(kind string, id Id) error {
	return &CorruptedDataError{Msg: fmt.Sprintf("circular dependency detected at %s %d", kind, id)}
}
