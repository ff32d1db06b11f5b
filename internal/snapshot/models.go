// Package snapshot serializes and deserializes an ExecScope's full state
// to/from JSON (spec.md §4.7, "json/dump" and "json/load"). Grounded on
// original_source's `store` module: `StoredId`s are node/cexpr/function
// identities (original_source uses `Arc` addresses directly; this module
// assigns sequential ids instead, since Go gives no stable pointer address),
// `to_stored`/`from_stored` walk the live graph and the stored graph
// respectively, both guarding against cycles the same way (a processing set
// entered on recursion, left on return).
package snapshot

import "github.com/kotfind/geomserver/internal/types"

// Id identifies one stored CExpr, Function or Node. Ids are unique across
// all three kinds (original_source's models.rs documents the same
// assumption for its Arc-address-derived ids, used when checking for
// dependency cycles).
type Id uint64

// Scope is the full on-disk shape of one ExecScope (original_source's
// `StoredExecScope`).
type Scope struct {
	Version    int               `json:"version"`
	CExprs     map[Id]CExpr      `json:"cexprs"`
	Nodes      map[Id]Node       `json:"nodes"`
	Funcs      map[Id]Function   `json:"funcs"`
	NameToNode map[string]Id     `json:"name_to_node"`
	SignToFunc map[string]Id     `json:"sign_to_func"`
}

// CurrentVersion is stamped onto every dump; json/load rejects a mismatched
// version rather than guessing at a migration.
const CurrentVersion = 1

// CExpr is the stored shape of a compiled expression tree node.
type CExpr struct {
	RequiredVars []string         `json:"required_vars"`
	ValueType    types.ValueType  `json:"value_type"`
	Kind         string           `json:"kind"` // "value" | "variable" | "func_call" | "if"

	Value    *types.Value `json:"value,omitempty"`
	Variable string       `json:"variable,omitempty"`

	FuncCallFunc Id  `json:"func_call_func,omitempty"`
	FuncCallArgs []Id `json:"func_call_args,omitempty"`

	IfCases       []IfCase `json:"if_cases,omitempty"`
	IfDefault     *Id      `json:"if_default,omitempty"`
}

// IfCase is one stored `cond then value` arm.
type IfCase struct {
	Cond  Id `json:"cond"`
	Value Id `json:"value"`
}

// Function is the stored shape of a Function: either a reference to a
// builtin (resolved by signature against the process-wide registry on
// load) or a user-defined body.
type Function struct {
	Sign       FunctionSignature `json:"sign"`
	ReturnType types.ValueType   `json:"return_type"`
	Kind       string            `json:"kind"` // "builtin" | "custom"

	// Kind == "custom"
	ArgNames []string `json:"arg_names,omitempty"`
	Body     Id       `json:"body,omitempty"`
}

// FunctionSignature is the JSON-friendly shape of engine.FunctionSignature.
type FunctionSignature struct {
	Name     string            `json:"name"`
	ArgTypes []types.ValueType `json:"arg_types"`
}

// Node is the stored shape of a graph Node: either a bare value (a
// ValueNode) or a compiled body plus resolved bindings (an ExprNode).
type Node struct {
	Kind  string `json:"kind"` // "value" | "expr"
	Value *types.Value `json:"value,omitempty"`

	// Kind == "expr"
	Body     Id        `json:"body,omitempty"`
	Bindings []Binding `json:"bindings,omitempty"`
}

// Binding is one (name, Node) pair an ExprNode's body depends on.
type Binding struct {
	Name string `json:"name"`
	Node Id     `json:"node"`
}
