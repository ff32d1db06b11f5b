package graph

import (
	"sort"
	"sync"

	"github.com/kotfind/geomserver/internal/engine"
	"github.com/kotfind/geomserver/internal/types"
)

// ExecScope is the name/function environment a script executes against: a
// map of live Nodes by name plus a map of user-defined Functions by
// signature, optionally chained to a parent (spec.md §4.6). Grounded on
// original_source's `exec::ExecScope`.
type ExecScope struct {
	mu     sync.Mutex
	items  map[string]*Node
	funcs  map[string]*engine.Function // keyed by FunctionSignature.Key()
	parent *ExecScope
}

// New constructs an empty, parentless ExecScope.
func New() *ExecScope {
	return &ExecScope{items: map[string]*Node{}, funcs: map[string]*engine.Function{}}
}

// Push returns a child scope chained to s, mirroring original_source's
// `ExecScope::push`. Nothing in the module calls it; the ad-hoc
// `eval(expr, vars)` frame is an evalView instead (see exec.go).
func (s *ExecScope) Push() *ExecScope {
	return &ExecScope{items: map[string]*Node{}, funcs: map[string]*engine.Function{}, parent: s}
}

// GetNode resolves name against this scope, then its parent chain.
func (s *ExecScope) GetNode(name string) (*Node, bool) {
	s.mu.Lock()
	n, ok := s.items[name]
	s.mu.Unlock()
	if ok {
		return n, true
	}
	if s.parent != nil {
		return s.parent.GetNode(name)
	}
	return nil, false
}

// GetUserFunc resolves sig against this scope's user-defined functions,
// then its parent chain. Built-ins are not considered here — engine.CScope
// checks those first (see engine.CScope.getFunc), so a ScopeView only ever
// needs to answer for user-defined ones.
func (s *ExecScope) GetUserFunc(sig engine.FunctionSignature) (*engine.Function, bool) {
	s.mu.Lock()
	fn, ok := s.funcs[sig.Key()]
	s.mu.Unlock()
	if ok {
		return fn, true
	}
	if s.parent != nil {
		return s.parent.GetUserFunc(sig)
	}
	return nil, false
}

// LookupVarType implements engine.ScopeView: a free variable in a script
// resolves to an already-defined Node's static type.
func (s *ExecScope) LookupVarType(name string) (types.ValueType, bool) {
	n, ok := s.GetNode(name)
	if !ok {
		return 0, false
	}
	return n.ValueType(), true
}

// LookupUserFunc implements engine.ScopeView.
func (s *ExecScope) LookupUserFunc(sig engine.FunctionSignature) (*engine.Function, bool) {
	return s.GetUserFunc(sig)
}

// InsertNode binds name to n, failing with VariableRedefinitionError if
// name is already bound in this (not a parent) scope.
func (s *ExecScope) InsertNode(name string, n *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[name]; exists {
		return &engine.VariableRedefinitionError{Name: name}
	}
	s.items[name] = n
	return nil
}

// InsertFunc binds sig to fn, failing with FunctionRedefinitionError if sig
// is already bound in this (not a parent) scope.
func (s *ExecScope) InsertFunc(sig engine.FunctionSignature, fn *engine.Function) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.funcs[sig.Key()]; exists {
		return &engine.FunctionRedefinitionError{Sig: sig}
	}
	s.funcs[sig.Key()] = fn
	return nil
}

// RemoveNode drops the strong reference to name, reporting whether it was
// present.
func (s *ExecScope) RemoveNode(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[name]; !ok {
		return false
	}
	delete(s.items, name)
	return true
}

// NameOf returns the first name bound to n in this scope, if any. Used by
// the rm cascade to map the transitive dependent Node set back to scope
// names to drop (spec.md §4.5's "drop the scope's strong references to any
// named Node in that set").
func (s *ExecScope) NameOf(n *Node) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, node := range s.items {
		if node == n {
			return name, true
		}
	}
	return "", false
}

// Names returns every bound name in this scope, sorted for deterministic
// output (get_all / snapshot dumps).
func (s *ExecScope) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.items))
	for name := range s.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UserFuncSignatures returns every user-defined function signature in this
// scope (list_func's "user-defined" partition).
func (s *ExecScope) UserFuncSignatures() []engine.FunctionSignature {
	s.mu.Lock()
	defer s.mu.Unlock()
	sigs := make([]engine.FunctionSignature, 0, len(s.funcs))
	for _, fn := range s.funcs {
		sigs = append(sigs, fn.Sign())
	}
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].String() < sigs[j].String() })
	return sigs
}

// Clear drops every name and user-function mapping; built-ins remain
// (spec.md §4.5 "Clearing").
func (s *ExecScope) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = map[string]*Node{}
	s.funcs = map[string]*engine.Function{}
}
