package graph

import (
	"fmt"

	"github.com/kotfind/geomserver/internal/engine"
	"github.com/kotfind/geomserver/internal/snapshot"
)

// ToStored serializes n into w, returning its assigned Id. Grounded on
// original_source's `Node::to_stored`.
func (n *Node) ToStored(w *snapshot.Writer) (snapshot.Id, error) {
	id, seen := w.NodeID(n)
	if seen {
		return id, nil
	}
	if err := w.Enter("node", id); err != nil {
		return 0, err
	}
	defer w.Exit(id)

	n.mu.Lock()
	isExpr, value, body, bindings := n.isExpr, n.value, n.body, append([]binding(nil), n.bindings...)
	n.mu.Unlock()

	var stored snapshot.Node
	if !isExpr {
		stored = snapshot.Node{Kind: "value", Value: &value}
	} else {
		bodyID, err := body.ToStored(w)
		if err != nil {
			return 0, err
		}
		stored.Kind = "expr"
		stored.Body = bodyID
		for _, b := range bindings {
			depID, err := b.node.ToStored(w)
			if err != nil {
				return 0, err
			}
			stored.Bindings = append(stored.Bindings, snapshot.Binding{Name: b.name, Node: depID})
		}
	}

	w.PutNode(id, stored)
	return id, nil
}

// NodeFromStored reconstructs a *Node from id within r.
func NodeFromStored(id snapshot.Id, r *snapshot.Reader) (*Node, error) {
	if cached, ok := r.NodeCached(id); ok {
		return cached.(*Node), nil
	}
	if err := r.Enter("node", id); err != nil {
		return nil, err
	}
	defer r.Exit(id)

	stored, ok := r.GetNode(id)
	if !ok {
		return nil, snapshot.DanglingID("node", id)
	}

	switch stored.Kind {
	case "value":
		if stored.Value == nil {
			return nil, &snapshot.CorruptedDataError{Msg: fmt.Sprintf("node %d: value kind with no value", id)}
		}
		n := NewValueNode(*stored.Value)
		r.SetNodeCache(id, n)
		return n, nil

	case "expr":
		body, err := engine.CExprFromStored(stored.Body, r)
		if err != nil {
			return nil, err
		}
		bindings := make([]binding, 0, len(stored.Bindings))
		for _, b := range stored.Bindings {
			dep, err := NodeFromStored(b.Node, r)
			if err != nil {
				return nil, err
			}
			bindings = append(bindings, binding{name: b.Name, node: dep})
		}
		n, err := NewExprNode(body, bindings)
		if err != nil {
			return nil, err
		}
		r.SetNodeCache(id, n)
		return n, nil

	default:
		return nil, &snapshot.CorruptedDataError{Msg: fmt.Sprintf("node %d: unknown kind %q", id, stored.Kind)}
	}
}

// ToStored serializes every Node and user-defined Function directly bound
// in s (not its parent chain — only a top-level, parentless session scope
// is ever dumped) into a snapshot.Scope.
func (s *ExecScope) ToStored() (*snapshot.Scope, error) {
	w := snapshot.NewWriter()

	for _, name := range s.Names() {
		n, _ := s.GetNode(name)
		id, err := n.ToStored(w)
		if err != nil {
			return nil, err
		}
		w.Scope.NameToNode[name] = id
	}

	for _, sig := range s.UserFuncSignatures() {
		fn, _ := s.GetUserFunc(sig)
		id, err := fn.ToStored(w)
		if err != nil {
			return nil, err
		}
		w.Scope.SignToFunc[sig.Key()] = id
	}

	return &w.Scope, nil
}

// FromStored reconstructs a fresh, parentless ExecScope from scope.
func FromStored(scope *snapshot.Scope) (*ExecScope, error) {
	if scope.Version != snapshot.CurrentVersion {
		return nil, &snapshot.CorruptedDataError{Msg: fmt.Sprintf("unsupported snapshot version %d", scope.Version)}
	}

	r := snapshot.NewReader(*scope)
	s := New()

	for _, id := range scope.SignToFunc {
		fn, err := engine.FunctionFromStored(id, r)
		if err != nil {
			return nil, err
		}
		if err := s.InsertFunc(fn.Sign(), fn); err != nil {
			return nil, err
		}
	}

	for name, id := range scope.NameToNode {
		n, err := NodeFromStored(id, r)
		if err != nil {
			return nil, err
		}
		if err := s.InsertNode(name, n); err != nil {
			return nil, err
		}
	}

	return s, nil
}
