// Package graph is geomserver's live dependency graph: Node (ValueNode or
// ExprNode, spec.md §3/§4.5), ExecScope (the name/function environment,
// spec.md §4.6), and the top-level operations a session exposes
// (exec/eval/get/get_all/set/rm/clear/list_func/list_cmd). Grounded on
// original_source's `node.rs` and `exec.rs`.
package graph

import (
	"sync"
	"weak"

	"github.com/kotfind/geomserver/internal/engine"
	"github.com/kotfind/geomserver/internal/types"
)

// binding is one (name, Node) pair an ExprNode's body depends on. Bindings
// are collected by ranging over the CExpr.RequiredVars map, so their order
// is not defined.
type binding struct {
	name string
	node *Node
}

// Node is either a ValueNode (a mutable cell) or an ExprNode (an immutable
// body plus bindings and a cached value); spec.md §3. Node identity is
// pointer identity — two *Node values are "equal" iff they are the same
// pointer, which Go gives for free and is what get_nodes_to_rm's
// de-duplication relies on.
type Node struct {
	mu sync.Mutex

	// value holds the ValueNode cell or the ExprNode's last-evaluated
	// cache, depending on isExpr.
	value types.Value

	isExpr   bool
	body     *engine.CExpr // nil for a ValueNode
	bindings []binding     // nil for a ValueNode

	// requiredBy holds weak references to every Node whose body depends
	// directly on this one, so that dropping the last strong reference to
	// a dependent frees it without this Node keeping it alive
	// (original_source's `required_by: Mutex<Vec<WeakNode>>`).
	requiredBy []weak.Pointer[Node]
}

// NewValueNode constructs a ValueNode holding v directly, with no
// dependencies.
func NewValueNode(v types.Value) *Node {
	return &Node{value: v}
}

// NewExprNode constructs an ExprNode from a compiled body and its resolved
// bindings, evaluates it once, and registers a weak back-reference on every
// binding so that later mutations of those nodes can find and recompute
// this one (spec.md §4.5, "Node construction from a definition" step 3).
func NewExprNode(body *engine.CExpr, bindings []binding) (*Node, error) {
	value, err := body.Eval(varsFromBindings(bindings))
	if err != nil {
		return nil, err
	}
	node := &Node{value: value, isExpr: true, body: body, bindings: bindings}
	for _, b := range bindings {
		b.node.addRequiredBy(node)
	}
	return node, nil
}

func varsFromBindings(bindings []binding) engine.VarsMap {
	vars := make(engine.VarsMap, len(bindings))
	for _, b := range bindings {
		vars[b.name] = b.node.GetValue()
	}
	return vars
}

func (n *Node) addRequiredBy(dependent *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requiredBy = append(n.requiredBy, weak.Make(dependent))
}

// ValueType reports the Node's static type, which never changes over the
// Node's lifetime.
func (n *Node) ValueType() types.ValueType {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.isExpr {
		return n.body.ValueType
	}
	return n.value.Type()
}

// GetValue returns the Node's current cached value.
func (n *Node) GetValue() types.Value {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.value
}

// Set mutates a ValueNode's cell and propagates the change through every
// transitively dependent ExprNode (spec.md §4.5 "Mutation"). Calling Set on
// an ExprNode is a programming error in the caller — the public `set` route
// is responsible for rejecting that before reaching here — so it panics
// like the teacher's own internal invariant assertions do.
func (n *Node) Set(v types.Value) error {
	n.mu.Lock()
	if n.isExpr {
		n.mu.Unlock()
		panic("geomserver/internal/graph: Set called on an ExprNode")
	}
	n.value = v
	n.mu.Unlock()
	return n.update()
}

// updateSelf re-evaluates an ExprNode's body against its bindings' current
// values and reports whether the cached value changed. It is a no-op
// reporting "changed" for a ValueNode, whose value was already written by
// Set before update() is called.
func (n *Node) updateSelf() (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.isExpr {
		return true, nil
	}
	newValue, err := n.body.Eval(varsFromBindings(n.bindings))
	if err != nil {
		return false, err
	}
	changed := !newValue.Equal(n.value)
	n.value = newValue
	return changed, nil
}

// update re-evaluates n and, if (and only if — spec.md §4.5's permitted
// optimization) the value changed, propagates into every live dependent.
// Dead weak references are pruned lazily as they are encountered.
func (n *Node) update() error {
	changed, err := n.updateSelf()
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	n.mu.Lock()
	live := n.requiredBy[:0]
	var dependents []*Node
	for _, wp := range n.requiredBy {
		if dep := wp.Value(); dep != nil {
			live = append(live, wp)
			dependents = append(dependents, dep)
		}
	}
	n.requiredBy = live
	n.mu.Unlock()

	for _, dep := range dependents {
		if err := dep.update(); err != nil {
			return err
		}
	}
	return nil
}

// NodesToRemove computes the set of Nodes transitively required-by n (n
// included), via a DFS over weak back-references, pruning dead ones along
// the way. Grounded on original_source's `Node::get_nodes_to_rm`.
func NodesToRemove(n *Node) map[*Node]struct{} {
	out := map[*Node]struct{}{}
	var visit func(*Node)
	visit = func(cur *Node) {
		if _, seen := out[cur]; seen {
			return
		}
		out[cur] = struct{}{}

		cur.mu.Lock()
		live := cur.requiredBy[:0]
		var dependents []*Node
		for _, wp := range cur.requiredBy {
			if dep := wp.Value(); dep != nil {
				live = append(live, wp)
				dependents = append(dependents, dep)
			}
		}
		cur.requiredBy = live
		cur.mu.Unlock()

		for _, dep := range dependents {
			visit(dep)
		}
	}
	visit(n)
	return out
}
