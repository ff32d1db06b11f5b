package snapshot

// Reader walks a Scope back into live objects. Each built object is cached
// by Id as an `any` (the concrete *engine.CExpr / *engine.Function /
// *graph.Node, boxed) so a shared or self-referential (recursive function)
// id is only built once and resolves to the same pointer everywhere it is
// referenced — the inverse of Writer's dedup. Enter/Exit guard against a
// cyclic reference graph in the input, which a hand-edited or corrupted
// dump could contain even though a live graph never would.
type Reader struct {
	scope Scope

	cexprCache map[Id]any
	funcCache  map[Id]any
	nodeCache  map[Id]any
	processing map[Id]bool
}

// NewReader wraps scope for reconstruction.
func NewReader(scope Scope) *Reader {
	return &Reader{
		scope:      scope,
		cexprCache: map[Id]any{},
		funcCache:  map[Id]any{},
		nodeCache:  map[Id]any{},
		processing: map[Id]bool{},
	}
}

func (r *Reader) GetCExpr(id Id) (CExpr, bool) { c, ok := r.scope.CExprs[id]; return c, ok }
func (r *Reader) GetFunc(id Id) (Function, bool) { f, ok := r.scope.Funcs[id]; return f, ok }
func (r *Reader) GetNode(id Id) (Node, bool)     { n, ok := r.scope.Nodes[id]; return n, ok }

// NameToNode and SignToFunc expose the Scope's top-level name/signature
// tables for FromStored to iterate.
func (r *Reader) NameToNode() map[string]Id { return r.scope.NameToNode }
func (r *Reader) SignToFunc() map[string]Id { return r.scope.SignToFunc }
func (r *Reader) Version() int              { return r.scope.Version }

func (r *Reader) CExprCached(id Id) (any, bool) { v, ok := r.cexprCache[id]; return v, ok }
func (r *Reader) FuncCached(id Id) (any, bool)  { v, ok := r.funcCache[id]; return v, ok }
func (r *Reader) NodeCached(id Id) (any, bool)  { v, ok := r.nodeCache[id]; return v, ok }

func (r *Reader) SetCExprCache(id Id, v any) { r.cexprCache[id] = v }
func (r *Reader) SetFuncCache(id Id, v any)  { r.funcCache[id] = v }
func (r *Reader) SetNodeCache(id Id, v any)  { r.nodeCache[id] = v }

// Enter/Exit are CExpr/Node cycle guards; Function recursion is instead
// handled by caching a function's Id before its body is walked (see
// engine.FunctionFromStored), mirroring original_source's insert-before-
// recurse trick, so no Enter/Exit is needed for functions.
func (r *Reader) Enter(kind string, id Id) error {
	if r.processing[id] {
		return CycleDetected(kind, id)
	}
	r.processing[id] = true
	return nil
}

func (r *Reader) Exit(id Id) { delete(r.processing, id) }
