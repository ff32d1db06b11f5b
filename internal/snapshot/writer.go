package snapshot

// Writer accumulates a Scope while walking a live ExecScope. Each distinct
// object (by pointer identity, held as an `any` map key) is assigned one
// sequential Id the first time it is seen; a later reference to the same
// object reuses that Id and is not re-walked, so a value shared by more
// than one dependent (the same *CExpr body referenced by two Nodes, a
// recursive function's own *Function) is stored exactly once.
// Cycle-guarded the same way original_source's `to_stored` asserts do,
// since a well-formed live graph never actually cycles — this only ever
// fires if that invariant is broken by a bug, not by user input.
type Writer struct {
	Scope Scope

	nextID     Id
	cexprIDs   map[any]Id
	funcIDs    map[any]Id
	nodeIDs    map[any]Id
	processing map[Id]bool
}

// NewWriter returns a Writer ready to accumulate a fresh Scope.
func NewWriter() *Writer {
	return &Writer{
		Scope: Scope{
			Version:    CurrentVersion,
			CExprs:     map[Id]CExpr{},
			Nodes:      map[Id]Node{},
			Funcs:      map[Id]Function{},
			NameToNode: map[string]Id{},
			SignToFunc: map[string]Id{},
		},
		nextID:     1,
		cexprIDs:   map[any]Id{},
		funcIDs:    map[any]Id{},
		nodeIDs:    map[any]Id{},
		processing: map[Id]bool{},
	}
}

func (w *Writer) alloc() Id {
	id := w.nextID
	w.nextID++
	return id
}

// CExprID returns ptr's Id (a *engine.CExpr, kept as `any` since this
// package cannot import engine), allocating one on first sight. seen
// reports whether ptr was already assigned an Id in this Writer.
func (w *Writer) CExprID(ptr any) (id Id, seen bool) {
	if id, ok := w.cexprIDs[ptr]; ok {
		return id, true
	}
	id = w.alloc()
	w.cexprIDs[ptr] = id
	return id, false
}

// FuncID is CExprID's counterpart for *engine.Function.
func (w *Writer) FuncID(ptr any) (id Id, seen bool) {
	if id, ok := w.funcIDs[ptr]; ok {
		return id, true
	}
	id = w.alloc()
	w.funcIDs[ptr] = id
	return id, false
}

// NodeID is CExprID's counterpart for *graph.Node.
func (w *Writer) NodeID(ptr any) (id Id, seen bool) {
	if id, ok := w.nodeIDs[ptr]; ok {
		return id, true
	}
	id = w.alloc()
	w.nodeIDs[ptr] = id
	return id, false
}

// Enter marks id as currently being walked, failing if it is already on the
// stack (a cycle). Exit must be called (typically via defer) once the walk
// of id completes.
func (w *Writer) Enter(kind string, id Id) error {
	if w.processing[id] {
		return CycleDetected(kind, id)
	}
	w.processing[id] = true
	return nil
}

func (w *Writer) Exit(id Id) { delete(w.processing, id) }

func (w *Writer) PutCExpr(id Id, c CExpr)    { w.Scope.CExprs[id] = c }
func (w *Writer) PutFunc(id Id, f Function)  { w.Scope.Funcs[id] = f }
func (w *Writer) PutNode(id Id, n Node)      { w.Scope.Nodes[id] = n }
