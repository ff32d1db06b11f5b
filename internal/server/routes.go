package server

import (
	"net/http"

	"github.com/kotfind/geomserver/internal/engine"
	"github.com/kotfind/geomserver/internal/graph"
	"github.com/kotfind/geomserver/internal/parser"
	"github.com/kotfind/geomserver/internal/snapshot"
	"github.com/kotfind/geomserver/internal/svg"
	"github.com/kotfind/geomserver/internal/types"
)

// tableResponse is the wire shape of a graph.Table (spec.md §4.6's query
// command results), shared by every route whose response is fundamentally a
// rendered table: func/list, and each table in exec's response.
type tableResponse struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

func toTableResponse(t *graph.Table) tableResponse {
	if t == nil {
		return tableResponse{}
	}
	return tableResponse{Header: t.Header, Rows: t.Rows}
}

func (s *Server) handleClear(sess *session, w http.ResponseWriter, _ *http.Request) {
	sess.scope.Clear()
	writeJSON(w, http.StatusOK, struct{}{})
}

type evalRequest struct {
	sessionRequest
	Exprs []evalRequestExpr `json:"exprs"`
}

type evalRequestExpr struct {
	Expr string                  `json:"expr"`
	Vars map[string]types.Value `json:"vars"`
}

type evalResponse struct {
	Values []evalResult `json:"values"`
}

// evalResult is spec.md §6's `Result<Value, Error>`: exactly one of the two
// fields is set, mirroring original_source's client-visible Result shape.
type evalResult struct {
	Value *types.Value `json:"value,omitempty"`
	Error *string      `json:"error,omitempty"`
}

func (s *Server) handleEval(sess *session, w http.ResponseWriter, r *http.Request) {
	var req evalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	results := make([]evalResult, len(req.Exprs))
	for i, e := range req.Exprs {
		expr, errs := parser.ParseExpr(e.Expr)
		if len(errs) > 0 {
			msg := errs[0].Error()
			results[i] = evalResult{Error: &msg}
			continue
		}

		vars := make(engine.VarsMap, len(e.Vars))
		for name, v := range e.Vars {
			vars[name] = v
		}

		value, err := sess.scope.EvalExpr(expr, vars)
		if err != nil {
			msg := errChainMsg(err)
			results[i] = evalResult{Error: &msg}
			continue
		}
		results[i] = evalResult{Value: &value}
	}

	writeJSON(w, http.StatusOK, evalResponse{Values: results})
}

type execRequest struct {
	sessionRequest
	Script string `json:"script"`
}

type execResponse struct {
	Tables []tableResponse `json:"tables"`
}

func (s *Server) handleExec(sess *session, w http.ResponseWriter, r *http.Request) {
	var req execRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p := parser.New(req.Script)
	stmts := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		writeError(w, &errs[0])
		return
	}

	tables, err := sess.scope.Exec(stmts)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := execResponse{Tables: make([]tableResponse, len(tables))}
	for i := range tables {
		resp.Tables[i] = toTableResponse(&tables[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFuncList(sess *session, w http.ResponseWriter, _ *http.Request) {
	p := parser.New("list_func!")
	stmts := p.ParseProgram()
	tables, err := sess.scope.Exec(stmts)
	if err != nil {
		writeError(w, err)
		return
	}
	var tbl graph.Table
	if len(tables) > 0 {
		tbl = tables[0]
	}
	writeJSON(w, http.StatusOK, toTableResponse(&tbl))
}

type itemsGetRequest struct {
	sessionRequest
	Name string `json:"name"`
}

type itemsGetResponse struct {
	Value types.Value `json:"value"`
}

func (s *Server) handleItemsGet(sess *session, w http.ResponseWriter, r *http.Request) {
	var req itemsGetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	v, err := sess.scope.Get(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemsGetResponse{Value: v})
}

type itemsGetAllResponse struct {
	Items map[string]types.Value `json:"items"`
}

func (s *Server) handleItemsGetAll(sess *session, w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, itemsGetAllResponse{Items: sess.scope.GetAll()})
}

type rmRequest struct {
	sessionRequest
	Names []string `json:"names"`
}

func (s *Server) handleRm(sess *session, w http.ResponseWriter, r *http.Request) {
	var req rmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := sess.scope.Rm(req.Names...); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

type setRequest struct {
	sessionRequest
	Name string `json:"name"`
	Expr string `json:"expr"`
}

func (s *Server) handleSet(sess *session, w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	expr, errs := parser.ParseExpr(req.Expr)
	if len(errs) > 0 {
		writeError(w, &errs[0])
		return
	}
	if err := sess.scope.Set(req.Name, expr); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

type jsonDumpResponse struct {
	JSON string `json:"json"`
}

func (s *Server) handleJSONDump(sess *session, w http.ResponseWriter, _ *http.Request) {
	stored, err := sess.scope.ToStored()
	if err != nil {
		writeError(w, err)
		return
	}
	dumped, err := snapshot.Dump(stored)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonDumpResponse{JSON: dumped})
}

type jsonLoadRequest struct {
	sessionRequest
	JSON string `json:"json"`
}

func (s *Server) handleJSONLoad(sess *session, w http.ResponseWriter, r *http.Request) {
	var req jsonLoadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	stored, err := snapshot.Load([]byte(req.JSON))
	if err != nil {
		writeError(w, err)
		return
	}
	scope, err := graph.FromStored(stored)
	if err != nil {
		writeError(w, err)
		return
	}
	sess.scope = scope
	writeJSON(w, http.StatusOK, struct{}{})
}

type svgDumpResponse struct {
	SVG string `json:"svg"`
}

func (s *Server) handleSVGDump(sess *session, w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, svgDumpResponse{SVG: svg.Render(sess.scope)})
}
