// Package server implements spec.md §6's wire protocol: JSON over HTTP
// POST, one route per operation, a closed route set. Grounded on
// original_source's `crates/server` (`routes.rs`'s route table, one
// handler per operation, `result.rs`'s ok/error envelope), adapted from
// axum+tokio onto `net/http`+`log/slog` since neither async runtime nor
// `axum` appear anywhere in the retrieved Go pack.
//
// original_source keeps exactly one process-wide `Arc<Mutex<ExecScope>>`;
// geomserver instead keys sessions by a `google/uuid` id so one process can
// host several independent sessions side by side (spec.md §5's "no direct
// sharing across sessions" is the boundary between them) — see
// `POST /session`.
package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/kotfind/geomserver/internal/graph"
)

// Server hosts zero or more named sessions behind geomserver's closed route
// set.
type Server struct {
	log *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// session pairs a live ExecScope with the single exclusive lock spec.md §5
// requires: every request touching this session's scope holds mu for
// the duration of its parse/compile/evaluate/update work, so two concurrent
// requests against the same session are fully linearized and a `set` is
// never observed half-propagated.
type session struct {
	mu    sync.Mutex
	scope *graph.ExecScope
}

// New constructs a Server with no sessions yet.
func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log, sessions: map[uuid.UUID]*session{}}
}

// Handler builds the mux implementing spec.md §6's closed route set, plus
// the session-lifecycle route this implementation adds.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /ping", s.handlePing)
	mux.HandleFunc("POST /session", s.handleNewSession)
	mux.HandleFunc("POST /clear", withSession(s, s.handleClear))
	mux.HandleFunc("POST /eval", withSession(s, s.handleEval))
	mux.HandleFunc("POST /exec", withSession(s, s.handleExec))
	mux.HandleFunc("POST /func/list", withSession(s, s.handleFuncList))
	mux.HandleFunc("POST /items/get", withSession(s, s.handleItemsGet))
	mux.HandleFunc("POST /items/get_all", withSession(s, s.handleItemsGetAll))
	mux.HandleFunc("POST /rm", withSession(s, s.handleRm))
	mux.HandleFunc("POST /set", withSession(s, s.handleSet))
	mux.HandleFunc("POST /json/dump", withSession(s, s.handleJSONDump))
	mux.HandleFunc("POST /json/load", withSession(s, s.handleJSONLoad))
	mux.HandleFunc("POST /svg/dump", withSession(s, s.handleSVGDump))

	return loggingMiddleware(s.log, mux)
}

func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// errResponse is spec.md §6's error body: `{msg: string}`, the cause chain
// already concatenated by the time it reaches here (errChainMsg does the
// concatenating, mirroring original_source's `IntoError::into_error`
// walking `Error::source()`).
type errResponse struct {
	Msg string `json:"msg"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, errResponse{Msg: errChainMsg(err)})
}

// errChainMsg concatenates err's cause chain into one message, the Go
// analogue of original_source's `IntoError::into_error` walking
// `std::error::Error::source()`.
func errChainMsg(err error) string {
	msg := err.Error()
	for {
		unwrapped := unwrap(err)
		if unwrapped == nil {
			return msg
		}
		err = unwrapped
	}
}

func unwrap(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type newSessionResponse struct {
	Session uuid.UUID `json:"session"`
}

func (s *Server) handleNewSession(w http.ResponseWriter, _ *http.Request) {
	id := uuid.New()

	s.mu.Lock()
	s.sessions[id] = &session{scope: graph.New()}
	s.mu.Unlock()

	s.log.Info("session created", "session", id)
	writeJSON(w, http.StatusOK, newSessionResponse{Session: id})
}

// readAndRestore drains r.Body and puts an equivalent reader back, so both
// withSession (peeking the session id) and the route handler (decoding the
// full request) can each read the body from the start.
func readAndRestore(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// sessionRequest is embedded first in every per-session request body, so a
// handler can decode the whole body once and still find the session id.
type sessionRequest struct {
	Session uuid.UUID `json:"session"`
}

// withSession resolves the request's session id before calling next,
// writing the usual error response (HTTP 500, `{msg}`) itself if the
// session is unknown.
func withSession(s *Server, next func(*session, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readAndRestore(r)
		if err != nil {
			writeError(w, err)
			return
		}

		var sr sessionRequest
		if err := json.Unmarshal(body, &sr); err != nil {
			writeError(w, fmt.Errorf("decoding session id: %w", err))
			return
		}

		s.mu.Lock()
		sess, ok := s.sessions[sr.Session]
		s.mu.Unlock()
		if !ok {
			writeError(w, fmt.Errorf("session %s not found", sr.Session))
			return
		}

		sess.mu.Lock()
		defer sess.mu.Unlock()
		next(sess, w, r)
	}
}
