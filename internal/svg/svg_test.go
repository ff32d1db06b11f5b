package svg

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/kotfind/geomserver/internal/graph"
	"github.com/kotfind/geomserver/internal/parser"
)

func mustExec(t *testing.T, s *graph.ExecScope, src string) {
	t.Helper()
	p := parser.New(src)
	stmts := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error: %v", errs[0])
	}
	if _, err := s.Exec(stmts); err != nil {
		t.Fatalf("exec error: %v", err)
	}
}

func TestRenderEmptyScope(t *testing.T) {
	s := graph.New()
	snaps.MatchSnapshot(t, Render(s))
}

func TestRenderPtLineCirc(t *testing.T) {
	s := graph.New()
	mustExec(t, s, "a = pt 0.0 0.0\nb = pt 10.0 0.0\nl = line a b\nc = circ a 5.0")
	snaps.MatchSnapshot(t, Render(s))
}

func TestRenderIgnoresNonGeometricValues(t *testing.T) {
	s := graph.New()
	mustExec(t, s, "a = pt 1.0 1.0\nn = 42\nflag = true")
	snaps.MatchSnapshot(t, Render(s))
}
