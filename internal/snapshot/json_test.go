package snapshot

import (
	"strings"
	"testing"

	"github.com/kotfind/geomserver/internal/types"
)

func TestDumpLoadRoundTrip(t *testing.T) {
	v := types.IntVal(5)
	scope := &Scope{
		Version: CurrentVersion,
		CExprs: map[Id]CExpr{
			1: {Kind: "value", ValueType: types.Int, Value: &v},
		},
		Nodes: map[Id]Node{
			1: {Kind: "value", Value: &v},
		},
		Funcs:      map[Id]Function{},
		NameToNode: map[string]Id{"x": 1},
		SignToFunc: map[string]Id{},
	}

	dumped, err := Dump(scope)
	if err != nil {
		t.Fatalf("dump error: %v", err)
	}
	if !strings.Contains(dumped, "\"generator\"") {
		t.Fatalf("dump should stamp a generator field, got %s", dumped)
	}

	loaded, err := Load([]byte(dumped))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if loaded.NameToNode["x"] != 1 {
		t.Fatalf("round trip lost name_to_node, got %#v", loaded.NameToNode)
	}
}

func TestLoadRejectsVersionMismatch(t *testing.T) {
	_, err := Load([]byte(`{"version": 999}`))
	if _, ok := err.(*CorruptedDataError); !ok {
		t.Fatalf("got %v, want *CorruptedDataError", err)
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	_, err := Load([]byte(`not json`))
	if _, ok := err.(*JSONParseError); !ok {
		t.Fatalf("got %v, want *JSONParseError", err)
	}
}
