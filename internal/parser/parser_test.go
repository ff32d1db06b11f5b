package parser

import (
	"testing"

	"github.com/kotfind/geomserver/internal/ast"
)

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errs := p.Errors()
	if len(errs) == 0 {
		return
	}
	for _, e := range errs {
		t.Errorf("parser error: %s", e.Error())
	}
	t.FailNow()
}

func TestParsePrecedence(t *testing.T) {
	t.Run("arithmetic precedence", func(t *testing.T) {
		p := New("x = 1 + 2 * 3")
		stmts := p.ParseProgram()
		checkParserErrors(t, p)
		if len(stmts) != 1 {
			t.Fatalf("expected 1 statement, got %d", len(stmts))
		}
		def, ok := stmts[0].(*ast.ValueDef)
		if !ok {
			t.Fatalf("expected *ast.ValueDef, got %T", stmts[0])
		}
		add, ok := def.Body.(*ast.FuncCall)
		if !ok || add.Name != "#add" {
			t.Fatalf("expected top-level #add, got %#v", def.Body)
		}
		mul, ok := add.Args[1].(*ast.FuncCall)
		if !ok || mul.Name != "#mul" {
			t.Fatalf("expected rhs #mul, got %#v", add.Args[1])
		}
	})

	t.Run("power is right associative", func(t *testing.T) {
		p := New("x = 2 ^ 3 ^ 2")
		stmts := p.ParseProgram()
		checkParserErrors(t, p)
		def := stmts[0].(*ast.ValueDef)
		outer, ok := def.Body.(*ast.FuncCall)
		if !ok || outer.Name != "#pow" {
			t.Fatalf("expected #pow, got %#v", def.Body)
		}
		if _, ok := outer.Args[0].(*ast.Literal); !ok {
			t.Fatalf("expected literal base for right-assoc ^, got %#v", outer.Args[0])
		}
		if _, ok := outer.Args[1].(*ast.FuncCall); !ok {
			t.Fatalf("expected nested #pow on the rhs, got %#v", outer.Args[1])
		}
	})

	t.Run("postfix projection binds tighter than prefix", func(t *testing.T) {
		p := New("x = -p.x")
		stmts := p.ParseProgram()
		checkParserErrors(t, p)
		def := stmts[0].(*ast.ValueDef)
		neg, ok := def.Body.(*ast.FuncCall)
		if !ok || neg.Name != "#neg" {
			t.Fatalf("expected outer #neg, got %#v", def.Body)
		}
		proj, ok := neg.Args[0].(*ast.FuncCall)
		if !ok || proj.Name != "x" {
			t.Fatalf("expected inner projection call to 'x', got %#v", neg.Args[0])
		}
	})
}

func TestParseApplicationAndAtoms(t *testing.T) {
	p := New("y = dist (pt 0 0) (pt 1 1)")
	stmts := p.ParseProgram()
	checkParserErrors(t, p)
	def := stmts[0].(*ast.ValueDef)
	call, ok := def.Body.(*ast.FuncCall)
	if !ok || call.Name != "dist" {
		t.Fatalf("expected call to 'dist', got %#v", def.Body)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
	for _, a := range call.Args {
		pt, ok := a.(*ast.FuncCall)
		if !ok || pt.Name != "pt" {
			t.Fatalf("expected 'pt' call arg, got %#v", a)
		}
	}
}

func TestParseIfAndLet(t *testing.T) {
	t.Run("multi-arm if with else", func(t *testing.T) {
		p := New("r = if a then 1, b then 2 else 3")
		stmts := p.ParseProgram()
		checkParserErrors(t, p)
		def := stmts[0].(*ast.ValueDef)
		ifExpr, ok := def.Body.(*ast.If)
		if !ok {
			t.Fatalf("expected *ast.If, got %#v", def.Body)
		}
		if len(ifExpr.Cases) != 2 {
			t.Fatalf("expected 2 cases, got %d", len(ifExpr.Cases))
		}
		if ifExpr.Default == nil {
			t.Fatal("expected an else default")
		}
	})

	t.Run("if without else", func(t *testing.T) {
		p := New("r = if a then 1")
		stmts := p.ParseProgram()
		checkParserErrors(t, p)
		def := stmts[0].(*ast.ValueDef)
		ifExpr := def.Body.(*ast.If)
		if ifExpr.Default != nil {
			t.Fatal("expected no else default")
		}
	})

	t.Run("let with multiple bindings and type annotation", func(t *testing.T) {
		p := New("r = let a:int = 1, b = 2 in a + b")
		stmts := p.ParseProgram()
		checkParserErrors(t, p)
		def := stmts[0].(*ast.ValueDef)
		letExpr, ok := def.Body.(*ast.Let)
		if !ok {
			t.Fatalf("expected *ast.Let, got %#v", def.Body)
		}
		if len(letExpr.Defs) != 2 {
			t.Fatalf("expected 2 bindings, got %d", len(letExpr.Defs))
		}
		if letExpr.Defs[0].ValueType == nil {
			t.Fatal("expected type annotation on first binding")
		}
		if letExpr.Defs[1].ValueType != nil {
			t.Fatal("expected no type annotation on second binding")
		}
	})
}

func TestParseIsCheck(t *testing.T) {
	t.Run("is type", func(t *testing.T) {
		p := New("r = x is int")
		stmts := p.ParseProgram()
		checkParserErrors(t, p)
		def := stmts[0].(*ast.ValueDef)
		isC, ok := def.Body.(*ast.IsCheck)
		if !ok || isC.IsNone {
			t.Fatalf("expected *ast.IsCheck with IsNone=false, got %#v", def.Body)
		}
	})

	t.Run("is none", func(t *testing.T) {
		p := New("r = x is none")
		stmts := p.ParseProgram()
		checkParserErrors(t, p)
		def := stmts[0].(*ast.ValueDef)
		isC, ok := def.Body.(*ast.IsCheck)
		if !ok || !isC.IsNone {
			t.Fatalf("expected *ast.IsCheck with IsNone=true, got %#v", def.Body)
		}
	})
}

func TestParseFuncDef(t *testing.T) {
	p := New("add2 a:int b:int -> int = a + b")
	stmts := p.ParseProgram()
	checkParserErrors(t, p)
	fd, ok := stmts[0].(*ast.FuncDef)
	if !ok {
		t.Fatalf("expected *ast.FuncDef, got %#v", stmts[0])
	}
	if len(fd.Args) != 2 || fd.Args[0].Name != "a" || fd.Args[1].Name != "b" {
		t.Fatalf("unexpected args: %#v", fd.Args)
	}
}

func TestParseCommand(t *testing.T) {
	t.Run("identifier argument", func(t *testing.T) {
		p := New("rm! x")
		stmts := p.ParseProgram()
		checkParserErrors(t, p)
		cmd, ok := stmts[0].(*ast.Command)
		if !ok || cmd.Name != "rm" {
			t.Fatalf("expected command 'rm', got %#v", stmts[0])
		}
		if len(cmd.Args) != 1 || !cmd.Args[0].IsIdent() || cmd.Args[0].Ident != "x" {
			t.Fatalf("expected one ident arg 'x', got %#v", cmd.Args)
		}
	})

	t.Run("expression argument", func(t *testing.T) {
		p := New("set! x 1 + 1")
		stmts := p.ParseProgram()
		checkParserErrors(t, p)
		cmd := stmts[0].(*ast.Command)
		if cmd.Name != "set" || len(cmd.Args) != 2 {
			t.Fatalf("unexpected command: %#v", cmd)
		}
		if !cmd.Args[0].IsIdent() || cmd.Args[0].Ident != "x" {
			t.Fatalf("expected first arg to be ident 'x', got %#v", cmd.Args[0])
		}
		if cmd.Args[1].IsIdent() {
			t.Fatalf("expected second arg to be an expression, got ident %q", cmd.Args[1].Ident)
		}
	})
}
