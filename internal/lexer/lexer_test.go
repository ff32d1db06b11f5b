package lexer

import "testing"

func TestNextTokenOperatorsAndLiterals(t *testing.T) {
	input := `x = 1 + 2.5e1 * (y - "a\"b") -> != <= >= ==`

	tests := []struct {
		typ TokenType
		lit string
	}{
		{IDENT, "x"},
		{ASSIGN, "="},
		{INT, "1"},
		{PLUS, "+"},
		{REAL, "2.5e1"},
		{STAR, "*"},
		{LPAREN, "("},
		{IDENT, "y"},
		{MINUS, "-"},
		{STRING, `a"b`},
		{RPAREN, ")"},
		{ARROW, "->"},
		{NE, "!="},
		{LE, "<="},
		{GE, ">="},
		{EQ, "=="},
		{EOF, ""},
	}

	l := New(input)
	for i, want := range tests {
		got := l.NextToken()
		if got.Type != want.typ {
			t.Fatalf("token %d: type = %s, want %s", i, got.Type, want.typ)
		}
		if want.typ != STRING && got.Literal != want.lit {
			t.Fatalf("token %d: literal = %q, want %q", i, got.Literal, want.lit)
		}
		if want.typ == STRING && got.Literal != want.lit {
			t.Fatalf("token %d: literal = %q, want %q", i, got.Literal, want.lit)
		}
	}
	if len(l.Errors()) != 0 {
		t.Fatalf("unexpected lexer errors: %v", l.Errors())
	}
}

func TestKeywordsAndTypeNames(t *testing.T) {
	l := New("if then else let in is as none bool int real str pt line circ true false")
	want := []TokenType{IF, THEN, ELSE, LET, IN, IS, AS, NONE,
		TYPE_BOOL, TYPE_INT, TYPE_REAL, TYPE_STR, TYPE_PT, TYPE_LINE, TYPE_CIRC, TRUE, FALSE, EOF}
	for i, typ := range want {
		tok := l.NextToken()
		if tok.Type != typ {
			t.Fatalf("token %d: type = %s, want %s", i, tok.Type, typ)
		}
	}
}

func TestComments(t *testing.T) {
	l := New("x // line comment\n/* block\ncomment */y")
	first := l.NextToken()
	if first.Type != IDENT || first.Literal != "x" {
		t.Fatalf("got %v", first)
	}
	second := l.NextToken()
	if second.Type != IDENT || second.Literal != "y" {
		t.Fatalf("got %v", second)
	}
}

func TestCommandBang(t *testing.T) {
	l := New("eval! \"x\"")
	first := l.NextToken()
	if first.Type != IDENT {
		t.Fatalf("got %v", first)
	}
	second := l.NextToken()
	if second.Type != BANG {
		t.Fatalf("got %v, want BANG", second)
	}
}

func TestUnicodeColumns(t *testing.T) {
	l := New("x Δ 🚀")
	_ = l.NextToken() // x
	delta := l.NextToken()
	if delta.Column != 3 {
		t.Fatalf("Δ column = %d, want 3", delta.Column)
	}
	rocket := l.NextToken()
	if rocket.Column != 5 {
		t.Fatalf("🚀 column = %d, want 5", rocket.Column)
	}
}

func TestInvalidEscape(t *testing.T) {
	l := New(`"a\qb"`)
	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("got %v", tok)
	}
	if len(l.Errors()) == 0 {
		t.Fatalf("expected an error for invalid escape")
	}
}
