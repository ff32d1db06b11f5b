// Package parser turns a token stream from internal/lexer into an
// internal/ast syntax tree, following the grammar in spec.md §4.1.
package parser

import (
	"fmt"

	"github.com/kotfind/geomserver/internal/ast"
	geomerrors "github.com/kotfind/geomserver/internal/errors"
	"github.com/kotfind/geomserver/internal/lexer"
	"github.com/kotfind/geomserver/internal/types"
)

// Parser is a hand-written recursive-descent parser with one function per
// precedence level (spec.md §4.1's table, lowest to highest): parseOr →
// parseAnd → parseComparison → parseAdditive → parseMultiplicative →
// parsePower → parseUnary → parsePostfix → parseAsExpr → parseAtom.
type Parser struct {
	l      *lexer.Lexer
	source string

	cur  lexer.Token
	peek lexer.Token

	errors []geomerrors.SourceError
}

// New creates a Parser over source.
func New(source string) *Parser {
	p := &Parser{l: lexer.New(source), source: source}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) pos() geomerrors.Position {
	return geomerrors.Position{Line: p.cur.Line, Column: p.cur.Column}
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, *geomerrors.NewAt(p.pos(), fmt.Sprintf(format, args...), p.source))
}

// Errors returns every parse error accumulated so far, including any
// lexical errors surfaced by the underlying lexer.
func (p *Parser) Errors() []geomerrors.SourceError {
	return append(append([]geomerrors.SourceError{}, p.l.Errors()...), p.errors...)
}

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.cur.Type != t {
		p.errorf("expected %s, got %s", t, p.cur.Type)
		return false
	}
	p.next()
	return true
}

// ParseProgram parses a whole script: a sequence of Definitions and
// Commands separated by whitespace (spec.md §4.1 — the separator is
// whitespace itself, so this just loops until EOF).
func (p *Parser) ParseProgram() []ast.Statement {
	var stmts []ast.Statement
	for p.cur.Type != lexer.EOF {
		stmt := p.parseStatement()
		if stmt == nil {
			// parseStatement already recorded an error; skip to the next
			// plausible statement start to keep collecting errors instead
			// of stopping at the first one.
			p.next()
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	if p.cur.Type != lexer.IDENT {
		p.errorf("expected identifier to start a definition or command, got %s", p.cur.Type)
		return nil
	}
	name := p.cur.Literal
	pos := p.pos()

	if p.peek.Type == lexer.BANG {
		p.next() // consume name
		p.next() // consume !
		return p.parseCommand(pos, name)
	}

	return p.parseDefinition(pos, name)
}

// commandArgShapes fixes, per command name, which positions are bare
// identifiers (graph entry names) versus full expressions. The command set
// is closed (spec.md §4.1): clear, eval, get, get_all, set, rm, list_cmd,
// list_func. `rm` accepts any number of names, including none; everything
// else has a fixed arity.
var commandArgShapes = map[string][]commandArgKind{
	"clear":     {},
	"get_all":   {},
	"list_cmd":  {},
	"list_func": {},
	"get":       {argIdent},
	"eval":      {argExpr},
	"set":       {argIdent, argExpr},
}

type commandArgKind int

const (
	argIdent commandArgKind = iota
	argExpr
)

// parseCommand parses a command's argument list against the fixed shape for
// its name; `rm` is variadic over identifiers and unrecognized command
// names fall back to a single trailing expression, so that a later-added
// command still parses even if commandArgShapes has not been updated for it.
func (p *Parser) parseCommand(pos geomerrors.Position, name string) *ast.Command {
	if name == "rm" {
		var args []ast.CommandArg
		for p.cur.Type == lexer.IDENT {
			args = append(args, ast.CommandArg{Ident: p.cur.Literal})
			p.next()
		}
		return ast.NewCommand(pos, name, args)
	}

	shape, known := commandArgShapes[name]
	if !known {
		var args []ast.CommandArg
		if p.canStartAtom() {
			args = append(args, ast.CommandArg{Expr: p.parseOr()})
		}
		return ast.NewCommand(pos, name, args)
	}

	args := make([]ast.CommandArg, 0, len(shape))
	for _, kind := range shape {
		switch kind {
		case argIdent:
			if p.cur.Type != lexer.IDENT {
				p.errorf("command %q expects an identifier argument, got %s", name, p.cur.Type)
				break
			}
			args = append(args, ast.CommandArg{Ident: p.cur.Literal})
			p.next()
		case argExpr:
			args = append(args, ast.CommandArg{Expr: p.parseOr()})
		}
	}
	return ast.NewCommand(pos, name, args)
}

func (p *Parser) parseDefinition(pos geomerrors.Position, name string) ast.Statement {
	p.next() // consume name

	if p.cur.Type == lexer.COLON {
		// `name:T = expr` — a type-annotated value definition.
		p.next()
		vt, ok := p.parseValueType()
		if !ok {
			return nil
		}
		if !p.expect(lexer.ASSIGN) {
			return nil
		}
		body := p.parseOr()
		return ast.NewValueDef(pos, name, &vt, body)
	}

	if p.cur.Type == lexer.ASSIGN {
		p.next()
		body := p.parseOr()
		return ast.NewValueDef(pos, name, nil, body)
	}

	// Otherwise this is a function definition: `name arg:T … -> T = expr`.
	var args []ast.FuncArg
	for p.cur.Type == lexer.IDENT {
		argName := p.cur.Literal
		p.next()
		if !p.expect(lexer.COLON) {
			return nil
		}
		vt, ok := p.parseValueType()
		if !ok {
			return nil
		}
		args = append(args, ast.FuncArg{Name: argName, Type: vt})
	}
	if !p.expect(lexer.ARROW) {
		return nil
	}
	ret, ok := p.parseValueType()
	if !ok {
		return nil
	}
	if !p.expect(lexer.ASSIGN) {
		return nil
	}
	body := p.parseOr()
	return ast.NewFuncDef(pos, name, args, ret, body)
}

func (p *Parser) parseValueType() (types.ValueType, bool) {
	if !lexer.IsTypeKeyword(p.cur.Type) {
		p.errorf("expected a type name, got %s", p.cur.Type)
		return 0, false
	}
	vt, _ := types.TypeByName(p.cur.Literal)
	p.next()
	return vt, true
}

// ParseExpr parses source as a single standalone expression (used by the
// `eval` operation, which compiles one expression at a time against
// caller-supplied variable types).
func ParseExpr(source string) (ast.Expr, []geomerrors.SourceError) {
	p := New(source)
	expr := p.parseOr()
	if p.cur.Type != lexer.EOF {
		p.errorf("unexpected trailing input: %s", p.cur.Type)
	}
	return expr, p.Errors()
}
