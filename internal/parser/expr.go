package parser

import (
	"strconv"

	"github.com/kotfind/geomserver/internal/ast"
	geomerrors "github.com/kotfind/geomserver/internal/errors"
	"github.com/kotfind/geomserver/internal/lexer"
	"github.com/kotfind/geomserver/internal/types"
)

func parseIntLiteral(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseRealLiteral(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// binaryDesugar maps an infix operator token to the builtin name the
// parser desugars it to (spec.md §4.3, names grounded on original_source's
// cmp.rs/math_ops.rs builtin table).
var binaryDesugar = map[lexer.TokenType]string{
	lexer.OR:      "#or",
	lexer.AND:     "#and",
	lexer.GT:      "#gr",
	lexer.LT:      "#le",
	lexer.GE:      "#geq",
	lexer.LE:      "#leq",
	lexer.EQ:      "#eq",
	lexer.NE:      "#neq",
	lexer.PLUS:    "#add",
	lexer.MINUS:   "#sub",
	lexer.STAR:    "#mul",
	lexer.SLASH:   "#div",
	lexer.PERCENT: "#mod",
	lexer.CARET:   "#pow",
}

func (p *Parser) parseOr() ast.Expr  { return p.parseLeftAssoc(p.parseAnd, lexer.OR) }
func (p *Parser) parseAnd() ast.Expr { return p.parseLeftAssoc(p.parseComparison, lexer.AND) }

func (p *Parser) parseLeftAssoc(next func() ast.Expr, ops ...lexer.TokenType) ast.Expr {
	left := next()
	for p.matchesAny(ops...) {
		pos := p.pos()
		name := binaryDesugar[p.cur.Type]
		p.next()
		right := next()
		left = ast.NewFuncCall(pos, name, []ast.Expr{left, right})
	}
	return left
}

func (p *Parser) matchesAny(ops ...lexer.TokenType) bool {
	for _, op := range ops {
		if p.cur.Type == op {
			return true
		}
	}
	return false
}

// parseComparison handles the comparison level: `> < >= <= == != is T is none`.
// These do not chain (`a < b < c` is not special-cased by the grammar; it
// just parses left-to-right like the others), so a simple left-assoc loop
// is correct here too.
func (p *Parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for {
		if p.cur.Type == lexer.IS {
			pos := p.pos()
			p.next()
			if p.cur.Type == lexer.NONE {
				p.next()
				left = ast.NewIsCheck(pos, left, 0, true)
				continue
			}
			vt, ok := p.parseValueType()
			if !ok {
				return left
			}
			left = ast.NewIsCheck(pos, left, vt, false)
			continue
		}
		if !p.matchesAny(lexer.GT, lexer.LT, lexer.GE, lexer.LE, lexer.EQ, lexer.NE) {
			return left
		}
		pos := p.pos()
		name := binaryDesugar[p.cur.Type]
		p.next()
		right := p.parseAdditive()
		left = ast.NewFuncCall(pos, name, []ast.Expr{left, right})
	}
}

func (p *Parser) parseAdditive() ast.Expr {
	return p.parseLeftAssoc(p.parseMultiplicative, lexer.PLUS, lexer.MINUS)
}

func (p *Parser) parseMultiplicative() ast.Expr {
	return p.parseLeftAssoc(p.parsePower, lexer.STAR, lexer.SLASH, lexer.PERCENT)
}

// parsePower is right-associative, so it recurses into itself on the rhs
// instead of looping.
func (p *Parser) parsePower() ast.Expr {
	left := p.parseUnary()
	if p.cur.Type != lexer.CARET {
		return left
	}
	pos := p.pos()
	p.next()
	right := p.parsePower()
	return ast.NewFuncCall(pos, "#pow", []ast.Expr{left, right})
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur.Type {
	case lexer.MINUS:
		pos := p.pos()
		p.next()
		operand := p.parseUnary()
		return ast.NewFuncCall(pos, "#neg", []ast.Expr{operand})
	case lexer.BANG:
		pos := p.pos()
		p.next()
		operand := p.parseUnary()
		return ast.NewFuncCall(pos, "#not", []ast.Expr{operand})
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles `.field` projections, which desugar to a call of the
// field-named function with the receiver as sole argument (spec.md §4.3).
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parseAsExpr()
	for p.cur.Type == lexer.DOT {
		pos := p.pos()
		p.next()
		if p.cur.Type != lexer.IDENT {
			p.errorf("expected field name after '.', got %s", p.cur.Type)
			return expr
		}
		field := p.cur.Literal
		p.next()
		expr = ast.NewFuncCall(pos, field, []ast.Expr{expr})
	}
	return expr
}

// parseAsExpr handles `as T`, which desugars to a call of `#as_T`
// (spec.md §4.3).
func (p *Parser) parseAsExpr() ast.Expr {
	expr := p.parseAtom()
	for p.cur.Type == lexer.AS {
		pos := p.pos()
		p.next()
		vt, ok := p.parseValueType()
		if !ok {
			return expr
		}
		expr = ast.NewFuncCall(pos, "#as_"+vt.String(), []ast.Expr{expr})
	}
	return expr
}

func (p *Parser) canStartAtom() bool {
	switch p.cur.Type {
	case lexer.IDENT, lexer.INT, lexer.REAL, lexer.STRING, lexer.TRUE, lexer.FALSE,
		lexer.NONE, lexer.LPAREN, lexer.IF, lexer.LET,
		lexer.TYPE_PT, lexer.TYPE_LINE, lexer.TYPE_CIRC:
		return true
	default:
		return false
	}
}

// parseAtom is the tightest-binding level: literals, identifiers, function
// application (`f x y …`, with each argument itself an atom — parenthesize
// an argument that contains an operator), parenthesized expressions, `if`
// and `let`.
func (p *Parser) parseAtom() ast.Expr {
	pos := p.pos()
	switch p.cur.Type {
	case lexer.TRUE:
		p.next()
		return ast.NewLiteral(pos, types.BoolVal(true))
	case lexer.FALSE:
		p.next()
		return ast.NewLiteral(pos, types.BoolVal(false))
	case lexer.INT:
		lit := p.cur.Literal
		p.next()
		return ast.NewLiteral(pos, types.IntVal(parseIntLiteral(lit)))
	case lexer.REAL:
		lit := p.cur.Literal
		p.next()
		return ast.NewLiteral(pos, types.RealVal(parseRealLiteral(lit)))
	case lexer.STRING:
		lit := p.cur.Literal
		p.next()
		return ast.NewLiteral(pos, types.StrVal(lit))
	case lexer.NONE:
		p.next()
		vt, ok := p.parseValueType()
		if !ok {
			return ast.NewLiteral(pos, types.None(types.Bool))
		}
		return ast.NewLiteral(pos, types.None(vt))
	case lexer.LPAREN:
		p.next()
		inner := p.parseOr()
		p.expect(lexer.RPAREN)
		return inner
	case lexer.IF:
		return p.parseIf(pos)
	case lexer.LET:
		return p.parseLet(pos)
	case lexer.IDENT, lexer.TYPE_PT, lexer.TYPE_LINE, lexer.TYPE_CIRC:
		// pt/line/circ are reserved as type-annotation keywords but are also
		// the Pt/Line/Circ constructor names (spec.md §4.3); outside of a
		// type annotation (parsed directly via parseValueType) they can only
		// appear here as a call.
		name := p.cur.Literal
		p.next()
		var args []ast.Expr
		// A bare identifier argument is a variable, not the head of a nested
		// application, so `pt x y` is pt(x, y). An identifier followed by
		// `=`, `:`, `!` or `->` starts the next statement and ends the
		// argument list; the name of a following function definition that
		// takes arguments (`g n:int -> …`) is not recognised that way.
		for p.canStartAtom() {
			if p.cur.Type == lexer.IDENT {
				if t := p.peek.Type; t == lexer.ASSIGN || t == lexer.COLON || t == lexer.BANG || t == lexer.ARROW {
					break
				}
				args = append(args, ast.NewVariable(p.pos(), p.cur.Literal))
				p.next()
				continue
			}
			args = append(args, p.parseAtom())
		}
		if len(args) == 0 {
			return ast.NewVariable(pos, name)
		}
		return ast.NewFuncCall(pos, name, args)
	default:
		p.errorf("unexpected token %s in expression", p.cur.Type)
		p.next()
		return ast.NewLiteral(pos, types.None(types.Bool))
	}
}

// parseIf parses `if c1 then v1, c2 then v2, … (else default)?`. The `if`
// keyword appears once; subsequent cases are introduced by a comma, not a
// repeated `if`.
func (p *Parser) parseIf(pos geomerrors.Position) ast.Expr {
	p.expect(lexer.IF)
	var cases []ast.IfCase
	var def ast.Expr
	for {
		cond := p.parseOr()
		p.expect(lexer.THEN)
		val := p.parseOr()
		cases = append(cases, ast.IfCase{Cond: cond, Value: val})

		if p.cur.Type == lexer.COMMA {
			p.next()
			continue
		}
		break
	}
	if p.cur.Type == lexer.ELSE {
		p.next()
		def = p.parseOr()
	}
	return ast.NewIf(pos, cases, def)
}

func (p *Parser) parseLet(pos geomerrors.Position) ast.Expr {
	p.expect(lexer.LET)
	var defs []ast.LetDef
	for {
		if p.cur.Type != lexer.IDENT {
			p.errorf("expected identifier in let binding, got %s", p.cur.Type)
			break
		}
		name := p.cur.Literal
		p.next()
		var vt *types.ValueType
		if p.cur.Type == lexer.COLON {
			p.next()
			t, ok := p.parseValueType()
			if ok {
				vt = &t
			}
		}
		p.expect(lexer.ASSIGN)
		body := p.parseOr()
		defs = append(defs, ast.LetDef{Name: name, ValueType: vt, Body: body})

		if p.cur.Type == lexer.COMMA {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.IN)
	body := p.parseOr()
	return ast.NewLet(pos, defs, body)
}
