// Copyright 2026 The Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import (
	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/lexer"
)

// parseExpr is the expression grammar's entry point: assignment has the
// lowest precedence, then ternary, elvis, logical-or/and, equality,
// relational, range, additive, multiplicative, cast (`as`), unary,
// postfix, primary.
func (p *parser) parseExpr() ast.Expr {
	return p.assignExpr()
}

func (p *parser) assignExpr() ast.Expr {
	start := p.offset
	left := p.ternaryExpr()
	var op string
	switch p.tok {
	case lexer.ASSIGN:
		op = "="
	case lexer.PLUSASSIGN:
		op = "+="
	case lexer.MINUSASSIGN:
		op = "-="
	default:
		return left
	}
	p.next()
	value := p.assignExpr()
	e := &ast.AssignExpr{Op: op, Target: left, Value: value}
	e.Span = p.rangeFrom(start)
	return e
}

func (p *parser) ternaryExpr() ast.Expr {
	start := p.offset
	cond := p.elvisExpr()
	if !p.accept(lexer.QUESTION) {
		return cond
	}
	then := p.assignExpr()
	p.expect(lexer.COLON)
	els := p.assignExpr()
	e := &ast.TernaryExpr{Cond: cond, Then: then, Else: els}
	e.Span = p.rangeFrom(start)
	return e
}

func (p *parser) elvisExpr() ast.Expr {
	start := p.offset
	x := p.logicalOrExpr()
	if !p.accept(lexer.ELVIS) {
		return x
	}
	def := p.elvisExpr()
	e := &ast.ElvisExpr{X: x, Default: def}
	e.Span = p.rangeFrom(start)
	return e
}

func (p *parser) logicalOrExpr() ast.Expr {
	start := p.offset
	x := p.logicalAndExpr()
	for p.tok == lexer.OR {
		p.next()
		y := p.logicalAndExpr()
		e := &ast.BinaryExpr{Op: "||", X: x, Y: y}
		e.Span = p.rangeFrom(start)
		x = e
	}
	return x
}

func (p *parser) logicalAndExpr() ast.Expr {
	start := p.offset
	x := p.equalityExpr()
	for p.tok == lexer.AND {
		p.next()
		y := p.equalityExpr()
		e := &ast.BinaryExpr{Op: "&&", X: x, Y: y}
		e.Span = p.rangeFrom(start)
		x = e
	}
	return x
}

func (p *parser) equalityExpr() ast.Expr {
	start := p.offset
	x := p.relationalExpr()
	for p.tok == lexer.EQ || p.tok == lexer.NEQ {
		op := "=="
		if p.tok == lexer.NEQ {
			op = "!="
		}
		p.next()
		y := p.relationalExpr()
		e := &ast.BinaryExpr{Op: op, X: x, Y: y}
		e.Span = p.rangeFrom(start)
		x = e
	}
	return x
}

func (p *parser) relationalExpr() ast.Expr {
	start := p.offset
	x := p.rangeExprLevel()
	for {
		var op string
		switch p.tok {
		case lexer.LT:
			op = "<"
		case lexer.LTE:
			op = "<="
		case lexer.GT:
			op = ">"
		case lexer.GTE:
			op = ">="
		default:
			return x
		}
		p.next()
		y := p.rangeExprLevel()
		e := &ast.BinaryExpr{Op: op, X: x, Y: y}
		e.Span = p.rangeFrom(start)
		x = e
	}
}

func (p *parser) rangeExprLevel() ast.Expr {
	start := p.offset
	x := p.additiveExpr()
	if p.tok == lexer.DOTDOT || p.tok == lexer.DOTDOTLT {
		exclusive := p.tok == lexer.DOTDOTLT
		p.next()
		hi := p.additiveExpr()
		e := &ast.RangeExpr{Lo: x, Hi: hi, Exclusive: exclusive}
		e.Span = p.rangeFrom(start)
		return e
	}
	return x
}

func (p *parser) additiveExpr() ast.Expr {
	start := p.offset
	x := p.multiplicativeExpr()
	for p.tok == lexer.PLUS || p.tok == lexer.MINUS {
		op := "+"
		if p.tok == lexer.MINUS {
			op = "-"
		}
		p.next()
		y := p.multiplicativeExpr()
		e := &ast.BinaryExpr{Op: op, X: x, Y: y}
		e.Span = p.rangeFrom(start)
		x = e
	}
	return x
}

func (p *parser) multiplicativeExpr() ast.Expr {
	start := p.offset
	x := p.castExpr()
	for p.tok == lexer.STAR || p.tok == lexer.SLASH || p.tok == lexer.PERCENT {
		var op string
		switch p.tok {
		case lexer.STAR:
			op = "*"
		case lexer.SLASH:
			op = "/"
		case lexer.PERCENT:
			op = "%"
		}
		p.next()
		y := p.castExpr()
		e := &ast.BinaryExpr{Op: op, X: x, Y: y}
		e.Span = p.rangeFrom(start)
		x = e
	}
	return x
}

// castExpr handles the postfix `X as T` form (spec.md §3 "cast").
func (p *parser) castExpr() ast.Expr {
	start := p.offset
	x := p.unaryExpr()
	for p.tok == lexer.KW_AS {
		p.next()
		t := p.typeExpr()
		e := &ast.CastExpr{X: x, Type: t}
		e.Span = p.rangeFrom(start)
		x = e
	}
	return x
}

func (p *parser) unaryExpr() ast.Expr {
	start := p.offset
	switch p.tok {
	case lexer.NOT, lexer.MINUS:
		op := "!"
		if p.tok == lexer.MINUS {
			op = "-"
		}
		p.next()
		x := p.unaryExpr()
		e := &ast.UnaryExpr{Op: op, X: x}
		e.Span = p.rangeFrom(start)
		return e
	case lexer.INC, lexer.DEC:
		op := "++"
		if p.tok == lexer.DEC {
			op = "--"
		}
		p.next()
		x := p.unaryExpr()
		e := &ast.UnaryExpr{Op: op, X: x}
		e.Span = p.rangeFrom(start)
		return e
	}
	return p.postfixExpr()
}

func (p *parser) postfixExpr() ast.Expr {
	start := p.offset
	x := p.primaryExpr()
	for {
		switch p.tok {
		case lexer.DOT:
			p.next()
			name := p.ident()
			if p.tok == lexer.LPAREN {
				args, named := p.callArgs()
				closure := p.trailingClosure()
				e := &ast.MethodCallExpr{X: x, Name: name, Args: args, NamedArgs: named, Closure: closure}
				e.Span = p.rangeFrom(start)
				x = e
				continue
			}
			if p.tok == lexer.LBRACE {
				closure := p.trailingClosure()
				e := &ast.MethodCallExpr{X: x, Name: name, Closure: closure}
				e.Span = p.rangeFrom(start)
				x = e
				continue
			}
			e := &ast.PropertyExpr{X: x, Name: name}
			e.Span = p.rangeFrom(start)
			x = e
		case lexer.LBRACK:
			p.next()
			idx := p.parseExpr()
			p.expect(lexer.RBRACK)
			idxName := &ast.Ident{Name: "[]"}
			idxName.Span = p.rangeFrom(start)
			e := &ast.MethodCallExpr{X: x, Name: idxName, Args: []ast.Expr{idx}}
			e.Span = p.rangeFrom(start)
			x = e
		case lexer.INC, lexer.DEC:
			op := "++"
			if p.tok == lexer.DEC {
				op = "--"
			}
			p.next()
			e := &ast.UnaryExpr{Op: op, X: x, Postfix: true}
			e.Span = p.rangeFrom(start)
			x = e
		default:
			return x
		}
	}
}

// callArgs parses a parenthesized argument list, splitting positional
// args from `name: value` named args (spec.md §3's NamedArg).
func (p *parser) callArgs() (args []ast.Expr, named []*ast.NamedArg) {
	p.expect(lexer.LPAREN)
	for p.tok != lexer.RPAREN && p.tok != lexer.EOF {
		if p.tok == lexer.IDENT && p.isNamedArgAhead() {
			start := p.offset
			name := p.ident()
			p.expect(lexer.COLON)
			value := p.parseExpr()
			na := &ast.NamedArg{Name: name, Value: value}
			na.Span = p.rangeFrom(start)
			named = append(named, na)
		} else {
			args = append(args, p.parseExpr())
		}
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return args, named
}

// isNamedArgAhead reports whether the current IDENT token is directly
// followed by ':' (not '::' or part of a larger expression), by
// scanning ahead without consuming via a throwaway scanner copy.
func (p *parser) isNamedArgAhead() bool {
	save := p.scanner
	savedOffset, savedTok, savedLit := p.offset, p.tok, p.lit
	p.next()
	isColon := p.tok == lexer.COLON
	p.scanner = save
	p.offset, p.tok, p.lit = savedOffset, savedTok, savedLit
	return isColon
}

func (p *parser) trailingClosure() *ast.ClosureExpr {
	if p.tok != lexer.LBRACE {
		return nil
	}
	return p.closureExpr()
}

func (p *parser) closureExpr() *ast.ClosureExpr {
	start := p.offset
	p.expect(lexer.LBRACE)
	ce := &ast.ClosureExpr{}
	if p.closureHasParamList() {
		pstart := p.offset
		name := p.ident()
		param := &ast.Param{Name: name}
		param.Span = p.rangeFrom(pstart)
		ce.Params = append(ce.Params, param)
		for p.accept(lexer.COMMA) {
			pstart = p.offset
			name = p.ident()
			param = &ast.Param{Name: name}
			param.Span = p.rangeFrom(pstart)
			ce.Params = append(ce.Params, param)
		}
		p.expect(lexer.ARROW)
	}
	for p.tok != lexer.RBRACE && p.tok != lexer.EOF {
		before := p.offset
		s := p.parseStmt()
		if s != nil {
			ce.Body = append(ce.Body, s)
		}
		if p.offset == before {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	ce.Span = p.rangeFrom(start)
	return ce
}

// closureHasParamList looks ahead for "IDENT (',' IDENT)* '->'" right
// after the opening brace, to distinguish `{ a, b -> ... }` from a
// closure relying on the implicit `it` parameter.
func (p *parser) closureHasParamList() bool {
	if p.tok != lexer.IDENT {
		return false
	}
	save := p.scanner
	savedOffset, savedTok, savedLit := p.offset, p.tok, p.lit
	ok := false
	for {
		if p.tok != lexer.IDENT {
			break
		}
		p.next()
		if p.tok == lexer.ARROW {
			ok = true
			break
		}
		if p.tok != lexer.COMMA {
			break
		}
		p.next()
	}
	p.scanner = save
	p.offset, p.tok, p.lit = savedOffset, savedTok, savedLit
	return ok
}

func (p *parser) primaryExpr() ast.Expr {
	start := p.offset
	switch p.tok {
	case lexer.INT:
		lit := p.lit
		p.next()
		e := &ast.ConstantExpr{Kind: ast.ConstInt, Text: lit}
		e.Span = p.rangeFrom(start)
		return e
	case lexer.FLOAT:
		lit := p.lit
		p.next()
		e := &ast.ConstantExpr{Kind: ast.ConstFloat, Text: lit}
		e.Span = p.rangeFrom(start)
		return e
	case lexer.STRING:
		lit := p.lit
		p.next()
		e := &ast.ConstantExpr{Kind: ast.ConstString, Text: lit}
		e.Span = p.rangeFrom(start)
		return e
	case lexer.DURATION:
		lit := p.lit
		p.next()
		e := &ast.ConstantExpr{Kind: ast.ConstDuration, Text: lit}
		e.Span = p.rangeFrom(start)
		return e
	case lexer.MEMORYUNIT:
		lit := p.lit
		p.next()
		e := &ast.ConstantExpr{Kind: ast.ConstMemoryUnit, Text: lit}
		e.Span = p.rangeFrom(start)
		return e
	case lexer.KW_TRUE, lexer.KW_FALSE:
		lit := p.lit
		p.next()
		e := &ast.ConstantExpr{Kind: ast.ConstBool, Text: lit}
		e.Span = p.rangeFrom(start)
		return e
	case lexer.KW_NULL:
		p.next()
		e := &ast.ConstantExpr{Kind: ast.ConstNull, Text: "null"}
		e.Span = p.rangeFrom(start)
		return e
	case lexer.LPAREN:
		return p.tupleOrParenExpr()
	case lexer.LBRACK:
		return p.listOrMapExpr()
	case lexer.LBRACE:
		return p.closureExpr()
	case lexer.IDENT:
		return p.identOrCallExpr()
	default:
		p.errorf("unexpected token %s in expression", p.tok)
		ident := p.ident()
		e := &ast.VariableExpr{Name: ident}
		e.Span = p.rangeFrom(start)
		return e
	}
}

func (p *parser) tupleOrParenExpr() ast.Expr {
	start := p.offset
	p.next() // '('
	if p.tok == lexer.RPAREN {
		p.next()
		e := &ast.TupleExpr{}
		e.Span = p.rangeFrom(start)
		return e
	}
	first := p.parseExpr()
	if p.tok != lexer.COMMA {
		p.expect(lexer.RPAREN)
		return first
	}
	elems := []ast.Expr{first}
	for p.accept(lexer.COMMA) {
		if p.tok == lexer.RPAREN {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(lexer.RPAREN)
	e := &ast.TupleExpr{Elems: elems}
	e.Span = p.rangeFrom(start)
	return e
}

func (p *parser) listOrMapExpr() ast.Expr {
	start := p.offset
	p.next() // '['
	if p.tok == lexer.COLON {
		// `[:]` is the empty-map literal.
		p.next()
		p.expect(lexer.RBRACK)
		e := &ast.MapExpr{}
		e.Span = p.rangeFrom(start)
		return e
	}
	if p.tok == lexer.RBRACK {
		p.next()
		e := &ast.ListExpr{}
		e.Span = p.rangeFrom(start)
		return e
	}
	first := p.parseExpr()
	if p.accept(lexer.COLON) {
		value := p.parseExpr()
		entryStart := start
		entry := &ast.MapEntry{Key: first, Value: value}
		entry.Span = p.rangeFrom(entryStart)
		entries := []*ast.MapEntry{entry}
		for p.accept(lexer.COMMA) {
			if p.tok == lexer.RBRACK {
				break
			}
			estart := p.offset
			k := p.parseExpr()
			p.expect(lexer.COLON)
			v := p.parseExpr()
			me := &ast.MapEntry{Key: k, Value: v}
			me.Span = p.rangeFrom(estart)
			entries = append(entries, me)
		}
		p.expect(lexer.RBRACK)
		e := &ast.MapExpr{Entries: entries}
		e.Span = p.rangeFrom(start)
		return e
	}
	elems := []ast.Expr{first}
	for p.accept(lexer.COMMA) {
		if p.tok == lexer.RBRACK {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(lexer.RBRACK)
	e := &ast.ListExpr{Elems: elems}
	e.Span = p.rangeFrom(start)
	return e
}

func (p *parser) identOrCallExpr() ast.Expr {
	start := p.offset
	name := p.ident()
	if p.tok == lexer.LPAREN {
		args, named := p.callArgs()
		closure := p.trailingClosure()
		e := &ast.CallExpr{Callee: name, Args: args, NamedArgs: named, Closure: closure}
		e.Span = p.rangeFrom(start)
		return e
	}
	e := &ast.VariableExpr{Name: name}
	e.Span = p.rangeFrom(start)
	return e
}
