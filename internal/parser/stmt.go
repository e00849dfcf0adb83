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

func (p *parser) parseStmt() ast.Stmt {
	switch p.tok {
	case lexer.LBRACE:
		return p.block()
	case lexer.KW_DEF:
		return p.declStmt()
	case lexer.KW_IF:
		return p.ifStmt()
	case lexer.KW_FOR:
		return p.forStmt()
	case lexer.KW_TRY:
		return p.tryStmt()
	case lexer.KW_RETURN:
		return p.returnStmt()
	default:
		return p.exprStmt()
	}
}

func (p *parser) declStmt() ast.Stmt {
	start := p.offset
	p.next() // 'def'
	var typ *ast.TypeExpr
	name := p.ident()
	if p.tok == lexer.IDENT || p.tok == lexer.LT {
		// The first identifier was actually a type name: `def Integer x`
		// or `def List<Integer> items`.
		typ = &ast.TypeExpr{Name: name}
		if p.accept(lexer.LT) {
			typ.Generics = append(typ.Generics, p.typeExpr())
			for p.accept(lexer.COMMA) {
				typ.Generics = append(typ.Generics, p.typeExpr())
			}
			p.expect(lexer.GT)
		}
		name = p.ident()
	}
	ds := &ast.DeclStmt{Name: name, Type: typ}
	if p.accept(lexer.ASSIGN) {
		ds.Init = p.parseExpr()
	}
	p.accept(lexer.SEMI)
	ds.Span = p.rangeFrom(start)
	return ds
}

func (p *parser) ifStmt() ast.Stmt {
	start := p.offset
	p.next() // 'if'
	p.expect(lexer.LPAREN)
	cond := p.parseExpr()
	p.expect(lexer.RPAREN)
	then := p.block()
	s := &ast.IfStmt{Cond: cond, Then: then}
	if p.accept(lexer.KW_ELSE) {
		if p.tok == lexer.KW_IF {
			s.Else = p.ifStmt()
		} else {
			s.Else = p.block()
		}
	}
	s.Span = p.rangeFrom(start)
	return s
}

func (p *parser) forStmt() ast.Stmt {
	start := p.offset
	p.next() // 'for'
	p.expect(lexer.LPAREN)
	binding := p.ident()
	p.expect(lexer.KW_IN)
	iter := p.parseExpr()
	p.expect(lexer.RPAREN)
	body := p.block()
	s := &ast.ForStmt{Binding: binding, Iter: iter, Body: body}
	s.Span = p.rangeFrom(start)
	return s
}

func (p *parser) tryStmt() ast.Stmt {
	start := p.offset
	p.next() // 'try'
	body := p.block()
	s := &ast.TryStmt{Body: body}
	for p.tok == lexer.KW_CATCH {
		cstart := p.offset
		p.next()
		p.expect(lexer.LPAREN)
		typ := p.typeExpr()
		name := p.ident()
		p.expect(lexer.RPAREN)
		cbody := p.block()
		clause := &ast.CatchClause{Type: typ, Name: name, Body: cbody}
		clause.Span = p.rangeFrom(cstart)
		s.Catches = append(s.Catches, clause)
	}
	if p.accept(lexer.KW_FINALLY) {
		s.Finally = p.block()
	}
	s.Span = p.rangeFrom(start)
	return s
}

func (p *parser) returnStmt() ast.Stmt {
	start := p.offset
	p.next() // 'return'
	s := &ast.ReturnStmt{}
	if p.startsExpr() {
		s.X = p.parseExpr()
	}
	p.accept(lexer.SEMI)
	s.Span = p.rangeFrom(start)
	return s
}

func (p *parser) exprStmt() ast.Stmt {
	start := p.offset
	x := p.parseExpr()
	s := &ast.ExprStmt{X: x}
	p.accept(lexer.SEMI)
	s.Span = p.rangeFrom(start)
	return s
}
