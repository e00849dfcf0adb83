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

// Package parser implements the hand-written recursive-descent parser
// consumed by the compiler driver's `parse(text) -> (ast, syntax_errors)`
// contract (spec.md §4.1, §6). Grounded on cue/parser/parser.go's shape:
// a parser struct carrying the current lookahead token plus an error
// list, with next()/expect() helpers driving a descent through the
// grammar, rather than a generated table-driven parser (no ready-made
// grammar for this DSL exists anywhere in the retrieved pack; see
// DESIGN.md).
package parser

import (
	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/lexer"
	"github.com/flowdsl/flowls/internal/token"
)

type parser struct {
	file    *token.File
	scanner lexer.Scanner
	errs    errorList

	offset int
	tok    lexer.Kind
	lit    string
}

func newParser(name string, src []byte) *parser {
	p := &parser{file: token.NewFile(name, src)}
	p.scanner.Init(src, func(offset int, msg string) {
		p.errs.add(p.rangeAt(offset, offset), "%s", msg)
	})
	p.next()
	return p
}

func (p *parser) next() {
	p.offset, p.tok, p.lit = p.scanner.Scan()
}

func (p *parser) rangeAt(start, end int) token.Range {
	return token.Range{Start: p.file.Position(start), End: p.file.Position(end)}
}

// rangeFrom builds a range from a previously recorded start offset to
// the current (just-consumed) token's end.
func (p *parser) rangeFrom(startOffset int) token.Range {
	return p.rangeAt(startOffset, p.offset)
}

func (p *parser) errorf(format string, args ...interface{}) {
	p.errs.add(p.rangeAt(p.offset, p.offset+len(p.lit)), format, args...)
}

// expect consumes the current token if it matches kind, else records a
// syntax error and leaves the lookahead in place so the caller's
// recovery loop can make progress.
func (p *parser) expect(kind lexer.Kind) (offset int, lit string, ok bool) {
	if p.tok != kind {
		p.errorf("expected %s, found %s", kind, p.tok)
		return p.offset, p.lit, false
	}
	offset, lit = p.offset, p.lit
	p.next()
	return offset, lit, true
}

func (p *parser) accept(kind lexer.Kind) bool {
	if p.tok == kind {
		p.next()
		return true
	}
	return false
}

// ident parses a plain identifier, emitting a zero-value *ast.Ident with
// an empty name on failure so callers can keep descending.
func (p *parser) ident() *ast.Ident {
	start := p.offset
	if p.tok != lexer.IDENT && !p.tok.IsKeyword() {
		p.errorf("expected identifier, found %s", p.tok)
		id := &ast.Ident{}
		id.Span = p.rangeAt(start, start)
		return id
	}
	name := p.lit
	p.next()
	id := &ast.Ident{Name: name}
	id.Span = p.rangeFrom(start)
	return id
}

// syncDecl advances past tokens until a likely declaration boundary, to
// recover after a syntax error at the top level.
func (p *parser) syncDecl() {
	for p.tok != lexer.EOF {
		switch p.tok {
		case lexer.KW_INCLUDE, lexer.KW_PROCESS, lexer.KW_WORKFLOW, lexer.KW_FUNCTION, lexer.KW_OUTPUT:
			return
		}
		p.next()
	}
}

// ParseScript parses DSL script source into a *ast.ScriptFile, returning
// every syntax error collected along the way. On a malformed input the
// returned file still carries whatever declarations parsed successfully
// (spec.md §4.1: "still returns a unit whose AST may be partial").
func ParseScript(name string, src []byte) (*ast.ScriptFile, []*SyntaxError) {
	p := newParser(name, src)
	start := p.offset
	file := &ast.ScriptFile{Name: name}
	for p.tok != lexer.EOF {
		before := p.offset
		d := p.parseDecl()
		if d != nil {
			file.Decls = append(file.Decls, d)
		}
		if p.offset == before {
			// No progress was made (e.g. an unexpected token at the top
			// level); advance and resynchronize to avoid looping forever.
			p.next()
			p.syncDecl()
		}
	}
	file.Span = p.rangeAt(start, p.offset)
	return file, p.errs.errs
}

func (p *parser) parseDecl() ast.Decl {
	switch p.tok {
	case lexer.KW_INCLUDE:
		return p.parseIncludeDecl()
	case lexer.IDENT:
		if p.lit == "feature" {
			return p.parseFeatureFlagDecl()
		}
		p.errorf("unexpected identifier %q at top level", p.lit)
		return nil
	case lexer.KW_PROCESS:
		return p.parseProcessDef()
	case lexer.KW_WORKFLOW:
		return p.parseWorkflowDef()
	case lexer.KW_FUNCTION:
		return p.parseFunctionDef()
	case lexer.KW_OUTPUT:
		return p.parseOutputDef()
	default:
		p.errorf("unexpected token %s at top level", p.tok)
		return nil
	}
}

func (p *parser) parseIncludeDecl() ast.Decl {
	start := p.offset
	p.next() // 'include'
	source := p.qualName()
	p.expect(lexer.LBRACE)
	var entries []*ast.IncludeEntry
	for p.tok != lexer.RBRACE && p.tok != lexer.EOF {
		entryStart := p.offset
		name := p.ident()
		var alias *ast.Ident
		if p.accept(lexer.KW_AS) {
			alias = p.ident()
		}
		entry := &ast.IncludeEntry{Name: name, Alias: alias}
		entry.Span = p.rangeFrom(entryStart)
		entries = append(entries, entry)
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE)
	p.accept(lexer.SEMI)
	decl := &ast.IncludeDecl{Source: source, Entries: entries}
	decl.Span = p.rangeFrom(start)
	return decl
}

func (p *parser) qualName() *ast.QualName {
	start := p.offset
	var parts []*ast.Ident
	parts = append(parts, p.ident())
	for p.accept(lexer.DOT) {
		parts = append(parts, p.ident())
	}
	q := &ast.QualName{Parts: parts}
	q.Span = p.rangeFrom(start)
	return q
}

func (p *parser) parseFeatureFlagDecl() ast.Decl {
	start := p.offset
	p.next() // 'feature'
	name := p.ident()
	p.expect(lexer.ASSIGN)
	value := p.parseExpr()
	p.accept(lexer.SEMI)
	decl := &ast.FeatureFlagDecl{Name: name, Value: value}
	decl.Span = p.rangeFrom(start)
	return decl
}

func (p *parser) parseOutputDef() ast.Decl {
	start := p.offset
	p.next() // 'output'
	name := p.ident()
	p.expect(lexer.COLON)
	schema := p.parseExpr()
	p.accept(lexer.SEMI)
	decl := &ast.OutputDef{Name: name, Schema: schema}
	decl.Span = p.rangeFrom(start)
	return decl
}

func (p *parser) typeExpr() *ast.TypeExpr {
	start := p.offset
	name := p.ident()
	te := &ast.TypeExpr{Name: name}
	if p.accept(lexer.LT) {
		te.Generics = append(te.Generics, p.typeExpr())
		for p.accept(lexer.COMMA) {
			te.Generics = append(te.Generics, p.typeExpr())
		}
		p.expect(lexer.GT)
	}
	if p.accept(lexer.QUESTION) {
		te.Nullable = true
	}
	te.Span = p.rangeFrom(start)
	return te
}

// block parses a brace-delimited statement list as a *ast.BlockStmt.
func (p *parser) block() *ast.BlockStmt {
	start := p.offset
	p.expect(lexer.LBRACE)
	b := &ast.BlockStmt{}
	for p.tok != lexer.RBRACE && p.tok != lexer.EOF {
		before := p.offset
		s := p.parseStmt()
		if s != nil {
			b.Stmts = append(b.Stmts, s)
		}
		if p.offset == before {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	b.Span = p.rangeFrom(start)
	return b
}

// rawBlock consumes a `""" ... """`-delimited opaque script body and
// returns it as a ConstantExpr, used for exec/stub/script sections whose
// content the type checker never inspects (spec.md §3 "exec/script/stub
// ... opaque to the type checker").
func (p *parser) rawBlock() ast.Expr {
	start := p.offset
	if p.tok != lexer.STRING {
		p.errorf("expected a triple-quoted script body, found %s", p.tok)
		p.next()
		c := &ast.ConstantExpr{Kind: ast.ConstString, Text: ""}
		c.Span = p.rangeFrom(start)
		return c
	}
	text := p.lit
	p.next()
	c := &ast.ConstantExpr{Kind: ast.ConstString, Text: text}
	c.Span = p.rangeFrom(start)
	return c
}
