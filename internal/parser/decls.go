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

// parseProcessDef parses both process forms named in spec.md §3. A
// process whose body yields at least one `input (...)` parameter or
// `output (...)` entry is marked ProcessV2; any other process keeps the
// legacy ProcessV1 version with its bare directive statements. `input`
// and `output` are only parsed in the parenthesized form; without parens
// they are syntax errors.
func (p *parser) parseProcessDef() ast.Decl {
	start := p.offset
	p.next() // 'process'
	name := p.ident()
	def := &ast.ProcessDef{Name: name}
	p.expect(lexer.LBRACE)
	for p.tok != lexer.RBRACE && p.tok != lexer.EOF {
		before := p.offset
		p.parseProcessBodyItem(def)
		if p.offset == before {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	if len(def.Params) > 0 || len(def.Outputs) > 0 {
		def.Version = ast.ProcessV2
	}
	def.Span = p.rangeFrom(start)
	return def
}

func (p *parser) parseProcessBodyItem(def *ast.ProcessDef) {
	if p.tok == lexer.KW_OUTPUT {
		p.next()
		p.expect(lexer.LPAREN)
		for p.tok != lexer.RPAREN && p.tok != lexer.EOF {
			def.Outputs = append(def.Outputs, p.processOutput())
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RPAREN)
		p.accept(lexer.SEMI)
		return
	}
	if p.tok != lexer.IDENT {
		switch p.tok {
		case lexer.KW_WHEN:
			p.next()
			p.expect(lexer.COLON)
			def.When = p.parseExpr()
			p.accept(lexer.SEMI)
		case lexer.KW_EXEC:
			p.next()
			p.accept(lexer.COLON)
			def.Exec = p.rawBlock()
		case lexer.KW_STUB:
			p.next()
			p.accept(lexer.COLON)
			def.Stub = p.rawBlock()
		default:
			p.errorf("unexpected token %s in process body", p.tok)
		}
		return
	}
	switch p.lit {
	case "input":
		p.next()
		p.expect(lexer.LPAREN)
		for p.tok != lexer.RPAREN && p.tok != lexer.EOF {
			def.Params = append(def.Params, p.processParam())
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RPAREN)
		p.accept(lexer.SEMI)
	case "topic":
		p.next()
		def.Topics = append(def.Topics, p.ident())
		for p.accept(lexer.COMMA) {
			def.Topics = append(def.Topics, p.ident())
		}
		p.accept(lexer.SEMI)
	case "script":
		p.next()
		p.accept(lexer.COLON)
		def.Exec = p.rawBlock()
	default:
		def.Directives = append(def.Directives, p.directiveStmt())
	}
}

func qualifierFromName(name string) (ast.InputQualifier, bool) {
	switch name {
	case "val":
		return ast.InputVal, true
	case "file":
		return ast.InputFile, true
	case "path":
		return ast.InputPath, true
	case "tuple":
		return ast.InputTuple, true
	case "each":
		return ast.InputEach, true
	}
	return "", false
}

func (p *parser) processParam() *ast.ProcessParam {
	start := p.offset
	pp := &ast.ProcessParam{Qualifier: ast.InputVal}
	if p.tok == lexer.IDENT {
		if q, ok := qualifierFromName(p.lit); ok {
			pp.Qualifier = q
			p.next()
		}
	}
	// Optional type annotation before the name: `val Integer x`.
	if p.tok == lexer.IDENT {
		candidate := p.typeExpr()
		if p.tok == lexer.IDENT {
			pp.Type = candidate
			pp.Name = p.ident()
		} else {
			// No second identifier followed: candidate was actually the
			// bare parameter name, not a type annotation.
			pp.Name = candidate.Name
		}
	}
	pp.Span = p.rangeFrom(start)
	return pp
}

func (p *parser) processOutput() *ast.ProcessOutput {
	start := p.offset
	po := &ast.ProcessOutput{}
	name := p.ident()
	if p.accept(lexer.COLON) {
		po.Name = name
		po.Type = p.typeExpr()
	} else {
		po.Name = name
	}
	po.Span = p.rangeFrom(start)
	return po
}

// directiveStmt parses a call-form process directive (spec.md GLOSSARY
// "Directive"): `memory '2 GB'`, `cpus 4, 8`, or a fully parenthesized
// call `container('ubuntu')`.
func (p *parser) directiveStmt() *ast.DirectiveStmt {
	start := p.offset
	name := p.ident()
	ds := &ast.DirectiveStmt{Name: name}
	if p.tok == lexer.LPAREN {
		p.next()
		for p.tok != lexer.RPAREN && p.tok != lexer.EOF {
			ds.Args = append(ds.Args, p.parseExpr())
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RPAREN)
	} else if p.startsExpr() {
		ds.Args = append(ds.Args, p.parseExpr())
		for p.accept(lexer.COMMA) {
			ds.Args = append(ds.Args, p.parseExpr())
		}
	}
	p.accept(lexer.SEMI)
	ds.Span = p.rangeFrom(start)
	return ds
}

// startsExpr reports whether the current token can begin an expression,
// used to decide whether a bare directive has an argument at all
// (e.g. `cleanup` with none).
func (p *parser) startsExpr() bool {
	switch p.tok {
	case lexer.IDENT, lexer.INT, lexer.FLOAT, lexer.STRING, lexer.DURATION, lexer.MEMORYUNIT,
		lexer.KW_TRUE, lexer.KW_FALSE, lexer.KW_NULL, lexer.LPAREN, lexer.LBRACK, lexer.MINUS, lexer.NOT:
		return true
	}
	return false
}

func (p *parser) parseWorkflowDef() ast.Decl {
	start := p.offset
	p.next() // 'workflow'
	var name *ast.Ident
	if p.tok == lexer.IDENT {
		name = p.ident()
	}
	def := &ast.WorkflowDef{Name: name}
	p.expect(lexer.LBRACE)
	for p.tok != lexer.RBRACE && p.tok != lexer.EOF {
		before := p.offset
		p.parseWorkflowBodyItem(def)
		if p.offset == before {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	def.Span = p.rangeFrom(start)
	return def
}

func (p *parser) parseWorkflowBodyItem(def *ast.WorkflowDef) {
	if p.tok == lexer.IDENT || p.tok == lexer.KW_TAKE || p.tok == lexer.KW_EMIT || p.tok == lexer.KW_PUBLISH {
		switch p.lit {
		case "take":
			p.next()
			start := p.offset
			name := p.ident()
			param := &ast.Param{Name: name}
			if p.accept(lexer.COLON) {
				param.Type = p.typeExpr()
			}
			param.Span = p.rangeFrom(start)
			def.Takes = append(def.Takes, param)
			p.accept(lexer.SEMI)
			return
		case "emit":
			p.next()
			start := p.offset
			name := p.ident()
			emit := &ast.EmitDecl{Name: name}
			if p.accept(lexer.COLON) {
				emit.Type = p.typeExpr()
			}
			emit.Span = p.rangeFrom(start)
			def.Emits = append(def.Emits, emit)
			p.accept(lexer.SEMI)
			return
		case "publish":
			p.next()
			start := p.offset
			name := p.ident()
			p.expect(lexer.ARROW)
			target := p.parseExpr()
			pub := &ast.PublishDecl{Name: name, Target: target}
			pub.Span = p.rangeFrom(start)
			def.Publishers = append(def.Publishers, pub)
			p.accept(lexer.SEMI)
			return
		case "hook":
			p.next()
			start := p.offset
			name := p.ident()
			body := p.block()
			hook := &ast.HookDecl{Name: name, Body: body.Stmts}
			hook.Span = p.rangeFrom(start)
			def.Hooks = append(def.Hooks, hook)
			return
		}
	}
	s := p.parseStmt()
	if s != nil {
		def.Body = append(def.Body, s)
	}
}

func (p *parser) parseFunctionDef() ast.Decl {
	start := p.offset
	doc := p.scanner.PendingDoc()
	p.next() // 'function'
	name := p.ident()
	def := &ast.FunctionDef{Name: name, Doc: doc}
	p.expect(lexer.LPAREN)
	for p.tok != lexer.RPAREN && p.tok != lexer.EOF {
		pstart := p.offset
		pname := p.ident()
		param := &ast.Param{Name: pname}
		if p.accept(lexer.COLON) {
			param.Type = p.typeExpr()
		}
		param.Span = p.rangeFrom(pstart)
		def.Params = append(def.Params, param)
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)
	if p.accept(lexer.COLON) {
		def.ReturnType = p.typeExpr()
	}
	body := p.block()
	def.Body = body.Stmts
	def.Span = p.rangeFrom(start)
	return def
}
