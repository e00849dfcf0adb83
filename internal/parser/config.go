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

// ParseConfig parses DSL configuration source into a *ast.ConfigFile
// (spec.md §4.1, §3 "AST (config)").
func ParseConfig(name string, src []byte) (*ast.ConfigFile, []*SyntaxError) {
	p := newParser(name, src)
	start := p.offset
	file := &ast.ConfigFile{Name: name}
	for p.tok != lexer.EOF {
		before := p.offset
		s := p.parseConfigStmt()
		if s != nil {
			file.Stmts = append(file.Stmts, s)
		}
		if p.offset == before {
			p.next()
		}
	}
	file.Span = p.rangeAt(start, p.offset)
	return file, p.errs.errs
}

func (p *parser) parseConfigStmt() ast.ConfigStmt {
	switch p.tok {
	case lexer.KW_INCLUDE:
		return p.configInclude()
	case lexer.IDENT:
		return p.configBlockOrAssignment()
	default:
		p.errorf("unexpected token %s in configuration", p.tok)
		return nil
	}
}

func (p *parser) configInclude() ast.ConfigStmt {
	start := p.offset
	p.next() // 'include'
	source := p.parseExpr()
	p.accept(lexer.SEMI)
	inc := &ast.Include{Source: source}
	inc.Span = p.rangeFrom(start)
	return inc
}

// configBlockOrAssignment disambiguates `dotted.path = expr`, a named
// block `name { ... }`, a selector block `kind:target { ... }`, the
// well-known `plugins { ... }` block, and a plugin-apply block
// `pluginName { ... }` (spec.md §3 "AST (config)").
func (p *parser) configBlockOrAssignment() ast.ConfigStmt {
	start := p.offset
	first := p.ident()

	if p.tok == lexer.COLON {
		// selector block: `kind:target { ... }`
		p.next()
		target := p.parseExpr()
		body := p.configBody()
		blk := &ast.Block{Name: first, Selector: first, Target: target, Stmts: body}
		blk.Span = p.rangeFrom(start)
		return blk
	}

	if p.tok == lexer.LBRACE {
		if first.Name == "plugins" {
			return p.pluginsBlock(start)
		}
		body := p.configBody()
		blk := &ast.Block{Name: first, Stmts: body}
		blk.Span = p.rangeFrom(start)
		return blk
	}

	// Dotted assignment path: `name(.name)* = expr`.
	parts := []*ast.Ident{first}
	for p.accept(lexer.DOT) {
		parts = append(parts, p.ident())
	}
	path := &ast.QualName{Parts: parts}
	path.Span = p.rangeFrom(start)

	if p.tok != lexer.ASSIGN {
		p.errorf("expected '=' or '{' after %q", path.String())
		inc := &ast.Incomplete{Partial: path}
		inc.Span = p.rangeFrom(start)
		return inc
	}
	p.next()
	value := p.parseExpr()
	p.accept(lexer.SEMI)
	asg := &ast.Assignment{Path: path, Value: value}
	asg.Span = p.rangeFrom(start)
	return asg
}

func (p *parser) configBody() []ast.ConfigStmt {
	p.expect(lexer.LBRACE)
	var stmts []ast.ConfigStmt
	for p.tok != lexer.RBRACE && p.tok != lexer.EOF {
		before := p.offset
		s := p.parseConfigStmt()
		if s != nil {
			stmts = append(stmts, s)
		}
		if p.offset == before {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return stmts
}

// pluginsBlock parses the well-known `plugins { id 'name@version' ... }`
// block directly, since its `id 'x'` entries are bare call-style
// statements (no `=`), unlike every other config block's assignments
// (spec.md §4.4 "the plugins block ... each plugin ref name@version?").
func (p *parser) pluginsBlock(start int) ast.ConfigStmt {
	p.expect(lexer.LBRACE)
	blk := &ast.PluginsBlock{}
	for p.tok != lexer.RBRACE && p.tok != lexer.EOF {
		before := p.offset
		if p.tok == lexer.IDENT && p.lit == "id" {
			idStart := p.offset
			p.next() // 'id'
			if p.tok == lexer.STRING {
				lit := p.lit
				p.next()
				name, version := splitPluginRef(lit)
				ref := &ast.PluginRef{Name: &ast.Ident{Name: name}, Version: version}
				ref.Span = p.rangeFrom(idStart)
				blk.Refs = append(blk.Refs, ref)
				p.accept(lexer.SEMI)
			} else {
				p.errorf("expected a quoted plugin reference, found %s", p.tok)
			}
		} else {
			p.errorf("unexpected token %s in plugins block", p.tok)
		}
		if p.offset == before {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	blk.Span = p.rangeFrom(start)
	return blk
}

func splitPluginRef(quoted string) (name, version string) {
	text := trimQuotes(quoted)
	for i := 0; i < len(text); i++ {
		if text[i] == '@' {
			return text[:i], text[i+1:]
		}
	}
	return text, ""
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
