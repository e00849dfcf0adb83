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

package providers

import (
	"context"
	"sort"

	"go.lsp.dev/protocol"

	"github.com/flowdsl/flowls/internal/analysiscache"
	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/workspace"
)

// TokenTypes is the legend this server's semantic tokens are encoded
// against (spec.md §6 "semantic tokens (full only)"); the client must
// be told this same order via ServerCapabilities.SemanticTokensProvider.
var TokenTypes = []string{"function", "namespace", "parameter", "variable"}

const (
	tokFunction = iota
	tokNamespace
	tokParameter
	tokVariable
)

type rawToken struct {
	line, col, length, kind int
}

// SemanticTokens answers textDocument/semanticTokens/full for a script
// file, classifying declaration-site identifiers by construct (process,
// workflow and function names, workflow takes, function parameters) and
// every variable reference as a variable. Config
// files have no semantic-token classification of their own (their
// structure is already carried by document symbols and schema
// diagnostics), so an empty result is returned for them.
func SemanticTokens(ctx context.Context, svc *workspace.Service, uri string) *protocol.SemanticTokens {
	if cancelled(ctx) {
		return nil
	}
	var data []uint32
	withCache(svc, func(c *analysiscache.Cache) {
		unit, ok := c.Unit(uri)
		if !ok {
			return
		}
		script, ok := unit.Root.(*ast.ScriptFile)
		if !ok {
			return
		}
		var toks []rawToken
		ast.Inspect(script, func(n ast.Node) bool {
			switch d := n.(type) {
			case *ast.ProcessDef:
				toks = append(toks, tokenFor(d.Name, tokFunction))
			case *ast.WorkflowDef:
				if d.Name != nil {
					toks = append(toks, tokenFor(d.Name, tokNamespace))
				}
				for _, p := range d.Takes {
					toks = append(toks, tokenFor(p.Name, tokParameter))
				}
			case *ast.FunctionDef:
				toks = append(toks, tokenFor(d.Name, tokFunction))
				for _, p := range d.Params {
					toks = append(toks, tokenFor(p.Name, tokParameter))
				}
			case *ast.VariableExpr:
				toks = append(toks, tokenFor(d.Name, tokVariable))
			}
			return true
		})
		data = encodeTokens(toks)
	})
	return &protocol.SemanticTokens{Data: data}
}

func tokenFor(id *ast.Ident, kind int) rawToken {
	rng := id.Range()
	return rawToken{line: rng.Start.Line - 1, col: rng.Start.Column - 1, length: len(id.Name), kind: kind}
}

// encodeTokens converts an unordered token list into the LSP relative
// delta-encoded data array.
func encodeTokens(toks []rawToken) []uint32 {
	sort.Slice(toks, func(i, j int) bool {
		if toks[i].line != toks[j].line {
			return toks[i].line < toks[j].line
		}
		return toks[i].col < toks[j].col
	})
	out := make([]uint32, 0, len(toks)*5)
	prevLine, prevCol := 0, 0
	for _, t := range toks {
		deltaLine := t.line - prevLine
		deltaCol := t.col
		if deltaLine == 0 {
			deltaCol = t.col - prevCol
		}
		out = append(out, uint32(deltaLine), uint32(deltaCol), uint32(t.length), uint32(t.kind), 0)
		prevLine, prevCol = t.line, t.col
	}
	return out
}
