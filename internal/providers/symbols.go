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
	"strings"

	"go.lsp.dev/protocol"

	"github.com/flowdsl/flowls/internal/analysiscache"
	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/protocolx"
	"github.com/flowdsl/flowls/internal/workspace"
)

// DocumentSymbols answers textDocument/documentSymbol: the top-level
// process/workflow/function definitions of a script file, or the
// top-level assignments/blocks of a config file.
func DocumentSymbols(ctx context.Context, svc *workspace.Service, uri string) []protocol.DocumentSymbol {
	if cancelled(ctx) {
		return nil
	}
	var out []protocol.DocumentSymbol
	withCache(svc, func(c *analysiscache.Cache) {
		unit, ok := c.Unit(uri)
		if !ok {
			return
		}
		switch f := unit.Root.(type) {
		case *ast.ScriptFile:
			for _, d := range f.Decls {
				if sym, ok := scriptDeclSymbol(d); ok {
					out = append(out, sym)
				}
			}
		case *ast.ConfigFile:
			for _, s := range f.Stmts {
				if sym, ok := configStmtSymbol(s); ok {
					out = append(out, sym)
				}
			}
		}
	})
	return out
}

func scriptDeclSymbol(d ast.Decl) (protocol.DocumentSymbol, bool) {
	switch n := d.(type) {
	case *ast.ProcessDef:
		return protocol.DocumentSymbol{
			Name: n.Name.Name, Kind: protocol.SymbolKindFunction,
			Range: protocolx.Range(n.Range()), SelectionRange: protocolx.Range(n.Name.Range()),
		}, true
	case *ast.WorkflowDef:
		name := "main"
		if n.Name != nil {
			name = n.Name.Name
		}
		sel := n.Range()
		if n.Name != nil {
			sel = n.Name.Range()
		}
		return protocol.DocumentSymbol{
			Name: name, Kind: protocol.SymbolKindNamespace,
			Range: protocolx.Range(n.Range()), SelectionRange: protocolx.Range(sel),
		}, true
	case *ast.FunctionDef:
		return protocol.DocumentSymbol{
			Name: n.Name.Name, Kind: protocol.SymbolKindFunction,
			Range: protocolx.Range(n.Range()), SelectionRange: protocolx.Range(n.Name.Range()),
		}, true
	}
	return protocol.DocumentSymbol{}, false
}

func configStmtSymbol(s ast.ConfigStmt) (protocol.DocumentSymbol, bool) {
	switch n := s.(type) {
	case *ast.Assignment:
		return protocol.DocumentSymbol{
			Name: n.Path.String(), Kind: protocol.SymbolKindField,
			Range: protocolx.Range(n.Range()), SelectionRange: protocolx.Range(n.Path.Range()),
		}, true
	case *ast.Block:
		name := n.Name.Name
		if n.Selector != nil {
			name = n.Name.Name + ":" + n.Selector.Name
		}
		return protocol.DocumentSymbol{
			Name: name, Kind: protocol.SymbolKindNamespace,
			Range: protocolx.Range(n.Range()), SelectionRange: protocolx.Range(n.Range()),
		}, true
	}
	return protocol.DocumentSymbol{}, false
}

// WorkspaceSymbols answers workspace/symbol across every service,
// filtering by a case-insensitive substring match on query (an empty
// query returns everything).
func WorkspaceSymbols(ctx context.Context, query string, services ...*workspace.Service) []protocol.SymbolInformation {
	if cancelled(ctx) {
		return nil
	}
	q := strings.ToLower(query)
	var out []protocol.SymbolInformation
	for _, svc := range services {
		withCache(svc, func(c *analysiscache.Cache) {
			for _, uri := range c.URIs() {
				unit, ok := c.Unit(uri)
				if !ok {
					continue
				}
				script, ok := unit.Root.(*ast.ScriptFile)
				if !ok {
					continue
				}
				for _, d := range script.Decls {
					sym, ok := scriptDeclSymbol(d)
					if !ok || (q != "" && !strings.Contains(strings.ToLower(sym.Name), q)) {
						continue
					}
					out = append(out, protocol.SymbolInformation{
						Name: sym.Name, Kind: sym.Kind,
						Location: protocol.Location{URI: protocol.DocumentURI(uri), Range: sym.SelectionRange},
					})
				}
			}
		})
	}
	return out
}
