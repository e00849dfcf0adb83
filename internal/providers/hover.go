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
	"fmt"

	"go.lsp.dev/protocol"

	"github.com/flowdsl/flowls/internal/analysiscache"
	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/protocolx"
	"github.com/flowdsl/flowls/internal/workspace"
)

// Hover answers textDocument/hover by showing the innermost covering
// node's inferred or declared type (spec.md §4.5's INFERRED_TYPE slot,
// §3's "Variable: declared type").
func Hover(ctx context.Context, svc *workspace.Service, uri string, pos protocol.Position) *protocol.Hover {
	if cancelled(ctx) {
		return nil
	}
	var hover *protocol.Hover
	withCache(svc, func(c *analysiscache.Cache) {
		stack := nodeStack(c, uri, pos)
		if len(stack) == 0 {
			return
		}
		unit, ok := c.Unit(uri)
		if !ok {
			return
		}
		for _, n := range stack {
			var value string
			switch e := n.(type) {
			case ast.Expr:
				if t := unit.Meta.ExprType(e); t != nil && !t.IsDynamic() {
					value = fmt.Sprintf("```\n%s\n```", t.String())
				}
			case *ast.Ident:
				if t := unit.Meta.DeclaredType(e); t != nil && !t.IsDynamic() {
					value = fmt.Sprintf("```\n%s: %s\n```", e.Name, t.String())
				}
			}
			if value == "" {
				continue
			}
			hover = &protocol.Hover{
				Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: value},
				Range:    ptrRange(protocolx.Range(n.Range())),
			}
			return
		}
	})
	return hover
}

func ptrRange(r protocol.Range) *protocol.Range { return &r }
