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

	"go.lsp.dev/protocol"

	"github.com/flowdsl/flowls/internal/analysiscache"
	"github.com/flowdsl/flowls/internal/symbols"
	"github.com/flowdsl/flowls/internal/workspace"
)

// Completion answers textDocument/completion (spec.md §6 "trigger
// characters include `.`"). It offers every lexically visible variable
// at the cursor's innermost scope, walking outward to the module scope.
//
// Dynamic class-scope members (e.g. a process body's directive
// namespace) are not separately enumerated here: internal/symbols.Scope
// only exposes them through Resolve on an exact name match, not as an
// enumerable list, to avoid a second capability-table dependency on
// internal/classscope from this package (see DESIGN.md). Lexical
// variables and the declared process/workflow/function names (which
// the resolver declares into the module scope, see
// internal/nameresolve/script.go) already cover the common case.
func Completion(ctx context.Context, svc *workspace.Service, uri string, pos protocol.Position) *protocol.CompletionList {
	if cancelled(ctx) {
		return nil
	}
	var items []protocol.CompletionItem
	withCache(svc, func(c *analysiscache.Cache) {
		stack := nodeStack(c, uri, pos)
		unit, ok := c.Unit(uri)
		if !ok {
			return
		}
		seen := map[string]bool{}
		for _, n := range stack {
			scope, ok := unit.Meta.ScopeOf(n)
			if !ok {
				continue
			}
			for s := scope; s != nil; s = s.Parent() {
				for _, v := range s.AllDeclared() {
					if seen[v.Name] {
						continue
					}
					seen[v.Name] = true
					items = append(items, completionItem(v))
				}
			}
			break
		}
	})
	return &protocol.CompletionList{IsIncomplete: false, Items: items}
}

func completionItem(v *symbols.Variable) protocol.CompletionItem {
	kind := protocol.CompletionItemKindVariable
	switch v.Kind {
	case symbols.KindParam:
		kind = protocol.CompletionItemKindVariable
	case symbols.KindField:
		kind = protocol.CompletionItemKindField
	case symbols.KindInclude:
		kind = protocol.CompletionItemKindModule
	case symbols.KindBuiltin:
		kind = protocol.CompletionItemKindConstant
	}
	detail := ""
	if v.DeclaredType != nil {
		detail = v.DeclaredType.String()
	}
	return protocol.CompletionItem{
		Label:  v.Name,
		Kind:   kind,
		Detail: detail,
	}
}
