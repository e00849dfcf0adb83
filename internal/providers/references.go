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
	"github.com/flowdsl/flowls/internal/workspace"
)

// References answers textDocument/references: every other AST node
// sharing the same reference target as the one at pos (spec.md §4.6
// "references(uri, node)"). includeDeclaration additionally reports the
// declaration site itself.
func References(ctx context.Context, svc *workspace.Service, uri string, pos protocol.Position, includeDeclaration bool) []protocol.Location {
	if cancelled(ctx) {
		return nil
	}
	var locs []protocol.Location
	withCache(svc, func(c *analysiscache.Cache) {
		stack := nodeStack(c, uri, pos)
		for _, n := range stack {
			refs := c.References(uri, n)
			if refs == nil {
				continue
			}
			for _, r := range refs {
				locs = append(locs, nodeRangeLocation(r.URI, r.Node))
			}
			if includeDeclaration {
				if def, ok := c.Definition(uri, n); ok {
					locs = append(locs, nodeRangeLocation(def.URI, def.Node))
				}
			}
			return
		}
	})
	return locs
}
