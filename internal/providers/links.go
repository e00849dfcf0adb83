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
	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/protocolx"
	"github.com/flowdsl/flowls/internal/workspace"
)

// DocumentLinks answers textDocument/documentLink: one clickable link
// per include declaration, pointing at the target URI the include
// resolver (internal/include.Resolver) actually bound it to.
func DocumentLinks(ctx context.Context, svc *workspace.Service, uri string) []protocol.DocumentLink {
	if cancelled(ctx) {
		return nil
	}
	var links []protocol.DocumentLink
	withCache(svc, func(c *analysiscache.Cache) {
		unit, ok := c.Unit(uri)
		if !ok {
			return
		}
		script, ok := unit.Root.(*ast.ScriptFile)
		if !ok {
			return
		}
		for _, d := range script.Decls {
			inc, ok := d.(*ast.IncludeDecl)
			if !ok {
				continue
			}
			target, ok := c.ResolveURI(uri, inc.Source)
			if !ok {
				continue
			}
			if _, ok := c.Unit(target); !ok {
				continue
			}
			tgt := protocol.DocumentURI(target)
			links = append(links, protocol.DocumentLink{
				Range:  protocolx.Range(inc.Source.Range()),
				Target: &tgt,
			})
		}
	})
	return links
}
