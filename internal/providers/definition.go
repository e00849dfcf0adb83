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

// Definition answers textDocument/definition: the declaration site of
// the variable, process, workflow, or function named at pos.
func Definition(ctx context.Context, svc *workspace.Service, uri string, pos protocol.Position) []protocol.Location {
	if cancelled(ctx) {
		return nil
	}
	var locs []protocol.Location
	withCache(svc, func(c *analysiscache.Cache) {
		stack := nodeStack(c, uri, pos)
		for _, n := range stack {
			if ref, ok := c.Definition(uri, n); ok {
				locs = append(locs, nodeRangeLocation(ref.URI, ref.Node))
				return
			}
		}
	})
	return locs
}
