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

// Package workspace implements the file cache (spec.md §2, §3), the
// per-file-kind Language service (§4.7), and the concurrency model
// around them (§5): each Service guards its analysiscache.Cache with one
// mutex and its file cache with another, notification handlers apply in
// arrival order,
// and a debouncer collapses rapid edit bursts into one analysis pass.
//
// Grounded on internal/lsp/fscache/fs_overlay.go's in-memory overlay
// map (URI -> current bytes, no disk access needed for this module's
// scope) and internal/lsp/server/actor.go's single-writer idea,
// simplified per spec.md §5 ("or, simpler, execute under the same lock
// for small queries") from a mailbox/actor into one sync.Mutex guarding
// the whole analysis snapshot.
package workspace

import "sync"

// fileCache is the in-memory URI -> text map plus the set of URIs
// changed since the last Update (spec.md §3 "File cache ... records
// changed set").
type fileCache struct {
	mu      sync.Mutex
	texts   map[string][]byte
	changed map[string]bool
}

func newFileCache() *fileCache {
	return &fileCache{texts: map[string][]byte{}, changed: map[string]bool{}}
}

// set records uri's current text and marks it changed.
func (f *fileCache) set(uri string, text []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts[uri] = text
	f.changed[uri] = true
}

// remove drops uri entirely and marks it changed (so Update notices the
// removal and drops the corresponding analysis unit).
func (f *fileCache) remove(uri string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.texts, uri)
	f.changed[uri] = true
}

// Text satisfies analysiscache.TextSource.
func (f *fileCache) Text(uri string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.texts[uri]
	return t, ok
}

// URIs satisfies analysiscache.TextSource.
func (f *fileCache) URIs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.texts))
	for uri := range f.texts {
		out = append(out, uri)
	}
	return out
}

// takeChanged returns and clears the accumulated changed set.
func (f *fileCache) takeChanged() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := f.changed
	f.changed = map[string]bool{}
	return changed
}
