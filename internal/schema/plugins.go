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

package schema

import "sync"

// PluginRef identifies one entry of a config's `plugins { id 'name@version' }`
// block (spec.md §4.4 "Plugin schema merging").
type PluginRef struct {
	Name    string
	Version string // empty if unspecified
}

// PluginCache is an in-memory registry of plugin-contributed schema
// scopes, pre-populated by an external fetcher (spec.md §5 "No blocking
// network I/O is introduced by the core; plugin-spec lookups read from
// an in-memory registry pre-populated by an external fetcher").
//
// Grounded on internal/lsp/cache/hub.go's in-process module/package
// registry lookup table, simplified from CUE's versioned module graph
// down to a flat name[@version] -> scope map.
type PluginCache struct {
	mu     sync.RWMutex
	scopes map[string]*Scope // keyed by "name" or "name@version"
}

// NewPluginCache returns an empty cache.
func NewPluginCache() *PluginCache {
	return &PluginCache{scopes: map[string]*Scope{}}
}

// Register installs (or replaces) the schema scope contributed by one
// plugin. Call this from the external fetcher once a plugin's schema
// document has been retrieved and parsed.
func (c *PluginCache) Register(ref PluginRef, scope *Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scopes[key(ref)] = scope
	if ref.Version != "" {
		// Also index by bare name so an unversioned reference in a
		// different file resolves to the most recently registered version.
		c.scopes[ref.Name] = scope
	}
}

// Lookup resolves ref to its contributed scope, if any is registered.
func (c *PluginCache) Lookup(ref PluginRef) (*Scope, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.scopes[key(ref)]
	if !ok && ref.Version != "" {
		s, ok = c.scopes[ref.Name]
	}
	return s, ok
}

func key(ref PluginRef) string {
	if ref.Version == "" {
		return ref.Name
	}
	return ref.Name + "@" + ref.Version
}

// ScopesFor resolves every ref in refs against c, skipping any that
// aren't (yet) registered; callers merge the result into the root scope
// via MergeScopes.
func (c *PluginCache) ScopesFor(refs []PluginRef) []*Scope {
	out := make([]*Scope, 0, len(refs))
	for _, ref := range refs {
		if s, ok := c.Lookup(ref); ok {
			out = append(out, s)
		}
	}
	return out
}
