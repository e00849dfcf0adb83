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

// Package schema implements the config schema tree (spec.md §3 "Schema
// (config)", §4.4, §6 "Schema input"): Option/Scope/Placeholder nodes
// loaded from a packaged JSON document, plus plugin-contributed scope
// merging.
//
// Grounded on the teacher's encoding/json-decoded schema-document
// loading in internal/lsp/cache/hub.go (a discriminated-union JSON
// document unmarshaled into a small closed node-kind set), adapted from
// CUE's module/workspace metadata shape to the DSL's
// Option/Scope/Placeholder discriminator named in spec.md §6.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/flowdsl/flowls/internal/types"
)

// NodeKind discriminates the three schema node shapes (spec.md §6).
type NodeKind string

const (
	KindConfigOption          NodeKind = "ConfigOption"
	KindConfigScope           NodeKind = "ConfigScope"
	KindConfigPlaceholderScope NodeKind = "ConfigPlaceholderScope"
)

// rawDoc mirrors the on-disk discriminated-union shape from spec.md §6:
// `{type, spec: {name, description, children?, type?, placeholderName?, scope?}}`.
type rawDoc struct {
	Type string  `json:"type"`
	Spec rawSpec `json:"spec"`
}

type rawSpec struct {
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Children        map[string]rawDoc  `json:"children,omitempty"`
	Type            []string           `json:"type,omitempty"`
	PlaceholderName string             `json:"placeholderName,omitempty"`
	Scope           *rawDoc            `json:"scope,omitempty"`
}

// Node is implemented by Option, Scope, and Placeholder.
type Node interface {
	Kind() NodeKind
	Description() string
}

// Option is a leaf schema node accepting a value of one of a closed set
// of canonical types (spec.md §3 "Option").
type Option struct {
	Desc  string
	Types []types.Canonical
}

func (o *Option) Kind() NodeKind      { return KindConfigOption }
func (o *Option) Description() string { return o.Desc }

// Accepts reports whether a value of type t satisfies one of o's
// accepted types (spec.md §4.4: "compare against the option's type
// set").
func (o *Option) Accepts(t *types.Type) bool {
	if t.IsDynamic() {
		return true
	}
	for _, accepted := range o.Types {
		if types.Assignable(types.Concrete(accepted), t) {
			return true
		}
	}
	return false
}

// Scope is a named nested schema subtree (spec.md §3 "Scope").
type Scope struct {
	Desc     string
	Children map[string]Node
}

func (s *Scope) Kind() NodeKind      { return KindConfigScope }
func (s *Scope) Description() string { return s.Desc }

// Lookup resolves a single path segment within s.
func (s *Scope) Lookup(segment string) (Node, bool) {
	n, ok := s.Children[segment]
	return n, ok
}

// Placeholder is an indexable schema axis, e.g. a per-profile or
// per-process selector scope (spec.md §3 "Placeholder").
type Placeholder struct {
	Desc            string
	PlaceholderName string
	Scope           Node // the shared subtree exposed for any index value
}

func (p *Placeholder) Kind() NodeKind      { return KindConfigPlaceholderScope }
func (p *Placeholder) Description() string { return p.Desc }

// Parse decodes one JSON schema document into a Node tree (spec.md §6
// "Schema input").
func Parse(data []byte) (Node, error) {
	var raw rawDoc
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return build(raw)
}

func build(raw rawDoc) (Node, error) {
	switch NodeKind(raw.Type) {
	case KindConfigOption:
		ts := make([]types.Canonical, 0, len(raw.Spec.Type))
		for _, name := range raw.Spec.Type {
			ts = append(ts, types.Canonical(name))
		}
		return &Option{Desc: raw.Spec.Description, Types: ts}, nil
	case KindConfigScope:
		children := make(map[string]Node, len(raw.Spec.Children))
		for name, childRaw := range raw.Spec.Children {
			child, err := build(childRaw)
			if err != nil {
				return nil, err
			}
			children[name] = child
		}
		return &Scope{Desc: raw.Spec.Description, Children: children}, nil
	case KindConfigPlaceholderScope:
		var inner Node
		if raw.Spec.Scope != nil {
			var err error
			inner, err = build(*raw.Spec.Scope)
			if err != nil {
				return nil, err
			}
		}
		return &Placeholder{Desc: raw.Spec.Description, PlaceholderName: raw.Spec.PlaceholderName, Scope: inner}, nil
	default:
		return nil, fmt.Errorf("schema: unknown node type %q", raw.Type)
	}
}

// MergeScopes returns a new *Scope containing base's children overlaid
// with each of extras' children (later entries win), used to assemble
// the root scope from built-ins plus plugin-contributed scopes (spec.md
// §3 "root scope... assembled from built-in core definitions plus
// plugin-contributed scopes", §4.4 "Plugin schema merging").
func MergeScopes(base *Scope, extras ...*Scope) *Scope {
	merged := &Scope{Desc: base.Desc, Children: map[string]Node{}}
	for name, n := range base.Children {
		merged.Children[name] = n
	}
	for _, extra := range extras {
		if extra == nil {
			continue
		}
		for name, n := range extra.Children {
			merged.Children[name] = n
		}
	}
	return merged
}
