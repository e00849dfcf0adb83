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

// Package classscope implements the DSL "class scope" capability tables
// (spec.md §9, GLOSSARY "Class scope"): the set of members a given
// nesting level exposes beyond ordinary lexical variables — a process
// body's directive namespace, a workflow's `params`/`workflow` builtins,
// a channel value's operator methods.
//
// Grounded on the capability-table idiom used for package-level state
// resolution in the teacher's package loader (a fixed registry of
// well-known names consulted before falling through to ordinary scope
// lookup), adapted from "is this name a known package/builtin" to "is
// this name a known class-scope member at this nesting".
package classscope

import "github.com/flowdsl/flowls/internal/types"

// Member is one entry exposed by a Scope: a name with its resolved type.
type Member struct {
	Name string
	Type *types.Type
	Doc  string
}

// Scope is an immutable table of members exposed at one DSL nesting
// level. It implements symbols.ClassMemberLookup.
type Scope struct {
	members map[string]Member
}

// New builds a class scope from the given member list.
func New(members ...Member) *Scope {
	s := &Scope{members: make(map[string]Member, len(members))}
	for _, m := range members {
		s.members[m.Name] = m
	}
	return s
}

// LookupMember reports whether name is a member of s, and its type.
func (s *Scope) LookupMember(name string) (*types.Type, bool) {
	if s == nil {
		return nil, false
	}
	m, ok := s.members[name]
	if !ok {
		return nil, false
	}
	return m.Type, true
}

// All returns every member of s, for completion providers.
func (s *Scope) All() []Member {
	if s == nil {
		return nil
	}
	out := make([]Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	return out
}

// ProcessBodyScope is the class scope exposed inside a process
// definition's body (spec.md §4.3 "Process-specific rules"): `task`
// metadata plus the `workDir` and `moduleDir` paths. Directive names and
// input/output qualifier calls are not members of this table.
func ProcessBodyScope() *Scope {
	return New(
		Member{Name: "task", Type: types.Concrete(types.Record), Doc: "per-task execution metadata"},
		Member{Name: "workDir", Type: types.Concrete(types.Path)},
		Member{Name: "moduleDir", Type: types.Concrete(types.Path)},
	)
}

// WorkflowBodyScope is the class scope exposed inside a workflow body
// (spec.md §4.3): the `params`/`workflow` run-metadata builtins.
func WorkflowBodyScope() *Scope {
	return New(
		Member{Name: "params", Type: types.Concrete(types.Map, types.Concrete(types.String), types.Dynamic)},
		Member{Name: "workflow", Type: types.Concrete(types.Record), Doc: "run metadata (runName, start, ...)"},
	)
}

// ChannelOpsScope is the class scope exposed by a Channel<T> value: the
// channel-operator method surface consulted by method-call resolution
// before falling back to the type checker's operator table (spec.md
// §4.5 "channel operators").
func ChannelOpsScope(elem *types.Type) *Scope {
	ch := types.Concrete(types.Channel, elem)
	closureOf := func(ret *types.Type) *types.Type { return types.Concrete(types.Closure, elem, ret) }
	_ = closureOf
	return New(
		Member{Name: "map", Type: ch},
		Member{Name: "filter", Type: ch},
		Member{Name: "view", Type: ch},
		Member{Name: "collect", Type: types.Concrete(types.Value, types.Concrete(types.List, elem))},
		Member{Name: "flatten", Type: ch},
		Member{Name: "first", Type: types.Concrete(types.Value, elem)},
		Member{Name: "mix", Type: ch},
		Member{Name: "combine", Type: ch},
		Member{Name: "groupTuple", Type: ch},
		Member{Name: "join", Type: ch},
		Member{Name: "set", Type: types.Concrete(types.Value, elem)},
		Member{Name: "ifEmpty", Type: ch},
		Member{Name: "subscribe", Type: ch},
	)
}

// OutParamScope is the class scope exposed by a process call's `.out`
// accessor (spec.md GLOSSARY "Process-call return shape"): one member
// per declared output name.
func OutParamScope(outputs map[string]*types.Type) *Scope {
	members := make([]Member, 0, len(outputs))
	for name, t := range outputs {
		members = append(members, Member{Name: name, Type: t})
	}
	return New(members...)
}
