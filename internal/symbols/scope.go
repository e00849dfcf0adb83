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

// Package symbols implements the lexical scope chain used by name
// resolution (spec.md §3 "Scope", §4.3): declared variables, the
// referenced/unreferenced split that powers the unused-variable warning,
// and parent-scope lookup.
//
// Grounded on the scope-chain evaluator idiom from the environment/value
// binding model used throughout the pack's interpreter-style examples —
// a scope is a collection of named bindings plus a parent link walked on
// miss — adapted here from CUE's lazy path-resolution evaluator to the
// ordinary declare-then-resolve lexical scoping spec.md §4.3 describes.
package symbols

import (
	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/types"
)

// VariableKind distinguishes the declaration-site flavors named in
// spec.md §3 "Variable".
type VariableKind int

const (
	// KindLocal is an ordinary `def`/typed local declaration.
	KindLocal VariableKind = iota
	// KindParam is a function/workflow/process parameter.
	KindParam
	// KindField is a DSL member exposed by a class scope (e.g. a process
	// output field reached via `processName.out.foo`).
	KindField
	// KindInclude is a name brought in via an include entry.
	KindInclude
	// KindBuiltin is a synthetic binding with no AST declaration site
	// (e.g. `params`, `workflow`, `println`). A closure's implicit `it`
	// is declared as a KindParam without a Site.
	KindBuiltin
)

// Variable is one named binding reachable from a Scope (spec.md §3
// "Variable: name, declared type, optional initial expression,
// closure-shared flag, declaration site").
type Variable struct {
	Name string
	Kind VariableKind

	// DeclaredType is the variable's type, possibly types.Dynamic if
	// never annotated or inferred yet.
	DeclaredType *types.Type

	// Init is the variable's initializer expression, if any (nil for
	// parameters, fields, includes, and builtins).
	Init ast.Expr

	// ClosureShared is set by Resolve when called with crossedClosure.
	// Name resolution passes that for every lookup made inside a closure
	// body, so a closure's own locals referenced there are marked as well
	// as names captured from enclosing scopes (spec.md §4.3).
	ClosureShared bool

	// Site is the declaring AST node (an *ast.Ident for most kinds), or
	// nil for a variable with no source location (a KindBuiltin, a
	// closure's implicit `it`, or a class-scope KindField).
	Site ast.Node
}

// Scope is one lexical frame (spec.md §3 "Scope: declared variables,
// referenced local/class variables, parent scope, class scope").
//
// declared holds variables not yet looked up by name from this scope or
// any child; resolve promotes an entry out of declared and into
// referenced on first lookup. A variable that is still in declared when
// its owning construct closes was never referenced (spec.md §8's
// unused-variable invariant).
type Scope struct {
	parent *Scope

	// classScope names the DSL surface exposed at this nesting (e.g. a
	// process body's directive namespace), used by resolve to fall back
	// to class-scope members before giving up. Stored as an opaque
	// accessor to avoid an import cycle with internal/classscope.
	classScope ClassMemberLookup

	declared   map[string]*Variable
	referenced map[string]*Variable

	order []string // declaration order, for deterministic symbol listings
}

// ClassMemberLookup resolves a member name against the DSL surface
// exposed at a given scope nesting (implemented by
// internal/classscope.Scope; declared here as a minimal interface to
// avoid a package cycle).
type ClassMemberLookup interface {
	LookupMember(name string) (*types.Type, bool)
}

// NewRootScope creates a scope with no parent and no class surface
// (the module-level script scope, or the root config scope).
func NewRootScope() *Scope {
	return newScope(nil, nil)
}

// NewChild creates a scope nested inside parent, optionally exposing a
// class member surface (pass nil to inherit nothing new).
func NewChild(parent *Scope, classScope ClassMemberLookup) *Scope {
	return newScope(parent, classScope)
}

func newScope(parent *Scope, classScope ClassMemberLookup) *Scope {
	return &Scope{
		parent:     parent,
		classScope: classScope,
		declared:   map[string]*Variable{},
		referenced: map[string]*Variable{},
	}
}

// AlreadyDeclaredError is returned by Declare when name is already bound
// in this exact scope (spec.md §4.3 "AlreadyDeclared").
type AlreadyDeclaredError struct {
	Name string
	Prev *Variable
}

func (e *AlreadyDeclaredError) Error() string {
	return "variable already declared in this scope: " + e.Name
}

// Declare binds v in s. It reports *AlreadyDeclaredError if s already has
// a declared-or-referenced binding for v.Name in this exact frame;
// shadowing a binding from an ancestor scope is always legal.
func (s *Scope) Declare(v *Variable) error {
	if prev, ok := s.declared[v.Name]; ok {
		return &AlreadyDeclaredError{Name: v.Name, Prev: prev}
	}
	if prev, ok := s.referenced[v.Name]; ok {
		return &AlreadyDeclaredError{Name: v.Name, Prev: prev}
	}
	s.declared[v.Name] = v
	s.order = append(s.order, v.Name)
	return nil
}

// Resolve looks up name starting at s and walking parent scopes. On a
// hit it promotes the variable from declared to referenced in whichever
// scope owns it (so it no longer counts as unused), marks it
// ClosureShared if the hit crossed a closure boundary (crossedClosure),
// and returns it. It returns (nil, false) if no scope in the chain
// declares or exposes name, leaving the caller to fall back to a
// global/builtin namespace.
func (s *Scope) Resolve(name string, crossedClosure bool) (*Variable, bool) {
	var walked []*Scope
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.declared[name]; ok {
			delete(cur.declared, name)
			cur.referenced[name] = v
			backfill(walked, name, v)
			if crossedClosure {
				v.ClosureShared = true
			}
			return v, true
		}
		if v, ok := cur.referenced[name]; ok {
			backfill(walked, name, v)
			if crossedClosure {
				v.ClosureShared = true
			}
			return v, true
		}
		if cur.classScope != nil {
			if _, ok := cur.classScope.LookupMember(name); ok {
				v := &Variable{Name: name, Kind: KindField, DeclaredType: types.Dynamic}
				return v, true
			}
		}
		walked = append(walked, cur)
	}
	return nil, false
}

// backfill promotes v into the referenced set of every scope walked
// between the call-site scope and the one that actually owns it, so a
// later Resolve from the same inner scope finds it there without
// walking further (spec.md §4.3 "promote the variable into every
// intermediate scope's referenced set").
func backfill(walked []*Scope, name string, v *Variable) {
	for _, cur := range walked {
		cur.referenced[name] = v
	}
}

// Unreferenced returns the variables declared directly in s that were
// never resolved, in declaration order (spec.md §8's pinned
// unused-variable scenario). Call this when a scope's owning construct
// (block, closure, function body) closes.
func (s *Scope) Unreferenced() []*Variable {
	var out []*Variable
	for _, name := range s.order {
		if v, ok := s.declared[name]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Parent returns s's enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope { return s.parent }

// OwnsLocally reports whether name is bound directly in s (declared or
// already referenced), without consulting ancestor scopes. A name that
// Resolve backfilled into s from an ancestor counts as bound here.
func (s *Scope) OwnsLocally(name string) bool {
	if _, ok := s.declared[name]; ok {
		return true
	}
	if _, ok := s.referenced[name]; ok {
		return true
	}
	return false
}

// AllDeclared returns every variable declared directly in s (referenced
// or not), in declaration order — used by the completion provider and
// by name resolution's closure-locality check.
func (s *Scope) AllDeclared() []*Variable {
	out := make([]*Variable, 0, len(s.order))
	for _, name := range s.order {
		if v, ok := s.declared[name]; ok {
			out = append(out, v)
		} else if v, ok := s.referenced[name]; ok {
			out = append(out, v)
		}
	}
	return out
}
