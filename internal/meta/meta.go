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

// Package meta holds per-AST-node metadata produced by later phases
// without mutating the AST nodes themselves: parent links, inferred
// types, and resolved reference targets (spec.md §3 invariants
// "parent(node) is consistent with a unique parent", §4.5 "infer types
// on every expression node").
//
// The spec's design note (§9) models this as parallel vectors indexed
// by a synthetic u32 node id in an arena. This module keeps the AST as
// ordinary Go pointers (see internal/ast's package doc), so the
// equivalent side-table is keyed directly by ast.Node pointer identity
// — Go's map-of-interface already gives O(1) lookup without an arena
// indirection, and it is the shape the teacher's own node-to-metadata
// tables use (internal/lsp/cache's per-file decorations keyed by
// *ast.File / token.Pos rather than an integer id).
package meta

import (
	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/symbols"
	"github.com/flowdsl/flowls/internal/types"
)

// Table holds every piece of node-keyed metadata for one source unit.
// It is rebuilt (not mutated in place) whenever the unit's AST is
// replaced, and is itself replaced wholesale (spec.md §3 "Lifecycle...
// replaced wholesale on re-parse").
type Table struct {
	parent   map[ast.Node]ast.Node
	declType map[ast.Node]*types.Type // Node is the declaring *ast.Ident
	exprType map[ast.Expr]*types.Type
	resolved map[ast.Node]*symbols.Variable // Node is a *ast.VariableExpr or similar reference site
	scopeOf  map[ast.Node]*symbols.Scope    // the scope a scope-owning node pushed
}

// New returns an empty metadata table.
func New() *Table {
	return &Table{
		parent:   map[ast.Node]ast.Node{},
		declType: map[ast.Node]*types.Type{},
		exprType: map[ast.Expr]*types.Type{},
		resolved: map[ast.Node]*symbols.Variable{},
		scopeOf:  map[ast.Node]*symbols.Scope{},
	}
}

// BuildParents walks root and records every node's parent, per spec.md
// §3's "Parent-map visitor consumes the AST and returns node -> parent
// for a URI" (§6).
func BuildParents(root ast.Node) map[ast.Node]ast.Node {
	parents := map[ast.Node]ast.Node{}
	var walk func(n, p ast.Node)
	walk = func(n, p ast.Node) {
		if n == nil {
			return
		}
		if p != nil {
			parents[n] = p
		}
		for _, c := range ast.Children(n) {
			walk(c, n)
		}
	}
	walk(root, nil)
	return parents
}

// SetParents installs a pre-computed parent map (see BuildParents).
func (t *Table) SetParents(p map[ast.Node]ast.Node) { t.parent = p }

// Parent returns n's parent, or nil for the root or an unknown node.
func (t *Table) Parent(n ast.Node) ast.Node { return t.parent[n] }

// SetExprType records the inferred type of an expression node.
func (t *Table) SetExprType(e ast.Expr, ty *types.Type) { t.exprType[e] = ty }

// ExprType returns the inferred type of e, or types.Dynamic if none was
// ever recorded (e.g. type checking hasn't reached this node yet).
func (t *Table) ExprType(e ast.Expr) *types.Type {
	if ty, ok := t.exprType[e]; ok {
		return ty
	}
	return types.Dynamic
}

// SetDeclaredType records the declared/annotated type at a declaration
// site (an *ast.Ident for most declaration forms).
func (t *Table) SetDeclaredType(site ast.Node, ty *types.Type) { t.declType[site] = ty }

// DeclaredType returns the declared type at site, or types.Dynamic.
func (t *Table) DeclaredType(site ast.Node) *types.Type {
	if ty, ok := t.declType[site]; ok {
		return ty
	}
	return types.Dynamic
}

// SetResolved records that the reference site (a *ast.VariableExpr,
// *ast.Ident used as a callee, etc.) resolved to v.
func (t *Table) SetResolved(site ast.Node, v *symbols.Variable) { t.resolved[site] = v }

// Resolved returns the variable a reference site resolved to, if any.
func (t *Table) Resolved(site ast.Node) (*symbols.Variable, bool) {
	v, ok := t.resolved[site]
	return v, ok
}

// SetScope records the lexical scope a scope-owning node (BlockStmt,
// ClosureExpr, ProcessDef, WorkflowDef, FunctionDef, CatchClause)
// pushed during name resolution.
func (t *Table) SetScope(owner ast.Node, s *symbols.Scope) { t.scopeOf[owner] = s }

// ScopeOf returns the scope owner pushed, if any.
func (t *Table) ScopeOf(owner ast.Node) (*symbols.Scope, bool) {
	s, ok := t.scopeOf[owner]
	return s, ok
}
