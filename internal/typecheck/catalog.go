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

// Package typecheck implements the DSL type checker (spec.md §4.5):
// assignability, generics instantiation, operator dispatch, closure/SAM
// inference, and process/workflow call return-shape synthesis. It
// consumes the scopes internal/nameresolve built and the canonical
// types/operator table from internal/types, annotating every expression
// node's inferred type into the source unit's internal/meta.Table.
//
// Grounded, by shape rather than by algorithm (CUE has no nominal type
// lattice or SAM-based closure dispatch), on internal/lsp/eval's
// candidate-matching/placeholder-substitution pattern the teacher uses
// to resolve its own call expressions: gather candidates, filter by
// compatibility, substitute generics, instantiate the result.
package typecheck

import (
	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/types"
)

// CallableKind distinguishes the three declaration forms a call can
// target, mirroring internal/include.ExportKind (kept separate to avoid
// a package dependency neither side needs).
type CallableKind int

const (
	CallableProcess CallableKind = iota
	CallableWorkflow
	CallableFunction
)

// Param is one positional parameter of a callable signature.
type Param struct {
	Name string
	Type *types.Type
}

// Signature describes one process/workflow/function's call shape.
type Signature struct {
	Kind    CallableKind
	Params  []Param
	Outputs map[string]*types.Type // process only
	Return  *types.Type            // function only; mutated in place by return-type inference
	Decl    ast.Decl
}

// Catalog maps every name callable from a script (locally declared, or
// bound in by an include) to its signature, so the checker can
// synthesize call return types without re-parsing the target file on
// every reference.
type Catalog struct {
	byName map[string]*Signature
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog { return &Catalog{byName: map[string]*Signature{}} }

// Add registers the signature for a locally-visible name, inferring it
// from the declaration's AST shape. A name already present is left
// untouched (first-writer-wins, matching the include resolver's
// AmbiguousInclude handling upstream: by the time the catalog is built,
// any ambiguity has already been diagnosed).
func (c *Catalog) Add(name string, d ast.Decl) {
	if _, exists := c.byName[name]; exists {
		return
	}
	switch n := d.(type) {
	case *ast.ProcessDef:
		sig := &Signature{Kind: CallableProcess, Outputs: map[string]*types.Type{}, Decl: d}
		for _, p := range n.Params {
			sig.Params = append(sig.Params, Param{Name: p.Name.Name, Type: types.FromTypeExpr(p.Type)})
		}
		for _, o := range n.Outputs {
			sig.Outputs[o.Name.Name] = types.FromTypeExpr(o.Type)
		}
		c.byName[name] = sig
	case *ast.WorkflowDef:
		sig := &Signature{Kind: CallableWorkflow, Decl: d}
		for _, p := range n.Takes {
			sig.Params = append(sig.Params, Param{Name: p.Name.Name, Type: types.FromTypeExpr(p.Type)})
		}
		c.byName[name] = sig
	case *ast.FunctionDef:
		ret := types.Dynamic
		if n.ReturnType != nil {
			ret = types.FromTypeExpr(n.ReturnType)
		}
		sig := &Signature{Kind: CallableFunction, Return: ret, Decl: d}
		for _, p := range n.Params {
			sig.Params = append(sig.Params, Param{Name: p.Name.Name, Type: types.FromTypeExpr(p.Type)})
		}
		c.byName[name] = sig
	}
}

// AddLocalDecls registers every process/workflow/function top-level
// declaration of a script.
func (c *Catalog) AddLocalDecls(decls []ast.Decl) {
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.ProcessDef:
			c.Add(n.Name.Name, n)
		case *ast.WorkflowDef:
			if n.Name != nil {
				c.Add(n.Name.Name, n)
			}
		case *ast.FunctionDef:
			c.Add(n.Name.Name, n)
		}
	}
}

// AddIncluded registers a name bound in via an include entry, resolved
// to its declaration in another source unit (spec.md §4.2). Callers
// (internal/analysiscache) pass each internal/include.Binding's local
// name and target Decl.
func (c *Catalog) AddIncluded(local string, d ast.Decl) {
	c.Add(local, d)
}

// Lookup returns the signature registered for name, if any.
func (c *Catalog) Lookup(name string) (*Signature, bool) {
	sig, ok := c.byName[name]
	return sig, ok
}
