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

// Package nameresolve implements the two resolution passes spec.md §4.3
// and §4.4 describe as siblings in the pipeline: the script
// variable-scope resolver and the config schema validator. Both walk an
// already-parsed AST (internal/driver.SourceUnit) and report into its
// internal/phase.Builder; neither mutates the AST.
//
// Grounded on internal/lsp/definitions's scope-chain walk: push a scope
// on entering a binding construct, declare/resolve names against the
// chain, pop on exit. The teacher's version serves go-to-definition over
// an already-resolved graph; this one performs the declare/resolve pass
// itself, since this DSL's scoping rules (closure capture, implicit
// locals, process/workflow class surfaces) have no CUE equivalent to
// reuse wholesale.
package nameresolve

import (
	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/classscope"
	"github.com/flowdsl/flowls/internal/driver"
	"github.com/flowdsl/flowls/internal/phase"
	"github.com/flowdsl/flowls/internal/symbols"
	"github.com/flowdsl/flowls/internal/types"
)

// builtinNames are the read-only run-metadata variables available
// everywhere in a script (spec.md §4.3 "Built-in variables cannot be
// reassigned").
var builtinNames = map[string]*types.Type{
	"baseDir":    types.Concrete(types.Path),
	"launchDir":  types.Concrete(types.Path),
	"projectDir": types.Concrete(types.Path),
	"workDir":    types.Concrete(types.Path),
	"params":     types.Concrete(types.Map, types.Concrete(types.String), types.Dynamic),
	"workflow":   types.Concrete(types.Record),
}

// deprecatedStyleBuiltins reads of which, inside a process body, emit a
// style warning (spec.md §4.3: "process bodies that read
// baseDir/launchDir/projectDir/workDir emit a style warning").
var deprecatedStyleBuiltins = map[string]bool{
	"baseDir": true, "launchDir": true, "projectDir": true, "workDir": true,
}

// featureFlags is the enumerated feature-flag registry named in spec.md
// §4.3 ("Feature-flag declarations resolve against an enumerated
// feature-flag registry"). A true value marks a flag deprecated.
var featureFlags = map[string]bool{
	"dsl2":                 false,
	"strict":               false,
	"moduleBinaries":       false,
	"recurseEntrypoint":    false,
	"outputDefinition":     true,
	"legacyChannelLogging": true,
}

// IncludeBinding is one name an include resolution pass has bound into
// the importing file's module scope (built from
// internal/include.Resolver results by the caller, keeping this package
// free of a dependency on internal/include).
type IncludeBinding struct {
	Local string
	Site  ast.Node
}

// ResolveScript runs the variable-scope resolver over unit (spec.md
// §4.3). includes declares every name the include resolver bound into
// this file's module scope before the walk begins, so calls to included
// processes/workflows/functions resolve.
func ResolveScript(unit *driver.SourceUnit, includes []IncludeBinding) {
	script, ok := unit.Root.(*ast.ScriptFile)
	if !ok {
		return
	}
	r := &scriptResolver{unit: unit, diags: unit.Diagnostics}
	module := symbols.NewRootScope()
	r.declareBuiltins(module)

	for _, b := range includes {
		module.Declare(&symbols.Variable{Name: b.Local, Kind: symbols.KindInclude, DeclaredType: types.Dynamic, Site: b.Site})
	}
	// Every locally-defined process/workflow/function is callable from
	// anywhere else in the same file without an include.
	for _, d := range script.Decls {
		switch n := d.(type) {
		case *ast.ProcessDef:
			module.Declare(&symbols.Variable{Name: n.Name.Name, Kind: symbols.KindLocal, DeclaredType: types.Dynamic, Site: n.Name})
		case *ast.WorkflowDef:
			if n.Name != nil {
				module.Declare(&symbols.Variable{Name: n.Name.Name, Kind: symbols.KindLocal, DeclaredType: types.Dynamic, Site: n.Name})
			}
		case *ast.FunctionDef:
			module.Declare(&symbols.Variable{Name: n.Name.Name, Kind: symbols.KindLocal, DeclaredType: types.Dynamic, Site: n.Name})
		}
	}
	unit.Meta.SetScope(script, module)

	for _, d := range script.Decls {
		r.decl(d, module)
	}
}

func (r *scriptResolver) declareBuiltins(s *symbols.Scope) {
	for name, ty := range builtinNames {
		s.Declare(&symbols.Variable{Name: name, Kind: symbols.KindBuiltin, DeclaredType: ty})
	}
	// println is callable from any script without an include.
	s.Declare(&symbols.Variable{Name: "println", Kind: symbols.KindBuiltin, DeclaredType: types.Dynamic})
}

type scriptResolver struct {
	unit  *driver.SourceUnit
	diags *phase.Builder

	// inEntry is true while walking an entry workflow's body, used by
	// ArgsOutsideEntry/ParamsOutsideEntry.
	inEntry bool
	// inProcessBody triggers the deprecated-style-builtin-read warning.
	inProcessBody bool
	// closureDepth counts enclosing ClosureExprs, used for the implicit-
	// declaration and external-mutation rules.
	closureDepth int
	// closureBoundary is the scope each enclosing ClosureExpr pushed,
	// innermost last; used to tell a closure-local binding apart from one
	// captured from an enclosing scope.
	closureBoundary []*symbols.Scope
}

func (r *scriptResolver) report(code string, n ast.Node, msg string) {
	kind := phase.KindNameResolution
	r.diags.Report(phase.NameResolution, kind, code, n.Range(), msg)
}

func (r *scriptResolver) decl(d ast.Decl, module *symbols.Scope) {
	switch n := d.(type) {
	case *ast.IncludeDecl:
		// Entries were already declared into module by ResolveScript.
	case *ast.FeatureFlagDecl:
		deprecated, ok := featureFlags[n.Name.Name]
		if !ok {
			r.report("NotDefined", n.Name, "unknown feature flag \""+n.Name.Name+"\"")
		} else if deprecated {
			r.report("Deprecated", n.Name, "feature flag \""+n.Name.Name+"\" is deprecated")
		}
		r.expr(n.Value, module)
	case *ast.ProcessDef:
		r.processDef(n, module)
	case *ast.WorkflowDef:
		r.workflowDef(n, module)
	case *ast.FunctionDef:
		r.functionDef(n, module)
	case *ast.OutputDef:
		r.expr(n.Schema, module)
	}
}

func (r *scriptResolver) processDef(n *ast.ProcessDef, module *symbols.Scope) {
	scope := symbols.NewChild(module, classscope.ProcessBodyScope())
	r.unit.Meta.SetScope(n, scope)

	for _, p := range n.Params {
		declType := toType(p.Type)
		if err := scope.Declare(&symbols.Variable{Name: p.Name.Name, Kind: symbols.KindParam, DeclaredType: declType, Site: p.Name}); err != nil {
			r.report("AlreadyDeclared", p.Name, err.Error())
		}
	}
	prevProcess := r.inProcessBody
	r.inProcessBody = true
	for _, d := range n.Directives {
		for _, a := range d.Args {
			r.expr(a, scope)
		}
	}
	if n.When != nil {
		r.expr(n.When, scope)
	}
	for _, s := range n.Body {
		r.stmt(s, scope)
	}
	r.inProcessBody = prevProcess
	r.reportUnused(scope)
}

func (r *scriptResolver) workflowDef(n *ast.WorkflowDef, module *symbols.Scope) {
	scope := symbols.NewChild(module, classscope.WorkflowBodyScope())
	r.unit.Meta.SetScope(n, scope)

	for _, p := range n.Takes {
		declType := toType(p.Type)
		if err := scope.Declare(&symbols.Variable{Name: p.Name.Name, Kind: symbols.KindParam, DeclaredType: declType, Site: p.Name}); err != nil {
			r.report("AlreadyDeclared", p.Name, err.Error())
		}
	}

	prevEntry := r.inEntry
	r.inEntry = n.Name == nil
	for _, s := range n.Body {
		r.stmt(s, scope)
	}
	r.inEntry = prevEntry

	seenEmits := map[string]bool{}
	for _, e := range n.Emits {
		if seenEmits[e.Name.Name] {
			r.report("AlreadyDeclared", e.Name, "duplicate emit name \""+e.Name.Name+"\"")
		}
		seenEmits[e.Name.Name] = true
	}
	if n.Name == nil {
		seenPublish := map[string]bool{}
		for _, p := range n.Publishers {
			seenPublish[p.Name.Name] = true
			if !seenEmits[p.Name.Name] {
				r.report("NotDefined", p.Name, "publisher \""+p.Name.Name+"\" has no matching emit")
			}
			r.expr(p.Target, scope)
		}
		for _, e := range n.Emits {
			if !seenPublish[e.Name.Name] {
				r.report("NotDefined", e.Name, "emit \""+e.Name.Name+"\" is never published")
			}
		}
	}
	for _, h := range n.Hooks {
		hookScope := symbols.NewChild(scope, nil)
		for _, s := range h.Body {
			r.stmt(s, hookScope)
		}
		r.reportUnused(hookScope)
	}
	r.reportUnused(scope)
}

func (r *scriptResolver) functionDef(n *ast.FunctionDef, module *symbols.Scope) {
	scope := symbols.NewChild(module, nil)
	r.unit.Meta.SetScope(n, scope)
	for _, p := range n.Params {
		declType := toType(p.Type)
		if err := scope.Declare(&symbols.Variable{Name: p.Name.Name, Kind: symbols.KindParam, DeclaredType: declType, Site: p.Name}); err != nil {
			r.report("AlreadyDeclared", p.Name, err.Error())
		}
	}
	for _, s := range n.Body {
		r.stmt(s, scope)
	}
	r.reportUnused(scope)
}

func (r *scriptResolver) reportUnused(s *symbols.Scope) {
	for _, v := range s.Unreferenced() {
		if v.Site == nil || v.Kind == symbols.KindBuiltin || v.Kind == symbols.KindInclude {
			continue
		}
		name := v.Name
		if len(name) > 0 && name[0] == '_' {
			continue
		}
		r.report("UnusedVariable", v.Site, "\""+name+"\" is never used")
	}
}

func (r *scriptResolver) stmt(s ast.Stmt, scope *symbols.Scope) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		child := symbols.NewChild(scope, nil)
		for _, st := range n.Stmts {
			r.stmt(st, child)
		}
		r.reportUnused(child)
	case *ast.ExprStmt:
		r.expr(n.X, scope)
	case *ast.DeclStmt:
		if n.Init != nil {
			r.expr(n.Init, scope)
		}
		declType := toType(n.Type)
		if err := scope.Declare(&symbols.Variable{Name: n.Name.Name, Kind: symbols.KindLocal, DeclaredType: declType, Init: n.Init, Site: n.Name}); err != nil {
			r.report("AlreadyDeclared", n.Name, err.Error())
		}
	case *ast.IfStmt:
		r.expr(n.Cond, scope)
		r.stmt(n.Then, scope)
		if n.Else != nil {
			r.stmt(n.Else, scope)
		}
	case *ast.ForStmt:
		r.expr(n.Iter, scope)
		child := symbols.NewChild(scope, nil)
		if n.Binding != nil {
			child.Declare(&symbols.Variable{Name: n.Binding.Name, Kind: symbols.KindLocal, DeclaredType: types.Dynamic, Site: n.Binding})
		}
		for _, st := range n.Body.Stmts {
			r.stmt(st, child)
		}
		r.reportUnused(child)
	case *ast.TryStmt:
		r.stmt(n.Body, scope)
		for _, c := range n.Catches {
			child := symbols.NewChild(scope, nil)
			if err := child.Declare(&symbols.Variable{Name: c.Name.Name, Kind: symbols.KindLocal, DeclaredType: toType(c.Type), Site: c.Name}); err != nil {
				r.report("AlreadyDeclared", c.Name, err.Error())
			}
			for _, st := range c.Body.Stmts {
				r.stmt(st, child)
			}
			r.reportUnused(child)
		}
		if n.Finally != nil {
			r.stmt(n.Finally, scope)
		}
	case *ast.ReturnStmt:
		if n.X != nil {
			r.expr(n.X, scope)
		}
	}
}

func (r *scriptResolver) expr(e ast.Expr, scope *symbols.Scope) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.BinaryExpr:
		r.expr(n.X, scope)
		r.expr(n.Y, scope)
	case *ast.UnaryExpr:
		r.expr(n.X, scope)
	case *ast.PropertyExpr:
		r.expr(n.X, scope)
		r.checkOutsideEntryAccess(n.X, n.Name)
	case *ast.MethodCallExpr:
		r.expr(n.X, scope)
		for _, a := range n.Args {
			r.expr(a, scope)
		}
		for _, a := range n.NamedArgs {
			r.expr(a.Value, scope)
		}
		if n.Closure != nil {
			r.closure(n.Closure, scope)
		}
	case *ast.CallExpr:
		if _, ok := scope.Resolve(n.Callee.Name, r.closureDepth > 0); !ok {
			r.report("NotDefined", n.Callee, "\""+n.Callee.Name+"\" is not defined")
		}
		for _, a := range n.Args {
			r.expr(a, scope)
		}
		for _, a := range n.NamedArgs {
			r.expr(a.Value, scope)
		}
		if n.Closure != nil {
			r.closure(n.Closure, scope)
		}
	case *ast.VariableExpr:
		if v := r.resolveVar(n.Name, scope); v != nil {
			r.unit.Meta.SetResolved(n, v)
		}
	case *ast.TupleExpr:
		for _, el := range n.Elems {
			r.expr(el, scope)
		}
	case *ast.RangeExpr:
		r.expr(n.Lo, scope)
		r.expr(n.Hi, scope)
	case *ast.ListExpr:
		for _, el := range n.Elems {
			r.expr(el, scope)
		}
	case *ast.MapExpr:
		for _, me := range n.Entries {
			r.expr(me.Key, scope)
			r.expr(me.Value, scope)
		}
	case *ast.ClosureExpr:
		r.closure(n, scope)
	case *ast.CastExpr:
		r.expr(n.X, scope)
	case *ast.TernaryExpr:
		r.expr(n.Cond, scope)
		r.expr(n.Then, scope)
		r.expr(n.Else, scope)
	case *ast.ElvisExpr:
		r.expr(n.X, scope)
		r.expr(n.Default, scope)
	case *ast.AssignExpr:
		r.assign(n, scope)
	case *ast.DeclExpr:
		for _, name := range n.Names {
			if err := scope.Declare(&symbols.Variable{Name: name.Name, Kind: symbols.KindLocal, DeclaredType: toType(n.Type), Site: name}); err != nil {
				r.report("AlreadyDeclared", name, err.Error())
			}
		}
	case *ast.ConstantExpr:
		// no names to resolve
	}
}

// checkOutsideEntryAccess implements ArgsOutsideEntry/ParamsOutsideEntry
// (spec.md §4.3): referencing the `params`/`args` run-metadata surface
// from anywhere but the entry workflow.
func (r *scriptResolver) checkOutsideEntryAccess(base ast.Expr, member *ast.Ident) {
	v, ok := base.(*ast.VariableExpr)
	if !ok || v.Name == nil || r.inEntry {
		return
	}
	switch v.Name.Name {
	case "params":
		r.report("ParamsOutsideEntry", member, "\"params\" is only meaningful in the entry workflow")
	case "args":
		r.report("ArgsOutsideEntry", member, "\"args\" is only meaningful in the entry workflow")
	}
}

func (r *scriptResolver) resolveVar(name *ast.Ident, scope *symbols.Scope) *symbols.Variable {
	v, ok := scope.Resolve(name.Name, r.closureDepth > 0)
	if !ok {
		r.report("NotDefined", name, "\""+name.Name+"\" is not defined")
		return nil
	}
	if r.inProcessBody && deprecatedStyleBuiltins[name.Name] {
		r.report("Deprecated", name, "reading \""+name.Name+"\" inside a process body is discouraged")
	}
	return v
}

func (r *scriptResolver) closure(n *ast.ClosureExpr, scope *symbols.Scope) {
	child := symbols.NewChild(scope, nil)
	if len(n.Params) == 0 {
		child.Declare(&symbols.Variable{Name: "it", Kind: symbols.KindParam, DeclaredType: types.Dynamic})
		r.report("ImplicitItInClosure", n, "closure uses the implicit \"it\" parameter")
	}
	for _, p := range n.Params {
		child.Declare(&symbols.Variable{Name: p.Name.Name, Kind: symbols.KindParam, DeclaredType: toType(p.Type), Site: p.Name})
	}
	r.closureDepth++
	r.closureBoundary = append(r.closureBoundary, child)
	for _, s := range n.Body {
		r.stmt(s, child)
	}
	r.closureBoundary = r.closureBoundary[:len(r.closureBoundary)-1]
	r.closureDepth--
	r.reportUnused(child)
}

// isLocalToClosure reports whether name is declared somewhere between
// scope and the innermost enclosing closure's own scope (inclusive), as
// opposed to captured from further out.
func (r *scriptResolver) isLocalToClosure(scope *symbols.Scope, name string) bool {
	if len(r.closureBoundary) == 0 {
		return true
	}
	boundary := r.closureBoundary[len(r.closureBoundary)-1]
	for cur := scope; cur != nil; cur = cur.Parent() {
		for _, v := range cur.AllDeclared() {
			if v.Name == name {
				return true
			}
		}
		if cur == boundary {
			return false
		}
	}
	return false
}

// assign implements the implicit-local-declaration and
// external-mutation-in-closure rules (spec.md §4.3): an assignment whose
// target is an undeclared bare variable is promoted to a local outside a
// closure, or rejected (AssignedButNotDeclared) inside one; an
// assignment whose target resolves across a closure boundary is flagged
// ExternalMutationInClosure.
func (r *scriptResolver) assign(n *ast.AssignExpr, scope *symbols.Scope) {
	target, ok := n.Target.(*ast.VariableExpr)
	if !ok {
		r.expr(n.Value, scope)
		r.expr(n.Target, scope)
		return
	}
	local := r.isLocalToClosure(scope, target.Name.Name)
	r.expr(n.Value, scope)
	if v, ok := scope.Resolve(target.Name.Name, r.closureDepth > 0); ok {
		if v.Kind == symbols.KindBuiltin {
			r.report("BuiltinReassigned", target.Name, "\""+target.Name.Name+"\" is a built-in and cannot be reassigned")
			return
		}
		if r.closureDepth > 0 && !local {
			r.report("ExternalMutationInClosure", target.Name, "assignment to \""+target.Name.Name+"\" captured from an enclosing scope")
		}
		return
	}
	if r.closureDepth > 0 {
		r.report("AssignedButNotDeclared", target.Name, "closure must declare \""+target.Name.Name+"\" with an explicit binding")
		return
	}
	scope.Declare(&symbols.Variable{Name: target.Name.Name, Kind: symbols.KindLocal, DeclaredType: types.Dynamic, Site: target.Name})
}

// toType delegates to types.FromTypeExpr; kept as a local alias since
// every call site in this file was written against the short name.
func toType(t *ast.TypeExpr) *types.Type { return types.FromTypeExpr(t) }
