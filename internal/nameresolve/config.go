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

package nameresolve

import (
	"strings"

	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/driver"
	"github.com/flowdsl/flowls/internal/phase"
	"github.com/flowdsl/flowls/internal/schema"
	"github.com/flowdsl/flowls/internal/types"
)

// ConfigOptions toggles the config validator's optional behaviors
// (spec.md §4.4, §6 "didChangeConfiguration"). Strict mode promotes an
// unknown-option finding to an Error (spec.md §7 "Schema: ... surfaced
// as warnings unless strict mode").
type ConfigOptions struct {
	TypeChecking bool
	Strict       bool
}

// ValidateConfig runs the schema validator over a config source unit
// (spec.md §4.4). root is the merged root scope (built-ins plus any
// plugin-contributed scopes for this source unit, see
// schema.MergeScopes); plugins resolves the refs named in this file's
// own `plugins { ... }` block so their contributed scopes can be merged
// before paths are looked up.
func ValidateConfig(unit *driver.SourceUnit, root *schema.Scope, plugins *schema.PluginCache, opts ConfigOptions) {
	file, ok := unit.Root.(*ast.ConfigFile)
	if !ok {
		return
	}
	effectiveRoot := root
	if refs := pluginRefs(file); len(refs) > 0 && plugins != nil {
		effectiveRoot = schema.MergeScopes(root, plugins.ScopesFor(refs)...)
	}
	v := &configValidator{unit: unit, diags: unit.Diagnostics, root: effectiveRoot, opts: opts}
	v.stmts(file.Stmts, nil, false)
}

// pluginRefs extracts the `plugins { id 'name@version' }` entries from a
// config file, if any (spec.md §4.4 "Plugin schema merging").
func pluginRefs(file *ast.ConfigFile) []schema.PluginRef {
	var refs []schema.PluginRef
	for _, s := range file.Stmts {
		if pb, ok := s.(*ast.PluginsBlock); ok {
			for _, r := range pb.Refs {
				refs = append(refs, schema.PluginRef{Name: r.Name.Name, Version: r.Version})
			}
		}
	}
	return refs
}

type configValidator struct {
	unit  *driver.SourceUnit
	diags *phase.Builder
	root  *schema.Scope
	opts  ConfigOptions
}

// report tags a config diagnostic with its taxonomy Kind (always Schema,
// which drives severityForKind/strict-mode escalation) and an explicit
// Phase. UnknownConfigOption is tagged NameResolution rather than Schema
// per spec.md §8's "exactly one Warning phase=NAME_RESOLUTION" scenario:
// an unresolvable config path is treated like an undefined name, not a
// type-level schema finding.
func (v *configValidator) report(ph phase.Phase, code string, n ast.Node, msg string) {
	v.diags.Report(ph, phase.KindSchema, code, n.Range(), msg)
}

// stmts walks a sequence of config statements. ambient is the scope path
// stack accumulated from enclosing blocks; inProfile marks that the
// current nesting is directly inside (or beneath) a `profiles.<name>`
// scope, where includes are additionally legal (spec.md §4.4 "Include
// statements are allowed only at top-level or directly inside a profile
// scope").
func (v *configValidator) stmts(stmts []ast.ConfigStmt, ambient []string, inProfile bool) {
	for _, s := range stmts {
		v.stmt(s, ambient, inProfile)
	}
}

func (v *configValidator) stmt(s ast.ConfigStmt, ambient []string, inProfile bool) {
	switch n := s.(type) {
	case *ast.Assignment:
		v.assignment(n, ambient)
	case *ast.Block:
		v.block(n, ambient, inProfile)
	case *ast.Include:
		topLevel := len(ambient) == 0
		if !topLevel && !inProfile {
			v.report(phase.Schema, "IllegalInclude", n, "include is only legal at top-level or directly inside a profile scope")
		}
	case *ast.PluginApplyBlock:
		// Unqualified plugin-invoking blocks are schema-opaque: their
		// items are whatever the plugin defines, not schema paths.
	case *ast.PluginsBlock:
		// No schema validation of the plugins block itself; its refs
		// are consumed by ValidateConfig before the walk starts.
	case *ast.Incomplete:
		// Partial input retained for completion; nothing to validate.
	}
}

// block descends into a named or selector block, extending the ambient
// path and tracking whether the nesting crosses into a profile scope.
func (v *configValidator) block(n *ast.Block, ambient []string, inProfile bool) {
	if n.Selector != nil {
		// A selector block (`withLabel:foo { ... }`) consumes the
		// placeholder axis represented by n.Selector's own schema node:
		// the selector's own name is appended like an ordinary segment,
		// followed by a stand-in index segment that schema.Lookup
		// consumes at the Placeholder regardless of its text, and the
		// target expression is validated as a value, not a path.
		v.exprType(n.Target, ambient)
		path := append(append([]string{}, ambient...), n.Selector.Name, "*")
		v.stmts(n.Stmts, path, inProfile)
		return
	}
	path := append(append([]string{}, ambient...), n.Name.Name)
	nextInProfile := inProfile
	if len(ambient) == 0 && n.Name.Name == "profiles" {
		nextInProfile = true
	}
	v.stmts(n.Stmts, path, nextInProfile)
}

func (v *configValidator) assignment(n *ast.Assignment, ambient []string) {
	path := append(append([]string{}, ambient...), pathSegments(n.Path)...)
	stripped, _ := schema.StripProfilePrefix(path)

	switch schema.ClassifyBypass(stripped) {
	case schema.BypassEnv:
		if len(stripped) != 2 {
			v.report(phase.NameResolution, "UnknownConfigOption", n.Path, "'"+n.Path.String()+"' is not a valid env.<NAME> assignment")
		}
		return
	case schema.BypassParams:
		// params.* is a free map; no further schema checks apply.
		return
	}

	node, ok := schema.Lookup(v.root, stripped)
	if !ok {
		v.report(phase.NameResolution, "UnknownConfigOption", n.Path, "'"+n.Path.String()+"' is not a known configuration option")
		return
	}
	opt, isOption := node.(*schema.Option)
	if !isOption {
		// A value assigned where a nested scope was expected; still
		// surfaced as UnknownConfigOption per spec.md §4.4's single
		// "not found" outcome class.
		v.report(phase.NameResolution, "UnknownConfigOption", n.Path, "'"+n.Path.String()+"' names a configuration scope, not a value")
		return
	}
	if !v.opts.TypeChecking {
		return
	}
	valType := v.exprType(n.Value, ambient)
	if !opt.Accepts(valType) {
		v.report(phase.Schema, "TypeMismatch", n.Value, "'"+n.Path.String()+"' does not accept type "+valType.String()+accepted(opt.Types))
	}
}

func accepted(ts []types.Canonical) string {
	if len(ts) == 0 {
		return ""
	}
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = string(t)
	}
	return " (accepts: " + strings.Join(names, ", ") + ")"
}

func pathSegments(q *ast.QualName) []string {
	out := make([]string, len(q.Parts))
	for i, p := range q.Parts {
		out[i] = p.Name
	}
	return out
}

// exprType infers the canonical type of a config value expression,
// enough to drive schema.Option.Accepts (spec.md §4.4 "infer the value
// expression's type, normalize it"). Config expressions reuse the
// script expression grammar, so this mirrors internal/typecheck's
// literal-type rules for the subset config values actually use.
func (v *configValidator) exprType(e ast.Expr, ambient []string) *types.Type {
	switch n := e.(type) {
	case *ast.ConstantExpr:
		switch n.Kind {
		case ast.ConstInt:
			return types.Concrete(types.Integer)
		case ast.ConstFloat:
			return types.Concrete(types.Float)
		case ast.ConstString:
			return types.Concrete(types.String)
		case ast.ConstBool:
			return types.Concrete(types.Boolean)
		case ast.ConstDuration:
			return types.Concrete(types.Duration)
		case ast.ConstMemoryUnit:
			return types.Concrete(types.MemoryUnit)
		case ast.ConstNull:
			return types.Dynamic
		}
	case *ast.ListExpr:
		elem := types.Dynamic
		for i, el := range n.Elems {
			t := v.exprType(el, ambient)
			if i == 0 {
				elem = t
			} else if !types.Equal(elem, t) {
				elem = types.Dynamic
			}
		}
		return types.Concrete(types.List, elem)
	case *ast.ClosureExpr:
		return types.Concrete(types.Closure)
	case *ast.VariableExpr, *ast.PropertyExpr, *ast.MethodCallExpr, *ast.CallExpr:
		// References to other config values/env/params are not
		// statically typed without full cross-scope evaluation; treat
		// as dynamic so Accepts always succeeds rather than false-flag.
		return types.Dynamic
	}
	return types.Dynamic
}
