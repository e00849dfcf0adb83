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

package ast

// Inspect traverses node and every descendant in source order, calling
// visit for each. If visit returns false, Inspect does not descend into
// that node's children. Grounded on cue/ast/walk.go's Walk: an exhaustive
// type switch rather than a reflective/generic tree walker, matching the
// closed-sum-type AST (spec.md §9).
func Inspect(node Node, visit func(Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	for _, c := range Children(node) {
		Inspect(c, visit)
	}
}

// Children returns the immediate child nodes of node in source order.
// Nil children (optional fields left unset) are omitted.
func Children(n Node) []Node {
	var cs []Node
	add := func(c Node) {
		if c == nil || isNilNode(c) {
			return
		}
		cs = append(cs, c)
	}
	addAll := func(list ...Node) {
		for _, c := range list {
			add(c)
		}
	}

	switch v := n.(type) {
	case *ScriptFile:
		for _, d := range v.Decls {
			add(d)
		}
	case *ConfigFile:
		for _, s := range v.Stmts {
			add(s)
		}
	case *IncludeDecl:
		add(v.Source)
		for _, e := range v.Entries {
			add(e)
		}
	case *IncludeEntry:
		addAll(v.Name, v.Alias)
	case *FeatureFlagDecl:
		addAll(v.Name, v.Value)
	case *ProcessDef:
		add(v.Name)
		for _, p := range v.Params {
			add(p)
		}
		for _, o := range v.Outputs {
			add(o)
		}
		for _, d := range v.Directives {
			add(d)
		}
		addAll(v.When, v.Exec, v.Stub)
		for _, t := range v.Topics {
			add(t)
		}
		for _, s := range v.Body {
			add(s)
		}
	case *ProcessParam:
		addAll(v.Name, v.Type)
	case *ProcessOutput:
		addAll(v.Name, v.Type)
	case *DirectiveStmt:
		add(v.Name)
		for _, a := range v.Args {
			add(a)
		}
	case *WorkflowDef:
		add(v.Name)
		for _, p := range v.Takes {
			add(p)
		}
		for _, s := range v.Body {
			add(s)
		}
		for _, e := range v.Emits {
			add(e)
		}
		for _, p := range v.Publishers {
			add(p)
		}
		for _, h := range v.Hooks {
			add(h)
		}
	case *EmitDecl:
		addAll(v.Name, v.Type)
	case *PublishDecl:
		addAll(v.Name, v.Target)
	case *HookDecl:
		add(v.Name)
		for _, s := range v.Body {
			add(s)
		}
	case *FunctionDef:
		add(v.Name)
		for _, p := range v.Params {
			add(p)
		}
		add(v.ReturnType)
		for _, s := range v.Body {
			add(s)
		}
	case *Param:
		addAll(v.Name, v.Type)
	case *OutputDef:
		addAll(v.Name, v.Schema)
	case *TypeExpr:
		add(v.Name)
		for _, g := range v.Generics {
			add(g)
		}
	case *BlockStmt:
		for _, s := range v.Stmts {
			add(s)
		}
	case *ExprStmt:
		add(v.X)
	case *DeclStmt:
		addAll(v.Name, v.Type, v.Init)
	case *IfStmt:
		addAll(v.Cond, v.Then, v.Else)
	case *ForStmt:
		addAll(v.Binding, v.Iter, v.Body)
	case *CatchClause:
		addAll(v.Type, v.Name, v.Body)
	case *TryStmt:
		add(v.Body)
		for _, c := range v.Catches {
			add(c)
		}
		add(v.Finally)
	case *ReturnStmt:
		add(v.X)
	case *BinaryExpr:
		addAll(v.X, v.Y)
	case *UnaryExpr:
		add(v.X)
	case *PropertyExpr:
		addAll(v.X, v.Name)
	case *MethodCallExpr:
		addAll(v.X, v.Name)
		for _, a := range v.Args {
			add(a)
		}
		for _, a := range v.NamedArgs {
			add(a)
		}
		add(v.Closure)
	case *CallExpr:
		add(v.Callee)
		for _, a := range v.Args {
			add(a)
		}
		for _, a := range v.NamedArgs {
			add(a)
		}
		add(v.Closure)
	case *NamedArg:
		addAll(v.Name, v.Value)
	case *VariableExpr:
		add(v.Name)
	case *TupleExpr:
		for _, e := range v.Elems {
			add(e)
		}
	case *RangeExpr:
		addAll(v.Lo, v.Hi)
	case *ListExpr:
		for _, e := range v.Elems {
			add(e)
		}
	case *MapEntry:
		addAll(v.Key, v.Value)
	case *MapExpr:
		for _, e := range v.Entries {
			add(e)
		}
	case *ClosureExpr:
		for _, p := range v.Params {
			add(p)
		}
		for _, s := range v.Body {
			add(s)
		}
	case *CastExpr:
		addAll(v.X, v.Type)
	case *TernaryExpr:
		addAll(v.Cond, v.Then, v.Else)
	case *ElvisExpr:
		addAll(v.X, v.Default)
	case *AssignExpr:
		addAll(v.Target, v.Value)
	case *DeclExpr:
		for _, name := range v.Names {
			add(name)
		}
		add(v.Type)
	case *Assignment:
		addAll(v.Path, v.Value)
	case *Block:
		addAll(v.Name, v.Selector, v.Target)
		for _, s := range v.Stmts {
			add(s)
		}
	case *Include:
		add(v.Source)
	case *PluginRef:
		add(v.Name)
	case *PluginApplyBlock:
		add(v.Plugin)
		for _, s := range v.Items {
			add(s)
		}
	case *PluginsBlock:
		for _, r := range v.Refs {
			add(r)
		}
	case *Incomplete:
		add(v.Partial)
	case *QualName:
		for _, p := range v.Parts {
			add(p)
		}
	}
	return cs
}

// isNilNode reports whether a non-nil Node interface value wraps a nil
// concrete pointer (common when an optional *ast.X field is left unset).
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Ident:
		return v == nil
	case *QualName:
		return v == nil
	case *BlockStmt:
		return v == nil
	case *TypeExpr:
		return v == nil
	case *ClosureExpr:
		return v == nil
	default:
		return false
	}
}
