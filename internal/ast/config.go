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

// ConfigFile is the root node of a config source unit (spec.md §3 "AST
// (config)"): an ordered sequence of config statements.
type ConfigFile struct {
	base
	Name  string
	Stmts []ConfigStmt
}

func (f *ConfigFile) FileKind() Kind { return KindConfig }

// ConfigStmt is implemented by every config top-level/nested statement.
type ConfigStmt interface {
	Node
	configStmt()
}

type configStmtBase struct{ base }

func (configStmtBase) configStmt() {}

// Assignment is `dotted.name.path = expr` (spec.md §4.4).
type Assignment struct {
	configStmtBase
	Path  *QualName
	Value Expr
}

// Block is a named scoped block (`profiles { ... }`, `process { ... }`),
// or a *selector* block when Selector is non-empty (`withLabel:foo { ... }`,
// spec.md §3 "*selector* block with kind:target").
type Block struct {
	configStmtBase
	Name     *Ident
	Selector *Ident // the "kind" in "kind:target"; nil for an ordinary block
	Target   Expr   // the ":target" expression; nil for an ordinary block
	Stmts    []ConfigStmt
}

// Include is a config-level include of another source file (spec.md
// §4.4: legal only at top-level or directly inside a profile scope).
type Include struct {
	configStmtBase
	Source Expr
}

// PluginRef is one `name@version?` entry inside a `plugins { ... }` block.
type PluginRef struct {
	base
	Name    *Ident
	Version string // empty if unspecified
}

// PluginApplyBlock is an unqualified block that invokes plugin-provided
// items (spec.md §3 "plugin 'apply' block").
type PluginApplyBlock struct {
	configStmtBase
	Plugin *Ident
	Items  []ConfigStmt
}

// PluginsBlock is the well-known top-level `plugins { id 'x@y' ... }`
// block consulted by the schema validator's plugin-merge step
// (spec.md §4.4).
type PluginsBlock struct {
	configStmtBase
	Refs []*PluginRef
}

// Incomplete retains a partially-written statement for completion
// purposes (spec.md §3 "partial input retained for completion"): the
// text typed so far, with whatever prefix of a path/block the parser
// could still make sense of.
type Incomplete struct {
	configStmtBase
	Partial *QualName // best-effort partial dotted path, may be nil
}
