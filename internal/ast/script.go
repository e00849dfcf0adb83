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

// ScriptFile is the root node of a script source unit (spec.md §3 "AST
// (script)"): a sequence of top-level declarations sharing the module
// scope.
type ScriptFile struct {
	base
	Name  string // the URI this file was parsed from, for diagnostics
	Decls []Decl
}

func (f *ScriptFile) FileKind() Kind { return KindScript }

// Decl is implemented by every script top-level declaration.
type Decl interface {
	Node
	decl()
}

type declBase struct{ base }

func (declBase) decl() {}

// IncludeDecl corresponds to an `include { ... }`-style statement: a list
// of entries, each naming a definition exported by another file.
type IncludeDecl struct {
	declBase
	Source  *QualName // the included file's module path/reference expression
	Entries []*IncludeEntry
}

// IncludeEntry is one `name as alias` pair inside an IncludeDecl. The
// resolved target (a ProcessDef/WorkflowDef/FunctionDef in another file)
// is not stored here — it lives in the include resolver's metadata table,
// since resolution is cross-file and can change without re-parsing this
// file (spec.md §4.2).
type IncludeEntry struct {
	base
	Name  *Ident
	Alias *Ident // nil if no alias
}

// FeatureFlagDecl is a top-level feature-flag toggle, resolved against
// the feature-flag registry (spec.md §4.3).
type FeatureFlagDecl struct {
	declBase
	Name  *Ident
	Value Expr
}

// ProcessVersion distinguishes the two process directive forms named in
// spec.md §3.
type ProcessVersion int

const (
	ProcessV1 ProcessVersion = iota // legacy directive-form
	ProcessV2                      // typed form
)

// ProcessDef models both process directive forms. The typed (v2) fields
// (Params/Outputs) are populated from typed declarations; the legacy (v1)
// form instead populates Directives with bare input/output qualifier
// calls, which the name resolver still turns into process-scope
// variables (spec.md §4.3 "Process-specific rules").
type ProcessDef struct {
	declBase
	Name       *Ident
	Version    ProcessVersion
	Params     []*ProcessParam
	Outputs    []*ProcessOutput
	Directives []*DirectiveStmt // v1 input/output/resource directive calls
	When       Expr             // optional `when:` guard
	Exec       Expr             // `exec`/`script` block body (opaque to the type checker)
	Stub       Expr             // optional `stub` block
	Topics     []*Ident         // optional topic subscriptions
	Body       []Stmt
}

// InputQualifier is one of the input-qualifier calls named in spec.md
// §4.3 ("val/file/path/tuple/each").
type InputQualifier string

const (
	InputVal   InputQualifier = "val"
	InputFile  InputQualifier = "file"
	InputPath  InputQualifier = "path"
	InputTuple InputQualifier = "tuple"
	InputEach  InputQualifier = "each"
)

// ProcessParam is a single typed process input.
type ProcessParam struct {
	base
	Qualifier InputQualifier
	Name      *Ident
	Type      *TypeExpr // may be nil (dynamic) for the legacy form
}

// ProcessOutput is a single typed process output.
type ProcessOutput struct {
	base
	Name *Ident
	Type *TypeExpr
}

// DirectiveStmt is a call-form statement inside a process block (spec.md
// GLOSSARY "Directive"): `memory '2 GB'`, `input: val x`, and so on.
type DirectiveStmt struct {
	stmtBase
	Name *Ident
	Args []Expr
}

// WorkflowDef models both entry and named workflows (spec.md §3). Name is
// nil for the entry workflow.
type WorkflowDef struct {
	declBase
	Name       *Ident // nil => entry workflow
	Takes      []*Param
	Body       []Stmt
	Emits      []*EmitDecl
	Publishers []*PublishDecl
	Hooks      []*HookDecl // onComplete/onError-style lifecycle hooks
}

// EmitDecl declares one named output of a workflow.
type EmitDecl struct {
	base
	Name *Ident
	Type *TypeExpr // may be nil (inferred)
}

// PublishDecl binds a workflow emit to a publish target; entry workflows
// must publish exactly the set of declared emits (spec.md §4.3).
type PublishDecl struct {
	base
	Name   *Ident
	Target Expr
}

// HookDecl is a workflow lifecycle hook (`onComplete`, `onError`, ...).
type HookDecl struct {
	base
	Name *Ident
	Body []Stmt
}

// FunctionDef is a user-defined function.
type FunctionDef struct {
	declBase
	Name       *Ident
	Params     []*Param
	ReturnType *TypeExpr // nil => dynamic, inferred from the body (spec.md §4.5)
	Doc        string    // optional leading documentation comment
	Body       []Stmt
}

// Param is a plain (non-process) parameter: a function, workflow `takes`,
// or closure parameter.
type Param struct {
	base
	Name *Ident
	Type *TypeExpr // nil => dynamic; closure params may be filled in later by inference
}

// OutputDef declares a publish schema (spec.md §3 "output definition").
type OutputDef struct {
	declBase
	Name   *Ident
	Schema Expr
}

// TypeExpr is a syntactic type reference: a name plus optional generics
// arguments, e.g. `Channel<Tuple<Integer,String>>`.
type TypeExpr struct {
	base
	Name     *Ident
	Generics []*TypeExpr
	Nullable bool
}

// ---- Statements ----------------------------------------------------

// Stmt is implemented by every script statement.
type Stmt interface {
	Node
	stmt()
}

type stmtBase struct{ base }

func (stmtBase) stmt() {}

// BlockStmt is a brace-delimited statement sequence. Every BlockStmt
// pushes a fresh lexical scope (spec.md §3 "Scope").
type BlockStmt struct {
	stmtBase
	Stmts []Stmt
}

// ExprStmt is a bare expression used as a statement (e.g. a process call
// inside a workflow body, or the closure's trailing expression that the
// return-type-inference visitor rewrites into a return, spec.md §4.5).
type ExprStmt struct {
	stmtBase
	X Expr
}

// DeclStmt is an explicit local variable declaration (`def x = ...` /
// `T x = ...`).
type DeclStmt struct {
	stmtBase
	Name *Ident
	Type *TypeExpr // nil => inferred from Init
	Init Expr      // may be nil
}

// IfStmt is a conditional statement.
type IfStmt struct {
	stmtBase
	Cond Expr
	Then *BlockStmt
	Else Stmt // *BlockStmt or *IfStmt, or nil
}

// ForStmt is a C-style or for-each loop.
type ForStmt struct {
	stmtBase
	Binding *Ident // for-each binding, or nil for a C-style loop
	Iter    Expr   // the iterated expression
	Body    *BlockStmt
}

// CatchClause is one `catch (T name) { ... }` clause; it pushes its own
// scope (spec.md §3).
type CatchClause struct {
	base
	Type *TypeExpr
	Name *Ident
	Body *BlockStmt
}

// TryStmt models a try/catch/finally statement.
type TryStmt struct {
	stmtBase
	Body    *BlockStmt
	Catches []*CatchClause
	Finally *BlockStmt
}

// ReturnStmt is an explicit (or visitor-synthesized, spec.md §4.5) return.
type ReturnStmt struct {
	stmtBase
	X Expr // may be nil for a bare `return`
}

// ---- Expressions ----------------------------------------------------

// Expr is implemented by every script expression variant named in
// spec.md §3.
type Expr interface {
	Node
	expr()
}

type exprBase struct{ base }

func (exprBase) expr() {}

// BinaryExpr is `X Op Y`.
type BinaryExpr struct {
	exprBase
	Op   string
	X, Y Expr
}

// UnaryExpr is `Op X` (prefix) or `X Op` (postfix, Postfix == true).
type UnaryExpr struct {
	exprBase
	Op      string
	X       Expr
	Postfix bool
}

// PropertyExpr is `X.Name`, a field/member access with no call.
type PropertyExpr struct {
	exprBase
	X    Expr
	Name *Ident
}

// MethodCallExpr is `X.Name(Args...)`, optionally with trailing named
// arguments and/or a trailing closure argument.
type MethodCallExpr struct {
	exprBase
	X         Expr
	Name      *Ident
	Args      []Expr
	NamedArgs []*NamedArg
	Closure   *ClosureExpr // trailing closure literal, or nil
}

// CallExpr is a bare call with no explicit receiver: `foo(args)`. Process
// and workflow calls from a workflow body are CallExprs whose Callee
// resolves (via the name table) to a ProcessDef/WorkflowDef/FunctionDef.
type CallExpr struct {
	exprBase
	Callee    *Ident
	Args      []Expr
	NamedArgs []*NamedArg
	Closure   *ClosureExpr
}

// NamedArg is a `name: value` call argument.
type NamedArg struct {
	base
	Name  *Ident
	Value Expr
}

// VariableExpr is a bare identifier used as a value (a variable
// reference, spec.md §4.3's `resolve(name)`).
type VariableExpr struct {
	exprBase
	Name *Ident
}

// TupleExpr is a parenthesized comma-separated group, `(a, b, c)`.
type TupleExpr struct {
	exprBase
	Elems []Expr
}

// RangeExpr is `Lo..Hi` or `Lo..<Hi`.
type RangeExpr struct {
	exprBase
	Lo, Hi    Expr
	Exclusive bool
}

// ListExpr is `[a, b, c]`.
type ListExpr struct {
	exprBase
	Elems []Expr
}

// MapEntry is one `key: value` pair inside a MapExpr.
type MapEntry struct {
	base
	Key   Expr
	Value Expr
}

// MapExpr is `[k1: v1, k2: v2]`.
type MapExpr struct {
	exprBase
	Entries []*MapEntry
}

// ConstantKind distinguishes literal kinds.
type ConstantKind int

const (
	ConstInt ConstantKind = iota
	ConstFloat
	ConstString
	ConstBool
	ConstNull
	ConstDuration
	ConstMemoryUnit
)

// ConstantExpr is a literal value.
type ConstantExpr struct {
	exprBase
	Kind ConstantKind
	Text string // the literal's source text, for re-printing/formatting
}

// ClosureExpr is `{ a, b -> body }` (or `{ -> body }`, or `{ body }` with
// an implicit `it` parameter, spec.md's `ImplicitItInClosure` warning).
// ClosureExpr pushes its own scope (spec.md §3).
type ClosureExpr struct {
	exprBase
	Params []*Param // empty => implicit single "it" parameter
	Body   []Stmt
}

// CastExpr is `(T) X` or `X as T`.
type CastExpr struct {
	exprBase
	X    Expr
	Type *TypeExpr
}

// TernaryExpr is `Cond ? Then : Else`.
type TernaryExpr struct {
	exprBase
	Cond, Then, Else Expr
}

// ElvisExpr is `X ?: Default`.
type ElvisExpr struct {
	exprBase
	X, Default Expr
}

// AssignExpr is `Target = Value` (or a compound assignment, Op != "=").
type AssignExpr struct {
	exprBase
	Op     string
	Target Expr
	Value  Expr
}

// DeclExpr is a declaration used in expression position (e.g. the LHS of
// a destructuring multi-assignment, spec.md §4.5 "Assignment rules"):
// `(a, b) = pair`.
type DeclExpr struct {
	exprBase
	Names []*Ident
	Type  *TypeExpr
}
