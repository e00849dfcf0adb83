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

// Package driver implements the compiler driver named in spec.md §2
// ("Compiler driver: Parses a source into a per-source analysis unit
// with an error collector") and exposes the `compile(uri, text) ->
// SourceUnit` contract from spec.md §4.1.
//
// Grounded on cue/build.Instance's role in the teacher: a thin value
// that owns one source's parse result and its own error list, built
// fresh on every re-parse rather than mutated in place (spec.md §3
// "Source units are owned by the AST-node cache ... replaced wholesale
// on re-parse").
package driver

import (
	"strings"

	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/meta"
	"github.com/flowdsl/flowls/internal/parser"
	"github.com/flowdsl/flowls/internal/phase"
)

// SourceUnit is the compilation artifact for one URI (spec.md §3
// "Source unit"): source bytes, AST root, per-phase diagnostics, and
// per-node metadata. Every later phase (include resolution, name
// resolution, type checking) reads and extends a SourceUnit rather than
// re-parsing.
type SourceUnit struct {
	URI  string
	Kind ast.Kind
	Text []byte

	// Root is nil only if the source could not be parsed at all, which
	// the hand-written recursive-descent parser never does: a malformed
	// input still yields a partial *ast.ScriptFile/*ast.ConfigFile with
	// whatever declarations parsed before the first unrecoverable error
	// (spec.md §4.1 "still returns a unit whose AST may be partial").
	Root ast.File

	Meta *meta.Table

	// Diagnostics accumulates this unit's own phase.Syntax findings.
	// Later phases (include/nameresolve/typecheck) append to the same
	// builder as they run over this unit, so Diagnostics always
	// reflects every phase that has executed so far (spec.md §3 "a
	// diagnostic from phase N is tagged with a phase <= N").
	Diagnostics *phase.Builder
}

// DetectKind classifies a URI by its file extension (spec.md §1 "two
// file kinds"): `.config`/`.nf.config`-style names are configuration,
// everything else (including the conventional `.nf` script extension)
// is a script. Workspace callers that already know the kind (e.g. from
// an LSP languageId) should skip this and set Kind directly.
func DetectKind(uri string) ast.Kind {
	if strings.HasSuffix(uri, ".config") {
		return ast.KindConfig
	}
	return ast.KindScript
}

// Compile parses text as the given file kind and assembles a fresh
// SourceUnit: a populated AST root on syntactic success, and on failure
// a partial root plus every collected syntax error tagged
// phase.Syntax (spec.md §4.1).
func Compile(uri string, text []byte, kind ast.Kind) *SourceUnit {
	u := &SourceUnit{
		URI:         uri,
		Kind:        kind,
		Text:        text,
		Meta:        meta.New(),
		Diagnostics: &phase.Builder{},
	}

	var root ast.File
	var syntaxErrs []*parser.SyntaxError
	switch kind {
	case ast.KindConfig:
		file, errs := parser.ParseConfig(uri, text)
		root, syntaxErrs = file, errs
	default:
		file, errs := parser.ParseScript(uri, text)
		root, syntaxErrs = file, errs
	}
	u.Root = root

	for _, e := range syntaxErrs {
		u.Diagnostics.Report(phase.Syntax, phase.KindSyntax, "SyntaxError", e.Range, e.Message)
	}

	if root != nil {
		u.Meta.SetParents(meta.BuildParents(root))
	}
	return u
}

// CompileURI infers the file kind from uri's extension and compiles it
// (a convenience wrapper around Compile + DetectKind for callers, like
// the workspace file cache, that have no better signal).
func CompileURI(uri string, text []byte) *SourceUnit {
	return Compile(uri, text, DetectKind(uri))
}
