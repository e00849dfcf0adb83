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
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"

	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/driver"
	"github.com/flowdsl/flowls/internal/phase"
)

func compile(t *testing.T, src string) *driver.SourceUnit {
	t.Helper()
	u := driver.Compile("main.nf", []byte(src), ast.KindScript)
	qt.Assert(t, qt.HasLen(u.Diagnostics.Diagnostics(), 0), qt.Commentf("unexpected syntax errors"))
	return u
}

func codes(u *driver.SourceUnit) []string {
	var out []string
	for _, d := range u.Diagnostics.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

// TestResolveScriptNameShadowing exercises spec.md §8 scenario 1: an
// inner declaration of the same name as an outer one shadows it without
// an AlreadyDeclared error, and only the never-referenced inner one
// triggers UnusedVariable.
func TestResolveScriptNameShadowing(t *testing.T) {
	u := compile(t, `
workflow {
  def x = 1
  {
    def x = 2
  }
  println(x)
}
`)
	ResolveScript(u, nil)
	qt.Assert(t, qt.DeepEquals(codes(u), []string{"UnusedVariable"}))
}

func TestResolveScriptAlreadyDeclaredInSameScope(t *testing.T) {
	u := compile(t, `
workflow {
  def x = 1
  def x = 2
}
`)
	ResolveScript(u, nil)
	qt.Assert(t, qt.Contains(codes(u), "AlreadyDeclared"))
}

func TestResolveScriptUnknownIdentifier(t *testing.T) {
	u := compile(t, `
workflow {
  println(doesNotExist)
}
`)
	ResolveScript(u, nil)
	qt.Assert(t, qt.DeepEquals(codes(u), []string{"NotDefined"}))
}

func TestResolveScriptBuiltinReassigned(t *testing.T) {
	u := compile(t, `
workflow {
  baseDir = '/tmp'
}
`)
	ResolveScript(u, nil)
	qt.Assert(t, qt.Contains(codes(u), "BuiltinReassigned"))
}

func TestResolveScriptDeprecatedBuiltinInProcessBody(t *testing.T) {
	u := compile(t, `
process p {
  publishDir baseDir
  script:
  """
  echo hi
  """
}
`)
	ResolveScript(u, nil)
	qt.Assert(t, qt.Contains(codes(u), "Deprecated"))
}

func TestResolveScriptClosureImplicitAssignmentRejected(t *testing.T) {
	u := compile(t, `
workflow {
  ch.each {
    y = 1
  }
}
`)
	ResolveScript(u, nil)
	qt.Assert(t, qt.Contains(codes(u), "AssignedButNotDeclared"))
}

func TestResolveScriptClosureExternalMutationWarns(t *testing.T) {
	u := compile(t, `
workflow {
  def count = 0
  ch.each {
    count = count + 1
  }
}
`)
	ResolveScript(u, nil)
	qt.Assert(t, qt.Contains(codes(u), "ExternalMutationInClosure"))
}

func TestResolveScriptUnknownFeatureFlag(t *testing.T) {
	u := compile(t, `feature bogus = true`)
	ResolveScript(u, nil)
	qt.Assert(t, qt.DeepEquals(codes(u), []string{"NotDefined"}))
}

func TestResolveScriptDeprecatedFeatureFlag(t *testing.T) {
	u := compile(t, `feature outputDefinition = true`)
	ResolveScript(u, nil)
	qt.Assert(t, qt.DeepEquals(codes(u), []string{"Deprecated"}))
}

func TestResolveScriptIncludeBindingResolves(t *testing.T) {
	u := compile(t, `
workflow {
  sayHello('x')
}
`)
	script := u.Root.(*ast.ScriptFile)
	site := script.Decls[0]
	ResolveScript(u, []IncludeBinding{{Local: "sayHello", Site: site}})
	qt.Assert(t, qt.HasLen(u.Diagnostics.Diagnostics(), 0))
}

func TestResolveScriptUnusedVariableExemptsUnderscorePrefix(t *testing.T) {
	u := compile(t, `
workflow {
  def _ignored = 1
}
`)
	ResolveScript(u, nil)
	qt.Assert(t, qt.HasLen(u.Diagnostics.Diagnostics(), 0))
}

// TestResolveScriptDiagnosticStructuralDiff checks the full
// NotDefined diagnostic shape (not just its code) with a structural
// diff rather than a field-by-field assertion, so a future change to
// severity or phase tagging shows up as a readable diff instead of a
// bare boolean failure.
func TestResolveScriptDiagnosticStructuralDiff(t *testing.T) {
	u := compile(t, `
workflow {
  println(doesNotExist)
}
`)
	ResolveScript(u, nil)
	got := u.Diagnostics.Diagnostics()
	qt.Assert(t, qt.HasLen(got, 1))

	want := []phase.Diagnostic{{
		Range:    got[0].Range,
		Severity: phase.SeverityError,
		Message:  got[0].Message,
		Phase:    phase.NameResolution,
		Kind:     phase.KindNameResolution,
		Code:     "NotDefined",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("diagnostic mismatch (-want +got):\n%s", diff)
	}
}
