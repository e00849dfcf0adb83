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

package driver

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/phase"
)

func TestCompileScriptSuccess(t *testing.T) {
	u := Compile("main.nf", []byte(`
workflow {
  println('hello')
}
`), ast.KindScript)
	qt.Assert(t, qt.IsNotNil(u.Root))
	qt.Assert(t, qt.Equals(u.Root.FileKind(), ast.KindScript))
	qt.Assert(t, qt.HasLen(u.Diagnostics.Diagnostics(), 0))

	script, ok := u.Root.(*ast.ScriptFile)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(script.Decls, 1))

	wf := script.Decls[0].(*ast.WorkflowDef)
	qt.Assert(t, qt.HasLen(wf.Body, 1))
	parent := u.Meta.Parent(wf.Body[0])
	qt.Assert(t, qt.Equals(parent, ast.Node(wf)))
}

func TestCompileScriptWithSyntaxErrorsStillReturnsPartialUnit(t *testing.T) {
	u := Compile("main.nf", []byte(`
process broken {
  !!! not valid
}

process ok {
  cpus 1
}
`), ast.KindScript)
	qt.Assert(t, qt.IsNotNil(u.Root))
	diags := u.Diagnostics.Diagnostics()
	qt.Assert(t, qt.IsTrue(len(diags) > 0), qt.Commentf("expected at least one syntax diagnostic"))
	for _, d := range diags {
		qt.Assert(t, qt.Equals(d.Phase, phase.Syntax))
		qt.Assert(t, qt.Equals(d.Kind, phase.KindSyntax))
	}

	script := u.Root.(*ast.ScriptFile)
	qt.Assert(t, qt.HasLen(script.Decls, 2))
}

func TestCompileConfig(t *testing.T) {
	u := Compile("nextflow.config", []byte(`
params.outdir = './results'
`), ast.KindConfig)
	qt.Assert(t, qt.Equals(u.Root.FileKind(), ast.KindConfig))
	qt.Assert(t, qt.HasLen(u.Diagnostics.Diagnostics(), 0))
}

func TestDetectKind(t *testing.T) {
	qt.Assert(t, qt.Equals(DetectKind("file:///a/nextflow.config"), ast.KindConfig))
	qt.Assert(t, qt.Equals(DetectKind("file:///a/main.nf"), ast.KindScript))
}

func TestCompileURI(t *testing.T) {
	u := CompileURI("file:///a/nextflow.config", []byte(`foo = 1`))
	qt.Assert(t, qt.Equals(u.Kind, ast.KindConfig))
}
