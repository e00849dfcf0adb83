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

package include

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/driver"
)

// fakeWorkspace resolves a dotted QualName to a URI via a flat lookup
// table, standing in for internal/workspace's real module resolution.
type fakeWorkspace struct {
	units map[string]*driver.SourceUnit
	paths map[string]string // dotted path -> uri
}

func newFakeWorkspace() *fakeWorkspace {
	return &fakeWorkspace{units: map[string]*driver.SourceUnit{}, paths: map[string]string{}}
}

func (w *fakeWorkspace) add(uri, text string) *driver.SourceUnit {
	u := driver.Compile(uri, []byte(text), ast.KindScript)
	w.units[uri] = u
	return u
}

func (w *fakeWorkspace) Unit(uri string) (*driver.SourceUnit, bool) {
	u, ok := w.units[uri]
	return u, ok
}

func (w *fakeWorkspace) ResolveURI(fromURI string, source *ast.QualName) (string, bool) {
	uri, ok := w.paths[source.String()]
	return uri, ok
}

const libSource = `
process sayHello {
  cpus 1
  script:
  """
  echo hello
  """
}

workflow greet {
  take name
  emit out
}
`

func TestResolveBindsExportsByNameAndAlias(t *testing.T) {
	ws := newFakeWorkspace()
	ws.add("file:///lib.nf", libSource)
	ws.paths["lib"] = "file:///lib.nf"

	main := ws.add("file:///main.nf", `
include lib {
  sayHello,
  greet as hi
}
`)

	r := NewResolver()
	r.Resolve(main, ws, nil)
	qt.Assert(t, qt.HasLen(main.Diagnostics.Diagnostics(), 0))

	script := main.Root.(*ast.ScriptFile)
	inc := script.Decls[0].(*ast.IncludeDecl)

	b, ok := r.Binding(main.URI, inc, "sayHello")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(b.Export.Kind, ExportProcess))

	b, ok = r.Binding(main.URI, inc, "hi")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(b.Export.Kind, ExportWorkflow))
}

func TestResolveUnknownTargetPath(t *testing.T) {
	ws := newFakeWorkspace()
	main := ws.add("file:///main.nf", `
include missing {
  foo
}
`)
	r := NewResolver()
	r.Resolve(main, ws, nil)
	diags := main.Diagnostics.Diagnostics()
	qt.Assert(t, qt.HasLen(diags, 1))
	qt.Assert(t, qt.Equals(diags[0].Code, "UnknownInclude"))
}

func TestResolveTargetNotDefined(t *testing.T) {
	ws := newFakeWorkspace()
	ws.add("file:///lib.nf", libSource)
	ws.paths["lib"] = "file:///lib.nf"
	main := ws.add("file:///main.nf", `
include lib {
  doesNotExist
}
`)
	r := NewResolver()
	r.Resolve(main, ws, nil)
	diags := main.Diagnostics.Diagnostics()
	qt.Assert(t, qt.HasLen(diags, 1))
	qt.Assert(t, qt.Equals(diags[0].Code, "TargetNotDefined"))
}

func TestResolveDuplicateInclude(t *testing.T) {
	ws := newFakeWorkspace()
	ws.add("file:///lib.nf", libSource)
	ws.paths["lib"] = "file:///lib.nf"
	main := ws.add("file:///main.nf", `
include lib {
  sayHello,
  sayHello
}
`)
	r := NewResolver()
	r.Resolve(main, ws, nil)
	diags := main.Diagnostics.Diagnostics()
	qt.Assert(t, qt.HasLen(diags, 1))
	qt.Assert(t, qt.Equals(diags[0].Code, "DuplicateInclude"))
}

func TestResolveAmbiguousInclude(t *testing.T) {
	ws := newFakeWorkspace()
	ws.add("file:///lib.nf", `
process build {
  cpus 1
  script:
  """
  echo build
  """
}

function build(x: Integer): Integer {
  return x
}
`)
	ws.paths["lib"] = "file:///lib.nf"
	main := ws.add("file:///main.nf", `
include lib {
  build
}
`)
	r := NewResolver()
	r.Resolve(main, ws, nil)
	diags := main.Diagnostics.Diagnostics()
	qt.Assert(t, qt.HasLen(diags, 1))
	qt.Assert(t, qt.Equals(diags[0].Code, "AmbiguousInclude"))
}

func TestResolveIsIncrementalWhenNothingChanged(t *testing.T) {
	ws := newFakeWorkspace()
	ws.add("file:///lib.nf", libSource)
	ws.paths["lib"] = "file:///lib.nf"
	main := ws.add("file:///main.nf", `
include lib {
  sayHello
}
`)
	r := NewResolver()
	r.Resolve(main, ws, map[string]bool{"file:///main.nf": true})
	qt.Assert(t, qt.HasLen(main.Diagnostics.Diagnostics(), 0))

	main.Diagnostics.Reset()
	r.Resolve(main, ws, map[string]bool{"file:///unrelated.nf": true})
	qt.Assert(t, qt.HasLen(main.Diagnostics.Diagnostics(), 0))

	script := main.Root.(*ast.ScriptFile)
	inc := script.Decls[0].(*ast.IncludeDecl)
	_, ok := r.Binding(main.URI, inc, "sayHello")
	qt.Assert(t, qt.IsTrue(ok))
}

func TestExportsSkipsEntryWorkflow(t *testing.T) {
	ws := newFakeWorkspace()
	u := ws.add("file:///main.nf", `
workflow {
  take reads
}
`)
	exports := Exports(u)
	qt.Assert(t, qt.HasLen(exports, 0))
}
