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

package analysiscache

import (
	"testing"

	"github.com/go-quicktest/qt"
	"golang.org/x/tools/txtar"
)

// fakeSource is a minimal in-memory TextSource standing in for
// internal/workspace's file cache.
type fakeSource struct {
	files map[string][]byte
}

func (f *fakeSource) Text(uri string) ([]byte, bool) {
	b, ok := f.files[uri]
	return b, ok
}

func (f *fakeSource) URIs() []string {
	out := make([]string, 0, len(f.files))
	for uri := range f.files {
		out = append(out, uri)
	}
	return out
}

// TestCacheUpdateReportsChangedURIs exercises spec.md §4.6's
// `update(changedUris, fileCache)` contract: a freshly-added URI shows
// up in the changed set the first time it is compiled.
func TestCacheUpdateReportsChangedURIs(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"main.nf": []byte(`
workflow {
  println(doesNotExist)
}
`),
	}}
	c := NewScriptCache()
	changed := c.Update(map[string]bool{"main.nf": true}, src)
	qt.Assert(t, qt.Contains(changed, "main.nf"))
	diags := c.Diagnostics("main.nf")
	qt.Assert(t, qt.HasLen(diags, 1))
	qt.Assert(t, qt.Equals(diags[0].Code, "NotDefined"))
}

// TestCacheUpdateIsIncremental exercises the incremental re-analysis
// promise: a no-op Update over an unchanged file set reports no
// further changed URIs once diagnostics have stabilized.
func TestCacheUpdateIsIncremental(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"main.nf": []byte(`
workflow {
  def x = 1
  println(x)
}
`),
	}}
	c := NewScriptCache()
	first := c.Update(map[string]bool{"main.nf": true}, src)
	qt.Assert(t, qt.Contains(first, "main.nf"))

	second := c.Update(map[string]bool{}, src)
	qt.Assert(t, qt.HasLen(second, 0))
}

// TestCacheUpdateRecompilesOnlyChangedFile exercises spec.md §8's
// "include resolution is incremental" scenario at the cache level: a
// change to one URI does not force the other one's diagnostics to be
// considered changed when they haven't moved.
func TestCacheUpdateRecompilesOnlyChangedFile(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"lib.nf": []byte(`
function greet(name: String): String {
  return name
}
`),
		"main.nf": []byte(`
include lib { greet }

workflow {
  greet('x')
}
`),
	}}
	c := NewScriptCache()
	c.Update(map[string]bool{"lib.nf": true, "main.nf": true}, src)
	qt.Assert(t, qt.HasLen(c.Diagnostics("main.nf"), 0))
	qt.Assert(t, qt.HasLen(c.Diagnostics("lib.nf"), 0))

	src.files["lib.nf"] = []byte(`
function greet(name: String): String {
  def unused = 1
  return name
}
`)
	changed := c.Update(map[string]bool{"lib.nf": true}, src)
	qt.Assert(t, qt.Contains(changed, "lib.nf"))
	qt.Assert(t, qt.Not(qt.Contains(changed, "main.nf")))
	qt.Assert(t, qt.HasLen(c.Diagnostics("lib.nf"), 1))
}

func TestCacheNodesAtReturnsInnermostFirst(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"main.nf": []byte("workflow {\n  def x = 1\n}\n"),
	}}
	c := NewScriptCache()
	c.Update(map[string]bool{"main.nf": true}, src)

	stack := c.NodesAt("main.nf", 2, 7)
	qt.Assert(t, qt.IsTrue(len(stack) >= 2))
}

// sourceFromTxtar unpacks a txtar archive's files into a fakeSource, one
// entry per archive file keyed by its txtar name. Multi-file fixtures
// read better as a single literal this way than as a map literal with
// one struct field per file.
func sourceFromTxtar(data string) *fakeSource {
	arc := txtar.Parse([]byte(data))
	src := &fakeSource{files: map[string][]byte{}}
	for _, f := range arc.Files {
		src.files[f.Name] = f.Data
	}
	return src
}

// TestCacheUpdateResolvesIncludeAcrossTxtarFixture exercises the same
// include-resolution path as TestCacheUpdateRecompilesOnlyChangedFile
// but loads both files from one txtar fixture, the way a future
// multi-file regression fixture would be authored.
func TestCacheUpdateResolvesIncludeAcrossTxtarFixture(t *testing.T) {
	src := sourceFromTxtar(`
-- lib.nf --
function greet(name: String): String {
  return name
}
-- main.nf --
include lib { greet }

workflow {
  greet('x')
}
`)
	c := NewScriptCache()
	changed := c.Update(map[string]bool{"lib.nf": true, "main.nf": true}, src)
	qt.Assert(t, qt.Contains(changed, "lib.nf"))
	qt.Assert(t, qt.Contains(changed, "main.nf"))
	qt.Assert(t, qt.HasLen(c.Diagnostics("main.nf"), 0))
	qt.Assert(t, qt.HasLen(c.Diagnostics("lib.nf"), 0))
}

func TestCacheURIsReflectsLiveUnits(t *testing.T) {
	src := &fakeSource{files: map[string][]byte{
		"a.nf": []byte("workflow {}\n"),
		"b.nf": []byte("workflow {}\n"),
	}}
	c := NewScriptCache()
	c.Update(map[string]bool{"a.nf": true, "b.nf": true}, src)
	qt.Assert(t, qt.HasLen(c.URIs(), 2))
}
