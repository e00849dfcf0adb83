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

package schema

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/flowdsl/flowls/internal/types"
)

func TestSplitPath(t *testing.T) {
	qt.Assert(t, qt.DeepEquals(SplitPath("process.cpus"), []string{"process", "cpus"}))
	qt.Assert(t, qt.IsNil(SplitPath("")))
}

func TestStripProfilePrefix(t *testing.T) {
	stripped, ok := StripProfilePrefix([]string{"profiles", "standard", "process", "cpus"})
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(stripped, []string{"process", "cpus"}))

	_, ok = StripProfilePrefix([]string{"process", "cpus"})
	qt.Assert(t, qt.IsFalse(ok))
}

func TestClassifyBypass(t *testing.T) {
	qt.Assert(t, qt.Equals(ClassifyBypass([]string{"env", "MY_VAR"}), BypassEnv))
	qt.Assert(t, qt.Equals(ClassifyBypass([]string{"params", "outdir"}), BypassParams))
	qt.Assert(t, qt.Equals(ClassifyBypass([]string{"process", "cpus"}), NoBypass))
	qt.Assert(t, qt.Equals(ClassifyBypass(nil), NoBypass))
}

// TestLookupAgainstBuiltinKnownPath exercises Lookup against the real
// embedded schema tree rather than a hand-built fixture.
func TestLookupAgainstBuiltinKnownPath(t *testing.T) {
	root, err := LoadBuiltin()
	qt.Assert(t, qt.IsNil(err))

	n, ok := Lookup(root, []string{"process", "cpus"})
	qt.Assert(t, qt.IsTrue(ok))
	_, ok = n.(*Option)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestOptionAcceptsWidenedAndDynamicTypes(t *testing.T) {
	opt := &Option{Types: []types.Canonical{types.Integer}}
	qt.Assert(t, qt.IsTrue(opt.Accepts(types.Concrete(types.Integer))))
	qt.Assert(t, qt.IsFalse(opt.Accepts(types.Concrete(types.String))))
	qt.Assert(t, qt.IsTrue(opt.Accepts(types.Dynamic)))
}

func TestLookupAgainstBuiltinUnknownPath(t *testing.T) {
	root, err := LoadBuiltin()
	qt.Assert(t, qt.IsNil(err))

	_, ok := Lookup(root, []string{"foo", "bar"})
	qt.Assert(t, qt.IsFalse(ok))
}

// TestLookupThroughPlaceholderIsIndexTransparent exercises Lookup's
// handling of `process.withLabel.<any>.cpus`-shaped paths: the
// placeholder segment's literal value never affects traversal.
func TestLookupThroughPlaceholderIsIndexTransparent(t *testing.T) {
	root, err := LoadBuiltin()
	qt.Assert(t, qt.IsNil(err))

	a, ok := Lookup(root, []string{"process", "withLabel", "big_mem", "cpus"})
	qt.Assert(t, qt.IsTrue(ok))
	b, ok := Lookup(root, []string{"process", "withLabel", "anything_else", "cpus"})
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(a, b))
}

func TestMergeScopesPrefersExtrasOnCollisionFreeNames(t *testing.T) {
	root, err := LoadBuiltin()
	qt.Assert(t, qt.IsNil(err))

	plugin := &Scope{Desc: "plugin scope", Children: map[string]Node{
		"customOption": &Option{Desc: "a plugin-contributed option"},
	}}
	merged := MergeScopes(root, plugin)

	_, ok := merged.Lookup("customOption")
	qt.Assert(t, qt.IsTrue(ok))
	_, ok = merged.Lookup("process")
	qt.Assert(t, qt.IsTrue(ok))
}
