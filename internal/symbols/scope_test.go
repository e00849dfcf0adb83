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

package symbols

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/flowdsl/flowls/internal/types"
)

// TestResolveBackfillsIntermediateScopes exercises spec.md §4.3's
// "promote the variable into every intermediate scope's referenced set"
// invariant: resolving a name declared several frames up must leave an
// entry in every scope walked along the way, not just the one that owns
// the declaration, so a later lookup from an inner scope finds it
// without walking further.
func TestResolveBackfillsIntermediateScopes(t *testing.T) {
	root := NewRootScope()
	qt.Assert(t, qt.IsNil(root.Declare(&Variable{Name: "x", DeclaredType: types.Dynamic})))

	mid := NewChild(root, nil)
	inner := NewChild(mid, nil)

	v, ok := inner.Resolve("x", false)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(v.Name, "x"))

	qt.Assert(t, qt.IsTrue(mid.OwnsLocally("x")))
	qt.Assert(t, qt.IsTrue(inner.OwnsLocally("x")))
	qt.Assert(t, qt.HasLen(root.Unreferenced(), 0))
}

// TestResolveSecondLookupFindsCachedEntryWithoutOwningScope confirms the
// backfilled entry is usable on its own: a scope holding only a
// cross-referenced second lookup still resolves even with its parent
// link severed, which is only possible if the first Resolve actually
// wrote an entry into this scope rather than just the declaring one.
func TestResolveSecondLookupFindsCachedEntryWithoutOwningScope(t *testing.T) {
	root := NewRootScope()
	qt.Assert(t, qt.IsNil(root.Declare(&Variable{Name: "x", DeclaredType: types.Dynamic})))

	inner := NewChild(root, nil)
	_, ok := inner.Resolve("x", false)
	qt.Assert(t, qt.IsTrue(ok))

	inner.parent = nil
	v, ok := inner.Resolve("x", false)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(v.Name, "x"))
}

func TestResolveUnknownNameFails(t *testing.T) {
	root := NewRootScope()
	_, ok := root.Resolve("doesNotExist", false)
	qt.Assert(t, qt.IsFalse(ok))
}
