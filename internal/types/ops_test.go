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

package types

import (
	"testing"

	"github.com/go-quicktest/qt"
)

// TestProcessCallReturnSingleOutput exercises spec.md §8 "A process
// called with zero Channel arguments returns Value<...>; with exactly
// one Channel, returns Channel<...>; with >=2 Channels, still Channel
// but with a determinism warning".
func TestProcessCallReturnSingleOutput(t *testing.T) {
	outputs := map[string]*Type{"y": Concrete(Integer)}

	ret, warn := ProcessCallReturn(outputs, 0)
	qt.Assert(t, qt.IsFalse(warn))
	qt.Assert(t, qt.Equals(ret.Kind, KindConcrete))
	qt.Assert(t, qt.Equals(ret.Name, Value))

	ret, warn = ProcessCallReturn(outputs, 1)
	qt.Assert(t, qt.IsFalse(warn))
	qt.Assert(t, qt.Equals(ret.Name, Channel))

	ret, warn = ProcessCallReturn(outputs, 2)
	qt.Assert(t, qt.IsTrue(warn))
	qt.Assert(t, qt.Equals(ret.Name, Channel))
}

func TestProcessCallReturnMultipleOutputsIsRecord(t *testing.T) {
	outputs := map[string]*Type{
		"y": Concrete(Integer),
		"z": Concrete(String),
	}
	ret, warn := ProcessCallReturn(outputs, 0)
	qt.Assert(t, qt.IsFalse(warn))
	qt.Assert(t, qt.Equals(ret.Name, Record))
	qt.Assert(t, qt.HasLen(ret.Generics, 2))
}

// TestTupleOpResultCombine exercises spec.md §4.5's "Tuple-op operators"
// synthesis: combine((L1..Lm), R) -> Channel<(L1..Lm, R)>.
func TestTupleOpResultCombine(t *testing.T) {
	left := []*Type{Concrete(Integer), Concrete(String)}
	right := []*Type{Concrete(Boolean)}
	ret := TupleOpResult("combine", left, right)
	qt.Assert(t, qt.Equals(ret.Name, Channel))
	qt.Assert(t, qt.HasLen(ret.Generics, 1))
	tup := ret.Generics[0]
	qt.Assert(t, qt.Equals(tup.Name, Tuple))
	qt.Assert(t, qt.HasLen(tup.Generics, 3))
}

// TestTupleOpResultGroupTuple exercises groupTuple((K, V1..Vn)) ->
// Channel<(K, Bag<V1>..Bag<Vn>)>.
func TestTupleOpResultGroupTuple(t *testing.T) {
	left := []*Type{Concrete(String), Concrete(Integer)}
	ret := TupleOpResult("groupTuple", left, nil)
	tup := ret.Generics[0]
	qt.Assert(t, qt.HasLen(tup.Generics, 2))
	qt.Assert(t, qt.Equals(tup.Generics[0].Name, String))
	qt.Assert(t, qt.Equals(tup.Generics[1].Name, Bag))
	qt.Assert(t, qt.Equals(tup.Generics[1].Generics[0].Name, Integer))
}

// TestTupleOpResultJoin exercises join((K, L1..Lm), (K, R1..Rn)) ->
// Channel<(K, L1..Lm, R1..Rn)>.
func TestTupleOpResultJoin(t *testing.T) {
	left := []*Type{Concrete(String), Concrete(Integer)}
	right := []*Type{Concrete(String), Concrete(Boolean)}
	ret := TupleOpResult("join", left, right)
	tup := ret.Generics[0]
	qt.Assert(t, qt.HasLen(tup.Generics, 3))
	qt.Assert(t, qt.Equals(tup.Generics[0].Name, String))
	qt.Assert(t, qt.Equals(tup.Generics[1].Name, Integer))
	qt.Assert(t, qt.Equals(tup.Generics[2].Name, Boolean))
}

func TestAssignableIntegerWidensToFloat(t *testing.T) {
	qt.Assert(t, qt.IsTrue(Assignable(Concrete(Float), Concrete(Integer))))
	qt.Assert(t, qt.IsFalse(Assignable(Concrete(Integer), Concrete(Float))))
}

func TestAssignableDynamicIsUniversal(t *testing.T) {
	qt.Assert(t, qt.IsTrue(Assignable(Dynamic, Concrete(Integer))))
	qt.Assert(t, qt.IsTrue(Assignable(Concrete(Integer), Dynamic)))
}

func TestAssignableListIsSupertypeOfIterable(t *testing.T) {
	qt.Assert(t, qt.IsTrue(Assignable(Concrete(Iterable), Concrete(List, Concrete(Integer)))))
}
