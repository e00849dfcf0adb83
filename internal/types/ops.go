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

// OpMethod is one operator method declared on a type's ops class
// (spec.md GLOSSARY "Ops class"; §4.5 "Operators").
type OpMethod struct {
	Op         string
	ParamType  *Type
	ReturnType *Type
}

// OperatorTable holds the ops-class method sets for every canonical type
// that declares operators. In the real DSL these are discovered via a
// marker annotation on the type; here they are registered once at
// startup, which is equivalent for a closed, built-in type set.
type OperatorTable struct {
	byType map[Canonical][]OpMethod
}

// NewOperatorTable builds the default operator table for the built-in
// DSL types.
func NewOperatorTable() *OperatorTable {
	t := &OperatorTable{byType: map[Canonical][]OpMethod{}}
	num := func(name Canonical) {
		for _, op := range []string{"+", "-", "*", "/", "%"} {
			t.register(name, OpMethod{Op: op, ParamType: Concrete(name), ReturnType: Concrete(name)})
		}
	}
	num(Integer)
	num(Float)
	t.register(Integer, OpMethod{Op: "+", ParamType: Concrete(Float), ReturnType: Concrete(Float)})
	t.register(String, OpMethod{Op: "+", ParamType: Concrete(String), ReturnType: Concrete(String)})
	t.register(Duration, OpMethod{Op: "+", ParamType: Concrete(Duration), ReturnType: Concrete(Duration)})
	t.register(Duration, OpMethod{Op: "-", ParamType: Concrete(Duration), ReturnType: Concrete(Duration)})
	t.register(MemoryUnit, OpMethod{Op: "+", ParamType: Concrete(MemoryUnit), ReturnType: Concrete(MemoryUnit)})
	t.register(List, OpMethod{Op: "+", ParamType: Concrete(List), ReturnType: Concrete(List)})
	// Tuple's `[]` operator with a literal integer index is handled
	// specially in TupleIndex below rather than via the ops table, since its
	// return type depends on the literal index value, not a fixed
	// per-type signature.
	return t
}

func (t *OperatorTable) register(ty Canonical, m OpMethod) {
	t.byType[ty] = append(t.byType[ty], m)
}

// lookup finds an operator method for op declared on receiver's type
// whose parameter type accepts operand.
func (t *OperatorTable) lookup(receiver *Type, op string, operand *Type) (OpMethod, bool) {
	if receiver.IsDynamic() {
		return OpMethod{}, false
	}
	for _, m := range t.byType[receiver.Name] {
		if m.Op != op {
			continue
		}
		if operand == nil || Assignable(m.ParamType, operand) {
			return m, true
		}
	}
	return OpMethod{}, false
}

// BinaryOpResult resolves the result type of `x op y` (spec.md §4.5
// "Operators"): ops lookup tries the left operand's class first, then
// the right's. Equality and logical operators always yield Boolean;
// relational operators yield Boolean unless exactly one side is
// dynamic, whatever the two known types are.
func (t *OperatorTable) BinaryOpResult(op string, x, y *Type) *Type {
	switch op {
	case "==", "!=":
		return Concrete(Boolean)
	case "<", "<=", ">", ">=":
		if Equal(x, y) || (x != nil && y != nil && !x.IsDynamic() && !y.IsDynamic()) {
			return Concrete(Boolean)
		}
		return Dynamic
	case "&&", "||":
		return Concrete(Boolean)
	}
	if m, ok := t.lookup(x, op, y); ok {
		subst := Substitution{}
		Infer(m.ParamType, y, subst)
		return Instantiate(m.ReturnType, subst)
	}
	if m, ok := t.lookup(y, op, x); ok {
		subst := Substitution{}
		Infer(m.ParamType, x, subst)
		return Instantiate(m.ReturnType, subst)
	}
	return Dynamic
}

// TupleIndex resolves the `[]` operator applied to a Tuple receiver with
// a literal integer index (spec.md §4.5): the result is the
// corresponding tuple component type, or an error if out of range.
func TupleIndex(tuple *Type, index int) (*Type, bool) {
	if tuple.IsDynamic() || tuple.Kind != KindConcrete || tuple.Name != Tuple {
		return Dynamic, true // not a tuple: leave it to the caller's own diagnostics
	}
	if index < 0 || index >= len(tuple.Generics) {
		return Dynamic, false
	}
	return tuple.Generics[index], true
}

// SAM describes a functional-interface's single abstract method, for
// closure-argument matching (spec.md §4.5, GLOSSARY "SAM type").
type SAM struct {
	ParamTypes []*Type
	ReturnType *Type
}

// ClosureCompatible reports whether a closure with closureArity
// parameters can target sam (spec.md §4.5 "Closure arguments against
// functional-interface parameters"): either the arities match, or sam
// has exactly one parameter and that parameter's type is a tuple whose
// arity matches the closure's (a "tuple-destructure" match).
func ClosureCompatible(sam SAM, closureArity int) bool {
	if len(sam.ParamTypes) == closureArity {
		return true
	}
	if len(sam.ParamTypes) == 1 {
		pt := sam.ParamTypes[0]
		return pt != nil && pt.Kind == KindConcrete && pt.Name == Tuple && len(pt.Generics) == closureArity
	}
	return false
}

// ClosureParamTypes returns the inferred type for each of the closure's
// closureArity parameters given its SAM target, tuple-destructuring a
// single tuple-typed SAM parameter when the arities differ (spec.md §4.5
// "Closure parameter inference").
func ClosureParamTypes(sam SAM, closureArity int) []*Type {
	if len(sam.ParamTypes) == closureArity {
		return sam.ParamTypes
	}
	if len(sam.ParamTypes) == 1 && sam.ParamTypes[0].Kind == KindConcrete && sam.ParamTypes[0].Name == Tuple {
		return sam.ParamTypes[0].Generics
	}
	out := make([]*Type, closureArity)
	for i := range out {
		out[i] = Dynamic
	}
	return out
}

// Wrapper is the dataflow wrapper kind synthesized for process calls
// (spec.md GLOSSARY "Channel / Value").
type Wrapper string

const (
	WrapperValue   Wrapper = "Value"
	WrapperChannel Wrapper = "Channel"
)

// ProcessCallReturn synthesizes the return type of a process call
// (spec.md §4.5 "Process-call return shape"). outputs names each
// declared process output's type; channelArgCount is the number of the
// call's arguments whose outer type is Channel.
func ProcessCallReturn(outputs map[string]*Type, channelArgCount int) (*Type, bool /* determinism warning */) {
	wrapper := WrapperValue
	if channelArgCount > 0 {
		wrapper = WrapperChannel
	}
	wrap := func(t *Type) *Type { return Concrete(Canonical(wrapper), t) }

	warn := channelArgCount > 1

	if len(outputs) == 1 {
		for _, t := range outputs {
			return wrap(t), warn
		}
	}
	fields := make([]*Type, 0, len(outputs))
	_ = fields
	record := Concrete(Record)
	for name, t := range outputs {
		record.Generics = append(record.Generics, &Type{
			Kind: KindConcrete, Name: Canonical(name), Generics: []*Type{wrap(t)},
		})
	}
	return record, warn
}

// TupleOpResult synthesizes the return type of the channel-operator
// tuple operations `combine`, `groupTuple`, `join` (spec.md §4.5
// "Tuple-op operators"). left/right are the operand tuples' component
// types (already unwrapped from their Channel<...>).
func TupleOpResult(op string, left, right []*Type) *Type {
	switch op {
	case "combine":
		components := append(append([]*Type{}, left...), right...)
		return Concrete(Channel, tuple(components))
	case "groupTuple":
		if len(left) == 0 {
			return Concrete(Channel, Dynamic)
		}
		k := left[0]
		components := []*Type{k}
		for _, v := range left[1:] {
			components = append(components, Concrete(Bag, v))
		}
		return Concrete(Channel, tuple(components))
	case "join":
		if len(left) == 0 {
			return Concrete(Channel, Dynamic)
		}
		k := left[0]
		components := []*Type{k}
		components = append(components, left[1:]...)
		if len(right) > 0 {
			components = append(components, right[1:]...)
		}
		return Concrete(Channel, tuple(components))
	default:
		return Dynamic
	}
}

func tuple(components []*Type) *Type {
	return Concrete(Tuple, components...)
}
