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

// Package types implements the DSL's type system (spec.md §4.5): a fixed
// set of canonical types, generics instantiation, and the assignability
// lattice used by the type checker.
//
// There is no direct teacher analogue for a nominal type lattice (CUE is
// a structural/unification language with no such thing), so this package
// is grounded on the shape only: a value-typed, canonical representation
// similar to how cue/ast models values, adapted to a nominal lattice.
package types

import "fmt"

// Canonical is one of the fixed DSL primitive/container type names
// (spec.md §4.5 "Normalization").
type Canonical string

const (
	Boolean    Canonical = "Boolean"
	Integer    Canonical = "Integer"
	Float      Canonical = "Float"
	String     Canonical = "String"
	Duration   Canonical = "Duration"
	MemoryUnit Canonical = "MemoryUnit"
	Path       Canonical = "Path"
	List       Canonical = "List"
	Set        Canonical = "Set"
	Map        Canonical = "Map"
	Bag        Canonical = "Bag"
	Iterable   Canonical = "Iterable"
	Record     Canonical = "Record"
	Closure    Canonical = "Closure"
	Channel    Canonical = "Channel"
	Value      Canonical = "Value"
	Tuple      Canonical = "Tuple"
)

// supertypes maps a canonical type to its immediate supertypes, used by
// Assignable's "T is a supertype of S" rule.
var supertypes = map[Canonical][]Canonical{
	Set:  {Iterable},
	List: {Iterable},
	Bag:  {Iterable},
	Map:  {Iterable},
}

// Kind distinguishes the three flavors of Type node (spec.md §3 "Type
// node").
type Kind int

const (
	KindConcrete Kind = iota
	KindGenericsPlaceholder
	KindDynamic
)

// Type is a resolved type: either a concrete canonical type with optional
// generics arguments, a generics placeholder, or Dynamic (unknown).
type Type struct {
	Kind Kind

	// valid when Kind == KindConcrete
	Name     Canonical
	Generics []*Type

	// valid when Kind == KindGenericsPlaceholder
	PlaceholderName string

	// Nullable is a metadata flag orthogonal to Kind (spec.md §3).
	Nullable bool

	// DeclaringClass back-references the class-scope table that exposes
	// this type's members, for method/member lookup (spec.md §3 "Type
	// node... carry a declaring-class back-reference"). Stored as an
	// opaque name to avoid an import cycle with internal/classscope;
	// internal/classscope resolves it back by name.
	DeclaringClass string
}

// Dynamic is the singleton "unknown type" value.
var Dynamic = &Type{Kind: KindDynamic}

// Concrete builds a concrete type with the given generics arguments.
func Concrete(name Canonical, generics ...*Type) *Type {
	return &Type{Kind: KindConcrete, Name: name, Generics: generics}
}

// Placeholder builds a generics placeholder type, e.g. the `T` in a
// process's declared input type.
func Placeholder(name string) *Type {
	return &Type{Kind: KindGenericsPlaceholder, PlaceholderName: name}
}

// IsDynamic reports whether t is the dynamic/unknown type.
func (t *Type) IsDynamic() bool { return t == nil || t.Kind == KindDynamic }

// WithNullable returns a copy of t with Nullable set.
func (t *Type) WithNullable(nullable bool) *Type {
	if t == nil {
		return t
	}
	cp := *t
	cp.Nullable = nullable
	return &cp
}

func (t *Type) String() string {
	if t == nil || t.Kind == KindDynamic {
		return "dynamic"
	}
	if t.Kind == KindGenericsPlaceholder {
		return t.PlaceholderName
	}
	s := string(t.Name)
	if len(t.Generics) > 0 {
		s += "<"
		for i, g := range t.Generics {
			if i > 0 {
				s += ","
			}
			s += g.String()
		}
		s += ">"
	}
	if t.Nullable {
		s += "?"
	}
	return s
}

// Equal reports structural equality, ignoring Nullable (spec.md §4.5's
// equality operators "degrade to Boolean when both sides are equal" only
// care about the underlying shape).
func Equal(a, b *Type) bool {
	if a.IsDynamic() || b.IsDynamic() {
		return a.IsDynamic() && b.IsDynamic()
	}
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == KindGenericsPlaceholder {
		return a.PlaceholderName == b.PlaceholderName
	}
	if a.Name != b.Name || len(a.Generics) != len(b.Generics) {
		return false
	}
	for i := range a.Generics {
		if !Equal(a.Generics[i], b.Generics[i]) {
			return false
		}
	}
	return true
}

// isSuper reports whether super is a (possibly transitive, reflexive)
// supertype of sub in the normalized-type lattice.
func isSuper(super, sub Canonical) bool {
	if super == sub {
		return true
	}
	for _, s := range supertypes[sub] {
		if isSuper(super, s) {
			return true
		}
	}
	return false
}

// Assignable reports whether a value of type s can be assigned to a
// variable/parameter of type t ("T ← S", spec.md §4.5 "Assignability").
func Assignable(t, s *Type) bool {
	if t.IsDynamic() || s.IsDynamic() {
		return true
	}
	if t.Kind == KindGenericsPlaceholder || s.Kind == KindGenericsPlaceholder {
		// Without a resolved substitution, placeholders are assumed
		// compatible; generics inference (see Infer) narrows this later.
		return true
	}
	if Equal(t, s) {
		return true
	}
	// Restricted numeric widening: Integer assignable to Float.
	if t.Name == Float && s.Name == Integer {
		return true
	}
	if isSuper(t.Name, s.Name) {
		return genericsAssignable(t, s)
	}
	return false
}

// genericsAssignable checks generics parameters pairwise, covariantly,
// once the base canonical types are known to be in a super/sub
// relationship (spec.md §4.5 "the generics-parameter-by-parameter
// check").
func genericsAssignable(t, s *Type) bool {
	if len(t.Generics) == 0 || len(s.Generics) == 0 {
		return true
	}
	if len(t.Generics) != len(s.Generics) {
		return false
	}
	for i := range t.Generics {
		if !Assignable(t.Generics[i], s.Generics[i]) {
			return false
		}
	}
	return true
}

// Substitution maps generics placeholder names to resolved types,
// produced by Infer and consumed by Instantiate.
type Substitution map[string]*Type

// Infer connects generics placeholders in paramType from the
// corresponding argType, recursing into nested generics arguments
// (spec.md §4.5 "Generics inference"). Results accumulate into subst;
// conflicting bindings keep the first one found (argument order is
// left-to-right, matching declaration order).
func Infer(paramType, argType *Type, subst Substitution) {
	if paramType == nil || argType == nil {
		return
	}
	if paramType.Kind == KindGenericsPlaceholder {
		if _, bound := subst[paramType.PlaceholderName]; !bound {
			subst[paramType.PlaceholderName] = argType
		}
		return
	}
	if paramType.Kind != KindConcrete || argType.Kind != KindConcrete {
		return
	}
	for i := 0; i < len(paramType.Generics) && i < len(argType.Generics); i++ {
		Infer(paramType.Generics[i], argType.Generics[i], subst)
	}
}

// Instantiate applies subst to t, replacing every placeholder with its
// bound type (or Dynamic if unbound).
func Instantiate(t *Type, subst Substitution) *Type {
	if t == nil {
		return Dynamic
	}
	switch t.Kind {
	case KindGenericsPlaceholder:
		if bound, ok := subst[t.PlaceholderName]; ok {
			return bound
		}
		return Dynamic
	case KindConcrete:
		if len(t.Generics) == 0 {
			return t
		}
		generics := make([]*Type, len(t.Generics))
		for i, g := range t.Generics {
			generics[i] = Instantiate(g, subst)
		}
		return &Type{Kind: KindConcrete, Name: t.Name, Generics: generics, Nullable: t.Nullable, DeclaringClass: t.DeclaringClass}
	default:
		return Dynamic
	}
}

// ParseError is returned by callers that need to report a malformed type
// reference, e.g. an unknown canonical type name from config/schema input.
type ParseError struct{ Name string }

func (e *ParseError) Error() string { return fmt.Sprintf("unknown type %q", e.Name) }
