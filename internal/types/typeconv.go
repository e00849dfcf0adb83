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

import "github.com/flowdsl/flowls/internal/ast"

// FromTypeExpr converts a syntactic type reference into a resolved Type
// (spec.md §3 "Type node"). A nil t (no annotation) yields Dynamic, to
// be narrowed later by inference (spec.md §4.5).
func FromTypeExpr(t *ast.TypeExpr) *Type {
	if t == nil {
		return Dynamic
	}
	ty := Concrete(Canonical(t.Name.Name))
	for _, g := range t.Generics {
		ty.Generics = append(ty.Generics, FromTypeExpr(g))
	}
	return ty.WithNullable(t.Nullable)
}
