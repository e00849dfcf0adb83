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

// Package ast defines the tagged-variant syntax trees for both DSL file
// kinds (scripts and configuration files), per spec.md §3.
//
// Node is implemented by every concrete node type, the same way
// cue/ast.Node is implemented by every CUE node: a closed, interface-based
// sum type rather than a single struct with a discriminator field. This
// keeps each node's field set honest (no "only valid when Kind == X"
// fields) while still supporting exhaustive type-switch visitors.
//
// Per-node metadata (parent pointer, inferred type, resolved target) is
// NOT stored on the node itself. It lives in side-tables keyed by the
// node's pointer identity (see internal/meta), mirroring the
// "arena + parallel vectors" idea from spec.md §9 but using Go's existing
// pointer identity instead of a synthetic u32 index.
package ast

import "github.com/flowdsl/flowls/internal/token"

// Node is implemented by every script and config AST node.
type Node interface {
	// Range reports the node's source span.
	Range() token.Range
	// node is unexported so Node can only be implemented within this
	// package, keeping the sum type closed.
	node()
}

// base carries the span every node has, and gives every concrete type its
// Range method and closes the Node interface for it.
type base struct {
	Span token.Range
}

func (b *base) Range() token.Range { return b.Span }
func (b *base) node()              {}

// File is implemented by the root node of either file kind (ScriptFile,
// ConfigFile), so generic cache code can work with "the AST root" without
// caring which kind it is.
type File interface {
	Node
	FileKind() Kind
}

// Kind distinguishes the two DSL file kinds named in spec.md §1.
type Kind int

const (
	KindScript Kind = iota
	KindConfig
)

func (k Kind) String() string {
	if k == KindConfig {
		return "config"
	}
	return "script"
}

// Ident is a bare identifier, reused across both script and config ASTs
// wherever a name appears (parameters, variable references, dotted path
// segments, include aliases, ...).
type Ident struct {
	base
	Name string
}

// QualName is a dotted sequence of Idents, e.g. a config assignment path
// `profiles.standard.process.memory` or a script member access chain.
type QualName struct {
	base
	Parts []*Ident
}

func (q *QualName) String() string {
	s := ""
	for i, p := range q.Parts {
		if i > 0 {
			s += "."
		}
		s += p.Name
	}
	return s
}
