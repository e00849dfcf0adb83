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

import "strings"

// Bypass identifies one of the two special top-level prefixes that skip
// schema lookup entirely (spec.md §4.4: "env." enforces a flat
// single-segment name; "params." is a free map).
type Bypass int

const (
	NoBypass Bypass = iota
	BypassEnv
	BypassParams
)

// StripProfilePrefix removes a leading "profiles.<name>" segment pair
// from path, since profile scopes are schema-transparent (spec.md
// §4.4). It returns the remaining path and whether a prefix was
// stripped.
func StripProfilePrefix(path []string) ([]string, bool) {
	if len(path) >= 2 && path[0] == "profiles" {
		return path[2:], true
	}
	return path, false
}

// ClassifyBypass reports whether path's first segment is one of the
// schema-bypassing prefixes.
func ClassifyBypass(path []string) Bypass {
	if len(path) == 0 {
		return NoBypass
	}
	switch path[0] {
	case "env":
		return BypassEnv
	case "params":
		return BypassParams
	default:
		return NoBypass
	}
}

// Lookup resolves a dotted path against root, descending through Scope
// children and transparently through Placeholder axes (any index value
// is accepted — the placeholder's shared subtree is used for every
// segment at that position). It returns the terminal Node and true on a
// full match, or (nil, false) if any segment along the way is unknown.
func Lookup(root Node, path []string) (Node, bool) {
	cur := root
	for _, seg := range path {
		switch n := cur.(type) {
		case *Scope:
			child, ok := n.Lookup(seg)
			if !ok {
				return nil, false
			}
			cur = child
		case *Placeholder:
			// seg is the index value (e.g. a profile/label name); descend
			// into the shared subtree regardless of its literal text.
			if n.Scope == nil {
				return nil, false
			}
			cur = n.Scope
		default:
			return nil, false
		}
	}
	return cur, true
}

// SplitPath splits a dotted qualified name into its segments.
func SplitPath(dotted string) []string {
	if dotted == "" {
		return nil
	}
	return strings.Split(dotted, ".")
}
