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
	_ "embed"
	"fmt"
)

//go:embed definitions.json
var builtinDefinitions []byte

// LoadBuiltin parses the server's packaged definitions.json (spec.md §6
// "Schema input"), embedded at build time from this package's directory
// rather than read from disk, matching the teacher's go:embed convention for packaged
// data files (e.g. mod/modfile/modfile.go's embedded schema).
func LoadBuiltin() (*Scope, error) {
	node, err := Parse(builtinDefinitions)
	if err != nil {
		return nil, fmt.Errorf("schema: loading built-in definitions: %w", err)
	}
	scope, ok := node.(*Scope)
	if !ok {
		return nil, fmt.Errorf("schema: built-in definitions root must be a ConfigScope")
	}
	return scope, nil
}
