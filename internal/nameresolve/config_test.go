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

package nameresolve

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/driver"
	"github.com/flowdsl/flowls/internal/phase"
	"github.com/flowdsl/flowls/internal/schema"
)

func compileConfig(t *testing.T, src string) *driver.SourceUnit {
	t.Helper()
	u := driver.Compile("nextflow.config", []byte(src), ast.KindConfig)
	qt.Assert(t, qt.HasLen(u.Diagnostics.Diagnostics(), 0), qt.Commentf("unexpected syntax errors"))
	return u
}

// TestValidateConfigUnknownOption exercises spec.md §8 scenario 3:
// `foo.bar = 1` with no such schema path produces exactly one
// UnknownConfigOption warning naming the path.
func TestValidateConfigUnknownOption(t *testing.T) {
	root, err := schema.LoadBuiltin()
	qt.Assert(t, qt.IsNil(err))

	u := compileConfig(t, `foo.bar = 1`)
	ValidateConfig(u, root, nil, ConfigOptions{TypeChecking: true})

	diags := u.Diagnostics.Diagnostics()
	qt.Assert(t, qt.HasLen(diags, 1))
	qt.Assert(t, qt.Equals(diags[0].Code, "UnknownConfigOption"))
	qt.Assert(t, qt.Equals(diags[0].Phase, phase.NameResolution))
	qt.Assert(t, qt.Equals(diags[0].Severity, phase.SeverityWarning))
	qt.Assert(t, qt.IsTrue(contains(diags[0].Message, "'foo.bar'")))
}

func TestValidateConfigKnownOptionNoDiagnostic(t *testing.T) {
	root, err := schema.LoadBuiltin()
	qt.Assert(t, qt.IsNil(err))

	u := compileConfig(t, `process.cpus = 4`)
	ValidateConfig(u, root, nil, ConfigOptions{TypeChecking: true})
	qt.Assert(t, qt.HasLen(u.Diagnostics.Diagnostics(), 0))
}

func TestValidateConfigTypeMismatch(t *testing.T) {
	root, err := schema.LoadBuiltin()
	qt.Assert(t, qt.IsNil(err))

	u := compileConfig(t, `process.cpus = 'lots'`)
	ValidateConfig(u, root, nil, ConfigOptions{TypeChecking: true})

	diags := u.Diagnostics.Diagnostics()
	qt.Assert(t, qt.HasLen(diags, 1))
	qt.Assert(t, qt.Equals(diags[0].Code, "TypeMismatch"))
}

// TestValidateConfigProfilePrefixTransparent exercises spec.md §8
// boundary behavior: lookup under a `profiles.<p>` prefix yields the
// same result as the unprefixed lookup.
func TestValidateConfigProfilePrefixTransparent(t *testing.T) {
	root, err := schema.LoadBuiltin()
	qt.Assert(t, qt.IsNil(err))

	u := compileConfig(t, `
profiles {
  standard {
    process.cpus = 2
  }
}
`)
	ValidateConfig(u, root, nil, ConfigOptions{TypeChecking: true})
	qt.Assert(t, qt.HasLen(u.Diagnostics.Diagnostics(), 0))
}

func TestValidateConfigIllegalIncludeNested(t *testing.T) {
	root, err := schema.LoadBuiltin()
	qt.Assert(t, qt.IsNil(err))

	u := compileConfig(t, `
process {
  include 'nested.config'
}
`)
	ValidateConfig(u, root, nil, ConfigOptions{TypeChecking: true})
	diags := u.Diagnostics.Diagnostics()
	qt.Assert(t, qt.HasLen(diags, 1))
	qt.Assert(t, qt.Equals(diags[0].Code, "IllegalInclude"))
}

func TestValidateConfigEnvAndParamsBypassSchema(t *testing.T) {
	root, err := schema.LoadBuiltin()
	qt.Assert(t, qt.IsNil(err))

	u := compileConfig(t, `
env.MY_VAR = 'x'
params.outdir = './results'
`)
	ValidateConfig(u, root, nil, ConfigOptions{TypeChecking: true})
	qt.Assert(t, qt.HasLen(u.Diagnostics.Diagnostics(), 0))
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
