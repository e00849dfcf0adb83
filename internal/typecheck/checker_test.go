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

package typecheck

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/driver"
	"github.com/flowdsl/flowls/internal/symbols"
	"github.com/flowdsl/flowls/internal/types"
)

func scriptWorkflowCall(t *testing.T, src string) (*driver.SourceUnit, *Catalog) {
	t.Helper()
	u := driver.Compile("main.nf", []byte(src), ast.KindScript)
	qt.Assert(t, qt.HasLen(u.Diagnostics.Diagnostics(), 0), qt.Commentf("unexpected syntax errors"))
	script := u.Root.(*ast.ScriptFile)
	cat := NewCatalog()
	cat.AddLocalDecls(script.Decls)
	return u, cat
}

func callExprIn(script *ast.ScriptFile) *ast.CallExpr {
	wf := script.Decls[len(script.Decls)-1].(*ast.WorkflowDef)
	stmt := wf.Body[0].(*ast.ExprStmt)
	return stmt.X.(*ast.CallExpr)
}

// TestCheckProcessCallSingleOutputNoChannelReturnsValue exercises
// spec.md §8 scenario 4: a process called with a plain (non-Channel)
// argument returns Value<...>.
func TestCheckProcessCallSingleOutputNoChannelReturnsValue(t *testing.T) {
	u, cat := scriptWorkflowCall(t, `
process P {
  input(val x)
  output(val y)
  script:
  """
  echo hi
  """
}

workflow {
  P(1)
}
`)
	Check(u, cat)
	script := u.Root.(*ast.ScriptFile)
	call := callExprIn(script)
	ret := u.Meta.ExprType(call)
	qt.Assert(t, qt.IsNotNil(ret))
	qt.Assert(t, qt.Equals(ret.Kind, types.KindConcrete))
	qt.Assert(t, qt.Equals(ret.Name, types.Value))
}

// TestCheckProcessCallWithChannelArgReturnsChannel feeds a
// pre-resolved Channel<Integer>-typed variable as the call argument
// (standing in for `Channel.of(1)`, which this grammar's class-scope
// table does not model as a static factory) and checks the call
// synthesizes a Channel-wrapped return, matching spec.md §8 scenario 4's
// second half.
func TestCheckProcessCallWithChannelArgReturnsChannel(t *testing.T) {
	u, cat := scriptWorkflowCall(t, `
process P {
  input(val x)
  output(val y)
  script:
  """
  echo hi
  """
}

workflow {
  P(ch)
}
`)
	script := u.Root.(*ast.ScriptFile)
	call := callExprIn(script)
	argVar := call.Args[0].(*ast.VariableExpr)
	u.Meta.SetResolved(argVar, &symbols.Variable{
		Name:         "ch",
		Kind:         symbols.KindLocal,
		DeclaredType: types.Concrete(types.Channel, types.Concrete(types.Integer)),
	})

	Check(u, cat)
	ret := u.Meta.ExprType(call)
	qt.Assert(t, qt.Equals(ret.Name, types.Channel))
}

// TestCheckProcessCallMultipleChannelArgsWarnsDeterminism exercises the
// >=2-Channel-argument determinism warning.
func TestCheckProcessCallMultipleChannelArgsWarnsDeterminism(t *testing.T) {
	u, cat := scriptWorkflowCall(t, `
process P {
  input(val x, val y)
  output(val z)
  script:
  """
  echo hi
  """
}

workflow {
  P(a, b)
}
`)
	script := u.Root.(*ast.ScriptFile)
	call := callExprIn(script)
	chanType := types.Concrete(types.Channel, types.Concrete(types.Integer))
	av := call.Args[0].(*ast.VariableExpr)
	bv := call.Args[1].(*ast.VariableExpr)
	u.Meta.SetResolved(av, &symbols.Variable{Name: "a", DeclaredType: chanType})
	u.Meta.SetResolved(bv, &symbols.Variable{Name: "b", DeclaredType: chanType})

	Check(u, cat)
	diags := u.Diagnostics.Diagnostics()
	qt.Assert(t, qt.HasLen(diags, 1))
	qt.Assert(t, qt.Equals(diags[0].Code, "DeterminismWarning"))
}

func TestCheckFunctionCallReturnsDeclaredType(t *testing.T) {
	u, cat := scriptWorkflowCall(t, `
function double(x: Integer): Integer {
  return x * 2
}

workflow {
  double(21)
}
`)
	Check(u, cat)
	script := u.Root.(*ast.ScriptFile)
	call := callExprIn(script)
	ret := u.Meta.ExprType(call)
	qt.Assert(t, qt.Equals(ret.Name, types.Integer))
}

func TestCheckBinaryOperatorIntegerPlusInteger(t *testing.T) {
	u, cat := scriptWorkflowCall(t, `
workflow {
  1 + 2
}
`)
	Check(u, cat)
	script := u.Root.(*ast.ScriptFile)
	wf := script.Decls[0].(*ast.WorkflowDef)
	expr := wf.Body[0].(*ast.ExprStmt).X
	ret := u.Meta.ExprType(expr)
	qt.Assert(t, qt.Equals(ret.Name, types.Integer))
	qt.Assert(t, qt.HasLen(u.Diagnostics.Diagnostics(), 0))
}
