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

package parser

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/flowdsl/flowls/internal/ast"
)

func TestParseIncludeDecl(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
include lib.module {
  foo,
  bar as baz
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.HasLen(file.Decls, 1))
	inc, ok := file.Decls[0].(*ast.IncludeDecl)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(inc.Entries, 2))
	qt.Assert(t, qt.Equals(inc.Entries[0].Name.Name, "foo"))
	qt.Assert(t, qt.IsNil(inc.Entries[0].Alias))
	qt.Assert(t, qt.Equals(inc.Entries[1].Name.Name, "bar"))
	qt.Assert(t, qt.Equals(inc.Entries[1].Alias.Name, "baz"))
}

func TestParseFeatureFlagDecl(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`feature dsl2 = true`))
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.HasLen(file.Decls, 1))
	ff, ok := file.Decls[0].(*ast.FeatureFlagDecl)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(ff.Name.Name, "dsl2"))
}

func TestParseLegacyProcessDef(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
process sayHello {
  cpus 2
  memory '1 GB'
  script:
  """
  echo hello
  """
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.HasLen(file.Decls, 1))
	pd, ok := file.Decls[0].(*ast.ProcessDef)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(pd.Name.Name, "sayHello"))
	qt.Assert(t, qt.Equals(pd.Version, ast.ProcessV1))
	qt.Assert(t, qt.HasLen(pd.Directives, 2))
	qt.Assert(t, qt.Equals(pd.Directives[0].Name.Name, "cpus"))
	qt.Assert(t, qt.IsNotNil(pd.Exec))
}

func TestParseTypedProcessDefIsV2(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
process align {
  input (val Integer threads, file reads)
  output (aligned: Bam)
  exec:
  """
  align --threads ${threads} ${reads}
  """
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	pd, ok := file.Decls[0].(*ast.ProcessDef)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(pd.Version, ast.ProcessV2))
	qt.Assert(t, qt.HasLen(pd.Params, 2))
	qt.Assert(t, qt.Equals(pd.Params[0].Qualifier, ast.InputVal))
	qt.Assert(t, qt.Equals(pd.Params[0].Name.Name, "threads"))
	qt.Assert(t, qt.Equals(pd.Params[1].Qualifier, ast.InputFile))
	qt.Assert(t, qt.Equals(pd.Params[1].Name.Name, "reads"))
	qt.Assert(t, qt.HasLen(pd.Outputs, 1))
	qt.Assert(t, qt.Equals(pd.Outputs[0].Name.Name, "aligned"))
}

func TestParseWorkflowDef(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
workflow {
  take reads

  sayHello(reads)

  emit result
  publish result -> 'out/result'
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	wf, ok := file.Decls[0].(*ast.WorkflowDef)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(wf.Takes, 1))
	qt.Assert(t, qt.Equals(wf.Takes[0].Name.Name, "reads"))
	qt.Assert(t, qt.HasLen(wf.Emits, 1))
	qt.Assert(t, qt.HasLen(wf.Publishers, 1))
	qt.Assert(t, qt.Equals(wf.Publishers[0].Name.Name, "result"))
}

func TestParseFunctionDefWithDoc(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
// squares an integer
function square(x: Integer): Integer {
  return x * x
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	fn, ok := file.Decls[0].(*ast.FunctionDef)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(fn.Doc, "// squares an integer"))
	qt.Assert(t, qt.HasLen(fn.Params, 1))
	qt.Assert(t, qt.Equals(fn.Params[0].Name.Name, "x"))
	qt.Assert(t, qt.IsNotNil(fn.ReturnType))
	qt.Assert(t, qt.HasLen(fn.Body, 1))
}

func TestParseDeclStmtWithGenerics(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
function f() {
  def List<Integer> items = [1, 2, 3]
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	fn := file.Decls[0].(*ast.FunctionDef)
	qt.Assert(t, qt.HasLen(fn.Body, 1))
	ds, ok := fn.Body[0].(*ast.DeclStmt)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(ds.Name.Name, "items"))
	qt.Assert(t, qt.IsNotNil(ds.Type))
	qt.Assert(t, qt.Equals(ds.Type.Name.Name, "List"))
	qt.Assert(t, qt.HasLen(ds.Type.Generics, 1))
}

func TestParseDeclStmtBareName(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
function f() {
  def x = 1
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	fn := file.Decls[0].(*ast.FunctionDef)
	ds := fn.Body[0].(*ast.DeclStmt)
	qt.Assert(t, qt.Equals(ds.Name.Name, "x"))
	qt.Assert(t, qt.IsNil(ds.Type))
}

func TestParseIfElseReturn(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
function f() {
  if (x > 0) {
    return x
  } else {
    return 0
  }
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	fn := file.Decls[0].(*ast.FunctionDef)
	ifs, ok := fn.Body[0].(*ast.IfStmt)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsNotNil(ifs.Else))
}

func TestParseForEach(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
function f() {
  for (x in items) {
    print(x)
  }
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	fn := file.Decls[0].(*ast.FunctionDef)
	fs, ok := fn.Body[0].(*ast.ForStmt)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(fs.Binding.Name, "x"))
}

func TestParseTryCatchFinally(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
function f() {
  try {
    risky()
  } catch (Exception e) {
    handle(e)
  } finally {
    cleanup()
  }
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	fn := file.Decls[0].(*ast.FunctionDef)
	ts, ok := fn.Body[0].(*ast.TryStmt)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(ts.Catches, 1))
	qt.Assert(t, qt.Equals(ts.Catches[0].Name.Name, "e"))
	qt.Assert(t, qt.IsNotNil(ts.Finally))
}

func TestParseExpressionPrecedence(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
function f() {
  return 1 + 2 * 3
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	fn := file.Decls[0].(*ast.FunctionDef)
	ret := fn.Body[0].(*ast.ReturnStmt)
	bin, ok := ret.X.(*ast.BinaryExpr)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(bin.Op, "+"))
	rhs, ok := bin.Y.(*ast.BinaryExpr)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(rhs.Op, "*"))
}

func TestParseClosureWithExplicitParams(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
function f() {
  return items.map { a, b -> a + b }
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	fn := file.Decls[0].(*ast.FunctionDef)
	ret := fn.Body[0].(*ast.ReturnStmt)
	mc, ok := ret.X.(*ast.MethodCallExpr)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(mc.Name.Name, "map"))
	qt.Assert(t, qt.IsNotNil(mc.Closure))
	qt.Assert(t, qt.HasLen(mc.Closure.Params, 2))
}

func TestParseClosureWithImplicitParam(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
function f() {
  return items.filter { it > 0 }
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	fn := file.Decls[0].(*ast.FunctionDef)
	ret := fn.Body[0].(*ast.ReturnStmt)
	mc := ret.X.(*ast.MethodCallExpr)
	qt.Assert(t, qt.HasLen(mc.Closure.Params, 0))
}

func TestParseNamedArgs(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
function f() {
  return build(name: 'x', count: 3)
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	fn := file.Decls[0].(*ast.FunctionDef)
	ret := fn.Body[0].(*ast.ReturnStmt)
	call, ok := ret.X.(*ast.CallExpr)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(call.Args, 0))
	qt.Assert(t, qt.HasLen(call.NamedArgs, 2))
	qt.Assert(t, qt.Equals(call.NamedArgs[0].Name.Name, "name"))
	qt.Assert(t, qt.Equals(call.NamedArgs[1].Name.Name, "count"))
}

func TestParseIndexingAndCast(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
function f() {
  return (xs[0] as Integer)
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	fn := file.Decls[0].(*ast.FunctionDef)
	ret := fn.Body[0].(*ast.ReturnStmt)
	cast, ok := ret.X.(*ast.CastExpr)
	qt.Assert(t, qt.IsTrue(ok))
	idx, ok := cast.X.(*ast.MethodCallExpr)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(idx.Name.Name, "[]"))
}

func TestParseListMapAndEmptyMap(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
function f() {
  def a = [1, 2, 3]
  def b = [:]
  def c = ['k': 1, 'j': 2]
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	fn := file.Decls[0].(*ast.FunctionDef)
	qt.Assert(t, qt.HasLen(fn.Body, 3))
	listDecl := fn.Body[0].(*ast.DeclStmt)
	list, ok := listDecl.Init.(*ast.ListExpr)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(list.Elems, 3))

	emptyMapDecl := fn.Body[1].(*ast.DeclStmt)
	emptyMap, ok := emptyMapDecl.Init.(*ast.MapExpr)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(emptyMap.Entries, 0))

	mapDecl := fn.Body[2].(*ast.DeclStmt)
	m, ok := mapDecl.Init.(*ast.MapExpr)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(m.Entries, 2))
}

func TestParseOutputDef(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`output myOutput: path('results/*')`))
	qt.Assert(t, qt.HasLen(errs, 0))
	od, ok := file.Decls[0].(*ast.OutputDef)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(od.Name.Name, "myOutput"))
	qt.Assert(t, qt.IsNotNil(od.Schema))
}

func TestParseSyntaxErrorStillReturnsPartialAST(t *testing.T) {
	file, errs := ParseScript("t.nf", []byte(`
process broken {
  this is not valid !!! ???
}

process ok {
  cpus 1
}
`))
	qt.Assert(t, qt.IsTrue(len(errs) > 0), qt.Commentf("expected syntax errors for malformed process body"))
	qt.Assert(t, qt.HasLen(file.Decls, 2))
	_, ok := file.Decls[1].(*ast.ProcessDef)
	qt.Assert(t, qt.IsTrue(ok))
}

func TestParseConfigAssignmentAndBlock(t *testing.T) {
	file, errs := ParseConfig("nextflow.config", []byte(`
params.outdir = './results'

process {
  cpus = 4
  memory = '2 GB'
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	qt.Assert(t, qt.HasLen(file.Stmts, 2))
	asg, ok := file.Stmts[0].(*ast.Assignment)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(asg.Path.String(), "params.outdir"))
	blk, ok := file.Stmts[1].(*ast.Block)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(blk.Name.Name, "process"))
	qt.Assert(t, qt.HasLen(blk.Stmts, 2))
}

func TestParseConfigSelectorBlock(t *testing.T) {
	file, errs := ParseConfig("nextflow.config", []byte(`
withLabel:big_mem {
  cpus = 8
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	blk, ok := file.Stmts[0].(*ast.Block)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(blk.Selector.Name, "withLabel"))
	qt.Assert(t, qt.IsNotNil(blk.Target))
}

func TestParseConfigPluginsBlock(t *testing.T) {
	file, errs := ParseConfig("nextflow.config", []byte(`
plugins {
  id 'nf-amazon@2.1.0'
  id 'nf-tower'
}
`))
	qt.Assert(t, qt.HasLen(errs, 0))
	blk, ok := file.Stmts[0].(*ast.PluginsBlock)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.HasLen(blk.Refs, 2))
	qt.Assert(t, qt.Equals(blk.Refs[0].Name.Name, "nf-amazon"))
	qt.Assert(t, qt.Equals(blk.Refs[0].Version, "2.1.0"))
	qt.Assert(t, qt.Equals(blk.Refs[1].Name.Name, "nf-tower"))
	qt.Assert(t, qt.Equals(blk.Refs[1].Version, ""))
}

func TestParseConfigInclude(t *testing.T) {
	file, errs := ParseConfig("nextflow.config", []byte(`include './base.config'`))
	qt.Assert(t, qt.HasLen(errs, 0))
	inc, ok := file.Stmts[0].(*ast.Include)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsNotNil(inc.Source))
}
