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
	"fmt"
	"strconv"

	"github.com/flowdsl/flowls/internal/ast"
	"github.com/flowdsl/flowls/internal/classscope"
	"github.com/flowdsl/flowls/internal/driver"
	"github.com/flowdsl/flowls/internal/phase"
	"github.com/flowdsl/flowls/internal/types"
)

// tupleOps is the set of channel-operator method names whose return
// type is synthesized from operand generics rather than looked up in a
// fixed class-scope member table (spec.md §4.5 "Tuple-op operators").
var tupleOps = map[string]bool{"combine": true, "groupTuple": true, "join": true}

// Check runs the type checker over a script source unit (spec.md §4.5).
// It is skipped entirely by callers when unit already carries syntax or
// name-resolution errors (spec.md §7 "subsequent phases skip type
// checking for a unit with syntax or name errors"); Check itself does
// not enforce that, since a best-effort run is still useful for IDE
// features degrading gracefully.
func Check(unit *driver.SourceUnit, catalog *Catalog) {
	script, ok := unit.Root.(*ast.ScriptFile)
	if !ok {
		return
	}
	c := &checker{unit: unit, diags: unit.Diagnostics, catalog: catalog, ops: types.NewOperatorTable()}
	for _, d := range script.Decls {
		c.decl(d)
	}
}

type checker struct {
	unit    *driver.SourceUnit
	diags   *phase.Builder
	catalog *Catalog
	ops     *types.OperatorTable
}

func (c *checker) report(code string, n ast.Node, msg string) {
	c.diags.Report(phase.TypeChecking, phase.KindType, code, n.Range(), msg)
}

func (c *checker) setType(e ast.Expr, t *types.Type) *types.Type {
	c.unit.Meta.SetExprType(e, t)
	return t
}

func (c *checker) decl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.ProcessDef:
		for _, dir := range n.Directives {
			for _, a := range dir.Args {
				c.expr(a)
			}
		}
		if n.When != nil {
			c.expr(n.When)
		}
		c.stmts(n.Body)
	case *ast.WorkflowDef:
		c.stmts(n.Body)
		for _, p := range n.Publishers {
			c.expr(p.Target)
		}
		for _, h := range n.Hooks {
			c.stmts(h.Body)
		}
	case *ast.FunctionDef:
		c.checkFunctionReturns(n)
		c.stmts(n.Body)
	case *ast.OutputDef:
		c.expr(n.Schema)
	}
}

// checkFunctionReturns implements spec.md §4.5 "Return-type inference
// for functions/closures": a trailing bare-expression statement is
// rewritten into an explicit return, then every return's expression
// type is checked against the declared return type (or, if declared
// dynamic, the first successful return's type is adopted and enforced
// on the rest).
func (c *checker) checkFunctionReturns(n *ast.FunctionDef) {
	rewriteTrailingExprToReturn(n.Body)
	declared := types.Dynamic
	if n.ReturnType != nil {
		declared = types.FromTypeExpr(n.ReturnType)
	}
	inferred := declared
	var walk func(stmts []ast.Stmt)
	walk = func(stmts []ast.Stmt) {
		for _, s := range stmts {
			switch rs := s.(type) {
			case *ast.ReturnStmt:
				if rs.X == nil {
					continue
				}
				t := c.expr(rs.X)
				if declared.IsDynamic() {
					if inferred.IsDynamic() {
						inferred = t
					} else if !types.Equal(inferred, t) && !types.Assignable(inferred, t) {
						c.report("TypeMismatch", rs.X, "return type "+t.String()+" is inconsistent with previously inferred "+inferred.String())
					}
				} else if !types.Assignable(declared, t) {
					c.report("TypeMismatch", rs.X, "return type "+t.String()+" is not assignable to declared return type "+declared.String())
				}
			case *ast.IfStmt:
				walk(blockStmts(rs.Then))
				if rs.Else != nil {
					walk([]ast.Stmt{rs.Else})
				}
			case *ast.BlockStmt:
				walk(rs.Stmts)
			case *ast.ForStmt:
				walk(blockStmts(rs.Body))
			case *ast.TryStmt:
				walk(blockStmts(rs.Body))
				for _, cc := range rs.Catches {
					walk(blockStmts(cc.Body))
				}
				if rs.Finally != nil {
					walk(blockStmts(rs.Finally))
				}
			}
		}
	}
	walk(n.Body)
	if declared.IsDynamic() && !inferred.IsDynamic() {
		if sig, ok := c.catalog.Lookup(n.Name.Name); ok && sig.Decl == ast.Decl(n) {
			sig.Return = inferred
		}
	}
}

func blockStmts(s ast.Stmt) []ast.Stmt {
	if b, ok := s.(*ast.BlockStmt); ok {
		return b.Stmts
	}
	return nil
}

// rewriteTrailingExprToReturn replaces a function body's final
// ExprStmt with an equivalent ReturnStmt in place, matching spec.md's
// "visitor rewrites trailing expression statements into returns".
func rewriteTrailingExprToReturn(stmts []ast.Stmt) {
	if len(stmts) == 0 {
		return
	}
	last := len(stmts) - 1
	if es, ok := stmts[last].(*ast.ExprStmt); ok {
		stmts[last] = &ast.ReturnStmt{X: es.X}
	}
}

func (c *checker) stmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.stmt(s)
	}
}

func (c *checker) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		c.stmts(n.Stmts)
	case *ast.ExprStmt:
		c.expr(n.X)
	case *ast.DeclStmt:
		if n.Init == nil {
			return
		}
		valType := c.expr(n.Init)
		if n.Type != nil {
			declared := types.FromTypeExpr(n.Type)
			if !types.Assignable(declared, valType) {
				c.report("TypeMismatch", n.Init, "cannot assign "+valType.String()+" to declared type "+declared.String())
			}
			c.unit.Meta.SetDeclaredType(n.Name, declared)
		} else {
			c.unit.Meta.SetDeclaredType(n.Name, valType)
		}
	case *ast.IfStmt:
		c.expr(n.Cond)
		c.stmt(n.Then)
		if n.Else != nil {
			c.stmt(n.Else)
		}
	case *ast.ForStmt:
		c.expr(n.Iter)
		c.stmt(n.Body)
	case *ast.TryStmt:
		c.stmt(n.Body)
		for _, cc := range n.Catches {
			c.stmt(cc.Body)
		}
		if n.Finally != nil {
			c.stmt(n.Finally)
		}
	case *ast.ReturnStmt:
		if n.X != nil {
			c.expr(n.X)
		}
	}
}

// expr infers and records e's type, reporting any type errors found
// along the way, and returns the inferred type for the caller's own use
// (e.g. an enclosing binary expression's operand type).
func (c *checker) expr(e ast.Expr) *types.Type {
	if e == nil {
		return types.Dynamic
	}
	switch n := e.(type) {
	case *ast.ConstantExpr:
		return c.setType(n, constantType(n.Kind))
	case *ast.VariableExpr:
		if v, ok := c.unit.Meta.Resolved(n); ok {
			return c.setType(n, v.DeclaredType)
		}
		return c.setType(n, types.Dynamic)
	case *ast.BinaryExpr:
		x := c.expr(n.X)
		y := c.expr(n.Y)
		result := c.ops.BinaryOpResult(n.Op, x, y)
		if result.IsDynamic() && !x.IsDynamic() && !y.IsDynamic() {
			c.report("IncompatibleOperator", n, fmt.Sprintf("operator %q is not defined for %s and %s", n.Op, x, y))
		}
		return c.setType(n, result)
	case *ast.UnaryExpr:
		x := c.expr(n.X)
		return c.setType(n, x)
	case *ast.TernaryExpr:
		c.expr(n.Cond)
		then := c.expr(n.Then)
		els := c.expr(n.Else)
		if !then.IsDynamic() && !els.IsDynamic() && !types.Equal(then, els) && !types.Assignable(then, els) && !types.Assignable(els, then) {
			c.report("InconsistentConditional", n, "branches have incompatible types "+then.String()+" and "+els.String())
		}
		if then.IsDynamic() {
			return c.setType(n, els)
		}
		return c.setType(n, then)
	case *ast.ElvisExpr:
		x := c.expr(n.X)
		d := c.expr(n.Default)
		if x.IsDynamic() {
			return c.setType(n, d)
		}
		return c.setType(n, x.WithNullable(false))
	case *ast.CastExpr:
		x := c.expr(n.X)
		target := types.FromTypeExpr(n.Type)
		if invalidCast(x, target) {
			c.report("InvalidCast", n, "cannot cast "+x.String()+" to "+target.String())
		}
		return c.setType(n, target)
	case *ast.TupleExpr:
		elems := make([]*types.Type, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = c.expr(el)
		}
		return c.setType(n, types.Concrete(types.Tuple, elems...))
	case *ast.RangeExpr:
		c.expr(n.Lo)
		c.expr(n.Hi)
		return c.setType(n, types.Concrete(types.List, types.Concrete(types.Integer)))
	case *ast.ListExpr:
		elem := types.Dynamic
		for i, el := range n.Elems {
			t := c.expr(el)
			if i == 0 {
				elem = t
			} else if !elem.IsDynamic() && !t.IsDynamic() && !types.Equal(elem, t) {
				c.report("InconsistentList", el, "list element type "+t.String()+" differs from "+elem.String())
			}
		}
		return c.setType(n, types.Concrete(types.List, elem))
	case *ast.MapExpr:
		for _, me := range n.Entries {
			c.expr(me.Key)
			c.expr(me.Value)
		}
		return c.setType(n, types.Concrete(types.Map, types.Dynamic, types.Dynamic))
	case *ast.ClosureExpr:
		return c.setType(n, c.closureType(n, nil))
	case *ast.AssignExpr:
		val := c.expr(n.Value)
		target := c.expr(n.Target)
		if n.Op == "=" && !target.IsDynamic() && !val.IsDynamic() && !types.Assignable(target, val) {
			c.report("TypeMismatch", n.Value, "cannot assign "+val.String()+" to "+target.String())
		}
		return c.setType(n, target)
	case *ast.DeclExpr:
		return c.setType(n, types.Dynamic)
	case *ast.PropertyExpr:
		return c.setType(n, c.property(n))
	case *ast.MethodCallExpr:
		return c.setType(n, c.methodCall(n))
	case *ast.CallExpr:
		return c.setType(n, c.call(n))
	}
	return types.Dynamic
}

func constantType(k ast.ConstantKind) *types.Type {
	switch k {
	case ast.ConstInt:
		return types.Concrete(types.Integer)
	case ast.ConstFloat:
		return types.Concrete(types.Float)
	case ast.ConstString:
		return types.Concrete(types.String)
	case ast.ConstBool:
		return types.Concrete(types.Boolean)
	case ast.ConstDuration:
		return types.Concrete(types.Duration)
	case ast.ConstMemoryUnit:
		return types.Concrete(types.MemoryUnit)
	default:
		return types.Dynamic
	}
}

// property resolves `X.Name` where Name is not followed by a call: a
// tuple's literal-index `[]` form is handled in the parser as a
// subscript on a property/variable chain is out of scope for this
// grammar, so property lookup here only needs the class-scope member
// table for the receiver's declaring class and the process `.out`
// record-field accessor (spec.md §4.5, GLOSSARY "Ops class").
func (c *checker) property(n *ast.PropertyExpr) *types.Type {
	recv := c.expr(n.X)
	if recv.IsDynamic() {
		return types.Dynamic
	}
	if recv.Kind == types.KindConcrete && recv.Name == types.Record {
		for _, g := range recv.Generics {
			if g.Kind == types.KindConcrete && string(g.Name) == n.Name.Name && len(g.Generics) == 1 {
				return g.Generics[0]
			}
		}
		c.report("UnknownMember", n.Name, "no field named \""+n.Name.Name+"\" on this record")
		return types.Dynamic
	}
	if scope := classScopeFor(recv); scope != nil {
		if t, ok := scope.LookupMember(n.Name.Name); ok {
			return t
		}
	}
	c.report("UnknownMember", n.Name, "unknown member \""+n.Name.Name+"\" on "+recv.String())
	return types.Dynamic
}

// invalidCast reports whether casting a value of type from to target is
// never meaningful: both sides are known concrete primitives with no
// assignability relation in either direction and neither side is
// String (every type can be cast to/from String, e.g. string
// interpolation and parsing casts).
func invalidCast(from, target *types.Type) bool {
	if from.IsDynamic() || target.IsDynamic() {
		return false
	}
	if from.Kind != types.KindConcrete || target.Kind != types.KindConcrete {
		return false
	}
	if from.Name == types.String || target.Name == types.String {
		return false
	}
	if types.Assignable(target, from) || types.Assignable(from, target) {
		return false
	}
	return true
}

// classScopeFor returns the class-scope member table exposed by values
// of type t, if any is known for t's canonical shape (spec.md §4.5
// "Method dispatch... declared methods of R").
func classScopeFor(t *types.Type) classMemberLookup {
	if t == nil || t.Kind != types.KindConcrete {
		return nil
	}
	switch t.Name {
	case types.Channel:
		elem := types.Dynamic
		if len(t.Generics) == 1 {
			elem = t.Generics[0]
		}
		return classscope.ChannelOpsScope(elem)
	default:
		return nil
	}
}

type classMemberLookup interface {
	LookupMember(name string) (*types.Type, bool)
}

// methodCall resolves `X.Name(args...)`, including the trailing-closure
// SAM-matching rules and the channel tuple-operator synthesis (spec.md
// §4.5).
func (c *checker) methodCall(n *ast.MethodCallExpr) *types.Type {
	recv := c.expr(n.X)
	argTypes := make([]*types.Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.expr(a)
	}
	for _, na := range n.NamedArgs {
		c.expr(na.Value)
	}

	if n.Name.Name == "[]" {
		return c.index(n, recv, argTypes)
	}

	if recv.Kind == types.KindConcrete && recv.Name == types.Channel && tupleOps[n.Name.Name] {
		return c.tupleOp(n, recv, argTypes)
	}

	scope := classScopeFor(recv)
	var memberType *types.Type
	if scope != nil {
		if t, ok := scope.LookupMember(n.Name.Name); ok {
			memberType = t
		}
	}
	if memberType == nil {
		if !recv.IsDynamic() {
			c.report("UnknownMember", n.Name, "unknown member \""+n.Name.Name+"\" on "+recv.String())
		}
		if n.Closure != nil {
			c.closureType(n.Closure, nil)
		}
		return types.Dynamic
	}

	if n.Closure != nil {
		sam := inferSAM(recv, n.Name.Name, argTypes)
		c.closureType(n.Closure, sam)
	}
	return memberType
}

// tupleOp synthesizes combine/groupTuple/join's return type from the
// receiver and (for combine/join) the first positional argument's tuple
// generics (spec.md §4.5 "Tuple-op operators"). The `by:` named
// argument, if present, downgrades the whole call to dynamic (spec.md
// §9 open question, SPEC_FULL.md §E decision 3) — deliberately not given a
// tuple-projection analysis here.
func (c *checker) tupleOp(n *ast.MethodCallExpr, recv *types.Type, argTypes []*types.Type) *types.Type {
	for _, na := range n.NamedArgs {
		if na.Name.Name == "by" {
			return types.Dynamic
		}
	}
	left := tupleComponents(recv)
	var right []*types.Type
	if len(argTypes) > 0 {
		right = tupleComponents(argTypes[0])
	}
	return types.TupleOpResult(n.Name.Name, left, right)
}

// index resolves the `[]` operator (spec.md §4.5 "The [] operator with
// a tuple receiver and a literal integer index resolves to the
// corresponding tuple component type"). A non-tuple receiver, or a
// non-literal index, leaves the result dynamic without reporting an
// error (the operator may be a list/map subscript out of this
// checker's scope).
func (c *checker) index(n *ast.MethodCallExpr, recv *types.Type, argTypes []*types.Type) *types.Type {
	if recv.IsDynamic() || recv.Kind != types.KindConcrete || recv.Name != types.Tuple {
		return types.Dynamic
	}
	if len(n.Args) != 1 {
		return types.Dynamic
	}
	lit, ok := n.Args[0].(*ast.ConstantExpr)
	if !ok || lit.Kind != ast.ConstInt {
		return types.Dynamic
	}
	idx, err := strconv.Atoi(lit.Text)
	if err != nil {
		return types.Dynamic
	}
	t, inRange := types.TupleIndex(recv, idx)
	if !inRange {
		c.report("TupleIndexOutOfRange", n, fmt.Sprintf("tuple index %d is out of range (tuple has %d components)", idx, len(recv.Generics)))
	}
	return t
}

func tupleComponents(chanType *types.Type) []*types.Type {
	if chanType == nil || chanType.Kind != types.KindConcrete || len(chanType.Generics) != 1 {
		return nil
	}
	elem := chanType.Generics[0]
	if elem.Kind == types.KindConcrete && elem.Name == types.Tuple {
		return elem.Generics
	}
	return []*types.Type{elem}
}

// inferSAM produces the functional-interface shape a trailing closure
// argument targets for a known channel-operator method. Every such
// method is modeled as taking the channel's element type (dynamic if
// the receiver has no single generic); filter returns Boolean and every
// other method returns dynamic.
func inferSAM(recv *types.Type, method string, argTypes []*types.Type) *types.SAM {
	elem := types.Dynamic
	if recv.Kind == types.KindConcrete && len(recv.Generics) == 1 {
		elem = recv.Generics[0]
	}
	switch method {
	case "map", "flatten":
		return &types.SAM{ParamTypes: []*types.Type{elem}, ReturnType: types.Dynamic}
	case "filter":
		return &types.SAM{ParamTypes: []*types.Type{elem}, ReturnType: types.Concrete(types.Boolean)}
	default:
		return &types.SAM{ParamTypes: []*types.Type{elem}, ReturnType: types.Dynamic}
	}
}

// closureType checks (and, where dynamic, infers) a closure literal's
// parameter types against an optional SAM target (spec.md §4.5 "Closure
// parameter inference"), then infers its body's result type from its
// trailing expression.
func (c *checker) closureType(n *ast.ClosureExpr, sam *types.SAM) *types.Type {
	arity := len(n.Params)
	if arity == 0 {
		arity = 1 // implicit "it"
	}
	var paramTypes []*types.Type
	if sam != nil {
		if !types.ClosureCompatible(*sam, arity) {
			c.report("ArityMismatch", n, fmt.Sprintf("closure with %d parameter(s) does not match target arity", arity))
		} else {
			paramTypes = types.ClosureParamTypes(*sam, arity)
		}
	}
	for i, p := range n.Params {
		if p.Type != nil {
			c.unit.Meta.SetDeclaredType(p.Name, types.FromTypeExpr(p.Type))
			continue
		}
		if i < len(paramTypes) {
			c.unit.Meta.SetDeclaredType(p.Name, paramTypes[i])
		}
	}

	result := types.Dynamic
	for _, s := range n.Body {
		if es, ok := s.(*ast.ExprStmt); ok {
			result = c.expr(es.X)
		} else {
			c.stmt(s)
		}
	}
	return types.Concrete(types.Closure, result)
}

// checkNamedArgs validates a call's `name: value` arguments against a
// callee's positional parameter names (spec.md §4.5's
// NamedParamUnknown/NamedParamTypeMismatch; named arguments are matched
// by parameter name rather than position). Each named argument's value
// expression has already been type-checked by the caller before this
// runs, so its inferred type is read back from the metadata table.
func (c *checker) checkNamedArgs(callee string, named []*ast.NamedArg, params []Param) {
	byName := make(map[string]*types.Type, len(params))
	for _, p := range params {
		byName[p.Name] = p.Type
	}
	for _, na := range named {
		declared, ok := byName[na.Name.Name]
		if !ok {
			c.report("NamedParamUnknown", na.Name, fmt.Sprintf("%q has no parameter named %q", callee, na.Name.Name))
			continue
		}
		got := c.unit.Meta.ExprType(na.Value)
		if !types.Assignable(declared, got) {
			c.report("NamedParamTypeMismatch", na.Value, fmt.Sprintf("parameter %q expects %s, got %s", na.Name.Name, declared, got))
		}
	}
}

// call resolves a bare `foo(args...)` call: either a user-defined
// function (returning its declared/inferred return type) or a
// process/workflow call (synthesizing the dataflow-wrapper return shape
// of spec.md §4.5 "Process-call return shape").
func (c *checker) call(n *ast.CallExpr) *types.Type {
	argTypes := make([]*types.Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.expr(a)
	}
	for _, na := range n.NamedArgs {
		c.expr(na.Value)
	}
	if n.Closure != nil {
		c.closureType(n.Closure, nil)
	}

	sig, ok := c.catalog.Lookup(n.Callee.Name)
	if !ok {
		return types.Dynamic
	}
	if len(n.Args) != 0 && len(n.Args) != len(sig.Params) {
		c.report("ArityMismatch", n, fmt.Sprintf("%q expects %d argument(s), got %d", n.Callee.Name, len(sig.Params), len(n.Args)))
	}
	c.checkNamedArgs(n.Callee.Name, n.NamedArgs, sig.Params)

	switch sig.Kind {
	case CallableFunction:
		return sig.Return
	case CallableWorkflow:
		return types.Dynamic
	case CallableProcess:
		channelArgCount := 0
		for _, at := range argTypes {
			if at != nil && at.Kind == types.KindConcrete && at.Name == types.Channel {
				channelArgCount++
			}
		}
		ret, determinism := types.ProcessCallReturn(sig.Outputs, channelArgCount)
		if determinism {
			c.report("DeterminismWarning", n, fmt.Sprintf("calling %q with more than one Channel argument is nondeterministic", n.Callee.Name))
		}
		return ret
	}
	return types.Dynamic
}
