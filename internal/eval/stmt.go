package eval

import (
	"github.com/covenant-dev/covenant/internal/fault"
	"github.com/covenant-dev/covenant/internal/proxies"
	"github.com/covenant-dev/covenant/internal/pyast"
	"github.com/covenant-dev/covenant/internal/smt"
)

// EvalBody evaluates a statement list in order. Statements after an
// interrupt still evaluate; their effects are guarded by path
// conditions, so order of recording carries the sequencing.
func EvalBody(ctx *Context, body []pyast.Stmt) error {
	for _, s := range body {
		if err := EvalStmt(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// EvalStmt evaluates a single statement into the context.
func EvalStmt(ctx *Context, stmt pyast.Stmt) error {
	switch s := stmt.(type) {
	case *pyast.Assert:
		return evalAssert(ctx, s)
	case *pyast.Assign:
		return evalAssign(ctx, s)
	case *pyast.Return:
		return evalReturn(ctx, s)
	case *pyast.Raise:
		return evalRaise(ctx, s)
	case *pyast.If:
		return evalIf(ctx, s)
	case *pyast.ExprStmt:
		_, err := EvalExpr(ctx, s.Value)
		return err
	case *pyast.Pass, *pyast.Import, *pyast.ImportFrom, *pyast.Global:
		return nil
	case *pyast.FuncDef:
		return fault.Unsupported("nested function definition", s.Name)
	case *pyast.ClassDef:
		return fault.Unsupported("class definition in a function body", s.Name)
	default:
		return fault.Unsupported("statement", stmt.String())
	}
}

// An assertion is an obligation, but only on paths that reach it: once
// control has returned or raised, the assertion holds vacuously.
func evalAssert(ctx *Context, s *pyast.Assert) error {
	v, err := EvalExpr(ctx, s.Test)
	if err != nil {
		return err
	}
	test, err := proxies.AsBool(v)
	if err != nil {
		return err
	}
	ctx.Expected.Add(smt.Or(ctx.Interrupted(), test))
	return nil
}

// Only the single simple-name form of assignment is modeled; chained
// and destructuring targets fail the attempt.
func evalAssign(ctx *Context, s *pyast.Assign) error {
	if len(s.Targets) != 1 {
		return fault.Unsupported("multiple assignment", "")
	}
	name, ok := s.Targets[0].(*pyast.Name)
	if !ok {
		return fault.Unsupported("assignment target", s.Targets[0].String())
	}
	v, err := EvalExpr(ctx, s.Value)
	if err != nil {
		return err
	}
	ctx.Scope.Set(name.ID, v)
	return nil
}

// The return's condition must be computed before recording it: the
// return fires only on paths no earlier raise or return already took.
func evalReturn(ctx *Context, s *pyast.Return) error {
	if s.Value == nil {
		return fault.Unsupported("return without a value", "")
	}
	cond := smt.Not(ctx.Interrupted())
	v, err := EvalExpr(ctx, s.Value)
	if err != nil {
		return err
	}
	ctx.Returns.Add(ReturnInfo{Value: v, Cond: cond})
	return nil
}

// A raise records the names of the raised class and of its cause, when
// one is chained on: `raise A from B` escapes as either name as far as
// the contract is concerned.
func evalRaise(ctx *Context, s *pyast.Raise) error {
	if s.Exc == nil {
		return fault.Unsupported("bare raise", "")
	}
	names, err := exceptionNames(s.Exc)
	if err != nil {
		return err
	}
	if s.Cause != nil {
		causes, err := exceptionNames(s.Cause)
		if err != nil {
			return err
		}
		seen := map[string]bool{}
		for _, n := range names {
			seen[n] = true
		}
		for _, n := range causes {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	cond := smt.Not(ctx.Interrupted())
	ctx.Exceptions.Add(ExceptionInfo{Names: names, Cond: cond})
	return nil
}

// exceptionNames resolves a raised expression to the set of names the
// exception answers to: its own class plus every base, builtin or
// user-defined.
func exceptionNames(e pyast.Expr) ([]string, error) {
	if call, ok := e.(*pyast.Call); ok {
		e = call.Func
	}
	name, ok := e.(*pyast.Name)
	if !ok {
		return nil, fault.Unsupported("raising", e.String())
	}
	for _, d := range name.Defs {
		if c, ok := d.(*pyast.ClassDef); ok {
			return classNames(c)
		}
	}
	if names := pyast.BuiltinExceptionBases(name.ID); names != nil {
		return names, nil
	}
	return nil, fault.Unsupported("raising an unknown exception", name.ID)
}

func classNames(c *pyast.ClassDef) ([]string, error) {
	out := []string{c.Name}
	seen := map[string]bool{c.Name: true}
	for _, base := range c.Bases {
		n, ok := base.(*pyast.Name)
		if !ok {
			return nil, fault.Unsupported("exception base", base.String())
		}
		var bases []string
		resolved := false
		for _, d := range n.Defs {
			if bc, ok := d.(*pyast.ClassDef); ok {
				var err error
				bases, err = classNames(bc)
				if err != nil {
					return nil, err
				}
				resolved = true
			}
		}
		if !resolved {
			bases = pyast.BuiltinExceptionBases(n.ID)
			if bases == nil {
				return nil, fault.Unsupported("exception base", n.ID)
			}
		}
		for _, b := range bases {
			if !seen[b] {
				seen[b] = true
				out = append(out, b)
			}
		}
	}
	return out, nil
}

// A conditional evaluates both branches into child layers, then merges
// them back: bindings become branch-conditional expressions, and every
// recorded obligation, raise and return is weakened to fire only when
// its branch was taken.
func evalIf(ctx *Context, s *pyast.If) error {
	tv, err := EvalExpr(ctx, s.Test)
	if err != nil {
		return err
	}
	test, err := proxies.AsBool(tv)
	if err != nil {
		return err
	}

	thenCtx := ctx.MakeChild()
	if err := EvalBody(thenCtx, s.Body); err != nil {
		return err
	}
	elseCtx := ctx.MakeChild()
	if err := EvalBody(elseCtx, s.Orelse); err != nil {
		return err
	}

	if err := mergeScopes(ctx, test, thenCtx, elseCtx); err != nil {
		return err
	}
	tr := ctx.SMT.True()
	fa := ctx.SMT.False()
	for _, c := range thenCtx.Expected.Local() {
		ctx.Expected.Add(smt.Ite(test, c, tr))
	}
	for _, c := range elseCtx.Expected.Local() {
		ctx.Expected.Add(smt.Ite(test, tr, c))
	}
	for _, e := range thenCtx.Exceptions.Local() {
		ctx.Exceptions.Add(ExceptionInfo{Names: e.Names, Cond: smt.Ite(test, e.Cond, fa)})
	}
	for _, e := range elseCtx.Exceptions.Local() {
		ctx.Exceptions.Add(ExceptionInfo{Names: e.Names, Cond: smt.Ite(test, fa, e.Cond)})
	}
	for _, r := range thenCtx.Returns.Local() {
		ctx.Returns.Add(ReturnInfo{Value: r.Value, Cond: smt.Ite(test, r.Cond, fa)})
	}
	for _, r := range elseCtx.Returns.Local() {
		ctx.Returns.Add(ReturnInfo{Value: r.Value, Cond: smt.Ite(test, fa, r.Cond)})
	}
	return nil
}

// mergeScopes folds branch-local bindings back into the parent. A name
// bound in only one branch with no outer binding has no value to merge
// on the path that skipped the binding, so the attempt fails there and
// then.
func mergeScopes(ctx *Context, test *smt.Term, thenCtx, elseCtx *Context) error {
	seen := map[string]bool{}
	names := append([]string{}, thenCtx.Scope.LocalNames()...)
	for _, n := range elseCtx.Scope.LocalNames() {
		names = append(names, n)
	}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		tval, tok := thenCtx.Scope.Get(name)
		eval, evok := elseCtx.Scope.Get(name)
		if !tok || !evok {
			return &fault.UnboundError{Name: name}
		}
		merged, err := proxies.IfExpr(test, tval, eval)
		if err != nil {
			return err
		}
		ctx.Scope.Set(name, merged)
	}
	return nil
}
