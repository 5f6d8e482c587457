package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenant-dev/covenant/internal/eval"
	"github.com/covenant-dev/covenant/internal/fault"
	"github.com/covenant-dev/covenant/internal/proxies"
	"github.com/covenant-dev/covenant/internal/pyast"
	"github.com/covenant-dev/covenant/internal/smt"
)

func newCtx() *eval.Context {
	return eval.NewContext(smt.NewContext())
}

func mustBool(t *testing.T, term *smt.Term) bool {
	t.Helper()
	v, ok := smt.Simplify(term).BoolLit()
	require.True(t, ok, "expected a known truth value, got %s", term)
	return v
}

func TestAssignThenAssert(t *testing.T) {
	ctx := newCtx()
	body := []pyast.Stmt{
		&pyast.Assign{Targets: []pyast.Expr{pyast.Var("x")}, Value: pyast.Int(1)},
		&pyast.Assert{Test: &pyast.Compare{
			Left:        pyast.Var("x"),
			Ops:         []pyast.CmpOpKind{pyast.OpEq},
			Comparators: []pyast.Expr{pyast.Int(1)},
		}},
	}
	require.NoError(t, eval.EvalBody(ctx, body))

	goals := ctx.Expected.All()
	require.Len(t, goals, 1)
	assert.True(t, mustBool(t, goals[0]))
}

func TestAssertAfterRaiseIsVacuous(t *testing.T) {
	ctx := newCtx()
	body := []pyast.Stmt{
		&pyast.Raise{Exc: pyast.Var("ValueError")},
		&pyast.Assert{Test: pyast.Bool(false)},
	}
	require.NoError(t, eval.EvalBody(ctx, body))

	goals := ctx.Expected.All()
	require.Len(t, goals, 1)
	// the raise always fires first, so the failing assert is unreachable
	assert.True(t, mustBool(t, goals[0]))
}

func TestUnboundNameIsAnError(t *testing.T) {
	ctx := newCtx()
	_, err := eval.EvalExpr(ctx, pyast.Var("nope"))
	assert.Error(t, err)
}

func TestBranchMergesVariables(t *testing.T) {
	ctx := newCtx()
	ctx.Scope.Set("p", proxies.NewBool(ctx.SMT.Const("p", smt.BoolSort())))
	stmt := &pyast.If{
		Test:   pyast.Var("p"),
		Body:   []pyast.Stmt{&pyast.Assign{Targets: []pyast.Expr{pyast.Var("x")}, Value: pyast.Int(1)}},
		Orelse: []pyast.Stmt{&pyast.Assign{Targets: []pyast.Expr{pyast.Var("x")}, Value: pyast.Int(2)}},
	}
	require.NoError(t, eval.EvalStmt(ctx, stmt))

	x, ok := ctx.Scope.Get("x")
	require.True(t, ok)
	term, err := proxies.Unwrap(x)
	require.NoError(t, err)

	one := smt.Simplify(smt.Substitute(term, map[string]*smt.Term{"p": ctx.SMT.True()}))
	v, ok := one.IntLit()
	require.True(t, ok)
	assert.Equal(t, int64(1), v)

	two := smt.Simplify(smt.Substitute(term, map[string]*smt.Term{"p": ctx.SMT.False()}))
	v, ok = two.IntLit()
	require.True(t, ok)
	assert.Equal(t, int64(2), v)
}

func TestBranchReturnsCoverBothPaths(t *testing.T) {
	ctx := newCtx()
	ctx.Scope.Set("p", proxies.NewBool(ctx.SMT.Const("p", smt.BoolSort())))
	stmt := &pyast.If{
		Test:   pyast.Var("p"),
		Body:   []pyast.Stmt{&pyast.Return{Value: pyast.Int(1)}},
		Orelse: []pyast.Stmt{&pyast.Return{Value: pyast.Int(2)}},
	}
	require.NoError(t, eval.EvalStmt(ctx, stmt))

	rets := ctx.Returns.All()
	require.Len(t, rets, 2)
	// one of the two returns fires on every path
	either := smt.Or(rets[0].Cond, rets[1].Cond)
	assert.True(t, mustBool(t, either))
	assert.True(t, mustBool(t, ctx.Interrupted()))
}

func TestSequentialRaisesAreOrdered(t *testing.T) {
	ctx := newCtx()
	body := []pyast.Stmt{
		&pyast.Raise{Exc: pyast.Var("ValueError")},
		&pyast.Raise{Exc: pyast.Var("TypeError")},
	}
	require.NoError(t, eval.EvalBody(ctx, body))

	excs := ctx.Exceptions.All()
	require.Len(t, excs, 2)
	assert.True(t, mustBool(t, excs[0].Cond))
	// the second raise is shadowed by the first
	assert.False(t, mustBool(t, excs[1].Cond))
}

func TestRaiseRecordsClassHierarchy(t *testing.T) {
	ctx := newCtx()
	base := &pyast.ClassDef{Name: "AppError", Bases: []pyast.Expr{pyast.Var("ValueError")}}
	raise := &pyast.Raise{Exc: &pyast.Name{ID: "AppError", Defs: []pyast.Decl{base}}}
	require.NoError(t, eval.EvalStmt(ctx, raise))

	excs := ctx.Exceptions.All()
	require.Len(t, excs, 1)
	assert.Contains(t, excs[0].Names, "AppError")
	assert.Contains(t, excs[0].Names, "ValueError")
	assert.Contains(t, excs[0].Names, "Exception")
	assert.Contains(t, excs[0].Names, "BaseException")
}

func TestNoOpStatements(t *testing.T) {
	ctx := newCtx()
	body := []pyast.Stmt{
		&pyast.Pass{},
		&pyast.Import{Names: []string{"random"}},
		&pyast.ImportFrom{Module: "typing", Names: []string{"List"}},
		&pyast.Global{Names: []string{"g"}},
	}
	require.NoError(t, eval.EvalBody(ctx, body))
	assert.Empty(t, ctx.Expected.All())
	assert.Empty(t, ctx.Exceptions.All())
}

func TestCompareChain(t *testing.T) {
	ctx := newCtx()
	// 1 < 2 < 3 is true; 1 < 2 < 2 is false
	chain := func(a, b, c int64) bool {
		v, err := eval.EvalExpr(ctx, &pyast.Compare{
			Left:        pyast.Int(a),
			Ops:         []pyast.CmpOpKind{pyast.OpLt, pyast.OpLt},
			Comparators: []pyast.Expr{pyast.Int(b), pyast.Int(c)},
		})
		require.NoError(t, err)
		b2, err := proxies.AsBool(v)
		require.NoError(t, err)
		return mustBool(t, b2)
	}
	assert.True(t, chain(1, 2, 3))
	assert.False(t, chain(1, 2, 2))
}

func TestUserCallInlinesBody(t *testing.T) {
	ctx := newCtx()
	double := &pyast.FuncDef{
		Name: "double",
		Args: []*pyast.Param{{Name: "n", Annotation: pyast.Var("int")}},
		Body: []pyast.Stmt{
			&pyast.Return{Value: &pyast.BinOp{Op: pyast.OpMult, Left: pyast.Var("n"), Right: pyast.Int(2)}},
		},
	}
	call := &pyast.Call{
		Func: &pyast.Name{ID: "double", Defs: []pyast.Decl{double}},
		Args: []pyast.Expr{pyast.Int(21)},
	}
	v, err := eval.EvalExpr(ctx, call)
	require.NoError(t, err)
	term, err := proxies.Unwrap(v)
	require.NoError(t, err)
	got, ok := smt.Simplify(term).IntLit()
	require.True(t, ok)
	assert.Equal(t, int64(42), got)
}

func TestRecursiveCallIsSummarized(t *testing.T) {
	ctx := newCtx()
	fn := &pyast.FuncDef{
		Name:    "spin",
		Args:    []*pyast.Param{{Name: "n", Annotation: pyast.Var("int")}},
		Returns: pyast.Var("int"),
	}
	fn.Body = []pyast.Stmt{
		&pyast.Return{Value: &pyast.Call{
			Func: &pyast.Name{ID: "spin", Defs: []pyast.Decl{fn}},
			Args: []pyast.Expr{pyast.Var("n")},
		}},
	}
	call := &pyast.Call{
		Func: &pyast.Name{ID: "spin", Defs: []pyast.Decl{fn}},
		Args: []pyast.Expr{pyast.Int(3)},
	}
	v, err := eval.EvalExpr(ctx, call)
	require.NoError(t, err)
	term, err := proxies.Unwrap(v)
	require.NoError(t, err)
	assert.Equal(t, smt.OpApply, term.Op())

	// the guard must have been released: a fresh call works again
	_, err = eval.EvalExpr(ctx, call)
	assert.NoError(t, err)
}

func TestStrIndexRecordsValueError(t *testing.T) {
	ctx := newCtx()
	call := &pyast.Call{
		Func: &pyast.Attribute{Value: pyast.Str("abc"), Attr: "index"},
		Args: []pyast.Expr{pyast.Str("z")},
	}
	v, err := eval.EvalExpr(ctx, call)
	require.NoError(t, err)
	term, err := proxies.Unwrap(v)
	require.NoError(t, err)
	got, ok := smt.Simplify(term).IntLit()
	require.True(t, ok)
	assert.Equal(t, int64(-1), got)

	excs := ctx.Exceptions.All()
	require.Len(t, excs, 1)
	assert.Contains(t, excs[0].Names, "ValueError")
	// the needle is absent, so the raise fires
	assert.True(t, mustBool(t, excs[0].Cond))
}

func TestListCompUnrolls(t *testing.T) {
	ctx := newCtx()
	comp := &pyast.ListComp{
		Elt:    &pyast.BinOp{Op: pyast.OpMult, Left: pyast.Var("v"), Right: pyast.Int(10)},
		Target: "v",
		Iter:   &pyast.ListExpr{Elts: []pyast.Expr{pyast.Int(1), pyast.Int(2), pyast.Int(3)}},
		Ifs: []pyast.Expr{&pyast.Compare{
			Left:        pyast.Var("v"),
			Ops:         []pyast.CmpOpKind{pyast.OpGt},
			Comparators: []pyast.Expr{pyast.Int(1)},
		}},
	}
	v, err := eval.EvalExpr(ctx, comp)
	require.NoError(t, err)
	term, err := proxies.Unwrap(v)
	require.NoError(t, err)
	lit := smt.Simplify(term)
	require.Equal(t, smt.OpSeqLit, lit.Op())
	require.Equal(t, 2, lit.NumArgs())
	first, _ := lit.Arg(0).IntLit()
	second, _ := lit.Arg(1).IntLit()
	assert.Equal(t, int64(20), first)
	assert.Equal(t, int64(30), second)
}

func TestOnlySingleNameAssignment(t *testing.T) {
	ctx := newCtx()

	// destructuring is out of the modeled subset
	unpack := &pyast.Assign{
		Targets: []pyast.Expr{&pyast.TupleExpr{Elts: []pyast.Expr{pyast.Var("a"), pyast.Var("b")}}},
		Value:   &pyast.TupleExpr{Elts: []pyast.Expr{pyast.Int(1), pyast.Str("x")}},
	}
	var unsup *fault.UnsupportedError
	require.ErrorAs(t, eval.EvalStmt(ctx, unpack), &unsup)

	// so is a = b = 1
	chained := &pyast.Assign{
		Targets: []pyast.Expr{pyast.Var("a"), pyast.Var("b")},
		Value:   pyast.Int(1),
	}
	require.ErrorAs(t, eval.EvalStmt(ctx, chained), &unsup)

	_, ok := ctx.Scope.Get("a")
	assert.False(t, ok)
}

func TestHalfBoundBranchVariableFails(t *testing.T) {
	ctx := newCtx()
	ctx.Scope.Set("p", proxies.NewBool(ctx.SMT.Const("p", smt.BoolSort())))
	stmt := &pyast.If{
		Test: pyast.Var("p"),
		Body: []pyast.Stmt{&pyast.Assign{Targets: []pyast.Expr{pyast.Var("y")}, Value: pyast.Int(1)}},
	}

	// y has no value on the path that skips the branch
	var unbound *fault.UnboundError
	require.ErrorAs(t, eval.EvalStmt(ctx, stmt), &unbound)
	assert.Equal(t, "y", unbound.Name)

	// an outer binding makes the same merge fine
	ctx = newCtx()
	ctx.Scope.Set("p", proxies.NewBool(ctx.SMT.Const("p", smt.BoolSort())))
	ctx.Scope.Set("y", proxies.NewInt(ctx.SMT.Int(0)))
	assert.NoError(t, eval.EvalStmt(ctx, stmt))
}

func TestRaiseFromRecordsCauseNames(t *testing.T) {
	ctx := newCtx()
	raise := &pyast.Raise{Exc: pyast.Var("ValueError"), Cause: pyast.Var("KeyError")}
	require.NoError(t, eval.EvalStmt(ctx, raise))

	excs := ctx.Exceptions.All()
	require.Len(t, excs, 1)
	assert.Contains(t, excs[0].Names, "ValueError")
	assert.Contains(t, excs[0].Names, "KeyError")
}
