package funcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenant-dev/covenant/internal/eval"
	"github.com/covenant-dev/covenant/internal/proxies"
	"github.com/covenant-dev/covenant/internal/pyast"
	"github.com/covenant-dev/covenant/internal/smt"
	"github.com/covenant-dev/covenant/internal/solve"
)

func newCtx() *eval.Context {
	return eval.NewContext(smt.NewContext())
}

func evalCall(t *testing.T, ctx *eval.Context, fn string, args ...pyast.Expr) proxies.Value {
	t.Helper()
	var target pyast.Expr = pyast.Var(fn)
	v, err := eval.EvalExpr(ctx, &pyast.Call{
		Func: target,
		Args: args,
	})
	require.NoError(t, err)
	return v
}

func intOf(t *testing.T, v proxies.Value) int64 {
	t.Helper()
	term, err := proxies.Unwrap(v)
	require.NoError(t, err)
	n, ok := smt.Simplify(term).IntLit()
	require.True(t, ok)
	return n
}

func TestLen(t *testing.T) {
	ctx := newCtx()
	v := evalCall(t, ctx, "len", pyast.Str("abcd"))
	assert.Equal(t, int64(4), intOf(t, v))
}

func TestAbs(t *testing.T) {
	ctx := newCtx()
	v := evalCall(t, ctx, "abs", pyast.Int(-5))
	assert.Equal(t, int64(5), intOf(t, v))
}

func TestIntTruncatesTowardZero(t *testing.T) {
	ctx := newCtx()
	assert.Equal(t, int64(2), intOf(t, evalCall(t, ctx, "int", pyast.Float(2.7))))
	assert.Equal(t, int64(-2), intOf(t, evalCall(t, ctx, "int", pyast.Float(-2.7))))
	assert.Equal(t, int64(1), intOf(t, evalCall(t, ctx, "int", pyast.Bool(true))))
}

func TestMinMax(t *testing.T) {
	ctx := newCtx()
	assert.Equal(t, int64(1), intOf(t, evalCall(t, ctx, "min", pyast.Int(3), pyast.Int(1), pyast.Int(2))))
	assert.Equal(t, int64(3), intOf(t, evalCall(t, ctx, "max", pyast.Int(3), pyast.Int(1), pyast.Int(2))))
}

func TestRandintBoundsAreAssumed(t *testing.T) {
	ctx := newCtx()
	v := evalCall(t, ctx, "random.randint", pyast.Int(0), pyast.Int(5))
	require.Equal(t, proxies.KindInt, v.Kind())
	term, err := proxies.Unwrap(v)
	require.NoError(t, err)

	premises := ctx.Given.All()
	require.Len(t, premises, 1)

	// the assumptions prove the draw's documented range
	verdict := solve.Prove(premises, smt.And(
		smt.Le(ctx.SMT.Int(0), term),
		smt.Le(term, ctx.SMT.Int(5)),
	))
	assert.Equal(t, solve.Proved, verdict.Outcome)

	// but not a tighter one
	verdict = solve.Prove(premises, smt.Le(term, ctx.SMT.Int(4)))
	assert.Equal(t, solve.Unknown, verdict.Outcome)
}

func TestRandrangeIsHalfOpen(t *testing.T) {
	ctx := newCtx()
	v := evalCall(t, ctx, "random.randrange", pyast.Int(10))
	term, err := proxies.Unwrap(v)
	require.NoError(t, err)

	verdict := solve.Prove(ctx.Given.All(), smt.Lt(term, ctx.SMT.Int(10)))
	assert.Equal(t, solve.Proved, verdict.Outcome)
}

func TestRandomUnitInterval(t *testing.T) {
	ctx := newCtx()
	v := evalCall(t, ctx, "random.random")
	assert.Equal(t, proxies.KindFloat, v.Kind())
	assert.Len(t, ctx.Given.All(), 1)
}

func TestChoiceDrawsFromSequence(t *testing.T) {
	ctx := newCtx()
	v := evalCall(t, ctx, "random.choice",
		&pyast.ListExpr{Elts: []pyast.Expr{pyast.Int(1), pyast.Int(2), pyast.Int(3)}})
	assert.Equal(t, proxies.KindInt, v.Kind())

	premises := ctx.Given.All()
	require.Len(t, premises, 1)
	assert.Equal(t, smt.OpContains, premises[0].Op())
}

func TestMethodAliasOnRandomInstance(t *testing.T) {
	ctx := newCtx()
	v, err := eval.EvalExpr(ctx, &pyast.Call{
		Func: &pyast.Attribute{Value: &pyast.Attribute{Value: pyast.Var("random"), Attr: "Random"}, Attr: "randint"},
		Args: []pyast.Expr{pyast.Int(1), pyast.Int(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, proxies.KindInt, v.Kind())
}

func TestReCompileNeedsLiteralPattern(t *testing.T) {
	ctx := newCtx()
	v := evalCall(t, ctx, "re.compile", pyast.Str("[0-9]+"))
	assert.Equal(t, proxies.KindPattern, v.Kind())

	ctx.Scope.Set("s", proxies.NewStr(ctx.SMT.Const("s", smt.StringSort())))
	_, err := eval.EvalExpr(ctx, &pyast.Call{
		Func: pyast.Var("re.compile"),
		Args: []pyast.Expr{pyast.Var("s")},
	})
	assert.Error(t, err)
}

func TestReMatchFunctions(t *testing.T) {
	ctx := newCtx()
	v, err := eval.EvalExpr(ctx, &pyast.Call{
		Func: &pyast.Attribute{Value: pyast.Var("re"), Attr: "fullmatch"},
		Args: []pyast.Expr{pyast.Str("[a-z]+"), pyast.Str("abc")},
	})
	require.NoError(t, err)
	b, err := proxies.AsBool(v)
	require.NoError(t, err)
	truth, ok := smt.Simplify(b).BoolLit()
	require.True(t, ok)
	assert.True(t, truth)
}
