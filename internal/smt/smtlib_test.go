package smt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteQuery(t *testing.T) {
	ctx := NewContext()
	x := ctx.Const("x", IntSort())
	premise := Le(ctx.Int(0), x)
	goal := Le(ctx.Int(-1), x)

	var b strings.Builder
	require.NoError(t, WriteQuery(&b, []*Term{premise}, goal))
	out := b.String()

	assert.Contains(t, out, "(set-logic ALL)")
	assert.Contains(t, out, "(declare-const x Int)")
	assert.Contains(t, out, "(assert (<= 0 x))")
	assert.Contains(t, out, "(assert (not (<= (- 1) x)))")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "(check-sat)"))
}

func TestWriteQueryDeclaresFunctionsOnce(t *testing.T) {
	ctx := NewContext()
	f := ctx.FuncDecl("f", []Sort{IntSort()}, IntSort())
	goal := Eq(f.Apply(ctx.Int(1)), f.Apply(ctx.Int(2)))

	var b strings.Builder
	require.NoError(t, WriteQuery(&b, nil, goal))
	out := b.String()

	assert.Equal(t, 1, strings.Count(out, "(declare-fun f (Int) Int)"))
}

func TestStringSpellings(t *testing.T) {
	ctx := NewContext()
	s := ctx.Const("s", StringSort())
	xs := ctx.Const("xs", SeqSort(IntSort()))

	assert.Contains(t, Length(s).String(), "str.len")
	assert.Contains(t, Length(xs).String(), "seq.len")
	assert.Contains(t, Contains(s, ctx.Str("a")).String(), "str.contains")
	assert.Contains(t, Contains(xs, ctx.Int(1)).String(), "seq.contains")
}
