package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenant-dev/covenant/internal/proxies"
	"github.com/covenant-dev/covenant/internal/pyast"
	"github.com/covenant-dev/covenant/internal/smt"
)

func TestResolveSimple(t *testing.T) {
	ctx := smt.NewContext()
	tests := []struct {
		ann  pyast.Expr
		want proxies.Kind
	}{
		{pyast.Var("bool"), proxies.KindBool},
		{pyast.Var("int"), proxies.KindInt},
		{pyast.Var("float"), proxies.KindFloat},
		{pyast.Var("str"), proxies.KindStr},
		// forward references arrive as string literals
		{pyast.Str("int"), proxies.KindInt},
	}
	for _, tt := range tests {
		v, err := Resolve(ctx, "x", tt.ann)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, tt.want, v.Kind())
	}
}

func TestResolveGenerics(t *testing.T) {
	ctx := smt.NewContext()

	list := &pyast.Subscript{Value: pyast.Var("list"), Index: pyast.Var("int")}
	v, err := Resolve(ctx, "xs", list)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, proxies.KindList, v.Kind())

	set := &pyast.Subscript{Value: pyast.Var("set"), Index: pyast.Var("str")}
	v, err = Resolve(ctx, "s", set)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, proxies.KindSet, v.Kind())

	tup := &pyast.Subscript{
		Value: pyast.Var("tuple"),
		Index: &pyast.TupleExpr{Elts: []pyast.Expr{pyast.Var("int"), pyast.Var("...")}},
	}
	v, err = Resolve(ctx, "t", tup)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, proxies.KindVarTuple, v.Kind())

	dict := &pyast.Subscript{
		Value: pyast.Var("dict"),
		Index: &pyast.TupleExpr{Elts: []pyast.Expr{pyast.Var("str"), pyast.Var("int")}},
	}
	v, err = Resolve(ctx, "d", dict)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, proxies.KindDict, v.Kind())
}

func TestResolveUnknown(t *testing.T) {
	ctx := smt.NewContext()
	tests := []pyast.Expr{
		nil,
		pyast.Var("bytes"),
		&pyast.Subscript{Value: pyast.Var("dict"), Index: pyast.Var("str")},
		// fixed-arity tuples have no single element sort
		&pyast.Subscript{
			Value: pyast.Var("tuple"),
			Index: &pyast.TupleExpr{Elts: []pyast.Expr{pyast.Var("int"), pyast.Var("str")}},
		},
	}
	for _, ann := range tests {
		v, err := Resolve(ctx, "x", ann)
		require.NoError(t, err)
		assert.Nil(t, v)
	}
}

func TestResolvedSymbolCarriesName(t *testing.T) {
	ctx := smt.NewContext()
	v, err := Resolve(ctx, "count", pyast.Var("int"))
	require.NoError(t, err)
	term, err := proxies.Unwrap(v)
	require.NoError(t, err)
	assert.Equal(t, "count", term.Name())
}
