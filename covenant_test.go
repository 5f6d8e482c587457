package covenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenant-dev/covenant/internal/pyast"
)

func intParam(name string) *pyast.Param {
	return &pyast.Param{Name: name, Annotation: pyast.Var("int")}
}

func cmp(left pyast.Expr, op pyast.CmpOpKind, right pyast.Expr) *pyast.Compare {
	return &pyast.Compare{Left: left, Ops: []pyast.CmpOpKind{op}, Comparators: []pyast.Expr{right}}
}

func findingOf(t *testing.T, c *Conclusion, kind ObligationKind) Finding {
	t.Helper()
	for _, f := range c.Findings {
		if f.Kind == kind {
			return f
		}
	}
	t.Fatalf("no %s finding in %+v", kind, c.Findings)
	return Finding{}
}

func TestProvePostFromConstantFolding(t *testing.T) {
	fn := &pyast.FuncDef{
		Name:    "width",
		Returns: pyast.Var("int"),
		Body: []pyast.Stmt{
			&pyast.Return{Value: &pyast.Call{Func: pyast.Var("len"), Args: []pyast.Expr{pyast.Str("abcd")}}},
		},
	}
	c := &Contract{Post: []pyast.Expr{cmp(pyast.Var("result"), pyast.OpEq, pyast.Int(4))}}

	concl := NewProver().ProveFunc(fn, c)
	require.Equal(t, StatusProved, concl.Status, concl.Reason)
	assert.Equal(t, StatusProved, findingOf(t, concl, ObligationPost).Status)
}

func TestProvePostAcrossBranchMerge(t *testing.T) {
	fn := &pyast.FuncDef{
		Name:    "sign",
		Args:    []*pyast.Param{{Name: "p", Annotation: pyast.Var("bool")}},
		Returns: pyast.Var("int"),
		Body: []pyast.Stmt{
			&pyast.If{
				Test:   pyast.Var("p"),
				Body:   []pyast.Stmt{&pyast.Return{Value: pyast.Int(1)}},
				Orelse: []pyast.Stmt{&pyast.Return{Value: pyast.Int(-1)}},
			},
		},
	}
	c := &Contract{Post: []pyast.Expr{
		&pyast.BoolOp{Op: pyast.OpOr, Values: []pyast.Expr{
			cmp(pyast.Var("result"), pyast.OpEq, pyast.Int(1)),
			cmp(pyast.Var("result"), pyast.OpEq, pyast.Int(-1)),
		}},
	}}

	concl := NewProver().ProveFunc(fn, c)
	assert.Equal(t, StatusProved, concl.Status, concl.Reason)
}

func TestRefutePostWithCounterexample(t *testing.T) {
	fn := &pyast.FuncDef{
		Name:    "identity",
		Args:    []*pyast.Param{intParam("x")},
		Returns: pyast.Var("int"),
		Body:    []pyast.Stmt{&pyast.Return{Value: pyast.Var("x")}},
	}
	c := &Contract{Post: []pyast.Expr{cmp(pyast.Var("result"), pyast.OpGtE, pyast.Int(0))}}

	concl := NewProver().ProveFunc(fn, c)
	require.Equal(t, StatusRefuted, concl.Status)
	f := findingOf(t, concl, ObligationPost)
	assert.Equal(t, "x = -1", f.Counterexample)
}

func TestAssertDischargedByPrecondition(t *testing.T) {
	fn := &pyast.FuncDef{
		Name: "checked",
		Args: []*pyast.Param{intParam("x")},
		Body: []pyast.Stmt{
			&pyast.Assert{Test: cmp(pyast.Var("x"), pyast.OpGtE, pyast.Int(0))},
		},
	}
	c := &Contract{Pre: []pyast.Expr{cmp(pyast.Var("x"), pyast.OpGtE, pyast.Int(0))}}

	concl := NewProver().ProveFunc(fn, c)
	require.Equal(t, StatusProved, concl.Status, concl.Reason)
	assert.Equal(t, StatusProved, findingOf(t, concl, ObligationAssert).Status)

	// without the precondition the assert has a witness against it
	bare := NewProver().ProveFunc(fn, nil)
	assert.Equal(t, StatusRefuted, bare.Status)
}

func divFunc() *pyast.FuncDef {
	return &pyast.FuncDef{
		Name:    "div",
		Args:    []*pyast.Param{intParam("a"), intParam("b")},
		Returns: pyast.Var("int"),
		Body: []pyast.Stmt{
			&pyast.If{
				Test: cmp(pyast.Var("b"), pyast.OpEq, pyast.Int(0)),
				Body: []pyast.Stmt{&pyast.Raise{Exc: &pyast.Call{Func: pyast.Var("ZeroDivisionError")}}},
			},
			&pyast.Return{Value: &pyast.BinOp{
				Op: pyast.OpFloorDiv, Left: pyast.Var("a"), Right: pyast.Var("b"),
			}},
		},
	}
}

func TestDisallowedExceptionIsRefuted(t *testing.T) {
	concl := NewProver().ProveFunc(divFunc(), nil)
	require.Equal(t, StatusRefuted, concl.Status)
	f := findingOf(t, concl, ObligationRaise)
	assert.Equal(t, "ZeroDivisionError", f.Text)
}

func TestAllowedExceptionIsNotAnObligation(t *testing.T) {
	concl := NewProver().ProveFunc(divFunc(), &Contract{Raises: []string{"ZeroDivisionError"}})
	assert.Equal(t, StatusProved, concl.Status, concl.Reason)
	for _, f := range concl.Findings {
		assert.NotEqual(t, ObligationRaise, f.Kind)
	}
}

func TestAllowingTheBaseClassCoversSubclasses(t *testing.T) {
	concl := NewProver().ProveFunc(divFunc(), &Contract{Raises: []string{"ArithmeticError"}})
	assert.Equal(t, StatusProved, concl.Status, concl.Reason)
}

func TestPreconditionMakesExceptionUnreachable(t *testing.T) {
	c := &Contract{Pre: []pyast.Expr{cmp(pyast.Var("b"), pyast.OpNotEq, pyast.Int(0))}}
	concl := NewProver().ProveFunc(divFunc(), c)
	require.Equal(t, StatusProved, concl.Status, concl.Reason)
	assert.Equal(t, StatusProved, findingOf(t, concl, ObligationRaise).Status)
}

func TestRandomDrawProvenFromItsRange(t *testing.T) {
	fn := &pyast.FuncDef{
		Name:    "roll",
		Returns: pyast.Var("int"),
		Body: []pyast.Stmt{
			&pyast.Return{Value: &pyast.Call{
				Func: &pyast.Attribute{Value: pyast.Var("random"), Attr: "randint"},
				Args: []pyast.Expr{pyast.Int(1), pyast.Int(6)},
			}},
		},
	}
	c := &Contract{Post: []pyast.Expr{&pyast.Compare{
		Left:        pyast.Int(1),
		Ops:         []pyast.CmpOpKind{pyast.OpLtE, pyast.OpLtE},
		Comparators: []pyast.Expr{pyast.Var("result"), pyast.Int(6)},
	}}}

	concl := NewProver().ProveFunc(fn, c)
	assert.Equal(t, StatusProved, concl.Status, concl.Reason)
}

func TestUnannotatedParameterIsUnsupported(t *testing.T) {
	fn := &pyast.FuncDef{
		Name: "untyped",
		Args: []*pyast.Param{{Name: "x"}},
		Body: []pyast.Stmt{&pyast.Return{Value: pyast.Var("x")}},
	}
	concl := NewProver().ProveFunc(fn, nil)
	require.Equal(t, StatusUnsupported, concl.Status)
	assert.Contains(t, concl.Reason, "annotation")
}

func TestNoReturnSatisfiesPostVacuously(t *testing.T) {
	fn := &pyast.FuncDef{
		Name: "noop",
		Body: []pyast.Stmt{&pyast.Pass{}},
	}
	c := &Contract{Post: []pyast.Expr{cmp(pyast.Var("result"), pyast.OpEq, pyast.Int(0))}}
	concl := NewProver().ProveFunc(fn, c)
	assert.Equal(t, StatusProved, concl.Status, concl.Reason)
}

const sampleFile = `
functions:
  - kind: funcdef
    name: clamp_low
    args:
      - name: x
        annotation: {kind: name, id: int}
    returns: {kind: name, id: int}
    body:
      - kind: if
        test:
          kind: compare
          left: {kind: name, id: x}
          ops: ["<"]
          comparators: [{kind: const, value: 0}]
        body:
          - kind: return
            value: {kind: const, value: 0}
        orelse: []
      - kind: return
        value: {kind: name, id: x}
contracts:
  clamp_low:
    post:
      - kind: compare
        left: {kind: name, id: result}
        ops: [">="]
        comparators: [{kind: const, value: 0}]
`

func TestLoadDecodesFunctionsAndContracts(t *testing.T) {
	f, err := Load([]byte(sampleFile))
	require.NoError(t, err)
	require.Len(t, f.Funcs, 1)
	assert.Equal(t, "clamp_low", f.Funcs[0].Name)
	require.NotNil(t, f.Contract("clamp_low"))
	assert.Len(t, f.Contract("clamp_low").Post, 1)
	assert.Nil(t, f.Contract("missing"))
}

func TestLoadRejectsMalformedInput(t *testing.T) {
	_, err := Load([]byte("functions: [{kind: while}]"))
	assert.Error(t, err)

	// not mappings at all
	for _, src := range []string{":::", "just a string", "- a\n- b", ""} {
		_, err = Load([]byte(src))
		assert.Error(t, err, "%q", src)
	}
}

func TestProveFileCoversEveryFunction(t *testing.T) {
	f, err := Load([]byte(sampleFile))
	require.NoError(t, err)

	concls := NewProver().ProveFile(f)
	require.Len(t, concls, 1)
	assert.Equal(t, "clamp_low", concls[0].Func)
}

func TestStatusRollUp(t *testing.T) {
	tests := []struct {
		name     string
		findings []Finding
		want     Status
	}{
		{"empty", nil, StatusProved},
		{"all proved", []Finding{{Status: StatusProved}}, StatusProved},
		{"unknown wins over proved", []Finding{{Status: StatusProved}, {Status: StatusUnknown}}, StatusUnknown},
		{"refuted wins over unknown", []Finding{{Status: StatusUnknown}, {Status: StatusRefuted}}, StatusRefuted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rollUp(tt.findings))
		})
	}
}
