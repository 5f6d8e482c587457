package proxies

import (
	"github.com/covenant-dev/covenant/internal/fault"
	"github.com/covenant-dev/covenant/internal/smt"
)

// Eq builds the equality of two values. Operands must share a variant,
// modulo int-to-float promotion; fixed tuples compare element-wise and
// tuples of different arity are simply unequal.
func Eq(a, b Value) (Value, error) {
	a, b = promotePair(a, b)
	if at, ok := a.(*FixedTupleVal); ok {
		if bt, ok := b.(*FixedTupleVal); ok {
			return tupleEq(at, bt)
		}
	}
	if a.Kind() != b.Kind() {
		return nil, mismatch("==", a, b)
	}
	ta, tb, err := unwrapPair("==", a, b)
	if err != nil {
		return nil, err
	}
	return NewBool(smt.Eq(ta, tb)), nil
}

// Ne builds the disequality of two values.
func Ne(a, b Value) (Value, error) {
	eq, err := Eq(a, b)
	if err != nil {
		return nil, err
	}
	return NewBool(smt.Not(eq.term())), nil
}

// Lt builds a strict less-than with the subject language's total order:
// numeric order for numbers, lexicographic order with strict prefixes
// first for strings, lists and tuples.
func Lt(a, b Value) (Value, error) { return order("<", a, b, true) }

// Le builds a non-strict less-than.
func Le(a, b Value) (Value, error) { return order("<=", a, b, false) }

// Gt builds a strict greater-than.
func Gt(a, b Value) (Value, error) { return order(">", b, a, true) }

// Ge builds a non-strict greater-than.
func Ge(a, b Value) (Value, error) { return order(">=", b, a, false) }

func order(op string, a, b Value, strict bool) (Value, error) {
	a, b = promotePair(a, b)
	if at, ok := a.(*FixedTupleVal); ok {
		if bt, ok := b.(*FixedTupleVal); ok {
			t, err := tupleLess(at.Ctx, at.Items, bt.Items, strict)
			if err != nil {
				return nil, err
			}
			return NewBool(t), nil
		}
	}
	if a.Kind() != b.Kind() {
		return nil, mismatch(op, a, b)
	}
	switch a.Kind() {
	case KindInt, KindFloat, KindStr, KindList, KindVarTuple:
	default:
		return nil, mismatch(op, a, b)
	}
	ta, tb, err := unwrapPair(op, a, b)
	if err != nil {
		return nil, err
	}
	if strict {
		return NewBool(smt.Lt(ta, tb)), nil
	}
	return NewBool(smt.Le(ta, tb)), nil
}

func tupleEq(a, b *FixedTupleVal) (Value, error) {
	if len(a.Items) != len(b.Items) {
		return NewBool(a.Ctx.False()), nil
	}
	out := a.Ctx.True()
	for i := range a.Items {
		eq, err := Eq(a.Items[i], b.Items[i])
		if err != nil {
			return nil, err
		}
		out = smt.And(out, eq.term())
	}
	return NewBool(out), nil
}

// tupleLess unrolls the lexicographic order over known arities:
// a < b iff a0 < b0, or a0 == b0 and the tails compare.
func tupleLess(ctx *smt.Context, a, b []Value, strict bool) (*smt.Term, error) {
	if len(a) == 0 {
		return ctx.Bool(!strict || len(b) > 0), nil
	}
	if len(b) == 0 {
		return ctx.False(), nil
	}
	head, err := Lt(a[0], b[0])
	if err != nil {
		return nil, err
	}
	headEq, err := Eq(a[0], b[0])
	if err != nil {
		return nil, err
	}
	rest, err := tupleLess(ctx, a[1:], b[1:], strict)
	if err != nil {
		return nil, err
	}
	return smt.Or(head.term(), smt.And(headEq.term(), rest)), nil
}

func unwrapPair(op string, a, b Value) (*smt.Term, *smt.Term, error) {
	ta, err := Unwrap(a)
	if err != nil {
		return nil, nil, err
	}
	tb, err := Unwrap(b)
	if err != nil {
		return nil, nil, err
	}
	if !ta.Sort().Equal(tb.Sort()) {
		return nil, nil, &fault.SortMismatchError{Op: op, Left: ta.Sort().String(), Right: tb.Sort().String()}
	}
	return ta, tb, nil
}

func mismatch(op string, a, b Value) error {
	return &fault.SortMismatchError{Op: op, Left: a.Kind().String(), Right: b.Kind().String()}
}
