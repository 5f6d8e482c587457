package proxies

import (
	"github.com/covenant-dev/covenant/internal/fault"
	"github.com/covenant-dev/covenant/internal/smt"
)

// Add builds addition: numeric sum, or concatenation for strings, lists
// and tuples.
func Add(a, b Value) (Value, error) {
	a, b = promotePair(a, b)
	switch x := a.(type) {
	case *IntVal:
		if y, ok := b.(*IntVal); ok {
			return NewInt(smt.Add(x.t, y.t)), nil
		}
	case *FloatVal:
		if y, ok := b.(*FloatVal); ok {
			return NewFloat(smt.Add(x.t, y.t)), nil
		}
	case *StrVal:
		if y, ok := b.(*StrVal); ok {
			return NewStr(smt.Concat(x.t, y.t)), nil
		}
	case *ListVal:
		if y, ok := b.(*ListVal); ok {
			ta, tb, err := unwrapPair("+", x, y)
			if err != nil {
				return nil, err
			}
			return NewList(smt.Concat(ta, tb)), nil
		}
	case *VarTupleVal:
		if y, ok := b.(*VarTupleVal); ok {
			ta, tb, err := unwrapPair("+", x, y)
			if err != nil {
				return nil, err
			}
			return NewVarTuple(smt.Concat(ta, tb)), nil
		}
	case *FixedTupleVal:
		if y, ok := b.(*FixedTupleVal); ok {
			return NewFixedTuple(x.Ctx, append(append([]Value{}, x.Items...), y.Items...)...), nil
		}
	}
	return nil, mismatch("+", a, b)
}

// Sub builds numeric subtraction.
func Sub(a, b Value) (Value, error) { return numeric("-", a, b, smt.Sub) }

// Mul builds numeric multiplication.
func Mul(a, b Value) (Value, error) { return numeric("*", a, b, smt.Mul) }

// Pow builds numeric exponentiation.
func Pow(a, b Value) (Value, error) { return numeric("**", a, b, smt.Pow) }

func numeric(op string, a, b Value, build func(x, y *smt.Term) *smt.Term) (Value, error) {
	a, b = promotePair(a, b)
	switch x := a.(type) {
	case *IntVal:
		if y, ok := b.(*IntVal); ok {
			return NewInt(build(x.t, y.t)), nil
		}
	case *FloatVal:
		if y, ok := b.(*FloatVal); ok {
			return NewFloat(build(x.t, y.t)), nil
		}
	}
	return nil, mismatch(op, a, b)
}

// TrueDiv builds division; the result is always a float, so integer
// operands promote first.
func TrueDiv(a, b Value) (Value, error) {
	ta, err := asReal(a)
	if err != nil {
		return nil, mismatch("/", a, b)
	}
	tb, err := asReal(b)
	if err != nil {
		return nil, mismatch("/", a, b)
	}
	return NewFloat(smt.Div(ta, tb)), nil
}

func asReal(v Value) (*smt.Term, error) {
	switch x := v.(type) {
	case *IntVal:
		return smt.ToReal(x.t), nil
	case *FloatVal:
		return x.t, nil
	default:
		return nil, fault.Unsupported("numeric conversion of", v.Kind().String())
	}
}

// FloorDiv builds floor division over integers.
func FloorDiv(a, b Value) (Value, error) {
	x, xok := a.(*IntVal)
	y, yok := b.(*IntVal)
	if !xok || !yok {
		return nil, mismatch("//", a, b)
	}
	return NewInt(smt.FloorDiv(x.t, y.t)), nil
}

// Mod builds the modulo over integers, with the divisor's sign.
func Mod(a, b Value) (Value, error) {
	x, xok := a.(*IntVal)
	y, yok := b.(*IntVal)
	if !xok || !yok {
		return nil, mismatch("%", a, b)
	}
	return NewInt(smt.Mod(x.t, y.t)), nil
}

// Neg builds arithmetic negation.
func Neg(v Value) (Value, error) {
	switch x := v.(type) {
	case *IntVal:
		return NewInt(smt.Neg(x.t)), nil
	case *FloatVal:
		return NewFloat(smt.Neg(x.t)), nil
	default:
		return nil, &fault.SortMismatchError{Op: "unary -", Left: v.Kind().String()}
	}
}

// Pos is the unary plus, the identity on numbers.
func Pos(v Value) (Value, error) {
	switch v.(type) {
	case *IntVal, *FloatVal:
		return v, nil
	default:
		return nil, &fault.SortMismatchError{Op: "unary +", Left: v.Kind().String()}
	}
}

// Abs builds the absolute value of a number.
func Abs(v Value) (Value, error) {
	switch x := v.(type) {
	case *IntVal:
		zero := x.t.Context().Int(0)
		return NewInt(smt.Ite(smt.Lt(x.t, zero), smt.Neg(x.t), x.t)), nil
	case *FloatVal:
		zero := x.t.Context().Real(0)
		return NewFloat(smt.Ite(smt.Lt(x.t, zero), smt.Neg(x.t), x.t)), nil
	default:
		return nil, &fault.SortMismatchError{Op: "abs", Left: v.Kind().String()}
	}
}
