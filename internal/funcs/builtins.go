// Package funcs models the library functions contract bodies may call.
// Each handler registers itself under the function's qualified name and
// builds a symbolic result, adding assumptions where the modeled
// function guarantees them. Importing the package (usually blank) is
// what arms the registry.
package funcs

import (
	"github.com/covenant-dev/covenant/internal/eval"
	"github.com/covenant-dev/covenant/internal/fault"
	"github.com/covenant-dev/covenant/internal/proxies"
	"github.com/covenant-dev/covenant/internal/smt"
)

func init() {
	eval.RegisterFunc("builtins.len", builtinLen)
	eval.RegisterFunc("builtins.abs", builtinAbs)
	eval.RegisterFunc("builtins.bool", builtinBool)
	eval.RegisterFunc("builtins.int", builtinInt)
	eval.RegisterFunc("builtins.float", builtinFloat)
	eval.RegisterFunc("builtins.min", builtinMin)
	eval.RegisterFunc("builtins.max", builtinMax)
}

func one(args []proxies.Value, label string) (proxies.Value, error) {
	if len(args) != 1 {
		return nil, fault.Unsupported("call with mismatched arity to", label)
	}
	return args[0], nil
}

func builtinLen(_ *eval.Context, args []proxies.Value, _ map[string]proxies.Value) (proxies.Value, error) {
	v, err := one(args, "len")
	if err != nil {
		return nil, err
	}
	return proxies.Len(v)
}

func builtinAbs(_ *eval.Context, args []proxies.Value, _ map[string]proxies.Value) (proxies.Value, error) {
	v, err := one(args, "abs")
	if err != nil {
		return nil, err
	}
	return proxies.Abs(v)
}

func builtinBool(_ *eval.Context, args []proxies.Value, _ map[string]proxies.Value) (proxies.Value, error) {
	v, err := one(args, "bool")
	if err != nil {
		return nil, err
	}
	b, err := proxies.AsBool(v)
	if err != nil {
		return nil, err
	}
	return proxies.NewBool(b), nil
}

// int() truncates toward zero, which is not the solver's to_int: that
// one floors. Negative values negate, floor, negate back.
func builtinInt(_ *eval.Context, args []proxies.Value, _ map[string]proxies.Value) (proxies.Value, error) {
	v, err := one(args, "int")
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case *proxies.IntVal:
		return x, nil
	case *proxies.BoolVal:
		t, err := proxies.Unwrap(x)
		if err != nil {
			return nil, err
		}
		ctx := t.Context()
		return proxies.NewInt(smt.Ite(t, ctx.Int(1), ctx.Int(0))), nil
	case *proxies.FloatVal:
		t, err := proxies.Unwrap(x)
		if err != nil {
			return nil, err
		}
		ctx := t.Context()
		neg := smt.Neg(smt.ToInt(smt.Neg(t)))
		return proxies.NewInt(smt.Ite(smt.Lt(t, ctx.Real(0)), neg, smt.ToInt(t))), nil
	default:
		return nil, fault.Unsupported("int() of a value of type", v.Kind().String())
	}
}

func builtinFloat(_ *eval.Context, args []proxies.Value, _ map[string]proxies.Value) (proxies.Value, error) {
	v, err := one(args, "float")
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case *proxies.FloatVal:
		return x, nil
	case *proxies.IntVal:
		t, err := proxies.Unwrap(x)
		if err != nil {
			return nil, err
		}
		return proxies.NewFloat(smt.ToReal(t)), nil
	default:
		return nil, fault.Unsupported("float() of a value of type", v.Kind().String())
	}
}

func builtinMin(_ *eval.Context, args []proxies.Value, _ map[string]proxies.Value) (proxies.Value, error) {
	return pickExtreme(args, "min", proxies.Lt)
}

func builtinMax(_ *eval.Context, args []proxies.Value, _ map[string]proxies.Value) (proxies.Value, error) {
	return pickExtreme(args, "max", proxies.Gt)
}

func pickExtreme(args []proxies.Value, label string, wins func(a, b proxies.Value) (proxies.Value, error)) (proxies.Value, error) {
	if len(args) < 2 {
		return nil, fault.Unsupported("call with mismatched arity to", label)
	}
	out := args[0]
	for _, a := range args[1:] {
		better, err := wins(a, out)
		if err != nil {
			return nil, err
		}
		cond, err := proxies.AsBool(better)
		if err != nil {
			return nil, err
		}
		out, err = proxies.IfExpr(cond, a, out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
