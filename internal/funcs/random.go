package funcs

import (
	"github.com/covenant-dev/covenant/internal/eval"
	"github.com/covenant-dev/covenant/internal/fault"
	"github.com/covenant-dev/covenant/internal/proxies"
	"github.com/covenant-dev/covenant/internal/smt"
)

// The random module is modeled by fresh symbols with their documented
// bounds granted as assumptions: the draw is arbitrary but never
// outside the range the function promises.

func init() {
	for _, prefix := range []string{"random.", "random.Random."} {
		eval.RegisterFunc(prefix+"randint", randInt)
		eval.RegisterFunc(prefix+"randrange", randRange)
		eval.RegisterFunc(prefix+"random", randFloat)
		eval.RegisterFunc(prefix+"choice", randChoice)
	}
}

func intArg(args []proxies.Value, i int, label string) (*smt.Term, error) {
	v, ok := args[i].(*proxies.IntVal)
	if !ok {
		return nil, fault.Unsupported(label+" with a non-integer bound", args[i].Kind().String())
	}
	return proxies.Unwrap(v)
}

// randint draws from the closed range [a, b].
func randInt(ctx *eval.Context, args []proxies.Value, _ map[string]proxies.Value) (proxies.Value, error) {
	if len(args) != 2 {
		return nil, fault.Unsupported("call with mismatched arity to", "random.randint")
	}
	lo, err := intArg(args, 0, "random.randint")
	if err != nil {
		return nil, err
	}
	hi, err := intArg(args, 1, "random.randint")
	if err != nil {
		return nil, err
	}
	x := ctx.SMT.FreshConst("randint", smt.IntSort())
	ctx.Given.Add(smt.And(smt.Le(lo, x), smt.Le(x, hi)))
	return proxies.NewInt(x), nil
}

// randrange draws from the half-open range [a, b), or [0, a) with one
// argument.
func randRange(ctx *eval.Context, args []proxies.Value, _ map[string]proxies.Value) (proxies.Value, error) {
	var lo, hi *smt.Term
	var err error
	switch len(args) {
	case 1:
		lo = ctx.SMT.Int(0)
		if hi, err = intArg(args, 0, "random.randrange"); err != nil {
			return nil, err
		}
	case 2:
		if lo, err = intArg(args, 0, "random.randrange"); err != nil {
			return nil, err
		}
		if hi, err = intArg(args, 1, "random.randrange"); err != nil {
			return nil, err
		}
	default:
		return nil, fault.Unsupported("call with mismatched arity to", "random.randrange")
	}
	x := ctx.SMT.FreshConst("randrange", smt.IntSort())
	ctx.Given.Add(smt.And(smt.Le(lo, x), smt.Lt(x, hi)))
	return proxies.NewInt(x), nil
}

// random draws from [0, 1).
func randFloat(ctx *eval.Context, args []proxies.Value, _ map[string]proxies.Value) (proxies.Value, error) {
	if len(args) != 0 {
		return nil, fault.Unsupported("call with mismatched arity to", "random.random")
	}
	x := ctx.SMT.FreshConst("random", smt.RealSort())
	ctx.Given.Add(smt.And(smt.Le(ctx.SMT.Real(0), x), smt.Lt(x, ctx.SMT.Real(1))))
	return proxies.NewFloat(x), nil
}

// choice draws an arbitrary element of the sequence.
func randChoice(ctx *eval.Context, args []proxies.Value, _ map[string]proxies.Value) (proxies.Value, error) {
	if len(args) != 1 {
		return nil, fault.Unsupported("call with mismatched arity to", "random.choice")
	}
	seq, err := proxies.Unwrap(args[0])
	if err != nil {
		return nil, err
	}
	switch seq.Sort().Kind() {
	case smt.KindString:
		x := ctx.SMT.FreshConst("choice", smt.StringSort())
		ctx.Given.Add(smt.And(smt.Contains(seq, x), smt.Eq(smt.Length(x), ctx.SMT.Int(1))))
		return proxies.NewStr(x), nil
	case smt.KindSeq:
		x := ctx.SMT.FreshConst("choice", seq.Sort().Elem())
		ctx.Given.Add(smt.Contains(seq, x))
		return proxies.Wrap(x)
	default:
		return nil, fault.Unsupported("random.choice over a value of type", args[0].Kind().String())
	}
}
