package eval

import (
	"github.com/covenant-dev/covenant/internal/fault"
	"github.com/covenant-dev/covenant/internal/proxies"
	"github.com/covenant-dev/covenant/internal/pyast"
	"github.com/covenant-dev/covenant/internal/smt"
)

// evalMethod dispatches a method call on an evaluated receiver.
func evalMethod(ctx *Context, recv proxies.Value, name string, args []proxies.Value) (proxies.Value, error) {
	switch recv.(type) {
	case *proxies.StrVal:
		return evalStrMethod(ctx, recv, name, args)
	case *proxies.ListVal, *proxies.VarTupleVal:
		return evalSeqMethod(ctx, recv, name, args)
	}
	if p, ok := recv.(*proxies.PatternVal); ok {
		return evalPatternMethod(p, name, args)
	}
	return nil, fault.Unsupported("method on a value of type", recv.Kind().String()+"."+name)
}

func evalStrMethod(ctx *Context, recv proxies.Value, name string, args []proxies.Value) (proxies.Value, error) {
	switch name {
	case "startswith":
		if len(args) != 1 {
			return nil, arityError("str.startswith")
		}
		return proxies.StartsWith(recv, args[0])
	case "endswith":
		if len(args) != 1 {
			return nil, arityError("str.endswith")
		}
		return proxies.EndsWith(recv, args[0])
	case "count":
		if len(args) != 1 {
			return nil, arityError("str.count")
		}
		return proxies.CountOf(recv, args[0])
	case "find":
		return evalFind(recv, args, "str.find")
	case "index":
		v, err := evalFind(recv, args, "str.index")
		if err != nil {
			return nil, err
		}
		return raiseWhenMissing(ctx, v)
	default:
		return nil, fault.Unsupported("string method", name)
	}
}

func evalSeqMethod(ctx *Context, recv proxies.Value, name string, args []proxies.Value) (proxies.Value, error) {
	switch name {
	case "count":
		if len(args) != 1 {
			return nil, arityError("count")
		}
		return proxies.CountOf(recv, args[0])
	case "index":
		v, err := evalFind(recv, args, "index")
		if err != nil {
			return nil, err
		}
		return raiseWhenMissing(ctx, v)
	default:
		return nil, fault.Unsupported("sequence method", name)
	}
}

func evalFind(recv proxies.Value, args []proxies.Value, label string) (proxies.Value, error) {
	switch len(args) {
	case 1:
		return proxies.Find(recv, args[0], nil)
	case 2:
		return proxies.Find(recv, args[0], args[1])
	default:
		return nil, arityError(label)
	}
}

// index differs from find only in its failure mode: instead of
// returning -1 it raises ValueError. The raise is recorded on the path
// where the search fails; on every other path the value is the index.
func raiseWhenMissing(ctx *Context, v proxies.Value) (proxies.Value, error) {
	t, err := proxies.Unwrap(v)
	if err != nil {
		return nil, err
	}
	missing := smt.Eq(t, ctx.SMT.Int(-1))
	ctx.Exceptions.Add(ExceptionInfo{
		Names: pyast.BuiltinExceptionBases("ValueError"),
		Cond:  smt.And(smt.Not(ctx.Interrupted()), missing),
	})
	return v, nil
}

func evalPatternMethod(p *proxies.PatternVal, name string, args []proxies.Value) (proxies.Value, error) {
	if len(args) != 1 {
		return nil, arityError("pattern." + name)
	}
	switch name {
	case "fullmatch":
		return p.PatternMatch(args[0], proxies.MatchFull)
	case "match":
		return p.PatternMatch(args[0], proxies.MatchPrefix)
	case "search":
		return p.PatternMatch(args[0], proxies.MatchSearch)
	default:
		return nil, fault.Unsupported("pattern method", name)
	}
}

func arityError(label string) error {
	return fault.Unsupported("call with mismatched arity to", label)
}
