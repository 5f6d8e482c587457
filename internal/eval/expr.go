package eval

import (
	"github.com/covenant-dev/covenant/internal/annotations"
	"github.com/covenant-dev/covenant/internal/fault"
	"github.com/covenant-dev/covenant/internal/proxies"
	"github.com/covenant-dev/covenant/internal/pyast"
	"github.com/covenant-dev/covenant/internal/smt"
)

// EvalExpr evaluates an expression to a symbolic value.
func EvalExpr(ctx *Context, expr pyast.Expr) (proxies.Value, error) {
	switch e := expr.(type) {
	case *pyast.Const:
		return evalConst(ctx, e)
	case *pyast.Name:
		if v, ok := ctx.Scope.Get(e.ID); ok {
			return v, nil
		}
		return nil, &fault.UnboundError{Name: e.ID}
	case *pyast.UnaryOp:
		return evalUnary(ctx, e)
	case *pyast.BinOp:
		return evalBinOp(ctx, e)
	case *pyast.BoolOp:
		return evalBoolOp(ctx, e)
	case *pyast.Compare:
		return evalCompare(ctx, e)
	case *pyast.IfExp:
		return evalIfExp(ctx, e)
	case *pyast.Call:
		return evalCall(ctx, e)
	case *pyast.Subscript:
		return evalSubscript(ctx, e)
	case *pyast.ListExpr:
		return evalSeqDisplay(ctx, e.Elts, false)
	case *pyast.TupleExpr:
		return evalTupleDisplay(ctx, e.Elts)
	case *pyast.SetExpr:
		return evalSetDisplay(ctx, e.Elts)
	case *pyast.DictExpr:
		return nil, fault.Unsupported("dict display", "")
	case *pyast.ListComp:
		return evalListComp(ctx, e)
	case *pyast.Attribute:
		return nil, fault.Unsupported("attribute access", e.String())
	default:
		return nil, fault.Unsupported("expression", expr.String())
	}
}

func evalConst(ctx *Context, e *pyast.Const) (proxies.Value, error) {
	switch e.Kind {
	case pyast.ConstBool:
		return proxies.NewBool(ctx.SMT.Bool(e.Bool)), nil
	case pyast.ConstInt:
		return proxies.NewInt(ctx.SMT.Int(e.Int)), nil
	case pyast.ConstFloat:
		return proxies.NewFloat(ctx.SMT.Real(e.Float)), nil
	case pyast.ConstStr:
		return proxies.NewStr(ctx.SMT.Str(e.Str)), nil
	default:
		return nil, fault.Unsupported("constant", e.String())
	}
}

func evalUnary(ctx *Context, e *pyast.UnaryOp) (proxies.Value, error) {
	v, err := EvalExpr(ctx, e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case pyast.OpNot:
		b, err := proxies.AsBool(v)
		if err != nil {
			return nil, err
		}
		return proxies.NewBool(smt.Not(b)), nil
	case pyast.OpUSub:
		return proxies.Neg(v)
	case pyast.OpUAdd:
		return proxies.Pos(v)
	default:
		return nil, fault.Unsupported("unary operator", e.String())
	}
}

func evalBinOp(ctx *Context, e *pyast.BinOp) (proxies.Value, error) {
	left, err := EvalExpr(ctx, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := EvalExpr(ctx, e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case pyast.OpAdd:
		return proxies.Add(left, right)
	case pyast.OpSub:
		return proxies.Sub(left, right)
	case pyast.OpMult:
		return proxies.Mul(left, right)
	case pyast.OpDiv:
		return proxies.TrueDiv(left, right)
	case pyast.OpFloorDiv:
		return proxies.FloorDiv(left, right)
	case pyast.OpMod:
		return proxies.Mod(left, right)
	case pyast.OpPow:
		return proxies.Pow(left, right)
	default:
		return nil, fault.Unsupported("binary operator", e.String())
	}
}

func evalBoolOp(ctx *Context, e *pyast.BoolOp) (proxies.Value, error) {
	out := ctx.SMT.Bool(e.Op == pyast.OpAnd)
	for _, sub := range e.Values {
		v, err := EvalExpr(ctx, sub)
		if err != nil {
			return nil, err
		}
		b, err := proxies.AsBool(v)
		if err != nil {
			return nil, err
		}
		if e.Op == pyast.OpAnd {
			out = smt.And(out, b)
		} else {
			out = smt.Or(out, b)
		}
	}
	return proxies.NewBool(out), nil
}

// A comparison chain a < b < c means a < b and b < c; each middle
// operand evaluates once.
func evalCompare(ctx *Context, e *pyast.Compare) (proxies.Value, error) {
	left, err := EvalExpr(ctx, e.Left)
	if err != nil {
		return nil, err
	}
	out := ctx.SMT.True()
	for i, op := range e.Ops {
		right, err := EvalExpr(ctx, e.Comparators[i])
		if err != nil {
			return nil, err
		}
		link, err := compareOnce(op, left, right)
		if err != nil {
			return nil, err
		}
		b, err := proxies.AsBool(link)
		if err != nil {
			return nil, err
		}
		out = smt.And(out, b)
		left = right
	}
	return proxies.NewBool(out), nil
}

func compareOnce(op pyast.CmpOpKind, left, right proxies.Value) (proxies.Value, error) {
	switch op {
	case pyast.OpEq:
		return proxies.Eq(left, right)
	case pyast.OpNotEq:
		return proxies.Ne(left, right)
	case pyast.OpLt:
		return proxies.Lt(left, right)
	case pyast.OpLtE:
		return proxies.Le(left, right)
	case pyast.OpGt:
		return proxies.Gt(left, right)
	case pyast.OpGtE:
		return proxies.Ge(left, right)
	case pyast.OpIn:
		return proxies.Contains(right, left)
	case pyast.OpNotIn:
		v, err := proxies.Contains(right, left)
		if err != nil {
			return nil, err
		}
		b, err := proxies.AsBool(v)
		if err != nil {
			return nil, err
		}
		return proxies.NewBool(smt.Not(b)), nil
	default:
		return nil, fault.Unsupported("comparison operator", "")
	}
}

func evalIfExp(ctx *Context, e *pyast.IfExp) (proxies.Value, error) {
	tv, err := EvalExpr(ctx, e.Test)
	if err != nil {
		return nil, err
	}
	test, err := proxies.AsBool(tv)
	if err != nil {
		return nil, err
	}
	body, err := EvalExpr(ctx, e.Body)
	if err != nil {
		return nil, err
	}
	orelse, err := EvalExpr(ctx, e.Orelse)
	if err != nil {
		return nil, err
	}
	return proxies.IfExpr(test, body, orelse)
}

func evalCall(ctx *Context, e *pyast.Call) (proxies.Value, error) {
	args := make([]proxies.Value, len(e.Args))
	for i, a := range e.Args {
		v, err := EvalExpr(ctx, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	kwargs := map[string]proxies.Value{}
	for _, kw := range e.Keywords {
		v, err := EvalExpr(ctx, kw.Value)
		if err != nil {
			return nil, err
		}
		kwargs[kw.Name] = v
	}

	switch fn := e.Func.(type) {
	case *pyast.Name:
		for _, d := range fn.Defs {
			if def, ok := d.(*pyast.FuncDef); ok {
				return evalUserCall(ctx, def, args)
			}
		}
		qual := fn.Qual
		if qual == "" {
			qual = fn.ID
		}
		if h, ok := lookupFunc(qual); ok {
			return h(ctx, args, kwargs)
		}
		return nil, fault.Unsupported("call to", qual)
	case *pyast.Attribute:
		if qual, ok := dottedName(fn); ok {
			if h, ok := lookupFunc(qual); ok {
				return h(ctx, args, kwargs)
			}
		}
		recv, err := EvalExpr(ctx, fn.Value)
		if err != nil {
			return nil, err
		}
		return evalMethod(ctx, recv, fn.Attr, args)
	default:
		return nil, fault.Unsupported("call target", e.Func.String())
	}
}

// dottedName flattens an attribute chain of plain names into one
// qualified name.
func dottedName(e pyast.Expr) (string, bool) {
	switch n := e.(type) {
	case *pyast.Name:
		return n.ID, true
	case *pyast.Attribute:
		base, ok := dottedName(n.Value)
		if !ok {
			return "", false
		}
		return base + "." + n.Attr, true
	default:
		return "", false
	}
}

// evalUserCall inlines a called function body. A call already on the
// trace is recursion: the body is not expanded again, the call becomes
// an application of an uninterpreted function with the callee's
// signature, so any fact provable about it holds for every
// interpretation.
func evalUserCall(ctx *Context, fn *pyast.FuncDef, args []proxies.Value) (proxies.Value, error) {
	if len(args) != len(fn.Args) {
		return nil, fault.Unsupported("call with mismatched arity to", fn.Name)
	}
	if ctx.Trace.Has(fn.Name) {
		return summarizeCall(ctx, fn, args)
	}
	release := ctx.Trace.Guard(fn.Name)
	defer release()

	callCtx := ctx.MakeCall()
	for i, p := range fn.Args {
		callCtx.Scope.Set(p.Name, args[i])
	}
	if err := EvalBody(callCtx, fn.Body); err != nil {
		return nil, err
	}
	rets := callCtx.Returns.All()
	if len(rets) == 0 {
		return nil, fault.Unsupported("call to a function with no return", fn.Name)
	}
	result := rets[0].Value
	for _, r := range rets[1:] {
		merged, err := proxies.IfExpr(r.Cond, r.Value, result)
		if err != nil {
			return nil, err
		}
		result = merged
	}
	return result, nil
}

func summarizeCall(ctx *Context, fn *pyast.FuncDef, args []proxies.Value) (proxies.Value, error) {
	rng, ok := annotations.SortOf(fn.Returns)
	if !ok {
		return nil, fault.Unsupported("recursive call without a usable return annotation", fn.Name)
	}
	terms := make([]*smt.Term, len(args))
	domain := make([]smt.Sort, len(args))
	for i, a := range args {
		t, err := proxies.Unwrap(a)
		if err != nil {
			return nil, err
		}
		terms[i] = t
		domain[i] = t.Sort()
	}
	decl := ctx.SMT.FuncDecl(fn.Name, domain, rng)
	return proxies.Wrap(decl.Apply(terms...))
}

func evalSubscript(ctx *Context, e *pyast.Subscript) (proxies.Value, error) {
	base, err := EvalExpr(ctx, e.Value)
	if err != nil {
		return nil, err
	}
	if sl, ok := e.Index.(*pyast.Slice); ok {
		var lo, hi proxies.Value
		if sl.Lo != nil {
			if lo, err = EvalExpr(ctx, sl.Lo); err != nil {
				return nil, err
			}
		}
		if sl.Hi != nil {
			if hi, err = EvalExpr(ctx, sl.Hi); err != nil {
				return nil, err
			}
		}
		return proxies.GetSlice(base, lo, hi)
	}
	index, err := EvalExpr(ctx, e.Index)
	if err != nil {
		return nil, err
	}
	return proxies.GetItem(base, index)
}

func evalSeqDisplay(ctx *Context, elts []pyast.Expr, asTuple bool) (proxies.Value, error) {
	if len(elts) == 0 {
		return nil, fault.Unsupported("empty sequence display", "")
	}
	terms := make([]*smt.Term, len(elts))
	for i, el := range elts {
		v, err := EvalExpr(ctx, el)
		if err != nil {
			return nil, err
		}
		t, err := proxies.Unwrap(v)
		if err != nil {
			return nil, err
		}
		terms[i] = t
	}
	elem := terms[0].Sort()
	for _, t := range terms[1:] {
		if !t.Sort().Equal(elem) {
			return nil, fault.Unsupported("sequence display with mixed element types", "")
		}
	}
	seq := ctx.SMT.Seq(elem, terms...)
	if asTuple {
		return proxies.NewVarTuple(seq), nil
	}
	return proxies.NewList(seq), nil
}

func evalTupleDisplay(ctx *Context, elts []pyast.Expr) (proxies.Value, error) {
	items := make([]proxies.Value, len(elts))
	for i, el := range elts {
		v, err := EvalExpr(ctx, el)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return proxies.NewFixedTuple(ctx.SMT, items...), nil
}

func evalSetDisplay(ctx *Context, elts []pyast.Expr) (proxies.Value, error) {
	if len(elts) == 0 {
		return nil, fault.Unsupported("empty set display", "")
	}
	terms := make([]*smt.Term, len(elts))
	for i, el := range elts {
		v, err := EvalExpr(ctx, el)
		if err != nil {
			return nil, err
		}
		t, err := proxies.Unwrap(v)
		if err != nil {
			return nil, err
		}
		terms[i] = t
	}
	elem := terms[0].Sort()
	for _, t := range terms[1:] {
		if !t.Sort().Equal(elem) {
			return nil, fault.Unsupported("set display with mixed element types", "")
		}
	}
	return proxies.NewSet(ctx.SMT.Set(elem, terms...)), nil
}

// A comprehension unrolls over its source, so the source must reduce
// to a known sequence and every filter to a known truth value. Anything
// less concrete would need quantifiers.
func evalListComp(ctx *Context, e *pyast.ListComp) (proxies.Value, error) {
	src, err := EvalExpr(ctx, e.Iter)
	if err != nil {
		return nil, err
	}
	t, err := proxies.Unwrap(src)
	if err != nil {
		return nil, err
	}
	lit := smt.Simplify(t)
	if lit.Op() != smt.OpSeqLit {
		return nil, fault.Unsupported("comprehension over a non-literal sequence", "")
	}
	var kept []*smt.Term
	for i := 0; i < lit.NumArgs(); i++ {
		child := ctx.MakeChild()
		item, err := proxies.Wrap(lit.Arg(i))
		if err != nil {
			return nil, err
		}
		child.Scope.Set(e.Target, item)
		keep := true
		for _, cond := range e.Ifs {
			cv, err := EvalExpr(child, cond)
			if err != nil {
				return nil, err
			}
			b, err := proxies.AsBool(cv)
			if err != nil {
				return nil, err
			}
			truth, ok := smt.Simplify(b).BoolLit()
			if !ok {
				return nil, fault.Unsupported("comprehension filter that does not reduce to a constant", "")
			}
			if !truth {
				keep = false
				break
			}
		}
		if !keep {
			continue
		}
		ev, err := EvalExpr(child, e.Elt)
		if err != nil {
			return nil, err
		}
		et, err := proxies.Unwrap(ev)
		if err != nil {
			return nil, err
		}
		kept = append(kept, et)
	}
	if len(kept) == 0 {
		return nil, fault.Unsupported("comprehension with no surviving elements", "")
	}
	return proxies.NewList(ctx.SMT.Seq(kept[0].Sort(), kept...)), nil
}
