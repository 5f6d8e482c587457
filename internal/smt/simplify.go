package smt

import (
	"math"
	"regexp"
)

// TermEqual reports structural equality of two terms.
func TermEqual(a, b *Term) bool {
	if a == b {
		return true
	}
	if a.op != b.op || !a.sort.Equal(b.sort) || len(a.args) != len(b.args) {
		return false
	}
	if a.name != b.name || a.bval != b.bval || a.ival != b.ival || a.sval != b.sval || a.decl != b.decl {
		return false
	}
	if a.op == OpRealLit && a.fval != b.fval {
		return false
	}
	for i := range a.args {
		if !TermEqual(a.args[i], b.args[i]) {
			return false
		}
	}
	return true
}

func isGround(t *Term) bool {
	switch t.op {
	case OpBoolLit, OpIntLit, OpRealLit, OpStrLit, OpReLit:
		return true
	case OpSeqLit, OpSetLit:
		for _, a := range t.args {
			if !isGround(a) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// litEqual decides equality of two terms when it can. known is false when
// the terms are not ground and not structurally identical, meaning the
// answer depends on a model.
func litEqual(a, b *Term) (eq, known bool) {
	if TermEqual(a, b) {
		return true, true
	}
	if !isGround(a) || !isGround(b) {
		return false, false
	}
	switch a.op {
	case OpSeqLit:
		if b.op != OpSeqLit || len(a.args) != len(b.args) {
			return false, true
		}
		for i := range a.args {
			e, k := litEqual(a.args[i], b.args[i])
			if !k {
				return false, false
			}
			if !e {
				return false, true
			}
		}
		return true, true
	case OpSetLit:
		if b.op != OpSetLit {
			return false, true
		}
		sub := func(xs, ys []*Term) (bool, bool) {
			for _, x := range xs {
				found := false
				for _, y := range ys {
					e, k := litEqual(x, y)
					if !k {
						return false, false
					}
					if e {
						found = true
						break
					}
				}
				if !found {
					return false, true
				}
			}
			return true, true
		}
		ab, k := sub(a.args, b.args)
		if !k || !ab {
			return ab, k
		}
		return sub(b.args, a.args)
	default:
		// distinct ground scalar literals of one sort are unequal
		return false, true
	}
}

// cmpGround orders two ground terms of one sort: ints and reals
// numerically, strings and literal sequences lexicographically with a
// strict prefix ordering first.
func cmpGround(a, b *Term) (c int, ok bool) {
	switch a.op {
	case OpIntLit:
		if b.op != OpIntLit {
			return 0, false
		}
		return cmpInt(a.ival, b.ival), true
	case OpRealLit:
		if b.op != OpRealLit {
			return 0, false
		}
		switch {
		case a.fval < b.fval:
			return -1, true
		case a.fval > b.fval:
			return 1, true
		}
		return 0, true
	case OpStrLit:
		if b.op != OpStrLit {
			return 0, false
		}
		switch {
		case a.sval < b.sval:
			return -1, true
		case a.sval > b.sval:
			return 1, true
		}
		return 0, true
	case OpSeqLit:
		if b.op != OpSeqLit {
			return 0, false
		}
		n := len(a.args)
		if len(b.args) < n {
			n = len(b.args)
		}
		for i := 0; i < n; i++ {
			c, ok := cmpGround(a.args[i], b.args[i])
			if !ok {
				return 0, false
			}
			if c != 0 {
				return c, true
			}
		}
		return cmpInt(int64(len(a.args)), int64(len(b.args))), true
	default:
		return 0, false
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Simplify folds the term as far as constant operands allow. The result
// is semantically equal to the input; folding never invents a value for
// an operation the subject language leaves undefined (division by a
// zero literal stays unfolded).
func Simplify(t *Term) *Term {
	if len(t.args) == 0 {
		return t
	}
	args := make([]*Term, len(t.args))
	changed := false
	for i, a := range t.args {
		args[i] = Simplify(a)
		if args[i] != a {
			changed = true
		}
	}
	cur := t
	if changed {
		dup := *t
		dup.args = args
		cur = &dup
	}
	if folded := fold(cur); folded != nil {
		return folded
	}
	return cur
}

// complementary reports whether one term is exactly the negation of the
// other.
func complementary(a, b *Term) bool {
	if a.op == OpNot && TermEqual(a.args[0], b) {
		return true
	}
	return b.op == OpNot && TermEqual(b.args[0], a)
}

// fold applies one layer of rules to a term whose arguments are already
// simplified. It returns nil when no rule applies.
func fold(t *Term) *Term {
	ctx := t.ctx
	arg := func(i int) *Term { return t.args[i] }
	switch t.op {
	case OpNot:
		if v, ok := arg(0).BoolLit(); ok {
			return ctx.Bool(!v)
		}
		if arg(0).op == OpNot {
			return arg(0).args[0]
		}
	case OpAnd, OpOr:
		zero := t.op == OpOr // absorbing literal value
		var keep []*Term
		for _, a := range t.args {
			if v, ok := a.BoolLit(); ok {
				if v == zero {
					return ctx.Bool(zero)
				}
				continue
			}
			keep = append(keep, a)
		}
		if len(keep) == 0 {
			return ctx.Bool(!zero)
		}
		if len(keep) == 1 {
			return keep[0]
		}
		// a disjunct and its negation absorb the whole connective
		for i, a := range keep {
			for _, b := range keep[i+1:] {
				if complementary(a, b) {
					return ctx.Bool(zero)
				}
			}
		}
		if len(keep) != len(t.args) {
			return newTerm(t.op, BoolSort(), keep...)
		}
	case OpImplies:
		if v, ok := arg(0).BoolLit(); ok {
			if !v {
				return ctx.True()
			}
			return arg(1)
		}
		if v, ok := arg(1).BoolLit(); ok {
			if v {
				return ctx.True()
			}
			return Simplify(Not(arg(0)))
		}
	case OpIte:
		if v, ok := arg(0).BoolLit(); ok {
			if v {
				return arg(1)
			}
			return arg(2)
		}
		if TermEqual(arg(1), arg(2)) {
			return arg(1)
		}
		if t.sort.kind == KindBool {
			tv, tok := arg(1).BoolLit()
			ev, eok := arg(2).BoolLit()
			if tok && eok && tv && !ev {
				return arg(0)
			}
			if tok && eok && !tv && ev {
				return Simplify(Not(arg(0)))
			}
		}
	case OpEq:
		if eq, known := litEqual(arg(0), arg(1)); known {
			return ctx.Bool(eq)
		}
	case OpLt, OpLe:
		if TermEqual(arg(0), arg(1)) {
			return ctx.Bool(t.op == OpLe)
		}
		if c, ok := cmpGround(arg(0), arg(1)); ok {
			if t.op == OpLt {
				return ctx.Bool(c < 0)
			}
			return ctx.Bool(c <= 0)
		}
	case OpAdd, OpSub, OpMul, OpFloorDiv, OpMod, OpPow:
		return foldArith(t)
	case OpDiv:
		a, aok := arg(0).RealLit()
		b, bok := arg(1).RealLit()
		if aok && bok && b != 0 {
			return ctx.Real(a / b)
		}
	case OpNeg:
		if v, ok := arg(0).IntLit(); ok {
			return ctx.Int(-v)
		}
		if v, ok := arg(0).RealLit(); ok {
			return ctx.Real(-v)
		}
	case OpToReal:
		if v, ok := arg(0).IntLit(); ok {
			return ctx.Real(float64(v))
		}
	case OpToInt:
		if v, ok := arg(0).RealLit(); ok {
			return ctx.Int(int64(math.Floor(v)))
		}
	case OpLength:
		if v, ok := arg(0).StrLit(); ok {
			return ctx.Int(int64(len([]rune(v))))
		}
		if arg(0).op == OpSeqLit {
			return ctx.Int(int64(len(arg(0).args)))
		}
		if arg(0).op == OpConcat {
			return Simplify(Add(Length(arg(0).args[0]), Length(arg(0).args[1])))
		}
	case OpConcat:
		a, b := arg(0), arg(1)
		if av, ok := a.StrLit(); ok {
			if bv, ok := b.StrLit(); ok {
				return ctx.Str(av + bv)
			}
			if av == "" {
				return b
			}
		}
		if bv, ok := b.StrLit(); ok && bv == "" {
			return a
		}
		if a.op == OpSeqLit && b.op == OpSeqLit {
			return ctx.Seq(t.sort.Elem(), append(append([]*Term{}, a.args...), b.args...)...)
		}
		if a.op == OpSeqLit && len(a.args) == 0 {
			return b
		}
		if b.op == OpSeqLit && len(b.args) == 0 {
			return a
		}
	case OpAt:
		i, iok := arg(1).IntLit()
		if !iok {
			return nil
		}
		if v, ok := arg(0).StrLit(); ok {
			rs := []rune(v)
			if i < 0 || i >= int64(len(rs)) {
				return ctx.Str("")
			}
			return ctx.Str(string(rs[i]))
		}
		if arg(0).op == OpSeqLit && i >= 0 && i < int64(len(arg(0).args)) {
			return arg(0).args[i]
		}
	case OpExtract:
		off, ook := arg(1).IntLit()
		length, lok := arg(2).IntLit()
		if !ook || !lok {
			return nil
		}
		if v, ok := arg(0).StrLit(); ok {
			return ctx.Str(string(clampSlice([]rune(v), off, length)))
		}
		if arg(0).op == OpSeqLit {
			return ctx.Seq(t.sort.Elem(), clampSlice(arg(0).args, off, length)...)
		}
	case OpIndexOf:
		return foldIndexOf(t)
	case OpContains:
		if base, ok := arg(0).StrLit(); ok {
			if item, ok := arg(1).StrLit(); ok {
				return ctx.Bool(containsStr(base, item))
			}
			return nil
		}
		if arg(0).op == OpSeqLit {
			return foldSeqScan(ctx, arg(0).args, arg(1), scanContains)
		}
	case OpPrefixOf, OpSuffixOf:
		return foldAffix(t)
	case OpCount:
		if base, ok := arg(0).StrLit(); ok {
			if item, ok := arg(1).StrLit(); ok {
				return ctx.Int(countStr(base, item))
			}
			return nil
		}
		if arg(0).op == OpSeqLit {
			return foldSeqScan(ctx, arg(0).args, arg(1), scanCount)
		}
	case OpSetAdd:
		if arg(0).op != OpSetLit {
			return nil
		}
		for _, e := range arg(0).args {
			eq, known := litEqual(e, arg(1))
			if !known {
				return nil
			}
			if eq {
				return arg(0)
			}
		}
		return ctx.Set(t.sort.Elem(), append(append([]*Term{}, arg(0).args...), arg(1))...)
	case OpMember:
		if arg(1).op == OpSetLit {
			return foldSeqScan(ctx, arg(1).args, arg(0), scanContains)
		}
	case OpUnion, OpInter:
		return foldSetOp(t)
	case OpCard:
		if arg(0).op == OpSetLit && isGround(arg(0)) {
			return ctx.Int(int64(len(dedupGround(arg(0).args))))
		}
	case OpSelect:
		return foldSelect(t)
	case OpInRe:
		s, sok := arg(0).StrLit()
		pat, pok := arg(1).Pattern()
		if sok && pok {
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil
			}
			return ctx.Bool(re.MatchString(s))
		}
	}
	return nil
}

func foldArith(t *Term) *Term {
	ctx := t.ctx
	if a, ok := t.args[0].IntLit(); ok {
		if b, ok := t.args[1].IntLit(); ok {
			switch t.op {
			case OpAdd:
				return ctx.Int(a + b)
			case OpSub:
				return ctx.Int(a - b)
			case OpMul:
				return ctx.Int(a * b)
			case OpFloorDiv:
				if b == 0 {
					return nil
				}
				q := a / b
				if a%b != 0 && (a < 0) != (b < 0) {
					q--
				}
				return ctx.Int(q)
			case OpMod:
				if b == 0 {
					return nil
				}
				r := a % b
				if r != 0 && (r < 0) != (b < 0) {
					r += b
				}
				return ctx.Int(r)
			case OpPow:
				if b < 0 || b > 62 {
					return nil
				}
				out := int64(1)
				for i := int64(0); i < b; i++ {
					out *= a
				}
				return ctx.Int(out)
			}
		}
	}
	if a, ok := t.args[0].RealLit(); ok {
		if b, ok := t.args[1].RealLit(); ok {
			switch t.op {
			case OpAdd:
				return ctx.Real(a + b)
			case OpSub:
				return ctx.Real(a - b)
			case OpMul:
				return ctx.Real(a * b)
			case OpPow:
				return ctx.Real(math.Pow(a, b))
			}
		}
	}
	// unit laws on the integer sort only
	if t.sort.kind != KindInt {
		return nil
	}
	a, b := t.args[0], t.args[1]
	av, aok := a.IntLit()
	bv, bok := b.IntLit()
	switch t.op {
	case OpAdd:
		if aok && av == 0 {
			return b
		}
		if bok && bv == 0 {
			return a
		}
	case OpSub:
		if bok && bv == 0 {
			return a
		}
	case OpMul:
		if aok && av == 1 {
			return b
		}
		if bok && bv == 1 {
			return a
		}
		if (aok && av == 0) || (bok && bv == 0) {
			return ctx.Int(0)
		}
	}
	return nil
}

func clampSlice[T any](xs []T, off, length int64) []T {
	n := int64(len(xs))
	if off < 0 {
		off = 0
	}
	if off > n {
		off = n
	}
	if length < 0 {
		length = 0
	}
	end := off + length
	if end > n {
		end = n
	}
	return xs[off:end]
}

func foldIndexOf(t *Term) *Term {
	ctx := t.ctx
	off, ook := t.args[2].IntLit()
	if !ook {
		return nil
	}
	if base, ok := t.args[0].StrLit(); ok {
		item, iok := t.args[1].StrLit()
		if !iok {
			return nil
		}
		rs, sub := []rune(base), []rune(item)
		if off < 0 {
			off = 0
		}
		if off > int64(len(rs)) {
			return ctx.Int(-1)
		}
		for i := off; i+int64(len(sub)) <= int64(len(rs)); i++ {
			if string(rs[i:i+int64(len(sub))]) == item {
				return ctx.Int(i)
			}
		}
		return ctx.Int(-1)
	}
	if t.args[0].op != OpSeqLit {
		return nil
	}
	elts := t.args[0].args
	if off < 0 {
		off = 0
	}
	for i := off; i < int64(len(elts)); i++ {
		eq, known := litEqual(elts[i], t.args[1])
		if !known {
			return nil
		}
		if eq {
			return ctx.Int(i)
		}
	}
	return ctx.Int(-1)
}

func containsStr(base, item string) bool {
	if item == "" {
		return true
	}
	rs, sub := []rune(base), []rune(item)
	for i := 0; i+len(sub) <= len(rs); i++ {
		if string(rs[i:i+len(sub)]) == item {
			return true
		}
	}
	return false
}

func countStr(base, item string) int64 {
	rs, sub := []rune(base), []rune(item)
	if len(sub) == 0 {
		return int64(len(rs) + 1)
	}
	var n int64
	for i := 0; i+len(sub) <= len(rs); {
		if string(rs[i:i+len(sub)]) == item {
			n++
			i += len(sub)
		} else {
			i++
		}
	}
	return n
}

type scanMode int

const (
	scanContains scanMode = iota
	scanCount
)

// foldSeqScan answers membership/count questions over literal element
// lists, bailing out as soon as one comparison is model-dependent.
func foldSeqScan(ctx *Context, elts []*Term, item *Term, mode scanMode) *Term {
	var n int64
	for _, e := range elts {
		eq, known := litEqual(e, item)
		if !known {
			return nil
		}
		if eq {
			if mode == scanContains {
				return ctx.Bool(true)
			}
			n++
		}
	}
	if mode == scanContains {
		return ctx.Bool(false)
	}
	return ctx.Int(n)
}

func foldAffix(t *Term) *Term {
	ctx := t.ctx
	if a, ok := t.args[0].StrLit(); ok {
		if b, ok := t.args[1].StrLit(); ok {
			if t.op == OpPrefixOf {
				return ctx.Bool(len(a) <= len(b) && b[:len(a)] == a)
			}
			return ctx.Bool(len(a) <= len(b) && b[len(b)-len(a):] == a)
		}
	}
	if t.args[0].op == OpSeqLit && t.args[1].op == OpSeqLit {
		pre, base := t.args[0].args, t.args[1].args
		if len(pre) > len(base) {
			return ctx.Bool(false)
		}
		at := base[:len(pre)]
		if t.op == OpSuffixOf {
			at = base[len(base)-len(pre):]
		}
		for i := range pre {
			eq, known := litEqual(pre[i], at[i])
			if !known {
				return nil
			}
			if !eq {
				return ctx.Bool(false)
			}
		}
		return ctx.Bool(true)
	}
	return nil
}

func foldSetOp(t *Term) *Term {
	a, b := t.args[0], t.args[1]
	if a.op != OpSetLit || b.op != OpSetLit || !isGround(a) || !isGround(b) {
		return nil
	}
	var out []*Term
	if t.op == OpUnion {
		out = dedupGround(append(append([]*Term{}, a.args...), b.args...))
	} else {
		for _, x := range dedupGround(a.args) {
			for _, y := range b.args {
				if eq, _ := litEqual(x, y); eq {
					out = append(out, x)
					break
				}
			}
		}
	}
	return t.ctx.Set(t.sort.Elem(), out...)
}

func dedupGround(elts []*Term) []*Term {
	var out []*Term
	for _, e := range elts {
		dup := false
		for _, o := range out {
			if eq, _ := litEqual(e, o); eq {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, e)
		}
	}
	return out
}

func foldSelect(t *Term) *Term {
	a, key := t.args[0], t.args[1]
	for {
		switch a.op {
		case OpArrayConst:
			return a.args[0]
		case OpStore:
			eq, known := litEqual(a.args[1], key)
			if !known {
				return nil
			}
			if eq {
				return a.args[2]
			}
			a = a.args[0]
		default:
			return nil
		}
	}
}
