package proxies

import (
	"github.com/covenant-dev/covenant/internal/fault"
	"github.com/covenant-dev/covenant/internal/smt"
)

// Len builds the length of a sized value.
func Len(v Value) (Value, error) {
	switch x := v.(type) {
	case *StrVal, *ListVal, *VarTupleVal:
		return NewInt(smt.Length(v.term())), nil
	case *SetVal:
		return NewInt(smt.Card(x.t)), nil
	case *FixedTupleVal:
		return NewInt(x.Ctx.Int(int64(len(x.Items)))), nil
	default:
		return nil, fault.Unsupported("len of a value of type", v.Kind().String())
	}
}

// Contains builds membership: substring for strings, element membership
// for lists, tuples and sets.
func Contains(container, item Value) (Value, error) {
	switch c := container.(type) {
	case *StrVal:
		s, ok := item.(*StrVal)
		if !ok {
			return nil, mismatch("in", item, container)
		}
		return NewBool(smt.Contains(c.t, s.t)), nil
	case *ListVal, *VarTupleVal:
		t := container.term()
		it, err := Unwrap(item)
		if err != nil {
			return nil, err
		}
		if !it.Sort().Equal(t.Sort().Elem()) {
			return nil, mismatch("in", item, container)
		}
		return NewBool(smt.Contains(t, it)), nil
	case *SetVal:
		it, err := Unwrap(item)
		if err != nil {
			return nil, err
		}
		if !it.Sort().Equal(c.t.Sort().Elem()) {
			return nil, mismatch("in", item, container)
		}
		return NewBool(smt.Member(it, c.t)), nil
	case *FixedTupleVal:
		out := c.Ctx.False()
		for _, el := range c.Items {
			eq, err := Eq(item, el)
			if err != nil {
				return nil, err
			}
			out = smt.Or(out, eq.term())
		}
		return NewBool(out), nil
	default:
		return nil, fault.Unsupported("membership in a value of type", container.Kind().String())
	}
}

// GetItem builds single-element indexing. Negative indexes count from
// the end; fixed tuples need a literal index because their elements may
// differ in variant.
func GetItem(container, index Value) (Value, error) {
	idx, ok := index.(*IntVal)
	if !ok {
		return nil, mismatch("[]", container, index)
	}
	switch c := container.(type) {
	case *StrVal:
		return NewStr(smt.At(c.t, normIndex(c.t, idx.t))), nil
	case *ListVal:
		return Wrap(smt.At(c.t, normIndex(c.t, idx.t)))
	case *VarTupleVal:
		return Wrap(smt.At(c.t, normIndex(c.t, idx.t)))
	case *FixedTupleVal:
		lit := smt.Simplify(idx.t)
		i, known := lit.IntLit()
		if !known {
			return nil, fault.Unsupported("tuple index that is not a constant", "")
		}
		if i < 0 {
			i += int64(len(c.Items))
		}
		if i < 0 || i >= int64(len(c.Items)) {
			return nil, fault.Unsupported("tuple index out of range", "")
		}
		return c.Items[i], nil
	case *DictVal:
		key, err := Unwrap(index)
		if err != nil {
			return nil, err
		}
		return Wrap(smt.Select(c.t, key))
	default:
		return nil, fault.Unsupported("indexing a value of type", container.Kind().String())
	}
}

// normIndex maps a possibly-negative index onto the sequence.
func normIndex(seq, idx *smt.Term) *smt.Term {
	zero := idx.Context().Int(0)
	return smt.Ite(smt.Lt(idx, zero), smt.Add(idx, smt.Length(seq)), idx)
}

// GetSlice builds a subsequence with the subject language's clamping:
// out-of-range bounds saturate instead of failing, and an inverted
// range yields an empty result. Nil bounds mean the respective end.
func GetSlice(container, lo, hi Value) (Value, error) {
	var t *smt.Term
	switch c := container.(type) {
	case *StrVal:
		t = c.t
	case *ListVal:
		t = c.t
	case *VarTupleVal:
		t = c.t
	default:
		return nil, fault.Unsupported("slicing a value of type", container.Kind().String())
	}
	ctx := t.Context()
	length := smt.Length(t)

	bound := func(v Value, dflt *smt.Term) (*smt.Term, error) {
		if v == nil {
			return dflt, nil
		}
		iv, ok := v.(*IntVal)
		if !ok {
			return nil, mismatch("[:]", container, v)
		}
		return clampBound(iv.t, length), nil
	}
	start, err := bound(lo, ctx.Int(0))
	if err != nil {
		return nil, err
	}
	stop, err := bound(hi, length)
	if err != nil {
		return nil, err
	}
	span := smt.Sub(stop, start)
	span = smt.Ite(smt.Lt(span, ctx.Int(0)), ctx.Int(0), span)
	out := smt.Extract(t, start, span)
	switch container.(type) {
	case *StrVal:
		return NewStr(out), nil
	case *VarTupleVal:
		return NewVarTuple(out), nil
	default:
		return NewList(out), nil
	}
}

// clampBound resolves a slice bound: negative bounds count from the end
// and everything saturates into [0, len].
func clampBound(b, length *smt.Term) *smt.Term {
	ctx := b.Context()
	zero := ctx.Int(0)
	fromEnd := smt.Add(b, length)
	fromEnd = smt.Ite(smt.Lt(fromEnd, zero), zero, fromEnd)
	fromStart := smt.Ite(smt.Gt(b, length), length, b)
	return smt.Ite(smt.Lt(b, zero), fromEnd, fromStart)
}

// Find builds str.find / list.index style search: the index of the
// first occurrence at or after start, or -1. A negative start counts
// from the end; a start past the end finds nothing.
func Find(container, item, start Value) (Value, error) {
	var t *smt.Term
	switch c := container.(type) {
	case *StrVal:
		s, ok := item.(*StrVal)
		if !ok {
			return nil, mismatch("find", container, item)
		}
		return findIn(c.t, s.t, start, container)
	case *ListVal, *VarTupleVal:
		t = container.term()
		it, err := Unwrap(item)
		if err != nil {
			return nil, err
		}
		if !it.Sort().Equal(t.Sort().Elem()) {
			return nil, mismatch("index", container, item)
		}
		return findIn(t, it, start, container)
	default:
		return nil, fault.Unsupported("searching a value of type", container.Kind().String())
	}
}

func findIn(seq, needle *smt.Term, start Value, container Value) (Value, error) {
	offset := seq.Context().Int(0)
	if start != nil {
		sv, ok := start.(*IntVal)
		if !ok {
			return nil, mismatch("find", container, start)
		}
		offset = findStart(sv.t, smt.Length(seq))
	}
	return NewInt(smt.IndexOf(seq, needle, offset)), nil
}

// findStart resolves a search offset: negatives count from the end like
// a slice bound, but a start past the end is NOT pulled back to it —
// the search from there misses everything, the empty needle included.
func findStart(b, length *smt.Term) *smt.Term {
	ctx := b.Context()
	zero := ctx.Int(0)
	fromEnd := smt.Add(b, length)
	fromEnd = smt.Ite(smt.Lt(fromEnd, zero), zero, fromEnd)
	return smt.Ite(smt.Lt(b, zero), fromEnd, b)
}

// CountOf builds str.count / list.count / tuple.count.
func CountOf(container, item Value) (Value, error) {
	switch c := container.(type) {
	case *StrVal:
		s, ok := item.(*StrVal)
		if !ok {
			return nil, mismatch("count", container, item)
		}
		return NewInt(smt.Count(c.t, s.t)), nil
	case *ListVal, *VarTupleVal:
		t := container.term()
		it, err := Unwrap(item)
		if err != nil {
			return nil, err
		}
		if !it.Sort().Equal(t.Sort().Elem()) {
			return nil, mismatch("count", container, item)
		}
		return NewInt(smt.Count(t, it)), nil
	default:
		return nil, fault.Unsupported("counting in a value of type", container.Kind().String())
	}
}

// StartsWith builds str.startswith.
func StartsWith(s, prefix Value) (Value, error) {
	a, aok := s.(*StrVal)
	b, bok := prefix.(*StrVal)
	if !aok || !bok {
		return nil, mismatch("startswith", s, prefix)
	}
	return NewBool(smt.PrefixOf(b.t, a.t)), nil
}

// EndsWith builds str.endswith.
func EndsWith(s, suffix Value) (Value, error) {
	a, aok := s.(*StrVal)
	b, bok := suffix.(*StrVal)
	if !aok || !bok {
		return nil, mismatch("endswith", s, suffix)
	}
	return NewBool(smt.SuffixOf(b.t, a.t)), nil
}

// MatchMode selects which pattern method semantics apply.
type MatchMode int

const (
	// MatchFull requires the pattern to cover the whole string.
	MatchFull MatchMode = iota
	// MatchPrefix anchors the pattern at the start only.
	MatchPrefix
	// MatchSearch finds the pattern anywhere in the string.
	MatchSearch
)

// PatternMatch builds the boolean outcome of a compiled pattern applied
// to a string. Anchoring is expressed in the pattern itself so one
// membership predicate covers all three methods.
func (p *PatternVal) PatternMatch(s Value, mode MatchMode) (Value, error) {
	sv, ok := s.(*StrVal)
	if !ok {
		return nil, mismatch("pattern match", p, s)
	}
	src := p.Source
	switch mode {
	case MatchFull:
		src = `\A(?:` + src + `)\z`
	case MatchPrefix:
		src = `\A(?:` + src + `)`
	}
	return NewBool(smt.InRe(sv.t, p.ctx.Regex(src))), nil
}
