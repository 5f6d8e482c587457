// Package proxies implements the symbolic value model: a closed set of
// tagged wrappers that give solver terms the subject language's
// operator and method semantics. Values are immutable; every operation
// builds a new value and reports incompatible operands as errors
// instead of coercing, except where the subject language itself defines
// a coercion (int promotes to float).
package proxies

import (
	"github.com/covenant-dev/covenant/internal/fault"
	"github.com/covenant-dev/covenant/internal/smt"
)

// Kind tags a symbolic value variant.
type Kind int

const (
	_ Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindList
	KindFixedTuple
	KindVarTuple
	KindSet
	KindDict
	KindFunc
	KindPattern
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindList:
		return "list"
	case KindFixedTuple, KindVarTuple:
		return "tuple"
	case KindSet:
		return "set"
	case KindDict:
		return "dict"
	case KindFunc:
		return "function"
	case KindPattern:
		return "pattern"
	default:
		return "?"
	}
}

// Value is one symbolic value: a variant tag over one solver term.
// Fixed tuples are the exception, carrying their elements as sub-values
// because a heterogeneous tuple has no single sort.
type Value interface {
	Kind() Kind
	term() *smt.Term
}

// BoolVal wraps a boolean term.
type BoolVal struct{ t *smt.Term }

// IntVal wraps an integer term.
type IntVal struct{ t *smt.Term }

// FloatVal wraps a real term; the float type is modeled over the reals.
type FloatVal struct{ t *smt.Term }

// StrVal wraps a string term.
type StrVal struct{ t *smt.Term }

// ListVal wraps a sequence term.
type ListVal struct{ t *smt.Term }

// VarTupleVal wraps a sequence term with tuple semantics; it exists so
// that tuple[X, ...] annotations keep their subject-language type name.
type VarTupleVal struct{ t *smt.Term }

// SetVal wraps a set term.
type SetVal struct{ t *smt.Term }

// DictVal wraps an array (total map) term.
type DictVal struct{ t *smt.Term }

// FixedTupleVal is a tuple of known arity; elements may have different
// variants. It keeps its own context handle so that empty tuples can
// still produce length and truthiness terms.
type FixedTupleVal struct {
	Ctx   *smt.Context
	Items []Value
}

// NewFixedTuple creates a fixed-arity tuple value.
func NewFixedTuple(ctx *smt.Context, items ...Value) *FixedTupleVal {
	return &FixedTupleVal{Ctx: ctx, Items: items}
}

// FuncVal wraps an uninterpreted function declaration; it only arises
// from recursion summarization.
type FuncVal struct{ Decl *smt.FuncDecl }

// PatternVal is a compiled regular-expression pattern.
type PatternVal struct {
	Source string
	ctx    *smt.Context
}

func (v *BoolVal) Kind() Kind       { return KindBool }
func (v *IntVal) Kind() Kind        { return KindInt }
func (v *FloatVal) Kind() Kind      { return KindFloat }
func (v *StrVal) Kind() Kind        { return KindStr }
func (v *ListVal) Kind() Kind       { return KindList }
func (v *VarTupleVal) Kind() Kind   { return KindVarTuple }
func (v *SetVal) Kind() Kind        { return KindSet }
func (v *DictVal) Kind() Kind       { return KindDict }
func (v *FixedTupleVal) Kind() Kind { return KindFixedTuple }
func (v *FuncVal) Kind() Kind       { return KindFunc }
func (v *PatternVal) Kind() Kind    { return KindPattern }

func (v *BoolVal) term() *smt.Term       { return v.t }
func (v *IntVal) term() *smt.Term        { return v.t }
func (v *FloatVal) term() *smt.Term      { return v.t }
func (v *StrVal) term() *smt.Term        { return v.t }
func (v *ListVal) term() *smt.Term       { return v.t }
func (v *VarTupleVal) term() *smt.Term   { return v.t }
func (v *SetVal) term() *smt.Term        { return v.t }
func (v *DictVal) term() *smt.Term       { return v.t }
func (v *FixedTupleVal) term() *smt.Term { return nil }
func (v *FuncVal) term() *smt.Term       { return nil }
func (v *PatternVal) term() *smt.Term    { return nil }

func mustKind(t *smt.Term, want smt.Kind, tag string) {
	if t.Sort().Kind() != want {
		panic("proxies: " + tag + " tag over a " + t.Sort().String() + " term")
	}
}

// NewBool tags a boolean term. The payload sort must match the tag;
// a mismatch is a programming error and panics.
func NewBool(t *smt.Term) *BoolVal {
	mustKind(t, smt.KindBool, "bool")
	return &BoolVal{t: t}
}

// NewInt tags an integer term.
func NewInt(t *smt.Term) *IntVal {
	mustKind(t, smt.KindInt, "int")
	return &IntVal{t: t}
}

// NewFloat tags a real term.
func NewFloat(t *smt.Term) *FloatVal {
	mustKind(t, smt.KindReal, "float")
	return &FloatVal{t: t}
}

// NewStr tags a string term.
func NewStr(t *smt.Term) *StrVal {
	mustKind(t, smt.KindString, "str")
	return &StrVal{t: t}
}

// NewList tags a sequence term.
func NewList(t *smt.Term) *ListVal {
	mustKind(t, smt.KindSeq, "list")
	return &ListVal{t: t}
}

// NewVarTuple tags a sequence term with tuple semantics.
func NewVarTuple(t *smt.Term) *VarTupleVal {
	mustKind(t, smt.KindSeq, "tuple")
	return &VarTupleVal{t: t}
}

// NewSet tags a set term.
func NewSet(t *smt.Term) *SetVal {
	mustKind(t, smt.KindSet, "set")
	return &SetVal{t: t}
}

// NewDict tags an array term.
func NewDict(t *smt.Term) *DictVal {
	mustKind(t, smt.KindArray, "dict")
	return &DictVal{t: t}
}

// NewPattern creates a pattern value from a regular-expression source.
func NewPattern(ctx *smt.Context, source string) *PatternVal {
	return &PatternVal{Source: source, ctx: ctx}
}

// Wrap tags a solver term with the variant its sort denotes. This is
// the single seam new variants register into: every literal and every
// annotation-declared symbol goes through here. Sequence sorts wrap as
// lists; tuple-typed symbols are built as VarTupleVal by the annotation
// resolver directly.
func Wrap(t *smt.Term) (Value, error) {
	switch t.Sort().Kind() {
	case smt.KindBool:
		return NewBool(t), nil
	case smt.KindInt:
		return NewInt(t), nil
	case smt.KindReal:
		return NewFloat(t), nil
	case smt.KindString:
		return NewStr(t), nil
	case smt.KindSeq:
		return NewList(t), nil
	case smt.KindSet:
		return NewSet(t), nil
	case smt.KindArray:
		return NewDict(t), nil
	default:
		return nil, fault.Unsupported("wrapping a term of sort", t.Sort().String())
	}
}

// Unwrap strips the tag and returns the bare solver term, for feeding
// into solver-native combinators. Fixed tuples unwrap to a literal
// sequence when their elements share one sort.
func Unwrap(v Value) (*smt.Term, error) {
	if t := v.term(); t != nil {
		return t, nil
	}
	if tup, ok := v.(*FixedTupleVal); ok {
		return tup.unwrapSeq()
	}
	return nil, fault.Unsupported("unwrapping a value of type", v.Kind().String())
}

func (v *FixedTupleVal) unwrapSeq() (*smt.Term, error) {
	if len(v.Items) == 0 {
		return nil, fault.Unsupported("unwrapping an empty tuple", "")
	}
	terms := make([]*smt.Term, len(v.Items))
	for i, it := range v.Items {
		t, err := Unwrap(it)
		if err != nil {
			return nil, err
		}
		terms[i] = t
	}
	elem := terms[0].Sort()
	for _, t := range terms[1:] {
		if !t.Sort().Equal(elem) {
			return nil, fault.Unsupported("unwrapping a heterogeneous tuple", "")
		}
	}
	return terms[0].Context().Seq(elem, terms...), nil
}

// IfExpr merges two values of the same variant under a boolean
// condition. Mismatched variants are a hard error: both branches of a
// merge must carry one static type, and the int-to-float promotion that
// operators apply does not happen here.
func IfExpr(cond *smt.Term, a, b Value) (Value, error) {
	if a.Kind() != b.Kind() {
		return nil, &fault.SortMismatchError{Op: "branch merge", Left: a.Kind().String(), Right: b.Kind().String()}
	}
	if at, ok := a.(*FixedTupleVal); ok {
		bt := b.(*FixedTupleVal)
		if len(at.Items) != len(bt.Items) {
			return nil, &fault.SortMismatchError{Op: "branch merge", Left: "tuple", Right: "tuple of different arity"}
		}
		items := make([]Value, len(at.Items))
		for i := range at.Items {
			item, err := IfExpr(cond, at.Items[i], bt.Items[i])
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return NewFixedTuple(at.Ctx, items...), nil
	}
	ta, err := Unwrap(a)
	if err != nil {
		return nil, err
	}
	tb, err := Unwrap(b)
	if err != nil {
		return nil, err
	}
	if !ta.Sort().Equal(tb.Sort()) {
		return nil, &fault.SortMismatchError{Op: "branch merge", Left: ta.Sort().String(), Right: tb.Sort().String()}
	}
	merged, err := Wrap(smt.Ite(cond, ta, tb))
	if err != nil {
		return nil, err
	}
	if a.Kind() == KindVarTuple {
		return NewVarTuple(smt.Ite(cond, ta, tb)), nil
	}
	return merged, nil
}

// AsBool converts a value to its truthiness term.
func AsBool(v Value) (*smt.Term, error) {
	switch x := v.(type) {
	case *BoolVal:
		return x.t, nil
	case *IntVal:
		return smt.Ne(x.t, x.t.Context().Int(0)), nil
	case *FloatVal:
		return smt.Ne(x.t, x.t.Context().Real(0)), nil
	case *StrVal:
		return smt.Ne(x.t, x.t.Context().Str("")), nil
	case *ListVal, *VarTupleVal:
		t := v.term()
		return smt.Ne(smt.Length(t), t.Context().Int(0)), nil
	case *SetVal:
		return smt.Ne(smt.Card(x.t), x.t.Context().Int(0)), nil
	case *FixedTupleVal:
		return x.Ctx.Bool(len(x.Items) > 0), nil
	default:
		return nil, fault.Unsupported("truthiness of a value of type", v.Kind().String())
	}
}

// promotePair applies the subject language's implicit int-to-float
// promotion when exactly one operand is a float.
func promotePair(a, b Value) (Value, Value) {
	if ai, ok := a.(*IntVal); ok {
		if _, ok := b.(*FloatVal); ok {
			return NewFloat(smt.ToReal(ai.t)), b
		}
	}
	if bi, ok := b.(*IntVal); ok {
		if _, ok := a.(*FloatVal); ok {
			return a, NewFloat(smt.ToReal(bi.t))
		}
	}
	return a, b
}
