package smt

import "fmt"

// Op identifies a term constructor. The set is closed: the simplifier and
// the SMT-LIB serializer both switch over it exhaustively.
type Op int

const (
	_ Op = iota

	// leaves
	OpBoolLit
	OpIntLit
	OpRealLit
	OpStrLit
	OpSeqLit // literal sequence, args are the elements
	OpSetLit // literal set, args are the (distinct) elements
	OpReLit  // literal regular expression, pattern in sval
	OpConst  // free constant, name in name
	OpApply  // application of an uninterpreted function

	// boolean
	OpNot
	OpAnd
	OpOr
	OpImplies
	OpIte

	// equality and order
	OpEq
	OpLt
	OpLe

	// arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv      // real division
	OpFloorDiv // integer division, floor semantics
	OpMod      // integer modulo, sign follows the divisor
	OpPow
	OpNeg
	OpToReal
	OpToInt // floor, as SMT-LIB to_int

	// sequences and strings
	OpLength
	OpConcat
	OpAt      // element access; yields a one-element slice for strings
	OpExtract // subsequence: (base, offset, length)
	OpIndexOf // first occurrence at or after offset: (base, item, offset)
	OpContains
	OpPrefixOf
	OpSuffixOf
	OpCount // non-overlapping occurrence count

	// sets
	OpSetAdd
	OpMember
	OpUnion
	OpInter
	OpCard

	// arrays
	OpArrayConst // constant map, arg is the default value
	OpStore
	OpSelect

	// regular expressions
	OpInRe
)

// Term is an immutable, sorted solver expression. Terms belong to the
// Context that created their leaves; terms from different contexts must
// never be combined.
type Term struct {
	ctx  *Context
	op   Op
	sort Sort
	args []*Term
	decl *FuncDecl // OpApply

	name string  // OpConst
	bval bool    // OpBoolLit
	ival int64   // OpIntLit
	fval float64 // OpRealLit
	sval string  // OpStrLit, OpReLit
}

// Op returns the term's constructor.
func (t *Term) Op() Op { return t.op }

// Sort returns the term's sort.
func (t *Term) Sort() Sort { return t.sort }

// Context returns the owning context.
func (t *Term) Context() *Context { return t.ctx }

// NumArgs returns the number of immediate sub-terms.
func (t *Term) NumArgs() int { return len(t.args) }

// Arg returns the i-th immediate sub-term.
func (t *Term) Arg(i int) *Term { return t.args[i] }

// Name returns the constant name for OpConst terms and the declaration
// name for OpApply terms.
func (t *Term) Name() string {
	if t.op == OpApply {
		return t.decl.name
	}
	return t.name
}

// Decl returns the applied declaration for OpApply terms.
func (t *Term) Decl() *FuncDecl { return t.decl }

// BoolLit reports the value of a boolean literal.
func (t *Term) BoolLit() (val, ok bool) {
	if t.op != OpBoolLit {
		return false, false
	}
	return t.bval, true
}

// IntLit reports the value of an integer literal.
func (t *Term) IntLit() (val int64, ok bool) {
	if t.op != OpIntLit {
		return 0, false
	}
	return t.ival, true
}

// RealLit reports the value of a real literal.
func (t *Term) RealLit() (val float64, ok bool) {
	if t.op != OpRealLit {
		return 0, false
	}
	return t.fval, true
}

// StrLit reports the value of a string literal.
func (t *Term) StrLit() (val string, ok bool) {
	if t.op != OpStrLit {
		return "", false
	}
	return t.sval, true
}

// Pattern reports the source of a regular-expression literal.
func (t *Term) Pattern() (val string, ok bool) {
	if t.op != OpReLit {
		return "", false
	}
	return t.sval, true
}

func sortPanic(format string, args ...any) {
	panic(fmt.Sprintf("smt: "+format, args...))
}

func sameCtx(args ...*Term) *Context {
	ctx := args[0].ctx
	for _, a := range args[1:] {
		if a.ctx != ctx {
			sortPanic("terms from different contexts combined")
		}
	}
	return ctx
}

func newTerm(op Op, sort Sort, args ...*Term) *Term {
	return &Term{ctx: sameCtx(args...), op: op, sort: sort, args: args}
}

func requireSort(t *Term, want Kind, what string) {
	if t.sort.kind != want {
		sortPanic("%s requires a %s operand, got %s", what, want, t.sort)
	}
}

func requireSame(a, b *Term, what string) {
	if !a.sort.Equal(b.sort) {
		sortPanic("%s requires operands of one sort, got %s and %s", what, a.sort, b.sort)
	}
}

// Not negates a boolean term.
func Not(a *Term) *Term {
	requireSort(a, KindBool, "not")
	return newTerm(OpNot, BoolSort(), a)
}

// And conjoins boolean terms. At least one operand is required; use
// Context.True for the empty conjunction.
func And(args ...*Term) *Term {
	if len(args) == 0 {
		sortPanic("and requires at least one operand")
	}
	for _, a := range args {
		requireSort(a, KindBool, "and")
	}
	if len(args) == 1 {
		return args[0]
	}
	return newTerm(OpAnd, BoolSort(), args...)
}

// Or disjoins boolean terms.
func Or(args ...*Term) *Term {
	if len(args) == 0 {
		sortPanic("or requires at least one operand")
	}
	for _, a := range args {
		requireSort(a, KindBool, "or")
	}
	if len(args) == 1 {
		return args[0]
	}
	return newTerm(OpOr, BoolSort(), args...)
}

// Implies builds a boolean implication.
func Implies(a, b *Term) *Term {
	requireSort(a, KindBool, "implies")
	requireSort(b, KindBool, "implies")
	return newTerm(OpImplies, BoolSort(), a, b)
}

// Ite builds a conditional term. Both branches must share one sort.
func Ite(cond, then, els *Term) *Term {
	requireSort(cond, KindBool, "ite")
	requireSame(then, els, "ite")
	return newTerm(OpIte, then.sort, cond, then, els)
}

// Eq builds an equality between terms of one sort.
func Eq(a, b *Term) *Term {
	requireSame(a, b, "=")
	return newTerm(OpEq, BoolSort(), a, b)
}

// Ne builds a disequality.
func Ne(a, b *Term) *Term {
	return Not(Eq(a, b))
}

func requireOrdered(a, b *Term, what string) {
	requireSame(a, b, what)
	if !a.sort.IsNumeric() && !a.sort.IsSequence() {
		sortPanic("%s is not defined on sort %s", what, a.sort)
	}
}

// Lt builds a strict less-than. Numeric sorts order numerically; string
// and sequence sorts order lexicographically with shorter-prefix-first.
func Lt(a, b *Term) *Term {
	requireOrdered(a, b, "<")
	return newTerm(OpLt, BoolSort(), a, b)
}

// Le builds a non-strict less-than.
func Le(a, b *Term) *Term {
	requireOrdered(a, b, "<=")
	return newTerm(OpLe, BoolSort(), a, b)
}

// Gt builds a strict greater-than.
func Gt(a, b *Term) *Term { return Lt(b, a) }

// Ge builds a non-strict greater-than.
func Ge(a, b *Term) *Term { return Le(b, a) }

func requireNumeric(a, b *Term, what string) {
	requireSame(a, b, what)
	if !a.sort.IsNumeric() {
		sortPanic("%s is not defined on sort %s", what, a.sort)
	}
}

// Add builds a sum of two numeric terms of one sort.
func Add(a, b *Term) *Term {
	requireNumeric(a, b, "+")
	return newTerm(OpAdd, a.sort, a, b)
}

// Sub builds a difference.
func Sub(a, b *Term) *Term {
	requireNumeric(a, b, "-")
	return newTerm(OpSub, a.sort, a, b)
}

// Mul builds a product.
func Mul(a, b *Term) *Term {
	requireNumeric(a, b, "*")
	return newTerm(OpMul, a.sort, a, b)
}

// Div builds a real division.
func Div(a, b *Term) *Term {
	requireSort(a, KindReal, "/")
	requireSort(b, KindReal, "/")
	return newTerm(OpDiv, RealSort(), a, b)
}

// FloorDiv builds an integer division with floor semantics, matching the
// subject language rather than the SMT-LIB Euclidean convention.
func FloorDiv(a, b *Term) *Term {
	requireSort(a, KindInt, "//")
	requireSort(b, KindInt, "//")
	return newTerm(OpFloorDiv, IntSort(), a, b)
}

// Mod builds an integer modulo whose result takes the divisor's sign.
func Mod(a, b *Term) *Term {
	requireSort(a, KindInt, "%")
	requireSort(b, KindInt, "%")
	return newTerm(OpMod, IntSort(), a, b)
}

// Pow builds an exponentiation of two numeric terms of one sort.
func Pow(a, b *Term) *Term {
	requireNumeric(a, b, "**")
	return newTerm(OpPow, a.sort, a, b)
}

// Neg builds an arithmetic negation.
func Neg(a *Term) *Term {
	if !a.sort.IsNumeric() {
		sortPanic("unary - is not defined on sort %s", a.sort)
	}
	return newTerm(OpNeg, a.sort, a)
}

// ToReal converts an integer term to the real sort.
func ToReal(a *Term) *Term {
	requireSort(a, KindInt, "to_real")
	return newTerm(OpToReal, RealSort(), a)
}

// ToInt converts a real term to the integer sort, rounding toward
// negative infinity the way SMT-LIB's to_int does. Callers wanting
// truncation toward zero must guard the sign themselves.
func ToInt(a *Term) *Term {
	requireSort(a, KindReal, "to_int")
	return newTerm(OpToInt, IntSort(), a)
}

func requireSeqLike(a *Term, what string) {
	if !a.sort.IsSequence() {
		sortPanic("%s is not defined on sort %s", what, a.sort)
	}
}

// Length returns the length of a string or sequence term.
func Length(a *Term) *Term {
	requireSeqLike(a, "length")
	return newTerm(OpLength, IntSort(), a)
}

// Concat concatenates two string or sequence terms of one sort.
func Concat(a, b *Term) *Term {
	requireSame(a, b, "concat")
	requireSeqLike(a, "concat")
	return newTerm(OpConcat, a.sort, a, b)
}

// At accesses the element at index i. For sequences the result has the
// element sort; for strings it is the one-element substring (empty when
// out of range).
func At(a, i *Term) *Term {
	requireSeqLike(a, "at")
	requireSort(i, KindInt, "at")
	if a.sort.kind == KindSeq {
		return newTerm(OpAt, a.sort.Elem(), a, i)
	}
	return newTerm(OpAt, StringSort(), a, i)
}

// Extract takes the subsequence of a starting at offset with the given
// length, clamped to the bounds of a.
func Extract(a, offset, length *Term) *Term {
	requireSeqLike(a, "extract")
	requireSort(offset, KindInt, "extract")
	requireSort(length, KindInt, "extract")
	return newTerm(OpExtract, a.sort, a, offset, length)
}

func requireItemOf(a, item *Term, what string) {
	switch a.sort.kind {
	case KindString:
		requireSort(item, KindString, what)
	case KindSeq:
		if !item.sort.Equal(a.sort.Elem()) {
			sortPanic("%s: item sort %s does not match element sort %s", what, item.sort, a.sort.Elem())
		}
	default:
		sortPanic("%s is not defined on sort %s", what, a.sort)
	}
}

// IndexOf returns the index of the first occurrence of item in a at or
// after offset, or -1 when there is none.
func IndexOf(a, item, offset *Term) *Term {
	requireItemOf(a, item, "indexof")
	requireSort(offset, KindInt, "indexof")
	return newTerm(OpIndexOf, IntSort(), a, item, offset)
}

// Contains reports whether a contains item (a substring for strings, an
// element for sequences).
func Contains(a, item *Term) *Term {
	requireItemOf(a, item, "contains")
	return newTerm(OpContains, BoolSort(), a, item)
}

// PrefixOf reports whether pre is a prefix of a.
func PrefixOf(pre, a *Term) *Term {
	requireSame(pre, a, "prefixof")
	requireSeqLike(a, "prefixof")
	return newTerm(OpPrefixOf, BoolSort(), pre, a)
}

// SuffixOf reports whether suf is a suffix of a.
func SuffixOf(suf, a *Term) *Term {
	requireSame(suf, a, "suffixof")
	requireSeqLike(a, "suffixof")
	return newTerm(OpSuffixOf, BoolSort(), suf, a)
}

// Count returns the number of non-overlapping occurrences of item in a.
func Count(a, item *Term) *Term {
	requireItemOf(a, item, "count")
	return newTerm(OpCount, IntSort(), a, item)
}

// SetAdd returns the set a with elem added.
func SetAdd(a, elem *Term) *Term {
	requireSort(a, KindSet, "set.add")
	if !elem.sort.Equal(a.sort.Elem()) {
		sortPanic("set.add: element sort %s does not match %s", elem.sort, a.sort.Elem())
	}
	return newTerm(OpSetAdd, a.sort, a, elem)
}

// Member reports whether elem is a member of the set a.
func Member(elem, a *Term) *Term {
	requireSort(a, KindSet, "member")
	if !elem.sort.Equal(a.sort.Elem()) {
		sortPanic("member: element sort %s does not match %s", elem.sort, a.sort.Elem())
	}
	return newTerm(OpMember, BoolSort(), elem, a)
}

// Union returns the union of two sets of one sort.
func Union(a, b *Term) *Term {
	requireSame(a, b, "union")
	requireSort(a, KindSet, "union")
	return newTerm(OpUnion, a.sort, a, b)
}

// Inter returns the intersection of two sets of one sort.
func Inter(a, b *Term) *Term {
	requireSame(a, b, "intersection")
	requireSort(a, KindSet, "intersection")
	return newTerm(OpInter, a.sort, a, b)
}

// Card returns the cardinality of a set.
func Card(a *Term) *Term {
	requireSort(a, KindSet, "card")
	return newTerm(OpCard, IntSort(), a)
}

// Store returns the array a updated at key with val.
func Store(a, key, val *Term) *Term {
	requireSort(a, KindArray, "store")
	if !key.sort.Equal(a.sort.Key()) || !val.sort.Equal(a.sort.Value()) {
		sortPanic("store: key/value sorts %s/%s do not match %s", key.sort, val.sort, a.sort)
	}
	return newTerm(OpStore, a.sort, a, key, val)
}

// Select reads the array a at key.
func Select(a, key *Term) *Term {
	requireSort(a, KindArray, "select")
	if !key.sort.Equal(a.sort.Key()) {
		sortPanic("select: key sort %s does not match %s", key.sort, a.sort)
	}
	return newTerm(OpSelect, a.sort.Value(), a, key)
}

// InRe reports whether the string term s matches the regular expression re.
func InRe(s, re *Term) *Term {
	requireSort(s, KindString, "in_re")
	requireSort(re, KindRegex, "in_re")
	return newTerm(OpInRe, BoolSort(), s, re)
}

// Substitute returns t with every free constant whose name appears in sub
// replaced by the mapped term. Replacement terms must match the constant's
// sort.
func Substitute(t *Term, sub map[string]*Term) *Term {
	if len(sub) == 0 {
		return t
	}
	if t.op == OpConst {
		if r, ok := sub[t.name]; ok {
			if !r.sort.Equal(t.sort) {
				sortPanic("substitute: %s has sort %s, replacement has %s", t.name, t.sort, r.sort)
			}
			return r
		}
		return t
	}
	if len(t.args) == 0 {
		return t
	}
	changed := false
	args := make([]*Term, len(t.args))
	for i, a := range t.args {
		args[i] = Substitute(a, sub)
		if args[i] != a {
			changed = true
		}
	}
	if !changed {
		return t
	}
	dup := *t
	dup.args = args
	return &dup
}

// Conjuncts flattens nested conjunctions into a list of terms.
func Conjuncts(t *Term) []*Term {
	if t.op != OpAnd {
		return []*Term{t}
	}
	var out []*Term
	for _, a := range t.args {
		out = append(out, Conjuncts(a)...)
	}
	return out
}

// Consts collects the free constants of t, deduplicated by name, in
// first-occurrence order.
func Consts(t *Term) []*Term {
	var out []*Term
	seen := map[string]bool{}
	var walk func(*Term)
	walk = func(t *Term) {
		if t.op == OpConst {
			if !seen[t.name] {
				seen[t.name] = true
				out = append(out, t)
			}
			return
		}
		for _, a := range t.args {
			walk(a)
		}
	}
	walk(t)
	return out
}
