package smt

import "fmt"

// Kind identifies the shape of a sort.
type Kind int

const (
	_ Kind = iota
	KindBool
	KindInt
	KindReal
	KindString
	KindSeq
	KindSet
	KindArray
	KindRegex
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindReal:
		return "Real"
	case KindString:
		return "String"
	case KindSeq:
		return "Seq"
	case KindSet:
		return "Set"
	case KindArray:
		return "Array"
	case KindRegex:
		return "RegLan"
	default:
		return "?"
	}
}

// Sort is the solver-level type of a term. Sorts are immutable values;
// parameterized sorts (Seq, Set, Array) carry their element sorts.
type Sort struct {
	kind Kind
	elem *Sort // Seq, Set
	key  *Sort // Array
	val  *Sort // Array
}

// BoolSort returns the boolean sort.
func BoolSort() Sort { return Sort{kind: KindBool} }

// IntSort returns the mathematical integer sort.
func IntSort() Sort { return Sort{kind: KindInt} }

// RealSort returns the real-number sort.
func RealSort() Sort { return Sort{kind: KindReal} }

// StringSort returns the string sort.
func StringSort() Sort { return Sort{kind: KindString} }

// RegexSort returns the regular-language sort over strings.
func RegexSort() Sort { return Sort{kind: KindRegex} }

// SeqSort returns the sort of finite sequences over elem.
func SeqSort(elem Sort) Sort {
	e := elem
	return Sort{kind: KindSeq, elem: &e}
}

// SetSort returns the sort of sets over elem.
func SetSort(elem Sort) Sort {
	e := elem
	return Sort{kind: KindSet, elem: &e}
}

// ArraySort returns the sort of total maps from key to val.
func ArraySort(key, val Sort) Sort {
	k, v := key, val
	return Sort{kind: KindArray, key: &k, val: &v}
}

// Kind reports the shape of the sort.
func (s Sort) Kind() Kind { return s.kind }

// Elem returns the element sort of a Seq or Set sort.
func (s Sort) Elem() Sort {
	if s.elem == nil {
		panic(fmt.Sprintf("smt: sort %s has no element sort", s))
	}
	return *s.elem
}

// Key returns the key sort of an Array sort.
func (s Sort) Key() Sort {
	if s.key == nil {
		panic(fmt.Sprintf("smt: sort %s has no key sort", s))
	}
	return *s.key
}

// Value returns the value sort of an Array sort.
func (s Sort) Value() Sort {
	if s.val == nil {
		panic(fmt.Sprintf("smt: sort %s has no value sort", s))
	}
	return *s.val
}

// Equal reports whether two sorts are structurally identical.
func (s Sort) Equal(o Sort) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case KindSeq, KindSet:
		return s.Elem().Equal(o.Elem())
	case KindArray:
		return s.Key().Equal(o.Key()) && s.Value().Equal(o.Value())
	default:
		return true
	}
}

// IsNumeric reports whether the sort supports arithmetic.
func (s Sort) IsNumeric() bool {
	return s.kind == KindInt || s.kind == KindReal
}

// IsSequence reports whether the sort has sequence structure
// (lexicographic order, length, concatenation).
func (s Sort) IsSequence() bool {
	return s.kind == KindString || s.kind == KindSeq
}

// String renders the sort in SMT-LIB notation.
func (s Sort) String() string {
	switch s.kind {
	case KindSeq:
		return fmt.Sprintf("(Seq %s)", s.Elem())
	case KindSet:
		return fmt.Sprintf("(Set %s)", s.Elem())
	case KindArray:
		return fmt.Sprintf("(Array %s %s)", s.Key(), s.Value())
	default:
		return s.kind.String()
	}
}
