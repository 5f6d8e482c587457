package smt

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders the term as an s-expression in (mostly) SMT-LIB
// vocabulary. Operators that depend on the operand theory pick the
// string or sequence spelling from the operand sort.
func (t *Term) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Term) write(b *strings.Builder) {
	switch t.op {
	case OpBoolLit:
		b.WriteString(strconv.FormatBool(t.bval))
	case OpIntLit:
		if t.ival < 0 {
			fmt.Fprintf(b, "(- %d)", -t.ival)
			return
		}
		b.WriteString(strconv.FormatInt(t.ival, 10))
	case OpRealLit:
		if t.fval < 0 {
			fmt.Fprintf(b, "(- %s)", strconv.FormatFloat(-t.fval, 'g', -1, 64))
			return
		}
		b.WriteString(strconv.FormatFloat(t.fval, 'g', -1, 64))
	case OpStrLit:
		b.WriteString(strconv.Quote(t.sval))
	case OpReLit:
		b.WriteString("(re.pattern ")
		b.WriteString(strconv.Quote(t.sval))
		b.WriteByte(')')
	case OpConst:
		b.WriteString(t.name)
	case OpSeqLit:
		if len(t.args) == 0 {
			fmt.Fprintf(b, "(as seq.empty %s)", t.sort)
			return
		}
		t.writeApp(b, "seq.++", func(i int, a *Term) {
			b.WriteString("(seq.unit ")
			a.write(b)
			b.WriteByte(')')
		})
	case OpSetLit:
		if len(t.args) == 0 {
			fmt.Fprintf(b, "(as set.empty %s)", t.sort)
			return
		}
		b.WriteString("(set.insert")
		for _, a := range t.args {
			b.WriteByte(' ')
			a.write(b)
		}
		fmt.Fprintf(b, " (as set.empty %s))", t.sort)
	case OpArrayConst:
		fmt.Fprintf(b, "((as const %s) ", t.sort)
		t.args[0].write(b)
		b.WriteByte(')')
	case OpApply:
		t.writeApp(b, t.decl.name, nil)
	default:
		t.writeApp(b, t.word(), nil)
	}
}

func (t *Term) writeApp(b *strings.Builder, head string, each func(int, *Term)) {
	b.WriteByte('(')
	b.WriteString(head)
	for i, a := range t.args {
		b.WriteByte(' ')
		if each != nil {
			each(i, a)
		} else {
			a.write(b)
		}
	}
	b.WriteByte(')')
}

// word picks the operator spelling, using the str.* family when the
// relevant operand is a string.
func (t *Term) word() string {
	str := len(t.args) > 0 && t.args[0].sort.kind == KindString
	pick := func(s, q string) string {
		if str {
			return s
		}
		return q
	}
	switch t.op {
	case OpNot:
		return "not"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpImplies:
		return "=>"
	case OpIte:
		return "ite"
	case OpEq:
		return "="
	case OpLt:
		if t.args[0].sort.IsSequence() {
			return pick("str.<", "seq.<")
		}
		return "<"
	case OpLe:
		if t.args[0].sort.IsSequence() {
			return pick("str.<=", "seq.<=")
		}
		return "<="
	case OpAdd:
		return "+"
	case OpSub, OpNeg:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpFloorDiv:
		return "div"
	case OpMod:
		return "mod"
	case OpPow:
		return "^"
	case OpToReal:
		return "to_real"
	case OpToInt:
		return "to_int"
	case OpLength:
		return pick("str.len", "seq.len")
	case OpConcat:
		return pick("str.++", "seq.++")
	case OpAt:
		return pick("str.at", "seq.nth")
	case OpExtract:
		return pick("str.substr", "seq.extract")
	case OpIndexOf:
		return pick("str.indexof", "seq.indexof")
	case OpContains:
		return pick("str.contains", "seq.contains")
	case OpPrefixOf:
		return pick("str.prefixof", "seq.prefixof")
	case OpSuffixOf:
		return pick("str.suffixof", "seq.suffixof")
	case OpCount:
		// no standard spelling; declared as a helper by the serializer
		return pick("str.count", "seq.count")
	case OpSetAdd:
		return "set.insert"
	case OpMember:
		return "set.member"
	case OpUnion:
		return "set.union"
	case OpInter:
		return "set.inter"
	case OpCard:
		return "set.card"
	case OpStore:
		return "store"
	case OpSelect:
		return "select"
	case OpInRe:
		return "str.in_re"
	default:
		return "?"
	}
}
