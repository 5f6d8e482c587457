package solve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/covenant-dev/covenant/internal/smt"
)

const (
	maxPropagationRounds = 8
	maxEnumeratedBools   = 12
)

// Prove decides whether the premises entail the goal. Inconsistent
// premises prove everything; that is the desired reading, since an
// unreachable path has no obligations.
func Prove(premises []*smt.Term, goal *smt.Term) Verdict {
	prem, g, consistent := propagate(premises, goal)
	if !consistent {
		return Verdict{Outcome: Proved}
	}
	if b, ok := g.BoolLit(); ok {
		if b {
			return Verdict{Outcome: Proved}
		}
		return Verdict{Outcome: Refuted}
	}

	bounds := intBounds(prem)
	var open []*smt.Term
	for _, sub := range smt.Conjuncts(g) {
		if entailed(prem, bounds, sub) {
			continue
		}
		open = append(open, sub)
	}
	if len(open) == 0 {
		return Verdict{Outcome: Proved}
	}
	if len(prem) == 0 {
		for _, sub := range open {
			if cx, ok := refuteFree(sub); ok {
				return Verdict{Outcome: Refuted, Counterexample: cx}
			}
		}
	}
	return enumerate(prem, open)
}

// Satisfiable reports whether cond can hold while every premise does.
// The second return is false when the procedure cannot tell.
func Satisfiable(premises []*smt.Term, cond *smt.Term) (sat, known bool) {
	switch v := Prove(premises, smt.Not(cond)); v.Outcome {
	case Proved:
		return false, true
	case Refuted:
		return true, true
	default:
		return false, false
	}
}

// propagate folds the premises to a fixpoint, feeding facts learned
// from unit conjuncts (a bare boolean constant, its negation, or an
// equation pinning a constant to a closed term) back into everything
// else. Returns the surviving premise conjuncts, the reduced goal, and
// whether the premises are still consistent.
func propagate(premises []*smt.Term, goal *smt.Term) ([]*smt.Term, *smt.Term, bool) {
	var prem []*smt.Term
	for _, p := range premises {
		prem = append(prem, smt.Conjuncts(smt.Simplify(p))...)
	}
	g := smt.Simplify(goal)

	for round := 0; round < maxPropagationRounds; round++ {
		sub := map[string]*smt.Term{}
		for _, p := range prem {
			learnUnit(p, sub)
		}
		if len(sub) == 0 {
			break
		}
		var next []*smt.Term
		for _, p := range prem {
			p = smt.Simplify(smt.Substitute(p, sub))
			for _, c := range smt.Conjuncts(p) {
				if b, ok := c.BoolLit(); ok {
					if !b {
						return nil, nil, false
					}
					continue
				}
				next = append(next, c)
			}
		}
		prem = next
		g = smt.Simplify(smt.Substitute(g, sub))
	}

	var out []*smt.Term
	for _, p := range prem {
		if b, ok := p.BoolLit(); ok {
			if !b {
				return nil, nil, false
			}
			continue
		}
		out = append(out, p)
	}
	return out, g, true
}

// refuteFree finds a falsifying integer assignment for a subgoal that
// constrains a single otherwise-unconstrained constant. Only called
// when no premises survive propagation, so any assignment is
// admissible.
func refuteFree(g *smt.Term) (string, bool) {
	neg := false
	if g.Op() == smt.OpNot {
		g, neg = g.Arg(0), true
	}

	if name, lit, cmp, ok := splitCmp(g); ok {
		witness := map[cmpKind]int64{
			cmpGe: lit - 1, // x >= lit fails at lit-1
			cmpGt: lit,
			cmpLe: lit + 1,
			cmpLt: lit,
		}[cmp]
		if neg {
			// the negation fails exactly where the comparison holds
			witness = map[cmpKind]int64{
				cmpGe: lit,
				cmpGt: lit + 1,
				cmpLe: lit,
				cmpLt: lit - 1,
			}[cmp]
		}
		return fmt.Sprintf("%s = %d", name, witness), true
	}

	if g.Op() == smt.OpEq {
		a, b := g.Arg(0), g.Arg(1)
		if a.Op() != smt.OpConst {
			a, b = b, a
		}
		if a.Op() != smt.OpConst {
			return "", false
		}
		if lit, ok := b.IntLit(); ok {
			if neg {
				return fmt.Sprintf("%s = %d", a.Name(), lit), true
			}
			return fmt.Sprintf("%s = %d", a.Name(), lit+1), true
		}
	}
	return "", false
}

func learnUnit(p *smt.Term, sub map[string]*smt.Term) {
	switch p.Op() {
	case smt.OpConst:
		if p.Sort().Kind() == smt.KindBool {
			sub[p.Name()] = p.Context().True()
		}
	case smt.OpNot:
		inner := p.Arg(0)
		if inner.Op() == smt.OpConst && inner.Sort().Kind() == smt.KindBool {
			sub[inner.Name()] = p.Context().False()
		}
	case smt.OpEq:
		a, b := p.Arg(0), p.Arg(1)
		if a.Op() != smt.OpConst {
			a, b = b, a
		}
		if a.Op() == smt.OpConst && len(smt.Consts(b)) == 0 {
			if _, seen := sub[a.Name()]; !seen {
				sub[a.Name()] = b
			}
		}
	}
}

// entailed reports whether one subgoal follows syntactically: it is a
// premise verbatim, or an integer comparison inside bounds the
// premises establish.
func entailed(prem []*smt.Term, bounds map[string]bound, sub *smt.Term) bool {
	for _, p := range prem {
		if smt.TermEqual(p, sub) {
			return true
		}
	}
	name, lit, cmp, ok := splitCmp(sub)
	if !ok {
		return false
	}
	b, ok := bounds[name]
	if !ok {
		return false
	}
	switch cmp {
	case cmpGe:
		return b.hasLo && b.lo >= lit
	case cmpGt:
		return b.hasLo && b.lo > lit
	case cmpLe:
		return b.hasHi && b.hi <= lit
	case cmpLt:
		return b.hasHi && b.hi < lit
	}
	return false
}

type bound struct {
	lo, hi       int64
	hasLo, hasHi bool
}

type cmpKind int

const (
	cmpGe cmpKind = iota // name >= lit
	cmpGt
	cmpLe
	cmpLt
)

// splitCmp decomposes an integer comparison between one constant and
// one literal into (name, literal, direction).
func splitCmp(t *smt.Term) (string, int64, cmpKind, bool) {
	strict := t.Op() == smt.OpLt
	if !strict && t.Op() != smt.OpLe {
		return "", 0, 0, false
	}
	a, b := t.Arg(0), t.Arg(1)
	if lit, ok := a.IntLit(); ok && b.Op() == smt.OpConst {
		// lit < name / lit <= name
		if strict {
			return b.Name(), lit, cmpGt, true
		}
		return b.Name(), lit, cmpGe, true
	}
	if lit, ok := b.IntLit(); ok && a.Op() == smt.OpConst {
		if strict {
			return a.Name(), lit, cmpLt, true
		}
		return a.Name(), lit, cmpLe, true
	}
	return "", 0, 0, false
}

// intBounds collects the tightest inclusive bounds the premises place
// on each integer constant.
func intBounds(prem []*smt.Term) map[string]bound {
	out := map[string]bound{}
	for _, p := range prem {
		name, lit, cmp, ok := splitCmp(p)
		if !ok {
			continue
		}
		b := out[name]
		switch cmp {
		case cmpGe:
			if !b.hasLo || lit > b.lo {
				b.lo, b.hasLo = lit, true
			}
		case cmpGt:
			if !b.hasLo || lit+1 > b.lo {
				b.lo, b.hasLo = lit+1, true
			}
		case cmpLe:
			if !b.hasHi || lit < b.hi {
				b.hi, b.hasHi = lit, true
			}
		case cmpLt:
			if !b.hasHi || lit-1 < b.hi {
				b.hi, b.hasHi = lit-1, true
			}
		}
		out[name] = b
	}
	return out
}

// enumerate tries every assignment of the free boolean constants. The
// premises select the admissible assignments; the goal must hold on
// all of them.
func enumerate(prem, goals []*smt.Term) Verdict {
	seen := map[string]bool{}
	var names []string
	collect := func(t *smt.Term) {
		for _, c := range smt.Consts(t) {
			if c.Sort().Kind() == smt.KindBool && !seen[c.Name()] {
				seen[c.Name()] = true
				names = append(names, c.Name())
			}
		}
	}
	for _, p := range prem {
		collect(p)
	}
	for _, g := range goals {
		collect(g)
	}
	if len(names) == 0 || len(names) > maxEnumeratedBools {
		return Verdict{Outcome: Unknown}
	}
	sort.Strings(names)
	ctx := goals[0].Context()

	inconclusive := false
	for mask := 0; mask < 1<<len(names); mask++ {
		sub := map[string]*smt.Term{}
		for i, n := range names {
			sub[n] = ctx.Bool(mask&(1<<i) != 0)
		}
		admissible := true
		for _, p := range prem {
			b, ok := smt.Simplify(smt.Substitute(p, sub)).BoolLit()
			if !ok {
				inconclusive = true
				admissible = false
				break
			}
			if !b {
				admissible = false
				break
			}
		}
		if !admissible {
			continue
		}
		for _, g := range goals {
			b, ok := smt.Simplify(smt.Substitute(g, sub)).BoolLit()
			if !ok {
				inconclusive = true
				break
			}
			if !b {
				return Verdict{Outcome: Refuted, Counterexample: describe(names, mask)}
			}
		}
	}
	if inconclusive {
		return Verdict{Outcome: Unknown}
	}
	return Verdict{Outcome: Proved}
}

func describe(names []string, mask int) string {
	var b strings.Builder
	for i, n := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(n)
		if mask&(1<<i) != 0 {
			b.WriteString(" = true")
		} else {
			b.WriteString(" = false")
		}
	}
	return b.String()
}
