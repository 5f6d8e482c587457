package smt

import (
	"fmt"
	"io"
)

// WriteQuery serializes a satisfiability query in SMT-LIB2 form: the
// premises are asserted, the goal is asserted negated, so that "unsat"
// from a solver process means the goal holds under the premises. This is
// the hand-off format for an external solver; the in-repo checker in the
// solve package does not go through it.
func WriteQuery(w io.Writer, premises []*Term, goal *Term) error {
	if _, err := fmt.Fprintln(w, "(set-logic ALL)"); err != nil {
		return err
	}
	if err := writeDecls(w, append(append([]*Term{}, premises...), goal)); err != nil {
		return err
	}
	for _, p := range premises {
		if _, err := fmt.Fprintf(w, "(assert %s)\n", p); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "(assert (not %s))\n", goal); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "(check-sat)")
	return err
}

func writeDecls(w io.Writer, terms []*Term) error {
	seenConst := map[string]bool{}
	seenDecl := map[string]bool{}
	needCount := false

	var walk func(*Term) error
	walk = func(t *Term) error {
		switch t.op {
		case OpConst:
			if !seenConst[t.name] {
				seenConst[t.name] = true
				if _, err := fmt.Fprintf(w, "(declare-const %s %s)\n", t.name, t.sort); err != nil {
					return err
				}
			}
		case OpApply:
			if !seenDecl[t.decl.name] {
				seenDecl[t.decl.name] = true
				if _, err := fmt.Fprintf(w, "(declare-fun %s (", t.decl.name); err != nil {
					return err
				}
				for i, s := range t.decl.domain {
					sep := " "
					if i == 0 {
						sep = ""
					}
					if _, err := fmt.Fprintf(w, "%s%s", sep, s); err != nil {
						return err
					}
				}
				if _, err := fmt.Fprintf(w, ") %s)\n", t.decl.rng); err != nil {
					return err
				}
			}
		case OpCount:
			needCount = true
		}
		for _, a := range t.args {
			if err := walk(a); err != nil {
				return err
			}
		}
		return nil
	}
	for _, t := range terms {
		if err := walk(t); err != nil {
			return err
		}
	}
	if needCount {
		// occurrence counting has no standard SMT-LIB form; leave it
		// uninterpreted in the emitted query
		if _, err := fmt.Fprintln(w, "; str.count / seq.count are uninterpreted helpers"); err != nil {
			return err
		}
	}
	return nil
}
