// Package solve decides proof obligations over the term layer. The
// decision procedure is deliberately incomplete: it combines constant
// folding, assumption propagation, syntactic entailment, integer bound
// reasoning and bounded enumeration of boolean unknowns, and answers
// Unknown for anything beyond that. Incompleteness only ever weakens a
// verdict to Unknown, never flips it.
package solve

// Outcome is a three-valued proof result.
type Outcome int

const (
	// Unknown means the procedure could not decide either way.
	Unknown Outcome = iota
	// Proved means the goal holds under the premises.
	Proved
	// Refuted means the goal fails under some admissible assignment.
	Refuted
)

func (o Outcome) String() string {
	switch o {
	case Proved:
		return "proved"
	case Refuted:
		return "refuted"
	default:
		return "unknown"
	}
}

// Verdict is an outcome with the witness that produced it, when one
// exists.
type Verdict struct {
	Outcome Outcome
	// Counterexample describes the assignment that falsified the goal;
	// empty unless Outcome is Refuted and the refutation came from a
	// concrete assignment.
	Counterexample string
}
