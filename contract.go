package covenant

import "github.com/covenant-dev/covenant/internal/pyast"

// Contract is what a function promises: preconditions it may assume,
// postconditions it must ensure, and the exceptions it is allowed to
// raise. Conditions are expressions over the function's parameters;
// postconditions additionally see the return value under the name
// "result".
type Contract struct {
	Pre    []pyast.Expr
	Post   []pyast.Expr
	Raises []string
}

// Status is the verdict on one obligation or one whole function.
type Status int

const (
	// StatusUnknown means the prover could not decide.
	StatusUnknown Status = iota
	// StatusProved means the obligation holds on every admissible input.
	StatusProved
	// StatusRefuted means some admissible input violates the obligation.
	StatusRefuted
	// StatusUnsupported means the body or contract uses a construct the
	// prover has no model for; nothing was checked.
	StatusUnsupported
)

// MarshalText renders the status for JSON reports.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s Status) String() string {
	switch s {
	case StatusProved:
		return "proved"
	case StatusRefuted:
		return "refuted"
	case StatusUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// ObligationKind says where a finding's obligation came from.
type ObligationKind int

const (
	// ObligationAssert is an assert statement in the body.
	ObligationAssert ObligationKind = iota
	// ObligationPost is a contract postcondition.
	ObligationPost
	// ObligationRaise is an exception the contract does not allow, which
	// must therefore be unreachable.
	ObligationRaise
)

// MarshalText renders the kind for JSON reports.
func (k ObligationKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k ObligationKind) String() string {
	switch k {
	case ObligationAssert:
		return "assert"
	case ObligationPost:
		return "post"
	default:
		return "raise"
	}
}

// Finding is the verdict on one obligation.
type Finding struct {
	Kind ObligationKind `json:"kind"`
	// Text renders the obligation for reports: the asserted or ensured
	// expression, or the name of a disallowed exception.
	Text           string `json:"text"`
	Status         Status `json:"status"`
	Counterexample string `json:"counterexample,omitempty"`
}

// Conclusion is the rolled-up verdict on one function. A single refuted
// obligation refutes the function; otherwise unsupported beats unknown
// beats proved.
type Conclusion struct {
	Func     string    `json:"func"`
	Status   Status    `json:"status"`
	Findings []Finding `json:"findings,omitempty"`
	// Reason explains an unsupported status.
	Reason string `json:"reason,omitempty"`
}

func rollUp(findings []Finding) Status {
	out := StatusProved
	for _, f := range findings {
		switch f.Status {
		case StatusRefuted:
			return StatusRefuted
		case StatusUnknown:
			out = StatusUnknown
		}
	}
	return out
}
