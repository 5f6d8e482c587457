// Package fault defines the error taxonomy shared by the evaluator, the
// symbolic value model and the builtin registry. Every error here is
// fatal to the proof attempt of the enclosing function and never leaks
// into sibling functions.
package fault

import "fmt"

// UnsupportedError reports a statement, expression, target or call shape
// the evaluator does not model. It is never silently skipped.
type UnsupportedError struct {
	Construct string // what was encountered, e.g. "multiple assignment"
	Name      string // optional identifier involved
}

func (e *UnsupportedError) Error() string {
	if e.Name == "" {
		return "unsupported: " + e.Construct
	}
	return fmt.Sprintf("unsupported: %s (%s)", e.Construct, e.Name)
}

// Unsupported builds an UnsupportedError.
func Unsupported(construct, name string) error {
	return &UnsupportedError{Construct: construct, Name: name}
}

// UnboundError reports a variable that has no determinable value on one
// side of a conditional merge.
type UnboundError struct {
	Name string
}

func (e *UnboundError) Error() string {
	return "unbound variable: " + e.Name
}

// SortMismatchError reports an operator applied to incompatible symbolic
// value variants.
type SortMismatchError struct {
	Op    string
	Left  string
	Right string
}

func (e *SortMismatchError) Error() string {
	if e.Right == "" {
		return fmt.Sprintf("sort mismatch: %s is not defined on %s", e.Op, e.Left)
	}
	return fmt.Sprintf("sort mismatch: %s is not defined on %s and %s", e.Op, e.Left, e.Right)
}
