// Package eval walks function bodies and turns them into solver
// constraints. Execution is symbolic: every statement contributes
// conditions to a layered context instead of running, and control flow
// becomes boolean structure over those conditions.
package eval

import (
	"github.com/covenant-dev/covenant/internal/proxies"
	"github.com/covenant-dev/covenant/internal/smt"
)

// ReturnInfo is one recorded return: the value and the path condition
// under which that return is the one taken.
type ReturnInfo struct {
	Value proxies.Value
	Cond  *smt.Term
}

// ExceptionInfo is one recorded raise: the names the raised exception
// answers to (its class and every base) and the path condition under
// which it fires.
type ExceptionInfo struct {
	Names []string
	Cond  *smt.Term
}

// Register is an append-only record with layers. A child register sees
// everything its parent holds; additions land in the child and stay
// invisible to the parent until the caller merges them explicitly.
type Register[T any] struct {
	parent *Register[T]
	items  []T
}

// NewRegister creates an empty root register.
func NewRegister[T any]() *Register[T] { return &Register[T]{} }

// Layer creates a child register on top of r.
func (r *Register[T]) Layer() *Register[T] { return &Register[T]{parent: r} }

// Add records an item in the top layer.
func (r *Register[T]) Add(item T) { r.items = append(r.items, item) }

// Local returns the items of the top layer only.
func (r *Register[T]) Local() []T { return r.items }

// All returns every item visible from r, oldest layer first.
func (r *Register[T]) All() []T {
	if r.parent == nil {
		return r.items
	}
	out := append([]T{}, r.parent.All()...)
	return append(out, r.items...)
}

// Scope is a layered variable binding map with deterministic iteration
// order.
type Scope struct {
	parent *Scope
	names  []string
	vars   map[string]proxies.Value
}

// NewScope creates an empty root scope.
func NewScope() *Scope { return &Scope{vars: map[string]proxies.Value{}} }

// Layer creates a child scope on top of s.
func (s *Scope) Layer() *Scope {
	return &Scope{parent: s, vars: map[string]proxies.Value{}}
}

// Get looks a name up through the layer chain.
func (s *Scope) Get(name string) (proxies.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set binds a name in the top layer, shadowing outer bindings.
func (s *Scope) Set(name string, v proxies.Value) {
	if _, ok := s.vars[name]; !ok {
		s.names = append(s.names, name)
	}
	s.vars[name] = v
}

// LocalNames returns the names bound in the top layer, in binding
// order.
func (s *Scope) LocalNames() []string { return s.names }

// Trace tracks which functions are on the symbolic call stack, so that
// recursive calls can be cut off and summarized.
type Trace struct {
	active map[string]bool
}

// NewTrace creates an empty trace.
func NewTrace() *Trace { return &Trace{active: map[string]bool{}} }

// Has reports whether name is currently being evaluated.
func (t *Trace) Has(name string) bool { return t.active[name] }

// Guard marks name active and returns the release that unmarks it. The
// release must run on every exit path, including errors.
func (t *Trace) Guard(name string) func() {
	t.active[name] = true
	return func() { delete(t.active, name) }
}

// Context is the full evaluation state: the solver handle plus the five
// registers symbolic execution accumulates into.
//
// Scope holds variable bindings. Given holds assumptions the caller
// grants (annotations, preconditions, library axioms). Expected holds
// obligations that must be proved. Exceptions and Returns record every
// way control can leave the body, each guarded by its path condition.
type Context struct {
	SMT        *smt.Context
	Scope      *Scope
	Given      *Register[*smt.Term]
	Expected   *Register[*smt.Term]
	Exceptions *Register[ExceptionInfo]
	Returns    *Register[ReturnInfo]
	Trace      *Trace
}

// NewContext creates a fresh root context over a solver handle.
func NewContext(sc *smt.Context) *Context {
	return &Context{
		SMT:        sc,
		Scope:      NewScope(),
		Given:      NewRegister[*smt.Term](),
		Expected:   NewRegister[*smt.Term](),
		Exceptions: NewRegister[ExceptionInfo](),
		Returns:    NewRegister[ReturnInfo](),
		Trace:      NewTrace(),
	}
}

// MakeChild layers a new context for a conditional branch. Additions to
// scope, expected, exceptions and returns stay local to the branch
// until merged; assumptions and the trace are shared.
func (c *Context) MakeChild() *Context {
	return &Context{
		SMT:        c.SMT,
		Scope:      c.Scope.Layer(),
		Given:      c.Given,
		Expected:   c.Expected.Layer(),
		Exceptions: c.Exceptions.Layer(),
		Returns:    c.Returns.Layer(),
		Trace:      c.Trace,
	}
}

// MakeCall builds the context a called function body evaluates in: a
// fresh scope and return register, with assumptions, obligations,
// exceptions and the trace flowing through to the caller.
func (c *Context) MakeCall() *Context {
	return &Context{
		SMT:        c.SMT,
		Scope:      NewScope(),
		Given:      c.Given,
		Expected:   c.Expected,
		Exceptions: c.Exceptions,
		Returns:    NewRegister[ReturnInfo](),
		Trace:      c.Trace,
	}
}

// Interrupted is the condition under which control has already left the
// body: the disjunction of every recorded raise and return condition.
func (c *Context) Interrupted() *smt.Term {
	out := c.SMT.False()
	for _, e := range c.Exceptions.All() {
		out = smt.Or(out, e.Cond)
	}
	for _, r := range c.Returns.All() {
		out = smt.Or(out, r.Cond)
	}
	return out
}
