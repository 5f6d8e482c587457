// Package covenant proves contracts on functions written in a
// dynamically-typed, exception-based subject language. A function body
// is executed symbolically into solver constraints; preconditions
// become assumptions, and every assert, postcondition and disallowed
// exception becomes an obligation the solver must discharge.
package covenant

import (
	"errors"

	"go.uber.org/zap"

	"github.com/covenant-dev/covenant/internal/annotations"
	"github.com/covenant-dev/covenant/internal/eval"
	"github.com/covenant-dev/covenant/internal/fault"
	"github.com/covenant-dev/covenant/internal/proxies"
	"github.com/covenant-dev/covenant/internal/pyast"
	"github.com/covenant-dev/covenant/internal/smt"
	"github.com/covenant-dev/covenant/internal/solve"

	// Arm the library-function registry.
	_ "github.com/covenant-dev/covenant/internal/funcs"
)

// Prover checks functions against their contracts.
type Prover struct {
	log *zap.Logger
}

// Option configures a Prover.
type Option func(*Prover)

// WithLogger routes the prover's diagnostics through the given logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Prover) { p.log = log }
}

// NewProver creates a Prover. Without options it logs nowhere.
func NewProver(opts ...Option) *Prover {
	p := &Prover{log: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ProveFunc checks one function against its contract. A nil contract
// still checks the body's assert statements and flags any reachable
// exception as disallowed.
func (p *Prover) ProveFunc(fn *pyast.FuncDef, c *Contract) *Conclusion {
	if c == nil {
		c = &Contract{}
	}
	log := p.log.With(zap.String("func", fn.Name))
	log.Debug("proving function")

	concl, err := p.prove(fn, c, log)
	if err != nil {
		var unsup *fault.UnsupportedError
		var unbound *fault.UnboundError
		reason := err.Error()
		if !errors.As(err, &unsup) && !errors.As(err, &unbound) {
			log.Warn("proof attempt failed", zap.Error(err))
		}
		return &Conclusion{Func: fn.Name, Status: StatusUnsupported, Reason: reason}
	}
	log.Debug("proof attempt finished", zap.String("status", concl.Status.String()))
	return concl
}

func (p *Prover) prove(fn *pyast.FuncDef, c *Contract, log *zap.Logger) (*Conclusion, error) {
	sctx := smt.NewContext()
	ctx := eval.NewContext(sctx)

	for _, param := range fn.Args {
		sym, err := annotations.Resolve(sctx, param.Name, param.Annotation)
		if err != nil {
			return nil, err
		}
		if sym == nil {
			return nil, fault.Unsupported("parameter without a usable annotation", param.Name)
		}
		ctx.Scope.Set(param.Name, sym)
	}

	for _, pre := range c.Pre {
		v, err := eval.EvalExpr(ctx, pre)
		if err != nil {
			return nil, err
		}
		b, err := proxies.AsBool(v)
		if err != nil {
			return nil, err
		}
		ctx.Given.Add(b)
	}

	if err := eval.EvalBody(ctx, fn.Body); err != nil {
		return nil, err
	}

	premises := ctx.Given.All()
	var findings []Finding

	for _, goal := range ctx.Expected.All() {
		v := solve.Prove(premises, goal)
		findings = append(findings, Finding{
			Kind:           ObligationAssert,
			Text:           goal.String(),
			Status:         status(v.Outcome),
			Counterexample: v.Counterexample,
		})
	}

	post, err := p.checkPosts(ctx, c, premises)
	if err != nil {
		return nil, err
	}
	findings = append(findings, post...)
	findings = append(findings, checkRaises(ctx, c, premises)...)

	for _, f := range findings {
		if f.Status != StatusProved {
			log.Info("obligation not discharged",
				zap.String("kind", f.Kind.String()),
				zap.String("status", f.Status.String()),
				zap.String("obligation", f.Text))
		}
	}
	return &Conclusion{Func: fn.Name, Status: rollUp(findings), Findings: findings}, nil
}

// checkPosts discharges the contract's postconditions. Each one must
// hold on every path that returns normally, with "result" bound to the
// value that path returns. A function with no return statement
// satisfies any postcondition vacuously.
func (p *Prover) checkPosts(ctx *eval.Context, c *Contract, premises []*smt.Term) ([]Finding, error) {
	if len(c.Post) == 0 {
		return nil, nil
	}
	rets := ctx.Returns.All()
	if len(rets) == 0 {
		var out []Finding
		for _, post := range c.Post {
			out = append(out, Finding{Kind: ObligationPost, Text: post.String(), Status: StatusProved})
		}
		return out, nil
	}

	result := rets[0].Value
	returned := ctx.SMT.False()
	for _, r := range rets {
		returned = smt.Or(returned, r.Cond)
	}
	for _, r := range rets[1:] {
		merged, err := proxies.IfExpr(r.Cond, r.Value, result)
		if err != nil {
			return nil, err
		}
		result = merged
	}

	postCtx := ctx.MakeChild()
	postCtx.Scope.Set("result", result)

	var out []Finding
	for _, post := range c.Post {
		v, err := eval.EvalExpr(postCtx, post)
		if err != nil {
			return nil, err
		}
		b, err := proxies.AsBool(v)
		if err != nil {
			return nil, err
		}
		verdict := solve.Prove(premises, smt.Or(smt.Not(returned), b))
		out = append(out, Finding{
			Kind:           ObligationPost,
			Text:           post.String(),
			Status:         status(verdict.Outcome),
			Counterexample: verdict.Counterexample,
		})
	}
	return out, nil
}

// checkRaises turns every recorded exception the contract does not
// allow into an unreachability obligation: its path condition must be
// unsatisfiable under the premises.
func checkRaises(ctx *eval.Context, c *Contract, premises []*smt.Term) []Finding {
	allowed := map[string]bool{}
	for _, name := range c.Raises {
		allowed[name] = true
	}
	var out []Finding
	for _, exc := range ctx.Exceptions.All() {
		permitted := false
		for _, n := range exc.Names {
			if allowed[n] {
				permitted = true
				break
			}
		}
		if permitted {
			continue
		}
		f := Finding{Kind: ObligationRaise, Text: excName(exc.Names)}
		sat, known := solve.Satisfiable(premises, exc.Cond)
		switch {
		case !known:
			f.Status = StatusUnknown
		case sat:
			f.Status = StatusRefuted
		default:
			f.Status = StatusProved
		}
		out = append(out, f)
	}
	return out
}

// excName picks the most specific name: the class itself comes first in
// the recorded base walk.
func excName(names []string) string {
	if len(names) == 0 {
		return "exception"
	}
	return names[0]
}

func status(o solve.Outcome) Status {
	switch o {
	case solve.Proved:
		return StatusProved
	case solve.Refuted:
		return StatusRefuted
	default:
		return StatusUnknown
	}
}
