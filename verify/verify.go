// Copyright (c) 2024 the xsynth authors
//
// MIT License

/*
Package verify checks that a synthesized crossbar implements its source
function exactly. Small arities are checked by explicit enumeration of every
assignment, ascending, so the reported counterexample is always the smallest
one. Larger arities are checked symbolically: crossbar conduction is
unrolled into a combinational circuit, the reference diagram is encoded with
choice gates, and the miter of the two is handed to a SAT engine; a
counterexample, when one exists, is minimized to the smallest assignment
value through incremental assumptions, so both strategies report the same
witness.

Verification is exact in both regimes, never sampled.
*/
package verify

import (
	"context"
	"fmt"

	"github.com/irifrance/gini"
	"github.com/irifrance/gini/inter"
	"github.com/irifrance/gini/logic"
	"github.com/irifrance/gini/z"
	"github.com/nanoxbar/xsynth"
	"github.com/nanoxbar/xsynth/bdd"
	"github.com/nanoxbar/xsynth/boolfunc"
	"github.com/nanoxbar/xsynth/xbar"
)

// ExplicitBound is the default arity above which verification switches from
// explicit enumeration to the symbolic engine.
const ExplicitBound = 16

// Result is the outcome of a verification. When Equivalent is false,
// CounterExample holds the smallest mismatching assignment in the
// function's variable order.
type Result struct {
	Equivalent     bool
	CounterExample []bool
}

type options struct {
	bound int
	coll  *bdd.Collection
	root  bdd.Node
}

// Option configures a verification call.
type Option func(*options)

// WithBound overrides the arity bound for explicit enumeration.
func WithBound(n int) Option {
	return func(o *options) { o.bound = n }
}

// WithDiagram supplies the decision diagram of the function for the
// symbolic path. The diagram must have been built from the verified
// function; its collection may use any ordering of the same variables.
func WithDiagram(c *bdd.Collection, root bdd.Node) Option {
	return func(o *options) { o.coll = c; o.root = root }
}

// Verify checks the crossbar against f on every assignment and returns the
// verdict with the smallest counterexample on mismatch. Above the explicit
// bound a diagram is required (WithDiagram); enumeration through a
// black-box evaluation procedure would not terminate in useful time there.
func Verify(ctx context.Context, f *boolfunc.Function, xb *xbar.Crossbar, opts ...Option) (Result, error) {
	o := options{bound: ExplicitBound}
	for _, opt := range opts {
		opt(&o)
	}
	toF, err := align(f, xb)
	if err != nil {
		return Result{}, err
	}
	if f.Arity() <= o.bound {
		return enumerate(ctx, f, xb, toF)
	}
	if o.coll == nil {
		return Result{}, fmt.Errorf("verify: %s has arity %d over the explicit bound %d and no diagram was supplied: %w",
			f.Name(), f.Arity(), o.bound, xsynth.ErrInvalidInput)
	}
	return symbolic(ctx, f, xb, toF, o.coll, o.root)
}

// align maps crossbar variable positions to function variable positions.
// The two must use the same variable set.
func align(f *boolfunc.Function, xb *xbar.Crossbar) ([]int, error) {
	fvars := f.Vars()
	xvars := xb.Vars()
	if len(fvars) != len(xvars) {
		return nil, fmt.Errorf("verify: %s has %d variables, crossbar %s has %d: %w",
			f.Name(), len(fvars), xb.Name, len(xvars), xsynth.ErrInvalidInput)
	}
	pos := make(map[string]int, len(fvars))
	for i, v := range fvars {
		pos[v] = i
	}
	toF := make([]int, len(xvars))
	for j, v := range xvars {
		p, ok := pos[v]
		if !ok {
			return nil, fmt.Errorf("verify: crossbar %s uses variable %s unknown to %s: %w",
				xb.Name, v, f.Name(), xsynth.ErrInvalidInput)
		}
		toF[j] = p
	}
	return toF, nil
}

// enumerate walks every assignment in ascending value order.
func enumerate(ctx context.Context, f *boolfunc.Function, xb *xbar.Crossbar, toF []int) (Result, error) {
	fasg := make([]bool, f.Arity())
	xasg := make([]bool, xb.Arity())
	for v := 0; v < 1<<f.Arity(); v++ {
		if v&0xfff == 0 {
			select {
			case <-ctx.Done():
				return Result{}, fmt.Errorf("verify: enumeration abandoned: %v: %w", ctx.Err(), xsynth.ErrTimeout)
			default:
			}
		}
		boolfunc.Assign(v, fasg)
		for j, p := range toF {
			xasg[j] = fasg[p]
		}
		got, err := xb.Eval(xasg)
		if err != nil {
			return Result{}, err
		}
		if got != f.Eval(fasg) {
			return Result{CounterExample: append([]bool(nil), fasg...)}, nil
		}
	}
	return Result{Equivalent: true}, nil
}

// ************************************************************

// symbolic builds the miter of the crossbar conduction circuit and the
// diagram encoding, solves it, and minimizes any counterexample
// lexicographically so the witness matches the enumeration order.
func symbolic(ctx context.Context, f *boolfunc.Function, xb *xbar.Crossbar, toF []int, coll *bdd.Collection, root bdd.Node) (Result, error) {
	circ := logic.NewC()
	in := make([]z.Lit, f.Arity())
	for i := range in {
		in[i] = circ.Lit()
	}
	xin := make([]z.Lit, xb.Arity())
	for j, p := range toF {
		xin[j] = in[p]
	}
	conduct := conduction(circ, xb, xin)
	ref, err := encodeDiagram(circ, coll, root, f, in)
	if err != nil {
		return Result{}, err
	}
	m := circ.Xor(conduct, ref)
	if m == circ.F {
		// The two sides collapsed to one literal; no mismatch possible.
		return Result{Equivalent: true}, nil
	}
	g := gini.New()
	circ.ToCnfFrom(g, m)
	g.Add(m)
	g.Add(0)
	status, err := solve(ctx, g)
	if err != nil {
		return Result{}, err
	}
	if status < 0 {
		return Result{Equivalent: true}, nil
	}
	// Fix variables most-significant first, preferring false, so the final
	// assignment is the smallest counterexample by value.
	asg := make([]bool, len(in))
	fixed := make([]z.Lit, 0, len(in))
	for i := range in {
		g.Assume(fixed...)
		g.Assume(in[i].Not())
		st, err := solve(ctx, g)
		if err != nil {
			return Result{}, err
		}
		if st > 0 {
			fixed = append(fixed, in[i].Not())
		} else {
			asg[i] = true
			fixed = append(fixed, in[i])
		}
	}
	return Result{CounterExample: asg}, nil
}

// solve runs the engine in a goroutine and abandons it when the context
// expires.
func solve(ctx context.Context, g inter.S) (int, error) {
	ch := make(chan int, 1)
	go func() { ch <- g.Solve() }()
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("verify: solve abandoned: %v: %w", ctx.Err(), xsynth.ErrTimeout)
	case status := <-ch:
		return status, nil
	}
}

// conduction unrolls source-to-output reachability into a combinational
// circuit: one relaxation round per wordline is enough, since a simple
// conducting path visits each wordline at most once.
func conduction(circ *logic.C, xb *xbar.Crossbar, xin []z.Lit) z.Lit {
	cell := func(r, c int) z.Lit { return litOf(circ, xb.Cell(r, c), xin) }
	if xb.Kind == xbar.Path {
		cell = func(r, c int) z.Lit {
			if xb.Cell(r, c).Kind == xbar.On {
				return litOf(circ, xb.Selector(c), xin)
			}
			return circ.F
		}
	}
	reach := make([]z.Lit, xb.Rows)
	for r := range reach {
		reach[r] = circ.F
	}
	reach[xb.Source] = circ.T
	for round := 0; round < xb.Rows; round++ {
		cols := make([]z.Lit, xb.Cols)
		for c := range cols {
			var touch []z.Lit
			for r := 0; r < xb.Rows; r++ {
				touch = append(touch, circ.And(cell(r, c), reach[r]))
			}
			cols[c] = circ.Ors(touch...)
		}
		next := make([]z.Lit, xb.Rows)
		for r := 0; r < xb.Rows; r++ {
			var touch []z.Lit
			for c := 0; c < xb.Cols; c++ {
				touch = append(touch, circ.And(cell(r, c), cols[c]))
			}
			next[r] = circ.Or(reach[r], circ.Ors(touch...))
		}
		reach = next
	}
	return reach[xb.Output]
}

func litOf(circ *logic.C, l xbar.Literal, xin []z.Lit) z.Lit {
	switch l.Kind {
	case xbar.On:
		return circ.T
	case xbar.Pos:
		return xin[l.Var]
	case xbar.Neg:
		return xin[l.Var].Not()
	default:
		return circ.F
	}
}

// encodeDiagram lowers the diagram to choice gates, children first. The
// collection ordering may differ from the function's declaration order, so
// levels are translated by variable name.
func encodeDiagram(circ *logic.C, coll *bdd.Collection, root bdd.Node, f *boolfunc.Function, in []z.Lit) (z.Lit, error) {
	pos := make(map[string]int, f.Arity())
	for i, v := range f.Vars() {
		pos[v] = i
	}
	lits := map[bdd.Node]z.Lit{bdd.False: circ.F, bdd.True: circ.T}
	err := coll.Allnodes(func(id bdd.Node, level int, low, high bdd.Node) error {
		if id <= bdd.True {
			return nil
		}
		p, ok := pos[coll.Var(level)]
		if !ok {
			return fmt.Errorf("verify: diagram variable %s unknown to %s: %w",
				coll.Var(level), f.Name(), xsynth.ErrInvalidInput)
		}
		lits[id] = circ.Choice(in[p], lits[high], lits[low])
		return nil
	}, root)
	if err != nil {
		return circ.F, err
	}
	return lits[root], nil
}
