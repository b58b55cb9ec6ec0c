// Copyright (c) 2024 the xsynth authors
//
// MIT License

package synth

import (
	"context"
	"fmt"

	"github.com/nanoxbar/xsynth"
	"github.com/nanoxbar/xsynth/bdd"
	"github.com/nanoxbar/xsynth/ilp"
	"github.com/nanoxbar/xsynth/xbar"
)

// Compact synthesizes a flow crossbar from the diagram rooted at root. Each
// diagram node is labeled onto a wordline (H), a bitline (V), or both, such
// that every diagram edge sees one H endpoint and one V endpoint; the edge
// literal is then programmed at their intersection and VH nodes close their
// own intersection with an always-ON cell. Current between the wordline of
// the true terminal and the wordline of the root then flows exactly on the
// assignments the diagram accepts.
//
// With an objective flag set the labeling is delegated to the ILP solver;
// otherwise a greedy feasible labeling is used. The diagram is read-only
// input.
func Compact(ctx context.Context, c *bdd.Collection, root bdd.Node, name string, cons Constraints) (*xbar.Crossbar, error) {
	if cons.wantsILP() && cons.Solver == nil {
		return nil, fmt.Errorf("synth: %s: objective requested without a solver: %w", name, xsynth.ErrInvalidInput)
	}
	if root == bdd.True || root == bdd.False {
		return constant(name, xbar.Flow, c.Vars(), root == bdd.True, cons)
	}
	d, err := extract(c, root)
	if err != nil {
		return nil, err
	}
	var vl, hl []bool
	if cons.Solver != nil {
		vl, hl, err = labelILP(ctx, d, cons)
	} else {
		vl, hl = labelGreedy(d)
	}
	if err != nil {
		return nil, fmt.Errorf("synth: %s: %w", name, err)
	}
	xb, err := mapFlow(d, vl, hl, name, c.Vars())
	if err != nil {
		return nil, err
	}
	if err := checkLimits(xb.Rows, xb.Cols, cons); err != nil {
		return nil, fmt.Errorf("synth: %s: %w", name, err)
	}
	return xb, nil
}

// labelGreedy computes a feasible VH labeling without a solver: root and
// true terminal on wordlines, internal nodes on bitlines, then one repair
// pass that upgrades an endpoint to VH wherever an edge still misses a V or
// an H side. Adding labels never invalidates other edges, so a single pass
// suffices.
func labelGreedy(d *dag) (vl, hl []bool) {
	vl = make([]bool, len(d.nodes))
	hl = make([]bool, len(d.nodes))
	hl[d.root] = true
	hl[d.trueNode] = true
	for i := range d.nodes {
		if i != d.root && i != d.trueNode {
			vl[i] = true
		}
	}
	for _, e := range d.edges {
		if !vl[e.from] && !vl[e.to] {
			vl[e.from] = true
		}
		if !hl[e.from] && !hl[e.to] {
			hl[e.to] = true
		}
	}
	return vl, hl
}

// labelILP computes the VH labeling through the solver. Per node two
// binaries xV, xH; per edge an orientation selector s deciding which
// endpoint contributes the V side and which the H side:
//
//	xV(u) + xH(v) + 2s(e) >= 2    (s=0: u vertical, v horizontal)
//	xH(u) + xV(v) - 2s(e) >= 0    (s=1: the other orientation)
//
// Root and true terminal are forced onto wordlines so the crossbar's
// source and output stay on nanowire boundaries. The objective combines
// the semiperimeter (sum of labels) and, when requested, the maximum
// dimension encoded by a unary counter.
func labelILP(ctx context.Context, d *dag, cons Constraints) (vl, hl []bool, err error) {
	semiW, dimW := cons.weights()
	m := &ilp.Model{}
	xV := make([]int, len(d.nodes))
	xH := make([]int, len(d.nodes))
	for i := range d.nodes {
		xV[i] = m.Var()
		xH[i] = m.Var()
		m.AtLeast(1, ilp.T(1, xV[i]), ilp.T(1, xH[i]))
	}
	for _, e := range d.edges {
		s := m.Var()
		m.AtLeast(2, ilp.T(1, xV[e.from]), ilp.T(1, xH[e.to]), ilp.T(2, s))
		m.AtLeast(0, ilp.T(1, xH[e.from]), ilp.T(1, xV[e.to]), ilp.T(-2, s))
	}
	m.Equal(1, ilp.T(1, xH[d.root]))
	m.Equal(1, ilp.T(1, xH[d.trueNode]))

	rows := make([]ilp.Term, len(d.nodes))
	cols := make([]ilp.Term, len(d.nodes))
	for i := range d.nodes {
		rows[i] = ilp.T(1, xH[i])
		cols[i] = ilp.T(1, xV[i])
	}
	if cons.RowLimit > 0 {
		m.AtMost(cons.RowLimit, rows...)
	}
	if cons.ColumnLimit > 0 {
		m.AtMost(cons.ColumnLimit, cols...)
	}

	var obj []ilp.Term
	for i := range d.nodes {
		obj = append(obj, ilp.T(semiW, xV[i]), ilp.T(semiW, xH[i]))
	}
	if dimW > 0 {
		// Unary counter for max(rows, cols): minimization drives the
		// counter down onto the larger of the two sums.
		counter := make([]ilp.Term, len(d.nodes))
		for k := range counter {
			counter[k] = ilp.T(1, m.Var())
		}
		m.AtLeast(0, append(append([]ilp.Term(nil), counter...), negate(rows)...)...)
		m.AtLeast(0, append(append([]ilp.Term(nil), counter...), negate(cols)...)...)
		for _, t := range counter {
			obj = append(obj, ilp.T(dimW, t.Var))
		}
	}
	if err := m.Minimize(obj...); err != nil {
		return nil, nil, err
	}

	sol, err := cons.Solver.Solve(ctx, m)
	if err != nil {
		return nil, nil, err
	}
	if sol.Status == ilp.Infeasible {
		return nil, nil, fmt.Errorf("labeling rejected by the solver: %w", xsynth.ErrInfeasible)
	}
	vl = make([]bool, len(d.nodes))
	hl = make([]bool, len(d.nodes))
	for i := range d.nodes {
		vl[i] = sol.Value(xV[i])
		hl[i] = sol.Value(xH[i])
	}
	return vl, hl, nil
}

func negate(terms []ilp.Term) []ilp.Term {
	neg := make([]ilp.Term, len(terms))
	for i, t := range terms {
		neg[i] = ilp.Term{Coef: -t.Coef, Var: t.Var, Neg: t.Neg}
	}
	return neg
}

// mapFlow lays the labeled diagram out on the grid: wordlines in node
// order for H labels, bitlines in node order for V labels. Each edge
// programs its literal at the intersection of its H endpoint's wordline
// and its V endpoint's bitline; a VH endpoint takes whichever role the
// other endpoint leaves open, and closes its own intersection with an ON
// cell.
func mapFlow(d *dag, vl, hl []bool, name string, vars []string) (*xbar.Crossbar, error) {
	row := make([]int, len(d.nodes))
	col := make([]int, len(d.nodes))
	rows, cols := 0, 0
	for i := range d.nodes {
		row[i], col[i] = -1, -1
		if hl[i] {
			row[i] = rows
			rows++
		}
		if vl[i] {
			col[i] = cols
			cols++
		}
	}
	xb, err := xbar.New(name, xbar.Flow, rows, cols, vars)
	if err != nil {
		return nil, err
	}
	for _, e := range d.edges {
		u, v := e.from, e.to
		var r, c int
		switch {
		case vl[u] && hl[u]:
			if hl[v] {
				r, c = row[v], col[u]
			} else {
				r, c = row[u], col[v]
			}
		case vl[v] && hl[v]:
			if hl[u] {
				r, c = row[u], col[v]
			} else {
				r, c = row[v], col[u]
			}
		case hl[u]:
			r, c = row[u], col[v]
		default:
			r, c = row[v], col[u]
		}
		xb.SetCell(r, c, e.lit)
	}
	for i := range d.nodes {
		if vl[i] && hl[i] {
			xb.SetCell(row[i], col[i], xbar.Literal{Kind: xbar.On})
		}
	}
	xb.Source = row[d.trueNode]
	xb.Output = row[d.root]
	return xb, nil
}
