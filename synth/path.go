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

// mergeClass groups the diagram edges that may share one bitline: edges
// into the same child carrying the same literal. A bitline joining the
// child and all such parents conducts exactly when any of the unmerged
// bitlines would, since all of them meet in the child's wordline, so the
// merge never changes connectivity.
type mergeClass struct {
	lit   xbar.Literal
	child int
	rows  []int
}

// Path synthesizes a selector crossbar from the diagram rooted at root:
// one wordline per diagram node, one bitline per merge class of diagram
// edges. The bitline carries the edge literal as its selector and holds ON
// cells on the wordlines of the child and of every parent in the class.
// Current between the true terminal's wordline and the root's wordline then
// flows exactly on the accepted assignments, since each diagram node has
// one conducting decision literal per assignment.
//
// Under a ColumnLimit the bitline packing is delegated to the solver when
// one is present; without a solver every class is merged and the limit is
// checked directly.
func Path(ctx context.Context, c *bdd.Collection, root bdd.Node, name string, cons Constraints) (*xbar.Crossbar, error) {
	if root == bdd.True || root == bdd.False {
		return constant(name, xbar.Path, c.Vars(), root == bdd.True, cons)
	}
	d, err := extract(c, root)
	if err != nil {
		return nil, err
	}

	classes := mergeEdges(d)
	if cons.Solver != nil && cons.ColumnLimit > 0 {
		if err := packColumns(ctx, d, classes, cons); err != nil {
			return nil, fmt.Errorf("synth: %s: %w", name, err)
		}
	}
	if err := checkLimits(len(d.nodes), len(classes), cons); err != nil {
		return nil, fmt.Errorf("synth: %s: %w", name, err)
	}

	xb, err := xbar.New(name, xbar.Path, len(d.nodes), len(classes), c.Vars())
	if err != nil {
		return nil, err
	}
	for col, cl := range classes {
		xb.SetSelector(col, cl.lit)
		xb.SetCell(cl.child, col, xbar.Literal{Kind: xbar.On})
		for _, r := range cl.rows {
			xb.SetCell(r, col, xbar.Literal{Kind: xbar.On})
		}
	}
	xb.Source = d.trueNode
	xb.Output = d.root
	return xb, nil
}

// mergeEdges buckets the edges by (child, literal) in first-seen order, so
// the bitline layout is deterministic for a given diagram.
func mergeEdges(d *dag) []mergeClass {
	type key struct {
		child int
		lit   xbar.Literal
	}
	index := make(map[key]int)
	var classes []mergeClass
	for _, e := range d.edges {
		k := key{child: e.to, lit: e.lit}
		i, ok := index[k]
		if !ok {
			i = len(classes)
			index[k] = i
			classes = append(classes, mergeClass{lit: e.lit, child: e.to})
		}
		classes[i].rows = append(classes[i].rows, e.from)
	}
	return classes
}

// packColumns asks the solver whether the edges fit the column limit: one
// binary per edge deciding whether it rides its class bitline or takes a
// bitline of its own, bitline count below the limit, unmerged edges
// minimized. Merging is only ever allowed inside a class, so the model can
// never produce an unsound layout; the solver's verdict is what matters.
func packColumns(ctx context.Context, d *dag, classes []mergeClass, cons Constraints) error {
	m := &ilp.Model{}
	var merged []ilp.Term
	extra := 0
	for _, cl := range classes {
		for range cl.rows[1:] {
			merged = append(merged, ilp.T(1, m.Var()))
			extra++
		}
	}
	if len(merged) == 0 {
		// Nothing can be packed; the plain limit check decides.
		return nil
	}
	total := len(classes) + extra
	// columns = total - sum(merged) <= limit
	m.AtLeast(total-cons.ColumnLimit, merged...)
	obj := make([]ilp.Term, len(merged))
	for i, t := range merged {
		obj[i] = ilp.N(1, t.Var)
	}
	if err := m.Minimize(obj...); err != nil {
		return err
	}
	sol, err := cons.Solver.Solve(ctx, m)
	if err != nil {
		return err
	}
	if sol.Status == ilp.Infeasible {
		return fmt.Errorf("bitline packing rejected by the solver: %w", xsynth.ErrInfeasible)
	}
	return nil
}
