// Copyright (c) 2024 the xsynth authors
//
// MIT License

/*
Package synth maps decision diagrams onto crossbar topologies. Two synthesis
methods are provided: Compact produces a flow crossbar by labeling diagram
nodes onto wordlines and bitlines with minimal semiperimeter, Path produces
a selector crossbar with one wordline per diagram node and one bitline per
diagram edge.

Both methods read the diagram of the function with the false terminal
removed: an edge into the false terminal can never lie on a conducting
root-to-true path, so it never reaches the hardware. Both accept an
optional ILP solver; without one they fall back to a greedy construction
that is feasible but not necessarily minimal.
*/
package synth

import (
	"fmt"

	"github.com/nanoxbar/xsynth"
	"github.com/nanoxbar/xsynth/bdd"
	"github.com/nanoxbar/xsynth/ilp"
	"github.com/nanoxbar/xsynth/xbar"
)

// Constraints configures a synthesis call. The zero value asks for the
// greedy construction with unbounded dimensions.
type Constraints struct {
	// MinimizeSemiperimeter asks for the ILP labeling with the
	// semiperimeter term rows+columns in the objective. It requires a
	// Solver.
	MinimizeSemiperimeter bool

	// MinimizeMaxDimension adds the objective term max(rows, columns),
	// which pushes the grid towards a square. It requires a Solver.
	MinimizeMaxDimension bool

	// SemiWeight and DimWeight override the unit weights of the two
	// objective terms. They are independent and combinable; zero means
	// "unit weight if the matching flag is set, absent otherwise".
	SemiWeight int
	DimWeight  int

	// RowLimit and ColumnLimit bound the grid; zero means unbounded.
	// A diagram that cannot fit is reported as infeasible.
	RowLimit    int
	ColumnLimit int

	// Solver runs the ILP formulations. Nil selects the greedy path.
	Solver ilp.Solver
}

// weights resolves the effective objective weights. With nothing requested
// the objective defaults to the pure semiperimeter.
func (cons Constraints) weights() (semi, dim int) {
	semi, dim = cons.SemiWeight, cons.DimWeight
	if cons.MinimizeSemiperimeter && semi == 0 {
		semi = 1
	}
	if cons.MinimizeMaxDimension && dim == 0 {
		dim = 1
	}
	if semi == 0 && dim == 0 {
		semi = 1
	}
	return semi, dim
}

// wantsILP reports whether the constraint set requires the solver-backed
// labeling rather than the greedy one.
func (cons Constraints) wantsILP() bool {
	return cons.MinimizeSemiperimeter || cons.MinimizeMaxDimension
}

// ************************************************************

// dedge is a diagram edge surviving false-terminal removal; lit is the
// decision literal of the parent node.
type dedge struct {
	from, to int
	lit      xbar.Literal
}

// dag is the diagram graph both methods consume: the true terminal at
// index 0, internal nodes after it in ascending id order.
type dag struct {
	nodes []bdd.Node
	edges []dedge
	root  int
	// trueNode is always 0, kept named for readability.
	trueNode int
}

// extract walks the diagram rooted at root and drops the false terminal
// and every edge into it.
func extract(c *bdd.Collection, root bdd.Node) (*dag, error) {
	d := &dag{}
	idx := make(map[bdd.Node]int)
	err := c.Allnodes(func(id bdd.Node, level int, low, high bdd.Node) error {
		if id == bdd.False {
			return nil
		}
		idx[id] = len(d.nodes)
		d.nodes = append(d.nodes, id)
		return nil
	}, root)
	if err != nil {
		return nil, err
	}
	err = c.Allnodes(func(id bdd.Node, level int, low, high bdd.Node) error {
		if id <= bdd.True {
			return nil
		}
		u := idx[id]
		if low != bdd.False {
			d.edges = append(d.edges, dedge{from: u, to: idx[low], lit: xbar.Literal{Kind: xbar.Neg, Var: level}})
		}
		if high != bdd.False {
			d.edges = append(d.edges, dedge{from: u, to: idx[high], lit: xbar.Literal{Kind: xbar.Pos, Var: level}})
		}
		return nil
	}, root)
	if err != nil {
		return nil, err
	}
	d.root = idx[root]
	return d, nil
}

// constant lays out an always-true or always-false function: two wordlines
// joined by a single bitline that either always or never conducts.
func constant(name string, kind xbar.Kind, vars []string, value bool, cons Constraints) (*xbar.Crossbar, error) {
	if err := checkLimits(2, 1, cons); err != nil {
		return nil, fmt.Errorf("synth: %s: %w", name, err)
	}
	xb, err := xbar.New(name, kind, 2, 1, vars)
	if err != nil {
		return nil, err
	}
	xb.Source = 0
	xb.Output = 1
	if kind == xbar.Path {
		xb.SetCell(0, 0, xbar.Literal{Kind: xbar.On})
		xb.SetCell(1, 0, xbar.Literal{Kind: xbar.On})
		if value {
			xb.SetSelector(0, xbar.Literal{Kind: xbar.On})
		}
		return xb, nil
	}
	if value {
		xb.SetCell(0, 0, xbar.Literal{Kind: xbar.On})
		xb.SetCell(1, 0, xbar.Literal{Kind: xbar.On})
	}
	return xb, nil
}

func checkLimits(rows, cols int, cons Constraints) error {
	if cons.RowLimit > 0 && rows > cons.RowLimit {
		return fmt.Errorf("%d rows over the limit %d: %w", rows, cons.RowLimit, xsynth.ErrInfeasible)
	}
	if cons.ColumnLimit > 0 && cols > cons.ColumnLimit {
		return fmt.Errorf("%d columns over the limit %d: %w", cols, cons.ColumnLimit, xsynth.ErrInfeasible)
	}
	return nil
}
