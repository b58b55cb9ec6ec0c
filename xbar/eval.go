// Copyright (c) 2024 the xsynth authors
//
// MIT License

package xbar

import (
	"fmt"

	"github.com/nanoxbar/xsynth"
)

// Eval reads the crossbar under an input assignment, indexed like the
// crossbar's variable list: it reports whether current flows from the
// source wordline to the output wordline. Conduction is undirected, so
// every sneak path counts, exactly as in the physical device.
func (xb *Crossbar) Eval(asg []bool) (bool, error) {
	if len(asg) != len(xb.vars) {
		return false, fmt.Errorf("xbar: %s evaluated with %d values over %d variables: %w",
			xb.Name, len(asg), len(xb.vars), xsynth.ErrInvalidInput)
	}
	if xb.Kind == Path {
		return xb.evalPath(asg), nil
	}
	return xb.evalFlow(asg), nil
}

// evalFlow runs a breadth-first search on the bipartite graph of wordlines
// and bitlines, where a conducting cell joins its wordline and bitline.
func (xb *Crossbar) evalFlow(asg []bool) bool {
	if xb.Source == xb.Output {
		return true
	}
	rowSeen := make([]bool, xb.Rows)
	colSeen := make([]bool, xb.Cols)
	queue := []int{xb.Source}
	rowSeen[xb.Source] = true
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		for c := 0; c < xb.Cols; c++ {
			if colSeen[c] || !xb.Cell(r, c).Conducts(asg) {
				continue
			}
			colSeen[c] = true
			for r2 := 0; r2 < xb.Rows; r2++ {
				if rowSeen[r2] || !xb.Cell(r2, c).Conducts(asg) {
					continue
				}
				if r2 == xb.Output {
					return true
				}
				rowSeen[r2] = true
				queue = append(queue, r2)
			}
		}
	}
	return false
}

// evalPath runs the search over wordlines only: a bitline whose selector
// conducts shorts together every wordline holding an ON cell on it.
func (xb *Crossbar) evalPath(asg []bool) bool {
	if xb.Source == xb.Output {
		return true
	}
	live := make([]bool, xb.Cols)
	for c := range live {
		live[c] = xb.selector[c].Conducts(asg)
	}
	rowSeen := make([]bool, xb.Rows)
	colSeen := make([]bool, xb.Cols)
	queue := []int{xb.Source}
	rowSeen[xb.Source] = true
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		for c := 0; c < xb.Cols; c++ {
			if colSeen[c] || !live[c] || xb.Cell(r, c).Kind != On {
				continue
			}
			colSeen[c] = true
			for r2 := 0; r2 < xb.Rows; r2++ {
				if rowSeen[r2] || xb.Cell(r2, c).Kind != On {
					continue
				}
				if r2 == xb.Output {
					return true
				}
				rowSeen[r2] = true
				queue = append(queue, r2)
			}
		}
	}
	return false
}
