// Copyright (c) 2024 the xsynth authors
//
// MIT License

package ilp

import (
	"context"
	"fmt"
	"strings"

	"github.com/crillab/gophersat/solver"
	"github.com/nanoxbar/xsynth"
)

// Status reports the outcome of a solve.
type Status int

const (
	// Optimal means a feasible assignment with minimal objective was found.
	Optimal Status = iota
	// Infeasible means the constraint set admits no assignment at all.
	Infeasible
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Solution is the result of a successful solve. Values is indexed by
// variable number, with entry 0 unused.
type Solution struct {
	Status Status
	Cost   int
	values []bool
}

// Value returns the assignment of variable v. It is false for Infeasible
// solutions and for variables the backend left unbound.
func (s Solution) Value(v int) bool {
	if v < 1 || v >= len(s.values) {
		return false
	}
	return s.values[v]
}

// Solver finds a minimal feasible assignment for a model. Implementations
// must honor context cancellation by returning an error wrapping the
// timeout sentinel, and must never return a partial assignment.
type Solver interface {
	Solve(ctx context.Context, m *Model) (Solution, error)
}

// ************************************************************

// Gophersat solves models with the gophersat pseudo-Boolean engine. The
// model is handed over in OPB form, which is the engine's native input for
// optimization problems.
type Gophersat struct{}

// Solve runs the engine in a goroutine and abandons the search when the
// context expires. Abandoned searches keep their goroutine until the engine
// finishes on its own; the solver itself offers no interruption point.
func (Gophersat) Solve(ctx context.Context, m *Model) (Solution, error) {
	if err := m.validate(); err != nil {
		return Solution{}, err
	}
	pb, err := solver.ParseOPB(strings.NewReader(m.OPB()))
	if err != nil {
		return Solution{}, fmt.Errorf("ilp: model rejected by gophersat: %v: %w", err, xsynth.ErrInvalidInput)
	}
	type outcome struct {
		cost  int
		model []bool
	}
	ch := make(chan outcome, 1)
	go func() {
		s := solver.New(pb)
		cost := s.Minimize()
		var model []bool
		if cost >= 0 {
			model = s.Model()
		}
		ch <- outcome{cost: cost, model: model}
	}()
	select {
	case <-ctx.Done():
		return Solution{}, fmt.Errorf("ilp: solve abandoned: %v: %w", ctx.Err(), xsynth.ErrTimeout)
	case out := <-ch:
		if out.cost < 0 {
			return Solution{Status: Infeasible}, nil
		}
		// gophersat numbers variables from 1 but indexes its model from 0.
		values := make([]bool, m.nvars+1)
		for i := 0; i < m.nvars && i < len(out.model); i++ {
			values[i+1] = out.model[i]
		}
		return Solution{Status: Optimal, Cost: out.cost, values: values}, nil
	}
}

// ************************************************************

// bruteLimit bounds the variable count Brute accepts; enumeration above it
// would not terminate in useful time.
const bruteLimit = 24

// Brute solves models by exhaustive enumeration. It exists as an
// independent oracle for the gophersat backend and as a fallback for tiny
// models; it rejects models above bruteLimit variables. Among assignments
// of equal cost it returns the one that is smallest read as a bit string,
// so results are deterministic.
type Brute struct{}

func (Brute) Solve(ctx context.Context, m *Model) (Solution, error) {
	if err := m.validate(); err != nil {
		return Solution{}, err
	}
	if m.nvars > bruteLimit {
		return Solution{}, fmt.Errorf("ilp: %d variables, brute-force limit is %d: %w", m.nvars, bruteLimit, xsynth.ErrInvalidInput)
	}
	var best []bool
	bestCost := 0
	asg := make([]bool, m.nvars+1)
	for v := 0; v < 1<<m.nvars; v++ {
		if v&0xfff == 0 {
			select {
			case <-ctx.Done():
				return Solution{}, fmt.Errorf("ilp: enumeration abandoned: %v: %w", ctx.Err(), xsynth.ErrTimeout)
			default:
			}
		}
		for i := 1; i <= m.nvars; i++ {
			asg[i] = v&(1<<(m.nvars-i)) != 0
		}
		if !m.feasible(asg) {
			continue
		}
		cost := evaluate(m.objective, asg)
		if best == nil || cost < bestCost {
			best = append(best[:0], asg...)
			bestCost = cost
		}
	}
	if best == nil {
		return Solution{Status: Infeasible}, nil
	}
	return Solution{Status: Optimal, Cost: bestCost, values: best}, nil
}
