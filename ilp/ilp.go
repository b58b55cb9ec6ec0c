// Copyright (c) 2024 the xsynth authors
//
// MIT License

/*
Package ilp models 0/1 integer linear programs and solves them through a
pseudo-Boolean backend. Crossbar synthesis only ever needs binary decision
variables, linear constraints and a linear minimization objective, which is
exactly the pseudo-Boolean optimization fragment, so models serialize to the
OPB exchange format and the default backend hands them to gophersat.

A Model is write-only: allocate variables, add constraints, set the
objective, then pass it to a Solver. Solvers never mutate the model, so one
model can be solved concurrently with different backends.
*/
package ilp

import (
	"fmt"
	"strings"

	"github.com/nanoxbar/xsynth"
)

// Term is one summand of a linear expression: Coef times the variable, or
// times its complement (1 - variable) when Neg is set.
type Term struct {
	Coef int
	Var  int
	Neg  bool
}

// T builds a positive-literal term.
func T(coef, v int) Term { return Term{Coef: coef, Var: v} }

// N builds a complemented term, Coef * (1 - v).
func N(coef, v int) Term { return Term{Coef: coef, Var: v, Neg: true} }

type relation int

const (
	atLeast relation = iota
	equal
)

type constraint struct {
	terms []Term
	rel   relation
	rhs   int
}

// Model is a 0/1 integer linear program under construction. Variables are
// 1-based, matching the OPB convention. The zero value is an empty model
// ready for use.
type Model struct {
	nvars       int
	objective   []Term
	constraints []constraint
}

// Var allocates a fresh binary variable and returns its index.
func (m *Model) Var() int {
	m.nvars++
	return m.nvars
}

// NumVars returns the number of allocated variables.
func (m *Model) NumVars() int { return m.nvars }

// NumConstraints returns the number of constraints added so far.
func (m *Model) NumConstraints() int { return len(m.constraints) }

// AtLeast adds the constraint sum(terms) >= rhs.
func (m *Model) AtLeast(rhs int, terms ...Term) {
	m.constraints = append(m.constraints, constraint{terms: copyTerms(terms), rel: atLeast, rhs: rhs})
}

// AtMost adds the constraint sum(terms) <= rhs, stored in negated >= form.
func (m *Model) AtMost(rhs int, terms ...Term) {
	neg := make([]Term, len(terms))
	for i, t := range terms {
		neg[i] = Term{Coef: -t.Coef, Var: t.Var, Neg: t.Neg}
	}
	m.constraints = append(m.constraints, constraint{terms: neg, rel: atLeast, rhs: -rhs})
}

// Equal adds the constraint sum(terms) == rhs.
func (m *Model) Equal(rhs int, terms ...Term) {
	m.constraints = append(m.constraints, constraint{terms: copyTerms(terms), rel: equal, rhs: rhs})
}

// Minimize sets the objective. Coefficients must be non-negative: the
// backends reserve negative costs for failure reporting. Calling Minimize
// again replaces the previous objective.
func (m *Model) Minimize(terms ...Term) error {
	for _, t := range terms {
		if t.Coef < 0 {
			return fmt.Errorf("ilp: negative objective coefficient %d on x%d: %w", t.Coef, t.Var, xsynth.ErrInvalidInput)
		}
	}
	m.objective = copyTerms(terms)
	return nil
}

func copyTerms(terms []Term) []Term {
	return append([]Term(nil), terms...)
}

// validate checks every variable reference before a solve.
func (m *Model) validate() error {
	check := func(terms []Term) error {
		for _, t := range terms {
			if t.Var < 1 || t.Var > m.nvars {
				return fmt.Errorf("ilp: variable x%d outside the %d allocated: %w", t.Var, m.nvars, xsynth.ErrInvalidInput)
			}
		}
		return nil
	}
	if err := check(m.objective); err != nil {
		return err
	}
	for _, c := range m.constraints {
		if err := check(c.terms); err != nil {
			return err
		}
	}
	return nil
}

// OPB serializes the model in the OPB pseudo-Boolean exchange format. Every
// allocated variable is mentioned at least once so that the consumer sizes
// its model correctly.
func (m *Model) OPB() string {
	var b strings.Builder
	fmt.Fprintf(&b, "* #variable= %d #constraint= %d\n", m.nvars, len(m.constraints))
	if len(m.objective) > 0 {
		b.WriteString("min:")
		writeTerms(&b, m.objective)
		b.WriteString(" ;\n")
	}
	for _, c := range m.constraints {
		writeTerms(&b, c.terms)
		if c.rel == equal {
			fmt.Fprintf(&b, " = %d ;\n", c.rhs)
		} else {
			fmt.Fprintf(&b, " >= %d ;\n", c.rhs)
		}
	}
	// Anchor the last variable so the consumer knows the variable count
	// even when trailing variables are unconstrained.
	if m.nvars > 0 {
		fmt.Fprintf(&b, "+1 x%d +1 ~x%d >= 1 ;\n", m.nvars, m.nvars)
	}
	return b.String()
}

func writeTerms(b *strings.Builder, terms []Term) {
	for _, t := range terms {
		if t.Neg {
			fmt.Fprintf(b, " %+d ~x%d", t.Coef, t.Var)
		} else {
			fmt.Fprintf(b, " %+d x%d", t.Coef, t.Var)
		}
	}
}

// evaluate computes the value of a linear expression under an assignment
// indexed by variable number (entry 0 unused).
func evaluate(terms []Term, asg []bool) int {
	sum := 0
	for _, t := range terms {
		v := asg[t.Var]
		if t.Neg {
			v = !v
		}
		if v {
			sum += t.Coef
		}
	}
	return sum
}

// feasible reports whether the assignment satisfies every constraint.
func (m *Model) feasible(asg []bool) bool {
	for _, c := range m.constraints {
		sum := evaluate(c.terms, asg)
		if c.rel == equal && sum != c.rhs {
			return false
		}
		if c.rel == atLeast && sum < c.rhs {
			return false
		}
	}
	return true
}
