// Copyright (c) 2024 the xsynth authors
//
// MIT License

// Package boolfunc defines the canonical in-memory model of a Boolean
// function: a name, a fixed ordered list of input variables, and a semantic
// definition given as a truth table, a cover, or an evaluation procedure.
// The variable list and its order are fixed once the function is created.
// Two functions are equivalent iff they induce the same mapping from input
// assignments to outputs.
package boolfunc

import (
	"fmt"

	"github.com/nanoxbar/xsynth"
)

// maxTableArity bounds the arity of table-backed constructors so that the
// backing slice stays addressable.
const maxTableArity = 30

// Function is a single-output Boolean function over a fixed, ordered list
// of input variables. The zero value is not usable; use one of the
// constructors.
type Function struct {
	name string
	vars []string
	eval func([]bool) bool
}

// check validates a name and variable list shared by all constructors.
func check(name string, vars []string) error {
	if name == "" {
		return fmt.Errorf("empty function name: %w", xsynth.ErrInvalidInput)
	}
	if vars == nil {
		return fmt.Errorf("function %s has no variable ordering: %w", name, xsynth.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if v == "" {
			return fmt.Errorf("function %s has an empty variable name: %w", name, xsynth.ErrInvalidInput)
		}
		if seen[v] {
			return fmt.Errorf("function %s repeats variable %s: %w", name, v, xsynth.ErrInvalidInput)
		}
		seen[v] = true
	}
	return nil
}

// FromTable builds a function from an explicit truth table. The table must
// hold exactly 2^len(vars) entries; entry i is the output for the
// assignment whose bits, read with vars[0] as the most significant bit,
// encode i.
func FromTable(name string, vars []string, table []bool) (*Function, error) {
	if err := check(name, vars); err != nil {
		return nil, err
	}
	if len(vars) > maxTableArity {
		return nil, fmt.Errorf("function %s has arity %d, above the table limit %d: %w", name, len(vars), maxTableArity, xsynth.ErrInvalidInput)
	}
	if len(table) != 1<<len(vars) {
		return nil, fmt.Errorf("function %s: table has %d entries, want %d: %w", name, len(table), 1<<len(vars), xsynth.ErrInvalidInput)
	}
	t := make([]bool, len(table))
	copy(t, table)
	n := len(vars)
	return &Function{
		name: name,
		vars: append([]string(nil), vars...),
		eval: func(asg []bool) bool { return t[index(asg, n)] },
	}, nil
}

// FromCover builds a function as the disjunction of cubes. Each cube is a
// string of length len(vars) over {'0','1','-'}: '1' requires the variable
// true, '0' requires it false, '-' leaves it free. An empty cover is the
// constant false.
func FromCover(name string, vars []string, cubes []string) (*Function, error) {
	if err := check(name, vars); err != nil {
		return nil, err
	}
	for _, cube := range cubes {
		if len(cube) != len(vars) {
			return nil, fmt.Errorf("function %s: cube %q has length %d, want %d: %w", name, cube, len(cube), len(vars), xsynth.ErrInvalidInput)
		}
		for _, r := range cube {
			if r != '0' && r != '1' && r != '-' {
				return nil, fmt.Errorf("function %s: cube %q contains %q: %w", name, cube, r, xsynth.ErrInvalidInput)
			}
		}
	}
	cs := append([]string(nil), cubes...)
	return &Function{
		name: name,
		vars: append([]string(nil), vars...),
		eval: func(asg []bool) bool {
			for _, cube := range cs {
				ok := true
				for i := range asg {
					if (cube[i] == '1' && !asg[i]) || (cube[i] == '0' && asg[i]) {
						ok = false
						break
					}
				}
				if ok {
					return true
				}
			}
			return false
		},
	}, nil
}

// FromEval builds a function from an arbitrary evaluation procedure. The
// procedure receives assignments in variable order and must be pure.
func FromEval(name string, vars []string, eval func([]bool) bool) (*Function, error) {
	if err := check(name, vars); err != nil {
		return nil, err
	}
	if eval == nil {
		return nil, fmt.Errorf("function %s has no evaluation procedure: %w", name, xsynth.ErrInvalidInput)
	}
	return &Function{name: name, vars: append([]string(nil), vars...), eval: eval}, nil
}

// Constant builds a function of the given arity that ignores its inputs.
func Constant(name string, vars []string, value bool) (*Function, error) {
	return FromEval(name, vars, func([]bool) bool { return value })
}

// Majority builds the majority function over vars: true iff more than half
// of the inputs are true. The arity must be odd.
func Majority(name string, vars []string) (*Function, error) {
	if len(vars)%2 == 0 {
		return nil, fmt.Errorf("majority %s needs an odd arity, got %d: %w", name, len(vars), xsynth.ErrInvalidInput)
	}
	return FromEval(name, vars, func(asg []bool) bool {
		ones := 0
		for _, v := range asg {
			if v {
				ones++
			}
		}
		return 2*ones > len(asg)
	})
}

// Parity builds the odd-parity (xor) function over vars.
func Parity(name string, vars []string) (*Function, error) {
	return FromEval(name, vars, func(asg []bool) bool {
		odd := false
		for _, v := range asg {
			odd = odd != v
		}
		return odd
	})
}

// Name returns the name of the function.
func (f *Function) Name() string { return f.name }

// Arity returns the number of input variables.
func (f *Function) Arity() int { return len(f.vars) }

// Vars returns a copy of the ordered input variable list.
func (f *Function) Vars() []string { return append([]string(nil), f.vars...) }

// Eval returns the output for the given assignment, indexed in variable
// order. The assignment length must equal the arity; Eval panics otherwise,
// since arity is fixed at construction and a mismatch is a programming
// error in the caller.
func (f *Function) Eval(asg []bool) bool {
	if len(asg) != len(f.vars) {
		panic(fmt.Sprintf("boolfunc: %s evaluated with %d values, arity is %d", f.name, len(asg), len(f.vars)))
	}
	return f.eval(asg)
}

// Equivalent reports whether f and g induce the same mapping from input
// assignments to outputs. The two functions must share the same variables
// in the same order.
func Equivalent(f, g *Function) (bool, error) {
	if f.Arity() != g.Arity() {
		return false, fmt.Errorf("%s has arity %d, %s has %d: %w", f.name, f.Arity(), g.name, g.Arity(), xsynth.ErrInvalidInput)
	}
	for i, v := range f.vars {
		if g.vars[i] != v {
			return false, fmt.Errorf("%s and %s disagree on variable %d (%s vs %s): %w", f.name, g.name, i, v, g.vars[i], xsynth.ErrInvalidInput)
		}
	}
	if f.Arity() > maxTableArity {
		return false, fmt.Errorf("cannot enumerate arity %d: %w", f.Arity(), xsynth.ErrInvalidInput)
	}
	asg := make([]bool, f.Arity())
	for v := 0; v < 1<<f.Arity(); v++ {
		Assign(v, asg)
		if f.Eval(asg) != g.Eval(asg) {
			return false, nil
		}
	}
	return true, nil
}

// Assign decodes an assignment value into asg, with asg[0] as the most
// significant bit. Assignment values therefore order assignments
// lexicographically over the variable order.
func Assign(value int, asg []bool) {
	n := len(asg)
	for i := 0; i < n; i++ {
		asg[i] = value&(1<<(n-1-i)) != 0
	}
}

// index is the inverse of Assign.
func index(asg []bool, n int) int {
	v := 0
	for i := 0; i < n; i++ {
		if asg[i] {
			v |= 1 << (n - 1 - i)
		}
	}
	return v
}
