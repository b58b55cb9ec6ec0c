// Copyright (c) 2024 the xsynth authors
//
// MIT License

package bdd

import (
	"fmt"

	"github.com/nanoxbar/xsynth"
	"github.com/nanoxbar/xsynth/boolfunc"
)

// Build constructs the reduced, ordered diagram of f inside the collection.
// Every variable of f must belong to the collection ordering; diagram
// levels follow the collection ordering, not the declaration order of f, so
// all functions built in one collection share structure. Equivalent
// functions return the identical root node.
//
// Construction expands f by Shannon decomposition along the ordering; the
// unicity table reduces the expansion on the way up, so the result is
// canonical without a separate reduction pass.
func (c *Collection) Build(f *boolfunc.Function) (Node, error) {
	if f == nil {
		return False, fmt.Errorf("bdd: nil function: %w", xsynth.ErrInvalidInput)
	}
	fvars := f.Vars()
	// levels of f's variables in ordering order, and for each of them the
	// position of the variable in f's own declaration order.
	levels := make([]int32, 0, len(fvars))
	pos := make(map[int32]int, len(fvars))
	for i, v := range fvars {
		lvl, ok := c.index[v]
		if !ok {
			return False, fmt.Errorf("bdd: function %s uses variable %s outside the collection ordering: %w", f.Name(), v, xsynth.ErrInvalidInput)
		}
		pos[lvl] = i
		levels = append(levels, lvl)
	}
	sortLevels(levels)

	fasg := make([]bool, len(fvars))
	var rec func(k int) Node
	rec = func(k int) Node {
		if k == len(levels) {
			if f.Eval(fasg) {
				return True
			}
			return False
		}
		i := pos[levels[k]]
		fasg[i] = false
		low := rec(k + 1)
		fasg[i] = true
		high := rec(k + 1)
		return c.makenode(levels[k], low, high)
	}
	return rec(0), nil
}

// Reduce canonicalizes the diagram rooted at n and returns its root. Nodes
// produced by Build are already reduced, so Reduce is idempotent:
// Reduce(Reduce(n)) == Reduce(n), and on built diagrams it is the identity.
func (c *Collection) Reduce(n Node) (Node, error) {
	if err := c.check(n); err != nil {
		return False, err
	}
	nodes := c.snapshot()
	memo := make(map[Node]Node)
	var rec func(Node) Node
	rec = func(n Node) Node {
		if n < 2 {
			return n
		}
		if r, ok := memo[n]; ok {
			return r
		}
		v := nodes[n]
		r := c.makenode(v.level, rec(v.low), rec(v.high))
		memo[n] = r
		return r
	}
	return rec(n), nil
}

// Reorder rebuilds the diagram rooted at n under a new variable ordering
// and returns the fresh collection holding it together with its root. The
// new ordering must be a permutation of the current one. Reordering can
// change the diagram size by orders of magnitude in either direction;
// callers trade diagram size against synthesis area.
//
// The unicity table of the new collection starts empty: memoized triples
// are only valid relative to one ordering.
func (c *Collection) Reorder(n Node, order []string) (*Collection, Node, error) {
	if err := c.check(n); err != nil {
		return nil, False, err
	}
	if len(order) != len(c.vars) {
		return nil, False, fmt.Errorf("bdd: reorder with %d variables, collection has %d: %w", len(order), len(c.vars), xsynth.ErrInvalidInput)
	}
	nc, err := New(order)
	if err != nil {
		return nil, False, err
	}
	for _, v := range order {
		if _, ok := c.index[v]; !ok {
			return nil, False, fmt.Errorf("bdd: reorder introduces unknown variable %s: %w", v, xsynth.ErrInvalidInput)
		}
	}
	// oldLevel[k] is the level, in the old ordering, of the variable at
	// level k of the new ordering.
	oldLevel := make([]int32, len(order))
	for k, v := range order {
		oldLevel[k] = c.index[v]
	}
	nodes := c.snapshot()
	asg := make([]bool, len(c.vars))
	var rec func(k int) Node
	rec = func(k int) Node {
		if k == len(order) {
			if evalNodes(nodes, n, asg) {
				return True
			}
			return False
		}
		asg[oldLevel[k]] = false
		low := rec(k + 1)
		asg[oldLevel[k]] = true
		high := rec(k + 1)
		return nc.makenode(int32(k), low, high)
	}
	return nc, rec(0), nil
}

// Eval returns the value of the diagram rooted at n under the given
// assignment, indexed by collection level.
func (c *Collection) Eval(n Node, asg []bool) (bool, error) {
	if err := c.check(n); err != nil {
		return false, err
	}
	if len(asg) != len(c.vars) {
		return false, fmt.Errorf("bdd: assignment of %d values over %d variables: %w", len(asg), len(c.vars), xsynth.ErrInvalidInput)
	}
	return evalNodes(c.snapshot(), n, asg), nil
}

func evalNodes(nodes []node, n Node, asg []bool) bool {
	for n > True {
		if asg[nodes[n].level] {
			n = nodes[n].high
		} else {
			n = nodes[n].low
		}
	}
	return n == True
}

// sortLevels sorts a small level slice in place; insertion sort keeps the
// builder free of allocations from the sort package closures.
func sortLevels(lvls []int32) {
	for i := 1; i < len(lvls); i++ {
		for j := i; j > 0 && lvls[j] < lvls[j-1]; j-- {
			lvls[j], lvls[j-1] = lvls[j-1], lvls[j]
		}
	}
}
