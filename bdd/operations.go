// Copyright (c) 2024 the xsynth authors
//
// MIT License

package bdd

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/nanoxbar/xsynth"
)

// Operator describes the binary operations available on an Apply.
type Operator int

const (
	OPand Operator = iota // Boolean conjunction
	OPxor                 // Exclusive or
	OPor                  // Disjunction
	OPimp                 // Implication
	OPbiimp               // Equivalence
	OPdiff                // Difference
)

var opnames = [...]string{
	OPand:   "and",
	OPxor:   "xor",
	OPor:    "or",
	OPimp:   "imp",
	OPbiimp: "biimp",
	OPdiff:  "diff",
}

func (op Operator) String() string {
	if op < 0 || int(op) >= len(opnames) {
		return fmt.Sprintf("op(%d)", int(op))
	}
	return opnames[op]
}

// opres gives the result of each operator on two constant operands.
var opres = [...][2][2]Node{
	//                    00 01       10 11
	OPand:   {{0, 0}, {0, 1}}, // 0001
	OPxor:   {{0, 1}, {1, 0}}, // 0110
	OPor:    {{0, 1}, {1, 1}}, // 0111
	OPimp:   {{1, 1}, {0, 1}}, // 1101
	OPbiimp: {{1, 0}, {0, 1}}, // 1001
	OPdiff:  {{0, 0}, {1, 0}}, // 0010
}

// ************************************************************

// Apply performs the basic binary operations on two diagrams of the
// collection, such as AND, OR or XOR, and returns the reduced result.
func (c *Collection) Apply(left, right Node, op Operator) (Node, error) {
	if op < 0 || int(op) >= len(opres) {
		return False, fmt.Errorf("bdd: unknown operator %s in call to Apply: %w", op, xsynth.ErrInvalidInput)
	}
	if err := c.check(left); err != nil {
		return False, err
	}
	if err := c.check(right); err != nil {
		return False, err
	}
	nodes := c.snapshot()
	type key struct{ l, r Node }
	memo := make(map[key]Node)
	var rec func(l, r Node) Node
	rec = func(l, r Node) Node {
		switch op {
		case OPand:
			if l == r {
				return l
			}
			if l == False || r == False {
				return False
			}
			if l == True {
				return r
			}
			if r == True {
				return l
			}
		case OPor:
			if l == r {
				return l
			}
			if l == True || r == True {
				return True
			}
			if l == False {
				return r
			}
			if r == False {
				return l
			}
		case OPxor:
			if l == r {
				return False
			}
			if l == False {
				return r
			}
			if r == False {
				return l
			}
		}
		if l < 2 && r < 2 {
			return opres[op][l][r]
		}
		if res, ok := memo[key{l, r}]; ok {
			return res
		}
		ll, rl := nodes[l].level, nodes[r].level
		var res Node
		switch {
		case ll == rl:
			res = c.makenode(ll, rec(nodes[l].low, nodes[r].low), rec(nodes[l].high, nodes[r].high))
		case ll < rl:
			res = c.makenode(ll, rec(nodes[l].low, r), rec(nodes[l].high, r))
		default:
			res = c.makenode(rl, rec(l, nodes[r].low), rec(l, nodes[r].high))
		}
		memo[key{l, r}] = res
		return res
	}
	return rec(left, right), nil
}

// Not returns the negation of the diagram rooted at n, exchanging the two
// terminals along every branch.
func (c *Collection) Not(n Node) (Node, error) {
	if err := c.check(n); err != nil {
		return False, err
	}
	nodes := c.snapshot()
	memo := make(map[Node]Node)
	var rec func(Node) Node
	rec = func(n Node) Node {
		if n < 2 {
			return n ^ 1
		}
		if r, ok := memo[n]; ok {
			return r
		}
		r := c.makenode(nodes[n].level, rec(nodes[n].low), rec(nodes[n].high))
		memo[n] = r
		return r
	}
	return rec(n), nil
}

// ************************************************************

// Size returns the number of internal nodes reachable from n. Constant
// diagrams have size 0.
func (c *Collection) Size(n Node) (int, error) {
	count := 0
	err := c.Allnodes(func(id Node, level int, low, high Node) error {
		if id > True {
			count++
		}
		return nil
	}, n)
	return count, err
}

// Satcount computes the number of satisfying assignments of the diagram
// rooted at n, over the full collection ordering, using arbitrary-precision
// arithmetic to avoid overflows.
func (c *Collection) Satcount(n Node) (*big.Int, error) {
	if err := c.check(n); err != nil {
		return nil, err
	}
	nodes := c.snapshot()
	memo := make(map[Node]*big.Int)
	var rec func(Node) *big.Int
	rec = func(n Node) *big.Int {
		if n < 2 {
			return big.NewInt(int64(n))
		}
		if r, ok := memo[n]; ok {
			return r
		}
		v := nodes[n]
		res := new(big.Int)
		two := new(big.Int)
		two.SetBit(two, int(nodes[v.low].level-v.level-1), 1)
		res.Add(res, two.Mul(two, rec(v.low)))
		two = new(big.Int)
		two.SetBit(two, int(nodes[v.high].level-v.level-1), 1)
		res.Add(res, two.Mul(two, rec(v.high)))
		memo[n] = res
		return res
	}
	res := new(big.Int)
	res.SetBit(res, int(nodes[n].level), 1)
	return res.Mul(res, rec(n)), nil
}

// Allnodes applies f to every node reachable from the given roots, the two
// constants first, then internal nodes in ascending id order. f receives
// the node id, its level and its two branch ids. The walk stops and returns
// the first error f reports.
func (c *Collection) Allnodes(f func(id Node, level int, low, high Node) error, roots ...Node) error {
	for _, n := range roots {
		if err := c.check(n); err != nil {
			return err
		}
	}
	nodes := c.snapshot()
	marked := make(map[Node]bool)
	var mark func(Node)
	mark = func(n Node) {
		if n < 2 || marked[n] {
			return
		}
		marked[n] = true
		mark(nodes[n].low)
		mark(nodes[n].high)
	}
	for _, n := range roots {
		mark(n)
	}
	if err := f(False, int(nodes[False].level), False, False); err != nil {
		return err
	}
	if err := f(True, int(nodes[True].level), True, True); err != nil {
		return err
	}
	ids := make([]Node, 0, len(marked))
	for n := range marked {
		ids = append(ids, n)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, n := range ids {
		if err := f(n, int(nodes[n].level), nodes[n].low, nodes[n].high); err != nil {
			return err
		}
	}
	return nil
}

// Allsat iterates over the satisfying assignments of the diagram rooted at
// n and calls f on each of them. f receives a slice of length Varnum where
// each entry is 0, 1, or -1 for a don't-care. The slice is reused between
// calls. The iteration stops on the first error f reports.
func (c *Collection) Allsat(n Node, f func([]int) error) error {
	if err := c.check(n); err != nil {
		return err
	}
	nodes := c.snapshot()
	prof := make([]int, len(c.vars))
	for k := range prof {
		prof[k] = -1
	}
	var rec func(Node) error
	rec = func(n Node) error {
		if n == True {
			return f(prof)
		}
		if n == False {
			return nil
		}
		v := nodes[n]
		if v.low != False {
			prof[v.level] = 0
			for k := v.level + 1; k < nodes[v.low].level; k++ {
				prof[k] = -1
			}
			if err := rec(v.low); err != nil {
				return err
			}
		}
		if v.high != False {
			prof[v.level] = 1
			for k := v.level + 1; k < nodes[v.high].level; k++ {
				prof[k] = -1
			}
			if err := rec(v.high); err != nil {
				return err
			}
		}
		prof[v.level] = -1
		return nil
	}
	return rec(n)
}

// PathStep is one decision along a root-to-terminal path: the level of the
// decided variable and the branch that was taken.
type PathStep struct {
	Level int
	Value bool
}

// Allpaths iterates over every path from n to the True terminal and calls f
// on each of them. The step slice is reused between calls. Paths are the
// raw material of path-based synthesis: each of them must become a
// conducting wire path in the crossbar.
func (c *Collection) Allpaths(n Node, f func([]PathStep) error) error {
	if err := c.check(n); err != nil {
		return err
	}
	nodes := c.snapshot()
	var steps []PathStep
	var rec func(Node) error
	rec = func(n Node) error {
		if n == True {
			return f(steps)
		}
		if n == False {
			return nil
		}
		v := nodes[n]
		steps = append(steps, PathStep{Level: int(v.level), Value: false})
		if err := rec(v.low); err != nil {
			return err
		}
		steps[len(steps)-1].Value = true
		if err := rec(v.high); err != nil {
			return err
		}
		steps = steps[:len(steps)-1]
		return nil
	}
	return rec(n)
}
