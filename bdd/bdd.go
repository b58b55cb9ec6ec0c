// Copyright (c) 2024 the xsynth authors
//
// MIT License

/*
Package bdd implements shared, ordered, reduced binary decision diagrams,
the canonical representation the synthesis algorithms consume.

A Collection owns an arena of nodes and a single variable ordering. Every
diagram built in the collection shares nodes below its root: the unicity
table guarantees that no two nodes carry the same (level, low, high) triple,
so two equivalent functions built under the same ordering return the very
same root. Equivalence of shared diagrams is therefore a single integer
comparison.

Nodes are referenced by integer ids. The two constant nodes True and False
are pinned at ids 1 and 0, like in the BuDDy family of libraries. Nodes are
immutable once created and live as long as their collection.
*/
package bdd

import (
	"fmt"
	"sync"

	"github.com/nanoxbar/xsynth"
)

// maxBuildVars bounds the number of variables in a collection: building a
// diagram from a black-box evaluation procedure visits every assignment
// once, so the bound keeps construction addressable.
const maxBuildVars = 30

// Node is a reference to a vertex of a diagram inside its Collection. It is
// only meaningful together with the collection that produced it.
type Node int

// The two constant nodes, shared by every collection.
const (
	False Node = 0
	True  Node = 1
)

// node is the arena representation of a vertex. level is the position of
// the node's variable in the collection ordering; terminals carry the
// ordering length as their level so that walks can rely on level being
// strictly increasing along any branch.
type node struct {
	level int32
	low   Node
	high  Node
}

// triple is the unicity-table key.
type triple struct {
	level int32
	low   Node
	high  Node
}

// Collection is a shared diagram collection under one fixed variable
// ordering. The unicity table takes a single-writer lock; readers of
// already-reduced subgraphs run concurrently.
type Collection struct {
	mu     sync.RWMutex
	vars   []string
	index  map[string]int32
	nodes  []node
	unique map[triple]Node
}

// New creates an empty collection over the given variable ordering. The
// ordering is required and fixed for the lifetime of the collection.
func New(vars []string) (*Collection, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("bdd: empty variable ordering: %w", xsynth.ErrInvalidInput)
	}
	if len(vars) > maxBuildVars {
		return nil, fmt.Errorf("bdd: %d variables, limit is %d: %w", len(vars), maxBuildVars, xsynth.ErrInvalidInput)
	}
	c := &Collection{
		vars:   append([]string(nil), vars...),
		index:  make(map[string]int32, len(vars)),
		unique: make(map[triple]Node),
	}
	for i, v := range vars {
		if v == "" {
			return nil, fmt.Errorf("bdd: empty variable name at position %d: %w", i, xsynth.ErrInvalidInput)
		}
		if _, dup := c.index[v]; dup {
			return nil, fmt.Errorf("bdd: variable %s repeated in ordering: %w", v, xsynth.ErrInvalidInput)
		}
		c.index[v] = int32(i)
	}
	term := int32(len(vars))
	c.nodes = []node{
		{level: term, low: False, high: False},
		{level: term, low: True, high: True},
	}
	return c, nil
}

// Varnum returns the number of variables in the collection ordering.
func (c *Collection) Varnum() int { return len(c.vars) }

// Vars returns a copy of the collection ordering.
func (c *Collection) Vars() []string { return append([]string(nil), c.vars...) }

// Var returns the variable name at the given level.
func (c *Collection) Var(level int) string { return c.vars[level] }

// NodeCount returns the total number of nodes in the arena, the two
// constants included.
func (c *Collection) NodeCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}

// check validates a node reference against the arena.
func (c *Collection) check(n Node) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n < 0 || int(n) >= len(c.nodes) {
		return fmt.Errorf("bdd: node %d outside collection: %w", n, xsynth.ErrInvalidInput)
	}
	return nil
}

// Level returns the ordering position of the node's variable; terminals
// report Varnum().
func (c *Collection) Level(n Node) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int(c.nodes[n].level)
}

// Low returns the false branch of n. Terminals return themselves.
func (c *Collection) Low(n Node) Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodes[n].low
}

// High returns the true branch of n. Terminals return themselves.
func (c *Collection) High(n Node) Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodes[n].high
}

// Ithvar returns the diagram of the i'th variable of the ordering.
func (c *Collection) Ithvar(i int) (Node, error) {
	if i < 0 || i >= len(c.vars) {
		return False, fmt.Errorf("bdd: unknown variable %d in call to Ithvar: %w", i, xsynth.ErrInvalidInput)
	}
	return c.makenode(int32(i), False, True), nil
}

// NIthvar returns the diagram of the negation of the i'th variable.
func (c *Collection) NIthvar(i int) (Node, error) {
	if i < 0 || i >= len(c.vars) {
		return False, fmt.Errorf("bdd: unknown variable %d in call to NIthvar: %w", i, xsynth.ErrInvalidInput)
	}
	return c.makenode(int32(i), True, False), nil
}

// ************************************************************

// makenode returns the unique node for (level, low, high), creating it when
// it does not exist yet. The two reduction rules live here: a node whose
// branches agree is its branch, and no duplicate triple is ever allocated.
func (c *Collection) makenode(level int32, low, high Node) Node {
	if low == high {
		return low
	}
	t := triple{level: level, low: low, high: high}
	c.mu.RLock()
	n, ok := c.unique[t]
	c.mu.RUnlock()
	if ok {
		return n
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.unique[t]; ok {
		return n
	}
	n = Node(len(c.nodes))
	c.nodes = append(c.nodes, node{level: level, low: low, high: high})
	c.unique[t] = n
	return n
}

// snapshot returns the arena under a read lock, for walks that do not
// create nodes. The slice is only appended to, never mutated in place, so a
// snapshot stays valid after the lock is released.
func (c *Collection) snapshot() []node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nodes
}
