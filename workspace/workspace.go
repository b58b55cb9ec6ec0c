// Copyright (c) 2024 the xsynth authors
//
// MIT License

/*
Package workspace holds the named functions, diagrams and topologies a
synthesis session works on. The command surface of the original tool
operates on names; modeling that surface as an explicit object instead of
package-level state keeps concurrent sessions isolated and testable.

A workspace exposes exactly the four core operations: build a diagram,
synthesize a topology, check it, analyze its fault tolerance. Parsing,
serialization and drawing live outside.
*/
package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/nanoxbar/xsynth"
	"github.com/nanoxbar/xsynth/bdd"
	"github.com/nanoxbar/xsynth/boolfunc"
	"github.com/nanoxbar/xsynth/fault"
	"github.com/nanoxbar/xsynth/synth"
	"github.com/nanoxbar/xsynth/verify"
	"github.com/nanoxbar/xsynth/xbar"
)

// Paradigm selects a synthesis method.
type Paradigm int

const (
	// Compact is flow-based synthesis.
	Compact Paradigm = iota
	// Path is path-based synthesis.
	Path
)

func (p Paradigm) String() string {
	if p == Path {
		return "PATH"
	}
	return "COMPACT"
}

type diagram struct {
	coll *bdd.Collection
	root bdd.Node
}

// Workspace is a set of named functions, diagrams and topologies. Names
// are shared across the three kinds: the diagram and topology of function
// "maj" are stored under "maj". The zero value is not usable; use New.
type Workspace struct {
	mu    sync.Mutex
	funcs map[string]*boolfunc.Function
	diags map[string]diagram
	topos map[string]*xbar.Crossbar
}

// New creates an empty workspace.
func New() *Workspace {
	return &Workspace{
		funcs: make(map[string]*boolfunc.Function),
		diags: make(map[string]diagram),
		topos: make(map[string]*xbar.Crossbar),
	}
}

// AddFunction registers f under its own name, replacing any previous
// function of that name together with its derived diagram and topology.
func (w *Workspace) AddFunction(f *boolfunc.Function) error {
	if f == nil {
		return fmt.Errorf("workspace: nil function: %w", xsynth.ErrInvalidInput)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.funcs[f.Name()] = f
	delete(w.diags, f.Name())
	delete(w.topos, f.Name())
	return nil
}

// Function returns the named function.
func (w *Workspace) Function(name string) (*boolfunc.Function, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, ok := w.funcs[name]
	if !ok {
		return nil, fmt.Errorf("workspace: no function %s: %w", name, xsynth.ErrInvalidInput)
	}
	return f, nil
}

// BuildDiagram builds the decision diagram of the named function and
// stores it under the same name, replacing any previous diagram. A nil
// order uses the function's own variable order; any permutation of it is
// accepted and traded off by the caller against synthesis area.
func (w *Workspace) BuildDiagram(name string, order []string) error {
	f, err := w.Function(name)
	if err != nil {
		return err
	}
	if order == nil {
		order = f.Vars()
	}
	coll, err := bdd.New(order)
	if err != nil {
		return err
	}
	root, err := coll.Build(f)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.diags[name] = diagram{coll: coll, root: root}
	return nil
}

// Diagram returns the stored diagram of the named function.
func (w *Workspace) Diagram(name string) (*bdd.Collection, bdd.Node, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.diags[name]
	if !ok {
		return nil, bdd.False, fmt.Errorf("workspace: no diagram for %s, build it first: %w", name, xsynth.ErrInvalidInput)
	}
	return d.coll, d.root, nil
}

// Synthesize maps the named function's diagram onto a crossbar with the
// chosen paradigm and stores the result under the same name. The diagram
// must have been built before.
func (w *Workspace) Synthesize(ctx context.Context, name string, p Paradigm, cons synth.Constraints) (*xbar.Crossbar, error) {
	coll, root, err := w.Diagram(name)
	if err != nil {
		return nil, err
	}
	var xb *xbar.Crossbar
	switch p {
	case Compact:
		xb, err = synth.Compact(ctx, coll, root, name, cons)
	case Path:
		xb, err = synth.Path(ctx, coll, root, name, cons)
	default:
		return nil, fmt.Errorf("workspace: unknown paradigm %d: %w", int(p), xsynth.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.topos[name] = xb
	return xb, nil
}

// Topology returns the stored topology of the named function.
func (w *Workspace) Topology(name string) (*xbar.Crossbar, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	xb, ok := w.topos[name]
	if !ok {
		return nil, fmt.Errorf("workspace: no topology for %s, synthesize it first: %w", name, xsynth.ErrInvalidInput)
	}
	return xb, nil
}

// MismatchError reports a topology that does not implement its function.
// It wraps the mismatch sentinel and carries the smallest counterexample.
type MismatchError struct {
	Name           string
	CounterExample []bool
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("workspace: topology of %s mismatches on %v: %v", e.Name, e.CounterExample, xsynth.ErrMismatch)
}

func (e *MismatchError) Unwrap() error { return xsynth.ErrMismatch }

// Check verifies the named topology against its function. A mismatch is
// returned as a *MismatchError, since it indicates a synthesis defect the
// caller must not ignore. The stored diagram drives the symbolic path for
// arities above the explicit bound.
func (w *Workspace) Check(ctx context.Context, name string) error {
	f, err := w.Function(name)
	if err != nil {
		return err
	}
	xb, err := w.Topology(name)
	if err != nil {
		return err
	}
	var opts []verify.Option
	if coll, root, err := w.Diagram(name); err == nil {
		opts = append(opts, verify.WithDiagram(coll, root))
	}
	res, err := verify.Verify(ctx, f, xb, opts...)
	if err != nil {
		return err
	}
	if !res.Equivalent {
		return &MismatchError{Name: name, CounterExample: res.CounterExample}
	}
	return nil
}

// Analyze sweeps the named topology with the fault model and returns the
// report.
func (w *Workspace) Analyze(ctx context.Context, name string, m fault.Model, o fault.Options) (fault.Report, error) {
	f, err := w.Function(name)
	if err != nil {
		return fault.Report{}, err
	}
	xb, err := w.Topology(name)
	if err != nil {
		return fault.Report{}, err
	}
	return fault.Analyze(ctx, f, xb, m, o)
}
