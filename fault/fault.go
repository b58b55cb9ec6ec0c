// Copyright (c) 2024 the xsynth authors
//
// MIT License

/*
Package fault evaluates synthesized crossbars against single-fault defect
models. Every fault site is injected one at a time on a derived copy of the
topology, the copy is re-verified against the source function, and the
sites whose injection changes the function are reported as critical. A
"not tolerated" outcome is a report value, never an error.

Injections are independent, so the sweep fans out over a bounded worker
pool; the base topology is never mutated.
*/
package fault

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/nanoxbar/xsynth"
	"github.com/nanoxbar/xsynth/boolfunc"
	"github.com/nanoxbar/xsynth/verify"
	"github.com/nanoxbar/xsynth/xbar"
)

// Class is a defect class.
type Class int

const (
	// StuckAtOff leaves the element permanently non-conducting.
	StuckAtOff Class = iota
	// StuckAtOn leaves the element permanently conducting.
	StuckAtOn
	// ReadDisturb degrades a variable-programmed element to OFF, the
	// failure mode of repeated destructive reads. Constant elements are
	// not affected.
	ReadDisturb
)

var classNames = [...]string{
	StuckAtOff:  "stuck-at-off",
	StuckAtOn:   "stuck-at-on",
	ReadDisturb: "read-disturb",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return fmt.Sprintf("class(%d)", int(c))
	}
	return classNames[c]
}

// Model enumerates the defect classes to inject.
type Model struct {
	Classes []Class
}

// DefaultModel covers all supported classes.
func DefaultModel() Model {
	return Model{Classes: []Class{StuckAtOff, StuckAtOn, ReadDisturb}}
}

// Injection is one fault site: a cell of the grid or, when Selector is
// set, the selector of bitline Col of a path crossbar.
type Injection struct {
	Row, Col int
	Selector bool
	Class    Class
}

func (in Injection) String() string {
	if in.Selector {
		return fmt.Sprintf("%s at selector %d", in.Class, in.Col)
	}
	return fmt.Sprintf("%s at (%d, %d)", in.Class, in.Row, in.Col)
}

// Report is the outcome of a fault sweep. Critical lists the injections
// under which the topology no longer implements the function, sorted by
// site then class for reproducibility.
type Report struct {
	Injected  int
	Tolerated bool
	Critical  []Injection
}

// ToleratesAll reports whether none of the given injections is critical.
// Tolerance of single faults is subset-monotone: a topology that tolerates
// a set of single-fault injections tolerates every subset of it.
func (r Report) ToleratesAll(injs []Injection) bool {
	for _, in := range injs {
		for _, c := range r.Critical {
			if in == c {
				return false
			}
		}
	}
	return true
}

// Options configures a sweep. The zero value uses one worker per CPU and
// explicit verification.
type Options struct {
	// Workers bounds the sweep parallelism; 0 picks GOMAXPROCS.
	Workers int
	// Verify is passed through to the verification of every overlay, for
	// sweeps above the explicit arity bound.
	Verify []verify.Option
}

// Analyze injects every applicable single fault of the model into xb and
// re-verifies the overlay against f. Injections that cannot change the
// element (stuck-at-off on an OFF cell, read-disturb on a constant) are
// skipped and not counted.
func Analyze(ctx context.Context, f *boolfunc.Function, xb *xbar.Crossbar, m Model, o Options) (Report, error) {
	for _, c := range m.Classes {
		if c < 0 || int(c) >= len(classNames) {
			return Report{}, fmt.Errorf("fault: unknown class %d: %w", int(c), xsynth.ErrInvalidInput)
		}
	}
	injs := sites(xb, m)
	workers := o.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(injs) {
		workers = len(injs)
	}

	critical := make([]bool, len(injs))
	sweepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		wg       sync.WaitGroup
		next     int64
		errOnce  sync.Once
		sweepErr error
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&next, 1)) - 1
				if i >= len(injs) {
					return
				}
				res, err := verify.Verify(sweepCtx, f, overlay(xb, injs[i]), o.Verify...)
				if err != nil {
					errOnce.Do(func() {
						sweepErr = err
						cancel()
					})
					return
				}
				critical[i] = !res.Equivalent
			}
		}()
	}
	wg.Wait()
	if sweepErr != nil {
		return Report{}, sweepErr
	}

	report := Report{Injected: len(injs), Tolerated: true}
	for i, crit := range critical {
		if crit {
			report.Critical = append(report.Critical, injs[i])
			report.Tolerated = false
		}
	}
	sort.Slice(report.Critical, func(i, j int) bool {
		a, b := report.Critical[i], report.Critical[j]
		if a.Selector != b.Selector {
			return !a.Selector
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		return a.Class < b.Class
	})
	return report, nil
}

// sites enumerates the applicable injections, cells first, selectors after.
func sites(xb *xbar.Crossbar, m Model) []Injection {
	var injs []Injection
	for r := 0; r < xb.Rows; r++ {
		for c := 0; c < xb.Cols; c++ {
			for _, cl := range m.Classes {
				if applies(xb.Cell(r, c), cl) {
					injs = append(injs, Injection{Row: r, Col: c, Class: cl})
				}
			}
		}
	}
	if xb.Kind == xbar.Path {
		for c := 0; c < xb.Cols; c++ {
			for _, cl := range m.Classes {
				if applies(xb.Selector(c), cl) {
					injs = append(injs, Injection{Col: c, Selector: true, Class: cl})
				}
			}
		}
	}
	return injs
}

// applies reports whether the class can change the element at all.
func applies(l xbar.Literal, cl Class) bool {
	switch cl {
	case StuckAtOff:
		return l.Kind != xbar.Off
	case StuckAtOn:
		return l.Kind != xbar.On
	default:
		return l.Kind == xbar.Pos || l.Kind == xbar.Neg
	}
}

// overlay derives the faulty copy for one injection.
func overlay(xb *xbar.Crossbar, in Injection) *xbar.Crossbar {
	lit := xbar.Literal{Kind: xbar.Off}
	if in.Class == StuckAtOn {
		lit = xbar.Literal{Kind: xbar.On}
	}
	if in.Selector {
		return xb.OverlaySelector(in.Col, lit)
	}
	return xb.Overlay(in.Row, in.Col, lit)
}
