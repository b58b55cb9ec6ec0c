// Copyright (c) 2024 the xsynth authors
//
// MIT License

package fault

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/nanoxbar/xsynth"
	"github.com/nanoxbar/xsynth/bdd"
	"github.com/nanoxbar/xsynth/boolfunc"
	"github.com/nanoxbar/xsynth/synth"
	"github.com/nanoxbar/xsynth/xbar"
)

func synthesize(t *testing.T, kind xbar.Kind) (*boolfunc.Function, *xbar.Crossbar) {
	t.Helper()
	f, err := boolfunc.Majority("maj3", []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	c, err := bdd.New(f.Vars())
	if err != nil {
		t.Fatal(err)
	}
	n, err := c.Build(f)
	if err != nil {
		t.Fatal(err)
	}
	var xb *xbar.Crossbar
	if kind == xbar.Path {
		xb, err = synth.Path(context.Background(), c, n, "maj3", synth.Constraints{})
	} else {
		xb, err = synth.Compact(context.Background(), c, n, "maj3", synth.Constraints{})
	}
	if err != nil {
		t.Fatal(err)
	}
	return f, xb
}

// redundantOr lays out x OR y with the x bitline duplicated, so faults on
// either x bitline are masked.
func redundantOr(t *testing.T) (*boolfunc.Function, *xbar.Crossbar) {
	t.Helper()
	f, err := boolfunc.FromEval("or", []string{"x", "y"}, func(a []bool) bool { return a[0] || a[1] })
	if err != nil {
		t.Fatal(err)
	}
	xb, err := xbar.New("or", xbar.Flow, 2, 3, f.Vars())
	if err != nil {
		t.Fatal(err)
	}
	xb.Source = 0
	xb.Output = 1
	for _, col := range []int{0, 2} {
		xb.SetCell(0, col, xbar.Literal{Kind: xbar.Pos, Var: 0})
		xb.SetCell(1, col, xbar.Literal{Kind: xbar.On})
	}
	xb.SetCell(0, 1, xbar.Literal{Kind: xbar.Pos, Var: 1})
	xb.SetCell(1, 1, xbar.Literal{Kind: xbar.On})
	return f, xb
}

func TestAnalyzeMajority(t *testing.T) {
	f, xb := synthesize(t, xbar.Flow)
	report, err := Analyze(context.Background(), f, xb, DefaultModel(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Injected == 0 {
		t.Fatal("no faults injected")
	}
	if report.Tolerated != (len(report.Critical) == 0) {
		t.Errorf("Tolerated %v disagrees with %d critical sites", report.Tolerated, len(report.Critical))
	}
	// Opening any programmed cell of this minimal layout breaks the
	// single conducting path of some assignment.
	for r := 0; r < xb.Rows; r++ {
		for c := 0; c < xb.Cols; c++ {
			if xb.Cell(r, c).Kind == xbar.Off {
				continue
			}
			if report.ToleratesAll([]Injection{{Row: r, Col: c, Class: StuckAtOff}}) {
				t.Errorf("stuck-at-off at (%d, %d) unexpectedly tolerated", r, c)
			}
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	f, xb := synthesize(t, xbar.Flow)
	first, err := Analyze(context.Background(), f, xb, DefaultModel(), Options{Workers: 3})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Analyze(context.Background(), f, xb, DefaultModel(), Options{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reports differ across worker counts:\n%v\n%v", first, second)
	}
}

func TestAnalyzeRedundancy(t *testing.T) {
	f, xb := redundantOr(t)
	report, err := Analyze(context.Background(), f, xb, Model{Classes: []Class{StuckAtOff}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	tolerated := []Injection{
		{Row: 0, Col: 0, Class: StuckAtOff},
		{Row: 1, Col: 0, Class: StuckAtOff},
		{Row: 0, Col: 2, Class: StuckAtOff},
		{Row: 1, Col: 2, Class: StuckAtOff},
	}
	if !report.ToleratesAll(tolerated) {
		t.Errorf("faults on the duplicated bitline not tolerated: %v", report.Critical)
	}
	// Subsets of a tolerated set stay tolerated.
	for i := range tolerated {
		if !report.ToleratesAll(tolerated[:i]) {
			t.Errorf("subset of %d tolerated faults reported critical", i)
		}
	}
	yFault := Injection{Row: 0, Col: 1, Class: StuckAtOff}
	if report.ToleratesAll([]Injection{yFault}) {
		t.Error("opening the only y cell must be critical")
	}
	if report.ToleratesAll(append(tolerated, yFault)) {
		t.Error("adding a critical fault to a tolerated set must not stay tolerated")
	}
}

func TestAnalyzeSelectorFaults(t *testing.T) {
	f, xb := synthesize(t, xbar.Path)
	report, err := Analyze(context.Background(), f, xb, Model{Classes: []Class{StuckAtOff, ReadDisturb}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	selector := false
	for _, in := range report.Critical {
		if in.Selector {
			selector = true
			if cl := xb.Selector(in.Col).Kind; cl != xbar.Pos && cl != xbar.Neg {
				t.Errorf("read-disturb injected on constant selector %d", in.Col)
			}
		}
	}
	if !selector {
		t.Error("no selector fault found critical on a minimal path layout")
	}
}

func TestAnalyzeRejectsUnknownClass(t *testing.T) {
	f, xb := synthesize(t, xbar.Flow)
	_, err := Analyze(context.Background(), f, xb, Model{Classes: []Class{Class(42)}}, Options{})
	if !errors.Is(err, xsynth.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestAnalyzeTimeout(t *testing.T) {
	f, xb := synthesize(t, xbar.Flow)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Analyze(ctx, f, xb, DefaultModel(), Options{}); !errors.Is(err, xsynth.ErrTimeout) {
		t.Errorf("got %v, want ErrTimeout", err)
	}
}
