// Copyright (c) 2024 the xsynth authors
//
// MIT License

package xbar

import (
	"errors"
	"strings"
	"testing"

	"github.com/nanoxbar/xsynth"
)

// andFlow lays out x AND y by hand on a 2x1 flow crossbar: the single
// bitline joins the source and output wordlines through both literals.
func andFlow(t *testing.T) *Crossbar {
	t.Helper()
	xb, err := New("and", Flow, 2, 1, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	xb.Source = 0
	xb.Output = 1
	xb.SetCell(0, 0, Literal{Kind: Pos, Var: 0})
	xb.SetCell(1, 0, Literal{Kind: Pos, Var: 1})
	return xb
}

func TestNewRejectsDegenerateGrids(t *testing.T) {
	if _, err := New("bad", Flow, 0, 3, nil); !errors.Is(err, xsynth.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestFlowEval(t *testing.T) {
	xb := andFlow(t)
	tests := []struct {
		asg  []bool
		want bool
	}{
		{[]bool{false, false}, false},
		{[]bool{false, true}, false},
		{[]bool{true, false}, false},
		{[]bool{true, true}, true},
	}
	for _, tt := range tests {
		got, err := xb.Eval(tt.asg)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Eval(%v) = %v, want %v", tt.asg, got, tt.want)
		}
	}
	if _, err := xb.Eval([]bool{true}); !errors.Is(err, xsynth.ErrInvalidInput) {
		t.Errorf("short assignment: got %v, want ErrInvalidInput", err)
	}
}

func TestFlowEvalSneakPaths(t *testing.T) {
	// x OR y on a 2x2 grid with one literal per bitline; conduction through
	// either bitline must count.
	xb, err := New("or", Flow, 2, 2, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	xb.Source = 0
	xb.Output = 1
	xb.SetCell(0, 0, Literal{Kind: Pos, Var: 0})
	xb.SetCell(1, 0, Literal{Kind: On})
	xb.SetCell(0, 1, Literal{Kind: Pos, Var: 1})
	xb.SetCell(1, 1, Literal{Kind: On})
	for v := 0; v < 4; v++ {
		asg := []bool{v&2 != 0, v&1 != 0}
		got, err := xb.Eval(asg)
		if err != nil {
			t.Fatal(err)
		}
		if got != (asg[0] || asg[1]) {
			t.Errorf("Eval(%v) = %v, want %v", asg, got, asg[0] || asg[1])
		}
	}
}

func TestPathEval(t *testing.T) {
	// x AND y as a three-wordline ladder: bitline 0 (selected by x) joins
	// the source to the intermediate wordline, bitline 1 (selected by y)
	// joins the intermediate wordline to the output.
	xb, err := New("and", Path, 3, 2, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	xb.Source = 0
	xb.Output = 2
	xb.SetSelector(0, Literal{Kind: Pos, Var: 0})
	xb.SetSelector(1, Literal{Kind: Pos, Var: 1})
	xb.SetCell(0, 0, Literal{Kind: On})
	xb.SetCell(1, 0, Literal{Kind: On})
	xb.SetCell(1, 1, Literal{Kind: On})
	xb.SetCell(2, 1, Literal{Kind: On})
	for v := 0; v < 4; v++ {
		asg := []bool{v&2 != 0, v&1 != 0}
		got, err := xb.Eval(asg)
		if err != nil {
			t.Fatal(err)
		}
		if got != (asg[0] && asg[1]) {
			t.Errorf("ladder Eval(%v) = %v, want %v", asg, got, asg[0] && asg[1])
		}
	}
	// Dropping the selector of the second bitline must open the path even
	// though its cells stay ON.
	open := xb.OverlaySelector(1, Literal{Kind: Off})
	got, err := open.Eval([]bool{true, true})
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("bitline with an OFF selector still conducts")
	}
}

func TestOverlayLeavesOriginalIntact(t *testing.T) {
	xb := andFlow(t)
	faulty := xb.Overlay(0, 0, Literal{Kind: Off})
	got, err := faulty.Eval([]bool{true, true})
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("stuck-open cell still conducts")
	}
	orig, err := xb.Eval([]bool{true, true})
	if err != nil {
		t.Fatal(err)
	}
	if !orig {
		t.Error("overlay mutated the original crossbar")
	}
}

func TestMetricsAndString(t *testing.T) {
	xb := andFlow(t)
	if xb.Semiperimeter() != 3 {
		t.Errorf("semiperimeter %d, want 3", xb.Semiperimeter())
	}
	if xb.Area() != 2 {
		t.Errorf("area %d, want 2", xb.Area())
	}
	s := xb.String()
	for _, want := range []string{"and flow 2x1", "S x", "O y"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() misses %q:\n%s", want, s)
		}
	}
}
