// Copyright (c) 2024 the xsynth authors
//
// MIT License

package boolfunc

import (
	"errors"
	"testing"

	"github.com/nanoxbar/xsynth"
)

func TestConstructorsRejectBadInput(t *testing.T) {
	vars := []string{"a", "b"}
	tests := []struct {
		name string
		err  error
	}{
		{"empty name", func() error {
			_, err := FromEval("", vars, func([]bool) bool { return true })
			return err
		}()},
		{"nil ordering", func() error {
			_, err := FromEval("f", nil, func([]bool) bool { return true })
			return err
		}()},
		{"duplicate variable", func() error {
			_, err := FromEval("f", []string{"a", "a"}, func([]bool) bool { return true })
			return err
		}()},
		{"empty variable name", func() error {
			_, err := FromEval("f", []string{"a", ""}, func([]bool) bool { return true })
			return err
		}()},
		{"nil eval", func() error {
			_, err := FromEval("f", vars, nil)
			return err
		}()},
		{"short table", func() error {
			_, err := FromTable("f", vars, []bool{true, false})
			return err
		}()},
		{"short cube", func() error {
			_, err := FromCover("f", vars, []string{"1"})
			return err
		}()},
		{"bad cube character", func() error {
			_, err := FromCover("f", vars, []string{"1x"})
			return err
		}()},
		{"even majority", func() error {
			_, err := Majority("f", vars)
			return err
		}()},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, xsynth.ErrInvalidInput) {
			t.Errorf("%s: got %v, want ErrInvalidInput", tt.name, tt.err)
		}
	}

	wide := make([]string, maxTableArity+1)
	for i := range wide {
		wide[i] = string(rune('a'+i%26)) + string(rune('0'+i/26))
	}
	if _, err := FromTable("wide", wide, nil); !errors.Is(err, xsynth.ErrInvalidInput) {
		t.Errorf("table above the arity limit: got %v, want ErrInvalidInput", err)
	}
}

func TestFromTableIndexing(t *testing.T) {
	// vars[0] is the most significant bit of the table index.
	f, err := FromTable("imp", []string{"x", "y"}, []bool{true, true, false, true})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		asg  []bool
		want bool
	}{
		{[]bool{false, false}, true},
		{[]bool{false, true}, true},
		{[]bool{true, false}, false},
		{[]bool{true, true}, true},
	}
	for _, tt := range tests {
		if got := f.Eval(tt.asg); got != tt.want {
			t.Errorf("Eval(%v) = %v, want %v", tt.asg, got, tt.want)
		}
	}
}

func TestFromCoverSemantics(t *testing.T) {
	vars := []string{"a", "b", "c"}
	f, err := FromCover("cov", vars, []string{"1-0", "01-"})
	if err != nil {
		t.Fatal(err)
	}
	g, err := FromEval("ref", vars, func(x []bool) bool {
		return x[0] && !x[2] || !x[0] && x[1]
	})
	if err != nil {
		t.Fatal(err)
	}
	eq, err := Equivalent(f, g)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("cover disagrees with its reference evaluation")
	}

	empty, err := FromCover("zero", vars, nil)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Eval([]bool{true, true, true}) {
		t.Error("empty cover is not the constant false")
	}
}

func TestEquivalent(t *testing.T) {
	vars := []string{"a", "b", "c"}
	maj, err := Majority("maj", vars)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := FromEval("twice", vars, func(x []bool) bool {
		ones := 0
		for _, v := range x {
			if v {
				ones++
			}
		}
		return ones >= 2
	})
	if err != nil {
		t.Fatal(err)
	}
	eq, err := Equivalent(maj, twice)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Error("majority and its threshold form reported different")
	}

	par, err := Parity("par", vars)
	if err != nil {
		t.Fatal(err)
	}
	eq, err = Equivalent(maj, par)
	if err != nil {
		t.Fatal(err)
	}
	if eq {
		t.Error("majority and parity reported equivalent")
	}
}

func TestEquivalentRejectsMismatchedVariables(t *testing.T) {
	f, _ := Parity("f", []string{"a", "b"})
	g, _ := Parity("g", []string{"a", "b", "c"})
	if _, err := Equivalent(f, g); !errors.Is(err, xsynth.ErrInvalidInput) {
		t.Errorf("arity mismatch: got %v, want ErrInvalidInput", err)
	}
	h, _ := Parity("h", []string{"b", "a"})
	if _, err := Equivalent(f, h); !errors.Is(err, xsynth.ErrInvalidInput) {
		t.Errorf("order mismatch: got %v, want ErrInvalidInput", err)
	}
}

func TestAssignRoundTrip(t *testing.T) {
	asg := make([]bool, 4)
	for v := 0; v < 16; v++ {
		Assign(v, asg)
		if got := index(asg, len(asg)); got != v {
			t.Errorf("index(Assign(%d)) = %d", v, got)
		}
	}
	Assign(5, asg)
	if !(asg[1] && asg[3]) || asg[0] || asg[2] {
		t.Errorf("Assign(5) = %v, want 0101 with asg[0] most significant", asg)
	}
}

func TestEvalPanicsOnArityMismatch(t *testing.T) {
	f, err := Parity("par", []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("short assignment did not panic")
		}
	}()
	f.Eval([]bool{true})
}
