// Copyright (c) 2024 the xsynth authors
//
// MIT License

/*
Package xbar models memristive crossbar topologies: a grid of programmable
cells between horizontal wordlines and vertical bitlines, evaluated by
checking electrical conduction between two designated wordlines.

Two computing paradigms share the model. In a flow crossbar every cell is
programmed with a literal and conducts when the literal is true under the
input assignment; the function output is read as conduction from the source
wordline to the output wordline through any sequence of cells. In a path
crossbar cells are only ever ON or OFF and each bitline carries a selector
literal; a bitline whose selector is true electrically joins all wordlines
with an ON cell on it.

A Crossbar is immutable after synthesis. Fault analysis derives one-cell
variants through Overlay instead of mutating the original.
*/
package xbar

import (
	"fmt"
	"strings"

	"github.com/nanoxbar/xsynth"
)

// LitKind is the programming state of a cell or selector.
type LitKind int

const (
	// Off is permanent high resistance; the zero value of a cell.
	Off LitKind = iota
	// On is permanent low resistance.
	On
	// Pos conducts when its variable is true.
	Pos
	// Neg conducts when its variable is false.
	Neg
)

// Literal is one programmable element: a constant or a variable polarity.
// Var indexes the crossbar's variable list and is meaningful only for Pos
// and Neg.
type Literal struct {
	Kind LitKind
	Var  int
}

// Conducts reports whether the literal is electrically closed under the
// assignment, indexed like the crossbar's variable list.
func (l Literal) Conducts(asg []bool) bool {
	switch l.Kind {
	case On:
		return true
	case Pos:
		return asg[l.Var]
	case Neg:
		return !asg[l.Var]
	default:
		return false
	}
}

func (l Literal) format(vars []string) string {
	switch l.Kind {
	case Off:
		return "0"
	case On:
		return "1"
	case Pos:
		return vars[l.Var]
	default:
		return "~" + vars[l.Var]
	}
}

// Kind selects the computing paradigm of a crossbar.
type Kind int

const (
	// Flow evaluates by sneak-path conduction through literal cells.
	Flow Kind = iota
	// Path evaluates through selector-controlled bitlines over ON cells.
	Path
)

func (k Kind) String() string {
	if k == Path {
		return "path"
	}
	return "flow"
}

// Crossbar is a synthesized topology. Rows are wordlines and Cols are
// bitlines; cells are stored row-major. Source and Output designate the two
// wordlines between which conduction realizes the function. For Path
// crossbars Selector holds one literal per bitline.
type Crossbar struct {
	Name   string
	Kind   Kind
	Rows   int
	Cols   int
	Source int
	Output int

	cells    []Literal
	selector []Literal
	vars     []string
}

// New creates a crossbar with all cells OFF. The variable list fixes the
// meaning of Pos and Neg literals and the assignment order of Eval.
func New(name string, kind Kind, rows, cols int, vars []string) (*Crossbar, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("xbar: %s has dimensions %dx%d: %w", name, rows, cols, xsynth.ErrInvalidInput)
	}
	xb := &Crossbar{
		Name: name,
		Kind: kind,
		Rows: rows,
		Cols: cols,

		cells: make([]Literal, rows*cols),
		vars:  append([]string(nil), vars...),
	}
	if kind == Path {
		xb.selector = make([]Literal, cols)
	}
	return xb, nil
}

// Vars returns a copy of the crossbar's variable list.
func (xb *Crossbar) Vars() []string { return append([]string(nil), xb.vars...) }

// Arity returns the number of input variables.
func (xb *Crossbar) Arity() int { return len(xb.vars) }

// Cell returns the programming of the cell at (row, col).
func (xb *Crossbar) Cell(row, col int) Literal { return xb.cells[row*xb.Cols+col] }

// SetCell programs the cell at (row, col). Synthesis uses it while laying
// out a topology; callers holding a finished crossbar use Overlay instead.
func (xb *Crossbar) SetCell(row, col int, l Literal) { xb.cells[row*xb.Cols+col] = l }

// Selector returns the selector literal of a bitline of a Path crossbar.
func (xb *Crossbar) Selector(col int) Literal { return xb.selector[col] }

// SetSelector programs a bitline selector of a Path crossbar.
func (xb *Crossbar) SetSelector(col int, l Literal) { xb.selector[col] = l }

// Semiperimeter returns rows plus columns, the wire-length cost metric.
func (xb *Crossbar) Semiperimeter() int { return xb.Rows + xb.Cols }

// Area returns the cell count of the grid.
func (xb *Crossbar) Area() int { return xb.Rows * xb.Cols }

// Overlay returns a copy of the crossbar with a single cell reprogrammed.
// The copy shares the variable list; the cell grid is duplicated.
func (xb *Crossbar) Overlay(row, col int, l Literal) *Crossbar {
	cp := *xb
	cp.cells = append([]Literal(nil), xb.cells...)
	cp.cells[row*xb.Cols+col] = l
	return &cp
}

// OverlaySelector returns a copy of a Path crossbar with one bitline
// selector reprogrammed.
func (xb *Crossbar) OverlaySelector(col int, l Literal) *Crossbar {
	cp := *xb
	cp.selector = append([]Literal(nil), xb.selector...)
	cp.selector[col] = l
	return &cp
}

// String renders the topology as a grid, one wordline per row, with the
// source and output wordlines marked. Path crossbars print the selector
// literals as a header line.
func (xb *Crossbar) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %dx%d\n", xb.Name, xb.Kind, xb.Rows, xb.Cols)
	if xb.Kind == Path {
		b.WriteString("sel:")
		for _, l := range xb.selector {
			b.WriteString(" " + l.format(xb.vars))
		}
		b.WriteString("\n")
	}
	for r := 0; r < xb.Rows; r++ {
		switch r {
		case xb.Source:
			b.WriteString("S ")
		case xb.Output:
			b.WriteString("O ")
		default:
			b.WriteString("  ")
		}
		for c := 0; c < xb.Cols; c++ {
			if c > 0 {
				b.WriteString(" ")
			}
			b.WriteString(xb.Cell(r, c).format(xb.vars))
		}
		b.WriteString("\n")
	}
	return b.String()
}
