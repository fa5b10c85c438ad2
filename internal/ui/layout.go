// Package ui defines the static on-screen control layout and hit-testing.
package ui

import (
	"image"

	"github.com/grusso/airdraw/internal/board"
)

// Control box geometry, in pixels. The boxes sit in a single row along the
// top edge of the frame, right-aligned: color swatches first, then the
// clear and thickness buttons.
const (
	boxSize   = 50
	boxGap    = 10
	boxTop    = 2
	rowMargin = 10
)

// Control is one static UI region: a labeled rectangle bound to an action.
type Control struct {
	Name   string
	Rect   image.Rectangle
	Fill   board.Color // box fill color (swatches show their own color)
	Action board.Action
}

// Layout is the immutable set of controls, computed once at startup from
// the frame width and never mutated afterwards.
type Layout struct {
	controls []Control
}

// NewLayout builds the control row for a frame of the given width.
func NewLayout(frameWidth int) *Layout {
	type spec struct {
		name   string
		fill   board.Color
		action board.Action
	}

	var specs []spec
	for _, c := range board.Palette {
		specs = append(specs, spec{
			name:   c.Name,
			fill:   c,
			action: board.Action{Kind: board.ActionSetColor, Color: c},
		})
	}
	specs = append(specs,
		spec{name: "Clear", fill: board.White, action: board.Action{Kind: board.ActionClear}},
		spec{name: "+", fill: board.White, action: board.Action{Kind: board.ActionThickUp}},
		spec{name: "-", fill: board.White, action: board.Action{Kind: board.ActionThickDown}},
	)

	n := len(specs)
	size, gap := boxSize, boxGap

	// Narrow frames get a proportionally smaller row instead of boxes
	// hanging off the left edge.
	rowWidth := n*size + (n-1)*gap
	if avail := frameWidth - 2*rowMargin; rowWidth > avail && avail > 0 {
		scale := float64(avail) / float64(rowWidth)
		size = int(float64(size) * scale)
		gap = int(float64(gap) * scale)
		if size < 1 {
			size = 1
		}
		rowWidth = n*size + (n-1)*gap
	}

	x := frameWidth - rowMargin - rowWidth
	if x < 0 {
		x = 0
	}

	l := &Layout{controls: make([]Control, 0, n)}
	for _, s := range specs {
		l.controls = append(l.controls, Control{
			Name:   s.name,
			Rect:   image.Rect(x, boxTop, x+size, boxTop+size),
			Fill:   s.fill,
			Action: s.action,
		})
		x += size + gap
	}
	return l
}

// HitTest maps a pixel position to the action of the control under it.
// Controls are non-overlapping by construction, so the first match wins.
// Points outside every control produce no action.
func (l *Layout) HitTest(pt image.Point) (board.Action, bool) {
	for _, c := range l.controls {
		if pt.In(c.Rect) {
			return c.Action, true
		}
	}
	return board.Action{}, false
}

// Controls returns the control set for rendering.
func (l *Layout) Controls() []Control {
	return l.controls
}

// Find returns the control with the given name, for tests and tooling.
func (l *Layout) Find(name string) (Control, bool) {
	for _, c := range l.controls {
		if c.Name == name {
			return c, true
		}
	}
	return Control{}, false
}
