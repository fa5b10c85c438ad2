// Package board owns the persistent drawing surface and tool state.
package board

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Thickness bounds and session defaults.
const (
	MinThickness     = 1
	MaxThickness     = 25
	DefaultThickness = 5
)

// DefaultColor is the color selected at session start.
var DefaultColor = Red

// ActionKind identifies a tool action dispatched from the UI.
type ActionKind int

const (
	ActionSetColor ActionKind = iota + 1
	ActionThickUp
	ActionThickDown
	ActionSetThickness
	ActionClear
)

// Action is a tool action with its payload.
type Action struct {
	Kind      ActionKind
	Color     Color // set for ActionSetColor
	Thickness int   // set for ActionSetThickness
}

// ToolState is the live brush configuration.
type ToolState struct {
	Color     Color
	Thickness int
}

// Board is the canvas state machine. It holds the persistent canvas
// raster, a stroke mask marking which pixels have been drawn (so black
// ink still composites over the camera image), and the current tool
// state. It is not safe for concurrent use; the frame loop is its only
// caller.
type Board struct {
	canvas gocv.Mat // BGR, frame-sized
	mask   gocv.Mat // single channel, 255 where ink exists
	width  int
	height int

	tools   ToolState
	last    image.Point
	hasLast bool

	strokes int
	clears  int
}

var maskInk = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// New creates a blank board matching the frame dimensions.
func New(width, height int) *Board {
	return &Board{
		canvas: gocv.Zeros(height, width, gocv.MatTypeCV8UC3),
		mask:   gocv.Zeros(height, width, gocv.MatTypeCV8UC1),
		width:  width,
		height: height,
		tools: ToolState{
			Color:     DefaultColor,
			Thickness: DefaultThickness,
		},
	}
}

// Close releases the underlying Mats.
func (b *Board) Close() {
	b.canvas.Close()
	b.mask.Close()
}

// Draw handles one Drawing frame at the given pixel position. The first
// frame of a stroke only records the point; each following frame draws a
// segment from the previous position, which approximates a continuous
// stroke as a polyline of per-frame segments.
func (b *Board) Draw(pt image.Point) {
	if !b.hasLast {
		b.last = pt
		b.hasLast = true
		b.strokes++
		return
	}

	gocv.Line(&b.canvas, b.last, pt, b.tools.Color.Value, b.tools.Thickness)
	gocv.Line(&b.mask, b.last, pt, maskInk, b.tools.Thickness)
	b.last = pt
}

// EndStroke must be called on every frame whose gesture is not Drawing.
// It forgets the last position so the next stroke starts fresh instead of
// connecting to a stale point from before the hand left the frame.
func (b *Board) EndStroke() {
	b.hasLast = false
}

// Clear wipes the canvas back to blank. Tool state is untouched, so color
// and thickness survive a clear. Clearing an already blank canvas is a
// no-op with the same result.
func (b *Board) Clear() {
	b.canvas.SetTo(gocv.NewScalar(0, 0, 0, 0))
	b.mask.SetTo(gocv.NewScalar(0, 0, 0, 0))
	b.hasLast = false
	b.clears++
}

// Apply dispatches a UI action onto the board.
func (b *Board) Apply(a Action) {
	switch a.Kind {
	case ActionSetColor:
		b.SetColor(a.Color)
	case ActionThickUp:
		b.SetThickness(b.tools.Thickness + 1)
	case ActionThickDown:
		b.SetThickness(b.tools.Thickness - 1)
	case ActionSetThickness:
		b.SetThickness(a.Thickness)
	case ActionClear:
		b.Clear()
	}
}

// SetColor changes the active ink color.
func (b *Board) SetColor(c Color) {
	b.tools.Color = c
}

// SetThickness sets the brush thickness, clamped to the configured bounds.
func (b *Board) SetThickness(n int) {
	if n < MinThickness {
		n = MinThickness
	}
	if n > MaxThickness {
		n = MaxThickness
	}
	b.tools.Thickness = n
}

// Tools returns the current tool state.
func (b *Board) Tools() ToolState {
	return b.tools
}

// Canvas returns the persistent canvas raster.
func (b *Board) Canvas() gocv.Mat {
	return b.canvas
}

// Mask returns the stroke mask: 255 where ink has been laid down.
func (b *Board) Mask() gocv.Mat {
	return b.mask
}

// Size returns the board dimensions in pixels.
func (b *Board) Size() (width, height int) {
	return b.width, b.height
}

// Strokes returns the number of strokes started this session.
func (b *Board) Strokes() int {
	return b.strokes
}

// Clears returns the number of canvas clears this session.
func (b *Board) Clears() int {
	return b.clears
}
