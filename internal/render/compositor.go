// Package render composites the canvas, UI overlay, and cursor onto the
// live camera frame for display.
package render

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/grusso/airdraw/internal/board"
	"github.com/grusso/airdraw/internal/gesture"
	"github.com/grusso/airdraw/internal/ui"
)

// Overlay text and cursor geometry.
const (
	cursorRadius    = 15
	labelScale      = 0.5
	labelThickness  = 2
	readoutScale    = 0.85
	readoutThick    = 2
	cursorRingThick = 2
)

var readoutOrigin = image.Pt(2, 35)

// Compositor merges the persistent canvas with the camera frame and draws
// the UI overlay. Pure presentation: it mutates only the display frame.
type Compositor struct {
	layout *ui.Layout
}

// New creates a Compositor for the given control layout.
func New(layout *ui.Layout) *Compositor {
	return &Compositor{layout: layout}
}

// Compose renders one display frame in place: canvas ink over the camera
// image (undrawn pixels stay transparent to the camera), then the control
// boxes, the thickness readout, and a cursor at the fingertip when a
// gesture is active.
func (c *Compositor) Compose(frame *gocv.Mat, b *board.Board, res gesture.Result) {
	// Canvas over camera, through the stroke mask. The mask is what lets
	// black ink show up against the camera image.
	canvas := b.Canvas()
	canvas.CopyToWithMask(frame, b.Mask())

	c.drawControls(frame)

	tools := b.Tools()
	readout := fmt.Sprintf("Thickness: %d", tools.Thickness)
	gocv.PutText(frame, readout, readoutOrigin, gocv.FontHersheySimplex, readoutScale, board.White.Value, readoutThick)

	width, height := b.Size()
	switch res.Gesture {
	case gesture.Drawing:
		// Filled dot in the active ink color.
		gocv.Circle(frame, res.Tip.Pixel(width, height), cursorRadius, tools.Color.Value, -1)
	case gesture.Selecting:
		// Open ring so the user can see what the menu cursor is over.
		gocv.Circle(frame, res.Tip.Pixel(width, height), cursorRadius, tools.Color.Value, cursorRingThick)
	}
}

// drawControls paints the control boxes with centered labels.
func (c *Compositor) drawControls(frame *gocv.Mat) {
	for _, ctrl := range c.layout.Controls() {
		gocv.Rectangle(frame, ctrl.Rect, ctrl.Fill.Value, -1)

		// Black text on the white boxes, white text everywhere else.
		textColor := board.White.Value
		if ctrl.Fill.Name == board.White.Name {
			textColor = board.Black.Value
		}

		size := gocv.GetTextSize(ctrl.Name, gocv.FontHersheySimplex, labelScale, labelThickness)
		org := image.Pt(
			ctrl.Rect.Min.X+(ctrl.Rect.Dx()-size.X)/2,
			ctrl.Rect.Min.Y+(ctrl.Rect.Dy()+size.Y)/2,
		)
		gocv.PutText(frame, ctrl.Name, org, gocv.FontHersheySimplex, labelScale, textColor, labelThickness)
	}
}
