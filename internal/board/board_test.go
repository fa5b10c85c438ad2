package board

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

const (
	testWidth  = 640
	testHeight = 480
)

func inkCount(b *Board) int {
	mask := b.Mask()
	return gocv.CountNonZero(mask)
}

func TestBoard_StrokeStart_NoInk(t *testing.T) {
	b := New(testWidth, testHeight)
	defer b.Close()

	// The first point of a stroke is only recorded; a zero-length segment
	// would leave a dot artifact.
	b.Draw(image.Pt(100, 100))

	if n := inkCount(b); n != 0 {
		t.Errorf("expected blank canvas after stroke start, got %d ink pixels", n)
	}
	if b.Strokes() != 1 {
		t.Errorf("expected 1 stroke started, got %d", b.Strokes())
	}
}

func TestBoard_StrokeContinuity(t *testing.T) {
	b := New(testWidth, testHeight)
	defer b.Close()

	// Three consecutive drawing frames produce two segments.
	b.Draw(image.Pt(100, 100))
	b.Draw(image.Pt(200, 100))
	b.Draw(image.Pt(200, 200))

	mask := b.Mask()
	if mask.GetUCharAt(100, 150) == 0 {
		t.Error("expected ink on the first segment midpoint")
	}
	if mask.GetUCharAt(150, 200) == 0 {
		t.Error("expected ink on the second segment midpoint")
	}
}

func TestBoard_StrokeGap_NotBridged(t *testing.T) {
	b := New(testWidth, testHeight)
	defer b.Close()

	b.Draw(image.Pt(100, 100))
	b.Draw(image.Pt(200, 100))

	// Gesture left Drawing for a frame: the stroke ends, and the next
	// drawing frame must not connect back to the stale point.
	b.EndStroke()

	before := inkCount(b)
	b.Draw(image.Pt(400, 400))
	if n := inkCount(b); n != before {
		t.Errorf("expected no new ink at new stroke start, got %d -> %d pixels", before, n)
	}

	b.Draw(image.Pt(400, 300))

	mask := b.Mask()
	// Midpoint of the would-be bridge between (200,100) and (400,400).
	if mask.GetUCharAt(250, 300) != 0 {
		t.Error("stroke gap was bridged across a non-drawing frame")
	}
	// The new stroke's own segment exists.
	if mask.GetUCharAt(350, 400) == 0 {
		t.Error("expected ink on the new stroke segment")
	}

	if b.Strokes() != 2 {
		t.Errorf("expected 2 strokes, got %d", b.Strokes())
	}
}

func TestBoard_InkColor(t *testing.T) {
	b := New(testWidth, testHeight)
	defer b.Close()

	b.SetColor(Blue)
	b.Draw(image.Pt(100, 240))
	b.Draw(image.Pt(300, 240))

	// Mats store BGR.
	canvas := b.Canvas()
	pix := canvas.GetVecbAt(240, 200)
	if pix[0] != 255 || pix[1] != 0 || pix[2] != 0 {
		t.Errorf("expected blue ink (BGR 255,0,0), got (%d,%d,%d)", pix[0], pix[1], pix[2])
	}
}

func TestBoard_Clear_Idempotent(t *testing.T) {
	b := New(testWidth, testHeight)
	defer b.Close()

	b.SetColor(Green)
	b.SetThickness(9)
	b.Draw(image.Pt(50, 50))
	b.Draw(image.Pt(150, 150))

	if inkCount(b) == 0 {
		t.Fatal("expected ink before clear")
	}

	b.Clear()
	if n := inkCount(b); n != 0 {
		t.Errorf("expected blank canvas after clear, got %d ink pixels", n)
	}

	// Clearing again changes nothing.
	b.Clear()
	if n := inkCount(b); n != 0 {
		t.Errorf("expected blank canvas after second clear, got %d ink pixels", n)
	}

	// Tool state survives clears.
	tools := b.Tools()
	if tools.Color.Name != Green.Name {
		t.Errorf("color = %q, want %q", tools.Color.Name, Green.Name)
	}
	if tools.Thickness != 9 {
		t.Errorf("thickness = %d, want 9", tools.Thickness)
	}

	if b.Clears() != 2 {
		t.Errorf("expected 2 clears recorded, got %d", b.Clears())
	}
}

func TestBoard_ThicknessClamp(t *testing.T) {
	b := New(testWidth, testHeight)
	defer b.Close()

	for i := 0; i < 100; i++ {
		b.Apply(Action{Kind: ActionThickUp})
	}
	if got := b.Tools().Thickness; got != MaxThickness {
		t.Errorf("thickness = %d, want max %d", got, MaxThickness)
	}

	for i := 0; i < 200; i++ {
		b.Apply(Action{Kind: ActionThickDown})
	}
	if got := b.Tools().Thickness; got != MinThickness {
		t.Errorf("thickness = %d, want min %d", got, MinThickness)
	}

	b.Apply(Action{Kind: ActionSetThickness, Thickness: 1000})
	if got := b.Tools().Thickness; got != MaxThickness {
		t.Errorf("thickness = %d, want clamped to %d", got, MaxThickness)
	}

	b.Apply(Action{Kind: ActionSetThickness, Thickness: -5})
	if got := b.Tools().Thickness; got != MinThickness {
		t.Errorf("thickness = %d, want clamped to %d", got, MinThickness)
	}
}

func TestBoard_ApplyActions(t *testing.T) {
	b := New(testWidth, testHeight)
	defer b.Close()

	b.Apply(Action{Kind: ActionSetColor, Color: Black})
	if got := b.Tools().Color.Name; got != Black.Name {
		t.Errorf("color = %q, want %q", got, Black.Name)
	}

	b.Draw(image.Pt(10, 60))
	b.Draw(image.Pt(40, 60))
	b.Apply(Action{Kind: ActionClear})
	if inkCount(b) != 0 {
		t.Error("expected clear action to wipe the canvas")
	}
}

func TestColorByName(t *testing.T) {
	c, ok := ColorByName("Blue")
	if !ok {
		t.Fatal("expected Blue to exist")
	}
	if c.Value.B != 255 {
		t.Errorf("Blue channel = %d, want 255", c.Value.B)
	}

	if _, ok := ColorByName("Mauve"); ok {
		t.Error("expected unknown color to be rejected")
	}
}
