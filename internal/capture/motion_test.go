package capture

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

func blankFrame() gocv.Mat {
	return gocv.Zeros(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
}

func frameWithSquare() gocv.Mat {
	frame := blankFrame()
	white := gocv.NewScalar(255, 255, 255, 0)
	region := frame.Region(image.Rect(100, 100, 300, 300))
	region.SetTo(white)
	region.Close()
	return frame
}

func TestMotionDetector_FirstFrameIsBaseline(t *testing.T) {
	m := NewMotionDetector(1.0)
	defer m.Close()

	frame := blankFrame()
	defer frame.Close()

	detected, change := m.Detect(&frame)
	if detected {
		t.Error("first frame must not report motion")
	}
	if change != 0 {
		t.Errorf("expected zero change on baseline frame, got %f", change)
	}
}

func TestMotionDetector_DetectsChange(t *testing.T) {
	m := NewMotionDetector(1.0)
	defer m.Close()

	baseline := blankFrame()
	defer baseline.Close()
	m.Detect(&baseline)

	moved := frameWithSquare()
	defer moved.Close()

	detected, change := m.Detect(&moved)
	if !detected {
		t.Errorf("expected motion, change = %f%%", change)
	}
}

func TestMotionDetector_StillSceneIsQuiet(t *testing.T) {
	m := NewMotionDetector(1.0)
	defer m.Close()

	first := frameWithSquare()
	defer first.Close()
	m.Detect(&first)

	same := frameWithSquare()
	defer same.Close()

	if detected, change := m.Detect(&same); detected {
		t.Errorf("identical frames reported motion, change = %f%%", change)
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	m := NewMotionDetector(1.0)
	defer m.Close()

	first := blankFrame()
	defer first.Close()
	m.Detect(&first)

	m.Reset()

	// After a reset the next frame is a baseline again, even if it
	// differs from what came before.
	moved := frameWithSquare()
	defer moved.Close()
	if detected, _ := m.Detect(&moved); detected {
		t.Error("expected no motion on post-reset baseline frame")
	}
}

func TestMotionDetector_EmptyFrame(t *testing.T) {
	m := NewMotionDetector(1.0)
	defer m.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	if detected, _ := m.Detect(&empty); detected {
		t.Error("empty frame must not report motion")
	}
	if detected, _ := m.Detect(nil); detected {
		t.Error("nil frame must not report motion")
	}
}
