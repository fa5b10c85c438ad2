package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It either returns a fixed result for every frame (SetHands) or plays
// back a per-frame script (Script), which lets tests drive the pipeline
// through multi-frame drawing scenarios.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	err      error
	script   [][]HandLandmarks
	scripted bool
	index    int
	closed   bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned by every subsequent Detect call.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.scripted = false
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Script queues one detection result per frame. A nil entry means no hand
// was detected that frame. Once the script is exhausted Detect reports no
// hands.
func (m *MockDetector) Script(frames ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = frames
	m.scripted = true
	m.index = 0
}

// Detect returns the pre-configured hands, the next script entry, or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if !m.scripted {
		return m.hands, nil
	}
	if m.index >= len(m.script) {
		return nil, nil
	}
	hands := m.script[m.index]
	m.index++
	return hands, nil
}

// Close records the shutdown so tests can assert cleanup paths ran.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Fixture geometry. All poses hang the fingers below a wrist placed under
// the point of interest, with per-finger x offsets so the landmarks do not
// collapse onto each other. A finger reads as extended when its tip is
// farther from the wrist than both its PIP and DIP joints.

var fingerOffsets = [4]float64{0, -0.04, -0.08, -0.12}

// PointingLandmarks returns a hand with only the index finger extended,
// with the index fingertip at the given normalized position.
func PointingLandmarks(tip Point3D) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	x, y := tip.X, tip.Y
	h.Points[Wrist] = Point3D{X: x, Y: y + 0.40}

	// Thumb tucked to the side, never counted by the classifier.
	h.Points[ThumbCMC] = Point3D{X: x + 0.06, Y: y + 0.34}
	h.Points[ThumbMCP] = Point3D{X: x + 0.10, Y: y + 0.30}
	h.Points[ThumbIP] = Point3D{X: x + 0.13, Y: y + 0.27}
	h.Points[ThumbTip] = Point3D{X: x + 0.15, Y: y + 0.25}

	// Index extended straight up toward the tip.
	h.Points[IndexMCP] = Point3D{X: x, Y: y + 0.30}
	h.Points[IndexPIP] = Point3D{X: x, Y: y + 0.20}
	h.Points[IndexDIP] = Point3D{X: x, Y: y + 0.10}
	h.Points[IndexTip] = tip

	curlFinger(&h, MiddleMCP, x+fingerOffsets[1], y)
	curlFinger(&h, RingMCP, x+fingerOffsets[2], y)
	curlFinger(&h, PinkyMCP, x+fingerOffsets[3], y)

	return h
}

// PinkySelectLandmarks returns a hand with only the pinky extended and the
// index fingertip (the hit-test reference point) at the given normalized
// position.
func PinkySelectLandmarks(ref Point3D) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	x, y := ref.X, ref.Y
	h.Points[Wrist] = Point3D{X: x, Y: y + 0.25}

	h.Points[ThumbCMC] = Point3D{X: x + 0.06, Y: y + 0.19}
	h.Points[ThumbMCP] = Point3D{X: x + 0.10, Y: y + 0.15}
	h.Points[ThumbIP] = Point3D{X: x + 0.13, Y: y + 0.12}
	h.Points[ThumbTip] = Point3D{X: x + 0.15, Y: y + 0.10}

	// Index curled: the tip sits at ref but its joints reach past it, so
	// tip-to-wrist stays below pip-to-wrist.
	h.Points[IndexMCP] = Point3D{X: x, Y: y + 0.15}
	h.Points[IndexPIP] = Point3D{X: x, Y: y - 0.06}
	h.Points[IndexDIP] = Point3D{X: x, Y: y - 0.03}
	h.Points[IndexTip] = ref

	h.Points[MiddleMCP] = Point3D{X: x - 0.04, Y: y + 0.13}
	h.Points[MiddlePIP] = Point3D{X: x - 0.04, Y: y + 0.03}
	h.Points[MiddleDIP] = Point3D{X: x - 0.04, Y: y + 0.09}
	h.Points[MiddleTip] = Point3D{X: x - 0.04, Y: y + 0.12}

	h.Points[RingMCP] = Point3D{X: x - 0.08, Y: y + 0.13}
	h.Points[RingPIP] = Point3D{X: x - 0.08, Y: y + 0.03}
	h.Points[RingDIP] = Point3D{X: x - 0.08, Y: y + 0.09}
	h.Points[RingTip] = Point3D{X: x - 0.08, Y: y + 0.12}

	// Pinky extended away from the palm.
	h.Points[PinkyMCP] = Point3D{X: x - 0.10, Y: y + 0.15}
	h.Points[PinkyPIP] = Point3D{X: x - 0.12, Y: y + 0.05}
	h.Points[PinkyDIP] = Point3D{X: x - 0.13, Y: y - 0.02}
	h.Points[PinkyTip] = Point3D{X: x - 0.14, Y: y - 0.08}

	return h
}

// OpenPalmLandmarks returns a hand with all four fingers extended.
// Ambiguous for the drawing classifier, which must treat it as idle.
func OpenPalmLandmarks() HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75}
	h.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70}
	h.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65}
	h.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60}

	for i, mcp := range []int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP} {
		x := 0.5 + fingerOffsets[i]
		h.Points[mcp] = Point3D{X: x, Y: 0.68}
		h.Points[mcp+1] = Point3D{X: x, Y: 0.55}
		h.Points[mcp+2] = Point3D{X: x, Y: 0.45}
		h.Points[mcp+3] = Point3D{X: x, Y: 0.35}
	}

	return h
}

// FistLandmarks returns a hand with all fingers curled into the palm.
func FistLandmarks() HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76}
	h.Points[ThumbMCP] = Point3D{X: 0.57, Y: 0.72}
	h.Points[ThumbIP] = Point3D{X: 0.56, Y: 0.70}
	h.Points[ThumbTip] = Point3D{X: 0.54, Y: 0.70}

	for i, mcp := range []int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP} {
		x := 0.5 + fingerOffsets[i]
		curlFinger(&h, mcp, x, 0.8-0.40)
	}

	return h
}

// TwoFingerLandmarks returns a hand with index and middle fingers extended,
// another ambiguous pattern that must classify as idle.
func TwoFingerLandmarks() HandLandmarks {
	h := PointingLandmarks(Point3D{X: 0.5, Y: 0.4})

	// Extend the middle finger alongside the index.
	h.Points[MiddleMCP] = Point3D{X: 0.46, Y: 0.70}
	h.Points[MiddlePIP] = Point3D{X: 0.46, Y: 0.60}
	h.Points[MiddleDIP] = Point3D{X: 0.46, Y: 0.50}
	h.Points[MiddleTip] = Point3D{X: 0.46, Y: 0.40}

	return h
}

// curlFinger fills the four landmarks of a finger in a curled pose.
// mcp is the finger's MCP index; tipX/tipY anchor the pose relative to the
// PointingLandmarks geometry (wrist at tipY+0.40).
func curlFinger(h *HandLandmarks, mcp int, tipX, tipY float64) {
	h.Points[mcp] = Point3D{X: tipX, Y: tipY + 0.28}
	h.Points[mcp+1] = Point3D{X: tipX, Y: tipY + 0.18} // PIP
	h.Points[mcp+2] = Point3D{X: tipX, Y: tipY + 0.24} // DIP
	h.Points[mcp+3] = Point3D{X: tipX, Y: tipY + 0.27} // tip folded toward palm
}
