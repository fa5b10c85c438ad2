package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/grusso/airdraw/internal/board"
	"github.com/grusso/airdraw/internal/capture"
	"github.com/grusso/airdraw/internal/detector"
	"github.com/grusso/airdraw/internal/gesture"
	"github.com/grusso/airdraw/internal/store"
)

func newTestApp(t *testing.T) (*App, *detector.MockDetector) {
	t.Helper()

	a := New(Config{
		Width:  640,
		Height: 480,
		// No motion gate: every frame runs detection.
	})
	mock := detector.NewMockDetector()
	a.SetDetector(mock)

	return a, mock
}

// processFrames runs n frames through the per-frame pass on fresh
// synthetic camera frames.
func processFrames(t *testing.T, a *App, n int) []gesture.Result {
	t.Helper()

	results := make([]gesture.Result, 0, n)
	for i := 0; i < n; i++ {
		frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(80, 80, 80, 0), 480, 640, gocv.MatTypeCV8UC3)
		results = append(results, a.ProcessFrame(&frame))
		frame.Close()
	}
	return results
}

// norm converts a pixel position to the detector's normalized coordinates.
func norm(x, y int) detector.Point3D {
	return detector.Point3D{X: float64(x) / 640.0, Y: float64(y) / 480.0}
}

func TestApp_DrawingScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, mock := newTestApp(t)
	defer a.Board().Close()

	// Draw two frames, lose the hand for one, then draw two more.
	mock.Script(
		[]detector.HandLandmarks{detector.PointingLandmarks(norm(160, 240))},
		[]detector.HandLandmarks{detector.PointingLandmarks(norm(320, 240))},
		nil,
		[]detector.HandLandmarks{detector.PointingLandmarks(norm(160, 360))},
		[]detector.HandLandmarks{detector.PointingLandmarks(norm(320, 360))},
	)

	results := processFrames(t, a, 5)

	wantGestures := []gesture.Gesture{
		gesture.Drawing, gesture.Drawing, gesture.Idle, gesture.Drawing, gesture.Drawing,
	}
	for i, want := range wantGestures {
		if results[i].Gesture != want {
			t.Errorf("frame %d: gesture = %v, want %v", i, results[i].Gesture, want)
		}
	}

	mask := a.Board().Mask()

	// First stroke segment (160,240)-(320,240).
	if mask.GetUCharAt(240, 240) == 0 {
		t.Error("expected ink on the first stroke")
	}
	// Second stroke segment (160,360)-(320,360).
	if mask.GetUCharAt(360, 240) == 0 {
		t.Error("expected ink on the second stroke")
	}
	// No bridge across the idle frame: midpoint of (320,240)-(160,360).
	if mask.GetUCharAt(300, 240) != 0 {
		t.Error("idle frame was bridged into a single stroke")
	}

	if got := a.Board().Strokes(); got != 2 {
		t.Errorf("strokes = %d, want 2", got)
	}
}

func TestApp_ColorSelectionScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, mock := newTestApp(t)
	defer a.Board().Close()

	blue, ok := a.Layout().Find("Blue")
	if !ok {
		t.Fatal("Blue control not found")
	}
	c := blue.Rect.Min.Add(blue.Rect.Max).Div(2)

	mock.Script(
		[]detector.HandLandmarks{detector.PinkySelectLandmarks(norm(c.X, c.Y))},
	)
	results := processFrames(t, a, 1)

	if results[0].Gesture != gesture.Selecting {
		t.Fatalf("gesture = %v, want Selecting", results[0].Gesture)
	}
	if got := a.Board().Tools().Color.Name; got != "Blue" {
		t.Errorf("color = %q, want %q", got, "Blue")
	}

	// Selecting never puts ink down.
	mask := a.Board().Mask()
	if gocv.CountNonZero(mask) != 0 {
		t.Error("selection frame mutated the canvas")
	}
}

func TestApp_ClearSelectionScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, mock := newTestApp(t)
	defer a.Board().Close()

	clear, ok := a.Layout().Find("Clear")
	if !ok {
		t.Fatal("Clear control not found")
	}
	c := clear.Rect.Min.Add(clear.Rect.Max).Div(2)

	mock.Script(
		[]detector.HandLandmarks{detector.PointingLandmarks(norm(100, 300))},
		[]detector.HandLandmarks{detector.PointingLandmarks(norm(200, 300))},
		[]detector.HandLandmarks{detector.PinkySelectLandmarks(norm(c.X, c.Y))},
	)

	before := a.Board().Tools()
	processFrames(t, a, 3)

	mask := a.Board().Mask()
	if gocv.CountNonZero(mask) != 0 {
		t.Error("expected blank canvas after clear selection")
	}

	// Clear resets the canvas, not the tools.
	after := a.Board().Tools()
	if after.Color.Name != before.Color.Name || after.Thickness != before.Thickness {
		t.Errorf("tool state changed across clear: %+v -> %+v", before, after)
	}
}

func TestApp_DisabledClassifiesIdle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, mock := newTestApp(t)
	defer a.Board().Close()

	mock.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(norm(320, 240))})
	a.SetEnabled(false)

	results := processFrames(t, a, 2)
	for i, res := range results {
		if res.Gesture != gesture.Idle {
			t.Errorf("frame %d: gesture = %v, want Idle while disabled", i, res.Gesture)
		}
	}

	mask := a.Board().Mask()
	if gocv.CountNonZero(mask) != 0 {
		t.Error("disabled pipeline still drew on the canvas")
	}
}

func TestApp_EnqueuedActions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, _ := newTestApp(t)
	defer a.Board().Close()

	if err := a.SetColorByName("Green"); err != nil {
		t.Fatalf("SetColorByName() error = %v", err)
	}
	a.SetThickness(11)

	// Queued actions apply at the start of the next frame.
	processFrames(t, a, 1)

	tools := a.Board().Tools()
	if tools.Color.Name != "Green" {
		t.Errorf("color = %q, want %q", tools.Color.Name, "Green")
	}
	if tools.Thickness != 11 {
		t.Errorf("thickness = %d, want 11", tools.Thickness)
	}

	if err := a.SetColorByName("Turquoise"); err == nil {
		t.Error("expected unknown color to be rejected")
	}
}

func TestApp_StateSnapshot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, mock := newTestApp(t)
	defer a.Board().Close()

	mock.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(norm(320, 240))})
	processFrames(t, a, 2)

	state := a.State()
	if state.Gesture != "drawing" {
		t.Errorf("state gesture = %q, want %q", state.Gesture, "drawing")
	}
	if state.Color != board.DefaultColor.Name {
		t.Errorf("state color = %q, want %q", state.Color, board.DefaultColor.Name)
	}
	if state.Thickness != board.DefaultThickness {
		t.Errorf("state thickness = %d, want %d", state.Thickness, board.DefaultThickness)
	}
	if !state.Enabled {
		t.Error("expected state to report enabled")
	}
}

func TestApp_SnapshotServicedByFrameLoop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a := New(Config{Width: 640, Height: 480, SnapshotDir: t.TempDir()})
	defer a.Board().Close()
	a.SetDetector(detector.NewMockDetector())

	// Snapshot blocks until the frame loop services it; pump frames from
	// this goroutine until the request comes back.
	type result struct {
		path string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		path, err := a.Snapshot()
		done <- result{path, err}
	}()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-done:
			if r.err != nil {
				t.Fatalf("Snapshot() error = %v", r.err)
			}
			if _, err := os.Stat(r.path); err != nil {
				t.Fatalf("snapshot file not written: %v", err)
			}
			return
		case <-deadline:
			t.Fatal("snapshot request never serviced")
		default:
			processFrames(t, a, 1)
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestApp_SnapshotTimesOutWithoutFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a := New(Config{Width: 640, Height: 480, SnapshotDir: t.TempDir()})
	defer a.Board().Close()

	if _, err := a.Snapshot(); err == nil {
		t.Fatal("expected an error with no frame loop running")
	}
}

func TestApp_StopImmediatelyAfterStart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	a := New(Config{Store: s, Width: 640, Height: 480})
	defer a.Board().Close()

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(80, 80, 80, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()
	a.SetCamera(capture.NewMockCamera([]*gocv.Mat{&frame}, true))

	mock := detector.NewMockDetector()
	a.SetDetector(mock)

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	a.Stop()

	if !mock.Closed() {
		t.Error("detector not closed by Stop")
	}

	// Even a Stop racing a fresh Start must end the session it opened.
	sessions, err := s.Sessions().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	if sessions[0].EndedAt == nil {
		t.Error("session left open by immediate Stop")
	}
}

func TestApp_HeadlessPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	a := New(Config{Store: s, Width: 640, Height: 480})
	defer a.Board().Close()

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(80, 80, 80, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()
	a.SetCamera(capture.NewMockCamera([]*gocv.Mat{&frame}, true))

	mock := detector.NewMockDetector()
	mock.SetHands([]detector.HandLandmarks{detector.PointingLandmarks(norm(320, 240))})
	a.SetDetector(mock)

	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	// Starting twice is a no-op, not an error.
	if err := a.Start(); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}

	time.Sleep(400 * time.Millisecond)
	a.Stop()

	if a.Camera().IsOpen() {
		t.Error("camera still open after Stop")
	}
	if got := a.Board().Strokes(); got < 1 {
		t.Errorf("strokes = %d, want at least 1", got)
	}

	sessions, err := s.Sessions().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	if sessions[0].EndedAt == nil {
		t.Error("expected session to be ended by Stop")
	}
}

func TestApp_SettingsPersistence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	first := New(Config{Store: s, Width: 640, Height: 480})
	first.Board().SetColor(board.Black)
	first.Board().SetThickness(13)
	first.saveSettings()
	first.Board().Close()

	// A fresh app picks the persisted tool state up over the defaults.
	second := New(Config{Store: s, Width: 640, Height: 480})
	defer second.Board().Close()

	tools := second.Board().Tools()
	if tools.Color.Name != board.Black.Name {
		t.Errorf("restored color = %q, want %q", tools.Color.Name, board.Black.Name)
	}
	if tools.Thickness != 13 {
		t.Errorf("restored thickness = %d, want 13", tools.Thickness)
	}
}
