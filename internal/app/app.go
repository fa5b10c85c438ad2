// Package app wires capture, detection, gesture classification, and the
// drawing board into the per-frame pipeline.
package app

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/grusso/airdraw/internal/board"
	"github.com/grusso/airdraw/internal/capture"
	"github.com/grusso/airdraw/internal/detector"
	"github.com/grusso/airdraw/internal/gesture"
	"github.com/grusso/airdraw/internal/render"
	"github.com/grusso/airdraw/internal/store"
	"github.com/grusso/airdraw/internal/ui"
)

// Window loop key codes.
const (
	keyEscape   = 27
	keySnapshot = 's'
)

// idleTimeout is how long without motion before the pipeline drops back
// to the idle frame rate.
const idleTimeout = 2 * time.Second

// snapshotTimeout bounds how long Snapshot waits for the frame loop to
// service the request.
const snapshotTimeout = 2 * time.Second

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	CameraID     int
	Width        int
	Height       int
	MotionThresh float64
	// MotionGate enables skipping hand detection on motionless frames and
	// the idle/active frame rate switching that goes with it.
	MotionGate  bool
	SnapshotDir string
}

// State is a read-only snapshot of the pipeline for observers (the
// preview server, the tray).
type State struct {
	Gesture   string `json:"gesture"`
	Color     string `json:"color"`
	Thickness int    `json:"thickness"`
	Strokes   int    `json:"strokes"`
	Clears    int    `json:"clears"`
	Enabled   bool   `json:"enabled"`
}

// App runs the drawing pipeline. The board and canvas are touched only
// from the frame loop; observers get mutex-guarded snapshots, and writers
// enqueue actions that the loop applies at the start of the next frame.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	board    *board.Board
	layout   *ui.Layout
	comp     *render.Compositor

	mu          sync.RWMutex
	enabled     bool
	publish     bool
	lastJPEG    []byte
	lastState   State
	pending     []board.Action
	snapWaiters []chan snapshotReply

	stopCh  chan struct{}
	doneCh  chan struct{}
	session *store.Session

	// Motion gate state, owned by the frame loop.
	activeMode     bool
	lastMotionTime time.Time
}

// New creates an App with the given configuration. Persisted tool settings,
// when present, override the board defaults.
func New(config Config) *App {
	if config.Width <= 0 {
		config.Width = capture.DefaultWidth
	}
	if config.Height <= 0 {
		config.Height = capture.DefaultHeight
	}
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // 1% pixel change
	}

	layout := ui.NewLayout(config.Width)

	a := &App{
		config:         config,
		camera:         capture.NewCamera(config.CameraID, config.Width, config.Height),
		motion:         capture.NewMotionDetector(motionThreshold),
		board:          board.New(config.Width, config.Height),
		layout:         layout,
		comp:           render.New(layout),
		enabled:        true,
		activeMode:     !config.MotionGate,
		lastMotionTime: time.Now(),
	}

	// Try MediaPipe first, fall back to the mock detector.
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	a.loadSettings()
	a.lastState = a.snapshotState(gesture.Result{})

	return a
}

// loadSettings applies persisted tool settings to the board.
func (a *App) loadSettings() {
	if a.config.Store == nil {
		return
	}
	settings := a.config.Store.Settings()

	if name, err := settings.Get(store.KeyColor); err == nil {
		if c, ok := board.ColorByName(name); ok {
			a.board.SetColor(c)
		}
	}
	if n, err := settings.GetInt(store.KeyThickness); err == nil {
		a.board.SetThickness(n)
	}
}

// saveSettings persists the current tool state.
func (a *App) saveSettings() {
	if a.config.Store == nil {
		return
	}
	settings := a.config.Store.Settings()
	tools := a.board.Tools()

	if err := settings.Set(store.KeyColor, tools.Color.Name); err != nil {
		log.Printf("Failed to save color: %v", err)
	}
	if err := settings.SetInt(store.KeyThickness, tools.Thickness); err != nil {
		log.Printf("Failed to save thickness: %v", err)
	}
}

// ProcessFrame runs the full per-frame pass on a captured frame, mutating
// it into the composited display image: mirror, detect, classify,
// dispatch, composite. Returns the classified gesture for the frame.
func (a *App) ProcessFrame(frame *gocv.Mat) gesture.Result {
	// Mirror so the on-screen hand moves like a reflection.
	gocv.Flip(*frame, frame, 1)

	if a.config.MotionGate {
		a.updateMotionGate(frame)
	}

	res := gesture.Result{Gesture: gesture.Idle}
	if a.IsEnabled() && a.activeMode {
		hands, err := a.Detector().Detect(frame)
		if err != nil {
			// Detection failure is not an error condition for the frame;
			// it degrades to idle.
			log.Printf("Error detecting hands: %v", err)
		} else {
			res = gesture.Classify(detector.BestHand(hands))
		}
	}

	for _, action := range a.takePending() {
		a.board.Apply(action)
	}

	width, height := a.board.Size()
	switch res.Gesture {
	case gesture.Drawing:
		a.board.Draw(res.Tip.Pixel(width, height))
	case gesture.Selecting:
		a.board.EndStroke()
		if action, ok := a.layout.HitTest(res.Tip.Pixel(width, height)); ok {
			a.board.Apply(action)
		}
	default:
		a.board.EndStroke()
	}

	a.comp.Compose(frame, a.board, res)
	a.publishFrame(frame, res)
	a.serviceSnapshots()

	return res
}

// serviceSnapshots answers pending snapshot requests. Only the frame loop
// calls this, so the canvas Mats are quiescent while the PNG is written.
func (a *App) serviceSnapshots() {
	a.mu.Lock()
	waiters := a.snapWaiters
	a.snapWaiters = nil
	a.mu.Unlock()

	if len(waiters) == 0 {
		return
	}

	path, err := a.writeSnapshot()
	for _, w := range waiters {
		w <- snapshotReply{path: path, err: err}
	}
}

// updateMotionGate switches between idle and active modes based on frame
// motion, adjusting the camera frame rate to match.
func (a *App) updateMotionGate(frame *gocv.Mat) {
	motionDetected, _ := a.motion.Detect(frame)

	if motionDetected {
		a.lastMotionTime = time.Now()
		if !a.activeMode {
			a.activeMode = true
			a.camera.SetFPS(capture.ActiveFPS)
			log.Println("Switched to active mode")
		}
		return
	}

	if a.activeMode && time.Since(a.lastMotionTime) > idleTimeout {
		a.activeMode = false
		a.camera.SetFPS(capture.IdleFPS)
		log.Println("Switched to idle mode")
	}
}

// publishFrame stores the state snapshot and, when publishing is enabled,
// the JPEG-encoded composited frame for the preview server.
func (a *App) publishFrame(frame *gocv.Mat, res gesture.Result) {
	state := a.snapshotState(res)

	a.mu.Lock()
	a.lastState = state

	if a.publish {
		buf, err := gocv.IMEncode(".jpg", *frame)
		if err == nil {
			a.lastJPEG = append(a.lastJPEG[:0], buf.GetBytes()...)
			buf.Close()
		}
	}
	a.mu.Unlock()
}

func (a *App) snapshotState(res gesture.Result) State {
	tools := a.board.Tools()
	return State{
		Gesture:   res.Gesture.String(),
		Color:     tools.Color.Name,
		Thickness: tools.Thickness,
		Strokes:   a.board.Strokes(),
		Clears:    a.board.Clears(),
		Enabled:   a.IsEnabled(),
	}
}

// Run drives the interactive window loop on the calling goroutine (gocv
// windows must stay on the main thread): read a frame, process it, show
// the composite, poll the keyboard. ESC exits; 's' saves a snapshot.
// A camera failure is fatal - there is no degraded mode without frames.
func (a *App) Run(windowName string) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer a.camera.Close()
	defer a.closeDetector()

	a.beginSession()
	defer a.endSession()

	window := gocv.NewWindow(windowName)
	defer window.Close()

	for {
		frame, err := a.camera.ReadFrame()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		a.ProcessFrame(frame)
		window.IMShow(*frame)
		frame.Close()

		switch window.WaitKey(1) {
		case keyEscape:
			return nil
		case keySnapshot:
			// The window loop is the frame loop; write directly.
			if path, err := a.writeSnapshot(); err != nil {
				log.Printf("Snapshot failed: %v", err)
			} else {
				log.Printf("Snapshot saved to %s", path)
			}
		}
	}
}

type snapshotReply struct {
	path string
	err  error
}

// Snapshot saves the current drawing to a timestamped PNG and returns its
// path. The write happens on the frame loop between frames; the canvas
// Mats are never read while a stroke segment is being drawn. Fails if no
// frame is processed within snapshotTimeout.
func (a *App) Snapshot() (string, error) {
	reply := make(chan snapshotReply, 1)
	a.mu.Lock()
	a.snapWaiters = append(a.snapWaiters, reply)
	a.mu.Unlock()

	select {
	case r := <-reply:
		return r.path, r.err
	case <-time.After(snapshotTimeout):
		return "", fmt.Errorf("snapshot: no frame processed within %s", snapshotTimeout)
	}
}

// writeSnapshot renders the drawing (ink on a white background, camera
// image excluded) and writes the PNG. Frame loop only.
func (a *App) writeSnapshot() (string, error) {
	width, height := a.board.Size()

	out := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), height, width, gocv.MatTypeCV8UC3)
	defer out.Close()

	canvas := a.board.Canvas()
	canvas.CopyToWithMask(&out, a.board.Mask())

	dir := a.config.SnapshotDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("airdraw-%s.png", time.Now().Format("20060102-150405")))

	if ok := gocv.IMWrite(path, out); !ok {
		return "", fmt.Errorf("write snapshot %s", path)
	}
	return path, nil
}

func (a *App) beginSession() {
	if a.config.Store == nil {
		return
	}
	session, err := a.config.Store.Sessions().Begin()
	if err != nil {
		log.Printf("Failed to begin session: %v", err)
		return
	}
	a.session = session
}

func (a *App) endSession() {
	a.saveSettings()
	if a.session == nil {
		return
	}
	if err := a.config.Store.Sessions().End(a.session.ID, a.board.Strokes(), a.board.Clears()); err != nil {
		log.Printf("Failed to end session: %v", err)
	}
	a.session = nil
}

// SetEnabled enables or disables gesture detection. While disabled the
// compositor still runs, but every frame classifies as idle.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetPublish enables encoding the composited frame for the preview server.
func (a *App) SetPublish(publish bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.publish = publish
}

// LatestJPEG returns a copy of the most recent composited frame as JPEG.
func (a *App) LatestJPEG() ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.lastJPEG) == 0 {
		return nil, false
	}
	out := make([]byte, len(a.lastJPEG))
	copy(out, a.lastJPEG)
	return out, true
}

// State returns the most recent pipeline state snapshot.
func (a *App) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastState
}

// Enqueue queues board actions to be applied by the frame loop at the
// start of the next frame. This is the only way code outside the loop may
// mutate the board.
func (a *App) Enqueue(actions ...board.Action) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = append(a.pending, actions...)
}

func (a *App) takePending() []board.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	pending := a.pending
	a.pending = nil
	return pending
}

// ClearCanvas queues a canvas clear.
func (a *App) ClearCanvas() {
	a.Enqueue(board.Action{Kind: board.ActionClear})
}

// SetColorByName queues a color change. Unknown names are an error.
func (a *App) SetColorByName(name string) error {
	c, ok := board.ColorByName(name)
	if !ok {
		return fmt.Errorf("unknown color %q", name)
	}
	a.Enqueue(board.Action{Kind: board.ActionSetColor, Color: c})
	return nil
}

// SetThickness queues an absolute thickness change; the board clamps it.
func (a *App) SetThickness(n int) {
	a.Enqueue(board.Action{Kind: board.ActionSetThickness, Thickness: n})
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// SetCamera replaces the camera. Only valid before Run or Start.
func (a *App) SetCamera(c capture.Camera) {
	a.camera = c
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Board returns the drawing board. Outside the frame loop it must be
// treated as read-only; use Enqueue for mutations.
func (a *App) Board() *board.Board {
	return a.board
}

// Layout returns the static UI control layout.
func (a *App) Layout() *ui.Layout {
	return a.layout
}
