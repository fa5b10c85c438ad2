package app

import (
	"log"
	"time"

	"github.com/grusso/airdraw/internal/capture"
)

// Start begins the headless pipeline in a background goroutine. Used in
// tray/server mode, where there is no on-screen window and the composited
// output is consumed over HTTP instead.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	if a.config.MotionGate {
		a.camera.SetFPS(capture.IdleFPS)
	}

	// Open the session before the goroutine exists, so a Stop racing a
	// fresh Start always finds the row it is supposed to close.
	a.beginSession()

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources. It waits for the frame
// loop to finish its current frame before touching board state; the
// session counters and saved settings reflect a quiescent board.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()
	a.closeDetector()
	a.endSession()

	log.Println("Pipeline stopped")
}

func (a *App) closeDetector() {
	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}
}

// runPipeline is the headless frame loop. Each tick reads one frame and
// runs the full per-frame pass; the tick rate follows the camera's
// idle/active frame rate so a motionless scene costs little.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := time.Second / time.Duration(a.camera.FPS())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			a.ProcessFrame(frame)
			frame.Close()

			// Track frame rate switches made by the motion gate.
			if next := time.Second / time.Duration(a.camera.FPS()); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}
