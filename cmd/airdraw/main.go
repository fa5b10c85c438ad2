package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/grusso/airdraw/internal/app"
	"github.com/grusso/airdraw/internal/server"
	"github.com/grusso/airdraw/internal/store"
	"github.com/grusso/airdraw/internal/tray"
)

func main() {
	var (
		cameraID    = flag.Int("camera", 0, "camera device id")
		width       = flag.Int("width", 0, "capture width (0 = default)")
		height      = flag.Int("height", 0, "capture height (0 = default)")
		dbPath      = flag.String("db", "", "database path (default ~/.airdraw/airdraw.db)")
		addr        = flag.String("addr", "", "preview server address (empty = disabled)")
		headless    = flag.Bool("tray", false, "run headless with a system tray instead of a window")
		snapshotDir = flag.String("snapshots", "", "snapshot output directory (default ~/.airdraw/snapshots)")
		motionGate  = flag.Bool("motion-gate", true, "skip hand detection on motionless frames")
	)
	flag.Parse()

	fmt.Println("Airdraw - draw in the air with your index finger")

	dataDir, err := ensureDataDir()
	if err != nil {
		log.Fatalf("Failed to prepare data directory: %v", err)
	}

	if *dbPath == "" {
		*dbPath = filepath.Join(dataDir, "airdraw.db")
	}
	st, err := store.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	if *snapshotDir == "" {
		*snapshotDir = filepath.Join(dataDir, "snapshots")
		if err := os.MkdirAll(*snapshotDir, 0755); err != nil {
			log.Fatalf("Failed to create snapshot directory: %v", err)
		}
	}

	a := app.New(app.Config{
		Store:       st,
		CameraID:    resolveCameraID(st, *cameraID),
		Width:       *width,
		Height:      *height,
		MotionGate:  *motionGate,
		SnapshotDir: *snapshotDir,
	})

	if *addr != "" {
		srv := server.New(server.Config{App: a, Store: st})
		go func() {
			log.Printf("Preview server on %s", *addr)
			if err := srv.ListenAndServe(*addr); err != nil {
				log.Fatalf("Server failed: %v", err)
			}
		}()
	}

	if *headless {
		runTray(a)
		return
	}

	// Interactive window mode: the frame loop owns the main thread.
	if err := a.Run("Airdraw"); err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
}

// runTray runs the pipeline in the background with a tray menu on the
// main goroutine (systray requires it).
func runTray(a *app.App) {
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnClear(a.ClearCanvas)
	t.OnSnapshot(func() {
		if path, err := a.Snapshot(); err != nil {
			log.Printf("Snapshot failed: %v", err)
		} else {
			log.Printf("Snapshot saved to %s", path)
		}
	})
	t.OnQuit(a.Stop)
	t.Run()
}

// resolveCameraID picks the camera device: an explicit -camera flag wins
// and is persisted; otherwise the last persisted device is reused.
func resolveCameraID(st *store.Store, flagValue int) int {
	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "camera" {
			explicit = true
		}
	})

	settings := st.Settings()
	if !explicit {
		if saved, err := settings.GetInt(store.KeyCameraID); err == nil {
			return saved
		}
		return flagValue
	}

	if err := settings.SetInt(store.KeyCameraID, flagValue); err != nil {
		log.Printf("Failed to save camera device: %v", err)
	}
	return flagValue
}

// ensureDataDir creates and returns ~/.airdraw.
func ensureDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dataDir := filepath.Join(homeDir, ".airdraw")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}
