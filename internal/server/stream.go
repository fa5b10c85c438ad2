package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/grusso/airdraw/internal/app"
)

// frameInterval is the pacing of outgoing MJPEG/websocket frames (~15 FPS).
const frameInterval = 66 * time.Millisecond

// StreamHandler serves the composited output as an MJPEG stream.
type StreamHandler struct {
	app *app.App
}

// NewStreamHandler creates a StreamHandler. It switches the app into
// publish mode so composited frames get JPEG-encoded each frame.
func NewStreamHandler(a *app.App) *StreamHandler {
	a.SetPublish(true)
	return &StreamHandler{app: a}
}

// ServeHTTP streams MJPEG frames to the client until it disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		jpeg, ok := h.app.LatestJPEG()
		if !ok {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
		w.Write(jpeg)
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
