// Package server provides the optional HTTP preview server: tool state
// API, MJPEG stream of the composited output, and a websocket feed of
// per-frame gesture state.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/grusso/airdraw/internal/app"
	"github.com/grusso/airdraw/internal/store"
)

// Config holds the server configuration.
type Config struct {
	App   *app.App
	Store *store.Store
}

// Server is the HTTP preview server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.App != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.HandleFunc("/api/clear", s.handleClear)
		s.mux.HandleFunc("/api/snapshot", s.handleSnapshot)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App))
		s.mux.Handle("/api/events", NewEventsHandler(s.config.App))
	}

	if s.config.Store != nil {
		s.mux.HandleFunc("/api/sessions", s.handleSessions)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

type updateStateRequest struct {
	Color     *string `json:"color,omitempty"`
	Thickness *int    `json:"thickness,omitempty"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

// handleState handles GET and PUT requests to /api/state. PUT changes are
// queued for the frame loop, so the response reflects the state before
// the next frame applies them.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.config.App.State())

	case http.MethodPut:
		var req updateStateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if req.Color != nil {
			if err := s.config.App.SetColorByName(*req.Color); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		if req.Thickness != nil {
			s.config.App.SetThickness(*req.Thickness)
		}
		if req.Enabled != nil {
			s.config.App.SetEnabled(*req.Enabled)
		}

		writeJSON(w, s.config.App.State())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleClear handles POST requests to /api/clear.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.config.App.ClearCanvas()
	w.WriteHeader(http.StatusAccepted)
}

// handleSnapshot handles POST requests to /api/snapshot.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path, err := s.config.App.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"path": path})
}

type sessionResponse struct {
	ID        string  `json:"id"`
	StartedAt string  `json:"started_at"`
	EndedAt   *string `json:"ended_at,omitempty"`
	Strokes   int     `json:"strokes"`
	Clears    int     `json:"clears"`
}

// handleSessions handles GET requests to /api/sessions.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessions, err := s.config.Store.Sessions().List()
	if err != nil {
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp := sessionResponse{
			ID:        session.ID,
			StartedAt: session.StartedAt.Format(time.RFC3339),
			Strokes:   session.Strokes,
			Clears:    session.Clears,
		}
		if session.EndedAt != nil {
			ended := session.EndedAt.Format(time.RFC3339)
			resp.EndedAt = &ended
		}
		out = append(out, resp)
	}

	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
