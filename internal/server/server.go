// Package server provides the HTTP control surface for AirSig: session
// state, canvas operations, project persistence, and live streams.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/ayusman/airsig/internal/app"
	"github.com/ayusman/airsig/internal/store"
)

// Config holds the server configuration.
type Config struct {
	App    *app.App
	Logger *charmlog.Logger
}

// Server exposes the running application over HTTP.
type Server struct {
	app    *app.App
	logger *charmlog.Logger
	mux    *http.ServeMux
	events *EventsHandler
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = charmlog.Default()
	}

	s := &Server{
		app:    config.App,
		logger: logger,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/api/canvas", s.handleCanvas)
	s.mux.HandleFunc("/api/canvas/undo", s.handleCanvasOp)
	s.mux.HandleFunc("/api/canvas/redo", s.handleCanvasOp)
	s.mux.HandleFunc("/api/canvas/clear", s.handleCanvasOp)
	s.mux.HandleFunc("/api/projects", s.handleProjects)
	s.mux.HandleFunc("/api/projects/", s.handleProjectByID)

	s.mux.Handle("/api/stream", NewStreamHandler(s.app.Mailbox()))
	s.events = NewEventsHandler(s, s.logger)
	s.mux.Handle("/api/events", s.events)
}

// Close stops the background broadcast loop and drops its clients.
func (s *Server) Close() {
	s.events.Close()
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return http.ListenAndServe(addr, s)
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// sessionState is the JSON shape of /api/state and the events broadcast.
type sessionState struct {
	Gesture      string  `json:"gesture"`
	BrushColor   string  `json:"brush_color"`
	BrushSize    int     `json:"brush_size"`
	BrushOpacity float64 `json:"brush_opacity"`
	ShapeTool    string  `json:"shape_tool,omitempty"`
	FPS          float64 `json:"fps"`
	Enabled      bool    `json:"enabled"`
	Recording    bool    `json:"recording"`
	UndoDepth    int     `json:"undo_depth"`
	RedoDepth    int     `json:"redo_depth"`
}

func (s *Server) currentState() sessionState {
	d := s.app.Driver()
	return sessionState{
		Gesture:      string(d.Gesture()),
		BrushColor:   d.BrushColor(),
		BrushSize:    d.BrushSize(),
		BrushOpacity: d.BrushOpacity(),
		ShapeTool:    string(d.ShapeTool()),
		FPS:          s.app.FPS(),
		Enabled:      s.app.IsEnabled(),
		Recording:    s.app.Recording(),
		UndoDepth:    s.app.Engine().UndoDepth(),
		RedoDepth:    s.app.Engine().RedoDepth(),
	}
}

// handleState handles GET requests to /api/state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.currentState())
}

// handleCanvas handles GET requests to /api/canvas, returning the canvas
// as PNG.
func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	png, err := s.app.Engine().EncodePNG()
	if err != nil {
		s.logger.Error("canvas encode failed", "err", err)
		http.Error(w, "Failed to encode canvas", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleCanvasOp handles POST requests to /api/canvas/{undo,redo,clear}.
// Undo at the floor and redo with empty history answer 409 so clients
// can distinguish a refused operation from a failed request.
func (s *Server) handleCanvasOp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	engine := s.app.Engine()
	op := strings.TrimPrefix(r.URL.Path, "/api/canvas/")

	switch op {
	case "undo":
		if !engine.Undo() {
			writeJSON(w, http.StatusConflict, map[string]any{"error": "nothing to undo"})
			return
		}
	case "redo":
		if !engine.Redo() {
			writeJSON(w, http.StatusConflict, map[string]any{"error": "nothing to redo"})
			return
		}
	case "clear":
		engine.Clear()
	default:
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"undo_depth": engine.UndoDepth(),
		"redo_depth": engine.RedoDepth(),
	})
}

// projectSummary is the JSON shape of a project in listings.
type projectSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	BrushColor string    `json:"brush_color"`
	Autosave   bool      `json:"autosave"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func summarize(p *store.Project) projectSummary {
	return projectSummary{
		ID:         p.ID,
		Name:       p.Name,
		Width:      p.Width,
		Height:     p.Height,
		BrushColor: p.BrushColor,
		Autosave:   p.Autosave,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// handleProjects handles /api/projects: GET lists saved projects, POST
// saves the current canvas under the posted name.
func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	if s.app.Store() == nil {
		http.Error(w, "No store configured", http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodGet:
		projects, err := s.app.Store().Projects().List()
		if err != nil {
			s.logger.Error("project list failed", "err", err)
			http.Error(w, "Failed to list projects", http.StatusInternalServerError)
			return
		}
		summaries := make([]projectSummary, 0, len(projects))
		for _, p := range projects {
			summaries = append(summaries, summarize(p))
		}
		writeJSON(w, http.StatusOK, summaries)

	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		p, err := s.app.SaveProject(req.Name)
		if err != nil {
			s.logger.Error("project save failed", "err", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, summarize(p))

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleProjectByID handles /api/projects/{id} and /api/projects/{id}/load.
func (s *Server) handleProjectByID(w http.ResponseWriter, r *http.Request) {
	if s.app.Store() == nil {
		http.Error(w, "No store configured", http.StatusServiceUnavailable)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/projects/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case action == "load" && r.Method == http.MethodPost:
		if err := s.app.LoadProject(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "Project not found", http.StatusNotFound)
				return
			}
			s.logger.Error("project load failed", "id", id, "err", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	case action == "" && r.Method == http.MethodGet:
		p, err := s.app.Store().Projects().GetByID(id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "Project not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, summarize(p))

	case action == "" && r.Method == http.MethodDelete:
		if err := s.app.Store().Projects().Delete(id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "Project not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
