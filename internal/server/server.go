// Package server provides the HTTP surface of handcalc: the web page, the
// MJPEG video feed, start/stop control and JSON views of the calculator.
package server

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ayusman/handcalc/internal/calculator"
	"github.com/ayusman/handcalc/internal/logging"
	"github.com/ayusman/handcalc/internal/store"
)

//go:embed web
var webFS embed.FS

// Controller is the application surface the handlers drive.
type Controller interface {
	SetEnabled(enabled bool)
	IsEnabled() bool
	IsStreaming() bool
	Reset()
	State() calculator.State
	History() []string
	LatestFrame() []byte
	Subscribe() (<-chan struct{}, func())
}

// Config holds the server configuration.
type Config struct {
	// StaticDir overrides the embedded web page when set.
	StaticDir string
	// Controller drives the calculator routes. Those routes are not
	// registered when it is nil.
	Controller Controller
	// Store backs /api/calculations. Optional.
	Store *store.Store
	// Metrics serves /metrics. Optional.
	Metrics http.Handler
	Logger  zerolog.Logger
}

// Server represents the HTTP server for the handcalc application.
type Server struct {
	config Config
	router chi.Router
	log    zerolog.Logger
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		log:    logging.Component(config.Logger, "server"),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)

	if s.config.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.config.Metrics)
	}

	if c := s.config.Controller; c != nil {
		h := &controlHandler{ctrl: c, log: s.log}

		r.Get("/video", NewStreamHandler(c).ServeHTTP)

		r.Route("/control", func(r chi.Router) {
			r.Get("/start", h.start)
			r.Post("/start", h.start)
			r.Get("/stop", h.stop)
			r.Post("/stop", h.stop)
			r.Post("/reset", h.reset)
		})

		r.Get("/history", h.history)
		r.Get("/api/state", h.state)
		r.Get("/api/events", NewEventsHandler(c, s.log).ServeHTTP)
	}

	if s.config.Store != nil {
		r.Get("/api/calculations", newCalculationsHandler(s.config.Store).list)
	}

	s.mountStatic()
}

// mountStatic serves StaticDir when configured, the embedded page otherwise.
func (s *Server) mountStatic() {
	var files http.FileSystem
	if s.config.StaticDir != "" {
		files = http.Dir(s.config.StaticDir)
	} else {
		sub, err := fs.Sub(webFS, "web")
		if err != nil {
			s.log.Error().Err(err).Msg("embedded web assets unavailable")
			return
		}
		files = http.FS(sub)
	}

	fileServer := http.FileServer(files)
	s.router.Get("/", fileServer.ServeHTTP)
	s.router.Get("/*", fileServer.ServeHTTP)
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// HTTPServer returns an http.Server for addr with this handler, for callers
// that need graceful shutdown.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
