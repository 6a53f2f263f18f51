package dashboard

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"lectern/internal/manifest"
)

//go:embed index.html
var indexHTML []byte

// Server exposes dataset statistics on /api/stats with a small embedded
// HTML view at the root. Stats are recomputed from the manifest on each
// request so the dashboard can stay open during a run.
type Server struct {
	manifestPath string
	logger       *slog.Logger
	server       *http.Server
	listener     net.Listener
}

// NewServer constructs a dashboard server reading the given manifest.
func NewServer(manifestPath string, logger *slog.Logger) (*Server, error) {
	if manifestPath == "" {
		return nil, errors.New("dashboard requires a manifest path")
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		manifestPath: manifestPath,
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleIndex)
	mux.HandleFunc("/api/stats", srv.handleStats)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Start begins serving on bind and shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context, bind string) error {
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("dashboard listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("dashboard server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("dashboard listening", "address", listener.Addr().String())
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler returns the HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, err := manifest.Read(s.manifestPath)
	if err != nil {
		s.logger.Error("failed to read manifest", "error", err)
		http.Error(w, "manifest unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Compute(entries)); err != nil {
		s.logger.Error("failed to encode stats", "error", err)
	}
}
