package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/peterkuimelis/pairs/internal/game"
	pairsnet "github.com/peterkuimelis/pairs/internal/net"
)

//go:embed static
var staticFiles embed.FS

// ConfigInfo is the JSON representation of the table settings for the
// /api/config endpoint.
type ConfigInfo struct {
	Pairs          int   `json:"pairs"`
	AvailablePairs []int `json:"availablePairs"`
	Remote         bool  `json:"remote"`
}

// Options configures a Server.
type Options struct {
	SymbolsFile    string
	Pairs          int
	AvailablePairs []int
	Remote         bool
	NewEngine      func() *game.Engine
	Logger         *slog.Logger
}

// Server is the pairs web UI server. Every WebSocket gets its own engine.
type Server struct {
	opts   Options
	logger *slog.Logger
	mux    *http.ServeMux
}

// NewServer creates a new web server.
func NewServer(opts Options) (*Server, error) {
	if opts.NewEngine == nil {
		return nil, errors.New("web: NewEngine is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		opts:   opts,
		logger: logger.With("component", "web"),
		mux:    http.NewServeMux(),
	}
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) setupRoutes() error {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("static files: %w", err)
	}

	// Serve index.html at root
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f)
	})

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.mux.HandleFunc("GET /api/config", s.handleConfig)
	s.mux.HandleFunc("GET /api/symbols", s.handleSymbols)

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	return nil
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, ConfigInfo{
		Pairs:          s.opts.Pairs,
		AvailablePairs: s.opts.AvailablePairs,
		Remote:         s.opts.Remote,
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer wsConn.CloseNow()

	logger := s.logger.With("remote", r.RemoteAddr)
	logger.Info("player connected")

	engine := s.opts.NewEngine()
	defer engine.Close()

	sess := pairsnet.NewSession(engine, NewWSTransport(wsConn), s.opts.AvailablePairs, logger)
	if err := sess.Run(r.Context()); err != nil {
		logger.Warn("session ended with error", "error", err)
		return
	}
	logger.Info("player disconnected", "status", engine.StatusText())
}

// ListenAndServe serves HTTP on addr until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
