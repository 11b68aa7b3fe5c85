// Package web serves a live preview of a session over HTTP: the printable HTML page, the
// markdown and PDF exports, and a small JSON API over the same operations the TUI drives.
// Connected pages reload over a websocket whenever the tree changes.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"quire/internal/publish"
	"quire/internal/session"
	"quire/internal/store"
)

type ServerConfig struct {
	Addr     string
	ReadOnly bool
	// Token, when set, must accompany every request (bearer header, cookie or ?token=).
	Token  string
	Title  string
	Logger zerolog.Logger
	// PDF holds the page options for /export.pdf.
	PDF publish.PDFOptions
	// PDFRenderer overrides headless Chrome.
	PDFRenderer publish.PDFRenderer
}

// Server owns the session. Every handler runs under mu; the store is single-writer.
type Server struct {
	mu      sync.Mutex
	cfg     ServerConfig
	sess    *session.Session
	log     zerolog.Logger
	version uint64

	hub *hub
}

func NewServer(sess *session.Session, cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if sess == nil {
		return nil, errors.New("web: no session")
	}
	if cfg.PDFRenderer == nil {
		cfg.PDFRenderer = publish.ChromePDF
	}
	return &Server{
		cfg:  cfg,
		sess: sess,
		log:  cfg.Logger,
		hub:  newHub(),
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /export.html", s.handleExport(publish.FormatHTML))
	mux.HandleFunc("GET /export.md", s.handleExport(publish.FormatMarkdown))
	mux.HandleFunc("GET /export.pdf", s.handleExport(publish.FormatPDF))
	mux.HandleFunc("GET /ws", s.handleWS)

	mux.HandleFunc("GET /api/tree", s.handleTree)
	mux.HandleFunc("GET /api/outline", s.handleOutline)
	mux.HandleFunc("GET /api/nodes/{id}", s.handleGetNode)
	mux.HandleFunc("POST /api/nodes", s.mutating(s.handleCreate))
	mux.HandleFunc("PATCH /api/nodes/{id}", s.mutating(s.handlePatch))
	mux.HandleFunc("DELETE /api/nodes/{id}", s.mutating(s.handleDelete))
	mux.HandleFunc("POST /api/drop", s.mutating(s.handleDrop))
	mux.HandleFunc("POST /api/move", s.mutating(s.handleMove))

	return s.withAuth(mux)
}

// ListenAndServe listens on the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then closes the websockets and shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.hub.closeAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// mutating rejects writes on read-only servers. Handlers report whether the tree changed;
// only then does the version move and the connected pages reload.
func (s *Server) mutating(h func(http.ResponseWriter, *http.Request) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.ReadOnly {
			writeError(w, http.StatusForbidden, errors.New("server is read-only"))
			return
		}
		s.mu.Lock()
		changed, err := h(w, r)
		changed = changed && err == nil
		if changed {
			s.version++
		}
		v := s.version
		s.mu.Unlock()

		if err != nil {
			s.log.Debug().Err(err).Str("path", r.URL.Path).Msg("web mutation rejected")
			writeError(w, statusFor(err), err)
			return
		}
		if changed {
			s.hub.broadcast(changeEvent{Type: "changed", Version: v})
		}
	}
}

func statusFor(err error) int {
	var nf store.NotFoundError
	var cycle store.CycleRejectedError
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &cycle), errors.Is(err, session.ErrDragActive):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
