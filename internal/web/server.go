package web

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/kapu/delphi-enrich-web/internal/constants"
	"github.com/kapu/delphi-enrich-web/internal/session"
	"go.uber.org/zap"
)

type Options struct {
	Addr         string
	CookieSecure bool
	TrustProxy   bool
	ProfilePanel ProfilePanel
	SessionTTL   time.Duration
}

// Server renders the enrichment flow and turns each form POST into exactly
// one controller operation followed by a redirect to the page.
type Server struct {
	opts       Options
	sessions   *session.Manager
	logger     *zap.Logger
	httpServer *http.Server
}

func NewServer(opts Options, sessions *session.Manager, logger *zap.Logger) *Server {
	if opts.ProfilePanel == "" {
		opts.ProfilePanel = ProfilePanelCard
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = constants.SessionConfig.DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		opts:     opts,
		sessions: sessions,
		logger:   logger,
	}
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: constants.ServerConfig.ReadHeaderTimeout,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /enrich", s.action(s.enrich))
	mux.HandleFunc("POST /url", s.action(s.submitURL))
	mux.HandleFunc("POST /select", s.action(s.selectCandidate))
	mux.HandleFunc("POST /none", s.action(s.rejectAllCandidates))
	mux.HandleFunc("POST /confirm", s.action(s.confirm))
	mux.HandleFunc("POST /reject", s.action(s.reject))
	mux.HandleFunc("POST /restart", s.action(s.restart))
	return requestLogger(s.logger, mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.opts.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerConfig.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown failed", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
