package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/emberdate/ember-server/internal/app"
	"github.com/emberdate/ember-server/internal/logger"
)

// Server wraps the HTTP listener with the configured timeouts.
type Server struct {
	httpServer *http.Server
}

func New(appCtx *app.AppContext) *Server {
	cfg := appCtx.Config

	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port),
			Handler:      NewRouter(appCtx),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
	}
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
