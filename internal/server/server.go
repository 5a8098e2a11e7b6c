package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/cube-tictactoe/internal/transport/websocket"
	"github.com/rocketscienceinc/cube-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/cube-tictactoe/pkg/handlers"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server is the host's network surface. Guests reach the authority through it.
type Server struct {
	logger    *slog.Logger
	authority *usecase.Authority
	router    chi.Router
}

func New(logger *slog.Logger, authority *usecase.Authority) *Server {
	that := &Server{
		logger:    logger.With("component", "server"),
		authority: authority,
		router:    chi.NewRouter(),
	}

	that.router.Use(middleware.RequestID)
	that.router.Use(middleware.Recoverer)

	that.router.Get("/ping", handlers.Ping)
	that.router.Get("/state", handlers.State(that.logger, authority))
	that.router.Get(websocket.Path, that.handleSocket)

	return that
}

func (that *Server) Handler() http.Handler {
	return that.router
}

// handleSocket binds the connection to the player named in the query. Every
// message read from it is attributed to that player.
func (that *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleSocket", "remote", r.RemoteAddr)

	ch, player, err := websocket.Accept(w, r)
	if err != nil {
		log.Warn("failed to accept guest", "error", err)
		return
	}

	session, err := that.authority.Connect(r.Context(), player, ch)
	if err != nil {
		log.Warn("refused guest", "player", player, "error", err)

		if errors.Is(err, usecase.ErrAlreadyAttached) {
			err = ch.Reject(err.Error())
		} else {
			err = ch.Close()
		}
		if err != nil {
			log.Debug("failed to close refused guest", "error", err)
		}

		return
	}

	if err = session.Serve(r.Context()); err != nil {
		log.Warn("guest session ended with error", "player", player, "error", err)
	}
}

// Run serves on listener until ctx is canceled. Request contexts derive from
// ctx so attached guests are released on shutdown.
func (that *Server) Run(ctx context.Context, listener net.Listener) error {
	log := that.logger.With("method", "Run")

	srv := &http.Server{
		Handler:           that.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "addr", listener.Addr().String())
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("HTTP server stopped")

	return nil
}

// Listen opens the host's port.
func Listen(port string) (net.Listener, error) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %s: %w", port, err)
	}

	return listener, nil
}
