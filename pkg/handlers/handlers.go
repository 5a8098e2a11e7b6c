package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rocketscienceinc/cube-tictactoe/internal/protocol"
	"github.com/rocketscienceinc/cube-tictactoe/internal/usecase"
)

// VersionHeader carries the number of transitions behind a served state.
const VersionHeader = "X-State-Version"

// Viewer is anything that can report the authoritative state.
type Viewer interface {
	View(ctx context.Context) (usecase.View, error)
}

func Ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// State serves the current state in the same encoding guests receive.
func State(logger *slog.Logger, viewer Viewer) http.HandlerFunc {
	log := logger.With("method", "State")

	return func(w http.ResponseWriter, r *http.Request) {
		view, err := viewer.View(r.Context())
		if err != nil {
			log.Warn("failed to get view", "error", err)
			http.Error(w, "game is not available", http.StatusServiceUnavailable)
			return
		}

		body, err := protocol.EncodeState(view.State)
		if err != nil {
			log.Error("failed to encode state", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(VersionHeader, strconv.Itoa(view.Version))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}
