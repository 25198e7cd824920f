package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sonroyaalmerol/fairbeat/internal/player"
)

// Server exposes a small read-only HTTP surface with runtime stats,
// meant for health checks and external dashboards.
type Server struct {
	manager *player.Manager
	started time.Time
	srv     *http.Server
}

func NewServer(port int, manager *player.Manager) *Server {
	s := &Server{
		manager: manager,
		started: time.Now(),
	}

	r := chi.NewRouter()
	r.Get("/stats", s.getStats)
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}
	return s
}

type statsResponse struct {
	Players        int   `json:"players"`
	PlayingPlayers int   `json:"playingPlayers"`
	QueuedTracks   int   `json:"queuedTracks"`
	UptimeSeconds  int64 `json:"uptimeSeconds"`
}

func (s *Server) getStats(w http.ResponseWriter, _ *http.Request) {
	total, playing, queued := s.manager.Stats()
	resp := statsResponse{
		Players:        total,
		PlayingPlayers: playing,
		QueuedTracks:   queued,
		UptimeSeconds:  int64(time.Since(s.started).Seconds()),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode stats response", "error", err)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
