package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sonroyaalmerol/fairbeat/internal/api"
	"github.com/sonroyaalmerol/fairbeat/internal/config"
	"github.com/sonroyaalmerol/fairbeat/internal/handlers"
	"github.com/sonroyaalmerol/fairbeat/internal/loader"
	"github.com/sonroyaalmerol/fairbeat/internal/player"
	"github.com/sonroyaalmerol/fairbeat/internal/ratelimit"
	"github.com/sonroyaalmerol/fairbeat/internal/repository"
	"github.com/sonroyaalmerol/fairbeat/internal/resolve"
	"github.com/sonroyaalmerol/fairbeat/internal/spotify"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	db, err := repository.OpenDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	repo := repository.NewRepo(db)

	var collections loader.CollectionSource
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		sp, err := spotify.NewClientCredentials(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
		if err != nil {
			log.Fatal(err)
		}
		collections = sp
	}

	limiter := ratelimit.New(cfg.RateTracksPerMinute, cfg.RateBurst)
	pm := player.NewManager(resolve.NewYTDLP(), loader.Options{
		Limiter:           limiter,
		Collections:       collections,
		MaxTracks:         cfg.MaxTracks,
		LongLoadThreshold: cfg.PlaylistWarnSize,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	statsSrv := api.NewServer(cfg.APIPort, pm)
	go func() {
		if err := statsSrv.Run(ctx); err != nil {
			slog.Error("stats server stopped", "err", err)
		}
	}()

	bot := handlers.NewBot(cfg, repo, pm)
	if err := bot.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
