package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lukelpg/board-game-creator/internal/api"
	"github.com/lukelpg/board-game-creator/internal/config"
	"github.com/lukelpg/board-game-creator/internal/logging"
	"github.com/lukelpg/board-game-creator/internal/store"
)

func main() {
	configPath := flag.String("config", "tabletop.yml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.FromEnv(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func newHandler(cfg *config.Config, log *zap.Logger) (*api.Handler, error) {
	repo, err := store.NewFileRepo(cfg.GamesDir, log.Named("store"))
	if err != nil {
		return nil, err
	}
	return api.NewHandler(repo, cfg, log.Named("api")), nil
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	h, err := newHandler(cfg, log)
	if err != nil {
		return err
	}
	defer h.Close()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("games_dir", cfg.GamesDir),
			zap.Bool("relay", cfg.Relay.Enabled),
			zap.Bool("lua", cfg.Rules.LuaEnabled),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
