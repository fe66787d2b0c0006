// Command rankwar-server serves one hot-seat game over HTTP and WebSocket
// for a browser renderer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/config"
	"github.com/hailam/rankwar/internal/engine"
	"github.com/hailam/rankwar/internal/logger"
	"github.com/hailam/rankwar/internal/server"
	"github.com/hailam/rankwar/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to JSON config file (default $"+config.EnvPath+")")
	addr := flag.String("addr", "", "listen address, overrides the config")
	layout := flag.String("layout", "", "start from this board layout instead of the standard position")
	flag.Parse()

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	if err := run(cfg, *layout, log); err != nil {
		log.Errorw("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, layout string, log *zap.SugaredLogger) error {
	opts := []engine.Option{engine.WithLogger(log)}
	if layout != "" {
		b, err := board.ParseLayout(layout)
		if err != nil {
			return fmt.Errorf("layout: %w", err)
		}
		opts = append(opts, engine.WithLayout(b))
	}
	eng := engine.New(opts...)

	store, err := openStorage(cfg, log)
	if err != nil {
		log.Warnw("match history disabled", "error", err)
	} else {
		defer store.Close()
		eng.Subscribe(func(ev engine.Event) {
			if ev.Kind != engine.EventGameOver {
				return
			}
			rec, err := store.RecordResult(ev.GameID, ev.Winner, ev.Turn, ev.Duration)
			if err != nil {
				log.Warnw("failed to record match", "game", ev.GameID, "error", err)
				return
			}
			log.Infow("match recorded", "id", rec.ID, "winner", rec.Winner, "turns", rec.Turns)
		})
	}

	srv := server.New(eng, log, cfg.Server.AllowedOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(ctx, cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Close(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func openStorage(cfg config.Config, log *zap.SugaredLogger) (*storage.Storage, error) {
	dir, err := storage.GetDatabaseDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	return storage.Open(dir, storage.WithLogger(log))
}
