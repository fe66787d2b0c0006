// Command rankwar-cli plays the game over a line protocol on stdin/stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/config"
	"github.com/hailam/rankwar/internal/engine"
	"github.com/hailam/rankwar/internal/logger"
	"github.com/hailam/rankwar/internal/storage"
	"github.com/hailam/rankwar/internal/textproto"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file (default $"+config.EnvPath+")")
	layout := flag.String("layout", "", "start from this board layout instead of the standard position")
	record := flag.Bool("record", false, "record finished games in the local database")
	flag.Parse()

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := logger.Console(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	opts := []engine.Option{engine.WithLogger(log)}
	if *layout != "" {
		b, err := board.ParseLayout(*layout)
		if err != nil {
			log.Fatalw("bad layout", "error", err)
		}
		opts = append(opts, engine.WithLayout(b))
	}
	eng := engine.New(opts...)

	if *record {
		dir, err := storage.GetDatabaseDir(cfg.DataDir)
		if err != nil {
			log.Fatalw("no data directory", "error", err)
		}
		store, err := storage.Open(dir, storage.WithLogger(log))
		if err != nil {
			log.Fatalw("failed to open storage", "dir", dir, "error", err)
		}
		defer store.Close()
		eng.Subscribe(func(ev engine.Event) {
			if ev.Kind != engine.EventGameOver {
				return
			}
			if _, err := store.RecordResult(ev.GameID, ev.Winner, ev.Turn, ev.Duration); err != nil {
				log.Warnw("failed to record match", "error", err)
			}
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proto := textproto.New(eng, log)
	if err := proto.Run(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorw("protocol stopped", "error", err)
	}
}
