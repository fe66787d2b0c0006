// Rankwar - a two-player ranked-piece board game built with Ebitengine
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/config"
	"github.com/hailam/rankwar/internal/engine"
	"github.com/hailam/rankwar/internal/logger"
	"github.com/hailam/rankwar/internal/storage"
	"github.com/hailam/rankwar/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file (default $"+config.EnvPath+")")
	layout := flag.String("layout", "", "start from this board layout instead of the standard position")
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

	store := openStorage(cfg, log)
	if store != nil {
		defer store.Close()
	}

	game := ui.NewGame(eng, store, log)
	defer game.Close()

	ebiten.SetWindowSize(ui.ScreenWidth, ui.ScreenHeight)
	ebiten.SetWindowTitle("Rankwar")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Errorw("game exited", "error", err)
	}
}

// openStorage opens the preferences database. The game still runs without
// one, so failures are only logged. On first launch the UI defaults from
// cfg seed the stored preferences.
func openStorage(cfg config.Config, log *zap.SugaredLogger) *storage.Storage {
	dir, err := storage.GetDatabaseDir(cfg.DataDir)
	if err != nil {
		log.Warnw("no data directory, settings will not be saved", "error", err)
		return nil
	}
	store, err := storage.Open(dir, storage.WithLogger(log))
	if err != nil {
		log.Warnw("failed to open storage, settings will not be saved", "dir", dir, "error", err)
		return nil
	}

	first, err := store.IsFirstLaunch()
	if err == nil && first {
		prefs := storage.DefaultPreferences()
		prefs.SoundEnabled = cfg.UI.Sound
		prefs.ShowTargets = cfg.UI.ShowTargets
		if err := store.SavePreferences(prefs); err != nil {
			log.Warnw("failed to seed preferences", "error", err)
		}
	}
	return store
}
