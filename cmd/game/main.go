package main

import (
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Tile-Stream/internal/eventlog"
	"github.com/Garsondee/Tile-Stream/internal/game"
	"github.com/Garsondee/Tile-Stream/internal/stream"
	"github.com/Garsondee/Tile-Stream/internal/terrain"
)

func main() {
	var configPath string
	var seed int64
	var borders bool
	var workers int
	var eventsPath string

	flag.StringVar(&configPath, "config", "", "YAML map config (defaults when empty)")
	flag.Int64Var(&seed, "seed", 0, "world seed (random when 0 and the config has none)")
	flag.BoolVar(&borders, "borders", false, "start with chunk borders shown")
	flag.IntVar(&workers, "workers", 0, "generation workers (0 = GOMAXPROCS)")
	flag.StringVar(&eventsPath, "events", "", "write the tick log as zstd JSONL to this file")
	flag.Parse()

	logger := log.New(os.Stdout, "[tiles] ", log.LstdFlags)

	cfg := terrain.DefaultConfig(0)
	if configPath != "" {
		loaded, err := terrain.LoadConfig(configPath)
		if err != nil {
			logger.Fatal(err)
		}
		cfg = loaded
	}
	if seed == 0 && cfg.Seed == 0 {
		seed = terrain.RandomSeed()
	}
	if seed != 0 {
		cfg = cfg.WithSeed(seed)
	}
	logger.Printf("seed %d", cfg.Seed)

	var streamOpts []stream.Option
	if borders {
		streamOpts = append(streamOpts, stream.WithBorders(terrain.BordersShown))
	}
	if workers > 0 {
		streamOpts = append(streamOpts, stream.WithWorkers(workers))
	}
	opts := []game.Option{game.WithLogger(logger), game.WithStreamOptions(streamOpts...)}

	if eventsPath != "" {
		w, err := eventlog.Create(eventsPath)
		if err != nil {
			logger.Fatal(err)
		}
		defer func() {
			if err := w.Close(); err != nil {
				logger.Printf("close %s: %v", eventsPath, err)
			}
		}()
		opts = append(opts, game.WithEventSink(w))
	}

	g, err := game.New(cfg, opts...)
	if err != nil {
		logger.Fatal(err)
	}

	ebiten.SetWindowTitle("Tile Stream")
	ebiten.SetWindowSize(1600, 900)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil {
		logger.Print(err)
	}
}
