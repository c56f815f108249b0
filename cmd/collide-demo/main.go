// cmd/collide-demo/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-collide/pkg/config"
	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/journal"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/physics"
	"github.com/opd-ai/go-collide/pkg/render"
	"github.com/opd-ai/go-collide/pkg/world"
)

func main() {
	logger := logging.NewLogger()
	ctx := logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID())

	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	ticks := flag.Int("ticks", 0, "Number of ticks to simulate (overrides the configuration)")
	journalPath := flag.String("journal", "", "Write the contact journal to this file")
	ascii := flag.Bool("ascii", false, "Print an ASCII view of the final frame")
	flag.Parse()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	cfg, err := loadConfig(ctx, logger, *configPath)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		os.Exit(1)
	}
	if *ticks > 0 {
		cfg.Simulation.Ticks = *ticks
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg, *journalPath, *ascii); err != nil {
		logger.Error(ctx, "Simulation failed", err)
		os.Exit(1)
	}
}

// loadConfig reads path if it exists, applies environment overrides and validates
func loadConfig(ctx context.Context, logger *logging.Logger, path string) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, logging.WrapError(err, "failed to apply environment configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run builds the demo scene and steps it until the configured tick count
// is reached or ctx is cancelled.
func run(ctx context.Context, logger *logging.Logger, cfg *config.Config, journalPath string, ascii bool) error {
	bus := event.NewEventBus()
	recorder := journal.NewRecorder(bus)
	defer recorder.Close()

	w, err := world.NewWorld(cfg, world.WithEventBus(bus), world.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := buildScene(w, cfg); err != nil {
		return logging.WrapError(err, "failed to build scene")
	}

	logger.Info(ctx, "Starting simulation",
		"width", cfg.World.Width,
		"height", cfg.World.Height,
		"bodies", cfg.Simulation.Bodies,
		"ticks", cfg.Simulation.Ticks,
		"seed", cfg.Simulation.Seed,
	)

	dt := cfg.TickSeconds()
	for i := 0; i < cfg.Simulation.Ticks; i++ {
		if err := ctx.Err(); err != nil {
			logger.Warn(ctx, "Simulation interrupted", "tick", w.Tick())
			break
		}
		if err := w.Update(dt); err != nil {
			logger.Warn(ctx, "Tick finished with errors",
				"tick", w.Tick(),
				"error", err.Error(),
			)
		}
	}

	ray, err := physics.NewLine(0, 0,
		physics.Vector2D{X: 0, Y: cfg.World.Height / 2},
		physics.Vector2D{X: cfg.World.Width, Y: cfg.World.Height / 2},
	)
	if err != nil {
		return err
	}
	hits, err := w.RayCast(ray, nil)
	if err != nil {
		return logging.WrapError(err, "ray cast failed")
	}

	contacts := recorder.Contacts()
	logger.Info(ctx, "Simulation complete",
		"ticks", w.Tick(),
		"contacts", len(contacts),
		"ray_hits", len(hits),
		"broadphase_nodes", w.Broadphase().NodeCount(),
	)

	if journalPath != "" {
		if err := writeJournal(recorder, journalPath); err != nil {
			return err
		}
		logger.Info(ctx, "Wrote contact journal", "path", journalPath)
	}

	if ascii {
		view := render.FitTerminalRenderer(80, 30, w.Broadphase().Bounds())
		view.Draw(w)
		fmt.Print(view.String())
	}
	return nil
}

func writeJournal(recorder *journal.Recorder, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create journal file: %w", err)
	}
	if err := recorder.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
