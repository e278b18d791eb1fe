// Command wizard runs and inspects a Probably a Wizard game.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/probably-a-wizard/internal/config"
	"github.com/talgya/probably-a-wizard/internal/engine"
	"github.com/talgya/probably-a-wizard/internal/metrics"
	"github.com/talgya/probably-a-wizard/internal/persistence"
	"github.com/talgya/probably-a-wizard/internal/tuning"
)

var (
	configPath string
	verbose    bool
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "wizard",
		Short: "Probably a Wizard - idle progression economy",
		Long: `Runs the progression economy of Probably a Wizard: resource chains,
buildings, managers and housing, with offline catch-up between sessions.

Examples:
  wizard run --api
  wizard status
  wizard act add-resource resource=berries amount=50
  wizard act assign-slot slot=food-slot-0 manager=gatherer
  wizard act combine a=gatherer b=builder
  wizard catalog`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to wizard.yaml (default: ./wizard.yaml if present)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newRunCommand())
	root.AddCommand(newStatusCommand())
	root.AddCommand(newActCommand())
	root.AddCommand(newResetCommand())
	root.AddCommand(newCatalogCommand())
	return root
}

// runtime bundles what every command that touches the save needs.
type runtime struct {
	cfg     *config.Config
	tune    tuning.Tuning
	store   persistence.Store
	saves   *persistence.Saves
	metrics *metrics.Recorder
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	config.NewLogger(cfg.Logging, os.Stderr)

	tune := tuning.Default()
	if cfg.TuningPath != "" {
		if tune, err = tuning.Load(cfg.TuningPath); err != nil {
			return nil, err
		}
	}

	store, err := persistence.OpenStore(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	saves, err := persistence.NewSaves(store)
	if err != nil {
		store.Close()
		return nil, err
	}

	rt := &runtime{cfg: cfg, tune: tune, store: store, saves: saves}
	if cfg.Metrics.Enabled {
		rt.metrics = metrics.New()
	}
	slog.Debug("runtime ready", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)
	return rt, nil
}

func (rt *runtime) open(ctx context.Context) *engine.Session {
	return engine.Open(ctx, rt.saves, engine.Options{Tuning: rt.tune, Metrics: rt.metrics})
}

func (rt *runtime) Close() {
	if err := rt.store.Close(); err != nil {
		slog.Warn("close store", "error", err)
	}
}
