package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/probably-a-wizard/internal/api"
	"github.com/talgya/probably-a-wizard/internal/persistence"
)

const saveLogKeep = 500

func newRunCommand() *cobra.Command {
	var (
		withAPI bool
		addr    string
		speed   float64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the game loop until interrupted",
		Long: `Loads the saved game (crediting offline progress), then advances production
and conversion every tick. State is saved after every change and once more
on shutdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			if withAPI {
				rt.cfg.API.Enabled = true
			}
			if addr != "" {
				rt.cfg.API.Addr = addr
			}

			ctx := context.Background()
			sess := rt.open(ctx)
			if cmd.Flags().Changed("speed") {
				sess.Clock().SetSpeed(speed)
			}

			var srv *api.Server
			if rt.cfg.API.Enabled {
				if rt.cfg.API.AdminKey == "" {
					slog.Warn("WIZARD_API_ADMIN_KEY not set, speed and reset endpoints are disabled")
				}
				limit := rt.cfg.API.RateLimit
				srv = api.NewServer(sess, rt.metrics, rt.cfg.API.Addr, rt.cfg.API.AdminKey, limit.Requests, limit.Burst)
				srv.Start()
				fmt.Printf("API: http://%s/api/v1/status\n", rt.cfg.API.Addr)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			sess.Start()
			st := sess.Status()
			fmt.Printf("Session %s running: %d buildings, %d characters unlocked. (Ctrl+C to stop)\n",
				st.SessionID, st.Built, st.Unlocked)

			sig := <-sigCh
			slog.Info("received signal, shutting down", "signal", sig)

			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if srv != nil {
				if err := srv.Shutdown(shutdownCtx); err != nil {
					slog.Error("api shutdown", "error", err)
				}
			}
			if err := sess.Close(shutdownCtx); err != nil {
				return fmt.Errorf("final save: %w", err)
			}
			if db, ok := rt.store.(*persistence.SQLiteStore); ok {
				if err := db.PruneLog(shutdownCtx, saveLogKeep); err != nil {
					slog.Warn("prune save log", "error", err)
				}
			}

			fmt.Println("Game stopped. Progress saved.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&withAPI, "api", false, "Serve the local HTTP API")
	cmd.Flags().StringVar(&addr, "addr", "", "API listen address (overrides config)")
	cmd.Flags().Float64Var(&speed, "speed", 1, "Clock speed multiplier (0 pauses)")
	return cmd
}
