package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/talgya/probably-a-wizard/internal/api"
	"github.com/talgya/probably-a-wizard/internal/catalog"
	"github.com/talgya/probably-a-wizard/internal/economy"
	"github.com/talgya/probably-a-wizard/internal/engine"
	"github.com/talgya/probably-a-wizard/internal/persistence"
)

func newStatusCommand() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved game without advancing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := context.Background()
			snap, ok := rt.saves.Load(ctx)
			if !ok {
				fmt.Println("No saved game.")
				return nil
			}
			printStatus(os.Stdout, snap, rt.tune.OfflineCap(), time.Now())

			if db, ok := rt.store.(*persistence.SQLiteStore); ok && recent > 0 {
				records, err := db.RecentSaves(ctx, recent)
				if err != nil {
					return err
				}
				fmt.Println("\nRecent saves:")
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				for _, r := range records {
					fmt.Fprintf(w, "  %s\t%s\t%s\n", r.Key, humanize.Bytes(uint64(r.Bytes)), humanize.Time(r.SavedAt))
				}
				w.Flush()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 5, "Recent save log entries to show (sqlite backend)")
	return cmd
}

func printStatus(out io.Writer, snap economy.Snapshot, offlineCap time.Duration, now time.Time) {
	st := economy.Restore(snap)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	lastActive := "never"
	if t := snap.LastActive(); !t.IsZero() {
		lastActive = humanize.Time(t)
	}
	fmt.Fprintf(w, "Last active:\t%s\n", lastActive)
	fmt.Fprintf(w, "Housing:\t%s x%d (%d/%d housed)\n",
		catalog.HousingTierName(st.HousingLevel()), st.HousingChains(), st.HousedPeople(), st.HousingCapacity())

	var built []string
	for _, b := range st.BuiltBuildings() {
		built = append(built, catalog.GetBuilding(b).Name)
	}
	fmt.Fprintf(w, "Buildings:\t%s\n", orNone(strings.Join(built, ", ")))

	fmt.Fprintln(w, "Inventory:")
	for _, r := range st.UnlockedResources() {
		fmt.Fprintf(w, "  %s\t%s\n", r.Name(), humanize.Commaf(st.Quantity(r)))
	}

	fmt.Fprintln(w, "Characters:")
	for _, m := range st.Unlocked() {
		slot, held := st.SlotOf(m)
		if !held {
			slot = "-"
		}
		level := st.Level(m)
		fmt.Fprintf(w, "  %s\tlv %d %s\t%.2f/s\t%s\n",
			m.String(), level, catalog.LevelTierName(level), st.EffectivePps(m), slot)
	}

	// Preview what the next session start will credit; nothing is saved.
	preview := economy.Restore(snap)
	summary, gained := engine.CatchUp(preview, snap.LastActive(), now, offlineCap)
	if gained {
		fmt.Fprintf(w, "Waiting for you (%s):\n", time.Duration(summary.ElapsedSeconds*float64(time.Second)).Round(time.Second))
		for _, r := range catalog.AllResources() {
			if q, ok := summary.Gains[r]; ok {
				fmt.Fprintf(w, "  +%s\t%s\n", humanize.Commaf(q), r.Name())
			}
		}
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func newActCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "act <action> [key=value ...]",
		Short: "Apply one action to the saved game",
		Long: `Loads the saved game, credits offline progress, applies the action and saves.

Actions: ` + strings.Join(api.Actions(), ", ") + `

Arguments are key=value pairs: resource, amount, manager (none clears),
slot, building, times, chain, tier, a, b, id.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseActionArgs(args[1:])
			if err != nil {
				return err
			}

			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := context.Background()
			sess := rt.open(ctx)
			res, applyErr := api.Apply(sess, args[0], req)
			if err := sess.Close(ctx); err != nil {
				return fmt.Errorf("save: %w", err)
			}
			if applyErr != nil {
				return applyErr
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}

// parseActionArgs turns key=value pairs into an action request.
func parseActionArgs(args []string) (api.ActionRequest, error) {
	var req api.ActionRequest
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return req, fmt.Errorf("argument %q is not key=value", arg)
		}
		var err error
		switch key {
		case "resource":
			req.Resource = value
		case "amount":
			req.Amount, err = strconv.ParseFloat(value, 64)
		case "manager":
			if value != "none" && value != "" {
				req.Manager = &value
			}
		case "slot":
			req.Slot = value
		case "building":
			req.Building = value
		case "times":
			req.Times, err = strconv.Atoi(value)
		case "chain":
			req.Chain = value
		case "tier":
			req.Tier, err = strconv.Atoi(value)
		case "a":
			req.A = value
		case "b":
			req.B = value
		case "id":
			req.ID = value
		default:
			return req, fmt.Errorf("unknown argument %q", key)
		}
		if err != nil {
			return req, fmt.Errorf("%s: %w", key, err)
		}
	}
	return req, nil
}

func newResetCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved game",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.saves.Clear(context.Background()); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			fmt.Println("Saved game deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func newCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the static game catalog as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(catalog.Describe())
		},
	}
}
