package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/forgereview/internal/config"
	"github.com/dshills/forgereview/internal/history"
	"github.com/dshills/forgereview/internal/logger"
	"github.com/dshills/forgereview/internal/output"
)

var flagLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the review history",
}

// withStore loads the config and opens the history store for fn.
func withStore(cmd *cobra.Command, fn func(cfg config.Config, store history.Store) error) error {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log, cmd.ErrOrStderr())
	store, closeStore, err := history.Open(cmd.Context(), cfg.History, log)
	if err != nil {
		fail(cmd, fmt.Errorf("opening history: %w", err))
		return nil
	}
	defer closeStore()
	if err := fn(cfg, store); err != nil {
		fail(cmd, err)
	}
	return nil
}

func historyWriter(cfg config.Config) (output.Writer, error) {
	w, err := output.GetWriter(cfg.Format, output.Options{})
	if err != nil {
		return nil, withCode(ExitUsageError, err)
	}
	return w, nil
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded reviews, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(cfg config.Config, store history.Store) error {
			w, err := historyWriter(cfg)
			if err != nil {
				return err
			}
			h, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			if flagLimit > 0 && len(h) > flagLimit {
				h = h[:flagLimit]
			}
			return w.WriteHistory(cmd.OutOrStdout(), h)
		})
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show review statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(cfg config.Config, store history.Store) error {
			w, err := historyWriter(cfg)
			if err != nil {
				return err
			}
			st, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("computing stats: %w", err)
			}
			return w.WriteStats(cmd.OutOrStdout(), st)
		})
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history as a JSON document",
	Long:  "Export the full review history as indented JSON. With --out, a file name such as pr-reviews-2006-01-02.json is a good choice.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(cfg config.Config, store history.Store) error {
			h, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			if flagOut == "" {
				return history.Export(cmd.OutOrStdout(), h)
			}
			path := flagOut
			if path == "." {
				path = history.ExportFilename(time.Now())
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer f.Close()
			if err := history.Export(f, h); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d reviews to %s\n", len(h), path)
			return nil
		})
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyExportCmd)

	historyListCmd.Flags().IntVar(&flagLimit, "limit", 0, "Show at most N reviews")
	historyListCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, yaml)")
	historyStatsCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, yaml)")
	historyExportCmd.Flags().StringVarP(&flagOut, "out", "o", "", `Output file ("." for pr-reviews-YYYY-MM-DD.json; default: stdout)`)
}
