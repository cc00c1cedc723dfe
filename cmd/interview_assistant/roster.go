package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-assistant/internal/logging"
	"github.com/jonathan/interview-assistant/internal/observability"
	"github.com/jonathan/interview-assistant/internal/roster"
)

var (
	rosterSearch string
	rosterSort   string
	rosterDesc   bool
	rosterLimit  int
	rosterYes    bool
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Inspect and maintain the candidate roster",
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter := roster.Filter{
			Search: rosterSearch,
			Sort:   roster.SortField(rosterSort),
			Desc:   rosterDesc,
			Limit:  rosterLimit,
		}
		if !filter.Sort.Valid() {
			return fmt.Errorf("invalid sort %q: use score, date or name", rosterSort)
		}
		return withRoster(cmd.Context(), func(ctx context.Context, store roster.Store) error {
			return listRoster(ctx, store, filter, cmd.OutOrStdout())
		})
	},
}

var rosterShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one candidate's interview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoster(cmd.Context(), func(ctx context.Context, store roster.Store) error {
			entry, err := store.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get candidate %s: %w", args[0], err)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintRosterEntry(entry)
			return nil
		})
	},
}

var rosterDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one candidate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoster(cmd.Context(), func(ctx context.Context, store roster.Store) error {
			if err := store.Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete candidate %s: %w", args[0], err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

var rosterClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every candidate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !rosterYes {
			return fmt.Errorf("refusing to clear the roster without --yes")
		}
		return withRoster(cmd.Context(), func(ctx context.Context, store roster.Store) error {
			if err := store.Clear(ctx); err != nil {
				return fmt.Errorf("failed to clear roster: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Roster cleared")
			return nil
		})
	},
}

func init() {
	rosterListCmd.Flags().StringVarP(&rosterSearch, "search", "s", "", "Case-insensitive name or email filter")
	rosterListCmd.Flags().StringVar(&rosterSort, "sort", "", "Sort by score, date or name")
	rosterListCmd.Flags().BoolVar(&rosterDesc, "desc", false, "Sort descending")
	rosterListCmd.Flags().IntVar(&rosterLimit, "limit", 0, "Maximum number of candidates (0 for all)")
	rosterClearCmd.Flags().BoolVar(&rosterYes, "yes", false, "Confirm deleting every candidate")

	rosterCmd.AddCommand(rosterListCmd, rosterShowCmd, rosterDeleteCmd, rosterClearCmd)
	rootCmd.AddCommand(rosterCmd)
}

// withRoster opens the configured roster backend for the duration of fn.
func withRoster(ctx context.Context, fn func(context.Context, roster.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.Must(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(ctx, b.roster)
}

func listRoster(ctx context.Context, store roster.Store, filter roster.Filter, out io.Writer) error {
	entries, err := store.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list roster: %w", err)
	}
	observability.NewPrinter(out).PrintRosterTable(entries)
	return nil
}

