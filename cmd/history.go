package cmd

import (
	"fmt"
	"os"
	"time"

	"sqctl/pkg/config"
	"sqctl/pkg/errors"
	"sqctl/pkg/history"
	"sqctl/pkg/logger"
	"sqctl/pkg/subquery"

	"github.com/spf13/cobra"
)

const defaultHistoryLimit = 20

var (
	historyLimit     int
	historyKey       string
	historyOperation string
	historyOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show operations sent from this machine",
	Long: `Show the deploy, redeploy, delete and promote operations this client has
sent. The journal is local and only reflects what was sent from here; use
'sqctl deployment list' for the current state of a project.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded operations, newest first",
	Example: `  # Last 20 operations
  sqctl history list

  # Deploys of one project
  sqctl history list --key myorg/myproject --operation deploy`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := history.Filter{
			Operation: historyOperation,
			Limit:     historyLimit,
		}
		if historyKey != "" {
			key, err := subquery.ParseProjectKey(historyKey)
			if err != nil {
				return errors.ValidationError(err.Error())
			}
			filter.ProjectKey = key.String()
		}

		journal, err := openHistory()
		if err != nil {
			return err
		}
		defer journal.Close()

		entries, err := journal.List(cmd.Context(), filter)
		if err != nil {
			return errors.NewWithError(errors.ExitCodeFileOperation, "failed to read history", err)
		}

		out := NewOutputWriter(outputFormat, ShouldCopyOutput(cmd))
		out.SetWriter(cmd.OutOrStdout())
		return out.Render(entries)
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the journal",
	Example: `  # Drop entries older than 30 days
  sqctl history prune --older-than 720h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyOlderThan <= 0 {
			return errors.ValidationError("--older-than must be positive")
		}

		cutoff := time.Now().Add(-historyOlderThan)
		if IsDryRun() {
			PrintDryRunAction(cmd.ErrOrStderr(), "prune history", []detail{
				{label: "Older than", value: FormatTimestamp(cutoff)},
			})
			return nil
		}

		journal, err := openHistory()
		if err != nil {
			return err
		}
		defer journal.Close()

		removed, err := journal.Prune(cmd.Context(), cutoff)
		if err != nil {
			return errors.NewWithError(errors.ExitCodeFileOperation, "failed to prune history", err)
		}

		logger.Debug().Int64("removed", removed).Time("cutoff", cutoff).Msg("history pruned")
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries.\n", removed)
		return nil
	},
}

// openHistory opens the journal without requiring API credentials.
func openHistory() (*history.Journal, error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, err
	}
	if cfg.History.Path == "" {
		cfg.History.Path = os.Getenv("SQCTL_HISTORY_PATH")
	}

	journal, err := history.Open(historyPath(cfg))
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeFileOperation, "failed to open history", err)
	}
	return journal, nil
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", defaultHistoryLimit, "Maximum number of entries (0 for all)")
	historyListCmd.Flags().StringVar(&historyKey, "key", "", "Only entries for this project (org/key)")
	historyListCmd.Flags().StringVar(&historyOperation, "operation", "", "Only entries of this operation (deploy, redeploy, delete, promote)")

	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 30*24*time.Hour, "Remove entries older than this duration")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyPruneCmd)
}
