package cmd

import (
	"time"

	"sqctl/pkg/deployment"
	"sqctl/pkg/errors"

	"github.com/spf13/cobra"
)

const defaultSyncInterval = 10

var (
	syncStatusRolling  bool
	syncStatusInterval uint
)

var syncStatusCmd = NewCommand(
	"sync-status",
	"Show indexing progress of a deployment",
	`Show how far a deployment has indexed. With --rolling the status is
printed every --interval seconds until the command is interrupted.`,
).WithExample(`  # Show progress once
  sqctl deployment sync-status --org myorg --key myproject --id 42

  # Follow progress every 30 seconds until Ctrl+C
  sqctl deployment sync-status --org myorg --key myproject --id 42 --rolling --interval 30`).
	WithProjectFlags(&projectOrg, &projectKey).
	WithDeploymentIDFlag(&deploymentID).
	WithDispatcher(func(cmd *cobra.Command, d *deployment.Dispatcher) error {
		key, err := currentProjectKey()
		if err != nil {
			return err
		}
		interval, err := syncInterval(syncStatusRolling, syncStatusInterval)
		if err != nil {
			return err
		}
		return d.Dispatch(cmd.Context(), deployment.SyncStatusCommand{
			Key:      key,
			ID:       deploymentID,
			Rolling:  syncStatusRolling,
			Interval: interval,
		})
	}).
	Build()

// syncInterval converts --interval to a duration. A rolling poll needs a
// non-zero gap between requests.
func syncInterval(rolling bool, seconds uint) (time.Duration, error) {
	if rolling && seconds == 0 {
		return 0, errors.ValidationError("--interval must be at least 1 second")
	}
	return time.Duration(seconds) * time.Second, nil
}

func init() {
	syncStatusCmd.Flags().BoolVar(&syncStatusRolling, "rolling", false, "Keep printing the status until interrupted")
	syncStatusCmd.Flags().UintVar(&syncStatusInterval, "interval", defaultSyncInterval, "Seconds between status checks when rolling")
}
