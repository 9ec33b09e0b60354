package deployment

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"sqctl/pkg/subquery"
)

type StatusAPI interface {
	DeploymentSyncStatus(ctx context.Context, key subquery.ProjectKey, id uint64) (subquery.DeploymentStatus, error)
}

// SleepFunc blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

type PollOptions struct {
	Rolling  bool
	Interval time.Duration
	Out      io.Writer
	Sleep    SleepFunc
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PollSyncStatus prints the sync progress of a deployment. Without Rolling
// it fetches and prints once. With Rolling it repeats every Interval until
// ctx is cancelled, which is treated as the user stopping the watch. A failed
// fetch ends the loop with that error.
func PollSyncStatus(ctx context.Context, api StatusAPI, key subquery.ProjectKey, id uint64, opts PollOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for tick := 1; ; tick++ {
		status, err := api.DeploymentSyncStatus(ctx, key, id)
		if err != nil {
			if opts.Rolling && ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch sync status for %s deployment %d: %w", key, id, err)
		}

		if _, err := fmt.Fprintln(out, FormatStatusLine(status, tick, opts.Rolling)); err != nil {
			return err
		}

		if !opts.Rolling {
			return nil
		}
		if err := sleep(ctx, opts.Interval); err != nil {
			return nil
		}
	}
}

// FormatPercent renders processing/target as a percentage with two decimals.
// A zero target yields NaN or +Inf.
func FormatPercent(processing, target int64) string {
	percent := float64(processing) / float64(target) * 100
	return strconv.FormatFloat(percent, 'f', 2, 64)
}

func FormatStatusLine(status subquery.DeploymentStatus, tick int, rolling bool) string {
	line := fmt.Sprintf("total_entities: %d target_block: %d processing_block: %d percent: %s%%",
		status.TotalEntities,
		status.TargetBlock,
		status.ProcessingBlock,
		FormatPercent(status.ProcessingBlock, status.TargetBlock))
	if rolling {
		line += fmt.Sprintf(" [%d]", tick)
	}
	return line
}
