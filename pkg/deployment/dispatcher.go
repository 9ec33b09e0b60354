package deployment

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"sqctl/pkg/errors"
	"sqctl/pkg/filter"
	"sqctl/pkg/history"
	"sqctl/pkg/logger"
	"sqctl/pkg/subquery"
)

// API is everything the dispatcher calls on the backend.
type API interface {
	ResolverAPI
	StatusAPI
	Deployments(ctx context.Context, key subquery.ProjectKey) ([]subquery.Deployment, error)
	Deploy(ctx context.Context, key subquery.ProjectKey, req subquery.CreateDeployRequest) (subquery.Deployment, error)
	DeleteDeployment(ctx context.Context, key subquery.ProjectKey, id uint64) (subquery.Acknowledged, error)
	Redeploy(ctx context.Context, key subquery.ProjectKey, id uint64, req subquery.CreateDeployRequest) (subquery.Acknowledged, error)
	RebaseDeployment(ctx context.Context, key subquery.ProjectKey, id uint64) (subquery.Acknowledged, error)
}

type Renderer interface {
	Render(v any) error
}

type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Command is one of the *Command types below.
type Command interface {
	ProjectKey() subquery.ProjectKey
}

type ListCommand struct {
	Key    subquery.ProjectKey
	Filter filter.DeploymentFilter
}

type DeployCommand struct {
	Key     subquery.ProjectKey
	Branch  string
	Request subquery.CreateDeployRequest
	DryRun  bool
}

type DeleteCommand struct {
	Key    subquery.ProjectKey
	ID     uint64
	DryRun bool
}

type RedeployCommand struct {
	Key     subquery.ProjectKey
	ID      uint64
	Branch  string
	Request subquery.CreateDeployRequest
	DryRun  bool
}

type PromoteCommand struct {
	Key    subquery.ProjectKey
	ID     uint64
	DryRun bool
}

type SyncStatusCommand struct {
	Key      subquery.ProjectKey
	ID       uint64
	Rolling  bool
	Interval time.Duration
}

func (c ListCommand) ProjectKey() subquery.ProjectKey { return c.Key }
func (c DeployCommand) ProjectKey() subquery.ProjectKey { return c.Key }
func (c DeleteCommand) ProjectKey() subquery.ProjectKey { return c.Key }
func (c RedeployCommand) ProjectKey() subquery.ProjectKey { return c.Key }
func (c PromoteCommand) ProjectKey() subquery.ProjectKey { return c.Key }
func (c SyncStatusCommand) ProjectKey() subquery.ProjectKey { return c.Key }

// Dispatcher runs one command end to end.
type Dispatcher struct {
	API      API
	Renderer Renderer
	// Recorder is optional; a failed record is logged, not returned.
	Recorder Recorder
	// Out receives sync-status lines.
	Out   io.Writer
	Sleep SleepFunc
	// Spin wraps request resolution, e.g. with a terminal spinner.
	Spin func(message string, fn func() error) error
}

func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) error {
	logger.Debug().Str("project", cmd.ProjectKey().String()).Str("command", commandName(cmd)).Msg("dispatching")

	var err error
	switch c := cmd.(type) {
	case ListCommand:
		err = d.list(ctx, c)
	case DeployCommand:
		err = d.deploy(ctx, c)
	case DeleteCommand:
		err = d.acknowledge(ctx, c.DryRun, func() (subquery.Acknowledged, error) {
			return d.API.DeleteDeployment(ctx, c.Key, c.ID)
		})
	case RedeployCommand:
		err = d.redeploy(ctx, c)
	case PromoteCommand:
		err = d.acknowledge(ctx, c.DryRun, func() (subquery.Acknowledged, error) {
			return d.API.RebaseDeployment(ctx, c.Key, c.ID)
		})
	case SyncStatusCommand:
		err = PollSyncStatus(ctx, d.API, c.Key, c.ID, PollOptions{
			Rolling:  c.Rolling,
			Interval: c.Interval,
			Out:      d.Out,
			Sleep:    d.Sleep,
		})
	default:
		return errors.ValidationError("unsupported command")
	}
	return classify(ctx, err, commandName(cmd))
}

func (d *Dispatcher) list(ctx context.Context, c ListCommand) error {
	deployments, err := d.API.Deployments(ctx, c.Key)
	if err != nil {
		return err
	}
	matched, err := c.Filter.Apply(deployments)
	if err != nil {
		return errors.ValidationError(err.Error())
	}
	return d.render(matched)
}

func (d *Dispatcher) deploy(ctx context.Context, c DeployCommand) error {
	req, err := d.resolve(ctx, c.Request, c.Key, c.Branch)
	if err != nil {
		return err
	}
	if c.DryRun {
		return d.render(req)
	}

	deployment, err := d.API.Deploy(ctx, c.Key, req)
	if err != nil {
		return err
	}
	d.record(ctx, entryFor("deploy", c.Key, deployment.ID, req))
	return d.render(deployment)
}

func (d *Dispatcher) redeploy(ctx context.Context, c RedeployCommand) error {
	req, err := d.resolve(ctx, c.Request, c.Key, c.Branch)
	if err != nil {
		return err
	}
	if c.DryRun {
		return d.render(req)
	}

	ack, err := d.API.Redeploy(ctx, c.Key, c.ID, req)
	if err != nil {
		return err
	}
	d.record(ctx, entryFor(string(ack.Operation), c.Key, c.ID, req))
	return d.render(ack)
}

// acknowledge runs a call that only reports success. A dry run sends
// nothing and renders nothing.
func (d *Dispatcher) acknowledge(ctx context.Context, dryRun bool, call func() (subquery.Acknowledged, error)) error {
	if dryRun {
		return nil
	}
	ack, err := call()
	if err != nil {
		return err
	}
	d.record(ctx, history.Entry{
		Operation:    string(ack.Operation),
		ProjectKey:   ack.ProjectKey,
		DeploymentID: ack.DeploymentID,
	})
	return d.render(ack)
}

func (d *Dispatcher) render(v any) error {
	if err := d.Renderer.Render(v); err != nil {
		return errors.Wrap(err, "failed to render output")
	}
	return nil
}

func (d *Dispatcher) resolve(ctx context.Context, req subquery.CreateDeployRequest, key subquery.ProjectKey, branch string) (subquery.CreateDeployRequest, error) {
	if d.Spin == nil {
		return Resolve(ctx, d.API, req, key, branch)
	}
	var resolved subquery.CreateDeployRequest
	err := d.Spin("Resolving deployment for "+key.String(), func() error {
		var err error
		resolved, err = Resolve(ctx, d.API, req, key, branch)
		return err
	})
	return resolved, err
}

func (d *Dispatcher) record(ctx context.Context, e history.Entry) {
	if d.Recorder == nil {
		return
	}
	if err := d.Recorder.Record(ctx, e); err != nil {
		logger.Warn().Err(err).Str("operation", e.Operation).Msg("failed to record operation in history")
	}
}

func entryFor(op string, key subquery.ProjectKey, id uint64, req subquery.CreateDeployRequest) history.Entry {
	return history.Entry{
		Operation:    op,
		ProjectKey:   key.String(),
		DeploymentID: id,
		Commit:       deref(req.Commit),
		Type:         string(req.Type),
		QueryImage:   deref(req.QueryImageVersion),
		IndexerImage: deref(req.IndexerImageVersion),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func commandName(cmd Command) string {
	switch cmd.(type) {
	case ListCommand:
		return "list"
	case DeployCommand:
		return "deploy"
	case DeleteCommand:
		return "delete"
	case RedeployCommand:
		return "redeploy"
	case PromoteCommand:
		return "promote"
	case SyncStatusCommand:
		return "sync-status"
	default:
		return "unknown"
	}
}

// classify maps a failure onto an exit-coded error. Errors that already
// carry an exit code pass through.
func classify(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}
	var typed *errors.Error
	if stderrors.As(err, &typed) {
		return err
	}
	if ctx.Err() != nil && stderrors.Is(err, ctx.Err()) {
		return errors.CancelledError(operation)
	}

	var apiErr *subquery.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.AuthError(err)
		}
	}
	return errors.APIError(err)
}
