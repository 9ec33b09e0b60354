package cmd

import (
	"fmt"

	"sqctl/pkg/config"
	"sqctl/pkg/deployment"
	"sqctl/pkg/errors"
	"sqctl/pkg/history"
	"sqctl/pkg/logger"
	"sqctl/pkg/progress"
	"sqctl/pkg/subquery"

	"github.com/spf13/cobra"
)

type CommandBuilder struct {
	cmd *cobra.Command
}

func NewCommand(name, short, long string) *CommandBuilder {
	return &CommandBuilder{
		cmd: &cobra.Command{
			Use:     name,
			Short:   short,
			Long:    long,
			Example: "",
			Args:    cobra.NoArgs,
		},
	}
}

func (b *CommandBuilder) WithExample(example string) *CommandBuilder {
	b.cmd.Example = example
	return b
}

// WithProjectFlags adds the required --org and --key flags.
func (b *CommandBuilder) WithProjectFlags(org, key *string) *CommandBuilder {
	b.cmd.Flags().StringVar(org, "org", "", "Organization that owns the project (required)")
	b.cmd.Flags().StringVar(key, "key", "", "Project key within the organization (required)")
	mustMarkRequired(b.cmd, "org", "key")
	return b
}

// WithDeploymentIDFlag adds the required --id flag.
func (b *CommandBuilder) WithDeploymentIDFlag(id *uint64) *CommandBuilder {
	b.cmd.Flags().Uint64Var(id, "id", 0, "Deployment ID (required)")
	mustMarkRequired(b.cmd, "id")
	return b
}

// WithDispatcher runs fn with a dispatcher wired to the configured API,
// the output writer and the history journal.
func (b *CommandBuilder) WithDispatcher(fn func(cmd *cobra.Command, d *deployment.Dispatcher) error) *CommandBuilder {
	b.cmd.RunE = func(cmd *cobra.Command, args []string) error {
		d, cleanup, err := newDispatcher(cmd)
		if err != nil {
			return err
		}
		defer cleanup()
		return fn(cmd, d)
	}
	return b
}

func (b *CommandBuilder) Build() *cobra.Command {
	return b.cmd
}

func AddCommand(parent, child *cobra.Command) {
	parent.AddCommand(child)
}

func AddCommands(parent *cobra.Command, children ...*cobra.Command) {
	for _, child := range children {
		parent.AddCommand(child)
	}
}

func mustMarkRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func newDispatcher(cmd *cobra.Command) (*deployment.Dispatcher, func(), error) {
	cfg, err := config.Load(profileName)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("timeout") && globalTimeout > 0 {
		cfg.API.Timeout = globalTimeout.String()
	}

	client, err := subquery.NewClientWithConfig(cfg,
		subquery.WithUserAgent(userAgent()),
		subquery.WithLogger(logger.GetLogger()),
	)
	if err != nil {
		return nil, nil, errors.NewWithError(errors.ExitCodeConfig, "failed to create API client", err)
	}

	out := NewOutputWriter(outputFormat, ShouldCopyOutput(cmd))
	out.SetWriter(cmd.OutOrStdout())

	d := &deployment.Dispatcher{
		API:      client,
		Renderer: out,
		Out:      cmd.OutOrStdout(),
		Spin:     progress.WithSpinner,
	}

	cleanup := func() {}
	if journal := openJournal(cfg); journal != nil {
		d.Recorder = journal
		cleanup = func() {
			if err := journal.Close(); err != nil {
				logger.Debug().Err(err).Msg("failed to close history journal")
			}
		}
	}

	logger.Debug().
		Str("base_url", client.BaseURL()).
		Str("profile", cfg.ActiveProfile).
		Msg("API client ready")

	return d, cleanup, nil
}

// openJournal returns nil when history is disabled or cannot be opened;
// a missing journal never blocks an operation.
func openJournal(cfg *config.Config) *history.Journal {
	if cfg.History.Disabled {
		return nil
	}
	path := historyPath(cfg)
	journal, err := history.Open(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("history journal unavailable")
		return nil
	}
	return journal
}

func historyPath(cfg *config.Config) string {
	if cfg.History.Path != "" {
		return cfg.History.Path
	}
	return history.DefaultPath()
}

func userAgent() string {
	ver := Version
	if ver == "" {
		ver = "dev"
	}
	return fmt.Sprintf("sqctl/%s", ver)
}
