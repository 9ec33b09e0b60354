package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sqctl/pkg/completions"
	"sqctl/pkg/errors"
	"sqctl/pkg/logger"

	"github.com/spf13/cobra"
)

const (
	unknownValue = "unknown"
)

var (
	Version   string
	BuildTime string
	GitCommit string
)

var globalTimeout time.Duration
var outputFormat string
var dryRunFlag bool
var assumeYesFlag bool
var copyToClipboardFlag bool
var logLevel string
var profileName string

var rootCmd = &cobra.Command{
	Use:   "sqctl",
	Short: "SubQuery managed hosting control tool",
	Long: `CLI tool for managing deployments on SubQuery managed hosting. Lists,
creates, redeploys, promotes and deletes project deployments and follows
their indexing progress. Configuration lives in the XDG config directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set log level: explicit flag takes precedence over env var
		level := logLevel
		if !cmd.Flags().Changed("log-level") {
			if envLevel := os.Getenv("SQCTL_LOG_LEVEL"); envLevel != "" {
				level = envLevel
			}
		}
		logger.SetLevel(level)

		if !isValidFormat(outputFormat) {
			return errors.ValidationError(fmt.Sprintf("unknown output format %q", outputFormat))
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		ver := Version
		if ver == "" {
			ver = "dev"
		}
		bt := BuildTime
		if bt == "" {
			bt = unknownValue
		}
		gc := GitCommit
		if gc == "" {
			gc = unknownValue
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sqctl version %s\n", ver)
		fmt.Fprintf(out, "Built: %s\n", bt)
		fmt.Fprintf(out, "Git commit: %s\n", gc)
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context, which is how a rolling sync-status is stopped.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		exitCode := errors.HandleReturn(err)
		os.Exit(int(exitCode))
	}
}

func init() {
	RegisterCommands(rootCmd)

	rootCmd.PersistentFlags().DurationVar(&globalTimeout, "timeout", 0, "Timeout for each API request (e.g., 30s, 1m); overrides the configured value")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", string(FormatTable), "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&dryRunFlag, "dry-run", false, "Resolve and show the request without sending it")
	rootCmd.PersistentFlags().BoolVarP(&assumeYesFlag, "yes", "y", false, "Skip confirmation prompts")
	rootCmd.PersistentFlags().BoolVar(&copyToClipboardFlag, "copy", false, "Copy output to clipboard")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error, fatal, disabled)")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Configuration profile to use (overrides the active profile)")

	completions.RegisterCompletions(rootCmd, ValidFormats())
}
