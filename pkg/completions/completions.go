package completions

import (
	"context"
	"fmt"
	"strings"

	"sqctl/pkg/config"
	"sqctl/pkg/git"
	"sqctl/pkg/subquery"

	"github.com/spf13/cobra"
)

type Completer struct {
	formats []string
}

func NewCompleter(formats []string) *Completer {
	return &Completer{formats: formats}
}

func (c *Completer) CompleteFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	results := filterPrefix(c.formats, toComplete)
	for i, format := range results {
		results[i] = fmt.Sprintf("%s\t%s", format, getFormatDescription(format))
	}
	return results, cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteDeploymentType(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	results := filterPrefix(subquery.DeploymentTypes(), toComplete)
	for i, t := range results {
		results[i] = fmt.Sprintf("%s\t%s", t, getTypeDescription(t))
	}
	return results, cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteBranchNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	branches := []string{
		"main\tDefault branch",
		"master\tLegacy default branch",
		"develop\tDevelopment branch",
		"staging\tStaging branch",
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if current, err := git.CurrentBranch(ctx); err == nil {
		branches = append([]string{current + "\tCurrent branch"}, branches...)
	}
	return filterPrefix(branches, toComplete), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func (c *Completer) CompleteProfile(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.Read()
	if err != nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	return filterPrefix(cfg.ListProfiles(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteOperation(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ops := []string{"deploy", "redeploy", "delete", "promote"}
	return filterPrefix(ops, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func filterPrefix(items []string, prefix string) []string {
	result := []string{}
	for _, item := range items {
		name := strings.Split(item, "\t")[0]
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
			result = append(result, item)
		}
	}
	return result
}

func getFormatDescription(format string) string {
	switch format {
	case "table":
		return "Human-readable table"
	case "json":
		return "Indented JSON"
	case "yaml":
		return "YAML document"
	default:
		return ""
	}
}

func getTypeDescription(t string) string {
	switch subquery.DeploymentType(t) {
	case subquery.DeploymentTypePrimary:
		return "Production slot"
	case subquery.DeploymentTypeStage:
		return "Staging slot, promotable to primary"
	default:
		return ""
	}
}

// RegisterCompletions attaches flag completion to every command in the
// tree that defines the matching flag.
func RegisterCompletions(rootCmd *cobra.Command, formats []string) {
	completer := NewCompleter(formats)

	_ = rootCmd.RegisterFlagCompletionFunc("format", completer.CompleteFormat)
	_ = rootCmd.RegisterFlagCompletionFunc("profile", completer.CompleteProfile)

	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		register := func(flag string, fn func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective)) {
			if cmd.Flags().Lookup(flag) != nil {
				_ = cmd.RegisterFlagCompletionFunc(flag, fn)
			}
		}
		register("type", completer.CompleteDeploymentType)
		register("branch", completer.CompleteBranchNames)
		register("operation", completer.CompleteOperation)
		for _, child := range cmd.Commands() {
			walk(child)
		}
	}
	for _, child := range rootCmd.Commands() {
		walk(child)
	}
}
