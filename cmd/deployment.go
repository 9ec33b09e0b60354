package cmd

import (
	"sqctl/pkg/errors"
	"sqctl/pkg/subquery"

	"github.com/spf13/cobra"
)

// Shared by every deployment subcommand; each binds its own flags to them.
var (
	projectOrg   string
	projectKey   string
	deploymentID uint64
)

var deploymentCmd = &cobra.Command{
	Use:     "deployment",
	Aliases: []string{"deployments"},
	Short:   "Deployment commands",
	Long:    `Commands for managing deployments of a SubQuery project`,
	Example: `  # List deployments of a project
  sqctl deployment list --org myorg --key myproject

  # Deploy the latest commit of main with the newest images
  sqctl deployment deploy --org myorg --key myproject --branch main

  # Show what would be deployed without sending anything
  sqctl deployment deploy --org myorg --key myproject --dry-run

  # Follow indexing progress until interrupted
  sqctl deployment sync-status --org myorg --key myproject --id 42 --rolling`,
}

func currentProjectKey() (subquery.ProjectKey, error) {
	key, err := subquery.NewProjectKey(projectOrg, projectKey)
	if err != nil {
		return subquery.ProjectKey{}, errors.ValidationError(err.Error())
	}
	return key, nil
}
