package cmd

import (
	"sqctl/pkg/deployment"
	"sqctl/pkg/errors"
	"sqctl/pkg/filter"
	"sqctl/pkg/subquery"

	"github.com/spf13/cobra"
)

var (
	listStatus string
	listType   string
	listImage  string
)

var listDeploymentsCmd = NewCommand(
	"list",
	"List deployments of a project",
	`List the primary and stage deployments of a project with their status and images.
Results can be narrowed by status, type, or an image version pattern.`,
).WithExample(`  # List deployments
  sqctl deployment list --org myorg --key myproject

  # Only stage deployments, as JSON
  sqctl deployment list --org myorg --key myproject --type stage --format json

  # Deployments still on a 2.x image
  sqctl deployment list --org myorg --key myproject --image '^v2\.'`).
	WithProjectFlags(&projectOrg, &projectKey).
	WithDispatcher(func(cmd *cobra.Command, d *deployment.Dispatcher) error {
		key, err := currentProjectKey()
		if err != nil {
			return err
		}

		f := filter.DeploymentFilter{Status: listStatus, Image: listImage}
		if listType != "" {
			t, err := subquery.ParseDeploymentType(listType)
			if err != nil {
				return errors.ValidationError(err.Error())
			}
			f.Type = t
		}

		return d.Dispatch(cmd.Context(), deployment.ListCommand{Key: key, Filter: f})
	}).
	Build()

func init() {
	listDeploymentsCmd.Flags().StringVar(&listStatus, "status", "", "Only deployments with this status")
	listDeploymentsCmd.Flags().StringVar(&listType, "type", "", "Only deployments of this type (primary, stage)")
	listDeploymentsCmd.Flags().StringVar(&listImage, "image", "", "Only deployments whose indexer or query image matches this regular expression")
}
