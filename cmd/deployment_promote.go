package cmd

import (
	"fmt"

	"sqctl/pkg/deployment"

	"github.com/spf13/cobra"
)

var promoteDeploymentCmd = NewCommand(
	"promote",
	"Promote a stage deployment to primary",
	`Promote (rebase) a stage deployment so it replaces the primary deployment.`,
).WithExample(`  # Promote stage deployment 43
  sqctl deployment promote --org myorg --key myproject --id 43

  # Show what would be promoted
  sqctl deployment promote --org myorg --key myproject --id 43 --dry-run`).
	WithProjectFlags(&projectOrg, &projectKey).
	WithDeploymentIDFlag(&deploymentID).
	WithDispatcher(func(cmd *cobra.Command, d *deployment.Dispatcher) error {
		key, err := currentProjectKey()
		if err != nil {
			return err
		}
		if IsDryRun() {
			PrintDryRunAction(cmd.ErrOrStderr(), "promote a stage deployment to primary", []detail{
				{label: "Project", value: key.String()},
				{label: "Deployment ID", value: fmt.Sprintf("%d", deploymentID)},
			})
		}
		return d.Dispatch(cmd.Context(), deployment.PromoteCommand{
			Key:    key,
			ID:     deploymentID,
			DryRun: IsDryRun(),
		})
	}).
	Build()
