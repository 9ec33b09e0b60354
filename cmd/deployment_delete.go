package cmd

import (
	"fmt"

	"sqctl/pkg/deployment"

	"github.com/spf13/cobra"
)

var deleteDeploymentCmd = NewCommand(
	"delete",
	"Delete a deployment",
	`Delete a deployment of a project. Asks for confirmation unless --yes is given.`,
).WithExample(`  # Delete deployment 42
  sqctl deployment delete --org myorg --key myproject --id 42

  # Without the prompt
  sqctl deployment delete --org myorg --key myproject --id 42 --yes`).
	WithProjectFlags(&projectOrg, &projectKey).
	WithDeploymentIDFlag(&deploymentID).
	WithDispatcher(func(cmd *cobra.Command, d *deployment.Dispatcher) error {
		key, err := currentProjectKey()
		if err != nil {
			return err
		}

		err = RequireConfirmation(cmd.InOrStdin(), cmd.ErrOrStderr(), "delete a deployment", []detail{
			{label: "Project", value: key.String()},
			{label: "Deployment ID", value: fmt.Sprintf("%d", deploymentID)},
		})
		if err == errSkipped {
			return nil
		}
		if err != nil {
			return err
		}

		return d.Dispatch(cmd.Context(), deployment.DeleteCommand{Key: key, ID: deploymentID, DryRun: IsDryRun()})
	}).
	Build()
