package cmd

import "github.com/spf13/cobra"

func RegisterCommands(root *cobra.Command) {
	AddCommand(root, versionCmd)

	AddCommands(root,
		deploymentCmd,
		historyCmd,
		configCmd,
	)

	AddCommands(deploymentCmd,
		listDeploymentsCmd,
		deployCmd,
		redeployCmd,
		deleteDeploymentCmd,
		promoteDeploymentCmd,
		syncStatusCmd,
	)
}
