package cmd

import (
	"sqctl/pkg/deployment"
	"sqctl/pkg/errors"
	"sqctl/pkg/git"
	"sqctl/pkg/logger"
	"sqctl/pkg/subquery"

	"github.com/spf13/cobra"
)

// requestFlags are the deploy and redeploy flags that make up a
// CreateDeployRequest. Unset flags are left for the resolver.
type requestFlags struct {
	branch         string
	commit         string
	endpoint       string
	dictEndpoint   string
	indexerImage   string
	queryImage     string
	deploymentType string
	subFolder      string
}

var deployFlags requestFlags
var redeployFlags requestFlags

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.branch, "branch", "", "Branch whose latest commit is deployed when --commit is not set (default: current git branch, or main)")
	cmd.Flags().StringVar(&f.commit, "commit", "", "Commit SHA to deploy")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "Network RPC endpoint")
	cmd.Flags().StringVar(&f.dictEndpoint, "dict-endpoint", "", "Dictionary endpoint")
	cmd.Flags().StringVar(&f.indexerImage, "indexer-image-version", "", "Indexer image version (default: newest available)")
	cmd.Flags().StringVar(&f.queryImage, "query-image-version", "", "Query image version (default: newest available)")
	cmd.Flags().StringVar(&f.deploymentType, "type", string(subquery.DeploymentTypePrimary), "Deployment type (primary, stage)")
	cmd.Flags().StringVar(&f.subFolder, "sub-folder", "", "Project sub folder within the repository")
}

// build turns the flags into a branch and a request. Only flags given on
// the command line become set request fields.
func (f *requestFlags) build(cmd *cobra.Command) (string, subquery.CreateDeployRequest, error) {
	deploymentType, err := subquery.ParseDeploymentType(f.deploymentType)
	if err != nil {
		return "", subquery.CreateDeployRequest{}, errors.ValidationError(err.Error())
	}

	req := subquery.CreateDeployRequest{
		Commit:              changedValue(cmd, "commit", f.commit),
		Endpoint:            changedValue(cmd, "endpoint", f.endpoint),
		DictEndpoint:        changedValue(cmd, "dict-endpoint", f.dictEndpoint),
		IndexerImageVersion: changedValue(cmd, "indexer-image-version", f.indexerImage),
		QueryImageVersion:   changedValue(cmd, "query-image-version", f.queryImage),
		Type:                deploymentType,
		SubFolder:           changedValue(cmd, "sub-folder", f.subFolder),
	}

	branch := f.branch
	if !cmd.Flags().Changed("branch") && req.Commit == nil {
		branch = git.BranchOrDefault(cmd.Context())
		logger.Info().Str("branch", branch).Msg("no --branch given, using branch of the working directory")
	}
	return branch, req, nil
}

func changedValue(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

var deployCmd = NewCommand(
	"deploy",
	"Create a deployment",
	`Create a deployment of a project. A missing --commit is filled with the
latest commit of --branch, and missing image versions with the newest images
the service offers. With --dry-run the resolved request is shown and nothing
is sent.`,
).WithExample(`  # Deploy the latest commit of main with the newest images
  sqctl deployment deploy --org myorg --key myproject --branch main

  # Deploy a specific commit to the stage slot
  sqctl deployment deploy --org myorg --key myproject --commit 1a2b3c --type stage

  # Show the resolved request only
  sqctl deployment deploy --org myorg --key myproject --dry-run --format yaml`).
	WithProjectFlags(&projectOrg, &projectKey).
	WithDispatcher(func(cmd *cobra.Command, d *deployment.Dispatcher) error {
		key, err := currentProjectKey()
		if err != nil {
			return err
		}
		branch, req, err := deployFlags.build(cmd)
		if err != nil {
			return err
		}
		return d.Dispatch(cmd.Context(), deployment.DeployCommand{
			Key:     key,
			Branch:  branch,
			Request: req,
			DryRun:  IsDryRun(),
		})
	}).
	Build()

var redeployCmd = NewCommand(
	"redeploy",
	"Redeploy an existing deployment",
	`Replace the commit, images or endpoints of an existing deployment. Missing
values are resolved the same way as for deploy.`,
).WithExample(`  # Redeploy deployment 42 with the latest commit and images
  sqctl deployment redeploy --org myorg --key myproject --id 42

  # Pin the indexer image
  sqctl deployment redeploy --org myorg --key myproject --id 42 --indexer-image-version v3.1.0`).
	WithProjectFlags(&projectOrg, &projectKey).
	WithDeploymentIDFlag(&deploymentID).
	WithDispatcher(func(cmd *cobra.Command, d *deployment.Dispatcher) error {
		key, err := currentProjectKey()
		if err != nil {
			return err
		}
		branch, req, err := redeployFlags.build(cmd)
		if err != nil {
			return err
		}
		return d.Dispatch(cmd.Context(), deployment.RedeployCommand{
			Key:     key,
			ID:      deploymentID,
			Branch:  branch,
			Request: req,
			DryRun:  IsDryRun(),
		})
	}).
	Build()

func init() {
	deployFlags.register(deployCmd)
	redeployFlags.register(redeployCmd)
}
