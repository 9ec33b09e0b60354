package deployment

import (
	"context"
	"fmt"

	"sqctl/pkg/errors"
	"sqctl/pkg/logger"
	"sqctl/pkg/subquery"
)

// ResolverAPI is the part of the API the resolver reads defaults from.
type ResolverAPI interface {
	Commits(ctx context.Context, key subquery.ProjectKey, branch string) ([]subquery.Commit, error)
	Project(ctx context.Context, key subquery.ProjectKey) (*subquery.Project, error)
	Images(ctx context.Context) (subquery.ImageCatalog, error)
}

// Resolve fills the commit and image versions req leaves unset and returns
// the completed copy. req itself is not modified.
//
// An unset commit becomes the newest commit on branch. Unset image versions
// become the first entry of the matching catalog list; the catalog is
// fetched at most once.
func Resolve(ctx context.Context, api ResolverAPI, req subquery.CreateDeployRequest, key subquery.ProjectKey, branch string) (subquery.CreateDeployRequest, error) {
	if req.Commit == nil {
		commits, err := api.Commits(ctx, key, branch)
		if err != nil {
			return req, fmt.Errorf("fetch commits for %s#%s: %w", key, branch, err)
		}
		if len(commits) == 0 {
			return req, noCommitError(ctx, api, key, branch)
		}
		sha := commits[0].Sha
		req.Commit = &sha
		logger.Debug().Str("project", key.String()).Str("branch", branch).Str("commit", sha).Msg("resolved commit")
	}

	if req.QueryImageVersion != nil && req.IndexerImageVersion != nil {
		return req, nil
	}

	catalog, err := api.Images(ctx)
	if err != nil {
		return req, fmt.Errorf("fetch image catalog: %w", err)
	}

	if req.QueryImageVersion == nil {
		if len(catalog.Query) == 0 {
			return req, errors.NoImageError("query")
		}
		v := catalog.Query[0]
		req.QueryImageVersion = &v
		logger.Debug().Str("query_image_version", v).Msg("resolved query image")
	}
	if req.IndexerImageVersion == nil {
		if len(catalog.Indexer) == 0 {
			return req, errors.NoImageError("indexer")
		}
		v := catalog.Indexer[0]
		req.IndexerImageVersion = &v
		logger.Debug().Str("indexer_image_version", v).Msg("resolved indexer image")
	}

	return req, nil
}

// noCommitError tells a missing project apart from an empty branch.
func noCommitError(ctx context.Context, api ResolverAPI, key subquery.ProjectKey, branch string) error {
	project, err := api.Project(ctx, key)
	if err != nil {
		return fmt.Errorf("fetch project %s: %w", key, err)
	}
	if project == nil {
		return errors.NotFoundError(key.String())
	}
	return errors.NoCommitError(project.RepositoryOrEmpty(), branch)
}
