package subquery

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Commits lists commits on branch, most recent first.
func (c *Client) Commits(ctx context.Context, key ProjectKey, branch string) ([]Commit, error) {
	path := fmt.Sprintf("/info/commits/%s/%s?branch=%s",
		url.PathEscape(key.Org), url.PathEscape(key.Key), url.QueryEscape(branch))
	var commits []Commit
	if err := c.do(ctx, http.MethodGet, path, nil, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}

// Project returns nil without error when the project does not exist.
func (c *Client) Project(ctx context.Context, key ProjectKey) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodGet, projectPath(key), nil, &project); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (c *Client) Images(ctx context.Context) (ImageCatalog, error) {
	var catalog ImageCatalog
	if err := c.do(ctx, http.MethodGet, "/info/images", nil, &catalog); err != nil {
		return ImageCatalog{}, err
	}
	return catalog, nil
}

func (c *Client) Deployments(ctx context.Context, key ProjectKey) ([]Deployment, error) {
	var deployments []Deployment
	if err := c.do(ctx, http.MethodGet, projectPath(key)+"/deployments", nil, &deployments); err != nil {
		return nil, err
	}
	return deployments, nil
}

func (c *Client) Deploy(ctx context.Context, key ProjectKey, req CreateDeployRequest) (Deployment, error) {
	var deployment Deployment
	if err := c.do(ctx, http.MethodPost, projectPath(key)+"/deployments", req, &deployment); err != nil {
		return Deployment{}, err
	}
	return deployment, nil
}

func (c *Client) DeleteDeployment(ctx context.Context, key ProjectKey, id uint64) (Acknowledged, error) {
	if err := c.do(ctx, http.MethodDelete, deploymentPath(key, id), nil, nil); err != nil {
		return Acknowledged{}, err
	}
	return Acknowledged{Operation: OperationDelete, ProjectKey: key.String(), DeploymentID: id}, nil
}

func (c *Client) Redeploy(ctx context.Context, key ProjectKey, id uint64, req CreateDeployRequest) (Acknowledged, error) {
	if err := c.do(ctx, http.MethodPut, deploymentPath(key, id), req, nil); err != nil {
		return Acknowledged{}, err
	}
	return Acknowledged{Operation: OperationRedeploy, ProjectKey: key.String(), DeploymentID: id}, nil
}

// RebaseDeployment promotes a stage deployment to primary.
func (c *Client) RebaseDeployment(ctx context.Context, key ProjectKey, id uint64) (Acknowledged, error) {
	if err := c.do(ctx, http.MethodPost, deploymentPath(key, id)+"/rebase", nil, nil); err != nil {
		return Acknowledged{}, err
	}
	return Acknowledged{Operation: OperationPromote, ProjectKey: key.String(), DeploymentID: id}, nil
}

func (c *Client) DeploymentSyncStatus(ctx context.Context, key ProjectKey, id uint64) (DeploymentStatus, error) {
	var status DeploymentStatus
	if err := c.do(ctx, http.MethodGet, deploymentPath(key, id)+"/sync-status", nil, &status); err != nil {
		return DeploymentStatus{}, err
	}
	return status, nil
}
