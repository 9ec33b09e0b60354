package deployment

import (
	"context"
	"sync"

	"sqctl/pkg/history"
	"sqctl/pkg/subquery"
)

type fakeAPI struct {
	mu sync.Mutex

	commits    []subquery.Commit
	commitsErr error
	project    *subquery.Project
	projectErr error
	images     subquery.ImageCatalog
	imagesErr  error

	deployments []subquery.Deployment
	deployed    subquery.Deployment
	mutateErr   error

	statuses  []subquery.DeploymentStatus
	statusErr error
	// cancelStatus, when set, is called during a status fetch, which then
	// fails with the context error.
	cancelStatus context.CancelFunc

	calls       map[string]int
	lastRequest *subquery.CreateDeployRequest
}

func (f *fakeAPI) call(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) Commits(ctx context.Context, key subquery.ProjectKey, branch string) ([]subquery.Commit, error) {
	f.call("commits")
	return f.commits, f.commitsErr
}

func (f *fakeAPI) Project(ctx context.Context, key subquery.ProjectKey) (*subquery.Project, error) {
	f.call("project")
	return f.project, f.projectErr
}

func (f *fakeAPI) Images(ctx context.Context) (subquery.ImageCatalog, error) {
	f.call("images")
	return f.images, f.imagesErr
}

func (f *fakeAPI) Deployments(ctx context.Context, key subquery.ProjectKey) ([]subquery.Deployment, error) {
	f.call("deployments")
	return f.deployments, f.mutateErr
}

func (f *fakeAPI) Deploy(ctx context.Context, key subquery.ProjectKey, req subquery.CreateDeployRequest) (subquery.Deployment, error) {
	f.call("deploy")
	f.lastRequest = &req
	return f.deployed, f.mutateErr
}

func (f *fakeAPI) DeleteDeployment(ctx context.Context, key subquery.ProjectKey, id uint64) (subquery.Acknowledged, error) {
	f.call("delete")
	if f.mutateErr != nil {
		return subquery.Acknowledged{}, f.mutateErr
	}
	return subquery.Acknowledged{Operation: subquery.OperationDelete, ProjectKey: key.String(), DeploymentID: id}, nil
}

func (f *fakeAPI) Redeploy(ctx context.Context, key subquery.ProjectKey, id uint64, req subquery.CreateDeployRequest) (subquery.Acknowledged, error) {
	f.call("redeploy")
	f.lastRequest = &req
	if f.mutateErr != nil {
		return subquery.Acknowledged{}, f.mutateErr
	}
	return subquery.Acknowledged{Operation: subquery.OperationRedeploy, ProjectKey: key.String(), DeploymentID: id}, nil
}

func (f *fakeAPI) RebaseDeployment(ctx context.Context, key subquery.ProjectKey, id uint64) (subquery.Acknowledged, error) {
	f.call("rebase")
	if f.mutateErr != nil {
		return subquery.Acknowledged{}, f.mutateErr
	}
	return subquery.Acknowledged{Operation: subquery.OperationPromote, ProjectKey: key.String(), DeploymentID: id}, nil
}

func (f *fakeAPI) DeploymentSyncStatus(ctx context.Context, key subquery.ProjectKey, id uint64) (subquery.DeploymentStatus, error) {
	f.call("status")
	if f.cancelStatus != nil {
		f.cancelStatus()
		return subquery.DeploymentStatus{}, ctx.Err()
	}
	if f.statusErr != nil {
		return subquery.DeploymentStatus{}, f.statusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls["status"] - 1
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	return f.statuses[i], nil
}

type captureRenderer struct {
	rendered []any
	err      error
}

func (r *captureRenderer) Render(v any) error {
	r.rendered = append(r.rendered, v)
	return r.err
}

type memoryRecorder struct {
	entries []history.Entry
	err     error
}

func (m *memoryRecorder) Record(ctx context.Context, e history.Entry) error {
	m.entries = append(m.entries, e)
	return m.err
}

func strPtr(s string) *string {
	return &s
}

var testKey = subquery.ProjectKey{Org: "acme", Key: "indexer"}
