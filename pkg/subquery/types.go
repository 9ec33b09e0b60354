package subquery

import (
	"fmt"
	"strings"
	"time"
)

// DeploymentType selects the slot a deployment occupies.
type DeploymentType string

const (
	DeploymentTypePrimary DeploymentType = "primary"
	DeploymentTypeStage   DeploymentType = "stage"
)

func ParseDeploymentType(s string) (DeploymentType, error) {
	switch DeploymentType(strings.ToLower(strings.TrimSpace(s))) {
	case DeploymentTypePrimary:
		return DeploymentTypePrimary, nil
	case DeploymentTypeStage:
		return DeploymentTypeStage, nil
	default:
		return "", fmt.Errorf("invalid deployment type %q (expected primary or stage)", s)
	}
}

func DeploymentTypes() []string {
	return []string{string(DeploymentTypePrimary), string(DeploymentTypeStage)}
}

// ProjectKey addresses a project as organization/key.
type ProjectKey struct {
	Org string
	Key string
}

func NewProjectKey(org, key string) (ProjectKey, error) {
	org = strings.TrimSpace(org)
	key = strings.TrimSpace(key)
	if org == "" || key == "" {
		return ProjectKey{}, fmt.Errorf("project key requires a non-empty organization and key, got %q/%q", org, key)
	}
	if strings.Contains(org, "/") || strings.Contains(key, "/") {
		return ProjectKey{}, fmt.Errorf("organization and key must not contain '/', got %q/%q", org, key)
	}
	return ProjectKey{Org: org, Key: key}, nil
}

// ParseProjectKey parses "org/key".
func ParseProjectKey(s string) (ProjectKey, error) {
	org, key, ok := strings.Cut(s, "/")
	if !ok {
		return ProjectKey{}, fmt.Errorf("project key %q must have the form organization/key", s)
	}
	return NewProjectKey(org, key)
}

func (k ProjectKey) String() string {
	return k.Org + "/" + k.Key
}

// CreateDeployRequest is the body of deploy and redeploy calls. Nil pointers
// are fields the caller left for the resolver to fill in.
type CreateDeployRequest struct {
	Commit              *string        `json:"version,omitempty" yaml:"commit,omitempty"`
	Endpoint            *string        `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	DictEndpoint        *string        `json:"dictEndpoint,omitempty" yaml:"dict_endpoint,omitempty"`
	IndexerImageVersion *string        `json:"indexerImageVersion,omitempty" yaml:"indexer_image_version,omitempty"`
	QueryImageVersion   *string        `json:"queryImageVersion,omitempty" yaml:"query_image_version,omitempty"`
	Type                DeploymentType `json:"type" yaml:"type"`
	SubFolder           *string        `json:"subFolder,omitempty" yaml:"sub_folder,omitempty"`
}

// Resolved reports whether every field the API requires is set.
func (r CreateDeployRequest) Resolved() bool {
	return r.Commit != nil && r.QueryImageVersion != nil && r.IndexerImageVersion != nil
}

type Commit struct {
	Sha     string `json:"sha" yaml:"sha"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

type Project struct {
	Key           string  `json:"key" yaml:"key"`
	Name          string  `json:"name" yaml:"name"`
	Description   string  `json:"description,omitempty" yaml:"description,omitempty"`
	GitRepository *string `json:"gitRepository,omitempty" yaml:"git_repository,omitempty"`
	QueryURL      string  `json:"queryUrl,omitempty" yaml:"query_url,omitempty"`
}

// RepositoryOrEmpty returns the configured git repository, or "" when unset.
func (p Project) RepositoryOrEmpty() string {
	if p.GitRepository == nil {
		return ""
	}
	return *p.GitRepository
}

// ImageCatalog lists available image versions, newest first.
type ImageCatalog struct {
	Query   []string `json:"query" yaml:"query"`
	Indexer []string `json:"indexer" yaml:"indexer"`
}

type Deployment struct {
	ID           uint64         `json:"id" yaml:"id"`
	ProjectKey   string         `json:"projectKey" yaml:"project_key"`
	Version      string         `json:"version" yaml:"version"`
	Status       string         `json:"status" yaml:"status"`
	Type         DeploymentType `json:"type" yaml:"type"`
	Endpoint     string         `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	DictEndpoint string         `json:"dictEndpoint,omitempty" yaml:"dict_endpoint,omitempty"`
	IndexerImage string         `json:"indexerImage,omitempty" yaml:"indexer_image,omitempty"`
	QueryImage   string         `json:"queryImage,omitempty" yaml:"query_image,omitempty"`
	QueryURL     string         `json:"queryUrl,omitempty" yaml:"query_url,omitempty"`
	SubFolder    string         `json:"subFolder,omitempty" yaml:"sub_folder,omitempty"`
	CreatedAt    time.Time      `json:"createdAt" yaml:"created_at"`
	UpdatedAt    time.Time      `json:"updatedAt" yaml:"updated_at"`
}

type DeploymentStatus struct {
	TotalEntities   int64 `json:"totalEntities" yaml:"total_entities"`
	TargetBlock     int64 `json:"targetBlock" yaml:"target_block"`
	ProcessingBlock int64 `json:"processingBlock" yaml:"processing_block"`
}

type Operation string

const (
	OperationDelete   Operation = "delete"
	OperationRedeploy Operation = "redeploy"
	OperationPromote  Operation = "promote"
)

// Acknowledged is returned by operations whose response carries nothing
// beyond success.
type Acknowledged struct {
	Operation    Operation `json:"operation" yaml:"operation"`
	ProjectKey   string    `json:"projectKey" yaml:"project_key"`
	DeploymentID uint64    `json:"deploymentId" yaml:"deployment_id"`
}
