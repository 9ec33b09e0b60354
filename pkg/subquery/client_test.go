package subquery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"sqctl/pkg/config"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   string
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithToken("secret"), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c, &requests
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var testKey = ProjectKey{Org: "acme", Key: "indexer"}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{name: "default", base: "", want: config.DefaultBaseURL},
		{name: "trailing slash", base: "https://api.example.test/", want: "https://api.example.test"},
		{name: "no scheme", base: "api.example.test", wantErr: true},
		{name: "ftp", base: "ftp://api.example.test", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.base)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("New(%q) expected error", tt.base)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) error = %v", tt.base, err)
			}
			if c.BaseURL() != tt.want {
				t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), tt.want)
			}
		})
	}
}

func TestCommits(t *testing.T) {
	c, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Commit{{Sha: "abc123"}, {Sha: "def456"}})
	})

	commits, err := c.Commits(context.Background(), testKey, "feature/x")
	if err != nil {
		t.Fatalf("Commits() error = %v", err)
	}
	if len(commits) != 2 || commits[0].Sha != "abc123" {
		t.Errorf("Commits() = %+v", commits)
	}

	got := (*reqs)[0]
	if got.Method != http.MethodGet || got.Path != "/info/commits/acme/indexer" {
		t.Errorf("request = %s %s", got.Method, got.Path)
	}
	if got.Query != "branch=feature%2Fx" {
		t.Errorf("query = %q", got.Query)
	}
	if got.Auth != "Bearer secret" {
		t.Errorf("Authorization = %q", got.Auth)
	}
}

func TestProject(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := "https://github.com/acme/indexer"
		c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, Project{Key: "acme/indexer", GitRepository: &repo})
		})
		p, err := c.Project(context.Background(), testKey)
		if err != nil {
			t.Fatalf("Project() error = %v", err)
		}
		if p == nil || p.RepositoryOrEmpty() != repo {
			t.Errorf("Project() = %+v", p)
		}
	})

	t.Run("not found is nil", func(t *testing.T) {
		c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "no such project"})
		})
		p, err := c.Project(context.Background(), testKey)
		if err != nil {
			t.Fatalf("Project() error = %v", err)
		}
		if p != nil {
			t.Errorf("Project() = %+v, want nil", p)
		}
	})

	t.Run("server error propagates", func(t *testing.T) {
		c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		_, err := c.Project(context.Background(), testKey)
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("Project() error = %v, want *APIError", err)
		}
		if apiErr.Status != http.StatusInternalServerError || apiErr.Message != "boom" {
			t.Errorf("APIError = %+v", apiErr)
		}
	})
}

func TestDeploySendsRequestBody(t *testing.T) {
	c, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Deployment{ID: 42, Version: "abc123", Type: DeploymentTypePrimary})
	})

	commit, query, indexer := "abc123", "q1", "i1"
	req := CreateDeployRequest{
		Commit:              &commit,
		QueryImageVersion:   &query,
		IndexerImageVersion: &indexer,
		Type:                DeploymentTypePrimary,
	}
	d, err := c.Deploy(context.Background(), testKey, req)
	if err != nil {
		t.Fatalf("Deploy() error = %v", err)
	}
	if d.ID != 42 {
		t.Errorf("Deploy() id = %d, want 42", d.ID)
	}

	got := (*reqs)[0]
	if got.Method != http.MethodPost || got.Path != "/subqueries/acme/indexer/deployments" {
		t.Errorf("request = %s %s", got.Method, got.Path)
	}
	var sent map[string]any
	if err := json.Unmarshal([]byte(got.Body), &sent); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if sent["version"] != "abc123" || sent["queryImageVersion"] != "q1" || sent["type"] != "primary" {
		t.Errorf("body = %v", sent)
	}
	if _, ok := sent["endpoint"]; ok {
		t.Errorf("unset endpoint should be omitted, body = %v", sent)
	}
}

func TestAcknowledgedOperations(t *testing.T) {
	c, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`"ok"`))
	})
	ctx := context.Background()

	ack, err := c.DeleteDeployment(ctx, testKey, 7)
	if err != nil {
		t.Fatalf("DeleteDeployment() error = %v", err)
	}
	if ack != (Acknowledged{Operation: OperationDelete, ProjectKey: "acme/indexer", DeploymentID: 7}) {
		t.Errorf("DeleteDeployment() = %+v", ack)
	}

	if _, err := c.Redeploy(ctx, testKey, 7, CreateDeployRequest{Type: DeploymentTypeStage}); err != nil {
		t.Fatalf("Redeploy() error = %v", err)
	}
	ack, err = c.RebaseDeployment(ctx, testKey, 7)
	if err != nil {
		t.Fatalf("RebaseDeployment() error = %v", err)
	}
	if ack.Operation != OperationPromote {
		t.Errorf("RebaseDeployment() operation = %q", ack.Operation)
	}

	want := []struct{ method, path string }{
		{http.MethodDelete, "/subqueries/acme/indexer/deployments/7"},
		{http.MethodPut, "/subqueries/acme/indexer/deployments/7"},
		{http.MethodPost, "/subqueries/acme/indexer/deployments/7/rebase"},
	}
	for i, w := range want {
		if (*reqs)[i].Method != w.method || (*reqs)[i].Path != w.path {
			t.Errorf("request %d = %s %s, want %s %s", i, (*reqs)[i].Method, (*reqs)[i].Path, w.method, w.path)
		}
	}
}

func TestDeploymentSyncStatus(t *testing.T) {
	c, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int64{"totalEntities": 10, "targetBlock": 200, "processingBlock": 50})
	})

	status, err := c.DeploymentSyncStatus(context.Background(), testKey, 3)
	if err != nil {
		t.Fatalf("DeploymentSyncStatus() error = %v", err)
	}
	if status != (DeploymentStatus{TotalEntities: 10, TargetBlock: 200, ProcessingBlock: 50}) {
		t.Errorf("DeploymentSyncStatus() = %+v", status)
	}
	if (*reqs)[0].Path != "/subqueries/acme/indexer/deployments/3/sync-status" {
		t.Errorf("path = %s", (*reqs)[0].Path)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"forbidden"}`, "forbidden"},
		{"error field", `{"error":"bad token"}`, "bad token"},
		{"plain text", "gateway timeout\n", "gateway timeout"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Images(context.Background())
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Images() error = %v, want *APIError", err)
			}
			if apiErr.Message != tt.want {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.want)
			}
			if !IsStatus(err, http.StatusForbidden) {
				t.Error("IsStatus(403) = false")
			}
		})
	}
}
