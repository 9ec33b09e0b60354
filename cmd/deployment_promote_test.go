package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
)

type recordingServer struct {
	mu   sync.Mutex
	hits []string
}

func (s *recordingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits = append(s.hits, r.Method+" "+r.URL.Path)
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *recordingServer) requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.hits...)
}

// runRoot executes the root command against an API served by api.
func runRoot(t *testing.T, api http.Handler, args ...string) (string, string, error) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("SQCTL_API_URL", srv.URL)
	t.Setenv("SUBQL_ACCESS_TOKEN", "test-token")
	t.Setenv("SQCTL_HISTORY_PATH", filepath.Join(dir, "history.db"))
	t.Setenv("SQCTL_PROFILE", "")
	t.Setenv("SQCTL_LOG_LEVEL", "disabled")

	prevDry, prevYes, prevColor := dryRunFlag, assumeYesFlag, color.NoColor
	dryRunFlag, assumeYesFlag, color.NoColor = false, false, true
	t.Cleanup(func() {
		dryRunFlag, assumeYesFlag, color.NoColor = prevDry, prevYes, prevColor
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestPromote_DryRunSendsNothing(t *testing.T) {
	api := &recordingServer{}

	out, errOut, err := runRoot(t, api,
		"deployment", "promote", "--org", "acme", "--key", "proj", "--id", "7", "--dry-run")
	if err != nil {
		t.Fatalf("promote --dry-run error = %v", err)
	}
	if hits := api.requests(); len(hits) != 0 {
		t.Errorf("promote --dry-run sent %v, want no requests", hits)
	}
	if out != "" {
		t.Errorf("stdout = %q, want nothing rendered", out)
	}
	if !strings.Contains(errOut, "[DRY-RUN] Would promote a stage deployment to primary") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestPromote_SendsRebase(t *testing.T) {
	api := &recordingServer{}

	out, _, err := runRoot(t, api,
		"deployment", "promote", "--org", "acme", "--key", "proj", "--id", "7")
	if err != nil {
		t.Fatalf("promote error = %v", err)
	}
	hits := api.requests()
	if len(hits) != 1 || hits[0] != "POST /subqueries/acme/proj/deployments/7/rebase" {
		t.Errorf("requests = %v", hits)
	}
	if out != "Success\n" {
		t.Errorf("stdout = %q, want %q", out, "Success\n")
	}
}
