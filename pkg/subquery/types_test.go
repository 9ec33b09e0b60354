package subquery

import "testing"

func TestParseProjectKey(t *testing.T) {
	tests := []struct {
		input   string
		want    ProjectKey
		wantErr bool
	}{
		{input: "acme/indexer", want: ProjectKey{Org: "acme", Key: "indexer"}},
		{input: " acme / indexer ", want: ProjectKey{Org: "acme", Key: "indexer"}},
		{input: "acme", wantErr: true},
		{input: "/indexer", wantErr: true},
		{input: "acme/", wantErr: true},
		{input: "acme/indexer/extra", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProjectKey(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseProjectKey(%q) expected error, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProjectKey(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseProjectKey(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if got.String() != "acme/indexer" {
				t.Errorf("String() = %q", got.String())
			}
		})
	}
}

func TestParseDeploymentType(t *testing.T) {
	for _, s := range []string{"primary", "PRIMARY", " stage "} {
		if _, err := ParseDeploymentType(s); err != nil {
			t.Errorf("ParseDeploymentType(%q) error = %v", s, err)
		}
	}
	if _, err := ParseDeploymentType("canary"); err == nil {
		t.Error("ParseDeploymentType(canary) expected error")
	}
}

func TestCreateDeployRequestResolved(t *testing.T) {
	v := "x"
	if (CreateDeployRequest{}).Resolved() {
		t.Error("empty request reported as resolved")
	}
	r := CreateDeployRequest{Commit: &v, QueryImageVersion: &v}
	if r.Resolved() {
		t.Error("request without indexer image reported as resolved")
	}
	r.IndexerImageVersion = &v
	if !r.Resolved() {
		t.Error("complete request reported as unresolved")
	}
}
