package filter

import (
	"testing"

	"sqctl/pkg/subquery"
)

func TestStringFilter_Match(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		mode    FilterMode
		input   string
		want    bool
	}{
		{name: "none matches anything", pattern: "x", mode: FilterModeNone, input: "abc", want: true},
		{name: "exact ignores case", pattern: "Running", mode: FilterModeExact, input: "running", want: true},
		{name: "exact rejects substring", pattern: "run", mode: FilterModeExact, input: "running", want: false},
		{name: "contains", pattern: "RUN", mode: FilterModeContains, input: "running", want: true},
		{name: "regex", pattern: `^v3\.`, mode: FilterModeRegex, input: "v3.1.0", want: true},
		{name: "regex miss", pattern: `^v3\.`, mode: FilterModeRegex, input: "v2.9.0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewStringFilter(tt.pattern, tt.mode)
			if err != nil {
				t.Fatalf("NewStringFilter() error = %v", err)
			}
			if got := f.Match(tt.input); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewStringFilter_InvalidRegex(t *testing.T) {
	if _, err := NewStringFilter("([", FilterModeRegex); err == nil {
		t.Error("NewStringFilter() expected error for invalid regex")
	}
}

func TestDeploymentFilter_Apply(t *testing.T) {
	deployments := []subquery.Deployment{
		{ID: 1, Status: "running", Type: subquery.DeploymentTypePrimary, IndexerImage: "v3.1.0", QueryImage: "v2.9.0"},
		{ID: 2, Status: "processing", Type: subquery.DeploymentTypeStage, IndexerImage: "v3.2.0", QueryImage: "v2.10.0"},
		{ID: 3, Status: "error", Type: subquery.DeploymentTypeStage, IndexerImage: "v2.8.0", QueryImage: "v2.8.0"},
	}

	tests := []struct {
		name   string
		filter DeploymentFilter
		want   []uint64
	}{
		{name: "zero keeps all", filter: DeploymentFilter{}, want: []uint64{1, 2, 3}},
		{name: "status", filter: DeploymentFilter{Status: "RUNNING"}, want: []uint64{1}},
		{name: "type", filter: DeploymentFilter{Type: subquery.DeploymentTypeStage}, want: []uint64{2, 3}},
		{name: "image matches either image", filter: DeploymentFilter{Image: `^v2\.10`}, want: []uint64{2}},
		{name: "combined", filter: DeploymentFilter{Type: subquery.DeploymentTypeStage, Image: `^v3\.`}, want: []uint64{2}},
		{name: "no match", filter: DeploymentFilter{Status: "deleted"}, want: []uint64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.filter.Apply(deployments)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Apply() returned %d deployments, want %d", len(got), len(tt.want))
			}
			for i, d := range got {
				if d.ID != tt.want[i] {
					t.Errorf("Apply()[%d].ID = %d, want %d", i, d.ID, tt.want[i])
				}
			}
		})
	}
}

func TestDeploymentFilter_InvalidImagePattern(t *testing.T) {
	_, err := DeploymentFilter{Image: "(["}.Apply([]subquery.Deployment{{ID: 1}})
	if err == nil {
		t.Error("Apply() expected error for invalid image pattern")
	}
}
