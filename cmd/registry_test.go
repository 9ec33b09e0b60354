package cmd

import "testing"

func TestRegisterCommands_Tree(t *testing.T) {
	tests := []struct {
		path []string
	}{
		{[]string{"version"}},
		{[]string{"deployment", "list"}},
		{[]string{"deployment", "deploy"}},
		{[]string{"deployment", "redeploy"}},
		{[]string{"deployment", "delete"}},
		{[]string{"deployment", "promote"}},
		{[]string{"deployment", "sync-status"}},
		{[]string{"history", "list"}},
		{[]string{"config", "show"}},
	}

	for _, tt := range tests {
		found, rest, err := rootCmd.Find(tt.path)
		if err != nil {
			t.Errorf("Find(%v) error = %v", tt.path, err)
			continue
		}
		if len(rest) != 0 || found.Name() != tt.path[len(tt.path)-1] {
			t.Errorf("Find(%v) = %q with leftover %v", tt.path, found.Name(), rest)
		}
	}
}
