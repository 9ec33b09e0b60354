package cmd

import (
	"testing"
	"time"

	"sqctl/pkg/errors"
)

func TestSyncInterval(t *testing.T) {
	tests := []struct {
		name    string
		rolling bool
		seconds uint
		want    time.Duration
		wantErr bool
	}{
		{"rolling default", true, defaultSyncInterval, 10 * time.Second, false},
		{"rolling one second", true, 1, time.Second, false},
		{"rolling zero", true, 0, 0, true},
		{"single zero", false, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := syncInterval(tt.rolling, tt.seconds)
			if tt.wantErr {
				if !errors.IsExitCode(err, errors.ExitCodeValidation) {
					t.Fatalf("syncInterval() error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("syncInterval() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("syncInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSyncStatus_RollingZeroIntervalSendsNothing(t *testing.T) {
	api := &recordingServer{}
	t.Cleanup(func() {
		syncStatusRolling = false
		syncStatusInterval = defaultSyncInterval
	})

	_, _, err := runRoot(t, api, "deployment", "sync-status", "--org", "acme", "--key", "proj", "--id", "7", "--rolling", "--interval", "0")
	if !errors.IsExitCode(err, errors.ExitCodeValidation) {
		t.Fatalf("Execute() error = %v, want validation error", err)
	}
	if n := len(api.requests()); n != 0 {
		t.Errorf("sent %d requests, want 0", n)
	}
}
