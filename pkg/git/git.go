// Package git reads branch information from the local checkout, used to
// default --branch when a deploy is run inside a project repository.
package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const FallbackBranch = "main"

// runner executes git with args; replaced in tests.
var runner = func(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "git", args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func IsGitRepository(ctx context.Context) bool {
	_, err := runner(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// CurrentBranch returns the checked-out branch. A detached HEAD is an error.
func CurrentBranch(ctx context.Context) (string, error) {
	out, err := runner(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return parseBranch(out)
}

func parseBranch(output string) (string, error) {
	branch := strings.TrimSpace(output)
	switch branch {
	case "":
		return "", fmt.Errorf("git reported an empty branch name")
	case "HEAD":
		return "", fmt.Errorf("HEAD is detached")
	}
	return branch, nil
}

// BranchOrDefault returns the current branch, or FallbackBranch when the
// working directory is not a checkout or HEAD is detached.
func BranchOrDefault(ctx context.Context) string {
	if !IsGitRepository(ctx) {
		return FallbackBranch
	}
	branch, err := CurrentBranch(ctx)
	if err != nil {
		return FallbackBranch
	}
	return branch
}
