package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"sqctl/pkg/errors"

	"github.com/fatih/color"
)

const (
	responseYes = "yes"
	responseY   = "y"
)

// detail is one labelled line shown above a confirmation prompt.
type detail struct {
	label string
	value string
}

// IsDryRun returns true if dry-run mode is enabled
func IsDryRun() bool {
	return dryRunFlag
}

// IsAssumeYes returns true if we should skip confirmation prompts
func IsAssumeYes() bool {
	return assumeYesFlag
}

// PrintDryRunAction prints a dry-run action with details
func PrintDryRunAction(out io.Writer, action string, details []detail) {
	yellow := color.New(color.FgYellow, color.Bold)
	cyan := color.New(color.FgCyan)

	_, _ = yellow.Fprintf(out, "[DRY-RUN] Would %s:\n", action)
	for _, d := range details {
		_, _ = cyan.Fprintf(out, "  %s: ", d.label)
		fmt.Fprintln(out, d.value)
	}
}

// ConfirmPrompt asks the user for confirmation on out, reading the answer
// from in.
func ConfirmPrompt(in io.Reader, out io.Writer, message string) (bool, error) {
	if IsAssumeYes() {
		return true, nil
	}

	yellow := color.New(color.FgYellow)
	_, _ = yellow.Fprintf(out, "%s [y/N]: ", message)

	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == responseY || response == responseYes, nil
}

// ConfirmDestructive prompts for confirmation before a destructive action.
// In dry-run mode it describes the action and reports false.
func ConfirmDestructive(in io.Reader, out io.Writer, action string, details []detail) (bool, error) {
	if IsDryRun() {
		PrintDryRunAction(out, action, details)
		return false, nil
	}

	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprintf(out, "Warning: You are about to %s\n\n", action)

	if len(details) > 0 {
		for _, d := range details {
			fmt.Fprintf(out, "  %s: %s\n", d.label, d.value)
		}
		fmt.Fprintln(out)
	}

	return ConfirmPrompt(in, out, "Do you want to continue")
}

// RequireConfirmation returns a cancellation error unless the action is
// confirmed. errSkipped is returned for dry runs, which callers treat as
// success.
func RequireConfirmation(in io.Reader, out io.Writer, action string, details []detail) error {
	confirmed, err := ConfirmDestructive(in, out, action, details)
	if err != nil {
		return errors.NewWithError(errors.ExitCodeGeneral, "failed to read confirmation", err)
	}
	if IsDryRun() {
		return errSkipped
	}
	if !confirmed {
		return errors.CancelledError(action)
	}
	return nil
}

var errSkipped = fmt.Errorf("skipped in dry-run mode")
