package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"sqctl/pkg/history"
	"sqctl/pkg/subquery"

	atottoclipboard "github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	// FormatTable is the default human-readable format
	FormatTable OutputFormat = "table"
	// FormatJSON outputs as JSON
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs as YAML
	FormatYAML OutputFormat = "yaml"
)

var (
	colorMuted = lipgloss.Color("#737373")
	colorGood  = lipgloss.Color("#22C55E")
	colorBad   = lipgloss.Color("#EF4444")
	colorWarn  = lipgloss.Color("#EAB308")

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// copyFunc writes to the system clipboard; replaced in tests.
var copyFunc = atottoclipboard.WriteAll

// OutputWriter renders command results in the configured format.
type OutputWriter struct {
	format OutputFormat
	writer io.Writer
	notice io.Writer
	copy   bool
}

// NewOutputWriter creates a new output writer with the specified format
func NewOutputWriter(format string, copyOutput bool) *OutputWriter {
	f := OutputFormat(format)
	if f != FormatJSON && f != FormatYAML {
		f = FormatTable // default
	}
	return &OutputWriter{
		format: f,
		writer: os.Stdout,
		notice: os.Stderr,
		copy:   copyOutput,
	}
}

// SetWriter sets a custom writer (used in tests)
func (w *OutputWriter) SetWriter(writer io.Writer) {
	w.writer = writer
}

// IsStructured returns true if the format is JSON or YAML
func (w *OutputWriter) IsStructured() bool {
	return w.format == FormatJSON || w.format == FormatYAML
}

// Render writes v in the configured format and, with --copy, places the
// same text on the clipboard. Structured output copies silently.
func (w *OutputWriter) Render(v any) error {
	var buf bytes.Buffer
	if err := w.encode(&buf, v); err != nil {
		return err
	}
	notice := w.notice
	if w.IsStructured() {
		notice = io.Discard
	}
	return OutputWithCopy(w.writer, notice, buf.String(), w.copy)
}

func (w *OutputWriter) encode(out io.Writer, v any) error {
	switch w.format {
	case FormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case FormatYAML:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return writeTable(out, v)
	}
}

func writeTable(out io.Writer, v any) error {
	switch data := v.(type) {
	case []subquery.Deployment:
		writeDeployments(out, data)
	case subquery.Deployment:
		writeDeployment(out, data)
	case subquery.CreateDeployRequest:
		writeRequest(out, data)
	case subquery.Acknowledged:
		fmt.Fprintln(out, "Success")
	case []history.Entry:
		writeHistory(out, data)
	default:
		fmt.Fprintf(out, "%v\n", v)
	}
	return nil
}

func writeDeployments(out io.Writer, deployments []subquery.Deployment) {
	if len(deployments) == 0 {
		fmt.Fprintln(out, "No deployments found.")
		return
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("ID", "TYPE", "STATUS", "VERSION", "INDEXER", "QUERY", "UPDATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 {
				return statusStyle(deployments[row].Status)
			}
			return cellStyle
		})

	for _, d := range deployments {
		t.Row(
			fmt.Sprintf("%d", d.ID),
			string(d.Type),
			d.Status,
			shortSha(d.Version),
			d.IndexerImage,
			d.QueryImage,
			FormatTimestamp(d.UpdatedAt),
		)
	}
	fmt.Fprintln(out, t.Render())
}

func writeDeployment(out io.Writer, d subquery.Deployment) {
	fmt.Fprintf(out, "Deployment ID: %d\n", d.ID)
	fmt.Fprintf(out, "  Project: %s\n", d.ProjectKey)
	fmt.Fprintf(out, "  Type: %s\n", d.Type)
	fmt.Fprintf(out, "  Status: %s\n", d.Status)
	fmt.Fprintf(out, "  Version: %s\n", d.Version)
	if d.IndexerImage != "" {
		fmt.Fprintf(out, "  Indexer Image: %s\n", d.IndexerImage)
	}
	if d.QueryImage != "" {
		fmt.Fprintf(out, "  Query Image: %s\n", d.QueryImage)
	}
	if d.Endpoint != "" {
		fmt.Fprintf(out, "  Endpoint: %s\n", d.Endpoint)
	}
	if d.QueryURL != "" {
		fmt.Fprintf(out, "  Query URL: %s\n", d.QueryURL)
	}
	fmt.Fprintf(out, "  Created: %s\n", FormatTimestamp(d.CreatedAt))
}

func writeRequest(out io.Writer, req subquery.CreateDeployRequest) {
	fmt.Fprintln(out, "Resolved deployment request (not sent):")
	fmt.Fprintf(out, "  Type: %s\n", req.Type)
	fmt.Fprintf(out, "  Commit: %s\n", valueOrDash(req.Commit))
	fmt.Fprintf(out, "  Indexer Image: %s\n", valueOrDash(req.IndexerImageVersion))
	fmt.Fprintf(out, "  Query Image: %s\n", valueOrDash(req.QueryImageVersion))
	fmt.Fprintf(out, "  Endpoint: %s\n", valueOrDash(req.Endpoint))
	fmt.Fprintf(out, "  Dict Endpoint: %s\n", valueOrDash(req.DictEndpoint))
	fmt.Fprintf(out, "  Sub Folder: %s\n", valueOrDash(req.SubFolder))
}

func writeHistory(out io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No operations recorded.")
		return
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("WHEN", "OPERATION", "PROJECT", "DEPLOYMENT", "COMMIT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, e := range entries {
		id := "-"
		if e.DeploymentID != 0 {
			id = fmt.Sprintf("%d", e.DeploymentID)
		}
		commit := shortSha(e.Commit)
		if commit == "" {
			commit = "-"
		}
		t.Row(FormatTimestamp(e.CreatedAt.Local()), e.Operation, e.ProjectKey, id, commit)
	}
	fmt.Fprintln(out, t.Render())
}

func statusStyle(status string) lipgloss.Style {
	switch strings.ToLower(status) {
	case "running", "ready":
		return cellStyle.Foreground(colorGood)
	case "error", "failed":
		return cellStyle.Foreground(colorBad)
	case "processing", "pending", "deploying":
		return cellStyle.Foreground(colorWarn)
	default:
		return cellStyle.Foreground(colorMuted)
	}
}

func shortSha(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}

func valueOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// ValidFormats returns a list of valid output formats
func ValidFormats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats() {
		if f == format {
			return true
		}
	}
	return false
}

func FormatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format("2006-01-02 15:04")
}

// ShouldCopyOutput checks if the --copy flag was set on the command.
// It first checks the command's local flags, then falls back to the global flag.
func ShouldCopyOutput(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("copy") {
		copyFlag, _ := cmd.Flags().GetBool("copy")
		return copyFlag
	}
	return copyToClipboardFlag
}

// OutputWithCopy always writes content to writer. When shouldCopy is set it
// also copies content to the clipboard and confirms on notice, keeping
// structured output on writer clean.
func OutputWithCopy(writer, notice io.Writer, content string, shouldCopy bool) error {
	if _, err := fmt.Fprint(writer, content); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if shouldCopy {
		if err := copyFunc(content); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Fprintln(notice, "✓ Copied to clipboard!")
	}

	return nil
}
