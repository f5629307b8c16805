package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
	"github.com/geotech-hub/geoaudit/internal/logger"
)

// cliClientID is the quota identity of audits run from the command line.
const cliClientID = "cli"

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Audit a single document",
	Long: `Runs the full audit pipeline on one file and prints the report.

Supported formats: .pdf, .xlsx, .xls, .docx and plain text. Results are cached by content, so
re-running on an unchanged file does not call the model again.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := readDocument(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	stderr := cmd.ErrOrStderr()
	if isTerminal(stderr) && !analyzeJSON {
		muted := styledReport().Muted
		a.pipeline.SetStageObserver(func(s domain.Stage) {
			fmt.Fprintln(stderr, muted.Render("· "+s.String()))
		})
	}

	filename := filepath.Base(path)
	logger.Debug("Analyzing %s (%d bytes)", filename, len(content))

	result, err := a.audit.Analyze(cmd.Context(), domain.AuditRequest{
		Filename: filename,
		Content:  content,
		ClientID: cliClientID,
	})
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		return writeJSON(out, result)
	}
	st := plainReport()
	if isTerminal(out) {
		st = styledReport()
	}
	renderReport(out, filename, result, st)
	return nil
}
