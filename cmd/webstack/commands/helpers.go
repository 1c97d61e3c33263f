package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/eallion/webstack-sync/internal/constants"
	"github.com/eallion/webstack-sync/internal/webstack"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// bindFlags binds command flags to viper keys.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		_ = viper.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(file.Fd()))
}

func title(s string) string {
	return cases.Title(language.English).String(s)
}

// renderExportSummary prints the summary as JSON or YAML when requested. In
// table mode the tables are printed only on a terminal; otherwise a single
// line is written so that scripted runs stay quiet.
func renderExportSummary(w io.Writer, format string, summary *webstack.Summary) error {
	report := NewExportReport(summary)

	return writeOutput(w, format, report, func(w io.Writer) error {
		if !isTerminal(w) {
			_, err := fmt.Fprintf(w, "Exported %d records to %d targets (%s variant) in %s\n",
				report.Records, len(report.Targets), report.Variant, report.Duration)

			return err
		}

		return displayExportTables(w, &report)
	})
}

func displayExportTables(w io.Writer, report *ExportReport) error {
	_, _ = fmt.Fprintf(w, "%s export: %d records, %d files, %d pages in %s\n\n",
		title(report.Variant), report.Records, report.Files, report.Pages, report.Duration)

	targets := tablewriter.NewWriter(w)
	targets.Header("Target", "Format", "Bytes", "Status")

	for _, target := range report.Targets {
		status, size := "ok", strconv.Itoa(target.Bytes)
		if target.Error != "" {
			status, size = target.Error, constants.NotAvailable
		}

		_ = targets.Append([]string{target.Path, target.Format, size, status})
	}

	if err := targets.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	categories := tablewriter.NewWriter(w)
	categories.Header("Category", "Links")

	for _, row := range report.Categories {
		name := row.Category
		if name == "" {
			name = constants.None
		}

		_ = categories.Append([]string{name, strconv.Itoa(row.Links)})
	}

	if err := categories.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if report.PurgeJobID != "" {
		_, _ = fmt.Fprintf(w, "Cache purge job: %s\n", report.PurgeJobID)
	}

	if len(report.UnresolvedLogos) > 0 {
		_, _ = fmt.Fprintf(w, "Logos kept unresolved: %d\n", len(report.UnresolvedLogos))
	}

	return nil
}
