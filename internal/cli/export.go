package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/existflow/eisenhower/internal/export"
	"github.com/existflow/eisenhower/internal/logger"
	"github.com/existflow/eisenhower/internal/model"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks as CSV or printable HTML",
	Long: `Export every task as CSV or as an HTML page for printing.

Examples:
  eisenhower export > tasks.csv
  eisenhower export --format html --output tasks.html`,
	RunE: runExport,
}

var (
	exportFormat string
	exportOutput string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "F", export.FormatCSV, "Output format (csv, html)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	all := a.tasks.All()
	if exportOutput == "" {
		if err := export.Write(cmd.OutOrStdout(), exportFormat, all, time.Now()); err != nil {
			return err
		}
	} else if err := writeExportFile(exportOutput, exportFormat, all); err != nil {
		return err
	}

	logger.Info("Tasks exported", logger.F("format", exportFormat), logger.F("count", len(all)))
	if exportOutput != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d tasks to %s\n", len(all), exportOutput)
	}
	return nil
}

// writeExportFile renders into path, reporting write and close failures
func writeExportFile(path, format string, list []model.Task) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to write %s: %w", path, cerr)
		}
	}()
	return export.Write(f, format, list, time.Now())
}
