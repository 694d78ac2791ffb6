// Package excel writes a local workbook copy of each batch report so
// staff can review results without spreadsheet access.
package excel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
)

var columnHeaders = []string{
	"First Name",
	"Last Name",
	"Email Address",
	"Positive or Negative?",
	"Date Received",
	"Email Text/Synopsis of Conversation/Notes",
	"Paused Giving OR Changed bequest intent?",
	"Needs Review?",
}

const dateLayout = "2006-01-02 15:04:05"

type Exporter struct {
	dir    string
	logger *slog.Logger
}

func NewExporter(dir string, logger *slog.Logger) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{dir: dir, logger: logger}, nil
}

// Export writes one workbook per batch. Kept rows land on a Results
// sheet; retained topic clusters each get their own sheet.
func (e *Exporter) Export(ctx context.Context, report *domain.BatchReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const mainSheet = "Results"
	if err := f.SetSheetName("Sheet1", mainSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	main, clustered := splitRows(report.Rows)
	if err := writeRows(f, mainSheet, main); err != nil {
		return err
	}

	// One sheet per cluster tab key, in a stable order.
	keys := make([]string, 0, len(clustered))
	for key := range clustered {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		sheet := sanitizeSheetName(key)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %q: %w", sheet, err)
		}
		if err := writeRows(f, sheet, clustered[key]); err != nil {
			return err
		}
	}

	path := filepath.Join(e.dir, fmt.Sprintf("batch-%s.xlsx", report.BatchID))
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	e.logger.Info("report_exported", "batch_id", report.BatchID, "path", path, "rows", len(report.Rows))
	return nil
}

// splitRows separates the main feed from cluster rows, keyed by the
// same tab name the sheet sink uses.
func splitRows(rows []domain.OutputRow) ([]domain.OutputRow, map[string][]domain.OutputRow) {
	main := make([]domain.OutputRow, 0, len(rows))
	clustered := make(map[string][]domain.OutputRow)
	for _, row := range rows {
		if row.ClusterKey == "" {
			main = append(main, row)
			continue
		}
		clustered[row.ClusterKey] = append(clustered[row.ClusterKey], row)
	}
	return main, clustered
}

func writeRows(f *excelize.File, sheet string, rows []domain.OutputRow) error {
	header := make([]any, len(columnHeaders))
	for i, h := range columnHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header on %q: %w", sheet, err)
	}

	for i, row := range rows {
		needsReview := ""
		if row.NeedsReview {
			needsReview = "Yes"
		}
		values := []any{
			row.FirstName,
			row.LastName,
			row.Address,
			string(row.Sentiment),
			row.ReceivedAt.UTC().Format(dateLayout),
			row.Body,
			row.GivingStatus,
			needsReview,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row on %q: %w", sheet, err)
		}
	}
	return nil
}

var sheetNameReplacer = strings.NewReplacer(
	"/", " ", "\\", " ", "?", "", "*", "",
	"[", "(", "]", ")", ":", "-",
)

// sanitizeSheetName keeps entity names inside the 31-char workbook
// sheet limit and strips characters the format forbids.
func sanitizeSheetName(name string) string {
	name = sheetNameReplacer.Replace(name)
	if len(name) > 31 {
		name = name[:31]
	}
	if name == "" {
		name = "Cluster"
	}
	return name
}
