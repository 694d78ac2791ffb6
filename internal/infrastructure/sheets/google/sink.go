// Package google persists output rows to a Google Spreadsheet, one
// worksheet per month or topic cluster.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
	"github.com/advancementhq/feedback-pipeline/internal/infrastructure/resilience"
)

var headerRow = []any{
	"First Name",
	"Last Name",
	"Email Address",
	"Positive or Negative?",
	"Date Received",
	"Email Text/Synopsis of Conversation/Notes",
	"Paused Giving OR Changed bequest intent?",
	"Needs Review?",
}

var monthMarkers = []string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

const dateLayout = "2006-01-02 15:04:05"

type Sink struct {
	service       *sheets.Service
	spreadsheetID string
	executor      *resilience.Executor
	logger        *slog.Logger

	mu        sync.Mutex
	knownTabs map[string]bool
}

func NewSink(ctx context.Context, client *http.Client, spreadsheetID string, executor *resilience.Executor, logger *slog.Logger) (*Sink, error) {
	service, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		service:       service,
		spreadsheetID: spreadsheetID,
		executor:      executor,
		logger:        logger,
		knownTabs:     make(map[string]bool),
	}, nil
}

// AppendRows writes the rows to the named tab, creating the tab with a
// header row on first use.
func (s *Sink) AppendRows(ctx context.Context, tab string, rows []domain.OutputRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := s.ensureTab(ctx, tab); err != nil {
		return err
	}

	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		values = append(values, encodeRow(row))
	}

	err := s.call(ctx, "sheets.append", func(callCtx context.Context) error {
		_, err := s.service.Spreadsheets.Values.Append(
			s.spreadsheetID,
			fmt.Sprintf("'%s'!A:H", tab),
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Context(callCtx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("append rows to %q: %w", tab, err)
	}

	s.logger.Info("rows_appended", "tab", tab, "rows", len(rows))
	return nil
}

// ReadRows collects rows across every month tab whose received date
// falls inside [since, until). Topic tabs are skipped: their rows are
// duplicates of the clustering pass, not extra mail.
func (s *Sink) ReadRows(ctx context.Context, since, until time.Time) ([]domain.OutputRow, error) {
	meta, err := s.service.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}

	var out []domain.OutputRow
	for _, sheet := range meta.Sheets {
		title := sheet.Properties.Title
		if !isMonthTab(title) {
			continue
		}

		resp, err := s.service.Spreadsheets.Values.Get(
			s.spreadsheetID,
			fmt.Sprintf("'%s'!A:H", title),
		).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("read tab %q: %w", title, err)
		}

		for i, raw := range resp.Values {
			if i == 0 {
				continue // header
			}
			row, ok := decodeRow(raw)
			if !ok {
				continue
			}
			if row.ReceivedAt.Before(since) || !row.ReceivedAt.Before(until) {
				continue
			}
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *Sink) ensureTab(ctx context.Context, tab string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.knownTabs[tab] {
		return nil
	}

	meta, err := s.service.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sheet := range meta.Sheets {
		s.knownTabs[sheet.Properties.Title] = true
	}
	if s.knownTabs[tab] {
		return nil
	}

	err = s.call(ctx, "sheets.add_tab", func(callCtx context.Context) error {
		_, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: tab},
				},
			}},
		}).Context(callCtx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("create tab %q: %w", tab, err)
	}

	err = s.call(ctx, "sheets.append", func(callCtx context.Context) error {
		_, err := s.service.Spreadsheets.Values.Append(
			s.spreadsheetID,
			fmt.Sprintf("'%s'!A:H", tab),
			&sheets.ValueRange{Values: [][]any{headerRow}},
		).ValueInputOption("USER_ENTERED").Context(callCtx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("write header to %q: %w", tab, err)
	}

	s.knownTabs[tab] = true
	s.logger.Info("tab_created", "tab", tab)
	return nil
}

func (s *Sink) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	if s.executor == nil {
		return fn(ctx)
	}
	return s.executor.Execute(ctx, operation, fn, classifySheetsError)
}

func encodeRow(row domain.OutputRow) []any {
	needsReview := ""
	if row.NeedsReview {
		needsReview = "Yes"
	}
	return []any{
		row.FirstName,
		row.LastName,
		row.Address,
		string(row.Sentiment),
		row.ReceivedAt.UTC().Format(dateLayout),
		row.Body,
		row.GivingStatus,
		needsReview,
	}
}

func decodeRow(raw []any) (domain.OutputRow, bool) {
	if len(raw) < 7 {
		return domain.OutputRow{}, false
	}
	received, err := time.Parse(dateLayout, cell(raw, 4))
	if err != nil {
		return domain.OutputRow{}, false
	}

	row := domain.OutputRow{
		FirstName:    cell(raw, 0),
		LastName:     cell(raw, 1),
		Address:      cell(raw, 2),
		Sentiment:    domain.ResolvedSentiment(cell(raw, 3)),
		ReceivedAt:   received.UTC(),
		Body:         cell(raw, 5),
		GivingStatus: cell(raw, 6),
		NeedsReview:  cell(raw, 7) == "Yes",
	}
	return row, true
}

func cell(raw []any, i int) string {
	if i >= len(raw) {
		return ""
	}
	s, _ := raw[i].(string)
	return strings.TrimSpace(s)
}

func isMonthTab(title string) bool {
	lower := strings.ToLower(title)
	if strings.Contains(lower, " - ") {
		return false // topic tab
	}
	for _, marker := range monthMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
