package history

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/itaybar/barops/internal/actuals"
	"github.com/itaybar/barops/internal/config"
)

// SheetSource reads history records straight from the bookkeeping
// spreadsheet, using the same columns as the CSV export.
type SheetSource struct {
	service       *sheetsapi.Service
	spreadsheetID string
	readRange     string
	logger        *zap.Logger
}

// NewSheetSource builds a Google Sheets backed history source.
func NewSheetSource(ctx context.Context, cfg config.SheetsConfig, readRange string, logger *zap.Logger) (*SheetSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if readRange == "" {
		return nil, fmt.Errorf("sheet range must not be empty")
	}

	service, err := sheetsapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsPath),
		option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &SheetSource{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		readRange:     readRange,
		logger:        logger,
	}, nil
}

// Records fetches the configured range and maps it to history records.
func (s *SheetSource) Records(ctx context.Context) ([]actuals.HistoryRecord, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", s.readRange, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, 0, len(row))
		for _, value := range row {
			cells = append(cells, fmt.Sprint(value))
		}
		rows = append(rows, cells)
	}

	s.logger.Debug("history rows fetched from sheet",
		zap.String("range", s.readRange),
		zap.Int("rows", len(rows)))

	return recordsFromRows(rows)
}
