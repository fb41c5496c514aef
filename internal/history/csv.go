package history

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/itaybar/barops/internal/actuals"
)

// CSVSource reads history records from a CSV export.
type CSVSource struct {
	path string
}

// NewCSVSource builds a source over the file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Records parses the whole file. The first row must be a header row.
func (s *CSVSource) Records(ctx context.Context) ([]actuals.HistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open history csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse history csv %s: %w", s.path, err)
	}
	if len(rows) > 0 {
		// Strip a UTF-8 BOM left by spreadsheet exports.
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}

	return recordsFromRows(rows)
}
