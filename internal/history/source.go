// Package history provides reconciliation record sources: the CSV
// export of the old bookkeeping and the Google Sheet it came from.
package history

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/itaybar/barops/internal/actuals"
)

// Column headers recognized in both sources. The legacy spreadsheet
// labels the revenue column in Hebrew.
const (
	colEventNumber     = "eventNumber"
	colTotalWages      = "totalWages"
	colTotalTips       = "totalTips"
	colGeneralExpenses = "totalGeneralExpenses"
	colAlcoholExpenses = "totalAlcoholExpenses"
	colIceExpense      = "iceExpense"
	colRevenue         = "revenue"
	colRevenueLegacy   = "הכנסות"
	colCarType         = "carType"
)

const defaultCarType = "transporter"

// recordsFromRows turns a header row plus data rows into history
// records. Unknown columns are ignored; unparseable numbers degrade to
// zero, matching the leniency of the live aggregation.
func recordsFromRows(rows [][]string) ([]actuals.HistoryRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("history source is empty")
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	if _, ok := index[colEventNumber]; !ok {
		return nil, fmt.Errorf("history source is missing the %s column", colEventNumber)
	}

	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]actuals.HistoryRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		eventNumber := parseInt(cell(row, colEventNumber))
		if eventNumber == 0 {
			continue
		}

		revenue := parseFloat(cell(row, colRevenue))
		if revenue == 0 {
			revenue = parseFloat(cell(row, colRevenueLegacy))
		}

		carType := cell(row, colCarType)
		if carType == "" {
			carType = defaultCarType
		}

		records = append(records, actuals.HistoryRecord{
			EventNumber:          eventNumber,
			TotalWages:           parseFloat(cell(row, colTotalWages)),
			TotalTips:            parseFloat(cell(row, colTotalTips)),
			TotalGeneralExpenses: parseFloat(cell(row, colGeneralExpenses)),
			TotalAlcoholExpenses: parseFloat(cell(row, colAlcoholExpenses)),
			IceExpense:           parseFloat(cell(row, colIceExpense)),
			Revenue:              revenue,
			CarType:              carType,
		})
	}

	return records, nil
}

func parseInt(value string) int64 {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(value string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}
