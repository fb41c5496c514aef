package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsFromRows(t *testing.T) {
	rows := [][]string{
		{"eventNumber", "totalWages", "totalTips", "totalGeneralExpenses", "totalAlcoholExpenses", "iceExpense", "revenue", "carType"},
		{"12", "1,200", "150", "300.5", "450", "90", "8000", "van"},
		{"13", "600", "", "", "", "", "5000", ""},
		{"", "999", "", "", "", "", "", ""},
		{"abc", "999", "", "", "", "", "", ""},
	}

	records, err := recordsFromRows(rows)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, int64(12), first.EventNumber)
	assert.Equal(t, 1200.0, first.TotalWages)
	assert.Equal(t, 150.0, first.TotalTips)
	assert.Equal(t, 300.5, first.TotalGeneralExpenses)
	assert.Equal(t, 450.0, first.TotalAlcoholExpenses)
	assert.Equal(t, 90.0, first.IceExpense)
	assert.Equal(t, 8000.0, first.Revenue)
	assert.Equal(t, "van", first.CarType)

	second := records[1]
	assert.Equal(t, int64(13), second.EventNumber)
	assert.Equal(t, 0.0, second.TotalTips)
	assert.Equal(t, "transporter", second.CarType)
}

func TestRecordsFromRows_LegacyRevenueHeader(t *testing.T) {
	rows := [][]string{
		{"eventNumber", "הכנסות"},
		{"5", "7500"},
	}

	records, err := recordsFromRows(rows)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 7500.0, records[0].Revenue)
}

func TestRecordsFromRows_MissingEventNumberColumn(t *testing.T) {
	_, err := recordsFromRows([][]string{{"totalWages"}, {"100"}})
	assert.Error(t, err)
}

func TestRecordsFromRows_Empty(t *testing.T) {
	_, err := recordsFromRows(nil)
	assert.Error(t, err)
}

func TestCSVSource_Records(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	content := "\uFEFFeventNumber,totalWages,revenue\n21,500,4000\n22,700,6000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	records, err := NewCSVSource(path).Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, int64(21), records[0].EventNumber)
	assert.Equal(t, 500.0, records[0].TotalWages)
	assert.Equal(t, 6000.0, records[1].Revenue)
}

func TestCSVSource_MissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv")).Records(context.Background())
	assert.Error(t, err)
}
