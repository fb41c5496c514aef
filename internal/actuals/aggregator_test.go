package actuals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/itaybar/barops/internal/domain/models"
)

func testEvent() models.Event {
	return models.Event{
		ID:         primitive.NewObjectID(),
		GuestCount: 100,
		Price:      10000,
		EventDate:  time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
		StartTime:  "19:00",
		EndTime:    "23:00",
	}
}

func TestComputeActuals_FullBreakdown(t *testing.T) {
	event := testEvent()

	got := ComputeActuals(ComputeInput{
		Event: event,
		WageShifts: []models.WageShift{
			{Wage: 300, Tip: 50},
			{Wage: 300, Tip: 70},
		},
		GeneralExpenses: []models.GeneralExpense{{Amount: 400}},
		AlcoholLines:    []AlcoholLine{{BottlesUsed: 2, ProductPrice: 150}},
		PriorIceExpense: 100,
		EventTypeLabel:  "Private",
		MenuTypeLabel:   "Classic",
	})

	assert.Equal(t, event.ID, got.Event)
	assert.Equal(t, 600.0, got.TotalWages)
	assert.Equal(t, 120.0, got.TotalTips)
	assert.Equal(t, 400.0, got.TotalGeneralExpenses)
	assert.Equal(t, 300.0, got.TotalAlcoholExpenses)
	assert.Equal(t, 100.0, got.IceExpense)
	assert.Equal(t, 100.0, got.TotalIceExpenses)

	// Tips stay out of the expense total.
	assert.Equal(t, 1400.0, got.TotalExpenses)
	assert.Equal(t, 8600.0, got.Profit)
	assert.Equal(t, 86.0, got.ProfitMargin)

	assert.Equal(t, 6.0, got.WagePerHead)
	assert.Equal(t, 100.0, got.RevenuePerHead)
	assert.Equal(t, 14.0, got.TotalExpensePerHead)

	assert.Equal(t, 2, got.TotalStaffCount)
	assert.Equal(t, 300.0, got.AverageWagePerStaff)
	assert.Equal(t, 60.0, got.AverageTipPerStaff)

	assert.Equal(t, 4.0, got.HoursOfOperation)
	assert.Equal(t, 150.0, got.WagePerHour)

	assert.Equal(t, 100, got.GuestCountSnapshot)
	assert.Equal(t, 10000.0, got.PriceSnapshot)
	assert.Equal(t, "Private", got.EventTypeSnapshot)
	assert.Equal(t, "Classic", got.MenuTypeSnapshot)
	if assert.NotNil(t, got.EventDateSnapshot) {
		assert.True(t, got.EventDateSnapshot.Equal(event.EventDate))
	}
}

func TestComputeActuals_ExpenseConservation(t *testing.T) {
	got := ComputeActuals(ComputeInput{
		Event: testEvent(),
		WageShifts: []models.WageShift{
			{Wage: 312.5, Tip: 41},
			{Wage: 287.5, Tip: 12},
			{Wage: 450, Tip: 0},
		},
		GeneralExpenses: []models.GeneralExpense{{Amount: 123.45}, {Amount: 67.8}},
		AlcoholLines:    []AlcoholLine{{BottlesUsed: 3, ProductPrice: 89.9}, {BottlesUsed: 1, ProductPrice: 240}},
		PriorIceExpense: 55,
	})

	sum := got.TotalWages + got.TotalGeneralExpenses + got.TotalAlcoholExpenses + got.TotalIceExpenses
	assert.InDelta(t, sum, got.TotalExpenses, 1e-9)
	assert.InDelta(t, got.PriceSnapshot-got.TotalExpenses, got.Profit, 1e-9)
}

func TestComputeActuals_ZeroGuestsClampsDivisor(t *testing.T) {
	event := testEvent()
	event.GuestCount = 0

	got := ComputeActuals(ComputeInput{
		Event: event,
		WageShifts: []models.WageShift{
			{Wage: 300},
			{Wage: 300},
		},
	})

	assert.Equal(t, 600.0, got.WagePerHead)
	assert.Equal(t, 0, got.GuestCountSnapshot)
}

func TestComputeActuals_NoShifts(t *testing.T) {
	got := ComputeActuals(ComputeInput{Event: testEvent()})

	assert.Equal(t, 0, got.TotalStaffCount)
	assert.Equal(t, 0.0, got.AverageWagePerStaff)
	assert.Equal(t, 0.0, got.AverageTipPerStaff)
	assert.Equal(t, 0.0, got.WagePerHour)
}

func TestComputeActuals_ZeroPriceMargin(t *testing.T) {
	event := testEvent()
	event.Price = 0

	got := ComputeActuals(ComputeInput{
		Event:           event,
		GeneralExpenses: []models.GeneralExpense{{Amount: 200}},
	})

	assert.Equal(t, 0.0, got.ProfitMargin)
	assert.Equal(t, -200.0, got.Profit)
}

func TestComputeActuals_SkipsUnpricedAlcoholLines(t *testing.T) {
	got := ComputeActuals(ComputeInput{
		Event: testEvent(),
		AlcoholLines: []AlcoholLine{
			{BottlesUsed: 2, ProductPrice: 0},
			{BottlesUsed: 0, ProductPrice: 100},
			{BottlesUsed: 4, ProductPrice: 25},
		},
	})

	assert.Equal(t, 100.0, got.TotalAlcoholExpenses)
}

func TestHoursOfOperation(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  float64
	}{
		{"standard evening", "19:00", "23:00", 4},
		{"half hour", "18:30", "22:00", 3.5},
		{"overnight not wrapped", "21:00", "02:00", 0},
		{"equal times", "20:00", "20:00", 0},
		{"missing start", "", "23:00", 0},
		{"missing end", "19:00", "", 0},
		{"malformed hour", "25:00", "26:00", 0},
		{"malformed minute", "19:75", "23:00", 0},
		{"no separator", "1900", "2300", 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, hoursOfOperation(tc.start, tc.end))
		})
	}
}
