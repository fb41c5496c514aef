package actuals

import (
	"strconv"
	"strings"

	"github.com/itaybar/barops/internal/domain/models"
)

// AlcoholLine is one alcohol expense with its product price already
// resolved. Pricing uses the product's current price, not the price at
// time of use, so late price updates shift historical alcohol cost.
type AlcoholLine struct {
	BottlesUsed  int
	ProductPrice float64
}

// ComputeInput carries everything the aggregator needs for one event.
type ComputeInput struct {
	Event           models.Event
	WageShifts      []models.WageShift
	GeneralExpenses []models.GeneralExpense
	AlcoholLines    []AlcoholLine

	// Ice cost carried from the previously stored snapshot; it is
	// additive input, never recomputed.
	PriorIceExpense float64

	// Resolved classification labels for the denormalized snapshots.
	EventTypeLabel string
	MenuTypeLabel  string
}

// rawTotals are the aggregated cost figures everything else derives
// from. price rides along so the reconciliation path can substitute a
// historical revenue figure.
type rawTotals struct {
	wages   float64
	tips    float64
	general float64
	alcohol float64
	ice     float64
	price   float64
}

// ComputeActuals derives the full financial snapshot for one event.
// Pure: identical inputs produce identical output, and missing numeric
// inputs degrade to zero instead of erroring. LastSaved is left for the
// caller to set.
func ComputeActuals(in ComputeInput) models.EventActual {
	t := sumRawRecords(in)
	t.ice = in.PriorIceExpense
	t.price = in.Event.Price

	return derive(in.Event, t, len(in.WageShifts), in.EventTypeLabel, in.MenuTypeLabel)
}

func sumRawRecords(in ComputeInput) rawTotals {
	var t rawTotals
	for _, s := range in.WageShifts {
		t.wages += s.Wage
		t.tips += s.Tip
	}
	for _, e := range in.GeneralExpenses {
		t.general += e.Amount
	}
	for _, l := range in.AlcoholLines {
		if l.BottlesUsed <= 0 || l.ProductPrice <= 0 {
			continue
		}
		t.alcohol += float64(l.BottlesUsed) * l.ProductPrice
	}
	return t
}

func derive(event models.Event, t rawTotals, staffCount int, eventTypeLabel, menuTypeLabel string) models.EventActual {
	// Tips belong to the staff, not the business, so they stay out of
	// the expense total.
	totalExpenses := t.wages + t.general + t.alcohol + t.ice

	profit := t.price - totalExpenses
	var profitMargin float64
	if t.price > 0 {
		profitMargin = profit / t.price * 100
	}

	heads := float64(event.GuestCount)
	if heads < 1 {
		heads = 1
	}

	var avgWage, avgTip float64
	if staffCount > 0 {
		avgWage = t.wages / float64(staffCount)
		avgTip = t.tips / float64(staffCount)
	}

	hours := hoursOfOperation(event.StartTime, event.EndTime)
	var wagePerHour float64
	if hours > 0 {
		wagePerHour = t.wages / hours
	}

	eventDate := event.EventDate

	return models.EventActual{
		Event:      event.ID,
		IceExpense: t.ice,

		TotalWages:           t.wages,
		TotalTips:            t.tips,
		TotalGeneralExpenses: t.general,
		TotalAlcoholExpenses: t.alcohol,
		TotalIceExpenses:     t.ice,

		TotalExpenses: totalExpenses,
		Profit:        profit,
		ProfitMargin:  profitMargin,

		WagePerHead:           t.wages / heads,
		TipPerHead:            t.tips / heads,
		AlcoholPerHead:        t.alcohol / heads,
		GeneralExpensePerHead: t.general / heads,
		TotalExpensePerHead:   totalExpenses / heads,
		RevenuePerHead:        t.price / heads,

		GuestCountSnapshot: event.GuestCount,
		PriceSnapshot:      t.price,
		EventDateSnapshot:  &eventDate,
		EventTypeSnapshot:  eventTypeLabel,
		MenuTypeSnapshot:   menuTypeLabel,

		TotalStaffCount:     staffCount,
		AverageWagePerStaff: avgWage,
		AverageTipPerStaff:  avgTip,

		HoursOfOperation: hours,
		WagePerHour:      wagePerHour,
	}
}

// hoursOfOperation turns two "HH:mm" strings into an hour count.
// Returns 0 when either time is absent or malformed, or when the raw
// difference is not positive. Overnight events are not wrapped; events
// ending past midnight simply report 0 hours.
func hoursOfOperation(start, end string) float64 {
	startMin, ok := parseClock(start)
	if !ok {
		return 0
	}
	endMin, ok := parseClock(end)
	if !ok {
		return 0
	}

	hours := float64(endMin-startMin) / 60
	if hours <= 0 {
		return 0
	}
	return hours
}

func parseClock(value string) (int, bool) {
	h, m, found := strings.Cut(value, ":")
	if !found {
		return 0, false
	}

	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}

	return hours*60 + minutes, true
}
