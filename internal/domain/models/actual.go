package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventActual is the single financial snapshot kept per DONE event.
// Every numeric field except IceExpense is derived by the aggregator;
// IceExpense is direct input and is carried forward between recomputes.
type EventActual struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Event   primitive.ObjectID `bson:"event" json:"event"`
	CarType string             `bson:"carType,omitempty" json:"carType,omitempty"`

	IceExpense float64 `bson:"iceExpense" json:"iceExpense"`

	// Aggregated totals.
	TotalWages           float64 `bson:"totalWages" json:"totalWages"`
	TotalTips            float64 `bson:"totalTips" json:"totalTips"`
	TotalGeneralExpenses float64 `bson:"totalGeneralExpenses" json:"totalGeneralExpenses"`
	TotalAlcoholExpenses float64 `bson:"totalAlcoholExpenses" json:"totalAlcoholExpenses"`
	TotalIceExpenses     float64 `bson:"totalIceExpenses" json:"totalIceExpenses"`

	// Derived totals. Tips are pass-through money and are excluded
	// from TotalExpenses.
	TotalExpenses float64 `bson:"totalExpenses" json:"totalExpenses"`
	Profit        float64 `bson:"profit" json:"profit"`
	ProfitMargin  float64 `bson:"profitMargin" json:"profitMargin"`

	// Per-head metrics, guest count clamped to at least 1.
	WagePerHead           float64 `bson:"wagePerHead" json:"wagePerHead"`
	TipPerHead            float64 `bson:"tipPerHead" json:"tipPerHead"`
	AlcoholPerHead        float64 `bson:"alcoholPerHead" json:"alcoholPerHead"`
	GeneralExpensePerHead float64 `bson:"generalExpensePerHead" json:"generalExpensePerHead"`
	TotalExpensePerHead   float64 `bson:"totalExpensePerHead" json:"totalExpensePerHead"`
	RevenuePerHead        float64 `bson:"revenuePerHead" json:"revenuePerHead"`

	// Event snapshots, denormalized for historical reporting.
	GuestCountSnapshot int        `bson:"guestCountSnapshot" json:"guestCountSnapshot"`
	PriceSnapshot      float64    `bson:"priceSnapshot" json:"priceSnapshot"`
	EventDateSnapshot  *time.Time `bson:"eventDateSnapshot,omitempty" json:"eventDateSnapshot,omitempty"`
	EventTypeSnapshot  string     `bson:"eventTypeSnapshot,omitempty" json:"eventTypeSnapshot,omitempty"`
	MenuTypeSnapshot   string     `bson:"menuTypeSnapshot,omitempty" json:"menuTypeSnapshot,omitempty"`

	// Staff metrics.
	TotalStaffCount     int     `bson:"totalStaffCount" json:"totalStaffCount"`
	AverageWagePerStaff float64 `bson:"averageWagePerStaff" json:"averageWagePerStaff"`
	AverageTipPerStaff  float64 `bson:"averageTipPerStaff" json:"averageTipPerStaff"`

	// Operational metrics.
	HoursOfOperation float64 `bson:"hoursOfOperation" json:"hoursOfOperation"`
	WagePerHour      float64 `bson:"wagePerHour" json:"wagePerHour"`

	LastSaved time.Time `bson:"lastSaved" json:"lastSaved"`
}
