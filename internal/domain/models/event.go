package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event lifecycle status codes. The set is open: statuses live in the
// event_statuses lookup collection and these are only the codes the
// core logic branches on.
const (
	StatusNotClosed = "NOT_CLOSED"
	StatusClosed    = "CLOSED"
	StatusLost      = "LOST"
	StatusDone      = "DONE"
	StatusPositive  = "POSITIVE"
	StatusPostponed = "POSTPONED"
)

// Event is a booked (or prospective) bar-service engagement.
type Event struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventNumber  int64               `bson:"eventNumber" json:"eventNumber"`
	CustomerName string              `bson:"customerName" json:"customerName"`
	Customer     *primitive.ObjectID `bson:"customer,omitempty" json:"customer,omitempty"`
	EventDate    time.Time           `bson:"eventDate" json:"eventDate"`
	Address      string              `bson:"address,omitempty" json:"address,omitempty"`
	GuestCount   int                 `bson:"guestCount" json:"guestCount"`

	// "HH:mm" strings, empty when not yet known.
	StartTime string `bson:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime   string `bson:"endTime,omitempty" json:"endTime,omitempty"`

	EventType  string `bson:"eventType" json:"eventType"`
	MenuType   string `bson:"menuType" json:"menuType"`
	LeadSource string `bson:"leadSource" json:"leadSource"`
	Status     string `bson:"status" json:"status"`

	Price       float64 `bson:"price" json:"price"`
	DepositPaid float64 `bson:"depositPaid" json:"depositPaid"`
	Notes       string  `bson:"notes,omitempty" json:"notes,omitempty"`

	PromisedStaffCount int        `bson:"promisedStaffCount" json:"promisedStaffCount"`
	ClosedAt           *time.Time `bson:"closedAt,omitempty" json:"closedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
