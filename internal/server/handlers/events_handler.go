package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	eventsvc "github.com/itaybar/barops/internal/service/events"
)

// EventsHandler exposes the booking endpoints.
type EventsHandler struct {
	svc    *eventsvc.Service
	logger *zap.Logger
}

// NewEventsHandler constructs the HTTP handler adapter.
func NewEventsHandler(svc *eventsvc.Service, logger *zap.Logger) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{svc: svc, logger: logger}
}

type createEventRequest struct {
	EventNumber    int64     `json:"eventNumber"`
	CustomerName   string    `json:"customerName" binding:"required"`
	CustomerID     string    `json:"customerId"`
	EventDate      time.Time `json:"eventDate" binding:"required"`
	Address        string    `json:"address"`
	GuestCount     int       `json:"guestCount"`
	StartTime      string    `json:"startTime"`
	EndTime        string    `json:"endTime"`
	Price          float64   `json:"price"`
	DepositPaid    float64   `json:"depositPaid"`
	Notes          string    `json:"notes"`
	EventTypeCode  string    `json:"eventTypeCode"`
	MenuTypeCode   string    `json:"menuTypeCode"`
	LeadSourceCode string    `json:"leadSourceCode"`
	StatusCode     string    `json:"statusCode"`
	LeadID         string    `json:"leadId"`
}

type updateEventRequest struct {
	CustomerName *string    `json:"customerName"`
	EventDate    *time.Time `json:"eventDate"`
	Address      *string    `json:"address"`
	GuestCount   *int       `json:"guestCount"`
	StartTime    *string    `json:"startTime"`
	EndTime      *string    `json:"endTime"`
	Price        *float64   `json:"price"`
	DepositPaid  *float64   `json:"depositPaid"`
	Notes        *string    `json:"notes"`

	EventTypeCode *string `json:"eventTypeCode"`
	MenuTypeCode  *string `json:"menuTypeCode"`
	StatusCode    *string `json:"statusCode"`
}

// List returns all events.
func (h *EventsHandler) List(c *gin.Context) {
	events, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing events", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// Get returns one event.
func (h *EventsHandler) Get(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	event, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event})
}

// Create stores a new event.
func (h *EventsHandler) Create(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input := eventsvc.CreateInput{
		EventNumber:    req.EventNumber,
		CustomerName:   req.CustomerName,
		EventDate:      req.EventDate,
		Address:        req.Address,
		GuestCount:     req.GuestCount,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Price:          req.Price,
		DepositPaid:    req.DepositPaid,
		Notes:          req.Notes,
		EventTypeCode:  req.EventTypeCode,
		MenuTypeCode:   req.MenuTypeCode,
		LeadSourceCode: req.LeadSourceCode,
		StatusCode:     req.StatusCode,
	}

	if req.CustomerID != "" {
		customerID, err := primitive.ObjectIDFromHex(req.CustomerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customerId"})
			return
		}
		input.CustomerID = &customerID
	}
	if req.LeadID != "" {
		leadID, err := primitive.ObjectIDFromHex(req.LeadID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid leadId"})
			return
		}
		input.LeadID = &leadID
	}

	event, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("failed creating event", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": event})
}

// Update applies a partial update; status changes drive the actuals
// lifecycle.
func (h *EventsHandler) Update(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	event, err := h.svc.Update(c.Request.Context(), id, eventsvc.UpdateInput{
		CustomerName:  req.CustomerName,
		EventDate:     req.EventDate,
		Address:       req.Address,
		GuestCount:    req.GuestCount,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Price:         req.Price,
		DepositPaid:   req.DepositPaid,
		Notes:         req.Notes,
		EventTypeCode: req.EventTypeCode,
		MenuTypeCode:  req.MenuTypeCode,
		StatusCode:    req.StatusCode,
	})
	if err != nil {
		h.logger.Error("failed updating event", zap.String("event_id", id.Hex()), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event})
}

// Delete removes an event and its child records.
func (h *EventsHandler) Delete(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("failed deleting event", zap.String("event_id", id.Hex()), zap.Error(err))
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
