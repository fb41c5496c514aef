package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/itaybar/barops/internal/actuals"
)

// ActualsHandler exposes the event actuals endpoints.
type ActualsHandler struct {
	svc    *actuals.Service
	logger *zap.Logger
}

// NewActualsHandler constructs the HTTP handler adapter.
func NewActualsHandler(svc *actuals.Service, logger *zap.Logger) *ActualsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActualsHandler{svc: svc, logger: logger}
}

// List returns every stored snapshot after sweeping invalid ones.
func (h *ActualsHandler) List(c *gin.Context) {
	result, err := h.svc.ListActuals(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing actuals", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"eventActuals": result})
}

// Get returns one event's snapshot, creating a blank one when absent.
func (h *ActualsHandler) Get(c *gin.Context) {
	eventID, ok := objectID(c, "id")
	if !ok {
		return
	}

	actual, err := h.svc.GetOrCreateActuals(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("failed loading actuals", zap.String("event_id", eventID.Hex()), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"eventActual": actual})
}

// Upsert recomputes and stores one event's snapshot.
func (h *ActualsHandler) Upsert(c *gin.Context) {
	eventID, ok := objectID(c, "id")
	if !ok {
		return
	}

	actual, err := h.svc.UpsertActuals(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("failed upserting actuals", zap.String("event_id", eventID.Hex()), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"eventActual": actual,
		"message":     "event actuals saved successfully",
	})
}

type setIceRequest struct {
	IceExpense *float64 `json:"iceExpense" binding:"required"`
}

// SetIce updates only the ice expense of one event's snapshot.
func (h *ActualsHandler) SetIce(c *gin.Context) {
	eventID, ok := objectID(c, "id")
	if !ok {
		return
	}

	var req setIceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "iceExpense is required"})
		return
	}
	if *req.IceExpense < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "iceExpense must not be negative"})
		return
	}

	actual, err := h.svc.SetIceExpense(c.Request.Context(), eventID, *req.IceExpense)
	if err != nil {
		h.logger.Error("failed setting ice expense", zap.String("event_id", eventID.Hex()), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"eventActual": actual})
}

// Sweep deletes snapshots of missing or non-DONE events.
func (h *ActualsHandler) Sweep(c *gin.Context) {
	deleted, err := h.svc.SweepInvalidActuals(c.Request.Context())
	if err != nil {
		h.logger.Error("failed sweeping actuals", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deletedCount": deleted})
}
