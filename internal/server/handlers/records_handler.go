package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/itaybar/barops/internal/domain/models"
)

// Repositories for the per-event cost records. Plain CRUD, no workflow
// of their own; recomputing actuals after edits is the caller's call
// (PUT /api/events/:id/actuals).

type WageShiftStore interface {
	FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.WageShift, error)
	Create(ctx context.Context, shift models.WageShift) (models.WageShift, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type GeneralExpenseStore interface {
	FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.GeneralExpense, error)
	Create(ctx context.Context, expense models.GeneralExpense) (models.GeneralExpense, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type AlcoholExpenseStore interface {
	FindByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.AlcoholExpense, error)
	Upsert(ctx context.Context, expense models.AlcoholExpense) (models.AlcoholExpense, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type productReader interface {
	ByID(ctx context.Context, id primitive.ObjectID) (models.InventoryProduct, error)
}

// RecordsHandler exposes the wage shift and expense endpoints.
type RecordsHandler struct {
	shifts   WageShiftStore
	general  GeneralExpenseStore
	alcohol  AlcoholExpenseStore
	products productReader
	logger   *zap.Logger
}

// NewRecordsHandler constructs the HTTP handler adapter.
func NewRecordsHandler(shifts WageShiftStore, general GeneralExpenseStore, alcohol AlcoholExpenseStore, products productReader, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{shifts: shifts, general: general, alcohol: alcohol, products: products, logger: logger}
}

type createShiftRequest struct {
	EmployeeID string  `json:"employeeId"`
	Role       string  `json:"role" binding:"required,oneof=manager bartender logistics"`
	StartTime  string  `json:"startTime" binding:"required"`
	EndTime    string  `json:"endTime" binding:"required"`
	Wage       float64 `json:"wage"`
	Tip        float64 `json:"tip"`
	Paid       bool    `json:"paid"`
	Notes      string  `json:"notes"`
}

// ListShifts returns the wage shifts of one event.
func (h *RecordsHandler) ListShifts(c *gin.Context) {
	eventID, ok := objectID(c, "id")
	if !ok {
		return
	}

	shifts, err := h.shifts.FindByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("failed listing wage shifts", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wageShifts": shifts})
}

// CreateShift adds one wage shift to an event.
func (h *RecordsHandler) CreateShift(c *gin.Context) {
	eventID, ok := objectID(c, "id")
	if !ok {
		return
	}

	var req createShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	shift := models.WageShift{
		Event:     eventID,
		Role:      req.Role,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Wage:      req.Wage,
		Tip:       req.Tip,
		Paid:      req.Paid,
		Notes:     req.Notes,
	}
	if req.EmployeeID != "" {
		employeeID, err := primitive.ObjectIDFromHex(req.EmployeeID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employeeId"})
			return
		}
		shift.Employee = &employeeID
	}

	created, err := h.shifts.Create(c.Request.Context(), shift)
	if err != nil {
		h.logger.Error("failed creating wage shift", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"wageShift": created})
}

// DeleteShift removes one wage shift.
func (h *RecordsHandler) DeleteShift(c *gin.Context) {
	id, ok := objectID(c, "shiftId")
	if !ok {
		return
	}

	if _, err := h.shifts.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createGeneralExpenseRequest struct {
	ExpenseType string  `json:"expenseType" binding:"required"`
	Amount      float64 `json:"amount" binding:"required,gte=0"`
	Notes       string  `json:"notes"`
}

// ListGeneralExpenses returns the general expenses of one event.
func (h *RecordsHandler) ListGeneralExpenses(c *gin.Context) {
	eventID, ok := objectID(c, "id")
	if !ok {
		return
	}

	expenses, err := h.general.FindByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("failed listing general expenses", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"generalExpenses": expenses})
}

// CreateGeneralExpense adds one expense line to an event.
func (h *RecordsHandler) CreateGeneralExpense(c *gin.Context) {
	eventID, ok := objectID(c, "id")
	if !ok {
		return
	}

	var req createGeneralExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.general.Create(c.Request.Context(), models.GeneralExpense{
		Event:       eventID,
		ExpenseType: req.ExpenseType,
		Amount:      req.Amount,
		Notes:       req.Notes,
	})
	if err != nil {
		h.logger.Error("failed creating general expense", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"generalExpense": created})
}

// DeleteGeneralExpense removes one expense line.
func (h *RecordsHandler) DeleteGeneralExpense(c *gin.Context) {
	id, ok := objectID(c, "expenseId")
	if !ok {
		return
	}

	if _, err := h.general.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type upsertAlcoholExpenseRequest struct {
	ProductID   string `json:"productId" binding:"required"`
	BottlesUsed int    `json:"bottlesUsed" binding:"required,gte=0"`
}

// ListAlcoholExpenses returns the alcohol consumption of one event.
func (h *RecordsHandler) ListAlcoholExpenses(c *gin.Context) {
	eventID, ok := objectID(c, "id")
	if !ok {
		return
	}

	expenses, err := h.alcohol.FindByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("failed listing alcohol expenses", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alcoholExpenses": expenses})
}

// UpsertAlcoholExpense records a product's consumption at an event.
// One row per (event, product): posting again replaces the bottle
// count.
func (h *RecordsHandler) UpsertAlcoholExpense(c *gin.Context) {
	eventID, ok := objectID(c, "id")
	if !ok {
		return
	}

	var req upsertAlcoholExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
		return
	}

	product, err := h.products.ByID(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	saved, err := h.alcohol.Upsert(c.Request.Context(), models.AlcoholExpense{
		Event:       eventID,
		Product:     productID,
		BottlesUsed: req.BottlesUsed,
		TotalAmount: float64(req.BottlesUsed) * product.Price,
	})
	if err != nil {
		h.logger.Error("failed upserting alcohol expense", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alcoholExpense": saved})
}

// DeleteAlcoholExpense removes one consumption record.
func (h *RecordsHandler) DeleteAlcoholExpense(c *gin.Context) {
	id, ok := objectID(c, "expenseId")
	if !ok {
		return
	}

	if _, err := h.alcohol.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
