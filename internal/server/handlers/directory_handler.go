package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/itaybar/barops/internal/domain/models"
)

type CustomerStore interface {
	List(ctx context.Context) ([]models.Customer, error)
	ByID(ctx context.Context, id primitive.ObjectID) (models.Customer, error)
	Create(ctx context.Context, customer models.Customer) (models.Customer, error)
	Update(ctx context.Context, id primitive.ObjectID, patch bson.M) (models.Customer, error)
}

type LeadStore interface {
	List(ctx context.Context) ([]models.Lead, error)
	Create(ctx context.Context, lead models.Lead) (models.Lead, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
}

type ProductStore interface {
	List(ctx context.Context) ([]models.InventoryProduct, error)
	ByID(ctx context.Context, id primitive.ObjectID) (models.InventoryProduct, error)
	Create(ctx context.Context, product models.InventoryProduct) (models.InventoryProduct, error)
	SetPrice(ctx context.Context, id primitive.ObjectID, price float64) error
}

type LookupLister interface {
	List(ctx context.Context, category string) ([]models.LookupItem, error)
}

// DirectoryHandler exposes the customer, lead, inventory and lookup
// endpoints.
type DirectoryHandler struct {
	customers CustomerStore
	leads     LeadStore
	products  ProductStore
	lookups   LookupLister
	logger    *zap.Logger
}

// NewDirectoryHandler constructs the HTTP handler adapter.
func NewDirectoryHandler(customers CustomerStore, leads LeadStore, products ProductStore, lookups LookupLister, logger *zap.Logger) *DirectoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryHandler{customers: customers, leads: leads, products: products, lookups: lookups, logger: logger}
}

// ListCustomers returns all customers.
func (h *DirectoryHandler) ListCustomers(c *gin.Context) {
	customers, err := h.customers.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing customers", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// GetCustomer returns one customer.
func (h *DirectoryHandler) GetCustomer(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customers.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

type createCustomerRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	IsBusiness bool   `json:"isBusiness"`
}

// CreateCustomer stores a new customer.
func (h *DirectoryHandler) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	customer, err := h.customers.Create(c.Request.Context(), models.Customer{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Company:    req.Company,
		IsBusiness: req.IsBusiness,
	})
	if err != nil {
		h.logger.Error("failed creating customer", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

type updateCustomerRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Company    *string `json:"company"`
	IsBusiness *bool   `json:"isBusiness"`
	IsActive   *bool   `json:"isActive"`
}

// UpdateCustomer applies a partial update; nil fields are untouched.
func (h *DirectoryHandler) UpdateCustomer(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	patch := bson.M{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Email != nil {
		patch["email"] = *req.Email
	}
	if req.Phone != nil {
		patch["phone"] = *req.Phone
	}
	if req.Company != nil {
		patch["company"] = *req.Company
	}
	if req.IsBusiness != nil {
		patch["isBusiness"] = *req.IsBusiness
	}
	if req.IsActive != nil {
		patch["isActive"] = *req.IsActive
	}
	if len(patch) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty update"})
		return
	}

	customer, err := h.customers.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// ListLeads returns all leads.
func (h *DirectoryHandler) ListLeads(c *gin.Context) {
	leads, err := h.leads.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing leads", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

type createLeadRequest struct {
	FullName      string     `json:"fullName" binding:"required"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Message       string     `json:"message"`
	EventDate     *time.Time `json:"eventDate"`
	EventLocation string     `json:"eventLocation"`
	GuestCount    int        `json:"guestCount"`
	Source        string     `json:"source" binding:"required"`
}

// CreateLead stores a new lead.
func (h *DirectoryHandler) CreateLead(c *gin.Context) {
	var req createLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	lead, err := h.leads.Create(c.Request.Context(), models.Lead{
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		Message:       req.Message,
		EventDate:     req.EventDate,
		EventLocation: req.EventLocation,
		GuestCount:    req.GuestCount,
		Source:        req.Source,
	})
	if err != nil {
		h.logger.Error("failed creating lead", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"lead": lead})
}

type setLeadStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetLeadStatus updates a lead's pipeline status.
func (h *DirectoryHandler) SetLeadStatus(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	var req setLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.leads.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListProducts returns the inventory.
func (h *DirectoryHandler) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing products", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

type createProductRequest struct {
	Code     string  `json:"code" binding:"required"`
	Label    string  `json:"label" binding:"required"`
	Category string  `json:"category"`
	VolumeMl float64 `json:"volumeMl"`
	Price    float64 `json:"price"`
	NetPrice float64 `json:"netPrice"`
}

// CreateProduct stores a new inventory product.
func (h *DirectoryHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.products.Create(c.Request.Context(), models.InventoryProduct{
		Code:     req.Code,
		Label:    req.Label,
		Category: req.Category,
		VolumeMl: req.VolumeMl,
		Price:    req.Price,
		NetPrice: req.NetPrice,
		IsActive: true,
	})
	if err != nil {
		h.logger.Error("failed creating product", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

type setPriceRequest struct {
	Price float64 `json:"price" binding:"gte=0"`
}

// SetProductPrice updates a product's current price. Alcohol costs in
// recomputed actuals follow the new price.
func (h *DirectoryHandler) SetProductPrice(c *gin.Context) {
	id, ok := objectID(c, "id")
	if !ok {
		return
	}

	var req setPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.products.SetPrice(c.Request.Context(), id, req.Price); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListLookup returns the rows of one classification table.
func (h *DirectoryHandler) ListLookup(category string) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.lookups.List(c.Request.Context(), category)
		if err != nil {
			h.logger.Error("failed listing lookup", zap.String("category", category), zap.Error(err))
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}
