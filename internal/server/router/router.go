package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itaybar/barops/internal/domain/models"
	"github.com/itaybar/barops/internal/server/handlers"
)

// Handlers groups the HTTP adapters wired into the engine.
type Handlers struct {
	Events    *handlers.EventsHandler
	Actuals   *handlers.ActualsHandler
	Records   *handlers.RecordsHandler
	Directory *handlers.DirectoryHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(corsMiddleware())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// Static actuals routes must register before /events/:id.
		api.GET("/events/actuals", h.Actuals.List)
		api.POST("/events/actuals/sweep", h.Actuals.Sweep)

		api.GET("/events", h.Events.List)
		api.POST("/events", h.Events.Create)
		api.GET("/events/:id", h.Events.Get)
		api.PUT("/events/:id", h.Events.Update)
		api.DELETE("/events/:id", h.Events.Delete)

		api.GET("/events/:id/actuals", h.Actuals.Get)
		api.PUT("/events/:id/actuals", h.Actuals.Upsert)
		api.PATCH("/events/:id/actuals/ice", h.Actuals.SetIce)

		api.GET("/events/:id/wage-shifts", h.Records.ListShifts)
		api.POST("/events/:id/wage-shifts", h.Records.CreateShift)
		api.DELETE("/events/:id/wage-shifts/:shiftId", h.Records.DeleteShift)

		api.GET("/events/:id/general-expenses", h.Records.ListGeneralExpenses)
		api.POST("/events/:id/general-expenses", h.Records.CreateGeneralExpense)
		api.DELETE("/events/:id/general-expenses/:expenseId", h.Records.DeleteGeneralExpense)

		api.GET("/events/:id/alcohol-expenses", h.Records.ListAlcoholExpenses)
		api.POST("/events/:id/alcohol-expenses", h.Records.UpsertAlcoholExpense)
		api.DELETE("/events/:id/alcohol-expenses/:expenseId", h.Records.DeleteAlcoholExpense)

		api.GET("/customers", h.Directory.ListCustomers)
		api.POST("/customers", h.Directory.CreateCustomer)
		api.GET("/customers/:id", h.Directory.GetCustomer)
		api.PUT("/customers/:id", h.Directory.UpdateCustomer)

		api.GET("/leads", h.Directory.ListLeads)
		api.POST("/leads", h.Directory.CreateLead)
		api.PATCH("/leads/:id/status", h.Directory.SetLeadStatus)

		api.GET("/inventory", h.Directory.ListProducts)
		api.POST("/inventory", h.Directory.CreateProduct)
		api.PATCH("/inventory/:id/price", h.Directory.SetProductPrice)

		api.GET("/lookups/event-statuses", h.Directory.ListLookup(models.LookupEventStatus))
		api.GET("/lookups/event-types", h.Directory.ListLookup(models.LookupEventType))
		api.GET("/lookups/menu-types", h.Directory.ListLookup(models.LookupMenuType))
		api.GET("/lookups/lead-sources", h.Directory.ListLookup(models.LookupLeadSource))
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Set("request_id", reqID)

		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
		},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	return cors.New(cfg)
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
			zap.String("client_ip", c.ClientIP()))
	}
}
