// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nebenkosten/internal/domain/plausibility"
	"nebenkosten/internal/infrastructure/http/v1/handlers"
	"nebenkosten/internal/infrastructure/http/v1/middleware"
	"nebenkosten/internal/infrastructure/metrics"
	"nebenkosten/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Store holds the calculation being edited
	Store handlers.CalculationStore

	// Checker evaluates plausibility rules on validate
	Checker *plausibility.Checker

	// Metrics is optional; without it /metrics is not served
	Metrics *metrics.Metrics

	// Logger for request logging
	Logger *logger.Logger

	// StorageDriver and Version are reported by /health
	StorageDriver string
	Version       string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.StorageDriver, cfg.Version)
	router.GET("/health", healthHandler.Live)

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	var observer handlers.Observer
	if cfg.Metrics != nil {
		observer = cfg.Metrics
	}

	v1 := router.Group("/api/v1")
	{
		registerCalculationRoutes(v1, handlers.NewCalculationHandler(cfg.Store, cfg.Checker, observer))
		registerValidateRoutes(v1, handlers.NewValidateHandler(observer))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "message": "route not found"})
	})

	return router
}

func registerCalculationRoutes(rg *gin.RouterGroup, h *handlers.CalculationHandler) {
	calc := rg.Group("/calculation")
	{
		calc.GET("", h.Get)
		calc.PATCH("", h.SetData)
		calc.PATCH("/landlord", h.UpdateLandlord)
		calc.PATCH("/property", h.UpdateProperty)
		calc.PATCH("/tenant", h.UpdateTenant)
		calc.POST("/items", h.AddItem)
		calc.PATCH("/items/:id", h.UpdateItem)
		calc.DELETE("/items/:id", h.RemoveItem)
		calc.POST("/reset", h.Reset)
		calc.POST("/validate", h.Validate)
	}
}

func registerValidateRoutes(rg *gin.RouterGroup, h *handlers.ValidateHandler) {
	rg.POST("/validate/:entity", h.Entity)
}
