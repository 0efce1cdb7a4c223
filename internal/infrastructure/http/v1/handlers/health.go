package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	storage string
	version string
}

// NewHealthHandler creates a health handler reporting the storage driver in use.
func NewHealthHandler(storage, version string) *HealthHandler {
	return &HealthHandler{storage: storage, version: version}
}

// Live handles the liveness probe.
// GET /health
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"storage": h.storage,
		"version": h.version,
	})
}
