package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/docstore"
)

// HealthController reports whether the document store is reachable
type HealthController struct {
	store  docstore.Store
	driver string
}

// NewHealthController creates a new HealthController
func NewHealthController(store docstore.Store, driver string) *HealthController {
	return &HealthController{store: store, driver: driver}
}

// Health pings the store
// @Summary Health check
// @Tags health
// @Success 200 {object} dto.APIResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := c.store.Ping(pingCtx); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Storage is unavailable").WithDetails(c.driver)
		ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
		return
	}
	respond(ctx, http.StatusOK, gin.H{"status": "ok", "storage": c.driver})
}
