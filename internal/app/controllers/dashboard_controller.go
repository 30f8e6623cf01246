package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/services"
	"github.com/yigit/placementportal/internal/middleware"
	"github.com/yigit/placementportal/internal/pkg/helpers"
)

// DashboardController serves the role-shaped dashboard and the calendar
type DashboardController struct {
	dashboardService *services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// Dashboard returns counters for the caller's role
// @Summary Dashboard
// @Tags dashboard
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse}
// @Router /dashboard [get]
func (c *DashboardController) Dashboard(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}

	resp, err := c.dashboardService.Dashboard(ctx.Request.Context(), session)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// Calendar lists dated drive and training events in [from, to]
// @Summary Calendar
// @Tags dashboard
// @Security BearerAuth
// @Param from query string false "RFC3339 time or YYYY-MM-DD"
// @Param to query string false "RFC3339 time or YYYY-MM-DD"
// @Success 200 {object} dto.APIResponse{data=[]dto.CalendarEvent}
// @Router /calendar [get]
func (c *DashboardController) Calendar(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}

	from, err := helpers.ParseTimeParam(ctx.Query("from"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid from date").WithField("from")))
		return
	}
	to, err := helpers.ParseTimeParam(ctx.Query("to"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid to date").WithField("to")))
		return
	}

	events, err := c.dashboardService.Calendar(ctx.Request.Context(), session, from, to)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, events)
}
