package controllers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/services"
	"github.com/yigit/placementportal/internal/middleware"
	"github.com/yigit/placementportal/internal/pkg/helpers"
)

// PlacementRecordController handles the placement ledger
type PlacementRecordController struct {
	recordService *services.PlacementRecordService
	logger        zerolog.Logger
}

// NewPlacementRecordController creates a new PlacementRecordController
func NewPlacementRecordController(recordService *services.PlacementRecordService, logger zerolog.Logger) *PlacementRecordController {
	return &PlacementRecordController{
		recordService: recordService,
		logger:        logger,
	}
}

// CreateRecord adds a ledger entry and marks the matching student placed
// @Summary Create placement record
// @Tags placement-records
// @Security BearerAuth
// @Param request body dto.PlacementRecordRequest true "Record"
// @Success 201 {object} dto.APIResponse{data=models.PlacementRecord}
// @Failure 409 {object} dto.ErrorResponse "Record already exists"
// @Router /placement-records [post]
func (c *PlacementRecordController) CreateRecord(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var req dto.PlacementRecordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	record, err := c.recordService.CreateRecord(ctx.Request.Context(), session, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, record)
}

// ListRecords lists the ledger in the caller's department scope
// @Summary List placement records
// @Tags placement-records
// @Security BearerAuth
// @Param department query string false "Department"
// @Param academicYear query string false "Academic year"
// @Param companyName query string false "Company"
// @Param search query string false "Name, roll number or company"
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PageResponse[models.PlacementRecord]}
// @Router /placement-records [get]
func (c *PlacementRecordController) ListRecords(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var q dto.RecordListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.recordService.ListRecords(ctx.Request.Context(), session, q, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, result)
}

// Summary aggregates the filtered ledger
// @Summary Placement summary
// @Tags placement-records
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.RecordSummary}
// @Router /placement-records/summary [get]
func (c *PlacementRecordController) Summary(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var q dto.RecordListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	summary, err := c.recordService.Summary(ctx.Request.Context(), session, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, summary)
}

// ExportRecords downloads the filtered ledger as an xlsx workbook
// @Summary Export placement records
// @Tags placement-records
// @Security BearerAuth
// @Router /placement-records/export [get]
func (c *PlacementRecordController) ExportRecords(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var q dto.RecordListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	var buf bytes.Buffer
	filename, err := c.recordService.ExportRecords(ctx.Request.Context(), session, q, &buf)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendWorkbook(ctx, filename, &buf)
}

// GetRecord returns one ledger entry
// @Summary Get placement record
// @Tags placement-records
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} dto.APIResponse{data=models.PlacementRecord}
// @Router /placement-records/{id} [get]
func (c *PlacementRecordController) GetRecord(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}

	record, err := c.recordService.GetRecord(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, record)
}

// UpdateRecord replaces a ledger entry. Changing the roll number, company or
// academic year moves it to a new id.
// @Summary Update placement record
// @Tags placement-records
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Param request body dto.PlacementRecordRequest true "Record"
// @Success 200 {object} dto.APIResponse{data=models.PlacementRecord}
// @Router /placement-records/{id} [put]
func (c *PlacementRecordController) UpdateRecord(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var req dto.PlacementRecordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	record, err := c.recordService.UpdateRecord(ctx.Request.Context(), session, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, record)
}

// DeleteRecord removes a ledger entry
// @Summary Delete placement record
// @Tags placement-records
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 204
// @Router /placement-records/{id} [delete]
func (c *PlacementRecordController) DeleteRecord(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")

	if err := c.recordService.DeleteRecord(ctx.Request.Context(), session, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("recordID", id).Str("by", session.UID).Msg("Placement record deleted")
	ctx.Status(http.StatusNoContent)
}
