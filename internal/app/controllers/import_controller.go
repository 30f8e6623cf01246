package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/services"
	"github.com/yigit/placementportal/internal/middleware"
)

// maxUploadBytes bounds a spreadsheet upload
const maxUploadBytes = 10 << 20

type importTarget struct {
	Kind string `binding:"required,oneof=students placement-records"`
}

// ImportController handles bulk imports from uploads and Google Sheets
type ImportController struct {
	importService *services.ImportService
	logger        zerolog.Logger
}

// NewImportController creates a new ImportController
func NewImportController(importService *services.ImportService, logger zerolog.Logger) *ImportController {
	return &ImportController{
		importService: importService,
		logger:        logger,
	}
}

func (c *ImportController) kind(ctx *gin.Context) (string, bool) {
	target := importTarget{Kind: ctx.Param("kind")}
	if err := middleware.ValidateStruct(target); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Unknown import kind")
		errorDetail = errorDetail.WithField("kind").WithDetails("kind must be one of: students, placement-records")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return "", false
	}
	return target.Kind, true
}

// ImportFile imports an uploaded .xlsx or .csv file
// @Summary Import spreadsheet
// @Tags imports
// @Security BearerAuth
// @Accept multipart/form-data
// @Param kind path string true "students | placement-records"
// @Param file formData file true "Spreadsheet (.xlsx or .csv)"
// @Success 200 {object} dto.APIResponse{data=dto.ImportReport}
// @Failure 400 {object} dto.ErrorResponse "Missing columns or unsupported file"
// @Router /imports/{kind}/file [post]
func (c *ImportController) ImportFile(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	kind, ok := c.kind(ctx)
	if !ok {
		return
	}

	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxUploadBytes)
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "A spreadsheet file is required")
		errorDetail = errorDetail.WithField("file").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	report, err := c.importService.ImportFile(ctx.Request.Context(), session, kind, file, fileHeader.Filename)
	if err != nil {
		c.logger.Warn().Err(err).Str("kind", kind).Str("file", fileHeader.Filename).Msg("Import rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, report)
}

// ImportSheet imports rows from a Google Sheet
// @Summary Import Google Sheet
// @Tags imports
// @Security BearerAuth
// @Param kind path string true "students | placement-records"
// @Param request body dto.SheetImportRequest true "Sheet"
// @Success 200 {object} dto.APIResponse{data=dto.ImportReport}
// @Router /imports/{kind}/sheet [post]
func (c *ImportController) ImportSheet(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	kind, ok := c.kind(ctx)
	if !ok {
		return
	}
	var req dto.SheetImportRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	report, err := c.importService.ImportSheet(ctx.Request.Context(), session, kind, &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("kind", kind).Str("spreadsheetID", req.SpreadsheetID).Msg("Sheet import rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, report)
}
