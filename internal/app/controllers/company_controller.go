package controllers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/services"
	"github.com/yigit/placementportal/internal/middleware"
)

// CompanyController handles placement drives and student registration
type CompanyController struct {
	companyService *services.CompanyService
	logger         zerolog.Logger
}

// NewCompanyController creates a new CompanyController
func NewCompanyController(companyService *services.CompanyService, logger zerolog.Logger) *CompanyController {
	return &CompanyController{
		companyService: companyService,
		logger:         logger,
	}
}

// CreateCompany creates a drive
// @Summary Create drive
// @Tags companies
// @Security BearerAuth
// @Param request body dto.CompanyRequest true "Drive"
// @Success 201 {object} dto.APIResponse{data=models.Company}
// @Router /companies [post]
func (c *CompanyController) CreateCompany(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var req dto.CompanyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	company, err := c.companyService.CreateCompany(ctx.Request.Context(), session, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("companyID", company.ID).Str("name", company.Name).Msg("Drive created")
	respond(ctx, http.StatusCreated, company)
}

// ListCompanies lists drives, with the caller's own eligibility for students
// @Summary List drives
// @Tags companies
// @Security BearerAuth
// @Param search query string false "Name or role"
// @Param type query string false "Drive type"
// @Param minSalary query string false "Minimum package, e.g. 6 LPA"
// @Param upcoming query bool false "Only drives whose deadline or date is ahead"
// @Success 200 {object} dto.APIResponse{data=[]dto.CompanyResponse}
// @Router /companies [get]
func (c *CompanyController) ListCompanies(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var q dto.CompanyListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	companies, err := c.companyService.ListCompanies(ctx.Request.Context(), session, q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, companies)
}

// GetCompany returns one drive
// @Summary Get drive
// @Tags companies
// @Security BearerAuth
// @Param id path string true "Drive ID"
// @Success 200 {object} dto.APIResponse{data=dto.CompanyResponse}
// @Router /companies/{id} [get]
func (c *CompanyController) GetCompany(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}

	company, err := c.companyService.GetCompany(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, company)
}

// UpdateCompany replaces the editable fields of a drive
// @Summary Update drive
// @Tags companies
// @Security BearerAuth
// @Param id path string true "Drive ID"
// @Param request body dto.CompanyRequest true "Drive"
// @Success 200 {object} dto.APIResponse{data=models.Company}
// @Router /companies/{id} [put]
func (c *CompanyController) UpdateCompany(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var req dto.CompanyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	company, err := c.companyService.UpdateCompany(ctx.Request.Context(), session, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, company)
}

// DeleteCompany removes a drive
// @Summary Delete drive
// @Tags companies
// @Security BearerAuth
// @Param id path string true "Drive ID"
// @Success 204
// @Router /companies/{id} [delete]
func (c *CompanyController) DeleteCompany(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")

	if err := c.companyService.DeleteCompany(ctx.Request.Context(), session, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("companyID", id).Str("by", session.UID).Msg("Drive deleted")
	ctx.Status(http.StatusNoContent)
}

// OptIn registers the calling student for a drive
// @Summary Opt in
// @Tags companies
// @Security BearerAuth
// @Param id path string true "Drive ID"
// @Success 200 {object} dto.APIResponse{data=dto.CompanyResponse}
// @Failure 400 {object} dto.ErrorResponse "Not eligible or registration closed"
// @Failure 409 {object} dto.ErrorResponse "Already opted out"
// @Router /companies/{id}/opt-in [post]
func (c *CompanyController) OptIn(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}

	company, err := c.companyService.OptIn(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, company)
}

// OptOut records that the calling student declines a drive
// @Summary Opt out
// @Tags companies
// @Security BearerAuth
// @Param id path string true "Drive ID"
// @Success 200 {object} dto.APIResponse{data=dto.CompanyResponse}
// @Failure 409 {object} dto.ErrorResponse "Already opted in"
// @Router /companies/{id}/opt-out [post]
func (c *CompanyController) OptOut(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}

	company, err := c.companyService.OptOut(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, company)
}

// Roster lists visible students with their eligibility and registration for a drive
// @Summary Drive roster
// @Tags companies
// @Security BearerAuth
// @Param id path string true "Drive ID"
// @Param eligibility query string false "eligible | not-eligible"
// @Param status query string false "opted-in | opted-out | not-registered"
// @Param department query string false "Department"
// @Success 200 {object} dto.APIResponse{data=[]dto.RosterEntry}
// @Router /companies/{id}/roster [get]
func (c *CompanyController) Roster(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var q dto.RosterQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	roster, err := c.companyService.Roster(ctx.Request.Context(), session, ctx.Param("id"), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, roster)
}

// ExportRoster downloads the filtered roster as an xlsx workbook
// @Summary Export drive roster
// @Tags companies
// @Security BearerAuth
// @Param id path string true "Drive ID"
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /companies/{id}/roster/export [get]
func (c *CompanyController) ExportRoster(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var q dto.RosterQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	var buf bytes.Buffer
	filename, err := c.companyService.ExportRoster(ctx.Request.Context(), session, ctx.Param("id"), q, &buf)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendWorkbook(ctx, filename, &buf)
}
