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

// TrainingController handles trainings and enrolment
type TrainingController struct {
	trainingService *services.TrainingService
	logger          zerolog.Logger
}

// NewTrainingController creates a new TrainingController
func NewTrainingController(trainingService *services.TrainingService, logger zerolog.Logger) *TrainingController {
	return &TrainingController{
		trainingService: trainingService,
		logger:          logger,
	}
}

// CreateTraining creates a training
// @Summary Create training
// @Tags trainings
// @Security BearerAuth
// @Param request body dto.TrainingRequest true "Training"
// @Success 201 {object} dto.APIResponse{data=models.Training}
// @Router /trainings [post]
func (c *TrainingController) CreateTraining(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var req dto.TrainingRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	training, err := c.trainingService.CreateTraining(ctx.Request.Context(), session, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("trainingID", training.ID).Str("title", training.Title).Msg("Training created")
	respond(ctx, http.StatusCreated, training)
}

// ListTrainings lists trainings by start date
// @Summary List trainings
// @Tags trainings
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.TrainingResponse}
// @Router /trainings [get]
func (c *TrainingController) ListTrainings(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}

	trainings, err := c.trainingService.ListTrainings(ctx.Request.Context(), session)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, trainings)
}

// GetTraining returns one training
// @Summary Get training
// @Tags trainings
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Success 200 {object} dto.APIResponse{data=dto.TrainingResponse}
// @Router /trainings/{id} [get]
func (c *TrainingController) GetTraining(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}

	training, err := c.trainingService.GetTraining(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, training)
}

// UpdateTraining replaces the editable fields of a training
// @Summary Update training
// @Tags trainings
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Param request body dto.TrainingRequest true "Training"
// @Success 200 {object} dto.APIResponse{data=models.Training}
// @Router /trainings/{id} [put]
func (c *TrainingController) UpdateTraining(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var req dto.TrainingRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	training, err := c.trainingService.UpdateTraining(ctx.Request.Context(), session, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, training)
}

// DeleteTraining removes a training
// @Summary Delete training
// @Tags trainings
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Success 204
// @Router /trainings/{id} [delete]
func (c *TrainingController) DeleteTraining(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}

	if err := c.trainingService.DeleteTraining(ctx.Request.Context(), session, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Enroll adds the calling student to a training. Enrolling twice is a no-op.
// @Summary Enroll
// @Tags trainings
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Success 200 {object} dto.APIResponse{data=dto.TrainingResponse}
// @Router /trainings/{id}/enroll [post]
func (c *TrainingController) Enroll(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}

	training, err := c.trainingService.Enroll(ctx.Request.Context(), session, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, training)
}

// Roster lists visible students with their training eligibility and enrolment
// @Summary Training roster
// @Tags trainings
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Param eligibility query string false "eligible | not-eligible"
// @Param enrolled query string false "true | false"
// @Success 200 {object} dto.APIResponse{data=[]dto.RosterEntry}
// @Router /trainings/{id}/roster [get]
func (c *TrainingController) Roster(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var q dto.RosterQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	roster, err := c.trainingService.Roster(ctx.Request.Context(), session, ctx.Param("id"), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, roster)
}

// ExportRoster downloads the filtered participant roster
// @Summary Export training roster
// @Tags trainings
// @Security BearerAuth
// @Param id path string true "Training ID"
// @Router /trainings/{id}/roster/export [get]
func (c *TrainingController) ExportRoster(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var q dto.RosterQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	var buf bytes.Buffer
	filename, err := c.trainingService.ExportRoster(ctx.Request.Context(), session, ctx.Param("id"), q, &buf)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	sendWorkbook(ctx, filename, &buf)
}
