package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/services"
	"github.com/yigit/placementportal/internal/middleware"
	"github.com/yigit/placementportal/internal/pkg/helpers"
)

// UserController handles user provisioning and the profile lifecycle
type UserController struct {
	userService *services.UserService
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService *services.UserService, authService *services.AuthService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		authService: authService,
		logger:      logger,
	}
}

// CreateUser provisions an account and its profile
// @Summary Create user
// @Tags users
// @Security BearerAuth
// @Param request body dto.CreateUserRequest true "New user"
// @Success 201 {object} dto.APIResponse{data=models.UserProfile}
// @Failure 403 {object} dto.ErrorResponse "Role cannot be assigned"
// @Failure 409 {object} dto.ErrorResponse "Email or roll number already exists"
// @Router /users [post]
func (c *UserController) CreateUser(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	profile, err := c.userService.CreateUser(ctx.Request.Context(), session, &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Str("role", req.Role).Msg("User provisioning failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("uid", profile.UID).Str("role", string(profile.Role)).Str("by", session.UID).Msg("User provisioned")
	respond(ctx, http.StatusCreated, profile)
}

// ListUsers lists the profiles visible to the caller
// @Summary List users
// @Tags users
// @Security BearerAuth
// @Param role query string false "Role"
// @Param department query string false "Department"
// @Param status query string false "Profile status"
// @Param search query string false "Name, email or roll number"
// @Param page query int false "Page (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PageResponse[models.UserProfile]}
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var q dto.UserListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	result, err := c.userService.ListUsers(ctx.Request.Context(), session, q, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, result)
}

// GetUser returns one visible profile
// @Summary Get user
// @Tags users
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.UserProfile}
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{uid} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}

	profile, err := c.userService.GetUser(ctx.Request.Context(), session, ctx.Param("uid"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile)
}

// CompleteProfile submits the caller's academic details for approval
// @Summary Complete profile
// @Tags users
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Param request body dto.CompleteProfileRequest true "Academic details"
// @Success 200 {object} dto.APIResponse{data=models.UserProfile}
// @Router /users/{uid}/profile [put]
func (c *UserController) CompleteProfile(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var req dto.CompleteProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	profile, err := c.userService.CompleteProfile(ctx.Request.Context(), session, ctx.Param("uid"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile)
}

// ApproveProfile verifies a profile awaiting approval
// @Summary Approve profile
// @Tags users
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=models.UserProfile}
// @Failure 409 {object} dto.ErrorResponse "Profile is not awaiting approval"
// @Router /users/{uid}/approve [post]
func (c *UserController) ApproveProfile(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}

	profile, err := c.userService.ApproveProfile(ctx.Request.Context(), session, ctx.Param("uid"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("uid", profile.UID).Str("by", session.UID).Msg("Profile approved")
	respond(ctx, http.StatusOK, profile)
}

// DeclineProfile sends a profile back to the student with a reason
// @Summary Decline profile
// @Tags users
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Param request body dto.DeclineProfileRequest true "Reason"
// @Success 200 {object} dto.APIResponse{data=models.UserProfile}
// @Router /users/{uid}/decline [post]
func (c *UserController) DeclineProfile(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var req dto.DeclineProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	profile, err := c.userService.DeclineProfile(ctx.Request.Context(), session, ctx.Param("uid"), req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("uid", profile.UID).Str("by", session.UID).Msg("Profile declined")
	respond(ctx, http.StatusOK, profile)
}

// SetPlacementStatus sets or clears a student's placement status
// @Summary Set placement status
// @Tags users
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Param request body dto.PlacementStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=models.UserProfile}
// @Router /users/{uid}/placement-status [put]
func (c *UserController) SetPlacementStatus(ctx *gin.Context) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	var req dto.PlacementStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	profile, err := c.userService.SetPlacementStatus(ctx.Request.Context(), session, ctx.Param("uid"), models.PlacementStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile)
}

// DisableUser blocks sign-in for a user
// @Summary Disable user
// @Tags users
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Router /users/{uid}/disable [post]
func (c *UserController) DisableUser(ctx *gin.Context) {
	c.setDisabled(ctx, true)
}

// EnableUser restores sign-in for a user
// @Summary Enable user
// @Tags users
// @Security BearerAuth
// @Param uid path string true "User ID"
// @Router /users/{uid}/enable [post]
func (c *UserController) EnableUser(ctx *gin.Context) {
	c.setDisabled(ctx, false)
}

func (c *UserController) setDisabled(ctx *gin.Context, disabled bool) {
	session, ok := middleware.MustSession(ctx)
	if !ok {
		return
	}
	uid := ctx.Param("uid")

	if err := c.authService.SetAccountDisabled(ctx.Request.Context(), session, uid, disabled); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("uid", uid).Bool("disabled", disabled).Str("by", session.UID).Msg("Account access changed")
	if disabled {
		respondMessage(ctx, "Account disabled")
		return
	}
	respondMessage(ctx, "Account enabled")
}
