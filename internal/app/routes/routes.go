package routes

import (
	"strings"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/placementportal/internal/app/auth"
	"github.com/yigit/placementportal/internal/app/controllers"
	"github.com/yigit/placementportal/internal/middleware"
)

const (
	apiPrefix = "/api/v1"
	// ImportsPrefix is where bulk imports are mounted; they run on a longer deadline
	ImportsPrefix = apiPrefix + "/imports"
)

// Controllers groups every handler the router mounts
type Controllers struct {
	Auth            *controllers.AuthController
	User            *controllers.UserController
	Company         *controllers.CompanyController
	Training        *controllers.TrainingController
	PlacementRecord *controllers.PlacementRecordController
	Import          *controllers.ImportController
	Dashboard       *controllers.DashboardController
	Health          *controllers.HealthController
}

func canManageDrives(c appauth.Capability) bool    { return c.CanManageDrives }
func canManageTrainings(c appauth.Capability) bool { return c.CanManageTrainings }
func canImport(c appauth.Capability) bool          { return c.CanImport }

// isStaff admits every role whose scope reaches beyond its own profile
func isStaff(c appauth.Capability) bool { return c.Scope != appauth.ScopeSelf }

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", c.Health.Health)

	// API version group
	v1 := router.Group(apiPrefix)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/session", c.Auth.Session)
		authenticated.POST("/auth/change-password", c.Auth.ChangePassword)

		authenticated.GET("/dashboard", c.Dashboard.Dashboard)
		authenticated.GET("/calendar", c.Dashboard.Calendar)

		// Route guards are coarse; services enforce per-profile scope.
		users := authenticated.Group("/users")
		{
			users.GET("/:uid", c.User.GetUser)
			users.PUT("/:uid/profile", c.User.CompleteProfile)

			staff := users.Group("")
			staff.Use(authMiddleware.RequireCapability(isStaff))
			{
				staff.POST("", c.User.CreateUser)
				staff.GET("", c.User.ListUsers)
				staff.POST("/:uid/approve", c.User.ApproveProfile)
				staff.POST("/:uid/decline", c.User.DeclineProfile)
				staff.PUT("/:uid/placement-status", c.User.SetPlacementStatus)
				staff.POST("/:uid/disable", c.User.DisableUser)
				staff.POST("/:uid/enable", c.User.EnableUser)
			}
		}

		companies := authenticated.Group("/companies")
		{
			companies.GET("", c.Company.ListCompanies)
			companies.GET("/:id", c.Company.GetCompany)
			companies.POST("/:id/opt-in", c.Company.OptIn)
			companies.POST("/:id/opt-out", c.Company.OptOut)

			rosters := companies.Group("")
			rosters.Use(authMiddleware.RequireCapability(isStaff))
			{
				rosters.GET("/:id/roster", c.Company.Roster)
				rosters.GET("/:id/roster/export", c.Company.ExportRoster)
			}

			manage := companies.Group("")
			manage.Use(authMiddleware.RequireCapability(canManageDrives))
			{
				manage.POST("", c.Company.CreateCompany)
				manage.PUT("/:id", c.Company.UpdateCompany)
				manage.DELETE("/:id", c.Company.DeleteCompany)
			}
		}

		trainings := authenticated.Group("/trainings")
		{
			trainings.GET("", c.Training.ListTrainings)
			trainings.GET("/:id", c.Training.GetTraining)
			trainings.POST("/:id/enroll", c.Training.Enroll)

			rosters := trainings.Group("")
			rosters.Use(authMiddleware.RequireCapability(isStaff))
			{
				rosters.GET("/:id/roster", c.Training.Roster)
				rosters.GET("/:id/roster/export", c.Training.ExportRoster)
			}

			manage := trainings.Group("")
			manage.Use(authMiddleware.RequireCapability(canManageTrainings))
			{
				manage.POST("", c.Training.CreateTraining)
				manage.PUT("/:id", c.Training.UpdateTraining)
				manage.DELETE("/:id", c.Training.DeleteTraining)
			}
		}

		records := authenticated.Group("/placement-records")
		records.Use(authMiddleware.RequireCapability(isStaff))
		{
			records.GET("", c.PlacementRecord.ListRecords)
			records.GET("/summary", c.PlacementRecord.Summary)
			records.GET("/export", c.PlacementRecord.ExportRecords)
			records.GET("/:id", c.PlacementRecord.GetRecord)
			records.POST("", c.PlacementRecord.CreateRecord)
			records.PUT("/:id", c.PlacementRecord.UpdateRecord)
			records.DELETE("/:id", c.PlacementRecord.DeleteRecord)
		}

		imports := authenticated.Group(strings.TrimPrefix(ImportsPrefix, apiPrefix))
		imports.Use(authMiddleware.RequireCapability(canImport))
		{
			imports.POST("/:kind/file", c.Import.ImportFile)
			imports.POST("/:kind/sheet", c.Import.ImportSheet)
		}
	}
}
