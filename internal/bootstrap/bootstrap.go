package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/placementportal/internal/app/controllers"
	appMigrations "github.com/yigit/placementportal/internal/app/migrations"
	appRepos "github.com/yigit/placementportal/internal/app/repositories"
	appRoutes "github.com/yigit/placementportal/internal/app/routes"
	appServices "github.com/yigit/placementportal/internal/app/services"
	"github.com/yigit/placementportal/internal/config"
	"github.com/yigit/placementportal/internal/db"
	"github.com/yigit/placementportal/internal/docstore"
	appMiddleware "github.com/yigit/placementportal/internal/middleware"
	pkgAuth "github.com/yigit/placementportal/internal/pkg/auth"
	"github.com/yigit/placementportal/internal/pkg/email"
	"github.com/yigit/placementportal/internal/pkg/helpers"
	"github.com/yigit/placementportal/internal/pkg/logger"
	"github.com/yigit/placementportal/internal/pkg/spreadsheet"
	"github.com/yigit/placementportal/internal/pkg/validation"
	"github.com/yigit/placementportal/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store                  docstore.Store
	Repos                  *appRepos.Repositories
	JWTService             *pkgAuth.JWTService
	AuthService            *appServices.AuthService
	UserService            *appServices.UserService
	CompanyService         *appServices.CompanyService
	TrainingService        *appServices.TrainingService
	PlacementRecordService *appServices.PlacementRecordService
	ImportService          *appServices.ImportService
	DashboardService       *appServices.DashboardService
	AuthMiddleware         *appMiddleware.AuthMiddleware
	Controllers            appRoutes.Controllers
	Logger                 zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))

	lgr := log.Logger
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStore opens the document store selected by storage.driver. The
// postgres driver also applies pending migrations.
func SetupStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (docstore.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		lgr.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(ctx, cfg)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}

		migrationsDir := cfg.Database.MigrationsDir
		if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
			database.Close()
			return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
		}
		lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(database, lgr).MigrateFromDirectory(ctx, migrationsDir); err != nil {
			database.Close()
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")
		return docstore.NewPostgresStore(database), nil

	case config.DriverFirestore:
		store, err := docstore.NewFirestoreStore(ctx, docstore.FirestoreConfig{
			ProjectID:       cfg.Firestore.ProjectID,
			CredentialsFile: cfg.Firestore.CredentialsFile,
			CredentialsJSON: cfg.Firestore.CredentialsJSON,
		})
		if err != nil {
			return nil, err
		}
		lgr.Info().Str("project", cfg.Firestore.ProjectID).Msg("Connected to Firestore")
		return store, nil

	default:
		lgr.Warn().Msg("Using the in-memory store, data is lost on restart")
		return docstore.NewMemoryStore(), nil
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, store docstore.Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Store: store, Logger: lgr}
	deps.Repos = appRepos.NewRepositories(store)

	rollNumbers, err := validation.NewRollNumberValidator(cfg.Import.RollNumberPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid roll number pattern: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	emailService := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.SMTP.BaseURL,
	}, lgr.With().Str("component", "email").Logger())

	// A nil *SheetsSource stored in the interface would not compare equal to nil
	var sheets appServices.SheetReader
	if cfg.Sheets.CredentialsJSON != "" {
		source, err := spreadsheet.NewSheetsSource(ctx, cfg.Sheets.CredentialsJSON)
		if err != nil {
			return nil, err
		}
		sheets = source
	} else {
		lgr.Info().Msg("Google Sheets credentials not set, sheet imports are disabled")
	}

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.AccountRepository,
		deps.Repos.TokenRepository,
		deps.Repos.UserRepository,
		deps.JWTService,
		lgr,
	)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, deps.AuthService, emailService, rollNumbers, lgr)
	deps.CompanyService = appServices.NewCompanyService(deps.Repos.CompanyRepository, deps.Repos.UserRepository, lgr)
	deps.TrainingService = appServices.NewTrainingService(deps.Repos.TrainingRepository, deps.Repos.UserRepository, lgr)
	deps.PlacementRecordService = appServices.NewPlacementRecordService(deps.Repos.PlacementRecordRepository, deps.UserService, lgr)
	deps.ImportService = appServices.NewImportService(
		deps.UserService,
		deps.PlacementRecordService,
		deps.Repos.UserRepository,
		deps.Repos.PlacementRecordRepository,
		sheets,
		cfg.Import.MaxRows,
		lgr,
	)
	deps.DashboardService = appServices.NewDashboardService(
		deps.Repos.UserRepository,
		deps.Repos.CompanyRepository,
		deps.Repos.TrainingRepository,
		lgr,
	)

	if err := seed.CreateDefaultAdmin(ctx, cfg, deps.UserService, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Auth:            appControllers.NewAuthController(deps.AuthService, lgr),
		User:            appControllers.NewUserController(deps.UserService, deps.AuthService, lgr),
		Company:         appControllers.NewCompanyController(deps.CompanyService, lgr),
		Training:        appControllers.NewTrainingController(deps.TrainingService, lgr),
		PlacementRecord: appControllers.NewPlacementRecordController(deps.PlacementRecordService, lgr),
		Import:          appControllers.NewImportController(deps.ImportService, lgr),
		Dashboard:       appControllers.NewDashboardController(deps.DashboardService),
		Health:          appControllers.NewHealthController(store, cfg.Storage.Driver),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	router.Use(appMiddleware.Timeout(
		helpers.ParseDuration(cfg.Server.RequestTimeout, 15*time.Second),
		appMiddleware.RouteTimeout{Prefix: appRoutes.ImportsPrefix, Duration: ImportTimeout(cfg)},
	))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router
}

// ImportTimeout is the deadline of one bulk import request
func ImportTimeout(cfg *config.Config) time.Duration {
	return helpers.ParseDuration(cfg.Import.Timeout, 10*time.Minute)
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			c.AllowAllOrigins = true
			c.AllowCredentials = false
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
