package main

import (
	"context"
	"os"

	"github.com/yigit/placementportal/internal/pkg/logger"
	"github.com/yigit/placementportal/internal/server"
)

// @title Placement Portal API
// @version 1.0
// @description Campus placement and training portal
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
