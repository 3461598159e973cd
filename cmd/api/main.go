package main

import (
	"os"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/logger"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/server"
)

// @title NoobSquad API
// @version 1.0
// @description API for the NoobSquad academic social network: posts, connections, research collaboration and chat

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
