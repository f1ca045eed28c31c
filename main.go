package main

import (
	"log"

	"github.com/moria-pecas/moria-backend/config"
	"github.com/moria-pecas/moria-backend/routes"
	"github.com/moria-pecas/moria-backend/utils"
)

func main() {
	if err := utils.InitLogger(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	config.InitDB()
	config.InitGoogleOAuth()

	router := routes.SetupRouter(cfg)

	utils.LogInfo("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
