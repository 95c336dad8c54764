package main

import (
	"log"

	"kzsync/api/cache"
	"kzsync/api/modules"
	"kzsync/api/routes"
	"kzsync/pkg/config"
	"kzsync/pkg/database"
	"kzsync/pkg/redis"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading the configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Error connecting to the database: %v", err)
	}

	// Redis is optional, the map list cache degrades to memory only.
	var store cache.Store
	if cfg.Redis.Host != "" {
		client := redis.GetClient(cfg.Redis)
		defer client.Close()
		store = client
	}

	// Create a module with all necessary handlers.
	module := modules.NewModule(db, store)

	// Create a new router with the routes setup.
	router := routes.NewRouter(module.Router)
	router.SetupRoutes(
		module.PlayerHandler,
		module.MapHandler,
		module.ServerHandler,
		module.RecordHandler,
	)

	// Start the server.
	if err := router.Run(":8080"); err != nil {
		log.Fatalf("Error running the server: %v", err)
	}
}
