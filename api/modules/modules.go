package modules

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kzsync/api/cache"
	"kzsync/api/handlers"
	"kzsync/api/repositories"
	"kzsync/api/services"
)

// Module containing the necessary handlers.
type Module struct {
	Router        *gin.Engine
	PlayerHandler *handlers.PlayerHandler
	MapHandler    *handlers.MapHandler
	ServerHandler *handlers.ServerHandler
	RecordHandler *handlers.RecordHandler
}

// NewModule creates a module with all the necessary handlers initialized.
// The cache store may be nil, the map list then only caches in memory.
func NewModule(db *gorm.DB, store cache.Store) *Module {
	router := gin.Default()

	// Initialize the services.
	playerService := services.NewPlayerService(repositories.NewPlayerRepository(db))
	mapService := services.NewMapService(repositories.NewMapRepository(db), store)
	serverService := services.NewServerService(repositories.NewServerRepository(db))
	recordService := services.NewRecordService(repositories.NewRecordRepository(db))

	// Return the module with all handlers.
	return &Module{
		Router:        router,
		PlayerHandler: handlers.NewPlayerHandler(playerService),
		MapHandler:    handlers.NewMapHandler(mapService),
		ServerHandler: handlers.NewServerHandler(serverService),
		RecordHandler: handlers.NewRecordHandler(recordService),
	}
}
