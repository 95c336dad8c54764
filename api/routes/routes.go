package routes

import (
	"github.com/gin-gonic/gin"

	"kzsync/api/handlers"
)

type Router struct {
	engine *gin.Engine
	api    *gin.RouterGroup
}

func NewRouter(engine *gin.Engine) *Router {
	return &Router{
		api:    engine.Group("/api/v1"),
		engine: engine,
	}
}

func (r *Router) SetupRoutes(handlerList ...any) {
	for _, h := range handlerList {
		switch handler := h.(type) {
		case *handlers.PlayerHandler:
			r.registerPlayerHandler(handler)
		case *handlers.MapHandler:
			r.registerMapHandler(handler)
		case *handlers.ServerHandler:
			r.registerServerHandler(handler)
		case *handlers.RecordHandler:
			r.registerRecordHandler(handler)
		}
	}
}

// Register the player handler.
func (r *Router) registerPlayerHandler(handler *handlers.PlayerHandler) {
	players := r.api.Group("/players")
	{
		players.GET("", handler.ListPlayers)
		players.GET("/:id", handler.GetPlayer)
	}
}

// Register the map handler.
func (r *Router) registerMapHandler(handler *handlers.MapHandler) {
	maps := r.api.Group("/maps")
	{
		maps.GET("", handler.ListMaps)
		maps.GET("/:id", handler.GetMap)
	}
}

// Register the server handler.
func (r *Router) registerServerHandler(handler *handlers.ServerHandler) {
	servers := r.api.Group("/servers")
	{
		servers.GET("", handler.ListServers)
		servers.GET("/:id", handler.GetServer)
	}
}

// Register the record handler.
func (r *Router) registerRecordHandler(handler *handlers.RecordHandler) {
	records := r.api.Group("/records")
	{
		records.GET("", handler.ListRecords)
	}
}

// Start the router.
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
