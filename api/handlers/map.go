package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kzsync/api/filters"
	"kzsync/api/services"
	"kzsync/pkg/errs"
)

// MapHandler is the handler for the map endpoints.
type MapHandler struct {
	mapService *services.MapService
}

// NewMapHandler creates a new instance of the map handler.
func NewMapHandler(service *services.MapService) *MapHandler {
	return &MapHandler{
		mapService: service,
	}
}

// ListMaps handles requests for the map listing.
func (h *MapHandler) ListMaps(c *gin.Context) {
	var qp filters.MapParams
	if err := c.ShouldBindQuery(&qp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	qp.Clamp()

	result, err := h.mapService.ListMaps(c.Request.Context(), qp.AsMap(), qp.Limit, qp.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// GetMap handles requests for a single map with its courses.
func (h *MapHandler) GetMap(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 16)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid map id"})
		return
	}

	result, err := h.mapService.GetMap(uint16(id))
	if errors.Is(err, errs.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "map not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
