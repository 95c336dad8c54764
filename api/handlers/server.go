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

// ServerHandler is the handler for the server endpoints.
type ServerHandler struct {
	serverService *services.ServerService
}

// NewServerHandler creates a new instance of the server handler.
func NewServerHandler(service *services.ServerService) *ServerHandler {
	return &ServerHandler{
		serverService: service,
	}
}

// ListServers handles requests for the server listing.
func (h *ServerHandler) ListServers(c *gin.Context) {
	var qp filters.ServerParams
	if err := c.ShouldBindQuery(&qp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	qp.Clamp()

	result, err := h.serverService.ListServers(qp.AsMap(), qp.Limit, qp.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// GetServer handles requests for a single server.
func (h *ServerHandler) GetServer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 16)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid server id"})
		return
	}

	result, err := h.serverService.GetServer(uint16(id))
	if errors.Is(err, errs.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "server not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
