package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kzsync/api/filters"
	"kzsync/api/services"
)

// RecordHandler is the handler for the record endpoints.
type RecordHandler struct {
	recordService *services.RecordService
}

// NewRecordHandler creates a new instance of the record handler.
func NewRecordHandler(service *services.RecordService) *RecordHandler {
	return &RecordHandler{
		recordService: service,
	}
}

// ListRecords handles requests for the record listing.
func (h *RecordHandler) ListRecords(c *gin.Context) {
	var qp filters.RecordParams
	if err := c.ShouldBindQuery(&qp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	qp.Clamp()

	result, err := h.recordService.ListRecords(qp.AsMap(), qp.Limit, qp.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
