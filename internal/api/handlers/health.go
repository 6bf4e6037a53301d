package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chordsmith-api/internal/instrument"
)

type HealthHandler struct {
	table *instrument.Table
}

func NewHealthHandler(table *instrument.Table) *HealthHandler {
	return &HealthHandler{table: table}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"capability_table": gin.H{
			"version":     h.table.Version,
			"instruments": len(h.table.All()),
		},
	})
}
