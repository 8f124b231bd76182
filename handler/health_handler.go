package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hyunwoojo/etf-rag-agent/database"
	"github.com/hyunwoojo/etf-rag-agent/types"
)

const apiVersion = "0.1.0"

type HealthHandler struct {
	store database.VectorStore
}

func NewHealthHandler(store database.VectorStore) *HealthHandler {
	return &HealthHandler{
		store: store,
	}
}

func (h *HealthHandler) HandleHealth(c *gin.Context) {
	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, types.HealthResponse{
			Healthy:   false,
			Status:    "ERROR: " + err.Error(),
			Version:   apiVersion,
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, types.HealthResponse{
		Healthy:        true,
		Status:         "OK",
		Version:        apiVersion,
		TotalDocuments: count,
		Timestamp:      time.Now().Format(time.RFC3339),
	})
}
