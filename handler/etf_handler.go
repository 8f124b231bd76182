package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hyunwoojo/etf-rag-agent/service"
	"github.com/hyunwoojo/etf-rag-agent/types"
)

type ETFHandler struct {
	query *service.QueryService
}

func NewETFHandler(query *service.QueryService) *ETFHandler {
	return &ETFHandler{
		query: query,
	}
}

// HandleSummary returns the latest stored snapshot of one ETF.
func (h *ETFHandler) HandleSummary(c *gin.Context) {
	etfCode := c.Param("code")

	summary, err := h.query.Summarize(c.Request.Context(), etfCode)
	if err != nil {
		if errors.Is(err, service.ErrETFNotFound) {
			c.JSON(http.StatusNotFound, types.DataResponse{
				Status:  "error",
				Message: "ETF not found: " + etfCode,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   summary,
	})
}
