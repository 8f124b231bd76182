package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hyunwoojo/etf-rag-agent/service"
	"github.com/hyunwoojo/etf-rag-agent/types"
)

type QueryHandler struct {
	query *service.QueryService
}

func NewQueryHandler(query *service.QueryService) *QueryHandler {
	return &QueryHandler{
		query: query,
	}
}

// HandleQuery answers a question with retrieved ETF documents as grounding.
func (h *QueryHandler) HandleQuery(c *gin.Context) {
	var req types.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}

	filters := map[string]string{}
	if req.EtfType != "" {
		filters["etf_type"] = req.EtfType
	}
	if req.EtfCode != "" {
		filters["etf_code"] = req.EtfCode
	}

	temperature := -1.0
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	response, err := h.query.Answer(c.Request.Context(), req.Question, req.TopK, filters, temperature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyQuestion):
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  "error",
				Message: err.Error(),
			})
		case errors.Is(err, service.ErrDeadlineExceeded):
			c.JSON(http.StatusGatewayTimeout, types.DataResponse{
				Status:  "error",
				Message: "answer timed out, try a shorter question",
			})
		default:
			c.JSON(http.StatusInternalServerError, types.DataResponse{
				Status:  "error",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   response,
	})
}
