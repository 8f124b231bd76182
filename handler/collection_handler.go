package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hyunwoojo/etf-rag-agent/collector"
	"github.com/hyunwoojo/etf-rag-agent/database"
	"github.com/hyunwoojo/etf-rag-agent/logger"
	"github.com/hyunwoojo/etf-rag-agent/scheduler"
	"github.com/hyunwoojo/etf-rag-agent/types"
)

type CollectionHandler struct {
	collector    *collector.Collector
	store        database.VectorStore
	metadataFile string
	log          *logger.Logger
}

func NewCollectionHandler(coll *collector.Collector, store database.VectorStore, metadataFile string) *CollectionHandler {
	return &CollectionHandler{
		collector:    coll,
		store:        store,
		metadataFile: metadataFile,
		log:          logger.New("handler.collection"),
	}
}

// HandleTrigger starts a collection run in the background and returns
// immediately.
func (h *CollectionHandler) HandleTrigger(c *gin.Context) {
	var req types.CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}

	go func() {
		// Detached from the request context on purpose: the run outlives
		// the HTTP response.
		ctx := context.Background()
		h.log.Info("background collection started")

		total := 0
		if req.Domestic {
			count, _, err := h.collector.CollectDomestic(ctx, req.DomesticMax)
			if err != nil {
				h.log.WithError(err).Error("domestic collection failed")
			}
			total += count
		}
		if req.Foreign {
			count, _, err := h.collector.CollectForeign(ctx, nil)
			if err != nil {
				h.log.WithError(err).Error("foreign collection failed")
			}
			total += count
		}
		if req.Dart {
			count, _, err := h.collector.CollectDart(ctx)
			if err != nil {
				h.log.WithError(err).Error("disclosure collection failed")
			}
			total += count
		}
		h.log.Infof("background collection completed: %d items", total)
	}()

	c.JSON(http.StatusOK, types.DataResponse{
		Status:  "success",
		Message: "collection started in background",
		Data: types.CollectionResponse{
			Success: true,
			Message: "collection started in background",
		},
	})
}

// HandleStatus reports the last scheduled run's metadata plus the live
// document count.
func (h *CollectionHandler) HandleStatus(c *gin.Context) {
	metadata, err := scheduler.ReadMetadata(h.metadataFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: gin.H{
			"last_updated":    metadata.LastUpdated,
			"etf_count":       metadata.EtfCount,
			"dart_count":      metadata.DartCount,
			"total_count":     metadata.TotalCount,
			"total_documents": count,
		},
	})
}
