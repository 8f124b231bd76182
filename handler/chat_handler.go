package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hyunwoojo/etf-rag-agent/service"
	"github.com/hyunwoojo/etf-rag-agent/types"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chat: chat,
	}
}

// HandleChat upgrades the connection and hands it to the chat service.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	h.chat.HandleChat(c.Writer, c.Request)
}

// HandleTranscript returns the persisted messages of one chat session.
func (h *ChatHandler) HandleTranscript(c *gin.Context) {
	sessionID := c.Param("session")

	messages, err := h.chat.Transcript(c.Request.Context(), sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrChatNotPersisted) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	if messages == nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "session not found: " + sessionID,
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   gin.H{"session_id": sessionID, "messages": messages},
	})
}

// HandleDeleteSession deletes a chat session and its messages.
func (h *ChatHandler) HandleDeleteSession(c *gin.Context) {
	sessionID := c.Param("session")

	if err := h.chat.DeleteSession(c.Request.Context(), sessionID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrChatNotPersisted) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status:  "success",
		Message: "session deleted",
	})
}
