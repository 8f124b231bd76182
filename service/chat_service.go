package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hyunwoojo/etf-rag-agent/logger"
	"github.com/hyunwoojo/etf-rag-agent/repository"
	"github.com/hyunwoojo/etf-rag-agent/types"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ChatService runs the websocket chat UI backend. Each connection gets its
// own session; every turn goes through the RAG answer path and both sides of
// the exchange are persisted when a chat repo is configured.
type ChatService struct {
	query    *QueryService
	chatRepo repository.ChatRepo
	upgrader websocket.Upgrader
	log      *logger.Logger
}

func NewChatService(query *QueryService, chatRepo repository.ChatRepo) *ChatService {
	return &ChatService{
		query:    query,
		chatRepo: chatRepo,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // adjust for production
			},
		},
		log: logger.New("chat"),
	}
}

func (s *ChatService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Error("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	sessionID := uuid.NewString()
	s.createSession(r.Context(), sessionID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.WithError(err).Warn("websocket read error")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			s.writeError(conn, "invalid message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketPing:
			conn.WriteJSON(types.WebsocketResponse{Type: types.TypeWebsocketPong})

		case types.TypeWebsocketChat:
			payloadBytes, err := json.Marshal(req.Payload)
			if err != nil {
				s.writeError(conn, "invalid payload")
				continue
			}
			var payload types.WebsocketChatPayload
			if err := json.Unmarshal(payloadBytes, &payload); err != nil {
				s.writeError(conn, "invalid payload")
				continue
			}
			s.handleQuestion(r.Context(), conn, sessionID, payload)

		default:
			s.writeError(conn, "unknown message type")
		}
	}
}

func (s *ChatService) handleQuestion(ctx context.Context, conn *websocket.Conn, sessionID string, payload types.WebsocketChatPayload) {
	filters := map[string]string{}
	if payload.EtfType != "" {
		filters["etf_type"] = payload.EtfType
	}

	s.saveMessage(ctx, sessionID, "user", payload.Question, nil)

	response, err := s.query.Answer(ctx, payload.Question, 0, filters, -1)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyQuestion):
			s.writeError(conn, "question must not be empty")
		case errors.Is(err, ErrDeadlineExceeded):
			s.writeError(conn, "answer timed out, try a shorter question")
		default:
			s.log.WithError(err).Error("answer failed")
			s.writeError(conn, "failed to answer question")
		}
		return
	}

	s.saveMessage(ctx, sessionID, "assistant", response.Answer, response.Sources)

	if err := conn.WriteJSON(types.WebsocketResponse{
		Type:    types.TypeWebsocketAnswer,
		Payload: response,
	}); err != nil {
		s.log.WithError(err).Warn("websocket write error")
	}
}

func (s *ChatService) createSession(ctx context.Context, sessionID string) {
	if s.chatRepo == nil {
		return
	}
	now := time.Now().Unix()
	err := s.chatRepo.CreateSession(ctx, &types.ChatSession{
		ID:        sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.log.WithError(err).Warn("failed to create chat session")
	}
}

func (s *ChatService) saveMessage(ctx context.Context, sessionID, role, content string, sources []types.Source) {
	if s.chatRepo == nil {
		return
	}
	err := s.chatRepo.CreateMessage(ctx, &types.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Sources:   sources,
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		s.log.WithError(err).Warn("failed to save chat message")
	}
}

// ErrChatNotPersisted reports transcript operations without a configured repo.
var ErrChatNotPersisted = errors.New("chat persistence is not configured")

// Transcript returns the stored messages of sessionID. A nil slice with a nil
// error means the session does not exist.
func (s *ChatService) Transcript(ctx context.Context, sessionID string) ([]*types.ChatMessage, error) {
	if s.chatRepo == nil {
		return nil, ErrChatNotPersisted
	}
	if _, err := s.chatRepo.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	messages, err := s.chatRepo.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []*types.ChatMessage{}
	}
	return messages, nil
}

// DeleteSession removes a session and its messages.
func (s *ChatService) DeleteSession(ctx context.Context, sessionID string) error {
	if s.chatRepo == nil {
		return ErrChatNotPersisted
	}
	return s.chatRepo.DeleteSession(ctx, sessionID)
}

func (s *ChatService) writeError(conn *websocket.Conn, message string) {
	conn.WriteJSON(types.WebsocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: map[string]string{"message": message},
	})
}
