package repository

import (
	"context"

	"github.com/hyunwoojo/etf-rag-agent/types"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type ChatRepo interface {
	CreateSession(ctx context.Context, session *types.ChatSession) error
	GetSession(ctx context.Context, id string) (*types.ChatSession, error)
	CreateMessage(ctx context.Context, message *types.ChatMessage) error
	GetMessages(ctx context.Context, sessionID string) ([]*types.ChatMessage, error)
	DeleteSession(ctx context.Context, id string) error
}

type chatRepo struct {
	sessions *mongo.Collection
	messages *mongo.Collection
}

func NewChatRepo(sessions, messages *mongo.Collection) ChatRepo {
	return &chatRepo{
		sessions: sessions,
		messages: messages,
	}
}

func (r *chatRepo) CreateSession(ctx context.Context, session *types.ChatSession) error {
	_, err := r.sessions.InsertOne(ctx, session)
	return err
}

func (r *chatRepo) GetSession(ctx context.Context, id string) (*types.ChatSession, error) {
	var session types.ChatSession
	err := r.sessions.FindOne(ctx, map[string]string{"_id": id}).Decode(&session)
	return &session, err
}

func (r *chatRepo) CreateMessage(ctx context.Context, message *types.ChatMessage) error {
	_, err := r.messages.InsertOne(ctx, message)
	return err
}

func (r *chatRepo) GetMessages(ctx context.Context, sessionID string) ([]*types.ChatMessage, error) {
	cursor, err := r.messages.Find(ctx, map[string]string{"session_id": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*types.ChatMessage
	for cursor.Next(ctx) {
		var message types.ChatMessage
		if err := cursor.Decode(&message); err != nil {
			return nil, err
		}
		messages = append(messages, &message)
	}
	return messages, nil
}

func (r *chatRepo) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.messages.DeleteMany(ctx, map[string]string{"session_id": id}); err != nil {
		return err
	}
	_, err := r.sessions.DeleteOne(ctx, map[string]string{"_id": id})
	return err
}
