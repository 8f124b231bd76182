package types

const (
	TypeWebsocketPing   = "ping"
	TypeWebsocketPong   = "pong"
	TypeWebsocketChat   = "chat"
	TypeWebsocketAnswer = "answer"
	TypeWebsocketError  = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebsocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebsocketChatPayload struct {
	Question string `json:"question"`
	EtfType  string `json:"etf_type,omitempty"`
}

// ChatSession groups the messages of one websocket conversation.
type ChatSession struct {
	ID        string `bson:"_id" json:"id"`
	CreatedAt int64  `bson:"created_at" json:"created_at"`
	UpdatedAt int64  `bson:"updated_at" json:"updated_at"`
}

// ChatMessage is one persisted turn of a conversation.
type ChatMessage struct {
	ID        string   `bson:"_id" json:"id"`
	SessionID string   `bson:"session_id" json:"session_id"`
	Role      string   `bson:"role" json:"role"`
	Content   string   `bson:"content" json:"content"`
	Sources   []Source `bson:"sources,omitempty" json:"sources,omitempty"`
	CreatedAt int64    `bson:"created_at" json:"created_at"`
}
