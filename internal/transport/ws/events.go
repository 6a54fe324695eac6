package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/linkup/internal/domain"
)

// Event types - Client → Server
const (
	EventTypePrivateSend = "message.private"
	EventTypeTypingStart = "typing.start"
	EventTypeTypingStop  = "typing.stop"
	EventTypeRoomJoin    = "room.join"
	EventTypeRoomLeave   = "room.leave"
	EventTypeRoomSend    = "message.room"
	EventTypePing        = "ping"
)

// Event types - Server → Client
const (
	EventTypePrivateMessage     = "message.private"
	EventTypeRoomMessage        = "message.room"
	EventTypeTyping             = "typing"
	EventTypeConnectionRequest  = "connection.request"
	EventTypeConnectionAccepted = "connection.accepted"
	EventTypeConnectionDeclined = "connection.declined"
	EventTypePong               = "pong"
	EventTypeError              = "error"
)

const (
	maxContentLength = 1000
	maxRoomIDLength  = 64
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type PrivateSendPayload struct {
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
}

type TypingSendPayload struct {
	ReceiverID int64 `json:"receiverId"`
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

type RoomSendPayload struct {
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
}

// --- Server → Client payloads ---

type PrivateMessagePayload struct {
	ID        uuid.UUID `json:"id"`
	SenderID  int64     `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type RoomMessagePayload struct {
	ID        uuid.UUID `json:"id"`
	RoomID    string    `json:"roomId"`
	SenderID  int64     `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type TypingPayload struct {
	UserID   int64 `json:"userId"`
	IsTyping bool  `json:"isTyping"`
}

type ConnectionRequestPayload struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requesterId"`
	Message     *string   `json:"message,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ConnectionResponsePayload struct {
	ID          int64                   `json:"id"`
	AddresseeID int64                   `json:"addresseeId"`
	Status      domain.ConnectionStatus `json:"status"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	evt := &Event{Type: eventType, Timestamp: time.Now().Unix()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		evt.Payload = data
	}
	return evt, nil
}
