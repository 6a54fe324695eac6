package ws

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64

	// rooms is owned by the hub goroutine.
	rooms map[string]struct{}
	send  chan []byte
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	if conn != nil {
		conn.SetReadLimit(maxMessageSize)
	}
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		rooms:  make(map[string]struct{}),
		send:   make(chan []byte, sendBufSize),
	}
}

// ReadPump reads events from the WebSocket until it fails or ctx ends.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(ctx, c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.hub.log.Debug("ws client closed", "user_id", c.userID)
			} else if ctx.Err() == nil {
				c.hub.log.Info("ws read error", "user_id", c.userID, "error", err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued events and keeps the connection alive with pings.
// It returns when the hub closes the send channel.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(wctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.hub.log.Info("ws write error", "user_id", c.userID, "error", err)
				return
			}

		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				c.hub.log.Info("ws ping error", "user_id", c.userID, "error", err)
				return
			}
		}
	}
}

// handleEvent routes an incoming client event. Private messages and typing
// indicators go to the receiver only; room messages go to the other members
// of the room.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypePrivateSend:
		var p PrivateSendPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ReceiverID <= 0 {
			c.sendError("INVALID_PAYLOAD", "receiverId and content are required")
			return
		}
		content := strings.TrimSpace(p.Content)
		if content == "" || len([]rune(content)) > maxContentLength {
			c.sendError("INVALID_PAYLOAD", "content must be between 1 and 1000 characters")
			return
		}
		if p.ReceiverID == c.userID {
			c.sendError("INVALID_PAYLOAD", "cannot message yourself")
			return
		}
		c.emit(p.ReceiverID, EventTypePrivateMessage, PrivateMessagePayload{
			ID:        uuid.New(),
			SenderID:  c.userID,
			Content:   content,
			CreatedAt: time.Now().UTC(),
		})

	case EventTypeTypingStart, EventTypeTypingStop:
		var p TypingSendPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.ReceiverID <= 0 {
			c.sendError("INVALID_PAYLOAD", "receiverId required for typing events")
			return
		}
		c.emit(p.ReceiverID, EventTypeTyping, TypingPayload{
			UserID:   c.userID,
			IsTyping: event.Type == EventTypeTypingStart,
		})

	case EventTypeRoomJoin, EventTypeRoomLeave:
		var p RoomPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || !validRoomID(p.RoomID) {
			c.sendError("INVALID_PAYLOAD", "roomId required for room events")
			return
		}
		if event.Type == EventTypeRoomJoin {
			c.hub.JoinRoom(c, p.RoomID)
		} else {
			c.hub.LeaveRoom(c, p.RoomID)
		}

	case EventTypeRoomSend:
		var p RoomSendPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || !validRoomID(p.RoomID) {
			c.sendError("INVALID_PAYLOAD", "roomId and content are required")
			return
		}
		content := strings.TrimSpace(p.Content)
		if content == "" || len([]rune(content)) > maxContentLength {
			c.sendError("INVALID_PAYLOAD", "content must be between 1 and 1000 characters")
			return
		}
		evt, err := NewEvent(EventTypeRoomMessage, RoomMessagePayload{
			ID:        uuid.New(),
			RoomID:    p.RoomID,
			SenderID:  c.userID,
			Content:   content,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return
		}
		c.hub.BroadcastToRoom(p.RoomID, evt, c)

	case EventTypePing:
		evt, _ := NewEvent(EventTypePong, nil)
		c.hub.sendToClient(c, evt)

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) emit(userID int64, eventType string, payload any) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		return
	}
	c.hub.SendToUser(userID, evt)
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	c.hub.sendToClient(c, evt)
}

func validRoomID(id string) bool {
	return id != "" && len(id) <= maxRoomIDLength && strings.TrimSpace(id) == id
}
