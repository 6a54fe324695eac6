package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Observer receives hub activity, e.g. for metrics. All methods are called
// from the hub goroutine.
type Observer interface {
	ClientConnected()
	ClientDisconnected()
	EventSent(eventType string)
}

// Hub owns every client and is the only writer to their send channels.
// Each user id is one event channel, fanned out to all of that user's
// connections. Rooms are named groups of connections a client joins and
// leaves itself.
type Hub struct {
	clients map[int64]map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	roomOps    chan roomOp
	outbound   chan *outboundMsg
	done       chan struct{}

	observer Observer
	log      *slog.Logger
}

type outboundMsg struct {
	userID    int64
	client    *Client // when set, deliver to this client only
	roomID    string  // when set, deliver to the room's members
	exclude   *Client // skipped on room delivery, e.g. the sender
	eventType string
	data      []byte
}

type roomOp struct {
	client *Client
	roomID string
	join   bool
}

func NewHub(log *slog.Logger, observer Observer) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		roomOps:    make(chan roomOp),
		outbound:   make(chan *outboundMsg, 256),
		done:       make(chan struct{}),
		observer:   observer,
		log:        log,
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, after
// disconnecting every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					h.drop(c)
				}
			}
			return

		case c := <-h.register:
			set, ok := h.clients[c.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.userID] = set
			}
			set[c] = struct{}{}
			if h.observer != nil {
				h.observer.ClientConnected()
			}
			h.log.Debug("ws client connected", "user_id", c.userID, "user_clients", len(set))

		case c := <-h.unregister:
			if _, ok := h.clients[c.userID][c]; ok {
				h.drop(c)
				h.log.Debug("ws client disconnected", "user_id", c.userID)
			}

		case op := <-h.roomOps:
			if _, ok := h.clients[op.client.userID][op.client]; !ok {
				continue
			}
			if op.join {
				h.joinRoom(op.client, op.roomID)
			} else {
				h.leaveRoom(op.client, op.roomID)
			}

		case msg := <-h.outbound:
			switch {
			case msg.client != nil:
				if _, ok := h.clients[msg.client.userID][msg.client]; ok {
					h.deliver(msg.client, msg)
				}
			case msg.roomID != "":
				for c := range h.rooms[msg.roomID] {
					if c != msg.exclude {
						h.deliver(c, msg)
					}
				}
			default:
				for c := range h.clients[msg.userID] {
					h.deliver(c, msg)
				}
			}
		}
	}
}

func (h *Hub) deliver(c *Client, msg *outboundMsg) {
	select {
	case c.send <- msg.data:
		if h.observer != nil {
			h.observer.EventSent(msg.eventType)
		}
	default:
		// Slow consumer: disconnect rather than block the hub.
		h.log.Warn("ws client buffer full, dropping", "user_id", c.userID)
		h.drop(c)
	}
}

func (h *Hub) joinRoom(c *Client, roomID string) {
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[roomID] = members
	}
	members[c] = struct{}{}
	c.rooms[roomID] = struct{}{}
	h.log.Debug("ws client joined room", "user_id", c.userID, "room_id", roomID, "members", len(members))
}

func (h *Hub) leaveRoom(c *Client, roomID string) {
	members := h.rooms[roomID]
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
	delete(c.rooms, roomID)
}

func (h *Hub) drop(c *Client) {
	for roomID := range c.rooms {
		h.leaveRoom(c, roomID)
	}
	set := h.clients[c.userID]
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	if h.observer != nil {
		h.observer.ClientDisconnected()
	}
}

// Register adds c to the hub. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// SendToUser delivers event to every connection of userID.
func (h *Hub) SendToUser(userID int64, event *Event) {
	h.enqueue(&outboundMsg{userID: userID}, event)
}

// BroadcastToRoom delivers event to every member of roomID except exclude,
// which may be nil.
func (h *Hub) BroadcastToRoom(roomID string, event *Event, exclude *Client) {
	h.enqueue(&outboundMsg{roomID: roomID, exclude: exclude}, event)
}

// JoinRoom subscribes c to roomID. Clients that are not registered are ignored.
func (h *Hub) JoinRoom(c *Client, roomID string) {
	h.roomOp(roomOp{client: c, roomID: roomID, join: true})
}

func (h *Hub) LeaveRoom(c *Client, roomID string) {
	h.roomOp(roomOp{client: c, roomID: roomID})
}

func (h *Hub) roomOp(op roomOp) {
	select {
	case h.roomOps <- op:
	case <-h.done:
	}
}

func (h *Hub) sendToClient(c *Client, event *Event) {
	h.enqueue(&outboundMsg{client: c}, event)
}

func (h *Hub) enqueue(msg *outboundMsg, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("ws marshal event", "type", event.Type, "error", err)
		return
	}
	msg.data = data
	msg.eventType = event.Type

	select {
	case h.outbound <- msg:
	case <-h.done:
	}
}
