package ws

import (
	"github.com/vedran77/linkup/internal/domain"
)

// HubNotifier pushes connection lifecycle events over the Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// ConnectionRequested tells the addressee about a new request.
func (n *HubNotifier) ConnectionRequested(conn *domain.Connection) {
	n.send(conn.AddresseeID, EventTypeConnectionRequest, ConnectionRequestPayload{
		ID:          conn.ID,
		RequesterID: conn.RequesterID,
		Message:     conn.Message,
		CreatedAt:   conn.CreatedAt,
	})
}

// ConnectionResponded tells the requester the addressee accepted or declined.
func (n *HubNotifier) ConnectionResponded(conn *domain.Connection) {
	eventType := EventTypeConnectionDeclined
	if conn.Status == domain.ConnectionAccepted {
		eventType = EventTypeConnectionAccepted
	}
	n.send(conn.RequesterID, eventType, ConnectionResponsePayload{
		ID:          conn.ID,
		AddresseeID: conn.AddresseeID,
		Status:      conn.Status,
		UpdatedAt:   conn.UpdatedAt,
	})
}

func (n *HubNotifier) send(userID int64, eventType string, payload any) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		n.hub.log.Error("ws notifier: marshal error", "type", eventType, "error", err)
		return
	}
	n.hub.SendToUser(userID, evt)
}
