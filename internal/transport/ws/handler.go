package ws

import (
	"context"
	"net/http"

	"github.com/vedran77/linkup/internal/domain"
	"nhooyr.io/websocket"
)

// Authenticator resolves a bearer token to the calling user.
type Authenticator interface {
	Identify(ctx context.Context, token string) (*domain.Identity, error)
}

// ServeWS returns an HTTP handler that upgrades to WebSocket.
// Auth is done via ?token=xxx query param (browsers can't set headers on
// the upgrade request). originPatterns lists allowed Origin hosts; "*"
// disables the check.
func ServeWS(hub *Hub, auth Authenticator, originPatterns []string) http.HandlerFunc {
	opts := &websocket.AcceptOptions{OriginPatterns: originPatterns}
	for _, p := range originPatterns {
		if p == "*" {
			opts = &websocket.AcceptOptions{InsecureSkipVerify: true}
			break
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		identity, err := auth.Identify(r.Context(), tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, opts)
		if err != nil {
			hub.log.Info("ws accept error", "error", err)
			return
		}

		client := NewClient(hub, conn, identity.ID)
		if !hub.Register(client) {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		go client.WritePump(r.Context())
		client.ReadPump(r.Context())
	}
}
