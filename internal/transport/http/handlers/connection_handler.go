package handlers

import (
	"net/http"

	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/service"
	"github.com/vedran77/linkup/internal/transport/http/middleware"
)

// ConnectionNotifier pushes lifecycle changes to the affected user in real
// time. Delivery is best effort.
type ConnectionNotifier interface {
	ConnectionRequested(conn *domain.Connection)
	ConnectionResponded(conn *domain.Connection)
}

type ConnectionHandler struct {
	connectionService *service.ConnectionService
	notifier          ConnectionNotifier
}

func NewConnectionHandler(connectionService *service.ConnectionService, notifier ConnectionNotifier) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService, notifier: notifier}
}

func (h *ConnectionHandler) Request(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var input service.ConnectionRequestInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	conn, err := h.connectionService.Request(r.Context(), identity.ID, input)
	if err != nil {
		writeServiceError(w, r, "request connection", err)
		return
	}

	if h.notifier != nil {
		h.notifier.ConnectionRequested(conn)
	}

	writeSuccess(w, http.StatusCreated, "Connection request sent successfully", map[string]any{
		"connectionId": conn.ID,
		"createdAt":    conn.CreatedAt,
	})
}

func (h *ConnectionHandler) Respond(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	connectionID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid connection ID")
		return
	}

	var input service.RespondInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	conn, err := h.connectionService.Respond(r.Context(), connectionID, identity.ID, input.Action)
	if err != nil {
		writeServiceError(w, r, "respond to connection", err)
		return
	}

	if h.notifier != nil {
		h.notifier.ConnectionResponded(conn)
	}

	writeSuccess(w, http.StatusOK, "Connection request "+string(input.Action)+"ed successfully", map[string]any{
		"status": conn.Status,
	})
}

func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	status := domain.ConnectionStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.ConnectionAccepted
	}

	connections, err := h.connectionService.List(r.Context(), identity.ID, status)
	if err != nil {
		writeServiceError(w, r, "list connections", err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"connections": connections,
		"status":      status,
	})
}
