package handlers

import (
	"net/http"

	"github.com/vedran77/linkup/internal/discovery"
	"github.com/vedran77/linkup/internal/service"
	"github.com/vedran77/linkup/internal/transport/http/middleware"
)

type DiscoveryHandler struct {
	discoveryService *service.DiscoveryService
}

func NewDiscoveryHandler(discoveryService *service.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{discoveryService: discoveryService}
}

// Discover lists visible profiles. A signed-in caller never sees themself.
func (h *DiscoveryHandler) Discover(w http.ResponseWriter, r *http.Request) {
	filter := discovery.ParseFilter(r.URL.Query(), viewerID(r))

	result, err := h.discoveryService.Discover(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, "discover profiles", err)
		return
	}
	writeSuccess(w, http.StatusOK, "", result)
}

func (h *DiscoveryHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	view, err := h.discoveryService.GetProfile(r.Context(), userID, viewerID(r))
	if err != nil {
		writeServiceError(w, r, "get profile", err)
		return
	}
	writeSuccess(w, http.StatusOK, "", view)
}

func viewerID(r *http.Request) *int64 {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		return nil
	}
	id := identity.ID
	return &id
}
