package handlers

import (
	"net/http"

	"github.com/vedran77/linkup/internal/service"
	"github.com/vedran77/linkup/internal/transport/http/middleware"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	stats, err := h.userService.Stats(r.Context(), identity.ID)
	if err != nil {
		writeServiceError(w, r, "user stats", err)
		return
	}
	writeSuccess(w, http.StatusOK, "", stats)
}

func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	if err := h.userService.Deactivate(r.Context(), identity.ID); err != nil {
		writeServiceError(w, r, "deactivate account", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Account deactivated successfully", nil)
}
