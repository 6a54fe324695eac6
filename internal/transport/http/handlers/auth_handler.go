package handlers

import (
	"net/http"

	"github.com/vedran77/linkup/internal/service"
	"github.com/vedran77/linkup/internal/transport/http/middleware"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	resp, err := h.authService.Register(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, "register", err)
		return
	}

	writeSuccess(w, http.StatusCreated, "User registered successfully", resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input service.LoginInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	resp, err := h.authService.Login(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, "login", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Login successful", resp)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	account, err := h.authService.Me(r.Context(), identity.ID)
	if err != nil {
		writeServiceError(w, r, "get current user", err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{"user": account})
}

// Logout only acknowledges; tokens are dropped by the client.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "Logged out successfully", nil)
}
