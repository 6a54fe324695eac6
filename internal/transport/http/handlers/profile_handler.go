package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vedran77/linkup/internal/domain"
	"github.com/vedran77/linkup/internal/service"
	"github.com/vedran77/linkup/internal/transport/http/middleware"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	profile, err := h.profileService.Me(r.Context(), identity.ID)
	if err != nil {
		writeServiceError(w, r, "get own profile", err)
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{"profile": profile})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var input service.UpdateProfileInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	profile, err := h.profileService.Update(r.Context(), identity.ID, input)
	if err != nil {
		if errors.Is(err, service.ErrHashtagLimit) {
			writeError(w, statusFor(err), "HASHTAG_LIMIT", hashtagLimitMessage(identity.Membership))
			return
		}
		writeServiceError(w, r, "update profile", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Profile updated successfully", map[string]any{"profile": profile})
}

func (h *ProfileHandler) RemovePicture(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	if err := h.profileService.RemovePicture(r.Context(), identity.ID); err != nil {
		writeServiceError(w, r, "remove profile picture", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Profile picture removed successfully", nil)
}

func hashtagLimitMessage(m domain.Membership) string {
	tier := "Free"
	if m == domain.MembershipPremium {
		tier = "Premium"
	}
	return fmt.Sprintf("%s users can select maximum %d hashtags", tier, m.MaxHashtags())
}
