package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vedran77/linkup/internal/service"
)

type HashtagHandler struct {
	hashtagService *service.HashtagService
}

func NewHashtagHandler(hashtagService *service.HashtagService) *HashtagHandler {
	return &HashtagHandler{hashtagService: hashtagService}
}

func (h *HashtagHandler) List(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.hashtagService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, "list hashtags", err)
		return
	}
	writeSuccess(w, http.StatusOK, "", catalog)
}

func (h *HashtagHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	tags, err := h.hashtagService.ByCategory(r.Context(), category)
	if err != nil {
		writeServiceError(w, r, "list hashtags by category", err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"category": category, "hashtags": tags})
}

func (h *HashtagHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	tags, err := h.hashtagService.Popular(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, "popular hashtags", err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"hashtags": tags})
}

func (h *HashtagHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.hashtagService.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, "hashtag stats", err)
		return
	}
	writeSuccess(w, http.StatusOK, "", stats)
}

func (h *HashtagHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	tags, err := h.hashtagService.Search(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, "search hashtags", err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"query": q, "hashtags": tags})
}
