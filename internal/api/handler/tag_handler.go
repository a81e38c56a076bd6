package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"tagsense/internal/core/service"
)

type TagHandler struct {
	tracking *service.TrackingService
}

func NewTagHandler(tracking *service.TrackingService) *TagHandler {
	return &TagHandler{tracking: tracking}
}

// ListTags serves GET /api/tags/list: the registry of every tag ever seen,
// with battery and status metadata.
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	tags, err := h.tracking.Tags()
	if err != nil {
		log.Printf("Error listing tags: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to list tags"})
		return
	}

	json.NewEncoder(w).Encode(tags)
}
