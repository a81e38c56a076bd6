package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"tagsense/internal/cache"
	"tagsense/internal/core/model"
	"tagsense/internal/core/service"
)

const (
	positionsCacheKey = "api:positions"
	positionsCacheTTL = time.Second
)

type PositionHandler struct {
	tracking *service.TrackingService
	cache    *cache.Cache
}

func NewPositionHandler(tracking *service.TrackingService, c *cache.Cache) *PositionHandler {
	return &PositionHandler{tracking: tracking, cache: c}
}

// GetPositions serves GET /api/positions: the latest known position of every
// tag. Reads go through the cache so dashboard polling does not contend with
// the ingestion pipeline.
func (h *PositionHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var cached map[uint32]model.TagPosition
	if err := h.cache.Get(r.Context(), positionsCacheKey, &cached); err == nil {
		json.NewEncoder(w).Encode(cached)
		return
	}

	positions := h.tracking.LatestPositions()
	// A failed cache write costs nothing; the response is served from memory.
	h.cache.Set(r.Context(), positionsCacheKey, positions, positionsCacheTTL)
	json.NewEncoder(w).Encode(positions)
}

// GetTagPosition serves GET /api/tags/position?tagId=N.
func (h *PositionHandler) GetTagPosition(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	raw := r.URL.Query().Get("tagId")
	tagID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "tagId query parameter required"})
		return
	}

	pos, ok := h.tracking.TagPosition(uint32(tagID))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error": fmt.Sprintf("Tag %d not found", tagID),
		})
		return
	}

	json.NewEncoder(w).Encode(pos)
}
