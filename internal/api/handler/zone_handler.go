package handler

import (
	"encoding/json"
	"net/http"

	"tagsense/internal/core/service"
)

type ZoneHandler struct {
	tracking *service.TrackingService
}

func NewZoneHandler(tracking *service.TrackingService) *ZoneHandler {
	return &ZoneHandler{tracking: tracking}
}

// GetZones serves GET /api/zones.
func (h *ZoneHandler) GetZones(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.tracking.ZoneInfos())
}
