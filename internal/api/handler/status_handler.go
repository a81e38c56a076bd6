package handler

import (
	"encoding/json"
	"net/http"

	"tagsense/internal/broadcast"
	"tagsense/internal/core/model"
	"tagsense/internal/core/service"
	"tagsense/internal/protocol/localsense"
)

// StatusHandler reports server health and pipeline counters.
type StatusHandler struct {
	tracking    *service.TrackingService
	client      *localsense.Client
	hub         *broadcast.Hub
	targetTagID uint32
}

func NewStatusHandler(tracking *service.TrackingService, client *localsense.Client, hub *broadcast.Hub, targetTagID uint32) *StatusHandler {
	return &StatusHandler{
		tracking:    tracking,
		client:      client,
		hub:         hub,
		targetTagID: targetTagID,
	}
}

type statusResponse struct {
	UWBConnected     bool                         `json:"uwb_connected"`
	TotalReceived    uint64                       `json:"total_received"`
	DashboardClients int                          `json:"dashboard_clients"`
	TargetTagID      uint32                       `json:"target_tag_id"`
	Zones            []model.ZoneInfo             `json:"zones"`
	LatestPositions  map[uint32]model.TagPosition `json:"latest_positions"`
}

// GetStatus serves GET /api/status.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		UWBConnected:     h.client.Connected(),
		TotalReceived:    h.client.TagsReceived(),
		DashboardClients: h.hub.Count(),
		TargetTagID:      h.targetTagID,
		Zones:            h.tracking.ZoneInfos(),
		LatestPositions:  h.tracking.LatestPositions(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
