package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"tagsense/internal/notify"
)

// AlarmSender triggers the buzzer alarm on a set of tags. Satisfied by
// notify.Client.
type AlarmSender interface {
	SendAlarm(ctx context.Context, tagIDs []uint32, opts notify.AlarmOptions) error
}

type AlertHandler struct {
	alarms AlarmSender
}

func NewAlertHandler(alarms AlarmSender) *AlertHandler {
	return &AlertHandler{alarms: alarms}
}

type testAlertRequest struct {
	TagID uint32 `json:"tag_id"`
}

// TestAlert serves POST /api/alerts/test: fires the physical alarm on one
// tag so operators can verify the alarm path end to end.
func (h *AlertHandler) TestAlert(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req testAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TagID == 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "tag_id required"})
		return
	}

	if err := h.alarms.SendAlarm(r.Context(), []uint32{req.TagID}, notify.DefaultAlarm()); err != nil {
		log.Printf("Error sending test alert to tag %d: %v", req.TagID, err)
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "alarm dispatch failed"})
		return
	}

	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"message": "test alert sent",
	})
}
