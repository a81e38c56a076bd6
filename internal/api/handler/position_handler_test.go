package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tagsense/internal/broadcast"
	"tagsense/internal/cache"
	"tagsense/internal/core/geofence"
	"tagsense/internal/core/model"
	"tagsense/internal/core/service"
)

func newTestTracking(t *testing.T) *service.TrackingService {
	t.Helper()
	zone, err := model.NewZone("press-pit", 1, 1, 2, 2)
	if err != nil {
		t.Fatalf("NewZone: %v", err)
	}
	engine := geofence.NewEngine([]model.Zone{zone}, 10*time.Second, nil)
	return service.NewTrackingService(engine, broadcast.NewHub(), nil, nil)
}

func TestGetTagPosition(t *testing.T) {
	tracking := newTestTracking(t)
	tracking.ProcessBatch([]model.TagPosition{{TagID: 7, X: 1.5, Y: 2.5, Battery: 88}})
	h := NewPositionHandler(tracking, cache.New(""))

	rec := httptest.NewRecorder()
	h.GetTagPosition(rec, httptest.NewRequest(http.MethodGet, "/api/tags/position?tagId=7", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var pos model.TagPosition
	if err := json.Unmarshal(rec.Body.Bytes(), &pos); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if pos.TagID != 7 || pos.X != 1.5 || pos.Battery != 88 {
		t.Errorf("position = %+v, want tag 7 at x=1.5 battery=88", pos)
	}
}

func TestGetTagPositionNotFound(t *testing.T) {
	h := NewPositionHandler(newTestTracking(t), cache.New(""))

	rec := httptest.NewRecorder()
	h.GetTagPosition(rec, httptest.NewRequest(http.MethodGet, "/api/tags/position?tagId=99", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body["error"] != "Tag 99 not found" {
		t.Errorf("error = %q, want %q", body["error"], "Tag 99 not found")
	}
}

func TestGetTagPositionBadQuery(t *testing.T) {
	h := NewPositionHandler(newTestTracking(t), cache.New(""))

	for _, query := range []string{"", "?tagId=abc", "?tagId=-1"} {
		rec := httptest.NewRecorder()
		h.GetTagPosition(rec, httptest.NewRequest(http.MethodGet, "/api/tags/position"+query, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %q: status = %d, want 400", query, rec.Code)
		}
	}
}

func TestGetPositions(t *testing.T) {
	tracking := newTestTracking(t)
	tracking.ProcessBatch([]model.TagPosition{
		{TagID: 7, X: 1.5, Y: 2.5},
		{TagID: 8, X: 3, Y: 4},
	})
	h := NewPositionHandler(tracking, cache.New(""))

	rec := httptest.NewRecorder()
	h.GetPositions(rec, httptest.NewRequest(http.MethodGet, "/api/positions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var positions map[uint32]model.TagPosition
	if err := json.Unmarshal(rec.Body.Bytes(), &positions); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(positions))
	}
	if positions[8].Y != 4 {
		t.Errorf("tag 8 y = %v, want 4", positions[8].Y)
	}
}
