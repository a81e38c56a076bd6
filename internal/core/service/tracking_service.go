package service

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"tagsense/internal/broadcast"
	"tagsense/internal/core/geofence"
	"tagsense/internal/core/model"
	"tagsense/internal/core/repository"
)

const (
	alertTimeout   = 15 * time.Second
	registryMinGap = 5 * time.Second
)

// AlarmDispatcher triggers a physical alert on a tag. Satisfied by
// notify.Client; tests substitute a fake.
type AlarmDispatcher interface {
	AlertTag(ctx context.Context, tagID uint32) error
}

// TrackingService is the single consumer of decoded position batches. It
// keeps the latest position per tag, runs geofence evaluation, fans events
// out to dashboard subscribers and dispatches alarms for fired alerts.
// ProcessBatch must be called from one goroutine; the read methods are safe
// to call from any.
type TrackingService struct {
	engine   *geofence.Engine
	hub      *broadcast.Hub
	notifier AlarmDispatcher
	tagRepo  repository.TagRepository

	mu     sync.RWMutex
	latest map[uint32]model.TagPosition

	// lastUpsert is touched only by ProcessBatch.
	lastUpsert map[uint32]time.Time
}

// NewTrackingService wires the pipeline. notifier and tagRepo may be nil;
// the corresponding side effects are then skipped.
func NewTrackingService(engine *geofence.Engine, hub *broadcast.Hub, notifier AlarmDispatcher, tagRepo repository.TagRepository) *TrackingService {
	return &TrackingService{
		engine:     engine,
		hub:        hub,
		notifier:   notifier,
		tagRepo:    tagRepo,
		latest:     make(map[uint32]model.TagPosition),
		lastUpsert: make(map[uint32]time.Time),
	}
}

// ProcessBatch ingests one decoded location frame: records each position,
// evaluates geofences and publishes the resulting events. Alert events are
// published before the position update that caused them so subscribers see
// the alarm first.
func (s *TrackingService) ProcessBatch(positions []model.TagPosition) {
	for _, pos := range positions {
		s.mu.Lock()
		s.latest[pos.TagID] = pos
		s.mu.Unlock()

		point := model.Point{X: pos.X, Y: pos.Y}
		alerts := s.engine.Evaluate(map[uint32]model.Point{pos.TagID: point})

		inDanger := false
		for _, zone := range s.engine.Zones() {
			if zone.Contains(pos.X, pos.Y) {
				inDanger = true
				break
			}
		}

		for _, alert := range alerts {
			s.publishAlert(alert)
			s.dispatchAlert(alert)
		}
		s.publishPosition(pos, inDanger)
		s.upsertTag(pos)
	}
}

func (s *TrackingService) publishAlert(alert model.Alert) {
	log.Printf("ALERT: tag %d entered zone %q at (%.2f, %.2f)",
		alert.TagID, alert.Zone.Name, alert.Position.X, alert.Position.Y)
	s.publish(broadcast.AlertEvent{
		Type:      broadcast.TypeAlert,
		TagID:     alert.TagID,
		ZoneName:  alert.Zone.Name,
		Position:  alert.Position,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (s *TrackingService) publishPosition(pos model.TagPosition, inDanger bool) {
	s.publish(broadcast.PositionUpdate{
		Type:         broadcast.TypePositionUpdate,
		TagID:        pos.TagID,
		X:            pos.X,
		Y:            pos.Y,
		Battery:      pos.Battery,
		Timestamp:    pos.Timestamp,
		InDangerZone: inDanger,
	})
}

func (s *TrackingService) publish(event interface{}) {
	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling dashboard event: %v", err)
		return
	}
	s.hub.Publish(msg)
}

// dispatchAlert fires the physical alarm off the ingestion path. A slow or
// dead alarm endpoint must never stall position processing.
func (s *TrackingService) dispatchAlert(alert model.Alert) {
	if s.notifier == nil {
		return
	}
	tagID := alert.TagID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()
		if err := s.notifier.AlertTag(ctx, tagID); err != nil {
			log.Printf("Error alerting tag %d: %v", tagID, err)
		}
	}()
}

// upsertTag refreshes the registry record for a tag, at most once per
// registryMinGap so a 10 Hz stream does not hammer the database.
func (s *TrackingService) upsertTag(pos model.TagPosition) {
	if s.tagRepo == nil {
		return
	}
	now := time.Now()
	if last, ok := s.lastUpsert[pos.TagID]; ok && now.Sub(last) < registryMinGap {
		return
	}
	s.lastUpsert[pos.TagID] = now

	tag := model.NewTag(pos)
	go func() {
		if err := s.tagRepo.Upsert(tag); err != nil {
			log.Printf("Error upserting tag %d: %v", tag.TagID, err)
		}
	}()
}

// LatestPositions returns the most recent position of every tag seen so far.
func (s *TrackingService) LatestPositions() map[uint32]model.TagPosition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uint32]model.TagPosition, len(s.latest))
	for id, pos := range s.latest {
		out[id] = pos
	}
	return out
}

// TagPosition returns the latest position of one tag, or false if the tag
// has not been seen.
func (s *TrackingService) TagPosition(tagID uint32) (model.TagPosition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.latest[tagID]
	return pos, ok
}

// ZoneInfos describes the configured danger zones for API and dashboard
// consumers.
func (s *TrackingService) ZoneInfos() []model.ZoneInfo {
	zones := s.engine.Zones()
	infos := make([]model.ZoneInfo, 0, len(zones))
	for _, zone := range zones {
		infos = append(infos, zone.Info())
	}
	return infos
}

// Snapshot builds the initial-state event sent to a dashboard subscriber on
// connect, already marshaled for the hub.
func (s *TrackingService) Snapshot() []byte {
	s.mu.RLock()
	positions := make(map[string]model.Point, len(s.latest))
	for id, pos := range s.latest {
		positions[strconv.FormatUint(uint64(id), 10)] = model.Point{X: pos.X, Y: pos.Y}
	}
	s.mu.RUnlock()

	msg, err := json.Marshal(broadcast.InitialState{
		Type:      broadcast.TypeInitialState,
		Zones:     s.ZoneInfos(),
		Positions: positions,
	})
	if err != nil {
		log.Printf("Error marshaling initial state: %v", err)
		return []byte(`{"type":"initial_state"}`)
	}
	return msg
}

// Tags lists the registry records, or an empty slice when no registry is
// configured.
func (s *TrackingService) Tags() ([]*model.Tag, error) {
	if s.tagRepo == nil {
		return []*model.Tag{}, nil
	}
	return s.tagRepo.FindAll()
}
