package broadcast

import (
	"tagsense/internal/core/model"
)

// Event type tags on the dashboard stream.
const (
	TypeInitialState   = "initial_state"
	TypePositionUpdate = "position_update"
	TypeAlert          = "alert"
)

// InitialState is sent once to each new subscriber: the zone configuration
// and the latest known position of every tracked tag. Position keys are
// decimal tag ids.
type InitialState struct {
	Type      string                 `json:"type"`
	Zones     []model.ZoneInfo       `json:"zones"`
	Positions map[string]model.Point `json:"positions"`
}

// PositionUpdate mirrors one decoded tag sample.
type PositionUpdate struct {
	Type         string  `json:"type"`
	TagID        uint32  `json:"tag_id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Battery      uint8   `json:"battery"`
	Timestamp    uint32  `json:"timestamp"`
	InDangerZone bool    `json:"in_danger_zone"`
}

// AlertEvent reports a danger zone entry. Timestamp is unix milliseconds on
// the server clock.
type AlertEvent struct {
	Type      string      `json:"type"`
	TagID     uint32      `json:"tag_id"`
	ZoneName  string      `json:"zone_name"`
	Position  model.Point `json:"position"`
	Timestamp int64       `json:"timestamp"`
}
