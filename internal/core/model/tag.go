package model

import (
	"time"

	"github.com/google/uuid"
)

// Tag is the registry record for a tag the server has seen. Only the most
// recent sample's metadata is kept per tag; position history is out of
// scope.
type Tag struct {
	ID        string    `json:"id" bson:"_id"`
	TagID     uint32    `json:"tagId" bson:"tagid"`
	Battery   uint8     `json:"battery" bson:"battery"`
	MapID     uint8     `json:"mapId" bson:"mapid"`
	Floor     uint8     `json:"floor" bson:"floor"`
	Sleep     bool      `json:"sleep" bson:"sleep"`
	Charging  bool      `json:"charging" bson:"charging"`
	FirstSeen time.Time `json:"firstSeen" bson:"firstseen"`
	LastSeen  time.Time `json:"lastSeen" bson:"lastseen"`
}

// NewTag creates a registry record from a freshly decoded sample.
func NewTag(pos TagPosition) *Tag {
	now := time.Now()
	return &Tag{
		ID:        uuid.NewString(),
		TagID:     pos.TagID,
		Battery:   pos.Battery,
		MapID:     pos.MapID,
		Floor:     pos.Floor,
		Sleep:     pos.Sleep,
		Charging:  pos.Charging,
		FirstSeen: now,
		LastSeen:  now,
	}
}
