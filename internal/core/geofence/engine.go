// Package geofence evaluates tag positions against the configured danger
// zones and decides when an entry should fire an alert.
package geofence

import (
	"time"

	"tagsense/internal/core/model"
)

type fireKey struct {
	tagID uint32
	zone  string
}

// Engine detects danger-zone entry with retrigger suppression. It is not
// safe for concurrent use: the ingestion pipeline is its single caller and
// single writer, which is what makes the hysteresis map lock-free.
type Engine struct {
	zones          []model.Zone
	retriggerAfter time.Duration
	targetTags     map[uint32]bool
	fired          map[fireKey]time.Time
	now            func() time.Time
}

// NewEngine builds an engine over the given zones, evaluated in order. An
// empty targetTags list disables allow-list filtering.
func NewEngine(zones []model.Zone, retriggerAfter time.Duration, targetTags []uint32) *Engine {
	var targets map[uint32]bool
	if len(targetTags) > 0 {
		targets = make(map[uint32]bool, len(targetTags))
		for _, id := range targetTags {
			targets[id] = true
		}
	}
	return &Engine{
		zones:          zones,
		retriggerAfter: retriggerAfter,
		targetTags:     targets,
		fired:          make(map[fireKey]time.Time),
		now:            time.Now,
	}
}

// Evaluate checks each tag's current position against every zone and
// returns the alerts that fired. A tag observed outside a zone has its
// retrigger entry cleared immediately, so exit followed by re-entry always
// alerts even inside the retrigger window.
func (e *Engine) Evaluate(positions map[uint32]model.Point) []model.Alert {
	var alerts []model.Alert
	for tagID, pos := range positions {
		if e.targetTags != nil && !e.targetTags[tagID] {
			continue
		}
		for _, zone := range e.zones {
			key := fireKey{tagID: tagID, zone: zone.Name}
			if !zone.Contains(pos.X, pos.Y) {
				delete(e.fired, key)
				continue
			}
			if e.canFire(key) {
				e.fired[key] = e.now()
				alerts = append(alerts, model.Alert{TagID: tagID, Zone: zone, Position: pos})
			}
		}
	}
	return alerts
}

// canFire allows an alert when the tag has no live entry for the zone or
// when the retrigger interval has fully elapsed since the last one.
func (e *Engine) canFire(key fireKey) bool {
	last, ok := e.fired[key]
	if !ok {
		return true
	}
	return e.now().Sub(last) >= e.retriggerAfter
}

// Zones returns the configured zones in evaluation order.
func (e *Engine) Zones() []model.Zone { return e.zones }
