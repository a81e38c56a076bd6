package model

// Alert is produced when a tag enters a danger zone, subject to the
// retrigger interval. Alerts are ephemeral: they are broadcast and handed to
// the alarm dispatcher, never stored.
type Alert struct {
	TagID    uint32
	Zone     Zone
	Position Point
}
