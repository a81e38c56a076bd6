package model

// CoordinateKind identifies how a decoded sample's coordinates are expressed.
type CoordinateKind uint8

const (
	CoordinateRelative CoordinateKind = iota // map-relative, meters
	CoordinateLonLat                         // WGS84 degrees
	CoordinateGlobal                         // global plane, meters
)

func (k CoordinateKind) String() string {
	switch k {
	case CoordinateRelative:
		return "relative"
	case CoordinateLonLat:
		return "longitude_latitude"
	case CoordinateGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// TagPosition is one decoded location sample for a single tag. Values are
// immutable once decoded; the pipeline copies what it needs into events.
type TagPosition struct {
	TagID       uint32         `json:"tagId"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Z           float64        `json:"z"`
	MapID       uint8          `json:"mapId"`
	Battery     uint8          `json:"battery"`
	Sleep       bool           `json:"sleep"`
	Charging    bool           `json:"charging"`
	Timestamp   uint32         `json:"timestamp"` // device clock
	Floor       uint8          `json:"floor"`
	Positioning uint8          `json:"positioningIndication"`
	Kind        CoordinateKind `json:"coordinateKind"`
}

// Point is a 2D position on the map plane, in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
