package model

import (
	"errors"
	"fmt"
)

var ErrInvalidZoneBounds = errors.New("invalid zone bounds")

// Zone is an axis-aligned rectangular danger zone. Zones are built once at
// startup and never mutated afterwards; the name doubles as part of the
// geofence engine's hysteresis key, so it must be unique within the
// configured set.
type Zone struct {
	Name string  `json:"name"`
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

func NewZone(name string, minX, minY, maxX, maxY float64) (Zone, error) {
	if minX >= maxX {
		return Zone{}, fmt.Errorf("%w: min_x (%v) must be less than max_x (%v)", ErrInvalidZoneBounds, minX, maxX)
	}
	if minY >= maxY {
		return Zone{}, fmt.Errorf("%w: min_y (%v) must be less than max_y (%v)", ErrInvalidZoneBounds, minY, maxY)
	}
	return Zone{Name: name, MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}, nil
}

// Contains reports whether the point lies inside the rectangle. Bounds are
// closed: a point exactly on an edge counts as inside.
func (z Zone) Contains(x, y float64) bool {
	return x >= z.MinX && x <= z.MaxX && y >= z.MinY && y <= z.MaxY
}

// Center returns the middle of the rectangle.
func (z Zone) Center() Point {
	return Point{X: (z.MinX + z.MaxX) / 2, Y: (z.MinY + z.MaxY) / 2}
}

// Corners returns the rectangle corners starting at the bottom-left, going
// clockwise through bottom-right, top-right, top-left.
func (z Zone) Corners() []Point {
	return []Point{
		{X: z.MinX, Y: z.MinY},
		{X: z.MaxX, Y: z.MinY},
		{X: z.MaxX, Y: z.MaxY},
		{X: z.MinX, Y: z.MaxY},
	}
}

// ZoneInfo is the query and broadcast representation of a zone, with the
// derived center and corner points the dashboard draws.
type ZoneInfo struct {
	Name    string  `json:"name"`
	MinX    float64 `json:"min_x"`
	MinY    float64 `json:"min_y"`
	MaxX    float64 `json:"max_x"`
	MaxY    float64 `json:"max_y"`
	Center  Point   `json:"center"`
	Corners []Point `json:"corners"`
}

func (z Zone) Info() ZoneInfo {
	return ZoneInfo{
		Name:    z.Name,
		MinX:    z.MinX,
		MinY:    z.MinY,
		MaxX:    z.MaxX,
		MaxY:    z.MaxY,
		Center:  z.Center(),
		Corners: z.Corners(),
	}
}
