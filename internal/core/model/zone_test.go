package model

import (
	"errors"
	"testing"
)

func TestNewZoneValidation(t *testing.T) {
	tests := []struct {
		name                   string
		minX, minY, maxX, maxY float64
		wantErr                bool
	}{
		{"valid", 0, 0, 2, 3, false},
		{"valid negative origin", -5, -5, -1, -1, false},
		{"min_x equals max_x", 1, 0, 1, 2, true},
		{"min_x above max_x", 3, 0, 1, 2, true},
		{"min_y equals max_y", 0, 2, 1, 2, true},
		{"min_y above max_y", 0, 4, 1, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewZone("z", tt.minX, tt.minY, tt.maxX, tt.maxY)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidZoneBounds) {
					t.Errorf("NewZone() error = %v, want ErrInvalidZoneBounds", err)
				}
				return
			}
			if err != nil {
				t.Errorf("NewZone() unexpected error: %v", err)
			}
		})
	}
}

func TestZoneContainsClosedBounds(t *testing.T) {
	zone, err := NewZone("dock", 1, 1, 2, 2)
	if err != nil {
		t.Fatalf("NewZone() error: %v", err)
	}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"interior", 1.5, 1.5, true},
		{"min corner on boundary", 1, 1, true},
		{"max corner on boundary", 2, 2, true},
		{"left edge", 1, 1.5, true},
		{"top edge", 1.5, 2, true},
		{"just outside left", 0.999, 1.5, false},
		{"just outside top", 1.5, 2.001, false},
		{"far away", 10, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := zone.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestZoneInfo(t *testing.T) {
	zone, _ := NewZone("press", 0, 0, 4, 2)
	info := zone.Info()

	if info.Center != (Point{X: 2, Y: 1}) {
		t.Errorf("Center = %v, want (2,1)", info.Center)
	}

	wantCorners := []Point{{0, 0}, {4, 0}, {4, 2}, {0, 2}}
	if len(info.Corners) != len(wantCorners) {
		t.Fatalf("Corners length = %d, want %d", len(info.Corners), len(wantCorners))
	}
	for i, c := range wantCorners {
		if info.Corners[i] != c {
			t.Errorf("Corners[%d] = %v, want %v", i, info.Corners[i], c)
		}
	}
}
