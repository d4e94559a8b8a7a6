package utils

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		tolerance              float64
	}{
		{"same point", 12.9716, 77.5946, 12.9716, 77.5946, 0, 0.001},
		{"bangalore to chennai", 12.9716, 77.5946, 13.0827, 80.2707, 290, 10},
		{"one degree of latitude", 0, 0, 1, 0, 111.2, 0.5},
		{"across the antimeridian", 0, 179.5, 0, -179.5, 111.2, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("Haversine() = %.2f km, want %.2f +/- %.2f", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := Haversine(12.9716, 77.5946, 13.0827, 80.2707)
	b := Haversine(13.0827, 80.2707, 12.9716, 77.5946)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("Haversine is not symmetric: %f vs %f", a, b)
	}
}
