package rules

import (
	"math"
	"testing"
)

func TestDistanceMilesKnownPairs(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		want       float64
		tolerance  float64
	}{
		{name: "same point", lat1: 19.076, lon1: 72.8777, lat2: 19.076, lon2: 72.8777, want: 0, tolerance: 1e-9},
		{name: "mumbai to pune", lat1: 19.0760, lon1: 72.8777, lat2: 18.5204, lon2: 73.8567, want: 74.0, tolerance: 2},
		{name: "one degree of latitude", lat1: 0, lon1: 0, lat2: 1, lon2: 0, want: 69.09, tolerance: 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMiles(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Fatalf("unexpected distance: got %.3f want %.3f±%.3f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestDistanceMilesSymmetric(t *testing.T) {
	a := DistanceMiles(12.9716, 77.5946, 13.0827, 80.2707)
	b := DistanceMiles(13.0827, 80.2707, 12.9716, 77.5946)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance must be symmetric: %f vs %f", a, b)
	}
}

func TestValidCoordinates(t *testing.T) {
	if !ValidCoordinates(90, -180) {
		t.Fatalf("boundary coordinates must be valid")
	}
	if ValidCoordinates(91, 0) || ValidCoordinates(0, 181) || ValidCoordinates(math.NaN(), 0) {
		t.Fatalf("out of range coordinates must be invalid")
	}
}
