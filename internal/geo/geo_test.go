package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestDistanceMiles_Symmetry(t *testing.T) {
	pairs := [][2]orb.Point{
		{{-122.4194, 37.7749}, {-122.2712, 37.8044}}, // SF -> Oakland
		{{-87.6298, 41.8781}, {-87.9073, 41.9742}},   // Chicago -> O'Hare
		{{0, 0}, {1, 1}},
		{{-180, -89}, {180, 89}},
	}
	for _, pair := range pairs {
		ab := DistanceMiles(pair[0], pair[1])
		ba := DistanceMiles(pair[1], pair[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("distance not symmetric: %v vs %v for %v", ab, ba, pair)
		}
	}
}

func TestDistanceMiles_Zero(t *testing.T) {
	p := orb.Point{-73.9857, 40.7484}
	if d := DistanceMiles(p, p); d != 0 {
		t.Errorf("expected zero distance to self, got %v", d)
	}
}

func TestDistanceMiles_KnownDistance(t *testing.T) {
	// SF downtown to Oakland downtown is roughly 8.3 miles great-circle.
	sf := orb.Point{-122.4194, 37.7749}
	oak := orb.Point{-122.2712, 37.8044}
	d := DistanceMiles(sf, oak)
	if d < 7.5 || d > 9.5 {
		t.Errorf("unexpected SF-Oakland distance %v", d)
	}
}

func TestCostAndEmissions(t *testing.T) {
	if got := Cost(12, 3.5); got != 42 {
		t.Errorf("cost: expected 42 got %v", got)
	}
	if got := Emissions(10, 1.6); math.Abs(got-16) > 1e-9 {
		t.Errorf("emissions: expected 16 got %v", got)
	}
	if got := Cost(0, 3.5); got != 0 {
		t.Errorf("zero distance should cost nothing, got %v", got)
	}
}
