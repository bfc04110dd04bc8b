package domain

import (
	"math"
	"testing"
)

func TestHaversineZeroDistance(t *testing.T) {
	got := Haversine(52.2319, 21.0059, 52.2319, 21.0059)
	if got != 0.0 {
		t.Errorf("same point: got %v, want 0.0", got)
	}
}

func TestHaversineWarsawPair(t *testing.T) {
	// Центр Варшавы -> точка примерно в 5 км восточнее.
	got := Haversine(52.23182630705096, 21.00591455254282, 52.2319, 21.0790)
	want := 4.9774
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("got %v, want %v within 1%%", got, want)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := Haversine(52.2319, 21.0059, 50.0620, 19.9382)
	b := Haversine(50.0620, 19.9382, 52.2319, 21.0059)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("not symmetric: %v vs %v", a, b)
	}
}
