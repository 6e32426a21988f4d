package core

import "testing"

func TestBounds_Center(t *testing.T) {
	tests := []struct {
		bounds   Bounds
		expected Point
	}{
		{Bounds{X: 0, Y: 0, Width: 100, Height: 100}, Point{50, 50}},
		{Bounds{X: 200, Y: 200, Width: 50, Height: 50}, Point{225, 225}},
		{Bounds{X: 10, Y: 20, Width: 100, Height: 200}, Point{60, 120}},
		{Bounds{X: 0, Y: 0, Width: 0, Height: 0}, Point{0, 0}},
		{Bounds{X: 10.5, Y: 0, Width: 5, Height: 3}, Point{13, 1}},
	}

	for _, tt := range tests {
		if got := tt.bounds.Center(); got != tt.expected {
			t.Errorf("Bounds%+v.Center() = %v, want %v", tt.bounds, got, tt.expected)
		}
	}
}

func TestBounds_Contains(t *testing.T) {
	bounds := Bounds{X: 10, Y: 10, Width: 100, Height: 100}

	tests := []struct {
		p        Point
		expected bool
	}{
		{Point{50, 50}, true},    // Center
		{Point{10, 10}, true},    // Top-left corner
		{Point{109, 109}, true},  // Just inside bottom-right
		{Point{110, 110}, false}, // Exactly at boundary (exclusive)
		{Point{0, 0}, false},     // Outside
		{Point{200, 200}, false}, // Far outside
	}

	for _, tt := range tests {
		if got := bounds.Contains(tt.p); got != tt.expected {
			t.Errorf("Bounds.Contains(%v) = %v, want %v", tt.p, got, tt.expected)
		}
	}
}

func TestBounds_Location(t *testing.T) {
	loc := Bounds{X: 1, Y: 2, Width: 3, Height: 4}.Location()

	if loc["x"] != 1 || loc["y"] != 2 || loc["width"] != 3 || loc["height"] != 4 {
		t.Errorf("Location() = %v", loc)
	}
}
