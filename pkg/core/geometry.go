package core

import "fmt"

// Point is a screen coordinate in points.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Bounds represents element position and size as reported by WDA.
// WDA reports fractional points, so the fields stay float64.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the center point of the bounds, truncated to whole points.
func (b Bounds) Center() Point {
	return Point{
		X: int(b.X + b.Width/2),
		Y: int(b.Y + b.Height/2),
	}
}

// Contains checks if a point is within the bounds
func (b Bounds) Contains(p Point) bool {
	x, y := float64(p.X), float64(p.Y)
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Location returns the bounds as the x/y/width/height map the
// Get Element Location keyword reports.
func (b Bounds) Location() map[string]float64 {
	return map[string]float64{
		"x":      b.X,
		"y":      b.Y,
		"width":  b.Width,
		"height": b.Height,
	}
}

// Size is the window size in points.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
