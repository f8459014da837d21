package chart

import "math"

// tension is the fixed one-third factor applied when stretching a tangent.
const tension = 3

// Point is an immutable 2D coordinate or vector.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Magnitude returns the Euclidean length of p.
func (p Point) Magnitude() float64 {
	return math.Hypot(p.X, p.Y)
}

// Unit returns p scaled to length 1.
func (p Point) Unit() Point {
	m := p.Magnitude()
	return Point{p.X / m, p.Y / m}
}

// Stretch returns a vector with horizontal run dist/3 that keeps the slope
// of p.
func (p Point) Stretch(dist float64) Point {
	return Point{dist / tension, dist * p.Y / (tension * p.X)}
}
