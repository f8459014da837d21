package chart

import (
	"strings"
	"unicode"
)

// Segment is one cubic Bezier piece: two control points and the end anchor.
type Segment struct {
	C0, C1, End Point
}

// Tuple returns the segment as (c0.x, c0.y, c1.x, c1.y, end.x, end.y).
func (s Segment) Tuple() [6]float64 {
	return [6]float64{s.C0.X, s.C0.Y, s.C1.X, s.C1.Y, s.End.X, s.End.Y}
}

// Curve is an ordered run of anchors and the Bezier segments derived from them.
type Curve struct {
	ID       string
	Points   []Point
	Segments []Segment
}

// NewCurve derives the smooth path through points.
func NewCurve(id string, points []Point) Curve {
	return Curve{
		ID:       id,
		Points:   points,
		Segments: ControlSegments(points),
	}
}

// ControlSegments computes the cardinal-spline approximation: one segment
// for every source index i in [1, n-3], ending at points[i+1]. Fewer than
// four points yield no segments.
func ControlSegments(points []Point) []Segment {
	var segs []Segment
	for i := 1; i < len(points)-2; i++ {
		dist := points[i+1].X - points[i].X

		w0 := points[i+1].Sub(points[i-1]).Unit().Stretch(dist)
		c0 := points[i].Add(w0)

		w1 := points[i+2].Sub(points[i]).Unit().Stretch(dist)
		c1 := points[i+1].Sub(w1)

		segs = append(segs, Segment{C0: c0, C1: c1, End: points[i+1]})
	}
	return segs
}

// Path returns the path data: a move to the first anchor followed by one
// cubic command carrying every segment.
func (c Curve) Path() string {
	if len(c.Points) == 0 {
		return ""
	}
	d := MoveTo(c.Points[0])
	if len(c.Segments) > 0 {
		d += " " + CurveTo(c.Segments)
	}
	return d
}

// Length returns the length of the polyline through the anchors.
func (c Curve) Length() float64 {
	var total float64
	for i := 1; i < len(c.Points); i++ {
		total += c.Points[i].Sub(c.Points[i-1]).Magnitude()
	}
	return total
}

// CurveID returns the element id used for a field's curve.
func CurveID(code string) string {
	return "curve-" + strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '-'
	}, code)
}
