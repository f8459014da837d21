package chart

import (
	"strconv"
	"strings"
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MoveTo returns "M x y".
func MoveTo(p Point) string {
	return "M " + num(p.X) + " " + num(p.Y)
}

// CurveTo returns one "C" command with every segment's six numbers.
func CurveTo(segs []Segment) string {
	var b strings.Builder
	b.WriteString("C")
	for _, s := range segs {
		for _, v := range s.Tuple() {
			b.WriteByte(' ')
			b.WriteString(num(v))
		}
	}
	return b.String()
}

// VLine returns a move to (x, y) followed by a vertical run of h.
func VLine(x, y, h float64) string {
	return MoveTo(Point{x, y}) + " v " + num(h)
}
