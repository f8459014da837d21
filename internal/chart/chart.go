package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/i474232898/todays-weather/internal/weather"
)

const (
	// Pitch is the horizontal distance between samples, in logical units.
	Pitch = 20.0

	// Height is the logical height of the drawing; it matches the band
	// normalized series are scaled onto.
	Height = weather.NormalizedRange

	// RenderScale is the ratio of declared to logical size.
	RenderScale = 2

	haloColor   = "#808080"
	haloWidth   = "8"
	haloOpacity = "0.25"

	labelFontSize   = 8.0
	labelCharWidth  = labelFontSize * 0.6
	labelSeparator  = " · "
	calloutFontSize = "5"
	timeFontSize    = "6"
)

var dayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ErrNoSamples is returned when a dataset has nothing to draw.
var ErrNoSamples = errors.New("no samples to draw")

// Chart is one composed drawing and the curves it was built from.
type Chart struct {
	Width  float64
	Height float64
	Curves []Curve
	Root   *html.Node
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// DayBoundaries returns the sample indexes that start a new UTC day. The
// first sample anchors the frame and is never a boundary.
func DayBoundaries(times []time.Time) []int {
	var out []int
	if len(times) == 0 {
		return out
	}
	day := times[0]
	for i := 1; i < len(times); i++ {
		if SameDay(day, times[i]) {
			continue
		}
		day = times[i]
		out = append(out, i)
	}
	return out
}

// TimeLabel formats t as day name plus UTC hour, e.g. "Mon 09:00Z".
func TimeLabel(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s %02d:00Z", dayNames[t.Weekday()], t.Hour())
}

// Points maps a numeric series onto the chart: x is the sample index times
// the pitch, y the inverted plot value.
func Points(s *weather.Series) []Point {
	points := make([]Point, s.Len())
	for i := range points {
		points[i] = Point{X: float64(i) * Pitch, Y: s.Y(i)}
	}
	return points
}

// Build composes the drawing for ds: curve definitions, halo strokes,
// path-following labels, then the axis and period markup.
func Build(ds *weather.Dataset) (*Chart, error) {
	n := ds.Len()
	if n == 0 {
		return nil, ErrNoSamples
	}

	c := &Chart{
		Width:  float64(n) * Pitch,
		Height: Height,
	}

	var plotted []*weather.Series
	for _, s := range ds.Series {
		if s.Len() != n {
			return nil, fmt.Errorf("series %s has %d samples, want %d", s.Code(), s.Len(), n)
		}
		if !s.Field.Parse {
			continue
		}
		plotted = append(plotted, s)
		c.Curves = append(c.Curves, NewCurve(CurveID(s.Code()), Points(s)))
	}

	c.Root = appendAll(element("svg",
		"xmlns", svgNamespace,
		"version", "1.1",
		"width", num(c.Width*RenderScale),
		"height", num(c.Height*RenderScale),
		"viewBox", fmt.Sprintf("0 0 %s %s", num(c.Width), num(c.Height)),
	),
		c.definitions(),
		c.halos(),
		c.labels(plotted),
		c.axes(ds),
	)
	return c, nil
}

func (c *Chart) definitions() *html.Node {
	defs := element("defs")
	for _, cv := range c.Curves {
		defs.AppendChild(path(cv.Path(), "id", cv.ID))
	}
	return defs
}

func (c *Chart) halos() *html.Node {
	g := element("g",
		"class", "halo",
		"fill", "none",
		"stroke", haloColor,
		"stroke-width", haloWidth,
		"stroke-opacity", haloOpacity,
		"stroke-linejoin", "round",
		"stroke-linecap", "round",
	)
	for _, cv := range c.Curves {
		g.AppendChild(use(cv.ID))
	}
	return g
}

func (c *Chart) labels(plotted []*weather.Series) *html.Node {
	g := element("g",
		"class", "labels",
		"font-family", "sans-serif",
		"font-size", num(labelFontSize),
		"dominant-baseline", "middle",
	)
	for i, cv := range c.Curves {
		f := plotted[i].Field
		g.AppendChild(textPath(cv.ID, repeatLabel(f.Name, cv.Length()), "fill", f.Color))
	}
	return g
}

// repeatLabel repeats name until it covers length logical units.
func repeatLabel(name string, length float64) string {
	unit := float64(utf8.RuneCountInString(name+labelSeparator)) * labelCharWidth
	count := int(math.Ceil(length / unit))
	if count < 1 {
		count = 1
	}
	parts := make([]string, count)
	for i := range parts {
		parts[i] = name
	}
	return strings.Join(parts, labelSeparator)
}

func (c *Chart) axes(ds *weather.Dataset) *html.Node {
	g := element("g", "class", "axes")

	periods := element("g", "class", "periods", "fill", "#000000")
	times := element("g", "class", "times", "font-family", "sans-serif", "font-size", timeFontSize, "fill", "#333333")
	callouts := element("g", "class", "callouts", "font-family", "sans-serif", "font-size", calloutFontSize, "text-anchor", "middle")

	for i, at := range ds.Times {
		x := float64(i) * Pitch
		opacity := "0.03"
		if i%2 == 1 {
			opacity = "0.06"
		}
		periods.AppendChild(element("rect",
			"x", num(x-Pitch/2),
			"y", "0",
			"width", num(Pitch),
			"height", num(c.Height),
			"fill-opacity", opacity,
		))

		ty := 4.0
		times.AppendChild(text(TimeLabel(at),
			"x", num(x),
			"y", num(ty),
			"transform", fmt.Sprintf("rotate(90 %s %s)", num(x), num(ty)),
		))

		for _, s := range ds.Series {
			y := c.Height - 2
			if s.Field.Parse {
				y = s.Y(i)
			}
			callouts.AppendChild(text(s.Callout(i),
				"x", num(x),
				"y", num(y),
				"fill", s.Field.Color,
			))
		}
	}

	days := element("g", "class", "days", "stroke", "#000000", "stroke-width", "1", "fill", "none")
	for _, i := range DayBoundaries(ds.Times) {
		days.AppendChild(path(VLine(float64(i)*Pitch, 0, c.Height)))
	}

	return appendAll(g, periods, days, times, callouts)
}

// WriteSVG writes the drawing as a standalone SVG document.
func (c *Chart) WriteSVG(w io.Writer) error {
	if _, err := io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"); err != nil {
		return err
	}
	return Render(w, c.Root)
}

// SVG returns the drawing as markup.
func (c *Chart) SVG() ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, c.Root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
