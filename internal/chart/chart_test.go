package chart

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/i474232898/todays-weather/internal/weather"
)

func fixtureDataset(t *testing.T) *weather.Dataset {
	t.Helper()
	data, err := os.ReadFile("../weather/testdata/forecast.json")
	require.NoError(t, err)
	doc, err := weather.DecodeDocument(data)
	require.NoError(t, err)
	ds, err := weather.Extract(doc, weather.DefaultFields())
	require.NoError(t, err)
	return ds
}

func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	if n.Type == html.ElementNode && n.Data == tag {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, tag)...)
	}
	return out
}

func mustAttr(t *testing.T, n *html.Node, key string) string {
	t.Helper()
	v, ok := attr(n, key)
	require.True(t, ok, "<%s> has no %s", n.Data, key)
	return v
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 1, 15, 23, 59, 59, 999_000_000, time.UTC)
	b := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	assert.False(t, SameDay(a, b), "one millisecond across midnight")

	c := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	d := time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)
	assert.True(t, SameDay(c, d), "23 hours apart within one day")

	// Calendar days are compared in UTC regardless of the input zone.
	east := time.FixedZone("UTC+2", 2*60*60)
	assert.True(t, SameDay(time.Date(2024, 1, 16, 1, 0, 0, 0, east), d))
}

func TestDayBoundaries(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 16, 3, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 17, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, []int{2, 4}, DayBoundaries(times))
	assert.Empty(t, DayBoundaries(times[:1]))
	assert.Empty(t, DayBoundaries(nil))
}

func TestTimeLabel(t *testing.T) {
	assert.Equal(t, "Mon 09:00Z", TimeLabel(time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Tue 00:00Z", TimeLabel(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Sun 21:00Z", TimeLabel(time.Date(2024, 1, 21, 21, 0, 0, 0, time.UTC)))
}

func TestRepeatLabel(t *testing.T) {
	assert.Equal(t, "T", repeatLabel("T", 0))

	unit := float64(len([]rune("Temp · "))) * labelCharWidth
	got := repeatLabel("Temp", unit*2.5)
	assert.Equal(t, 3, strings.Count(got, "Temp"))
	assert.Equal(t, 2, strings.Count(got, labelSeparator))
}

func TestBuildEmptyDataset(t *testing.T) {
	_, err := Build(&weather.Dataset{})
	assert.True(t, errors.Is(err, ErrNoSamples))
}

func TestBuildRejectsRaggedSeries(t *testing.T) {
	ds := &weather.Dataset{
		Times: []time.Time{time.Unix(0, 0), time.Unix(3600, 0)},
		Series: []*weather.Series{{
			Field:  weather.Field{Code: "T", Name: "Temperature", Color: "#ff0000", Parse: true, Scale: 1},
			Values: []float64{1},
		}},
	}
	_, err := Build(ds)
	assert.Error(t, err)
}

func TestBuildStructure(t *testing.T) {
	ds := fixtureDataset(t)

	c, err := Build(ds)
	require.NoError(t, err)

	assert.Equal(t, 100.0, c.Width)
	assert.Equal(t, 300.0, c.Height)
	assert.Len(t, c.Curves, len(ds.Series))

	root := c.Root
	assert.Equal(t, "svg", root.Data)
	assert.Equal(t, "200", mustAttr(t, root, "width"))
	assert.Equal(t, "600", mustAttr(t, root, "height"))
	assert.Equal(t, "0 0 100 300", mustAttr(t, root, "viewBox"))

	children := elementChildren(root)
	require.Len(t, children, 4)
	assert.Equal(t, "defs", children[0].Data)
	assert.Equal(t, "halo", mustAttr(t, children[1], "class"))
	assert.Equal(t, "labels", mustAttr(t, children[2], "class"))
	assert.Equal(t, "axes", mustAttr(t, children[3], "class"))

	// Every curve is defined once and referenced by one halo and one label.
	defs := elementChildren(children[0])
	require.Len(t, defs, len(c.Curves))
	for i, d := range defs {
		assert.Equal(t, c.Curves[i].ID, mustAttr(t, d, "id"))
		assert.Equal(t, c.Curves[i].Path(), mustAttr(t, d, "d"))
	}
	uses := findAll(children[1], "use")
	require.Len(t, uses, len(c.Curves))
	assert.Equal(t, "#curve-T", mustAttr(t, uses[0], "href"))

	textPaths := findAll(children[2], "textPath")
	require.Len(t, textPaths, len(c.Curves))
	assert.Equal(t, "#curve-T", mustAttr(t, textPaths[0], "href"))
	assert.Contains(t, textPaths[0].FirstChild.Data, "Temperature")

	// One period band per sample, alternating shade.
	rects := findAll(children[3], "rect")
	require.Len(t, rects, 5)
	assert.Equal(t, "0.03", mustAttr(t, rects[0], "fill-opacity"))
	assert.Equal(t, "0.06", mustAttr(t, rects[1], "fill-opacity"))
	assert.Equal(t, "-10", mustAttr(t, rects[0], "x"))

	// The fixture crosses midnight at the third sample.
	var days *html.Node
	for _, g := range elementChildren(children[3]) {
		if v, _ := attr(g, "class"); v == "days" {
			days = g
		}
	}
	require.NotNil(t, days)
	lines := elementChildren(days)
	require.Len(t, lines, 1)
	assert.Equal(t, "M 40 0 v 300", mustAttr(t, lines[0], "d"))
}

func TestBuildCallouts(t *testing.T) {
	ds := fixtureDataset(t)
	c, err := Build(ds)
	require.NoError(t, err)

	var callouts *html.Node
	for _, g := range findAll(c.Root, "g") {
		if v, _ := attr(g, "class"); v == "callouts" {
			callouts = g
		}
	}
	require.NotNil(t, callouts)

	texts := elementChildren(callouts)
	require.Len(t, texts, ds.Len()*len(ds.Series))

	var got []string
	for _, n := range texts {
		got = append(got, n.FirstChild.Data)
	}
	// UV is drawn ten times larger, so the callout carries the scaled value.
	assert.Contains(t, got, "20")
	assert.Contains(t, got, "8C")

	temp, _ := ds.Lookup("T")
	assert.Equal(t, num(temp.Y(0)), mustAttr(t, texts[0], "y"))
	assert.Equal(t, "#ff0000", mustAttr(t, texts[0], "fill"))
}

func TestBuildTextFieldHasNoCurve(t *testing.T) {
	ds := &weather.Dataset{
		Times: []time.Time{time.Unix(0, 0).UTC(), time.Unix(3600, 0).UTC()},
		Series: []*weather.Series{
			{
				Field:  weather.Field{Code: "T", Name: "Temperature", Color: "#ff0000", Parse: true, Scale: 1},
				Values: []float64{1, 2},
			},
			{
				Field: weather.Field{Code: "V", Name: "Visibility", Color: "#000000", Scale: 1},
				Text:  []string{"GO", "VG"},
			},
		},
	}

	c, err := Build(ds)
	require.NoError(t, err)
	require.Len(t, c.Curves, 1)
	assert.Equal(t, "curve-T", c.Curves[0].ID)
}

func TestBuildIsDeterministic(t *testing.T) {
	a, err := Build(fixtureDataset(t))
	require.NoError(t, err)
	b, err := Build(fixtureDataset(t))
	require.NoError(t, err)

	sa, err := a.SVG()
	require.NoError(t, err)
	sb, err := b.SVG()
	require.NoError(t, err)
	assert.Equal(t, string(sa), string(sb))
}

func TestWriteSVG(t *testing.T) {
	c, err := Build(fixtureDataset(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.WriteSVG(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `<svg xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, out, `<textPath href="#curve-T">`)
	assert.Contains(t, out, "Mon 18:00Z")
	assert.Less(t, strings.Index(out, "<defs>"), strings.Index(out, `class="halo"`))
	assert.Less(t, strings.Index(out, `class="labels"`), strings.Index(out, `class="axes"`))
}
