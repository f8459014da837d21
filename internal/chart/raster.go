package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/i474232898/todays-weather/internal/weather"
)

// WritePNG renders a raster preview of the same plot values the vector
// drawing uses, one line per numeric series.
func WritePNG(w io.Writer, ds *weather.Dataset) error {
	if ds.Len() < 2 {
		return fmt.Errorf("raster preview needs at least 2 samples, got %d", ds.Len())
	}

	var series []chart.Series
	for _, s := range ds.Series {
		if !s.Field.Parse {
			continue
		}
		ys := make([]float64, s.Len())
		for i := range ys {
			ys[i] = s.Plot(i)
		}
		color := drawing.ColorFromHex(strings.TrimPrefix(s.Field.Color, "#"))
		series = append(series, chart.TimeSeries{
			Name: s.Field.Name,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
			},
			XValues: ds.Times,
			YValues: ys,
		})
	}
	if len(series) == 0 {
		return ErrNoSamples
	}

	graph := chart.Chart{
		Width:  int(float64(ds.Len()) * Pitch * RenderScale),
		Height: int(Height * RenderScale),
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeHourValueFormatter,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: Height},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}
