package weather

import "strconv"

const (
	// NormalizedRange is the height of the vertical band normalized series
	// are rescaled onto.
	NormalizedRange = 300.0

	// RawMultiplier brings values of non-normalized series (percentages,
	// UV index x10) into the same band.
	RawMultiplier = 3.0
)

// Plot returns the vertical plot value of sample i, with 0 at the bottom of
// the band. Normalized series land in [0, NormalizedRange]; a constant
// normalized series (max == min) plots at 0.
func (s *Series) Plot(i int) float64 {
	v := s.Values[i]
	if s.Bound == nil {
		return RawMultiplier * v
	}
	span := s.Bound.Max - s.Bound.Min
	if span == 0 {
		return 0
	}
	return NormalizedRange * (v - s.Bound.Min) / span
}

// Y returns the plot value of sample i inverted against the band height, for
// a coordinate system whose origin is top-left.
func (s *Series) Y(i int) float64 {
	return NormalizedRange - s.Plot(i)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
