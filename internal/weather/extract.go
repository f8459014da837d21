package weather

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// periodLayouts are tried in order when parsing a period's base date.
var periodLayouts = []string{
	"2006-01-02Z07:00",
	"2006-01-02",
	time.RFC3339,
}

// DecodeDocument decodes and structurally validates a SiteRep document.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &doc, nil
}

// rawSeries is the first-pass output for one field: the unparsed values in
// sample order.
type rawSeries struct {
	field Field
	unit  string
	raw   []string
}

// Extract turns a document into one Series per tracked field declared by the
// document, plus the shared sample timestamps. Any missing key or unparsable
// value fails the whole extraction.
func Extract(doc *Document, fields FieldTable) (*Dataset, error) {
	if doc == nil || doc.SiteRep == nil || doc.SiteRep.Wx == nil || doc.SiteRep.DV == nil || doc.SiteRep.DV.Location == nil {
		return nil, malformed("SiteRep", "missing Wx or DV.Location")
	}

	raws, times, err := collect(doc, fields)
	if err != nil {
		return nil, err
	}

	series := make([]*Series, 0, len(raws))
	for _, r := range raws {
		s, err := parseSeries(r)
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}

	bounds := groupBounds(series)
	for _, s := range series {
		if b, ok := bounds[s.Field.Group]; ok && s.Field.Normalized() {
			s.Bound = &b
		}
	}

	return &Dataset{
		Series: series,
		Times:  times,
		Bounds: bounds,
	}, nil
}

// collect walks the periods once, gathering timestamps and raw values for
// every tracked field declared in Wx.Param.
func collect(doc *Document, fields FieldTable) ([]*rawSeries, []time.Time, error) {
	units := make(map[string]string, len(doc.SiteRep.Wx.Param))
	for i, p := range doc.SiteRep.Wx.Param {
		if p.Name == "" {
			return nil, nil, malformed(fmt.Sprintf("SiteRep.Wx.Param[%d]", i), "missing name")
		}
		units[p.Name] = p.Units
	}

	var raws []*rawSeries
	for _, f := range fields {
		u, ok := units[f.Code]
		if !ok {
			continue
		}
		raws = append(raws, &rawSeries{field: f, unit: u})
	}

	var times []time.Time
	for i, period := range doc.SiteRep.DV.Location.Period {
		path := fmt.Sprintf("SiteRep.DV.Location.Period[%d]", i)
		base, err := parsePeriodDate(period.Value)
		if err != nil {
			return nil, nil, malformed(path+".value", "%v", err)
		}
		if period.Rep == nil {
			return nil, nil, malformed(path+".Rep", "missing")
		}

		for j, rep := range period.Rep {
			repPath := fmt.Sprintf("%s.Rep[%d]", path, j)
			rawOffset, ok := rep.Offset()
			if !ok {
				return nil, nil, malformed(repPath+".$", "missing minute offset")
			}
			offset, err := strconv.Atoi(rawOffset)
			if err != nil {
				return nil, nil, malformed(repPath+".$", "invalid minute offset %q", rawOffset)
			}

			at := base.Add(time.Duration(offset) * time.Minute)
			if n := len(times); n > 0 && at.Before(times[n-1]) {
				return nil, nil, malformed(repPath+".$", "report at %s precedes %s", at.Format(time.RFC3339), times[n-1].Format(time.RFC3339))
			}
			times = append(times, at)

			for _, r := range raws {
				v, ok := rep[r.field.Code]
				if !ok {
					return nil, nil, malformed(repPath+"."+r.field.Code, "missing value")
				}
				r.raw = append(r.raw, v)
			}
		}
	}

	return raws, times, nil
}

// parseSeries converts raw values to scaled numbers, or keeps them as text
// for fields that are not parsed.
func parseSeries(r *rawSeries) (*Series, error) {
	s := &Series{Field: r.field, Unit: r.unit}
	if !r.field.Parse {
		s.Text = append([]string(nil), r.raw...)
		return s, nil
	}

	scale := r.field.Scale
	if scale == 0 {
		scale = 1
	}
	s.Values = make([]float64, len(r.raw))
	for i, raw := range r.raw {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, malformed(r.field.Code, "sample %d: invalid number %q", i, raw)
		}
		s.Values[i] = v * scale
	}
	return s, nil
}

// groupBounds computes one {min,max} per normalization group over every
// scaled value of every series in that group.
func groupBounds(series []*Series) map[string]Bound {
	bounds := make(map[string]Bound)
	for _, s := range series {
		if !s.Field.Normalized() || !s.Field.Parse || len(s.Values) == 0 {
			continue
		}
		b, ok := bounds[s.Field.Group]
		if !ok {
			b = Bound{Min: math.Inf(1), Max: math.Inf(-1)}
		}
		for _, v := range s.Values {
			b.Min = math.Min(b.Min, v)
			b.Max = math.Max(b.Max, v)
		}
		bounds[s.Field.Group] = b
	}
	return bounds
}

func parsePeriodDate(value string) (time.Time, error) {
	for _, layout := range periodLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}
