package weather

import (
	"bytes"
	"encoding/json"
	"time"
)

// Kind identifies one of the documents the backend can serve.
type Kind string

const (
	KindForecast    Kind = "forecast"
	KindObservation Kind = "observation"
	KindNarrative   Kind = "narrative"
)

// Location represents a named place used to resolve the nearest DataPoint site.
// City/Country must be provided.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Key returns a canonical string key for this location.
func (l Location) Key() string {
	return l.City + ":" + l.Country
}

// Document is the DataPoint SiteRep payload shared by the forecast and
// observation feeds.
type Document struct {
	SiteRep *SiteRep `json:"SiteRep" validate:"required"`
}

type SiteRep struct {
	Wx *Wx `json:"Wx" validate:"required"`
	DV *DV `json:"DV" validate:"required"`
}

// Wx declares the fields present in every report.
type Wx struct {
	Param List[Param] `json:"Param" validate:"required,dive"`
}

// Param is one field definition: short code, unit and a human description.
type Param struct {
	Name        string `json:"name" validate:"required"`
	Units       string `json:"units"`
	Description string `json:"$"`
}

type DV struct {
	DataDate string        `json:"dataDate"`
	Type     string        `json:"type"`
	Location *SiteLocation `json:"Location" validate:"required"`
}

// SiteLocation is the DataPoint site the periods were reported for.
type SiteLocation struct {
	ID        string       `json:"i"`
	Name      string       `json:"name"`
	Country   string       `json:"country"`
	Latitude  string       `json:"lat"`
	Longitude string       `json:"lon"`
	Period    List[Period] `json:"Period" validate:"required,dive"`
}

// Period is one day of reports.
type Period struct {
	Type  string    `json:"type"`
	Value string    `json:"value" validate:"required"`
	Rep   List[Rep] `json:"Rep" validate:"required"`
}

// Rep is a single report: "$" holds the minute offset from the period's
// midnight, every other key is a field code mapped to its raw value.
type Rep map[string]string

// Offset returns the raw minute offset of the report.
func (r Rep) Offset() (string, bool) {
	v, ok := r["$"]
	return v, ok
}

// List decodes a JSON array, or a single bare object as a one-element list.
// DataPoint collapses single-element arrays this way.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*l = List[T]{item}
	return nil
}

// Sample is one timestamped observation across all tracked fields.
type Sample struct {
	At     time.Time
	Values map[string]float64
}

// Bound is the {min,max} range shared by every field of a normalization group.
type Bound struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Series is one tracked field's full observation sequence.
type Series struct {
	Field Field
	Unit  string
	// Values holds one scaled value per global sample index. For fields
	// that are not parsed it stays zero and Text carries the raw value.
	Values []float64
	Text   []string
	// Bound is set only for fields that belong to a normalization group.
	Bound *Bound
}

// Code returns the field code of the series.
func (s *Series) Code() string {
	return s.Field.Code
}

// Len returns the number of samples in the series.
func (s *Series) Len() int {
	if s.Field.Parse {
		return len(s.Values)
	}
	return len(s.Text)
}

// Callout returns the text shown next to sample i: the scaled value, not
// the normalized one, followed by the unit.
func (s *Series) Callout(i int) string {
	if !s.Field.Parse {
		return s.Text[i] + s.Unit
	}
	return formatValue(s.Values[i]) + s.Unit
}

// Dataset is the parser output: every tracked series plus the shared,
// non-decreasing sample timestamps.
type Dataset struct {
	Series []*Series
	Times  []time.Time
	Bounds map[string]Bound
}

// Lookup returns the series for a field code.
func (d *Dataset) Lookup(code string) (*Series, bool) {
	for _, s := range d.Series {
		if s.Field.Code == code {
			return s, true
		}
	}
	return nil, false
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Times)
}

// Sample returns every series' value at index i.
func (d *Dataset) Sample(i int) Sample {
	s := Sample{At: d.Times[i], Values: make(map[string]float64, len(d.Series))}
	for _, ser := range d.Series {
		if ser.Field.Parse {
			s.Values[ser.Field.Code] = ser.Values[i]
		}
	}
	return s
}
