package weather

import (
	"encoding/json"
	"fmt"
)

// RegionalForecast is the DataPoint regional text forecast document.
type RegionalForecast struct {
	RegionalFcst *struct {
		IssuedAt    string `json:"issuedAt"`
		RegionID    string `json:"regionId"`
		FcstPeriods *struct {
			Period List[NarrativePeriod] `json:"Period"`
		} `json:"FcstPeriods"`
	} `json:"RegionalFcst"`
}

type NarrativePeriod struct {
	ID        string          `json:"id"`
	Paragraph List[Paragraph] `json:"Paragraph"`
}

// Paragraph is one titled block of forecast text.
type Paragraph struct {
	Title string `json:"title"`
	Text  string `json:"$"`
}

// Narrative flattens every period's paragraphs, in document order.
func Narrative(data []byte) ([]Paragraph, error) {
	var doc RegionalForecast
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.RegionalFcst == nil || doc.RegionalFcst.FcstPeriods == nil {
		return nil, malformed("RegionalFcst.FcstPeriods", "missing")
	}

	var out []Paragraph
	for _, p := range doc.RegionalFcst.FcstPeriods.Period {
		out = append(out, p.Paragraph...)
	}
	return out, nil
}
