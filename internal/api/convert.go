package api

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Observation is one daily close.
type Observation struct {
	Date  civil.Date
	Close decimal.Decimal
}

// Closes converts the result into daily observations, preferring adjusted
// closes when the response carries them. Days without a print are skipped.
// When the response repeats a date, the later entry wins.
func (r *ChartResult) Closes() ([]Observation, error) {
	series := r.closeSeries()
	if series == nil {
		return nil, nil
	}
	if len(series) != len(r.Timestamp) {
		return nil, fmt.Errorf("chart %s: %d timestamps but %d closes", r.Meta.Symbol, len(r.Timestamp), len(series))
	}

	loc := r.Meta.location()
	out := make([]Observation, 0, len(series))
	index := make(map[civil.Date]int, len(series))
	for i, n := range series {
		if n == nil {
			continue
		}
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return nil, fmt.Errorf("chart %s: close %q: %w", r.Meta.Symbol, n.String(), err)
		}
		date := civil.DateOf(time.Unix(r.Timestamp[i], 0).In(loc))
		if j, ok := index[date]; ok {
			out[j].Close = d
			continue
		}
		index[date] = len(out)
		out = append(out, Observation{Date: date, Close: d})
	}
	return out, nil
}

func (r *ChartResult) closeSeries() []*json.Number {
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) > 0 {
		return r.Indicators.AdjClose[0].AdjClose
	}
	if len(r.Indicators.Quote) > 0 {
		return r.Indicators.Quote[0].Close
	}
	return nil
}

// location returns the exchange time zone, falling back to the fixed GMT
// offset when the zone name is unknown.
func (m ChartMeta) location() *time.Location {
	if m.ExchangeTimezoneName != "" {
		if loc, err := time.LoadLocation(m.ExchangeTimezoneName); err == nil {
			return loc
		}
	}
	return time.FixedZone("exchange", int(m.GMTOffset))
}
