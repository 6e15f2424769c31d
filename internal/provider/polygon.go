package provider

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/shopspring/decimal"

	"github.com/rickgao/pricesync/internal/api"
	"github.com/rickgao/pricesync/internal/model"
	"github.com/rickgao/pricesync/internal/table"
)

// probeWindow is how far back a Polygon probe looks; a daily bar always
// exists within a week for a listed symbol.
const probeWindow = 7

// aggsLister lists daily aggregate bars for one ticker over [from, to].
type aggsLister func(ctx context.Context, ticker string, from, to time.Time) ([]models.Agg, error)

// Polygon reads daily aggregates from the Polygon REST API.
type Polygon struct {
	list aggsLister
	loc  *time.Location
	now  func() time.Time
}

// NewPolygon creates a provider backed by the Polygon aggregates endpoint.
func NewPolygon(apiKey string) *Polygon {
	c := polygon.New(apiKey)
	return newPolygon(func(ctx context.Context, ticker string, from, to time.Time) ([]models.Agg, error) {
		adjusted := true
		order := models.Asc
		limit := 50000
		iter := c.ListAggs(ctx, &models.ListAggsParams{
			Ticker:     ticker,
			Multiplier: 1,
			Timespan:   models.Day,
			From:       models.Millis(from),
			To:         models.Millis(to),
			Adjusted:   &adjusted,
			Order:      &order,
			Limit:      &limit,
		})

		var aggs []models.Agg
		for iter.Next() {
			aggs = append(aggs, iter.Item())
		}
		if err := iter.Err(); err != nil {
			return nil, err
		}
		return aggs, nil
	})
}

func newPolygon(list aggsLister) *Polygon {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &Polygon{list: list, loc: loc, now: time.Now}
}

func (p *Polygon) Name() string { return "polygon" }

// Closes lists bars for [from, to). The aggregates endpoint treats both
// bounds as inclusive dates, so the day before to is the last one requested.
func (p *Polygon) Closes(ctx context.Context, symbol model.Symbol, from, to table.Date) ([]api.Observation, error) {
	last := to.AddDays(-1)
	if last.Before(from) {
		return nil, nil
	}
	aggs, err := p.list(ctx, string(symbol), from.In(p.loc), last.In(p.loc))
	if err != nil {
		return nil, fmt.Errorf("list aggs %s: %w", symbol, err)
	}
	return p.observations(aggs), nil
}

func (p *Polygon) Probe(ctx context.Context, symbol model.Symbol) ([]api.Observation, error) {
	today := civil.DateOf(p.now().In(p.loc))
	return p.Closes(ctx, symbol, today.AddDays(-probeWindow), today.AddDays(1))
}

// observations converts bars to dated closes in exchange time. Bars are
// stamped at the start of their session.
func (p *Polygon) observations(aggs []models.Agg) []api.Observation {
	out := make([]api.Observation, 0, len(aggs))
	index := make(map[civil.Date]int, len(aggs))
	for _, a := range aggs {
		d := civil.DateOf(time.Time(a.Timestamp).In(p.loc))
		c := decimal.NewFromFloat(a.Close)
		if j, ok := index[d]; ok {
			out[j].Close = c
			continue
		}
		index[d] = len(out)
		out = append(out, api.Observation{Date: d, Close: c})
	}
	return out
}
