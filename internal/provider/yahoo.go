package provider

import (
	"context"
	"time"

	"github.com/rickgao/pricesync/internal/api"
	"github.com/rickgao/pricesync/internal/model"
	"github.com/rickgao/pricesync/internal/table"
)

// Yahoo reads the chart endpoint through the REST client.
type Yahoo struct {
	client *api.Client
}

// NewYahoo wraps a chart client.
func NewYahoo(client *api.Client) *Yahoo {
	return &Yahoo{client: client}
}

func (y *Yahoo) Name() string { return "yahoo" }

// Closes requests [from, to) as UTC midnights; the chart endpoint interprets
// period bounds as instants and returns bars stamped at the exchange open.
func (y *Yahoo) Closes(ctx context.Context, symbol model.Symbol, from, to table.Date) ([]api.Observation, error) {
	res, err := y.client.GetChart(ctx, string(symbol), api.ChartOptions{
		From: from.In(time.UTC),
		To:   to.In(time.UTC),
	})
	if err != nil {
		return nil, err
	}
	return res.Closes()
}

func (y *Yahoo) Probe(ctx context.Context, symbol model.Symbol) ([]api.Observation, error) {
	res, err := y.client.GetChart(ctx, string(symbol), api.ChartOptions{Range: "1d"})
	if err != nil {
		return nil, err
	}
	return res.Closes()
}
