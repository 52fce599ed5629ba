package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/model"
	"github.com/Veraticus/spare/internal/service"
	"github.com/Veraticus/spare/internal/window"
)

// Composer builds the dashboard response.
type Composer struct {
	quotes service.QuoteProvider
	policy Policy
}

// NewComposer creates a composer. A nil provider yields empty market data.
func NewComposer(quotes service.QuoteProvider, policy Policy) *Composer {
	if quotes == nil {
		quotes = noQuotes{}
	}
	return &Composer{quotes: quotes, policy: policy}
}

// Compose summarizes the month up to t. It returns common.ErrNoData when no
// transaction falls in that window.
func (c *Composer) Compose(ctx context.Context, table model.Table, t time.Time, settings model.Settings) (model.Dashboard, error) {
	return c.ComposePeriod(ctx, table, t, settings, window.MonthToDate)
}

// ComposePeriod is Compose over the window p selects at t.
func (c *Composer) ComposePeriod(ctx context.Context, table model.Table, t time.Time, settings model.Settings, p window.Policy) (model.Dashboard, error) {
	w := window.Select(t, p)
	month := w.Apply(table)
	if month.IsEmpty() {
		return model.Dashboard{}, fmt.Errorf("%w for %s", common.ErrNoData, t.Format(model.DateTimeLayout))
	}

	slog.Debug("Composing dashboard",
		"period", p.String(),
		"from", w.Start.Format(model.DateTimeLayout),
		"to", w.End.Format(model.DateTimeLayout),
		"transactions", month.Len())

	rates := c.quotes.CurrencyRates(ctx, settings.UserCurrencies)
	if rates == nil {
		rates = []model.CurrencyRate{}
	}
	prices := c.quotes.StockPrices(ctx, settings.UserStocks)
	if prices == nil {
		prices = []model.StockPrice{}
	}

	return model.Dashboard{
		Greeting:        Greeting(t),
		Cards:           AggregateCards(month),
		TopTransactions: TopTransactions(month, TopK, c.policy),
		CurrencyRates:   rates,
		StockPrices:     prices,
	}, nil
}

type noQuotes struct{}

func (noQuotes) CurrencyRates(context.Context, []string) []model.CurrencyRate {
	return []model.CurrencyRate{}
}

func (noQuotes) StockPrices(context.Context, []string) []model.StockPrice {
	return []model.StockPrice{}
}
