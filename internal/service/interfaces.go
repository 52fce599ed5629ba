// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spare/internal/model"
)

// TableLoader loads a transaction table from a source such as a file path or sheet URL.
type TableLoader interface {
	Load(ctx context.Context, source string) (model.Table, error)
}

// QuoteProvider retrieves market data. Both operations are best-effort: failures
// yield an empty (or shortened) result rather than an error.
type QuoteProvider interface {
	CurrencyRates(ctx context.Context, codes []string) []model.CurrencyRate
	StockPrices(ctx context.Context, symbols []string) []model.StockPrice
}

// AuditEntry is a snapshot of a computed report handed to audit sinks.
type AuditEntry struct {
	CreatedAt time.Time
	Payload   any
	Kind      string
}

// AuditSink persists report snapshots.
type AuditSink interface {
	Persist(ctx context.Context, entry AuditEntry) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
