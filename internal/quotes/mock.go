package quotes

import (
	"context"
	"sync"

	"github.com/Veraticus/spare/internal/model"
)

// MockProvider is a mock implementation of service.QuoteProvider for testing.
type MockProvider struct {
	CurrencyRatesFunc func(ctx context.Context, codes []string) []model.CurrencyRate
	StockPricesFunc   func(ctx context.Context, symbols []string) []model.StockPrice
	CurrencyCalls     [][]string
	StockCalls        [][]string
	mu                sync.Mutex
}

// NewMockProvider creates a new mock provider returning empty results.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// CurrencyRates implements service.QuoteProvider.
func (m *MockProvider) CurrencyRates(ctx context.Context, codes []string) []model.CurrencyRate {
	m.mu.Lock()
	m.CurrencyCalls = append(m.CurrencyCalls, codes)
	fn := m.CurrencyRatesFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, codes)
	}
	return []model.CurrencyRate{}
}

// StockPrices implements service.QuoteProvider.
func (m *MockProvider) StockPrices(ctx context.Context, symbols []string) []model.StockPrice {
	m.mu.Lock()
	m.StockCalls = append(m.StockCalls, symbols)
	fn := m.StockPricesFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, symbols)
	}
	return []model.StockPrice{}
}
