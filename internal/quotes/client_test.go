package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/spare/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		BaseURL:      server.URL + "/",
		APIKey:       "test-key",
		BaseCurrency: "RUB",
		Timeout:      time.Second,
		Retry:        service.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 20 * time.Millisecond},
	}, nil)
}

func TestCurrencyRates(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/exchangerates_data/latest", r.URL.Path)
		assert.Equal(t, "RUB", r.URL.Query().Get("base"))
		assert.Equal(t, "USD,EUR,XXX", r.URL.Query().Get("symbols"))
		assert.Equal(t, "test-key", r.Header.Get("apikey"))

		_, _ = w.Write([]byte(`{"success": true, "base": "RUB", "rates": {"EUR": 0.0101234, "USD": 0.010987654}}`))
	})

	rates := client.CurrencyRates(context.Background(), []string{"USD", "EUR", "XXX"})

	assert.Equal(t, int32(1), calls.Load())
	require.Len(t, rates, 2)
	assert.Equal(t, "USD", rates[0].Currency)
	assert.Equal(t, "0.011", rates[0].Rate.String())
	assert.Equal(t, "EUR", rates[1].Currency)
	assert.Equal(t, "0.0101", rates[1].Rate.String())
}

func TestCurrencyRatesDegrade(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCalls int32
	}{
		{name: "server error is retried", status: http.StatusBadGateway, body: `oops`, wantCalls: 2},
		{name: "client error is not retried", status: http.StatusUnauthorized, body: `{"message":"Invalid API key"}`, wantCalls: 1},
		{name: "malformed body", status: http.StatusOK, body: `{"rates": [1, 2]}`, wantCalls: 1},
		{name: "provider failure", status: http.StatusOK, body: `{"success": false}`, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			rates := client.CurrencyRates(context.Background(), []string{"USD"})
			assert.NotNil(t, rates)
			assert.Empty(t, rates)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestCurrencyRatesRecoversAfterRetry(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"rates": {"USD": 0.0112}}`))
	})

	rates := client.CurrencyRates(context.Background(), []string{"USD"})
	require.Len(t, rates, 1)
	assert.Equal(t, "0.0112", rates[0].Rate.String())
}

func TestCurrencyRatesWaitsOutRateLimit(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"rates": {"USD": 0.0112}}`))
	})

	start := time.Now()
	rates := client.CurrencyRates(context.Background(), []string{"USD"})
	require.Len(t, rates, 1)
	assert.Equal(t, int32(2), calls.Load())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestStockPrices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		switch r.URL.Path {
		case "/stock_data/AAPL":
			_, _ = w.Write([]byte(`{"price": 150.12}`))
		case "/stock_data/AMZN":
			_, _ = w.Write([]byte(`{"data": [{"last": 3173.18}]}`))
		case "/stock_data/EMPTY":
			_, _ = w.Write([]byte(`{"data": []}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	prices := client.StockPrices(context.Background(), []string{"AAPL", "MISSING", "AMZN", "EMPTY"})

	require.Len(t, prices, 2)
	assert.Equal(t, "AAPL", prices[0].Stock)
	assert.Equal(t, "150.12", prices[0].Price.String())
	assert.Equal(t, "AMZN", prices[1].Stock)
	assert.Equal(t, "3173.18", prices[1].Price.String())
}

func TestNoRequestsWithoutWork(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	})

	assert.Empty(t, client.CurrencyRates(context.Background(), nil))
	assert.Empty(t, client.StockPrices(context.Background(), []string{}))

	client.config.APIKey = ""
	assert.Empty(t, client.CurrencyRates(context.Background(), []string{"USD"}))
	assert.Empty(t, client.StockPrices(context.Background(), []string{"AAPL"}))

	assert.Zero(t, calls.Load())
}

func TestStockPricesCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"price": 1}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, client.StockPrices(ctx, []string{"AAPL", "AMZN"}))
}
