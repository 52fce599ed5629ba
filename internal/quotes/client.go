// Package quotes fetches currency rates and stock prices from the apilayer
// market data API.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/model"
	"github.com/Veraticus/spare/internal/service"
	"github.com/shopspring/decimal"
)

// RatePrecision is the number of decimal places kept for exchange rates.
const RatePrecision = 4

// Config configures the market data client.
type Config struct {
	BaseURL      string
	APIKey       string
	BaseCurrency string
	Timeout      time.Duration
	Retry        service.RetryOptions
}

// Client is a best-effort service.QuoteProvider. Failures are logged and
// shorten the result instead of failing the caller.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	config     Config
}

var _ service.QuoteProvider = (*Client)(nil)

// NewClient creates a market data client.
func NewClient(config Config, logger *slog.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.BaseCurrency == "" {
		config.BaseCurrency = "RUB"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config: config,
		logger: logger,
	}
}

type ratesResponse struct {
	Rates   map[string]decimal.Decimal `json:"rates"`
	Success *bool                      `json:"success"`
	Base    string                     `json:"base"`
}

// CurrencyRates fetches the rates of codes against the base currency in one
// request. Codes the provider does not know are left out; order follows codes.
func (c *Client) CurrencyRates(ctx context.Context, codes []string) []model.CurrencyRate {
	rates := []model.CurrencyRate{}
	if len(codes) == 0 || !c.ready("currency rates") {
		return rates
	}

	query := url.Values{}
	query.Set("base", c.config.BaseCurrency)
	query.Set("symbols", strings.Join(codes, ","))
	endpoint := c.config.BaseURL + "/exchangerates_data/latest?" + query.Encode()

	var resp ratesResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		c.logger.Error("Failed to fetch currency rates",
			"currencies", codes,
			"error", err)
		return rates
	}
	if resp.Success != nil && !*resp.Success {
		c.logger.Error("Currency rate provider reported failure", "currencies", codes)
		return rates
	}

	for _, code := range codes {
		rate, ok := resp.Rates[code]
		if !ok {
			c.logger.Warn("Currency rate missing from response", "currency", code)
			continue
		}
		rates = append(rates, model.CurrencyRate{Currency: code, Rate: rate.Round(RatePrecision)})
	}

	return rates
}

type stockResponse struct {
	Price *decimal.Decimal `json:"price"`
	Data  []struct {
		Last *decimal.Decimal `json:"last"`
	} `json:"data"`
}

func (r stockResponse) price() (decimal.Decimal, bool) {
	if r.Price != nil {
		return *r.Price, true
	}
	if len(r.Data) > 0 && r.Data[0].Last != nil {
		return *r.Data[0].Last, true
	}
	return decimal.Zero, false
}

// StockPrices fetches the latest price of each symbol, one request per symbol.
// A symbol that fails is skipped.
func (c *Client) StockPrices(ctx context.Context, symbols []string) []model.StockPrice {
	prices := []model.StockPrice{}
	if len(symbols) == 0 || !c.ready("stock prices") {
		return prices
	}

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			c.logger.Warn("Stock price lookup canceled", "remaining", symbol)
			break
		}

		var resp stockResponse
		endpoint := c.config.BaseURL + "/stock_data/" + url.PathEscape(symbol)
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			c.logger.Error("Failed to fetch stock price",
				"stock", symbol,
				"error", err)
			continue
		}

		price, ok := resp.price()
		if !ok {
			c.logger.Warn("Stock price missing from response", "stock", symbol)
			continue
		}
		prices = append(prices, model.StockPrice{Stock: symbol, Price: price})
	}

	return prices
}

func (c *Client) ready(what string) bool {
	if c.config.APIKey == "" {
		c.logger.Warn("Market data API key not configured, skipping", "data", what)
		return false
	}
	return true
}

// getJSON performs a GET with retries and decodes the body into out. Client
// errors are not retried.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	return common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return common.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("apikey", c.config.APIKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrQuoteUnavailable, err)
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			err := fmt.Errorf("%w: status %d", common.ErrRateLimit, resp.StatusCode)
			if secs, perr := strconv.Atoi(resp.Header.Get("Retry-After")); perr == nil && secs > 0 {
				return common.RetryAfter(err, time.Duration(secs)*time.Second)
			}
			return err
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: status %d: %s", common.ErrQuoteUnavailable, resp.StatusCode, truncate(body))
		case resp.StatusCode != http.StatusOK:
			return common.Permanent(fmt.Errorf("%w: status %d: %s", common.ErrQuoteUnavailable, resp.StatusCode, truncate(body)))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return common.Permanent(fmt.Errorf("%w: malformed response: %w", common.ErrQuoteUnavailable, err))
		}
		return nil
	}, c.config.Retry)
}

func truncate(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
