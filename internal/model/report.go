package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money renders a decimal as a plain JSON number with two decimal places.
func Money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// CardSummary aggregates spend for a single card within a window.
type CardSummary struct {
	LastDigits string
	TotalSpent decimal.Decimal
	Cashback   decimal.Decimal
	Cash       bool // Synthetic group for operations without a card
}

// MarshalJSON implements json.Marshaler.
func (c CardSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		LastDigits string      `json:"last_digits"`
		TotalSpent json.Number `json:"total_spent"`
		Cashback   json.Number `json:"cashback"`
		Cash       bool        `json:"cash,omitempty"`
	}{c.LastDigits, Money(c.TotalSpent), Money(c.Cashback), c.Cash})
}

// TopTransaction is the display form of one of the largest payments.
type TopTransaction struct {
	Date        string
	Amount      decimal.Decimal
	Category    string
	Description string
}

// MarshalJSON implements json.Marshaler.
func (t TopTransaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date        string      `json:"date"`
		Amount      json.Number `json:"amount"`
		Category    string      `json:"category"`
		Description string      `json:"description"`
	}{t.Date, Money(t.Amount), t.Category, t.Description})
}

// DateRange is the textual window of a category report.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// CategoryReport is the spend in one category over a trailing window.
type CategoryReport struct {
	Category   string
	TotalSpent decimal.Decimal
	DateRange  DateRange
}

// MarshalJSON implements json.Marshaler.
func (r CategoryReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Category   string      `json:"category"`
		TotalSpent json.Number `json:"total_spent"`
		DateRange  DateRange   `json:"date_range"`
	}{r.Category, Money(r.TotalSpent), r.DateRange})
}

// SavedAmount is the round-up savings accumulated for a month.
type SavedAmount struct {
	Month        string
	Amount       decimal.Decimal
	Limit        int
	Transactions int // Records that fell inside the month
}

// MarshalJSON implements json.Marshaler.
func (s SavedAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Month        string      `json:"month"`
		Limit        int         `json:"limit"`
		Saved        json.Number `json:"saved"`
		Transactions int         `json:"transactions"`
	}{s.Month, s.Limit, Money(s.Amount), s.Transactions})
}

// CurrencyRate is an exchange rate against the configured base currency.
type CurrencyRate struct {
	Currency string
	Rate     decimal.Decimal
}

// MarshalJSON implements json.Marshaler.
func (c CurrencyRate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Currency string      `json:"currency"`
		Rate     json.Number `json:"rate"`
	}{c.Currency, json.Number(c.Rate.String())})
}

// StockPrice is the latest known price of a ticker.
type StockPrice struct {
	Stock string
	Price decimal.Decimal
}

// MarshalJSON implements json.Marshaler.
func (p StockPrice) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Stock string      `json:"stock"`
		Price json.Number `json:"price"`
	}{p.Stock, Money(p.Price)})
}

// Dashboard is the combined response for a single reference instant.
type Dashboard struct {
	Greeting        string           `json:"greeting"`
	Cards           []CardSummary    `json:"cards"`
	TopTransactions []TopTransaction `json:"top_transactions"`
	CurrencyRates   []CurrencyRate   `json:"currency_rates"`
	StockPrices     []StockPrice     `json:"stock_prices"`
}

// Settings holds the user's market data preferences.
type Settings struct {
	UserCurrencies []string `json:"user_currencies" mapstructure:"user_currencies"`
	UserStocks     []string `json:"user_stocks" mapstructure:"user_stocks"`
}
