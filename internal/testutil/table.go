// Package testutil provides fluent builders for transaction tables used in tests.
//
// Example:
//
//	table := testutil.NewTableBuilder(t).
//		WithRoundedAmounts().
//		Expense("2024-01-05 12:00:00", "*7197", "-1712", testutil.CategoryFood).
//		Build()
package testutil

import (
	"testing"
	"time"

	"github.com/Veraticus/spare/internal/model"
	"github.com/shopspring/decimal"
)

// Category names used across tests.
const (
	CategoryFood      = "Еда"
	CategoryGroceries = "Супермаркеты"
	CategoryTransport = "Транспорт"
	CategoryFun       = "Развлечения"
	CategoryTransfers = "Переводы"
)

// Row describes one transaction in textual form. Empty Payment defaults to
// Amount and empty Rounded defaults to the absolute Amount.
type Row struct {
	Time        string
	Card        string
	Amount      string
	Rounded     string
	Payment     string
	Category    string
	Description string
}

// TableBuilder accumulates rows into a model.Table.
type TableBuilder struct {
	tb    testing.TB
	table model.Table
}

// NewTableBuilder creates a builder whose times are parsed in UTC.
func NewTableBuilder(tb testing.TB) *TableBuilder {
	tb.Helper()
	return &TableBuilder{
		tb:    tb,
		table: model.Table{Location: time.UTC, Source: "testutil"},
	}
}

// WithRoundedAmounts marks the table as carrying the rounded amount column.
func (b *TableBuilder) WithRoundedAmounts() *TableBuilder {
	b.table.HasRoundedAmount = true
	return b
}

// Add appends a fully specified row.
func (b *TableBuilder) Add(row Row) *TableBuilder {
	b.tb.Helper()

	at, err := model.ParseOperationTime(row.Time, time.UTC)
	if err != nil {
		b.tb.Fatalf("invalid test time %q: %v", row.Time, err)
	}

	amount := b.decimal(row.Amount)
	payment := amount
	if row.Payment != "" {
		payment = b.decimal(row.Payment)
	}
	rounded := amount.Abs()
	if row.Rounded != "" {
		rounded = b.decimal(row.Rounded)
	}

	b.table.Records = append(b.table.Records, model.Transaction{
		OperationTime: at,
		CardID:        row.Card,
		Amount:        amount,
		RoundedAmount: rounded,
		PaymentAmount: payment,
		Category:      row.Category,
		Description:   row.Description,
	})
	return b
}

// Expense appends a row with the given signed amount.
func (b *TableBuilder) Expense(at, card, amount, category string) *TableBuilder {
	b.tb.Helper()
	return b.Add(Row{Time: at, Card: card, Amount: amount, Category: category})
}

// Build returns the accumulated table.
func (b *TableBuilder) Build() model.Table {
	return b.table
}

func (b *TableBuilder) decimal(s string) decimal.Decimal {
	b.tb.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		b.tb.Fatalf("invalid test amount %q: %v", s, err)
	}
	return d
}

// Dec parses a decimal literal, failing the test on error.
func Dec(tb testing.TB, s string) decimal.Decimal {
	tb.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		tb.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}
