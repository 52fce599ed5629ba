package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single row of a card statement.
type Transaction struct {
	OperationTime time.Time
	Amount        decimal.Decimal // Signed; expenses are negative
	RoundedAmount decimal.Decimal // Only meaningful when Table.HasRoundedAmount is set
	PaymentAmount decimal.Decimal
	CardID        string // Empty for cash or untracked operations
	Category      string
	Description   string

	// Optional metadata that may be available depending on source
	Status   string
	Currency string
}

// IsExpense reports whether the transaction moves money out of the account.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// HasCard reports whether the transaction is tied to a card.
func (t Transaction) HasCard() bool {
	return strings.TrimSpace(t.CardID) != ""
}

// Spend returns the positive spend magnitude of the transaction. Income
// contributes zero. When preferRounded is set the rounded amount supplies the
// magnitude while the sign of Amount still decides whether it is an expense.
func (t Transaction) Spend(preferRounded bool) decimal.Decimal {
	if !t.IsExpense() {
		return decimal.Zero
	}
	if preferRounded {
		return t.RoundedAmount.Abs()
	}
	return t.Amount.Abs()
}

// Table is an immutable, loaded set of transactions.
type Table struct {
	Location         *time.Location // Zone the operation times were parsed in
	Source           string
	Records          []Transaction
	HasRoundedAmount bool
}

// Loc returns the table's time zone, defaulting to the local zone.
func (t Table) Loc() *time.Location {
	if t.Location == nil {
		return time.Local
	}
	return t.Location
}

// Len returns the number of records in the table.
func (t Table) Len() int {
	return len(t.Records)
}

// IsEmpty reports whether the table has no records.
func (t Table) IsEmpty() bool {
	return len(t.Records) == 0
}

// Filter returns a new table containing the records matching keep.
func (t Table) Filter(keep func(Transaction) bool) Table {
	out := Table{
		Location:         t.Location,
		Source:           t.Source,
		HasRoundedAmount: t.HasRoundedAmount,
	}
	for _, r := range t.Records {
		if keep(r) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Categories returns the distinct non-empty categories in first-seen order.
func (t Table) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, r := range t.Records {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		categories = append(categories, r.Category)
	}
	return categories
}
