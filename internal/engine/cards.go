package engine

import (
	"unicode"

	"github.com/Veraticus/spare/internal/model"
	"github.com/shopspring/decimal"
)

// CashGroupLabel is shown for spend without a card.
const CashGroupLabel = "cash"

var cashbackRate = decimal.RequireFromString(CashbackRate)

// AggregateCards groups the table by card and totals the spend of each group.
// Operations without a card form their own cash group. Groups are returned in
// order of first appearance.
func AggregateCards(table model.Table) []model.CardSummary {
	type groupKey struct {
		id   string
		cash bool
	}

	totals := make(map[groupKey]decimal.Decimal)
	var order []groupKey

	for _, r := range table.Records {
		key := groupKey{id: r.CardID, cash: !r.HasCard()}
		if key.cash {
			key.id = ""
		}
		if _, ok := totals[key]; !ok {
			order = append(order, key)
			totals[key] = decimal.Zero
		}
		totals[key] = totals[key].Add(r.Spend(table.HasRoundedAmount))
	}

	summaries := make([]model.CardSummary, 0, len(order))
	for _, key := range order {
		total := totals[key]
		label := CashGroupLabel
		if !key.cash {
			label = LastDigits(key.id)
		}
		summaries = append(summaries, model.CardSummary{
			LastDigits: label,
			TotalSpent: total,
			Cashback:   Cashback(total),
			Cash:       key.cash,
		})
	}
	return summaries
}

// Cashback returns the rebate on a spend total rounded to cents.
func Cashback(total decimal.Decimal) decimal.Decimal {
	return total.Mul(cashbackRate).Round(2)
}

// LastDigits extracts the trailing four digits of a card identifier such as
// "*7197" or "4276 **** **** 1234". Identifiers with fewer digits are
// returned unchanged.
func LastDigits(cardID string) string {
	var digits []rune
	for _, r := range cardID {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return cardID
	}
	return string(digits[len(digits)-4:])
}
