package engine

import (
	"testing"

	"github.com/Veraticus/spare/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateCards(t *testing.T) {
	table := testutil.NewTableBuilder(t).
		Expense("2024-01-01 10:00:00", "*1234", "-100.00", testutil.CategoryFood).
		Expense("2024-01-02 10:00:00", "*5678", "-150.50", testutil.CategoryTransport).
		Expense("2024-01-03 10:00:00", "*1234", "-200.00", testutil.CategoryFun).
		Expense("2024-01-04 10:00:00", "*1234", "5000.00", testutil.CategoryTransfers).
		Build()

	cards := AggregateCards(table)
	require.Len(t, cards, 2)

	assert.Equal(t, "1234", cards[0].LastDigits)
	assert.True(t, cards[0].TotalSpent.Equal(decimal.RequireFromString("300")), "income must not count as spend")
	assert.True(t, cards[0].Cashback.Equal(decimal.RequireFromString("3")))

	assert.Equal(t, "5678", cards[1].LastDigits)
	assert.True(t, cards[1].TotalSpent.Equal(decimal.RequireFromString("150.50")))
	assert.True(t, cards[1].Cashback.Equal(decimal.RequireFromString("1.51")), "cashback rounds half away from zero")
}

func TestAggregateCards_CashGroupIsSeparate(t *testing.T) {
	table := testutil.NewTableBuilder(t).
		Expense("2024-01-01 10:00:00", "", "-40", testutil.CategoryFood).
		Expense("2024-01-02 10:00:00", "*1234", "-60", testutil.CategoryFood).
		Expense("2024-01-03 10:00:00", "  ", "-10", testutil.CategoryFood).
		Build()

	cards := AggregateCards(table)
	require.Len(t, cards, 2)

	assert.True(t, cards[0].Cash)
	assert.Equal(t, CashGroupLabel, cards[0].LastDigits)
	assert.True(t, cards[0].TotalSpent.Equal(decimal.NewFromInt(50)))

	assert.False(t, cards[1].Cash)
	assert.True(t, cards[1].TotalSpent.Equal(decimal.NewFromInt(60)))
}

func TestAggregateCards_PrefersRoundedAmount(t *testing.T) {
	table := testutil.NewTableBuilder(t).
		WithRoundedAmounts().
		Add(testutil.Row{Time: "2024-01-01 10:00:00", Card: "*1234", Amount: "-99.60", Rounded: "100.00"}).
		Add(testutil.Row{Time: "2024-01-02 10:00:00", Card: "*1234", Amount: "20.00", Rounded: "20.00"}).
		Build()

	cards := AggregateCards(table)
	require.Len(t, cards, 1)
	assert.True(t, cards[0].TotalSpent.Equal(decimal.NewFromInt(100)))
	assert.True(t, cards[0].Cashback.Equal(decimal.NewFromInt(1)))
}

func TestAggregateCards_ConservesSpend(t *testing.T) {
	table := testutil.NewTableBuilder(t).
		Expense("2024-02-01 09:00:00", "*1111", "-12.34", testutil.CategoryFood).
		Expense("2024-02-02 09:00:00", "", "-7.66", testutil.CategoryFood).
		Expense("2024-02-03 09:00:00", "*2222", "-100.01", testutil.CategoryGroceries).
		Expense("2024-02-04 09:00:00", "*2222", "300", testutil.CategoryTransfers).
		Expense("2024-02-05 09:00:00", "*3333", "-0.99", testutil.CategoryFun).
		Expense("2024-02-06 09:00:00", "", "-1000", testutil.CategoryFun).
		Build()

	for _, rounded := range []bool{false, true} {
		table.HasRoundedAmount = rounded

		want := decimal.Zero
		for _, r := range table.Records {
			if r.IsExpense() {
				want = want.Add(r.Spend(rounded))
			}
		}

		got := decimal.Zero
		for _, c := range AggregateCards(table) {
			got = got.Add(c.TotalSpent)
		}
		assert.True(t, want.Equal(got), "rounded=%v: want %s got %s", rounded, want, got)
	}
}

func TestAggregateCards_Empty(t *testing.T) {
	cards := AggregateCards(testutil.NewTableBuilder(t).Build())
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}

func TestLastDigits(t *testing.T) {
	assert.Equal(t, "7197", LastDigits("*7197"))
	assert.Equal(t, "1234", LastDigits("4276 **** **** 1234"))
	assert.Equal(t, "*12", LastDigits("*12"))
	assert.Equal(t, "wallet", LastDigits("wallet"))
}
