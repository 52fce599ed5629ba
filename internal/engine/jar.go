package engine

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/model"
	"github.com/Veraticus/spare/internal/window"
	"github.com/shopspring/decimal"
)

// AllowedLimits are the rounding steps offered by the savings jar.
var AllowedLimits = []int{10, 50, 100}

// ValidateLimit checks that limit is one of AllowedLimits.
func ValidateLimit(limit int) error {
	for _, allowed := range AllowedLimits {
		if limit == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %d, expected one of %v", common.ErrInvalidLimit, limit, AllowedLimits)
}

// RoundUp returns how much is swept into the jar when magnitude is rounded up
// to the next multiple of limit. Amounts already on a multiple contribute zero.
func RoundUp(magnitude, limit decimal.Decimal) decimal.Decimal {
	if magnitude.Mod(limit).IsZero() {
		return decimal.Zero
	}
	rounded := magnitude.Div(limit).Floor().Add(decimal.NewFromInt(1)).Mul(limit)
	return rounded.Sub(magnitude)
}

// InvestmentJar computes the spare change saved during month (YYYY-MM) if
// every expense were rounded up to a multiple of limit. It returns
// common.ErrNoData when no transaction at all falls inside the month.
func InvestmentJar(table model.Table, month string, limit int, policy Policy) (model.SavedAmount, error) {
	if err := ValidateLimit(limit); err != nil {
		return model.SavedAmount{}, err
	}

	start, next, err := window.Month(month, table.Loc())
	if err != nil {
		return model.SavedAmount{}, err
	}

	slog.Info("Rounding transactions into the savings jar", "month", month, "limit", limit)

	step := decimal.NewFromInt(int64(limit))
	saved := decimal.Zero
	inMonth := 0

	for _, r := range table.Records {
		if r.OperationTime.Before(start) || !r.OperationTime.Before(next) {
			continue
		}
		inMonth++

		if !r.IsExpense() && !policy.JarIncludeIncome {
			continue
		}
		saved = saved.Add(RoundUp(r.Amount.Abs(), step))
	}

	if inMonth == 0 {
		return model.SavedAmount{}, fmt.Errorf("%w for %s", common.ErrNoData, month)
	}

	slog.Debug("Savings jar computed", "month", month, "transactions", inMonth, "saved", saved.StringFixed(2))

	return model.SavedAmount{
		Month:        start.Format(model.MonthLayout),
		Limit:        limit,
		Amount:       saved,
		Transactions: inMonth,
	}, nil
}
