package engine

import (
	"sort"

	"github.com/Veraticus/spare/internal/model"
)

// TopTransactions returns up to k records with the largest payment magnitude,
// largest first. Ties keep table order.
func TopTransactions(table model.Table, k int, policy Policy) []model.TopTransaction {
	if k <= 0 {
		return []model.TopTransaction{}
	}

	ranked := make([]model.Transaction, len(table.Records))
	copy(ranked, table.Records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PaymentAmount.Abs().GreaterThan(ranked[j].PaymentAmount.Abs())
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	top := make([]model.TopTransaction, 0, len(ranked))
	for _, r := range ranked {
		amount := r.PaymentAmount
		if policy.TopAbsolute {
			amount = amount.Abs()
		}
		top = append(top, model.TopTransaction{
			Date:        r.OperationTime.Format(model.DisplayDateLayout),
			Amount:      amount,
			Category:    r.Category,
			Description: r.Description,
		})
	}
	return top
}
