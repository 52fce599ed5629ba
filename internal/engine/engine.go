// Package engine implements the transaction aggregation and reporting core:
// per-card spend, top payments, category spend, the round-up savings jar and
// the dashboard that combines them.
//
// Every function here is a pure computation over a loaded model.Table. The
// only I/O happens through collaborators handed to Composer and Reporter.
package engine

import "github.com/spf13/viper"

// TopK is the number of payments shown on the dashboard.
const TopK = 5

// CashbackRate is the fixed rebate applied to card spend.
const CashbackRate = "0.01"

// Policy collects behaviors that differ between bank exports.
type Policy struct {
	// TopAbsolute exposes top payments as absolute values instead of the
	// stored sign.
	TopAbsolute bool
	// JarIncludeIncome rounds up positive amounts as well as expenses.
	JarIncludeIncome bool
	// CaseSensitive disables case-insensitive category resolution.
	CaseSensitive bool
}

// DefaultPolicy returns the standard behavior.
func DefaultPolicy() Policy {
	return Policy{}
}

// PolicyFromViper reads the policy.* configuration keys.
func PolicyFromViper(v *viper.Viper) Policy {
	if v == nil {
		v = viper.GetViper()
	}
	return Policy{
		TopAbsolute:      v.GetBool("policy.top_absolute"),
		JarIncludeIncome: v.GetBool("policy.jar_include_income"),
		CaseSensitive:    v.GetBool("policy.case_sensitive"),
	}
}
