package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/model"
	"github.com/Veraticus/spare/internal/service"
	"github.com/Veraticus/spare/internal/window"
	"github.com/shopspring/decimal"
)

// SpendingReportKind names audit entries produced by the category report.
const SpendingReportKind = "spending_report"

// CategorySpend totals the absolute amounts of rows whose category equals
// category exactly, from midnight of the day 90 days before ref up to ref
// (both ends included), so the whole start_date day is counted. A window
// without matching rows yields a zero total.
func CategorySpend(table model.Table, category string, ref time.Time) (model.CategoryReport, error) {
	if strings.TrimSpace(category) == "" {
		return model.CategoryReport{}, common.ErrEmptyCategory
	}

	w := window.Select(ref, window.Trailing90)
	w.Start = window.StartOfDay(w.Start)

	total := decimal.Zero
	for _, r := range table.Records {
		if r.Category != category || !w.Contains(r.OperationTime) {
			continue
		}
		total = total.Add(r.Amount.Abs())
	}

	return model.CategoryReport{
		Category:   category,
		TotalSpent: total,
		DateRange: model.DateRange{
			StartDate: w.Start.Format(model.ReportDateLayout),
			EndDate:   w.End.Format(model.ReportDateLayout),
		},
	}, nil
}

// ResolveCategory maps user input onto the spelling used in the table. Unless
// the policy is case sensitive, the first category whose lower-cased form
// matches the lower-cased input wins.
func ResolveCategory(table model.Table, input string, policy Policy) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", common.ErrEmptyCategory
	}

	wanted := strings.ToLower(input)
	for _, category := range table.Categories() {
		if category == input {
			return category, nil
		}
		if !policy.CaseSensitive && strings.ToLower(category) == wanted {
			return category, nil
		}
	}
	return "", fmt.Errorf("%w: %q", common.ErrUnknownCategory, input)
}

// ParseReportDate parses the optional YYYY-MM-DD reference date of the
// category report. Blank input means now. A date covers its whole day.
func ParseReportDate(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return now, nil
	}

	day, err := time.ParseInLocation(model.ReportDateLayout, text, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM-DD", common.ErrInvalidDate, text)
	}
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}

// Reporter produces category reports and hands each result to audit sinks.
type Reporter struct {
	clock Clock
	sinks []service.AuditSink
}

// NewReporter creates a reporter notifying the given sinks. Nil sinks are
// ignored.
func NewReporter(clock Clock, sinks ...service.AuditSink) *Reporter {
	if clock == nil {
		clock = time.Now
	}
	r := &Reporter{clock: clock}
	for _, s := range sinks {
		if s != nil {
			r.sinks = append(r.sinks, s)
		}
	}
	return r
}

// SpendingByCategory computes the report via CategorySpend, then persists a
// snapshot through every sink. Sink failures are logged and never change the
// returned report.
func (r *Reporter) SpendingByCategory(ctx context.Context, table model.Table, category string, ref time.Time) (model.CategoryReport, error) {
	report, err := CategorySpend(table, category, ref)
	if err != nil {
		return model.CategoryReport{}, err
	}

	entry := service.AuditEntry{
		Kind:      SpendingReportKind,
		CreatedAt: r.clock(),
		Payload:   report,
	}
	for _, sink := range r.sinks {
		if err := sink.Persist(ctx, entry); err != nil {
			slog.Error("Failed to persist report snapshot",
				"kind", entry.Kind,
				"category", report.Category,
				"error", err)
		}
	}

	return report, nil
}
