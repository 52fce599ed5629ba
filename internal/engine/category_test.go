package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/spare/internal/audit"
	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/model"
	"github.com/Veraticus/spare/internal/service"
	"github.com/Veraticus/spare/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categoryTable(t *testing.T) model.Table {
	t.Helper()
	return testutil.NewTableBuilder(t).
		Expense("2024-03-01 10:00:00", "*1234", "-100.50", testutil.CategoryFood).
		Expense("2024-03-10 10:00:00", "*1234", "-200.75", testutil.CategoryFood).
		Expense("2024-03-20 10:00:00", "*5678", "-300.00", testutil.CategoryFood).
		Expense("2024-03-21 10:00:00", "*5678", "-999.00", testutil.CategoryTransport).
		Expense("2023-11-01 10:00:00", "*5678", "-50.00", testutil.CategoryFood).
		Build()
}

func TestCategorySpend(t *testing.T) {
	table := categoryTable(t)
	ref := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	report, err := CategorySpend(table, testutil.CategoryFood, ref)
	require.NoError(t, err)

	assert.Equal(t, testutil.CategoryFood, report.Category)
	assert.True(t, report.TotalSpent.Equal(decimal.RequireFromString("601.25")), "got %s", report.TotalSpent)
	assert.Equal(t, model.DateRange{StartDate: "2024-01-01", EndDate: "2024-03-31"}, report.DateRange)
}

func TestCategorySpend_WindowIsInclusive(t *testing.T) {
	table := testutil.NewTableBuilder(t).
		Expense("2024-01-01 12:00:00", "", "-1", testutil.CategoryFood).
		Expense("2024-03-31 12:00:00", "", "-2", testutil.CategoryFood).
		Expense("2024-03-31 12:00:01", "", "-4", testutil.CategoryFood).
		Build()

	report, err := CategorySpend(table, testutil.CategoryFood, time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, report.TotalSpent.Equal(decimal.NewFromInt(3)))
}

func TestCategorySpend_ReportDateCoversWholeDays(t *testing.T) {
	table := testutil.NewTableBuilder(t).
		Expense("2023-12-31 23:59:59", "", "-1", testutil.CategoryFood).
		Expense("2024-01-01 00:00:00", "", "-2", testutil.CategoryFood).
		Expense("2024-01-01 12:00:00", "", "-4", testutil.CategoryFood).
		Expense("2024-03-31 21:00:00", "", "-8", testutil.CategoryFood).
		Expense("2024-04-01 00:00:00", "", "-16", testutil.CategoryFood).
		Build()

	ref, err := ParseReportDate("2024-03-31", time.Date(2024, 10, 16, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	report, err := CategorySpend(table, testutil.CategoryFood, ref)
	require.NoError(t, err)
	assert.Equal(t, model.DateRange{StartDate: "2024-01-01", EndDate: "2024-03-31"}, report.DateRange)
	assert.True(t, report.TotalSpent.Equal(decimal.NewFromInt(14)), "got %s", report.TotalSpent)
}

func TestCategorySpend_NoMatchesIsZero(t *testing.T) {
	report, err := CategorySpend(categoryTable(t), testutil.CategoryFun, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, report.TotalSpent.IsZero())
	assert.Equal(t, "2024-01-01", report.DateRange.StartDate)
}

func TestCategorySpend_IsExactMatch(t *testing.T) {
	report, err := CategorySpend(categoryTable(t), "еда", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, report.TotalSpent.IsZero())
}

func TestCategorySpend_EmptyCategory(t *testing.T) {
	_, err := CategorySpend(categoryTable(t), "  ", time.Now())
	assert.ErrorIs(t, err, common.ErrEmptyCategory)
}

func TestResolveCategory(t *testing.T) {
	table := categoryTable(t)

	got, err := ResolveCategory(table, "  ЕДА ", DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, testutil.CategoryFood, got)

	_, err = ResolveCategory(table, "еда", Policy{CaseSensitive: true})
	assert.ErrorIs(t, err, common.ErrUnknownCategory)

	got, err = ResolveCategory(table, testutil.CategoryTransport, Policy{CaseSensitive: true})
	require.NoError(t, err)
	assert.Equal(t, testutil.CategoryTransport, got)

	_, err = ResolveCategory(table, "Кино", DefaultPolicy())
	assert.ErrorIs(t, err, common.ErrUnknownCategory)

	_, err = ResolveCategory(table, "", DefaultPolicy())
	assert.ErrorIs(t, err, common.ErrEmptyCategory)
}

func TestParseReportDate(t *testing.T) {
	now := time.Date(2024, 10, 16, 14, 30, 0, 0, time.UTC)

	got, err := ParseReportDate("", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = ParseReportDate("2024-03-31", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-31", got.Format(model.ReportDateLayout))
	assert.Equal(t, 23, got.Hour())

	_, err = ParseReportDate("31.03.2024", now)
	assert.ErrorIs(t, err, common.ErrInvalidDate)
}

func TestReporter_PersistsSnapshot(t *testing.T) {
	stamp := time.Date(2024, 4, 1, 9, 15, 0, 0, time.UTC)
	sink := audit.NewMockSink()
	reporter := NewReporter(func() time.Time { return stamp }, sink)

	report, err := reporter.SpendingByCategory(context.Background(), categoryTable(t), testutil.CategoryFood, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Equal(t, 1, sink.Count())
	entry := sink.Entries[0]
	assert.Equal(t, SpendingReportKind, entry.Kind)
	assert.Equal(t, stamp, entry.CreatedAt)
	assert.Equal(t, report, entry.Payload)
}

func TestReporter_IdempotentRegardlessOfSink(t *testing.T) {
	ref := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	table := categoryTable(t)

	healthy := NewReporter(nil, audit.NewMockSink())
	broken := NewReporter(nil, &audit.MockSink{
		PersistFunc: func(context.Context, service.AuditEntry) error { return errors.New("disk full") },
	})

	first, err := healthy.SpendingByCategory(context.Background(), table, testutil.CategoryFood, ref)
	require.NoError(t, err)
	second, err := broken.SpendingByCategory(context.Background(), table, testutil.CategoryFood, ref)
	require.NoError(t, err)

	assert.True(t, first.TotalSpent.Equal(second.TotalSpent))
	assert.Equal(t, first.DateRange, second.DateRange)
}

func TestReporter_ValidationSkipsSinks(t *testing.T) {
	sink := audit.NewMockSink()
	_, err := NewReporter(nil, sink).SpendingByCategory(context.Background(), categoryTable(t), "", time.Now())
	assert.ErrorIs(t, err, common.ErrEmptyCategory)
	assert.Zero(t, sink.Count())
}
