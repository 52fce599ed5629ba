// Package window computes the date ranges that reports filter transactions by.
//
// Every window is closed on both ends: a transaction exactly at Start or End is
// inside it. Month ranges used by the savings jar are the exception and are
// half-open, see Month.
package window

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/model"
)

// DefaultTrailingDays is the look-back of the category report.
const DefaultTrailingDays = 90

// Window is an inclusive [Start, End] range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the window, both ends included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Apply returns the records of table that fall inside the window.
func (w Window) Apply(table model.Table) model.Table {
	return table.Filter(func(r model.Transaction) bool {
		return w.Contains(r.OperationTime)
	})
}

// Kind identifies a window policy.
type Kind int

const (
	// KindMonthToDate starts at the first instant of the reference month.
	KindMonthToDate Kind = iota
	// KindTrailing starts a fixed number of days before the reference.
	KindTrailing
	// KindWeekToDate starts on the Monday of the reference week.
	KindWeekToDate
	// KindYearToDate starts on January 1 of the reference year.
	KindYearToDate
	// KindUnbounded starts at the zero time.
	KindUnbounded
)

// Policy selects how the start of a window is derived from its end.
type Policy struct {
	Kind Kind
	Days int // Used by KindTrailing
}

// Predefined policies.
var (
	MonthToDate = Policy{Kind: KindMonthToDate}
	WeekToDate  = Policy{Kind: KindWeekToDate}
	YearToDate  = Policy{Kind: KindYearToDate}
	Unbounded   = Policy{Kind: KindUnbounded}
	Trailing90  = Trailing(DefaultTrailingDays)
)

// Trailing returns a policy covering the given number of days before the reference.
func Trailing(days int) Policy {
	return Policy{Kind: KindTrailing, Days: days}
}

// String returns the short code of the policy.
func (p Policy) String() string {
	switch p.Kind {
	case KindMonthToDate:
		return "M"
	case KindTrailing:
		return fmt.Sprintf("%dD", p.Days)
	case KindWeekToDate:
		return "W"
	case KindYearToDate:
		return "Y"
	case KindUnbounded:
		return "ALL"
	default:
		return "?"
	}
}

// ParsePolicy parses the short period codes M, W, Y and ALL.
func ParsePolicy(code string) (Policy, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "M", "":
		return MonthToDate, nil
	case "W":
		return WeekToDate, nil
	case "Y":
		return YearToDate, nil
	case "ALL":
		return Unbounded, nil
	default:
		return Policy{}, fmt.Errorf("unknown period %q: expected M, W, Y or ALL", code)
	}
}

// Select computes the window ending at t.
func Select(t time.Time, p Policy) Window {
	var start time.Time
	switch p.Kind {
	case KindMonthToDate:
		start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case KindTrailing:
		start = t.AddDate(0, 0, -p.Days)
	case KindWeekToDate:
		start = t.AddDate(0, 0, -mondayOffset(t.Weekday()))
	case KindYearToDate:
		start = time.Date(t.Year(), time.January, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	case KindUnbounded:
		start = time.Time{}
	}
	return Window{Start: start, End: t}
}

// mondayOffset counts days since Monday.
func mondayOffset(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// Month parses a YYYY-MM month and returns its first instant and the first
// instant of the following month.
func Month(text string, loc *time.Location) (start, next time.Time, err error) {
	if loc == nil {
		loc = time.Local
	}
	start, err = time.ParseInLocation(model.MonthLayout, strings.TrimSpace(text), loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM", common.ErrInvalidMonth, text)
	}
	return start, NextMonth(start), nil
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextMonth returns the first instant of the month after t, rolling December
// over into January of the next year.
func NextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}
