package table

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spare/internal/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Column headers of a bank card statement export.
const (
	HeaderOperationTime = "Дата операции"
	HeaderCardID        = "Номер карты"
	HeaderStatus        = "Статус"
	HeaderAmount        = "Сумма операции"
	HeaderCurrency      = "Валюта операции"
	HeaderPaymentAmount = "Сумма платежа"
	HeaderCategory      = "Категория"
	HeaderDescription   = "Описание"
	HeaderRoundedAmount = "Сумма операции с округлением"
)

// StatusFailed marks declined operations, which never moved money.
const StatusFailed = "FAILED"

type columns map[string]int

func indexHeader(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

func (c columns) has(name string) bool {
	_, ok := c[name]
	return ok
}

func (c columns) cell(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// buildTable converts raw rows, header first, into a table. Rows whose date or
// amount cannot be read are skipped and logged.
func buildTable(rows [][]string, source string, loc *time.Location, progress func(done, total int)) (model.Table, error) {
	if len(rows) == 0 {
		return model.Table{}, fmt.Errorf("no header row")
	}

	cols := indexHeader(rows[0])
	for _, required := range []string{HeaderOperationTime, HeaderAmount} {
		if !cols.has(required) {
			return model.Table{}, fmt.Errorf("missing required column %q", required)
		}
	}

	table := model.Table{
		Location:         loc,
		Source:           source,
		HasRoundedAmount: cols.has(HeaderRoundedAmount),
		Records:          make([]model.Transaction, 0, len(rows)-1),
	}

	body := rows[1:]
	skipped := 0
	for i, row := range body {
		if progress != nil {
			progress(i+1, len(body))
		}
		if isBlank(row) {
			continue
		}

		tx, err := parseRow(cols, row, loc)
		if err != nil {
			skipped++
			slog.Warn("Skipping unreadable row",
				"source", source,
				"row", i+2,
				"error", err)
			continue
		}
		if strings.EqualFold(tx.Status, StatusFailed) {
			continue
		}
		table.Records = append(table.Records, tx)
	}

	slog.Info("Loaded transaction table",
		"source", source,
		"records", len(table.Records),
		"skipped", skipped,
		"rounded_amounts", table.HasRoundedAmount)

	return table, nil
}

func parseRow(cols columns, row []string, loc *time.Location) (model.Transaction, error) {
	at, err := parseOperationTime(cols.cell(row, HeaderOperationTime), loc)
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := ParseAmount(cols.cell(row, HeaderAmount))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%s: %w", HeaderAmount, err)
	}

	payment := amount
	if s := cols.cell(row, HeaderPaymentAmount); s != "" {
		if payment, err = ParseAmount(s); err != nil {
			return model.Transaction{}, fmt.Errorf("%s: %w", HeaderPaymentAmount, err)
		}
	}

	rounded := amount.Abs()
	if s := cols.cell(row, HeaderRoundedAmount); s != "" {
		if rounded, err = ParseAmount(s); err != nil {
			return model.Transaction{}, fmt.Errorf("%s: %w", HeaderRoundedAmount, err)
		}
	}

	return model.Transaction{
		OperationTime: at,
		Amount:        amount,
		RoundedAmount: rounded,
		PaymentAmount: payment,
		CardID:        cols.cell(row, HeaderCardID),
		Category:      cols.cell(row, HeaderCategory),
		Description:   cols.cell(row, HeaderDescription),
		Status:        cols.cell(row, HeaderStatus),
		Currency:      cols.cell(row, HeaderCurrency),
	}, nil
}

// parseOperationTime accepts the textual layouts of model.ParseOperationTime
// and spreadsheet serial numbers. Serials carry wall-clock time, which is
// re-anchored in loc.
func parseOperationTime(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%s is empty", HeaderOperationTime)
	}
	t, err := model.ParseOperationTime(s, loc)
	if err == nil {
		return t, nil
	}

	serial, serr := strconv.ParseFloat(s, 64)
	if serr != nil || serial <= 0 {
		return time.Time{}, err
	}
	wall, serr := excelize.ExcelDateToTime(serial, false)
	if serr != nil {
		return time.Time{}, err
	}
	wall = wall.Round(time.Second)
	return time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), 0, loc), nil
}

// ParseAmount reads a money amount written with either decimal separator and
// optional space thousands separators, such as "-1 712,50".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\t':
			return -1
		case '\u2212':
			return '-'
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	normalized, err := normalizeSeparators(s)
	if err != nil {
		return decimal.Zero, err
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// normalizeSeparators rewrites s with '.' as the only decimal mark. When both
// ',' and '.' occur the last one is the decimal mark and the other groups
// thousands. A separator repeated on its own groups thousands. Grouped digits
// must come in threes, otherwise the amount is ambiguous.
func normalizeSeparators(s string) (string, error) {
	commas, dots := strings.Count(s, ","), strings.Count(s, ".")

	var group, mark string
	switch {
	case commas > 0 && dots > 0:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			group, mark = ".", ","
		} else {
			group, mark = ",", "."
		}
		if strings.Count(s, mark) > 1 {
			return "", fmt.Errorf("ambiguous amount %q", s)
		}
	case commas == 1:
		mark = ","
	case commas > 1:
		group = ","
	case dots > 1:
		group = "."
	default:
		return s, nil
	}

	integer, fraction := s, ""
	if mark != "" {
		i := strings.LastIndex(s, mark)
		integer, fraction = s[:i], s[i+1:]
	}
	if group != "" {
		parts := strings.Split(integer, group)
		for _, part := range parts[1:] {
			if len(part) != 3 {
				return "", fmt.Errorf("ambiguous amount %q", s)
			}
		}
		integer = strings.Join(parts, "")
	}
	if mark == "" {
		return integer, nil
	}
	return integer + "." + fraction, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
