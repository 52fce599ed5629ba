package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statementHeader = []string{
	HeaderOperationTime, "Дата платежа", HeaderCardID, HeaderStatus, HeaderAmount,
	HeaderCurrency, HeaderPaymentAmount, "Валюта платежа", "Кэшбэк", HeaderCategory,
	"MCC", HeaderDescription, "Бонусы", HeaderRoundedAmount,
}

func statementRow(at, card, status, amount, payment, category, description, rounded string) []string {
	return []string{at, "", card, status, amount, "RUB", payment, "RUB", "", category, "5814", description, "", rounded}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "-1712", want: "-1712"},
		{input: "-1712,50", want: "-1712.5"},
		{input: "-1 712,50", want: "-1712.5"},
		{input: "-1\u00a0712,50", want: "-1712.5"},
		{input: "1,234.56", want: "1234.56"},
		{input: "1.234,56", want: "1234.56"},
		{input: "-12.345.678,9", want: "-12345678.9"},
		{input: "1,234,567", want: "1234567"},
		{input: "1.234.567", want: "1234567"},
		{input: "1,234", want: "1.234"},
		{input: "1.23,45", wantErr: true},
		{input: "1,234,56.7", wantErr: true},
		{input: "1.234,56,7", wantErr: true},
		{input: "1,2,3", wantErr: true},
		{input: "\u22125.5", want: "-5.5"},
		{input: " 99.99 ", want: "99.99"},
		{input: "", wantErr: true},
		{input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestBuildTable(t *testing.T) {
	rows := [][]string{
		statementRow("01.01.2024 10:00:00", "*7197", "OK", "-1712,00", "-1712,00", "Супермаркеты", "Магнит", "1712"),
		statementRow("2024-01-02 11:30:00", "", "OK", "-41", "", "Транспорт", "Метро", "41"),
		statementRow("not a date", "*7197", "OK", "-10", "-10", "Еда", "Кафе", "10"),
		statementRow("03.01.2024 09:00:00", "*7197", "FAILED", "-500", "-500", "Еда", "Отказ", "500"),
		statementRow("04.01.2024 09:00:00", "*5091", "OK", "oops", "", "Еда", "Кафе", ""),
		{"", "", ""},
		statementRow("05.01.2024 09:00:00", "*5091", "OK", "15000", "15000", "Пополнения", "Зарплата", "15000"),
	}

	var progressCalls int
	table, err := buildTable(append([][]string{statementHeader}, rows...), "test.xlsx", time.UTC,
		func(done, total int) {
			progressCalls++
			assert.Equal(t, len(rows), total)
		})
	require.NoError(t, err)

	assert.Equal(t, len(rows), progressCalls)
	assert.True(t, table.HasRoundedAmount)
	assert.Equal(t, "test.xlsx", table.Source)
	require.Len(t, table.Records, 3)

	first := table.Records[0]
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), first.OperationTime)
	assert.Equal(t, "-1712", first.Amount.String())
	assert.Equal(t, "1712", first.RoundedAmount.String())
	assert.Equal(t, "*7197", first.CardID)
	assert.Equal(t, "Супермаркеты", first.Category)
	assert.Equal(t, "Магнит", first.Description)
	assert.Equal(t, "RUB", first.Currency)

	second := table.Records[1]
	assert.False(t, second.HasCard())
	assert.True(t, second.PaymentAmount.Equal(second.Amount), "payment defaults to amount")

	assert.False(t, table.Records[2].IsExpense())
}

func TestBuildTableRequiredColumns(t *testing.T) {
	_, err := buildTable([][]string{{HeaderOperationTime, HeaderCategory}}, "x", time.UTC, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), HeaderAmount)

	_, err = buildTable(nil, "x", time.UTC, nil)
	assert.Error(t, err)
}

func TestBuildTableWithoutRoundedColumn(t *testing.T) {
	rows := [][]string{
		{HeaderOperationTime, HeaderAmount},
		{"01.01.2024", "-10,5"},
	}

	table, err := buildTable(rows, "x", time.UTC, nil)
	require.NoError(t, err)
	assert.False(t, table.HasRoundedAmount)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "10.5", table.Records[0].RoundedAmount.String())
}

func TestParseOperationTimeSerial(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)

	got, err := parseOperationTime("45296.5", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 12, 0, 0, 0, loc), got)

	_, err = parseOperationTime("-3", loc)
	assert.Error(t, err)

	_, err = parseOperationTime("", loc)
	assert.Error(t, err)
}

func TestHeaderWithByteOrderMark(t *testing.T) {
	cols := indexHeader([]string{"\ufeff" + HeaderOperationTime, " " + HeaderAmount + " "})
	assert.True(t, cols.has(HeaderOperationTime))
	assert.True(t, cols.has(HeaderAmount))
}
