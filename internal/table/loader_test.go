package table

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(t.TempDir(), "operations.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{HeaderOperationTime, HeaderCardID, HeaderStatus, HeaderAmount, HeaderCategory, HeaderDescription, HeaderRoundedAmount},
		{"01.01.2024 10:00:00", "*7197", "OK", -1712.0, "Супермаркеты", "Магнит", 1712.0},
		{time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), "*7197", "OK", "-41,50", "Транспорт", "Метро", 42.0},
		{"bad", "*7197", "OK", -1.0, "Еда", "Кафе", 1.0},
	})

	var done int
	loader := NewLoader(Options{
		Location: time.UTC,
		Progress: func(d, _ int) { done = d },
	})

	table, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, done)
	assert.True(t, table.HasRoundedAmount)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "-1712", table.Records[0].Amount.String())
	assert.Equal(t, time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC), table.Records[1].OperationTime)
	assert.Equal(t, "-41.5", table.Records[1].Amount.String())
	assert.Equal(t, "42", table.Records[1].RoundedAmount.String())
}

func TestLoadXLSXNamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Операции", [][]any{
		{HeaderOperationTime, HeaderAmount},
		{"2024-03-01 08:00:00", -5},
	})

	table, err := NewLoader(Options{Location: time.UTC, Sheet: "Операции"}).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, table.Records, 1)

	_, err = NewLoader(Options{Location: time.UTC, Sheet: "Нет"}).Load(context.Background(), path)
	assert.ErrorIs(t, err, common.ErrTableUnavailable)
}

func TestLoadOFX(t *testing.T) {
	statement := `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>RUB
<CCACCTFROM>
<ACCTID>220070000007197
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101000000[0:GMT]
<DTEND>20240131000000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-149.90
<FITID>1
<NAME>YANDEX GO
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>0
<DTASOF>20240131000000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`
	path := filepath.Join(t.TempDir(), "statement.ofx")
	require.NoError(t, os.WriteFile(path, []byte(statement), 0600))

	table, err := NewLoader(Options{Location: time.UTC}).Load(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, table.Records, 1)
	assert.False(t, table.HasRoundedAmount)
	assert.Equal(t, "220070000007197", table.Records[0].CardID)
	assert.Equal(t, "-149.9", table.Records[0].Amount.String())
	assert.Equal(t, "YANDEX GO", table.Records[0].Description)
}

func TestLoadSheets(t *testing.T) {
	reader := sheets.NewMockReader([][]string{
		{HeaderOperationTime, HeaderAmount, HeaderCategory},
		{"01.02.2024 12:00:00", "-300", "Еда"},
	})

	table, err := NewLoader(Options{Location: time.UTC, Sheets: reader}).
		Load(context.Background(), "sheets://abc123/Операции!A:I")
	require.NoError(t, err)

	require.Len(t, reader.Calls, 1)
	assert.Equal(t, "abc123", reader.Calls[0].SpreadsheetID)
	assert.Equal(t, "Операции!A:I", reader.Calls[0].Range)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "Еда", table.Records[0].Category)
}

func TestLoadFailures(t *testing.T) {
	failing := &sheets.MockReader{
		RowsFunc: func(context.Context, string, string) ([][]string, error) {
			return nil, errors.New("quota exceeded")
		},
	}

	tests := []struct {
		name    string
		opts    Options
		source  string
		wantErr error
	}{
		{name: "empty source", source: "", wantErr: common.ErrMissingConfig},
		{name: "missing file", source: filepath.Join(t.TempDir(), "missing.xlsx"), wantErr: common.ErrTableUnavailable},
		{name: "unsupported format", source: "operations.csv", wantErr: common.ErrTableUnavailable},
		{name: "sheets without credentials", source: "sheets://abc/A:I", wantErr: common.ErrMissingConfig},
		{name: "sheets without id", source: "sheets:///A:I", opts: Options{Sheets: failing}, wantErr: common.ErrTableUnavailable},
		{name: "sheets read error", source: "sheets://abc", opts: Options{Sheets: failing}, wantErr: common.ErrTableUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewLoader(tt.opts).Load(context.Background(), tt.source)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrTableUnavailable)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, table.IsEmpty())
		})
	}
}

func TestParseSheetsSource(t *testing.T) {
	id, rng := ParseSheetsSource("sheets://abc/Лист1!A1:I")
	assert.Equal(t, "abc", id)
	assert.Equal(t, "Лист1!A1:I", rng)

	id, rng = ParseSheetsSource("sheets://abc")
	assert.Equal(t, "abc", id)
	assert.Empty(t, rng)
}
