// Package table loads transaction tables from statement files and spreadsheets.
package table

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/model"
	"github.com/Veraticus/spare/internal/ofx"
	"github.com/Veraticus/spare/internal/service"
)

// SheetsScheme prefixes Google Sheets sources: sheets://<spreadsheet-id>/<range>.
const SheetsScheme = "sheets://"

// RowSource reads spreadsheet ranges as rows of text.
type RowSource interface {
	Rows(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
}

// Options configures a Loader.
type Options struct {
	Location *time.Location
	Sheets   RowSource
	Progress func(done, total int)
	Sheet    string // Worksheet for xlsx sources; the first one when empty
}

// Loader reads tables from xlsx workbooks, OFX/QFX statements and Google Sheets.
type Loader struct {
	ofx  *ofx.Parser
	opts Options
}

var _ service.TableLoader = (*Loader)(nil)

// NewLoader creates a loader.
func NewLoader(opts Options) *Loader {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Loader{opts: opts, ofx: ofx.NewParser(opts.Location)}
}

// Load reads the whole table at source. Any failure wraps
// common.ErrTableUnavailable and no partial table is returned.
func (l *Loader) Load(ctx context.Context, source string) (model.Table, error) {
	table, err := l.load(ctx, source)
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: %s: %w", common.ErrTableUnavailable, source, err)
	}
	return table, nil
}

func (l *Loader) load(ctx context.Context, source string) (model.Table, error) {
	if strings.TrimSpace(source) == "" {
		return model.Table{}, fmt.Errorf("%w: table path", common.ErrMissingConfig)
	}

	if strings.HasPrefix(source, SheetsScheme) {
		return l.loadSheet(ctx, source)
	}

	switch ext := strings.ToLower(filepath.Ext(source)); ext {
	case ".xlsx", ".xlsm":
		rows, err := readXLSX(ctx, source, l.opts.Sheet)
		if err != nil {
			return model.Table{}, err
		}
		return buildTable(rows, source, l.opts.Location, l.opts.Progress)
	case ".ofx", ".qfx":
		return l.loadOFX(ctx, source)
	default:
		return model.Table{}, fmt.Errorf("unsupported table format %q", ext)
	}
}

func (l *Loader) loadOFX(ctx context.Context, path string) (model.Table, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return model.Table{}, err
	}
	defer func() { _ = f.Close() }()

	records, err := l.ofx.ParseFile(ctx, f)
	if err != nil {
		return model.Table{}, err
	}
	if l.opts.Progress != nil {
		l.opts.Progress(len(records), len(records))
	}

	return model.Table{
		Location: l.opts.Location,
		Source:   path,
		Records:  records,
	}, nil
}

func (l *Loader) loadSheet(ctx context.Context, source string) (model.Table, error) {
	if l.opts.Sheets == nil {
		return model.Table{}, fmt.Errorf("%w: Google Sheets credentials", common.ErrMissingConfig)
	}

	id, rng := ParseSheetsSource(source)
	if id == "" {
		return model.Table{}, fmt.Errorf("invalid sheets source %q", source)
	}

	slog.Debug("Reading spreadsheet", "spreadsheet_id", id, "range", rng)
	rows, err := l.opts.Sheets.Rows(ctx, id, rng)
	if err != nil {
		return model.Table{}, err
	}
	return buildTable(rows, source, l.opts.Location, l.opts.Progress)
}

// ParseSheetsSource splits sheets://<id>/<range> into its parts. The range is
// empty when the source names none.
func ParseSheetsSource(source string) (id, rng string) {
	rest := strings.TrimPrefix(source, SheetsScheme)
	id, rng, _ = strings.Cut(rest, "/")
	return strings.TrimSpace(id), strings.TrimSpace(rng)
}
