package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/spare/internal/audit"
	"github.com/Veraticus/spare/internal/cli"
	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/config"
	"github.com/Veraticus/spare/internal/engine"
	"github.com/Veraticus/spare/internal/model"
	"github.com/Veraticus/spare/internal/quotes"
	"github.com/Veraticus/spare/internal/service"
	"github.com/Veraticus/spare/internal/sheets"
	"github.com/Veraticus/spare/internal/table"
	"github.com/spf13/viper"
)

// quoteRetry applies to every market data request.
var quoteRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     5 * time.Second,
	Multiplier:   2.0,
}

func tableLocation() (*time.Location, error) {
	return config.LoadLocation(viper.GetString("table.location"))
}

// loadTable reads the configured transactions source.
func loadTable(ctx context.Context) (model.Table, error) {
	source := strings.TrimSpace(viper.GetString("table.path"))
	if source == "" {
		return model.Table{}, common.NewUserError(
			"Не указан файл с операциями. Используйте --table или table.path в конфигурации.",
			fmt.Errorf("%w: table.path", common.ErrMissingConfig))
	}

	loc, err := tableLocation()
	if err != nil {
		return model.Table{}, err
	}

	opts := table.Options{
		Location: loc,
		Sheet:    viper.GetString("table.sheet"),
	}
	if viper.GetBool("table.progress") {
		opts.Progress = cli.NewLoadProgress(os.Stderr, "Загрузка операций").Report
	}

	if strings.HasPrefix(source, table.SheetsScheme) {
		reader, err := newSheetsReader(ctx)
		if err != nil {
			return model.Table{}, err
		}
		opts.Sheets = reader
	} else {
		source = config.ExpandPath(source)
	}

	slog.Debug("Loading transactions", "source", source, "location", loc.String())
	return table.NewLoader(opts).Load(ctx, source)
}

func newSheetsReader(ctx context.Context) (*sheets.Reader, error) {
	cfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("%w: sheets: %w", common.ErrMissingConfig, err)
	}
	reader, err := sheets.NewReader(ctx, *cfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets reader: %w", err)
	}
	return reader, nil
}

// loadSettings reads the user settings file. A missing file means no rates
// and no stocks on the dashboard.
func loadSettings() (model.Settings, error) {
	path := viper.GetString("settings.path")
	settings, err := config.LoadSettings(path)
	if errors.Is(err, common.ErrMissingConfig) {
		slog.Warn("User settings not found, market data disabled", "path", path)
		return model.Settings{UserCurrencies: []string{}, UserStocks: []string{}}, nil
	}
	return settings, err
}

func newQuoteClient() *quotes.Client {
	apiKey := viper.GetString("quotes.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("API_TOKEN")
	}

	return quotes.NewClient(quotes.Config{
		BaseURL:      viper.GetString("quotes.base_url"),
		APIKey:       apiKey,
		BaseCurrency: viper.GetString("quotes.base_currency"),
		Timeout:      viper.GetDuration("quotes.timeout"),
		Retry:        quoteRetry,
	}, slog.Default())
}

// openAudit opens the configured report sink. The returned sink is nil for
// the none backend.
func openAudit(ctx context.Context) (service.AuditSink, func() error, error) {
	return audit.Open(ctx, audit.Config{
		Backend:  viper.GetString("audit.backend"),
		Dir:      config.ExpandPath(viper.GetString("audit.dir")),
		FileName: viper.GetString("audit.filename"),
		Database: config.ExpandPath(viper.GetString("audit.database")),
	})
}

func newRenderer(w io.Writer) *cli.Renderer {
	return cli.NewRenderer(w, viper.GetString("output.format"))
}

func policy() engine.Policy {
	return engine.PolicyFromViper(viper.GetViper())
}

// parseDateTime reads a dashboard reference time. Blank means now.
func parseDateTime(text string, loc *time.Location) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Now().In(loc), nil
	}
	t, err := time.ParseInLocation(model.DateTimeLayout, text, loc)
	if err != nil {
		return time.Time{}, common.NewUserError(
			"Некорректный формат даты и времени. Используйте YYYY-MM-DD HH:MM:SS.",
			fmt.Errorf("%w %q: %w", common.ErrInvalidDate, text, err))
	}
	return t, nil
}
