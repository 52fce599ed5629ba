package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Reader fetches cell values from a spreadsheet.
type Reader struct {
	srv    *sheets.Service
	logger *slog.Logger
	config Config
}

// NewReader creates an authenticated Sheets reader.
func NewReader(ctx context.Context, config Config, logger *slog.Logger) (*Reader, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sheets config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, err
	}

	return NewReaderWithService(srv, config, logger), nil
}

// NewReaderWithService wraps an existing service, such as one pointed at a
// test endpoint.
func NewReaderWithService(srv *sheets.Service, config Config, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{srv: srv, config: config, logger: logger}
}

// Rows returns the formatted cell values of rng as strings. Empty trailing
// cells are omitted by the API, so rows may be ragged.
func (r *Reader) Rows(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	if spreadsheetID == "" {
		spreadsheetID = r.config.SpreadsheetID
	}
	if spreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet id", common.ErrMissingConfig)
	}
	if rng == "" {
		rng = r.config.Range
	}

	var resp *sheets.ValueRange
	err := common.WithRetry(ctx, func() error {
		var getErr error
		resp, getErr = r.srv.Spreadsheets.Values.Get(spreadsheetID, rng).
			ValueRenderOption("FORMATTED_VALUE").
			Context(ctx).
			Do()
		return classify(getErr)
	}, service.RetryOptions{
		MaxAttempts:  r.config.RetryAttempts + 1,
		InitialDelay: r.config.RetryDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s!%s: %w", spreadsheetID, rng, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = fmt.Sprint(cell)
		}
	}

	r.logger.Info("Read spreadsheet range",
		"spreadsheet_id", spreadsheetID,
		"range", rng,
		"rows", len(rows))

	return rows, nil
}

// classify marks client errors as permanent so they are not retried.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
		return common.Permanent(err)
	}
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	}
	return err
}

// createSheetsService creates a read-only Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(OAuth2Config{ClientID: config.ClientID, ClientSecret: config.ClientSecret}, "")
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}
