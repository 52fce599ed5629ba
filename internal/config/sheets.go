package config

import (
	"os"

	"github.com/Veraticus/spare/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets reader configuration. Values come from
// viper (config file or SPARE_ env vars) first, then GOOGLE_SHEETS_* variables,
// then defaults.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(firstNonEmpty(
		v.GetString("sheets.service_account_path"),
		os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")))
	config.ClientID = firstNonEmpty(v.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
	config.ClientSecret = firstNonEmpty(v.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
	config.RefreshToken = firstNonEmpty(v.GetString("sheets.refresh_token"), os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN"))
	if config.RefreshToken == "" && config.ClientID != "" {
		config.RefreshToken = savedRefreshToken(v.GetString("sheets.token_file"))
	}
	config.SpreadsheetID = firstNonEmpty(v.GetString("sheets.spreadsheet_id"), os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"))
	config.Range = firstNonEmpty(v.GetString("sheets.range"), os.Getenv("GOOGLE_SHEETS_RANGE"), config.Range)

	if v.IsSet("sheets.retry_attempts") {
		config.RetryAttempts = v.GetInt("sheets.retry_attempts")
	}
	if v.IsSet("sheets.retry_delay") {
		config.RetryDelay = v.GetDuration("sheets.retry_delay")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// savedRefreshToken returns the refresh token stored by the auth command, if any.
func savedRefreshToken(tokenFile string) string {
	if tokenFile == "" {
		return ""
	}
	token, err := sheets.LoadToken(ExpandPath(tokenFile))
	if err != nil {
		return ""
	}
	return token.RefreshToken
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
