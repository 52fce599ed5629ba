package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/spare/internal/common"
	"github.com/spf13/viper"
)

// Defaults for application keys.
const (
	DefaultSettingsPath    = "user_settings.json"
	DefaultQuotesBaseURL   = "https://api.apilayer.com"
	DefaultBaseCurrency    = "RUB"
	DefaultQuotesTimeout   = 10 * time.Second
	DefaultAuditBackend    = "file"
	DefaultAuditDatabase   = "~/.local/share/spare/audit.db"
	DefaultOutputFormat    = "table"
	DefaultTableLocation   = "Local"
	DefaultSheetsTokenFile = "~/.config/spare/sheets_token.json"
)

// SetDefaults registers default values for every application key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("table.location", DefaultTableLocation)
	v.SetDefault("table.progress", true)
	v.SetDefault("settings.path", DefaultSettingsPath)
	v.SetDefault("quotes.base_url", DefaultQuotesBaseURL)
	v.SetDefault("quotes.base_currency", DefaultBaseCurrency)
	v.SetDefault("quotes.timeout", DefaultQuotesTimeout)
	v.SetDefault("audit.backend", DefaultAuditBackend)
	v.SetDefault("audit.dir", ".")
	v.SetDefault("audit.database", DefaultAuditDatabase)
	v.SetDefault("sheets.token_file", DefaultSheetsTokenFile)
	v.SetDefault("policy.top_absolute", false)
	v.SetDefault("policy.jar_include_income", false)
	v.SetDefault("policy.case_sensitive", false)
	v.SetDefault("output.format", DefaultOutputFormat)
}

// LoadLocation resolves the zone operation times are read in. Empty and
// "Local" mean the machine's zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: table.location %q: %w", common.ErrInvalidConfig, name, err)
	}
	return loc, nil
}
