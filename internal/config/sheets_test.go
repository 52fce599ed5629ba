package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spare/internal/sheets"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearSheetsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
		"GOOGLE_SHEETS_RANGE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadSheetsConfigFromViper(t *testing.T) {
	clearSheetsEnv(t)
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "from-env")

	v := viper.New()
	v.Set("sheets.client_id", "client")
	v.Set("sheets.client_secret", "secret")
	v.Set("sheets.refresh_token", "token")
	v.Set("sheets.spreadsheet_id", "from-viper")
	v.Set("sheets.retry_delay", "250ms")

	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "client", cfg.ClientID)
	assert.Equal(t, "from-viper", cfg.SpreadsheetID)
	assert.Equal(t, sheets.DefaultRange, cfg.Range)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 3, cfg.RetryAttempts)
}

func TestLoadSheetsConfigEnvFallback(t *testing.T) {
	clearSheetsEnv(t)
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/keys/sa.json")
	t.Setenv("GOOGLE_SHEETS_RANGE", "Операции!A:I")

	cfg, err := LoadSheetsConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
	assert.Equal(t, "Операции!A:I", cfg.Range)
}

func TestLoadSheetsConfigNoAuth(t *testing.T) {
	clearSheetsEnv(t)

	_, err := LoadSheetsConfig(viper.New())
	assert.Error(t, err)
}

func TestLoadSheetsConfigSavedToken(t *testing.T) {
	clearSheetsEnv(t)

	tokenFile := filepath.Join(t.TempDir(), "sheets_token.json")
	require.NoError(t, os.WriteFile(tokenFile, []byte(`{"access_token":"a","refresh_token":"saved"}`), 0600))

	v := viper.New()
	v.Set("sheets.client_id", "client")
	v.Set("sheets.client_secret", "secret")
	v.Set("sheets.token_file", tokenFile)

	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "saved", cfg.RefreshToken)
}
