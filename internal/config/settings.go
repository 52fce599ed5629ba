package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/model"
	"github.com/spf13/viper"
)

// LoadSettings reads the user settings document at path. The document must be
// an object whose every value is a list of strings, such as
//
//	{"user_currencies": ["USD", "EUR"], "user_stocks": ["AAPL"]}
//
// JSON and YAML are accepted. A missing file yields common.ErrMissingConfig and
// a malformed one common.ErrInvalidConfig.
func LoadSettings(path string) (model.Settings, error) {
	path = ExpandPath(path)
	if path == "" {
		return model.Settings{}, fmt.Errorf("%w: settings path", common.ErrMissingConfig)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Settings{}, fmt.Errorf("%w: settings file %s", common.ErrMissingConfig, path)
		}
		return model.Settings{}, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return model.Settings{}, fmt.Errorf("%w: settings file %s: %w", common.ErrInvalidConfig, path, err)
	}

	if err := validateSettings(v.AllSettings()); err != nil {
		return model.Settings{}, fmt.Errorf("%w: settings file %s: %w", common.ErrInvalidConfig, path, err)
	}

	var settings model.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return model.Settings{}, fmt.Errorf("%w: settings file %s: %w", common.ErrInvalidConfig, path, err)
	}
	settings.UserCurrencies = normalize(settings.UserCurrencies)
	settings.UserStocks = normalize(settings.UserStocks)

	return settings, nil
}

func validateSettings(doc map[string]any) error {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		list, ok := doc[key].([]any)
		if !ok {
			return fmt.Errorf("%q must be a list of strings", key)
		}
		for i, item := range list {
			if _, ok := item.(string); !ok {
				return fmt.Errorf("%q[%d] must be a string", key, i)
			}
		}
	}
	return nil
}

// normalize trims and upper-cases codes, dropping blanks.
func normalize(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}
