// Package storage persists report snapshots in SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidLimit = errors.New("limit must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateReport(r *Report) error {
	if r == nil {
		return fmt.Errorf("%w: report", ErrNilParameter)
	}
	if err := validateString(r.Kind, "kind"); err != nil {
		return err
	}
	if len(r.Payload) == 0 {
		return fmt.Errorf("%w: payload", ErrEmptyString)
	}
	return nil
}
