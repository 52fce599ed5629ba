package engine

import (
	"time"

	"github.com/Veraticus/spare/internal/service"
)

// Clock returns the current time. Tests replace it to pin report timestamps.
type Clock func() time.Time

// Compile-time interface checks.
var (
	_ service.QuoteProvider = noQuotes{}
)
