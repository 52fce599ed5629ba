package audit

import (
	"context"
	"fmt"

	"github.com/Veraticus/spare/internal/common"
	"github.com/Veraticus/spare/internal/service"
)

// Backends accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Config selects and configures an audit backend.
type Config struct {
	Backend  string
	Dir      string
	FileName string
	Database string
}

// Open returns the configured sink and a function releasing it. The none
// backend yields a nil sink.
func Open(ctx context.Context, cfg Config) (service.AuditSink, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case BackendFile, "":
		return NewFileSink(cfg.Dir, cfg.FileName), noop, nil
	case BackendSQLite:
		if cfg.Database == "" {
			return nil, noop, fmt.Errorf("%w: audit.database", common.ErrMissingConfig)
		}
		sink, err := OpenSQLiteSink(ctx, cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		return sink, sink.Close, nil
	case BackendNone:
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("%w: unknown audit backend %q", common.ErrInvalidConfig, cfg.Backend)
	}
}
