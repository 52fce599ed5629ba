package audit

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Veraticus/spare/internal/service"
	"github.com/Veraticus/spare/internal/storage"
)

// SQLiteSink stores entries as rows of the audit_reports table.
type SQLiteSink struct {
	store *storage.SQLiteStorage
}

var _ service.AuditSink = (*SQLiteSink)(nil)

// OpenSQLiteSink opens and migrates the database at path.
func OpenSQLiteSink(ctx context.Context, path string) (*SQLiteSink, error) {
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate audit database: %w", err)
	}
	return &SQLiteSink{store: store}, nil
}

// Persist implements service.AuditSink.
func (s *SQLiteSink) Persist(ctx context.Context, entry service.AuditEntry) error {
	data, err := encode(entry.Payload, "")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", entry.Kind, err)
	}

	return s.store.SaveReport(ctx, &storage.Report{
		Kind:      entry.Kind,
		CreatedAt: entry.CreatedAt,
		Payload:   bytes.TrimSpace(data),
	})
}

// History returns up to limit stored entries of kind, newest first.
func (s *SQLiteSink) History(ctx context.Context, kind string, limit int) ([]storage.Report, error) {
	return s.store.ListReports(ctx, kind, limit)
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.store.Close()
}
