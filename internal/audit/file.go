// Package audit persists snapshots of computed reports.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/spare/internal/service"
)

// FileTimeLayout stamps generated file names.
const FileTimeLayout = "20060102_150405"

// FileSink writes each entry to its own indented JSON file.
type FileSink struct {
	Dir       string
	FixedName string // Overrides the generated <kind>_YYYYMMDD_HHMMSS.json name
}

var _ service.AuditSink = (*FileSink)(nil)

// NewFileSink creates a sink writing into dir.
func NewFileSink(dir, fixedName string) *FileSink {
	return &FileSink{Dir: dir, FixedName: fixedName}
}

// FileName returns the file an entry is written to.
func (s *FileSink) FileName(entry service.AuditEntry) string {
	name := s.FixedName
	if name == "" {
		name = fmt.Sprintf("%s_%s.json", entry.Kind, entry.CreatedAt.Format(FileTimeLayout))
	}
	return filepath.Join(s.Dir, name)
}

// Persist implements service.AuditSink. Non-ASCII text is written as is.
func (s *FileSink) Persist(ctx context.Context, entry service.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encode(entry.Payload, "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", entry.Kind, err)
	}

	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0750); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}

	path := s.FileName(entry)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	slog.Info("Saved report", "kind", entry.Kind, "path", path)
	return nil
}

func encode(payload any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
