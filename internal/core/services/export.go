package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
	"github.com/custodia-labs/htmltab/internal/core/ports/driving"
	"github.com/custodia-labs/htmltab/internal/logger"
)

// Ensure ExportService implements the interface.
var _ driving.ExportService = (*ExportService)(nil)

// ExportService writes tables using the registered serialisers.
type ExportService struct {
	serialisers driven.SerialiserRegistry
}

// NewExportService creates a new export service.
func NewExportService(serialisers driven.SerialiserRegistry) *ExportService {
	return &ExportService{serialisers: serialisers}
}

// Formats returns the supported output formats.
func (s *ExportService) Formats() []domain.OutputFormat {
	return s.serialisers.Formats()
}

// Write serialises a table to w.
func (s *ExportService) Write(w io.Writer, table domain.Table, format domain.OutputFormat) error {
	serialiser, err := s.serialisers.Get(format)
	if err != nil {
		return err
	}
	return serialiser.Write(w, table)
}

// WriteFile serialises a table to path, creating parent directories.
func (s *ExportService) WriteFile(path string, table domain.Table, format domain.OutputFormat) error {
	serialiser, err := s.serialisers.Get(format)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := serialiser.Write(f, table); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Debug("wrote %d rows to %s", len(table.Rows), path)
	return nil
}

// WriteAll writes every table of the extraction to dir.
func (s *ExportService) WriteAll(e *domain.Extraction, dir string, format domain.OutputFormat) ([]string, error) {
	if e == nil || len(e.Tables) == 0 {
		return nil, domain.ErrNoTables
	}
	if _, err := s.serialisers.Get(format); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(e.Tables))
	for i, table := range e.Tables {
		path := filepath.Join(dir, e.Source.TableFileName(i, format))
		if err := s.WriteFile(path, table, format); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
