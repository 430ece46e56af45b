package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/htmltab/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/core/ports/driven"
)

// dbFileName is the database file inside the data directory.
const dbFileName = "history.db"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite-backed extraction history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.htmltab/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".htmltab", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// WAL for concurrent readers; foreign keys on every pooled connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection serialises writers instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ExtractionStore returns an ExtractionStore interface backed by this store.
func (s *Store) ExtractionStore() driven.ExtractionStore {
	return &extractionStore{store: s}
}

// migrate runs all pending migrations, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Extraction Store ====================

// extractionStore implements driven.ExtractionStore.
type extractionStore struct {
	store *Store
}

var _ driven.ExtractionStore = (*extractionStore)(nil)

// SaveExtraction stores or replaces an extraction with all tables and cells.
func (s *extractionStore) SaveExtraction(ctx context.Context, e *domain.Extraction) error {
	if e == nil || e.ID == "" {
		return domain.ErrInvalidInput
	}

	var scores sql.NullString
	if e.Scores != nil {
		data, err := json.Marshal(e.Scores)
		if err != nil {
			return fmt.Errorf("marshalling scores: %w", err)
		}
		scores = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteExtraction(ctx, tx, e.ID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO extractions (id, source_location, source_kind, selected, scores, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.Source.Location, string(e.Source.Kind), e.Selected, scores, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting extraction: %w", err)
	}

	tableStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO extraction_tables (extraction_id, position, caption, attributes)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing table insert: %w", err)
	}
	defer tableStmt.Close()

	cellStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO table_cells (extraction_id, table_position, row_index, col_index, header, text)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing cell insert: %w", err)
	}
	defer cellStmt.Close()

	for pos, table := range e.Tables {
		attrs := table.Attributes
		if attrs == nil {
			attrs = map[string]string{}
		}
		attrsJSON, err := json.Marshal(attrs)
		if err != nil {
			return fmt.Errorf("marshalling attributes: %w", err)
		}
		if _, err := tableStmt.ExecContext(ctx, e.ID, pos, table.Caption, string(attrsJSON)); err != nil {
			return fmt.Errorf("inserting table %d: %w", pos, err)
		}

		for r, row := range table.Rows {
			for c, cell := range row {
				if _, err := cellStmt.ExecContext(ctx, e.ID, pos, r, c, cell.IsHeader(), cell.Text); err != nil {
					return fmt.Errorf("inserting cell %d,%d of table %d: %w", r, c, pos, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing extraction: %w", err)
	}
	return nil
}

// GetExtraction retrieves an extraction with its tables.
func (s *extractionStore) GetExtraction(ctx context.Context, id string) (*domain.Extraction, error) {
	var (
		e         domain.Extraction
		location  string
		kind      string
		scores    sql.NullString
		createdAt string
	)
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_location, source_kind, selected, scores, created_at
		FROM extractions WHERE id = ?
	`, id).Scan(&e.ID, &location, &kind, &e.Selected, &scores, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("querying extraction: %w", err)
	}

	e.Source = domain.Source{Location: location, Kind: domain.SourceKind(kind)}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if scores.Valid {
		if err := json.Unmarshal([]byte(scores.String), &e.Scores); err != nil {
			return nil, fmt.Errorf("unmarshalling scores: %w", err)
		}
	}

	if e.Tables, err = s.loadTables(ctx, id); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *extractionStore) loadTables(ctx context.Context, id string) ([]domain.Table, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT caption, attributes FROM extraction_tables
		WHERE extraction_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}
	defer rows.Close()

	var tables []domain.Table
	for rows.Next() {
		var (
			t     domain.Table
			attrs string
		)
		if err := rows.Scan(&t.Caption, &attrs); err != nil {
			return nil, fmt.Errorf("scanning table: %w", err)
		}
		if err := json.Unmarshal([]byte(attrs), &t.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshalling attributes: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tables: %w", err)
	}

	cells, err := s.store.db.QueryContext(ctx, `
		SELECT table_position, row_index, header, text FROM table_cells
		WHERE extraction_id = ? ORDER BY table_position, row_index, col_index
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying cells: %w", err)
	}
	defer cells.Close()

	for cells.Next() {
		var (
			pos, r int
			header bool
			text   string
		)
		if err := cells.Scan(&pos, &r, &header, &text); err != nil {
			return nil, fmt.Errorf("scanning cell: %w", err)
		}
		if pos < 0 || pos >= len(tables) {
			continue
		}
		t := &tables[pos]
		for len(t.Rows) <= r {
			t.Rows = append(t.Rows, nil)
		}
		kind := domain.CellData
		if header {
			kind = domain.CellHeader
		}
		t.Rows[r] = append(t.Rows[r], domain.Cell{Kind: kind, Text: text})
	}
	if err := cells.Err(); err != nil {
		return nil, fmt.Errorf("iterating cells: %w", err)
	}

	return tables, nil
}

// ListExtractions returns the most recent extractions first.
func (s *extractionStore) ListExtractions(ctx context.Context, limit int) ([]domain.ExtractionSummary, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT e.id, e.source_location, e.source_kind, e.selected, e.created_at,
		       (SELECT COUNT(*) FROM extraction_tables t WHERE t.extraction_id = e.id)
		FROM extractions e
		ORDER BY e.created_at DESC, e.id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying extractions: %w", err)
	}
	defer rows.Close()

	var result []domain.ExtractionSummary
	for rows.Next() {
		var (
			sum       domain.ExtractionSummary
			location  string
			kind      string
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &location, &kind, &sum.Selected, &createdAt, &sum.TableCount); err != nil {
			return nil, fmt.Errorf("scanning extraction: %w", err)
		}
		sum.Source = domain.Source{Location: location, Kind: domain.SourceKind(kind)}
		if sum.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		result = append(result, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating extractions: %w", err)
	}
	return result, nil
}

// DeleteExtraction removes an extraction and its tables.
func (s *extractionStore) DeleteExtraction(ctx context.Context, id string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM extractions WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("querying extraction: %w", err)
	}

	if err := deleteExtraction(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// deleteExtraction removes an extraction and its children inside tx.
func deleteExtraction(ctx context.Context, tx *sql.Tx, id string) error {
	for _, q := range []string{
		"DELETE FROM table_cells WHERE extraction_id = ?",
		"DELETE FROM extraction_tables WHERE extraction_id = ?",
		"DELETE FROM extractions WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("deleting extraction: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
