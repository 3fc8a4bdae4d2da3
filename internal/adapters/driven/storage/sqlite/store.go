package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/storysift/storysift-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/storysift/storysift-cli/internal/core/domain"
	"github.com/storysift/storysift-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RunHistoryStore = (*Store)(nil)

// Store is the SQLite-backed run history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.storysift/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".storysift", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
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
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_runs.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveRun stores or updates a run summary.
func (s *Store) SaveRun(ctx context.Context, summary domain.RunSummary) error {
	if summary.RunID == "" {
		return fmt.Errorf("saving run: empty run id")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
			(run_id, source_path, runtime_version, success, file_count, fragment_count, error_count, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			source_path = excluded.source_path,
			runtime_version = excluded.runtime_version,
			success = excluded.success,
			file_count = excluded.file_count,
			fragment_count = excluded.fragment_count,
			error_count = excluded.error_count,
			start_time = excluded.start_time,
			end_time = excluded.end_time
	`, summary.RunID, summary.SourcePath, summary.RuntimeVersion, summary.Success,
		summary.FileCount, summary.FragmentCount, summary.ErrorCount,
		summary.StartTime.UTC(), summary.EndTime.UTC())

	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit run summaries, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit < 1 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, source_path, runtime_version, success, file_count, fragment_count, error_count, start_time, end_time
		FROM runs
		ORDER BY start_time DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var summaries []domain.RunSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sm domain.RunSummary
		if err := rows.Scan(&sm.RunID, &sm.SourcePath, &sm.RuntimeVersion, &sm.Success,
			&sm.FileCount, &sm.FragmentCount, &sm.ErrorCount, &sm.StartTime, &sm.EndTime); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		summaries = append(summaries, sm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return summaries, nil
}
