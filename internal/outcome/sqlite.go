package outcome

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite. It is the default
// backend: a single local file, no server to run.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite outcome store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSchema creates the outcomes table and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content_hash TEXT UNIQUE NOT NULL,
		denial_reason TEXT NOT NULL DEFAULT 'unknown',
		location TEXT NOT NULL DEFAULT 'unknown',
		cohort TEXT NOT NULL DEFAULT 'unknown',
		claim_amount REAL NOT NULL DEFAULT 0,
		outcome INTEGER NOT NULL DEFAULT 0,
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_group ON outcomes(cohort, location);
	CREATE INDEX IF NOT EXISTS idx_outcomes_recorded_at ON outcomes(recorded_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Add inserts a record with insert-or-ignore semantics keyed on the content
// hash. A duplicate submission is a silent no-op, not an error.
func (s *SQLiteStore) Add(ctx context.Context, in Input) error {
	r := in.toRecord()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO outcomes (
			content_hash, denial_reason, location, cohort, claim_amount, outcome, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		r.ContentHash,
		r.DenialReason,
		r.Location,
		r.Cohort,
		r.ClaimAmount,
		r.Outcome,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}
	return nil
}

// List returns every stored record in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content_hash, denial_reason, location, cohort, claim_amount, outcome, recorded_at
		FROM outcomes
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ID, &r.ContentHash, &r.DenialReason, &r.Location,
			&r.Cohort, &r.ClaimAmount, &r.Outcome, &r.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Count returns the total number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM outcomes").Scan(&count)
	return count, err
}

// Health checks the underlying database connection.
func (s *SQLiteStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
