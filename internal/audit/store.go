// Package audit keeps a local DuckDB log of handled variants.
// The log is append-only and is never read back during a run.
package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/labbcb/brave-upload/internal/brave"
)

// Store manages a DuckDB connection for the submission log.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates the submission log table if it doesn't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS submissions (
		reference_name VARCHAR,
		start BIGINT,
		reference_bases VARCHAR,
		alternate_bases VARCHAR,
		snp_ids VARCHAR,
		submitted BOOLEAN,
		created_at TIMESTAMP
	)`)
	return err
}

// Record appends one handled variant to the log. submitted is false for
// dry runs.
func (s *Store) Record(v *brave.Variant, submitted bool) error {
	_, err := s.db.Exec(
		`INSERT INTO submissions VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ReferenceName,
		v.Start,
		v.ReferenceBases,
		strings.Join(v.AlternateBases, ","),
		strings.Join(v.SnpIDs, ";"),
		submitted,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// Count returns the number of logged submissions.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT count(*) FROM submissions`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}
