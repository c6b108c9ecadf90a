// Package store persists a history of analysis runs in SQLite so the
// CLI can show how an assembly's health evolves across curation rounds.
// This is a QC audit log, not the host application's session state.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded analysis.
type Run struct {
	ID            int64
	MatrixPath    string
	MatrixSize    int
	Health        int
	Contiguity    float64
	DecayQuality  float64
	Integrity     float64
	Compartments  float64
	Exponent      float64
	Eigenvalue    float64
	Misassemblies int
	CreatedAt     time.Time
}

// Store wraps the run-history database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	matrix_path    TEXT NOT NULL,
	matrix_size    INTEGER NOT NULL,
	health         INTEGER NOT NULL,
	contiguity     REAL NOT NULL,
	decay_quality  REAL NOT NULL,
	integrity      REAL NOT NULL,
	compartments   REAL NOT NULL,
	exponent       REAL NOT NULL,
	eigenvalue     REAL NOT NULL,
	misassemblies  INTEGER NOT NULL,
	created_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_path ON runs(matrix_path, created_at);
`

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one run and returns its ID. A zero CreatedAt is filled
// with the current time.
func (s *Store) Record(r Run) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.Exec(`
		INSERT INTO runs (matrix_path, matrix_size, health, contiguity,
			decay_quality, integrity, compartments, exponent, eigenvalue,
			misassemblies, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MatrixPath, r.MatrixSize, r.Health, r.Contiguity,
		r.DecayQuality, r.Integrity, r.Compartments, r.Exponent,
		r.Eigenvalue, r.Misassemblies, r.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// List returns runs for one matrix path, oldest first, capped at limit
// (0 means no cap).
func (s *Store) List(matrixPath string, limit int) ([]Run, error) {
	query := `
		SELECT id, matrix_path, matrix_size, health, contiguity,
			decay_quality, integrity, compartments, exponent, eigenvalue,
			misassemblies, created_at
		FROM runs WHERE matrix_path = ? ORDER BY created_at ASC, id ASC`
	args := []any{matrixPath}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.MatrixPath, &r.MatrixSize, &r.Health,
			&r.Contiguity, &r.DecayQuality, &r.Integrity, &r.Compartments,
			&r.Exponent, &r.Eigenvalue, &r.Misassemblies, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
