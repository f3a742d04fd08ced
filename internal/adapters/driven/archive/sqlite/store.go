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
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/aguaralabs/facturante-cli/internal/adapters/driven/archive/sqlite/migrations"
	"github.com/aguaralabs/facturante-cli/internal/core/domain"
	"github.com/aguaralabs/facturante-cli/internal/core/ports/driven"
)

// defaultListLimit caps ListRuns when the caller passes no limit.
const defaultListLimit = 20

// Ensure Store implements the interface.
var _ driven.RunArchive = (*Store)(nil)

// Store is the SQLite-backed implementation of driven.RunArchive.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the archive database at dbPath.
// If dbPath is empty, defaults to ~/.facturante/data/runs.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".facturante", "data", "runs.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Foreign keys drive the ON DELETE CASCADE from runs to results
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

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

	// Find all up migrations
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
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
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

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveReport persists a report and its per-invoice results in one
// transaction.
func (s *Store) SaveReport(ctx context.Context, report *domain.RunReport) error {
	if report == nil || report.ID == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM runs WHERE id = ?", report.ID).Scan(&count); err != nil {
		return fmt.Errorf("checking run: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: run %s", domain.ErrAlreadyExists, report.ID)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, ended_at, total, batches, succeeded, failed, interrupted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, report.ID,
		report.StartedAt.UTC().Format(time.RFC3339),
		report.EndedAt.UTC().Format(time.RFC3339),
		report.Total, report.Batches, report.Succeeded, report.Failed,
		boolToInt(report.Interrupted)); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, res := range report.Results {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_results (run_id, position, issuer, invoice_type, outcome,
				invoice_id, document_path, error_kind, message, step_at_failure,
				started_at, ended_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, report.ID, res.Position, string(res.Issuer), int(res.Type), string(res.Outcome),
			nullString(res.InvoiceID), nullString(res.DocumentPath),
			nullString(string(res.Kind)), nullString(res.Message),
			nullString(string(res.StepAtFailure)),
			res.StartedAt.UTC().Format(time.RFC3339),
			res.EndedAt.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("inserting result %d: %w", res.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing report: %w", err)
	}
	return nil
}

// GetReport retrieves a full report by run ID.
func (s *Store) GetReport(ctx context.Context, runID string) (*domain.RunReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, ended_at, total, batches, succeeded, failed, interrupted
		FROM runs WHERE id = ?
	`, runID)

	report, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT position, issuer, invoice_type, outcome, invoice_id, document_path,
			error_kind, message, step_at_failure, started_at, ended_at
		FROM run_results WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	report.ByKind = make(map[domain.ErrorKind]int)
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		if !res.Succeeded() {
			report.ByKind[res.Kind]++
		}
		report.Results = append(report.Results, *res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}

	return report, nil
}

// ListRuns returns run summaries, most recent first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, ended_at, total, succeeded, failed, interrupted
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var summaries []domain.RunSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			summary        domain.RunSummary
			started, ended string
			interrupted    int
		)
		if err := rows.Scan(&summary.ID, &started, &ended, &summary.Total,
			&summary.Succeeded, &summary.Failed, &interrupted); err != nil {
			return nil, fmt.Errorf("scanning run summary: %w", err)
		}
		summary.StartedAt = parseTime(started)
		summary.EndedAt = parseTime(ended)
		summary.Interrupted = interrupted == 1
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return summaries, nil
}

// Prune deletes all but the most recent keep runs. Results follow their
// runs through the cascade.
func (s *Store) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM runs
		WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning runs: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// scanRun scans the runs row into a report without its results.
func scanRun(row *sql.Row) (*domain.RunReport, error) {
	var (
		report         domain.RunReport
		started, ended string
		interrupted    int
	)

	if err := row.Scan(&report.ID, &started, &ended, &report.Total,
		&report.Batches, &report.Succeeded, &report.Failed, &interrupted); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	report.StartedAt = parseTime(started)
	report.EndedAt = parseTime(ended)
	report.Interrupted = interrupted == 1

	return &report, nil
}

// scanResult scans one run_results row.
func scanResult(rows *sql.Rows) (*domain.InvoiceResult, error) {
	var (
		res                      domain.InvoiceResult
		issuer, outcome          string
		invoiceType              int
		invoiceID, docPath, kind sql.NullString
		message, step            sql.NullString
		started, ended           string
	)

	if err := rows.Scan(&res.Position, &issuer, &invoiceType, &outcome,
		&invoiceID, &docPath, &kind, &message, &step, &started, &ended); err != nil {
		return nil, fmt.Errorf("scanning result: %w", err)
	}

	res.Issuer = domain.TaxID(issuer)
	res.Type = domain.InvoiceType(invoiceType)
	res.Outcome = domain.Outcome(outcome)
	res.InvoiceID = invoiceID.String
	res.DocumentPath = docPath.String
	res.Kind = domain.ErrorKind(kind.String)
	res.Message = message.String
	res.StepAtFailure = domain.Step(step.String)
	res.StartedAt = parseTime(started)
	res.EndedAt = parseTime(ended)

	return &res, nil
}

// parseTime parses an RFC3339 string stored by SaveReport.
// Returns zero time on parse error.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
