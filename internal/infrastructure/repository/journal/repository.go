package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

const (
	driverPostgres = "pgx"
	driverSQLite   = "sqlite3"
)

// Repository persists one row per handled file. It works against PostgreSQL
// (shared journal for several machines) or a local SQLite file.
type Repository struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

func NewRepository(db *sql.DB, driver string) *Repository {
	return &Repository{db: db, driver: driver, now: time.Now}
}

// Open picks the driver from the DSN: postgres:// URLs use pgx, anything else
// is treated as a SQLite path (an optional sqlite:// prefix is stripped).
func Open(dsn string) (*Repository, error) {
	driver, source := driverFor(dsn)
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	if driver == driverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return NewRepository(db, driver), nil
}

func driverFor(dsn string) (string, string) {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return driverPostgres, dsn
	case strings.HasPrefix(lower, "sqlite://"):
		return driverSQLite, dsn[len("sqlite://"):]
	default:
		return driverSQLite, dsn
	}
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if r.driver == driverPostgres {
		// Serialize bootstrap DDL across organizer/worker startups.
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101901)); err != nil {
			return fmt.Errorf("acquire schema lock: %w", err)
		}
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS organize_journal (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	source_path TEXT NOT NULL,
	status TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	new_name TEXT NOT NULL DEFAULT '',
	destination TEXT NOT NULL DEFAULT '',
	failed_step TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	dry_run BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_organize_journal_created_at ON organize_journal(created_at DESC)`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema ddl: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *Repository) Record(ctx context.Context, outcome domain.FileOutcome) error {
	failedStep := ""
	if outcome.Disposition != nil {
		failedStep = string(outcome.Disposition.FailedStep)
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO organize_journal (
	id, run_id, source_path, status, category, new_name, destination, failed_step, error_message, dry_run, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		uuid.NewString(), outcome.RunID, outcome.Path, string(outcome.Status), outcome.Category,
		outcome.NewName, outcome.Destination, failedStep, outcome.ErrorMessage(),
		outcome.Status == domain.OutcomeDryRun, r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, run_id, source_path, status, category, new_name, destination, failed_step, error_message, dry_run, created_at
FROM organize_journal
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, limit)
	for rows.Next() {
		var e domain.JournalEntry
		if err := rows.Scan(
			&e.ID, &e.RunID, &e.SourcePath, &e.Status, &e.Category, &e.NewName,
			&e.Destination, &e.FailedStep, &e.Error, &e.DryRun, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}
