package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

// BackupRepository keeps encrypted backup blobs in a single table keyed by name.
type BackupRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewBackupRepository(db *sql.DB) *BackupRepository {
	return &BackupRepository{db: db, now: time.Now}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *BackupRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS backup_blobs (
	name TEXT PRIMARY KEY,
	payload BYTEA NOT NULL,
	size_bytes INTEGER NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *BackupRepository) Put(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return domain.WrapError(domain.ErrInvalidInput, "put backup blob", errors.New("name is required"))
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO backup_blobs (name, payload, size_bytes, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (name) DO UPDATE
SET payload = EXCLUDED.payload, size_bytes = EXCLUDED.size_bytes, updated_at = EXCLUDED.updated_at
`, name, data, len(data), r.now().UTC())
	if err != nil {
		return domain.WrapError(domain.ErrSync, "put backup blob", err)
	}
	return nil
}

func (r *BackupRepository) Get(ctx context.Context, name string) ([]byte, bool, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT payload
FROM backup_blobs
WHERE name = $1
`, name)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, domain.WrapError(domain.ErrSync, "get backup blob", err)
	}
	return payload, true, nil
}
