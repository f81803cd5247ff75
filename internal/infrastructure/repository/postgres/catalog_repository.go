package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
)

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *CatalogRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS catalog_jobs (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	product_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_catalog_jobs_status ON catalog_jobs(status);
CREATE INDEX IF NOT EXISTS idx_catalog_jobs_created_at ON catalog_jobs(created_at DESC);

CREATE TABLE IF NOT EXISTS chat_sessions (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_messages (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES chat_sessions(id),
	origin TEXT NOT NULL,
	content TEXT NOT NULL,
	source TEXT,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, created_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *CatalogRepository) CreateJob(ctx context.Context, job *domain.CatalogJob) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO catalog_jobs (id, filename, mime_type, storage_path, status, error_message, product_count, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		job.ID, job.Filename, job.MimeType, job.StoragePath, string(job.Status), job.Error, job.ProductCount, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert catalog job: %w", err)
	}
	return nil
}

func (r *CatalogRepository) GetJobByID(ctx context.Context, id string) (*domain.CatalogJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, storage_path, status, error_message, product_count, created_at, updated_at
FROM catalog_jobs
WHERE id = $1
`, id)

	var job domain.CatalogJob
	var status string
	err := row.Scan(
		&job.ID, &job.Filename, &job.MimeType, &job.StoragePath, &status, &job.Error, &job.ProductCount, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrJobNotFound, "get catalog job", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan catalog job: %w", err)
	}
	job.Status = domain.CatalogJobStatus(status)
	return &job, nil
}

func (r *CatalogRepository) UpdateJobStatus(ctx context.Context, id string, status domain.CatalogJobStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE catalog_jobs
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update catalog job status: %w", err)
	}
	return requireJobRow(res, "update catalog job status", id)
}

func (r *CatalogRepository) SetJobProductCount(ctx context.Context, id string, count int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE catalog_jobs
SET product_count = $2, updated_at = $3
WHERE id = $1
`, id, count, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set catalog job product count: %w", err)
	}
	return requireJobRow(res, "set catalog job product count", id)
}

func requireJobRow(res sql.Result, op, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrJobNotFound, op, fmt.Errorf("id %s", id))
	}
	return nil
}
