package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go-jobpost-scraper/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrRecordNotFound = errors.New("job record not found")

// dbtx is the subset of pgxpool.Pool the repository uses
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository mirrors dataset rows into Postgres. The CSV file stays the
// source of truth; the table is a queryable copy.
type Repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// poolers in transaction mode do not support prepared statements
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool, pool: pool}, nil
}

func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS job_records (
	url             TEXT PRIMARY KEY,
	title           TEXT NOT NULL DEFAULT '',
	company         TEXT NOT NULL DEFAULT '',
	location        TEXT NOT NULL DEFAULT '',
	posted          TEXT NOT NULL DEFAULT '',
	applicants      TEXT NOT NULL DEFAULT '',
	job_description TEXT NOT NULL DEFAULT '',
	complete        BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create job_records table: %w", err)
	}
	return nil
}

const upsertJobRecord = `
	INSERT INTO job_records (url, title, company, location, posted, applicants, job_description, complete, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	ON CONFLICT (url)
	DO UPDATE SET title = EXCLUDED.title, company = EXCLUDED.company, location = EXCLUDED.location,
		posted = EXCLUDED.posted, applicants = EXCLUDED.applicants, job_description = EXCLUDED.job_description,
		complete = EXCLUDED.complete, updated_at = NOW()`

// UpsertJobRecord inserts a record or replaces the one stored for the same url
func (r *Repository) UpsertJobRecord(ctx context.Context, rec models.JobRecord) error {
	if rec.URL == "" {
		return errors.New("cannot store a job record without url")
	}
	_, err := r.db.Exec(ctx, upsertJobRecord,
		rec.URL, rec.Title, rec.Company, rec.Location, rec.Posted, rec.Applicants, rec.JobDescription, rec.IsComplete())
	if err != nil {
		return fmt.Errorf("failed to save job record %s: %w", rec.URL, err)
	}
	return nil
}

// GetJobRecord retrieves a stored record by url
func (r *Repository) GetJobRecord(ctx context.Context, url string) (models.JobRecord, error) {
	var rec models.JobRecord
	query := `SELECT url, title, company, location, posted, applicants, job_description FROM job_records WHERE url = $1`
	err := r.db.QueryRow(ctx, query, url).
		Scan(&rec.URL, &rec.Title, &rec.Company, &rec.Location, &rec.Posted, &rec.Applicants, &rec.JobDescription)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, fmt.Errorf("%w: %s", ErrRecordNotFound, url)
		}
		return rec, fmt.Errorf("failed to get job record: %w", err)
	}
	return rec, nil
}

// MirrorRecords upserts every record with a url and returns how many were
// stored. A failing row is logged and skipped.
func (r *Repository) MirrorRecords(ctx context.Context, recs []models.JobRecord) (int, error) {
	stored := 0
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		if rec.URL == "" {
			continue
		}
		if err := r.UpsertJobRecord(ctx, rec); err != nil {
			log.Printf("⚠️ %v", err)
			continue
		}
		stored++
	}
	log.Printf("🗄️ Mirrored %d/%d records to database", stored, len(recs))
	return stored, nil
}
