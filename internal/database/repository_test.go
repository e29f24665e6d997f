package database

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"go-jobpost-scraper/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	execs   []execCall
	failURL string
	row     pgx.Row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if len(args) > 0 && args[0] == f.failURL {
		return pgconn.CommandTag{}, errors.New("connection reset")
	}
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return f.row
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func TestUpsertJobRecord(t *testing.T) {
	db := &fakeDB{}
	repo := &Repository{db: db}
	rec := models.JobRecord{URL: "https://x/1", Title: "T", JobDescription: "D"}

	require.NoError(t, repo.UpsertJobRecord(context.Background(), rec))

	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0].sql, "ON CONFLICT (url)")
	assert.Equal(t, []any{"https://x/1", "T", "", "", "", "", "D", false}, db.execs[0].args)

	assert.Error(t, repo.UpsertJobRecord(context.Background(), models.JobRecord{Title: "no url"}))
}

func TestMirrorRecords(t *testing.T) {
	db := &fakeDB{failURL: "https://x/bad"}
	repo := &Repository{db: db}

	stored, err := repo.MirrorRecords(context.Background(), []models.JobRecord{
		{URL: "https://x/1"},
		{URL: ""},
		{URL: "https://x/bad"},
		{URL: "https://x/2"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.Len(t, db.execs, 2)
}

func TestGetJobRecord_NotFound(t *testing.T) {
	repo := &Repository{db: &fakeDB{row: errRow{err: pgx.ErrNoRows}}}

	_, err := repo.GetJobRecord(context.Background(), "https://x/1")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestEnsureSchema(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, (&Repository{db: db}).EnsureSchema(context.Background()))
	require.Len(t, db.execs, 1)
	assert.True(t, strings.Contains(db.execs[0].sql, "CREATE TABLE IF NOT EXISTS job_records"))
}

// integration test: needs a disposable database
func TestRepository_Postgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if testing.Short() || url == "" {
		t.Skip("Skipping database test (set TEST_DATABASE_URL to run)")
	}
	ctx := context.Background()

	repo, err := ConnectDB(ctx, url)
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.EnsureSchema(ctx))

	rec := models.JobRecord{URL: "https://example.com/jobs/view/integration", Title: "First"}
	require.NoError(t, repo.UpsertJobRecord(ctx, rec))
	rec.Title = "Second"
	require.NoError(t, repo.UpsertJobRecord(ctx, rec))

	got, err := repo.GetJobRecord(ctx, rec.URL)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}
