package kv

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewPostgresStore(sqlx.NewDb(sqlDB, "postgres"), ""), mock
}

func TestPostgresStore_Get(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries WHERE key = $1`)).
		WithArgs("agora_lineup_tvs").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))
	raw, err := s.Get(ctx, "agora_lineup_tvs")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries WHERE key = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetNotifies(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO kv_entries`).
		WithArgs("k", `{"a":1}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_notify($1, $2)`)).
		WithArgs(NotifyChannel, "k").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Set(context.Background(), "k", []byte(`{"a":1}`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateCommits(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO kv_entries`).WithArgs("k").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries WHERE key = $1 FOR UPDATE`)).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`1`)))
	mock.ExpectExec(`UPDATE kv_entries`).WithArgs("k", "2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_notify($1, $2)`)).
		WithArgs(NotifyChannel, "k").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := Mutate(context.Background(), s, "k", 0, func(n int) (int, error) { return n + 1, nil })
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO kv_entries`).WithArgs("k").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`null`)))
	mock.ExpectRollback()

	err := s.Update(context.Background(), "k", func([]byte) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_AppliesUpScriptsInOrder(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("0002_index.up.sql", "CREATE INDEX two;")
	write("0001_table.up.sql", "CREATE TABLE one;")
	write("0001_table.down.sql", "DROP TABLE one;")
	write("0003_blank.up.sql", "  \n")

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE one;")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX two;")).WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := RunMigrations(context.Background(), sqlx.NewDb(sqlDB, "postgres"), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_StopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0001_bad.up.sql"), []byte("BROKEN;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0002_next.up.sql"), []byte("NEXT;"), 0o644))

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	mock.ExpectExec(regexp.QuoteMeta("BROKEN;")).WillReturnError(errors.New("syntax error"))

	applied, err := RunMigrations(context.Background(), sqlx.NewDb(sqlDB, "postgres"), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_bad.up.sql")
	assert.Zero(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectPostgres_GivesUpWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ConnectPostgres(ctx, "postgres://lineup@127.0.0.1:1/lineup?sslmode=disable")
	assert.ErrorIs(t, err, context.Canceled)
}
