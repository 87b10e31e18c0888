package sqlx_test

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	libsqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storage "make24/adapters/sqlx"
	"make24/core"
)

func newMockStore(t *testing.T) (*storage.Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	xdb := storage.NewWithDB(libsqlx.NewDb(db, "postgres"), storage.DriverPostgres)
	cleanup := func() {
		_ = db.Close()
	}
	return xdb, mock, cleanup
}

func TestSQLMock_SetScore(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE users SET score`).
		WithArgs(int64(7), core.Username("alice")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SetScore(context.Background(), "alice", 7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_SetScore_UnknownUser(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE users SET score`).
		WithArgs(int64(7), core.Username("ghost")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SetScore(context.Background(), "ghost", 7)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_TopScores(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT username, score FROM users WHERE score > 0`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"username", "score"}).
			AddRow("carol", 30).
			AddRow("bob", 20).
			AddRow("alice", 10))

	entries, err := store.TopScores(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, core.Username("carol"), entries[0].Username)
	assert.Equal(t, int64(30), entries[0].Score)
	assert.Equal(t, core.Username("alice"), entries[2].Username)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_CreateUser(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(core.Username("alice"), "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	id, err := store.CreateUser(context.Background(), "alice", "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_GetUser_NotFound(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT id, username, password, score, created_at FROM users`).
		WithArgs(core.Username("ghost")).
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_GetScore(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT score FROM users`).
		WithArgs(core.Username("alice")).
		WillReturnRows(sqlmock.NewRows([]string{"score"}).AddRow(int64(12)))

	score, err := store.GetScore(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(12), score)
	require.NoError(t, mock.ExpectationsWereMet())
}
