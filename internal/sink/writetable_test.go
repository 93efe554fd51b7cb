package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/quickprep-cli/internal/table"
)

func mockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(sqlx.NewDb(db, "postgres"), zerolog.Nop()), mock
}

func readings() *table.Table {
	return table.MustNew(
		table.MustColumn("id", table.KindInteger, 1, 2, 3),
		table.MustColumn("site", table.KindText, "a", "b", "c"),
	)
}

func TestWriteTableReplaceInBatches(t *testing.T) {
	pg, mock := mockPostgres(t)
	pg.BatchSize = 2
	tb := readings()

	mock.ExpectBegin()
	mock.ExpectExec(`DROP TABLE IF EXISTS "lab"."readings"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(CreateTableSQL("lab", "readings", tb)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(InsertSQL("lab", "readings", tb.Names(), 2)).
		WithArgs(int64(1), "a", int64(2), "b").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(InsertSQL("lab", "readings", tb.Names(), 1)).
		WithArgs(int64(3), "c").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := pg.WriteTable(context.Background(), "lab", "readings", tb, ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteTableRollsBackOnInsertError(t *testing.T) {
	pg, mock := mockPostgres(t)
	tb := readings()
	boom := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectExec(CreateTableSQL("", "readings", tb)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(InsertSQL("", "readings", tb.Names(), 3)).WillReturnError(boom)
	mock.ExpectRollback()

	n, err := pg.WriteTable(context.Background(), "", "readings", tb, ModeAppend)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet(), "append must not drop and must roll back")
}

func TestWriteTableRollsBackOnCommitError(t *testing.T) {
	pg, mock := mockPostgres(t)
	tb := readings()

	mock.ExpectBegin()
	mock.ExpectExec(CreateTableSQL("", "readings", tb)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(InsertSQL("", "readings", tb.Names(), 3)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	n, err := pg.WriteTable(context.Background(), "", "readings", tb, ModeAppend)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteTableRejectsEmptyName(t *testing.T) {
	pg, mock := mockPostgres(t)
	_, err := pg.WriteTable(context.Background(), "lab", " ", readings(), ModeReplace)
	require.True(t, errors.Is(err, table.ErrInvalidArgument))
	assert.NoError(t, mock.ExpectationsWereMet())
}
