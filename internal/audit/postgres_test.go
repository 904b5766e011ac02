package audit

import (
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSink(t *testing.T) (*PostgresSink, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresSinkFromDB(sqlx.NewDb(db, "postgres")), mock
}

func TestPostgresSink_WriteStageCommitsWholeBatch(t *testing.T) {
	sink, mock := newMockSink(t)
	runID := uuid.New()
	rows := sampleRows(runID, "validator", 2)

	mock.ExpectBegin()
	for range rows {
		mock.ExpectExec("INSERT INTO audit_rows").
			WithArgs(runID, "validator", "AAPL", "Long Call", rows[0].RecordedAt, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, sink.WriteStage(runID, "validator", rows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSink_WriteStageRollsBackOnInsertError(t *testing.T) {
	sink, mock := newMockSink(t)
	runID := uuid.New()
	rows := sampleRows(runID, "acceptance", 2)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO audit_rows").
		WithArgs(runID, "acceptance", "AAPL", "Long Call", rows[0].RecordedAt, sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := sink.WriteStage(runID, "acceptance", rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert audit row 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}
