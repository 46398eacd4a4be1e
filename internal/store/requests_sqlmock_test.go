package store

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lee-lou2/aws-ses-sender/internal/domain"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Store{db: db}, mock
}

func TestBulkUpdate_OmitsMessageIDAndErrorClausesWhenUnset(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests SET status = CASE id WHEN ? THEN ? END, updated_at = ? WHERE id IN (?)")).
		WithArgs(int64(1), int(domain.StatusSent), sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.BulkUpdate([]domain.Request{{ID: 1, Status: domain.StatusSent}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdate_IncludesMessageIDClauseWhenAnyRowHasOne(t *testing.T) {
	s, mock := newMockStore(t)

	expected := "UPDATE requests SET status = CASE id WHEN ? THEN ? WHEN ? THEN ? END" +
		", provider_message_id = CASE id WHEN ? THEN COALESCE(?, provider_message_id) WHEN ? THEN COALESCE(?, provider_message_id) END" +
		", updated_at = ? WHERE id IN (?, ?)"

	mock.ExpectExec(regexp.QuoteMeta(expected)).
		WithArgs(
			int64(1), int(domain.StatusSent), int64(2), int(domain.StatusFailed),
			int64(1), "msg-1", int64(2), nil,
			sqlmock.AnyArg(), int64(1), int64(2),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := s.BulkUpdate([]domain.Request{
		{ID: 1, Status: domain.StatusSent, ProviderMessageID: "msg-1"},
		{ID: 2, Status: domain.StatusFailed},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdate_NoRowsIsANoop(t *testing.T) {
	s, mock := newMockStore(t)

	err := s.BulkUpdate(nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
