package database_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr_contract_notifier/internal/domain/recipient"
	idb "hr_contract_notifier/internal/infra/database"
)

var recipientCols = []string{"id", "email", "name", "is_active", "notification_types", "created_at", "created_by"}

func TestRecipientRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO notification_recipients")).
		WithArgs("hr@example.com", sql.NullString{String: "HR", Valid: true}, true, "contracts", sql.NullInt64{Int64: 42, Valid: true}).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now))

	rc := &recipient.Recipient{
		Email:             "hr@example.com",
		Name:              sql.NullString{String: "HR", Valid: true},
		IsActive:          true,
		NotificationTypes: recipient.TypeContracts,
		CreatedBy:         sql.NullInt64{Int64: 42, Valid: true},
	}
	require.NoError(t, idb.NewPostgresRecipientRepository(db).Create(context.Background(), rc))
	assert.Equal(t, int64(5), rc.ID)
	assert.Equal(t, now, rc.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipientRepo_Create_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("INSERT INTO notification_recipients").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err = idb.NewPostgresRecipientRepository(db).Create(context.Background(), &recipient.Recipient{Email: "a@b.c", NotificationTypes: recipient.TypeAll})
	assert.ErrorIs(t, err, idb.ErrDuplicateRecipientEmail)
}

func TestRecipientRepo_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(email) = lower($1)")).
		WithArgs("HR@example.com").
		WillReturnRows(sqlmock.NewRows(recipientCols).AddRow(int64(1), "hr@example.com", nil, true, "all", time.Now(), nil))

	rc, err := idb.NewPostgresRecipientRepository(db).GetByEmail(context.Background(), "HR@example.com")
	require.NoError(t, err)
	assert.Equal(t, recipient.TypeAll, rc.NotificationTypes)
	assert.False(t, rc.Name.Valid)

	mock.ExpectQuery("FROM notification_recipients").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(recipientCols))
	_, err = idb.NewPostgresRecipientRepository(db).GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, idb.ErrRecipientNotFound)
}

func TestRecipientRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := idb.NewPostgresRecipientRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notification_recipients WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 3))

	mock.ExpectExec("DELETE FROM notification_recipients").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 9), idb.ErrRecipientNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipientRepo_SetActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_recipients SET is_active = $1")).
		WithArgs(false, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, idb.NewPostgresRecipientRepository(db).SetActive(context.Background(), 3, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipientRepo_ListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE is_active = TRUE")).
		WillReturnRows(sqlmock.NewRows(recipientCols).
			AddRow(int64(1), "a@example.com", "A", true, "all", time.Now(), int64(42)).
			AddRow(int64(2), "b@example.com", nil, true, "contracts", time.Now(), nil))

	got, err := idb.NewPostgresRecipientRepository(db).ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name.String)
	assert.Equal(t, recipient.TypeContracts, got[1].NotificationTypes)
	assert.True(t, got[0].CreatedBy.Valid)
}
