package wire

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr_contract_notifier/internal/app"
	"hr_contract_notifier/internal/infra/config"
)

func baseConfig() *config.AppConfig {
	return &config.AppConfig{
		DatabaseURL:        "postgres://unused",
		EmailFrom:          "no-reply@admin.com",
		ChannelTimeout:     time.Second,
		LifecycleTimeout:   time.Second,
		LifecycleQueueSize: 4,
	}
}

func TestNew_NoChannels(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	w, err := New(baseConfig(), db, false, nil)
	require.NoError(t, err)

	assert.Nil(t, w.Bot)
	assert.Nil(t, w.SendBot)
	assert.False(t, w.Email.Enabled())
	assert.False(t, w.Chat.Enabled())
	assert.NotNil(t, w.Queue)
	assert.NotNil(t, w.Admin)
}

func TestNew_OfflineBotEnablesChat(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	cfg := baseConfig()
	cfg.EmailAPIKey = "SG.test"
	cfg.ChatBotToken = "123:abc"
	cfg.ChatDestinationID = -1001

	w, err := New(cfg, db, false, nil)
	require.NoError(t, err)

	assert.NotNil(t, w.Bot)
	assert.Same(t, w.Bot, w.SendBot)
	assert.True(t, w.Email.Enabled())
	assert.True(t, w.Chat.Enabled())
}

func TestNew_TokenWithoutDestinationKeepsChatDisabled(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	cfg := baseConfig()
	cfg.ChatBotToken = "123:abc"

	w, err := New(cfg, db, false, nil)
	require.NoError(t, err)
	assert.False(t, w.Chat.Enabled())
}

func TestNew_ExpiryCheckRunsAgainstStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM contract").
		WithArgs("ACTIVE", "2024-06-01", "2024-07-01").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "contract_number", "employee_id", "status", "start_date", "end_date",
			"job_title", "department_id", "terminated_date", "termination_reason",
		}))

	now := func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local) }
	w, err := New(baseConfig(), db, false, now)
	require.NoError(t, err)

	var svc app.NotificationService = w.Notifications
	summary, err := svc.CheckExpiringContracts(context.Background(), 30)
	require.NoError(t, err)
	assert.Zero(t, summary.Matched)
	assert.NoError(t, mock.ExpectationsWereMet())
}
