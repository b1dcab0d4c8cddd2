package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
)

func setupMockSettingsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresNotificationSettingsRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	repo := NewPostgresNotificationSettingsRepo(db, logger)

	return db, mock, repo
}

func TestSettingsGetOrCreate_SeedsDefaults(t *testing.T) {
	db, mock, repo := setupMockSettingsDB(t)
	defer db.Close()

	ctx := context.Background()
	userID := uuid.New().String()
	now := time.Now()

	mock.ExpectExec(`INSERT INTO notification_settings`).
		WithArgs(
			userID, true, sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), false, "22:00", "07:00",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows := sqlmock.NewRows([]string{
		"user_id", "enabled", "types", "severities", "project_ids",
		"greenhouse_ids", "quiet_hours_enabled", "quiet_hours_start",
		"quiet_hours_end", "created_at", "updated_at",
	}).AddRow(
		userID, true,
		`{"device_online":true,"device_offline":true,"sensor_offline":true,"sensor_alert":true,"control_action":true,"system_error":true}`,
		`{"info":true,"warning":true,"critical":true}`,
		`[]`, `[]`, false, "22:00", "07:00", now, now,
	)

	mock.ExpectQuery(`SELECT`).
		WithArgs(userID).
		WillReturnRows(rows)

	settings, err := repo.GetOrCreate(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, userID, settings.UserID)
	assert.True(t, settings.Enabled)
	assert.True(t, settings.Types[domain.TypeSensorAlert])
	assert.True(t, settings.Severities[domain.SeverityInfo])
	assert.Empty(t, settings.ProjectIDs)
	assert.False(t, settings.QuietHoursEnabled)
	assert.Equal(t, "22:00", settings.QuietHoursStart)
	assert.Equal(t, "07:00", settings.QuietHoursEnd)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsGetOrCreate_MissingUserID(t *testing.T) {
	db, mock, repo := setupMockSettingsDB(t)
	defer db.Close()

	settings, err := repo.GetOrCreate(context.Background(), "")

	assert.Error(t, err)
	assert.Nil(t, settings)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsUpdate_Success(t *testing.T) {
	db, mock, repo := setupMockSettingsDB(t)
	defer db.Close()

	userID := uuid.New().String()
	settings := domain.DefaultNotificationSettings(userID)
	settings.Enabled = false
	settings.QuietHoursEnabled = true
	settings.QuietHoursStart = "23:00"
	settings.QuietHoursEnd = "06:30"
	settings.GreenhouseIDs = []string{"gh-001", "gh-002"}

	mock.ExpectExec(`UPDATE notification_settings`).
		WithArgs(
			userID, false, sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), true, "23:00", "06:30",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), settings)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsUpdate_NotFound(t *testing.T) {
	db, mock, repo := setupMockSettingsDB(t)
	defer db.Close()

	userID := uuid.New().String()
	settings := domain.DefaultNotificationSettings(userID)

	mock.ExpectExec(`UPDATE notification_settings`).
		WithArgs(
			userID, true, sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), false, "22:00", "07:00",
		).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), settings)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsUpdate_NilSettings(t *testing.T) {
	db, _, repo := setupMockSettingsDB(t)
	defer db.Close()

	err := repo.Update(context.Background(), nil)

	assert.Error(t, err)
}
