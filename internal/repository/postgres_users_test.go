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

func setupMockUsersDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresUsersRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger := zap.NewNop()
	repo := NewPostgresUsersRepo(db, logger)

	return db, mock, repo
}

func TestUsersGet_Success(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	userID := uuid.New().String()

	rows := sqlmock.NewRows([]string{"id", "username", "role", "status", "created_at"}).
		AddRow(userID, "somchai", "manager", "active", time.Now())

	mock.ExpectQuery(`SELECT`).
		WithArgs(userID).
		WillReturnRows(rows)

	user, err := repo.Get(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "somchai", user.Username)
	assert.Equal(t, domain.RoleManager, user.Role)
	assert.True(t, user.Role.Elevated())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersGet_NotFound(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	userID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)

	user, err := repo.Get(context.Background(), userID)

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Contains(t, err.Error(), "not found")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecipients_ForProject(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	projectID := "proj-001"

	rows := sqlmock.NewRows([]string{"id", "username", "role", "status", "created_at"}).
		AddRow(uuid.New().String(), "admin1", "admin", "active", time.Now()).
		AddRow(uuid.New().String(), "op1", "operator", "active", time.Now())

	mock.ExpectQuery(`SELECT`).
		WithArgs(projectID).
		WillReturnRows(rows)

	users, err := repo.ListRecipients(context.Background(), projectID)

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)
	assert.Equal(t, domain.RoleOperator, users[1].Role)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecipients_SystemWide(t *testing.T) {
	db, mock, repo := setupMockUsersDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "username", "role", "status", "created_at"}).
		AddRow(uuid.New().String(), "admin1", "admin", "active", time.Now())

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(rows)

	users, err := repo.ListRecipients(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, users, 1)

	require.NoError(t, mock.ExpectationsWereMet())
}
