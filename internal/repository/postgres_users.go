package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"

	"go.uber.org/zap"
)

// PostgresUsersRepo users table access.
type PostgresUsersRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresUsersRepo(db *sql.DB, logger *zap.Logger) *PostgresUsersRepo {
	return &PostgresUsersRepo{db: db, logger: logger}
}

func (r *PostgresUsersRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `
		SELECT id, username, role, status, created_at
		FROM users
		WHERE id = $1
	`

	var u domain.User
	var role string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&u.ID,
		&u.Username,
		&role,
		&u.Status,
		&u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: id=%s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	u.Role = domain.Role(role)
	return &u, nil
}

func (r *PostgresUsersRepo) ListRecipients(ctx context.Context, projectID string) ([]*domain.User, error) {
	var query string
	var args []interface{}

	if projectID == "" {
		// System-wide events go to every active staff user.
		query = `
			SELECT id, username, role, status, created_at
			FROM users
			WHERE status = 'active'
			  AND role IN ('admin', 'manager', 'operator')
			ORDER BY username
		`
	} else {
		// Admins and managers see every project. Operators only the
		// projects they were granted.
		query = `
			SELECT u.id, u.username, u.role, u.status, u.created_at
			FROM users u
			WHERE u.status = 'active'
			  AND (
				u.role IN ('admin', 'manager')
				OR (
					u.role = 'operator'
					AND EXISTS (
						SELECT 1 FROM user_project_access a
						WHERE a.user_id = u.id AND a.project_id = $1
					)
				)
			  )
			ORDER BY u.username
		`
		args = append(args, projectID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipients: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		var u domain.User
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &role, &u.Status, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		u.Role = domain.Role(role)
		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipients: %w", err)
	}

	return users, nil
}
