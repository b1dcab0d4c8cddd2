package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"

	"go.uber.org/zap"
)

// PostgresNotificationSettingsRepo notification_settings table access.
type PostgresNotificationSettingsRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresNotificationSettingsRepo(db *sql.DB, logger *zap.Logger) *PostgresNotificationSettingsRepo {
	return &PostgresNotificationSettingsRepo{db: db, logger: logger}
}

func (r *PostgresNotificationSettingsRepo) GetOrCreate(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	defaults := domain.DefaultNotificationSettings(userID)
	typesJSON, err := json.Marshal(defaults.Types)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default types: %w", err)
	}
	severitiesJSON, err := json.Marshal(defaults.Severities)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default severities: %w", err)
	}
	projectIDsJSON, err := json.Marshal(defaults.ProjectIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default project ids: %w", err)
	}
	greenhouseIDsJSON, err := json.Marshal(defaults.GreenhouseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default greenhouse ids: %w", err)
	}

	// First access seeds the default row; the conflict clause keeps
	// concurrent first reads from racing each other.
	insert := `
		INSERT INTO notification_settings (
			user_id,
			enabled,
			types,
			severities,
			project_ids,
			greenhouse_ids,
			quiet_hours_enabled,
			quiet_hours_start,
			quiet_hours_end,
			created_at,
			updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
		)
		ON CONFLICT (user_id) DO NOTHING
	`

	_, err = r.db.ExecContext(ctx, insert,
		userID,
		defaults.Enabled,
		typesJSON,
		severitiesJSON,
		projectIDsJSON,
		greenhouseIDsJSON,
		defaults.QuietHoursEnabled,
		defaults.QuietHoursStart,
		defaults.QuietHoursEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to seed notification settings: %w", err)
	}

	query := `
		SELECT
			user_id,
			enabled,
			types,
			severities,
			project_ids,
			greenhouse_ids,
			quiet_hours_enabled,
			quiet_hours_start,
			quiet_hours_end,
			created_at,
			updated_at
		FROM notification_settings
		WHERE user_id = $1
	`

	var s domain.NotificationSettings
	var types, severities, projectIDs, greenhouseIDs []byte

	err = r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID,
		&s.Enabled,
		&types,
		&severities,
		&projectIDs,
		&greenhouseIDs,
		&s.QuietHoursEnabled,
		&s.QuietHoursStart,
		&s.QuietHoursEnd,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query notification settings: %w", err)
	}

	if err := json.Unmarshal(types, &s.Types); err != nil {
		return nil, fmt.Errorf("failed to unmarshal types: %w", err)
	}
	if err := json.Unmarshal(severities, &s.Severities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal severities: %w", err)
	}
	if err := json.Unmarshal(projectIDs, &s.ProjectIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project ids: %w", err)
	}
	if err := json.Unmarshal(greenhouseIDs, &s.GreenhouseIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal greenhouse ids: %w", err)
	}

	return &s, nil
}

func (r *PostgresNotificationSettingsRepo) Update(ctx context.Context, s *domain.NotificationSettings) error {
	if s == nil {
		return fmt.Errorf("settings are required")
	}
	if s.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	typesJSON, err := json.Marshal(s.Types)
	if err != nil {
		return fmt.Errorf("failed to marshal types: %w", err)
	}
	severitiesJSON, err := json.Marshal(s.Severities)
	if err != nil {
		return fmt.Errorf("failed to marshal severities: %w", err)
	}
	projectIDs := s.ProjectIDs
	if projectIDs == nil {
		projectIDs = []string{}
	}
	projectIDsJSON, err := json.Marshal(projectIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal project ids: %w", err)
	}
	greenhouseIDs := s.GreenhouseIDs
	if greenhouseIDs == nil {
		greenhouseIDs = []string{}
	}
	greenhouseIDsJSON, err := json.Marshal(greenhouseIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal greenhouse ids: %w", err)
	}

	query := `
		UPDATE notification_settings
		SET enabled = $2,
		    types = $3,
		    severities = $4,
		    project_ids = $5,
		    greenhouse_ids = $6,
		    quiet_hours_enabled = $7,
		    quiet_hours_start = $8,
		    quiet_hours_end = $9,
		    updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		s.UserID,
		s.Enabled,
		typesJSON,
		severitiesJSON,
		projectIDsJSON,
		greenhouseIDsJSON,
		s.QuietHoursEnabled,
		s.QuietHoursStart,
		s.QuietHoursEnd,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification settings: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("notification settings not found: user_id=%s", s.UserID)
	}

	return nil
}
