package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"

	"go.uber.org/zap"
)

// PostgresNotificationsRepo notifications table access.
type PostgresNotificationsRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresNotificationsRepo(db *sql.DB, logger *zap.Logger) *PostgresNotificationsRepo {
	return &PostgresNotificationsRepo{db: db, logger: logger}
}

func (r *PostgresNotificationsRepo) Insert(ctx context.Context, n *domain.Notification) error {
	if n == nil {
		return fmt.Errorf("notification is required")
	}
	if n.ID == "" {
		return fmt.Errorf("notification id is required")
	}
	if n.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	metadata := n.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO notifications (
			id,
			user_id,
			type,
			severity,
			title,
			message,
			metadata,
			project_id,
			greenhouse_id,
			is_read,
			auto_dismiss,
			dismiss_after_seconds,
			created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err = r.db.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		string(n.Type),
		string(n.Severity),
		n.Title,
		n.Message,
		metadataJSON,
		n.ProjectID,
		n.GreenhouseID,
		n.IsRead,
		n.AutoDismiss,
		n.DismissAfterSeconds,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

func (r *PostgresNotificationsRepo) List(ctx context.Context, userID string, unreadOnly bool, page, size int) ([]*domain.Notification, int, error) {
	if userID == "" {
		return []*domain.Notification{}, 0, nil
	}

	where := "WHERE user_id = $1"
	if unreadOnly {
		where += " AND is_read = FALSE"
	}

	var total int
	queryCount := fmt.Sprintf(`SELECT COUNT(*) FROM notifications %s`, where)
	if err := r.db.QueryRowContext(ctx, queryCount, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`
		SELECT
			id,
			user_id,
			type,
			severity,
			title,
			message,
			metadata,
			project_id,
			greenhouse_id,
			is_read,
			read_at,
			auto_dismiss,
			dismiss_after_seconds,
			created_at
		FROM notifications
		%s
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, where)

	rows, err := r.db.QueryContext(ctx, query, userID, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, total, nil
}

func scanNotification(rows *sql.Rows) (*domain.Notification, error) {
	var n domain.Notification
	var ntype, severity string
	var metadata []byte
	var projectID, greenhouseID sql.NullString
	var readAt sql.NullTime

	err := rows.Scan(
		&n.ID,
		&n.UserID,
		&ntype,
		&severity,
		&n.Title,
		&n.Message,
		&metadata,
		&projectID,
		&greenhouseID,
		&n.IsRead,
		&readAt,
		&n.AutoDismiss,
		&n.DismissAfterSeconds,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}

	n.Type = domain.NotificationType(ntype)
	n.Severity = domain.Severity(severity)
	if projectID.Valid {
		n.ProjectID = &projectID.String
	}
	if greenhouseID.Valid {
		n.GreenhouseID = &greenhouseID.String
	}
	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
			n.Metadata = map[string]any{}
		}
	} else {
		n.Metadata = map[string]any{}
	}

	return &n, nil
}

func (r *PostgresNotificationsRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	if userID == "" {
		return fmt.Errorf("user_id is required")
	}
	if notificationID == "" {
		return fmt.Errorf("notification_id is required")
	}

	query := `
		UPDATE notifications
		SET is_read = TRUE,
		    read_at = CURRENT_TIMESTAMP
		WHERE id = $1
		  AND user_id = $2
		  AND is_read = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("notification not found or already read: id=%s", notificationID)
	}

	return nil
}

func (r *PostgresNotificationsRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("user_id is required")
	}

	query := `
		UPDATE notifications
		SET is_read = TRUE,
		    read_at = CURRENT_TIMESTAMP
		WHERE user_id = $1
		  AND is_read = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return result.RowsAffected()
}

func (r *PostgresNotificationsRepo) HasRecentSensorOffline(ctx context.Context, userID, greenhouseID string, within time.Duration) (bool, error) {
	threshold := time.Now().Add(-within)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM notifications
			WHERE user_id = $1
			  AND type = 'sensor_offline'
			  AND greenhouse_id = $2
			  AND created_at > $3
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, greenhouseID, threshold).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query recent sensor_offline: %w", err)
	}
	return exists, nil
}

func (r *PostgresNotificationsRepo) HasRecentSensorAlert(ctx context.Context, userID, greenhouseID, sensorKey, triggered string, within time.Duration) (bool, error) {
	threshold := time.Now().Add(-within)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM notifications
			WHERE user_id = $1
			  AND type = 'sensor_alert'
			  AND greenhouse_id = $2
			  AND metadata->>'sensorKey' = $3
			  AND metadata->>'triggered' = $4
			  AND created_at > $5
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, greenhouseID, sensorKey, triggered, threshold).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query recent sensor_alert: %w", err)
	}
	return exists, nil
}

func (r *PostgresNotificationsRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM notifications
		WHERE is_read = TRUE
		  AND created_at < $1
	`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}

	return result.RowsAffected()
}
