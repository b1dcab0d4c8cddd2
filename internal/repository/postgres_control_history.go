package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"

	"go.uber.org/zap"
)

// PostgresControlHistoryRepo control_history table access.
type PostgresControlHistoryRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresControlHistoryRepo(db *sql.DB, logger *zap.Logger) *PostgresControlHistoryRepo {
	return &PostgresControlHistoryRepo{db: db, logger: logger}
}

func (r *PostgresControlHistoryRepo) Insert(ctx context.Context, e *domain.ControlHistoryEntry) error {
	if e == nil {
		return fmt.Errorf("entry is required")
	}
	if e.ID == "" {
		return fmt.Errorf("entry id is required")
	}

	query := `
		INSERT INTO control_history (
			id,
			greenhouse_id,
			control_key,
			control_name,
			action,
			value,
			source,
			user_id,
			ip_address,
			success,
			error_message,
			created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.GreenhouseID,
		e.ControlKey,
		e.ControlName,
		e.Action,
		e.Value,
		string(e.Source),
		e.UserID,
		e.IPAddress,
		e.Success,
		e.ErrorMessage,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert control history: %w", err)
	}

	return nil
}

func (r *PostgresControlHistoryRepo) buildWhereClause(filters ControlHistoryFilters, args *[]interface{}, argN *int) []string {
	where := []string{}

	if filters.GreenhouseID != nil {
		where = append(where, fmt.Sprintf("greenhouse_id = $%d", *argN))
		*args = append(*args, *filters.GreenhouseID)
		*argN++
	}
	if filters.ControlKey != nil {
		where = append(where, fmt.Sprintf("control_key = $%d", *argN))
		*args = append(*args, *filters.ControlKey)
		*argN++
	}
	if filters.Source != nil {
		where = append(where, fmt.Sprintf("source = $%d", *argN))
		*args = append(*args, *filters.Source)
		*argN++
	}
	if filters.Success != nil {
		where = append(where, fmt.Sprintf("success = $%d", *argN))
		*args = append(*args, *filters.Success)
		*argN++
	}
	if filters.StartTime != nil {
		where = append(where, fmt.Sprintf("created_at >= $%d", *argN))
		*args = append(*args, *filters.StartTime)
		*argN++
	}
	if filters.EndTime != nil {
		where = append(where, fmt.Sprintf("created_at <= $%d", *argN))
		*args = append(*args, *filters.EndTime)
		*argN++
	}

	return where
}

func (r *PostgresControlHistoryRepo) List(ctx context.Context, filters ControlHistoryFilters, page, size int) ([]*domain.ControlHistoryEntry, int, error) {
	args := []interface{}{}
	argN := 1
	where := r.buildWhereClause(filters, &args, &argN)

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	queryCount := fmt.Sprintf(`SELECT COUNT(*) FROM control_history %s`, whereClause)

	var total int
	if err := r.db.QueryRowContext(ctx, queryCount, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count control history: %w", err)
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
			greenhouse_id,
			control_key,
			control_name,
			action,
			value,
			source,
			user_id,
			ip_address,
			success,
			error_message,
			created_at
		FROM control_history
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)+1, len(args)+2)

	args = append(args, size, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query control history: %w", err)
	}
	defer rows.Close()

	entries := []*domain.ControlHistoryEntry{}
	for rows.Next() {
		var e domain.ControlHistoryEntry
		var source string
		var userID, ipAddress, errorMessage sql.NullString

		err := rows.Scan(
			&e.ID,
			&e.GreenhouseID,
			&e.ControlKey,
			&e.ControlName,
			&e.Action,
			&e.Value,
			&source,
			&userID,
			&ipAddress,
			&e.Success,
			&errorMessage,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan control history: %w", err)
		}

		e.Source = domain.ControlSource(source)
		if userID.Valid {
			e.UserID = &userID.String
		}
		if ipAddress.Valid {
			e.IPAddress = &ipAddress.String
		}
		if errorMessage.Valid {
			e.ErrorMessage = &errorMessage.String
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate control history: %w", err)
	}

	return entries, total, nil
}
