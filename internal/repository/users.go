package repository

import (
	"context"

	"github.com/anusitsrb-glitch/greenhouse-pro-sub001/internal/domain"
)

// UsersRepository user lookup and recipient resolution.
type UsersRepository interface {
	Get(ctx context.Context, userID string) (*domain.User, error)

	// ListRecipients returns active users entitled to project events:
	// admins and managers always, operators only when granted access to
	// the project. With an empty projectID (system-wide events) every
	// active admin, manager and operator qualifies.
	ListRecipients(ctx context.Context, projectID string) ([]*domain.User, error)
}
