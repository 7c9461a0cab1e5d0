package ports

import (
	"context"

	"github.com/clinicdesk/health-records/internal/core/domain"
)

// ClientRepository defines persistence operations for clients.
// Every returned client carries its enrolled program summaries.
type ClientRepository interface {
	// Create inserts c transactionally. A unique email violation yields
	// domain.ErrDuplicateEmail.
	Create(ctx context.Context, c *domain.Client) error
	// Update overwrites every mutable column of c. Returns domain.ErrClientNotFound
	// when no row matches and domain.ErrDuplicateEmail on conflict.
	Update(ctx context.Context, c *domain.Client) error
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	FindByEmail(ctx context.Context, email string) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	// Search matches query case-insensitively against first name, last name and email.
	Search(ctx context.Context, query string) ([]*domain.Client, error)
}
