package ports

import (
	"context"

	"github.com/clinicdesk/health-records/internal/core/domain"
)

// ClientInput carries the fields accepted on registration and update.
// Nil pointers mean the attribute was not supplied.
type ClientInput struct {
	FirstName        string
	LastName         string
	Email            string
	Phone            *string
	DateOfBirth      *string // YYYY-MM-DD
	Address          *string
	Gender           *string
	EmergencyContact *string
	Actor            string
}

// ClientService defines use-case operations for client records.
type ClientService interface {
	Register(ctx context.Context, input ClientInput) (*domain.Client, error)
	Get(ctx context.Context, id string) (*domain.Client, error)
	Update(ctx context.Context, id string, input ClientInput) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Search(ctx context.Context, query string) ([]*domain.Client, error)
}
