package ports

import (
	"context"

	"github.com/clinicdesk/health-records/internal/core/domain"
)

// ProgramInput carries the fields for creating a program.
type ProgramInput struct {
	Name        string
	Description *string
	Actor       string
}

// ProgramUpdate is a partial update: nil fields are left untouched.
type ProgramUpdate struct {
	Name        *string
	Description *string
	Actor       string
}

type ProgramService interface {
	Create(ctx context.Context, input ProgramInput) (*domain.Program, error)
	Update(ctx context.Context, id int64, input ProgramUpdate) (*domain.Program, error)
	List(ctx context.Context) ([]*domain.Program, error)
}
