package ports

import (
	"context"

	"github.com/clinicdesk/health-records/internal/core/domain"
)

// ProgramRepository defines persistence operations for programs.
type ProgramRepository interface {
	// Create inserts p and sets its ID and timestamps.
	Create(ctx context.Context, p *domain.Program) error
	Update(ctx context.Context, p *domain.Program) error
	FindByID(ctx context.Context, id int64) (*domain.Program, error)
	// FindByName matches names case-insensitively.
	FindByName(ctx context.Context, name string) (*domain.Program, error)
	List(ctx context.Context) ([]*domain.Program, error)
}

// ProgramCache holds the full program listing between writes.
//
// Every Invalidate bumps a generation counter. A reader takes the generation
// before querying the store and passes it to Set, which discards the listing
// if a write invalidated the cache in the meantime.
type ProgramCache interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context) (programs []*domain.Program, ok bool, err error)
	Generation(ctx context.Context) (uint64, error)
	// Set stores programs unless the generation has moved past gen.
	Set(ctx context.Context, gen uint64, programs []*domain.Program) error
	Invalidate(ctx context.Context) error
}
