package ports

import (
	"context"
	"time"

	"github.com/clinicdesk/health-records/internal/core/domain"
)

// LoginResult is returned after a successful credential check.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// Verify validates signature and expiry of a bearer token.
	Verify(token string) (*domain.Identity, error)
}
