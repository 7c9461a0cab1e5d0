package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
)

type ClientService struct {
	repo   ports.ClientRepository
	audit  ports.AuditRecorder
	logger zerolog.Logger
	now    func() time.Time
}

func NewClientService(repo ports.ClientRepository, audit ports.AuditRecorder, logger zerolog.Logger) *ClientService {
	return &ClientService{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// Register validates the input and persists a new client. The email pre-check
// gives a fast answer; the store's unique constraint remains the final guard.
func (s *ClientService) Register(ctx context.Context, input ports.ClientInput) (*domain.Client, error) {
	now := s.now().UTC()
	client, err := buildClient(input, now)
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailAvailable(ctx, client.Email, ""); err != nil {
		return nil, err
	}

	client.ID = uuid.NewString()
	client.CreatedAt = now
	client.UpdatedAt = now

	if err := s.repo.Create(ctx, client); err != nil {
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			s.logger.Error().Err(err).Msg("failed to register client")
		}
		return nil, err
	}

	s.logger.Info().Str("client_id", client.ID).Msg("client registered")
	s.audit.Record(domain.AuditEvent{
		Action:     domain.AuditClientRegistered,
		Entity:     domain.EntityClient,
		EntityID:   client.ID,
		Actor:      input.Actor,
		Details:    map[string]string{"email": client.Email},
		OccurredAt: now,
	})

	return client, nil
}

// Get returns the client with its enrolled programs.
func (s *ClientService) Get(ctx context.Context, id string) (*domain.Client, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrClientNotFound
	}
	return s.repo.FindByID(ctx, id)
}

// Update replaces the client's attributes after the same validation as Register.
func (s *ClientService) Update(ctx context.Context, id string, input ports.ClientInput) (*domain.Client, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	updated, err := buildClient(input, now)
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailAvailable(ctx, updated.Email, existing.ID); err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = now
	updated.Programs = existing.Programs

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info().Str("client_id", updated.ID).Msg("client updated")
	s.audit.Record(domain.AuditEvent{
		Action:     domain.AuditClientUpdated,
		Entity:     domain.EntityClient,
		EntityID:   updated.ID,
		Actor:      input.Actor,
		OccurredAt: now,
	})

	return updated, nil
}

func (s *ClientService) List(ctx context.Context) ([]*domain.Client, error) {
	return s.repo.List(ctx)
}

// Search matches query against names and email; a blank query lists everything.
func (s *ClientService) Search(ctx context.Context, query string) ([]*domain.Client, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.List(ctx)
	}
	return s.repo.Search(ctx, query)
}

// ensureEmailAvailable fails with ErrDuplicateEmail when another client owns email.
func (s *ClientService) ensureEmailAvailable(ctx context.Context, email, selfID string) error {
	other, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrClientNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != selfID:
		return domain.ErrDuplicateEmail
	}
	return nil
}

// buildClient normalises and validates input into an unsaved client.
func buildClient(input ports.ClientInput, now time.Time) (*domain.Client, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	email := normalizeEmail(input.Email)

	if firstName == "" {
		return nil, invalid("first_name is required")
	}
	if lastName == "" {
		return nil, invalid("last_name is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	dob, err := parseDateOfBirth(input.DateOfBirth, now)
	if err != nil {
		return nil, err
	}

	return &domain.Client{
		FirstName:        firstName,
		LastName:         lastName,
		Email:            email,
		Phone:            optionalString(input.Phone),
		DateOfBirth:      dob,
		Address:          optionalString(input.Address),
		Gender:           optionalString(input.Gender),
		EmergencyContact: optionalString(input.EmergencyContact),
		Programs:         []domain.ProgramSummary{},
	}, nil
}
