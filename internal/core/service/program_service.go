package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
)

type ProgramService struct {
	repo   ports.ProgramRepository
	cache  ports.ProgramCache
	audit  ports.AuditRecorder
	logger zerolog.Logger
	now    func() time.Time
}

func NewProgramService(repo ports.ProgramRepository, cache ports.ProgramCache, audit ports.AuditRecorder, logger zerolog.Logger) *ProgramService {
	return &ProgramService{repo: repo, cache: cache, audit: audit, logger: logger, now: time.Now}
}

// Create persists a new program. A taken name fails with
// ErrDuplicateProgramName before anything is written.
func (s *ProgramService) Create(ctx context.Context, input ports.ProgramInput) (*domain.Program, error) {
	name, err := validateProgramName(input.Name)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameAvailable(ctx, name, 0); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	program := &domain.Program{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Description != nil {
		program.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.repo.Create(ctx, program); err != nil {
		if !errors.Is(err, domain.ErrDuplicateProgramName) {
			s.logger.Error().Err(err).Msg("failed to create program")
		}
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info().Int64("program_id", program.ID).Str("name", program.Name).Msg("program created")
	s.audit.Record(domain.AuditEvent{
		Action:     domain.AuditProgramCreated,
		Entity:     domain.EntityProgram,
		EntityID:   strconv.FormatInt(program.ID, 10),
		Actor:      input.Actor,
		Details:    map[string]string{"name": program.Name},
		OccurredAt: now,
	})

	return program, nil
}

// Update overwrites only the supplied fields.
func (s *ProgramService) Update(ctx context.Context, id int64, input ports.ProgramUpdate) (*domain.Program, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := validateProgramName(*input.Name)
		if err != nil {
			return nil, err
		}
		if err := s.ensureNameAvailable(ctx, name, program.ID); err != nil {
			return nil, err
		}
		program.Name = name
	}
	if input.Description != nil {
		program.Description = strings.TrimSpace(*input.Description)
	}

	now := s.now().UTC()
	program.UpdatedAt = now

	if err := s.repo.Update(ctx, program); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info().Int64("program_id", program.ID).Msg("program updated")
	s.audit.Record(domain.AuditEvent{
		Action:     domain.AuditProgramUpdated,
		Entity:     domain.EntityProgram,
		EntityID:   strconv.FormatInt(program.ID, 10),
		Actor:      input.Actor,
		OccurredAt: now,
	})

	return program, nil
}

// List serves the program catalogue from cache when possible. Cache failures
// are logged and the store is consulted instead.
func (s *ProgramService) List(ctx context.Context) ([]*domain.Program, error) {
	programs, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("program cache read failed")
	} else if ok {
		return programs, nil
	}

	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		s.logger.Warn().Err(genErr).Msg("program cache generation read failed")
	}

	programs, err = s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		if err := s.cache.Set(ctx, gen, programs); err != nil {
			s.logger.Warn().Err(err).Msg("program cache write failed")
		}
	}
	return programs, nil
}

func (s *ProgramService) ensureNameAvailable(ctx context.Context, name string, selfID int64) error {
	other, err := s.repo.FindByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrProgramNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != selfID:
		return domain.ErrDuplicateProgramName
	}
	return nil
}

func (s *ProgramService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("program cache invalidation failed")
	}
}

func validateProgramName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name is required")
	}
	if utf8.RuneCountInString(name) > domain.MaxProgramNameLength {
		return "", invalid("name must be at most %d characters", domain.MaxProgramNameLength)
	}
	return name, nil
}
