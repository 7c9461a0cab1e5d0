package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
)

type EnrollmentService struct {
	clients     ports.ClientRepository
	programs    ports.ProgramRepository
	enrollments ports.EnrollmentRepository
	audit       ports.AuditRecorder
	log         zerolog.Logger
	now         func() time.Time
}

func NewEnrollmentService(
	clients ports.ClientRepository,
	programs ports.ProgramRepository,
	enrollments ports.EnrollmentRepository,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		clients:     clients,
		programs:    programs,
		enrollments: enrollments,
		audit:       audit,
		log:         log,
		now:         time.Now,
	}
}

// Enroll moves the pair from absent to present. Enrolling twice is rejected
// with ErrAlreadyEnrolled rather than ignored.
func (s *EnrollmentService) Enroll(ctx context.Context, in ports.EnrollmentInput) error {
	state, err := s.currentState(ctx, in)
	if err != nil {
		return err
	}
	if _, err := state.Enroll(); err != nil {
		return err
	}

	if err := s.enrollments.Enroll(ctx, in.ClientID, in.ProgramID); err != nil {
		return err
	}

	s.log.Info().Str("client_id", in.ClientID).Int64("program_id", in.ProgramID).Msg("client enrolled")
	s.record(domain.AuditClientEnrolled, in)
	return nil
}

// Unenroll moves the pair from present to absent.
func (s *EnrollmentService) Unenroll(ctx context.Context, in ports.EnrollmentInput) error {
	state, err := s.currentState(ctx, in)
	if err != nil {
		return err
	}
	if _, err := state.Unenroll(); err != nil {
		return err
	}

	if err := s.enrollments.Unenroll(ctx, in.ClientID, in.ProgramID); err != nil {
		return err
	}

	s.log.Info().Str("client_id", in.ClientID).Int64("program_id", in.ProgramID).Msg("client unenrolled")
	s.record(domain.AuditClientUnenrolled, in)
	return nil
}

// currentState resolves both sides of the pair and reports whether it exists.
// The client is loaded with its program summaries, which answer the latter.
func (s *EnrollmentService) currentState(ctx context.Context, in ports.EnrollmentInput) (domain.EnrollmentState, error) {
	if _, err := uuid.Parse(in.ClientID); err != nil {
		return "", domain.ErrClientNotFound
	}
	client, err := s.clients.FindByID(ctx, in.ClientID)
	if err != nil {
		return "", err
	}
	if _, err := s.programs.FindByID(ctx, in.ProgramID); err != nil {
		return "", err
	}

	if client.IsEnrolledIn(in.ProgramID) {
		return domain.EnrollmentPresent, nil
	}
	return domain.EnrollmentAbsent, nil
}

func (s *EnrollmentService) record(action domain.AuditAction, in ports.EnrollmentInput) {
	s.audit.Record(domain.AuditEvent{
		Action:     action,
		Entity:     domain.EntityClient,
		EntityID:   in.ClientID,
		Actor:      in.Actor,
		Details:    map[string]string{"program_id": strconv.FormatInt(in.ProgramID, 10)},
		OccurredAt: s.now().UTC(),
	})
}
