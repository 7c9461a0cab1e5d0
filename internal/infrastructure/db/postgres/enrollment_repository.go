package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
)

var _ ports.EnrollmentRepository = (*EnrollmentRepository)(nil)

// EnrollmentRepository manages rows of the client_programs association table.
type EnrollmentRepository struct {
	db *sqlx.DB
}

func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Enroll(ctx context.Context, clientID string, programID int64) error {
	const q = `INSERT INTO client_programs (client_id, program_id) VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, q, clientID, programID); err != nil {
		if isUniqueViolation(err, constraintEnrollmentPK) {
			return domain.ErrAlreadyEnrolled
		}
		// Either side was removed between lookup and insert.
		if constraint, ok := isForeignKeyViolation(err); ok {
			if constraint == constraintEnrollClientFK {
				return domain.ErrClientNotFound
			}
			return domain.ErrProgramNotFound
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) Unenroll(ctx context.Context, clientID string, programID int64) error {
	const q = `DELETE FROM client_programs WHERE client_id = $1 AND program_id = $2`

	res, err := r.db.ExecContext(ctx, q, clientID, programID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if n == 0 {
		return domain.ErrNotEnrolled
	}
	return nil
}
