package ports

import "context"

// EnrollmentRepository manages the client/program association.
type EnrollmentRepository interface {
	// Enroll inserts the pair. A duplicate pair yields domain.ErrAlreadyEnrolled.
	Enroll(ctx context.Context, clientID string, programID int64) error
	// Unenroll removes the pair. A missing pair yields domain.ErrNotEnrolled.
	Unenroll(ctx context.Context, clientID string, programID int64) error
}
