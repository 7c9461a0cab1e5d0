package ports

import "context"

// EnrollmentInput identifies the pair being enrolled or unenrolled.
type EnrollmentInput struct {
	ClientID  string
	ProgramID int64
	Actor     string
}

type EnrollmentService interface {
	Enroll(ctx context.Context, input EnrollmentInput) error
	Unenroll(ctx context.Context, input EnrollmentInput) error
}
