package domain

import "errors"

var (
	ErrAlreadyEnrolled = errors.New("client is already enrolled in this program")
	ErrNotEnrolled     = errors.New("client is not enrolled in this program")
)

// EnrollmentState is the state of a (client, program) pair.
type EnrollmentState string

const (
	EnrollmentAbsent  EnrollmentState = "absent"
	EnrollmentPresent EnrollmentState = "present"
)

// Enrollment associates a client with a program.
type Enrollment struct {
	ClientID  string
	ProgramID int64
}

// Enroll returns the state after enrolling, or ErrAlreadyEnrolled.
func (s EnrollmentState) Enroll() (EnrollmentState, error) {
	if s == EnrollmentPresent {
		return s, ErrAlreadyEnrolled
	}
	return EnrollmentPresent, nil
}

// Unenroll returns the state after unenrolling, or ErrNotEnrolled.
func (s EnrollmentState) Unenroll() (EnrollmentState, error) {
	if s != EnrollmentPresent {
		return s, ErrNotEnrolled
	}
	return EnrollmentAbsent, nil
}
