package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/clinicdesk/health-records/internal/core/domain"
)

// emailPattern accepts the basic local@domain.tld shape.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s.]+$`)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

// normalizeEmail trims and lower-cases an address so uniqueness is case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email is required")
	}
	if !emailPattern.MatchString(email) {
		return invalid("email must be a valid email address")
	}
	return nil
}

// optionalString trims s and maps blank values to nil.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// parseDateOfBirth parses an ISO calendar date. Blank input means "not supplied".
func parseDateOfBirth(s *string, now time.Time) (*time.Time, error) {
	v := optionalString(s)
	if v == nil {
		return nil, nil
	}
	dob, err := time.Parse(domain.DateLayout, *v)
	if err != nil {
		return nil, invalid("date_of_birth must be a date in YYYY-MM-DD format")
	}
	if dob.After(now) {
		return nil, invalid("date_of_birth cannot be in the future")
	}
	return &dob, nil
}
