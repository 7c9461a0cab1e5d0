package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Constraint names declared in migrations/001_init.sql.
const (
	constraintUsername       = "users_username_key"
	constraintClientEmail    = "clients_email_key"
	constraintProgramName    = "programs_name_lower_key"
	constraintEnrollmentPK   = "client_programs_pkey"
	constraintEnrollClientFK = "client_programs_client_id_fkey"
)

func pqError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

// isUniqueViolation reports whether err is a unique violation on constraint.
// An empty constraint matches any unique violation.
func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := pqError(err)
	if !ok || pqErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func isForeignKeyViolation(err error) (constraint string, ok bool) {
	pqErr, found := pqError(err)
	if !found || pqErr.Code != codeForeignKeyViolation {
		return "", false
	}
	return pqErr.Constraint, true
}
