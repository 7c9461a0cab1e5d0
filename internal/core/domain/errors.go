package domain

import "errors"

// ErrValidation marks malformed or missing input. Callers wrap it with the
// offending field: fmt.Errorf("%w: email is required", ErrValidation).
var ErrValidation = errors.New("validation failed")
