package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/health-records/internal/api/handler"
	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/pkg/metrics"
)

// conflicts maps uniqueness sentinels to the reason label of ConflictsTotal.
var conflicts = []struct {
	err    error
	reason string
}{
	{domain.ErrDuplicateEmail, "duplicate_email"},
	{domain.ErrDuplicateProgramName, "duplicate_program_name"},
	{domain.ErrAlreadyEnrolled, "already_enrolled"},
	{domain.ErrUserExists, "user_exists"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<code>", "message": "<text>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Echo's own errors (bind failures, unknown routes, auth middleware).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, handler.ErrorResponse{Error: statusCode(he.Code), Message: fmt.Sprint(he.Message)}
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, handler.ErrorResponse{Error: "validation_error", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "invalid_credentials", Message: "invalid credentials"}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, handler.ErrorResponse{Error: "unauthenticated", Message: "authentication required"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, handler.ErrorResponse{Error: "forbidden", Message: "access forbidden"}
	case errors.Is(err, domain.ErrClientNotFound),
		errors.Is(err, domain.ErrProgramNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Error: "not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrNotEnrolled):
		return http.StatusBadRequest, handler.ErrorResponse{Error: "not_enrolled", Message: err.Error()}
	}

	for _, cf := range conflicts {
		if errors.Is(err, cf.err) {
			metrics.ConflictsTotal.WithLabelValues(cf.reason).Inc()
			return http.StatusUnprocessableEntity, handler.ErrorResponse{Error: "conflict", Message: cf.err.Error()}
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{Error: "internal_error", Message: "internal server error"}
}

// statusCode turns an HTTP status into the envelope's machine-readable code,
// e.g. 405 -> "method_not_allowed".
func statusCode(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusUnprocessableEntity:
		return "validation_error"
	case http.StatusInternalServerError:
		return "internal_error"
	}
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
