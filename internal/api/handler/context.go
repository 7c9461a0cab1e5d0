package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/health-records/internal/api/middleware"
)

// actor returns the username of the authenticated clinician. Its absence
// means the route was mounted without the Auth middleware.
func actor(c echo.Context) (string, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok || identity.Username == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return identity.Username, nil
}

// bindJSON decodes the body into req and runs struct validation.
func bindJSON(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
