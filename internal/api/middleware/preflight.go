package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

var (
	preflightMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}, ",")
	preflightHeaders = strings.Join([]string{
		echo.HeaderContentType, echo.HeaderAuthorization,
	}, ",")
)

const preflightMaxAge = 600

// Preflight answers every OPTIONS request with 200 before routing and
// authentication run. CORS headers are only added for allowed origins.
// Register it with Echo.Pre.
func Preflight(allowedOrigins []string) echo.MiddlewareFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodOptions {
				return next(c)
			}

			h := c.Response().Header()
			h.Add(echo.HeaderVary, echo.HeaderOrigin)

			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if _, ok := allowed[origin]; origin != "" && (ok || allowAll) {
				h.Set(echo.HeaderAccessControlAllowOrigin, origin)
				h.Set(echo.HeaderAccessControlAllowMethods, preflightMethods)
				h.Set(echo.HeaderAccessControlAllowHeaders, preflightHeaders)
				h.Set(echo.HeaderAccessControlMaxAge, strconv.Itoa(preflightMaxAge))
			}

			return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
		}
	}
}
