package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/health-records/internal/api/middleware"
	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Service stubs
// ---------------------------------------------------------------------------

type stubAuthService struct {
	loginFn func(ctx context.Context, username, password string) (*ports.LoginResult, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Verify(string) (*domain.Identity, error) {
	return nil, domain.ErrUnauthenticated
}

type stubClientService struct {
	registerFn func(ctx context.Context, in ports.ClientInput) (*domain.Client, error)
	getFn      func(ctx context.Context, id string) (*domain.Client, error)
	updateFn   func(ctx context.Context, id string, in ports.ClientInput) (*domain.Client, error)
	listFn     func(ctx context.Context) ([]*domain.Client, error)
	searchFn   func(ctx context.Context, q string) ([]*domain.Client, error)
}

func (s *stubClientService) Register(ctx context.Context, in ports.ClientInput) (*domain.Client, error) {
	return s.registerFn(ctx, in)
}

func (s *stubClientService) Get(ctx context.Context, id string) (*domain.Client, error) {
	return s.getFn(ctx, id)
}

func (s *stubClientService) Update(ctx context.Context, id string, in ports.ClientInput) (*domain.Client, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubClientService) List(ctx context.Context) ([]*domain.Client, error) {
	return s.listFn(ctx)
}

func (s *stubClientService) Search(ctx context.Context, q string) ([]*domain.Client, error) {
	return s.searchFn(ctx, q)
}

type stubProgramService struct {
	createFn func(ctx context.Context, in ports.ProgramInput) (*domain.Program, error)
	updateFn func(ctx context.Context, id int64, in ports.ProgramUpdate) (*domain.Program, error)
	listFn   func(ctx context.Context) ([]*domain.Program, error)
}

func (s *stubProgramService) Create(ctx context.Context, in ports.ProgramInput) (*domain.Program, error) {
	return s.createFn(ctx, in)
}

func (s *stubProgramService) Update(ctx context.Context, id int64, in ports.ProgramUpdate) (*domain.Program, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubProgramService) List(ctx context.Context) ([]*domain.Program, error) {
	return s.listFn(ctx)
}

type stubEnrollmentService struct {
	enrollFn   func(ctx context.Context, in ports.EnrollmentInput) error
	unenrollFn func(ctx context.Context, in ports.EnrollmentInput) error
}

func (s *stubEnrollmentService) Enroll(ctx context.Context, in ports.EnrollmentInput) error {
	return s.enrollFn(ctx, in)
}

func (s *stubEnrollmentService) Unenroll(ctx context.Context, in ports.EnrollmentInput) error {
	return s.unenrollFn(ctx, in)
}

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

var doctor = &domain.Identity{UserID: 1, Username: "doctor", Role: domain.RoleClinician}

// newContext builds an echo context for method/target with an optional JSON
// body. When identity is non-nil it is attached as if Auth had run.
func newContext(method, target, body string, identity *domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if identity != nil {
		middleware.WithIdentity(c, identity)
	}
	return c, rec
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError with %d, got %v", code, err)
	}
	if he.Code != code {
		t.Fatalf("expected status %d, got %d (%v)", code, he.Code, he.Message)
	}
}

func strPtr(s string) *string { return &s }
