package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
)

const bobID = "0b6f4c1e-3a59-4d57-9a3e-2f1c8f6d9a10"

func bob() *domain.Client {
	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &domain.Client{
		ID:          bobID,
		FirstName:   "Bob",
		LastName:    "Brown",
		Email:       "bob.brown@example.com",
		DateOfBirth: &dob,
		CreatedAt:   now,
		UpdatedAt:   now,
		Programs:    []domain.ProgramSummary{{ID: 1, Name: "Malaria"}},
	}
}

func TestClientHandler_Register_Success(t *testing.T) {
	stub := &stubClientService{
		registerFn: func(ctx context.Context, in ports.ClientInput) (*domain.Client, error) {
			if in.FirstName != "Bob" || in.Email != "bob.brown@example.com" || in.Actor != "doctor" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Phone == nil || *in.Phone != "0712345678" {
				t.Fatalf("phone not forwarded: %v", in.Phone)
			}
			if in.Address != nil {
				t.Fatalf("absent address must stay nil")
			}
			return bob(), nil
		},
	}
	handler := NewClientHandler(stub)

	body := `{"first_name":" Bob ","last_name":"Brown","email":" bob.brown@example.com ","phone":"0712345678"}`
	c, rec := newContext(http.MethodPost, "/api/clients", body, doctor)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != bobID || resp["message"] != "Client registered" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestClientHandler_Register_ValidationFailures(t *testing.T) {
	stub := &stubClientService{
		registerFn: func(ctx context.Context, in ports.ClientInput) (*domain.Client, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	handler := NewClientHandler(stub)

	cases := map[string]string{
		"missing first name": `{"last_name":"Brown","email":"bob@example.com"}`,
		"bad email":          `{"first_name":"Bob","last_name":"Brown","email":"not-an-email"}`,
		"bad date":           `{"first_name":"Bob","last_name":"Brown","email":"bob@example.com","date_of_birth":"17/05/1990"}`,
		"empty body":         `{}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/api/clients", body, doctor)
			if err := handler.Register(c); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestClientHandler_Register_BlankDateIsAllowed(t *testing.T) {
	called := false
	stub := &stubClientService{
		registerFn: func(ctx context.Context, in ports.ClientInput) (*domain.Client, error) {
			called = true
			if in.DateOfBirth != nil {
				t.Fatalf("blank date must be forwarded as nil, got %q", *in.DateOfBirth)
			}
			return bob(), nil
		},
	}

	body := `{"first_name":"Bob","last_name":"Brown","email":"bob@example.com","date_of_birth":"  "}`
	c, _ := newContext(http.MethodPost, "/api/clients", body, doctor)
	if err := NewClientHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatal("service not called")
	}
}

func TestClientHandler_Register_MalformedJSON(t *testing.T) {
	handler := NewClientHandler(&stubClientService{})

	c, _ := newContext(http.MethodPost, "/api/clients", `{"first_name":`, doctor)
	requireHTTPError(t, handler.Register(c), http.StatusBadRequest)
}

func TestClientHandler_Register_WithoutIdentity(t *testing.T) {
	handler := NewClientHandler(&stubClientService{})

	c, _ := newContext(http.MethodPost, "/api/clients", `{}`, nil)
	requireHTTPError(t, handler.Register(c), http.StatusUnauthorized)
}

func TestClientHandler_Register_Conflict(t *testing.T) {
	stub := &stubClientService{
		registerFn: func(ctx context.Context, in ports.ClientInput) (*domain.Client, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}

	body := `{"first_name":"Bob","last_name":"Brown","email":"bob@example.com"}`
	c, _ := newContext(http.MethodPost, "/api/clients", body, doctor)
	if err := NewClientHandler(stub).Register(c); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestClientHandler_Get(t *testing.T) {
	stub := &stubClientService{
		getFn: func(ctx context.Context, id string) (*domain.Client, error) {
			if id != bobID {
				return nil, domain.ErrClientNotFound
			}
			return bob(), nil
		},
	}
	handler := NewClientHandler(stub)

	c, rec := newContext(http.MethodGet, "/api/clients/"+bobID, "", doctor)
	c.SetParamNames("id")
	c.SetParamValues(bobID)
	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp clientResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.DateOfBirth == nil || *resp.DateOfBirth != "1990-05-17" {
		t.Fatalf("unexpected date_of_birth: %v", resp.DateOfBirth)
	}
	if len(resp.Programs) != 1 || resp.Programs[0].Name != "Malaria" {
		t.Fatalf("unexpected programs: %+v", resp.Programs)
	}

	var raw map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &raw)
	if v, ok := raw["phone"]; !ok || v != nil {
		t.Fatalf("absent phone must render as null, got %v (present=%v)", v, ok)
	}

	c, _ = newContext(http.MethodGet, "/api/clients/missing", "", doctor)
	c.SetParamNames("id")
	c.SetParamValues("missing")
	if err := handler.Get(c); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClientHandler_Update(t *testing.T) {
	stub := &stubClientService{
		updateFn: func(ctx context.Context, id string, in ports.ClientInput) (*domain.Client, error) {
			if id != bobID || in.LastName != "Browne" || in.Actor != "doctor" {
				t.Fatalf("unexpected args: %s %+v", id, in)
			}
			return bob(), nil
		},
	}

	body := `{"first_name":"Bob","last_name":"Browne","email":"bob@example.com"}`
	c, rec := newContext(http.MethodPut, "/api/clients/"+bobID, body, doctor)
	c.SetParamNames("id")
	c.SetParamValues(bobID)
	if err := NewClientHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestClientHandler_ListAndSearch(t *testing.T) {
	var gotQuery string
	stub := &stubClientService{
		listFn: func(ctx context.Context) ([]*domain.Client, error) {
			return []*domain.Client{}, nil
		},
		searchFn: func(ctx context.Context, q string) ([]*domain.Client, error) {
			gotQuery = q
			return []*domain.Client{bob()}, nil
		},
	}
	handler := NewClientHandler(stub)

	c, rec := newContext(http.MethodGet, "/api/clients", "", doctor)
	if err := handler.List(c); err != nil {
		t.Fatalf("list error: %v", err)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("empty list must render as [], got %q", body)
	}

	c, rec = newContext(http.MethodGet, "/api/clients/search?q=Bob", "", doctor)
	if err := handler.Search(c); err != nil {
		t.Fatalf("search error: %v", err)
	}
	if gotQuery != "Bob" {
		t.Fatalf("query not forwarded: %q", gotQuery)
	}
	var resp []clientResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || len(resp) != 1 {
		t.Fatalf("unexpected search response: %s (%v)", rec.Body.String(), err)
	}
}
