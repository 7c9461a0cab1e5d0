package handler

import (
	"encoding/json"
	"strings"
	"time"
)

// --- Auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// --- Clients ---

type clientRequest struct {
	FirstName        string  `json:"first_name" validate:"required"`
	LastName         string  `json:"last_name" validate:"required"`
	Email            string  `json:"email" validate:"required,email"`
	Phone            *string `json:"phone"`
	DateOfBirth      *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Address          *string `json:"address"`
	Gender           *string `json:"gender"`
	EmergencyContact *string `json:"emergency_contact"`
}

// normalize trims the required fields so surrounding whitespace does not
// fail validation.
func (r *clientRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	if r.DateOfBirth != nil {
		dob := strings.TrimSpace(*r.DateOfBirth)
		r.DateOfBirth = &dob
		if dob == "" {
			// Forms post "" for an untouched date field.
			r.DateOfBirth = nil
		}
	}
}

type programSummaryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type clientResponse struct {
	ID               string                   `json:"id"`
	FirstName        string                   `json:"first_name"`
	LastName         string                   `json:"last_name"`
	Email            string                   `json:"email"`
	Phone            *string                  `json:"phone"`
	DateOfBirth      *string                  `json:"date_of_birth"`
	Address          *string                  `json:"address"`
	Gender           *string                  `json:"gender"`
	EmergencyContact *string                  `json:"emergency_contact"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
	Programs         []programSummaryResponse `json:"programs"`
}

// --- Programs ---

type createProgramRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}

type updateProgramRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
}

type programResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Enrollment ---

type enrollRequest struct {
	ProgramID idValue `json:"program_id" swaggertype:"integer"`
}

// idValue holds an id posted either as a JSON number or as a string, as
// HTML select elements produce. It is parsed like a path id.
type idValue string

func (v *idValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = idValue(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = idValue(n.String())
	return nil
}

// --- Shared ---

// ErrorResponse is the envelope every failed request is rendered with.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type createdResponse struct {
	ID      any    `json:"id"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}
