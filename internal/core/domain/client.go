package domain

import (
	"errors"
	"time"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrDuplicateEmail = errors.New("a client with this email already exists")
)

// DateLayout is the calendar-date format used for dates of birth.
const DateLayout = "2006-01-02"

// Client is a patient record. Optional attributes are nil when absent.
type Client struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string
	Phone            *string
	DateOfBirth      *time.Time
	Address          *string
	Gender           *string
	EmergencyContact *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Programs         []ProgramSummary
}

// ProgramSummary is the slice of a Program shown alongside a client.
type ProgramSummary struct {
	ID   int64
	Name string
}

// IsEnrolledIn reports whether programID is among the client's programs.
func (c *Client) IsEnrolledIn(programID int64) bool {
	for _, p := range c.Programs {
		if p.ID == programID {
			return true
		}
	}
	return false
}
