package domain

import (
	"errors"
	"time"
)

var (
	ErrProgramNotFound      = errors.New("program not found")
	ErrDuplicateProgramName = errors.New("a program with this name already exists")
)

// MaxProgramNameLength bounds Program.Name.
const MaxProgramNameLength = 100

// Program is a named health initiative clients can be enrolled in.
type Program struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
