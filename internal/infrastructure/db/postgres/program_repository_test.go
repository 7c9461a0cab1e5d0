package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/health-records/internal/core/domain"
)

var programCols = []string{"id", "name", "description", "created_at", "updated_at"}

func TestProgramRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProgramRepository(db)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO programs`).
		WithArgs("Malaria", "prevention", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	p := &domain.Program{Name: "Malaria", Description: "prevention", CreatedAt: now, UpdatedAt: now}
	err := repo.Create(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepository_Create_DuplicateName(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProgramRepository(db)

	mock.ExpectQuery(`INSERT INTO programs`).
		WillReturnError(&pq.Error{Code: codeUniqueViolation, Constraint: constraintProgramName})

	err := repo.Create(context.Background(), &domain.Program{Name: "TB"})

	assert.ErrorIs(t, err, domain.ErrDuplicateProgramName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepository_Update(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := &domain.Program{ID: 3, Name: "TB", Description: "care", UpdatedAt: now}

	t.Run("success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec(`UPDATE programs SET`).
			WithArgs(int64(3), "TB", "care", now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewProgramRepository(db).Update(context.Background(), p))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec(`UPDATE programs SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewProgramRepository(db).Update(context.Background(), p)
		assert.ErrorIs(t, err, domain.ErrProgramNotFound)
	})

	t.Run("duplicate name", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectExec(`UPDATE programs SET`).
			WillReturnError(&pq.Error{Code: codeUniqueViolation, Constraint: constraintProgramName})

		err := NewProgramRepository(db).Update(context.Background(), p)
		assert.ErrorIs(t, err, domain.ErrDuplicateProgramName)
	})
}

func TestProgramRepository_FindByName_CaseInsensitive(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProgramRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`WHERE lower\(name\) = lower\(\$1\)`).
		WithArgs("malaria").
		WillReturnRows(sqlmock.NewRows(programCols).AddRow(int64(1), "Malaria", "", now, now))

	p, err := repo.FindByName(context.Background(), "malaria")

	require.NoError(t, err)
	assert.Equal(t, "Malaria", p.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepository_FindByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProgramRepository(db)

	mock.ExpectQuery(`FROM programs WHERE id`).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9)

	assert.ErrorIs(t, err, domain.ErrProgramNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepository_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProgramRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM programs ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(programCols).
			AddRow(int64(1), "Malaria", "a", now, now).
			AddRow(int64(2), "TB", "b", now, now))

	programs, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, programs, 2)
	assert.Equal(t, "TB", programs[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepository_List_Error(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`FROM programs`).WillReturnError(errors.New("connection reset"))

	_, err := NewProgramRepository(db).List(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list programs")
}
