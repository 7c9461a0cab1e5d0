package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
)

var _ ports.ProgramRepository = (*ProgramRepository)(nil)

type ProgramRepository struct {
	db *sqlx.DB
}

func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

const programColumns = `id, name, description, created_at, updated_at`

type programRow struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r programRow) toDomain() *domain.Program {
	return &domain.Program{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func (r *ProgramRepository) Create(ctx context.Context, p *domain.Program) error {
	const q = `INSERT INTO programs (name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, q, p.Name, p.Description, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err, constraintProgramName) {
			return domain.ErrDuplicateProgramName
		}
		return fmt.Errorf("insert program: %w", err)
	}
	return nil
}

func (r *ProgramRepository) Update(ctx context.Context, p *domain.Program) error {
	const q = `UPDATE programs SET name = $2, description = $3, updated_at = $4 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, p.ID, p.Name, p.Description, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, constraintProgramName) {
			return domain.ErrDuplicateProgramName
		}
		return fmt.Errorf("update program: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	if n == 0 {
		return domain.ErrProgramNotFound
	}
	return nil
}

func (r *ProgramRepository) FindByID(ctx context.Context, id int64) (*domain.Program, error) {
	return r.findOne(ctx, `SELECT `+programColumns+` FROM programs WHERE id = $1`, id)
}

func (r *ProgramRepository) FindByName(ctx context.Context, name string) (*domain.Program, error) {
	return r.findOne(ctx, `SELECT `+programColumns+` FROM programs WHERE lower(name) = lower($1)`, name)
}

func (r *ProgramRepository) List(ctx context.Context) ([]*domain.Program, error) {
	var rows []programRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+programColumns+` FROM programs ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}

	programs := make([]*domain.Program, 0, len(rows))
	for _, row := range rows {
		programs = append(programs, row.toDomain())
	}
	return programs, nil
}

func (r *ProgramRepository) findOne(ctx context.Context, q string, arg any) (*domain.Program, error) {
	var row programRow
	if err := r.db.GetContext(ctx, &row, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProgramNotFound
		}
		return nil, fmt.Errorf("find program: %w", err)
	}
	return row.toDomain(), nil
}
