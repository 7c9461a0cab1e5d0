package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/clinicdesk/health-records/internal/core/domain"
	"github.com/clinicdesk/health-records/internal/core/ports"
)

var _ ports.ClientRepository = (*ClientRepository)(nil)

// ClientRepository stores clients and joins their program enrollments on read.
type ClientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `id, first_name, last_name, email, phone, date_of_birth,
	address, gender, emergency_contact, created_at, updated_at`

type clientRow struct {
	ID               string         `db:"id"`
	FirstName        string         `db:"first_name"`
	LastName         string         `db:"last_name"`
	Email            string         `db:"email"`
	Phone            sql.NullString `db:"phone"`
	DateOfBirth      sql.NullTime   `db:"date_of_birth"`
	Address          sql.NullString `db:"address"`
	Gender           sql.NullString `db:"gender"`
	EmergencyContact sql.NullString `db:"emergency_contact"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (r clientRow) toDomain() *domain.Client {
	c := &domain.Client{
		ID:               r.ID,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		Phone:            fromNullString(r.Phone),
		Address:          fromNullString(r.Address),
		Gender:           fromNullString(r.Gender),
		EmergencyContact: fromNullString(r.EmergencyContact),
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
		Programs:         []domain.ProgramSummary{},
	}
	if r.DateOfBirth.Valid {
		dob := r.DateOfBirth.Time.UTC()
		c.DateOfBirth = &dob
	}
	return c
}

type clientProgramRow struct {
	ClientID    string `db:"client_id"`
	ProgramID   int64  `db:"program_id"`
	ProgramName string `db:"program_name"`
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	const q = `INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q,
			c.ID, c.FirstName, c.LastName, c.Email, toNullString(c.Phone), toNullDate(c.DateOfBirth),
			toNullString(c.Address), toNullString(c.Gender), toNullString(c.EmergencyContact),
			c.CreatedAt, c.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err, constraintClientEmail) {
				return domain.ErrDuplicateEmail
			}
			return fmt.Errorf("insert client: %w", err)
		}
		return nil
	})
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	const q = `UPDATE clients SET
		first_name = $2, last_name = $3, email = $4, phone = $5, date_of_birth = $6,
		address = $7, gender = $8, emergency_contact = $9, updated_at = $10
		WHERE id = $1`

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, q,
			c.ID, c.FirstName, c.LastName, c.Email, toNullString(c.Phone), toNullDate(c.DateOfBirth),
			toNullString(c.Address), toNullString(c.Gender), toNullString(c.EmergencyContact),
			c.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err, constraintClientEmail) {
				return domain.ErrDuplicateEmail
			}
			return fmt.Errorf("update client: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update client: %w", err)
		}
		if n == 0 {
			return domain.ErrClientNotFound
		}
		return nil
	})
}

func (r *ClientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	return r.findOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
}

func (r *ClientRepository) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	return r.findOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE email = $1`, email)
}

func (r *ClientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	return r.findMany(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY created_at, id`)
}

func (r *ClientRepository) Search(ctx context.Context, query string) ([]*domain.Client, error) {
	const q = `SELECT ` + clientColumns + ` FROM clients
		WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1
		ORDER BY created_at, id`

	return r.findMany(ctx, q, "%"+escapeLike(query)+"%")
}

func (r *ClientRepository) findOne(ctx context.Context, q string, arg any) (*domain.Client, error) {
	var row clientRow
	if err := r.db.GetContext(ctx, &row, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, fmt.Errorf("find client: %w", err)
	}

	client := row.toDomain()
	if err := r.attachPrograms(ctx, []*domain.Client{client}); err != nil {
		return nil, err
	}
	return client, nil
}

func (r *ClientRepository) findMany(ctx context.Context, q string, args ...any) ([]*domain.Client, error) {
	var rows []clientRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	clients := make([]*domain.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, row.toDomain())
	}
	if err := r.attachPrograms(ctx, clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// attachPrograms loads the program summaries of every client in one query.
func (r *ClientRepository) attachPrograms(ctx context.Context, clients []*domain.Client) error {
	if len(clients) == 0 {
		return nil
	}

	ids := make([]string, len(clients))
	byID := make(map[string]*domain.Client, len(clients))
	for i, c := range clients {
		ids[i] = c.ID
		byID[c.ID] = c
	}

	const q = `SELECT cp.client_id, p.id AS program_id, p.name AS program_name
		FROM client_programs cp
		JOIN programs p ON p.id = cp.program_id
		WHERE cp.client_id = ANY($1::uuid[])
		ORDER BY p.id`

	var rows []clientProgramRow
	if err := r.db.SelectContext(ctx, &rows, q, pq.Array(ids)); err != nil {
		return fmt.Errorf("load client programs: %w", err)
	}

	for _, row := range rows {
		if c, ok := byID[row.ClientID]; ok {
			c.Programs = append(c.Programs, domain.ProgramSummary{ID: row.ProgramID, Name: row.ProgramName})
		}
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in s match literally under the default
// backslash escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
