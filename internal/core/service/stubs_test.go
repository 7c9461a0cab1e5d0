package service

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/health-records/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory store shared by the client, program and enrollment stubs.
// It enforces the same uniqueness rules as the Postgres schema.
// ---------------------------------------------------------------------------

type pair struct {
	clientID  string
	programID int64
}

type memStore struct {
	clients     map[string]*domain.Client
	programs    map[int64]*domain.Program
	enrollments map[pair]struct{}
	nextProgram int64

	// skipPreCheck makes FindByEmail/FindByName miss, so only the
	// uniqueness check inside Create/Update can catch a conflict.
	skipPreCheck bool
	createErr    error
}

func newMemStore() *memStore {
	return &memStore{
		clients:     make(map[string]*domain.Client),
		programs:    make(map[int64]*domain.Program),
		enrollments: make(map[pair]struct{}),
	}
}

func cloneClient(c *domain.Client) *domain.Client {
	clone := *c
	clone.Programs = append([]domain.ProgramSummary{}, c.Programs...)
	return &clone
}

func (m *memStore) withPrograms(c *domain.Client) *domain.Client {
	out := cloneClient(c)
	out.Programs = []domain.ProgramSummary{}
	for p := range m.enrollments {
		if p.clientID == c.ID {
			out.Programs = append(out.Programs, domain.ProgramSummary{ID: p.programID, Name: m.programs[p.programID].Name})
		}
	}
	sort.Slice(out.Programs, func(i, j int) bool { return out.Programs[i].ID < out.Programs[j].ID })
	return out
}

func (m *memStore) emailTaken(email, selfID string) bool {
	for _, c := range m.clients {
		if c.Email == email && c.ID != selfID {
			return true
		}
	}
	return false
}

// --- clients ---

type memClientRepo struct{ *memStore }

func (r memClientRepo) Create(_ context.Context, c *domain.Client) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.emailTaken(c.Email, "") {
		return domain.ErrDuplicateEmail
	}
	r.clients[c.ID] = cloneClient(c)
	return nil
}

func (r memClientRepo) Update(_ context.Context, c *domain.Client) error {
	if _, ok := r.clients[c.ID]; !ok {
		return domain.ErrClientNotFound
	}
	if r.emailTaken(c.Email, c.ID) {
		return domain.ErrDuplicateEmail
	}
	r.clients[c.ID] = cloneClient(c)
	return nil
}

func (r memClientRepo) FindByID(_ context.Context, id string) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return r.withPrograms(c), nil
}

func (r memClientRepo) FindByEmail(_ context.Context, email string) (*domain.Client, error) {
	if r.skipPreCheck {
		return nil, domain.ErrClientNotFound
	}
	for _, c := range r.clients {
		if c.Email == email {
			return r.withPrograms(c), nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r memClientRepo) List(_ context.Context) ([]*domain.Client, error) {
	out := make([]*domain.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, r.withPrograms(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r memClientRepo) Search(ctx context.Context, query string) ([]*domain.Client, error) {
	all, _ := r.List(ctx)
	q := strings.ToLower(query)
	var out []*domain.Client
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.FirstName), q) ||
			strings.Contains(strings.ToLower(c.LastName), q) ||
			strings.Contains(strings.ToLower(c.Email), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- programs ---

type memProgramRepo struct{ *memStore }

func (r memProgramRepo) nameTaken(name string, selfID int64) bool {
	for _, p := range r.programs {
		if strings.EqualFold(p.Name, name) && p.ID != selfID {
			return true
		}
	}
	return false
}

func (r memProgramRepo) Create(_ context.Context, p *domain.Program) error {
	if r.nameTaken(p.Name, 0) {
		return domain.ErrDuplicateProgramName
	}
	r.nextProgram++
	p.ID = r.nextProgram
	clone := *p
	r.programs[p.ID] = &clone
	return nil
}

func (r memProgramRepo) Update(_ context.Context, p *domain.Program) error {
	if _, ok := r.programs[p.ID]; !ok {
		return domain.ErrProgramNotFound
	}
	if r.nameTaken(p.Name, p.ID) {
		return domain.ErrDuplicateProgramName
	}
	clone := *p
	r.programs[p.ID] = &clone
	return nil
}

func (r memProgramRepo) FindByID(_ context.Context, id int64) (*domain.Program, error) {
	p, ok := r.programs[id]
	if !ok {
		return nil, domain.ErrProgramNotFound
	}
	clone := *p
	return &clone, nil
}

func (r memProgramRepo) FindByName(_ context.Context, name string) (*domain.Program, error) {
	if r.skipPreCheck {
		return nil, domain.ErrProgramNotFound
	}
	for _, p := range r.programs {
		if strings.EqualFold(p.Name, name) {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrProgramNotFound
}

func (r memProgramRepo) List(_ context.Context) ([]*domain.Program, error) {
	out := make([]*domain.Program, 0, len(r.programs))
	for _, p := range r.programs {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- enrollments ---

type memEnrollmentRepo struct{ *memStore }

func (r memEnrollmentRepo) Enroll(_ context.Context, clientID string, programID int64) error {
	key := pair{clientID, programID}
	if _, ok := r.enrollments[key]; ok {
		return domain.ErrAlreadyEnrolled
	}
	r.enrollments[key] = struct{}{}
	return nil
}

func (r memEnrollmentRepo) Unenroll(_ context.Context, clientID string, programID int64) error {
	key := pair{clientID, programID}
	if _, ok := r.enrollments[key]; !ok {
		return domain.ErrNotEnrolled
	}
	delete(r.enrollments, key)
	return nil
}

// ---------------------------------------------------------------------------
// Cache and audit stubs
// ---------------------------------------------------------------------------

type stubCache struct {
	programs    []*domain.Program
	warm        bool
	generation  uint64
	getErr      error
	setErr      error
	sets        int
	staleSets   int
	invalidated int
}

func (c *stubCache) Get(_ context.Context) ([]*domain.Program, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.programs, c.warm, nil
}

func (c *stubCache) Generation(_ context.Context) (uint64, error) {
	if c.getErr != nil {
		return 0, c.getErr
	}
	return c.generation, nil
}

func (c *stubCache) Set(_ context.Context, gen uint64, programs []*domain.Program) error {
	if c.setErr != nil {
		return c.setErr
	}
	if gen != c.generation {
		c.staleSets++
		return nil
	}
	c.sets++
	c.programs, c.warm = programs, true
	return nil
}

func (c *stubCache) Invalidate(_ context.Context) error {
	c.invalidated++
	c.generation++
	c.programs, c.warm = nil, false
	return nil
}

type recordingAudit struct {
	events []domain.AuditEvent
}

func (a *recordingAudit) Record(e domain.AuditEvent) {
	a.events = append(a.events, e)
}

func (a *recordingAudit) actions() []domain.AuditAction {
	out := make([]domain.AuditAction, len(a.events))
	for i, e := range a.events {
		out[i] = e.Action
	}
	return out
}

var discardLogger = zerolog.Nop()
