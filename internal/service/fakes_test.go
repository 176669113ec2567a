package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
	"github.com/spec-kit/complaint-sla-service/internal/repository"
)

// In-memory repository fakes. pgxpool cannot be stubbed at the driver level,
// so service tests exercise the interfaces directly.

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	seq     int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (f *fakeTicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	f.seq++
	t.ID = fmt.Sprintf("ticket-%d", f.seq)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.UpdatedAt = t.CreatedAt
	clone := *t
	f.tickets[t.ID] = &clone
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, t *domain.Ticket) error {
	if _, ok := f.tickets[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *t
	f.tickets[t.ID] = &clone
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *t
	return &clone, nil
}

func (f *fakeTicketRepo) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	for _, t := range f.tickets {
		if t.TicketNumber == number {
			clone := *t
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, t := range f.tickets {
		if filter.ReporterID != nil && t.ReporterID != *filter.ReporterID {
			continue
		}
		if filter.UnitID != nil && t.UnitID != *filter.UnitID {
			continue
		}
		if len(filter.Statuses) > 0 && !statusIn(t.Status, filter.Statuses) {
			continue
		}
		result = append(result, *t)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

func (f *fakeTicketRepo) CountCreatedOn(_ context.Context, day time.Time) (int, error) {
	count := 0
	for _, t := range f.tickets {
		if t.CreatedAt.Year() == day.Year() && t.CreatedAt.YearDay() == day.YearDay() {
			count++
		}
	}
	return count, nil
}

func statusIn(s domain.TicketStatus, set []domain.TicketStatus) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}

type fakeUnitRepo struct {
	units map[string]*domain.Unit
}

func newFakeUnitRepo(units ...*domain.Unit) *fakeUnitRepo {
	repo := &fakeUnitRepo{units: map[string]*domain.Unit{}}
	for _, u := range units {
		repo.units[u.ID] = u
	}
	return repo
}

func (f *fakeUnitRepo) Create(_ context.Context, u *domain.Unit) error {
	f.units[u.ID] = u
	return nil
}

func (f *fakeUnitRepo) Update(_ context.Context, u *domain.Unit) error {
	if _, ok := f.units[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.units[u.ID] = u
	return nil
}

func (f *fakeUnitRepo) GetByID(_ context.Context, id string) (*domain.Unit, error) {
	u, ok := f.units[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUnitRepo) ListActive(_ context.Context) ([]domain.Unit, error) {
	var result []domain.Unit
	for _, u := range f.units {
		if u.IsActive {
			result = append(result, *u)
		}
	}
	return result, nil
}

type fakeCategoryRepo struct {
	categories map[string]*domain.ServiceCategory
}

func newFakeCategoryRepo(categories ...*domain.ServiceCategory) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{categories: map[string]*domain.ServiceCategory{}}
	for _, c := range categories {
		repo.categories[c.ID] = c
	}
	return repo
}

func (f *fakeCategoryRepo) Create(_ context.Context, c *domain.ServiceCategory) error {
	f.categories[c.ID] = c
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.ServiceCategory, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeCategoryRepo) ListActive(_ context.Context) ([]domain.ServiceCategory, error) {
	var result []domain.ServiceCategory
	for _, c := range f.categories {
		if c.IsActive {
			result = append(result, *c)
		}
	}
	return result, nil
}

type fakePatientTypeRepo struct {
	types map[string]*domain.PatientType
}

func newFakePatientTypeRepo(types ...*domain.PatientType) *fakePatientTypeRepo {
	repo := &fakePatientTypeRepo{types: map[string]*domain.PatientType{}}
	for _, pt := range types {
		repo.types[pt.ID] = pt
	}
	return repo
}

func (f *fakePatientTypeRepo) Create(_ context.Context, pt *domain.PatientType) error {
	f.types[pt.ID] = pt
	return nil
}

func (f *fakePatientTypeRepo) GetByID(_ context.Context, id string) (*domain.PatientType, error) {
	pt, ok := f.types[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return pt, nil
}

func (f *fakePatientTypeRepo) ListActive(_ context.Context) ([]domain.PatientType, error) {
	var result []domain.PatientType
	for _, pt := range f.types {
		if pt.IsActive {
			result = append(result, *pt)
		}
	}
	return result, nil
}

type fakeSlaRuleRepo struct {
	rules []domain.SlaRule
}

func (f *fakeSlaRuleRepo) Create(_ context.Context, rule *domain.SlaRule) error {
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeSlaRuleRepo) Update(_ context.Context, rule *domain.SlaRule) error {
	for i := range f.rules {
		if f.rules[i].ID == rule.ID {
			f.rules[i] = *rule
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeSlaRuleRepo) GetByID(_ context.Context, id string) (*domain.SlaRule, error) {
	for i := range f.rules {
		if f.rules[i].ID == id {
			return &f.rules[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSlaRuleRepo) ListActive(_ context.Context) ([]domain.SlaRule, error) {
	var result []domain.SlaRule
	for _, r := range f.rules {
		if r.IsActive {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeSlaRuleRepo) List(_ context.Context) ([]domain.SlaRule, error) {
	return append([]domain.SlaRule{}, f.rules...), nil
}

type fakeEscalationRuleRepo struct {
	rules []domain.EscalationRule
}

func (f *fakeEscalationRuleRepo) Create(_ context.Context, rule *domain.EscalationRule) error {
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeEscalationRuleRepo) Update(_ context.Context, rule *domain.EscalationRule) error {
	for i := range f.rules {
		if f.rules[i].ID == rule.ID {
			f.rules[i] = *rule
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeEscalationRuleRepo) GetByID(_ context.Context, id string) (*domain.EscalationRule, error) {
	for i := range f.rules {
		if f.rules[i].ID == id {
			return &f.rules[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeEscalationRuleRepo) ListActive(_ context.Context) ([]domain.EscalationRule, error) {
	var result []domain.EscalationRule
	for _, r := range f.rules {
		if r.IsActive {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeEscalationRuleRepo) List(_ context.Context) ([]domain.EscalationRule, error) {
	return append([]domain.EscalationRule{}, f.rules...), nil
}

type fakeEscalationRepo struct {
	records map[string]*domain.Escalation
	tickets *fakeTicketRepo
	seq     int
}

func newFakeEscalationRepo(tickets *fakeTicketRepo) *fakeEscalationRepo {
	return &fakeEscalationRepo{records: map[string]*domain.Escalation{}, tickets: tickets}
}

func (f *fakeEscalationRepo) Create(_ context.Context, e *domain.Escalation) error {
	f.seq++
	e.ID = fmt.Sprintf("escalation-%d", f.seq)
	clone := *e
	f.records[e.ID] = &clone
	return nil
}

func (f *fakeEscalationRepo) Close(_ context.Context, id string, resolvedAt time.Time) error {
	e, ok := f.records[id]
	if !ok || e.ResolvedAt != nil {
		return pgx.ErrNoRows
	}
	e.Status = domain.EscalationStatusResolved
	e.ResolvedAt = &resolvedAt
	return nil
}

func (f *fakeEscalationRepo) GetByID(_ context.Context, id string) (*domain.Escalation, error) {
	e, ok := f.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *e
	return &clone, nil
}

func (f *fakeEscalationRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Escalation, error) {
	var result []domain.Escalation
	for _, e := range f.records {
		if e.TicketID == ticketID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (f *fakeEscalationRepo) ListEscalatedTickets(_ context.Context) ([]repository.EscalatedTicketRow, error) {
	latest := map[string]repository.EscalatedTicketRow{}
	for _, e := range f.records {
		ticket, ok := f.tickets.tickets[e.TicketID]
		if !ok {
			continue
		}
		row, seen := latest[e.TicketID]
		if !seen || e.EscalatedAt.After(row.EscalatedAt) {
			latest[e.TicketID] = repository.EscalatedTicketRow{
				TicketID:        ticket.ID,
				Priority:        ticket.Priority,
				Status:          ticket.Status,
				TicketCreatedAt: ticket.CreatedAt,
				EscalatedAt:     e.EscalatedAt,
			}
		}
	}
	var result []repository.EscalatedTicketRow
	for _, row := range latest {
		result = append(result, row)
	}
	return result, nil
}
