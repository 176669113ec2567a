package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

// SlaRuleRepository manages SLA rule persistence.
type SlaRuleRepository interface {
	Create(ctx context.Context, rule *domain.SlaRule) error
	Update(ctx context.Context, rule *domain.SlaRule) error
	GetByID(ctx context.Context, id string) (*domain.SlaRule, error)
	ListActive(ctx context.Context) ([]domain.SlaRule, error)
	List(ctx context.Context) ([]domain.SlaRule, error)
}

type slaRuleRepository struct {
	pool *pgxpool.Pool
}

// NewSlaRuleRepository builds the repository.
func NewSlaRuleRepository(pool *pgxpool.Pool) SlaRuleRepository {
	return &slaRuleRepository{pool: pool}
}

const slaRuleColumns = `id, name, unit_type_id, service_category_id, patient_type_id,
               response_time_hours, resolution_time_hours, escalation_time_hours,
               business_hours_only, is_active, created_at, updated_at`

func (r *slaRuleRepository) Create(ctx context.Context, rule *domain.SlaRule) error {
	const query = `
        INSERT INTO sla_rules (name, unit_type_id, service_category_id, patient_type_id,
            response_time_hours, resolution_time_hours, escalation_time_hours,
            business_hours_only, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rule.Name,
		rule.UnitTypeID,
		rule.ServiceCategoryID,
		rule.PatientTypeID,
		rule.ResponseTimeHours,
		rule.ResolutionTimeHours,
		rule.EscalationTimeHours,
		rule.BusinessHoursOnly,
		rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *slaRuleRepository) Update(ctx context.Context, rule *domain.SlaRule) error {
	const query = `
        UPDATE sla_rules SET name=$1, unit_type_id=$2, service_category_id=$3, patient_type_id=$4,
            response_time_hours=$5, resolution_time_hours=$6, escalation_time_hours=$7,
            business_hours_only=$8, is_active=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		rule.Name,
		rule.UnitTypeID,
		rule.ServiceCategoryID,
		rule.PatientTypeID,
		rule.ResponseTimeHours,
		rule.ResolutionTimeHours,
		rule.EscalationTimeHours,
		rule.BusinessHoursOnly,
		rule.IsActive,
		rule.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slaRuleRepository) GetByID(ctx context.Context, id string) (*domain.SlaRule, error) {
	query := `SELECT ` + slaRuleColumns + ` FROM sla_rules WHERE id=$1`
	var rule domain.SlaRule
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&rule.ID,
		&rule.Name,
		&rule.UnitTypeID,
		&rule.ServiceCategoryID,
		&rule.PatientTypeID,
		&rule.ResponseTimeHours,
		&rule.ResolutionTimeHours,
		&rule.EscalationTimeHours,
		&rule.BusinessHoursOnly,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *slaRuleRepository) ListActive(ctx context.Context) ([]domain.SlaRule, error) {
	query := `SELECT ` + slaRuleColumns + ` FROM sla_rules WHERE is_active = TRUE ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *slaRuleRepository) List(ctx context.Context) ([]domain.SlaRule, error) {
	query := `SELECT ` + slaRuleColumns + ` FROM sla_rules ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *slaRuleRepository) list(ctx context.Context, query string) ([]domain.SlaRule, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SlaRule
	for rows.Next() {
		var rule domain.SlaRule
		if err := rows.Scan(
			&rule.ID,
			&rule.Name,
			&rule.UnitTypeID,
			&rule.ServiceCategoryID,
			&rule.PatientTypeID,
			&rule.ResponseTimeHours,
			&rule.ResolutionTimeHours,
			&rule.EscalationTimeHours,
			&rule.BusinessHoursOnly,
			&rule.IsActive,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}
