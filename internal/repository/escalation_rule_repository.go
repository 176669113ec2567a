package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

// EscalationRuleRepository manages escalation rule persistence. Conditions
// and actions are stored as JSONB columns.
type EscalationRuleRepository interface {
	Create(ctx context.Context, rule *domain.EscalationRule) error
	Update(ctx context.Context, rule *domain.EscalationRule) error
	GetByID(ctx context.Context, id string) (*domain.EscalationRule, error)
	ListActive(ctx context.Context) ([]domain.EscalationRule, error)
	List(ctx context.Context) ([]domain.EscalationRule, error)
}

type escalationRuleRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRuleRepository builds the repository.
func NewEscalationRuleRepository(pool *pgxpool.Pool) EscalationRuleRepository {
	return &escalationRuleRepository{pool: pool}
}

func (r *escalationRuleRepository) Create(ctx context.Context, rule *domain.EscalationRule) error {
	conditions, actions, err := marshalRule(rule)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO escalation_rules (name, trigger_conditions, actions, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rule.Name,
		conditions,
		actions,
		rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *escalationRuleRepository) Update(ctx context.Context, rule *domain.EscalationRule) error {
	conditions, actions, err := marshalRule(rule)
	if err != nil {
		return err
	}
	const query = `
        UPDATE escalation_rules SET name=$1, trigger_conditions=$2, actions=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		rule.Name,
		conditions,
		actions,
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

func (r *escalationRuleRepository) GetByID(ctx context.Context, id string) (*domain.EscalationRule, error) {
	const query = `
        SELECT id, name, trigger_conditions, actions, is_active, created_at, updated_at
        FROM escalation_rules WHERE id=$1`
	var rule domain.EscalationRule
	var conditions, actions []byte
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&rule.ID,
		&rule.Name,
		&conditions,
		&actions,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := unmarshalRule(&rule, conditions, actions); err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListActive returns active rules in creation order, the order evaluation
// walks them in.
func (r *escalationRuleRepository) ListActive(ctx context.Context) ([]domain.EscalationRule, error) {
	const query = `
        SELECT id, name, trigger_conditions, actions, is_active, created_at, updated_at
        FROM escalation_rules WHERE is_active = TRUE ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *escalationRuleRepository) List(ctx context.Context) ([]domain.EscalationRule, error) {
	const query = `
        SELECT id, name, trigger_conditions, actions, is_active, created_at, updated_at
        FROM escalation_rules ORDER BY created_at`
	return r.list(ctx, query)
}

func (r *escalationRuleRepository) list(ctx context.Context, query string) ([]domain.EscalationRule, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EscalationRule
	for rows.Next() {
		var rule domain.EscalationRule
		var conditions, actions []byte
		if err := rows.Scan(
			&rule.ID,
			&rule.Name,
			&conditions,
			&actions,
			&rule.IsActive,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := unmarshalRule(&rule, conditions, actions); err != nil {
			return nil, err
		}
		result = append(result, rule)
	}
	return result, rows.Err()
}

func marshalRule(rule *domain.EscalationRule) (conditions, actions []byte, err error) {
	conditions, err = json.Marshal(rule.Conditions)
	if err != nil {
		return nil, nil, err
	}
	actions, err = json.Marshal(rule.Actions)
	if err != nil {
		return nil, nil, err
	}
	return conditions, actions, nil
}

func unmarshalRule(rule *domain.EscalationRule, conditions, actions []byte) error {
	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
			return err
		}
	}
	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &rule.Actions); err != nil {
			return err
		}
	}
	return nil
}
