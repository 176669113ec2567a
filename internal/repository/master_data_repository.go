package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-sla-service/internal/domain"
)

// UnitRepository manages hospital unit persistence.
type UnitRepository interface {
	Create(ctx context.Context, unit *domain.Unit) error
	Update(ctx context.Context, unit *domain.Unit) error
	GetByID(ctx context.Context, id string) (*domain.Unit, error)
	ListActive(ctx context.Context) ([]domain.Unit, error)
}

type unitRepository struct {
	pool *pgxpool.Pool
}

// NewUnitRepository builds the repository.
func NewUnitRepository(pool *pgxpool.Pool) UnitRepository {
	return &unitRepository{pool: pool}
}

func (r *unitRepository) Create(ctx context.Context, unit *domain.Unit) error {
	const query = `
        INSERT INTO units (name, unit_type_id, description, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		unit.Name,
		unit.UnitTypeID,
		unit.Description,
		unit.IsActive,
	).Scan(&unit.ID, &unit.CreatedAt, &unit.UpdatedAt)
}

func (r *unitRepository) Update(ctx context.Context, unit *domain.Unit) error {
	const query = `
        UPDATE units SET name=$1, unit_type_id=$2, description=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		unit.Name,
		unit.UnitTypeID,
		unit.Description,
		unit.IsActive,
		unit.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *unitRepository) GetByID(ctx context.Context, id string) (*domain.Unit, error) {
	const query = `
        SELECT id, name, unit_type_id, description, is_active, created_at, updated_at
        FROM units WHERE id=$1`
	var unit domain.Unit
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&unit.ID,
		&unit.Name,
		&unit.UnitTypeID,
		&unit.Description,
		&unit.IsActive,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *unitRepository) ListActive(ctx context.Context) ([]domain.Unit, error) {
	const query = `
        SELECT id, name, unit_type_id, description, is_active, created_at, updated_at
        FROM units WHERE is_active = TRUE ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Unit
	for rows.Next() {
		var unit domain.Unit
		if err := rows.Scan(&unit.ID, &unit.Name, &unit.UnitTypeID, &unit.Description, &unit.IsActive, &unit.CreatedAt, &unit.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, unit)
	}
	return result, rows.Err()
}

// ServiceCategoryRepository manages complaint category persistence.
type ServiceCategoryRepository interface {
	Create(ctx context.Context, category *domain.ServiceCategory) error
	GetByID(ctx context.Context, id string) (*domain.ServiceCategory, error)
	ListActive(ctx context.Context) ([]domain.ServiceCategory, error)
}

type serviceCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewServiceCategoryRepository builds the repository.
func NewServiceCategoryRepository(pool *pgxpool.Pool) ServiceCategoryRepository {
	return &serviceCategoryRepository{pool: pool}
}

func (r *serviceCategoryRepository) Create(ctx context.Context, category *domain.ServiceCategory) error {
	const query = `
        INSERT INTO service_categories (name, description, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		category.Name,
		category.Description,
		category.IsActive,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
}

func (r *serviceCategoryRepository) GetByID(ctx context.Context, id string) (*domain.ServiceCategory, error) {
	const query = `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM service_categories WHERE id=$1`
	var category domain.ServiceCategory
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.IsActive,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *serviceCategoryRepository) ListActive(ctx context.Context) ([]domain.ServiceCategory, error) {
	const query = `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM service_categories WHERE is_active = TRUE ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceCategory
	for rows.Next() {
		var category domain.ServiceCategory
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.IsActive, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

// PatientTypeRepository manages patient type persistence.
type PatientTypeRepository interface {
	Create(ctx context.Context, pt *domain.PatientType) error
	GetByID(ctx context.Context, id string) (*domain.PatientType, error)
	ListActive(ctx context.Context) ([]domain.PatientType, error)
}

type patientTypeRepository struct {
	pool *pgxpool.Pool
}

// NewPatientTypeRepository builds the repository.
func NewPatientTypeRepository(pool *pgxpool.Pool) PatientTypeRepository {
	return &patientTypeRepository{pool: pool}
}

func (r *patientTypeRepository) Create(ctx context.Context, pt *domain.PatientType) error {
	const query = `
        INSERT INTO patient_types (name, is_active)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, pt.Name, pt.IsActive).Scan(&pt.ID, &pt.CreatedAt, &pt.UpdatedAt)
}

func (r *patientTypeRepository) GetByID(ctx context.Context, id string) (*domain.PatientType, error) {
	const query = `
        SELECT id, name, is_active, created_at, updated_at
        FROM patient_types WHERE id=$1`
	var pt domain.PatientType
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&pt.ID,
		&pt.Name,
		&pt.IsActive,
		&pt.CreatedAt,
		&pt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &pt, nil
}

func (r *patientTypeRepository) ListActive(ctx context.Context) ([]domain.PatientType, error) {
	const query = `
        SELECT id, name, is_active, created_at, updated_at
        FROM patient_types WHERE is_active = TRUE ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PatientType
	for rows.Next() {
		var pt domain.PatientType
		if err := rows.Scan(&pt.ID, &pt.Name, &pt.IsActive, &pt.CreatedAt, &pt.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, pt)
	}
	return result, rows.Err()
}
