package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/summitprep/satprep-backend/internal/model"
)

var ErrDuplicateOffering = errors.New("offering with this name already exists")

// OfferingRepository handles class-time and diagnostic-test offering data access.
type OfferingRepository struct {
	pool *pgxpool.Pool
}

// NewOfferingRepository creates a new OfferingRepository.
func NewOfferingRepository(pool *pgxpool.Pool) *OfferingRepository {
	return &OfferingRepository{pool: pool}
}

// GetByID retrieves an offering by ID.
func (r *OfferingRepository) GetByID(ctx context.Context, id int) (*model.Offering, error) {
	o := &model.Offering{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, kind, name, starts_at, capacity, is_active, created_at, updated_at
		 FROM offerings WHERE id = $1`, id,
	).Scan(&o.ID, &o.Kind, &o.Name, &o.StartsAt, &o.Capacity, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListByKind retrieves all offerings of a kind, each with its derived
// enrollment count, ordered by start time.
func (r *OfferingRepository) ListByKind(ctx context.Context, kind model.OfferingKind, activeOnly bool) ([]model.Offering, error) {
	col := "class_time"
	if kind == model.OfferingDiagnosticTest {
		col = "diagnostic_test_date"
	}

	query := `SELECT o.id, o.kind, o.name, o.starts_at, o.capacity, o.is_active, o.created_at, o.updated_at,
			(SELECT COUNT(*) FROM students s WHERE s.` + col + ` = o.name) AS current_enrollment
		 FROM offerings o WHERE o.kind = $1`
	if activeOnly {
		query += ` AND o.is_active`
	}
	query += ` ORDER BY o.starts_at`

	rows, err := r.pool.Query(ctx, query, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offerings []model.Offering
	for rows.Next() {
		var o model.Offering
		if err := rows.Scan(&o.ID, &o.Kind, &o.Name, &o.StartsAt, &o.Capacity, &o.IsActive,
			&o.CreatedAt, &o.UpdatedAt, &o.CurrentEnrollment); err != nil {
			return nil, err
		}
		offerings = append(offerings, o)
	}
	return offerings, rows.Err()
}

// IsActiveName reports whether an active offering of the given kind exists
// with this exact name.
func (r *OfferingRepository) IsActiveName(ctx context.Context, kind model.OfferingKind, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM offerings WHERE kind = $1 AND name = $2 AND is_active)`,
		kind, name,
	).Scan(&exists)
	return exists, err
}

// Create inserts a new offering.
func (r *OfferingRepository) Create(ctx context.Context, o *model.Offering) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO offerings (kind, name, starts_at, capacity, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		o.Kind, o.Name, o.StartsAt, o.Capacity, o.IsActive,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateOffering
		}
		return err
	}
	return nil
}

// Update modifies an existing offering.
func (r *OfferingRepository) Update(ctx context.Context, o *model.Offering) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE offerings SET kind = $1, name = $2, starts_at = $3, capacity = $4, is_active = $5,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6`,
		o.Kind, o.Name, o.StartsAt, o.Capacity, o.IsActive, o.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateOffering
		}
		return err
	}
	return nil
}

// Delete removes an offering by ID.
func (r *OfferingRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM offerings WHERE id = $1`, id)
	return err
}
