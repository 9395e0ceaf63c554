package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/summitprep/satprep-backend/internal/model"
)

var ErrDuplicateAmbassador = errors.New("ambassador with this code already exists")

// AmbassadorRepository handles ambassador data access.
type AmbassadorRepository struct {
	pool *pgxpool.Pool
}

// NewAmbassadorRepository creates a new AmbassadorRepository.
func NewAmbassadorRepository(pool *pgxpool.Pool) *AmbassadorRepository {
	return &AmbassadorRepository{pool: pool}
}

// List retrieves all ambassadors ordered by referral count.
func (r *AmbassadorRepository) List(ctx context.Context) ([]model.Ambassador, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, name, email, referral_count, is_active, created_at, updated_at
		 FROM ambassadors ORDER BY referral_count DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ambassadors []model.Ambassador
	for rows.Next() {
		var a model.Ambassador
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Email, &a.ReferralCount,
			&a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		ambassadors = append(ambassadors, a)
	}
	return ambassadors, rows.Err()
}

// GetByID retrieves an ambassador by ID.
func (r *AmbassadorRepository) GetByID(ctx context.Context, id int) (*model.Ambassador, error) {
	a := &model.Ambassador{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, email, referral_count, is_active, created_at, updated_at
		 FROM ambassadors WHERE id = $1`, id,
	).Scan(&a.ID, &a.Code, &a.Name, &a.Email, &a.ReferralCount,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new ambassador.
func (r *AmbassadorRepository) Create(ctx context.Context, a *model.Ambassador) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO ambassadors (code, name, email, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, referral_count, created_at, updated_at`,
		a.Code, a.Name, a.Email, a.IsActive,
	).Scan(&a.ID, &a.ReferralCount, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateAmbassador
		}
		return err
	}
	return nil
}

// Update modifies an ambassador's profile. referral_count is never written here.
func (r *AmbassadorRepository) Update(ctx context.Context, a *model.Ambassador) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE ambassadors SET code = $1, name = $2, email = $3, is_active = $4,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5`,
		a.Code, a.Name, a.Email, a.IsActive, a.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateAmbassador
		}
		return err
	}
	return nil
}

// AttributeReferral atomically bumps the referral counter for an active code.
// Returns false when the code names no active ambassador.
func (r *AmbassadorRepository) AttributeReferral(ctx context.Context, code string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE ambassadors SET referral_count = referral_count + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE code = $1 AND is_active`,
		code,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
