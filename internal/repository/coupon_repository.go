package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/summitprep/satprep-backend/internal/model"
)

var (
	ErrDuplicateCoupon = errors.New("coupon with this code already exists")

	// ErrCouponExhausted is returned when the guarded used_count increment
	// matched no rows because the usage limit is already reached.
	ErrCouponExhausted = errors.New("coupon usage limit reached")

	// ErrCouponInUse is returned when deleting a coupon that usage rows
	// still reference.
	ErrCouponInUse = errors.New("coupon has recorded usages")
)

const couponColumns = `id, code, discount_percentage, usage_limit, used_count,
	valid_from, valid_until, minimum_amount_cents, is_active, created_at, updated_at`

// CouponRepository handles coupon and usage-ledger data access.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository creates a new CouponRepository.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	c := &model.Coupon{}
	err := row.Scan(&c.ID, &c.Code, &c.DiscountPercentage, &c.UsageLimit, &c.UsedCount,
		&c.ValidFrom, &c.ValidUntil, &c.MinimumAmountCents, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByCode retrieves a coupon by its (already upper-cased) code.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	return scanCoupon(r.pool.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code))
}

// GetByID retrieves a coupon by ID.
func (r *CouponRepository) GetByID(ctx context.Context, id int) (*model.Coupon, error) {
	return scanCoupon(r.pool.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
}

// List retrieves all coupons, newest first.
func (r *CouponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

// Create inserts a new coupon.
func (r *CouponRepository) Create(ctx context.Context, c *model.Coupon) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO coupons (code, discount_percentage, usage_limit, valid_from, valid_until,
			minimum_amount_cents, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, used_count, created_at, updated_at`,
		c.Code, c.DiscountPercentage, c.UsageLimit, c.ValidFrom, c.ValidUntil,
		c.MinimumAmountCents, c.IsActive,
	).Scan(&c.ID, &c.UsedCount, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCoupon
		}
		return err
	}
	return nil
}

// Update modifies a coupon's terms. used_count is never written here.
func (r *CouponRepository) Update(ctx context.Context, c *model.Coupon) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE coupons SET code = $1, discount_percentage = $2, usage_limit = $3,
			valid_from = $4, valid_until = $5, minimum_amount_cents = $6, is_active = $7,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = $8`,
		c.Code, c.DiscountPercentage, c.UsageLimit, c.ValidFrom, c.ValidUntil,
		c.MinimumAmountCents, c.IsActive, c.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCoupon
		}
		return err
	}
	return nil
}

// Delete removes a coupon. Refused while any usage row references it:
// admins deactivate instead, so the ledger keeps its foreign key target.
func (r *CouponRepository) Delete(ctx context.Context, id int) error {
	var inUse bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM coupon_usages WHERE coupon_id = $1)`, id,
	).Scan(&inUse); err != nil {
		return err
	}
	if inUse {
		return ErrCouponInUse
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	return err
}

// RecordUsage inserts the usage row and bumps used_count in one transaction.
// The increment is guarded in SQL rather than read-then-write so concurrent
// redemptions at the limit boundary cannot drive used_count past usage_limit:
// the loser of the race matches zero rows and the whole transaction rolls back.
func (r *CouponRepository) RecordUsage(ctx context.Context, u *model.CouponUsage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE coupons SET used_count = used_count + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1 AND (usage_limit IS NULL OR used_count < usage_limit)`,
		u.CouponID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCouponExhausted
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO coupon_usages (coupon_id, student_id, plan_type, original_amount_cents,
			discount_amount_cents, final_amount_cents, payment_status, stripe_session_id, stripe_payment_intent_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''))
		 RETURNING id, used_at`,
		u.CouponID, u.StudentID, u.PlanType, u.OriginalAmountCents,
		u.DiscountAmountCents, u.FinalAmountCents, u.PaymentStatus, u.StripeSessionID, u.StripePaymentIntentID,
	).Scan(&u.ID, &u.UsedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListUsages retrieves the usage ledger for one coupon, newest first.
func (r *CouponRepository) ListUsages(ctx context.Context, couponID int) ([]model.CouponUsage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.coupon_id, c.code, u.student_id, u.plan_type, u.original_amount_cents,
			u.discount_amount_cents, u.final_amount_cents, u.payment_status,
			COALESCE(u.stripe_session_id, ''), COALESCE(u.stripe_payment_intent_id, ''), u.used_at
		 FROM coupon_usages u JOIN coupons c ON c.id = u.coupon_id
		 WHERE u.coupon_id = $1 ORDER BY u.used_at DESC`, couponID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usages []model.CouponUsage
	for rows.Next() {
		var u model.CouponUsage
		if err := rows.Scan(&u.ID, &u.CouponID, &u.CouponCode, &u.StudentID, &u.PlanType,
			&u.OriginalAmountCents, &u.DiscountAmountCents, &u.FinalAmountCents, &u.PaymentStatus,
			&u.StripeSessionID, &u.StripePaymentIntentID, &u.UsedAt); err != nil {
			return nil, err
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}

// AttachStripeRefs records the checkout session ids on a pending usage row.
func (r *CouponRepository) AttachStripeRefs(ctx context.Context, usageID int, sessionID, paymentIntentID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE coupon_usages SET stripe_session_id = $2, stripe_payment_intent_id = $3
		 WHERE id = $1`,
		usageID, sessionID, paymentIntentID,
	)
	return err
}

// SettleUsageByPaymentIntent transitions a usage row's payment status, keyed
// by the immutable Stripe id recorded at redemption. The status guard keeps a
// redelivered webhook from re-applying the transition.
func (r *CouponRepository) SettleUsageByPaymentIntent(ctx context.Context, paymentIntentID string, status model.UsagePaymentStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE coupon_usages SET payment_status = $2
		 WHERE stripe_payment_intent_id = $1 AND payment_status <> $2`,
		paymentIntentID, status,
	)
	return err
}
