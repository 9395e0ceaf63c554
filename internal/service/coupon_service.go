package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/repository"
)

// Coupon errors.
var (
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrCouponInactive  = errors.New("coupon is not active")
	ErrCouponNotYet    = errors.New("coupon is not valid yet")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrCouponMinAmount = errors.New("amount below coupon minimum")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
)

// NormalizeCouponCode upper-cases and trims a user-entered code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckCouponValidity applies the eligibility rules for a coupon against an
// amount at a point in time. Returns nil when the coupon may be redeemed.
func CheckCouponValidity(c *model.Coupon, amountCents int64, now time.Time) error {
	if !c.IsActive {
		return ErrCouponInactive
	}
	if now.Before(c.ValidFrom) {
		return ErrCouponNotYet
	}
	if now.After(c.ValidUntil) {
		return ErrCouponExpired
	}
	if amountCents < c.MinimumAmountCents {
		return ErrCouponMinAmount
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return ErrCouponExhausted
	}
	return nil
}

// ComputeDiscount returns the rounded discount and the final amount floored
// at zero. A zero final amount marks the redemption as effectively free.
func ComputeDiscount(originalCents int64, discountPercentage int) (discountCents, finalCents int64) {
	discountCents = int64(math.Round(float64(originalCents) * float64(discountPercentage) / 100))
	finalCents = originalCents - discountCents
	if finalCents < 0 {
		finalCents = 0
	}
	return discountCents, finalCents
}

// ValidityReason maps a validity error to the API reason string.
func ValidityReason(err error) string {
	switch {
	case errors.Is(err, ErrCouponNotFound):
		return "not_found"
	case errors.Is(err, ErrCouponInactive):
		return "inactive"
	case errors.Is(err, ErrCouponNotYet):
		return "not_started"
	case errors.Is(err, ErrCouponExpired):
		return "expired"
	case errors.Is(err, ErrCouponMinAmount):
		return "below_minimum"
	case errors.Is(err, ErrCouponExhausted):
		return "usage_limit_reached"
	default:
		return "invalid"
	}
}

// CouponService handles coupon validity and the redemption ledger.
type CouponService struct {
	couponRepo *repository.CouponRepository
	log        zerolog.Logger
}

// NewCouponService creates a new CouponService.
func NewCouponService(couponRepo *repository.CouponRepository, log zerolog.Logger) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		log:        log.With().Str("component", "coupon_service").Logger(),
	}
}

// CheckValidity evaluates a code against an amount at the current time.
func (s *CouponService) CheckValidity(ctx context.Context, code string, amountCents int64) (*model.Coupon, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, NormalizeCouponCode(code))
	if err != nil {
		return nil, ErrCouponNotFound
	}
	if err := CheckCouponValidity(coupon, amountCents, time.Now()); err != nil {
		return coupon, err
	}
	return coupon, nil
}

// Redeem validates the coupon, computes the discount, and records the usage
// row together with the guarded used_count increment. The redemption's
// payment status starts as free when the discount covers the full amount,
// otherwise pending until the Stripe webhook settles it.
func (s *CouponService) Redeem(ctx context.Context, studentID int, code, planType string, originalCents int64) (*model.CouponUsage, error) {
	coupon, err := s.CheckValidity(ctx, code, originalCents)
	if err != nil {
		return nil, err
	}

	discountCents, finalCents := ComputeDiscount(originalCents, coupon.DiscountPercentage)

	status := model.UsagePending
	if finalCents == 0 {
		status = model.UsageFree
	}

	usage := &model.CouponUsage{
		CouponID:            coupon.ID,
		CouponCode:          coupon.Code,
		StudentID:           studentID,
		PlanType:            planType,
		OriginalAmountCents: originalCents,
		DiscountAmountCents: discountCents,
		FinalAmountCents:    finalCents,
		PaymentStatus:       status,
	}

	if err := s.couponRepo.RecordUsage(ctx, usage); err != nil {
		if errors.Is(err, repository.ErrCouponExhausted) {
			return nil, ErrCouponExhausted
		}
		return nil, err
	}

	s.log.Info().Int("student_id", studentID).Str("code", coupon.Code).
		Int64("discount_cents", discountCents).Int64("final_cents", finalCents).
		Msg("coupon redeemed")

	return usage, nil
}

// Create inserts a new coupon with a normalized code.
func (s *CouponService) Create(ctx context.Context, c *model.Coupon) error {
	c.Code = NormalizeCouponCode(c.Code)
	return s.couponRepo.Create(ctx, c)
}

// Update modifies a coupon's terms.
func (s *CouponService) Update(ctx context.Context, c *model.Coupon) error {
	c.Code = NormalizeCouponCode(c.Code)
	return s.couponRepo.Update(ctx, c)
}

// List retrieves all coupons.
func (s *CouponService) List(ctx context.Context) ([]model.Coupon, error) {
	return s.couponRepo.List(ctx)
}

// GetByID retrieves a coupon by ID.
func (s *CouponService) GetByID(ctx context.Context, id int) (*model.Coupon, error) {
	return s.couponRepo.GetByID(ctx, id)
}

// ListUsages retrieves a coupon's redemption ledger.
func (s *CouponService) ListUsages(ctx context.Context, couponID int) ([]model.CouponUsage, error) {
	return s.couponRepo.ListUsages(ctx, couponID)
}

// Delete removes a coupon; refused while usage rows reference it.
func (s *CouponService) Delete(ctx context.Context, id int) error {
	return s.couponRepo.Delete(ctx, id)
}

// AttachStripeRefs links a pending usage to its checkout session.
func (s *CouponService) AttachStripeRefs(ctx context.Context, usageID int, sessionID, paymentIntentID string) error {
	return s.couponRepo.AttachStripeRefs(ctx, usageID, sessionID, paymentIntentID)
}
