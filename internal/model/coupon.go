package model

import "time"

// Coupon is a percentage discount code with a validity window and an
// optional redemption cap.
type Coupon struct {
	ID                 int        `json:"id"`
	Code               string     `json:"code"`
	DiscountPercentage int        `json:"discount_percentage"`
	UsageLimit         *int       `json:"usage_limit"`
	UsedCount          int        `json:"used_count"`
	ValidFrom          time.Time  `json:"valid_from"`
	ValidUntil         time.Time  `json:"valid_until"`
	MinimumAmountCents int64      `json:"minimum_amount_cents"`
	IsActive           bool       `json:"is_active"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// UsagePaymentStatus tracks what happened to the payment behind a redemption.
type UsagePaymentStatus string

const (
	UsageFree    UsagePaymentStatus = "free"
	UsagePaid    UsagePaymentStatus = "paid"
	UsagePending UsagePaymentStatus = "pending"
	UsageFailed  UsagePaymentStatus = "failed"
)

// CouponUsage is an immutable ledger row recording one redemption.
// Only PaymentStatus and the stripe refs are written after insert.
type CouponUsage struct {
	ID                    int                `json:"id"`
	CouponID              int                `json:"coupon_id"`
	CouponCode            string             `json:"coupon_code,omitempty"`
	StudentID             int                `json:"student_id"`
	PlanType              string             `json:"plan_type"`
	OriginalAmountCents   int64              `json:"original_amount_cents"`
	DiscountAmountCents   int64              `json:"discount_amount_cents"`
	FinalAmountCents      int64              `json:"final_amount_cents"`
	PaymentStatus         UsagePaymentStatus `json:"payment_status"`
	StripeSessionID       string             `json:"-"`
	StripePaymentIntentID string             `json:"-"`
	UsedAt                time.Time          `json:"used_at"`
}

// CreateCouponRequest is the admin payload for creating or updating a coupon.
type CreateCouponRequest struct {
	Code               string    `json:"code" binding:"required,min=3,max=30"`
	DiscountPercentage int       `json:"discount_percentage" binding:"required,min=1,max=100"`
	UsageLimit         *int      `json:"usage_limit" binding:"omitempty,min=1"`
	ValidFrom          time.Time `json:"valid_from" binding:"required"`
	ValidUntil         time.Time `json:"valid_until" binding:"required"`
	MinimumAmountCents int64     `json:"minimum_amount_cents" binding:"min=0"`
	IsActive           *bool     `json:"is_active" binding:"required"`
}

// RedeemCouponRequest is the student payload for redeeming a coupon.
type RedeemCouponRequest struct {
	Code                string `json:"code" binding:"required,min=3,max=30"`
	PlanType            string `json:"plan_type" binding:"required,oneof=full_course special_offer diagnostic"`
	OriginalAmountCents int64  `json:"original_amount_cents" binding:"required,min=1"`
}
