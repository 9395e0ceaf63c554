package model

// PlanType names the purchasable products.
type PlanType string

const (
	PlanFullCourse   PlanType = "full_course"
	PlanSpecialOffer PlanType = "special_offer"
	PlanDiagnostic   PlanType = "diagnostic"
)

// PlanPriceCents is the list price per plan. Overridable through app settings;
// these are the fallbacks when no setting row exists.
var PlanPriceCents = map[PlanType]int64{
	PlanFullCourse:   129900,
	PlanSpecialOffer: 49900,
	PlanDiagnostic:   9900,
}

// CreateCheckoutRequest is the student payload for starting Stripe checkout.
type CreateCheckoutRequest struct {
	PlanType   PlanType `json:"plan_type" binding:"required,oneof=full_course special_offer diagnostic"`
	CouponCode string   `json:"coupon_code" binding:"omitempty,min=3,max=30"`
}

// CheckoutSessionResponse is returned after a checkout session is created.
type CheckoutSessionResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
	AmountCents int64  `json:"amount_cents"`
}
