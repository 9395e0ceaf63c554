package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/summitprep/satprep-backend/internal/middleware"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/response"
	"github.com/summitprep/satprep-backend/internal/service"
	"github.com/summitprep/satprep-backend/internal/validator"
)

// Stripe caps event payloads well below this; anything larger is not ours.
const maxWebhookBodyBytes = 65536

// PaymentHandler handles checkout creation and the Stripe webhook.
type PaymentHandler struct {
	paymentService *service.PaymentService
	couponService  *service.CouponService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService, couponService *service.CouponService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		couponService:  couponService,
	}
}

// CreateCheckout godoc
// POST /api/v1/student/checkout
// Starts a Stripe checkout session for a plan, optionally with a coupon.
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateCheckoutRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.paymentService.CreateCheckout(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotEligible):
			response.Fail(c, http.StatusConflict, response.ErrPaymentTransition)
		case errors.Is(err, service.ErrCouponExhausted):
			response.Fail(c, http.StatusConflict, response.ErrCouponExhausted)
		case isCouponValidityErr(err):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrCouponInvalid)
		case errors.Is(err, service.ErrStripeUnavailable):
			response.Fail(c, http.StatusBadGateway, response.ErrUpstreamFailure)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, sess)
}

// CheckCoupon godoc
// POST /api/v1/student/coupons/check
// Reports whether a coupon applies to an amount, with the computed discount.
func (h *PaymentHandler) CheckCoupon(c *gin.Context) {
	var req model.RedeemCouponRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	coupon, err := h.couponService.CheckValidity(c.Request.Context(), req.Code, req.OriginalAmountCents)
	if err != nil {
		response.Success(c, http.StatusOK, gin.H{
			"valid":  false,
			"reason": service.ValidityReason(err),
		})
		return
	}

	discount, final := service.ComputeDiscount(req.OriginalAmountCents, coupon.DiscountPercentage)
	response.Success(c, http.StatusOK, gin.H{
		"valid":                 true,
		"discount_percentage":   coupon.DiscountPercentage,
		"discount_amount_cents": discount,
		"final_amount_cents":    final,
	})
}

// StripeWebhook godoc
// POST /api/v1/webhooks/stripe
// Receives Stripe events. Responds 400 on signature failure so Stripe
// retries, 200 otherwise.
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	if err := h.paymentService.HandleWebhook(c.Request.Context(), payload, sig); err != nil {
		if errors.Is(err, service.ErrWebhookSignature) {
			response.Fail(c, http.StatusBadRequest, response.ErrWebhookSignature)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"received": true})
}

func isCouponValidityErr(err error) bool {
	return errors.Is(err, service.ErrCouponNotFound) ||
		errors.Is(err, service.ErrCouponInactive) ||
		errors.Is(err, service.ErrCouponNotYet) ||
		errors.Is(err, service.ErrCouponExpired) ||
		errors.Is(err, service.ErrCouponMinAmount)
}
