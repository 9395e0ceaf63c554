package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/repository"
	"github.com/summitprep/satprep-backend/internal/response"
	"github.com/summitprep/satprep-backend/internal/service"
	"github.com/summitprep/satprep-backend/internal/validator"
)

// CouponHandler handles admin-facing coupon management.
type CouponHandler struct {
	couponService *service.CouponService
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(couponService *service.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// ListCoupons godoc
// GET /api/v1/admin/coupons
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	coupons, err := h.couponService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if coupons == nil {
		coupons = []model.Coupon{}
	}

	response.Success(c, http.StatusOK, gin.H{"coupons": coupons})
}

// CreateCoupon godoc
// POST /api/v1/admin/coupons
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req model.CreateCouponRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	coupon := couponFromRequest(&req)
	if err := h.couponService.Create(c.Request.Context(), coupon); err != nil {
		if errors.Is(err, repository.ErrDuplicateCoupon) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"coupon": coupon})
}

// UpdateCoupon godoc
// PUT /api/v1/admin/coupons/:id
// Updates a coupon's terms. used_count is owned by redemption and untouched.
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateCouponRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	coupon := couponFromRequest(&req)
	coupon.ID = id
	if err := h.couponService.Update(c.Request.Context(), coupon); err != nil {
		if errors.Is(err, repository.ErrDuplicateCoupon) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	updated, _ := h.couponService.GetByID(c.Request.Context(), id)
	response.Success(c, http.StatusOK, gin.H{"coupon": updated})
}

// DeleteCoupon godoc
// DELETE /api/v1/admin/coupons/:id
// Deletes a coupon. Refused while redemption rows reference it.
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCouponInUse) {
			response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "coupon deleted successfully"})
}

// ListCouponUsages godoc
// GET /api/v1/admin/coupons/:id/usages
// Returns the redemption ledger for one coupon.
func (h *CouponHandler) ListCouponUsages(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	usages, err := h.couponService.ListUsages(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if usages == nil {
		usages = []model.CouponUsage{}
	}

	response.Success(c, http.StatusOK, gin.H{"usages": usages})
}

func couponFromRequest(req *model.CreateCouponRequest) *model.Coupon {
	return &model.Coupon{
		Code:               req.Code,
		DiscountPercentage: req.DiscountPercentage,
		UsageLimit:         req.UsageLimit,
		ValidFrom:          req.ValidFrom,
		ValidUntil:         req.ValidUntil,
		MinimumAmountCents: req.MinimumAmountCents,
		IsActive:           *req.IsActive,
	}
}
