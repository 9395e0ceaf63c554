package service

import (
	"errors"
	"testing"
	"time"

	"github.com/summitprep/satprep-backend/internal/model"
)

func validCoupon() *model.Coupon {
	limit := 10
	return &model.Coupon{
		Code:               "SUMMIT20",
		DiscountPercentage: 20,
		UsageLimit:         &limit,
		UsedCount:          3,
		ValidFrom:          time.Now().Add(-24 * time.Hour),
		ValidUntil:         time.Now().Add(24 * time.Hour),
		MinimumAmountCents: 10000,
		IsActive:           true,
	}
}

func TestCheckCouponValidity(t *testing.T) {
	now := time.Now()

	t.Run("valid", func(t *testing.T) {
		if err := CheckCouponValidity(validCoupon(), 50000, now); err != nil {
			t.Errorf("valid coupon rejected: %v", err)
		}
	})

	t.Run("inactive", func(t *testing.T) {
		c := validCoupon()
		c.IsActive = false
		if err := CheckCouponValidity(c, 50000, now); !errors.Is(err, ErrCouponInactive) {
			t.Errorf("err = %v, want ErrCouponInactive", err)
		}
	})

	t.Run("not started", func(t *testing.T) {
		c := validCoupon()
		c.ValidFrom = now.Add(time.Hour)
		if err := CheckCouponValidity(c, 50000, now); !errors.Is(err, ErrCouponNotYet) {
			t.Errorf("err = %v, want ErrCouponNotYet", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		c := validCoupon()
		c.ValidUntil = now.Add(-time.Hour)
		if err := CheckCouponValidity(c, 50000, now); !errors.Is(err, ErrCouponExpired) {
			t.Errorf("err = %v, want ErrCouponExpired", err)
		}
	})

	t.Run("below minimum", func(t *testing.T) {
		if err := CheckCouponValidity(validCoupon(), 9999, now); !errors.Is(err, ErrCouponMinAmount) {
			t.Errorf("err = %v, want ErrCouponMinAmount", err)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		c := validCoupon()
		c.UsedCount = *c.UsageLimit
		if err := CheckCouponValidity(c, 50000, now); !errors.Is(err, ErrCouponExhausted) {
			t.Errorf("err = %v, want ErrCouponExhausted", err)
		}
	})

	t.Run("nil usage limit never exhausts", func(t *testing.T) {
		c := validCoupon()
		c.UsageLimit = nil
		c.UsedCount = 1000000
		if err := CheckCouponValidity(c, 50000, now); err != nil {
			t.Errorf("unlimited coupon rejected: %v", err)
		}
	})
}

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name         string
		original     int64
		pct          int
		wantDiscount int64
		wantFinal    int64
	}{
		{"20 percent of full course", 129900, 20, 25980, 103920},
		{"rounds half up", 999, 50, 500, 499},
		{"100 percent is free", 49900, 100, 49900, 0},
		{"zero amount", 0, 20, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discount, final := ComputeDiscount(tt.original, tt.pct)
			if discount != tt.wantDiscount || final != tt.wantFinal {
				t.Errorf("ComputeDiscount(%d, %d) = (%d, %d), want (%d, %d)",
					tt.original, tt.pct, discount, final, tt.wantDiscount, tt.wantFinal)
			}
		})
	}
}

func TestValidityReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrCouponNotFound, "not_found"},
		{ErrCouponInactive, "inactive"},
		{ErrCouponNotYet, "not_started"},
		{ErrCouponExpired, "expired"},
		{ErrCouponMinAmount, "below_minimum"},
		{ErrCouponExhausted, "usage_limit_reached"},
		{errors.New("something else"), "invalid"},
	}

	for _, tt := range tests {
		if got := ValidityReason(tt.err); got != tt.want {
			t.Errorf("ValidityReason(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestNormalizeCouponCode(t *testing.T) {
	if got := NormalizeCouponCode("  summit20 "); got != "SUMMIT20" {
		t.Errorf("NormalizeCouponCode = %q, want SUMMIT20", got)
	}
}
