package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/repository"
)

// DashboardSummary is the admin landing-page rollup.
type DashboardSummary struct {
	TotalStudents    int                         `json:"total_students"`
	PendingApprovals int                         `json:"pending_approvals"`
	PaidStudents     int                         `json:"paid_students"`
	RevenueCents     int64                       `json:"revenue_cents"`
	PaymentStatuses  map[model.PaymentStatus]int `json:"payment_statuses"`
	CouponUses       int                         `json:"coupon_uses"`
	DiscountCents    int64                       `json:"discount_cents"`
	Enrollment       []model.OfferingEnrollment  `json:"enrollment"`
	UnreadMessages   int                         `json:"unread_messages"`
}

// DashboardService aggregates admin overview metrics.
type DashboardService struct {
	dashboardRepo *repository.DashboardRepository
	log           zerolog.Logger
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboardRepo *repository.DashboardRepository, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		log:           log.With().Str("component", "dashboard_service").Logger(),
	}
}

// GetSummary assembles the dashboard in one pass over the aggregates.
func (s *DashboardService) GetSummary(ctx context.Context) (*DashboardSummary, error) {
	total, pending, paid, revenue, err := s.dashboardRepo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	statuses, err := s.dashboardRepo.GetPaymentStatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	uses, discount, err := s.dashboardRepo.GetCouponTotals(ctx)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.dashboardRepo.GetEnrollmentByOffering(ctx)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		enrollment = []model.OfferingEnrollment{}
	}

	unread, err := s.dashboardRepo.CountUnreadFromStudents(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		TotalStudents:    total,
		PendingApprovals: pending,
		PaidStudents:     paid,
		RevenueCents:     revenue,
		PaymentStatuses:  statuses,
		CouponUses:       uses,
		DiscountCents:    discount,
		Enrollment:       enrollment,
		UnreadMessages:   unread,
	}, nil
}
