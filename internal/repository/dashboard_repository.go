package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/summitprep/satprep-backend/internal/model"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (totalStudents, pendingApprovals, paidStudents int, revenueCents int64, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM students WHERE parental_approval_status = 'pending'),
			(SELECT COUNT(*) FROM students WHERE payment_status = 'succeeded'),
			(SELECT COALESCE(SUM(payment_amount_cents), 0) FROM students WHERE payment_status = 'succeeded')`,
	).Scan(&totalStudents, &pendingApprovals, &paidStudents, &revenueCents)
	return
}

// GetPaymentStatusCounts retrieves the distribution of students by payment status.
func (r *DashboardRepository) GetPaymentStatusCounts(ctx context.Context) (map[model.PaymentStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT payment_status, COUNT(*) FROM students GROUP BY payment_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.PaymentStatus]int)
	for rows.Next() {
		var status model.PaymentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// GetCouponTotals retrieves redemption counts and discount totals.
func (r *DashboardRepository) GetCouponTotals(ctx context.Context) (redemptions int, discountCents int64, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(discount_amount_cents), 0) FROM coupon_usages`,
	).Scan(&redemptions, &discountCents)
	return
}

// GetEnrollmentByOffering counts enrolled students per active offering,
// matched by schedule value the same way the offering list derives its
// current_enrollment.
func (r *DashboardRepository) GetEnrollmentByOffering(ctx context.Context) ([]model.OfferingEnrollment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.id, o.kind, o.name,
			(SELECT COUNT(*) FROM students s
				WHERE (o.kind = 'class_time' AND s.class_time = o.name)
				   OR (o.kind = 'diagnostic_test' AND s.diagnostic_test_date = o.name)) AS enrolled
		FROM offerings o
		WHERE o.is_active
		ORDER BY o.kind, o.starts_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OfferingEnrollment
	for rows.Next() {
		var e model.OfferingEnrollment
		if err := rows.Scan(&e.OfferingID, &e.Kind, &e.Name, &e.Enrolled); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountUnreadFromStudents totals unread student messages across all
// conversations, for the dashboard chat badge.
func (r *DashboardRepository) CountUnreadFromStudents(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chat_messages WHERE sender = 'student' AND status <> 'read'`,
	).Scan(&n)
	return n, err
}
