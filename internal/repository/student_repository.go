package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/summitprep/satprep-backend/internal/model"
)

var (
	ErrDuplicateEmail = errors.New("student with this email already exists")

	// ErrChangeLimitReached is returned when the guarded schedule update
	// matched no rows because the change counter is at its cap.
	ErrChangeLimitReached = errors.New("schedule change limit reached")

	// ErrApprovalConsumed is returned when an approval token lookup matches
	// no pending student (already used, or never existed).
	ErrApprovalConsumed = errors.New("approval token not pending")

	ErrStudentNotFound = errors.New("student not found")
)

const studentColumns = `id, name, email, password_hash, guardian_name, guardian_email, guardian_phone,
	school, graduation_year, COALESCE(ambassador_code, ''), class_time, diagnostic_test_date,
	class_time_change_count, diagnostic_test_change_count,
	class_time_change_history, diagnostic_test_change_history,
	parental_approval_status, COALESCE(parental_approval_token, ''), approval_decided_at,
	payment_status, has_paid_special_offer, payment_date, payment_amount_cents,
	COALESCE(stripe_customer_id, ''), COALESCE(stripe_payment_intent_id, ''), COALESCE(booking_customer_id, ''),
	created_at, updated_at`

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func scanStudent(row pgx.Row) (*model.Student, error) {
	s := &model.Student{}
	var classHistory, diagHistory []byte
	err := row.Scan(
		&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.GuardianName, &s.GuardianEmail, &s.GuardianPhone,
		&s.School, &s.GraduationYear, &s.AmbassadorCode, &s.ClassTime, &s.DiagnosticTestDate,
		&s.ClassTimeChangeCount, &s.DiagnosticChangeCount,
		&classHistory, &diagHistory,
		&s.ParentalApprovalStatus, &s.ParentalApprovalToken, &s.ApprovalDecidedAt,
		&s.PaymentStatus, &s.HasPaidSpecialOffer, &s.PaymentDate, &s.PaymentAmountCents,
		&s.StripeCustomerID, &s.StripePaymentIntentID, &s.BookingCustomerID,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(classHistory, &s.ClassTimeChangeHistory); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(diagHistory, &s.DiagnosticChangeHistory); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
}

// GetByEmail retrieves a student by their unique email.
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE email = $1`, email))
}

// ListPaginated retrieves students with pagination and optional search on
// name/email/school.
func (r *StudentRepository) ListPaginated(ctx context.Context, search string, limit, offset int) ([]model.Student, int, error) {
	countQuery := `SELECT COUNT(*) FROM students`
	query := `SELECT ` + studentColumns + ` FROM students`
	var args []interface{}
	argIdx := 1

	if search != "" {
		filter := ` WHERE name ILIKE $1 OR email ILIKE $1 OR school ILIKE $1`
		countQuery += filter
		query += filter
		args = append(args, "%"+search+"%")
		argIdx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, *s)
	}
	return students, total, rows.Err()
}

// Create inserts a new student with a pending parental approval token.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (name, email, password_hash, guardian_name, guardian_email, guardian_phone,
			school, graduation_year, ambassador_code, class_time, diagnostic_test_date,
			parental_approval_status, parental_approval_token)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.Email, s.PasswordHash, s.GuardianName, s.GuardianEmail, s.GuardianPhone,
		s.School, s.GraduationYear, s.AmbassadorCode, s.ClassTime, s.DiagnosticTestDate,
		s.ParentalApprovalStatus, s.ParentalApprovalToken,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// Update modifies a student's contact and academic info (admin action).
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET name = $1, guardian_name = $2, guardian_email = $3, guardian_phone = $4,
			school = $5, graduation_year = $6, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $7`,
		s.Name, s.GuardianName, s.GuardianEmail, s.GuardianPhone, s.School, s.GraduationYear, s.ID,
	)
	return err
}

// UpdatePassword updates a student's password hash.
func (r *StudentRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	)
	return err
}

// Delete removes a student by ID. Explicit admin action only.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	return err
}

// ApplyScheduleChange sets the new value, increments the change counter, and
// appends to the history list in one guarded UPDATE. The counter guard keeps
// value, counter, and history from diverging under concurrent requests: the
// statement that loses the race matches zero rows.
func (r *StudentRepository) ApplyScheduleChange(ctx context.Context, id int, kind model.OfferingKind, change model.ScheduleChange, limit int) (*model.Student, error) {
	entry, err := json.Marshal([]model.ScheduleChange{change})
	if err != nil {
		return nil, err
	}

	valueCol, countCol, historyCol := "class_time", "class_time_change_count", "class_time_change_history"
	if kind == model.OfferingDiagnosticTest {
		valueCol, countCol, historyCol = "diagnostic_test_date", "diagnostic_test_change_count", "diagnostic_test_change_history"
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE students SET `+valueCol+` = $2, `+countCol+` = `+countCol+` + 1,
			`+historyCol+` = `+historyCol+` || $3::jsonb, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1 AND `+countCol+` < $4
		 RETURNING `+studentColumns,
		id, change.To, entry, limit,
	)

	s, err := scanStudent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrChangeLimitReached
	}
	return s, err
}

// ConsumeApprovalToken transitions pending → approved/declined keyed on both
// the token and the pending status, unsetting the token. The status predicate
// makes a second click on the same link match zero rows instead of
// re-applying the transition.
func (r *StudentRepository) ConsumeApprovalToken(ctx context.Context, token string, status model.ApprovalStatus) (*model.Student, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE students SET parental_approval_status = $2, parental_approval_token = NULL,
			approval_decided_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE parental_approval_token = $1 AND parental_approval_status = 'pending'
		 RETURNING `+studentColumns,
		token, status,
	)

	s, err := scanStudent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrApprovalConsumed
	}
	return s, err
}

// ResetApprovalToken issues a fresh token for a still-pending student, used
// when an admin re-sends the guardian email.
func (r *StudentRepository) ResetApprovalToken(ctx context.Context, id int, token string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET parental_approval_token = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1 AND parental_approval_status = 'pending'`,
		id, token,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrApprovalConsumed
	}
	return nil
}

// BeginCheckout records the Stripe refs and moves pending → processing.
// failed → processing is also allowed so a student can retry payment.
func (r *StudentRepository) BeginCheckout(ctx context.Context, id int, customerID, paymentIntentID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET payment_status = 'processing',
			stripe_customer_id = $2, stripe_payment_intent_id = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1 AND payment_status IN ('pending', 'failed')`,
		id, customerID, paymentIntentID,
	)
	return err
}

// AttachPaymentIntent backfills the Stripe refs once the intent exists.
// Stripe assigns the intent at submission, after the session was created, so
// this runs from checkout.session.completed with no status predicate: the
// success and failure transitions key on the intent id recorded here.
func (r *StudentRepository) AttachPaymentIntent(ctx context.Context, id int, customerID, paymentIntentID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET stripe_payment_intent_id = $3,
			stripe_customer_id = COALESCE(NULLIF($2, ''), stripe_customer_id),
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1`,
		id, customerID, paymentIntentID,
	)
	return err
}

// MarkPaymentSucceeded applies the success webhook keyed by the immutable
// payment intent id. The status guard makes redelivery a no-op
// (ErrStudentNotFound) and COALESCE keeps payment_date and
// payment_amount_cents from being re-applied.
func (r *StudentRepository) MarkPaymentSucceeded(ctx context.Context, paymentIntentID string, amountCents int64, paidAt time.Time) (int, error) {
	var studentID int
	err := r.pool.QueryRow(ctx,
		`UPDATE students SET payment_status = 'succeeded', has_paid_special_offer = TRUE,
			payment_date = COALESCE(payment_date, $2),
			payment_amount_cents = COALESCE(payment_amount_cents, $3),
			updated_at = CURRENT_TIMESTAMP
		 WHERE stripe_payment_intent_id = $1 AND payment_status <> 'succeeded'
		 RETURNING id`,
		paymentIntentID, paidAt, amountCents,
	).Scan(&studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrStudentNotFound
	}
	return studentID, err
}

// MarkPaymentSucceededByID applies the success transition keyed by student
// id, for checkout.session.completed where the session carries the student
// reference directly. Returns false when the row was already succeeded.
func (r *StudentRepository) MarkPaymentSucceededByID(ctx context.Context, id int, amountCents int64, paidAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET payment_status = 'succeeded', has_paid_special_offer = TRUE,
			payment_date = COALESCE(payment_date, $2),
			payment_amount_cents = COALESCE(payment_amount_cents, $3),
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1 AND payment_status <> 'succeeded'`,
		id, paidAt, amountCents,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkPaymentFailed applies the failure webhook. Terminal states are left
// alone: a late failure event must not claw back a recorded success.
func (r *StudentRepository) MarkPaymentFailed(ctx context.Context, paymentIntentID string) (int, error) {
	var studentID int
	err := r.pool.QueryRow(ctx,
		`UPDATE students SET payment_status = 'failed', updated_at = CURRENT_TIMESTAMP
		 WHERE stripe_payment_intent_id = $1 AND payment_status IN ('pending', 'processing')
		 RETURNING id`,
		paymentIntentID,
	).Scan(&studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrStudentNotFound
	}
	return studentID, err
}

// MarkPaymentCanceled moves pending/processing → canceled.
func (r *StudentRepository) MarkPaymentCanceled(ctx context.Context, paymentIntentID string) (int, error) {
	var studentID int
	err := r.pool.QueryRow(ctx,
		`UPDATE students SET payment_status = 'canceled', updated_at = CURRENT_TIMESTAMP
		 WHERE stripe_payment_intent_id = $1 AND payment_status IN ('pending', 'processing')
		 RETURNING id`,
		paymentIntentID,
	).Scan(&studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrStudentNotFound
	}
	return studentID, err
}

// SettleFreeEnrollment marks a student paid with a zero amount when a coupon
// covered the full price and no Stripe session was created.
func (r *StudentRepository) SettleFreeEnrollment(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET payment_status = 'succeeded', has_paid_special_offer = TRUE,
			payment_date = COALESCE(payment_date, CURRENT_TIMESTAMP),
			payment_amount_cents = COALESCE(payment_amount_cents, 0),
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = $1`,
		id,
	)
	return err
}

// SetBookingCustomerID stores the external booking-platform customer id.
func (r *StudentRepository) SetBookingCustomerID(ctx context.Context, id int, bookingID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET booking_customer_id = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
		id, bookingID,
	)
	return err
}

// CountBySchedule counts students currently enrolled in an offering name.
func (r *StudentRepository) CountBySchedule(ctx context.Context, kind model.OfferingKind, name string) (int, error) {
	col := "class_time"
	if kind == model.OfferingDiagnosticTest {
		col = "diagnostic_test_date"
	}
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students WHERE `+col+` = $1`, name).Scan(&n)
	return n, err
}
