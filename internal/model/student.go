package model

import "time"

// ApprovalStatus tracks the parental-approval workflow state.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalDeclined ApprovalStatus = "declined"
)

// PaymentStatus tracks a student's progress through Stripe checkout.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentSucceeded  PaymentStatus = "succeeded"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCanceled   PaymentStatus = "canceled"
)

// ScheduleChange is one entry in a student's change history list.
type ScheduleChange struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

// Student represents a registered student.
type Student struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	PasswordHash   string `json:"-"`
	GuardianName   string `json:"guardian_name"`
	GuardianEmail  string `json:"guardian_email"`
	GuardianPhone  string `json:"guardian_phone"`
	School         string `json:"school"`
	GraduationYear int    `json:"graduation_year"`
	AmbassadorCode string `json:"ambassador_code,omitempty"`

	ClassTime                string           `json:"class_time"`
	DiagnosticTestDate       string           `json:"diagnostic_test_date"`
	ClassTimeChangeCount     int              `json:"class_time_change_count"`
	DiagnosticChangeCount    int              `json:"diagnostic_test_change_count"`
	ClassTimeChangeHistory   []ScheduleChange `json:"class_time_change_history"`
	DiagnosticChangeHistory  []ScheduleChange `json:"diagnostic_test_change_history"`
	ParentalApprovalStatus   ApprovalStatus   `json:"parental_approval_status"`
	ParentalApprovalToken    string           `json:"-"`
	ApprovalDecidedAt        *time.Time       `json:"approval_decided_at,omitempty"`
	PaymentStatus            PaymentStatus    `json:"payment_status"`
	HasPaidSpecialOffer      bool             `json:"has_paid_special_offer"`
	PaymentDate              *time.Time       `json:"payment_date,omitempty"`
	PaymentAmountCents       *int64           `json:"payment_amount_cents,omitempty"`
	StripeCustomerID         string           `json:"-"`
	StripePaymentIntentID    string           `json:"-"`
	BookingCustomerID        string           `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}

// RegisterStudentRequest is the payload for public student registration.
type RegisterStudentRequest struct {
	Name               string `json:"name" binding:"required,min=2,max=100"`
	Email              string `json:"email" binding:"required,email,max=255"`
	Password           string `json:"password" binding:"required,min=8,max=128"`
	GuardianName       string `json:"guardian_name" binding:"required,min=2,max=100"`
	GuardianEmail      string `json:"guardian_email" binding:"required,email,max=255"`
	GuardianPhone      string `json:"guardian_phone" binding:"required,min=6,max=30"`
	School             string `json:"school" binding:"required,min=2,max=150"`
	GraduationYear     int    `json:"graduation_year" binding:"required,min=2024,max=2040"`
	ClassTime          string `json:"class_time" binding:"required,max=100"`
	DiagnosticTestDate string `json:"diagnostic_test_date" binding:"required,max=100"`
	AmbassadorCode     string `json:"ambassador_code" binding:"omitempty,max=30"`
}

// UpdateStudentRequest is the admin payload for updating a student record.
type UpdateStudentRequest struct {
	Name           string `json:"name" binding:"required,min=2,max=100"`
	GuardianName   string `json:"guardian_name" binding:"required,min=2,max=100"`
	GuardianEmail  string `json:"guardian_email" binding:"required,email,max=255"`
	GuardianPhone  string `json:"guardian_phone" binding:"required,min=6,max=30"`
	School         string `json:"school" binding:"required,min=2,max=150"`
	GraduationYear int    `json:"graduation_year" binding:"required,min=2024,max=2040"`
}

// ScheduleChangeRequest asks to move the student to a different offering.
type ScheduleChangeRequest struct {
	NewValue string `json:"new_value" binding:"required,min=1,max=100"`
}

// ScheduleState reports the student's schedule and remaining change budget.
type ScheduleState struct {
	ClassTime               string           `json:"class_time"`
	DiagnosticTestDate      string           `json:"diagnostic_test_date"`
	ClassTimeChangeCount    int              `json:"class_time_change_count"`
	DiagnosticChangeCount   int              `json:"diagnostic_test_change_count"`
	CanChangeClassTime      bool             `json:"can_change_class_time"`
	CanChangeDiagnosticTest bool             `json:"can_change_diagnostic_test"`
	ClassTimeChangeHistory  []ScheduleChange `json:"class_time_change_history"`
	DiagnosticChangeHistory []ScheduleChange `json:"diagnostic_test_change_history"`
}

// PasswordResetRequest asks for a reset link to be emailed.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// PasswordResetConfirm consumes a reset token and sets a new password.
type PasswordResetConfirm struct {
	Token       string `json:"token" binding:"required,min=16,max=128"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}
