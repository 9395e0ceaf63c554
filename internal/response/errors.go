package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"
	ErrResetTokenInvalid  ErrCode = "RESET_TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrPermissionDenied  ErrCode = "PERMISSION_DENIED"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrLastSuperAdmin   ErrCode = "LAST_SUPER_ADMIN"

	// ─── Scheduling ────────────────────────────────────────────────────
	ErrInvalidOption       ErrCode = "INVALID_OPTION"
	ErrChangeLimitExceeded ErrCode = "CHANGE_LIMIT_EXCEEDED"

	// ─── Registration / Approval ───────────────────────────────────────
	ErrEmailTaken      ErrCode = "EMAIL_ALREADY_REGISTERED"
	ErrApprovalDecided ErrCode = "APPROVAL_ALREADY_DECIDED"

	// ─── Coupons ───────────────────────────────────────────────────────
	ErrCouponInvalid   ErrCode = "COUPON_INVALID"
	ErrCouponExhausted ErrCode = "COUPON_EXHAUSTED"

	// ─── Payments ──────────────────────────────────────────────────────
	ErrWebhookSignature  ErrCode = "WEBHOOK_SIGNATURE_INVALID"
	ErrPaymentTransition ErrCode = "PAYMENT_STATE_INVALID"

	// ─── Upstream collaborators ────────────────────────────────────────
	ErrUpstreamFailure ErrCode = "UPSTREAM_FAILURE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrResetTokenInvalid:
		return "This password reset link is invalid or has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "A resource with these details already exists."
	case ErrDependencyExists:
		return "This record cannot be deleted because other records still reference it."
	case ErrLastSuperAdmin:
		return "The last super admin cannot be removed."

	// ─── Scheduling ────────────────────────────────────────────────────
	case ErrInvalidOption:
		return "The selected option is not currently offered."
	case ErrChangeLimitExceeded:
		return "You have reached the maximum number of schedule changes."

	// ─── Registration / Approval ───────────────────────────────────────
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrApprovalDecided:
		return "This approval link has already been used."

	// ─── Coupons ───────────────────────────────────────────────────────
	case ErrCouponInvalid:
		return "This coupon cannot be applied."
	case ErrCouponExhausted:
		return "This coupon has reached its usage limit."

	// ─── Payments ──────────────────────────────────────────────────────
	case ErrWebhookSignature:
		return "Webhook signature verification failed."
	case ErrPaymentTransition:
		return "This payment operation is not allowed in the current state."

	// ─── Upstream collaborators ────────────────────────────────────────
	case ErrUpstreamFailure:
		return "An external service is temporarily unavailable."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
