package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionStudentsRead allows viewing student lists and details.
	PermissionStudentsRead Permission = "students:read"

	// PermissionStudentsWrite allows updating and deleting students.
	PermissionStudentsWrite Permission = "students:write"

	// PermissionOfferingsRead allows viewing class times and diagnostic test dates.
	PermissionOfferingsRead Permission = "offerings:read"

	// PermissionOfferingsWrite allows creating, updating, and deactivating offerings.
	PermissionOfferingsWrite Permission = "offerings:write"

	// PermissionCouponsRead allows viewing coupons and their usage ledgers.
	PermissionCouponsRead Permission = "coupons:read"

	// PermissionCouponsWrite allows creating, updating, and deleting coupons.
	PermissionCouponsWrite Permission = "coupons:write"

	// PermissionPaymentsRead allows viewing payment states and revenue figures.
	PermissionPaymentsRead Permission = "payments:read"

	// PermissionChat allows reading and answering student conversations.
	PermissionChat Permission = "chat:write"

	// PermissionAmbassadorsRead allows viewing ambassadors and referral counts.
	PermissionAmbassadorsRead Permission = "ambassadors:read"

	// PermissionAmbassadorsWrite allows creating and updating ambassadors.
	PermissionAmbassadorsWrite Permission = "ambassadors:write"

	// PermissionAdminsRead allows viewing admin user lists and details.
	PermissionAdminsRead Permission = "admins:read"

	// PermissionAdminsWrite allows creating, updating, and deleting admin users.
	PermissionAdminsWrite Permission = "admins:write"

	// PermissionRolesRead allows viewing admin roles and permissions.
	PermissionRolesRead Permission = "roles:read"

	// PermissionRolesWrite allows creating, updating, and deleting admin roles.
	PermissionRolesWrite Permission = "roles:write"

	// PermissionSettingsRead allows viewing application settings.
	PermissionSettingsRead Permission = "settings:read"

	// PermissionSettingsWrite allows editing application settings.
	PermissionSettingsWrite Permission = "settings:write"
)

// AllPermissions lists every permission code, used by the roles endpoint and seeding.
var AllPermissions = []Permission{
	PermissionStudentsRead,
	PermissionStudentsWrite,
	PermissionOfferingsRead,
	PermissionOfferingsWrite,
	PermissionCouponsRead,
	PermissionCouponsWrite,
	PermissionPaymentsRead,
	PermissionChat,
	PermissionAmbassadorsRead,
	PermissionAmbassadorsWrite,
	PermissionAdminsRead,
	PermissionAdminsWrite,
	PermissionRolesRead,
	PermissionRolesWrite,
	PermissionSettingsRead,
	PermissionSettingsWrite,
}
