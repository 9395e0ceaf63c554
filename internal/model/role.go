package model

import "time"

// RoleSuperAdmin is the seeded role with every permission. It cannot be
// edited or deleted.
const RoleSuperAdmin = "super_admin"

// Role represents an RBAC role.
type Role struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleWithPermissions extends Role to include its associated permissions.
type RoleWithPermissions struct {
	*Role
	Permissions []string `json:"permissions"`
}
