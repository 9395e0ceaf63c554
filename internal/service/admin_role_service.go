package service

import (
	"context"
	"errors"
	"strings"

	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/repository"
)

var (
	// ErrSystemRole protects the seeded super_admin role from edits.
	ErrSystemRole = errors.New("system role cannot be modified")
	// ErrEmptyRoleName rejects blank role names.
	ErrEmptyRoleName = errors.New("role name cannot be empty")
)

// AdminRoleService handles business logic for admin roles.
type AdminRoleService struct {
	roleRepo *repository.RoleRepository
}

// NewAdminRoleService creates a new AdminRoleService.
func NewAdminRoleService(roleRepo *repository.RoleRepository) *AdminRoleService {
	return &AdminRoleService{roleRepo: roleRepo}
}

// ListRoles retrieves all roles with their permissions.
func (s *AdminRoleService) ListRoles(ctx context.Context) ([]model.RoleWithPermissions, error) {
	return s.roleRepo.ListRolesWithPermissions(ctx)
}

// GetRoleByID retrieves a specific role and its permissions.
func (s *AdminRoleService) GetRoleByID(ctx context.Context, id int) (*model.RoleWithPermissions, error) {
	return s.roleRepo.GetRoleByID(ctx, id)
}

// CreateRole creates a new role and assigns its permissions.
func (s *AdminRoleService) CreateRole(ctx context.Context, name string, permissions []string) (*model.RoleWithPermissions, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyRoleName
	}

	id, err := s.roleRepo.CreateRole(ctx, name)
	if err != nil {
		return nil, err
	}

	if len(permissions) > 0 {
		if err := s.roleRepo.AssignPermissionsToRole(ctx, id, permissions); err != nil {
			// Leave no half-created role behind.
			_ = s.roleRepo.DeleteRole(ctx, id)
			return nil, err
		}
	}

	return s.GetRoleByID(ctx, id)
}

// UpdateRole updates a role's name and replaces its permission set.
func (s *AdminRoleService) UpdateRole(ctx context.Context, id int, name string, permissions []string) (*model.RoleWithPermissions, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyRoleName
	}

	if err := s.guardSystemRole(ctx, id); err != nil {
		return nil, err
	}

	if err := s.roleRepo.UpdateRole(ctx, id, name); err != nil {
		return nil, err
	}

	if err := s.roleRepo.DeleteAllPermissionsFromRole(ctx, id); err != nil {
		return nil, err
	}
	if len(permissions) > 0 {
		if err := s.roleRepo.AssignPermissionsToRole(ctx, id, permissions); err != nil {
			return nil, err
		}
	}

	return s.GetRoleByID(ctx, id)
}

// DeleteRole deletes a role. Roles still assigned to admins are refused at
// the repository level.
func (s *AdminRoleService) DeleteRole(ctx context.Context, id int) error {
	if err := s.guardSystemRole(ctx, id); err != nil {
		return err
	}
	return s.roleRepo.DeleteRole(ctx, id)
}

// GetAllPermissions retrieves all available system permission codes.
func (s *AdminRoleService) GetAllPermissions() []string {
	perms := make([]string, len(model.AllPermissions))
	for i, p := range model.AllPermissions {
		perms[i] = string(p)
	}
	return perms
}

func (s *AdminRoleService) guardSystemRole(ctx context.Context, id int) error {
	role, err := s.roleRepo.GetRoleByID(ctx, id)
	if err != nil {
		return err
	}
	if role.Role.Name == model.RoleSuperAdmin {
		return ErrSystemRole
	}
	return nil
}
