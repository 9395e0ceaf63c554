package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/summitprep/satprep-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Admin management errors.
var (
	ErrAdminNotFound   = errors.New("admin not found")
	ErrAdminEmailTaken = errors.New("admin email already registered")

	// ErrLastSuperAdmin guards the account that holds full access: the
	// final super admin can be neither deleted nor moved to another role.
	ErrLastSuperAdmin = errors.New("cannot remove the last super admin")
)

type AdminUserService struct {
	pool *pgxpool.Pool
}

func NewAdminUserService(pool *pgxpool.Pool) *AdminUserService {
	return &AdminUserService{pool: pool}
}

const adminSelect = `
	SELECT a.id, a.email, a.name, a.role_id, a.created_at, a.updated_at, r.name
	FROM admins a
	JOIN roles r ON a.role_id = r.id`

// ListAdmins retrieves a paginated list of admins, optionally filtered by role.
func (s *AdminUserService) ListAdmins(ctx context.Context, roleID, page, perPage int) ([]model.Admin, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	offset := (page - 1) * perPage

	var total int
	var err error
	if roleID > 0 {
		err = s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM admins WHERE role_id = $1", roleID).Scan(&total)
	} else {
		err = s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM admins").Scan(&total)
	}
	if err != nil {
		return nil, 0, err
	}

	query := adminSelect
	args := []interface{}{}
	if roleID > 0 {
		query += " WHERE a.role_id = $1 ORDER BY a.created_at DESC LIMIT $2 OFFSET $3"
		args = append(args, roleID, perPage, offset)
	} else {
		query += " ORDER BY a.created_at DESC LIMIT $1 OFFSET $2"
		args = append(args, perPage, offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	admins := []model.Admin{}
	for rows.Next() {
		var a model.Admin
		if err := rows.Scan(&a.ID, &a.Email, &a.Name, &a.RoleID, &a.CreatedAt, &a.UpdatedAt, &a.RoleName); err != nil {
			return nil, 0, err
		}
		admins = append(admins, a)
	}

	return admins, total, rows.Err()
}

func (s *AdminUserService) getAdmin(ctx context.Context, id int) (*model.Admin, error) {
	var admin model.Admin
	err := s.pool.QueryRow(ctx, adminSelect+" WHERE a.id = $1", id).
		Scan(&admin.ID, &admin.Email, &admin.Name, &admin.RoleID, &admin.CreatedAt, &admin.UpdatedAt, &admin.RoleName)
	if err != nil {
		return nil, ErrAdminNotFound
	}
	return &admin, nil
}

// isLastSuperAdmin reports whether the given admin is the only remaining
// member of the super_admin role.
func (s *AdminUserService) isLastSuperAdmin(ctx context.Context, id int) (bool, error) {
	var isSuper bool
	err := s.pool.QueryRow(ctx, `
		SELECT r.name = 'super_admin'
		FROM admins a JOIN roles r ON a.role_id = r.id
		WHERE a.id = $1`, id).Scan(&isSuper)
	if err != nil {
		return false, ErrAdminNotFound
	}
	if !isSuper {
		return false, nil
	}

	var peers int
	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM admins a JOIN roles r ON a.role_id = r.id
		WHERE r.name = 'super_admin' AND a.id != $1`, id).Scan(&peers)
	if err != nil {
		return false, err
	}
	return peers == 0, nil
}

// CreateAdmin creates a new admin user.
func (s *AdminUserService) CreateAdmin(ctx context.Context, email, name, password string, roleID int) (*model.Admin, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM admins WHERE email = $1)", email).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAdminEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var id int
	err = s.pool.QueryRow(ctx,
		"INSERT INTO admins (email, name, password_hash, role_id) VALUES ($1, $2, $3, $4) RETURNING id",
		email, name, string(hashedPassword), roleID,
	).Scan(&id)
	if err != nil {
		return nil, err
	}

	return s.getAdmin(ctx, id)
}

// UpdateAdmin updates an existing admin user. An empty password leaves the
// stored hash untouched.
func (s *AdminUserService) UpdateAdmin(ctx context.Context, id int, email, name, password string, roleID int) (*model.Admin, error) {
	current, err := s.getAdmin(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.RoleID != roleID {
		last, err := s.isLastSuperAdmin(ctx, id)
		if err != nil {
			return nil, err
		}
		if last {
			return nil, ErrLastSuperAdmin
		}
	}

	var emailExists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM admins WHERE email = $1 AND id != $2)", email, id).Scan(&emailExists); err != nil {
		return nil, err
	}
	if emailExists {
		return nil, ErrAdminEmailTaken
	}

	if password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		_, err = s.pool.Exec(ctx,
			"UPDATE admins SET email = $1, name = $2, password_hash = $3, role_id = $4, updated_at = NOW() WHERE id = $5",
			email, name, string(hashedPassword), roleID, id,
		)
		if err != nil {
			return nil, err
		}
	} else {
		_, err = s.pool.Exec(ctx,
			"UPDATE admins SET email = $1, name = $2, role_id = $3, updated_at = NOW() WHERE id = $4",
			email, name, roleID, id,
		)
		if err != nil {
			return nil, err
		}
	}

	return s.getAdmin(ctx, id)
}

// DeleteAdmin deletes an admin user, refusing to orphan the super_admin role.
func (s *AdminUserService) DeleteAdmin(ctx context.Context, id int) error {
	last, err := s.isLastSuperAdmin(ctx, id)
	if err != nil {
		return err
	}
	if last {
		return ErrLastSuperAdmin
	}

	res, err := s.pool.Exec(ctx, "DELETE FROM admins WHERE id = $1", id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrAdminNotFound
	}
	return nil
}

// GetRoles gets all available roles for selection.
func (s *AdminUserService) GetRoles(ctx context.Context) ([]map[string]interface{}, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, name FROM roles ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []map[string]interface{}
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		roles = append(roles, map[string]interface{}{
			"id":   id,
			"name": name,
		})
	}
	return roles, rows.Err()
}
