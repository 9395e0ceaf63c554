package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/summitprep/satprep-backend/internal/repository"
	"github.com/summitprep/satprep-backend/internal/response"
	"github.com/summitprep/satprep-backend/internal/service"
)

type AdminRoleHandler struct {
	service *service.AdminRoleService
}

func NewAdminRoleHandler(service *service.AdminRoleService) *AdminRoleHandler {
	return &AdminRoleHandler{service: service}
}

// ListRoles gets all roles with their associated permissions.
func (h *AdminRoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, roles)
}

// GetRole gets a role and its permissions by ID.
func (h *AdminRoleHandler) GetRole(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	role, err := h.service.GetRoleByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, role)
}

// CreateUpdateRoleRequest payload for role operations.
type CreateUpdateRoleRequest struct {
	Name        string   `json:"name" binding:"required,min=2"`
	Permissions []string `json:"permissions"`
}

// CreateRole creates a new role with given permissions.
func (h *AdminRoleHandler) CreateRole(c *gin.Context) {
	var req CreateUpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	role, err := h.service.CreateRole(c.Request.Context(), req.Name, req.Permissions)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRole):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		case errors.Is(err, service.ErrEmptyRoleName):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, role)
}

// UpdateRole updates an existing role.
func (h *AdminRoleHandler) UpdateRole(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req CreateUpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	role, err := h.service.UpdateRole(c.Request.Context(), id, req.Name, req.Permissions)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSystemRole):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		case errors.Is(err, repository.ErrRoleNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, repository.ErrDuplicateRole):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		case errors.Is(err, service.ErrEmptyRoleName):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, role)
}

// DeleteRole deletes an existing role.
func (h *AdminRoleHandler) DeleteRole(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.service.DeleteRole(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrSystemRole):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		case errors.Is(err, repository.ErrRoleNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, repository.ErrRoleInUse):
			response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "role deleted successfully"})
}

// GetPermissions lists all available permissions.
func (h *AdminRoleHandler) GetPermissions(c *gin.Context) {
	perms := h.service.GetAllPermissions()
	response.Success(c, http.StatusOK, perms)
}
