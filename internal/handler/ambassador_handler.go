package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/repository"
	"github.com/summitprep/satprep-backend/internal/response"
	"github.com/summitprep/satprep-backend/internal/service"
	"github.com/summitprep/satprep-backend/internal/validator"
)

// AmbassadorHandler handles admin-facing ambassador management.
type AmbassadorHandler struct {
	ambassadorService *service.AmbassadorService
}

// NewAmbassadorHandler creates a new AmbassadorHandler.
func NewAmbassadorHandler(ambassadorService *service.AmbassadorService) *AmbassadorHandler {
	return &AmbassadorHandler{ambassadorService: ambassadorService}
}

// ListAmbassadors godoc
// GET /api/v1/admin/ambassadors
// Returns the referral leaderboard.
func (h *AmbassadorHandler) ListAmbassadors(c *gin.Context) {
	ambassadors, err := h.ambassadorService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if ambassadors == nil {
		ambassadors = []model.Ambassador{}
	}

	response.Success(c, http.StatusOK, gin.H{"ambassadors": ambassadors})
}

// CreateAmbassador godoc
// POST /api/v1/admin/ambassadors
func (h *AmbassadorHandler) CreateAmbassador(c *gin.Context) {
	var req model.CreateAmbassadorRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ambassador, err := h.ambassadorService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAmbassador) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"ambassador": ambassador})
}

// UpdateAmbassador godoc
// PUT /api/v1/admin/ambassadors/:id
func (h *AmbassadorHandler) UpdateAmbassador(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateAmbassadorRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	ambassador, err := h.ambassadorService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAmbassador) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"ambassador": ambassador})
}
