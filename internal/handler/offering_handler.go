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

// OfferingHandler handles admin-facing offering management (CRUD).
type OfferingHandler struct {
	offeringService *service.OfferingService
}

// NewOfferingHandler creates a new OfferingHandler.
func NewOfferingHandler(offeringService *service.OfferingService) *OfferingHandler {
	return &OfferingHandler{offeringService: offeringService}
}

// ListOfferings godoc
// GET /api/v1/admin/offerings?kind=class_time|diagnostic_test
// Lists all offerings of one kind, inactive included, with enrollment counts.
func (h *OfferingHandler) ListOfferings(c *gin.Context) {
	kind := model.OfferingKind(c.Query("kind"))
	if kind != model.OfferingClassTime && kind != model.OfferingDiagnosticTest {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	offerings, err := h.offeringService.ListByKind(c.Request.Context(), kind, false)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if offerings == nil {
		offerings = []model.Offering{}
	}

	response.Success(c, http.StatusOK, gin.H{"offerings": offerings})
}

// CreateOffering godoc
// POST /api/v1/admin/offerings
// Creates a new offering.
func (h *OfferingHandler) CreateOffering(c *gin.Context) {
	var req model.CreateOfferingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	offering, err := h.offeringService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateOffering) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"offering": offering})
}

// UpdateOffering godoc
// PUT /api/v1/admin/offerings/:id
// Updates an existing offering.
func (h *OfferingHandler) UpdateOffering(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateOfferingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	offering, err := h.offeringService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateOffering) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"offering": offering})
}

// DeleteOffering godoc
// DELETE /api/v1/admin/offerings/:id
// Deletes an offering. Refused while students are enrolled.
func (h *OfferingHandler) DeleteOffering(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.offeringService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrOfferingInUse) {
			response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "offering deleted successfully"})
}
