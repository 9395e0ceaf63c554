package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/response"
	"github.com/summitprep/satprep-backend/internal/service"
	"github.com/summitprep/satprep-backend/internal/validator"
)

// RegistrationHandler handles public signup and the parental approval links.
type RegistrationHandler struct {
	regService *service.RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(regService *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{regService: regService}
}

// Register godoc
// POST /api/v1/register
// Creates a student account and kicks off the parental approval flow.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req model.RegisterStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.regService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
		case errors.Is(err, service.ErrInvalidOption):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidOption)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// ApproveEnrollment godoc
// POST /api/v1/approval/:token/approve
// Guardian link: approves the enrollment. Single use.
func (h *RegistrationHandler) ApproveEnrollment(c *gin.Context) {
	h.decide(c, true)
}

// DeclineEnrollment godoc
// POST /api/v1/approval/:token/decline
// Guardian link: declines the enrollment. Single use.
func (h *RegistrationHandler) DeclineEnrollment(c *gin.Context) {
	h.decide(c, false)
}

func (h *RegistrationHandler) decide(c *gin.Context, approve bool) {
	token := c.Param("token")
	if token == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	student, err := h.regService.DecideApproval(c.Request.Context(), token, approve)
	if err != nil {
		if errors.Is(err, service.ErrApprovalDecided) {
			response.Fail(c, http.StatusConflict, response.ErrApprovalDecided)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"student_name": student.Name,
		"status":       student.ParentalApprovalStatus,
	})
}
