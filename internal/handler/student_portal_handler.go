package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/summitprep/satprep-backend/internal/middleware"
	"github.com/summitprep/satprep-backend/internal/model"
	"github.com/summitprep/satprep-backend/internal/repository"
	"github.com/summitprep/satprep-backend/internal/response"
	"github.com/summitprep/satprep-backend/internal/service"
	"github.com/summitprep/satprep-backend/internal/validator"
)

// StudentPortalHandler handles student-facing schedule endpoints.
type StudentPortalHandler struct {
	scheduleService *service.ScheduleService
	offeringService *service.OfferingService
	regService      *service.RegistrationService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	scheduleService *service.ScheduleService,
	offeringService *service.OfferingService,
	regService *service.RegistrationService,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		scheduleService: scheduleService,
		offeringService: offeringService,
		regService:      regService,
	}
}

// GetSchedule godoc
// GET /api/v1/student/schedule
// Returns the student's schedule and remaining change budget per dimension.
func (h *StudentPortalHandler) GetSchedule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	student, err := h.scheduleService.GetStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, h.scheduleService.ScheduleState(student))
}

// ListOfferings godoc
// GET /api/v1/student/offerings?kind=class_time|diagnostic_test
// Returns active offerings of one kind with remaining seats.
func (h *StudentPortalHandler) ListOfferings(c *gin.Context) {
	kind := model.OfferingKind(c.Query("kind"))
	if kind != model.OfferingClassTime && kind != model.OfferingDiagnosticTest {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	offerings, err := h.offeringService.ListByKind(c.Request.Context(), kind, true)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if offerings == nil {
		offerings = []model.Offering{}
	}

	response.Success(c, http.StatusOK, gin.H{"offerings": offerings})
}

// ChangeClassTime godoc
// PUT /api/v1/student/schedule/class-time
func (h *StudentPortalHandler) ChangeClassTime(c *gin.Context) {
	h.changeSchedule(c, model.OfferingClassTime)
}

// ChangeDiagnosticTest godoc
// PUT /api/v1/student/schedule/diagnostic-test
func (h *StudentPortalHandler) ChangeDiagnosticTest(c *gin.Context) {
	h.changeSchedule(c, model.OfferingDiagnosticTest)
}

func (h *StudentPortalHandler) changeSchedule(c *gin.Context, kind model.OfferingKind) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ScheduleChangeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.scheduleService.RequestChange(c.Request.Context(), claims.UserID, kind, req.NewValue)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStudentNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrChangeLimitExceeded):
			response.Fail(c, http.StatusConflict, response.ErrChangeLimitExceeded)
		case errors.Is(err, service.ErrInvalidOption):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidOption)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, h.scheduleService.ScheduleState(student))
}

// ResendApproval godoc
// POST /api/v1/student/approval/resend
// Rotates the parental approval token and re-sends the guardian email.
func (h *StudentPortalHandler) ResendApproval(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.regService.ResendApproval(c.Request.Context(), claims.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrApprovalNotNeeded):
			response.Fail(c, http.StatusConflict, response.ErrApprovalDecided)
		case errors.Is(err, repository.ErrStudentNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
